/*
 * sample.go, part of gotps.
 *
 *
 * Copyright 2025 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package tps

//Sample is one accepted trajectory in one ensemble slot. The replica id is
//a logical identity that travels with the trajectory across replica
//exchange moves, while the ensemble identifies the fixed sampling slot.
type Sample struct {
	Traj    *Trajectory
	Ens     Ensemble
	Replica int
}

//Valid tells whether the sample's trajectory is a valid member of its
//ensemble.
func (S *Sample) Valid() bool {
	return S.Ens.IsValid(S.Traj)
}

//SampleSet maps each tracked ensemble to its one current sample. Ensembles
//are compared by identity: two distinct ensemble values are distinct slots
//even if logically equivalent. A SampleSet is a value in the Monte Carlo
//chain: ApplySamples returns a new set and never modifies the receiver, so
//committed sets can be kept in step records without defensive copies.
type SampleSet struct {
	order   []Ensemble
	samples map[Ensemble]*Sample
}

//NewSampleSet builds a set from the given samples. Slot order is the
//argument order. Two samples for the same ensemble are an error.
func NewSampleSet(samples ...*Sample) (*SampleSet, error) {
	set := &SampleSet{
		order:   make([]Ensemble, 0, len(samples)),
		samples: make(map[Ensemble]*Sample, len(samples)),
	}
	for i, s := range samples {
		if s.Ens == nil {
			return nil, NewConfigError("sample %d has no ensemble", i)
		}
		if _, dup := set.samples[s.Ens]; dup {
			return nil, NewConfigError("two samples for the same ensemble (slot %d)", i)
		}
		set.order = append(set.order, s.Ens)
		set.samples[s.Ens] = s
	}
	return set, nil
}

//Len returns the number of tracked ensembles.
func (S *SampleSet) Len() int {
	return len(S.order)
}

//ForEnsemble returns the current sample for e, or nil if e is not tracked.
func (S *SampleSet) ForEnsemble(e Ensemble) *Sample {
	return S.samples[e]
}

//ForReplica returns the current sample carrying replica id r, or nil.
func (S *SampleSet) ForReplica(r int) *Sample {
	for _, e := range S.order {
		if S.samples[e].Replica == r {
			return S.samples[e]
		}
	}
	return nil
}

//Ensembles returns the tracked ensembles in slot order.
func (S *SampleSet) Ensembles() []Ensemble {
	out := make([]Ensemble, len(S.order))
	copy(out, S.order)
	return out
}

//Samples returns the samples in slot order.
func (S *SampleSet) Samples() []*Sample {
	out := make([]*Sample, 0, len(S.order))
	for _, e := range S.order {
		out = append(out, S.samples[e])
	}
	return out
}

//ApplySamples returns a new set where each given sample replaces the one in
//its ensemble's slot. Samples for untracked ensembles get new slots at the
//end. The receiver is unchanged.
func (S *SampleSet) ApplySamples(samples ...*Sample) *SampleSet {
	set := &SampleSet{
		order:   make([]Ensemble, len(S.order), len(S.order)+len(samples)),
		samples: make(map[Ensemble]*Sample, len(S.order)+len(samples)),
	}
	copy(set.order, S.order)
	for e, s := range S.samples {
		set.samples[e] = s
	}
	for _, s := range samples {
		if _, tracked := set.samples[s.Ens]; !tracked {
			set.order = append(set.order, s.Ens)
		}
		set.samples[s.Ens] = s
	}
	return set
}

//SanityCheck verifies the committed-state invariant: every tracked ensemble
//has exactly one sample, every sample's trajectory is valid for its
//ensemble, and no replica id appears twice.
func (S *SampleSet) SanityCheck() error {
	if len(S.order) != len(S.samples) {
		return NewSanityError("%d slots but %d samples", len(S.order), len(S.samples))
	}
	replicas := make(map[int]bool, len(S.order))
	for i, e := range S.order {
		s, ok := S.samples[e]
		if !ok || s == nil {
			return NewSanityError("slot %d has no sample", i)
		}
		if s.Ens != e {
			return NewSanityError("slot %d holds a sample for another ensemble", i)
		}
		if !s.Valid() {
			return NewSanityError("slot %d (replica %d): trajectory of %d frames is not ensemble-valid", i, s.Replica, s.Traj.Len())
		}
		if replicas[s.Replica] {
			return NewSanityError("replica id %d appears twice", s.Replica)
		}
		replicas[s.Replica] = true
	}
	return nil
}

//Equal compares two sets by value: same slot count, and slot by slot the
//same replica id and frame-by-frame equal trajectories.
func (S *SampleSet) Equal(O *SampleSet) bool {
	if S.Len() != O.Len() {
		return false
	}
	for i, e := range S.order {
		a := S.samples[e]
		b := O.samples[O.order[i]]
		if a.Replica != b.Replica || !a.Traj.Equal(b.Traj) {
			return false
		}
	}
	return true
}

//SampleRecord is the serializable form of a sample: the ensemble reference
//becomes the slot index in the set's canonical order. Restoring needs the
//same canonical ensemble list (a network provides one).
type SampleRecord struct {
	Replica int         `json:"replica"`
	Slot    int         `json:"slot"`
	Traj    *Trajectory `json:"traj"`
}

//Records returns the serializable form of the set, in slot order.
func (S *SampleSet) Records() []SampleRecord {
	recs := make([]SampleRecord, 0, len(S.order))
	for i, e := range S.order {
		s := S.samples[e]
		recs = append(recs, SampleRecord{Replica: s.Replica, Slot: i, Traj: s.Traj})
	}
	return recs
}

//SetFromRecords rebuilds a sample set from records, rebinding slot indexes
//to the given canonical ensemble list.
func SetFromRecords(recs []SampleRecord, ensembles []Ensemble) (*SampleSet, error) {
	samples := make([]*Sample, 0, len(recs))
	for _, r := range recs {
		if r.Slot < 0 || r.Slot >= len(ensembles) {
			return nil, NewSanityError("record for slot %d but only %d ensembles given", r.Slot, len(ensembles))
		}
		samples = append(samples, &Sample{Traj: r.Traj, Ens: ensembles[r.Slot], Replica: r.Replica})
	}
	return NewSampleSet(samples...)
}
