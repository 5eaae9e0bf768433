/*
 * ensemble.go, part of gotps.
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

//Path ensembles are predicate trees: each node carries only its own data
//(a volume, a length bound, child ensembles) and evaluates by structural
//recursion over its children, short-circuiting left to right. None of them
//holds per-call state, so one ensemble value can be evaluated concurrently
//on many candidate trajectories.
//
//A note on empty trajectories: the all-frames volume ensembles (AllInX,
//AllOutX) are vacuously valid on a zero-length trajectory, while the
//some-frame ensembles (PartInX, PartOutX) are not. This is what lets a
//sequential ensemble skip an optional middle segment (e.g. a direct two
//frame A->B transition in a TPS ensemble) while still demanding an actual
//interface crossing where one is required.

//LengthEnsemble accepts trajectories whose length lies in [Min,Max].
//Max <= 0 means unbounded.
type LengthEnsemble struct {
	Min int
	Max int
}

//NewLengthEnsemble returns the ensemble of trajectories of exactly l frames.
func NewLengthEnsemble(l int) *LengthEnsemble {
	return &LengthEnsemble{Min: l, Max: l}
}

//NewBoundedLengthEnsemble returns the ensemble of trajectories with between
//min and max frames. max <= 0 leaves the length unbounded above.
func NewBoundedLengthEnsemble(min, max int) *LengthEnsemble {
	return &LengthEnsemble{Min: min, Max: max}
}

func (E *LengthEnsemble) IsValid(t *Trajectory) bool {
	return t.Len() >= E.Min && (E.Max <= 0 || t.Len() <= E.Max)
}

func (E *LengthEnsemble) CanAppend(t *Trajectory) bool {
	return E.Max <= 0 || t.Len() < E.Max
}

func (E *LengthEnsemble) StrictCanAppend(t *Trajectory) bool {
	return E.Max <= 0 || t.Len() <= E.Max
}

func (E *LengthEnsemble) CanPrepend(t *Trajectory) bool { return E.CanAppend(t) }

func (E *LengthEnsemble) StrictCanPrepend(t *Trajectory) bool { return E.StrictCanAppend(t) }

//AllInXEnsemble accepts trajectories with every frame inside the volume.
type AllInXEnsemble struct {
	Vol Volume
}

//NewAllInXEnsemble returns the ensemble of paths that never leave v.
func NewAllInXEnsemble(v Volume) *AllInXEnsemble {
	return &AllInXEnsemble{Vol: v}
}

func (E *AllInXEnsemble) IsValid(t *Trajectory) bool {
	for i := 0; i < t.Len(); i++ {
		if !E.Vol.Contains(t.Frame(i)) {
			return false
		}
	}
	return true
}

//CanAppend: once a frame has left the volume no extension can fix it.
func (E *AllInXEnsemble) CanAppend(t *Trajectory) bool { return E.IsValid(t) }

func (E *AllInXEnsemble) StrictCanAppend(t *Trajectory) bool {
	if t.Len() == 0 {
		return true
	}
	return E.IsValid(t.Subtraj(0, t.Len()-1))
}

func (E *AllInXEnsemble) CanPrepend(t *Trajectory) bool { return E.IsValid(t) }

func (E *AllInXEnsemble) StrictCanPrepend(t *Trajectory) bool {
	if t.Len() == 0 {
		return true
	}
	return E.IsValid(t.Subtraj(1, t.Len()))
}

//AllOutXEnsemble accepts trajectories with every frame outside the volume.
type AllOutXEnsemble struct {
	in *AllInXEnsemble
}

//NewAllOutXEnsemble returns the ensemble of paths that never enter v.
func NewAllOutXEnsemble(v Volume) *AllOutXEnsemble {
	return &AllOutXEnsemble{in: NewAllInXEnsemble(NewNegatedVolume(v))}
}

func (E *AllOutXEnsemble) IsValid(t *Trajectory) bool          { return E.in.IsValid(t) }
func (E *AllOutXEnsemble) CanAppend(t *Trajectory) bool        { return E.in.CanAppend(t) }
func (E *AllOutXEnsemble) StrictCanAppend(t *Trajectory) bool  { return E.in.StrictCanAppend(t) }
func (E *AllOutXEnsemble) CanPrepend(t *Trajectory) bool       { return E.in.CanPrepend(t) }
func (E *AllOutXEnsemble) StrictCanPrepend(t *Trajectory) bool { return E.in.StrictCanPrepend(t) }

//PartInXEnsemble accepts trajectories with at least one frame inside the
//volume. Any prefix can still achieve that, so CanAppend is always true and
//this ensemble never stops generation on its own.
type PartInXEnsemble struct {
	Vol Volume
}

//NewPartInXEnsemble returns the ensemble of paths visiting v at least once.
func NewPartInXEnsemble(v Volume) *PartInXEnsemble {
	return &PartInXEnsemble{Vol: v}
}

func (E *PartInXEnsemble) IsValid(t *Trajectory) bool {
	for i := 0; i < t.Len(); i++ {
		if E.Vol.Contains(t.Frame(i)) {
			return true
		}
	}
	return false
}

func (E *PartInXEnsemble) CanAppend(t *Trajectory) bool        { return true }
func (E *PartInXEnsemble) StrictCanAppend(t *Trajectory) bool  { return true }
func (E *PartInXEnsemble) CanPrepend(t *Trajectory) bool       { return true }
func (E *PartInXEnsemble) StrictCanPrepend(t *Trajectory) bool { return true }

//NewPartOutXEnsemble returns the ensemble of paths leaving v at least once.
func NewPartOutXEnsemble(v Volume) *PartInXEnsemble {
	return NewPartInXEnsemble(NewNegatedVolume(v))
}

//IntersectionEnsemble accepts trajectories valid for all its members.
type IntersectionEnsemble struct {
	Members []Ensemble
}

//NewIntersectionEnsemble returns the AND combination of the given ensembles.
func NewIntersectionEnsemble(members ...Ensemble) *IntersectionEnsemble {
	return &IntersectionEnsemble{Members: members}
}

func (E *IntersectionEnsemble) IsValid(t *Trajectory) bool {
	for _, m := range E.Members {
		if !m.IsValid(t) {
			return false
		}
	}
	return true
}

func (E *IntersectionEnsemble) CanAppend(t *Trajectory) bool {
	for _, m := range E.Members {
		if !m.CanAppend(t) {
			return false
		}
	}
	return true
}

func (E *IntersectionEnsemble) StrictCanAppend(t *Trajectory) bool {
	for _, m := range E.Members {
		if !m.StrictCanAppend(t) {
			return false
		}
	}
	return true
}

func (E *IntersectionEnsemble) CanPrepend(t *Trajectory) bool {
	for _, m := range E.Members {
		if !m.CanPrepend(t) {
			return false
		}
	}
	return true
}

func (E *IntersectionEnsemble) StrictCanPrepend(t *Trajectory) bool {
	for _, m := range E.Members {
		if !m.StrictCanPrepend(t) {
			return false
		}
	}
	return true
}

//UnionEnsemble accepts trajectories valid for at least one member.
type UnionEnsemble struct {
	Members []Ensemble
}

//NewUnionEnsemble returns the OR combination of the given ensembles.
func NewUnionEnsemble(members ...Ensemble) *UnionEnsemble {
	return &UnionEnsemble{Members: members}
}

func (E *UnionEnsemble) IsValid(t *Trajectory) bool {
	for _, m := range E.Members {
		if m.IsValid(t) {
			return true
		}
	}
	return false
}

func (E *UnionEnsemble) CanAppend(t *Trajectory) bool {
	for _, m := range E.Members {
		if m.CanAppend(t) {
			return true
		}
	}
	return false
}

func (E *UnionEnsemble) StrictCanAppend(t *Trajectory) bool {
	for _, m := range E.Members {
		if m.StrictCanAppend(t) {
			return true
		}
	}
	return false
}

func (E *UnionEnsemble) CanPrepend(t *Trajectory) bool {
	for _, m := range E.Members {
		if m.CanPrepend(t) {
			return true
		}
	}
	return false
}

func (E *UnionEnsemble) StrictCanPrepend(t *Trajectory) bool {
	for _, m := range E.Members {
		if m.StrictCanPrepend(t) {
			return true
		}
	}
	return false
}

//NegatedEnsemble accepts trajectories not valid for the wrapped ensemble.
//Negation carries no information about extensions, so the append/prepend
//tests are always true (the constant true is trivially monotone-safe).
type NegatedEnsemble struct {
	E Ensemble
}

//NewNegatedEnsemble returns the NOT combination of e.
func NewNegatedEnsemble(e Ensemble) *NegatedEnsemble {
	return &NegatedEnsemble{E: e}
}

func (E *NegatedEnsemble) IsValid(t *Trajectory) bool          { return !E.E.IsValid(t) }
func (E *NegatedEnsemble) CanAppend(t *Trajectory) bool        { return true }
func (E *NegatedEnsemble) StrictCanAppend(t *Trajectory) bool  { return true }
func (E *NegatedEnsemble) CanPrepend(t *Trajectory) bool       { return true }
func (E *NegatedEnsemble) StrictCanPrepend(t *Trajectory) bool { return true }

//SequentialEnsemble accepts trajectories that split into consecutive
//segments, segment i valid for part i. This is the concatenation
//combinator from which the TIS and TPS ensembles are built.
//
//The evaluation tries split points left to right with short-circuiting.
//With the two or three parts of the usual ensembles this is quadratic in
//the path length at worst.
//TODO: cache feasible split points between successive CanAppend calls on
//growing prefixes of the same trajectory.
type SequentialEnsemble struct {
	Parts []Ensemble
}

//NewSequentialEnsemble returns the concatenation of the given ensembles.
func NewSequentialEnsemble(parts ...Ensemble) (*SequentialEnsemble, error) {
	if len(parts) == 0 {
		return nil, NewConfigError("sequential ensemble needs at least one part")
	}
	return &SequentialEnsemble{Parts: parts}, nil
}

func (E *SequentialEnsemble) IsValid(t *Trajectory) bool {
	return matchSeq(t, E.Parts)
}

//matchSeq tells whether t splits exactly into valid consecutive segments.
func matchSeq(t *Trajectory, parts []Ensemble) bool {
	if len(parts) == 0 {
		return t.Len() == 0
	}
	for k := 0; k <= t.Len(); k++ {
		if parts[0].IsValid(t.Subtraj(0, k)) && matchSeq(t.Subtraj(k, t.Len()), parts[1:]) {
			return true
		}
	}
	return false
}

func (E *SequentialEnsemble) CanAppend(t *Trajectory) bool {
	return canAppendSeq(t, E.Parts, false)
}

func (E *SequentialEnsemble) StrictCanAppend(t *Trajectory) bool {
	return canAppendSeq(t, E.Parts, true)
}

//canAppendSeq tells whether t is a growable prefix of the concatenation:
//some first segments match completely and the growing tail may still be
//extended within a later part.
func canAppendSeq(t *Trajectory, parts []Ensemble, strict bool) bool {
	if len(parts) == 0 {
		return false
	}
	if strict {
		if parts[0].StrictCanAppend(t) {
			return true
		}
	} else if parts[0].CanAppend(t) {
		return true
	}
	for k := 0; k <= t.Len(); k++ {
		if parts[0].IsValid(t.Subtraj(0, k)) && canAppendSeq(t.Subtraj(k, t.Len()), parts[1:], strict) {
			return true
		}
	}
	return false
}

func (E *SequentialEnsemble) CanPrepend(t *Trajectory) bool {
	return canPrependSeq(t, E.Parts, false)
}

func (E *SequentialEnsemble) StrictCanPrepend(t *Trajectory) bool {
	return canPrependSeq(t, E.Parts, true)
}

//canPrependSeq is the mirror of canAppendSeq: the trajectory grows at its
//beginning, so segments are matched from the end.
func canPrependSeq(t *Trajectory, parts []Ensemble, strict bool) bool {
	if len(parts) == 0 {
		return false
	}
	last := parts[len(parts)-1]
	if strict {
		if last.StrictCanPrepend(t) {
			return true
		}
	} else if last.CanPrepend(t) {
		return true
	}
	for k := t.Len(); k >= 0; k-- {
		if last.IsValid(t.Subtraj(k, t.Len())) && canPrependSeq(t.Subtraj(0, k), parts[:len(parts)-1], strict) {
			return true
		}
	}
	return false
}

//TISEnsemble returns the transition-interface-sampling ensemble for paths
//that start in stateA, cross the interface, and end in any of the stable
//states (allStates should be the union of all of them, stateA included).
//iface is the volume on the stateA side of the interface, typically a
//LambdaVolume reaching up to the interface's lambda value.
func TISEnsemble(stateA, allStates, iface Volume) (Ensemble, error) {
	start := NewIntersectionEnsemble(NewAllInXEnsemble(stateA), NewLengthEnsemble(1))
	middle := NewIntersectionEnsemble(NewAllOutXEnsemble(allStates), NewPartOutXEnsemble(iface))
	end := NewIntersectionEnsemble(NewAllInXEnsemble(allStates), NewLengthEnsemble(1))
	return NewSequentialEnsemble(start, middle, end)
}

//TPSEnsemble returns the transition-path-sampling ensemble for paths from
//stateA to stateB: one frame in A, any number of frames in neither state,
//one frame in B.
func TPSEnsemble(stateA, stateB Volume) (Ensemble, error) {
	both := NewUnionVolume(stateA, stateB)
	start := NewIntersectionEnsemble(NewAllInXEnsemble(stateA), NewLengthEnsemble(1))
	middle := NewAllOutXEnsemble(both)
	end := NewIntersectionEnsemble(NewAllInXEnsemble(stateB), NewLengthEnsemble(1))
	return NewSequentialEnsemble(start, middle, end)
}
