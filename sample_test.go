/*
 * sample_test.go, part of gotps.
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

import (
	"encoding/json"
	"testing"
)

func twoSlotSet(Te *testing.T) (*SampleSet, Ensemble, Ensemble) {
	e1 := NewLengthEnsemble(2)
	e2 := NewLengthEnsemble(3)
	set, err := NewSampleSet(
		&Sample{Traj: trajAt(0, 0), Ens: e1, Replica: 0},
		&Sample{Traj: trajAt(1, 1, 1), Ens: e2, Replica: 1},
	)
	if err != nil {
		Te.Fatal(err)
	}
	return set, e1, e2
}

func TestSampleSetBasics(Te *testing.T) {
	set, e1, e2 := twoSlotSet(Te)
	if set.Len() != 2 {
		Te.Fatalf("got %d samples, want 2", set.Len())
	}
	if set.ForEnsemble(e1).Replica != 0 || set.ForEnsemble(e2).Replica != 1 {
		Te.Error("wrong ensemble assignment")
	}
	if set.ForReplica(1).Ens != e2 {
		Te.Error("wrong replica lookup")
	}
	if err := set.SanityCheck(); err != nil {
		Te.Error(err)
	}
	if _, err := NewSampleSet(
		&Sample{Traj: trajAt(0, 0), Ens: e1, Replica: 0},
		&Sample{Traj: trajAt(1, 1), Ens: e1, Replica: 1},
	); err == nil {
		Te.Error("two samples for one ensemble accepted")
	}
}

func TestApplySamplesCopyOnWrite(Te *testing.T) {
	set, e1, _ := twoSlotSet(Te)
	repl := &Sample{Traj: trajAt(2, 2), Ens: e1, Replica: 0}
	next := set.ApplySamples(repl)
	if next.ForEnsemble(e1) != repl {
		Te.Error("replacement sample not installed")
	}
	if set.ForEnsemble(e1) == repl {
		Te.Error("ApplySamples modified the original set")
	}
	if firstX(set.ForEnsemble(e1).Traj.First()) != 0 {
		Te.Error("original trajectory changed")
	}
	//untracked ensembles get a new slot at the end
	e3 := NewLengthEnsemble(1)
	wider := set.ApplySamples(&Sample{Traj: trajAt(5), Ens: e3, Replica: 2})
	if wider.Len() != 3 || set.Len() != 2 {
		Te.Error("new-slot growth went wrong")
	}
	if wider.Ensembles()[2] != e3 {
		Te.Error("new slot not at the end")
	}
}

func TestSanityCheckViolations(Te *testing.T) {
	set, e1, e2 := twoSlotSet(Te)
	badTraj := set.ApplySamples(&Sample{Traj: trajAt(9), Ens: e1, Replica: 0})
	if err := badTraj.SanityCheck(); err == nil {
		Te.Error("ensemble-invalid trajectory passed the sanity check")
	} else if _, ok := err.(SanityCheckError); !ok {
		Te.Error("sanity violation does not satisfy SanityCheckError")
	}
	dupReplica := set.ApplySamples(&Sample{Traj: trajAt(1, 1, 1), Ens: e2, Replica: 0})
	if err := dupReplica.SanityCheck(); err == nil {
		Te.Error("duplicate replica id passed the sanity check")
	}
}

func TestSampleSetRecords(Te *testing.T) {
	set, e1, e2 := twoSlotSet(Te)
	recs := set.Records()
	if len(recs) != 2 || recs[0].Slot != 0 || recs[1].Slot != 1 {
		Te.Fatal("wrong record slots")
	}
	//through JSON, as the stores do it
	b, err := json.Marshal(recs)
	if err != nil {
		Te.Fatal(err)
	}
	var back []SampleRecord
	if err := json.Unmarshal(b, &back); err != nil {
		Te.Fatal(err)
	}
	restored, err := SetFromRecords(back, []Ensemble{e1, e2})
	if err != nil {
		Te.Fatal(err)
	}
	if !restored.Equal(set) {
		Te.Error("sample set changed through a record round trip")
	}
	if err := restored.SanityCheck(); err != nil {
		Te.Error(err)
	}
	if _, err := SetFromRecords(back, []Ensemble{e1}); err == nil {
		Te.Error("records restored against a too-short ensemble list")
	}
}
