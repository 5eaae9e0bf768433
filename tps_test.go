/*
 * tps_test.go, part of gotps.
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
	"math"
	"testing"

	v3 "github.com/rmera/gochem/v3"
)

//snapAt returns a one-atom snapshot at x with unit velocity along x.
func snapAt(x float64) *Snapshot {
	c := v3.Zeros(1)
	c.Set(0, 0, x)
	v := v3.Zeros(1)
	v.Set(0, 0, 1)
	s, err := NewSnapshot(c, v, nil)
	if err != nil {
		panic(err)
	}
	return s
}

//trajAt returns a one-atom trajectory visiting the given x positions.
func trajAt(xs ...float64) *Trajectory {
	snaps := make([]*Snapshot, len(xs))
	for i, x := range xs {
		snaps[i] = snapAt(x)
	}
	return NewTrajectory(snaps...)
}

func firstX(s *Snapshot) float64 {
	return s.Coords.At(0, 0)
}

//stateA and stateB are the usual pair of one-dimensional stable states.
func stateA() Volume {
	v, _ := NewLambdaVolume(firstX, math.Inf(-1), -0.5)
	return v
}

func stateB() Volume {
	v, _ := NewLambdaVolume(firstX, 0.5, math.Inf(1))
	return v
}

func TestSnapshotNew(Te *testing.T) {
	c := v3.Zeros(2)
	v := v3.Zeros(1)
	if _, err := NewSnapshot(c, v, nil); err == nil {
		Te.Error("mismatched coordinate and velocity sizes accepted")
	}
	if _, err := NewSnapshot(v3.Zeros(1), v3.Zeros(1), []float64{1, 2, 3}); err == nil {
		Te.Error("3-component box accepted")
	}
	s, err := NewSnapshot(v3.Zeros(3), v3.Zeros(3), nil)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Len() != 3 {
		Te.Errorf("got %d atoms, want 3", s.Len())
	}
}

func TestSnapshotReverse(Te *testing.T) {
	s := snapAt(0.3)
	r := s.Reverse()
	if r.Coords != s.Coords {
		Te.Error("reversal copied the coordinates")
	}
	if r.Vels.At(0, 0) != -1 {
		Te.Errorf("got velocity %v after reversal, want -1", r.Vels.At(0, 0))
	}
	if !r.Reverse().Equal(s) {
		Te.Error("double reversal changed the snapshot")
	}
	if s.Vels.At(0, 0) != 1 {
		Te.Error("reversal modified the original snapshot")
	}
}

func TestSnapshotJSON(Te *testing.T) {
	s := snapAt(-0.7)
	s.Box = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	s.EngineState = []byte("rng")
	b, err := json.Marshal(s)
	if err != nil {
		Te.Fatal(err)
	}
	back := new(Snapshot)
	if err := json.Unmarshal(b, back); err != nil {
		Te.Fatal(err)
	}
	if !back.Equal(s) {
		Te.Error("snapshot changed through a JSON round trip")
	}
	if string(back.EngineState) != "rng" {
		Te.Error("engine state lost through a JSON round trip")
	}
}

func TestVolumes(Te *testing.T) {
	A, B := stateA(), stateB()
	in := snapAt(-0.8)
	out := snapAt(0.0)
	if !A.Contains(in) || A.Contains(out) {
		Te.Error("lambda volume misclassifies")
	}
	//half-open: the upper bound is excluded, the lower included
	if A.Contains(snapAt(-0.5)) {
		Te.Error("lambda volume contains its upper bound")
	}
	if !B.Contains(snapAt(0.5)) {
		Te.Error("lambda volume excludes its lower bound")
	}
	both := NewUnionVolume(A, B)
	if !both.Contains(in) || both.Contains(out) {
		Te.Error("union volume misclassifies")
	}
	neither := NewNegatedVolume(both)
	if neither.Contains(in) || !neither.Contains(out) {
		Te.Error("negated volume misclassifies")
	}
	if NewIntersectVolume(A, B).Contains(in) {
		Te.Error("disjoint intersection contains a point")
	}
	if !FullVolume().Contains(out) || EmptyVolume().Contains(out) {
		Te.Error("trivial volumes misclassify")
	}
}
