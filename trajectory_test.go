/*
 * trajectory_test.go, part of gotps.
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

	v3 "github.com/rmera/gochem/v3"
)

func TestTrajectoryBasics(Te *testing.T) {
	t := trajAt(-0.8, -0.2, 0.3, 0.7)
	if t.Len() != 4 {
		Te.Fatalf("got length %d, want 4", t.Len())
	}
	if firstX(t.First()) != -0.8 || firstX(t.Last()) != 0.7 {
		Te.Error("wrong endpoints")
	}
	sub := t.Subtraj(1, 3)
	if sub.Len() != 2 || firstX(sub.First()) != -0.2 {
		Te.Error("wrong subtrajectory")
	}
	if sub.Frame(0) != t.Frame(1) {
		Te.Error("subtrajectory copied frames instead of sharing them")
	}
}

func TestTrajectoryImmutable(Te *testing.T) {
	t := trajAt(-0.8, 0.0)
	grown := t.Append(snapAt(0.8))
	if t.Len() != 2 || grown.Len() != 3 {
		Te.Error("append mutated the receiver")
	}
	joined := t.Concat(trajAt(0.6))
	if joined.Len() != 3 || t.Len() != 2 {
		Te.Error("concat mutated the receiver")
	}
	if !t.SharesFrames(grown) || !t.SharesFrames(joined) {
		Te.Error("derived trajectories should share frames with the parent")
	}
	if t.SharesFrames(trajAt(-0.8, 0.0)) {
		Te.Error("equal-valued but independent trajectories report shared frames")
	}
}

func TestTrajectoryReverse(Te *testing.T) {
	t := trajAt(-0.8, 0.0, 0.8)
	r := t.Reverse()
	if firstX(r.First()) != 0.8 || firstX(r.Last()) != -0.8 {
		Te.Error("reversal kept the frame order")
	}
	if r.Frame(0).Vels.At(0, 0) != -1 {
		Te.Error("reversal kept the velocities")
	}
	if !r.Reverse().Equal(t) {
		Te.Error("double reversal changed the trajectory")
	}
}

func TestTrajectoryJSON(Te *testing.T) {
	t := trajAt(-0.8, 0.1, 0.8)
	b, err := json.Marshal(t)
	if err != nil {
		Te.Fatal(err)
	}
	back := new(Trajectory)
	if err := json.Unmarshal(b, back); err != nil {
		Te.Fatal(err)
	}
	if !back.Equal(t) {
		Te.Error("trajectory changed through a JSON round trip")
	}
}

//TestFrameReader checks the goChem trajectory adapter: every frame is
//delivered once, then a NormalLastFrameTermination error.
func TestFrameReader(Te *testing.T) {
	t := trajAt(-0.8, 0.0, 0.8)
	r := NewFrameReader(t)
	if r.Len() != 1 {
		Te.Errorf("got %d atoms per frame, want 1", r.Len())
	}
	out := v3.Zeros(1)
	for i := 0; i < 3; i++ {
		if !r.Readable() {
			Te.Fatalf("reader not readable at frame %d", i)
		}
		if err := r.Next(out); err != nil {
			Te.Fatal(err)
		}
		if out.At(0, 0) != firstX(t.Frame(i)) {
			Te.Errorf("frame %d: got x=%v, want %v", i, out.At(0, 0), firstX(t.Frame(i)))
		}
	}
	err := r.Next(out)
	if err == nil {
		Te.Fatal("read past the last frame")
	}
	if _, ok := err.(interface{ NormalLastFrameTermination() }); !ok {
		Te.Error("end of trajectory is not a normal last-frame termination")
	}
}
