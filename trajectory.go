/*
 * trajectory.go, part of gotps.
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

	v3 "github.com/rmera/gochem/v3"
)

//Trajectory is an ordered sequence of snapshots produced by dynamics.
//It is immutable once built: all the "modifying" methods return a new
//trajectory, sharing snapshot references with the old one (snapshots are
//immutable, so sharing is always safe). Frame 0 is the earliest in time.
type Trajectory struct {
	frames []*Snapshot
}

//NewTrajectory returns a trajectory over the given snapshots. The slice is
//copied, the snapshots are shared.
func NewTrajectory(snaps ...*Snapshot) *Trajectory {
	f := make([]*Snapshot, len(snaps))
	copy(f, snaps)
	return &Trajectory{frames: f}
}

//Len returns the number of frames.
func (T *Trajectory) Len() int {
	if T == nil {
		return 0
	}
	return len(T.frames)
}

//Frame returns the ith snapshot. It panics if out of range, as this
//is considered a "fundamental" function, following goChem.
func (T *Trajectory) Frame(i int) *Snapshot {
	return T.frames[i]
}

//First returns the first frame, or nil for an empty trajectory.
func (T *Trajectory) First() *Snapshot {
	if T.Len() == 0 {
		return nil
	}
	return T.frames[0]
}

//Last returns the last frame, or nil for an empty trajectory.
func (T *Trajectory) Last() *Snapshot {
	if T.Len() == 0 {
		return nil
	}
	return T.frames[len(T.frames)-1]
}

//Subtraj returns the trajectory of frames [i,j), sharing the snapshots.
func (T *Trajectory) Subtraj(i, j int) *Trajectory {
	return NewTrajectory(T.frames[i:j]...)
}

//Append returns a new trajectory with the given snapshots added at the end.
//The receiver is not modified.
func (T *Trajectory) Append(snaps ...*Snapshot) *Trajectory {
	f := make([]*Snapshot, 0, len(T.frames)+len(snaps))
	f = append(f, T.frames...)
	f = append(f, snaps...)
	return &Trajectory{frames: f}
}

//Concat returns the concatenation of T and U, sharing all snapshots.
func (T *Trajectory) Concat(U *Trajectory) *Trajectory {
	return T.Append(U.frames...)
}

//Reverse returns the time-reversed trajectory: frames in reverse order,
//each with its velocities negated.
func (T *Trajectory) Reverse() *Trajectory {
	f := make([]*Snapshot, 0, len(T.frames))
	for i := len(T.frames) - 1; i >= 0; i-- {
		f = append(f, T.frames[i].Reverse())
	}
	return &Trajectory{frames: f}
}

//SharesFrames tells whether T and U reference at least one common snapshot.
func (T *Trajectory) SharesFrames(U *Trajectory) bool {
	seen := make(map[*Snapshot]bool, len(T.frames))
	for _, s := range T.frames {
		seen[s] = true
	}
	for _, s := range U.frames {
		if seen[s] {
			return true
		}
	}
	return false
}

//Equal compares two trajectories frame by frame, by value.
func (T *Trajectory) Equal(U *Trajectory) bool {
	if T.Len() != U.Len() {
		return false
	}
	for i, s := range T.frames {
		if s != U.frames[i] && !s.Equal(U.frames[i]) {
			return false
		}
	}
	return true
}

//MarshalJSON encodes the trajectory with its frames inline. Snapshot
//sharing is a memory-level optimization and is not preserved on disk.
func (T *Trajectory) MarshalJSON() ([]byte, error) {
	return json.Marshal(T.frames)
}

//UnmarshalJSON decodes a trajectory encoded with MarshalJSON.
func (T *Trajectory) UnmarshalJSON(data []byte) error {
	var f []*Snapshot
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	T.frames = f
	return nil
}

//FrameReader adapts a Trajectory to goChem's Traj interface, so a sampled
//path can be fed directly to goChem's trajectory analysis functions.
type FrameReader struct {
	traj *Trajectory
	pos  int
}

//NewFrameReader returns a reader over T, positioned before the first frame.
func NewFrameReader(T *Trajectory) *FrameReader {
	return &FrameReader{traj: T}
}

//Readable tells whether there are frames left to read.
func (F *FrameReader) Readable() bool {
	return F.traj != nil && F.pos < F.traj.Len()
}

//Len returns the number of atoms per frame.
func (F *FrameReader) Len() int {
	if F.traj == nil || F.traj.Len() == 0 {
		return 0
	}
	return F.traj.Frame(0).Len()
}

//Next copies the next frame into output (which is skipped if nil, as in
//goChem) and, if given, fills box with the frame's box vectors. At the end
//of the trajectory it returns an error satisfying chem.LastFrameError.
func (F *FrameReader) Next(output *v3.Matrix, box ...[]float64) error {
	if !F.Readable() {
		return lastFrameError{}
	}
	s := F.traj.Frame(F.pos)
	F.pos++
	if output != nil {
		n := s.Coords.NVecs()
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				output.Set(i, j, s.Coords.At(i, j))
			}
		}
	}
	if len(box) > 0 && box[0] != nil && s.Box != nil {
		copy(box[0], s.Box)
	}
	return nil
}

//lastFrameError signals normal end-of-trajectory. It fulfills goChem's
//LastFrameError so the usual type switches filter it out.
type lastFrameError struct{}

func (err lastFrameError) Error() string { return "No more frames" }

func (err lastFrameError) Decorate(deco string) []string { return []string{} }

func (err lastFrameError) Critical() bool { return false }

func (err lastFrameError) FileName() string { return "" }

func (err lastFrameError) Format() string { return "gotps" }

func (err lastFrameError) NormalLastFrameTermination() {}
