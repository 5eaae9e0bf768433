/*
 * snapshot.go, part of gotps.
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
	"fmt"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
)

//Snapshot is one point-in-time state of the system: coordinates, velocities
//and box vectors, plus whatever opaque state the engine needs carried along
//(thermostat variables, RNG state...). Snapshots are immutable after
//creation. They may be shared by reference between many trajectories, which
//is what makes path moves cheap, so nothing may ever write to one. The
//topology is a shared reference too (goChem Atomer); it is bookkeeping for
//the engine and the collective variables, not part of the dynamical state,
//and it is not serialized with the snapshot.
type Snapshot struct {
	Coords      *v3.Matrix
	Vels        *v3.Matrix
	Box         []float64 //9 box-vector components, row-major. nil if no box.
	Topo        chem.Atomer
	EngineState []byte
}

//NewSnapshot builds a snapshot from coordinates and velocities, which must
//have the same number of vectors. The slices/matrices become owned by the
//snapshot: the caller must not write to them afterwards.
func NewSnapshot(coords, vels *v3.Matrix, box []float64) (*Snapshot, error) {
	if coords == nil || vels == nil {
		return nil, NewConfigError("snapshot needs both coordinates and velocities")
	}
	if coords.NVecs() != vels.NVecs() {
		return nil, NewConfigError("coordinates have %d vectors but velocities %d", coords.NVecs(), vels.NVecs())
	}
	if box != nil && len(box) != 9 {
		return nil, NewConfigError("box needs 9 components, got %d", len(box))
	}
	return &Snapshot{Coords: coords, Vels: vels, Box: box}, nil
}

//Len returns the number of atoms in the snapshot.
func (S *Snapshot) Len() int {
	return S.Coords.NVecs()
}

//Reverse returns the time-reversed snapshot: same coordinates (shared, not
//copied), negated velocities. Box, topology and engine state are shared.
func (S *Snapshot) Reverse() *Snapshot {
	n := S.Vels.NVecs()
	v := v3.Zeros(n)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			v.Set(i, j, -1*S.Vels.At(i, j))
		}
	}
	return &Snapshot{Coords: S.Coords, Vels: v, Box: S.Box, Topo: S.Topo, EngineState: S.EngineState}
}

//Equal compares the dynamical state of two snapshots by value. Topology and
//engine state are not compared.
func (S *Snapshot) Equal(T *Snapshot) bool {
	if S == nil || T == nil {
		return S == T
	}
	if S.Len() != T.Len() || len(S.Box) != len(T.Box) {
		return false
	}
	for i := 0; i < S.Len(); i++ {
		for j := 0; j < 3; j++ {
			if S.Coords.At(i, j) != T.Coords.At(i, j) || S.Vels.At(i, j) != T.Vels.At(i, j) {
				return false
			}
		}
	}
	for i, b := range S.Box {
		if T.Box[i] != b {
			return false
		}
	}
	return true
}

type snapshotJSON struct {
	N           int       `json:"n"`
	Coords      []float64 `json:"coords"`
	Vels        []float64 `json:"vels"`
	Box         []float64 `json:"box,omitempty"`
	EngineState []byte    `json:"enginestate,omitempty"`
}

func flatten(m *v3.Matrix) []float64 {
	n := m.NVecs()
	f := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		f = append(f, m.At(i, 0), m.At(i, 1), m.At(i, 2))
	}
	return f
}

//MarshalJSON encodes the dynamical state of the snapshot. The topology
//reference is deliberately left out; on load it has to be re-attached from
//the template (see the store subpackage).
func (S *Snapshot) MarshalJSON() ([]byte, error) {
	j := snapshotJSON{
		N:           S.Len(),
		Coords:      flatten(S.Coords),
		Vels:        flatten(S.Vels),
		Box:         S.Box,
		EngineState: S.EngineState,
	}
	return json.Marshal(j)
}

//UnmarshalJSON decodes a snapshot previously encoded with MarshalJSON.
func (S *Snapshot) UnmarshalJSON(data []byte) error {
	var j snapshotJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if len(j.Coords) != 3*j.N || len(j.Vels) != 3*j.N {
		return fmt.Errorf("malformed snapshot record: %d atoms, %d coords, %d vels", j.N, len(j.Coords), len(j.Vels))
	}
	coords, err := v3.NewMatrix(j.Coords)
	if err != nil {
		return err
	}
	vels, err := v3.NewMatrix(j.Vels)
	if err != nil {
		return err
	}
	S.Coords = coords
	S.Vels = vels
	S.Box = j.Box
	S.EngineState = j.EngineState
	return nil
}
