/*
 * volume.go, part of gotps.
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

//CV is a collective variable: a pure function reducing a snapshot to one
//number (a distance, an angle, an RMSD...). CVs must be cheap relative to an
//integration step; they are re-evaluated after every step while generating.
type CV func(*Snapshot) float64

//Volume is a predicate over snapshots, defining a region of phase space.
//Stable states and TIS interfaces are volumes. Implementations must be
//stateless and safe for concurrent use.
type Volume interface {
	Contains(s *Snapshot) bool
}

//LambdaVolume is the volume where min <= cv(s) < max. The half-open
//interval means that stacking interfaces at shared endpoints tiles the CV
//axis without overlap.
type LambdaVolume struct {
	CV  CV
	Min float64
	Max float64
}

//NewLambdaVolume returns the volume with min <= cv < max.
func NewLambdaVolume(cv CV, min, max float64) (*LambdaVolume, error) {
	if cv == nil {
		return nil, NewConfigError("lambda volume needs a collective variable")
	}
	if min >= max {
		return nil, NewConfigError("lambda volume with min %v >= max %v", min, max)
	}
	return &LambdaVolume{CV: cv, Min: min, Max: max}, nil
}

//Contains tells whether s lies in the volume.
func (V *LambdaVolume) Contains(s *Snapshot) bool {
	l := V.CV(s)
	return l >= V.Min && l < V.Max
}

//UnionVolume is the union of its member volumes.
type UnionVolume struct {
	vols []Volume
}

//NewUnionVolume returns the union of the given volumes.
func NewUnionVolume(vols ...Volume) *UnionVolume {
	return &UnionVolume{vols: vols}
}

//Contains short-circuits on the first member containing s.
func (V *UnionVolume) Contains(s *Snapshot) bool {
	for _, v := range V.vols {
		if v.Contains(s) {
			return true
		}
	}
	return false
}

//IntersectVolume is the intersection of its member volumes.
type IntersectVolume struct {
	vols []Volume
}

//NewIntersectVolume returns the intersection of the given volumes.
func NewIntersectVolume(vols ...Volume) *IntersectVolume {
	return &IntersectVolume{vols: vols}
}

//Contains short-circuits on the first member not containing s.
func (V *IntersectVolume) Contains(s *Snapshot) bool {
	for _, v := range V.vols {
		if !v.Contains(s) {
			return false
		}
	}
	return true
}

//NegatedVolume is the complement of a volume.
type NegatedVolume struct {
	vol Volume
}

//NewNegatedVolume returns the complement of v.
func NewNegatedVolume(v Volume) *NegatedVolume {
	return &NegatedVolume{vol: v}
}

//Contains tells whether s lies outside the wrapped volume.
func (V *NegatedVolume) Contains(s *Snapshot) bool {
	return !V.vol.Contains(s)
}

//fullVolume contains every snapshot, emptyVolume none. Useful as neutral
//elements when building volumes programmatically.
type fullVolume struct{}

func (fullVolume) Contains(*Snapshot) bool { return true }

type emptyVolume struct{}

func (emptyVolume) Contains(*Snapshot) bool { return false }

//FullVolume returns the volume containing every snapshot.
func FullVolume() Volume { return fullVolume{} }

//EmptyVolume returns the volume containing no snapshot.
func EmptyVolume() Volume { return emptyVolume{} }
