/*
 * toy.go, part of gotps.
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

//Package toy provides a small Langevin integrator on analytic potentials.
//It is the reference engine of gotps: enough physics to exercise the whole
//sampling machinery (metastable wells, stochastic crossings) while staying
//cheap and fully deterministic under a seeded source. Real simulations
//plug a real engine through gotps.Stepper instead.
package toy

import (
	"math"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/engine"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//Force fills out with the force on each atom given the coordinates. out
//has the same shape as coords and arrives zeroed.
type Force func(coords, out *v3.Matrix)

//DoubleWell returns the force of the canonical double-well potential
//E = h*(1-(x/w)^2)^2 acting on the x coordinate of atom 0. The minima sit
//at x = -w and x = +w with a barrier of height h between them.
func DoubleWell(h, w float64) Force {
	return func(coords, out *v3.Matrix) {
		x := coords.At(0, 0)
		u := x / w
		//dE/dx = -4h/w * u * (1-u^2)
		out.Set(0, 0, 4*h/w*u*(1-u*u))
	}
}

//Harmonic returns the force of an isotropic harmonic restraint of constant
//k centered at the origin, acting on every atom.
func Harmonic(k float64) Force {
	return func(coords, out *v3.Matrix) {
		n := coords.NVecs()
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				out.Set(i, j, -k*coords.At(i, j))
			}
		}
	}
}

//FirstX is the collective variable "x coordinate of atom 0", the natural
//order parameter for the one-particle potentials above.
func FirstX(s *tps.Snapshot) float64 {
	return s.Coords.At(0, 0)
}

//Langevin integrates underdamped Langevin dynamics with the BAOAB-like
//splitting: kick, friction+noise, drift. It fulfills gotps.Stepper,
//gotps.ForkableStepper and gotps.PlatformSelector (single platform, "CPU").
type Langevin struct {
	force    Force
	topo     chem.Atomer
	dt       float64
	friction float64
	kT       float64
	mass     float64
	seed     uint64
	forks    uint64
	normal   distuv.Normal
}

//NewLangevin returns a Langevin stepper. dt is the time step, friction the
//collision rate, kT the thermal energy and mass the (single, shared) atom
//mass. The seed fixes the noise sequence: two steppers built with the same
//arguments generate identical trajectories.
func NewLangevin(force Force, dt, friction, kT, mass float64, seed uint64) (*Langevin, error) {
	if force == nil {
		return nil, tps.NewConfigError("langevin stepper needs a force")
	}
	if dt <= 0 || friction < 0 || kT < 0 || mass <= 0 {
		return nil, tps.NewConfigError("langevin stepper with nonpositive dt/mass or negative friction/kT")
	}
	L := &Langevin{force: force, dt: dt, friction: friction, kT: kT, mass: mass, seed: seed}
	L.normal = distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	return L, nil
}

//SetTopology attaches a topology reference that will be carried by every
//generated snapshot. Optional; the integrator itself never reads it.
func (L *Langevin) SetTopology(t chem.Atomer) {
	L.topo = t
}

//SelectPlatform accepts only the trivial platforms of a pure-Go engine.
func (L *Langevin) SelectPlatform(name string) error {
	if name == "" || name == "CPU" || name == "reference" {
		return nil
	}
	return engine.PlatformUnsupported(name)
}

//Fork returns an independent stepper with the same parameters and a noise
//sequence derived from the parent seed. Deterministic: the nth fork of a
//given stepper always gets the same sequence.
func (L *Langevin) Fork() tps.Stepper {
	L.forks++
	child := &Langevin{force: L.force, topo: L.topo, dt: L.dt, friction: L.friction, kT: L.kT, mass: L.mass}
	child.seed = L.seed + 0x9e3779b97f4a7c15*L.forks
	child.normal = distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(child.seed)}
	return child
}

//Advance integrates one step. It never modifies s. A non-finite
//coordinate or velocity is reported as an engine failure.
func (L *Langevin) Advance(s *tps.Snapshot) (*tps.Snapshot, error) {
	n := s.Coords.NVecs()
	f := v3.Zeros(n)
	L.force(s.Coords, f)
	x := v3.Zeros(n)
	v := v3.Zeros(n)
	a := math.Exp(-L.friction * L.dt)
	b := math.Sqrt((1 - a*a) * L.kT / L.mass)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			//kick
			vel := s.Vels.At(i, j) + L.dt*f.At(i, j)/L.mass
			//friction + noise
			vel = a*vel + b*L.normal.Rand()
			//drift
			pos := s.Coords.At(i, j) + L.dt*vel
			if math.IsNaN(pos) || math.IsInf(pos, 0) || math.IsNaN(vel) || math.IsInf(vel, 0) {
				return nil, engine.NewFailure("non-finite state at atom %d component %d", i, j)
			}
			x.Set(i, j, pos)
			v.Set(i, j, vel)
		}
	}
	return &tps.Snapshot{Coords: x, Vels: v, Box: s.Box, Topo: L.topo, EngineState: s.EngineState}, nil
}

//RandomVelocities draws Maxwell-Boltzmann velocities for n atoms of the
//given mass at temperature kT, using the given source. Used to build
//initial snapshots and by two-way shooting movers.
func RandomVelocities(n int, kT, mass float64, src rand.Source) *v3.Matrix {
	normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt(kT / mass), Src: src}
	v := v3.Zeros(n)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			v.Set(i, j, normal.Rand())
		}
	}
	return v
}
