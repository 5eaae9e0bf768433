/*
 * toy_test.go, part of gotps.
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

package toy_test

import (
	"context"
	"math"
	"testing"

	v3 "github.com/rmera/gochem/v3"
	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/engine"
	"github.com/rmera/gotps/engine/toy"
	"github.com/rmera/gotps/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func oneAtom(x float64) *tps.Snapshot {
	c := v3.Zeros(1)
	c.Set(0, 0, x)
	v := v3.Zeros(1)
	s, err := tps.NewSnapshot(c, v, nil)
	if err != nil {
		panic(err)
	}
	return s
}

func TestDoubleWellForce(t *testing.T) {
	f := toy.DoubleWell(1, 1)
	out := v3.Zeros(1)
	//zero force at the minima and the barrier top
	for _, x := range []float64{-1, 0, 1} {
		f(oneAtom(x).Coords, out)
		assert.InDelta(t, 0.0, out.At(0, 0), 1e-12, "x=%v", x)
	}
	//restoring toward the nearest minimum
	f(oneAtom(0.5).Coords, out)
	assert.Positive(t, out.At(0, 0))
	f(oneAtom(-0.5).Coords, out)
	assert.Negative(t, out.At(0, 0))
	f(oneAtom(1.5).Coords, out)
	assert.Negative(t, out.At(0, 0))
}

func TestHarmonicForce(t *testing.T) {
	f := toy.Harmonic(2)
	out := v3.Zeros(1)
	f(oneAtom(0.3).Coords, out)
	assert.InDelta(t, -0.6, out.At(0, 0), 1e-12)
}

//TestLangevinDeterminism: two steppers with identical parameters and seed
//must generate identical trajectories.
func TestLangevinDeterminism(t *testing.T) {
	mk := func(seed uint64) *toy.Langevin {
		L, err := toy.NewLangevin(toy.DoubleWell(2, 1), 0.01, 1.0, 0.5, 1.0, seed)
		require.NoError(t, err)
		return L
	}
	a, b := mk(42), mk(42)
	sa, sb := oneAtom(-1), oneAtom(-1)
	for i := 0; i < 50; i++ {
		var err error
		sa, err = a.Advance(sa)
		require.NoError(t, err)
		sb, err = b.Advance(sb)
		require.NoError(t, err)
		require.True(t, sa.Equal(sb), "trajectories diverge at step %d", i)
	}
	c := mk(43)
	sc, err := c.Advance(oneAtom(-1))
	require.NoError(t, err)
	first, err := mk(42).Advance(oneAtom(-1))
	require.NoError(t, err)
	assert.False(t, sc.Equal(first), "different seeds gave the same step")
}

func TestLangevinImmutableInput(t *testing.T) {
	L, err := toy.NewLangevin(toy.DoubleWell(2, 1), 0.01, 1.0, 0.5, 1.0, 7)
	require.NoError(t, err)
	s := oneAtom(-1)
	_, err = L.Advance(s)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, s.Coords.At(0, 0), 0, "Advance modified its input")
	assert.InDelta(t, 0.0, s.Vels.At(0, 0), 0)
}

func TestLangevinValidation(t *testing.T) {
	_, err := toy.NewLangevin(nil, 0.01, 1, 1, 1, 0)
	assert.Error(t, err)
	_, err = toy.NewLangevin(toy.Harmonic(1), -0.01, 1, 1, 1, 0)
	assert.Error(t, err)
	_, err = toy.NewLangevin(toy.Harmonic(1), 0.01, 1, 1, 0, 0)
	assert.Error(t, err)
}

func TestLangevinFailureOnBlowUp(t *testing.T) {
	blowUp := func(coords, out *v3.Matrix) {
		out.Set(0, 0, math.Inf(1))
	}
	L, err := toy.NewLangevin(blowUp, 0.01, 1.0, 0.5, 1.0, 7)
	require.NoError(t, err)
	_, err = L.Advance(oneAtom(0))
	require.Error(t, err)
	assert.True(t, tps.IsEngineFailure(err))
}

func TestLangevinPlatforms(t *testing.T) {
	L, err := toy.NewLangevin(toy.Harmonic(1), 0.01, 1, 1, 1, 0)
	require.NoError(t, err)
	assert.NoError(t, L.SelectPlatform(""))
	assert.NoError(t, L.SelectPlatform("CPU"))
	err = L.SelectPlatform("CUDA")
	require.Error(t, err)
	_, ok := err.(tps.UnsupportedPlatform)
	assert.True(t, ok)
}

//TestLangevinFork: forks are deterministic (the nth fork always carries
//the same noise sequence) and independent of the parent.
func TestLangevinFork(t *testing.T) {
	mk := func() *toy.Langevin {
		L, err := toy.NewLangevin(toy.DoubleWell(2, 1), 0.01, 1.0, 0.5, 1.0, 42)
		require.NoError(t, err)
		return L
	}
	f1 := mk().Fork()
	f2 := mk().Fork()
	s1, err := f1.Advance(oneAtom(-1))
	require.NoError(t, err)
	s2, err := f2.Advance(oneAtom(-1))
	require.NoError(t, err)
	assert.True(t, s1.Equal(s2), "first forks of equal steppers differ")
	parent := mk()
	child := parent.Fork()
	ps, err := parent.Advance(oneAtom(-1))
	require.NoError(t, err)
	cs, err := child.Advance(oneAtom(-1))
	require.NoError(t, err)
	assert.False(t, ps.Equal(cs), "fork shares the parent noise sequence")
}

//TestLangevinCrossesBarrier runs the double well hot enough to cross:
//generation stops on first arrival in the product state, and the raw
//trajectory must contain a valid transition path for the network.
func TestLangevinCrossesBarrier(t *testing.T) {
	L, err := toy.NewLangevin(toy.DoubleWell(1.0, 1.0), 0.05, 1.0, 1.5, 1.0, 11)
	require.NoError(t, err)
	gen, err := engine.NewGenerator(L)
	require.NoError(t, err)
	A, err := tps.NewLambdaVolume(toy.FirstX, math.Inf(-1), -0.7)
	require.NoError(t, err)
	B, err := tps.NewLambdaVolume(toy.FirstX, 0.7, math.Inf(1))
	require.NoError(t, err)
	init := oneAtom(-1)
	init.Vels = toy.RandomVelocities(1, 1.5, 1.0, rand.NewSource(11))
	stop := []tps.Ensemble{tps.NewAllOutXEnsemble(B)}
	traj, status, err := gen.Generate(context.Background(), init, stop, engine.Forward, 200000)
	require.NoError(t, err)
	require.Equal(t, engine.EnsembleStopped, status, "no crossing within the step budget")
	require.True(t, B.Contains(traj.Last()))
	net, err := network.NewTPSNetwork(network.State{Name: "A", Vol: A}, network.State{Name: "B", Vol: B})
	require.NoError(t, err)
	set, err := net.InitialSamples(traj)
	require.NoError(t, err)
	require.NoError(t, set.SanityCheck())
}

func TestRandomVelocities(t *testing.T) {
	v := toy.RandomVelocities(100, 2.0, 1.0, rand.NewSource(3))
	require.Equal(t, 100, v.NVecs())
	sum := 0.0
	for i := 0; i < 100; i++ {
		for j := 0; j < 3; j++ {
			sum += v.At(i, j) * v.At(i, j)
		}
	}
	//<v^2> per component is kT/m = 2
	assert.InDelta(t, 2.0, sum/300, 0.3)
}
