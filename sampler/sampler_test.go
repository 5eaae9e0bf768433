/*
 * sampler_test.go, part of gotps.
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

package sampler_test

import (
	"context"
	"math"
	"testing"

	v3 "github.com/rmera/gochem/v3"
	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/engine"
	"github.com/rmera/gotps/move"
	"github.com/rmera/gotps/network"
	"github.com/rmera/gotps/sampler"
	"github.com/rmera/gotps/scheme"
	"github.com/rmera/gotps/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func snapAt(x float64) *tps.Snapshot {
	c := v3.Zeros(1)
	c.Set(0, 0, x)
	v := v3.Zeros(1)
	v.Set(0, 0, 1)
	return &tps.Snapshot{Coords: c, Vels: v}
}

func trajAt(xs ...float64) *tps.Trajectory {
	snaps := make([]*tps.Snapshot, len(xs))
	for i, x := range xs {
		snaps[i] = snapAt(x)
	}
	return tps.NewTrajectory(snaps...)
}

func firstX(s *tps.Snapshot) float64 { return s.Coords.At(0, 0) }

//driftStepper moves x by dx along the velocity sign, deterministically.
type driftStepper struct {
	dx float64
}

func (d *driftStepper) Advance(s *tps.Snapshot) (*tps.Snapshot, error) {
	v := s.Vels.At(0, 0)
	next := snapAt(firstX(s) + math.Copysign(d.dx, v))
	next.Vels.Set(0, 0, v)
	return next, nil
}

//testSetup is one complete sampling problem on fake dynamics.
type testSetup struct {
	net *network.TransitionNetwork
	sch *scheme.Scheme
	set *tps.SampleSet
}

func setup(t *testing.T) *testSetup {
	A, err := tps.NewLambdaVolume(firstX, math.Inf(-1), -0.5)
	require.NoError(t, err)
	B, err := tps.NewLambdaVolume(firstX, 0.5, math.Inf(1))
	require.NoError(t, err)
	net, err := network.NewTPSNetwork(network.State{Name: "A", Vol: A}, network.State{Name: "B", Vol: B})
	require.NoError(t, err)
	gen, err := engine.NewGenerator(&driftStepper{dx: 0.25})
	require.NoError(t, err)
	sch, err := scheme.Default(net, gen, 1000)
	require.NoError(t, err)
	set, err := net.InitialSamples(trajAt(-0.75, -0.25, 0.0, 0.25, 0.75))
	require.NoError(t, err)
	return &testSetup{net: net, sch: sch, set: set}
}

func TestRunCommitsSteps(t *testing.T) {
	ts := setup(t)
	st := store.NewMemStore()
	smp, err := sampler.New(ts.sch, ts.set, st, 42)
	require.NoError(t, err)
	require.NoError(t, smp.Run(context.Background(), 25))
	assert.Equal(t, sampler.Completed, smp.State())
	assert.Equal(t, 25, smp.Cycle())
	n, err := st.Count(tps.KindStep)
	require.NoError(t, err)
	require.Equal(t, 25, n)
	//gap-free cycle numbers, committed state always sane
	ensembles := ts.net.SamplingEnsembles()
	for i := 0; i < n; i++ {
		step := new(sampler.Step)
		require.NoError(t, st.Load(tps.KindStep, i, step))
		assert.Equal(t, i, step.Cycle)
		set, err := step.Set(ensembles)
		require.NoError(t, err)
		require.NoError(t, set.SanityCheck())
	}
	kind, idx, err := st.Tagged("last")
	require.NoError(t, err)
	assert.Equal(t, tps.KindStep, kind)
	assert.Equal(t, 24, idx)
	require.NoError(t, smp.Set().SanityCheck())
}

//TestRunDeterministic: same seed, same scheme, same initial set give the
//same chain, step by step.
func TestRunDeterministic(t *testing.T) {
	run := func() []*sampler.Step {
		ts := setup(t)
		st := store.NewMemStore()
		smp, err := sampler.New(ts.sch, ts.set, st, 7)
		require.NoError(t, err)
		require.NoError(t, smp.Run(context.Background(), 30))
		n, err := st.Count(tps.KindStep)
		require.NoError(t, err)
		out := make([]*sampler.Step, n)
		for i := range out {
			out[i] = new(sampler.Step)
			require.NoError(t, st.Load(tps.KindStep, i, out[i]))
		}
		return out
	}
	a, b := run(), run()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Mover, b[i].Mover, "cycle %d", i)
		assert.Equal(t, a[i].Accepted, b[i].Accepted, "cycle %d", i)
		assert.Equal(t, a[i].Prob, b[i].Prob, "cycle %d", i)
	}
}

//TestRestore: running 12 cycles then 13 more from the stored state must
//give the same chain as 25 uninterrupted ones.
func TestRestore(t *testing.T) {
	full := store.NewMemStore()
	ts1 := setup(t)
	smp, err := sampler.New(ts1.sch, ts1.set, full, 99)
	require.NoError(t, err)
	require.NoError(t, smp.Run(context.Background(), 25))

	split := store.NewMemStore()
	ts2 := setup(t)
	first, err := sampler.New(ts2.sch, ts2.set, split, 99)
	require.NoError(t, err)
	require.NoError(t, first.Run(context.Background(), 12))
	second, err := sampler.Restore(ts2.sch, split, ts2.net.SamplingEnsembles(), 99)
	require.NoError(t, err)
	assert.Equal(t, 12, second.Cycle())
	require.NoError(t, second.Run(context.Background(), 13))

	for i := 0; i < 25; i++ {
		a, b := new(sampler.Step), new(sampler.Step)
		require.NoError(t, full.Load(tps.KindStep, i, a))
		require.NoError(t, split.Load(tps.KindStep, i, b))
		assert.Equal(t, a.Mover, b.Mover, "cycle %d", i)
		assert.Equal(t, a.Accepted, b.Accepted, "cycle %d", i)
		assert.Equal(t, a.Prob, b.Prob, "cycle %d", i)
		assert.Equal(t, a.RunID, b.RunID, "cycle %d", i)
	}
}

func TestRestoreEmptyStore(t *testing.T) {
	ts := setup(t)
	_, err := sampler.Restore(ts.sch, store.NewMemStore(), ts.net.SamplingEnsembles(), 1)
	assert.Error(t, err)
}

//failMover always reports an engine failure as a rejection.
type failMover struct {
	ens tps.Ensemble
}

func (m *failMover) Name() string { return "always-failing" }

func (m *failMover) Ensembles() []tps.Ensemble { return []tps.Ensemble{m.ens} }

func (m *failMover) Move(ctx context.Context, set *tps.SampleSet, rnd *rand.Rand) (*move.Result, error) {
	return &move.Result{Mover: m.Name(), Accepted: false, Reason: "engine failure"}, nil
}

//TestEngineFailureDoesNotAbort: engine failures are rejections, the chain
//keeps going and the committed set never changes.
func TestEngineFailureDoesNotAbort(t *testing.T) {
	ts := setup(t)
	ens := ts.net.SamplingEnsembles()[0]
	sch, err := scheme.New(scheme.Group{Name: "fail", Weight: 1, Movers: []move.Mover{&failMover{ens: ens}}})
	require.NoError(t, err)
	st := store.NewMemStore()
	smp, err := sampler.New(sch, ts.set, st, 3)
	require.NoError(t, err)
	require.NoError(t, smp.Run(context.Background(), 10))
	assert.Equal(t, sampler.Completed, smp.State())
	for i := 0; i < 10; i++ {
		step := new(sampler.Step)
		require.NoError(t, st.Load(tps.KindStep, i, step))
		assert.False(t, step.Accepted)
		assert.Equal(t, "engine failure", step.Reason)
	}
	restored, err := tps.SetFromRecords(smp.Set().Records(), []tps.Ensemble{ens})
	require.NoError(t, err)
	assert.True(t, restored.Equal(ts.set), "rejections changed the committed set")
}

func TestRunCanceled(t *testing.T) {
	ts := setup(t)
	st := store.NewMemStore()
	smp, err := sampler.New(ts.sch, ts.set, st, 5)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = smp.Run(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sampler.Idle, smp.State())
	//a fresh context resumes the same sampler
	require.NoError(t, smp.Run(context.Background(), 5))
	assert.Equal(t, 5, smp.Cycle())
}

//flakyStore fails every Save until unblocked, then works.
type flakyStore struct {
	*store.MemStore
	broken bool
}

func (f *flakyStore) Save(kind string, obj interface{}) (int, error) {
	if f.broken {
		return 0, &flakyErr{}
	}
	return f.MemStore.Save(kind, obj)
}

type flakyErr struct{}

func (*flakyErr) Error() string { return "store offline" }

func (*flakyErr) Decorate(deco string) []string { return nil }

func (*flakyErr) StorageError() {}

//TestFlushRetry: a temporarily failing store keeps steps in memory and
//commits them once it recovers; nothing is lost or duplicated.
func TestFlushRetry(t *testing.T) {
	ts := setup(t)
	fs := &flakyStore{MemStore: store.NewMemStore(), broken: true}
	smp, err := sampler.New(ts.sch, ts.set, fs, 11)
	require.NoError(t, err)
	smp.SetSaveFrequency(4)
	require.NoError(t, smp.Run(context.Background(), 3), "one failed flush must not abort")
	n, err := fs.Count(tps.KindStep)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	fs.broken = false
	require.NoError(t, smp.Run(context.Background(), 5))
	n, err = fs.Count(tps.KindStep)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	for i := 0; i < n; i++ {
		step := new(sampler.Step)
		require.NoError(t, fs.Load(tps.KindStep, i, step))
		assert.Equal(t, i, step.Cycle)
	}
}

//TestFlushAbortsAfterRepeatedFailures: a store that never recovers
//eventually aborts the sampler instead of hoarding steps forever.
func TestFlushAbortsAfterRepeatedFailures(t *testing.T) {
	ts := setup(t)
	fs := &flakyStore{MemStore: store.NewMemStore(), broken: true}
	smp, err := sampler.New(ts.sch, ts.set, fs, 11)
	require.NoError(t, err)
	smp.SetSaveFrequency(1)
	err = smp.Run(context.Background(), 50)
	require.Error(t, err)
	assert.True(t, tps.IsStorageError(err))
	assert.Equal(t, sampler.Aborted, smp.State())
	assert.Error(t, smp.Run(context.Background(), 1), "aborted sampler ran again")
}
