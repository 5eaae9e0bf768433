/*
 * shooting.go, part of gotps.
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

package move

import (
	"context"

	v3 "github.com/rmera/gochem/v3"
	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/engine"
	"golang.org/x/exp/rand"
)

//prefixedEnsemble evaluates an ensemble on prefix+t, so the generation
//engine can test the whole spliced candidate while only growing the new
//segment. Used by forward shooting.
type prefixedEnsemble struct {
	prefix *tps.Trajectory
	inner  tps.Ensemble
}

func (E prefixedEnsemble) IsValid(t *tps.Trajectory) bool   { return E.inner.IsValid(E.prefix.Concat(t)) }
func (E prefixedEnsemble) CanAppend(t *tps.Trajectory) bool { return E.inner.CanAppend(E.prefix.Concat(t)) }
func (E prefixedEnsemble) StrictCanAppend(t *tps.Trajectory) bool {
	return E.inner.StrictCanAppend(E.prefix.Concat(t))
}
func (E prefixedEnsemble) CanPrepend(t *tps.Trajectory) bool {
	return E.inner.CanPrepend(E.prefix.Concat(t))
}
func (E prefixedEnsemble) StrictCanPrepend(t *tps.Trajectory) bool {
	return E.inner.StrictCanPrepend(E.prefix.Concat(t))
}

//suffixedEnsemble is the mirror for backward shooting: it evaluates the
//ensemble on t+suffix.
type suffixedEnsemble struct {
	suffix *tps.Trajectory
	inner  tps.Ensemble
}

func (E suffixedEnsemble) IsValid(t *tps.Trajectory) bool   { return E.inner.IsValid(t.Concat(E.suffix)) }
func (E suffixedEnsemble) CanAppend(t *tps.Trajectory) bool { return E.inner.CanAppend(t.Concat(E.suffix)) }
func (E suffixedEnsemble) StrictCanAppend(t *tps.Trajectory) bool {
	return E.inner.StrictCanAppend(t.Concat(E.suffix))
}
func (E suffixedEnsemble) CanPrepend(t *tps.Trajectory) bool {
	return E.inner.CanPrepend(t.Concat(E.suffix))
}
func (E suffixedEnsemble) StrictCanPrepend(t *tps.Trajectory) bool {
	return E.inner.StrictCanPrepend(t.Concat(E.suffix))
}

//OneWayShooting regrows one side of the current path from a selected
//shooting point, keeping the velocities of deterministic-reversible
//dynamics untouched. With the Metropolis rule and a uniform selector this
//is the classic accept-if-valid shooting move with the path-length
//correction.
type OneWayShooting struct {
	name      string
	ens       tps.Ensemble
	sel       Selector
	gen       *engine.Generator
	maxLength int
	dir       engine.Direction
	both      bool
	rule      AcceptanceRule
}

//NewForwardShooting returns a mover that always regrows the forward
//(later-time) side of the path in ens. maxLength bounds the whole spliced
//candidate, not just the new segment; maxLength <= 0 means unbounded.
func NewForwardShooting(ens tps.Ensemble, sel Selector, gen *engine.Generator, maxLength int) (*OneWayShooting, error) {
	return newShooting("forward-shooting", ens, sel, gen, maxLength, engine.Forward, false)
}

//NewBackwardShooting returns a mover that always regrows the backward side.
func NewBackwardShooting(ens tps.Ensemble, sel Selector, gen *engine.Generator, maxLength int) (*OneWayShooting, error) {
	return newShooting("backward-shooting", ens, sel, gen, maxLength, engine.Backward, false)
}

//NewOneWayShooting returns a mover that picks the direction at random on
//every trial, as the usual one-way scheme does.
func NewOneWayShooting(ens tps.Ensemble, sel Selector, gen *engine.Generator, maxLength int) (*OneWayShooting, error) {
	return newShooting("one-way-shooting", ens, sel, gen, maxLength, engine.Forward, true)
}

func newShooting(name string, ens tps.Ensemble, sel Selector, gen *engine.Generator, maxLength int, dir engine.Direction, both bool) (*OneWayShooting, error) {
	if ens == nil || sel == nil || gen == nil {
		return nil, newError("%s needs an ensemble, a selector and a generator", name)
	}
	return &OneWayShooting{name: name, ens: ens, sel: sel, gen: gen, maxLength: maxLength, dir: dir, both: both, rule: Metropolis}, nil
}

//SetRule replaces the acceptance rule (default Metropolis).
func (M *OneWayShooting) SetRule(r AcceptanceRule) {
	M.rule = r
}

func (M *OneWayShooting) Name() string { return M.name }

func (M *OneWayShooting) Ensembles() []tps.Ensemble { return []tps.Ensemble{M.ens} }

func (M *OneWayShooting) Move(ctx context.Context, set *tps.SampleSet, rnd *rand.Rand) (*Result, error) {
	s := set.ForEnsemble(M.ens)
	if s == nil {
		return nil, newError("%s: no sample for this mover's ensemble", M.name)
	}
	dir := M.dir
	if M.both {
		if rnd.Intn(2) == 0 {
			dir = engine.Forward
		} else {
			dir = engine.Backward
		}
	}
	old := s.Traj
	idx, err := M.sel.Pick(old, rnd)
	if err != nil {
		return nil, err
	}
	var kept, seg *tps.Trajectory
	var status engine.Status
	budget := 0
	if dir == engine.Forward {
		kept = old.Subtraj(0, idx)
		if M.maxLength > 0 {
			if budget = M.maxLength - kept.Len(); budget < 1 {
				return M.rejected("max length", nil), nil
			}
		}
		stop := []tps.Ensemble{prefixedEnsemble{prefix: kept, inner: M.ens}}
		seg, status, err = M.gen.Generate(ctx, old.Frame(idx), stop, engine.Forward, budget)
	} else {
		kept = old.Subtraj(idx+1, old.Len())
		if M.maxLength > 0 {
			if budget = M.maxLength - kept.Len(); budget < 1 {
				return M.rejected("max length", nil), nil
			}
		}
		stop := []tps.Ensemble{suffixedEnsemble{suffix: kept, inner: M.ens}}
		seg, status, err = M.gen.Generate(ctx, old.Frame(idx), stop, engine.Backward, budget)
	}
	switch status {
	case engine.Canceled:
		return nil, err
	case engine.Failed:
		return M.rejected("engine failure", nil), nil
	case engine.MaxLengthReached:
		return M.rejected("max length", nil), nil
	}
	var cand *tps.Sample
	if dir == engine.Forward {
		cand = &tps.Sample{Traj: kept.Concat(seg), Ens: M.ens, Replica: s.Replica}
	} else {
		cand = &tps.Sample{Traj: seg.Concat(kept), Ens: M.ens, Replica: s.Replica}
	}
	den := M.sel.SumBias(cand.Traj)
	if den == 0 {
		return M.rejected("degenerate candidate", cand), nil
	}
	prob, accepted := M.rule(s, cand, M.sel.SumBias(old)/den, rnd)
	res := &Result{Mover: M.name, Accepted: accepted, Prob: prob, Trial: cand}
	if accepted {
		res.Samples = []*tps.Sample{cand}
	} else {
		res.Reason = "rejected by acceptance rule"
	}
	return res, nil
}

func (M *OneWayShooting) rejected(reason string, trial *tps.Sample) *Result {
	return &Result{Mover: M.name, Accepted: false, Prob: 0, Trial: trial, Reason: reason}
}

//VelocityModifier perturbs the shooting-point snapshot, returning a new
//snapshot (the input is immutable, as all snapshots).
type VelocityModifier func(s *tps.Snapshot, rnd *rand.Rand) *tps.Snapshot

//NoModification returns the snapshot unchanged.
func NoModification(s *tps.Snapshot, rnd *rand.Rand) *tps.Snapshot { return s }

//GaussianKick returns a modifier adding zero-mean Gaussian noise of the
//given width to every velocity component. The kick is symmetric, so it
//needs no extra factor in the acceptance probability.
func GaussianKick(sigma float64) VelocityModifier {
	return func(s *tps.Snapshot, rnd *rand.Rand) *tps.Snapshot {
		n := s.Vels.NVecs()
		v := v3.Zeros(n)
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				v.Set(i, j, s.Vels.At(i, j)+sigma*rnd.NormFloat64())
			}
		}
		return &tps.Snapshot{Coords: s.Coords, Vels: v, Box: s.Box, Topo: s.Topo, EngineState: s.EngineState}
	}
}

//TwoWayShooting perturbs the velocities at the shooting point and regrows
//the path on both sides, each side stopping when it reaches a stable
//state. The two segments are independent and run concurrently when the
//stepper can fork. Acceptance is by the pluggable rule; with a velocity
//perturbation the default validity-based Metropolis rule is the usual
//choice.
type TwoWayShooting struct {
	name      string
	ens       tps.Ensemble
	stop      []tps.Ensemble
	sel       Selector
	gen       *engine.Generator
	modify    VelocityModifier
	maxLength int
	rule      AcceptanceRule
}

//NewTwoWayShooting returns a two-way shooting mover for ens. states must
//be the union of all stable state volumes: each regrown segment stops on
//reaching it.
func NewTwoWayShooting(ens tps.Ensemble, states tps.Volume, sel Selector, gen *engine.Generator, modify VelocityModifier, maxLength int) (*TwoWayShooting, error) {
	if ens == nil || states == nil || sel == nil || gen == nil {
		return nil, newError("two-way shooting needs an ensemble, states, a selector and a generator")
	}
	if modify == nil {
		modify = NoModification
	}
	return &TwoWayShooting{
		name:      "two-way-shooting",
		ens:       ens,
		stop:      []tps.Ensemble{tps.NewAllOutXEnsemble(states)},
		sel:       sel,
		gen:       gen,
		modify:    modify,
		maxLength: maxLength,
		rule:      Metropolis,
	}, nil
}

//SetRule replaces the acceptance rule (default Metropolis).
func (M *TwoWayShooting) SetRule(r AcceptanceRule) {
	M.rule = r
}

func (M *TwoWayShooting) Name() string { return M.name }

func (M *TwoWayShooting) Ensembles() []tps.Ensemble { return []tps.Ensemble{M.ens} }

type segment struct {
	traj   *tps.Trajectory
	status engine.Status
	err    error
}

func (M *TwoWayShooting) Move(ctx context.Context, set *tps.SampleSet, rnd *rand.Rand) (*Result, error) {
	s := set.ForEnsemble(M.ens)
	if s == nil {
		return nil, newError("%s: no sample for this mover's ensemble", M.name)
	}
	old := s.Traj
	idx, err := M.sel.Pick(old, rnd)
	if err != nil {
		return nil, err
	}
	point := M.modify(old.Frame(idx), rnd)
	var fwd, bwd segment
	if bgen, ferr := M.gen.Fork(); ferr == nil {
		//both segments depend only on the shooting point; run them in
		//parallel, each on its own generator
		done := make(chan segment, 1)
		go func() {
			var sg segment
			sg.traj, sg.status, sg.err = bgen.Generate(ctx, point, M.stop, engine.Backward, M.maxLength)
			done <- sg
		}()
		fwd.traj, fwd.status, fwd.err = M.gen.Generate(ctx, point, M.stop, engine.Forward, M.maxLength)
		bwd = <-done
	} else {
		bwd.traj, bwd.status, bwd.err = M.gen.Generate(ctx, point, M.stop, engine.Backward, M.maxLength)
		fwd.traj, fwd.status, fwd.err = M.gen.Generate(ctx, point, M.stop, engine.Forward, M.maxLength)
	}
	for _, sg := range []segment{fwd, bwd} {
		switch sg.status {
		case engine.Canceled:
			return nil, sg.err
		case engine.Failed:
			return &Result{Mover: M.name, Accepted: false, Reason: "engine failure"}, nil
		case engine.MaxLengthReached:
			return &Result{Mover: M.name, Accepted: false, Reason: "max length"}, nil
		}
	}
	//the shooting point is the last frame of the backward segment and the
	//first of the forward one; keep a single copy
	traj := bwd.traj.Concat(fwd.traj.Subtraj(1, fwd.traj.Len()))
	if M.maxLength > 0 && traj.Len() > M.maxLength {
		return &Result{Mover: M.name, Accepted: false, Reason: "max length"}, nil
	}
	cand := &tps.Sample{Traj: traj, Ens: M.ens, Replica: s.Replica}
	den := M.sel.SumBias(traj)
	if den == 0 {
		return &Result{Mover: M.name, Accepted: false, Trial: cand, Reason: "degenerate candidate"}, nil
	}
	prob, accepted := M.rule(s, cand, M.sel.SumBias(old)/den, rnd)
	res := &Result{Mover: M.name, Accepted: accepted, Prob: prob, Trial: cand}
	if accepted {
		res.Samples = []*tps.Sample{cand}
	} else {
		res.Reason = "rejected by acceptance rule"
	}
	return res, nil
}
