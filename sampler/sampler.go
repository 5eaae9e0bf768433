/*
 * sampler.go, part of gotps.
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

//Package sampler drives the Monte Carlo chain: each cycle selects one move
//from the scheme, applies it to the current sample set, commits the
//accept/reject outcome as a Step and periodically flushes the step log to
//the object store. The chain is strictly sequential; all parallelism lives
//below, inside the moves.
package sampler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/move"
	"github.com/rmera/gotps/scheme"
	"golang.org/x/exp/rand"
)

//State of the cycle driver.
type State int

const (
	Idle State = iota
	Running
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

//mixing constant for the per-cycle seeds (splitmix64's golden gamma).
const seedGamma = 0x9e3779b97f4a7c15

//maxFlushFailures is how many save-frequency boundaries may fail in a row,
//with the pending steps kept in memory, before the sampler aborts.
const maxFlushFailures = 3

//PathSampler owns a sample set and evolves it by Monte Carlo cycles.
//
//Every cycle draws its randomness from a fresh source seeded by (seed,
//cycle number), so a run is bit-reproducible and a resumed run continues
//exactly as the uninterrupted one would have: determinism only depends on
//the base seed and the cycle counter, not on in-memory RNG state.
type PathSampler struct {
	scheme        *scheme.Scheme
	set           *tps.SampleSet
	store         tps.Store
	log           *slog.Logger
	seed          uint64
	runID         string
	cycle         int
	state         State
	saveFrequency int
	pending       []*Step
	flushFailures int
}

//New returns a sampler over the given scheme, initial sample set and
//store. The initial set is sanity-checked: a sampler never starts on a
//set violating the one-valid-sample-per-ensemble invariant.
func New(sch *scheme.Scheme, set *tps.SampleSet, store tps.Store, seed uint64) (*PathSampler, error) {
	if sch == nil || set == nil || store == nil {
		return nil, tps.NewConfigError("sampler needs a scheme, a sample set and a store")
	}
	if err := set.SanityCheck(); err != nil {
		return nil, err
	}
	return &PathSampler{
		scheme:        sch,
		set:           set,
		store:         store,
		log:           slog.Default(),
		seed:          seed,
		runID:         runID(seed),
		saveFrequency: 10,
	}, nil
}

//Restore rebuilds a sampler from the newest committed step in the store,
//continuing the cycle counter. ensembles must be the same canonical list
//(same order) the original run used; the network provides it. The base
//seed must also match for the continued run to reproduce an uninterrupted
//one.
func Restore(sch *scheme.Scheme, store tps.Store, ensembles []tps.Ensemble, seed uint64) (*PathSampler, error) {
	if sch == nil || store == nil {
		return nil, tps.NewConfigError("restore needs a scheme and a store")
	}
	n, err := store.Count(tps.KindStep)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, tps.NewConfigError("store holds no steps to restore from")
	}
	last := new(Step)
	if err := store.Load(tps.KindStep, n-1, last); err != nil {
		return nil, err
	}
	set, err := last.Set(ensembles)
	if err != nil {
		return nil, err
	}
	if err := set.SanityCheck(); err != nil {
		return nil, err
	}
	if last.Cycle != n-1 {
		return nil, tps.NewSanityError("step log has gaps: %d steps but last cycle is %d", n, last.Cycle)
	}
	s, err := New(sch, set, store, seed)
	if err != nil {
		return nil, err
	}
	s.cycle = last.Cycle + 1
	s.runID = last.RunID
	return s, nil
}

//runID derives the run identifier from the seed, so reproduced runs carry
//reproducible step records.
func runID(seed uint64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("gotps-run-%d", seed))).String()
}

//SetSaveFrequency sets how many cycles may pass between flushes of the
//step log (default 10). The log is always flushed at the end of Run.
func (P *PathSampler) SetSaveFrequency(n int) {
	if n > 0 {
		P.saveFrequency = n
	}
}

//SetLogger replaces the structured logger (default slog.Default()).
func (P *PathSampler) SetLogger(l *slog.Logger) {
	if l != nil {
		P.log = l
	}
}

//State returns the state of the cycle driver.
func (P *PathSampler) State() State {
	return P.state
}

//Cycle returns the next cycle number to run.
func (P *PathSampler) Cycle() int {
	return P.cycle
}

//Set returns the current committed sample set.
func (P *PathSampler) Set() *tps.SampleSet {
	return P.set
}

//Run executes n Monte Carlo cycles. A rejected move is a normal outcome:
//it commits a step with the unchanged sample set and advances the cycle
//counter. Engine failures inside a move reject that move's trial and the
//run continues. Cancellation through ctx stops cleanly between cycles,
//with everything committed so far flushed and the sampler left idle
//for a later Run. Fatal errors (corrupt sample set, misconfigured move,
//persistently failing store) abort the sampler.
func (P *PathSampler) Run(ctx context.Context, n int) error {
	if P.state == Aborted {
		return tps.NewSanityError("sampler is aborted, refusing to run")
	}
	P.state = Running
	P.log.Info("path sampling run", "cycles", n, "start", P.cycle, "run", P.runID)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			if err := P.tryFlush(); err != nil {
				P.state = Aborted
				return err
			}
			P.state = Idle
			return ctx.Err()
		default:
		}
		if err := P.cycleOnce(ctx); err != nil {
			//flushing is best-effort here; the abort error wins
			P.flush()
			P.state = Aborted
			return err
		}
		if len(P.pending) >= P.saveFrequency {
			if err := P.tryFlush(); err != nil {
				P.state = Aborted
				return err
			}
		}
	}
	if err := P.tryFlush(); err != nil {
		P.state = Aborted
		return err
	}
	P.state = Completed
	P.log.Info("path sampling done", "next", P.cycle, "pending", len(P.pending), "run", P.runID)
	return nil
}

//tryFlush flushes and tolerates transient store trouble: pending steps
//stay in memory across a failed flush, and only maxFlushFailures
//consecutive failures are fatal.
func (P *PathSampler) tryFlush() error {
	err := P.flush()
	if err == nil {
		P.flushFailures = 0
		return nil
	}
	P.flushFailures++
	if P.flushFailures >= maxFlushFailures {
		return err
	}
	P.log.Warn("step flush failed, keeping steps in memory", "pending", len(P.pending), "failures", P.flushFailures, "err", err)
	return nil
}

func (P *PathSampler) cycleOnce(ctx context.Context) error {
	rnd := rand.New(rand.NewSource(P.seed + seedGamma*uint64(P.cycle+1)))
	mover, group := P.scheme.Choose(rnd)
	res, err := mover.Move(ctx, P.set, rnd)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if tps.IsEngineFailure(err) {
			//a mover normally converts these itself; a stray one still only
			//costs the trial
			res = &move.Result{Mover: mover.Name(), Accepted: false, Reason: "engine failure"}
		} else {
			return err
		}
	}
	if res.Accepted {
		next := P.set.ApplySamples(res.Samples...)
		if err := next.SanityCheck(); err != nil {
			return err
		}
		P.set = next
	}
	step := &Step{
		Cycle:    P.cycle,
		RunID:    P.runID,
		Mover:    res.Mover,
		Group:    group,
		Accepted: res.Accepted,
		Prob:     res.Prob,
		Reason:   res.Reason,
		Samples:  P.set.Records(),
	}
	P.pending = append(P.pending, step)
	P.log.Debug("cycle", "n", P.cycle, "group", group, "mover", res.Mover, "accepted", res.Accepted, "prob", res.Prob)
	P.cycle++
	return nil
}

//flush commits the pending steps to the store, in order, stopping at the
//first failure and keeping the unsaved tail in memory. A step's store
//index must equal its cycle number; anything else means the log was
//corrupted and is fatal.
func (P *PathSampler) flush() error {
	for len(P.pending) > 0 {
		step := P.pending[0]
		idx, err := P.store.Save(tps.KindStep, step)
		if err != nil {
			return err
		}
		if idx != step.Cycle {
			return tps.NewSanityError("step for cycle %d stored at index %d", step.Cycle, idx)
		}
		//the tag is a convenience pointer, losing it is recoverable
		if err := P.store.Tag("last", tps.KindStep, idx); err != nil {
			P.log.Warn("could not tag newest step", "cycle", step.Cycle, "err", err)
		}
		P.pending = P.pending[1:]
	}
	return nil
}
