/*
 * engine.go, part of gotps.
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

//Package engine generates trajectories by coupling a Stepper (the actual
//physics) to path-ensemble stopping conditions: after every integration
//step the running trajectory is re-tested against the ensembles, and
//generation stops as soon as any of them says the path may not grow
//further. The package does not know any physics; the toy subpackage has a
//small built-in integrator, and any other engine can be plugged through
//gotps.Stepper.
package engine

import (
	"context"
	"fmt"

	tps "github.com/rmera/gotps"
)

//Direction of trajectory generation.
type Direction int

const (
	//Forward grows the trajectory at its end, advancing time.
	Forward Direction = iota
	//Backward grows the trajectory at its beginning: the initial snapshot
	//is time-reversed, integrated forward, and the result reversed again,
	//so the returned trajectory is always in physical time order.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

//Status reports why generation stopped. Callers must distinguish the
//max-length safeguard from a proper ensemble stop: a truncated path is not
//a sampling outcome.
type Status int

const (
	//EnsembleStopped: some ensemble said the path may not be extended.
	EnsembleStopped Status = iota
	//MaxLengthReached: the safeguard fired before any ensemble stopped.
	MaxLengthReached
	//Failed: the stepper reported a fatal numerical failure.
	Failed
	//Canceled: the context was canceled between steps.
	Canceled
)

func (s Status) String() string {
	switch s {
	case EnsembleStopped:
		return "ensemble-stopped"
	case MaxLengthReached:
		return "max-length"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

//Generator wraps a Stepper and runs the generation loop. One Generator
//generates one trajectory at a time (step n+1 needs step n's output);
//independent trajectories can be generated concurrently by independent
//Generators, which Fork provides when the stepper supports it.
type Generator struct {
	stepper tps.Stepper
}

//NewGenerator returns a generator over the given stepper.
func NewGenerator(st tps.Stepper) (*Generator, error) {
	if st == nil {
		return nil, tps.NewConfigError("generator needs a stepper")
	}
	return &Generator{stepper: st}, nil
}

//SelectPlatform asks the underlying stepper for a platform (CPU, CUDA...).
//Steppers that do not implement platform selection only accept the empty
//name.
func (G *Generator) SelectPlatform(name string) error {
	if ps, ok := G.stepper.(tps.PlatformSelector); ok {
		return ps.SelectPlatform(name)
	}
	if name == "" {
		return nil
	}
	return PlatformError{message: fmt.Sprintf("stepper %T has a single platform", G.stepper), deco: []string{}}
}

//Fork returns a generator with an independent copy of the stepper, or an
//error if the stepper cannot fork.
func (G *Generator) Fork() (*Generator, error) {
	f, ok := G.stepper.(tps.ForkableStepper)
	if !ok {
		return nil, tps.NewConfigError("stepper %T cannot fork", G.stepper)
	}
	return &Generator{stepper: f.Fork()}, nil
}

//Generate grows a trajectory from init until a stopping ensemble refuses
//further extension, the optional maxLength safeguard fires (maxLength <= 0
//disables it), the context is canceled, or the stepper fails.
//
//The loop order matters and is part of the contract: the ensembles are
//consulted before each step, so once any of them returns false no further
//step is taken, and an ensemble stop at exactly maxLength frames is
//reported as EnsembleStopped, not MaxLengthReached. An empty ensemble list
//generates until the safeguard.
//
//On Failed the error satisfies tps.EngineFailure and the partial
//trajectory is returned too; a mover treats this as a rejected trial. On
//Canceled the error is the context's.
func (G *Generator) Generate(ctx context.Context, init *tps.Snapshot, ensembles []tps.Ensemble, dir Direction, maxLength int) (*tps.Trajectory, Status, error) {
	if init == nil {
		return nil, Failed, tps.NewConfigError("generate needs an initial snapshot")
	}
	//Generation always integrates forward in the stepper's time; for
	//Backward the initial snapshot is reversed first and every generated
	//frame is cached in re-reversed (physical) form, so the stopping test
	//always sees the physical, time-ordered trajectory.
	work := init
	if dir == Backward {
		work = init.Reverse()
	}
	gen := []*tps.Snapshot{work}
	phys := []*tps.Snapshot{init}
	for {
		t := timeOrdered(phys, dir)
		stopped := false
		for _, e := range ensembles {
			if !canGrow(e, t, dir) {
				stopped = true
				break
			}
		}
		if stopped {
			return t, EnsembleStopped, nil
		}
		if maxLength > 0 && len(gen) >= maxLength {
			return t, MaxLengthReached, nil
		}
		select {
		case <-ctx.Done():
			return t, Canceled, ctx.Err()
		default:
		}
		next, err := G.stepper.Advance(gen[len(gen)-1])
		if err != nil {
			if !tps.IsEngineFailure(err) {
				err = Error{message: err.Error(), deco: []string{"Generate"}, critical: true}
			}
			return t, Failed, err
		}
		gen = append(gen, next)
		if dir == Backward {
			phys = append(phys, next.Reverse())
		} else {
			phys = append(phys, next)
		}
	}
}

//timeOrdered builds the physical-time trajectory from the cached frames.
func timeOrdered(phys []*tps.Snapshot, dir Direction) *tps.Trajectory {
	if dir == Forward {
		return tps.NewTrajectory(phys...)
	}
	rev := make([]*tps.Snapshot, len(phys))
	for i, s := range phys {
		rev[len(phys)-1-i] = s
	}
	return tps.NewTrajectory(rev...)
}

//canGrow asks the right growth question for the direction.
func canGrow(e tps.Ensemble, t *tps.Trajectory, dir Direction) bool {
	if dir == Backward {
		return e.CanPrepend(t)
	}
	return e.CanAppend(t)
}

//Error is the engine error type. It fulfills tps.Error and, when critical,
//tps.EngineFailure: a numerical failure of the integration that callers
//recover from by rejecting the trial.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//NewFailure returns an error satisfying tps.EngineFailure, for steppers to
//report numerical blow-ups.
func NewFailure(format string, args ...interface{}) Error {
	return Error{message: fmt.Sprintf(format, args...), deco: []string{}, critical: true}
}

func (err Error) Error() string {
	return fmt.Sprintf("gotps engine: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) EngineFailure() {}

//PlatformError reports a platform the engine cannot provide. It fulfills
//tps.UnsupportedPlatform.
type PlatformError struct {
	message string
	deco    []string
}

//PlatformUnsupported returns the error for a platform the engine was not
//built with.
func PlatformUnsupported(name string) PlatformError {
	return PlatformError{message: fmt.Sprintf("platform %q not available", name), deco: []string{}}
}

func (err PlatformError) Error() string {
	return fmt.Sprintf("gotps engine: %s", err.message)
}

//Decorate adds new information to the error.
func (err PlatformError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err PlatformError) UnsupportedPlatform() {}
