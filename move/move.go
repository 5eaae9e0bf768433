/*
 * move.go, part of gotps.
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

//Package move implements the Monte Carlo proposal moves of path sampling:
//one-way and two-way shooting, path reversal and replica exchange. A move
//reads the current sample set, proposes candidate samples for one or more
//ensemble slots and decides acceptance; it never modifies the input set.
//Engine failures during trajectory generation reject the trial and are not
//errors: only misconfiguration or cancellation surface as errors.
package move

import (
	"context"
	"fmt"

	tps "github.com/rmera/gotps"
	"golang.org/x/exp/rand"
)

//Mover is one stochastic proposal mechanism. Move must be deterministic
//given the state of rnd, and must leave set untouched.
type Mover interface {
	Name() string
	//Ensembles returns the slots this mover reads, for scheme sanity checks.
	Ensembles() []tps.Ensemble
	Move(ctx context.Context, set *tps.SampleSet, rnd *rand.Rand) (*Result, error)
}

//Result is the outcome of one trial move. On acceptance, Samples holds the
//candidate replacements for the sampler to apply; on rejection it is nil
//and the sample set stands. Trial always holds the proposed sample (or the
//first of them) for analysis, whether accepted or not.
type Result struct {
	Mover    string
	Accepted bool
	Prob     float64 //acceptance probability of the trial
	Samples  []*tps.Sample
	Trial    *tps.Sample
	Reason   string //short note on rejections ("invalid", "engine failure"...)
}

//AcceptanceRule computes the acceptance probability of a candidate sample
//and draws the decision. ratio carries the proposal-asymmetry factor (for
//shooting, the shooting-point selection bias of the old trajectory over
//the new one); the exact path-ensemble weight beyond validity is domain
//physics and pluggable here.
type AcceptanceRule func(old, cand *tps.Sample, ratio float64, rnd *rand.Rand) (prob float64, accepted bool)

//Metropolis is the default acceptance rule: zero for an invalid candidate,
//otherwise min(1, ratio). For uniform shooting-point selection this is the
//standard accept-if-valid shooting with the path-length correction.
func Metropolis(old, cand *tps.Sample, ratio float64, rnd *rand.Rand) (float64, bool) {
	if !cand.Valid() {
		return 0, false
	}
	p := ratio
	if p > 1 {
		p = 1
	}
	return p, rnd.Float64() < p
}

//Error is the move error type, for misconfigured movers (missing slots,
//bad selectors). It fulfills tps.Error and tps.ConfigurationError.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return fmt.Sprintf("gotps move: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) ConfigurationError() {}

func newError(format string, args ...interface{}) Error {
	return Error{message: fmt.Sprintf(format, args...), deco: []string{}}
}
