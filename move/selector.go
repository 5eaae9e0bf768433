/*
 * selector.go, part of gotps.
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
	"math"

	tps "github.com/rmera/gotps"
	"golang.org/x/exp/rand"
)

//Selector picks the shooting point from a trajectory. F is the (not
//normalized) bias of frame i and SumBias its total over the trajectory;
//the ratio SumBias(old)/SumBias(new) enters the acceptance probability,
//which keeps any bias choice detailed-balance correct.
type Selector interface {
	F(t *tps.Trajectory, i int) float64
	SumBias(t *tps.Trajectory) float64
	Pick(t *tps.Trajectory, rnd *rand.Rand) (int, error)
}

//UniformSelector picks any frame with equal probability, excluding
//PadStart frames at the beginning and PadEnd at the end. Shooting from an
//endpoint only reproduces or discards the whole path, so the default pads
//are 1 and 1.
type UniformSelector struct {
	PadStart int
	PadEnd   int
}

//NewUniformSelector returns a uniform selector with the default padding.
func NewUniformSelector() *UniformSelector {
	return &UniformSelector{PadStart: 1, PadEnd: 1}
}

func (U *UniformSelector) F(t *tps.Trajectory, i int) float64 {
	if i < U.PadStart || i >= t.Len()-U.PadEnd {
		return 0
	}
	return 1
}

func (U *UniformSelector) SumBias(t *tps.Trajectory) float64 {
	n := t.Len() - U.PadStart - U.PadEnd
	if n < 0 {
		return 0
	}
	return float64(n)
}

func (U *UniformSelector) Pick(t *tps.Trajectory, rnd *rand.Rand) (int, error) {
	n := t.Len() - U.PadStart - U.PadEnd
	if n <= 0 {
		return 0, newError("trajectory of %d frames has no selectable shooting point", t.Len())
	}
	return U.PadStart + rnd.Intn(n), nil
}

//GaussianBiasSelector biases the shooting point towards CV values near L0:
//the bias of a frame is exp(-Alpha*(cv-L0)^2). Concentrating shots near a
//barrier top raises acceptance; the bias cancels through the acceptance
//ratio.
type GaussianBiasSelector struct {
	CV    tps.CV
	L0    float64
	Alpha float64
}

//NewGaussianBiasSelector returns a selector biased around l0.
func NewGaussianBiasSelector(cv tps.CV, l0, alpha float64) (*GaussianBiasSelector, error) {
	if cv == nil {
		return nil, newError("gaussian bias selector needs a collective variable")
	}
	if alpha <= 0 {
		return nil, newError("gaussian bias selector with nonpositive alpha %v", alpha)
	}
	return &GaussianBiasSelector{CV: cv, L0: l0, Alpha: alpha}, nil
}

func (G *GaussianBiasSelector) F(t *tps.Trajectory, i int) float64 {
	d := G.CV(t.Frame(i)) - G.L0
	return math.Exp(-G.Alpha * d * d)
}

func (G *GaussianBiasSelector) SumBias(t *tps.Trajectory) float64 {
	sum := 0.0
	for i := 0; i < t.Len(); i++ {
		sum += G.F(t, i)
	}
	return sum
}

//Pick draws a frame by rejection sampling: the bias never exceeds 1, so a
//uniform frame accepted with probability F is distributed as F/SumBias.
func (G *GaussianBiasSelector) Pick(t *tps.Trajectory, rnd *rand.Rand) (int, error) {
	if t.Len() == 0 {
		return 0, newError("cannot select a shooting point from an empty trajectory")
	}
	if G.SumBias(t) == 0 {
		return 0, newError("gaussian bias is zero over the whole trajectory")
	}
	for {
		i := rnd.Intn(t.Len())
		if rnd.Float64() < G.F(t, i) {
			return i, nil
		}
	}
}
