/*
 * scheme.go, part of gotps.
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

//Package scheme holds the move scheme: the weighted groups of movers from
//which each Monte Carlo cycle draws its one move. A scheme is immutable
//configuration, built and sanity-checked once per simulation; selection is
//stochastic but fully reproducible given a seeded source.
package scheme

import (
	"fmt"

	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/engine"
	"github.com/rmera/gotps/move"
	"github.com/rmera/gotps/network"
	"golang.org/x/exp/rand"
)

//Group is a named set of movers drawn with a common weight. The group
//weight is for the whole group: the probability of one mover is
//weight/total/len(movers).
type Group struct {
	Name   string
	Weight float64
	Movers []move.Mover
}

//Scheme is an immutable weighted collection of move groups.
type Scheme struct {
	groups []Group
	total  float64
}

//New builds a scheme from the given groups and checks it: nonempty groups
//with positive weights, and no mover appearing twice.
func New(groups ...Group) (*Scheme, error) {
	if len(groups) == 0 {
		return nil, tps.NewConfigError("move scheme without groups")
	}
	seen := make(map[move.Mover]string)
	total := 0.0
	for _, g := range groups {
		if g.Name == "" {
			return nil, tps.NewConfigError("move group without a name")
		}
		if g.Weight <= 0 {
			return nil, tps.NewConfigError("group %q has nonpositive weight %v", g.Name, g.Weight)
		}
		if len(g.Movers) == 0 {
			return nil, tps.NewConfigError("group %q has no movers", g.Name)
		}
		for _, m := range g.Movers {
			if prev, dup := seen[m]; dup {
				return nil, tps.NewConfigError("mover %q appears in groups %q and %q", m.Name(), prev, g.Name)
			}
			seen[m] = g.Name
		}
		total += g.Weight
	}
	s := &Scheme{groups: make([]Group, len(groups)), total: total}
	copy(s.groups, groups)
	return s, nil
}

//Choose draws one mover: a group with probability proportional to its
//weight, then a mover uniformly within the group.
func (S *Scheme) Choose(rnd *rand.Rand) (move.Mover, string) {
	r := rnd.Float64() * S.total
	g := S.groups[len(S.groups)-1]
	for _, cand := range S.groups {
		if r < cand.Weight {
			g = cand
			break
		}
		r -= cand.Weight
	}
	return g.Movers[rnd.Intn(len(g.Movers))], g.Name
}

//Groups returns the groups of the scheme.
func (S *Scheme) Groups() []Group {
	out := make([]Group, len(S.groups))
	copy(out, S.groups)
	return out
}

//ChoiceProbability returns the per-mover selection probability, keyed by
//mover. The probabilities sum to 1.
func (S *Scheme) ChoiceProbability() map[move.Mover]float64 {
	probs := make(map[move.Mover]float64)
	for _, g := range S.groups {
		p := g.Weight / S.total / float64(len(g.Movers))
		for _, m := range g.Movers {
			probs[m] = p
		}
	}
	return probs
}

//SanityCheck verifies that every given sampling ensemble is read by at
//least one mover of the scheme, so no slot can go stale. The labels (same
//order as the ensembles) are used in the error message.
func (S *Scheme) SanityCheck(ensembles []tps.Ensemble, labels []string) error {
	covered := make(map[tps.Ensemble]bool)
	for _, g := range S.groups {
		for _, m := range g.Movers {
			for _, e := range m.Ensembles() {
				covered[e] = true
			}
		}
	}
	for i, e := range ensembles {
		if !covered[e] {
			label := fmt.Sprintf("slot %d", i)
			if i < len(labels) {
				label = labels[i]
			}
			return tps.NewConfigError("no mover touches sampling ensemble %s", label)
		}
	}
	return nil
}

//Default builds the standard scheme for a network: one-way shooting on
//every sampling ensemble, replica exchange between neighbors, and path
//reversal on every ensemble, with the conventional relative weights.
func Default(net *network.TransitionNetwork, gen *engine.Generator, maxLength int) (*Scheme, error) {
	ensembles := net.SamplingEnsembles()
	sel := move.NewUniformSelector()
	var shooters, reversers []move.Mover
	for _, e := range ensembles {
		sh, err := move.NewOneWayShooting(e, sel, gen, maxLength)
		if err != nil {
			return nil, err
		}
		shooters = append(shooters, sh)
		rv, err := move.NewPathReversal(e)
		if err != nil {
			return nil, err
		}
		reversers = append(reversers, rv)
	}
	groups := []Group{
		{Name: "shooting", Weight: float64(len(shooters)), Movers: shooters},
		{Name: "pathreversal", Weight: 0.5 * float64(len(reversers)), Movers: reversers},
	}
	if pairs := net.AdjacentPairs(); len(pairs) > 0 {
		var swappers []move.Mover
		for _, p := range pairs {
			rx, err := move.NewReplicaExchange(p[0], p[1])
			if err != nil {
				return nil, err
			}
			swappers = append(swappers, rx)
		}
		groups = append(groups, Group{Name: "repex", Weight: 0.5 * float64(len(swappers)), Movers: swappers})
	}
	s, err := New(groups...)
	if err != nil {
		return nil, err
	}
	if err := s.SanityCheck(ensembles, net.Labels()); err != nil {
		return nil, err
	}
	return s, nil
}
