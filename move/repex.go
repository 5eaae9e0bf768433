/*
 * repex.go, part of gotps.
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

	tps "github.com/rmera/gotps"
	"golang.org/x/exp/rand"
)

//ReplicaExchange swaps the trajectories of two ensemble slots, replica ids
//traveling with their trajectories. The swap is accepted iff each
//trajectory is valid in the other's ensemble; for nested TIS interface
//ensembles, that is the full detailed-balance condition (the proposal is
//symmetric). No dynamics is run.
type ReplicaExchange struct {
	ens1 tps.Ensemble
	ens2 tps.Ensemble
}

//NewReplicaExchange returns an exchange mover between the two ensembles.
func NewReplicaExchange(ens1, ens2 tps.Ensemble) (*ReplicaExchange, error) {
	if ens1 == nil || ens2 == nil {
		return nil, newError("replica exchange needs two ensembles")
	}
	if ens1 == ens2 {
		return nil, newError("replica exchange between an ensemble and itself")
	}
	return &ReplicaExchange{ens1: ens1, ens2: ens2}, nil
}

func (M *ReplicaExchange) Name() string { return "replica-exchange" }

func (M *ReplicaExchange) Ensembles() []tps.Ensemble { return []tps.Ensemble{M.ens1, M.ens2} }

func (M *ReplicaExchange) Move(ctx context.Context, set *tps.SampleSet, rnd *rand.Rand) (*Result, error) {
	s1 := set.ForEnsemble(M.ens1)
	s2 := set.ForEnsemble(M.ens2)
	if s1 == nil || s2 == nil {
		return nil, newError("replica-exchange: a mover ensemble has no sample")
	}
	c1 := &tps.Sample{Traj: s2.Traj, Ens: M.ens1, Replica: s2.Replica}
	c2 := &tps.Sample{Traj: s1.Traj, Ens: M.ens2, Replica: s1.Replica}
	if !c1.Valid() || !c2.Valid() {
		return &Result{Mover: M.Name(), Accepted: false, Prob: 0, Trial: c1, Reason: "swapped assignment invalid"}, nil
	}
	return &Result{Mover: M.Name(), Accepted: true, Prob: 1, Trial: c1, Samples: []*tps.Sample{c1, c2}}, nil
}
