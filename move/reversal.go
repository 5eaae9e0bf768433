/*
 * reversal.go, part of gotps.
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

//PathReversal proposes the time-reversed current path. For symmetric
//ensembles (A->A) it decorrelates cheaply; for asymmetric ones (A->B with
//A != B) the reversed path is simply invalid and the move rejects. No
//dynamics is run.
type PathReversal struct {
	ens tps.Ensemble
}

//NewPathReversal returns a path-reversal mover for ens.
func NewPathReversal(ens tps.Ensemble) (*PathReversal, error) {
	if ens == nil {
		return nil, newError("path reversal needs an ensemble")
	}
	return &PathReversal{ens: ens}, nil
}

func (M *PathReversal) Name() string { return "path-reversal" }

func (M *PathReversal) Ensembles() []tps.Ensemble { return []tps.Ensemble{M.ens} }

func (M *PathReversal) Move(ctx context.Context, set *tps.SampleSet, rnd *rand.Rand) (*Result, error) {
	s := set.ForEnsemble(M.ens)
	if s == nil {
		return nil, newError("path-reversal: no sample for this mover's ensemble")
	}
	cand := &tps.Sample{Traj: s.Traj.Reverse(), Ens: M.ens, Replica: s.Replica}
	if !cand.Valid() {
		return &Result{Mover: M.Name(), Accepted: false, Prob: 0, Trial: cand, Reason: "reversed path invalid"}, nil
	}
	return &Result{Mover: M.Name(), Accepted: true, Prob: 1, Trial: cand, Samples: []*tps.Sample{cand}}, nil
}
