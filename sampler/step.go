/*
 * step.go, part of gotps.
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

package sampler

import (
	tps "github.com/rmera/gotps"
)

//Step is the persisted record of one Monte Carlo cycle: which move ran,
//whether it was accepted, and the full resulting sample set. Steps are the
//unit of resumability: the newest committed step is all a sampler needs to
//continue a run. Committed steps form a gap-free cycle sequence from 0,
//and their index in the store equals their cycle number.
type Step struct {
	Cycle    int                `json:"cycle"`
	RunID    string             `json:"runid"`
	Mover    string             `json:"mover"`
	Group    string             `json:"group"`
	Accepted bool               `json:"accepted"`
	Prob     float64            `json:"prob"`
	Reason   string             `json:"reason,omitempty"`
	Samples  []tps.SampleRecord `json:"samples"`
}

//Set rebuilds the committed sample set of the step, rebinding the stored
//slot indexes to the given canonical ensemble list (normally the
//network's).
func (S *Step) Set(ensembles []tps.Ensemble) (*tps.SampleSet, error) {
	return tps.SetFromRecords(S.Samples, ensembles)
}
