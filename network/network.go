/*
 * network.go, part of gotps.
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

//Package network builds and validates the read-only configuration of a
//path sampling run: the stable states, the interfaces and the canonical
//ordered list of sampling ensembles. A network is constructed once,
//checked at construction, and never modified afterwards.
package network

import (
	"fmt"
	"math"
	"strings"

	tps "github.com/rmera/gotps"
)

//State is a named stable-state volume.
type State struct {
	Name string
	Vol  tps.Volume
}

//TransitionNetwork holds the ensembles of one sampling setup in canonical
//slot order. The order is what sample records refer to on disk, so it must
//be stable across runs of the same configuration.
type TransitionNetwork struct {
	states    []State
	allStates tps.Volume
	ensembles []tps.Ensemble
	labels    []string
}

//NewTPSNetwork returns the network for plain transition path sampling
//between two states: a single ensemble of A->B paths.
func NewTPSNetwork(stateA, stateB State) (*TransitionNetwork, error) {
	if err := checkStates(stateA, stateB); err != nil {
		return nil, err
	}
	ens, err := tps.TPSEnsemble(stateA.Vol, stateB.Vol)
	if err != nil {
		return nil, err
	}
	return &TransitionNetwork{
		states:    []State{stateA, stateB},
		allStates: tps.NewUnionVolume(stateA.Vol, stateB.Vol),
		ensembles: []tps.Ensemble{ens},
		labels:    []string{stateA.Name + "->" + stateB.Name},
	}, nil
}

//NewTISNetwork returns the network for transition interface sampling out
//of stateA: one ensemble per interface lambda, each requiring a crossing
//of its interface, all paths starting in stateA and ending in some state.
//The lambdas must be strictly increasing and the interface volumes are
//cv < lambda_i. others are the remaining stable states (may be empty for
//A->A recrossing studies).
func NewTISNetwork(stateA State, others []State, cv tps.CV, lambdas []float64) (*TransitionNetwork, error) {
	if cv == nil {
		return nil, tps.NewConfigError("TIS network needs a collective variable")
	}
	if len(lambdas) == 0 {
		return nil, tps.NewConfigError("TIS network needs at least one interface")
	}
	for i := 1; i < len(lambdas); i++ {
		if lambdas[i] <= lambdas[i-1] {
			return nil, tps.NewConfigError("interface lambdas must increase strictly: lambda[%d]=%v, lambda[%d]=%v", i-1, lambdas[i-1], i, lambdas[i])
		}
	}
	states := append([]State{stateA}, others...)
	if err := checkStates(states...); err != nil {
		return nil, err
	}
	vols := make([]tps.Volume, 0, len(states))
	for _, s := range states {
		vols = append(vols, s.Vol)
	}
	all := tps.NewUnionVolume(vols...)
	net := &TransitionNetwork{states: states, allStates: all}
	for i, l := range lambdas {
		iface, err := tps.NewLambdaVolume(cv, math.Inf(-1), l)
		if err != nil {
			return nil, err
		}
		ens, err := tps.TISEnsemble(stateA.Vol, all, iface)
		if err != nil {
			return nil, err
		}
		net.ensembles = append(net.ensembles, ens)
		net.labels = append(net.labels, fmt.Sprintf("%s TIS interface %d", stateA.Name, i))
	}
	return net, nil
}

func checkStates(states ...State) error {
	seen := make(map[string]bool, len(states))
	for i, s := range states {
		if s.Vol == nil {
			return tps.NewConfigError("state %d (%q) has no volume", i, s.Name)
		}
		if s.Name == "" {
			return tps.NewConfigError("state %d has no name", i)
		}
		if seen[s.Name] {
			return tps.NewConfigError("two states named %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

//SamplingEnsembles returns the ensembles in canonical slot order.
func (N *TransitionNetwork) SamplingEnsembles() []tps.Ensemble {
	out := make([]tps.Ensemble, len(N.ensembles))
	copy(out, N.ensembles)
	return out
}

//Labels returns a human-readable label per slot, aligned with
//SamplingEnsembles.
func (N *TransitionNetwork) Labels() []string {
	out := make([]string, len(N.labels))
	copy(out, N.labels)
	return out
}

//States returns the stable states.
func (N *TransitionNetwork) States() []State {
	out := make([]State, len(N.states))
	copy(out, N.states)
	return out
}

//AllStates returns the union volume of every stable state.
func (N *TransitionNetwork) AllStates() tps.Volume {
	return N.allStates
}

//AdjacentPairs returns the pairs of neighboring ensembles, the natural
//partners for replica exchange in a TIS ladder.
func (N *TransitionNetwork) AdjacentPairs() [][2]tps.Ensemble {
	var out [][2]tps.Ensemble
	for i := 1; i < len(N.ensembles); i++ {
		out = append(out, [2]tps.Ensemble{N.ensembles[i-1], N.ensembles[i]})
	}
	return out
}

//CheckStatesDisjoint probes the state volumes with the given snapshots and
//reports a configuration error if any snapshot lies in two states at once.
//Volumes are opaque predicates, so disjointness can only be tested against
//actual points; probing the frames of a seed trajectory is the usual
//choice.
func (N *TransitionNetwork) CheckStatesDisjoint(probes []*tps.Snapshot) error {
	for k, p := range probes {
		inside := ""
		for _, s := range N.states {
			if s.Vol.Contains(p) {
				if inside != "" {
					return tps.NewConfigError("states %q and %q overlap at probe snapshot %d", inside, s.Name, k)
				}
				inside = s.Name
			}
		}
	}
	return nil
}

//InitialSamples scans a seed trajectory for valid subtrajectories, one per
//sampling ensemble, and builds the initial sample set from them (replica
//ids are the slot indexes). The shortest valid subtrajectory from the
//earliest start is taken for each slot. If any slot cannot be filled the
//error lists the missing ones.
func (N *TransitionNetwork) InitialSamples(seed *tps.Trajectory) (*tps.SampleSet, error) {
	samples := make([]*tps.Sample, 0, len(N.ensembles))
	var missing []string
	for slot, ens := range N.ensembles {
		sub := findValidSubtraj(seed, ens)
		if sub == nil {
			missing = append(missing, N.labels[slot])
			continue
		}
		samples = append(samples, &tps.Sample{Traj: sub, Ens: ens, Replica: slot})
	}
	if len(missing) > 0 {
		return nil, tps.NewConfigError("seed trajectory yields no valid path for: %s", strings.Join(missing, ", "))
	}
	return tps.NewSampleSet(samples...)
}

func findValidSubtraj(t *tps.Trajectory, ens tps.Ensemble) *tps.Trajectory {
	for i := 0; i < t.Len(); i++ {
		for j := i + 1; j <= t.Len(); j++ {
			sub := t.Subtraj(i, j)
			if ens.IsValid(sub) {
				return sub
			}
			if !ens.CanAppend(sub) {
				break
			}
		}
	}
	return nil
}
