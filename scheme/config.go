/*
 * config.go, part of gotps.
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

package scheme

import (
	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/engine"
	"github.com/rmera/gotps/move"
	"github.com/rmera/gotps/network"
	"gopkg.in/yaml.v3"
)

//Config is the YAML-loadable description of a move scheme. A minimal
//file:
//
//	maxlength: 5000
//	groups:
//	  - name: shooting
//	    type: one-way-shooting
//	    weight: 2.0
//	  - name: repex
//	    type: replica-exchange
//	    weight: 1.0
//
//Each group is expanded over the network: shooting and reversal types get
//one mover per sampling ensemble, replica exchange one per adjacent pair.
type Config struct {
	MaxLength int           `yaml:"maxlength"`
	Kick      float64       `yaml:"kick"` //velocity-kick sigma for two-way shooting
	Selector  SelectorCfg   `yaml:"selector"`
	Groups    []GroupConfig `yaml:"groups"`
}

//SelectorCfg configures the shooting-point selector shared by the
//shooting movers.
type SelectorCfg struct {
	Kind  string  `yaml:"kind"` //"uniform" (default) or "gaussian"
	L0    float64 `yaml:"l0"`
	Alpha float64 `yaml:"alpha"`
}

//GroupConfig is one weighted group in the file.
type GroupConfig struct {
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	Weight float64 `yaml:"weight"`
}

//ParseConfig decodes a YAML scheme description.
func ParseConfig(data []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, tps.NewConfigError("bad scheme file: %v", err)
	}
	return cfg, nil
}

//FromConfig builds the scheme described by cfg over the given network.
//cv is only needed for a gaussian selector and may be nil otherwise.
func FromConfig(cfg *Config, net *network.TransitionNetwork, gen *engine.Generator, cv tps.CV) (*Scheme, error) {
	sel, err := buildSelector(cfg, cv)
	if err != nil {
		return nil, err
	}
	ensembles := net.SamplingEnsembles()
	var groups []Group
	for _, gc := range cfg.Groups {
		var movers []move.Mover
		switch gc.Type {
		case "one-way-shooting", "forward-shooting", "backward-shooting":
			for _, e := range ensembles {
				m, err := buildShooter(gc.Type, e, sel, gen, cfg.MaxLength)
				if err != nil {
					return nil, err
				}
				movers = append(movers, m)
			}
		case "two-way-shooting":
			for _, e := range ensembles {
				m, err := move.NewTwoWayShooting(e, net.AllStates(), sel, gen, move.GaussianKick(cfg.Kick), cfg.MaxLength)
				if err != nil {
					return nil, err
				}
				movers = append(movers, m)
			}
		case "path-reversal":
			for _, e := range ensembles {
				m, err := move.NewPathReversal(e)
				if err != nil {
					return nil, err
				}
				movers = append(movers, m)
			}
		case "replica-exchange":
			for _, p := range net.AdjacentPairs() {
				m, err := move.NewReplicaExchange(p[0], p[1])
				if err != nil {
					return nil, err
				}
				movers = append(movers, m)
			}
			if len(movers) == 0 {
				return nil, tps.NewConfigError("group %q: replica exchange needs at least two ensembles", gc.Name)
			}
		default:
			return nil, tps.NewConfigError("group %q has unknown move type %q", gc.Name, gc.Type)
		}
		groups = append(groups, Group{Name: gc.Name, Weight: gc.Weight * float64(len(movers)), Movers: movers})
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

func buildSelector(cfg *Config, cv tps.CV) (move.Selector, error) {
	switch cfg.Selector.Kind {
	case "", "uniform":
		return move.NewUniformSelector(), nil
	case "gaussian":
		return move.NewGaussianBiasSelector(cv, cfg.Selector.L0, cfg.Selector.Alpha)
	}
	return nil, tps.NewConfigError("unknown selector kind %q", cfg.Selector.Kind)
}

func buildShooter(kind string, e tps.Ensemble, sel move.Selector, gen *engine.Generator, maxLength int) (move.Mover, error) {
	switch kind {
	case "forward-shooting":
		return move.NewForwardShooting(e, sel, gen, maxLength)
	case "backward-shooting":
		return move.NewBackwardShooting(e, sel, gen, maxLength)
	}
	return move.NewOneWayShooting(e, sel, gen, maxLength)
}
