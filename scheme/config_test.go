/*
 * config_test.go, part of gotps.
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

package scheme_test

import (
	"testing"

	"github.com/rmera/gotps/scheme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemeYAML = `
maxlength: 500
kick: 0.1
selector:
  kind: gaussian
  l0: 0.0
  alpha: 2.5
groups:
  - name: shooting
    type: one-way-shooting
    weight: 1.0
  - name: reversal
    type: path-reversal
    weight: 0.5
`

func TestParseConfig(t *testing.T) {
	cfg, err := scheme.ParseConfig([]byte(schemeYAML))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxLength)
	assert.Equal(t, 0.1, cfg.Kick)
	assert.Equal(t, "gaussian", cfg.Selector.Kind)
	assert.Equal(t, 2.5, cfg.Selector.Alpha)
	require.Len(t, cfg.Groups, 2)
	assert.Equal(t, "one-way-shooting", cfg.Groups[0].Type)
	_, err = scheme.ParseConfig([]byte("groups: {not: a list}"))
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	net := testNetwork(t)
	cfg, err := scheme.ParseConfig([]byte(schemeYAML))
	require.NoError(t, err)
	sch, err := scheme.FromConfig(cfg, net, testGenerator(t), firstX)
	require.NoError(t, err)
	require.NoError(t, sch.SanityCheck(net.SamplingEnsembles(), net.Labels()))
	groups := sch.Groups()
	require.Len(t, groups, 2)
	//one mover per sampling ensemble in each group
	assert.Len(t, groups[0].Movers, len(net.SamplingEnsembles()))
}

func TestFromConfigErrors(t *testing.T) {
	net := testNetwork(t)
	gen := testGenerator(t)
	bad := &scheme.Config{Groups: []scheme.GroupConfig{{Name: "g", Type: "teleport", Weight: 1}}}
	_, err := scheme.FromConfig(bad, net, gen, nil)
	assert.Error(t, err, "unknown move type accepted")
	//gaussian selector without a collective variable
	cfg := &scheme.Config{
		Selector: scheme.SelectorCfg{Kind: "gaussian", Alpha: 1},
		Groups:   []scheme.GroupConfig{{Name: "g", Type: "path-reversal", Weight: 1}},
	}
	_, err = scheme.FromConfig(cfg, net, gen, nil)
	assert.Error(t, err)
	//a single-ensemble network cannot do replica exchange
	rx := &scheme.Config{Groups: []scheme.GroupConfig{{Name: "g", Type: "replica-exchange", Weight: 1}}}
	_, err = scheme.FromConfig(rx, net, gen, nil)
	assert.Error(t, err)
}
