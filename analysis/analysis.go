/*
 * analysis.go, part of gotps.
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

//Package analysis post-processes a finished (or running) sampling run:
//acceptance bookkeeping per mover and group, path length statistics and
//simple plots. It works off the step log, so it never needs the sampler
//itself.
package analysis

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	tps "github.com/rmera/gotps"
	"github.com/rmera/gotps/sampler"
)

//MoverStats accumulates trial counts for one mover.
type MoverStats struct {
	Mover    string
	Group    string
	Trials   int
	Accepted int
}

//Ratio returns the fraction of accepted trials, or 0 for no trials.
func (M *MoverStats) Ratio() float64 {
	if M.Trials == 0 {
		return 0
	}
	return float64(M.Accepted) / float64(M.Trials)
}

//Summary aggregates a step log.
type Summary struct {
	Steps  int
	movers map[string]*MoverStats
	groups map[string]*MoverStats
}

//NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{
		movers: make(map[string]*MoverStats),
		groups: make(map[string]*MoverStats),
	}
}

//Add folds one step into the summary.
func (S *Summary) Add(step *sampler.Step) {
	S.Steps++
	m, ok := S.movers[step.Mover]
	if !ok {
		m = &MoverStats{Mover: step.Mover, Group: step.Group}
		S.movers[step.Mover] = m
	}
	m.Trials++
	g, ok := S.groups[step.Group]
	if !ok {
		g = &MoverStats{Mover: step.Group, Group: step.Group}
		S.groups[step.Group] = g
	}
	g.Trials++
	if step.Accepted {
		m.Accepted++
		g.Accepted++
	}
}

//Movers returns the per-mover statistics, sorted by name.
func (S *Summary) Movers() []*MoverStats {
	out := make([]*MoverStats, 0, len(S.movers))
	for _, m := range S.movers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mover < out[j].Mover })
	return out
}

//Groups returns the per-group statistics, sorted by name.
func (S *Summary) Groups() []*MoverStats {
	out := make([]*MoverStats, 0, len(S.groups))
	for _, g := range S.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mover < out[j].Mover })
	return out
}

//Write prints a human-readable acceptance table, one line per group and,
//indented, one per mover within it.
func (S *Summary) Write(w io.Writer) error {
	for _, g := range S.Groups() {
		share := 0.0
		if S.Steps > 0 {
			share = float64(g.Trials) / float64(S.Steps)
		}
		_, err := fmt.Fprintf(w, "%s ran %.1f%% of the cycles with acceptance %d/%d (%.2f)\n",
			g.Group, 100*share, g.Accepted, g.Trials, g.Ratio())
		if err != nil {
			return err
		}
		for _, m := range S.Movers() {
			if m.Group != g.Group {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %s: acceptance %d/%d (%.2f)\n",
				m.Mover, m.Accepted, m.Trials, m.Ratio()); err != nil {
				return err
			}
		}
	}
	return nil
}

//Summarize loads every step from the store and aggregates it.
func Summarize(store tps.Store) (*Summary, error) {
	n, err := store.Count(tps.KindStep)
	if err != nil {
		return nil, err
	}
	S := NewSummary()
	for i := 0; i < n; i++ {
		step := new(sampler.Step)
		if err := store.Load(tps.KindStep, i, step); err != nil {
			return nil, err
		}
		S.Add(step)
	}
	return S, nil
}

//PathLengths extracts the committed path length of every replica at every
//step, in step order. With several replicas, each step contributes
//several lengths.
func PathLengths(store tps.Store) ([]float64, error) {
	n, err := store.Count(tps.KindStep)
	if err != nil {
		return nil, err
	}
	var lengths []float64
	for i := 0; i < n; i++ {
		step := new(sampler.Step)
		if err := store.Load(tps.KindStep, i, step); err != nil {
			return nil, err
		}
		for _, rec := range step.Samples {
			lengths = append(lengths, float64(rec.Traj.Len()))
		}
	}
	return lengths, nil
}

//LengthStats returns mean and standard deviation of a length series.
func LengthStats(lengths []float64) (mean, stdev float64) {
	if len(lengths) == 0 {
		return 0, 0
	}
	mean, std := stat.MeanStdDev(lengths, nil)
	return mean, std
}

//Histogram bins the values into nbins equal-width bins over their range
//and returns the bin dividers and counts. It follows gonum's convention:
//len(dividers) is nbins+1.
func Histogram(values []float64, nbins int) (dividers, counts []float64, err error) {
	if len(values) == 0 || nbins < 1 {
		return nil, nil, fmt.Errorf("histogram needs values and at least one bin")
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	min, max := sorted[0], sorted[len(sorted)-1]
	if min == max {
		//gonum requires a non-degenerate range
		max = min + 1
	}
	dividers = make([]float64, nbins+1)
	width := (max - min) / float64(nbins)
	for i := range dividers {
		dividers[i] = min + float64(i)*width
	}
	dividers[nbins] = max
	counts = stat.Histogram(nil, dividers, sorted, nil)
	return dividers, counts, nil
}
