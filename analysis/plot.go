/*
 * plot.go, part of gotps.
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

package analysis

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//PlotLengthHistogram writes a path length histogram to file. The format
//is taken from the extension (png, pdf, svg...).
func PlotLengthHistogram(lengths []float64, nbins int, file string) error {
	if len(lengths) == 0 {
		return fmt.Errorf("no lengths to plot")
	}
	p := plot.New()
	p.Title.Text = "Path length distribution"
	p.X.Label.Text = "Frames"
	p.Y.Label.Text = "Count"
	h, err := plotter.NewHist(plotter.Values(lengths), nbins)
	if err != nil {
		return fmt.Errorf("cannot build histogram: %v", err)
	}
	p.Add(h)
	if err := p.Save(5*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("cannot save plot to %s: %v", file, err)
	}
	return nil
}

//PlotCVTrace writes the time series of a collective variable along one
//trajectory. values[i] is the CV at frame i.
func PlotCVTrace(values []float64, label, file string) error {
	if len(values) == 0 {
		return fmt.Errorf("no values to plot")
	}
	p := plot.New()
	p.Title.Text = label
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = label
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("cannot build trace: %v", err)
	}
	p.Add(line)
	if err := p.Save(5*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("cannot save plot to %s: %v", file, err)
	}
	return nil
}
