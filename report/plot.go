/*
 * plot.go, part of gopbsa.
 *
 * Copyright 2024 Raul Mera  <rmeraa{at}academicos(dot)uta(dot)cl>
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
 */

package report

import (
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/results"
)

// PlotTrajectory plots ΔH, ΔMM, ΔPB and ΔSA against time. The format is
// taken from the extension of fname (png, svg, pdf...).
func PlotTrajectory(fname string, S *results.Summary) error {
	p := plot.New()
	p.Title.Text = "Binding energy"
	p.X.Label.Text = "Time (ns)"
	p.Y.Label.Text = "kJ/mol"
	p.Add(plotter.NewGrid())
	for t := 0; t < 4; t++ {
		pts := make(plotter.XYs, len(S.Frames))
		for i, f := range S.Frames {
			pts[i].X = f.Time / 1000
			pts[i].Y = f.Terms.Values()[t]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return pbsa.NewError(err.Error(), fname, "PlotTrajectory")
		}
		l.Color = plotutil.Color(t)
		l.Dashes = plotutil.Dashes(t)
		p.Add(l)
		p.Legend.Add(results.TermNames[t], l)
	}
	p.Legend.Top = true
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return pbsa.NewError(err.Error(), fname, "PlotTrajectory")
	}
	return nil
}

// Strongest returns the indexes of the (at most) n residues of S with the
// largest absolute ΔH, in residue order.
func Strongest(S *results.Summary, n int) []int {
	idx := make([]int, len(S.Residues))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return math.Abs(S.Residues[idx[i]].H) > math.Abs(S.Residues[idx[j]].H)
	})
	if n < len(idx) {
		idx = idx[:n]
	}
	sort.Ints(idx)
	return idx
}

// PlotResidues plots, as bars, the ΔH of the n residues contributing the most.
func PlotResidues(fname string, S *results.Summary, n int) error {
	sel := Strongest(S, n)
	if len(sel) == 0 {
		return pbsa.NewError("no residues to plot", fname, "PlotResidues")
	}
	vals := make(plotter.Values, len(sel))
	names := make([]string, len(sel))
	for i, r := range sel {
		vals[i] = S.Residues[r].H
		names[i] = S.Residues[r].Label()
	}
	p := plot.New()
	p.Title.Text = "Residue contributions"
	p.Y.Label.Text = "ΔH (kJ/mol)"
	w := vg.Points(12)
	bars, err := plotter.NewBarChart(vals, w)
	if err != nil {
		return pbsa.NewError(err.Error(), fname, "PlotResidues")
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	width := vg.Length(len(sel))*w*1.5 + 2*vg.Inch
	if err := p.Save(width, 4*vg.Inch, fname); err != nil {
		return pbsa.NewError(err.Error(), fname, "PlotResidues")
	}
	return nil
}
