// elCNV: a tool for detecting copy-number variation in binned SAM/BAM data.
// Copyright (c) 2020-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elcnv/blob/master/LICENSE.txt>.

package gc

import (
	"image/color"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/exascience/elcnv/utils"
)

// PlotFit draws the raw values of the usable bins against their GC
// counts, together with the fitted curve. The image format is chosen
// by the extension of filename, for example .png, .svg, or .pdf.
func PlotFit(fit Fit, title, filename string) error {
	n := len(fit.GC)
	if len(fit.Raw) != n || len(fit.Smoothed) != n {
		return errors.Wrap(utils.ErrInvalidArgument, "incomplete GC fit")
	}
	if n == 0 {
		return errors.Wrap(utils.ErrInsufficientData, "nothing to plot")
	}

	points := make(plotter.XYs, n)
	for i := range points {
		points[i].X, points[i].Y = fit.GC[i], fit.Raw[i]
	}
	curve := make(plotter.XYs, n)
	copy(curve, points)
	for i := range curve {
		curve[i].Y = fit.Smoothed[i]
	}
	sort.SliceStable(curve, func(i, j int) bool {
		return curve[i].X < curve[j].X
	})

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "GC bases per bin"
	p.Y.Label.Text = "reads per bin"

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(1)
	scatter.GlyphStyle.Color = color.Gray{Y: 96}

	line, err := plotter.NewLine(curve)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 220, G: 40, B: 40, A: 255}

	p.Add(scatter, line)
	p.Legend.Add("usable bins", scatter)
	p.Legend.Add("lowess fit", line)
	return errors.Wrapf(p.Save(8*vg.Inch, 6*vg.Inch, filename), "saving %v", filename)
}
