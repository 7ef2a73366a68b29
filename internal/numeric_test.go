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

package internal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 2.0, Median([]float64{math.NaN(), 1, 3}))
	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsNaN(Median([]float64{math.NaN()})))

	x := []float64{3, 1, 2}
	Median(x)
	assert.Equal(t, []float64{3, 1, 2}, x, "Median must not reorder its input")
}

func TestPopMeanStdDev(t *testing.T) {
	mean, std := PopMeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)

	mean, std = PopMeanStdDev([]float64{3})
	assert.Equal(t, 3.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = PopMeanStdDev(nil)
	assert.True(t, math.IsNaN(mean))
	assert.True(t, math.IsNaN(std))
}
