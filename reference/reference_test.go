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

package reference

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/utils"
)

var testLayout = []bed.Position{
	{Chrom: "1", Start: 0, End: 100},
	{Chrom: "1", Start: 100, End: 200},
	{Chrom: "1", Start: 200, End: 300},
	{Chrom: "2", Start: 0, End: 100},
	{Chrom: "2", Start: 100, End: 200},
}

// bin i of every sample has value base[i] * (1 + s/10) for sample s.
var testBase = []float64{5, 1, 4, 2, 3}

func makeSamples(n int) []bed.Region {
	var samples []bed.Region
	for s := 0; s < n; s++ {
		for i, p := range testLayout {
			samples = append(samples, bed.Region{Position: p, Value: testBase[i] * (1 + float64(s)/10)})
		}
	}
	return samples
}

// collect returns all remaining entries of the builder.
func collect(b *Builder) []Entry {
	var entries []Entry
	for {
		entry, ok := b.Next()
		if !ok {
			return entries
		}
		entries = append(entries, entry)
	}
}

func TestRanking(t *testing.T) {
	b, err := NewBuilder(testLayout, makeSamples(5), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4, 2, 0}, b.ranked)
	assert.InDelta(t, 1.2, b.medians[1], 1e-12)
	assert.InDelta(t, 6.0, b.medians[0], 1e-12)
	assert.Equal(t, 5, b.Len())
}

func TestFullWindow(t *testing.T) {
	b, err := NewBuilder(testLayout, makeSamples(5), 5)
	require.NoError(t, err)
	entries := collect(b)
	require.Len(t, entries, len(testLayout))
	for i, entry := range entries {
		assert.Equal(t, testLayout[i], entry.Target, "entries are produced in layout order")
		assert.Len(t, entry.References, 4)
		assert.NotContains(t, entry.References, entry.Target)
	}
	assert.Equal(t, []bed.Position{testLayout[3], testLayout[4], testLayout[2], testLayout[0]}, entries[1].References)
	_, ok := b.Next()
	assert.False(t, ok)
}

func TestSmallWindow(t *testing.T) {
	b, err := NewBuilder(testLayout, makeSamples(5), 3)
	require.NoError(t, err)
	entries := collect(b)
	for _, entry := range entries {
		assert.Len(t, entry.References, 2, entry.Target.String())
	}
	// bin 4 has rank 2: its window is ranks 1 to 3
	assert.Equal(t, []bed.Position{testLayout[3], testLayout[2]}, entries[4].References)
	// bin 0 has the highest rank: its window is the last three ranks
	assert.Equal(t, []bed.Position{testLayout[4], testLayout[2]}, entries[0].References)
}

func TestWindowOfOne(t *testing.T) {
	b, err := NewBuilder(testLayout, makeSamples(3), 1)
	require.NoError(t, err)
	entries := collect(b)
	require.Len(t, entries, 5)
	for _, entry := range entries {
		assert.Empty(t, entry.References, "a window of one bin only holds the target")
	}
}

func TestOutliers(t *testing.T) {
	layout := make([]bed.Position, 21)
	var samples []bed.Region
	for i := range layout {
		layout[i] = bed.Position{Chrom: "1", Start: int32(i * 10), End: int32(i*10 + 10)}
		value := 1.0
		if i == 20 {
			value = 1000
		}
		samples = append(samples, bed.Region{Position: layout[i], Value: value + float64(i%2)/100})
	}
	b, err := NewBuilder(layout, samples, 21)
	require.NoError(t, err)
	entries := collect(b)
	assert.Len(t, entries[0].References, 19, "the outlier is excluded")
	assert.NotContains(t, entries[0].References, layout[20])
}

func TestConstantWindow(t *testing.T) {
	samples := make([]bed.Region, len(testLayout))
	for i, p := range testLayout {
		samples[i] = bed.Region{Position: p, Value: 2}
	}
	b, err := NewBuilder(testLayout, samples, 5)
	require.NoError(t, err)
	for _, entry := range collect(b) {
		assert.Empty(t, entry.References)
	}
}

func TestAbsentValues(t *testing.T) {
	samples := makeSamples(3)
	for s := 0; s < 3; s++ {
		samples[s*len(testLayout)+2].Value = math.NaN()
	}
	samples[3].Value = math.NaN()
	b, err := NewBuilder(testLayout, samples, 5)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(b.medians[2]))
	assert.InDelta(t, 2.3, b.medians[3], 1e-12)
	assert.Equal(t, 2, b.ranked[4], "bins without values rank last")
	for _, entry := range collect(b) {
		assert.NotContains(t, entry.References, testLayout[2])
	}
}

func TestNewBuilderErrors(t *testing.T) {
	_, err := NewBuilder(testLayout, makeSamples(2), 0)
	assert.True(t, errors.Is(err, utils.ErrInvalidArgument))
	_, err = NewBuilder(testLayout, nil, 5)
	assert.True(t, errors.Is(err, utils.ErrInsufficientData))
	_, err = NewBuilder(testLayout, makeSamples(2)[1:], 5)
	assert.True(t, errors.Is(err, utils.ErrLayoutMismatch))
	samples := makeSamples(2)
	samples[7].End++
	_, err = NewBuilder(testLayout, samples, 5)
	assert.True(t, errors.Is(err, utils.ErrLayoutMismatch))
}

func TestWriteDatabase(t *testing.T) {
	b, err := NewBuilder(testLayout, makeSamples(5), 3)
	require.NoError(t, err)
	var buf bytes.Buffer
	w := bed.NewWriter(&buf)
	var reports int
	require.NoError(t, WriteDatabase(w, b, &utils.Progress{Notify: func(done, total int) { reports++ }}))
	require.NoError(t, w.Close())
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(testLayout))
	assert.Equal(t, "1\t0\t100\t2,100,200|1,200,300", lines[0])
	assert.Equal(t, len(testLayout), reports)
}
