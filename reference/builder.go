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

/*
Package reference builds reference databases from a cohort of
GC-corrected samples.

For every bin, the database lists a reference set: bins that behave
similarly across the cohort. Similarity is judged on the median
corrected value of each bin over all samples, so bins are compared by
their rank in the sorted medians rather than by genomic distance.
*/
package reference

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/utils"
)

// DefaultNBins is the default size of the window of ranked bins from
// which a reference set is chosen.
const DefaultNBins = 250

// An Entry is one line of a reference database.
type Entry struct {
	Target     bed.Position
	References []bed.Position
}

// A Builder produces the entries of a reference database one at a
// time, in layout order. A Builder must not be used concurrently.
type Builder struct {
	layout  []bed.Position
	medians []float64
	ranked  []int // layout indices sorted by median, NaN last
	rank    []int // rank of each layout index
	nBins   int
	next    int
}

/*
NewBuilder prepares a reference database for the given layout.

samples holds the corrected regions of all samples, one sample after
the other, each in layout order: the value of bin i in sample s is at
index s*len(layout)+i. Every sample must have exactly the positions of
the layout.

The representative value of a bin is the median of its values over all
samples, ignoring absent values. A bin without any value sorts after
all others and is never chosen as a reference.
*/
func NewBuilder(layout []bed.Position, samples []bed.Region, nBins int) (*Builder, error) {
	m := len(layout)
	switch {
	case nBins < 1:
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "number of reference bins must be at least 1, got %v", nBins)
	case m == 0 || len(samples) == 0:
		return nil, errors.Wrap(utils.ErrInsufficientData, "no bins to build a reference from")
	case len(samples)%m != 0:
		return nil, errors.Wrapf(utils.ErrLayoutMismatch, "%v regions do not form whole samples of %v bins", len(samples), m)
	}
	for i, r := range samples {
		if r.Position != layout[i%m] {
			return nil, errors.Wrapf(utils.ErrLayoutMismatch, "sample %v has bin %v where %v was expected", i/m+1, r.Position, layout[i%m])
		}
	}

	n := len(samples) / m
	b := &Builder{
		layout:  layout,
		medians: make([]float64, m),
		ranked:  make([]int, m),
		rank:    make([]int, m),
		nBins:   nBins,
	}
	values := make([]float64, n)
	for i := range layout {
		for s := range values {
			values[s] = samples[s*m+i].Value
		}
		b.medians[i] = internal.Median(values)
		b.ranked[i] = i
	}
	sort.SliceStable(b.ranked, func(i, j int) bool {
		x, y := b.medians[b.ranked[i]], b.medians[b.ranked[j]]
		return x < y || (!math.IsNaN(x) && math.IsNaN(y))
	})
	for r, i := range b.ranked {
		b.rank[i] = r
	}
	return b, nil
}

// Len returns the number of entries the Builder produces.
func (b *Builder) Len() int {
	return len(b.layout)
}

// Next returns the next entry in layout order, or false when all
// entries have been produced.
func (b *Builder) Next() (Entry, bool) {
	if b.next >= len(b.layout) {
		return Entry{}, false
	}
	i := b.next
	b.next++
	return Entry{Target: b.layout[i], References: b.references(i)}, true
}

// window returns the ranked bins around the given rank.
func (b *Builder) window(r int) []int {
	m, half := len(b.ranked), b.nBins/2
	switch {
	case r <= half:
		return b.ranked[:min(b.nBins, m)]
	case m-r <= half:
		return b.ranked[max(m-b.nBins, 0):]
	default:
		return b.ranked[r-half : min(r+(b.nBins+1)/2, m)]
	}
}

// references selects the reference set of the bin at layout index i:
// the bins in its window other than itself, without those whose
// representative value lies 3 standard deviations or more from the
// mean of the window.
func (b *Builder) references(i int) []bed.Position {
	target := b.layout[i]
	var candidates []int
	var values []float64
	for _, j := range b.window(b.rank[i]) {
		if b.layout[j] == target {
			continue
		}
		if v := b.medians[j]; !bed.IsAbsent(v) {
			candidates = append(candidates, j)
			values = append(values, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	mean, std := internal.PopMeanStdDev(values)
	low, high := mean-3*std, mean+3*std
	var result []bed.Position
	for k, j := range candidates {
		if v := values[k]; v > low && v < high {
			result = append(result, b.layout[j])
		}
	}
	return result
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
