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

package intervals

import (
	"github.com/pkg/errors"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/utils"
)

// Interval is a half-open range [Start, End).
type Interval struct {
	Start, End int32
}

// Width returns End - Start.
func (interval Interval) Width() int32 {
	return interval.End - interval.Start
}

// Overlaps reports whether the interval shares at least one base with
// the range [start, end).
func (interval Interval) Overlaps(start, end int32) bool {
	return interval.Start < end && start < interval.End
}

// Contig is a named sequence of a given length, as listed in a FASTA
// index or a BAM header.
type Contig struct {
	Name   string
	Length int32
}

// Partition tiles [0, length) with consecutive bins of width binsize.
// The last bin is truncated at length. A zero length yields no bins.
func Partition(length, binsize int32) ([]Interval, error) {
	if binsize <= 0 {
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "bin size must be positive, got %v", binsize)
	}
	if length < 0 {
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "length must not be negative, got %v", length)
	}
	n := (int64(length) + int64(binsize) - 1) / int64(binsize)
	result := make([]Interval, 0, n)
	for start := int64(0); start < int64(length); start += int64(binsize) {
		end := start + int64(binsize)
		if end > int64(length) {
			end = int64(length)
		}
		result = append(result, Interval{Start: int32(start), End: int32(end)})
	}
	return result, nil
}

// Layout partitions each contig in the given order, and returns the
// concatenation of all bins.
func Layout(contigs []Contig, binsize int32) ([]bed.Position, error) {
	var layout []bed.Position
	for _, contig := range contigs {
		bins, err := Partition(contig.Length, binsize)
		if err != nil {
			return nil, errors.Wrapf(err, "partitioning %v", contig.Name)
		}
		chrom := utils.Intern(contig.Name)
		for _, bin := range bins {
			layout = append(layout, bed.Position{Chrom: chrom, Start: bin.Start, End: bin.End})
		}
	}
	return layout, nil
}

// A Group lists the indices of all positions of a layout that lie on
// the same chromosome.
type Group struct {
	Chrom   string
	Indices []int
}

// GroupByChrom groups the positions of a layout by chromosome. Groups
// are returned in order of first appearance of their chromosome, and
// indices within a group are increasing.
func GroupByChrom(layout []bed.Position) []Group {
	var groups []Group
	index := make(map[string]int)
	for i, p := range layout {
		g, ok := index[p.Chrom]
		if !ok {
			g = len(groups)
			index[p.Chrom] = g
			groups = append(groups, Group{Chrom: p.Chrom})
		}
		groups[g].Indices = append(groups[g].Indices, i)
	}
	return groups
}

// CheckLayout verifies that two lists of positions are equal, position
// by position.
func CheckLayout(expected, actual []bed.Position) error {
	if len(expected) != len(actual) {
		return errors.Wrapf(utils.ErrLayoutMismatch, "expected %v bins, found %v", len(expected), len(actual))
	}
	for i, p := range expected {
		if actual[i] != p {
			return errors.Wrapf(utils.ErrLayoutMismatch, "bin %v is %v, expected %v", i, actual[i], p)
		}
	}
	return nil
}
