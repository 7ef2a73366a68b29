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

// Package zscore scores samples against a reference database.
package zscore

import (
	"math"

	"github.com/pkg/errors"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// A Source opens a fresh scan of a reference database each time it is
// called.
type Source func() (*bed.File, error)

// FileSource returns a Source that opens the given file.
func FileSource(filename string) Source {
	return func() (*bed.File, error) {
		return bed.Open(filename)
	}
}

// An Index maps every bin of a reference database to the array indices
// of the bins in its reference set.
type Index struct {
	positions  []bed.Position
	references [][]int
}

/*
BuildIndex reads a reference database twice. The first pass assigns
each bin an array index in order of appearance. The second pass
resolves each reference set into array indices.

A bin that appears twice is reported with utils.ErrLayoutMismatch. A
reference to a bin that does not appear in the database is reported
with utils.ErrDanglingReference.
*/
func BuildIndex(source Source, progress *utils.Progress) (*Index, error) {
	positions, lookup, err := indexPositions(source)
	if err != nil {
		return nil, err
	}
	references, err := resolveReferences(source, positions, lookup, progress)
	if err != nil {
		return nil, err
	}
	return &Index{positions: positions, references: references}, nil
}

func indexPositions(source Source) (positions []bed.Position, lookup map[bed.Position]int, err error) {
	f, err := source()
	if err != nil {
		return nil, nil, err
	}
	defer internal.Close(f, &err)
	lookup = make(map[bed.Position]int)
	for f.Scan() {
		p := f.Position()
		if i, ok := lookup[p]; ok {
			return nil, nil, errors.Wrapf(utils.ErrLayoutMismatch, "bin %v appears twice in the reference database, as entries %v and %v", p, i+1, len(positions)+1)
		}
		lookup[p] = len(positions)
		positions = append(positions, p)
	}
	if err := f.Err(); err != nil {
		return nil, nil, err
	}
	return positions, lookup, nil
}

func resolveReferences(source Source, positions []bed.Position, lookup map[bed.Position]int, progress *utils.Progress) (references [][]int, err error) {
	f, err := source()
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	references = make([][]int, 0, len(positions))
	for f.Scan() {
		i := len(references)
		if i >= len(positions) || f.Position() != positions[i] {
			return nil, errors.Wrap(utils.ErrLayoutMismatch, "reference database changed while it was being indexed")
		}
		refs, err := f.References()
		if err != nil {
			return nil, err
		}
		indices := make([]int, len(refs))
		for k, p := range refs {
			j, ok := lookup[p]
			if !ok {
				return nil, errors.Wrapf(utils.ErrDanglingReference, "bin %v refers to %v, which is not in the reference database", positions[i], p)
			}
			indices[k] = j
		}
		references = append(references, indices)
		progress.Report(len(references), len(positions))
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	if len(references) != len(positions) {
		return nil, errors.Wrap(utils.ErrLayoutMismatch, "reference database changed while it was being indexed")
	}
	return references, nil
}

// Len returns the number of bins in the index.
func (index *Index) Len() int {
	return len(index.positions)
}

// Positions returns the bins of the index, in database order.
func (index *Index) Positions() []bed.Position {
	return index.positions
}

// References returns the array indices of the reference set of the
// bin at array index i.
func (index *Index) References(i int) []int {
	return index.references[i]
}

// ZScore standardizes value against the given reference values, using
// their population standard deviation. It returns NaN if there are no
// reference values, or if they do not vary.
func ZScore(value float64, references []float64) float64 {
	if len(references) == 0 {
		return math.NaN()
	}
	mean, std := internal.PopMeanStdDev(references)
	if std == 0 || bed.IsAbsent(value) {
		return math.NaN()
	}
	return (value - mean) / std
}

/*
Score computes the z-score of every bin of a query sample. The query
must have exactly the bins of the index, in the same order; this is
checked before any score is computed, and a difference is reported with
utils.ErrLayoutMismatch.

The reference values of a bin are the values of the query sample
itself at the bins of its reference set.
*/
func (index *Index) Score(query []bed.Region, progress *utils.Progress) ([]bed.Region, error) {
	if len(query) != len(index.positions) {
		return nil, errors.Wrapf(utils.ErrLayoutMismatch, "query has %v bins, reference database has %v", len(query), len(index.positions))
	}
	if err := intervals.CheckLayout(index.positions, bed.Positions(query)); err != nil {
		return nil, err
	}
	result := make([]bed.Region, len(query))
	var values []float64
	for i, r := range query {
		values = values[:0]
		for _, j := range index.references[i] {
			values = append(values, query[j].Value)
		}
		result[i] = r.WithValue(ZScore(r.Value, values))
		progress.Report(i+1, len(query))
	}
	return result, nil
}
