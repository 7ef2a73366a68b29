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
	"github.com/exascience/pargo/parallel"
	"github.com/pkg/errors"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/fasta"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// Content describes the bases of the reference sequence in one bin.
type Content struct {
	// GC is the number of G/C bases, scaled to the width of the bin.
	GC int32
	// N is the number of ambiguous bases: N and the IUPAC ambiguity codes.
	N int32
}

var isGC = func() (table [256]bool) {
	for _, c := range "GCSgcs" {
		table[c] = true
	}
	return
}()

// SequenceContent computes the content of a bin of the given width
// from its sequence. The GC count is the fraction of G/C bases in seq
// times width, rounded down. An empty sequence has GC count 0.
func SequenceContent(seq []byte, width int32) Content {
	var gc, n int64
	for _, c := range seq {
		if isGC[c] {
			gc++
		} else if fasta.ToUpperAndN(c) == 'N' {
			n++
		}
	}
	var result Content
	if len(seq) > 0 {
		result.GC = int32(float64(gc) / float64(len(seq)) * float64(width))
	}
	result.N = int32(n)
	return result
}

// Profile computes the content of every position of the layout from
// the reference. Contigs are loaded one at a time, and the bins of a
// contig are processed in parallel.
func Profile(ref fasta.Reference, layout []bed.Position) ([]Content, error) {
	result := make([]Content, len(layout))
	for _, group := range intervals.GroupByChrom(layout) {
		seq, err := ref.Sequence(group.Chrom)
		if err != nil {
			return nil, err
		}
		indices := group.Indices
		if err, _ := parallel.RangeReduce(0, len(indices), 0, func(low, high int) interface{} {
			for _, i := range indices[low:high] {
				p := layout[i]
				if int(p.End) > len(seq) {
					return errors.Wrapf(utils.ErrLayoutMismatch, "bin %v extends beyond the end of %v (length %v)", p, p.Chrom, len(seq))
				}
				result[i] = SequenceContent(seq[p.Start:p.End], p.Width())
			}
			return nil
		}, func(x, y interface{}) interface{} {
			if x != nil {
				return x
			}
			return y
		}).(error); err != nil {
			return nil, err
		}
	}
	return result, nil
}
