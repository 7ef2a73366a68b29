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

// Package reads counts aligned reads per bin.
package reads

import (
	log "github.com/sirupsen/logrus"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// A ReadCounter reports the number of reads that overlap the range
// [start, end) on a chromosome.
type ReadCounter interface {
	Count(chrom string, start, end int32) (int, error)
}

// CountBins returns one region per position of the layout, in layout
// order, carrying the number of reads the counter reports for it.
//
// Counting is best effort per chromosome: if the counter fails for any
// bin of a chromosome, for example because the chromosome is missing
// from the alignment index, all bins of that chromosome get count 0
// and a warning is logged. A nil logger uses the standard logger.
func CountBins(layout []bed.Position, counter ReadCounter, logger log.FieldLogger, progress *utils.Progress) []bed.Region {
	if logger == nil {
		logger = log.StandardLogger()
	}
	result := make([]bed.Region, len(layout))
	for i, p := range layout {
		result[i] = bed.Region{Position: p}
	}
	done := 0
	for _, group := range intervals.GroupByChrom(layout) {
		for k, i := range group.Indices {
			p := layout[i]
			n, err := counter.Count(p.Chrom, p.Start, p.End)
			if err != nil {
				logger.WithFields(log.Fields{
					"chrom": group.Chrom,
					"bin":   p.String(),
				}).Warnf("cannot count reads, all %v bins of %v set to 0: %v", len(group.Indices), group.Chrom, err)
				for _, j := range group.Indices[:k] {
					result[j].Value = 0
				}
				done += len(group.Indices) - k
				progress.Report(done, len(layout))
				break
			}
			result[i].Value = float64(n)
			done++
			progress.Report(done, len(layout))
		}
	}
	return result
}
