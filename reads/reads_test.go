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

package reads

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

type fakeCounter struct {
	counts map[string]int
	failAt map[string]int32
	calls  int
}

func (c *fakeCounter) Count(chrom string, start, end int32) (int, error) {
	c.calls++
	if at, ok := c.failAt[chrom]; ok && start >= at {
		return 0, errors.Errorf("chromosome %v not indexed", chrom)
	}
	return c.counts[chrom] + int(start/100), nil
}

var testLayout = []bed.Position{
	{Chrom: "1", Start: 0, End: 100},
	{Chrom: "1", Start: 100, End: 200},
	{Chrom: "2", Start: 0, End: 100},
	{Chrom: "2", Start: 100, End: 200},
	{Chrom: "2", Start: 200, End: 250},
	{Chrom: "3", Start: 0, End: 100},
}

func TestCountBins(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"1": 10, "2": 20, "3": 30}}
	var reports []int
	progress := &utils.Progress{Notify: func(done, total int) {
		assert.Equal(t, len(testLayout), total)
		reports = append(reports, done)
	}}
	regions := CountBins(testLayout, counter, nil, progress)
	require.Len(t, regions, len(testLayout))
	assert.Equal(t, []bed.Position(testLayout), bed.Positions(regions))
	var values []float64
	for _, r := range regions {
		values = append(values, r.Value)
	}
	assert.Equal(t, []float64{10, 11, 20, 21, 22, 30}, values)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, reports)
}

func TestCountBinsFailingChromosome(t *testing.T) {
	counter := &fakeCounter{
		counts: map[string]int{"1": 10, "2": 20, "3": 30},
		failAt: map[string]int32{"2": 200},
	}
	logger, hook := test.NewNullLogger()
	regions := CountBins(testLayout, counter, logger, nil)
	var values []float64
	for _, r := range regions {
		values = append(values, r.Value)
	}
	assert.Equal(t, []float64{10, 11, 0, 0, 0, 30}, values)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "2", hook.LastEntry().Data["chrom"])
	assert.Equal(t, 6, counter.calls)
}

func TestCountBinsEmpty(t *testing.T) {
	counter := &fakeCounter{}
	assert.Empty(t, CountBins(nil, counter, nil, nil))
	assert.Equal(t, 0, counter.calls)
}

func TestIndexFilename(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "sample.bam")
	assert.Equal(t, filepath.Join(dir, "sample.bai"), IndexFilename(filename))
	require.NoError(t, os.WriteFile(filename+".bai", nil, 0o644))
	assert.Equal(t, filename+".bai", IndexFilename(filename))
	assert.Equal(t, filepath.Join(dir, "x.cram.bai"), IndexFilename(filepath.Join(dir, "x.cram")))
}

func TestOpenIndexedBamMissing(t *testing.T) {
	_, err := OpenIndexedBam(filepath.Join(t.TempDir(), "missing.bam"))
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 1000, nil, nil)
	require.NoError(t, err)

	read := &sam.Record{Ref: chr1, Pos: 90, Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 20)}}
	assert.True(t, overlaps(read, chr1, intervals.Interval{Start: 100, End: 200}))
	assert.True(t, overlaps(read, chr1, intervals.Interval{Start: 0, End: 91}))
	assert.False(t, overlaps(read, chr1, intervals.Interval{Start: 0, End: 90}))
	assert.False(t, overlaps(read, chr1, intervals.Interval{Start: 110, End: 200}))
	assert.False(t, overlaps(read, chr2, intervals.Interval{Start: 100, End: 200}))

	empty := &sam.Record{Ref: chr1, Pos: 150}
	assert.True(t, overlaps(empty, chr1, intervals.Interval{Start: 100, End: 151}))
	assert.False(t, overlaps(empty, chr1, intervals.Interval{Start: 151, End: 200}))

	assert.False(t, overlaps(&sam.Record{Pos: 150}, chr1, intervals.Interval{Start: 100, End: 200}))
}
