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
	"math/rand"
	"testing"

	"github.com/pkg/errors"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/utils"
)

func intervalsEqual(intervals1, intervals2 []Interval) bool {
	if len(intervals1) != len(intervals2) {
		return false
	}
	for i, interval1 := range intervals1 {
		if interval1 != intervals2[i] {
			return false
		}
	}
	return true
}

func TestPartition(t *testing.T) {
	bins, err := Partition(500, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !intervalsEqual(bins, []Interval{{0, 100}, {100, 200}, {200, 300}, {300, 400}, {400, 500}}) {
		t.Error("Partition 1 failed:", bins)
	}
	bins, err = Partition(250, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !intervalsEqual(bins, []Interval{{0, 100}, {100, 200}, {200, 250}}) {
		t.Error("Partition 2 failed:", bins)
	}
	bins, err = Partition(0, 100)
	if err != nil || len(bins) != 0 {
		t.Error("empty Partition failed:", bins, err)
	}
	bins, err = Partition(50, 100)
	if err != nil || !intervalsEqual(bins, []Interval{{0, 50}}) {
		t.Error("short Partition failed:", bins, err)
	}
}

func TestPartitionInvalid(t *testing.T) {
	if _, err := Partition(500, 0); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Error("zero bin size not rejected:", err)
	}
	if _, err := Partition(500, -10); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Error("negative bin size not rejected:", err)
	}
	if _, err := Partition(-1, 100); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Error("negative length not rejected:", err)
	}
}

func TestPartitionCoverage(t *testing.T) {
	for i := 0; i < 1000; i++ {
		length := rand.Int31n(1000000)
		binsize := rand.Int31n(10000) + 1
		bins, err := Partition(length, binsize)
		if err != nil {
			t.Fatal(err)
		}
		pos := int32(0)
		for j, bin := range bins {
			if bin.Start != pos {
				t.Fatalf("bin %v of Partition(%v, %v) starts at %v, expected %v", j, length, binsize, bin.Start, pos)
			}
			if bin.Width() <= 0 || bin.Width() > binsize {
				t.Fatalf("bin %v of Partition(%v, %v) has width %v", j, length, binsize, bin.Width())
			}
			if j < len(bins)-1 && bin.Width() != binsize {
				t.Fatalf("inner bin %v of Partition(%v, %v) has width %v", j, length, binsize, bin.Width())
			}
			pos = bin.End
		}
		if pos != length {
			t.Fatalf("Partition(%v, %v) ends at %v", length, binsize, pos)
		}
	}
}

func TestPartitionLarge(t *testing.T) {
	const length = 1<<31 - 1
	bins, err := Partition(length, 1<<30)
	if err != nil {
		t.Fatal(err)
	}
	if !intervalsEqual(bins, []Interval{{0, 1 << 30}, {1 << 30, length}}) {
		t.Error("large Partition failed:", bins)
	}
}

func TestLayout(t *testing.T) {
	layout, err := Layout([]Contig{{Name: "chr2", Length: 250}, {Name: "chr1", Length: 100}}, 100)
	if err != nil {
		t.Fatal(err)
	}
	expected := []bed.Position{{Chrom: "chr2", Start: 0, End: 100}, {Chrom: "chr2", Start: 100, End: 200}, {Chrom: "chr2", Start: 200, End: 250}, {Chrom: "chr1", Start: 0, End: 100}}
	if err := CheckLayout(expected, layout); err != nil {
		t.Error(err)
	}
	groups := GroupByChrom(layout)
	if len(groups) != 2 || groups[0].Chrom != "chr2" || len(groups[0].Indices) != 3 || groups[1].Chrom != "chr1" || groups[1].Indices[0] != 3 {
		t.Error("GroupByChrom failed:", groups)
	}
}

func TestCheckLayout(t *testing.T) {
	a := []bed.Position{{Chrom: "1", Start: 0, End: 100}, {Chrom: "1", Start: 100, End: 200}}
	if err := CheckLayout(a, a[:1]); !errors.Is(err, utils.ErrLayoutMismatch) {
		t.Error("length mismatch not detected:", err)
	}
	b := []bed.Position{{Chrom: "1", Start: 0, End: 100}, {Chrom: "1", Start: 100, End: 300}}
	if err := CheckLayout(a, b); !errors.Is(err, utils.ErrLayoutMismatch) {
		t.Error("position mismatch not detected:", err)
	}
}

func TestOverlaps(t *testing.T) {
	interval := Interval{Start: 100, End: 200}
	if !interval.Overlaps(199, 250) || !interval.Overlaps(50, 101) || !interval.Overlaps(120, 130) {
		t.Error("Overlaps failed")
	}
	if interval.Overlaps(200, 300) || interval.Overlaps(0, 100) {
		t.Error("Overlaps false positive")
	}
}
