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

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/intervals"
)

func TestLayout(t *testing.T) {
	contigs := func() ([]intervals.Contig, error) {
		return []intervals.Contig{{Name: "chr1", Length: 250}}, nil
	}
	args := commonArgs{Binsize: 100}
	layout, err := args.layout(contigs)
	require.NoError(t, err)
	assert.Equal(t, []bed.Position{{Chrom: "chr1", Start: 0, End: 100}, {Chrom: "chr1", Start: 100, End: 200}, {Chrom: "chr1", Start: 200, End: 250}}, layout)

	args.BinFile = filepath.Join(t.TempDir(), "bins.bed")
	require.NoError(t, os.WriteFile(args.BinFile, []byte("chr2\t0\t10\nchr2\t10\t20\n"), 0o644))
	layout, err = args.layout(contigs)
	require.NoError(t, err)
	assert.Equal(t, []bed.Position{{Chrom: "chr2", Start: 0, End: 10}, {Chrom: "chr2", Start: 10, End: 20}}, layout)
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.bed")
	require.NoError(t, os.WriteFile(existing, nil, 0o644))
	assert.True(t, checkExist("--input", existing))
	assert.False(t, checkExist("--input", filepath.Join(dir, "missing.bed")))
	assert.False(t, checkExist("--input", ""))
	assert.False(t, checkExist("--input", "--output"))

	created := filepath.Join(dir, "sub", "out.bed")
	assert.True(t, checkCreate("--output", created))
	_, err := os.Stat(created)
	assert.True(t, os.IsNotExist(err), "checkCreate must not leave files behind")
	assert.True(t, checkCreate("--output", existing))
}

func TestCheckLayout(t *testing.T) {
	layout := []bed.Position{{Chrom: "1", Start: 0, End: 100}}
	assert.NoError(t, checkLayout("x", layout, []bed.Region{bed.NewRegion("1", 0, 100, 3)}))
	assert.Error(t, checkLayout("x", layout, []bed.Region{bed.NewRegion("1", 0, 50, 3)}))
}

func TestCommonArgsCheck(t *testing.T) {
	args := commonArgs{Binsize: 0}
	assert.False(t, args.check(false))
	args.Binsize = 100
	assert.True(t, args.check(false))
	assert.False(t, args.check(true), "a reference is required")
}

func TestFullPath(t *testing.T) {
	assert.Equal(t, "/data/x.bed", fullPath("/data/x.bed"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "x.bed"), fullPath("x.bed"))
}
