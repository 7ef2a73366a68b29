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

package bed

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcnv/utils"
)

func TestAppendValue(t *testing.T) {
	assert.Equal(t, "42", string(AppendValue(nil, 42)))
	assert.Equal(t, "0", string(AppendValue(nil, 0)))
	assert.Equal(t, "-3", string(AppendValue(nil, -3)))
	assert.Equal(t, "0.25", string(AppendValue(nil, 0.25)))
	assert.Equal(t, "1.5e+20", string(AppendValue(nil, 1.5e20)))
	assert.Equal(t, AbsentMarker, string(AppendValue(nil, math.NaN())))
}

func TestParseValue(t *testing.T) {
	for _, field := range []string{"", "NA", "na", "NaN", "nan"} {
		value, err := ParseValue(field)
		require.NoError(t, err)
		assert.True(t, IsAbsent(value), field)
	}
	value, err := ParseValue("12.5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, value)
	_, err = ParseValue("twelve")
	assert.True(t, errors.Is(err, utils.ErrInvalidArgument))
}

func TestPositions(t *testing.T) {
	refs := []Position{{"1", 0, 100}, {"2", 200, 300}}
	encoded := string(AppendPositions(nil, refs))
	assert.Equal(t, "1,0,100|2,200,300", encoded)
	decoded, err := ParsePositions(encoded)
	require.NoError(t, err)
	assert.Equal(t, refs, decoded)

	assert.Equal(t, AbsentMarker, string(AppendPositions(nil, nil)))
	decoded, err = ParsePositions(AbsentMarker)
	require.NoError(t, err)
	assert.Empty(t, decoded)

	_, err = ParsePositions("1,0,100|2,200")
	assert.True(t, errors.Is(err, utils.ErrInvalidArgument))
	_, err = ParsePosition("1,100,50")
	assert.True(t, errors.Is(err, utils.ErrInvalidArgument))
}

func TestScanner(t *testing.T) {
	input := "# comment\ntrack name=x\n1\t0\t100\t5\n\n1\t100\t200\n2\t0\t50\t0.5\textra\n"
	s := NewScanner(strings.NewReader(input), "test")
	var regions []Region
	for s.Scan() {
		r, err := s.Region()
		require.NoError(t, err)
		regions = append(regions, r)
	}
	require.NoError(t, s.Err())
	require.Len(t, regions, 3)
	assert.Equal(t, NewRegion("1", 0, 100, 5), regions[0])
	assert.Equal(t, Position{"1", 100, 200}, regions[1].Position)
	assert.True(t, IsAbsent(regions[1].Value))
	assert.Equal(t, 0.5, regions[2].Value)
}

func TestScannerErrors(t *testing.T) {
	for _, input := range []string{"1\t0\n", "1\tx\t100\n", "1\t100\t50\n", "1\t-1\t50\n"} {
		s := NewScanner(strings.NewReader(input), "test")
		assert.False(t, s.Scan(), input)
		assert.True(t, errors.Is(s.Err(), utils.ErrInvalidArgument), input)
		assert.Contains(t, s.Err().Error(), "test line 1")
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRegion(NewRegion("1", 0, 100, 7)))
	require.NoError(t, w.WriteRegion(NewRegion("1", 100, 200, math.NaN())))
	require.NoError(t, w.WriteReferences(Position{"1", 0, 100}, []Position{{"1", 100, 200}, {"2", 0, 100}}))
	require.NoError(t, w.WriteReferences(Position{"1", 100, 200}, nil))
	require.NoError(t, w.Close())
	assert.Equal(t, "1\t0\t100\t7\n1\t100\t200\tnan\n1\t0\t100\t1,100,200|2,0,100\n1\t100\t200\tnan\n", buf.String())
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	regions := []Region{
		NewRegion("chr1", 0, 50000, 12),
		NewRegion("chr1", 50000, 100000, 0.75),
		NewRegion("chr2", 0, 20000, math.NaN()),
	}
	for _, name := range []string{"regions.bed", "regions.bed.gz"} {
		filename := filepath.Join(dir, name)
		require.NoError(t, WriteRegions(filename, regions))
		read, err := ReadRegions(filename)
		require.NoError(t, err)
		require.Len(t, read, len(regions))
		for i, r := range read {
			assert.Equal(t, regions[i].Position, r.Position)
			if IsAbsent(regions[i].Value) {
				assert.True(t, IsAbsent(r.Value))
			} else {
				assert.Equal(t, regions[i].Value, r.Value)
			}
		}
		layout, err := ReadLayout(filename)
		require.NoError(t, err)
		assert.Equal(t, Positions(regions), layout)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "regions.bed.gz"))
	require.NoError(t, err)
	assert.Equal(t, byte(0x1f), raw[0])
}

func TestReferenceFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "refs.bed")
	w, err := Create(filename)
	require.NoError(t, err)
	refs := []Position{{"1", 100, 200}, {"1", 200, 300}}
	require.NoError(t, w.WriteReferences(Position{"1", 0, 100}, refs))
	require.NoError(t, w.Close())

	f, err := Open(filename)
	require.NoError(t, err)
	defer f.Close()
	require.True(t, f.Scan())
	assert.Equal(t, Position{"1", 0, 100}, f.Position())
	read, err := f.References()
	require.NoError(t, err)
	assert.Equal(t, refs, read)
	assert.False(t, f.Scan())
	assert.NoError(t, f.Err())
}
