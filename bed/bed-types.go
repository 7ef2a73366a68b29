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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/utils"
)

// A Position is a half-open, 0-based interval on one chromosome.
//
// Positions identify bins. Two regions at the same position are the
// same bin, regardless of the values they carry.
type Position struct {
	Chrom      string
	Start, End int32
}

// Width returns the number of bases covered by the position.
func (p Position) Width() int32 {
	return p.End - p.Start
}

func (p Position) String() string {
	return p.Chrom + ":" + strconv.FormatInt(int64(p.Start), 10) + "-" + strconv.FormatInt(int64(p.End), 10)
}

// A Region is a position carrying one numeric value: a read count, a
// corrected ratio, or a z-score. Absent values are represented as NaN.
//
// Regions are values. Stages of the pipeline produce new regions
// rather than modifying the ones they receive.
type Region struct {
	Position
	Value float64
}

// NewRegion returns a region at the given position.
func NewRegion(chrom string, start, end int32, value float64) Region {
	return Region{Position: Position{Chrom: chrom, Start: start, End: end}, Value: value}
}

// WithValue returns a region at the same position carrying the given value.
func (r Region) WithValue(value float64) Region {
	return Region{Position: r.Position, Value: value}
}

// IsAbsent reports whether value is the marker for an absent value.
func IsAbsent(value float64) bool {
	return math.IsNaN(value)
}

// AbsentMarker is written in place of an absent value.
const AbsentMarker = "nan"

// AppendValue appends the textual representation of the given value
// to buf. Integral values are written as integers, absent values as
// AbsentMarker.
func AppendValue(buf []byte, value float64) []byte {
	switch {
	case IsAbsent(value):
		return append(buf, AbsentMarker...)
	case value == math.Trunc(value) && math.Abs(value) < 1e15:
		return strconv.AppendInt(buf, int64(value), 10)
	default:
		return strconv.AppendFloat(buf, value, 'g', -1, 64)
	}
}

func isAbsentMarker(field string) bool {
	return field == "" || strings.EqualFold(field, "na") || strings.EqualFold(field, "nan")
}

// ParseValue parses a value field. An empty field and the markers NA
// and NaN, in any case, denote an absent value.
func ParseValue(field string) (float64, error) {
	if isAbsentMarker(field) {
		return math.NaN(), nil
	}
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, errors.Wrapf(utils.ErrInvalidArgument, "invalid value %q", field)
	}
	return value, nil
}

// AppendPosition appends chrom,start,end to buf.
func AppendPosition(buf []byte, p Position) []byte {
	buf = append(buf, p.Chrom...)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(p.Start), 10)
	buf = append(buf, ',')
	return strconv.AppendInt(buf, int64(p.End), 10)
}

// AppendPositions appends the reference-set encoding of the given
// positions to buf: chrom,start,end triples separated by '|'. An
// empty set is encoded as AbsentMarker.
func AppendPositions(buf []byte, positions []Position) []byte {
	if len(positions) == 0 {
		return append(buf, AbsentMarker...)
	}
	for i, p := range positions {
		if i > 0 {
			buf = append(buf, '|')
		}
		buf = AppendPosition(buf, p)
	}
	return buf
}

// ParsePosition parses a chrom,start,end triple.
func ParsePosition(field string) (Position, error) {
	parts := strings.Split(field, ",")
	if len(parts) != 3 || parts[0] == "" {
		return Position{}, errors.Wrapf(utils.ErrInvalidArgument, "invalid position %q", field)
	}
	return makePosition(parts[0], parts[1], parts[2])
}

// ParsePositions parses a reference-set encoding, as produced by
// AppendPositions. Absent markers yield an empty set.
func ParsePositions(field string) ([]Position, error) {
	if isAbsentMarker(field) {
		return nil, nil
	}
	n := strings.Count(field, "|") + 1
	positions := make([]Position, 0, n)
	for len(field) > 0 {
		var item string
		if i := strings.IndexByte(field, '|'); i >= 0 {
			item, field = field[:i], field[i+1:]
		} else {
			item, field = field, ""
		}
		p, err := ParsePosition(item)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

func makePosition(chrom, start, end string) (Position, error) {
	s, err := internal.ParseInt32(start)
	if err != nil {
		return Position{}, errors.Wrapf(utils.ErrInvalidArgument, "invalid start %q", start)
	}
	e, err := internal.ParseInt32(end)
	if err != nil {
		return Position{}, errors.Wrapf(utils.ErrInvalidArgument, "invalid end %q", end)
	}
	if s < 0 || e <= s {
		return Position{}, errors.Wrapf(utils.ErrInvalidArgument, "invalid interval %v-%v", s, e)
	}
	return Position{Chrom: utils.Intern(chrom), Start: s, End: e}, nil
}

// Positions returns the positions of the given regions, in order.
func Positions(regions []Region) []Position {
	positions := make([]Position, len(regions))
	for i, r := range regions {
		positions[i] = r.Position
	}
	return positions
}

var tab = []byte("\t")

func skipLine(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0 ||
		bytes.HasPrefix(line, []byte("#")) ||
		bytes.HasPrefix(line, []byte("track")) ||
		bytes.HasPrefix(line, []byte("browser"))
}
