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
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/pkg/errors"

	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/utils"
)

/*
A Scanner reads region lines of the form

	chrom <tab> start <tab> end [<tab> value [<tab> ...]]

one at a time. Lines with only three fields have no value. Empty
lines, comments, and track and browser lines are skipped. Fields
after the fourth are ignored.

A Scanner produces each line once. To read a file again, open it again.
*/
type Scanner struct {
	scanner  *bufio.Scanner
	name     string
	line     int
	position Position
	value    string
	err      error
}

const maxLineSize = 64 * 1024 * 1024

// NewScanner returns a Scanner reading from r. The name is used in
// error messages.
func NewScanner(r io.Reader, name string) *Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	return &Scanner{scanner: scanner, name: name}
}

// Scan advances to the next line. It returns false at the end of the
// input or when an error occurs; Err tells which.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.scanner.Scan() {
		s.line++
		line := s.scanner.Bytes()
		if skipLine(line) {
			continue
		}
		fields := bytes.SplitN(bytes.TrimRight(line, "\r"), tab, 5)
		if len(fields) < 3 {
			s.err = s.errorf(errors.Wrapf(utils.ErrInvalidArgument, "expected at least 3 fields, found %v", len(fields)))
			return false
		}
		position, err := makePosition(string(fields[0]), string(fields[1]), string(fields[2]))
		if err != nil {
			s.err = s.errorf(err)
			return false
		}
		s.position = position
		if len(fields) > 3 {
			s.value = string(fields[3])
		} else {
			s.value = ""
		}
		return true
	}
	if err := s.scanner.Err(); err != nil {
		s.err = errors.Wrapf(err, "reading %v", s.name)
	}
	return false
}

func (s *Scanner) errorf(err error) error {
	return errors.Wrapf(err, "%v line %v", s.name, s.line)
}

// Position returns the position of the current line.
func (s *Scanner) Position() Position {
	return s.position
}

// Value returns the raw value field of the current line, or the empty
// string if the line has no value field.
func (s *Scanner) Value() string {
	return s.value
}

// Region returns the current line as a region with a numeric value.
func (s *Scanner) Region() (Region, error) {
	value, err := ParseValue(s.value)
	if err != nil {
		s.err = s.errorf(err)
		return Region{}, s.err
	}
	return Region{Position: s.position, Value: value}, nil
}

// References returns the value of the current line as a reference set.
func (s *Scanner) References() ([]Position, error) {
	positions, err := ParsePositions(s.value)
	if err != nil {
		s.err = s.errorf(err)
		return nil, s.err
	}
	return positions, nil
}

// Err returns the first error encountered by the Scanner.
func (s *Scanner) Err() error {
	return s.err
}

// A File is a Scanner over an open file.
type File struct {
	*Scanner
	closer io.Closer
}

// NewFile returns a File scanning the given reader, which is closed by
// the File's Close method.
func NewFile(r io.ReadCloser, name string) *File {
	return &File{Scanner: NewScanner(r, name), closer: r}
}

// Open opens a region file for scanning. The file may be plain text,
// or gzip or BGZF compressed.
func Open(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	reader, err := utils.HandleGzip(bufio.NewReader(file))
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "opening %v", filename)
	}
	return &File{Scanner: NewScanner(reader, filename), closer: file}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.closer.Close()
}

// ReadRegions reads all regions from the given file.
func ReadRegions(filename string) (regions []Region, err error) {
	f, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	for f.Scan() {
		region, err := f.Region()
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

// ReadLayout reads the positions of all lines in the given file,
// ignoring their values.
func ReadLayout(filename string) (layout []Position, err error) {
	f, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	for f.Scan() {
		layout = append(layout, f.Position())
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return layout, nil
}

// A Writer writes region lines.
type Writer struct {
	w       *bufio.Writer
	buf     []byte
	closers []io.Closer
}

// NewWriter returns a Writer writing to w. Close flushes the Writer,
// but does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Create creates a region file. If the file name ends in .gz, the
// output is BGZF compressed, so that it can be indexed with tabix.
func Create(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(filename, ".gz") {
		bgz := bgzf.NewWriter(file, 1)
		return &Writer{w: bufio.NewWriter(bgz), closers: []io.Closer{bgz, file}}, nil
	}
	return &Writer{w: bufio.NewWriter(file), closers: []io.Closer{file}}, nil
}

func (w *Writer) appendPosition(p Position) {
	w.buf = append(w.buf[:0], p.Chrom...)
	w.buf = append(w.buf, '\t')
	w.buf = strconv.AppendInt(w.buf, int64(p.Start), 10)
	w.buf = append(w.buf, '\t')
	w.buf = strconv.AppendInt(w.buf, int64(p.End), 10)
	w.buf = append(w.buf, '\t')
}

// WriteRegion writes one region line.
func (w *Writer) WriteRegion(r Region) error {
	w.appendPosition(r.Position)
	w.buf = AppendValue(w.buf, r.Value)
	w.buf = append(w.buf, '\n')
	_, err := w.w.Write(w.buf)
	return err
}

// WriteReferences writes one reference database line: the target
// position with its reference set as value.
func (w *Writer) WriteReferences(target Position, references []Position) error {
	w.appendPosition(target)
	w.buf = AppendPositions(w.buf, references)
	w.buf = append(w.buf, '\n')
	_, err := w.w.Write(w.buf)
	return err
}

// Close flushes the Writer and closes the files it created.
func (w *Writer) Close() error {
	err := w.w.Flush()
	for _, c := range w.closers {
		if nerr := c.Close(); err == nil {
			err = nerr
		}
	}
	return err
}

// WriteRegions writes the given regions to a new file.
func WriteRegions(filename string, regions []Region) (err error) {
	w, err := Create(filename)
	if err != nil {
		return err
	}
	defer internal.Close(w, &err)
	for _, r := range regions {
		if err := w.WriteRegion(r); err != nil {
			return err
		}
	}
	return nil
}
