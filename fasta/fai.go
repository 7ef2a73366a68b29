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

package fasta

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// FaiEntry represents an entry in an FAI file.
type FaiEntry struct {
	Name      string
	Length    int32
	Offset    int64
	LineBases int32
	LineWidth int32
}

// ParseFai parses an FAI file. Entries are returned in file order.
func ParseFai(filename string) (fai []FaiEntry, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.Split(bytes.TrimRight(scanner.Bytes(), "\r"), []byte("\t"))
		if len(b) < 5 {
			return nil, errors.Wrapf(utils.ErrInvalidArgument, "badly formatted fai file %v line %v - invalid number of entries", filename, line)
		}
		entry := FaiEntry{Name: utils.Intern(string(b[0]))}
		if entry.Length, err = internal.ParseInt32(string(b[1])); err == nil {
			if entry.Offset, err = strconv.ParseInt(string(b[2]), 10, 64); err == nil {
				if entry.LineBases, err = internal.ParseInt32(string(b[3])); err == nil {
					entry.LineWidth, err = internal.ParseInt32(string(b[4]))
				}
			}
		}
		if err != nil {
			return nil, errors.Wrapf(utils.ErrInvalidArgument, "badly formatted fai file %v line %v - %v", filename, line, err)
		}
		if entry.Length > 0 && (entry.LineBases <= 0 || entry.LineWidth < entry.LineBases) {
			return nil, errors.Wrapf(utils.ErrInvalidArgument, "badly formatted fai file %v line %v - invalid line layout", filename, line)
		}
		fai = append(fai, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %v", filename)
	}
	return fai, nil
}

// BuildFai computes the FAI index of an uncompressed FASTA file. All
// lines of a contig except the last must have the same length.
func BuildFai(r io.Reader) (fai []FaiEntry, err error) {
	reader := bufio.NewReader(r)
	var (
		offset  int64
		entry   *FaiEntry
		lastLen int32 = -1
		done    bool
	)
	for {
		line, rerr := reader.ReadBytes('\n')
		if len(line) > 0 {
			width := int32(len(line))
			bases := int32(len(bytes.TrimRight(line, "\r\n")))
			switch {
			case line[0] == '>':
				fai = append(fai, FaiEntry{Name: utils.Intern(contigFromHeader(bytes.TrimRight(line, "\r\n")))})
				entry = &fai[len(fai)-1]
				entry.Offset = offset + int64(width)
				lastLen, done = -1, false
			case entry == nil:
				if bases > 0 {
					return nil, errors.Wrap(utils.ErrInvalidArgument, "invalid fasta file - missing first header")
				}
			case bases == 0:
				done = entry.Length > 0
			default:
				if done || (lastLen >= 0 && lastLen != entry.LineBases) {
					return nil, errors.Wrapf(utils.ErrInvalidArgument, "contig %v has lines of different lengths", entry.Name)
				}
				if entry.LineBases == 0 {
					entry.LineBases, entry.LineWidth = bases, width
				} else if bases > entry.LineBases {
					return nil, errors.Wrapf(utils.ErrInvalidArgument, "contig %v has lines of different lengths", entry.Name)
				}
				entry.Length += bases
				lastLen = bases
			}
			offset += int64(width)
		}
		if rerr == io.EOF {
			return fai, nil
		} else if rerr != nil {
			return nil, rerr
		}
	}
}

// WriteFai writes FAI entries in the standard five-column format.
func WriteFai(w io.Writer, fai []FaiEntry) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, entry := range fai {
		buf = append(buf[:0], entry.Name...)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(entry.Length), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, entry.Offset, 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(entry.LineBases), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(entry.LineWidth), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// IndexedFasta reads contigs from an uncompressed FASTA file using its
// FAI index. Each call to Sequence reads the contig from disk.
type IndexedFasta struct {
	file    *os.File
	fai     []FaiEntry
	entries map[string]int
	contigs []intervals.Contig
}

// OpenIndexed opens a FASTA file with the given FAI index.
func OpenIndexed(filename, faiFilename string) (*IndexedFasta, error) {
	fai, err := ParseFai(faiFilename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	result := &IndexedFasta{file: file, fai: fai, entries: make(map[string]int, len(fai))}
	for i, entry := range fai {
		result.entries[entry.Name] = i
		result.contigs = append(result.contigs, intervals.Contig{Name: entry.Name, Length: entry.Length})
	}
	return result, nil
}

// Contigs implements Reference.
func (f *IndexedFasta) Contigs() []intervals.Contig {
	return f.contigs
}

// Sequence implements Reference.
func (f *IndexedFasta) Sequence(name string) ([]byte, error) {
	i, ok := f.entries[name]
	if !ok {
		return nil, unknownContig(name)
	}
	entry := f.fai[i]
	if entry.Length == 0 {
		return nil, nil
	}
	lines := int64(entry.Length / entry.LineBases)
	size := lines*int64(entry.LineWidth) + int64(entry.Length%entry.LineBases)
	raw := make([]byte, size)
	n, err := f.file.ReadAt(raw, entry.Offset)
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "reading contig %v", name)
	}
	raw = raw[:n]
	seq := raw[:0]
	for _, c := range raw {
		if c != '\n' && c != '\r' {
			seq = append(seq, c)
		}
	}
	if int32(len(seq)) != entry.Length {
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "contig %v does not match its fai entry", name)
	}
	return seq, nil
}

// Close implements Reference.
func (f *IndexedFasta) Close() error {
	return f.file.Close()
}
