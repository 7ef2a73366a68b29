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

// Package fasta provides access to reference sequences stored in FASTA
// files, FASTA files with an FAI index, and memory-mapped .elfasta
// files.
package fasta

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// A Reference gives access to the contigs of a reference genome.
type Reference interface {
	// Contigs returns all contigs in file order.
	Contigs() []intervals.Contig
	// Sequence returns the bases of the named contig. The result must
	// not be modified.
	Sequence(name string) ([]byte, error)
	Close() error
}

// Open opens a reference genome. Files ending in .elfasta are memory
// mapped. FASTA files with an accompanying .fai index are read contig
// by contig on demand. Other FASTA files are loaded into memory.
func Open(filename string) (Reference, error) {
	if strings.EqualFold(filepath.Ext(filename), ".elfasta") {
		f, err := OpenElfasta(filename)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	if fai := filename + ".fai"; internal.Exists(fai) {
		f, err := OpenIndexed(filename, fai)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := ParseFasta(filename)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func unknownContig(name string) error {
	return errors.Wrapf(utils.ErrInvalidArgument, "unknown contig %v", name)
}

var iupacUpperTable = func() (table [256]byte) {
	for i := range table {
		table[i] = byte(i)
	}
	for _, c := range "ACGTN" {
		table[c] = byte(c)
		table[c+'a'-'A'] = byte(c)
	}
	for _, c := range "RYMKWSBDHV" {
		table[c] = 'N'
		table[c+'a'-'A'] = 'N'
	}
	return
}()

// ToUpperAndN converts a base to upper case, and normalizes ambiguity
// codes to N.
func ToUpperAndN(base byte) byte {
	return iupacUpperTable[base]
}

func contigFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	return string(b[i:j])
}

// Fasta holds the contents of a FASTA file in memory.
type Fasta struct {
	contigs   []intervals.Contig
	sequences map[string][]byte
}

// NewFasta returns an in-memory reference with the given contigs and
// sequences. Each name in names must have an entry in sequences.
func NewFasta(names []string, sequences map[string][]byte) (*Fasta, error) {
	f := &Fasta{sequences: make(map[string][]byte, len(names))}
	for _, name := range names {
		seq, ok := sequences[name]
		if !ok {
			return nil, unknownContig(name)
		}
		if err := f.add(name, seq); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Fasta) add(name string, seq []byte) error {
	if _, ok := f.sequences[name]; ok {
		return errors.Wrapf(utils.ErrInvalidArgument, "duplicate contig %v", name)
	}
	if int64(len(seq)) > 1<<31-1 {
		return errors.Wrapf(utils.ErrInvalidArgument, "contig %v is too long", name)
	}
	name = utils.Intern(name)
	f.contigs = append(f.contigs, intervals.Contig{Name: name, Length: int32(len(seq))})
	f.sequences[name] = seq
	return nil
}

// Contigs implements Reference.
func (f *Fasta) Contigs() []intervals.Contig {
	return f.contigs
}

// Sequence implements Reference.
func (f *Fasta) Sequence(name string) ([]byte, error) {
	seq, ok := f.sequences[name]
	if !ok {
		return nil, unknownContig(name)
	}
	return seq, nil
}

// Close implements Reference.
func (f *Fasta) Close() error {
	f.sequences = nil
	return nil
}

// ParseFasta sequentially parses a FASTA file into memory. The file
// may be gzip or BGZF compressed.
func ParseFasta(filename string) (fasta *Fasta, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(file, &err)
	reader, err := utils.HandleGzip(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %v", filename)
	}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(nil, maxLineSize)

	fasta = &Fasta{sequences: make(map[string][]byte)}
	var (
		contig string
		seq    []byte
		inSeq  bool
	)
	for scanner.Scan() {
		b := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			if inSeq {
				if err := fasta.add(contig, seq); err != nil {
					return nil, errors.Wrap(err, filename)
				}
			}
			contig, seq, inSeq = contigFromHeader(b), nil, true
			continue
		}
		if !inSeq {
			return nil, errors.Wrapf(utils.ErrInvalidArgument, "invalid fasta file %v - missing first header", filename)
		}
		seq = append(seq, b...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %v", filename)
	}
	if !inSeq {
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "empty fasta file %v", filename)
	}
	if err := fasta.add(contig, seq); err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return fasta, nil
}

const maxLineSize = 1 << 30
