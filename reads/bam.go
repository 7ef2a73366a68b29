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
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"

	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// IndexedBam counts reads in a coordinate-sorted BAM file through its
// BAI index.
type IndexedBam struct {
	filename string
	file     *os.File
	reader   *bam.Reader
	index    *bam.Index
	refs     map[string]*sam.Reference
}

// IndexFilename returns the name of the BAI index of the given BAM
// file: filename.bai if it exists, otherwise filename with its .bam
// extension replaced by .bai.
func IndexFilename(filename string) string {
	if bai := filename + ".bai"; internal.Exists(bai) {
		return bai
	}
	if strings.HasSuffix(filename, ".bam") {
		return strings.TrimSuffix(filename, ".bam") + ".bai"
	}
	return filename + ".bai"
}

// OpenIndexedBam opens a BAM file together with its BAI index.
func OpenIndexedBam(filename string) (result *IndexedBam, err error) {
	indexFile, err := os.Open(IndexFilename(filename))
	if err != nil {
		return nil, errors.Wrapf(err, "opening index of %v", filename)
	}
	defer internal.Close(indexFile, &err)
	idx, err := bam.ReadIndex(indexFile)
	if err != nil {
		return nil, errors.Wrapf(err, "reading index of %v", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	reader, err := bam.NewReader(file, 2)
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "reading %v", filename)
	}
	result = &IndexedBam{
		filename: filename,
		file:     file,
		reader:   reader,
		index:    idx,
		refs:     make(map[string]*sam.Reference),
	}
	for _, ref := range reader.Header().Refs() {
		result.refs[ref.Name()] = ref
	}
	return result, nil
}

// Contigs returns the reference sequences listed in the BAM header, in
// header order.
func (b *IndexedBam) Contigs() []intervals.Contig {
	refs := b.reader.Header().Refs()
	contigs := make([]intervals.Contig, 0, len(refs))
	for _, ref := range refs {
		contigs = append(contigs, intervals.Contig{Name: utils.Intern(ref.Name()), Length: int32(ref.Len())})
	}
	return contigs
}

// Count implements ReadCounter. A read overlaps [start, end) if its
// aligned span does; reads with an empty span occupy their start
// position.
func (b *IndexedBam) Count(chrom string, start, end int32) (int, error) {
	ref, ok := b.refs[chrom]
	if !ok {
		return 0, errors.Wrapf(utils.ErrInvalidArgument, "chromosome %v not found in %v", chrom, b.filename)
	}
	chunks, err := b.index.Chunks(ref, int(start), int(end))
	if err == index.ErrNoReference {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "querying index of %v", b.filename)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	it, err := bam.NewIterator(b.reader, chunks)
	if err != nil {
		return 0, errors.Wrapf(err, "reading %v", b.filename)
	}
	n := 0
	for it.Next() {
		if overlaps(it.Record(), ref, intervals.Interval{Start: start, End: end}) {
			n++
		}
	}
	if err := it.Close(); err != nil {
		return 0, errors.Wrapf(err, "reading %v", b.filename)
	}
	return n, nil
}

func overlaps(record *sam.Record, ref *sam.Reference, bin intervals.Interval) bool {
	if record.Ref != ref {
		return false
	}
	recordEnd := record.End()
	if recordEnd <= record.Pos {
		recordEnd = record.Pos + 1
	}
	return bin.Overlaps(int32(record.Pos), int32(recordEnd))
}

// Close closes the BAM file.
func (b *IndexedBam) Close() error {
	err := b.reader.Close()
	if nerr := b.file.Close(); err == nil {
		err = nerr
	}
	return err
}
