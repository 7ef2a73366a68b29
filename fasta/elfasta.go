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
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// ElfastaMagic is the magic byte sequence that every .elfasta file starts with.
var ElfastaMagic = []byte{0x31, 0xFA, 0x57, 0xA1} // 31FA57A1 => ELFASTA1

const slotSize = 2 * binary.MaxVarintLen64

// ToElfasta stores a reference into a mmappable .elfasta file. Contigs
// are stored in the order of ref.Contigs().
//
// The file starts with ElfastaMagic, followed by one header entry per
// contig: the contig name, a tab, and a fixed-size slot holding the
// varint-encoded offset and size of its sequence. A newline ends the
// header. The sequences follow without separators.
func ToElfasta(ref Reference, filename string) (err error) {
	contigs := ref.Contigs()
	offset := int64(len(ElfastaMagic)) + 1
	for _, contig := range contigs {
		offset += int64(len(contig.Name)) + 1 + slotSize
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer internal.Close(file, &err)
	w := bufio.NewWriter(file)

	if _, err := w.Write(ElfastaMagic); err != nil {
		return err
	}
	var slot [slotSize]byte
	for _, contig := range contigs {
		if _, err := w.WriteString(contig.Name); err != nil {
			return err
		}
		if err := w.WriteByte('\t'); err != nil {
			return err
		}
		slot = [slotSize]byte{}
		binary.PutVarint(slot[:binary.MaxVarintLen64], offset)
		binary.PutVarint(slot[binary.MaxVarintLen64:], int64(contig.Length))
		if _, err := w.Write(slot[:]); err != nil {
			return err
		}
		offset += int64(contig.Length)
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	for _, contig := range contigs {
		seq, err := ref.Sequence(contig.Name)
		if err != nil {
			return err
		}
		if int32(len(seq)) != contig.Length {
			return errors.Wrapf(utils.ErrInvalidArgument, "contig %v has %v bases, expected %v", contig.Name, len(seq), contig.Length)
		}
		if _, err := w.Write(seq); err != nil {
			return err
		}
	}
	return w.Flush()
}

// MappedFasta represents the contents of a memory-mapped .elfasta file.
type MappedFasta struct {
	contigs   []intervals.Contig
	sequences map[string][]byte
	data      []byte
	file      *os.File
}

func invalidElfasta(filename, reason string) error {
	return errors.Wrapf(utils.ErrInvalidArgument, "%v is not a valid .elfasta file - %v", filename, reason)
}

// OpenElfasta opens a .elfasta file.
func OpenElfasta(filename string) (_ *MappedFasta, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if stat.Size() <= int64(len(ElfastaMagic)) {
		_ = file.Close()
		return nil, invalidElfasta(filename, "file too short")
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "mapping %v", filename)
	}
	mapped := &MappedFasta{sequences: make(map[string][]byte), data: data, file: file}
	defer func() {
		if err != nil {
			_ = mapped.Close()
		}
	}()

	if !bytes.HasPrefix(data, ElfastaMagic) {
		return nil, invalidElfasta(filename, "invalid magic byte sequence")
	}
	header := data[len(ElfastaMagic):]
	for len(header) > 0 && header[0] != '\n' {
		tab := bytes.IndexByte(header, '\t')
		if tab < 0 || len(header) < tab+1+slotSize {
			return nil, invalidElfasta(filename, "truncated header")
		}
		name := utils.Intern(string(header[:tab]))
		slot := header[tab+1 : tab+1+slotSize]
		offset, n := binary.Varint(slot[:binary.MaxVarintLen64])
		if n <= 0 {
			return nil, invalidElfasta(filename, "bad offset for contig "+name)
		}
		size, n := binary.Varint(slot[binary.MaxVarintLen64:])
		if n <= 0 || size < 0 || offset < 0 || offset+size > int64(len(data)) {
			return nil, invalidElfasta(filename, "bad size for contig "+name)
		}
		mapped.contigs = append(mapped.contigs, intervals.Contig{Name: name, Length: int32(size)})
		mapped.sequences[name] = data[offset : offset+size : offset+size]
		header = header[tab+1+slotSize:]
	}
	if len(header) == 0 {
		return nil, invalidElfasta(filename, "missing end of header")
	}
	return mapped, nil
}

// Contigs implements Reference.
func (f *MappedFasta) Contigs() []intervals.Contig {
	return f.contigs
}

// Sequence implements Reference. The result refers to the mapped file,
// and is valid until Close is called.
func (f *MappedFasta) Sequence(name string) ([]byte, error) {
	seq, ok := f.sequences[name]
	if !ok {
		return nil, unknownContig(name)
	}
	return seq, nil
}

// Close unmaps and closes the .elfasta file.
func (f *MappedFasta) Close() error {
	err := unix.Munmap(f.data)
	f.data = nil
	f.sequences = nil
	if nerr := f.file.Close(); err == nil {
		err = nerr
	}
	return err
}
