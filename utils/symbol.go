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

package utils

import "github.com/exascience/pargo/sync"

type symbolName string

// Hash implements FNV-1a.
func (s symbolName) Hash() uint64 {
	hash := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= 1099511628211
	}
	return hash
}

var symbolTable = sync.NewMap(0)

/*
Intern returns the canonical copy of the given string.

Chromosome names are repeated on every line of a region file. Interning
them makes all regions on the same chromosome share one string, so that
reading a file with millions of bins does not allocate millions of
copies of the same few names.

It is safe for multiple goroutines to call Intern concurrently.
*/
func Intern(s string) string {
	entry, _ := symbolTable.LoadOrStore(symbolName(s), s)
	return entry.(string)
}
