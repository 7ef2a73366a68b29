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

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntern(t *testing.T) {
	a := "chr1"
	b := string([]byte("chr1"))
	assert.Equal(t, Intern(a), Intern(b))
	assert.Equal(t, "chr2", Intern("chr2"))
}

func TestHandleGzip(t *testing.T) {
	var compressed bytes.Buffer
	w := gzip.NewWriter(&compressed)
	_, err := w.Write([]byte("chr1\t0\t10\t3\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, input := range []io.Reader{&compressed, strings.NewReader("chr1\t0\t10\t3\n")} {
		r, err := HandleGzip(bufio.NewReader(input))
		require.NoError(t, err)
		content, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "chr1\t0\t10\t3\n", string(content))
	}

	r, err := HandleGzip(bufio.NewReader(strings.NewReader("")))
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestProgress(t *testing.T) {
	var calls []int
	p := &Progress{Every: 3, Notify: func(done, total int) {
		calls = append(calls, done)
	}}
	for i := 1; i <= 7; i++ {
		p.Report(i, 7)
	}
	assert.Equal(t, []int{3, 6, 7}, calls)

	var none *Progress
	none.Report(1, 1)
}
