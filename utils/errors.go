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

import "github.com/pkg/errors"

// The error taxonomy shared by all elcnv packages. Errors returned by
// elcnv wrap one of these, so callers can test with errors.Is.
var (
	// ErrInvalidArgument signals malformed configuration or input,
	// for example a non-positive bin size or an unparsable line.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientData signals that a regression was attempted on
	// an empty series.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrLayoutMismatch signals that two bin layouts that must be
	// identical are not.
	ErrLayoutMismatch = errors.New("bin layout mismatch")

	// ErrDanglingReference signals that a reference database refers
	// to a bin that it does not itself contain.
	ErrDanglingReference = errors.New("dangling reference")
)
