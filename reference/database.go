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

package reference

import (
	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/utils"
)

// WriteDatabase writes all remaining entries of the builder, in layout
// order. A bin with an empty reference set is written with an absent
// value.
func WriteDatabase(w *bed.Writer, b *Builder, progress *utils.Progress) error {
	done := 0
	for {
		entry, ok := b.Next()
		if !ok {
			return nil
		}
		if err := w.WriteReferences(entry.Target, entry.References); err != nil {
			return err
		}
		done++
		progress.Report(done, b.Len())
	}
}
