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

// Progress is an optional observer for long-running loops. Notify is
// called with the number of finished items and the total number of
// items every Every items, and once more when the loop finishes. A nil
// *Progress, or one without Notify, ignores all reports.
type Progress struct {
	Every  int
	Notify func(done, total int)
}

// Report informs the observer that done out of total items are finished.
func (p *Progress) Report(done, total int) {
	if p == nil || p.Notify == nil {
		return
	}
	if p.Every <= 1 || done%p.Every == 0 || done == total {
		p.Notify(done, total)
	}
}
