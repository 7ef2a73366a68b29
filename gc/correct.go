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

// Package gc corrects read counts for the bias introduced by the GC
// content of the reference sequence.
package gc

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/fasta"
	"github.com/exascience/elcnv/lowess"
	"github.com/exascience/elcnv/utils"
)

// A Smoother fits y as a function of x, and returns one value per
// input pair in input order. lowess.Smooth is a Smoother.
type Smoother func(x, y []float64, frac float64, iterations int, delta float64) ([]float64, error)

// Config configures the correction.
type Config struct {
	// FracN is the maximum fraction of ambiguous bases in a usable bin.
	FracN float64
	// FracR is the minimum number of reads per base in a usable bin.
	FracR float64
	// Iterations is the number of robustness iterations of the fit.
	Iterations int
	// Frac is the fraction of usable bins each local fit uses.
	Frac float64
	// Smoother performs the fit. Nil means lowess.Smooth.
	Smoother Smoother
	// Logger receives warnings. Nil means the standard logger.
	Logger log.FieldLogger
}

// Default configuration values.
const (
	DefaultFracN      = 0.1
	DefaultFracR      = 0.0001
	DefaultIterations = 3
	DefaultFrac       = 0.1
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FracN:      DefaultFracN,
		FracR:      DefaultFracR,
		Iterations: DefaultIterations,
		Frac:       DefaultFrac,
	}
}

// Validate checks that the configuration values are in range.
func (config Config) Validate() error {
	switch {
	case !(config.FracN >= 0 && config.FracN <= 1):
		return errors.Wrapf(utils.ErrInvalidArgument, "fraction of ambiguous bases must be between 0 and 1, got %v", config.FracN)
	case !(config.FracR >= 0):
		return errors.Wrapf(utils.ErrInvalidArgument, "fraction of reads must not be negative, got %v", config.FracR)
	case config.Iterations < 0:
		return errors.Wrapf(utils.ErrInvalidArgument, "number of iterations must not be negative, got %v", config.Iterations)
	case !(config.Frac > 0 && config.Frac <= 1):
		return errors.Wrapf(utils.ErrInvalidArgument, "lowess fraction must be in (0, 1], got %v", config.Frac)
	}
	return nil
}

// Usable reports whether a bin is reliable enough to take part in the
// fit: it has few ambiguous bases and a non-negligible number of reads.
func (config Config) Usable(region bed.Region, content Content) bool {
	width := float64(region.Width())
	return float64(content.N) < width*config.FracN && region.Value > width*config.FracR
}

// Fit records the data and parameters of a fit, in the order of the
// usable bins.
type Fit struct {
	GC, Raw, Smoothed []float64
	Frac, Delta       float64
}

// Result is the outcome of a correction.
type Result struct {
	// Regions has one corrected region per input region.
	Regions []bed.Region
	// Usable has a bit set for every usable input region.
	Usable *bitset.BitSet
	Fit    Fit
}

/*
Correct divides the value of every usable region by the value expected
for its GC count, and sets the value of every other region to 0.

The expected values are the smoothed fit of the raw values against the
GC counts of the usable regions. When fewer than four points would take
part in each local fit, the fraction is raised so that four do, and the
interpolation delta is disabled. A usable region whose expected value
is 0 is treated as excluded.

regions and profile must describe the same bins. If no region is
usable, the result holds all-zero regions and the error wraps
utils.ErrInsufficientData.
*/
func Correct(regions []bed.Region, profile []Content, config Config) (Result, error) {
	if err := config.Validate(); err != nil {
		return Result{}, err
	}
	if len(regions) != len(profile) {
		return Result{}, errors.Wrapf(utils.ErrLayoutMismatch, "%v regions but %v content entries", len(regions), len(profile))
	}
	smoother := config.Smoother
	if smoother == nil {
		smoother = lowess.Smooth
	}
	logger := config.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	result := Result{
		Regions: make([]bed.Region, len(regions)),
		Usable:  bitset.New(uint(len(regions))),
	}
	for i, region := range regions {
		result.Regions[i] = region.WithValue(0)
		if config.Usable(region, profile[i]) {
			result.Usable.Set(uint(i))
			result.Fit.GC = append(result.Fit.GC, float64(profile[i].GC))
			result.Fit.Raw = append(result.Fit.Raw, region.Value)
		}
	}

	n := len(result.Fit.Raw)
	if n == 0 {
		return result, errors.Wrapf(utils.ErrInsufficientData, "none of the %v bins is usable for GC correction", len(regions))
	}
	result.Fit.Frac, result.Fit.Delta = config.Frac, 0.01*float64(n)
	if config.Frac*float64(n) < 4 {
		result.Fit.Frac, result.Fit.Delta = 4/float64(n), 0
		logger.WithFields(log.Fields{
			"usable": n,
			"frac":   result.Fit.Frac,
		}).Warn("too few usable bins for lowess, raising the lowess fraction")
	}

	smoothed, err := smoother(result.Fit.GC, result.Fit.Raw, result.Fit.Frac, config.Iterations, result.Fit.Delta)
	if err != nil {
		return result, errors.Wrap(err, "fitting GC bias")
	}
	if len(smoothed) != n {
		return result, errors.Wrapf(utils.ErrInvalidArgument, "smoother returned %v values for %v bins", len(smoothed), n)
	}
	result.Fit.Smoothed = smoothed

	k := 0
	for i, e := result.Usable.NextSet(0); e; i, e = result.Usable.NextSet(i + 1) {
		if expected := smoothed[k]; expected != 0 {
			result.Regions[i].Value = regions[i].Value / expected
		}
		k++
	}
	return result, nil
}

// CorrectWithReference profiles the regions against the reference, and
// then corrects them.
func CorrectWithReference(regions []bed.Region, ref fasta.Reference, config Config) (Result, error) {
	profile, err := Profile(ref, bed.Positions(regions))
	if err != nil {
		return Result{}, err
	}
	return Correct(regions, profile, config)
}
