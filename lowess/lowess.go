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

/*
Package lowess implements locally weighted scatterplot smoothing, as
described by W. S. Cleveland, "Robust Locally Weighted Regression and
Smoothing Scatterplots", Journal of the American Statistical
Association 74 (1979), 829-836.
*/
package lowess

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/utils"
)

/*
Smooth fits y as a function of x, and returns one smoothed value per
input pair, in input order.

Each value is computed by a weighted linear regression over the
nearest frac * len(x) points, using tricube weights. After the initial
fit, the given number of robustness iterations reweights the points
with bisquare weights on their residuals, so that outliers lose their
influence.

Points within delta of the last fitted x are not fitted themselves,
but linearly interpolated between fitted neighbours. A delta of 0 fits
every point.

This is the clowess variant of the procedure: points tied in distance
with the edge of the neighbourhood take part in a local fit, weights
are 1 within 0.001 and 0 beyond 0.999 of the neighbourhood radius, and
robustness iterations stop early once the residuals are negligible
compared to the data. A robust local fit that cannot be computed keeps
the value of the initial fit.

Smooth fails with utils.ErrInvalidArgument if x and y differ in length
or frac is not positive, and with utils.ErrInsufficientData if there
are no points.
*/
func Smooth(x, y []float64, frac float64, iterations int, delta float64) ([]float64, error) {
	n := len(x)
	switch {
	case len(y) != n:
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "lowess needs equally many x and y values, got %v and %v", n, len(y))
	case !(frac > 0):
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "lowess fraction must be positive, got %v", frac)
	case iterations < 0:
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "lowess iterations must not be negative, got %v", iterations)
	case delta < 0:
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "lowess delta must not be negative, got %v", delta)
	case n == 0:
		return nil, errors.Wrap(utils.ErrInsufficientData, "lowess needs at least one point")
	case n == 1:
		return []float64{y[0]}, nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return x[order[i]] < x[order[j]]
	})
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, k := range order {
		xs[i], ys[i] = x[k], y[k]
	}

	ns := int(frac*float64(n) + 1e-10)
	if ns > n {
		ns = n
	}
	if ns < 2 {
		ns = 2
	}

	s := newSmoother(xs, ys, ns, delta)
	s.pass(false)
	s.initial = append([]float64(nil), s.fitted...)
	for iter := 0; iter < iterations; iter++ {
		if !s.robustnessWeights() {
			break
		}
		s.pass(true)
	}

	result := make([]float64, n)
	for i, k := range order {
		result[k] = s.fitted[i]
	}
	return result, nil
}

type smoother struct {
	x, y      []float64
	ns        int
	delta     float64
	span      float64
	fitted    []float64
	initial   []float64
	weights   []float64
	robust    []float64
	residuals []float64
}

func newSmoother(x, y []float64, ns int, delta float64) *smoother {
	n := len(x)
	return &smoother{
		x:         x,
		y:         y,
		ns:        ns,
		delta:     delta,
		span:      x[n-1] - x[0],
		fitted:    make([]float64, n),
		weights:   make([]float64, n),
		robust:    make([]float64, n),
		residuals: make([]float64, n),
	}
}

// pass computes one full set of fitted values. The neighbourhood of
// ns points slides to the right as long as that brings it closer to
// the current point.
func (s *smoother) pass(useRobust bool) {
	x, n := s.x, len(s.x)
	left, right := 0, s.ns-1
	last := -1
	for i := 0; ; {
		for right < n-1 && x[i]-x[left] > x[right+1]-x[i] {
			left++
			right++
		}
		if value, ok := s.fitPoint(x[i], left, right, useRobust); ok {
			s.fitted[i] = value
		} else if useRobust {
			s.fitted[i] = s.initial[i]
		} else {
			s.fitted[i] = s.y[i]
		}
		if last < i-1 {
			denom := x[i] - x[last]
			for j := last + 1; j < i; j++ {
				alpha := (x[j] - x[last]) / denom
				s.fitted[j] = alpha*s.fitted[i] + (1-alpha)*s.fitted[last]
			}
		}
		last = i
		cut := x[last] + s.delta
		for i = last + 1; i < n; i++ {
			if x[i] > cut {
				break
			}
			if x[i] == x[last] {
				s.fitted[i] = s.fitted[last]
				last = i
			}
		}
		if i = i - 1; i <= last {
			i = last + 1
		}
		if last >= n-1 {
			break
		}
	}
	for i := range s.residuals {
		s.residuals[i] = s.y[i] - s.fitted[i]
	}
}

// fitPoint computes the fitted value at xi from the points in
// [left, right], and any further points at the same distance. A
// robust fit fails when the weighted points collapse onto a single x
// other than xi.
func (s *smoother) fitPoint(xi float64, left, right int, useRobust bool) (float64, bool) {
	x, w := s.x, s.weights
	h := math.Max(xi-x[left], x[right]-xi)
	h9, h1 := 0.999*h, 0.001*h

	sum := 0.0
	j := left
	for ; j < len(x); j++ {
		w[j] = 0
		r := math.Abs(x[j] - xi)
		if r <= h9 {
			if r <= h1 {
				w[j] = 1
			} else {
				q := r / h
				q = 1 - q*q*q
				w[j] = q * q * q
			}
			if useRobust {
				w[j] *= s.robust[j]
			}
			sum += w[j]
		} else if x[j] > xi {
			break
		}
	}
	end := j
	if sum <= 0 {
		return 0, false
	}
	for j := left; j < end; j++ {
		w[j] /= sum
	}
	if h > 0 {
		mean := 0.0
		for j := left; j < end; j++ {
			mean += w[j] * x[j]
		}
		b := xi - mean
		c := 0.0
		for j := left; j < end; j++ {
			d := x[j] - mean
			c += w[j] * d * d
		}
		if math.Sqrt(c) > 0.001*s.span {
			b /= c
			for j := left; j < end; j++ {
				w[j] *= b*(x[j]-mean) + 1
			}
		} else if useRobust && math.Abs(b) > 0.001*s.span {
			return 0, false
		}
	}
	value := 0.0
	for j := left; j < end; j++ {
		value += w[j] * s.y[j]
	}
	return value, true
}

// robustnessWeights computes bisquare weights from the current
// residuals. It returns false if the residuals are already negligible
// relative to the residuals themselves or to the data, in which case
// further iterations cannot improve the fit.
func (s *smoother) robustnessWeights() bool {
	n := len(s.residuals)
	abs := make([]float64, n)
	sum, scale := 0.0, 0.0
	for i, r := range s.residuals {
		abs[i] = math.Abs(r)
		sum += abs[i]
		scale += math.Abs(s.y[i])
	}
	cmad := 6 * internal.Median(abs)
	if cmad < 1e-7*math.Max(sum, scale)/float64(n) {
		return false
	}
	c9, c1 := 0.999*cmad, 0.001*cmad
	for i, r := range abs {
		switch {
		case r <= c1:
			s.robust[i] = 1
		case r <= c9:
			q := r / cmad
			q = 1 - q*q
			s.robust[i] = q * q
		default:
			s.robust[i] = 0
		}
	}
	return true
}
