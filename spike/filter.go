// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spike

import (
	"fmt"
	"math"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/epoch"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Kernel is a smoothing kernel evaluated at a lag in seconds.
type Kernel func(tau float64) float64

// Gaussian returns a unit-area Gaussian kernel with standard deviation sigma.
func Gaussian(sigma float64) Kernel {
	norm := 1 / (math.Sqrt(2*math.Pi) * sigma)
	return func(tau float64) float64 {
		return norm * math.Exp(-tau*tau/(2*sigma*sigma))
	}
}

// Causal returns the alpha function kernel alpha²·tau·exp(-alpha·tau),
// clamped to zero for negative lags.
func Causal(alpha float64) Kernel {
	return func(tau float64) float64 {
		return math.Max(0, alpha*alpha*tau*math.Exp(-alpha*tau))
	}
}

// Rectangular returns a unit-area boxcar kernel of width delta centered on
// zero.
func Rectangular(delta float64) Kernel {
	return func(tau float64) float64 {
		if tau >= -delta/2 && tau <= delta/2 {
			return 1 / delta
		}
		return 0
	}
}

// LinearFilter evaluates the firing rate estimate sum_i k(t_i - t) of train
// at every point of grid.
func LinearFilter(train []float64, k Kernel, grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, t := range grid {
		var sum float64
		for _, s := range train {
			sum += k(s - t)
		}
		out[i] = sum
	}
	return out
}

// Span returns n evenly spaced points from lo to hi inclusive.
func Span(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// FilterWithROI evaluates LinearFilter on an n point grid spanning roi
// around every start time. The result is trials × n.
func FilterWithROI(train []float64, k Kernel, starts []float64, roi epoch.Window, n int) (*mat.Dense, error) {
	if !(roi.Start < roi.End) {
		return nil, fmt.Errorf("%w: start %g must be before end %g", ephys.ErrInvalidWindow, roi.Start, roi.End)
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: %d grid points", ephys.ErrInvalidWindow, n)
	}
	if len(starts) == 0 {
		return nil, epoch.ErrNoMarkers
	}

	out := mat.NewDense(len(starts), n, nil)
	grid := make([]float64, n)
	for i, s := range starts {
		floats.Span(grid, s+roi.Start, s+roi.End)
		out.SetRow(i, LinearFilter(train, k, grid))
	}
	return out, nil
}
