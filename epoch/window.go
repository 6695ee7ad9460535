// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package epoch cuts continuous data into fixed-length windows aligned to
// marker times.
package epoch

import (
	"fmt"
	"math"

	"github.com/OpenPSG/ephys"
)

// snapTolerance absorbs binary floating point error in products such as
// 4.9*100 that should land on an integer sample index.
const snapTolerance = 1e-9

// Window is a region of interest in seconds relative to a marker.
type Window struct {
	Start float64
	End   float64
}

// Validate checks that the window is non-empty and the sampling rate usable.
func (w Window) Validate(rate float64) error {
	if !(w.Start < w.End) || math.IsInf(w.Start, 0) || math.IsInf(w.End, 0) {
		return fmt.Errorf("%w: start %g must be before end %g", ephys.ErrInvalidWindow, w.Start, w.End)
	}
	if !(rate > 0) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: sampling rate %g", ephys.ErrInvalidWindow, rate)
	}
	if w.Len(rate) < 1 {
		return fmt.Errorf("%w: window of %gs holds no sample at %g Hz", ephys.ErrInvalidWindow, w.Duration(), rate)
	}
	return nil
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Len returns the window length in samples.
func (w Window) Len(rate float64) int {
	return int(ceil(w.Duration() * rate))
}

// startIndex returns the first sample of the window around marker m.
func (w Window) startIndex(m, bias, rate float64) int {
	return int(floor((m + bias + w.Start) * rate))
}

func floor(x float64) float64 {
	if r := math.Round(x); math.Abs(x-r) < snapTolerance {
		return r
	}
	return math.Floor(x)
}

func ceil(x float64) float64 {
	if r := math.Round(x); math.Abs(x-r) < snapTolerance {
		return r
	}
	return math.Ceil(x)
}
