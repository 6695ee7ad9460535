// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"errors"
	"fmt"

	"github.com/OpenPSG/ephys"
	"gonum.org/v1/gonum/mat"
)

// ErrMixedRates is returned when a dense matrix is requested for signals with
// different sample counts.
var ErrMixedRates = errors.New("edf: signals have different sample counts")

// SampleMatrix holds the raw digital samples of every signal, one row per
// signal in header order, with data records concatenated along each row.
// Physical values are derived on demand.
type SampleMatrix struct {
	rows [][]int16
	cal  []Calibration
}

// Dims returns the number of signals and the length of the longest row.
func (m *SampleMatrix) Dims() (signals, samples int) {
	for _, row := range m.rows {
		samples = max(samples, len(row))
	}
	return len(m.rows), samples
}

// Len returns the number of samples of signal i.
func (m *SampleMatrix) Len(signalIndex int) int {
	return len(m.rows[signalIndex])
}

// Row returns the raw samples of signal i. The slice shares storage with the matrix.
func (m *SampleMatrix) Row(signalIndex int) []int16 {
	return m.rows[signalIndex]
}

// At returns raw sample j of signal i.
func (m *SampleMatrix) At(signalIndex, j int) int16 {
	return m.rows[signalIndex][j]
}

// Physical returns the physical values of signal i.
func (m *SampleMatrix) Physical(signalIndex int) []float64 {
	out := make([]float64, len(m.rows[signalIndex]))
	copyPhysical(out, m.rows[signalIndex], m.cal[signalIndex])
	return out
}

// Dense returns the physical values of the given signals (all signals when
// none are given) as a signals × samples matrix. Every selected signal must
// have the same number of samples.
func (m *SampleMatrix) Dense(signals ...int) (*mat.Dense, error) {
	if len(signals) == 0 {
		signals = make([]int, len(m.rows))
		for i := range signals {
			signals[i] = i
		}
	}
	if len(signals) == 0 {
		return nil, fmt.Errorf("%w: no signals", ephys.ErrEmptyRecording)
	}

	for _, i := range signals {
		if i < 0 || i >= len(m.rows) {
			return nil, fmt.Errorf("%w: signal %d of %d", ephys.ErrChannelIndex, i, len(m.rows))
		}
	}

	cols := len(m.rows[signals[0]])
	for _, i := range signals[1:] {
		if len(m.rows[i]) != cols {
			return nil, fmt.Errorf("%w: signal %d has %d samples, signal %d has %d",
				ErrMixedRates, signals[0], cols, i, len(m.rows[i]))
		}
	}
	if cols == 0 {
		return nil, fmt.Errorf("%w: signals hold no samples", ephys.ErrEmptyRecording)
	}

	d := mat.NewDense(len(signals), cols, nil)
	for r, i := range signals {
		copyPhysical(d.RawRowView(r), m.rows[i], m.cal[i])
	}
	return d, nil
}
