// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package epoch

import (
	"github.com/OpenPSG/ephys"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Tensor holds epochs of multichannel data, indexed by channel, sample
// within the window and trial.
type Tensor struct {
	trials []*mat.Dense // Each trial is channels × window
}

// Dims returns the number of channels, samples per window and trials.
func (t *Tensor) Dims() (channels, samples, trials int) {
	channels, samples = t.trials[0].Dims()
	return channels, samples, len(t.trials)
}

// At returns sample s of channel c in trial n.
func (t *Tensor) At(c, s, n int) float64 {
	return t.trials[n].At(c, s)
}

// Trial returns a copy of trial n as a channels × window matrix.
func (t *Tensor) Trial(n int) *mat.Dense {
	return mat.DenseCopyOf(t.trials[n])
}

// Mean returns the trial average as a channels × window matrix.
func (t *Tensor) Mean() *mat.Dense {
	channels, samples, trials := t.Dims()
	mean := mat.NewDense(channels, samples, nil)
	x := make([]float64, trials)
	for c := 0; c < channels; c++ {
		for s := 0; s < samples; s++ {
			for n, trial := range t.trials {
				x[n] = trial.At(c, s)
			}
			mean.Set(c, s, stat.Mean(x, nil))
		}
	}
	return mean
}

// Extract cuts an epoch around every marker from data, a channels × samples
// matrix sampled at rate Hz. bias is added to every marker time. An epoch
// that does not fit inside the data fails the whole extraction.
func Extract(data mat.Matrix, markers []float64, w Window, rate, bias float64) (*Tensor, error) {
	channels, total := data.Dims()
	if channels == 0 {
		return nil, ephys.ErrEmptyRecording
	}
	starts, n, err := plan(markers, w, rate, bias, total)
	if err != nil {
		return nil, err
	}

	t := &Tensor{trials: make([]*mat.Dense, len(starts))}
	for i, start := range starts {
		trial := mat.NewDense(channels, n, nil)
		for c := 0; c < channels; c++ {
			for s := 0; s < n; s++ {
				trial.Set(c, s, data.At(c, start+s))
			}
		}
		t.trials[i] = trial
	}
	return t, nil
}

// Extract1D cuts an epoch around every marker from a single series sampled
// at rate Hz. The result is trials × window.
func Extract1D(series []float64, markers []float64, w Window, rate, bias float64) (*mat.Dense, error) {
	starts, n, err := plan(markers, w, rate, bias, len(series))
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(starts), n, nil)
	for i, start := range starts {
		out.SetRow(i, series[start:start+n])
	}
	return out, nil
}

// plan validates the request and returns the first sample of every epoch
// and the window length.
func plan(markers []float64, w Window, rate, bias float64, total int) ([]int, int, error) {
	if err := w.Validate(rate); err != nil {
		return nil, 0, err
	}
	if len(markers) == 0 {
		return nil, 0, ErrNoMarkers
	}

	n := w.Len(rate)
	starts := make([]int, len(markers))
	for i, m := range markers {
		start := w.startIndex(m, bias, rate)
		if start < 0 || start+n > total {
			return nil, 0, &BoundsError{Marker: i, Time: m, Start: start, Len: n, Total: total}
		}
		starts[i] = start
	}
	return starts, n, nil
}
