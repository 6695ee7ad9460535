// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package spike computes peri-stimulus statistics of point-process data such
// as sorted spike trains.
package spike

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/epoch"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidBinSize is returned for a bin size that is not positive or that
// does not fit a single bin in the window.
var ErrInvalidBinSize = errors.New("spike: invalid bin size")

// Histogram is a peri-stimulus time histogram.
type Histogram struct {
	// Edges holds the bin boundaries relative to the marker, len(Rate)+1.
	Edges []float64
	// Rate is the spike count of every bin divided by the number of
	// markers and the bin size.
	Rate []float64
	// Segments holds, per marker, the spike times inside the window
	// relative to that marker. It is the data of a raster plot.
	Segments [][]float64
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int {
	return len(h.Rate)
}

// Centers returns the center of every bin.
func (h *Histogram) Centers() []float64 {
	centers := make([]float64, len(h.Rate))
	for i := range centers {
		centers[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}
	return centers
}

// PSTH builds a peri-stimulus time histogram of train around markers. Only
// spikes strictly inside the window around a marker are counted. The window
// is split into floor(duration/binSize) equal bins.
func PSTH(train, markers []float64, roi epoch.Window, binSize float64) (*Histogram, error) {
	if !(roi.Start < roi.End) {
		return nil, fmt.Errorf("%w: start %g must be before end %g", ephys.ErrInvalidWindow, roi.Start, roi.End)
	}
	if !(binSize > 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidBinSize, binSize)
	}
	bins := int(math.Floor(roi.Duration()/binSize + 1e-9))
	if bins < 1 {
		return nil, fmt.Errorf("%w: %g is wider than the window", ErrInvalidBinSize, binSize)
	}
	if len(markers) == 0 {
		return nil, epoch.ErrNoMarkers
	}

	sorted := train
	if !sort.Float64sAreSorted(sorted) {
		sorted = append([]float64(nil), train...)
		sort.Float64s(sorted)
	}

	h := &Histogram{
		Edges:    floats.Span(make([]float64, bins+1), roi.Start, roi.End),
		Rate:     make([]float64, bins),
		Segments: make([][]float64, len(markers)),
	}
	h.Edges[0], h.Edges[bins] = roi.Start, roi.End

	count := make([]float64, bins)
	for i, m := range markers {
		seg := segment(sorted, m, roi)
		h.Segments[i] = seg
		if len(seg) == 0 {
			continue
		}
		stat.Histogram(count, h.Edges, seg, nil)
		floats.Add(h.Rate, count)
	}
	floats.Scale(1/(float64(len(markers))*binSize), h.Rate)

	return h, nil
}

// segment returns the spikes of a sorted train strictly inside the window
// around m, relative to m.
func segment(sorted []float64, m float64, roi epoch.Window) []float64 {
	lo := sort.Search(len(sorted), func(i int) bool { return sorted[i] > m+roi.Start })
	hi := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= m+roi.End })

	seg := make([]float64, 0, max(hi-lo, 0))
	for _, t := range sorted[lo:max(hi, lo)] {
		// Subtraction may round onto the window edges.
		if r := t - m; r >= roi.Start && r < roi.End {
			seg = append(seg, r)
		}
	}
	return seg
}

// CrossCorrelogram returns the histogram of target spikes around every
// reference spike. When shift is positive the shift predictor, computed
// against the reference train moved back by shift, is subtracted from the
// rates to remove stimulus-locked correlation.
func CrossCorrelogram(target, reference []float64, roi epoch.Window, binSize, shift float64) (*Histogram, error) {
	h, err := PSTH(target, reference, roi, binSize)
	if err != nil {
		return nil, err
	}
	if !(shift > 0) {
		return h, nil
	}

	var shifted []float64
	for _, t := range reference {
		if t > shift {
			shifted = append(shifted, t-shift)
		}
	}
	if len(shifted) == 0 {
		return nil, fmt.Errorf("shift %g leaves no reference spikes: %w", shift, epoch.ErrNoMarkers)
	}

	predictor, err := PSTH(target, shifted, roi, binSize)
	if err != nil {
		return nil, err
	}
	floats.Sub(h.Rate, predictor.Rate)

	return h, nil
}
