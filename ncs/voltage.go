// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ncs

import (
	"errors"
	"fmt"
	"math"

	"github.com/OpenPSG/ephys"
	"gonum.org/v1/gonum/floats"
)

// ErrNoSampleRate is returned when timestamps of a single record cannot be
// extrapolated because it declares no sample frequency.
var ErrNoSampleRate = errors.New("ncs: record has no sample frequency")

// ToVoltage flattens records into one trace in microvolts, negated when
// inverted, and returns the timestamp in microseconds of every sample.
//
// Each record's first sample takes the record timestamp; the samples in
// between are interpolated linearly towards the next record's timestamp. The
// samples of the final record are extrapolated with the interval of the last
// two records, or with the record's sample frequency when there is only one.
func ToVoltage(records []Record, bitToVolt float64, inverted bool) (volts, timestamps []float64, err error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: no records", ephys.ErrEmptyRecording)
	}
	if bitToVolt <= 0 || math.IsNaN(bitToVolt) || math.IsInf(bitToVolt, 0) {
		return nil, nil, fmt.Errorf("%w: bit to volt factor %g", ephys.ErrCalibration, bitToVolt)
	}

	n := len(records)
	volts = make([]float64, n*SamplesPerRecord)
	for b, rec := range records {
		for i, s := range rec.Samples {
			volts[b*SamplesPerRecord+i] = float64(s)
		}
	}

	scale := bitToVolt * 1e6
	if inverted {
		scale = -scale
	}
	floats.Scale(scale, volts)

	last := records[n-1]
	var lastStep float64
	if n > 1 {
		lastStep = float64(int64(last.Timestamp)-int64(records[n-2].Timestamp)) / SamplesPerRecord
	} else {
		if last.SampleFreq <= 0 {
			return nil, nil, fmt.Errorf("%w: frequency %d", ErrNoSampleRate, last.SampleFreq)
		}
		lastStep = 1e6 / float64(last.SampleFreq)
	}

	timestamps = make([]float64, n*SamplesPerRecord)
	for b, rec := range records {
		step := lastStep
		if b < n-1 {
			step = float64(int64(records[b+1].Timestamp)-int64(rec.Timestamp)) / SamplesPerRecord
		}

		base := b * SamplesPerRecord
		for i := 0; i < SamplesPerRecord; i++ {
			timestamps[base+i] = float64(rec.Timestamp) + float64(i)*step
		}
	}

	return volts, timestamps, nil
}
