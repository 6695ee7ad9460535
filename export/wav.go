// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package export writes recorded channels to formats readable by general
// purpose tools.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidSampleRate is returned for a WAV sample rate that is not positive.
var ErrInvalidSampleRate = errors.New("export: invalid sample rate")

const (
	bitDepth  = 16
	pcmFormat = 1
)

// WriteWAV writes samples as a mono 16-bit PCM WAV stream. Listening to a
// channel is a quick way to spot line noise and spiking activity.
func WriteWAV(w io.WriteSeeker, samples []int16, rate int) error {
	if rate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, rate)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	enc := wav.NewEncoder(w, rate, bitDepth, 1, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("error writing samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error finalizing wav: %w", err)
	}
	return nil
}

// Normalize scales physical values so that the largest magnitude maps to
// full scale 16-bit PCM. An all-zero input yields silence.
func Normalize(values []float64) []int16 {
	var peak float64
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}

	out := make([]int16, len(values))
	if peak == 0 {
		return out
	}
	scale := math.MaxInt16 / peak
	for i, v := range values {
		out[i] = int16(math.Round(v * scale))
	}
	return out
}
