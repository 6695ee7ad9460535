// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ephys

import "errors"

// Format and parse errors.
var (
	// ErrHeaderDecode is returned when a fixed-width field cannot be decoded.
	ErrHeaderDecode = errors.New("ephys: header field decode failed")
	// ErrMalformedHeader is returned when a recording header is structurally invalid.
	ErrMalformedHeader = errors.New("ephys: malformed header")
	// ErrTruncatedData is returned when fewer data bytes remain than the header declares.
	ErrTruncatedData = errors.New("ephys: truncated data")
	// ErrChannelIndex is returned for a channel index outside the recording.
	ErrChannelIndex = errors.New("ephys: channel index out of range")
	// ErrCalibration is returned when a digital to physical scale cannot be derived.
	ErrCalibration = errors.New("ephys: invalid calibration")
	// ErrEmptyRecording is returned when a recording holds no data records.
	ErrEmptyRecording = errors.New("ephys: empty recording")
)

// Alignment errors.
var (
	// ErrNegativeShift is returned when the hardware train holds more markers than the log.
	ErrNegativeShift = errors.New("ephys: hardware markers exceed logged markers")
	// ErrClockDrift is returned when the two marker clocks disagree beyond the threshold.
	ErrClockDrift = errors.New("ephys: marker clock drift exceeds threshold")
)

// Extraction errors.
var (
	// ErrInvalidWindow is returned for an empty or inverted region of interest.
	ErrInvalidWindow = errors.New("ephys: invalid window")
	// ErrEpochOutOfBounds is returned when an epoch would extend past the data.
	ErrEpochOutOfBounds = errors.New("ephys: epoch out of bounds")
)
