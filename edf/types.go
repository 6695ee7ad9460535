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
	"fmt"
	"strings"
	"time"

	"github.com/OpenPSG/ephys"
)

type Version string

const (
	// Version0 represents the version of the EDF/EDF+ standard.
	Version0 Version = "0"
)

// AnnotationsLabel is the label of EDF+ annotation signals.
const AnnotationsLabel = "EDF Annotations"

// Header represents the EDF/EDF+ file header.
type Header struct {
	Version            Version       // Version of the EDF/EDF+ standard (usually "0")
	PatientID          string        // Identification of the patient
	RecordingID        string        // Identification of the recording session
	StartTime          time.Time     // Start date of the recording
	HeaderBytes        int           // Number of bytes in the header
	Reserved           string        // "EDF+C" or "EDF+D" for EDF+ files, empty otherwise
	DataRecords        int           // Number of data records, -1 if unknown
	DataRecordDuration time.Duration // Duration of a single data record
	DataRecordSeconds  float64       // Declared duration in seconds; takes precedence over DataRecordDuration when positive
	SignalCount        int           // Number of signals in each data record
	Signals            []Signal      // Details of each signal
}

// IsEDFPlus reports whether the header declares the EDF+ extension.
func (h *Header) IsEDFPlus() bool {
	return strings.HasPrefix(h.Reserved, "EDF+")
}

// RecordSize returns the size in bytes of one data record.
func (h *Header) RecordSize() int {
	var n int
	for _, sig := range h.Signals {
		n += sig.SamplesPerRecord * 2
	}
	return n
}

// RecordSeconds returns the duration of a data record in seconds.
func (h *Header) RecordSeconds() float64 {
	if h.DataRecordSeconds > 0 {
		return h.DataRecordSeconds
	}
	return h.DataRecordDuration.Seconds()
}

// Frequency returns the sampling frequency of signal i in Hz.
func (h *Header) Frequency(i int) float64 {
	return float64(h.Signals[i].SamplesPerRecord) / h.RecordSeconds()
}

// Signal represents the characteristics of each signal in the EDF/EDF+ file.
type Signal struct {
	Label             string  // Label of the signal (e.g., EEG Fpz-Cz)
	TransducerType    string  // Type of transducer used
	PhysicalDimension string  // Physical dimension (e.g., uV, mV)
	PhysicalMin       float64 // Minimum physical value
	PhysicalMax       float64 // Maximum physical value
	DigitalMin        int     // Minimum digital value
	DigitalMax        int     // Maximum digital value
	Prefiltering      string  // Pre-filtering information
	SamplesPerRecord  int     // Number of samples in each data record for this signal
	Reserved          string  // Reserved for future use
}

// IsAnnotations reports whether the signal carries EDF+ annotations.
func (s Signal) IsAnnotations() bool {
	return s.Label == AnnotationsLabel
}

// Calibration is the linear map from digital sample values to physical values.
type Calibration struct {
	Scale  float64 // Physical units per digital step
	Offset float64 // Physical value of digital zero
}

// Physical converts a digital value to its physical value.
func (c Calibration) Physical(digital int16) float64 {
	return float64(digital)*c.Scale + c.Offset
}

// Digital converts a physical value to the nearest digital value.
func (c Calibration) Digital(physical float64) float64 {
	return (physical - c.Offset) / c.Scale
}

// Calibration derives the signal's scale factor and offset. Equal minimum and
// maximum on either axis, or an inverted digital range, is an error.
func (s Signal) Calibration() (Calibration, error) {
	if s.DigitalMax <= s.DigitalMin {
		return Calibration{}, fmt.Errorf("%w: signal %q digital range [%d, %d]", ephys.ErrCalibration, s.Label, s.DigitalMin, s.DigitalMax)
	}
	if s.PhysicalMax == s.PhysicalMin {
		return Calibration{}, fmt.Errorf("%w: signal %q physical range [%g, %g]", ephys.ErrCalibration, s.Label, s.PhysicalMin, s.PhysicalMax)
	}

	scale := (s.PhysicalMax - s.PhysicalMin) / float64(s.DigitalMax-s.DigitalMin)
	return Calibration{
		Scale:  scale,
		Offset: s.PhysicalMin - float64(s.DigitalMin)*scale,
	}, nil
}
