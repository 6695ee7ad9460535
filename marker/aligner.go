// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package marker

import (
	"errors"
	"fmt"
	"math"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/internal/monitoring"
)

// ErrEmptyTrain is returned when the hardware train holds no markers.
var ErrEmptyTrain = errors.New("marker: hardware train is empty")

// ErrNotValidated is returned when canonical markers are requested from an
// aligner that has not validated.
var ErrNotValidated = errors.New("marker: alignment not validated")

// State is the state of an Aligner.
type State int

const (
	Unvalidated State = iota // Alignment has not run yet
	Validated                // Log and train agree; canonical markers are available
	Rejected                 // Alignment failed; the session cannot be epoched
)

func (s State) String() string {
	switch s {
	case Unvalidated:
		return "unvalidated"
	case Validated:
		return "validated"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DriftError reports clock drift between the log and the hardware train.
type DriftError struct {
	StartOffset float64 // Hardware minus log time at the first aligned marker
	EndOffset   float64 // Hardware minus log time at the last aligned marker
	Threshold   float64
}

// Discrepancy returns the absolute difference between the two offsets.
func (e *DriftError) Discrepancy() float64 {
	return math.Abs(e.StartOffset - e.EndOffset)
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%v: offset %g at first marker, %g at last marker, discrepancy %g > %g",
		ephys.ErrClockDrift, e.StartOffset, e.EndOffset, e.Discrepancy(), e.Threshold)
}

func (e *DriftError) Unwrap() error {
	return ephys.ErrClockDrift
}

// Aligner validates a behavioral log against a hardware marker train.
//
// The log may hold leading entries logged before hardware recording started,
// never trailing ones: the last len(train) filtered log entries correspond
// one to one with the train. Alignment runs once; both outcomes are final.
type Aligner struct {
	cfg   Config
	table Table
	train Train

	state     State
	shift     int
	canonical *Canonical
	err       error
}

// NewAligner returns an unvalidated aligner. The log is filtered with cfg.
func NewAligner(cfg Config, table Table, train Train) *Aligner {
	return &Aligner{
		cfg:   cfg,
		table: table.Filter(cfg),
		train: append(Train(nil), train...),
	}
}

// State returns the current state.
func (a *Aligner) State() State {
	return a.state
}

// Shift returns the number of leading log entries without a hardware marker.
// It is only meaningful once validated.
func (a *Aligner) Shift() int {
	return a.shift
}

// Align validates the log against the train. The first call decides the
// outcome; later calls return it again.
func (a *Aligner) Align() (*Canonical, error) {
	if a.state == Unvalidated {
		a.canonical, a.err = a.align()
		if a.err != nil {
			a.state = Rejected
		} else {
			a.state = Validated
		}
	}
	return a.canonical, a.err
}

// Canonical returns the canonical markers of a validated aligner.
func (a *Aligner) Canonical() (*Canonical, error) {
	if a.state != Validated {
		return nil, fmt.Errorf("%w: state is %s", ErrNotValidated, a.state)
	}
	return a.canonical, nil
}

func (a *Aligner) align() (*Canonical, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(a.train) == 0 {
		return nil, ErrEmptyTrain
	}

	shift := len(a.table) - len(a.train)
	if shift < 0 {
		return nil, fmt.Errorf("%w: %d hardware markers, %d logged", ephys.ErrNegativeShift, len(a.train), len(a.table))
	}

	aligned := a.table[shift:]
	last := len(a.train) - 1
	drift := &DriftError{
		StartOffset: a.train[0] - aligned[0].Time,
		EndOffset:   a.train[last] - aligned[last].Time,
		Threshold:   a.cfg.Threshold,
	}
	if drift.Discrepancy() > a.cfg.Threshold {
		return nil, drift
	}

	a.shift = shift
	monitoring.Logf("marker: aligned %d markers, shift %d, drift %g", len(a.train), shift, drift.Discrepancy())

	table := make(Table, len(aligned))
	for i, e := range aligned {
		table[i] = Event{Time: a.train[i], Label: e.Label}
	}
	return newCanonical(table), nil
}
