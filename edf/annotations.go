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
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedAnnotation is returned for an EDF+ TAL that cannot be parsed.
var ErrMalformedAnnotation = errors.New("edf: malformed annotation")

const (
	talEnd      = 0x00
	talText     = 0x14
	talDuration = 0x15
)

// Annotation is one EDF+ annotation.
type Annotation struct {
	Onset    float64 // Seconds relative to the start of the recording
	Duration float64 // Seconds, zero when not given
	Text     string
}

// Annotations decodes the time-stamped annotation lists of every EDF+
// annotation signal. The per-record timekeeping entries, which carry no text,
// are skipped.
func (er *Reader) Annotations() ([]Annotation, error) {
	var out []Annotation
	for i, sig := range er.hdr.Signals {
		if !sig.IsAnnotations() {
			continue
		}

		buf := make([]byte, sig.SamplesPerRecord*2)
		for rec := 0; rec < er.hdr.DataRecords; rec++ {
			if err := er.readSignalRecord(i, rec, buf); err != nil {
				return nil, err
			}

			anns, err := ParseTALs(buf)
			if err != nil {
				return nil, fmt.Errorf("signal %d record %d: %w", i, rec, err)
			}
			out = append(out, anns...)
		}
	}

	return out, nil
}

// ParseTALs parses the annotation lists held in one record of an annotation
// signal. Each list has the form "+onset[\x15duration]\x14text\x14...\x14\x00".
func ParseTALs(b []byte) ([]Annotation, error) {
	var out []Annotation
	for _, tal := range bytes.Split(b, []byte{talEnd}) {
		if len(tal) == 0 {
			continue
		}

		parts := bytes.Split(tal, []byte{talText})
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: %q has no text separator", ErrMalformedAnnotation, tal)
		}

		onsetText, durationText, hasDuration := bytes.Cut(parts[0], []byte{talDuration})
		if len(onsetText) == 0 || (onsetText[0] != '+' && onsetText[0] != '-') {
			return nil, fmt.Errorf("%w: onset %q must be signed", ErrMalformedAnnotation, onsetText)
		}
		onset, err := strconv.ParseFloat(string(onsetText), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: onset %q: %w", ErrMalformedAnnotation, onsetText, err)
		}

		var duration float64
		if hasDuration {
			if duration, err = strconv.ParseFloat(string(durationText), 64); err != nil {
				return nil, fmt.Errorf("%w: duration %q: %w", ErrMalformedAnnotation, durationText, err)
			}
		}

		for _, text := range parts[1:] {
			if len(text) == 0 {
				continue
			}
			out = append(out, Annotation{Onset: onset, Duration: duration, Text: string(text)})
		}
	}

	return out, nil
}

// EncodeTAL encodes one annotation list. Without texts it encodes a
// timekeeping entry.
func EncodeTAL(onset, duration float64, texts ...string) []byte {
	var b bytes.Buffer
	if onset >= 0 {
		b.WriteByte('+')
	}
	b.WriteString(strconv.FormatFloat(onset, 'f', -1, 64))
	if duration > 0 {
		b.WriteByte(talDuration)
		b.WriteString(strconv.FormatFloat(duration, 'f', -1, 64))
	}
	b.WriteByte(talText)
	if len(texts) == 0 {
		b.WriteByte(talText)
	}
	for _, text := range texts {
		b.WriteString(text)
		b.WriteByte(talText)
	}
	b.WriteByte(talEnd)
	return b.Bytes()
}
