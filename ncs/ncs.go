// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package ncs reads Neuralynx continuously sampled channel (.ncs) files.
//
// A file is a 16 KiB text header of "-Key value" lines padded with NUL bytes,
// followed by fixed size little-endian records:
//
//	uint64      timestamp of the first sample, in microseconds
//	int32       channel number
//	int32       sample frequency in Hz
//	int32       number of valid samples
//	int16 x 512 samples
package ncs

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/internal/monitoring"
)

const (
	// HeaderSize is the size of the text header.
	HeaderSize = 16384
	// SamplesPerRecord is the number of samples in every record.
	SamplesPerRecord = 512
	// RecordSize is the size of one record in bytes.
	RecordSize = 8 + 4 + 4 + 4 + SamplesPerRecord*2
)

// Record is one block of samples.
type Record struct {
	Timestamp    uint64 // Microseconds, time of Samples[0]
	Channel      int32
	SampleFreq   int32
	ValidSamples int32
	Samples      [SamplesPerRecord]int16
}

// File is a parsed .ncs file.
type File struct {
	Header  string
	Records []Record
}

// Parse reads a complete .ncs file. A trailing partial record, commonly left
// behind when acquisition stops, is discarded.
func Parse(r io.Reader) (*File, error) {
	b := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: error reading header: %w", ephys.ErrMalformedHeader, err)
	}

	header, err := decodeHeader(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ephys.ErrMalformedHeader, err)
	}

	f := &File{Header: header}

	reader := bufio.NewReader(r)
	buf := make([]byte, RecordSize)
	for {
		n, err := io.ReadFull(reader, buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			monitoring.Logf("ncs: discarding %d byte partial record after %d records", n, len(f.Records))
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record %d: %w", len(f.Records), err)
		}

		f.Records = append(f.Records, decodeRecord(buf))
	}

	return f, nil
}

func decodeRecord(b []byte) Record {
	rec := Record{
		Timestamp:    binary.LittleEndian.Uint64(b[0:8]),
		Channel:      int32(binary.LittleEndian.Uint32(b[8:12])),
		SampleFreq:   int32(binary.LittleEndian.Uint32(b[12:16])),
		ValidSamples: int32(binary.LittleEndian.Uint32(b[16:20])),
	}
	for i := range rec.Samples {
		rec.Samples[i] = int16(binary.LittleEndian.Uint16(b[20+i*2:]))
	}
	return rec
}

// Attribute returns the value of a header attribute. See ExtractAttribute.
func (f *File) Attribute(key string) (string, bool) {
	return ExtractAttribute(f.Header, key)
}

// BitVolts returns the ADBitVolts conversion factor in volts per bit.
func (f *File) BitVolts() (float64, error) {
	v, ok := f.Attribute("ADBitVolts")
	if !ok {
		return 0, fmt.Errorf("%w: ADBitVolts missing or ambiguous", ephys.ErrCalibration)
	}

	bitVolts, err := parseBitVolts(v)
	if err != nil {
		return 0, err
	}
	return bitVolts, nil
}

// Inverted reports whether the header declares inverted input polarity.
func (f *File) Inverted() bool {
	v, ok := f.Attribute("InputInverted")
	return ok && strings.EqualFold(v, "true")
}

// Voltage converts the file's records to microvolts with per-sample
// timestamps, using the calibration declared in the header.
func (f *File) Voltage() (volts, timestamps []float64, err error) {
	if len(f.Records) == 0 {
		return nil, nil, fmt.Errorf("%w: no records", ephys.ErrEmptyRecording)
	}

	bitVolts, err := f.BitVolts()
	if err != nil {
		return nil, nil, err
	}
	return ToVoltage(f.Records, bitVolts, f.Inverted())
}

// Samples returns the raw samples of every record as one trace.
func (f *File) Samples() []int16 {
	out := make([]int16, 0, len(f.Records)*SamplesPerRecord)
	for _, rec := range f.Records {
		out = append(out, rec.Samples[:]...)
	}
	return out
}

// SampleRate returns the sample frequency declared by the first record.
func (f *File) SampleRate() (int, error) {
	if len(f.Records) == 0 {
		return 0, fmt.Errorf("%w: no records", ephys.ErrEmptyRecording)
	}
	if freq := f.Records[0].SampleFreq; freq > 0 {
		return int(freq), nil
	}
	return 0, ErrNoSampleRate
}

// Span returns the time from the first to the last record timestamp. It is
// negative when the timestamps run backwards.
func (f *File) Span() time.Duration {
	if len(f.Records) < 2 {
		return 0
	}
	first, last := f.Records[0].Timestamp, f.Records[len(f.Records)-1].Timestamp
	return time.Duration(int64(last)-int64(first)) * time.Microsecond
}
