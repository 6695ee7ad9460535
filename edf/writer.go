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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxRecordBytes is the record size limit recommended by the EDF standard.
const maxRecordBytes = 61440

// Writer writes EDF files.
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	cal         []Calibration
	dataRecords int // Number of data records written so far.
}

// Create creates a new EDF writer that writes to the given writer.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	hdr.DataRecords = -1 // Unknown number of data records (at this time).
	hdr.SignalCount = len(hdr.Signals)
	hdr.HeaderBytes = GlobalHeaderSize + SignalLayout.Size(hdr.SignalCount)
	hdr.Signals = append([]Signal(nil), hdr.Signals...)

	if hdr.SignalCount == 0 {
		return nil, fmt.Errorf("header has no signals")
	}
	if secs := hdr.RecordSeconds(); !(secs > 0) || math.IsInf(secs, 0) {
		return nil, fmt.Errorf("data record duration must be positive, got %gs", secs)
	}
	if size := hdr.RecordSize(); size > maxRecordBytes {
		return nil, fmt.Errorf("data record too large: %d bytes, max is %d bytes", size, maxRecordBytes)
	}

	ew := &Writer{w: w, hdr: &hdr, cal: make([]Calibration, hdr.SignalCount)}
	for i, sig := range hdr.Signals {
		cal, err := sig.Calibration()
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		ew.cal[i] = cal
	}

	// Write the initial header
	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the EDF file by updating the header with the total number of data records.
func (ew *Writer) Close() error {
	// Finalize the header with the actual number of data records
	ew.hdr.DataRecords = ew.dataRecords
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	return nil
}

// WriteRecord writes a single data record of physical values to the EDF file.
func (ew *Writer) WriteRecord(signals [][]float64) error {
	raw := make([][]int16, len(signals))
	for i, signal := range signals {
		if i >= ew.hdr.SignalCount {
			break
		}

		sig := ew.hdr.Signals[i]
		raw[i] = make([]int16, len(signal))
		for j, sample := range signal {
			raw[i][j] = physicalToDigital(sample, ew.cal[i], sig.DigitalMin, sig.DigitalMax)
		}
	}

	return ew.WriteRawRecord(raw)
}

// WriteRawRecord writes a single data record of digital values to the EDF file.
func (ew *Writer) WriteRawRecord(signals [][]int16) error {
	if len(signals) != ew.hdr.SignalCount {
		return fmt.Errorf("expected %d signals, got %d", ew.hdr.SignalCount, len(signals))
	}

	for i, signal := range signals {
		if want := ew.hdr.Signals[i].SamplesPerRecord; len(signal) != want {
			return fmt.Errorf("signal %d: expected %d samples, got %d", i, want, len(signal))
		}
	}

	pos := int64(ew.hdr.HeaderBytes) + int64(ew.dataRecords)*int64(ew.hdr.RecordSize())
	if _, err := ew.w.Seek(pos, io.SeekStart); err != nil {
		return err
	}

	writer := bufio.NewWriter(ew.w)

	// Write each signal's data
	buf := make([]byte, 2)
	for _, signal := range signals {
		for _, sample := range signal {
			binary.LittleEndian.PutUint16(buf, uint16(sample))
			if _, err := writer.Write(buf); err != nil {
				return err
			}
		}
	}

	// Ensure all data is flushed to the underlying writer
	if err := writer.Flush(); err != nil {
		return err
	}

	ew.dataRecords++
	return nil
}

// writeHeader writes the EDF header at the start of the file.
func (ew *Writer) writeHeader() error {
	b, err := ew.hdr.Encode()
	if err != nil {
		return err
	}

	// Rewind to the beginning of the file.
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	_, err = ew.w.Write(b)
	return err
}

// physicalToDigital converts a physical value to the nearest digital value,
// clamped to the signal's digital range.
func physicalToDigital(physical float64, cal Calibration, dmin, dmax int) int16 {
	digital := math.Round(cal.Digital(physical))
	digital = math.Max(float64(dmin), math.Min(float64(dmax), digital))
	return int16(digital)
}
