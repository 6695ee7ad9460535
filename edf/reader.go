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

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/internal/monitoring"
)

// Reader reads EDF/EDF+ files.
type Reader struct {
	r            io.ReadSeeker
	hdr          *Header
	cal          []Calibration
	recordSize   int   // Total size of one data record
	signalOffset []int // Byte offset of each signal in a record
}

// Open opens an EDF/EDF+ file for reading. Only the headers are read; sample
// data is read on demand by ReadAll, ReadChannel or Signal.
func Open(r io.ReadSeeker) (*Reader, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to header: %w", err)
	}

	reader := bufio.NewReader(r)

	hdr, err := ParseHeader(reader)
	if err != nil {
		return nil, err
	}

	hdr.Signals, err = ParseSignals(reader, hdr)
	if err != nil {
		return nil, err
	}

	er := &Reader{
		r:            r,
		hdr:          hdr,
		cal:          make([]Calibration, len(hdr.Signals)),
		recordSize:   hdr.RecordSize(),
		signalOffset: make([]int, len(hdr.Signals)),
	}

	offset := 0
	for i, sig := range hdr.Signals {
		er.signalOffset[i] = offset
		offset += sig.SamplesPerRecord * 2

		if er.cal[i], err = sig.Calibration(); err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
	}

	if err := er.checkRecordCount(); err != nil {
		return nil, err
	}

	return er, nil
}

// Header returns the parsed header. It must not be modified.
func (er *Reader) Header() *Header {
	return er.hdr
}

// Calibration returns the calibration of signal i.
func (er *Reader) Calibration(signalIndex int) (Calibration, error) {
	if err := er.checkIndex(signalIndex); err != nil {
		return Calibration{}, err
	}
	return er.cal[signalIndex], nil
}

// Frequency returns the sampling frequency of signal i in Hz.
func (er *Reader) Frequency(signalIndex int) (float64, error) {
	if err := er.checkIndex(signalIndex); err != nil {
		return 0, err
	}
	return er.hdr.Frequency(signalIndex), nil
}

// TimeVector returns the time in seconds of every sample of signal i,
// relative to the start of the recording.
func (er *Reader) TimeVector(signalIndex int) ([]float64, error) {
	freq, err := er.Frequency(signalIndex)
	if err != nil {
		return nil, err
	}

	ts := make([]float64, er.hdr.DataRecords*er.hdr.Signals[signalIndex].SamplesPerRecord)
	for i := range ts {
		ts[i] = float64(i) / freq
	}
	return ts, nil
}

// ReadAll reads every data record into a SampleMatrix.
func (er *Reader) ReadAll() (*SampleMatrix, error) {
	if _, err := er.r.Seek(int64(er.hdr.HeaderBytes), io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to data records: %w", err)
	}

	rows := make([][]int16, len(er.hdr.Signals))
	for i, sig := range er.hdr.Signals {
		rows[i] = make([]int16, er.hdr.DataRecords*sig.SamplesPerRecord)
	}

	reader := bufio.NewReader(er.r)
	buf := make([]byte, er.recordSize)
	for rec := 0; rec < er.hdr.DataRecords; rec++ {
		if n, err := io.ReadFull(reader, buf); err != nil {
			return nil, er.truncated(rec, n, err)
		}

		for i, sig := range er.hdr.Signals {
			spr := sig.SamplesPerRecord
			decodeSamples(rows[i][rec*spr:(rec+1)*spr], buf[er.signalOffset[i]:])
		}
	}

	return &SampleMatrix{rows: rows, cal: er.cal}, nil
}

// ReadChannel reads the raw samples of a single signal, seeking past every
// other signal's data.
func (er *Reader) ReadChannel(signalIndex int) ([]int16, error) {
	if err := er.checkIndex(signalIndex); err != nil {
		return nil, err
	}

	spr := er.hdr.Signals[signalIndex].SamplesPerRecord
	samples := make([]int16, er.hdr.DataRecords*spr)
	buf := make([]byte, spr*2)
	for rec := 0; rec < er.hdr.DataRecords; rec++ {
		if err := er.readSignalRecord(signalIndex, rec, buf); err != nil {
			return nil, err
		}
		decodeSamples(samples[rec*spr:(rec+1)*spr], buf)
	}

	return samples, nil
}

// readSignalRecord reads the bytes of one signal in one data record into buf.
func (er *Reader) readSignalRecord(signalIndex, rec int, buf []byte) error {
	pos := int64(er.hdr.HeaderBytes) + int64(rec)*int64(er.recordSize) + int64(er.signalOffset[signalIndex])
	if _, err := er.r.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to position: %w", err)
	}
	if n, err := io.ReadFull(er.r, buf); err != nil {
		return fmt.Errorf("%w: record %d signal %d at byte %d: read %d of %d bytes: %w",
			ephys.ErrTruncatedData, rec, signalIndex, pos, n, len(buf), err)
	}
	return nil
}

func (er *Reader) checkIndex(signalIndex int) error {
	if signalIndex < 0 || signalIndex >= len(er.hdr.Signals) {
		return fmt.Errorf("%w: signal %d of %d", ephys.ErrChannelIndex, signalIndex, len(er.hdr.Signals))
	}
	return nil
}

func (er *Reader) truncated(rec, n int, err error) error {
	pos := int64(er.hdr.HeaderBytes) + int64(rec)*int64(er.recordSize)
	return fmt.Errorf("%w: record %d at byte %d: read %d of %d bytes: %w",
		ephys.ErrTruncatedData, rec, pos, n, er.recordSize, err)
}

// checkRecordCount measures the stream. An unknown record count is derived
// from its size; a declared count must fit inside it.
func (er *Reader) checkRecordCount() error {
	size, err := er.r.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("error seeking to end: %w", err)
	}

	data := size - int64(er.hdr.HeaderBytes)
	if data < 0 {
		return fmt.Errorf("%w: stream of %d bytes ends inside the %d byte header", ephys.ErrTruncatedData, size, er.hdr.HeaderBytes)
	}

	recordSize := int64(er.recordSize)
	available := data / recordSize

	if er.hdr.DataRecords == -1 {
		er.hdr.DataRecords = int(available)
		if rem := data % recordSize; rem != 0 {
			monitoring.Logf("edf: ignoring %d trailing bytes after %d records of unknown count", rem, er.hdr.DataRecords)
		}
		return nil
	}

	if int64(er.hdr.DataRecords) > available {
		pos := int64(er.hdr.HeaderBytes) + available*recordSize
		return fmt.Errorf("%w: header declares %d records, record %d at byte %d is past the end of the %d byte stream",
			ephys.ErrTruncatedData, er.hdr.DataRecords, available, pos, size)
	}
	return nil
}

// SignalReader reads continuous signal data from an EDF/EDF+ file.
type SignalReader struct {
	er            *Reader
	signalIndex   int     // Index of the signal to read
	currentRecord int     // Current record being processed
	currentSample int     // Current sample in the record
	buf           []byte  // Raw bytes of the current record
	samples       []int16 // Decoded samples of the current record
	loaded        bool    // Whether samples holds currentRecord
}

// Signal creates a new SignalReader for a specified signal index.
func (er *Reader) Signal(signalIndex int) (*SignalReader, error) {
	if err := er.checkIndex(signalIndex); err != nil {
		return nil, err
	}

	spr := er.hdr.Signals[signalIndex].SamplesPerRecord
	return &SignalReader{
		er:          er,
		signalIndex: signalIndex,
		buf:         make([]byte, spr*2),
		samples:     make([]int16, spr),
	}, nil
}

// Read fills the provided float64 slice with the physical values from the signal.
func (sr *SignalReader) Read(data []float64) (int, error) {
	cal := sr.er.cal[sr.signalIndex]

	n := 0
	for n < len(data) {
		if sr.currentRecord >= sr.er.hdr.DataRecords {
			return n, io.EOF // End of data records
		}

		if !sr.loaded {
			if err := sr.er.readSignalRecord(sr.signalIndex, sr.currentRecord, sr.buf); err != nil {
				return n, err
			}
			decodeSamples(sr.samples, sr.buf)
			sr.loaded = true
		}

		m := copyPhysical(data[n:], sr.samples[sr.currentSample:], cal)
		n += m

		// Move to the next record once this one is drained
		sr.currentSample += m
		if sr.currentSample >= len(sr.samples) {
			sr.currentSample = 0
			sr.currentRecord++
			sr.loaded = false
		}
	}

	return n, nil
}

func copyPhysical(dst []float64, src []int16, cal Calibration) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = cal.Physical(src[i])
	}
	return n
}

// decodeSamples decodes len(dst) little-endian int16 values from b.
func decodeSamples(dst []int16, b []byte) {
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
}
