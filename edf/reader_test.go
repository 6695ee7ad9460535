// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/edf"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeChannelFile holds 3 signals of 4 samples per record and 2 records,
// with sample values 0..23 in file order.
func threeChannelFile(t *testing.T) []byte {
	hdr := testHeader(testSignal("A", 4), testSignal("B", 4), testSignal("C", 4))

	var v int16
	records := make([][][]int16, 2)
	for r := range records {
		records[r] = make([][]int16, 3)
		for c := range records[r] {
			records[r][c] = make([]int16, 4)
			for s := range records[r][c] {
				records[r][c][s] = v
				v++
			}
		}
	}
	return buildEDF(t, hdr, records)
}

func TestReadAll(t *testing.T) {
	r, err := edf.Open(bytes.NewReader(threeChannelFile(t)))
	require.NoError(t, err)

	m, err := r.ReadAll()
	require.NoError(t, err)

	signals, samples := m.Dims()
	assert.Equal(t, 3, signals)
	assert.Equal(t, 8, samples)

	want := [][]int16{
		{0, 1, 2, 3, 12, 13, 14, 15},
		{4, 5, 6, 7, 16, 17, 18, 19},
		{8, 9, 10, 11, 20, 21, 22, 23},
	}
	for c := range want {
		if diff := cmp.Diff(want[c], m.Row(c)); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", c, diff)
		}
	}
	assert.Equal(t, int16(17), m.At(1, 5))
}

func TestReadAllTruncated(t *testing.T) {
	b := threeChannelFile(t)

	_, err := edf.Open(bytes.NewReader(b[:len(b)-1]))
	assert.ErrorIs(t, err, ephys.ErrTruncatedData)
	assert.ErrorContains(t, err, "record 1")
}

func TestOpenDeclaredRecordsExceedStream(t *testing.T) {
	hdr := testHeader(testSignal("A", 99999999))
	hdr.DataRecords = 99999999
	b := buildEDF(t, hdr, nil)
	b = append(b, 1, 2, 3, 4)

	r, err := edf.Open(bytes.NewReader(b))
	require.ErrorIs(t, err, ephys.ErrTruncatedData)
	assert.Nil(t, r)
	assert.ErrorContains(t, err, "record 0")
}

func TestReadChannel(t *testing.T) {
	r, err := edf.Open(bytes.NewReader(threeChannelFile(t)))
	require.NoError(t, err)

	samples, err := r.ReadChannel(2)
	require.NoError(t, err)
	assert.Equal(t, []int16{8, 9, 10, 11, 20, 21, 22, 23}, samples)

	_, err = r.ReadChannel(3)
	assert.ErrorIs(t, err, ephys.ErrChannelIndex)

	_, err = r.ReadChannel(-1)
	assert.ErrorIs(t, err, ephys.ErrChannelIndex)
}

func TestReadChannelMixedRates(t *testing.T) {
	hdr := testHeader(testSignal("fast", 4), testSignal("slow", 2))
	b := buildEDF(t, hdr, [][][]int16{
		{{1, 2, 3, 4}, {-1, -2}},
		{{5, 6, 7, 8}, {-3, -4}},
	})

	r, err := edf.Open(bytes.NewReader(b))
	require.NoError(t, err)

	slow, err := r.ReadChannel(1)
	require.NoError(t, err)
	assert.Equal(t, []int16{-1, -2, -3, -4}, slow)

	freq, err := r.Frequency(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, freq)

	m, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 8, m.Len(0))
	assert.Equal(t, 4, m.Len(1))

	_, err = m.Dense()
	assert.ErrorIs(t, err, edf.ErrMixedRates)

	d, err := m.Dense(0)
	require.NoError(t, err)
	rows, cols := d.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 8, cols)
}

func TestPhysicalValues(t *testing.T) {
	r, err := edf.Open(bytes.NewReader(threeChannelFile(t)))
	require.NoError(t, err)

	cal, err := r.Calibration(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, cal.Scale, 1e-12)
	assert.InDelta(t, 0.0, cal.Offset, 1e-9)

	m, err := r.ReadAll()
	require.NoError(t, err)

	physical := m.Physical(1)
	require.Len(t, physical, 8)
	assert.InDelta(t, 0.4, physical[0], 1e-9)
	assert.InDelta(t, 1.9, physical[7], 1e-9)

	d, err := m.Dense()
	require.NoError(t, err)
	assert.InDelta(t, 2.3, d.At(2, 7), 1e-9)
}

func TestSignalReader(t *testing.T) {
	r, err := edf.Open(bytes.NewReader(threeChannelFile(t)))
	require.NoError(t, err)

	sr, err := r.Signal(1)
	require.NoError(t, err)

	// Reads spanning a record boundary.
	samples := make([]float64, 3)
	n, err := sr.Read(samples)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.InDeltaSlice(t, []float64{0.4, 0.5, 0.6}, samples, 1e-9)

	n, err = sr.Read(samples)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.InDeltaSlice(t, []float64{0.7, 1.6, 1.7}, samples, 1e-9)

	n, err = sr.Read(samples)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, n)

	_, err = r.Signal(5)
	assert.ErrorIs(t, err, ephys.ErrChannelIndex)
}

func TestTimeVector(t *testing.T) {
	r, err := edf.Open(bytes.NewReader(threeChannelFile(t)))
	require.NoError(t, err)

	ts, err := r.TimeVector(0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75}, ts, 1e-12)
}

func TestOpenCalibrationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*edf.Signal)
	}{
		{name: "equal digital range", mutate: func(s *edf.Signal) { s.DigitalMax = s.DigitalMin }},
		{name: "inverted digital range", mutate: func(s *edf.Signal) { s.DigitalMin, s.DigitalMax = s.DigitalMax, s.DigitalMin }},
		{name: "equal physical range", mutate: func(s *edf.Signal) { s.PhysicalMax = s.PhysicalMin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := testSignal("A", 4)
			tt.mutate(&sig)

			b := buildEDF(t, testHeader(testSignal("ok", 4), sig), nil)
			_, err := edf.Open(bytes.NewReader(b))
			assert.ErrorIs(t, err, ephys.ErrCalibration)
			assert.ErrorContains(t, err, "signal 1")
		})
	}
}

func TestOpenUnknownRecordCount(t *testing.T) {
	hdr := testHeader(testSignal("A", 2))
	hdr.DataRecords = -1
	b := buildEDF(t, hdr, [][][]int16{{{1, 2}}, {{3, 4}}, {{5, 6}}})

	// A partial trailing record is ignored when the count is unknown.
	b = append(b, 0x01)

	r, err := edf.Open(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Header().DataRecords)

	samples, err := r.ReadChannel(0)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3, 4, 5, 6}, samples)
}

func TestAnnotations(t *testing.T) {
	ann := testSignal(edf.AnnotationsLabel, 30)
	ann.PhysicalMin, ann.PhysicalMax = -1, 1
	hdr := testHeader(testSignal("EEG", 2), ann)
	hdr.Reserved = "EDF+C"

	b := buildEDF(t, hdr, [][][]int16{
		{{0, 0}, annotationSamples(t, 30, edf.EncodeTAL(0, 0), edf.EncodeTAL(0.5, 0.2, "stim A"))},
		{{0, 0}, annotationSamples(t, 30, edf.EncodeTAL(1, 0), edf.EncodeTAL(1.25, 0, "stim B", "note"))},
	})

	r, err := edf.Open(bytes.NewReader(b))
	require.NoError(t, err)
	assert.True(t, r.Header().IsEDFPlus())

	anns, err := r.Annotations()
	require.NoError(t, err)

	want := []edf.Annotation{
		{Onset: 0.5, Duration: 0.2, Text: "stim A"},
		{Onset: 1.25, Text: "stim B"},
		{Onset: 1.25, Text: "note"},
	}
	if diff := cmp.Diff(want, anns); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTALsErrors(t *testing.T) {
	for _, tal := range []string{
		"0.5\x14text\x14\x00",
		"+abc\x14text\x14\x00",
		"+1\x15x\x14text\x14\x00",
		"+1\x00",
	} {
		_, err := edf.ParseTALs([]byte(tal))
		assert.ErrorIs(t, err, edf.ErrMalformedAnnotation, "%q", tal)
	}
}
