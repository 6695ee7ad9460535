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
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/edf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func globalHeader(headerBytes int, records, duration, signals string) []byte {
	return []byte(fmt.Sprintf("%-8s%-80s%-80s%-8s%-8s%-8d%-44s%-8s%-8s%-4s",
		"0", "MCH-0234567 F 02-MAY-1951 Haagse_Harry", "Startdate 02-MAR-2002 PSG-1234/2002 NN Telemetry03",
		"02.03.02", "14.30.00", headerBytes, "EDF+C", records, duration, signals))
}

func TestParseHeader(t *testing.T) {
	hdr, err := edf.ParseHeader(bytes.NewReader(globalHeader(512, "2880", "30", "1")))
	require.NoError(t, err)

	assert.Equal(t, edf.Version0, hdr.Version)
	assert.Equal(t, "MCH-0234567 F 02-MAY-1951 Haagse_Harry", hdr.PatientID)
	assert.Equal(t, time.Date(2002, time.March, 2, 14, 30, 0, 0, time.UTC), hdr.StartTime)
	assert.Equal(t, 512, hdr.HeaderBytes)
	assert.Equal(t, "EDF+C", hdr.Reserved)
	assert.True(t, hdr.IsEDFPlus())
	assert.Equal(t, 2880, hdr.DataRecords)
	assert.Equal(t, 30*time.Second, hdr.DataRecordDuration)
	assert.Equal(t, 1, hdr.SignalCount)
}

func TestParseHeaderKeepsDeclaredSeconds(t *testing.T) {
	hdr, err := edf.ParseHeader(bytes.NewReader(globalHeader(512, "3", "0.333333", "1")))
	require.NoError(t, err)

	secs := 0.333333
	assert.Equal(t, secs, hdr.DataRecordSeconds)
	assert.Equal(t, secs, hdr.RecordSeconds())
	assert.Equal(t, 333333*time.Microsecond, hdr.DataRecordDuration)

	hdr.Signals = []edf.Signal{{SamplesPerRecord: 100}}
	assert.Equal(t, 100/secs, hdr.Frequency(0))
}

func TestParseHeaderCentury(t *testing.T) {
	b := globalHeader(512, "1", "1", "1")
	copy(b[168:176], "31.12.85")

	hdr, err := edf.ParseHeader(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 1985, hdr.StartTime.Year())
}

func TestParseHeaderRoundTrip(t *testing.T) {
	for _, duration := range []string{"1", "0.5", "30", "0.001", "0.333333"} {
		t.Run(duration, func(t *testing.T) {
			b := globalHeader(512, "10", duration, "1")

			hdr, err := edf.ParseHeader(bytes.NewReader(b))
			require.NoError(t, err)

			encoded, err := hdr.Encode()
			require.NoError(t, err)
			assert.Equal(t, string(b), string(encoded))
		})
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "short", buf: globalHeader(512, "1", "1", "1")[:200]},
		{name: "header length too small", buf: globalHeader(256, "1", "1", "1")},
		{name: "non-numeric record count", buf: globalHeader(512, "many", "1", "1")},
		{name: "non-numeric duration", buf: globalHeader(512, "1", "1s", "1")},
		{name: "zero duration", buf: globalHeader(512, "1", "0", "1")},
		{name: "non-numeric signal count", buf: globalHeader(512, "1", "1", "x")},
		{name: "zero signals", buf: globalHeader(512, "1", "1", "0")},
		{name: "bad record count", buf: globalHeader(512, "-2", "1", "1")},
		{name: "bad date", buf: func() []byte {
			b := globalHeader(512, "1", "1", "1")
			copy(b[168:176], "32.13.02")
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := edf.ParseHeader(bytes.NewReader(tt.buf))
			assert.ErrorIs(t, err, ephys.ErrMalformedHeader)
		})
	}
}

// sentinelSignalBlock lays out a signal header block by hand, placing a
// value unique to each (field, channel) slot at the offsets the EDF standard
// defines.
func sentinelSignalBlock(n int) []byte {
	b := bytes.Repeat([]byte(" "), 256*n)
	put := func(base, width, c int, s string) {
		copy(b[base*n+c*width:], s)
	}

	for c := 0; c < n; c++ {
		put(0, 16, c, label("L", c))
		put(16, 80, c, label("T", c))
		put(96, 8, c, label("D", c))
		put(104, 8, c, strconv.Itoa(-1000-c))
		put(112, 8, c, strconv.Itoa(1000+c))
		put(120, 8, c, strconv.Itoa(-2000-c))
		put(128, 8, c, strconv.Itoa(2000+c))
		put(136, 80, c, label("P", c))
		put(216, 8, c, strconv.Itoa(100+c))
		put(224, 32, c, label("R", c))
	}
	return b
}

func TestParseSignalsOffsets(t *testing.T) {
	for _, n := range []int{1, 2, 17} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			hdr := &edf.Header{HeaderBytes: 256 + 256*n, SignalCount: n}

			signals, err := edf.ParseSignals(bytes.NewReader(sentinelSignalBlock(n)), hdr)
			require.NoError(t, err)
			require.Len(t, signals, n)

			for c, sig := range signals {
				assert.Equal(t, label("L", c), sig.Label)
				assert.Equal(t, label("T", c), sig.TransducerType)
				assert.Equal(t, label("D", c), sig.PhysicalDimension)
				assert.Equal(t, float64(-1000-c), sig.PhysicalMin)
				assert.Equal(t, float64(1000+c), sig.PhysicalMax)
				assert.Equal(t, -2000-c, sig.DigitalMin)
				assert.Equal(t, 2000+c, sig.DigitalMax)
				assert.Equal(t, label("P", c), sig.Prefiltering)
				assert.Equal(t, 100+c, sig.SamplesPerRecord)
				assert.Equal(t, label("R", c), sig.Reserved)
			}
		})
	}
}

func TestParseSignalsOverrun(t *testing.T) {
	hdr := &edf.Header{HeaderBytes: 256 + 256*2 - 1, SignalCount: 2}
	_, err := edf.ParseSignals(bytes.NewReader(sentinelSignalBlock(2)), hdr)
	assert.ErrorIs(t, err, ephys.ErrMalformedHeader)
}

func TestParseSignalsErrors(t *testing.T) {
	hdr := &edf.Header{HeaderBytes: 256 + 256*2, SignalCount: 2}

	t.Run("non-numeric digital max", func(t *testing.T) {
		b := sentinelSignalBlock(2)
		copy(b[128*2+8:], "oops    ")
		_, err := edf.ParseSignals(bytes.NewReader(b), hdr)
		assert.ErrorIs(t, err, ephys.ErrMalformedHeader)
		assert.ErrorIs(t, err, ephys.ErrHeaderDecode)
	})

	t.Run("duplicate label", func(t *testing.T) {
		b := sentinelSignalBlock(2)
		copy(b[16:], "L0")
		_, err := edf.ParseSignals(bytes.NewReader(b), hdr)
		assert.ErrorIs(t, err, ephys.ErrMalformedHeader)
	})

	t.Run("truncated block", func(t *testing.T) {
		_, err := edf.ParseSignals(bytes.NewReader(sentinelSignalBlock(2)[:300]), hdr)
		assert.ErrorIs(t, err, ephys.ErrMalformedHeader)
	})
}

func TestHeaderEncodeRoundTrip(t *testing.T) {
	b := buildEDF(t, testHeader(testSignal("EEG Fpz-Cz", 100), testSignal("EEG Pz-Oz", 100)), nil)

	r, err := edf.Open(bytes.NewReader(b))
	require.NoError(t, err)

	encoded, err := r.Header().Encode()
	require.NoError(t, err)
	assert.Equal(t, string(b), string(encoded))
}
