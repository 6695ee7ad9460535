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
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/OpenPSG/ephys/edf"
	"github.com/stretchr/testify/require"
)

func testSignal(label string, spr int) edf.Signal {
	return edf.Signal{
		Label:             label,
		TransducerType:    "AgAgCl electrode",
		PhysicalDimension: "uV",
		PhysicalMin:       -3276.8,
		PhysicalMax:       3276.7,
		DigitalMin:        -32768,
		DigitalMax:        32767,
		SamplesPerRecord:  spr,
	}
}

func testHeader(signals ...edf.Signal) edf.Header {
	return edf.Header{
		Version:            edf.Version0,
		PatientID:          "X X X X",
		RecordingID:        "Startdate 17-MAR-2021 X X X",
		StartTime:          time.Date(2021, time.March, 17, 9, 30, 0, 0, time.UTC),
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
		Signals:            signals,
	}
}

// buildEDF encodes a complete file from a header and records of raw samples
// indexed [record][signal][sample].
func buildEDF(t *testing.T, hdr edf.Header, records [][][]int16) []byte {
	t.Helper()

	hdr.SignalCount = len(hdr.Signals)
	hdr.HeaderBytes = edf.GlobalHeaderSize + edf.SignalLayout.Size(hdr.SignalCount)
	if hdr.DataRecords == 0 {
		hdr.DataRecords = len(records)
	}

	b, err := hdr.Encode()
	require.NoError(t, err)
	require.Len(t, b, hdr.HeaderBytes)

	for _, rec := range records {
		for _, sig := range rec {
			for _, v := range sig {
				b = binary.LittleEndian.AppendUint16(b, uint16(v))
			}
		}
	}
	return b
}

// annotationSamples packs TAL bytes into an annotation signal's int16 slots.
func annotationSamples(t *testing.T, spr int, tals ...[]byte) []int16 {
	t.Helper()

	var b []byte
	for _, tal := range tals {
		b = append(b, tal...)
	}
	require.LessOrEqual(t, len(b), spr*2, "annotations overflow the record")
	b = append(b, make([]byte, spr*2-len(b))...)

	out := make([]int16, spr)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func label(kind string, c int) string {
	return fmt.Sprintf("%s%d", kind, c)
}
