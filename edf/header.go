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
	"io"
	"math"
	"time"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/fixedwidth"
)

// GlobalHeaderSize is the size of the fixed part of an EDF header.
const GlobalHeaderSize = 256

const (
	dateLayout = "02.01.06"
	timeLayout = "15.04.05"
)

var globalFields = []fixedwidth.Field{
	{Name: "version", Width: 8, Kind: fixedwidth.String},
	{Name: "patient", Width: 80, Kind: fixedwidth.String},
	{Name: "recording", Width: 80, Kind: fixedwidth.String},
	{Name: "startdate", Width: 8, Kind: fixedwidth.String},
	{Name: "starttime", Width: 8, Kind: fixedwidth.String},
	{Name: "headerbytes", Width: 8, Kind: fixedwidth.Int},
	{Name: "reserved", Width: 44, Kind: fixedwidth.String},
	{Name: "records", Width: 8, Kind: fixedwidth.Int},
	{Name: "duration", Width: 8, Kind: fixedwidth.Float},
	{Name: "signals", Width: 4, Kind: fixedwidth.Int},
}

// SignalLayout is the per-signal header block. Each field is repeated once
// per signal before the next field begins.
var SignalLayout = fixedwidth.Layout{
	{Name: "label", Width: 16, Kind: fixedwidth.String},
	{Name: "transducer", Width: 80, Kind: fixedwidth.String},
	{Name: "dimension", Width: 8, Kind: fixedwidth.String},
	{Name: "physmin", Width: 8, Kind: fixedwidth.Float},
	{Name: "physmax", Width: 8, Kind: fixedwidth.Float},
	{Name: "digmin", Width: 8, Kind: fixedwidth.Int},
	{Name: "digmax", Width: 8, Kind: fixedwidth.Int},
	{Name: "prefiltering", Width: 80, Kind: fixedwidth.String},
	{Name: "samples", Width: 8, Kind: fixedwidth.Int},
	{Name: "reserved", Width: 32, Kind: fixedwidth.String},
}

// ParseHeader reads and decodes the 256 byte global header. The returned
// header has no signals; see ParseSignals.
func ParseHeader(r io.Reader) (*Header, error) {
	b := make([]byte, GlobalHeaderSize)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: error reading header: %w", ephys.ErrMalformedHeader, err)
	}

	rec, err := fixedwidth.Decode(b, globalFields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ephys.ErrMalformedHeader, err)
	}

	hdr := &Header{
		Version:     Version(rec.Text("version")),
		PatientID:   rec.Text("patient"),
		RecordingID: rec.Text("recording"),
		HeaderBytes: rec.Int("headerbytes"),
		Reserved:    rec.Text("reserved"),
		DataRecords: rec.Int("records"),
		SignalCount: rec.Int("signals"),
	}

	hdr.StartTime, err = parseStartTime(rec.Text("startdate"), rec.Text("starttime"))
	if err != nil {
		return nil, err
	}

	if hdr.HeaderBytes <= GlobalHeaderSize {
		return nil, fmt.Errorf("%w: header length %d", ephys.ErrMalformedHeader, hdr.HeaderBytes)
	}
	if hdr.SignalCount <= 0 {
		return nil, fmt.Errorf("%w: signal count %d", ephys.ErrMalformedHeader, hdr.SignalCount)
	}
	if hdr.DataRecords < -1 {
		return nil, fmt.Errorf("%w: data record count %d", ephys.ErrMalformedHeader, hdr.DataRecords)
	}

	duration := rec.Float("duration")
	if duration <= 0 || math.IsInf(duration, 0) || math.IsNaN(duration) {
		return nil, fmt.Errorf("%w: data record duration %q", ephys.ErrMalformedHeader, rec.Text("duration"))
	}
	hdr.DataRecordSeconds = duration
	hdr.DataRecordDuration = time.Duration(math.Round(duration * float64(time.Second)))

	return hdr, nil
}

// ParseSignals reads the per-signal header block that follows the global
// header and decodes one Signal per channel.
func ParseSignals(r io.Reader, hdr *Header) ([]Signal, error) {
	size := hdr.HeaderBytes - GlobalHeaderSize
	if need := SignalLayout.Size(hdr.SignalCount); size < need {
		return nil, fmt.Errorf("%w: signal block of %d bytes overruns header length %d (%d signals need %d)",
			ephys.ErrMalformedHeader, need, hdr.HeaderBytes, hdr.SignalCount, need)
	}

	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: error reading signal headers: %w", ephys.ErrMalformedHeader, err)
	}

	recs, err := fixedwidth.DecodeInterleaved(b, SignalLayout, hdr.SignalCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ephys.ErrMalformedHeader, err)
	}

	signals := make([]Signal, len(recs))
	labels := make(map[string]int, len(recs))
	for i, rec := range recs {
		signals[i] = Signal{
			Label:             rec.Text("label"),
			TransducerType:    rec.Text("transducer"),
			PhysicalDimension: rec.Text("dimension"),
			PhysicalMin:       rec.Float("physmin"),
			PhysicalMax:       rec.Float("physmax"),
			DigitalMin:        rec.Int("digmin"),
			DigitalMax:        rec.Int("digmax"),
			Prefiltering:      rec.Text("prefiltering"),
			SamplesPerRecord:  rec.Int("samples"),
			Reserved:          rec.Text("reserved"),
		}

		if signals[i].SamplesPerRecord <= 0 {
			return nil, fmt.Errorf("%w: signal %d has %d samples per record", ephys.ErrMalformedHeader, i, signals[i].SamplesPerRecord)
		}
		if signals[i].IsAnnotations() {
			continue
		}
		if j, ok := labels[signals[i].Label]; ok {
			return nil, fmt.Errorf("%w: signals %d and %d share label %q", ephys.ErrMalformedHeader, j, i, signals[i].Label)
		}
		labels[signals[i].Label] = i
	}

	return signals, nil
}

// Encode encodes the global header followed by the per-signal block.
func (h *Header) Encode() ([]byte, error) {
	b, err := fixedwidth.Encode(globalFields, fixedwidth.Record{
		"version":     fixedwidth.TextValue(string(h.Version)),
		"patient":     fixedwidth.TextValue(h.PatientID),
		"recording":   fixedwidth.TextValue(h.RecordingID),
		"startdate":   fixedwidth.TextValue(h.StartTime.Format(dateLayout)),
		"starttime":   fixedwidth.TextValue(h.StartTime.Format(timeLayout)),
		"headerbytes": fixedwidth.IntValue(h.HeaderBytes),
		"reserved":    fixedwidth.TextValue(h.Reserved),
		"records":     fixedwidth.IntValue(h.DataRecords),
		"duration":    fixedwidth.FloatValue(h.RecordSeconds()),
		"signals":     fixedwidth.IntValue(h.SignalCount),
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding header: %w", err)
	}

	recs := make([]fixedwidth.Record, len(h.Signals))
	for i, sig := range h.Signals {
		recs[i] = fixedwidth.Record{
			"label":        fixedwidth.TextValue(sig.Label),
			"transducer":   fixedwidth.TextValue(sig.TransducerType),
			"dimension":    fixedwidth.TextValue(sig.PhysicalDimension),
			"physmin":      fixedwidth.FloatValue(sig.PhysicalMin),
			"physmax":      fixedwidth.FloatValue(sig.PhysicalMax),
			"digmin":       fixedwidth.IntValue(sig.DigitalMin),
			"digmax":       fixedwidth.IntValue(sig.DigitalMax),
			"prefiltering": fixedwidth.TextValue(sig.Prefiltering),
			"samples":      fixedwidth.IntValue(sig.SamplesPerRecord),
			"reserved":     fixedwidth.TextValue(sig.Reserved),
		}
	}

	block, err := fixedwidth.EncodeInterleaved(SignalLayout, recs)
	if err != nil {
		return nil, fmt.Errorf("error encoding signal headers: %w", err)
	}

	return append(b, block...), nil
}

// parseStartTime combines the dd.mm.yy and hh.mm.ss fields. Two digit years
// 85-99 are 1985-1999, everything else is 20yy.
func parseStartTime(dateStr, timeStr string) (time.Time, error) {
	startDate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: error parsing start date: %w", ephys.ErrMalformedHeader, err)
	}
	startTime, err := time.Parse(timeLayout, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: error parsing start time: %w", ephys.ErrMalformedHeader, err)
	}

	year := startDate.Year() % 100
	if year >= 85 {
		year += 1900
	} else {
		year += 2000
	}

	return time.Date(year, startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC), nil
}
