// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/OpenPSG/ephys/edf"
	"github.com/OpenPSG/ephys/ncs"
	"github.com/dustin/go-humanize"
)

func runInfo(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: ephys info <file.edf|file.ncs>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("info takes exactly one file")
	}

	path := fs.Arg(0)
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "File:      %s (%s)\n", path, humanize.Bytes(uint64(st.Size())))

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".edf":
		return edfInfo(path, w)
	case ".ncs":
		return ncsInfo(path, w)
	default:
		return fmt.Errorf("unsupported file extension %q", ext)
	}
}

func edfInfo(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := edf.Open(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	hdr := r.Header()
	format := "EDF"
	if hdr.IsEDFPlus() {
		format = hdr.Reserved
	}
	duration := time.Duration(hdr.DataRecords) * hdr.DataRecordDuration

	fmt.Fprintf(w, "Format:    %s\n", format)
	fmt.Fprintf(w, "Patient:   %s\n", hdr.PatientID)
	fmt.Fprintf(w, "Recording: %s\n", hdr.RecordingID)
	fmt.Fprintf(w, "Start:     %s\n", hdr.StartTime.Format(time.DateTime))
	fmt.Fprintf(w, "Records:   %s × %s (%s)\n", humanize.Comma(int64(hdr.DataRecords)), hdr.DataRecordDuration, duration)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLabel\tRate (Hz)\tSamples\tPhysical range")
	for i, sig := range hdr.Signals {
		if sig.IsAnnotations() {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\n", i, sig.Label)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%g\t%s\t[%g, %g] %s\n", i, sig.Label, hdr.Frequency(i),
			humanize.Comma(int64(hdr.DataRecords*sig.SamplesPerRecord)), sig.PhysicalMin, sig.PhysicalMax, sig.PhysicalDimension)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if hdr.IsEDFPlus() {
		anns, err := r.Annotations()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(w, "Annotations: %s\n", humanize.Comma(int64(len(anns))))
	}
	return nil
}

func ncsInfo(path string, w io.Writer) error {
	file, err := readNCS(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Format:    Neuralynx CSC\n")
	fmt.Fprintf(w, "Records:   %s (%s samples)\n", humanize.Comma(int64(len(file.Records))),
		humanize.Comma(int64(len(file.Records)*ncs.SamplesPerRecord)))

	if name, ok := file.Attribute("AcqEntName"); ok {
		fmt.Fprintf(w, "Channel:   %s\n", name)
	}
	if rate, err := file.SampleRate(); err == nil {
		fmt.Fprintf(w, "Rate:      %d Hz\n", rate)
	}
	if bitVolts, err := file.BitVolts(); err == nil {
		fmt.Fprintf(w, "ADBitVolts: %g (inverted: %t)\n", bitVolts, file.Inverted())
	}
	if len(file.Records) > 1 {
		fmt.Fprintf(w, "Span:      %s\n", file.Span())
	}
	return nil
}
