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
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OpenPSG/ephys/epoch"
	"github.com/OpenPSG/ephys/internal/monitoring"
)

func runEpoch(args []string, w io.Writer) error {
	var src source
	fs := flag.NewFlagSet("epoch", flag.ContinueOnError)
	fs.StringVar(&src.edfPath, "edf", "", "EDF/EDF+ recording")
	fs.StringVar(&src.ncsPath, "ncs", "", "Neuralynx .ncs recording")
	fs.StringVar(&src.signals, "signals", "", "Comma separated EDF signal indices (default: all data signals)")
	markersPath := fs.String("markers", "", "Marker times in seconds, one per line (required)")
	start := fs.Float64("start", -0.1, "Window start relative to each marker, in seconds")
	end := fs.Float64("end", 0.5, "Window end relative to each marker, in seconds")
	bias := fs.Float64("bias", 0, "Offset added to every marker, in seconds")
	outPath := fs.String("out", "", "Write the trial average CSV to this file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *markersPath == "" {
		fs.Usage()
		return errors.New("-markers is required")
	}

	data, labels, rate, err := src.load()
	if err != nil {
		return err
	}
	markers, err := readTrain(*markersPath)
	if err != nil {
		return err
	}

	win := epoch.Window{Start: *start, End: *end}
	tensor, err := epoch.Extract(data, markers, win, rate, *bias)
	if err != nil {
		return err
	}
	channels, samples, trials := tensor.Dims()
	monitoring.Logf("epoch: %d trials of %d samples across %d channels", trials, samples, channels)

	out := w
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	mean := tensor.Mean()
	cw := csv.NewWriter(out)
	if err := cw.Write(append([]string{"time"}, labels...)); err != nil {
		return err
	}
	row := make([]string, channels+1)
	for s := 0; s < samples; s++ {
		row[0] = strconv.FormatFloat(win.Start+float64(s)/rate, 'f', -1, 64)
		for c := 0; c < channels; c++ {
			row[c+1] = strconv.FormatFloat(mean.At(c, s), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("error writing epochs: %w", err)
	}
	return nil
}
