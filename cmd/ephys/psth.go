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
	"text/tabwriter"

	"github.com/OpenPSG/ephys/epoch"
	"github.com/OpenPSG/ephys/spike"
)

func runPSTH(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("psth", flag.ContinueOnError)
	spikesPath := fs.String("spikes", "", "Spike times in seconds, one per line (required)")
	markersPath := fs.String("markers", "", "Marker or reference spike times in seconds, one per line (required)")
	start := fs.Float64("start", -0.5, "Window start relative to each marker, in seconds")
	end := fs.Float64("end", 0.5, "Window end relative to each marker, in seconds")
	binSize := fs.Float64("bin", 0.01, "Bin size in seconds")
	shift := fs.Float64("shift", 0, "Subtract the shift predictor for this shift, in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *spikesPath == "" || *markersPath == "" {
		fs.Usage()
		return errors.New("-spikes and -markers are required")
	}

	spikes, err := readTrain(*spikesPath)
	if err != nil {
		return err
	}
	markers, err := readTrain(*markersPath)
	if err != nil {
		return err
	}

	roi := epoch.Window{Start: *start, End: *end}
	var h *spike.Histogram
	if *shift > 0 {
		h, err = spike.CrossCorrelogram(spikes, markers, roi, *binSize, *shift)
	} else {
		h, err = spike.PSTH(spikes, markers, roi, *binSize)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "from\tto\trate (1/s)\t")
	for i, r := range h.Rate {
		fmt.Fprintf(tw, "%.4f\t%.4f\t%.3f\t\n", h.Edges[i], h.Edges[i+1], r)
	}
	return tw.Flush()
}
