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
	"math"
	"os"

	"github.com/OpenPSG/ephys/edf"
	"github.com/OpenPSG/ephys/export"
	"github.com/dustin/go-humanize"
)

func runWAV(args []string, w io.Writer) error {
	var src source
	fs := flag.NewFlagSet("wav", flag.ContinueOnError)
	fs.StringVar(&src.edfPath, "edf", "", "EDF/EDF+ recording")
	fs.StringVar(&src.ncsPath, "ncs", "", "Neuralynx .ncs recording")
	signal := fs.Int("signal", 0, "EDF signal index")
	outPath := fs.String("out", "", "Output WAV file (required)")
	normalize := fs.Bool("normalize", false, "Scale physical values to full range instead of writing raw samples")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" {
		fs.Usage()
		return errors.New("-out is required")
	}
	if err := src.validate(); err != nil {
		return err
	}

	var samples []int16
	var rate float64
	var err error
	switch {
	case *normalize:
		src.signals = fmt.Sprint(*signal)
		data, _, r, lerr := src.load()
		if lerr != nil {
			return lerr
		}
		samples, rate = export.Normalize(data.RawRowView(0)), r
	case src.edfPath != "":
		samples, rate, err = rawEDF(src.edfPath, *signal)
	default:
		samples, rate, err = rawNCS(src.ncsPath)
	}
	if err != nil {
		return err
	}

	if rate != math.Trunc(rate) {
		return fmt.Errorf("sampling rate %g Hz is not a whole number", rate)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := export.WriteWAV(f, samples, int(rate)); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s samples at %g Hz to %s\n", humanize.Comma(int64(len(samples))), rate, *outPath)
	return nil
}

func rawEDF(path string, signal int) ([]int16, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r, err := edf.Open(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	samples, err := r.ReadChannel(signal)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	rate, err := r.Frequency(signal)
	if err != nil {
		return nil, 0, err
	}
	return samples, rate, nil
}

func rawNCS(path string) ([]int16, float64, error) {
	file, err := readNCS(path)
	if err != nil {
		return nil, 0, err
	}
	rate, err := file.SampleRate()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return file.Samples(), float64(rate), nil
}
