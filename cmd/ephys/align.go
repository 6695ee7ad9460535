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

	"github.com/OpenPSG/ephys/edf"
	"github.com/OpenPSG/ephys/marker"
	"github.com/dustin/go-humanize"
)

func runAlign(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("align", flag.ContinueOnError)
	logPath := fs.String("log", "", "Behavioral log CSV with time and marker columns")
	edfPath := fs.String("edf", "", "EDF+ file whose annotations form the behavioral log")
	trainPath := fs.String("train", "", "Hardware marker times, one per line (required)")
	configPath := fs.String("config", "", "Alignment options JSON file")
	outPath := fs.String("out", "", "Write the aligned markers as CSV to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *trainPath == "" {
		fs.Usage()
		return errors.New("-train is required")
	}
	if (*logPath == "") == (*edfPath == "") {
		fs.Usage()
		return errors.New("exactly one of -log or -edf is required")
	}

	cfg := marker.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = marker.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	var table marker.Table
	var err error
	if *logPath != "" {
		table, err = readTable(*logPath)
	} else {
		table, err = readAnnotations(*edfPath)
	}
	if err != nil {
		return err
	}

	train, err := readTrain(*trainPath)
	if err != nil {
		return err
	}

	aligner := marker.NewAligner(cfg, table, train)
	canonical, err := aligner.Align()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Aligned %s markers, skipped %s leading log entries\n",
		humanize.Comma(int64(canonical.Len())), humanize.Comma(int64(aligner.Shift())))
	for _, label := range canonical.Labels() {
		fmt.Fprintf(w, "  %-24s %s\n", label, humanize.Comma(int64(len(canonical.Times(label)))))
	}

	if *outPath == "" {
		return nil
	}
	return writeTable(*outPath, canonical.Table())
}

func readTable(path string) (marker.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := marker.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func readAnnotations(path string) (marker.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := edf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	anns, err := r.Annotations()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return marker.TableFromAnnotations(anns), nil
}

func writeTable(path string, table marker.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	_ = cw.Write([]string{"time", "marker"})
	for _, e := range table {
		_ = cw.Write([]string{strconv.FormatFloat(e.Time, 'f', -1, 64), e.Label})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
