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
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/OpenPSG/ephys"
	"github.com/OpenPSG/ephys/edf"
	"github.com/OpenPSG/ephys/marker"
	"github.com/OpenPSG/ephys/ncs"
	"gonum.org/v1/gonum/mat"
)

// source selects the recording a command reads from.
type source struct {
	edfPath string
	ncsPath string
	signals string
}

func (s *source) validate() error {
	if (s.edfPath == "") == (s.ncsPath == "") {
		return errors.New("exactly one of -edf or -ncs is required")
	}
	return nil
}

// signalIndices parses the comma separated -signals list.
func (s *source) signalIndices() ([]int, error) {
	if strings.TrimSpace(s.signals) == "" {
		return nil, nil
	}

	var out []int
	for _, f := range strings.Split(s.signals, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid signal index %q: %w", f, err)
		}
		out = append(out, i)
	}
	return out, nil
}

// load returns the selected physical data as a channels × samples matrix,
// the channel labels and the sampling rate.
func (s *source) load() (*mat.Dense, []string, float64, error) {
	if err := s.validate(); err != nil {
		return nil, nil, 0, err
	}
	if s.ncsPath != "" {
		return loadNCS(s.ncsPath)
	}

	indices, err := s.signalIndices()
	if err != nil {
		return nil, nil, 0, err
	}
	return loadEDF(s.edfPath, indices)
}

func loadEDF(path string, indices []int) (*mat.Dense, []string, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	r, err := edf.Open(f)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	hdr := r.Header()
	if len(indices) == 0 {
		for i, sig := range hdr.Signals {
			if !sig.IsAnnotations() {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			return nil, nil, 0, fmt.Errorf("%s: %w: no data signals", path, ephys.ErrEmptyRecording)
		}
	}

	m, err := r.ReadAll()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	data, err := m.Dense(indices...)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	labels := make([]string, len(indices))
	for i, idx := range indices {
		labels[i] = hdr.Signals[idx].Label
	}
	rate, err := r.Frequency(indices[0])
	if err != nil {
		return nil, nil, 0, err
	}
	return data, labels, rate, nil
}

func loadNCS(path string) (*mat.Dense, []string, float64, error) {
	file, err := readNCS(path)
	if err != nil {
		return nil, nil, 0, err
	}

	volts, _, err := file.Voltage()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	rate, err := file.SampleRate()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	label, ok := file.Attribute("AcqEntName")
	if !ok {
		label = "ncs"
	}
	return mat.NewDense(1, len(volts), volts), []string{label}, float64(rate), nil
}

func readNCS(path string) (*ncs.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := ncs.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

func readTrain(path string) (marker.Train, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	train, err := marker.ReadTrain(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return train, nil
}
