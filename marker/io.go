// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package marker

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenPSG/ephys/edf"
)

// ReadTable reads a behavioral log from CSV. The header row must name a
// "time" column and a "marker" (or "label") column; other columns are ignored.
func ReadTable(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	timeCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time":
			timeCol = i
		case "marker", "label":
			labelCol = i
		}
	}
	if timeCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("header %q must name time and marker columns", header)
	}

	var table Table
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) <= max(timeCol, labelCol) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(timeCol, labelCol)+1, len(record))
		}

		t, err := strconv.ParseFloat(strings.TrimSpace(record[timeCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid time: %w", line, err)
		}
		table = append(table, Event{Time: t, Label: strings.TrimSpace(record[labelCol])})
	}

	return table, nil
}

// ReadTrain reads hardware marker times, one per line (the first CSV field of
// each line). A non-numeric first line is treated as a header.
func ReadTrain(r io.Reader) (Train, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var train Train
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := strings.TrimSpace(record[0])
		t, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid time: %w", line, err)
		}
		train = append(train, t)
	}

	return train, nil
}

// TableFromAnnotations builds a behavioral log from EDF+ annotations, using
// onsets as times and annotation texts as labels.
func TableFromAnnotations(anns []edf.Annotation) Table {
	table := make(Table, len(anns))
	for i, a := range anns {
		table[i] = Event{Time: a.Onset, Label: a.Text}
	}
	return table
}
