// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package marker reconciles a behavioral event log with the marker train
// recorded by acquisition hardware and groups the hardware times by condition.
package marker

// Event is one entry of a behavioral log.
type Event struct {
	Time  float64 // Seconds on the log clock
	Label string  // Condition label
}

// Table is an ordered behavioral log.
type Table []Event

// Train is an ordered sequence of hardware marker times in seconds.
type Train []float64

// Times returns the time of every event.
func (t Table) Times() []float64 {
	out := make([]float64, len(t))
	for i, e := range t {
		out[i] = e.Time
	}
	return out
}

// Filter returns the events whose labels are not skipped by cfg. Events
// with an empty label are always dropped.
func (t Table) Filter(cfg Config) Table {
	skip := make(map[string]struct{}, len(cfg.SkipLabels))
	for _, l := range cfg.SkipLabels {
		skip[l] = struct{}{}
	}

	out := make(Table, 0, len(t))
	for _, e := range t {
		if e.Label == "" {
			continue
		}
		if _, ok := skip[e.Label]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Canonical maps condition labels to aligned hardware times. Labels keep the
// order in which they first appear in the log.
type Canonical struct {
	labels []string
	times  map[string][]float64
	table  Table
}

func newCanonical(table Table) *Canonical {
	c := &Canonical{times: make(map[string][]float64), table: table}
	for _, e := range table {
		if _, ok := c.times[e.Label]; !ok {
			c.labels = append(c.labels, e.Label)
		}
		c.times[e.Label] = append(c.times[e.Label], e.Time)
	}
	return c
}

// Labels returns the condition labels in first-seen order.
func (c *Canonical) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Times returns the hardware times of a condition, in log order.
func (c *Canonical) Times(label string) []float64 {
	return append([]float64(nil), c.times[label]...)
}

// Len returns the number of aligned events.
func (c *Canonical) Len() int {
	return len(c.table)
}

// Table returns the aligned log: the events covered by the hardware train,
// with their times replaced by hardware times.
func (c *Canonical) Table() Table {
	return append(Table(nil), c.table...)
}
