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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("marker: invalid config")

// Config holds the alignment options.
type Config struct {
	// SkipLabels are log labels that never correspond to a hardware marker,
	// such as session start and quit sentinels.
	SkipLabels []string `json:"skip_labels"`
	// Threshold is the largest tolerated difference, in seconds, between the
	// clock offsets measured at the first and the last aligned marker.
	Threshold float64 `json:"threshold"`
}

// DefaultConfig returns the default alignment options.
func DefaultConfig() Config {
	return Config{
		SkipLabels: []string{"START", "QUIT"},
		Threshold:  1.0,
	}
}

// Validate checks the options.
func (c Config) Validate() error {
	if c.Threshold < 0 || math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("%w: threshold %g", ErrInvalidConfig, c.Threshold)
	}
	for i, l := range c.SkipLabels {
		if l == "" {
			return fmt.Errorf("%w: skip label %d is empty", ErrInvalidConfig, i)
		}
	}
	return nil
}

// LoadConfig loads options from a JSON file. Omitted fields keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
