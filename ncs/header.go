// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ncs

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/OpenPSG/ephys"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decodeHeader strips NUL padding and decodes the Latin-1 header text.
func decodeHeader(b []byte) (string, error) {
	b = bytes.ReplaceAll(b, []byte{0}, nil)

	s, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("error decoding header text: %w", err)
	}
	return string(s), nil
}

// ExtractAttribute finds the line "-key value" in a header and returns value.
// It reports false when the key is absent or appears more than once.
func ExtractAttribute(header, key string) (string, bool) {
	re := regexp.MustCompile(`(?m)^[ \t]*-` + regexp.QuoteMeta(key) + `[ \t]+(.*?)[ \t\r]*$`)

	matches := re.FindAllStringSubmatch(header, -1)
	if len(matches) != 1 {
		return "", false
	}
	return matches[0][1], true
}

func parseBitVolts(v string) (float64, error) {
	bitVolts, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: ADBitVolts %q: %w", ephys.ErrCalibration, v, err)
	}
	if bitVolts <= 0 || math.IsInf(bitVolts, 0) {
		return 0, fmt.Errorf("%w: ADBitVolts %q", ephys.ErrCalibration, v)
	}
	return bitVolts, nil
}
