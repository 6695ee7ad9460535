// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fixedwidth

import (
	"errors"
	"fmt"

	"github.com/OpenPSG/ephys"
)

var (
	// ErrFieldOverflow is returned when an encoded value is wider than its field.
	ErrFieldOverflow = errors.New("fixedwidth: value overflows field")
	// ErrNotPrintable is returned when an encoded value holds bytes outside printable ASCII.
	ErrNotPrintable = errors.New("fixedwidth: value outside the printable range")

	errEmpty = errors.New("empty numeric field")
)

// DecodeError describes a field that could not be decoded.
type DecodeError struct {
	Field   string // Field name
	Channel int    // Channel index within an interleaved block, -1 otherwise
	Offset  int    // Byte offset of the field within the decoded buffer
	Text    string // Trimmed field text
	Err     error  // Underlying conversion error
}

func (e *DecodeError) Error() string {
	if e.Channel >= 0 {
		return fmt.Sprintf("%v: field %q channel %d at byte %d (%q): %v", ephys.ErrHeaderDecode, e.Field, e.Channel, e.Offset, e.Text, e.Err)
	}
	return fmt.Sprintf("%v: field %q at byte %d (%q): %v", ephys.ErrHeaderDecode, e.Field, e.Offset, e.Text, e.Err)
}

// Unwrap returns ephys.ErrHeaderDecode and the underlying conversion error.
func (e *DecodeError) Unwrap() []error {
	return []error{ephys.ErrHeaderDecode, e.Err}
}
