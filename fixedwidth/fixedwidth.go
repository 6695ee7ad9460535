// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package fixedwidth decodes and encodes space-padded ASCII header fields of a
// fixed byte width, as used by EDF and similar recorder formats.
package fixedwidth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenPSG/ephys"
)

// Kind is the declared type of a field.
type Kind int

const (
	String Kind = iota // Trimmed text
	Int                // Base 10 integer
	Float              // Decimal number
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field describes one fixed-width field.
type Field struct {
	Name  string // Key of the field in a Record
	Width int    // Width in bytes
	Kind  Kind   // Declared type
}

// Value is a decoded (or to be encoded) field value. Text always holds the
// trimmed field text after decoding; Int and Float are set for numeric kinds.
type Value struct {
	Text  string
	Int   int
	Float float64
}

// TextValue returns a Value for a String field.
func TextValue(s string) Value { return Value{Text: s} }

// IntValue returns a Value for an Int field.
func IntValue(i int) Value { return Value{Text: strconv.Itoa(i), Int: i, Float: float64(i)} }

// FloatValue returns a Value for a Float field.
func FloatValue(f float64) Value { return Value{Float: f} }

// Record maps field names to values.
type Record map[string]Value

// Text returns the text of the named field.
func (r Record) Text(name string) string { return r[name].Text }

// Int returns the integer value of the named field.
func (r Record) Int(name string) int { return r[name].Int }

// Float returns the float value of the named field.
func (r Record) Float(name string) float64 { return r[name].Float }

// Width returns the total width of fields.
func Width(fields []Field) int {
	var n int
	for _, f := range fields {
		n += f.Width
	}
	return n
}

// Decode decodes contiguous fields from the start of buf.
func Decode(buf []byte, fields []Field) (Record, error) {
	if need := Width(fields); len(buf) < need {
		return nil, fmt.Errorf("%w: buffer holds %d bytes, fields need %d", ephys.ErrHeaderDecode, len(buf), need)
	}

	rec := make(Record, len(fields))
	offset := 0
	for _, f := range fields {
		v, err := decodeField(buf[offset:offset+f.Width], f)
		if err != nil {
			return nil, &DecodeError{Field: f.Name, Channel: -1, Offset: offset, Text: v.Text, Err: err}
		}
		rec[f.Name] = v
		offset += f.Width
	}

	return rec, nil
}

// Encode encodes rec as contiguous, left-justified, space-padded fields.
func Encode(fields []Field, rec Record) ([]byte, error) {
	buf := make([]byte, 0, Width(fields))
	for _, f := range fields {
		s, err := formatField(f, rec[f.Name])
		if err != nil {
			return nil, err
		}
		buf = append(buf, s...)
	}
	return buf, nil
}

func decodeField(b []byte, f Field) (Value, error) {
	text := strings.Trim(string(b), " \x00")
	v := Value{Text: text}

	switch f.Kind {
	case Int:
		if text == "" {
			return v, errEmpty
		}
		i, err := strconv.Atoi(text)
		if err != nil {
			return v, err
		}
		v.Int, v.Float = i, float64(i)
	case Float:
		if text == "" {
			return v, errEmpty
		}
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return v, err
		}
		v.Float = x
	}

	return v, nil
}

func formatField(f Field, v Value) (string, error) {
	var s string
	switch f.Kind {
	case Int:
		s = strconv.Itoa(v.Int)
	case Float:
		s = formatFloat(v.Float, f.Width)
	default:
		s = v.Text
	}

	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return "", fmt.Errorf("%w: field %q byte %d", ErrNotPrintable, f.Name, i)
		}
	}
	if len(s) > f.Width {
		return "", fmt.Errorf("%w: field %q value %q exceeds %d bytes", ErrFieldOverflow, f.Name, s, f.Width)
	}

	return s + strings.Repeat(" ", f.Width-len(s)), nil
}

// formatFloat uses the shortest representation, dropping fractional digits
// until the value fits in width.
func formatFloat(x float64, width int) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	for prec := width; len(s) > width && prec >= 0; prec-- {
		s = strconv.FormatFloat(x, 'f', prec, 64)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
	}
	return s
}
