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
	"fmt"

	"github.com/OpenPSG/ephys"
)

// Layout is a block of fields repeated once per channel and packed by field
// kind: every channel's first field, then every channel's second field, and
// so on.
type Layout []Field

// Stride returns the number of bytes one channel occupies across all field kinds.
func (l Layout) Stride() int { return Width(l) }

// Size returns the size of the block for n channels.
func (l Layout) Size(n int) int { return l.Stride() * n }

// Offset returns the byte offset of field kind i for the given channel in a
// block of n channels.
func (l Layout) Offset(i, channel, n int) int {
	base := 0
	for _, f := range l[:i] {
		base += f.Width * n
	}
	return base + channel*l[i].Width
}

// Index returns the position of the named field kind, or -1.
func (l Layout) Index(name string) int {
	for i, f := range l {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// DecodeInterleaved decodes n channel records from an interleaved block.
func DecodeInterleaved(buf []byte, l Layout, n int) ([]Record, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative channel count %d", ephys.ErrHeaderDecode, n)
	}
	if need := l.Size(n); len(buf) < need {
		return nil, fmt.Errorf("%w: block holds %d bytes, %d channels need %d", ephys.ErrHeaderDecode, len(buf), n, need)
	}

	recs := make([]Record, n)
	for c := range recs {
		recs[c] = make(Record, len(l))
	}

	for i, f := range l {
		for c := 0; c < n; c++ {
			off := l.Offset(i, c, n)
			v, err := decodeField(buf[off:off+f.Width], f)
			if err != nil {
				return nil, &DecodeError{Field: f.Name, Channel: c, Offset: off, Text: v.Text, Err: err}
			}
			recs[c][f.Name] = v
		}
	}

	return recs, nil
}

// EncodeInterleaved encodes one record per channel into an interleaved block.
func EncodeInterleaved(l Layout, recs []Record) ([]byte, error) {
	n := len(recs)
	buf := make([]byte, l.Size(n))
	for i, f := range l {
		for c, rec := range recs {
			s, err := formatField(f, rec[f.Name])
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", c, err)
			}
			copy(buf[l.Offset(i, c, n):], s)
		}
	}
	return buf, nil
}
