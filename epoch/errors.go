// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package epoch

import (
	"errors"
	"fmt"

	"github.com/OpenPSG/ephys"
)

// ErrNoMarkers is returned when there is nothing to extract.
var ErrNoMarkers = errors.New("epoch: no markers")

// BoundsError reports an epoch that does not fit inside the data.
type BoundsError struct {
	Marker int     // Index of the offending marker
	Time   float64 // Marker time in seconds
	Start  int     // First sample of the epoch
	Len    int     // Epoch length in samples
	Total  int     // Number of samples available
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: marker %d at %gs needs samples [%d, %d) of %d",
		ephys.ErrEpochOutOfBounds, e.Marker, e.Time, e.Start, e.Start+e.Len, e.Total)
}

func (e *BoundsError) Unwrap() error {
	return ephys.ErrEpochOutOfBounds
}
