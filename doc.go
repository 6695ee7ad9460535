// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package ephys decodes extracellular electrophysiology recordings and cuts
// them into trial-aligned epochs.
//
// The subpackages are:
//
//   - fixedwidth: fixed-width ASCII header fields, including blocks interleaved by field kind.
//   - edf: EDF/EDF+ headers, multiplexed data records and annotations.
//   - ncs: Neuralynx continuous-sampled channel (.ncs) files.
//   - marker: reconciliation of a behavioral log with a hardware marker train.
//   - epoch: fixed-length epochs around marker times.
//   - spike: peri-stimulus histograms, cross-correlograms and kernel rate estimates.
//   - export: WAV export of a decoded channel.
//
// Header, data, alignment and window failures wrap the sentinels declared
// here, so callers can classify them with errors.Is.
package ephys
