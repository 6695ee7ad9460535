// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spike

import (
	"gonum.org/v1/gonum/floats"
)

// ECDF holds the step coordinates of an empirical distribution function.
type ECDF struct {
	// X and Y trace the steps: every sorted value appears twice in X, and
	// Y rises from the fraction below it to the fraction at or below it.
	X []float64
	Y []float64
	// Order is the permutation that sorts the input.
	Order []int
}

// EmpiricalCDF returns the empirical distribution function of x. Ties keep
// their input order.
func EmpiricalCDF(x []float64) ECDF {
	n := len(x)
	sorted := append([]float64(nil), x...)
	order := make([]int, n)
	floats.ArgsortStable(sorted, order)

	e := ECDF{X: make([]float64, 2*n), Y: make([]float64, 2*n), Order: order}
	for i, v := range sorted {
		e.X[2*i] = v
		e.X[2*i+1] = v
		e.Y[2*i] = float64(i) / float64(n)
		e.Y[2*i+1] = float64(i+1) / float64(n)
	}
	return e
}
