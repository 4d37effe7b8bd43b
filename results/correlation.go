/*
 * correlation.go, part of gopbsa.
 *
 * Copyright 2024 Raul Mera  <rmeraa{at}academicos(dot)uta(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package results

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// AutoCorr returns the normalized autocorrelation function of x for lags
// 0 to len(x)-1, so the first element is 1. It is computed with an FFT over
// x padded to twice its length. A constant series returns nil.
func AutoCorr(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	mean := stat.Mean(x, nil)
	pad := make([]complex128, 2*n)
	for i, v := range x {
		pad[i] = complex(v-mean, 0)
	}
	f := fourier.NewCmplxFFT(len(pad))
	f.Coefficients(pad, pad)
	for i, v := range pad {
		pad[i] = v * cmplx.Conj(v)
	}
	f.Sequence(pad, pad)
	c0 := real(pad[0])
	if c0 <= 0 {
		return nil
	}
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = real(pad[i]) / c0
	}
	return ret
}

// Inefficiency returns the statistical inefficiency of the series x, the
// number of consecutive samples that make one independent sample:
// 1 + 2 sum (1-t/N) rho(t), the sum running until the autocorrelation
// rho first drops to zero or below. It is never less than 1.
func Inefficiency(x []float64) float64 {
	rho := AutoCorr(x)
	n := float64(len(x))
	g := 1.0
	for t := 1; t < len(rho); t++ {
		if rho[t] <= 0 {
			break
		}
		g += 2 * rho[t] * (1 - float64(t)/n)
	}
	return math.Max(g, 1)
}

// stdErr returns the standard error of the mean of a series with standard
// deviation sd, n samples and statistical inefficiency g.
func stdErr(sd float64, n int, g float64) float64 {
	if n < 2 {
		return 0
	}
	return sd * math.Sqrt(g/float64(n))
}
