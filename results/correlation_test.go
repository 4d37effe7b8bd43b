/*
 * correlation_test.go, part of gopbsa.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoCorr(Te *testing.T) {
	rho := AutoCorr([]float64{1, -1, 1, -1})
	require.Len(Te, rho, 4)
	for i, want := range []float64{1, -0.75, 0.5, -0.25} {
		assert.InDelta(Te, want, rho[i], 1e-9)
	}
	assert.Nil(Te, AutoCorr([]float64{3, 3, 3}))
	assert.Nil(Te, AutoCorr(nil))
}

func TestInefficiency(Te *testing.T) {
	assert.Equal(Te, 1.0, Inefficiency([]float64{1, -1, 1, -1}))
	assert.Equal(Te, 1.0, Inefficiency([]float64{5, 5, 5}))
	//rho(1)=0.625, rho(2)=0.25, rho(3)<0
	x := []float64{1, 1, 1, 1, -1, -1, -1, -1}
	assert.InDelta(Te, 1+2*0.625*7/8+2*0.25*6/8, Inefficiency(x), 1e-9)

	assert.Equal(Te, 0.0, stdErr(2, 1, 1))
	assert.Equal(Te, 1.0, stdErr(2, 4, 1))
	assert.InDelta(Te, 2.0, stdErr(2, 4, 4), 1e-12)
}
