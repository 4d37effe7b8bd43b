/*
 * mesh_test.go, part of gopbsa.
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

package mesh

import (
	"errors"
	"math/rand"
	"testing"

	v3 "github.com/rmera/gochem/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbsa "github.com/rmera/gopbsa"
)

func cfg(p pbsa.MeshPolicy) pbsa.MeshConfig {
	c := pbsa.DefaultConfig().Mesh
	c.Policy = p
	return c
}

func randomSystem(r *rand.Rand, n int, scale float64) (*v3.Matrix, []float64, []int) {
	coords := v3.Zeros(n)
	radii := make([]float64, n)
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			coords.Set(i, k, (r.Float64()-0.5)*scale)
		}
		radii[i] = 1 + r.Float64()
		idx[i] = i
	}
	return coords, radii, idx
}

func TestGridInvariants(Te *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, pol := range []pbsa.MeshPolicy{pbsa.MeshPadded, pbsa.MeshScaled} {
		P := NewPlanner(cfg(pol))
		for trial := 0; trial < 200; trial++ {
			n := 1 + r.Intn(50)
			coords, radii, idx := randomSystem(r, n, r.Float64()*20)
			G, err := P.Plan(coords, radii, idx)
			require.NoError(Te, err)
			for k := 0; k < 3; k++ {
				assert.LessOrEqual(Te, G.Fine[k], G.Coarse[k], "policy %s", pol)
				assert.Equal(Te, 1, G.Dime[k]%2, "policy %s: even point count %d", pol, G.Dime[k])
				assert.GreaterOrEqual(Te, G.Dime[k], P.MinPoints())
				assert.Less(Te, G.Min[k], G.Max[k])
			}
		}
	}
}

func TestDegenerateExtent(Te *testing.T) {
	coords := v3.Zeros(1)
	coords.Set(0, 0, 1.0)
	coords.Set(0, 1, 2.0)
	coords.Set(0, 2, 3.0)
	P := NewPlanner(cfg(pbsa.MeshScaled))
	G, err := P.Plan(coords, []float64{0}, []int{0})
	require.NoError(Te, err)
	assert.Equal(Te, [3]float64{10, 20, 30}, G.Center)
	for k := 0; k < 3; k++ {
		assert.InDelta(Te, 0.1*3.0, G.Coarse[k], 1e-12)
		assert.InDelta(Te, 0.3, G.Fine[k], 1e-12)
		assert.Equal(Te, 33, G.Dime[k])
	}
}

func TestPolicyValues(Te *testing.T) {
	//one atom of radius 5 Å: extent 10 Å on every axis
	coords := v3.Zeros(1)
	radii := []float64{5}
	A, err := NewPlanner(cfg(pbsa.MeshPadded)).Plan(coords, radii, []int{0})
	require.NoError(Te, err)
	//fine = 10 + 2*10, coarse = 1.7*fine, n = 32*(round(30/16)+2)+1
	assert.InDelta(Te, 30.0, A.Fine[0], 1e-12)
	assert.InDelta(Te, 51.0, A.Coarse[0], 1e-12)
	assert.Equal(Te, 32*4+1, A.Dime[0])

	B, err := NewPlanner(cfg(pbsa.MeshScaled)).Plan(coords, radii, []int{0})
	require.NoError(Te, err)
	//coarse = 3*10, fine = min(30, 20), n = max(floor(20/0.5), 33) = 40 -> 41
	assert.InDelta(Te, 30.0, B.Coarse[0], 1e-12)
	assert.InDelta(Te, 20.0, B.Fine[0], 1e-12)
	assert.Equal(Te, 41, B.Dime[0])
	assert.InDelta(Te, 200.0*41*41*41/1024/1024, B.MemoryMB(), 1e-9)
}

func TestDeterminism(Te *testing.T) {
	r := rand.New(rand.NewSource(7))
	coords, radii, idx := randomSystem(r, 300, 40)
	P := NewPlanner(cfg(pbsa.MeshPadded))
	G1, err := P.Plan(coords, radii, idx)
	require.NoError(Te, err)
	G2, err := P.Plan(coords, radii, idx)
	require.NoError(Te, err)
	assert.Equal(Te, G1, G2)
}

func TestEmptySelection(Te *testing.T) {
	_, err := NewPlanner(cfg(pbsa.MeshScaled)).Plan(v3.Zeros(1), []float64{1}, nil)
	var ge *pbsa.GeometryError
	assert.True(Te, errors.As(err, &ge))
	_, err = NewPlanner(cfg(pbsa.MeshScaled)).Plan(v3.Zeros(1), []float64{1}, []int{3})
	assert.True(Te, errors.As(err, &ge))
}
