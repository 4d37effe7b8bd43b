/*
 * mm_test.go, part of gopbsa.
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

package mm

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	v3 "github.com/rmera/gochem/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/top"
)

func table() *top.NonbondedTable {
	nb := top.NewNonbondedTable(2)
	nb.Set(0, 0, 1e-3, 1e-6)
	nb.Set(0, 1, 2e-3, 3e-6)
	nb.Set(1, 1, 4e-3, 5e-6)
	return nb
}

func pair(r float64) *v3.Matrix {
	c := v3.Zeros(2)
	c.Set(1, 0, r)
	return c
}

func TestKappa(Te *testing.T) {
	ions := pbsa.DefaultConfig().PB.Ions
	assert.InEpsilon(Te, 1.2728218167158458, Kappa(ions, 298.15, 78.54), 1e-12)
	assert.Equal(Te, 0.0, Kappa(nil, 298.15, 78.54))
}

func TestSinglePair(Te *testing.T) {
	const r = 0.5
	p := Params{
		Charges:    []float64{0.5, -0.4},
		Types:      []int{0, 1},
		Residues:   []int{0, 1},
		NRes:       2,
		NB:         table(),
		Dielectric: 2,
		Cutoff:     math.Inf(1),
	}
	E, err := NewEngine(p).Frame(pair(r), []int{0}, []int{1})
	require.NoError(Te, err)
	wantCou := pbsa.CoulombKJ * 0.5 * -0.4 / (2 * r * 10)
	wantVdW := 3e-6/math.Pow(r, 12) - 2e-3/math.Pow(r, 6)
	assert.InEpsilon(Te, wantCou, E.Coulomb, 1e-9)
	assert.InEpsilon(Te, wantVdW, E.VdW, 1e-9)
	assert.InEpsilon(Te, wantCou/2, E.ResCoulomb[0], 1e-9)
	assert.InEpsilon(Te, wantCou/2, E.ResCoulomb[1], 1e-9)
	assert.InEpsilon(Te, wantVdW+wantCou, E.MM(), 1e-9)

	p.Debye = true
	p.Kappa = 1.27
	D, err := NewEngine(p).Frame(pair(r), []int{0}, []int{1})
	require.NoError(Te, err)
	assert.InEpsilon(Te, math.Exp(-1.27*r), D.Coulomb/E.Coulomb, 1e-12)
	assert.Equal(Te, E.VdW, D.VdW)
}

func TestCutoff(Te *testing.T) {
	p := Params{
		Charges: []float64{1, 1}, Types: []int{0, 0}, Residues: []int{0, 1}, NRes: 2,
		NB: table(), Dielectric: 1, Cutoff: 0.4,
	}
	E, err := NewEngine(p).Frame(pair(0.5), []int{0}, []int{1})
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, E.Coulomb)
	assert.Equal(Te, 0.0, E.VdW)
}

func TestZeroDistance(Te *testing.T) {
	p := Params{
		Charges: []float64{1, 1}, Types: []int{0, 0}, Residues: []int{0, 1}, NRes: 2,
		NB: table(), Dielectric: 1,
	}
	_, err := NewEngine(p).Frame(v3.Zeros(2), []int{0}, []int{1})
	var ge *pbsa.GeometryError
	require.True(Te, errors.As(err, &ge))
	assert.Equal(Te, []int{0, 1}, ge.Atoms)
}

func TestResidueSums(Te *testing.T) {
	r := rand.New(rand.NewSource(3))
	const nrec, nlig = 40, 12
	n := nrec + nlig
	coords := v3.Zeros(n)
	p := Params{NB: table(), Dielectric: 2, Debye: true, Kappa: 1.27}
	var rec, lig []int
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			coords.Set(i, k, r.Float64()*3)
		}
		p.Charges = append(p.Charges, r.Float64()-0.5)
		p.Types = append(p.Types, r.Intn(2))
		if i < nrec {
			rec = append(rec, i)
			p.Residues = append(p.Residues, i/4)
		} else {
			lig = append(lig, i)
			p.Residues = append(p.Residues, nrec/4+(i-nrec)/6)
		}
	}
	p.NRes = nrec/4 + nlig/6
	E, err := NewEngine(p).Frame(coords, rec, lig)
	require.NoError(Te, err)
	var sc, sv float64
	for k := range E.ResCoulomb {
		sc += E.ResCoulomb[k]
		sv += E.ResVdW[k]
	}
	assert.InDelta(Te, E.Coulomb, sc, 1e-9*math.Abs(E.Coulomb)+1e-12)
	assert.InDelta(Te, E.VdW, sv, 1e-9*math.Abs(E.VdW)+1e-12)

	//the pair sum counted once equals the frame total
	var pc float64
	for _, i := range rec {
		for _, j := range lig {
			dx := coords.At(i, 0) - coords.At(j, 0)
			dy := coords.At(i, 1) - coords.At(j, 1)
			dz := coords.At(i, 2) - coords.At(j, 2)
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			pc += pbsa.CoulombKJ / 2 * p.Charges[i] * p.Charges[j] / (10 * d) * math.Exp(-1.27*d)
		}
	}
	assert.InDelta(Te, pc, E.Coulomb, 1e-9*math.Abs(pc)+1e-12)
}
