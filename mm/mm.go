/*
 * mm.go, part of gopbsa.
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

// Package mm computes the gas-phase (molecular mechanics) interaction energy
// between receptor and ligand, decomposed per residue.
package mm

import (
	"math"

	v3 "github.com/rmera/gochem/v3"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/top"
)

// Kappa returns the inverse Debye length (1/nm) of a solution with the given
// ions at temperature T (K) and relative permittivity sdie. It returns 0 if
// there are no ions.
func Kappa(ions []pbsa.Ion, T, sdie float64) float64 {
	var I float64
	for _, ion := range ions {
		I += ion.Conc * ion.Charge * ion.Charge
	}
	if I == 0 {
		return 0
	}
	return 1e-9 / math.Sqrt(pbsa.Eps0*pbsa.Kb*T*sdie/(I*pbsa.Qe*pbsa.Qe*pbsa.NA*1e3))
}

// Params are the per-atom data and settings for the energy calculation.
// Charges, Types and Residues are indexed like the coordinate rows.
type Params struct {
	Charges    []float64
	Types      []int
	Residues   []int //residue of each atom, 0..NRes-1
	NRes       int
	NB         *top.NonbondedTable
	Dielectric float64
	Debye      bool
	Kappa      float64 //1/nm
	Cutoff     float64 //nm, +Inf for none
}

// Energy is the MM interaction energy of one frame, in kJ/mol.
type Energy struct {
	Coulomb    float64
	VdW        float64
	ResCoulomb []float64
	ResVdW     []float64
}

// MM returns Coulomb plus van der Waals.
func (E *Energy) MM() float64 { return E.Coulomb + E.VdW }

// Engine computes frame energies for a fixed set of parameters.
type Engine struct {
	p     Params
	ntype int
	c6    []float64
	c12   []float64
}

// NewEngine returns an engine for p. The LJ table is flattened once.
func NewEngine(p Params) *Engine {
	E := &Engine{p: p, ntype: p.NB.NTypes()}
	if E.p.Cutoff <= 0 {
		E.p.Cutoff = math.Inf(1)
	}
	E.c6 = make([]float64, E.ntype*E.ntype)
	E.c12 = make([]float64, E.ntype*E.ntype)
	for i := 0; i < E.ntype; i++ {
		for j := 0; j < E.ntype; j++ {
			E.c6[i*E.ntype+j], E.c12[i*E.ntype+j] = p.NB.At(i, j)
		}
	}
	return E
}

// Frame computes the energy between every receptor atom in rec and every
// ligand atom in lig, with coords in nm. Each pair energy is added to the
// residues of both atoms and every residue total is then halved, so the
// residue values add up to the frame total. Two atoms at the same position
// are a GeometryError.
func (E *Engine) Frame(coords *v3.Matrix, rec, lig []int) (*Energy, error) {
	p := &E.p
	n := coords.NVecs()
	for _, idx := range [][]int{rec, lig} {
		for _, i := range idx {
			if i < 0 || i >= n || i >= len(p.Charges) {
				return nil, &pbsa.GeometryError{Atoms: []int{i}, Msg: "atom index out of range for the MM energy"}
			}
		}
	}
	ret := &Energy{ResCoulomb: make([]float64, p.NRes), ResVdW: make([]float64, p.NRes)}
	for _, i := range rec {
		xi, yi, zi := coords.At(i, 0), coords.At(i, 1), coords.At(i, 2)
		qi, ri := p.Charges[i], p.Residues[i]
		ti := p.Types[i] * E.ntype
		for _, j := range lig {
			dx, dy, dz := coords.At(j, 0)-xi, coords.At(j, 1)-yi, coords.At(j, 2)-zi
			r := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if r == 0 {
				return nil, &pbsa.GeometryError{Atoms: []int{i, j}, Msg: "atoms at zero distance"}
			}
			if r > p.Cutoff {
				continue
			}
			ecou := qi * p.Charges[j] / (r * pbsa.Nm2A)
			if p.Debye {
				ecou *= math.Exp(-p.Kappa * r)
			}
			r6 := r * r * r
			r6 *= r6
			k := ti + p.Types[j]
			evdw := E.c12[k]/(r6*r6) - E.c6[k]/r6
			rj := p.Residues[j]
			ret.ResCoulomb[ri] += ecou
			ret.ResCoulomb[rj] += ecou
			ret.ResVdW[ri] += evdw
			ret.ResVdW[rj] += evdw
		}
	}
	f := pbsa.CoulombKJ / (2 * p.Dielectric)
	for k := range ret.ResCoulomb {
		ret.ResCoulomb[k] *= f
		ret.ResVdW[k] /= 2
		ret.Coulomb += ret.ResCoulomb[k]
		ret.VdW += ret.ResVdW[k]
	}
	return ret, nil
}
