/*
 * topology.go, part of gopbsa.
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

package top

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NonbondedTable holds the Lennard-Jones C6 and C12 coefficients
// (kJ/mol nm^6 and kJ/mol nm^12) for every pair of van der Waals types.
type NonbondedTable struct {
	C6  *mat.SymDense
	C12 *mat.SymDense
}

// NewNonbondedTable returns a table for n types, with all coefficients zero.
func NewNonbondedTable(n int) *NonbondedTable {
	return &NonbondedTable{C6: mat.NewSymDense(n, nil), C12: mat.NewSymDense(n, nil)}
}

// NTypes returns the number of van der Waals types in the table.
func (N *NonbondedTable) NTypes() int {
	if N == nil || N.C6 == nil {
		return 0
	}
	return N.C6.SymmetricDim()
}

// At returns C6 and C12 for the pair of types i, j.
func (N *NonbondedTable) At(i, j int) (c6, c12 float64) {
	return N.C6.At(i, j), N.C12.At(i, j)
}

// Set sets C6 and C12 for the pair i, j (and j, i).
func (N *NonbondedTable) Set(i, j int, c6, c12 float64) {
	N.C6.SetSym(i, j, c6)
	N.C12.SetSym(i, j, c12)
}

// TypeParams holds the parameters derived from the self term of a van der
// Waals type. Sigma and Radius are in Å, Epsilon in kJ/mol.
type TypeParams struct {
	Sigma   float64
	Epsilon float64
	Radius  float64
}

// c6c12ToSigmaEpsilon returns sigma (Å) and epsilon for the given C6, C12
// (GROMACS units). It returns zeros if either coefficient is zero.
func c6c12ToSigmaEpsilon(c6, c12 float64) (sigma, epsilon float64) {
	if c6 == 0 || c12 == 0 {
		return 0, 0
	}
	return 10 * math.Pow(c12/c6, 1.0/6.0), c6 * c6 / (4 * c12)
}

// Derive returns the parameters of every type from the self terms in the
// table. Types with a zero self term get sigma=epsilon=0 and radius defRadius.
func (N *NonbondedTable) Derive(defRadius float64) []TypeParams {
	ret := make([]TypeParams, N.NTypes())
	for i := range ret {
		s, e := c6c12ToSigmaEpsilon(N.At(i, i))
		ret[i] = TypeParams{Sigma: s, Epsilon: e, Radius: defRadius}
		if s != 0 {
			ret[i].Radius = 0.5 * s
		}
	}
	return ret
}

// Atom is one atom in a molecule type.
type Atom struct {
	Name    string
	Type    int     //van der Waals type
	Charge  float64 //e
	Residue int     //index in the residue list of the molecule type
	Heavy   string  //for hydrogens, the name of the bonded heavy atom, if known
	Sigma   float64 //Å
	Epsilon float64 //kJ/mol
	Radius  float64 //Å
}

// IsHydrogen returns true if the atom name marks a hydrogen.
func (A *Atom) IsHydrogen() bool {
	return len(A.Name) > 0 && (A.Name[0] == 'H' || A.Name[0] == 'h')
}

// Residue is a residue of a molecule type, with the number assigned in the
// simulation input.
type Residue struct {
	Nr   int
	Name string
}

// MolType is a molecule type: its atoms and residues in order.
type MolType struct {
	Name     string
	Atoms    []Atom
	Residues []Residue
}

// MolBlock is a run of Count consecutive copies of a molecule type.
type MolBlock struct {
	Type  int
	Count int
}

// RunParams holds the integration parameters needed to assign times to
// trajectory frames. Zero values mean the dump did not contain them.
type RunParams struct {
	Dt      float64 //ps
	NSteps  int
	NstXout int //steps between written frames
}

// FrameStep returns the time between trajectory frames in ps, or 0 if
// unknown.
func (R RunParams) FrameStep() float64 {
	return R.Dt * float64(R.NstXout)
}

// Topology is everything gopbsa needs from a topology dump.
type Topology struct {
	NB       *NonbondedTable
	Types    []TypeParams
	MolTypes []*MolType
	Blocks   []MolBlock
	Params   RunParams
}

// SysAtom is an atom of the whole replicated system.
type SysAtom struct {
	Atom
	Index    int    //0-based, in system order
	Mol      string //molecule type name
	Copy     int    //0-based copy of the molecule type within its block
	Local    int    //0-based index within the molecule type
	GlobRes  int    //0-based, contiguous over the whole system
	ResNr    int    //as assigned in the simulation input
	ResName  string
	ResAtoms int //atoms in the residue
}

// NAtoms returns the number of atoms in the replicated system.
func (T *Topology) NAtoms() int {
	n := 0
	for _, b := range T.Blocks {
		n += b.Count * len(T.MolTypes[b.Type].Atoms)
	}
	return n
}

// System expands the molecule types into the system-ordered list of atoms,
// repeating every type's atoms Count times per block and numbering the
// residues sequentially from 0.
func (T *Topology) System() []SysAtom {
	ret := make([]SysAtom, 0, T.NAtoms())
	resbase := 0
	for _, b := range T.Blocks {
		mt := T.MolTypes[b.Type]
		resatoms := make([]int, len(mt.Residues))
		for _, a := range mt.Atoms {
			resatoms[a.Residue]++
		}
		for c := 0; c < b.Count; c++ {
			for l, a := range mt.Atoms {
				r := mt.Residues[a.Residue]
				ret = append(ret, SysAtom{
					Atom:     a,
					Index:    len(ret),
					Mol:      mt.Name,
					Copy:     c,
					Local:    l,
					GlobRes:  resbase + a.Residue,
					ResNr:    r.Nr,
					ResName:  r.Name,
					ResAtoms: resatoms[a.Residue],
				})
			}
			resbase += len(mt.Residues)
		}
	}
	return ret
}
