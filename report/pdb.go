/*
 * pdb.go, part of gopbsa.
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

package report

import (
	"io"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/qrv"
	"github.com/rmera/gopbsa/results"
	"github.com/rmera/gopbsa/top"
)

// Molecule returns the receptor and ligand atoms of T as a goChem topology.
// The receptor goes in chain A and the ligand in chain B.
func Molecule(T *qrv.Table) *chem.Topology {
	ats := make([]*chem.Atom, len(T.Atoms))
	for i, a := range T.Atoms {
		chain := "A"
		if a.Tag == qrv.Ligand {
			chain = "B"
		}
		ats[i] = &chem.Atom{
			Name:    a.Name,
			ID:      a.Index + 1,
			MolName: a.ResName,
			MolID:   a.ResNr,
			Chain:   chain,
			Charge:  a.Charge,
			Vdw:     a.Radius,
			Symbol:  top.Element(a.Name, false),
			Het:     a.Tag == qrv.Ligand,
		}
	}
	return chem.NewTopology(0, 1, ats)
}

// BFactors returns, for every atom of T, minus the ΔH of its residue in
// kcal/mol, so favorable residues get positive values.
func BFactors(T *qrv.Table, S *results.Summary) []float64 {
	b := make([]float64, len(T.Atoms))
	for i, a := range T.Atoms {
		b[i] = -S.Residues[a.Residue].H * pbsa.KJ2Kcal
	}
	return b
}

// WritePDB writes the atoms of T with the coordinates (nm) of coords, whose
// rows must match the table rows, and the residue contributions of S as
// B-factors.
func WritePDB(out io.Writer, coords *v3.Matrix, T *qrv.Table, S *results.Summary) error {
	if r := coords.NVecs(); r != len(T.Atoms) {
		return pbsa.NewError("coordinates and parameter table have different atom counts", "", "WritePDB")
	}
	if len(S.Residues) != len(T.Residues) {
		return pbsa.NewError("summary and parameter table have different residue counts", "", "WritePDB")
	}
	A := v3.Zeros(coords.NVecs())
	for i := 0; i < A.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			A.Set(i, j, coords.At(i, j)*pbsa.Nm2A)
		}
	}
	io.WriteString(out, "REMARK   B-factors are the residue contributions to -ΔH, in kcal/mol\n")
	if err := chem.PDBWrite(out, A, Molecule(T), BFactors(T, S)); err != nil {
		return pbsa.NewError(err.Error(), "", "WritePDB")
	}
	return nil
}
