/*
 * input.go, part of gopbsa.
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

package apbs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/rmera/gochem/v3"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/mesh"
	"github.com/rmera/gopbsa/qrv"
)

// The three systems of every frame, in the order they are read by the solver.
const (
	Com = iota
	Rec
	Lig
)

// SystemNames are the names used for files and calculations of each system.
var SystemNames = [3]string{"com", "rec", "lig"}

// WritePQR writes the atoms rows of T, with coordinates (nm) taken from the
// same rows of coords, as a PQR file (Å).
func WritePQR(out io.Writer, coords *v3.Matrix, T *qrv.Table, rows []int) error {
	w := bufio.NewWriter(out)
	for k, i := range rows {
		a := T.Atoms[i]
		res := a.ResName
		if len(res) > 4 {
			res = res[:4]
		}
		name := a.Name
		if len(name) > 4 {
			name = name[:4]
		}
		fmt.Fprintf(w, "ATOM  %5d %-4s %-4s X %4d    %8.3f %8.3f %8.3f %12.6f %12.6f\n",
			(k+1)%100000, name, res, (a.Residue+1)%10000,
			coords.At(i, 0)*pbsa.Nm2A, coords.At(i, 1)*pbsa.Nm2A, coords.At(i, 2)*pbsa.Nm2A,
			a.Charge, a.Radius)
	}
	w.WriteString("END\n")
	return w.Flush()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func vec3(v [3]float64) string {
	return ftoa(v[0]) + " " + ftoa(v[1]) + " " + ftoa(v[2])
}

// pbeBlock returns the physics lines of an ELEC calculation.
func pbeBlock(pb *pbsa.PBConfig, sdie float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  temp %s\n", ftoa(pb.Temperature))
	fmt.Fprintf(&b, "  pdie %s\n", ftoa(pb.PDie))
	fmt.Fprintf(&b, "  sdie %s\n", ftoa(sdie))
	fmt.Fprintf(&b, "  %s\n", pb.Equation)
	fmt.Fprintf(&b, "  bcfl %s\n", pb.Bcfl)
	fmt.Fprintf(&b, "  srfm %s\n", pb.Srfm)
	fmt.Fprintf(&b, "  chgm %s\n", pb.Chgm)
	fmt.Fprintf(&b, "  swin %s\n", ftoa(pb.SWin))
	fmt.Fprintf(&b, "  srad %s\n", ftoa(pb.SRad))
	fmt.Fprintf(&b, "  sdens %s\n", ftoa(pb.SDens))
	for _, ion := range pb.Ions {
		fmt.Fprintf(&b, "  ion charge %s conc %s radius %s\n", ftoa(ion.Charge), ftoa(ion.Conc), ftoa(ion.Radius))
	}
	b.WriteString("  calcforce no\n  calcenergy comps\n")
	return b.String()
}

// pbaBlock returns the physics lines of an APOLAR calculation. gamma is 1 so
// the per-atom values are areas, scaled later with the configured tension.
func pbaBlock(sa *pbsa.SAConfig, temp float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  temp %s\n", ftoa(temp))
	fmt.Fprintf(&b, "  srfm %s\n", sa.Srfm)
	fmt.Fprintf(&b, "  swin %s\n", ftoa(sa.SWin))
	fmt.Fprintf(&b, "  srad %s\n", ftoa(sa.SRad))
	b.WriteString("  gamma 1\n  press 0\n  bconc 0\n")
	fmt.Fprintf(&b, "  sdens %s\n", ftoa(sa.SDens))
	fmt.Fprintf(&b, "  dpos %s\n", ftoa(sa.DPos))
	fmt.Fprintf(&b, "  grid %s %s %s\n", ftoa(sa.Grid), ftoa(sa.Grid), ftoa(sa.Grid))
	b.WriteString("  calcforce no\n  calcenergy total\n")
	return b.String()
}

// Deck returns the solver input for one frame: for each system, an ELEC
// calculation in solvent, one in vacuum (sdie 1) and an APOLAR one.
func Deck(cfg *pbsa.Config, grids [3]mesh.Grid) string {
	var b strings.Builder
	b.WriteString("read\n")
	for _, s := range SystemNames {
		fmt.Fprintf(&b, "  mol pqr %s.pqr\n", s)
	}
	b.WriteString("end\n\n")
	solv := pbeBlock(&cfg.PB, cfg.PB.SDie)
	vac := pbeBlock(&cfg.PB, 1)
	apol := pbaBlock(&cfg.SA, cfg.PB.Temperature)
	for i, s := range SystemNames {
		G := grids[i]
		grid := fmt.Sprintf("  mg-auto\n  mol %d\n  dime %d %d %d\n  cglen %s\n  fglen %s\n  cgcent %s\n  fgcent %s\n",
			i+1, G.Dime[0], G.Dime[1], G.Dime[2], vec3(G.Coarse), vec3(G.Fine), vec3(G.Center), vec3(G.Center))
		fmt.Fprintf(&b, "# %s: estimated memory %.1f MB\n", s, G.MemoryMB())
		fmt.Fprintf(&b, "ELEC name %s\n%s%send\n", s, grid, solv)
		fmt.Fprintf(&b, "ELEC name %s_VAC\n%s%send\n", s, grid, vac)
		fmt.Fprintf(&b, "APOLAR name %s_SAS\n  mol %d\n%send\n", s, i+1, apol)
		fmt.Fprintf(&b, "print elecEnergy %s - %s_VAC end\n", s, s)
		fmt.Fprintf(&b, "print apolEnergy %s_SAS end\n\n", s)
	}
	b.WriteString("quit\n")
	return b.String()
}
