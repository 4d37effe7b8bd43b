/*
 * output.go, part of gopbsa.
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

	pbsa "github.com/rmera/gopbsa"
)

// System is the solvation energy of one system, in kJ/mol.
type System struct {
	PB     float64
	SA     float64
	AtomPB []float64
	AtomSA []float64
}

// Solvation holds the results for complex, receptor and ligand, indexed with
// Com, Rec and Lig.
type Solvation [3]System

// lastFloat returns the last field of l that parses as a number.
func lastFloat(l string) (float64, bool) {
	f := strings.Fields(l)
	for i := len(f) - 1; i >= 0; i-- {
		if v, err := strconv.ParseFloat(f[i], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// calcName extracts "name" from a line like "CALCULATION #3 (name): MULTIGRID".
func calcName(l string) string {
	o := strings.Index(l, "(")
	c := strings.Index(l, ")")
	if o < 0 || c < o {
		return ""
	}
	return strings.TrimSpace(l[o+1 : c])
}

// Values collects the per-atom values of every calculation in a solver
// output: the lines starting with "Atom" or "SASA" that follow a
// "CALCULATION" line belong to the calculation named in it.
func Values(r io.Reader) (map[string][]float64, error) {
	ret := make(map[string][]float64)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	cur := ""
	ln := 0
	for s.Scan() {
		ln++
		l := strings.TrimSpace(s.Text())
		switch {
		case strings.HasPrefix(l, "CALCULATION "):
			cur = calcName(l)
			if cur == "" {
				return nil, fmt.Errorf("line %d: can't read the calculation name", ln)
			}
		case strings.HasPrefix(l, "Atom"), strings.HasPrefix(l, "SASA"):
			if cur == "" {
				continue
			}
			v, ok := lastFloat(l)
			if !ok {
				return nil, fmt.Errorf("line %d: no value in %q", ln, l)
			}
			ret[cur] = append(ret[cur], v)
		}
	}
	return ret, s.Err()
}

// Parse reads the solver output for a frame with natoms atoms in complex,
// receptor and ligand. The polar energy of an atom is its solvent energy minus
// its vacuum energy. The apolar energy is gamma times its area, plus the
// pressure constant divided by the atom count. Missing calculations or atom
// counts that don't match are errors.
func Parse(r io.Reader, natoms [3]int, sa *pbsa.SAConfig, frame int) (*Solvation, error) {
	vals, err := Values(r)
	if err != nil {
		return nil, &pbsa.SolverInvocationError{Frame: frame, Msg: "unparsable output", Err: err}
	}
	S := new(Solvation)
	for k, name := range SystemNames {
		n := natoms[k]
		get := func(calc string) ([]float64, error) {
			v, ok := vals[calc]
			if !ok {
				return nil, &pbsa.SolverInvocationError{Frame: frame, Subsystem: name, Msg: "no results for calculation " + calc}
			}
			if len(v) != n {
				return nil, &pbsa.SolverInvocationError{Frame: frame, Subsystem: name, Msg: fmt.Sprintf("calculation %s has %d atom values, expected %d", calc, len(v), n)}
			}
			return v, nil
		}
		sol, err := get(name)
		if err != nil {
			return nil, err
		}
		vac, err := get(name + "_VAC")
		if err != nil {
			return nil, err
		}
		sas, err := get(name + "_SAS")
		if err != nil {
			return nil, err
		}
		sys := &S[k]
		sys.AtomPB = make([]float64, n)
		sys.AtomSA = make([]float64, n)
		for i := 0; i < n; i++ {
			sys.AtomPB[i] = sol[i] - vac[i]
			sys.AtomSA[i] = sa.Gamma*sas[i] + sa.Const/float64(n)
			sys.PB += sys.AtomPB[i]
			sys.SA += sys.AtomSA[i]
		}
	}
	return S, nil
}
