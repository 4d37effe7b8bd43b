/*
 * qrv.go, part of gopbsa.
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

// Package qrv writes and reads the parameter ("qrv") file: the force field
// data of every receptor and ligand atom, plus the Lennard-Jones table.
package qrv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/ndx"
	"github.com/rmera/gopbsa/top"
)

// Tag says whether an atom belongs to the receptor or the ligand.
type Tag int

const (
	Receptor Tag = iota
	Ligand
)

func (t Tag) String() string {
	if t == Ligand {
		return "Lig"
	}
	return "Rec"
}

// Record is the line of one atom in the parameter file.
type Record struct {
	Charge  float64 //e
	Radius  float64 //Å
	Type    int
	Sigma   float64 //Å
	Epsilon float64 //kJ/mol
	Index   int     //0-based index in the whole system
	Mol     string
	Copy    int //0-based
	Local   int //0-based
	ResNr   int
	ResName string
	Name    string
	Tag     Tag
	Residue int //0-based, contiguous over the records
}

// Residue is a residue of the receptor or the ligand.
type Residue struct {
	Nr   int
	Name string
	Tag  Tag
}

// Label returns the residue name as used in reports, e.g. "MET1".
func (R Residue) Label() string {
	return fmt.Sprintf("%s%d", R.Name, R.Nr)
}

// Table is the content of a parameter file. Atoms are in system order.
type Table struct {
	RecLabel string
	LigLabel string
	NB       *top.NonbondedTable
	Atoms    []Record
	Residues []Residue
	pos      map[int]int
}

// Build collects the records of every receptor and ligand atom in sys.
func Build(sys []top.SysAtom, nb *top.NonbondedTable, sel *ndx.Selection) (*Table, error) {
	T := &Table{RecLabel: sel.Receptor.Name, LigLabel: sel.Ligand.Name, NB: nb}
	T.Atoms = make([]Record, 0, sel.Complex.Len())
	for _, i := range sel.Complex.Atoms {
		if i >= len(sys) {
			return nil, &pbsa.GeometryError{Group: sel.Complex.Name, Atoms: []int{i}, Msg: "atom not in the topology"}
		}
		a := sys[i]
		tag := Receptor
		if sel.Ligand.Contains(i) {
			tag = Ligand
		}
		T.Atoms = append(T.Atoms, Record{
			Charge:  a.Charge,
			Radius:  a.Radius,
			Type:    a.Type,
			Sigma:   a.Sigma,
			Epsilon: a.Epsilon,
			Index:   a.Index,
			Mol:     a.Mol,
			Copy:    a.Copy,
			Local:   a.Local,
			ResNr:   a.ResNr,
			ResName: a.ResName,
			Name:    a.Name,
			Tag:     tag,
		})
	}
	T.number()
	return T, nil
}

// number assigns contiguous residue indexes, starting a new residue whenever
// the molecule copy, the residue or the tag changes from one atom to the next.
func (T *Table) number() {
	T.Residues = T.Residues[:0]
	T.pos = make(map[int]int, len(T.Atoms))
	for i := range T.Atoms {
		a := &T.Atoms[i]
		T.pos[a.Index] = i
		if i > 0 {
			p := T.Atoms[i-1]
			if p.Mol == a.Mol && p.Copy == a.Copy && p.ResNr == a.ResNr && p.ResName == a.ResName && p.Tag == a.Tag {
				a.Residue = p.Residue
				continue
			}
		}
		a.Residue = len(T.Residues)
		T.Residues = append(T.Residues, Residue{Nr: a.ResNr, Name: a.ResName, Tag: a.Tag})
	}
}

// Row returns the position in T.Atoms of the atom with system index i.
func (T *Table) Row(i int) (int, bool) {
	r, ok := T.pos[i]
	return r, ok
}

// Rows returns the positions in T.Atoms of the given system indexes.
func (T *Table) Rows(idx []int) ([]int, error) {
	ret := make([]int, len(idx))
	for k, i := range idx {
		r, ok := T.pos[i]
		if !ok {
			return nil, &pbsa.GeometryError{Atoms: []int{i}, Msg: "atom not in the parameter file"}
		}
		ret[k] = r
	}
	return ret, nil
}

// Charges, Types and Radii return the per-atom arrays, in row order.
func (T *Table) Charges() []float64 {
	ret := make([]float64, len(T.Atoms))
	for i, a := range T.Atoms {
		ret[i] = a.Charge
	}
	return ret
}

func (T *Table) Types() []int {
	ret := make([]int, len(T.Atoms))
	for i, a := range T.Atoms {
		ret[i] = a.Type
	}
	return ret
}

func (T *Table) Radii() []float64 {
	ret := make([]float64, len(T.Atoms))
	for i, a := range T.Atoms {
		ret[i] = a.Radius
	}
	return ret
}

// ResidueOf returns the residue index of every atom, in row order.
func (T *Table) ResidueOf() []int {
	ret := make([]int, len(T.Atoms))
	for i, a := range T.Atoms {
		ret[i] = a.Residue
	}
	return ret
}

func ff(f float64) string { return strconv.FormatFloat(f, 'e', -1, 64) }

// Write writes the table in the parameter file format.
func (T *Table) Write(out io.Writer) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "Receptor: %s\n", T.RecLabel)
	fmt.Fprintf(w, "Ligand: %s\n", T.LigLabel)
	n := T.NB.NTypes()
	fmt.Fprintf(w, "%d\n", n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%6d", i)
		for j := 0; j < n; j++ {
			c6, c12 := T.NB.At(i, j)
			fmt.Fprintf(w, " %s %s", ff(c6), ff(c12))
		}
		w.WriteString("\n")
	}
	for i, a := range T.Atoms {
		fmt.Fprintf(w, "%6d %9.5f %9.6f %6d %9.6f %9.6f %6d \"%s\"-%d.%d %05d_%s %-6s %s\n",
			i+1, a.Charge, a.Radius, a.Type, a.Sigma, a.Epsilon, a.Index+1,
			a.Mol, a.Copy+1, a.Local+1, a.ResNr, a.ResName, a.Name, a.Tag)
	}
	return w.Flush()
}

// WriteFile writes T to fname. The data goes first to a temporary file in the
// same directory, which is then renamed, so fname is never left half written.
func WriteFile(fname string, T *Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(fname), filepath.Base(fname)+".tmp*")
	if err != nil {
		return pbsa.NewError(err.Error(), fname, "qrv.WriteFile")
	}
	defer os.Remove(tmp.Name()) //no-op after a successful rename
	if err = T.Write(tmp); err != nil {
		tmp.Close()
		return pbsa.NewError(err.Error(), fname, "qrv.WriteFile")
	}
	if err = tmp.Close(); err != nil {
		return pbsa.NewError(err.Error(), fname, "qrv.WriteFile")
	}
	if err = os.Rename(tmp.Name(), fname); err != nil {
		return pbsa.NewError(err.Error(), fname, "qrv.WriteFile")
	}
	return nil
}

// ReadFile reads a parameter file.
func ReadFile(fname string) (*Table, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, pbsa.NewError(err.Error(), fname, "qrv.ReadFile")
	}
	defer f.Close()
	return Read(f, fname)
}

// Read parses a parameter file from r. name is used in error messages.
func Read(r io.Reader, name string) (T *Table, err error) {
	ln := 0
	fail := func(format string, a ...interface{}) {
		panic(&pbsa.InputParseError{File: name, Line: ln, Section: "qrv", Msg: fmt.Sprintf(format, a...)})
	}
	defer func() {
		if r := recover(); r != nil {
			T = nil
			if pe, ok := r.(*pbsa.InputParseError); ok {
				err = pe
				return
			}
			err = &pbsa.InputParseError{File: name, Line: ln, Section: "qrv", Msg: fmt.Sprint(r)}
		}
	}()
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	next := func() string {
		if !s.Scan() {
			if s.Err() != nil {
				fail("%v", s.Err())
			}
			fail("unexpected end of file")
		}
		ln++
		return s.Text()
	}
	atoi := func(v string) int {
		i, err := strconv.Atoi(v)
		if err != nil {
			fail("bad integer %q", v)
		}
		return i
	}
	atof := func(v string) float64 {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fail("bad number %q", v)
		}
		return f
	}
	T = new(Table)
	T.RecLabel = strings.TrimSpace(strings.TrimPrefix(next(), "Receptor:"))
	T.LigLabel = strings.TrimSpace(strings.TrimPrefix(next(), "Ligand:"))
	n := atoi(strings.TrimSpace(next()))
	if n <= 0 {
		fail("the number of atom types must be positive")
	}
	T.NB = top.NewNonbondedTable(n)
	for i := 0; i < n; i++ {
		f := strings.Fields(next())
		if len(f) != 2*n+1 || atoi(f[0]) != i {
			fail("bad LJ row %d", i)
		}
		for j := 0; j < n; j++ {
			c6, c12 := atof(f[1+2*j]), atof(f[2+2*j])
			if j < i {
				o6, o12 := T.NB.At(i, j)
				if o6 != c6 || o12 != c12 {
					fail("LJ table not symmetric at %d,%d", i, j)
				}
				continue
			}
			T.NB.Set(i, j, c6, c12)
		}
	}
	for s.Scan() {
		ln++
		l := s.Text()
		if strings.TrimSpace(l) == "" {
			continue
		}
		f := strings.Fields(l)
		if len(f) < 11 {
			fail("atom line with %d fields", len(f))
		}
		k := len(f)
		var rec Record
		rec.Charge = atof(f[1])
		rec.Radius = atof(f[2])
		rec.Type = atoi(f[3])
		rec.Sigma = atof(f[4])
		rec.Epsilon = atof(f[5])
		rec.Index = atoi(f[6]) - 1
		if rec.Type < 0 || rec.Type >= n {
			fail("atom type %d out of range", rec.Type)
		}
		rec.Mol, rec.Copy, rec.Local = parseOrigin(strings.Join(f[7:k-3], " "), fail, atoi)
		res := strings.SplitN(f[k-3], "_", 2)
		if len(res) != 2 {
			fail("bad residue label %q", f[k-3])
		}
		rec.ResNr = atoi(res[0])
		rec.ResName = res[1]
		rec.Name = f[k-2]
		switch f[k-1] {
		case "Rec":
			rec.Tag = Receptor
		case "Lig":
			rec.Tag = Ligand
		default:
			fail("unknown tag %q", f[k-1])
		}
		T.Atoms = append(T.Atoms, rec)
	}
	if s.Err() != nil {
		fail("%v", s.Err())
	}
	if len(T.Atoms) == 0 {
		fail("no atoms")
	}
	T.number()
	return T, nil
}

// parseOrigin splits a label like "Protein"-1.12 into molecule name, 0-based
// copy and 0-based atom index within the molecule.
func parseOrigin(s string, fail func(string, ...interface{}), atoi func(string) int) (string, int, int) {
	q := strings.LastIndex(s, "\"-")
	if !strings.HasPrefix(s, "\"") || q < 1 {
		fail("bad atom origin %q", s)
	}
	cl := strings.SplitN(s[q+2:], ".", 2)
	if len(cl) != 2 {
		fail("bad atom origin %q", s)
	}
	return s[1:q], atoi(cl[0]) - 1, atoi(cl[1]) - 1
}

// Split returns the rows of the receptor and of the ligand atoms.
func (T *Table) Split() (rec, lig []int) {
	for i, a := range T.Atoms {
		if a.Tag == Ligand {
			lig = append(lig, i)
		} else {
			rec = append(rec, i)
		}
	}
	return rec, lig
}
