/*
 * ndx.go, part of gopbsa.
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

// Package ndx reads GROMACS index files and answers group membership queries.
package ndx

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/scu"

	pbsa "github.com/rmera/gopbsa"
)

// Group is a named, ordered set of 0-based atom indexes.
type Group struct {
	Name  string
	Atoms []int
	in    []bool
}

// NewGroup returns a group with the given atoms, which must not be negative.
func NewGroup(name string, atoms []int) *Group {
	G := &Group{Name: name, Atoms: atoms}
	max := -1
	for _, a := range atoms {
		if a > max {
			max = a
		}
	}
	G.in = make([]bool, max+1)
	for _, a := range atoms {
		G.in[a] = true
	}
	return G
}

// Len returns the number of atoms in the group.
func (G *Group) Len() int { return len(G.Atoms) }

// Contains returns true if atom i belongs to the group.
func (G *Group) Contains(i int) bool {
	return i >= 0 && i < len(G.in) && G.in[i]
}

// Info is the name and size of a group, for listings.
type Info struct {
	Number int
	Name   string
	Size   int
}

// Index is the list of groups from an index file, in file order.
type Index struct {
	Groups []*Group
}

// Read reads a GROMACS index file. Atom numbers in the file are 1-based.
func Read(fname string) (I *Index, err error) {
	f, err := scu.NewMustReadFile(fname)
	if err != nil {
		return nil, pbsa.NewError(err.Error(), fname, "ndx.Read")
	}
	defer f.Close()
	ln := 0
	defer func() {
		if r := recover(); r != nil {
			I = nil
			err = &pbsa.InputParseError{File: fname, Line: ln, Section: "index", Msg: fmt.Sprint(r)}
		}
	}()
	I = new(Index)
	var cur *Group
	var atoms []int
	flush := func() {
		if cur != nil {
			I.Groups = append(I.Groups, NewGroup(cur.Name, atoms))
		}
	}
	for l := f.Next(); l != "EOF"; l = f.Next() {
		ln++
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, ";") {
			continue
		}
		if strings.HasPrefix(l, "[") {
			if !strings.HasSuffix(l, "]") {
				return nil, &pbsa.InputParseError{File: fname, Line: ln, Section: "index", Msg: "unterminated group header"}
			}
			flush()
			cur = &Group{Name: strings.TrimSpace(l[1 : len(l)-1])}
			atoms = make([]int, 0, 64)
			continue
		}
		if cur == nil {
			return nil, &pbsa.InputParseError{File: fname, Line: ln, Section: "index", Msg: "atom numbers before the first group"}
		}
		for _, s := range strings.Fields(l) {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return nil, &pbsa.InputParseError{File: fname, Line: ln, Section: cur.Name, Msg: fmt.Sprintf("bad atom number %q", s)}
			}
			atoms = append(atoms, n-1)
		}
	}
	flush()
	if len(I.Groups) == 0 {
		return nil, &pbsa.InputParseError{File: fname, Section: "index", Msg: "no groups"}
	}
	return I, nil
}

// List returns number, name and size of every group.
func (I *Index) List() []Info {
	ret := make([]Info, len(I.Groups))
	for i, g := range I.Groups {
		ret[i] = Info{Number: i, Name: g.Name, Size: g.Len()}
	}
	return ret
}

// Group returns the group with the given name or, if name is a number,
// the group with that (0-based) position in the file.
func (I *Index) Group(name string) (*Group, error) {
	for _, g := range I.Groups {
		if g.Name == name {
			return g, nil
		}
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < len(I.Groups) {
		return I.Groups[n], nil
	}
	return nil, pbsa.NewError(fmt.Sprintf("no group %q in the index", name), "", "Index.Group")
}

// Selection holds the receptor, the ligand and the complex made of both.
type Selection struct {
	Receptor *Group
	Ligand   *Group
	Complex  *Group
}

// NewSelection builds the complex from receptor and ligand, which must be
// non-empty and disjoint. natoms, if positive, is the number of atoms in the
// system, and all indexes must be below it. The complex is in system order.
func NewSelection(rec, lig *Group, natoms int) (*Selection, error) {
	for _, g := range []*Group{rec, lig} {
		if g == nil || g.Len() == 0 {
			name := ""
			if g != nil {
				name = g.Name
			}
			return nil, &pbsa.GeometryError{Group: name, Msg: "required group has no atoms"}
		}
		if natoms > 0 {
			for _, a := range g.Atoms {
				if a >= natoms {
					return nil, &pbsa.GeometryError{Group: g.Name, Atoms: []int{a}, Msg: fmt.Sprintf("atom index beyond the %d atoms in the system", natoms)}
				}
			}
		}
	}
	var shared []int
	for _, a := range lig.Atoms {
		if rec.Contains(a) {
			shared = append(shared, a)
		}
	}
	if len(shared) > 0 {
		return nil, &pbsa.GeometryError{Group: rec.Name + "/" + lig.Name, Atoms: shared, Msg: "receptor and ligand overlap"}
	}
	com := make([]int, 0, rec.Len()+lig.Len())
	com = append(com, rec.Atoms...)
	com = append(com, lig.Atoms...)
	sort.Ints(com)
	for i := 1; i < len(com); i++ {
		if com[i] == com[i-1] {
			return nil, &pbsa.GeometryError{Group: rec.Name + "/" + lig.Name, Atoms: []int{com[i]}, Msg: "repeated atom in a group"}
		}
	}
	return &Selection{Receptor: rec, Ligand: lig, Complex: NewGroup(rec.Name+"_"+lig.Name, com)}, nil
}
