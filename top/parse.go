/*
 * parse.go, part of gopbsa.
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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	pbsa "github.com/rmera/gopbsa"
)

// Markers for the sections of a "gmx dump -s" text.
var (
	reFFParams  = regexp.MustCompile(`^\s*ffparams:`)
	reAtnr      = regexp.MustCompile(`^\s*atnr\s*=\s*(\d+)`)
	reLJ        = regexp.MustCompile(`c6\s*=\s*([^,\s]+),\s*c12\s*=\s*([^,\s]+)`)
	reNMolblock = regexp.MustCompile(`^\s*#molblock\s*=\s*(\d+)`)
	reMolblock  = regexp.MustCompile(`^\s*moltype\s*=\s*(\d+)`)
	reNMols     = regexp.MustCompile(`^\s*#molecules\s*=\s*(\d+)`)
	reMoltype   = regexp.MustCompile(`^\s*moltype\s+\((\d+)\):`)
	reName      = regexp.MustCompile(`^\s*name\s*=\s*"(.*)"`)
	reAtomHead  = regexp.MustCompile(`^\s*atom\s+\((\d+)\):`)
	reAtomData  = regexp.MustCompile(`type\s*=\s*(\d+).*?\bq\s*=\s*([^,\s]+),.*resind\s*=\s*(-?\d+)`)
	reAtomName  = regexp.MustCompile(`name\s*=\s*"(.*)"`)
	reResHead   = regexp.MustCompile(`^\s*residue\s+\((\d+)\):`)
	reResData   = regexp.MustCompile(`name\s*=\s*"(.+)",\s*nr\s*=\s*(-?\d+)`)
	reAngles    = regexp.MustCompile(`^\s+Angle:\s*$`)
	reNr        = regexp.MustCompile(`^\s*nr:\s*(\d+)`)
	reAngle     = regexp.MustCompile(`\d+\s+type=\d+\s+\(ANGLES\)\s+(\d+)\s+(\d+)\s+(\d+)`)
	reDt        = regexp.MustCompile(`^\s*(?:delta[-_]t|dt)\s*=\s*(\S+)`)
	reNSteps    = regexp.MustCompile(`^\s*nsteps\s*=\s*(-?\d+)`)
	reNstxoutC  = regexp.MustCompile(`^\s*nstxout[-_]compressed\s*=\s*(\d+)`)
	reNstxout   = regexp.MustCompile(`^\s*nstxout\s*=\s*(\d+)`)
)

// parser carries the dump being parsed and the section being read, so
// failures can be reported with their location.
type parser struct {
	d       *Dump
	section string
}

// fail aborts the parse with an InputParseError at line i (0-based).
func (p *parser) fail(i int, format string, a ...interface{}) {
	panic(&pbsa.InputParseError{File: p.d.Name, Section: p.section, Line: i + 1, Msg: fmt.Sprintf(format, a...)})
}

func (p *parser) atoi(i int, s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		p.fail(i, "bad integer %q", s)
	}
	return n
}

func (p *parser) atof(i int, s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		p.fail(i, "bad number %q", s)
	}
	return f
}

// must returns the submatches of re in the first line in [from, to) matching
// it, and the line index, failing the parse if there is no such line.
func (p *parser) must(re *regexp.Regexp, from, to int, what string) ([]string, int) {
	m, i := p.d.Submatch(re, from, to)
	if m == nil {
		p.fail(from-1, "%s not found", what)
	}
	return m, i
}

// Parse reads the force field and molecular structure from a topology dump.
// Radii are assigned following rc. Any missing or malformed section is an
// error, there is no partial result.
func Parse(D *Dump, rc pbsa.RadiusConfig) (T *Topology, err error) {
	p := &parser{d: D}
	defer func() {
		if r := recover(); r != nil {
			T = nil
			if pe, ok := r.(*pbsa.InputParseError); ok {
				pe.Decorate("Parse")
				err = pe
				return
			}
			err = &pbsa.InputParseError{File: D.Name, Section: p.section, Msg: fmt.Sprint(r)}
		}
	}()
	T = new(Topology)
	T.NB = p.nonbonded()
	T.Types = T.NB.Derive(rc.Default)
	T.Blocks = p.molblocks()
	T.MolTypes = p.moltypes(T.NB.NTypes())
	for _, b := range T.Blocks {
		if b.Type >= len(T.MolTypes) {
			p.section = "molblock"
			p.fail(-1, "molblock refers to molecule type %d, but only %d types are present", b.Type, len(T.MolTypes))
		}
	}
	T.Params = p.runParams()
	T.assignRadii(rc)
	return T, nil
}

// nonbonded reads the atnr x atnr LJ matrix in the ffparams section.
func (p *parser) nonbonded() *NonbondedTable {
	p.section = "ffparams"
	l := p.d.Find(reFFParams, 0, -1)
	if l < 0 {
		p.fail(-1, "no ffparams section")
	}
	m, al := p.must(reAtnr, l+1, l+4, "atnr")
	atnr := p.atoi(al, m[1])
	if atnr <= 0 {
		p.fail(al, "atnr must be positive, got %d", atnr)
	}
	first := p.d.Find(reLJ, al+1, al+4)
	if first < 0 {
		p.fail(al, "no LJ parameters after atnr")
	}
	N := NewNonbondedTable(atnr)
	c6 := make([]float64, atnr*atnr)
	c12 := make([]float64, atnr*atnr)
	for k := 0; k < atnr*atnr; k++ {
		li := first + k
		lm := reLJ.FindStringSubmatch(p.d.Line(li))
		if lm == nil {
			p.fail(li, "expected %d LJ entries, found %d", atnr*atnr, k)
		}
		c6[k] = p.atof(li, lm[1])
		c12[k] = p.atof(li, lm[2])
	}
	for i := 0; i < atnr; i++ {
		for j := i; j < atnr; j++ {
			a, b := i*atnr+j, j*atnr+i
			if c6[a] != c6[b] || c12[a] != c12[b] {
				p.fail(first+a, "LJ matrix is not symmetric for types %d and %d", i, j)
			}
			N.Set(i, j, c6[a], c12[a])
		}
	}
	return N
}

// molblocks reads which molecule type each block holds and how many copies.
func (p *parser) molblocks() []MolBlock {
	p.section = "molblock"
	m, l := p.must(reNMolblock, 0, -1, "#molblock")
	n := p.atoi(l, m[1])
	ret := make([]MolBlock, 0, n)
	from := l + 1
	for len(ret) < n {
		m, i := p.d.Submatch(reMolblock, from, -1)
		if m == nil {
			p.fail(l, "#molblock is %d but only %d molblocks were found", n, len(ret))
		}
		mm, j := p.must(reNMols, i+1, i+4, "#molecules")
		ret = append(ret, MolBlock{Type: p.atoi(i, m[1]), Count: p.atoi(j, mm[1])})
		from = j + 1
	}
	return ret
}

// moltypes reads every "moltype (n):" section.
func (p *parser) moltypes(ntypes int) []*MolType {
	p.section = "moltype"
	heads := p.d.FindAll(reMoltype)
	if len(heads) == 0 {
		p.fail(-1, "no moltype sections")
	}
	ret := make([]*MolType, len(heads))
	for k, h := range heads {
		id := p.atoi(h, reMoltype.FindStringSubmatch(p.d.Line(h))[1])
		if id != k {
			p.fail(h, "moltype sections out of order: expected %d, got %d", k, id)
		}
		end := p.d.Len()
		if k+1 < len(heads) {
			end = heads[k+1]
		}
		p.section = fmt.Sprintf("moltype (%d)", k)
		ret[k] = p.moltype(h, end, ntypes)
	}
	return ret
}

func (p *parser) moltype(h, end, ntypes int) *MolType {
	mt := new(MolType)
	m, _ := p.must(reName, h+1, h+3, "molecule name")
	mt.Name = m[1]

	m, ah := p.must(reAtomHead, h+1, end, "atom table")
	nat := p.atoi(ah, m[1])
	mt.Atoms = make([]Atom, nat)
	for i := range mt.Atoms {
		li := ah + 1 + i
		am := reAtomData.FindStringSubmatch(p.d.Line(li))
		if am == nil {
			p.fail(li, "expected %d atoms, line %d does not describe one", nat, i)
		}
		a := &mt.Atoms[i]
		a.Type = p.atoi(li, am[1])
		a.Charge = p.atof(li, am[2])
		a.Residue = p.atoi(li, am[3])
		if a.Type < 0 || a.Type >= ntypes {
			p.fail(li, "atom type %d out of range (%d types)", a.Type, ntypes)
		}
		if i > 0 && a.Residue < mt.Atoms[i-1].Residue {
			p.fail(li, "residue index decreases within the molecule")
		}
	}

	m, nh := p.must(reAtomHead, ah+nat+1, end, "atom names")
	if p.atoi(nh, m[1]) != nat {
		p.fail(nh, "atom name count differs from atom count %d", nat)
	}
	for i := range mt.Atoms {
		li := nh + 1 + i
		nm := reAtomName.FindStringSubmatch(p.d.Line(li))
		if nm == nil {
			p.fail(li, "expected name for atom %d", i)
		}
		mt.Atoms[i].Name = nm[1]
	}

	m, rh := p.must(reResHead, nh+nat+1, end, "residue table")
	nres := p.atoi(rh, m[1])
	mt.Residues = make([]Residue, nres)
	for i := range mt.Residues {
		li := rh + 1 + i
		rm := reResData.FindStringSubmatch(p.d.Line(li))
		if rm == nil {
			p.fail(li, "expected %d residues, line %d does not describe one", nres, i)
		}
		mt.Residues[i] = Residue{Name: rm[1], Nr: p.atoi(li, rm[2])}
	}
	for i, a := range mt.Atoms {
		if a.Residue < 0 || a.Residue >= nres {
			p.fail(ah+1+i, "atom %d belongs to residue %d, but there are %d residues", i, a.Residue, nres)
		}
	}
	p.hydrogens(mt, rh+nres+1, end)
	return mt
}

// hydrogens finds, through the angle terms, the heavy atom each hydrogen is
// bonded to. In an angle i-j-k, a hydrogen i or k is bonded to j.
func (p *parser) hydrogens(mt *MolType, from, end int) {
	al := p.d.Find(reAngles, from, end)
	if al < 0 {
		return
	}
	m, nl := p.must(reNr, al+1, al+3, "angle count")
	nang := p.atoi(nl, m[1]) / 4
	first := p.d.Find(reAngle, nl+1, end)
	if first < 0 && nang > 0 {
		p.fail(nl, "%d angles declared, none found", nang)
	}
	nat := len(mt.Atoms)
	for k := 0; k < nang; k++ {
		li := first + k
		am := reAngle.FindStringSubmatch(p.d.Line(li))
		if am == nil {
			p.fail(li, "expected %d angles, found %d", nang, k)
		}
		i, j, l := p.atoi(li, am[1]), p.atoi(li, am[2]), p.atoi(li, am[3])
		if i >= nat || j >= nat || l >= nat {
			p.fail(li, "angle atom out of range")
		}
		for _, h := range []int{i, l} {
			if mt.Atoms[h].IsHydrogen() && mt.Atoms[h].Heavy == "" {
				mt.Atoms[h].Heavy = mt.Atoms[j].Name
			}
		}
	}
}

// runParams reads the optional inputrec values. Missing values stay zero.
func (p *parser) runParams() RunParams {
	p.section = "inputrec"
	var R RunParams
	if m, i := p.d.Submatch(reDt, 0, -1); m != nil {
		R.Dt = p.atof(i, m[1])
	}
	if m, i := p.d.Submatch(reNSteps, 0, -1); m != nil {
		R.NSteps = p.atoi(i, m[1])
	}
	if m, i := p.d.Submatch(reNstxoutC, 0, -1); m != nil {
		R.NstXout = p.atoi(i, m[1])
	}
	if R.NstXout == 0 {
		if m, i := p.d.Submatch(reNstxout, 0, -1); m != nil {
			R.NstXout = p.atoi(i, m[1])
		}
	}
	return R
}

// assignRadii copies the per-type parameters into every atom and sets the
// radii according to the policy.
func (T *Topology) assignRadii(rc pbsa.RadiusConfig) {
	for _, mt := range T.MolTypes {
		resatoms := make([]int, len(mt.Residues))
		for _, a := range mt.Atoms {
			resatoms[a.Residue]++
		}
		for i := range mt.Atoms {
			a := &mt.Atoms[i]
			tp := T.Types[a.Type]
			a.Sigma, a.Epsilon = tp.Sigma, tp.Epsilon
			switch rc.Policy {
			case pbsa.RadiusElement:
				a.Radius = ElementRadius(a.Name, a.Heavy, resatoms[a.Residue] == 1, rc.Default)
			default:
				a.Radius = tp.Radius
			}
		}
	}
}
