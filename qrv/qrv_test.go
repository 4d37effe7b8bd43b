/*
 * qrv_test.go, part of gopbsa.
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

package qrv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/ndx"
	"github.com/rmera/gopbsa/top"
)

const dumpFile = "../top/testdata/complex.dump"

func buildTest(Te *testing.T) *Table {
	D, err := top.ReadDump(dumpFile)
	require.NoError(Te, err)
	T, err := top.Parse(D, pbsa.RadiusConfig{Policy: pbsa.RadiusElement, Default: 1.2})
	require.NoError(Te, err)
	rec := ndx.NewGroup("Protein", []int{0, 1, 2, 3})
	lig := ndx.NewGroup("LIG", []int{6, 7})
	sel, err := ndx.NewSelection(rec, lig, T.NAtoms())
	require.NoError(Te, err)
	tab, err := Build(T.System(), T.NB, sel)
	require.NoError(Te, err)
	return tab
}

func TestBuild(Te *testing.T) {
	T := buildTest(Te)
	require.Len(Te, T.Atoms, 6)
	assert.Equal(Te, []Residue{
		{Nr: 1, Name: "MET", Tag: Receptor},
		{Nr: 2, Name: "GLY", Tag: Receptor},
		{Nr: 1, Name: "LIG", Tag: Ligand},
	}, T.Residues)
	assert.Equal(Te, []int{0, 0, 1, 1, 2, 2}, T.ResidueOf())
	rec, lig := T.Split()
	assert.Equal(Te, []int{0, 1, 2, 3}, rec)
	assert.Equal(Te, []int{4, 5}, lig)
	r, ok := T.Row(7)
	assert.True(Te, ok)
	assert.Equal(Te, 5, r)
	_, ok = T.Row(4)
	assert.False(Te, ok)
	_, err := T.Rows([]int{0, 5})
	var ge *pbsa.GeometryError
	assert.True(Te, errors.As(err, &ge))
	assert.Equal(Te, "MET1", T.Residues[0].Label())
}

func TestWriteRead(Te *testing.T) {
	T := buildTest(Te)
	var b bytes.Buffer
	require.NoError(Te, T.Write(&b))
	lines := strings.Split(b.String(), "\n")
	assert.Equal(Te, "Receptor: Protein", lines[0])
	assert.Equal(Te, "Ligand: LIG", lines[1])
	assert.Equal(Te, "2", lines[2])
	assert.True(Te, strings.HasSuffix(lines[5], "Rec"))
	assert.True(Te, strings.HasSuffix(lines[len(lines)-2], "Lig"))

	R, err := Read(&b, "mem")
	require.NoError(Te, err)
	assert.Equal(Te, T.RecLabel, R.RecLabel)
	assert.Equal(Te, T.LigLabel, R.LigLabel)
	assert.Equal(Te, T.Residues, R.Residues)
	require.Len(Te, R.Atoms, len(T.Atoms))
	for i, a := range T.Atoms {
		r := R.Atoms[i]
		assert.InDelta(Te, a.Charge, r.Charge, 1e-5)
		assert.InDelta(Te, a.Radius, r.Radius, 1e-6)
		assert.InDelta(Te, a.Sigma, r.Sigma, 1e-6)
		assert.Equal(Te, a.Type, r.Type)
		assert.Equal(Te, a.Index, r.Index)
		assert.Equal(Te, a.Mol, r.Mol)
		assert.Equal(Te, a.Copy, r.Copy)
		assert.Equal(Te, a.Local, r.Local)
		assert.Equal(Te, a.Name, r.Name)
		assert.Equal(Te, a.Tag, r.Tag)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			c6, c12 := T.NB.At(i, j)
			r6, r12 := R.NB.At(i, j)
			assert.Equal(Te, c6, r6)
			assert.Equal(Te, c12, r12)
		}
	}
}

func TestReadErrors(Te *testing.T) {
	T := buildTest(Te)
	var b bytes.Buffer
	require.NoError(Te, T.Write(&b))
	good := b.String()
	bad := map[string]string{
		"truncated": strings.Join(strings.Split(good, "\n")[:4], "\n"),
		"tag":       strings.Replace(good, "Lig\n", "Foo\n", 1),
		"charge":    strings.Replace(good, " -0.30000 ", " -0.3x000 ", 1),
		"lj":        strings.Replace(good, "\n     1 ", "\n     7 ", 1),
	}
	for name, s := range bad {
		_, err := Read(strings.NewReader(s), name)
		var pe *pbsa.InputParseError
		assert.True(Te, errors.As(err, &pe), "%s: %v", name, err)
	}
}

func TestGate(Te *testing.T) {
	dir := Te.TempDir()
	src := filepath.Join(dir, "complex.dump")
	data, err := os.ReadFile(dumpFile)
	require.NoError(Te, err)
	require.NoError(Te, os.WriteFile(src, data, 0o644))
	G := Gate{Source: src, Params: filepath.Join(dir, "complex.qrv"), Key: "Protein|LIG|element"}

	st, err := G.Check()
	require.NoError(Te, err)
	assert.False(Te, st.Fresh)

	builds := 0
	build := func() (*Table, error) {
		builds++
		return buildTest(Te), nil
	}
	T1, st, err := Ensure(G, build)
	require.NoError(Te, err)
	assert.False(Te, st.Fresh)
	assert.Equal(Te, 1, builds)

	T2, st, err := Ensure(G, build)
	require.NoError(Te, err)
	assert.True(Te, st.Fresh)
	assert.Equal(Te, 1, builds)
	assert.Equal(Te, T1.Atoms, T2.Atoms)

	//a different selection key invalidates
	G2 := G
	G2.Key = "Protein|LIG|lj"
	st, err = G2.Check()
	require.NoError(Te, err)
	assert.False(Te, st.Fresh)

	//so does touching the parameter file
	f, err := os.OpenFile(G.Params, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(Te, err)
	f.WriteString("\n")
	f.Close()
	st, err = G.Check()
	require.NoError(Te, err)
	assert.False(Te, st.Fresh)
	assert.Contains(Te, st.Reason, "parameter file")

	//and the source
	_, _, err = Ensure(G, build)
	require.NoError(Te, err)
	require.NoError(Te, os.WriteFile(src, append(data, '\n'), 0o644))
	st, err = G.Check()
	require.NoError(Te, err)
	assert.False(Te, st.Fresh)
	assert.Contains(Te, st.Reason, "topology source")
}

func TestBuildFailureLeavesNoHashes(Te *testing.T) {
	dir := Te.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(Te, os.WriteFile(src, []byte("x"), 0o644))
	G := Gate{Source: src, Params: filepath.Join(dir, "p.qrv")}
	_, _, err := Ensure(G, func() (*Table, error) { return nil, pbsa.NewError("boom", "") })
	require.Error(Te, err)
	_, err = os.Stat(G.Params + ".sha")
	assert.True(Te, errors.Is(err, os.ErrNotExist))
}
