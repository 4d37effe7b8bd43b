/*
 * main_test.go, part of gopbsa.
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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/gochem/traj/stf"
	v3 "github.com/rmera/gochem/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/ndx"
	"github.com/rmera/gopbsa/qrv"
)

const (
	dumpFile  = "../../top/testdata/complex.dump"
	indexFile = "../../ndx/testdata/index.ndx"
)

// fakeAPBS prints, for every system, -2 kJ/mol per atom in solvent, -1 in
// vacuum and 10 Å^2 of area per atom, reading the atom counts from the PQR
// files.
const fakeAPBS = `#!/bin/sh
n=1
for s in com rec lig; do
  a=$(grep -c '^ATOM' $s.pqr)
  for suf in "" _VAC; do
    echo "CALCULATION #$n ($s$suf): MULTIGRID"
    n=$((n+1))
    e=-2.0E+00
    [ -n "$suf" ] && e=-1.0E+00
    i=0
    while [ $i -lt $a ]; do echo "  Atom $i:  $e kJ/mol"; i=$((i+1)); done
  done
  echo "CALCULATION #$n (${s}_SAS): APOLAR"
  n=$((n+1))
  i=0
  while [ $i -lt $a ]; do echo "  SASA for atom $i: 1.0E+01"; i=$((i+1)); done
done
`

func execute(Te *testing.T, args ...string) (string, error) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeTraj writes two frames of the 8 atoms of the test system, 3 Å apart
// along x, the ligand shifted 1 Å further in the second frame.
func writeTraj(Te *testing.T, dir string) string {
	fname := filepath.Join(dir, "md.stf")
	w, err := stf.NewWriter(fname, 8, map[string]string{"prec": "2"})
	require.NoError(Te, err)
	for f := 0; f < 2; f++ {
		c := v3.Zeros(8)
		for i := 0; i < 8; i++ {
			x := 3 * float64(i)
			if i >= 4 {
				x += float64(f)
			}
			c.Set(i, 0, x)
			c.Set(i, 1, float64(i%2))
		}
		require.NoError(Te, w.WNext(c))
	}
	w.Close()
	return fname
}

func TestRunCommand(Te *testing.T) {
	dir := Te.TempDir()
	exe := filepath.Join(dir, "apbs")
	require.NoError(Te, os.WriteFile(exe, []byte(fakeAPBS), 0o755))
	traj := writeTraj(Te, dir)
	args := []string{"run",
		"-s", dumpFile, "-f", traj, "-n", indexFile, "-r", "Protein", "-l", "LIG",
		"--workdir", dir, "--apbs", exe, "--dt", "0.01", "--workers", "2",
		"--preserve=false", "--plots", "svg", "--log-level", "error",
	}
	out, err := execute(Te, args...)
	require.NoError(Te, err)
	assert.True(Te, strings.HasPrefix(out, "Energy Term,value,info"))
	assert.Contains(Te, out, "ΔPB,0.000")

	for _, n := range []string{
		"complex.qrv", "complex.qrv.sha", "complex.qrv.src.sha",
		"MMPBSA_complex.csv", "MMPBSA_complex_traj.csv", "MMPBSA_complex_res.csv",
		"MMPBSA_complex_res_ΔH.csv", "MMPBSA_complex.pdb",
		"MMPBSA_complex_traj.svg", "MMPBSA_complex_res.svg", "complex.prom",
		"complex/frame_000000/apbs.out.zst", "complex/frame_000001/apbs.out.zst",
	} {
		_, err := os.Stat(filepath.Join(dir, n))
		assert.NoError(Te, err, n)
	}
	_, err = os.Stat(filepath.Join(dir, "complex", "frame_000000", "com.pqr"))
	assert.True(Te, os.IsNotExist(err))

	traj2, err := os.ReadFile(filepath.Join(dir, "MMPBSA_complex_traj.csv"))
	require.NoError(Te, err)
	assert.Len(Te, strings.Split(strings.TrimSpace(string(traj2)), "\n"), 3)

	T, err := qrv.ReadFile(filepath.Join(dir, "complex.qrv"))
	require.NoError(Te, err)
	assert.Len(Te, T.Atoms, 8)

	//second run reuses the parameter file
	st, err := os.Stat(filepath.Join(dir, "complex.qrv"))
	require.NoError(Te, err)
	_, err = execute(Te, args...)
	require.NoError(Te, err)
	st2, err := os.Stat(filepath.Join(dir, "complex.qrv"))
	require.NoError(Te, err)
	assert.Equal(Te, st.ModTime(), st2.ModTime())
}

func TestRunCommandErrors(Te *testing.T) {
	dir := Te.TempDir()
	traj := writeTraj(Te, dir)
	base := []string{"run", "-s", dumpFile, "-f", traj, "-n", indexFile, "-r", "Protein",
		"--workdir", dir, "--log-level", "error", "--plots", ""}

	//required flag
	_, err := execute(Te, base...)
	assert.Error(Te, err)

	//the solver does not exist
	_, err = execute(Te, append(base, "-l", "LIG", "--apbs", filepath.Join(dir, "nothing"))...)
	assert.ErrorContains(Te, err, "frame 0")

	//receptor and ligand overlap
	_, err = execute(Te, append(base, "-l", "System", "--apbs", "true")...)
	assert.Error(Te, err)

	//bad setting from the command line
	_, err = execute(Te, append(base, "-l", "LIG", "--mesh", "C")...)
	assert.ErrorContains(Te, err, "mesh.policy")
}

func TestQrvCommand(Te *testing.T) {
	dir := Te.TempDir()
	out, err := execute(Te, "qrv", "-s", dumpFile, "-n", indexFile, "-r", "Protein", "-l", "LIG",
		"--workdir", dir, "--radius", "lj", "--name", "lj", "--log-level", "error")
	require.NoError(Te, err)
	assert.Contains(Te, out, "4 receptor atoms (Protein), 4 ligand atoms (LIG)")
	_, err = os.Stat(filepath.Join(dir, "lj.qrv"))
	assert.NoError(Te, err)
}

func TestQrvIndexChange(Te *testing.T) {
	dir := Te.TempDir()
	index := filepath.Join(dir, "index.ndx")
	write := func(protein string) {
		require.NoError(Te, os.WriteFile(index, []byte("[ Protein ]\n"+protein+"\n[ LIG ]\n5 6 7 8\n"), 0o644))
	}
	args := []string{"qrv", "-s", dumpFile, "-n", index, "-r", "Protein", "-l", "LIG",
		"--workdir", dir, "--log-level", "error"}
	write("1 2 3 4")
	out, err := execute(Te, args...)
	require.NoError(Te, err)
	assert.Contains(Te, out, "4 receptor atoms (Protein)")

	//same group names, different atoms
	write("1 2")
	out, err = execute(Te, args...)
	require.NoError(Te, err)
	assert.Contains(Te, out, "2 receptor atoms (Protein)")
	T, err := qrv.ReadFile(filepath.Join(dir, "complex.qrv"))
	require.NoError(Te, err)
	rec, _ := T.Split()
	assert.Len(Te, rec, 2)
}

func TestGateKey(Te *testing.T) {
	rc := pbsa.RadiusConfig{Policy: pbsa.RadiusElement, Default: 1.2}
	lig := ndx.NewGroup("LIG", []int{4, 5})
	k := gateKey(ndx.NewGroup("Protein", []int{0, 1, 2}), lig, rc)
	assert.Equal(Te, k, gateKey(ndx.NewGroup("Protein", []int{2, 0, 1}), lig, rc))
	assert.NotEqual(Te, k, gateKey(ndx.NewGroup("Protein", []int{0, 1}), lig, rc))
	rc.Default = 1.5
	assert.NotEqual(Te, k, gateKey(ndx.NewGroup("Protein", []int{0, 1, 2}), lig, rc))
}

func TestGroupsCommand(Te *testing.T) {
	out, err := execute(Te, "groups", indexFile, "--log-level", "error")
	require.NoError(Te, err)
	assert.Contains(Te, out, "Protein")
	assert.Contains(Te, out, "4 atoms")
	_, err = execute(Te, "groups", "--log-level", "error")
	assert.Error(Te, err)
}

func TestSettingsCommand(Te *testing.T) {
	fname := filepath.Join(Te.TempDir(), "s.toml")
	out, err := execute(Te, "settings", fname)
	require.NoError(Te, err)
	assert.Contains(Te, out, fname)
	b, err := os.ReadFile(fname)
	require.NoError(Te, err)
	assert.Contains(Te, string(b), "[mesh]")
}

func TestDumpName(Te *testing.T) {
	assert.Equal(Te, filepath.Join("work", "md_dump.txt"), dumpName("/data/md.tpr", "work"))
}
