/*
 * config_test.go, part of gopbsa.
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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbsa "github.com/rmera/gopbsa"
)

const settings = `
[radius]
policy = "LJ"

[mesh]
policy = "a"
levels = 3

[pb]
temperature = 310.0
sdie = 80.0

[[pb.ions]]
charge = 2.0
conc = 0.05
radius = 1.0

[mm]
cutoff = 2.5

[run]
workers = 4
timeout = "90s"
`

func write(Te *testing.T, content string) string {
	fname := filepath.Join(Te.TempDir(), "settings.toml")
	require.NoError(Te, os.WriteFile(fname, []byte(content), 0o644))
	return fname
}

func TestLoadFile(Te *testing.T) {
	L := NewLoader()
	fname := write(Te, settings)
	c, err := L.Load(fname)
	require.NoError(Te, err)
	assert.Equal(Te, fname, L.Used())
	assert.Equal(Te, pbsa.RadiusLJ, c.Radius.Policy)
	assert.Equal(Te, pbsa.MeshPadded, c.Mesh.Policy)
	assert.Equal(Te, 3, c.Mesh.Levels)
	assert.Equal(Te, 310.0, c.PB.Temperature)
	assert.Equal(Te, 80.0, c.PB.SDie)
	require.Len(Te, c.PB.Ions, 1)
	assert.Equal(Te, pbsa.Ion{Charge: 2, Conc: 0.05, Radius: 1}, c.PB.Ions[0])
	assert.Equal(Te, 2.5, c.CutoffNm())
	assert.Equal(Te, 4, c.Run.Workers)
	assert.Equal(Te, 90*time.Second, c.Run.Timeout)

	//untouched keys keep their defaults
	d := pbsa.DefaultConfig()
	assert.Equal(Te, d.PB.PDie, c.PB.PDie)
	assert.Equal(Te, d.SA, c.SA)
	assert.Equal(Te, d.Programs, c.Programs)
	assert.True(Te, c.Analysis.Entropy)
}

func TestDefaults(Te *testing.T) {
	wd, err := os.Getwd()
	require.NoError(Te, err)
	require.NoError(Te, os.Chdir(Te.TempDir()))
	Te.Cleanup(func() { os.Chdir(wd) })
	L := NewLoader()
	c, err := L.Load("")
	require.NoError(Te, err)
	assert.Equal(Te, "", L.Used())
	d := pbsa.DefaultConfig()
	assert.Equal(Te, &d, c)
}

func TestEnvironment(Te *testing.T) {
	Te.Setenv("GOPBSA_PB_TEMPERATURE", "300")
	Te.Setenv("GOPBSA_ANALYSIS_ENTROPY", "false")
	Te.Setenv("GOPBSA_PROGRAMS_APBS", "/opt/apbs/bin/apbs")
	c, err := Load(write(Te, settings))
	require.NoError(Te, err)
	assert.Equal(Te, 300.0, c.PB.Temperature)
	assert.False(Te, c.Analysis.Entropy)
	assert.Equal(Te, "/opt/apbs/bin/apbs", c.Programs.APBS)
}

func TestFlagsWin(Te *testing.T) {
	L := NewLoader()
	L.Viper().Set("run.workers", 8)
	c, err := L.Load(write(Te, settings))
	require.NoError(Te, err)
	assert.Equal(Te, 8, c.Run.Workers)
}

func TestLoadErrors(Te *testing.T) {
	_, err := Load(filepath.Join(Te.TempDir(), "missing.toml"))
	assert.Error(Te, err)

	_, err = Load(write(Te, "[mesh]\npolicy = \"C\"\n"))
	assert.Error(Te, err)

	_, err = Load(write(Te, "[run]\nworkers = 0\n"))
	assert.Error(Te, err)

	_, err = Load(write(Te, "[pb\ntemperature = "))
	assert.Error(Te, err)
}

func TestWriteDefault(Te *testing.T) {
	fname := filepath.Join(Te.TempDir(), "settings.toml")
	require.NoError(Te, WriteDefault(fname))
	c, err := Load(fname)
	require.NoError(Te, err)
	d := pbsa.DefaultConfig()
	assert.Equal(Te, &d, c)
	assert.Error(Te, WriteDefault(fname))
}
