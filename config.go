/*
 * config.go, part of gopbsa.
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

package pbsa

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RadiusPolicy selects where the atomic radii written to the parameter file,
// and used for the solver and the mesh, come from.
type RadiusPolicy string

const (
	RadiusElement RadiusPolicy = "element" //van der Waals radius of the element
	RadiusLJ      RadiusPolicy = "lj"      //sigma/2 from the Lennard-Jones self term
)

// MeshPolicy selects how solver grids are sized from the atomic extents.
type MeshPolicy string

const (
	MeshPadded MeshPolicy = "A" //fixed padding, point counts snapped to the multigrid stride
	MeshScaled MeshPolicy = "B" //extent scaled by the coarse factor, fine length capped
)

// Ion is a mobile ion species in the implicit solvent.
type Ion struct {
	Charge float64 `mapstructure:"charge"` //e
	Conc   float64 `mapstructure:"conc"`   //mol/L
	Radius float64 `mapstructure:"radius"` //Å
}

type RadiusConfig struct {
	Policy  RadiusPolicy `mapstructure:"policy"`
	Default float64      `mapstructure:"default"` //Å, for LJ types with zero self term
}

type MeshConfig struct {
	Policy       MeshPolicy `mapstructure:"policy"`
	CoarseFactor float64    `mapstructure:"coarse_factor"`
	FinePadding  float64    `mapstructure:"fine_padding"` //Å
	Spacing      float64    `mapstructure:"spacing"`      //Å
	Levels       int        `mapstructure:"levels"`
}

// PBConfig holds the polar (Poisson-Boltzmann) settings passed to the solver.
type PBConfig struct {
	Temperature float64 `mapstructure:"temperature"` //K
	PDie        float64 `mapstructure:"pdie"`
	SDie        float64 `mapstructure:"sdie"`
	Equation    string  `mapstructure:"equation"`
	Bcfl        string  `mapstructure:"bcfl"`
	Srfm        string  `mapstructure:"srfm"`
	Chgm        string  `mapstructure:"chgm"`
	SRad        float64 `mapstructure:"srad"`
	SWin        float64 `mapstructure:"swin"`
	SDens       float64 `mapstructure:"sdens"`
	Ions        []Ion   `mapstructure:"ions"`
}

// SAConfig holds the apolar (surface area) settings. The apolar energy of
// an atom is Gamma*SASA + Const/N, N being the atom count of the system.
type SAConfig struct {
	Gamma float64 `mapstructure:"gamma"` //kJ/mol/Å^2
	Const float64 `mapstructure:"const"` //kJ/mol
	Srfm  string  `mapstructure:"srfm"`
	SRad  float64 `mapstructure:"srad"`
	SWin  float64 `mapstructure:"swin"`
	SDens float64 `mapstructure:"sdens"`
	DPos  float64 `mapstructure:"dpos"`
	Grid  float64 `mapstructure:"grid"`
}

type MMConfig struct {
	DebyeHuckel bool    `mapstructure:"debye_huckel"`
	Cutoff      float64 `mapstructure:"cutoff"` //nm, 0 means no cutoff
}

type AnalysisConfig struct {
	Entropy bool    `mapstructure:"entropy"`
	KiScale float64 `mapstructure:"ki_scale"`
}

type RunConfig struct {
	Workers  int           `mapstructure:"workers"`
	Preserve bool          `mapstructure:"preserve"`
	Timeout  time.Duration `mapstructure:"timeout"`
	WorkDir  string        `mapstructure:"workdir"`
}

type ProgramsConfig struct {
	Gmx  string `mapstructure:"gmx"`
	APBS string `mapstructure:"apbs"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config carries every setting of a run. It is built once and then only
// read: components receive a *Config and never modify it.
type Config struct {
	Radius   RadiusConfig   `mapstructure:"radius"`
	Mesh     MeshConfig     `mapstructure:"mesh"`
	PB       PBConfig       `mapstructure:"pb"`
	SA       SAConfig       `mapstructure:"sa"`
	MM       MMConfig       `mapstructure:"mm"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Run      RunConfig      `mapstructure:"run"`
	Programs ProgramsConfig `mapstructure:"programs"`
	Log      LogConfig      `mapstructure:"log"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Radius: RadiusConfig{Policy: RadiusElement, Default: 1.2},
		Mesh: MeshConfig{
			Policy:       MeshScaled,
			CoarseFactor: 3.0,
			FinePadding:  10.0,
			Spacing:      0.5,
			Levels:       4,
		},
		PB: PBConfig{
			Temperature: 298.15,
			PDie:        2,
			SDie:        78.54,
			Equation:    "npbe",
			Bcfl:        "mdh",
			Srfm:        "smol",
			Chgm:        "spl4",
			SRad:        1.4,
			SWin:        0.3,
			SDens:       10,
			Ions: []Ion{
				{Charge: 1, Conc: 0.15, Radius: 0.95},
				{Charge: -1, Conc: 0.15, Radius: 1.81},
			},
		},
		SA: SAConfig{
			Gamma: 0.0226778,
			Const: 3.84928,
			Srfm:  "sacc",
			SRad:  1.4,
			SWin:  0.3,
			SDens: 10,
			DPos:  0.2,
			Grid:  0.1,
		},
		MM:       MMConfig{DebyeHuckel: true},
		Analysis: AnalysisConfig{Entropy: true, KiScale: 1e9},
		Run:      RunConfig{Workers: 1, Preserve: true, WorkDir: "."},
		Programs: ProgramsConfig{Gmx: "gmx", APBS: "apbs"},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// CutoffNm returns the MM distance cutoff in nm, +Inf if there is none.
func (c *Config) CutoffNm() float64 {
	if c.MM.Cutoff <= 0 {
		return math.Inf(1)
	}
	return c.MM.Cutoff
}

// Validate returns an error describing every invalid setting in c, or nil.
func (c *Config) Validate() error {
	var bad []string
	add := func(f string, args ...interface{}) { bad = append(bad, fmt.Sprintf(f, args...)) }
	switch c.Radius.Policy {
	case RadiusElement, RadiusLJ:
	default:
		add("radius.policy must be %q or %q, not %q", RadiusElement, RadiusLJ, c.Radius.Policy)
	}
	if c.Radius.Default <= 0 {
		add("radius.default must be positive")
	}
	switch c.Mesh.Policy {
	case MeshPadded, MeshScaled:
	default:
		add("mesh.policy must be %q or %q, not %q", MeshPadded, MeshScaled, c.Mesh.Policy)
	}
	if c.Mesh.CoarseFactor < 1 {
		add("mesh.coarse_factor must be >= 1")
	}
	if c.Mesh.Spacing <= 0 {
		add("mesh.spacing must be positive")
	}
	if c.Mesh.FinePadding < 0 {
		add("mesh.fine_padding can't be negative")
	}
	if c.Mesh.Levels < 1 || c.Mesh.Levels > 10 {
		add("mesh.levels must be between 1 and 10")
	}
	if c.PB.Temperature <= 0 {
		add("pb.temperature must be positive")
	}
	if c.PB.PDie <= 0 || c.PB.SDie <= 0 {
		add("pb.pdie and pb.sdie must be positive")
	}
	for i, ion := range c.PB.Ions {
		if ion.Conc < 0 || ion.Radius < 0 {
			add("pb.ions[%d]: negative concentration or radius", i)
		}
	}
	if c.MM.Cutoff < 0 {
		add("mm.cutoff can't be negative")
	}
	if c.Analysis.KiScale <= 0 {
		add("analysis.ki_scale must be positive")
	}
	if c.Run.Workers < 1 {
		add("run.workers must be at least 1")
	}
	if c.Run.Timeout < 0 {
		add("run.timeout can't be negative")
	}
	if c.Programs.APBS == "" {
		add("programs.apbs can't be empty")
	}
	if len(bad) > 0 {
		return NewError("invalid configuration: "+strings.Join(bad, "; "), "", "Validate")
	}
	return nil
}
