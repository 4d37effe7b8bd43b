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

// Package config builds a pbsa.Config from a TOML settings file, GOPBSA_*
// environment variables and command line flags, in increasing order of
// precedence. Unset keys take the values of pbsa.DefaultConfig.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"

	pbsa "github.com/rmera/gopbsa"
)

const (
	envPrefix = "GOPBSA"
	fileName  = "settings"
	fileType  = "toml"
)

// Loader wraps a viper instance with the gopbsa defaults and search paths.
// Flags can be bound to it (through Viper) before calling Load.
type Loader struct {
	v    *viper.Viper
	used string
}

// NewLoader returns a loader with every key set to its default.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, pbsa.DefaultConfig())
	return &Loader{v: v}
}

func setDefaults(v *viper.Viper, d pbsa.Config) {
	v.SetDefault("radius.policy", string(d.Radius.Policy))
	v.SetDefault("radius.default", d.Radius.Default)

	v.SetDefault("mesh.policy", string(d.Mesh.Policy))
	v.SetDefault("mesh.coarse_factor", d.Mesh.CoarseFactor)
	v.SetDefault("mesh.fine_padding", d.Mesh.FinePadding)
	v.SetDefault("mesh.spacing", d.Mesh.Spacing)
	v.SetDefault("mesh.levels", d.Mesh.Levels)

	v.SetDefault("pb.temperature", d.PB.Temperature)
	v.SetDefault("pb.pdie", d.PB.PDie)
	v.SetDefault("pb.sdie", d.PB.SDie)
	v.SetDefault("pb.equation", d.PB.Equation)
	v.SetDefault("pb.bcfl", d.PB.Bcfl)
	v.SetDefault("pb.srfm", d.PB.Srfm)
	v.SetDefault("pb.chgm", d.PB.Chgm)
	v.SetDefault("pb.srad", d.PB.SRad)
	v.SetDefault("pb.swin", d.PB.SWin)
	v.SetDefault("pb.sdens", d.PB.SDens)
	ions := make([]map[string]interface{}, 0, len(d.PB.Ions))
	for _, i := range d.PB.Ions {
		ions = append(ions, map[string]interface{}{"charge": i.Charge, "conc": i.Conc, "radius": i.Radius})
	}
	v.SetDefault("pb.ions", ions)

	v.SetDefault("sa.gamma", d.SA.Gamma)
	v.SetDefault("sa.const", d.SA.Const)
	v.SetDefault("sa.srfm", d.SA.Srfm)
	v.SetDefault("sa.srad", d.SA.SRad)
	v.SetDefault("sa.swin", d.SA.SWin)
	v.SetDefault("sa.sdens", d.SA.SDens)
	v.SetDefault("sa.dpos", d.SA.DPos)
	v.SetDefault("sa.grid", d.SA.Grid)

	v.SetDefault("mm.debye_huckel", d.MM.DebyeHuckel)
	v.SetDefault("mm.cutoff", d.MM.Cutoff)

	v.SetDefault("analysis.entropy", d.Analysis.Entropy)
	v.SetDefault("analysis.ki_scale", d.Analysis.KiScale)

	v.SetDefault("run.workers", d.Run.Workers)
	v.SetDefault("run.preserve", d.Run.Preserve)
	v.SetDefault("run.timeout", d.Run.Timeout)
	v.SetDefault("run.workdir", d.Run.WorkDir)

	v.SetDefault("programs.gmx", d.Programs.Gmx)
	v.SetDefault("programs.apbs", d.Programs.APBS)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Viper returns the underlying viper instance.
func (L *Loader) Viper() *viper.Viper { return L.v }

// Used returns the settings file read by the last Load, or "" if none was.
func (L *Loader) Used() string { return L.used }

// Load reads the settings file fname. If fname is empty, settings.toml is
// searched for in the working directory and in $GOPBSA_HOME, and it is not
// an error if there is none. The result is validated.
func (L *Loader) Load(fname string) (*pbsa.Config, error) {
	v := L.v
	if fname != "" {
		v.SetConfigFile(fname)
	} else {
		v.SetConfigName(fileName)
		v.AddConfigPath(".")
		if home := os.Getenv(envPrefix + "_HOME"); home != "" {
			v.AddConfigPath(home)
		}
	}
	L.used = ""
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if fname != "" || !errors.As(err, &nf) {
			return nil, pbsa.NewError("can't read settings: "+err.Error(), fname, "Load")
		}
	} else {
		L.used = v.ConfigFileUsed()
	}
	cfg := new(pbsa.Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, pbsa.NewError("can't decode settings: "+err.Error(), L.used, "Load")
	}
	cfg.Mesh.Policy = pbsa.MeshPolicy(strings.ToUpper(string(cfg.Mesh.Policy)))
	cfg.Radius.Policy = pbsa.RadiusPolicy(strings.ToLower(string(cfg.Radius.Policy)))
	if err := cfg.Validate(); err != nil {
		return nil, pbsa.Decorate(err, "Load")
	}
	return cfg, nil
}

// Load is a shortcut for NewLoader().Load(fname).
func Load(fname string) (*pbsa.Config, error) {
	return NewLoader().Load(fname)
}

// WriteDefault writes a settings file with every key at its default value.
// It does not overwrite an existing file.
func WriteDefault(fname string) error {
	L := NewLoader()
	if err := L.v.SafeWriteConfigAs(fname); err != nil {
		return pbsa.NewError("can't write settings: "+err.Error(), fname, "WriteDefault")
	}
	return nil
}
