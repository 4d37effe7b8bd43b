/*
 * root.go, part of gopbsa.
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
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/config"
	"github.com/rmera/gopbsa/logging"
)

// Set with -ldflags at build time.
var version = "dev"

// flagKeys maps command line flags to the settings they override.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"workers":    "run.workers",
	"preserve":   "run.preserve",
	"timeout":    "run.timeout",
	"workdir":    "run.workdir",
	"gmx":        "programs.gmx",
	"apbs":       "programs.apbs",
	"radius":     "radius.policy",
	"mesh":       "mesh.policy",
	"temp":       "pb.temperature",
	"no-entropy": "analysis.entropy",
}

// app holds what every command needs once the settings are loaded.
type app struct {
	configFile string
	loader     *config.Loader
	cfg        *pbsa.Config
	log        logging.Logger
	runID      string
}

// bindFlags makes the flags of fs that map to a setting override it. Only
// flags that were set on the command line take precedence over the file.
func bindFlags(L *config.Loader, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if name == "no-entropy" {
			if f.Changed {
				L.Viper().Set(key, f.Value.String() != "true")
			}
			continue
		}
		if err := L.Viper().BindPFlag(key, f); err != nil {
			return pbsa.NewError(err.Error(), "", "bindFlags")
		}
	}
	return nil
}

// setup loads the settings, with the flags of cmd on top, and builds the
// logger.
func (A *app) setup(cmd *cobra.Command) error {
	A.loader = config.NewLoader()
	if err := bindFlags(A.loader, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := A.loader.Load(A.configFile)
	if err != nil {
		return err
	}
	A.cfg = cfg
	A.runID = uuid.New().String()
	l, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	A.log = l.With(logging.Run(A.runID))
	if used := A.loader.Used(); used != "" {
		A.log.Debug("settings read", logging.String("file", used))
	}
	return nil
}

func newRootCommand() *cobra.Command {
	A := &app{log: logging.Nop()}
	root := &cobra.Command{
		Use:   "gopbsa",
		Short: "MM-PBSA binding free energies with per-residue decomposition",
		Long: `gopbsa estimates the binding free energy between a receptor and a ligand
from a molecular dynamics trajectory, as the sum of the gas-phase interaction
energy (MM), the polar solvation energy from the Poisson-Boltzmann equation,
solved with APBS (PB), and the apolar solvation energy (SA), minus an
entropy term from the fluctuations of MM. Every term is decomposed per residue.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "settings" {
				return nil
			}
			return A.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			A.log.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&A.configFile, "config", "c", "", "settings file (default: settings.toml in . or $GOPBSA_HOME)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")

	root.AddCommand(
		newRunCommand(A),
		newQrvCommand(A),
		newGroupsCommand(),
		newSettingsCommand(),
	)
	return root
}
