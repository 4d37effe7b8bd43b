/*
 * prepare.go, part of gopbsa.
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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/logging"
	"github.com/rmera/gopbsa/ndx"
	"github.com/rmera/gopbsa/qrv"
	"github.com/rmera/gopbsa/top"
)

// systemInput names the files that define a receptor-ligand system.
type systemInput struct {
	topology string //.tpr, or the text dump of one (possibly .zst)
	index    string
	receptor string
	ligand   string
	name     string
}

func (in *systemInput) flags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&in.topology, "topology", "s", "", "run input (.tpr) or its gmx dump output")
	f.StringVarP(&in.index, "index", "n", "index.ndx", "GROMACS index file")
	f.StringVarP(&in.receptor, "receptor", "r", "", "receptor group, by name or number")
	f.StringVarP(&in.ligand, "ligand", "l", "", "ligand group, by name or number")
	f.StringVar(&in.name, "name", "complex", "system name, used for the output files")
	f.String("workdir", ".", "working directory")
	f.String("gmx", "gmx", "GROMACS executable")
	f.String("radius", "element", "radius policy (element, lj)")
	cmd.MarkFlagRequired("topology")
	cmd.MarkFlagRequired("receptor")
	cmd.MarkFlagRequired("ligand")
}

// dumpName returns the name of the text dump of the topology tpr in dir.
func dumpName(tpr, dir string) string {
	base := strings.TrimSuffix(filepath.Base(tpr), filepath.Ext(tpr))
	return filepath.Join(dir, base+"_dump.txt")
}

// dumpTPR runs "gmx dump" on tpr and stores the output in dir. A dump newer
// than tpr is reused.
func dumpTPR(ctx context.Context, gmx, tpr, dir string, l logging.Logger) (string, error) {
	out := dumpName(tpr, dir)
	tst, err := os.Stat(tpr)
	if err != nil {
		return "", pbsa.NewError(err.Error(), tpr, "dumpTPR")
	}
	if dst, err := os.Stat(out); err == nil && dst.ModTime().After(tst.ModTime()) {
		l.Debug("reusing topology dump", logging.String("file", out))
		return out, nil
	}
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, gmx, "dump", "-s", tpr)
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndex(msg, "\n"); i >= 0 {
			msg = msg[i+1:]
		}
		return "", pbsa.NewError(fmt.Sprintf("%s dump failed: %v %s", gmx, err, msg), tpr, "dumpTPR")
	}
	if err := os.WriteFile(out, stdout.Bytes(), 0o644); err != nil {
		return "", pbsa.NewError(err.Error(), out, "dumpTPR")
	}
	l.Info("topology dumped", logging.String("file", out))
	return out, nil
}

// system is a prepared receptor-ligand system.
type system struct {
	dump  string
	table *qrv.Table
	topo  *top.Topology //nil unless it had to be parsed
	sel   *ndx.Selection
}

// parse parses the topology dump once.
func (s *system) parse(rc pbsa.RadiusConfig) (*top.Topology, error) {
	if s.topo != nil {
		return s.topo, nil
	}
	D, err := top.ReadDump(s.dump)
	if err != nil {
		return nil, err
	}
	s.topo, err = top.Parse(D, rc)
	return s.topo, err
}

// gateKey identifies the selection and radius settings a parameter file was
// built with. The atoms of both groups are part of it, so editing the index
// file forces a new table even when the group names stay the same.
func gateKey(rec, lig *ndx.Group, rc pbsa.RadiusConfig) string {
	var b strings.Builder
	for _, G := range []*ndx.Group{rec, lig} {
		at := append([]int(nil), G.Atoms...)
		sort.Ints(at)
		fmt.Fprintf(&b, "%s%v|", G.Name, at)
	}
	fmt.Fprintf(&b, "%s|%g", rc.Policy, rc.Default)
	return b.String()
}

// prepare obtains the topology dump, selects the groups and returns the
// parameter table, regenerating the stored one only if its inputs changed.
func (A *app) prepare(ctx context.Context, in *systemInput) (*system, error) {
	dir := A.cfg.Run.WorkDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pbsa.NewError(err.Error(), dir, "prepare")
	}
	s := &system{dump: in.topology}
	if strings.EqualFold(filepath.Ext(in.topology), ".tpr") {
		var err error
		if s.dump, err = dumpTPR(ctx, A.cfg.Programs.Gmx, in.topology, dir, A.log); err != nil {
			return nil, pbsa.Decorate(err, "prepare")
		}
	}
	I, err := ndx.Read(in.index)
	if err != nil {
		return nil, pbsa.Decorate(err, "prepare")
	}
	rec, err := I.Group(in.receptor)
	if err != nil {
		return nil, pbsa.Decorate(err, "prepare")
	}
	lig, err := I.Group(in.ligand)
	if err != nil {
		return nil, pbsa.Decorate(err, "prepare")
	}
	G := qrv.Gate{
		Source: s.dump,
		Params: filepath.Join(dir, in.name+".qrv"),
		Key:    gateKey(rec, lig, A.cfg.Radius),
	}
	T, st, err := qrv.Ensure(G, func() (*qrv.Table, error) {
		tp, err := s.parse(A.cfg.Radius)
		if err != nil {
			return nil, err
		}
		if s.sel, err = ndx.NewSelection(rec, lig, tp.NAtoms()); err != nil {
			return nil, err
		}
		return qrv.Build(tp.System(), tp.NB, s.sel)
	})
	if err != nil {
		return nil, pbsa.Decorate(err, "prepare")
	}
	if st.Fresh {
		A.log.Info("parameter file up to date", logging.String("file", G.Params))
	} else {
		A.log.Info("parameter file written", logging.String("file", G.Params), logging.String("reason", st.Reason))
	}
	if s.sel == nil {
		if s.sel, err = ndx.NewSelection(rec, lig, 0); err != nil {
			return nil, pbsa.Decorate(err, "prepare")
		}
	}
	s.table = T
	return s, nil
}

func newQrvCommand(A *app) *cobra.Command {
	in := new(systemInput)
	cmd := &cobra.Command{
		Use:   "qrv",
		Short: "Write the parameter file (charges, radii, LJ types) of a system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := A.prepare(cmd.Context(), in)
			if err != nil {
				return err
			}
			rec, lig := s.table.Split()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d receptor atoms (%s), %d ligand atoms (%s), %d residues\n",
				in.name, len(rec), s.table.RecLabel, len(lig), s.table.LigLabel, len(s.table.Residues))
			return nil
		},
	}
	in.flags(cmd)
	return cmd
}
