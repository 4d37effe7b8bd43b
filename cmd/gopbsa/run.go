/*
 * run.go, part of gopbsa.
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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/apbs"
	"github.com/rmera/gopbsa/logging"
	"github.com/rmera/gopbsa/metrics"
	"github.com/rmera/gopbsa/pipeline"
	"github.com/rmera/gopbsa/report"
	"github.com/rmera/gopbsa/results"
)

type runInput struct {
	systemInput
	traj     string
	begin    float64 //ns
	end      float64 //ns
	interval float64 //ns
	frameDt  float64 //ps
	compress bool
	plots    string
	topRes   int
}

func newRunCommand(A *app) *cobra.Command {
	in := new(runInput)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute binding energies over a trajectory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return A.run(cmd.Context(), in, cmd)
		},
	}
	in.flags(cmd)
	f := cmd.Flags()
	f.StringVarP(&in.traj, "traj", "f", "", "trajectory (dcd, stf)")
	f.Float64VarP(&in.begin, "begin", "b", 0, "first time to analyze (ns)")
	f.Float64VarP(&in.end, "end", "e", 0, "last time to analyze (ns), 0 for the whole trajectory")
	f.Float64Var(&in.interval, "dt", pipeline.DefaultInterval/1000, "time between analyzed frames (ns)")
	f.Float64Var(&in.frameDt, "frame-dt", 0, "time between trajectory frames (ps), read from the topology if 0")
	f.BoolVar(&in.compress, "zst", false, "compress the tables with zstd")
	f.StringVar(&in.plots, "plots", "png", "plot format (png, svg, pdf), empty for no plots")
	f.IntVar(&in.topRes, "top-residues", 20, "residues in the residue plot")
	f.Int("workers", 1, "frames solved at the same time")
	f.Bool("preserve", true, "keep the solver files of every frame")
	f.Duration("timeout", 0, "time limit for each solver run, 0 for none")
	f.String("apbs", "apbs", "APBS executable")
	f.String("mesh", "B", "mesh policy (A, B)")
	f.Float64("temp", 298.15, "temperature (K)")
	f.Bool("no-entropy", false, "don't estimate the entropy term")
	cmd.MarkFlagRequired("traj")
	return cmd
}

// frameStep returns the time between trajectory frames in ps.
func frameStep(in *runInput, s *system, rc pbsa.RadiusConfig) (float64, error) {
	if in.frameDt > 0 {
		return in.frameDt, nil
	}
	tp, err := s.parse(rc)
	if err != nil {
		return 0, err
	}
	if step := tp.Params.FrameStep(); step > 0 {
		return step, nil
	}
	return 0, pbsa.NewError("the topology doesn't give the time between frames, use --frame-dt", s.dump, "frameStep")
}

func (A *app) run(ctx context.Context, in *runInput, cmd *cobra.Command) error {
	start := time.Now()
	cfg := A.cfg
	s, err := A.prepare(ctx, &in.systemInput)
	if err != nil {
		return err
	}
	step, err := frameStep(in, s, cfg.Radius)
	if err != nil {
		return pbsa.Decorate(err, "run")
	}
	traj, err := pipeline.OpenTrajectory(in.traj)
	if err != nil {
		return pbsa.Decorate(err, "run")
	}
	if c, ok := traj.(interface{ Close() }); ok {
		defer c.Close()
	}
	M := metrics.New(A.runID)
	P, err := pipeline.New(cfg, s.table, apbs.NewHandle(cfg), pipeline.WithLogger(A.log), pipeline.WithMetrics(M))
	if err != nil {
		return pbsa.Decorate(err, "run")
	}
	W := pipeline.Window{Begin: in.begin * 1000, End: in.end * 1000, Interval: in.interval * 1000}
	A.log.Info("run started",
		logging.String("trajectory", in.traj), logging.Float64("frame_step_ps", step),
		logging.Int("workers", cfg.Run.Workers), logging.String("mesh", string(cfg.Mesh.Policy)))
	out, err := P.Run(ctx, traj, W, step, filepath.Join(cfg.Run.WorkDir, in.name))
	if err != nil {
		A.log.Error("run failed", logging.Err(err))
		return err
	}
	if out.Acc.Len() == 0 {
		return pbsa.NewError("no frame in the selected time window", in.traj, "run")
	}
	S, err := out.Acc.Summary(cfg.PB.Temperature, cfg.Analysis.Entropy, cfg.Analysis.KiScale)
	if err != nil {
		return pbsa.Decorate(err, "run")
	}
	if err := A.export(in, s, S, out, M); err != nil {
		return err
	}
	if err := report.WriteSummary(cmd.OutOrStdout(), S, cfg.Analysis.KiScale); err != nil {
		return pbsa.Decorate(err, "run")
	}
	A.log.Info("run finished",
		logging.Int("frames", len(S.Frames)), logging.Float64("dH", S.Mean.H),
		logging.Float64("dG", S.G), logging.Duration("elapsed", time.Since(start)))
	return nil
}

// export writes the tables, the PDB file, the plots and the metrics.
func (A *app) export(in *runInput, s *system, S *results.Summary, out *pipeline.Output, M *metrics.Metrics) error {
	dir := A.cfg.Run.WorkDir
	F := report.Names(in.name, in.compress)
	if err := report.WriteAll(dir, F, S, A.cfg.Analysis.KiScale); err != nil {
		return pbsa.Decorate(err, "export")
	}
	pdb := filepath.Join(dir, "MMPBSA_"+in.name+".pdb")
	f, err := os.Create(pdb)
	if err != nil {
		return pbsa.NewError(err.Error(), pdb, "export")
	}
	err = report.WritePDB(f, out.First, s.table, S)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = pbsa.NewError(cerr.Error(), pdb, "export")
	}
	if err != nil {
		return pbsa.Decorate(err, "export")
	}
	if in.plots != "" {
		base := filepath.Join(dir, "MMPBSA_"+in.name)
		if err := report.PlotTrajectory(fmt.Sprintf("%s_traj.%s", base, in.plots), S); err != nil {
			return pbsa.Decorate(err, "export")
		}
		if err := report.PlotResidues(fmt.Sprintf("%s_res.%s", base, in.plots), S, in.topRes); err != nil {
			return pbsa.Decorate(err, "export")
		}
	}
	prom := filepath.Join(dir, in.name+".prom")
	if err := M.WriteFile(prom); err != nil {
		A.log.Warn("metrics not written", logging.Err(err))
	}
	A.log.Info("results written", logging.String("summary", filepath.Join(dir, F.Summary)), logging.String("pdb", pdb))
	return nil
}
