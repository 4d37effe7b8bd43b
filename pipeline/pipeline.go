/*
 * pipeline.go, part of gopbsa.
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

/*
Package pipeline runs the per-frame part of a calculation. Frames are read
in trajectory order, the selected ones are handed to a pool of workers
(MM energy, grids and solver) and a single aggregator collects the results.

Every frame gets its own working directory, frame_NNNNNN, under the run
working directory, so workers never share files.
*/
package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	chem "github.com/rmera/gochem"
	"github.com/rmera/gochem/traj/dcd"
	"github.com/rmera/gochem/traj/stf"
	v3 "github.com/rmera/gochem/v3"
	"golang.org/x/sync/errgroup"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/apbs"
	"github.com/rmera/gopbsa/logging"
	"github.com/rmera/gopbsa/mesh"
	"github.com/rmera/gopbsa/metrics"
	"github.com/rmera/gopbsa/mm"
	"github.com/rmera/gopbsa/qrv"
	"github.com/rmera/gopbsa/results"
)

// Stage names, used in errors and metrics.
const (
	StageRead   = "read"
	StageMM     = "mm"
	StageMesh   = "mesh"
	StageSolver = "solver"
)

// DefaultInterval is the time between analyzed frames, in ps, when nothing
// else is requested.
const DefaultInterval = 1000.0

// OpenTrajectory opens fname with the goChem reader matching its extension:
// dcd, or stf (and its stz/stl variants). Coordinates come in Å.
func OpenTrajectory(fname string) (chem.Traj, error) {
	ext := strings.ToLower(filepath.Ext(fname))
	switch ext {
	case ".dcd":
		t, err := dcd.New(fname)
		if err != nil {
			return nil, pbsa.NewError(err.Error(), fname, "OpenTrajectory")
		}
		return t, nil
	case ".stf", ".stz", ".stl":
		t, _, err := stf.New(fname)
		if err != nil {
			return nil, pbsa.NewError(err.Error(), fname, "OpenTrajectory")
		}
		return t, nil
	case ".xtc", ".trr":
		return nil, pbsa.NewError("GROMACS trajectories must be converted to dcd first (e.g. with mdconvert or catdcd)", fname, "OpenTrajectory")
	}
	return nil, pbsa.NewError(fmt.Sprintf("unknown trajectory format %q", ext), fname, "OpenTrajectory")
}

// Window selects frames by time, in ps. A frame at time t is selected if
// Begin <= t <= End and t-Begin is a multiple of Interval. End <= 0 means no
// upper limit. An Interval not larger than the time between frames selects
// every frame.
type Window struct {
	Begin    float64
	End      float64
	Interval float64
}

// tolerance for comparing frame times, in ps.
const tolerance = 1e-6

// Selected returns whether the frame at time t is selected, when frames are
// step ps apart.
func (W Window) Selected(t, step float64) bool {
	if t < W.Begin-tolerance {
		return false
	}
	if W.End > 0 && t > W.End+tolerance {
		return false
	}
	if W.Interval <= step+tolerance {
		return true
	}
	n := (t - W.Begin) / W.Interval
	return math.Abs(n-math.Round(n))*W.Interval < tolerance
}

// Past returns whether t is after the end of the window.
func (W Window) Past(t float64) bool {
	return W.End > 0 && t > W.End+tolerance
}

// FrameError is the error of a frame that could not be processed.
type FrameError struct {
	Frame int
	Time  float64 //ps
	Stage string
	Err   error
	deco  []string
}

func (err *FrameError) Error() string {
	return fmt.Sprintf("frame %d (%g ps), %s: %v", err.Frame, err.Time, err.Stage, err.Err)
}

func (err *FrameError) Unwrap() error { return err.Err }

// Decorate adds dec to the decoration trail and returns the trail, which
// starts with the trail of the wrapped error.
func (err *FrameError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return append(pbsa.Trail(err.Err), err.deco...)
}

// Critical always returns true.
func (err *FrameError) Critical() bool { return true }

// Option sets optional collaborators of a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(P *Pipeline) { P.log = l }
}

// WithMetrics sets the metrics recorder. The default discards everything.
func WithMetrics(r metrics.Recorder) Option {
	return func(P *Pipeline) { P.rec = r }
}

// Pipeline processes the frames of one receptor-ligand system. It can be
// used for several runs, but not for several concurrent ones.
type Pipeline struct {
	cfg     *pbsa.Config
	table   *qrv.Table
	engine  *mm.Engine
	planner *mesh.Planner
	solver  apbs.Client
	rows    [3][]int
	radii   []float64
	log     logging.Logger
	rec     metrics.Recorder
	pending atomic.Int64
}

// New returns a pipeline for the atoms in T, solving with solver. cfg is
// only read.
func New(cfg *pbsa.Config, T *qrv.Table, solver apbs.Client, opts ...Option) (*Pipeline, error) {
	rec, lig := T.Split()
	if len(rec) == 0 || len(lig) == 0 {
		return nil, &pbsa.GeometryError{Group: T.RecLabel + "/" + T.LigLabel, Msg: "receptor and ligand need at least one atom each"}
	}
	if T.NB == nil {
		return nil, pbsa.NewError("parameter table without Lennard-Jones parameters", "", "pipeline.New")
	}
	com := make([]int, len(T.Atoms))
	for i := range com {
		com[i] = i
	}
	var kappa float64
	if cfg.MM.DebyeHuckel {
		kappa = mm.Kappa(cfg.PB.Ions, cfg.PB.Temperature, cfg.PB.SDie)
	}
	P := &Pipeline{
		cfg:   cfg,
		table: T,
		engine: mm.NewEngine(mm.Params{
			Charges:    T.Charges(),
			Types:      T.Types(),
			Residues:   T.ResidueOf(),
			NRes:       len(T.Residues),
			NB:         T.NB,
			Dielectric: cfg.PB.PDie,
			Debye:      cfg.MM.DebyeHuckel,
			Kappa:      kappa,
			Cutoff:     cfg.CutoffNm(),
		}),
		planner: mesh.NewPlanner(cfg.Mesh),
		solver:  solver,
		rows:    [3][]int{com, rec, lig},
		radii:   T.Radii(),
		log:     logging.Nop(),
		rec:     metrics.Nop(),
	}
	for _, o := range opts {
		o(P)
	}
	P.log.Debug("pipeline ready",
		logging.Int("atoms", len(com)), logging.Int("receptor", len(rec)),
		logging.Int("ligand", len(lig)), logging.Float64("kappa", kappa))
	return P, nil
}

// Rows returns the table rows of the complex, the receptor and the ligand.
func (P *Pipeline) Rows() [3][]int { return P.rows }

// Output is the result of a run.
type Output struct {
	Acc   *results.Accumulator
	First *v3.Matrix //table-row coordinates (nm) of the first analyzed frame
	Read  int        //frames read from the trajectory, selected or not
}

// frame is one selected frame on its way to a worker.
type frame struct {
	index  int
	time   float64
	coords *v3.Matrix
}

// extract copies the table atoms out of a full system frame in Å, returning
// their coordinates in nm.
func (P *Pipeline) extract(full *v3.Matrix) *v3.Matrix {
	c := v3.Zeros(len(P.table.Atoms))
	for i, a := range P.table.Atoms {
		for j := 0; j < 3; j++ {
			c.Set(i, j, full.At(a.Index, j)*pbsa.A2Nm)
		}
	}
	return c
}

// Run reads traj until its end (or the end of W), with frames step ps
// apart, and processes the selected frames with cfg.Run.Workers workers.
// The frame directories are created under dir. The first error of any frame,
// or of adding a frame to the results, stops the run and is returned.
func (P *Pipeline) Run(ctx context.Context, traj chem.Traj, W Window, step float64, dir string) (*Output, error) {
	if step <= 0 {
		return nil, pbsa.NewError("the time between frames must be positive", "", "Pipeline.Run")
	}
	maxIndex := 0
	for _, a := range P.table.Atoms {
		if a.Index > maxIndex {
			maxIndex = a.Index
		}
	}
	if traj.Len() <= maxIndex {
		return nil, &pbsa.GeometryError{Atoms: []int{maxIndex}, Msg: fmt.Sprintf("the trajectory has only %d atoms", traj.Len())}
	}
	out := &Output{Acc: results.NewAccumulator(P.table, P.rows)}
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan *results.Frame)
	aggErr := make(chan error, 1)
	go func() {
		var err error
		for f := range done {
			if err != nil {
				continue
			}
			if err = out.Acc.Add(f); err != nil {
				//stop the workers
				cancel()
				continue
			}
			P.rec.FrameDone()
		}
		aggErr <- err
	}()

	workers := P.cfg.Run.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(rctx)
	g.SetLimit(workers)
	readErr := P.read(gctx, g, traj, W, step, dir, out, done)
	werr := g.Wait()
	close(done)
	//an aggregation error cancels the workers, so it comes before theirs
	err := <-aggErr
	if err == nil {
		err = werr
	}
	if err == nil {
		err = readErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, pbsa.Decorate(err, "Pipeline.Run")
	}
	P.log.Info("frames processed", logging.Int("read", out.Read), logging.Int("analyzed", out.Acc.Len()))
	return out, nil
}

// read is the reading loop of Run. Each selected frame is given to a
// worker in g, which sends its result to done.
func (P *Pipeline) read(ctx context.Context, g *errgroup.Group, traj chem.Traj, W Window, step float64, dir string, out *Output, done chan<- *results.Frame) error {
	full := v3.Zeros(traj.Len())
	for i := 0; ; i++ {
		if ctx.Err() != nil {
			return nil
		}
		t := float64(i) * step
		if W.Past(t) {
			return nil
		}
		sel := W.Selected(t, step)
		var err error
		if sel {
			err = traj.Next(full)
		} else {
			err = traj.Next(nil)
		}
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				return nil
			}
			P.rec.FrameFailed(StageRead)
			return &FrameError{Frame: i, Time: t, Stage: StageRead, Err: err}
		}
		out.Read++
		if !sel {
			continue
		}
		f := &frame{index: i, time: t, coords: P.extract(full)}
		if out.First == nil {
			out.First = f.coords
		}
		P.rec.SetPending(int(P.pending.Add(1)))
		g.Go(func() error {
			defer func() { P.rec.SetPending(int(P.pending.Add(-1))) }()
			r, err := P.Frame(ctx, f.index, f.time, f.coords, dir)
			if err != nil {
				return err
			}
			select {
			case done <- r:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
}

// Frame processes one frame, with coords (nm) in table-row order, using the
// directory dir/frame_NNNNNN for the solver files.
func (P *Pipeline) Frame(ctx context.Context, index int, t float64, coords *v3.Matrix, dir string) (*results.Frame, error) {
	l := P.log.With(logging.Frame(index), logging.TimePs(t))
	fail := func(stage string, err error) error {
		P.rec.FrameFailed(stage)
		ferr := &FrameError{Frame: index, Time: t, Stage: stage, Err: err}
		l.Error("frame failed", logging.String("stage", stage), logging.Err(ferr))
		return ferr
	}
	start := time.Now()
	E, err := P.engine.Frame(coords, P.rows[1], P.rows[2])
	if err != nil {
		return nil, fail(StageMM, err)
	}
	P.rec.Observe(StageMM, time.Since(start))

	start = time.Now()
	var grids [3]mesh.Grid
	for k := range grids {
		grids[k], err = P.planner.Plan(coords, P.radii, P.rows[k])
		if err != nil {
			return nil, fail(StageMesh, err)
		}
	}
	P.rec.Observe(StageMesh, time.Since(start))
	l.Debug("grids planned", logging.Any("dime", grids[0].Dime), logging.Float64("memory_mb", grids[0].MemoryMB()))

	start = time.Now()
	job := &apbs.Job{
		Frame:  index,
		Dir:    filepath.Join(dir, fmt.Sprintf("frame_%06d", index)),
		Coords: coords,
		Table:  P.table,
		Rows:   P.rows,
		Grids:  grids,
	}
	S, err := P.solver.Solve(ctx, job)
	if err != nil {
		return nil, fail(StageSolver, err)
	}
	P.rec.Observe(StageSolver, time.Since(start))
	l.Info("frame done", logging.Float64("mm", E.MM()),
		logging.Float64("pb", S[apbs.Com].PB-S[apbs.Rec].PB-S[apbs.Lig].PB),
		logging.Float64("sa", S[apbs.Com].SA-S[apbs.Rec].SA-S[apbs.Lig].SA))
	return &results.Frame{
		Index:      index,
		Time:       t,
		Coulomb:    E.Coulomb,
		VdW:        E.VdW,
		ResCoulomb: E.ResCoulomb,
		ResVdW:     E.ResVdW,
		Solvation:  S,
	}, nil
}
