/*
 * apbs.go, part of gopbsa.
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
Package apbs drives the APBS Poisson-Boltzmann solver: it writes the PQR
files and the input deck for a frame, runs the program and reads the
per-atom polar and apolar energies from its output.

Other solvers (or a remote service) can be used by implementing Client.
*/
package apbs

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/gochem/v3"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/mesh"
	"github.com/rmera/gopbsa/qrv"
)

const (
	deckName = "apbs.in"
	outName  = "apbs.out"
)

// Job is one frame to be solved. Rows index Coords and Table.Atoms.
type Job struct {
	Frame  int
	Dir    string //working directory, unique to the frame
	Coords *v3.Matrix
	Table  *qrv.Table
	Rows   [3][]int //complex, receptor and ligand atoms
	Grids  [3]mesh.Grid
}

// Client solves the polar and apolar solvation energies for a job.
type Client interface {
	Solve(ctx context.Context, job *Job) (*Solvation, error)
}

// Handle runs a local APBS executable.
type Handle struct {
	command  string
	cfg      *pbsa.Config
	timeout  time.Duration
	preserve bool
}

// NewHandle returns a Handle with the executable, timeout and file policy
// taken from cfg.
func NewHandle(cfg *pbsa.Config) *Handle {
	return &Handle{command: cfg.Programs.APBS, cfg: cfg, timeout: cfg.Run.Timeout, preserve: cfg.Run.Preserve}
}

// SetCommand sets the solver executable.
func (H *Handle) SetCommand(c string) { H.command = c }

// BuildInput writes the PQR files and the deck of job into job.Dir.
func (H *Handle) BuildInput(job *Job) error {
	if err := os.MkdirAll(job.Dir, 0o755); err != nil {
		return &pbsa.SolverInvocationError{Frame: job.Frame, File: job.Dir, Msg: "can't create working directory", Err: err}
	}
	for k, name := range SystemNames {
		fname := filepath.Join(job.Dir, name+".pqr")
		f, err := os.Create(fname)
		if err != nil {
			return &pbsa.SolverInvocationError{Frame: job.Frame, Subsystem: name, File: fname, Msg: "can't write PQR file", Err: err}
		}
		err = WritePQR(f, job.Coords, job.Table, job.Rows[k])
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return &pbsa.SolverInvocationError{Frame: job.Frame, Subsystem: name, File: fname, Msg: "can't write PQR file", Err: err}
		}
	}
	fname := filepath.Join(job.Dir, deckName)
	if err := os.WriteFile(fname, []byte(Deck(H.cfg, job.Grids)), 0o644); err != nil {
		return &pbsa.SolverInvocationError{Frame: job.Frame, File: fname, Msg: "can't write input deck", Err: err}
	}
	return nil
}

// Run runs the solver on the deck in job.Dir and waits for it, writing its
// output to apbs.out. A nonzero exit or a timeout is an error.
func (H *Handle) Run(ctx context.Context, job *Job) error {
	if H.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, H.timeout)
		defer cancel()
	}
	oname := filepath.Join(job.Dir, outName)
	out, err := os.Create(oname)
	if err != nil {
		return &pbsa.SolverInvocationError{Frame: job.Frame, File: oname, Msg: "can't create output file", Err: err}
	}
	defer out.Close()
	command := exec.CommandContext(ctx, H.command, deckName)
	command.Dir = job.Dir
	command.Stdout = out
	command.Stderr = out
	err = command.Run()
	if ctx.Err() != nil {
		msg := "cancelled"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "timed out"
		}
		return &pbsa.SolverInvocationError{Frame: job.Frame, File: oname, Msg: msg, Err: ctx.Err()}
	}
	if err != nil {
		return &pbsa.SolverInvocationError{Frame: job.Frame, File: oname, Msg: "solver exited with an error", Err: err}
	}
	return nil
}

// Energies reads the output of a finished run.
func (H *Handle) Energies(job *Job) (*Solvation, error) {
	oname := filepath.Join(job.Dir, outName)
	f, err := os.Open(oname)
	if err != nil {
		return nil, &pbsa.SolverInvocationError{Frame: job.Frame, File: oname, Msg: "can't read output", Err: err}
	}
	defer f.Close()
	var natoms [3]int
	for k := range natoms {
		natoms[k] = len(job.Rows[k])
	}
	S, err := Parse(f, natoms, &H.cfg.SA, job.Frame)
	if err != nil {
		var se *pbsa.SolverInvocationError
		if errors.As(err, &se) {
			se.File = oname
		}
		return nil, err
	}
	return S, nil
}

// Solve builds the input, runs the solver and parses its output. Unless the
// handle preserves files, the inputs are removed afterwards and the output
// is kept only as apbs.out.zst.
func (H *Handle) Solve(ctx context.Context, job *Job) (*Solvation, error) {
	if err := H.BuildInput(job); err != nil {
		return nil, err
	}
	if err := H.Run(ctx, job); err != nil {
		return nil, err
	}
	S, err := H.Energies(job)
	if err != nil {
		return nil, err
	}
	if !H.preserve {
		if err := cleanup(job.Dir); err != nil {
			return nil, &pbsa.SolverInvocationError{Frame: job.Frame, File: job.Dir, Msg: "can't clean up", Err: err}
		}
	}
	return S, nil
}

// cleanup compresses the solver output and removes the other frame files.
func cleanup(dir string) error {
	oname := filepath.Join(dir, outName)
	if err := compress(oname, oname+".zst"); err != nil {
		return err
	}
	for _, s := range append(SystemNames[:], "") {
		fname := filepath.Join(dir, s+".pqr")
		if s == "" {
			fname = filepath.Join(dir, deckName)
		}
		if err := os.Remove(fname); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return os.Remove(oname)
}

func compress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		out.Close()
		return err
	}
	if _, err = io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
