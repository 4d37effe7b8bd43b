/*
 * results.go, part of gopbsa.
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

// Package results accumulates the energy terms of every processed frame and
// turns them into time averages, per-residue contributions and the
// thermodynamic estimates of a binding calculation.
package results

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/apbs"
	"github.com/rmera/gopbsa/qrv"
)

// Terms is a decomposition of a binding enthalpy, in kJ/mol.
type Terms struct {
	H       float64
	MM      float64
	PB      float64
	SA      float64
	Coulomb float64
	VdW     float64
}

func (t *Terms) add(o Terms) {
	t.H += o.H
	t.MM += o.MM
	t.PB += o.PB
	t.SA += o.SA
	t.Coulomb += o.Coulomb
	t.VdW += o.VdW
}

func (t *Terms) scale(f float64) {
	t.H *= f
	t.MM *= f
	t.PB *= f
	t.SA *= f
	t.Coulomb *= f
	t.VdW *= f
}

// Values returns the terms in the order H, MM, PB, SA, Coulomb, VdW.
func (t Terms) Values() []float64 {
	return []float64{t.H, t.MM, t.PB, t.SA, t.Coulomb, t.VdW}
}

func fromValues(v []float64) Terms {
	return Terms{H: v[0], MM: v[1], PB: v[2], SA: v[3], Coulomb: v[4], VdW: v[5]}
}

// TermNames are the names of the values returned by Terms.Values.
var TermNames = []string{"ΔH", "ΔMM", "ΔPB", "ΔSA", "Δelec", "ΔvdW"}

// Frame holds everything computed for one trajectory frame.
type Frame struct {
	Index      int
	Time       float64 //ps
	Coulomb    float64
	VdW        float64
	ResCoulomb []float64
	ResVdW     []float64
	Solvation  *apbs.Solvation
}

// FrameTerms are the binding terms of one frame, with its per-residue
// decomposition.
type FrameTerms struct {
	Index    int
	Time     float64 //ps
	Terms    Terms
	Residues []Terms
}

// Accumulator collects frame results. It is not safe for concurrent use:
// a single goroutine must own it.
type Accumulator struct {
	table   *qrv.Table
	rows    [3][]int
	recPos  map[int]int //table row -> position in the receptor system
	ligPos  map[int]int
	frames  []FrameTerms
	indices map[int]bool
}

// NewAccumulator returns an accumulator for the residues of T. rows are the
// table rows of the complex, receptor and ligand systems, in the order the
// solver receives them.
func NewAccumulator(T *qrv.Table, rows [3][]int) *Accumulator {
	A := &Accumulator{table: T, rows: rows, indices: make(map[int]bool)}
	A.recPos = make(map[int]int, len(rows[apbs.Rec]))
	for p, r := range rows[apbs.Rec] {
		A.recPos[r] = p
	}
	A.ligPos = make(map[int]int, len(rows[apbs.Lig]))
	for p, r := range rows[apbs.Lig] {
		A.ligPos[r] = p
	}
	return A
}

// Len returns the number of frames added.
func (A *Accumulator) Len() int { return len(A.frames) }

// Add computes the binding terms of f and stores them. Frames can be added
// in any order but each frame index only once.
func (A *Accumulator) Add(f *Frame) error {
	nres := len(A.table.Residues)
	if A.indices[f.Index] {
		return pbsa.NewError(fmt.Sprintf("frame %d added twice", f.Index), "", "Add")
	}
	if f.Solvation == nil {
		return pbsa.NewError(fmt.Sprintf("frame %d has no solvation energies", f.Index), "", "Add")
	}
	if len(f.ResCoulomb) != nres || len(f.ResVdW) != nres {
		return pbsa.NewError(fmt.Sprintf("frame %d has %d/%d residue MM terms, expected %d", f.Index, len(f.ResCoulomb), len(f.ResVdW), nres), "", "Add")
	}
	S := f.Solvation
	for k, s := range S {
		if len(s.AtomPB) != len(A.rows[k]) || len(s.AtomSA) != len(A.rows[k]) {
			return pbsa.NewError(fmt.Sprintf("frame %d: %s has %d atom energies, expected %d", f.Index, apbs.SystemNames[k], len(s.AtomPB), len(A.rows[k])), "", "Add")
		}
	}
	ft := FrameTerms{Index: f.Index, Time: f.Time, Residues: make([]Terms, nres)}
	res := ft.Residues
	for i := range res {
		res[i].Coulomb = f.ResCoulomb[i]
		res[i].VdW = f.ResVdW[i]
	}
	com := S[apbs.Com]
	for p, r := range A.rows[apbs.Com] {
		var other apbs.System
		var q int
		if rp, ok := A.recPos[r]; ok {
			other, q = S[apbs.Rec], rp
		} else if lp, ok := A.ligPos[r]; ok {
			other, q = S[apbs.Lig], lp
		} else {
			return pbsa.NewError(fmt.Sprintf("complex atom %d is in neither receptor nor ligand", A.table.Atoms[r].Index), "", "Add")
		}
		R := &res[A.table.Atoms[r].Residue]
		R.PB += com.AtomPB[p] - other.AtomPB[q]
		R.SA += com.AtomSA[p] - other.AtomSA[q]
	}
	for i := range res {
		res[i].MM = res[i].Coulomb + res[i].VdW
		res[i].H = res[i].MM + res[i].PB + res[i].SA
	}
	t := &ft.Terms
	t.Coulomb = f.Coulomb
	t.VdW = f.VdW
	t.MM = f.Coulomb + f.VdW
	t.PB = S[apbs.Com].PB - S[apbs.Rec].PB - S[apbs.Lig].PB
	t.SA = S[apbs.Com].SA - S[apbs.Rec].SA - S[apbs.Lig].SA
	t.H = t.MM + t.PB + t.SA
	A.frames = append(A.frames, ft)
	A.indices[f.Index] = true
	return nil
}

// Residue is the time-averaged contribution of one residue.
type Residue struct {
	qrv.Residue
	Terms
}

// Summary holds the averages and estimates of a run. Frames are sorted by
// time.
type Summary struct {
	Temperature float64 //K
	RT          float64 //kJ/mol
	Mean        Terms
	StdDev      Terms
	//statistical inefficiency of the ΔH series and the standard error of
	//its mean (kJ/mol) that follows from it
	Inefficiency float64
	StdErr       float64
	TdS          float64 //kJ/mol
	G            float64 //kJ/mol
	Ki           float64 //in units of 1/KiScale M
	Frames       []FrameTerms
	Residues     []Residue
}

// Summary returns the time averages of all terms at temperature T (K). With
// entropy, TΔS is the exponential average of the MM fluctuations,
// -RT ln <exp((MM-<MM>)/RT)>; otherwise it is zero. ΔG = <ΔH> - TΔS and
// Ki = exp(ΔG/RT), multiplied by kiScale. Summaries of the same frames are
// identical regardless of the order the frames were added.
func (A *Accumulator) Summary(T float64, entropy bool, kiScale float64) (*Summary, error) {
	n := len(A.frames)
	if n == 0 {
		return nil, pbsa.NewError("no frames to summarize", "", "Summary")
	}
	if T <= 0 {
		return nil, pbsa.NewError(fmt.Sprintf("invalid temperature %v", T), "", "Summary")
	}
	frames := make([]FrameTerms, n)
	copy(frames, A.frames)
	sort.Slice(frames, func(i, j int) bool {
		if frames[i].Time != frames[j].Time {
			return frames[i].Time < frames[j].Time
		}
		return frames[i].Index < frames[j].Index
	})
	S := &Summary{Temperature: T, RT: pbsa.RT(T), Frames: frames}

	series := make([][]float64, len(TermNames))
	for i := range series {
		series[i] = make([]float64, n)
	}
	for f, fr := range frames {
		for i, v := range fr.Terms.Values() {
			series[i][f] = v
		}
	}
	mean := make([]float64, len(series))
	sd := make([]float64, len(series))
	for i, s := range series {
		mean[i], sd[i] = stat.MeanStdDev(s, nil)
		if n == 1 {
			sd[i] = 0
		}
	}
	S.Mean = fromValues(mean)
	S.StdDev = fromValues(sd)
	S.Inefficiency = Inefficiency(series[0])
	S.StdErr = stdErr(sd[0], n, S.Inefficiency)

	if entropy {
		S.TdS = expAverage(series[1], S.Mean.MM, S.RT)
	}
	S.G = S.Mean.H - S.TdS
	S.Ki = math.Exp(S.G/S.RT) * kiScale

	S.Residues = make([]Residue, len(A.table.Residues))
	for i, r := range A.table.Residues {
		S.Residues[i].Residue = r
		for _, fr := range frames {
			S.Residues[i].Terms.add(fr.Residues[i])
		}
		S.Residues[i].Terms.scale(1 / float64(n))
	}
	return S, nil
}

// expAverage returns -RT ln(mean(exp((x-mean)/RT))), using log-sum-exp so
// large fluctuations don't overflow.
func expAverage(x []float64, mean, RT float64) float64 {
	e := make([]float64, len(x))
	for i, v := range x {
		e[i] = (v - mean) / RT
	}
	return -RT * (floats.LogSumExp(e) - math.Log(float64(len(x))))
}

// ResidueSeries returns, for residue i, the terms of every frame in the
// summary order.
func (S *Summary) ResidueSeries(i int) []Terms {
	ret := make([]Terms, len(S.Frames))
	for f, fr := range S.Frames {
		ret[f] = fr.Residues[i]
	}
	return ret
}
