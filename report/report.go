/*
 * report.go, part of gopbsa.
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
Package report writes the results of a run: CSV tables with the summary,
the per-frame terms and the per-residue terms, a PDB file with the residue
contributions in the B-factor column, and plots.

All energies are in kJ/mol, except the B-factors, which are in kcal/mol.
Times are in ns.
*/
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	pbsa "github.com/rmera/gopbsa"
	"github.com/rmera/gopbsa/results"
)

// zstCloser closes the encoder and then the file under it.
type zstCloser struct {
	*zstd.Encoder
	f *os.File
}

func (z *zstCloser) Close() error {
	err := z.Encoder.Close()
	if cerr := z.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates fname for writing. If the name ends in ".zst" what is
// written is compressed with zstd.
func Create(fname string) (io.WriteCloser, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, pbsa.NewError(err.Error(), fname, "Create")
	}
	if !strings.HasSuffix(fname, ".zst") {
		return f, nil
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, pbsa.NewError(err.Error(), fname, "Create")
	}
	return &zstCloser{Encoder: enc, f: f}, nil
}

func f3(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) }

// ns returns a time in ps as a string in ns.
func ns(ps float64) string { return strconv.FormatFloat(ps/1000, 'f', -1, 64) }

// KiUnit returns the concentration unit of a Ki multiplied by scale.
func KiUnit(scale float64) string {
	switch scale {
	case 1:
		return "M"
	case 1e3:
		return "mM"
	case 1e6:
		return "μM"
	case 1e9:
		return "nM"
	case 1e12:
		return "pM"
	}
	return fmt.Sprintf("M×%g", scale)
}

func csvDone(w *csv.Writer, caller string) error {
	w.Flush()
	if err := w.Error(); err != nil {
		return pbsa.NewError(err.Error(), "", caller)
	}
	return nil
}

// WriteSummary writes the averaged terms and the thermodynamic estimates of S
// as "Energy Term,value,info" rows.
func WriteSummary(out io.Writer, S *results.Summary, kiScale float64) error {
	w := csv.NewWriter(out)
	m, sd := S.Mean, S.StdDev
	sds := func(f float64) string { return "sd " + f3(f) }
	rows := [][]string{
		{"Energy Term", "value", "info"},
		{"ΔH", f3(m.H), "ΔH=ΔMM+ΔPB+ΔSA (kJ/mol), " + sds(sd.H) + ", sem " + f3(S.StdErr) + ", inefficiency " + strconv.FormatFloat(S.Inefficiency, 'f', 2, 64)},
		{"ΔMM", f3(m.MM), "ΔMM=Δelec+ΔvdW (kJ/mol), " + sds(sd.MM)},
		{"ΔPB", f3(m.PB), "(kJ/mol), " + sds(sd.PB)},
		{"ΔSA", f3(m.SA), "(kJ/mol), " + sds(sd.SA)},
		{"Δelec", f3(m.Coulomb), "(kJ/mol), " + sds(sd.Coulomb)},
		{"ΔvdW", f3(m.VdW), "(kJ/mol), " + sds(sd.VdW)},
		{"TΔS", f3(S.TdS), "(kJ/mol)"},
		{"ΔG", f3(S.G), "ΔG=ΔH-TΔS (kJ/mol)"},
		{"Ki", strconv.FormatFloat(S.Ki, 'e', 3, 64), "Ki=exp(ΔG/RT) (" + KiUnit(kiScale) + ")"},
		{"T", strconv.FormatFloat(S.Temperature, 'f', -1, 64), "(K)"},
		{"frames", strconv.Itoa(len(S.Frames)), ""},
	}
	w.WriteAll(rows)
	return csvDone(w, "WriteSummary")
}

// WriteTrajectory writes the terms of every frame, one row per frame.
func WriteTrajectory(out io.Writer, S *results.Summary) error {
	w := csv.NewWriter(out)
	w.Write(append([]string{"Time (ns)"}, results.TermNames...))
	for _, f := range S.Frames {
		rec := []string{ns(f.Time)}
		for _, v := range f.Terms.Values() {
			rec = append(rec, f3(v))
		}
		w.Write(rec)
	}
	return csvDone(w, "WriteTrajectory")
}

// WriteResidues writes the time-averaged terms of every residue. Residues
// whose absolute ΔH is below minAbsH are skipped.
func WriteResidues(out io.Writer, S *results.Summary, minAbsH float64) error {
	w := csv.NewWriter(out)
	w.Write(append([]string{"id", "name"}, results.TermNames...))
	for _, r := range S.Residues {
		if r.H < minAbsH && r.H > -minAbsH {
			continue
		}
		rec := []string{strconv.Itoa(r.Nr), r.Name + "_" + r.Tag.String()}
		for _, v := range r.Terms.Values() {
			rec = append(rec, f3(v))
		}
		w.Write(rec)
	}
	return csvDone(w, "WriteResidues")
}

// WriteResidueSeries writes, for each frame, the term number term (in the
// order of results.TermNames) of every residue.
func WriteResidueSeries(out io.Writer, S *results.Summary, term int) error {
	if term < 0 || term >= len(results.TermNames) {
		return pbsa.NewError(fmt.Sprintf("no energy term %d", term), "", "WriteResidueSeries")
	}
	w := csv.NewWriter(out)
	head := []string{"Time (ns)"}
	for _, r := range S.Residues {
		head = append(head, r.Label())
	}
	w.Write(head)
	for _, f := range S.Frames {
		rec := []string{ns(f.Time)}
		for _, r := range f.Residues {
			rec = append(rec, f3(r.Values()[term]))
		}
		w.Write(rec)
	}
	return csvDone(w, "WriteResidueSeries")
}

// Files lists the outputs of WriteAll, relative to its directory.
type Files struct {
	Summary    string
	Trajectory string
	Residues   string
	Series     []string //one per term
}

// Names returns the output names for the system name. With compress, the
// names end in ".zst".
func Names(name string, compress bool) Files {
	ext := ".csv"
	if compress {
		ext += ".zst"
	}
	F := Files{
		Summary:    "MMPBSA_" + name + ext,
		Trajectory: "MMPBSA_" + name + "_traj" + ext,
		Residues:   "MMPBSA_" + name + "_res" + ext,
	}
	for _, t := range results.TermNames {
		F.Series = append(F.Series, "MMPBSA_"+name+"_res_"+t+ext)
	}
	return F
}

func writeFile(fname string, f func(io.Writer) error) error {
	w, err := Create(fname)
	if err != nil {
		return err
	}
	err = f(w)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = pbsa.NewError(cerr.Error(), fname, "writeFile")
	}
	return pbsa.Decorate(err, "writeFile")
}

// WriteAll writes every table for S in dir.
func WriteAll(dir string, F Files, S *results.Summary, kiScale float64) error {
	p := func(s string) string { return filepath.Join(dir, s) }
	err := writeFile(p(F.Summary), func(w io.Writer) error { return WriteSummary(w, S, kiScale) })
	if err != nil {
		return pbsa.Decorate(err, "WriteAll")
	}
	if err = writeFile(p(F.Trajectory), func(w io.Writer) error { return WriteTrajectory(w, S) }); err != nil {
		return pbsa.Decorate(err, "WriteAll")
	}
	if err = writeFile(p(F.Residues), func(w io.Writer) error { return WriteResidues(w, S, 0) }); err != nil {
		return pbsa.Decorate(err, "WriteAll")
	}
	for i, s := range F.Series {
		term := i
		if err = writeFile(p(s), func(w io.Writer) error { return WriteResidueSeries(w, S, term) }); err != nil {
			return pbsa.Decorate(err, "WriteAll")
		}
	}
	return nil
}
