/*
 * cache.go, part of gopbsa.
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

package qrv

import (
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	sha256 "github.com/minio/sha256-simd"

	pbsa "github.com/rmera/gopbsa"
)

// Gate decides whether a parameter file can be reused. It keeps one hash
// file per input: Params+".src.sha" for the topology source (mixed with Key,
// which should describe the group selection and the radius policy) and
// Params+".sha" for the parameter file itself.
type Gate struct {
	Source string
	Params string
	Key    string
}

// Status is the result of a Gate check.
type Status struct {
	Fresh  bool
	Reason string //why the parameter file must be regenerated
}

func (G Gate) srcHashFile() string { return G.Params + ".src.sha" }
func (G Gate) qrvHashFile() string { return G.Params + ".sha" }

// hashFile returns the hex sha256 of the content of fname followed by extra.
func hashFile(fname, extra string) (string, error) {
	f, err := os.Open(fname)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	if extra != "" {
		h.Write([]byte{0})
		h.Write([]byte(extra))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readHash(fname string) (string, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Check compares the current hashes of source and parameter file with the
// stored ones. Only when both match is the parameter file Fresh. Missing
// files or hashes mean regeneration, never an error.
func (G Gate) Check() (Status, error) {
	pairs := []struct {
		file, hashfile, extra, what string
	}{
		{G.Source, G.srcHashFile(), G.Key, "topology source"},
		{G.Params, G.qrvHashFile(), "", "parameter file"},
	}
	for _, p := range pairs {
		stored, err := readHash(p.hashfile)
		if errors.Is(err, fs.ErrNotExist) {
			return Status{Reason: "no stored hash for the " + p.what}, nil
		} else if err != nil {
			return Status{}, pbsa.NewError(err.Error(), p.hashfile, "Gate.Check")
		}
		cur, err := hashFile(p.file, p.extra)
		if errors.Is(err, fs.ErrNotExist) {
			return Status{Reason: p.what + " not found"}, nil
		} else if err != nil {
			return Status{}, pbsa.NewError(err.Error(), p.file, "Gate.Check")
		}
		if cur != stored {
			return Status{Reason: p.what + " changed"}, nil
		}
	}
	return Status{Fresh: true}, nil
}

// Seal stores the hashes of the source and of the parameter file. Call it
// only after the parameter file has been completely written.
func (G Gate) Seal() error {
	src, err := hashFile(G.Source, G.Key)
	if err != nil {
		return pbsa.NewError(err.Error(), G.Source, "Gate.Seal")
	}
	par, err := hashFile(G.Params, "")
	if err != nil {
		return pbsa.NewError(err.Error(), G.Params, "Gate.Seal")
	}
	if err := os.WriteFile(G.srcHashFile(), []byte(src+"\n"), 0o644); err != nil {
		return pbsa.NewError(err.Error(), G.srcHashFile(), "Gate.Seal")
	}
	if err := os.WriteFile(G.qrvHashFile(), []byte(par+"\n"), 0o644); err != nil {
		return pbsa.NewError(err.Error(), G.qrvHashFile(), "Gate.Seal")
	}
	return nil
}

// Invalidate removes the stored hashes, so the next Check fails. Call it
// before rewriting the parameter file.
func (G Gate) Invalidate() error {
	for _, f := range []string{G.qrvHashFile(), G.srcHashFile()} {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return pbsa.NewError(err.Error(), f, "Gate.Invalidate")
		}
	}
	return nil
}

// Ensure returns the table in G.Params if the gate says it is fresh.
// Otherwise it builds a new table, writes it, seals the gate and reads the
// file back. The Status tells whether the file was regenerated, and why.
func Ensure(G Gate, build func() (*Table, error)) (*Table, Status, error) {
	st, err := G.Check()
	if err != nil {
		return nil, st, err
	}
	if st.Fresh {
		T, err := ReadFile(G.Params)
		if err == nil {
			return T, st, nil
		}
		st = Status{Reason: "stored parameter file unreadable: " + err.Error()}
	}
	if err := G.Invalidate(); err != nil {
		return nil, st, err
	}
	T, err := build()
	if err != nil {
		return nil, st, pbsa.Decorate(err, "qrv.Ensure")
	}
	if err := WriteFile(G.Params, T); err != nil {
		return nil, st, err
	}
	if err := G.Seal(); err != nil {
		return nil, st, err
	}
	//read back, so fresh and cached runs see the same rounded values
	T, err = ReadFile(G.Params)
	return T, st, err
}
