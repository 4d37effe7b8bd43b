/*
 * dump.go, part of gopbsa.
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

package top

import (
	"bufio"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zstd"
	pbsa "github.com/rmera/gopbsa"
)

// Dump holds the text of a topology dump in memory, one string per line
// without the trailing newline, and finds sections in it by marker.
type Dump struct {
	Name string //where the dump came from, for error messages
	t    []string
}

// NewDump returns a Dump with the given lines.
func NewDump(name string, lines []string) *Dump {
	return &Dump{Name: name, t: lines}
}

// ReadDump reads a dump from a file. Files ending in ".zst" are decompressed
// on the fly.
func ReadDump(fname string) (*Dump, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, pbsa.NewError(err.Error(), fname, "ReadDump")
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(fname, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, pbsa.NewError(err.Error(), fname, "ReadDump")
		}
		defer dec.Close()
		r = dec
	}
	d, err := readDump(fname, r)
	if err != nil {
		return nil, pbsa.NewError(err.Error(), fname, "ReadDump")
	}
	return d, nil
}

func readDump(name string, r io.Reader) (*Dump, error) {
	D := &Dump{Name: name, t: make([]string, 0, 1024)}
	re := bufio.NewReader(r)
	var l string
	var err error
	for l, err = re.ReadString('\n'); err == nil; l, err = re.ReadString('\n') {
		D.t = append(D.t, strings.TrimRight(l, "\r\n"))
	}
	if !errors.Is(err, io.EOF) {
		return nil, err
	}
	if l != "" {
		D.t = append(D.t, strings.TrimRight(l, "\r\n"))
	}
	return D, nil
}

// Len returns the number of lines in the dump.
func (D *Dump) Len() int { return len(D.t) }

// Line returns the ith (0-based) line, or "" if i is out of range.
func (D *Dump) Line(i int) string {
	if i < 0 || i >= len(D.t) {
		return ""
	}
	return D.t[i]
}

// Find returns the index of the first line in [from, to) matching re, or -1.
// A negative to means the end of the dump.
func (D *Dump) Find(re *regexp.Regexp, from, to int) int {
	if to < 0 || to > len(D.t) {
		to = len(D.t)
	}
	if from < 0 {
		from = 0
	}
	for i := from; i < to; i++ {
		if re.MatchString(D.t[i]) {
			return i
		}
	}
	return -1
}

// FindAll returns the indexes of all lines matching re, in order.
func (D *Dump) FindAll(re *regexp.Regexp) []int {
	var ret []int
	for i, l := range D.t {
		if re.MatchString(l) {
			ret = append(ret, i)
		}
	}
	return ret
}

// Submatch returns the submatches of re in the first line in [from, to) that
// matches, and the index of that line. It returns nil, -1 if none does.
func (D *Dump) Submatch(re *regexp.Regexp, from, to int) ([]string, int) {
	i := D.Find(re, from, to)
	if i < 0 {
		return nil, -1
	}
	return re.FindStringSubmatch(D.t[i]), i
}
