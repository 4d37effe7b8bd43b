/*
 * errors.go, part of gopbsa.
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

package pbsa

import (
	"errors"
	"fmt"
	"strings"
)

// Decorator is implemented by all gopbsa errors. Decorate adds the name of
// a function in the call stack (plus, optionally, "Function: extra info")
// and returns the resulting trail. An empty string just returns the trail.
type Decorator interface {
	error
	Decorate(string) []string
	Critical() bool
}

// Error is the general error in gopbsa for problems that are not input,
// geometry or solver problems (I/O, bad configuration and so on).
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

// NewError returns a critical Error with the given message, associated to
// filename (which can be empty).
func NewError(message, filename string, deco ...string) *Error {
	return &Error{message: message, filename: filename, deco: deco, critical: true}
}

func (err *Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("%s: %s", err.filename, err.message)
}

// Decorate adds dec to the decoration trail and returns the trail.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// FileName returns the file associated to the error, if any.
func (err *Error) FileName() string { return err.filename }

// Critical returns true if the error is critical, false otherwise.
func (err *Error) Critical() bool { return err.critical }

// InputParseError signals a malformed or missing section in the topology
// dump, the parameter file or the index file. It is always fatal.
type InputParseError struct {
	File    string
	Section string
	Line    int //1-based, 0 if unknown
	Msg     string
	deco    []string
}

func (err *InputParseError) Error() string {
	var loc []string
	if err.File != "" {
		loc = append(loc, err.File)
	}
	if err.Line > 0 {
		loc = append(loc, fmt.Sprintf("line %d", err.Line))
	}
	if err.Section != "" {
		loc = append(loc, "section "+err.Section)
	}
	if len(loc) == 0 {
		return "parse error: " + err.Msg
	}
	return fmt.Sprintf("parse error (%s): %s", strings.Join(loc, ", "), err.Msg)
}

// Decorate adds dec to the decoration trail and returns the trail.
func (err *InputParseError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical always returns true.
func (err *InputParseError) Critical() bool { return true }

// GeometryError signals a degenerate atom set: an empty required group,
// overlapping receptor and ligand, or two atoms at zero distance.
type GeometryError struct {
	Group string
	Atoms []int
	Msg   string
	deco  []string
}

func (err *GeometryError) Error() string {
	s := "geometry error"
	if err.Group != "" {
		s += " in " + err.Group
	}
	if len(err.Atoms) > 0 {
		s += fmt.Sprintf(" (atoms %v)", err.Atoms)
	}
	return s + ": " + err.Msg
}

// Decorate adds dec to the decoration trail and returns the trail.
func (err *GeometryError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical always returns true.
func (err *GeometryError) Critical() bool { return true }

// SolverInvocationError signals that the external solver could not be started,
// exited with an error, timed out or wrote output that could not be parsed.
// Frame is -1 when the error is not tied to a frame.
type SolverInvocationError struct {
	Frame     int
	Subsystem string
	File      string
	Msg       string
	Err       error
	deco      []string
}

func (err *SolverInvocationError) Error() string {
	s := fmt.Sprintf("solver failed on frame %d", err.Frame)
	if err.Subsystem != "" {
		s += ", " + err.Subsystem
	}
	if err.File != "" {
		s += " (" + err.File + ")"
	}
	s += ": " + err.Msg
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

func (err *SolverInvocationError) Unwrap() error { return err.Err }

// Decorate adds dec to the decoration trail and returns the trail.
func (err *SolverInvocationError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical always returns true.
func (err *SolverInvocationError) Critical() bool { return true }

// Decorate adds caller to the trail of err if err is a Decorator, and
// wraps it with caller otherwise. A nil err returns nil.
func Decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var d Decorator
	if errors.As(err, &d) {
		d.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// Trail returns the decoration trail of err, or nil if err carries none.
func Trail(err error) []string {
	var d Decorator
	if errors.As(err, &d) {
		return d.Decorate("")
	}
	return nil
}
