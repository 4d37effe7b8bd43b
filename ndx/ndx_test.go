/*
 * ndx_test.go, part of gopbsa.
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

package ndx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbsa "github.com/rmera/gopbsa"
)

func TestReadIndex(Te *testing.T) {
	I, err := Read("testdata/index.ndx")
	require.NoError(Te, err)
	assert.Equal(Te, []Info{
		{Number: 0, Name: "System", Size: 8},
		{Number: 1, Name: "Protein", Size: 4},
		{Number: 2, Name: "LIG", Size: 4},
		{Number: 3, Name: "Overlap", Size: 2},
	}, I.List())
	p, err := I.Group("Protein")
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 1, 2, 3}, p.Atoms)
	assert.True(Te, p.Contains(3))
	assert.False(Te, p.Contains(4))
	assert.False(Te, p.Contains(-1))
	assert.False(Te, p.Contains(1000))
	l, err := I.Group("2")
	require.NoError(Te, err)
	assert.Equal(Te, "LIG", l.Name)
	_, err = I.Group("Water")
	assert.Error(Te, err)
}

func TestReadErrors(Te *testing.T) {
	for _, f := range []string{"testdata/orphan.ndx", "testdata/badatom.ndx"} {
		_, err := Read(f)
		var pe *pbsa.InputParseError
		require.True(Te, errors.As(err, &pe), "%s: %v", f, err)
		assert.Equal(Te, f, pe.File)
	}
	_, err := Read("testdata/nothere.ndx")
	assert.Error(Te, err)
}

func TestSelection(Te *testing.T) {
	I, err := Read("testdata/index.ndx")
	require.NoError(Te, err)
	rec, _ := I.Group("Protein")
	lig, _ := I.Group("LIG")
	S, err := NewSelection(lig, rec, 8)
	require.NoError(Te, err)
	assert.Equal(Te, rec.Len()+lig.Len(), S.Complex.Len())
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5, 6, 7}, S.Complex.Atoms)

	ov, _ := I.Group("Overlap")
	_, err = NewSelection(rec, ov, 8)
	var ge *pbsa.GeometryError
	require.True(Te, errors.As(err, &ge))
	assert.Equal(Te, []int{3}, ge.Atoms)

	_, err = NewSelection(rec, NewGroup("empty", nil), 8)
	assert.True(Te, errors.As(err, &ge))

	_, err = NewSelection(rec, lig, 6)
	assert.True(Te, errors.As(err, &ge))
}
