/*
 * metrics_test.go, part of gopbsa.
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

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(Te *testing.T) {
	M := New("run-1")
	M.SetPending(3)
	M.FrameDone()
	M.FrameDone()
	M.FrameFailed("solver")
	M.Observe("mm", 20*time.Millisecond)
	M.Observe("solver", 2*time.Second)

	assert.Equal(Te, 2.0, testutil.ToFloat64(M.done))
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.pending))
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.failed.WithLabelValues("solver")))
	assert.Equal(Te, 2, testutil.CollectAndCount(M.duration))
}

func TestWriteFile(Te *testing.T) {
	M := New("abc")
	M.SetPending(1)
	M.FrameDone()
	fname := filepath.Join(Te.TempDir(), "gopbsa.prom")
	require.NoError(Te, M.WriteFile(fname))
	b, err := os.ReadFile(fname)
	require.NoError(Te, err)
	s := string(b)
	assert.True(Te, strings.Contains(s, `gopbsa_frames_processed_total{run="abc"} 1`), s)
	assert.Contains(Te, s, "# HELP gopbsa_frames_pending")
}

func TestNop(Te *testing.T) {
	var R Recorder = Nop()
	R.SetPending(2)
	R.FrameDone()
	R.FrameFailed("mm")
	R.Observe("mesh", time.Second)
}
