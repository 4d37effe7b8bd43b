/*
 * logging_test.go, part of gopbsa.
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

package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	pbsa "github.com/rmera/gopbsa"
)

func TestFields(Te *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	L := FromCore(core).Named("pipeline").With(Run("abc"))
	L.Info("frame done", Frame(3), TimePs(2000), System("com"), Duration("took", time.Second), Bool("ok", true))
	require.Equal(Te, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(Te, "pipeline", e.LoggerName)
	m := e.ContextMap()
	assert.Equal(Te, "abc", m["run"])
	assert.Equal(Te, int64(3), m["frame"])
	assert.Equal(Te, 2000.0, m["time_ps"])
	assert.Equal(Te, "com", m["system"])
	assert.Equal(Te, time.Second, m["took"])
}

func TestErrTrail(Te *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	L := FromCore(core)
	err := pbsa.Decorate(pbsa.NewError("bad", "x.qrv", "Read"), "Ensure")
	L.Error("failed", Err(err))
	L.Warn("plain", Err(errors.New("oops")))
	L.Debug("nil", Err(nil))
	require.Equal(Te, 3, logs.Len())
	m := logs.All()[0].ContextMap()
	assert.Contains(Te, m, "trail")
	assert.Contains(Te, m["error"], "bad")
	assert.NotContains(Te, logs.All()[1].ContextMap(), "trail")
	assert.Equal(Te, "<nil>", logs.All()[2].ContextMap()["error"])
}

func TestLevels(Te *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	L := FromCore(core)
	L.Debug("d")
	L.Info("i")
	L.Warn("w")
	assert.Equal(Te, 1, logs.Len())

	for _, s := range []string{"debug", "INFO", "warn", "error"} {
		_, err := Level(s)
		assert.NoError(Te, err, s)
	}
	_, err := Level("loud")
	assert.Error(Te, err)
}

func TestNew(Te *testing.T) {
	L, err := New(pbsa.LogConfig{Level: "debug", Format: "json"})
	require.NoError(Te, err)
	assert.NotNil(Te, L)
	_, err = New(pbsa.LogConfig{Level: "info", Format: "xml"})
	assert.Error(Te, err)
	_, err = New(pbsa.LogConfig{Level: "noisy"})
	assert.Error(Te, err)

	N := Nop().With(Run("x")).Named("n")
	N.Info("nothing")
	assert.NoError(Te, N.Sync())
}
