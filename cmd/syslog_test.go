// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	lines []string
}

func (w *recordingWriter) Debug(m string) error   { w.lines = append(w.lines, "debug "+m); return nil }
func (w *recordingWriter) Info(m string) error    { w.lines = append(w.lines, "info "+m); return nil }
func (w *recordingWriter) Warning(m string) error { w.lines = append(w.lines, "warning "+m); return nil }
func (w *recordingWriter) Err(m string) error     { w.lines = append(w.lines, "err "+m); return nil }

func TestSyslogHandler(t *testing.T) {
	w := &recordingWriter{}
	logger := slog.New(&SyslogHandler{writer: w, logLeveler: slog.LevelInfo})

	logger.Debug("hidden")
	logger.Info("read registers", slog.String("source", "native"))
	logger.With(slog.Int("cpu", 2)).Warn("retrying")
	logger.WithGroup("tool").Error("failed", slog.String("error", errors.New("exit status 1").Error()))

	require.Len(t, w.lines, 3)
	assert.Equal(t, `info level=INFO msg="read registers" source="native"`, w.lines[0])
	assert.Equal(t, `warning level=WARN msg="retrying" cpu="2"`, w.lines[1])
	assert.Equal(t, `err level=ERROR msg="failed" tool.error="exit status 1"`, w.lines[2])
}

func TestSyslogHandlerDebugLevel(t *testing.T) {
	w := &recordingWriter{}
	logger := slog.New(&SyslogHandler{writer: w, logLeveler: slog.LevelDebug})
	logger.Debug("shown")
	require.Len(t, w.lines, 1)
	assert.Equal(t, `debug level=DEBUG msg="shown"`, w.lines[0])
}
