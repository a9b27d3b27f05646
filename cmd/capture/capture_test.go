// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registerArgs = []string{"--eax", "0x000906ea", "--ebx", "0x00100800", "--ecx", "0x7ffafbbf", "--edx", "0xbfebfbff"}

var coffeeLake = leaf1.Snapshot{A: 0x000906ea, B: 0x00100800, C: 0x7ffafbbf, D: 0xbfebfbff}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	Cmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(&bytes.Buffer{})
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return out.String(), err
}

func TestCaptureToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coffeelake.yaml")
	out, err := run(t, append(registerArgs, path)...)
	require.NoError(t, err)
	assert.Equal(t, "snapshot written to "+path+"\n", out)

	c, err := source.ReadCapture(path)
	require.NoError(t, err)
	assert.Equal(t, coffeeLake, c.Snapshot())
	assert.Equal(t, uint32(leaf1.Leaf), c.Leaf)
	assert.True(t, strings.HasPrefix(c.Source, source.KindRegs), c.Source)
	assert.False(t, c.Captured.IsZero())
}

func TestCaptureToStdout(t *testing.T) {
	out, err := run(t, append(registerArgs, "-")...)
	require.NoError(t, err)
	assert.Contains(t, out, "0x000906ea")
	assert.Contains(t, out, "0xbfebfbff")
	assert.Contains(t, out, "leaf: 1\n")
}

func TestCaptureConvertsRawInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "converted.yaml")
	_, err := run(t, "--input", filepath.Join("..", "..", "internal", "source", "testdata", "cpuid_raw.txt"), path)
	require.NoError(t, err)
	c, err := source.ReadCapture(path)
	require.NoError(t, err)
	assert.NotZero(t, c.EAX)
}

func TestCaptureTooManyArgs(t *testing.T) {
	_, err := run(t, append(registerArgs, "a.yaml", "b.yaml")...)
	assert.Error(t, err)
}

func TestDefaultFileName(t *testing.T) {
	name := defaultFileName()
	assert.True(t, strings.HasSuffix(name, "_leaf1.yaml"), name)
	assert.NotContains(t, name, "/")
}
