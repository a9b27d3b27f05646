// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package diff

import (
	"bytes"
	"path/filepath"
	"testing"

	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coffeeLake = leaf1.Snapshot{A: 0x000906ea, B: 0x00100800, C: 0x7ffafbbf, D: 0xbfebfbff}

// stepping 11, APIC ID 2, AES cleared, IA64 set
var changed = leaf1.Snapshot{A: 0x000906eb, B: 0x02100800, C: 0x7dfafbbf, D: 0xffebfbff}

func writeSnapshot(t *testing.T, name string, s leaf1.Snapshot) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, source.WriteCapture(path, source.NewCapture(s, source.KindRegs)))
	return path
}

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

func TestPrintDiff(t *testing.T) {
	var out bytes.Buffer
	changes, err := printDiff(&out, leaf1.Identify(coffeeLake), leaf1.Identify(changed))
	require.NoError(t, err)
	assert.Equal(t, 9, changes)
	expected := "EAX changed from 0x000906ea to 0x000906eb\n" +
		"Stepping ID changed from 10 to 11\n" +
		"Signature changed from 0x06ea to 0x06eb\n" +
		"EBX changed from 0x00100800 to 0x02100800\n" +
		"Local APIC ID changed from 0 to 2\n" +
		"ECX changed from 0x7ffafbbf to 0x7dfafbbf\n" +
		"EDX changed from 0xbfebfbff to 0xffebfbff\n" +
		"added: IA64\n" +
		"removed: AES\n"
	assert.Equal(t, expected, out.String())
}

func TestPrintDiffReservedBits(t *testing.T) {
	var out bytes.Buffer
	changes, err := printDiff(&out, leaf1.Identify(leaf1.Snapshot{C: 1 << 16}), leaf1.Identify(leaf1.Snapshot{}))
	require.NoError(t, err)
	assert.Equal(t, 2, changes)
	assert.Equal(t, "ECX changed from 0x00010000 to 0x00000000\nECX[16] RESERVED changed from 1 to 0\n", out.String())

	out.Reset()
	changes, err = printDiff(&out, leaf1.Identify(leaf1.Snapshot{}), leaf1.Identify(leaf1.Snapshot{D: 1 << 10}))
	require.NoError(t, err)
	assert.Equal(t, 2, changes)
	assert.Contains(t, out.String(), "EDX[10] RESERVED changed from 0 to 1\n")
}

func TestDiffCommandReservedBitExitCode(t *testing.T) {
	before := writeSnapshot(t, "before.yaml", leaf1.Snapshot{C: 1 << 16})
	after := writeSnapshot(t, "after.yaml", leaf1.Snapshot{})
	_, err := run(t, "--exit-code", before, after)
	var different *DifferentError
	require.ErrorAs(t, err, &different)
	assert.Equal(t, 2, different.Changes)
}

func TestPrintDiffIdentical(t *testing.T) {
	var out bytes.Buffer
	changes, err := printDiff(&out, leaf1.Identify(coffeeLake), leaf1.Identify(coffeeLake))
	require.NoError(t, err)
	assert.Zero(t, changes)
	assert.Equal(t, "no differences\n", out.String())
}

func TestDiffCommand(t *testing.T) {
	before := writeSnapshot(t, "before.yaml", coffeeLake)
	after := writeSnapshot(t, "after.yaml", changed)

	out, err := run(t, before, after)
	require.NoError(t, err)
	assert.Contains(t, out, "removed: AES\n")

	_, err = run(t, "--exit-code", before, after)
	var different *DifferentError
	require.ErrorAs(t, err, &different)
	assert.Equal(t, 9, different.Changes)
	assert.Equal(t, 1, different.ExitCode())

	out, err = run(t, "--exit-code", before, before)
	require.NoError(t, err)
	assert.Equal(t, "no differences\n", out)
}

func TestDiffCommandErrors(t *testing.T) {
	before := writeSnapshot(t, "before.yaml", coffeeLake)
	_, err := run(t, before)
	assert.Error(t, err)
	_, err = run(t, before, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
