// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevCPU(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dev", "cpu", "3")
	require.NoError(t, os.MkdirAll(dir, 0755))
	// the driver answers leaf 1 at offset 1; a regular file behaves the same under pread
	data := append([]byte{0xff},
		0xea, 0x06, 0x09, 0x00,
		0x00, 0x08, 0x10, 0x00,
		0xbf, 0xfb, 0xfa, 0x7f,
		0xff, 0xfb, 0xeb, 0xbf,
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cpuid"), data, 0644))

	s, err := DevCPU{CPU: 3, Root: root}.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, skylake, s)
}

func TestDevCPU_Missing(t *testing.T) {
	src := DevCPU{CPU: 2, Root: t.TempDir()}
	err := src.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modprobe cpuid")
	_, err = src.Snapshot()
	assert.Error(t, err)
}

func TestDevCPU_Short(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dev", "cpu", "0")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cpuid"), []byte{0, 1, 2, 3}, 0644))
	_, err := DevCPU{Root: root}.Snapshot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong byte count")
}
