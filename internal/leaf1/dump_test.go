// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionDump(t *testing.T) {
	out := DecodeVersion(0x000906EA).VersionDump()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(VersionLayout)+3)
	assert.True(t, strings.HasPrefix(lines[0], "Reserved"))
	assert.Contains(t, out, "Extended Model ID    bits 19:16 = 0x9")
	assert.Contains(t, out, "Stepping ID          bits  3:0  = 0xa")
	assert.Contains(t, out, "= 0x9e")
	assert.Contains(t, out, "= 0x06ea")
}

func TestFeatureDump(t *testing.T) {
	out := NewFeatureSet(1, 0).FeatureDump()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 64)
	assert.Equal(t, "ECX[00] SSE3        : Supported", lines[0])
	assert.Equal(t, "EDX[31] PBE         : Not supported", lines[63])
}

func TestAdditionalInfo_String(t *testing.T) {
	out := DecodeAdditional(0x44800800).String()
	assert.Equal(t, "Brand Index: 0\nCLFLUSH Line Size: 64 bytes\nMax Addressable IDs: 128\nLocal APIC ID: 68", out)
}
