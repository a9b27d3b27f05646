// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	"cpuleaf/internal/leaf1"
)

// devCPUPath is relative to DevCPU.Root.
const devCPUPath = "dev/cpu/%d/cpuid"

// DevCPU reads the registers through the Linux cpuid driver, which answers a
// 16 byte read at offset subleaf<<32|leaf with EAX, EBX, ECX and EDX.
type DevCPU struct {
	CPU  int    // logical processor to query
	Root string // filesystem root, "/" when empty
}

func (d DevCPU) path() string {
	root := d.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(root, fmt.Sprintf(devCPUPath, d.CPU))
}

func (d DevCPU) String() string {
	return fmt.Sprintf("%s(%s)", KindDevCPU, d.path())
}

func devCPUOffset(leaf, subleaf uint32) int64 {
	return int64(subleaf)<<32 | int64(leaf)
}

func decodeDevCPU(buf []byte) leaf1.Snapshot {
	return leaf1.Snapshot{
		A: binary.LittleEndian.Uint32(buf[0:4]),
		B: binary.LittleEndian.Uint32(buf[4:8]),
		C: binary.LittleEndian.Uint32(buf[8:12]),
		D: binary.LittleEndian.Uint32(buf[12:16]),
	}
}
