// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"cpuleaf/internal/leaf1"
)

// Native executes the CPUID instruction on whichever logical processor the
// calling goroutine happens to run on.
type Native struct{}

func (Native) Snapshot() (leaf1.Snapshot, error) {
	if !nativeSupported {
		return leaf1.Snapshot{}, ErrUnsupported
	}
	a, b, c, d := cpuid(leaf1.Leaf, leaf1.SubLeaf)
	return leaf1.Snapshot{A: a, B: b, C: c, D: d}, nil
}

func (Native) String() string {
	return KindNative
}
