// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux

package source

import "cpuleaf/internal/leaf1"

func (d DevCPU) Validate() error {
	return ErrUnsupported
}

func (d DevCPU) Snapshot() (leaf1.Snapshot, error) {
	return leaf1.Snapshot{}, ErrUnsupported
}
