// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"fmt"
	"log/slog"
	"os"

	"cpuleaf/internal/leaf1"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Validate confirms the cpuid driver exposes the device for d.CPU.
func (d DevCPU) Validate() error {
	if _, err := os.Stat(d.path()); err != nil {
		return errors.Wrap(err, fmt.Sprintf("cpuid device isn't available at %s, please load it using modprobe cpuid command", d.path()))
	}
	return nil
}

func (d DevCPU) Snapshot() (leaf1.Snapshot, error) {
	if err := d.Validate(); err != nil {
		return leaf1.Snapshot{}, err
	}
	fd, err := unix.Open(d.path(), unix.O_RDONLY, 0)
	if err != nil {
		return leaf1.Snapshot{}, errors.Wrapf(err, "couldn't open the cpuid interface %s", d.path())
	}
	defer unix.Close(fd)

	buf := make([]byte, 16)
	n, err := unix.Pread(fd, buf, devCPUOffset(leaf1.Leaf, leaf1.SubLeaf))
	if err != nil {
		return leaf1.Snapshot{}, errors.Wrapf(err, "failed to read %s", d.path())
	}
	if n != len(buf) {
		return leaf1.Snapshot{}, errors.Errorf("wrong byte count %d reading %s", n, d.path())
	}
	s := decodeDevCPU(buf)
	slog.Debug("read cpuid device", slog.String("path", d.path()), slog.Int("cpu", d.CPU))
	return s, nil
}
