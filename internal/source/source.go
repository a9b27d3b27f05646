// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package source provides the ways cpuleaf reads the leaf 1 registers: the
// CPUID instruction, the Linux cpuid driver, the cpuid command line tool,
// snapshot files, and literal values.
package source

import (
	"fmt"
	"log/slog"
	"strings"

	"cpuleaf/internal/leaf1"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by sources that cannot run on this platform.
var ErrUnsupported = errors.New("register source not supported on this platform")

// Source kinds selectable on the command line.
const (
	KindAuto   = "auto"
	KindNative = "native"
	KindDevCPU = "devcpu"
	KindTool   = "tool"
	KindFile   = "file"
	KindRegs   = "regs"
)

var Kinds = []string{KindAuto, KindNative, KindDevCPU, KindTool, KindFile, KindRegs}

// Static returns the same registers on every call.
type Static leaf1.Snapshot

func (s Static) Snapshot() (leaf1.Snapshot, error) {
	return leaf1.Snapshot(s), nil
}

func (s Static) String() string {
	return fmt.Sprintf("regs(eax=0x%08x ebx=0x%08x ecx=0x%08x edx=0x%08x)", s.A, s.B, s.C, s.D)
}

// Auto tries each source in order and returns the first snapshot read.
type Auto struct {
	Sources []leaf1.Source
}

// NewAuto tries the instruction, then the driver for cpu 0, then the tool.
func NewAuto() Auto {
	return Auto{Sources: []leaf1.Source{Native{}, DevCPU{}, NewTool("")}}
}

func (a Auto) Snapshot() (leaf1.Snapshot, error) {
	var failures []string
	for _, src := range a.Sources {
		s, err := src.Snapshot()
		if err == nil {
			slog.Debug("read registers", slog.String("source", Describe(src)))
			return s, nil
		}
		slog.Debug("register source failed", slog.String("source", Describe(src)), slog.String("error", err.Error()))
		failures = append(failures, fmt.Sprintf("%s: %v", Describe(src), err))
	}
	return leaf1.Snapshot{}, errors.Errorf("no register source available (%s)", strings.Join(failures, "; "))
}

// Describe names src for logs and snapshot files.
func Describe(src leaf1.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}
