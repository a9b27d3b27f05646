// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"cpuleaf/internal/leaf1"

	"github.com/pkg/errors"
)

const (
	defaultToolPath    = "cpuid"
	defaultToolTimeout = 10 * time.Second
)

// raw register line printed by `cpuid -r`, e.g.
//
//	0x00000001 0x00: eax=0x000906ea ebx=0x00100800 ecx=0x7ffafbbf edx=0xbfebfbff
var reRawLeaf = regexp.MustCompile(`(?mi)^\s*0x([0-9a-f]{8}) 0x([0-9a-f]{2}):\s+eax=0x([0-9a-f]{8})\s+ebx=0x([0-9a-f]{8})\s+ecx=0x([0-9a-f]{8})\s+edx=0x([0-9a-f]{8})\s*$`)

// Tool runs the cpuid utility for one processor and parses its raw output.
type Tool struct {
	Path    string
	Timeout time.Duration
}

// NewTool returns a Tool running path, or cpuid from PATH when path is empty.
func NewTool(path string) Tool {
	if path == "" {
		path = defaultToolPath
	}
	return Tool{Path: path, Timeout: defaultToolTimeout}
}

func (t Tool) String() string {
	return fmt.Sprintf("%s(%s)", KindTool, t.Path)
}

func (t Tool) Snapshot() (leaf1.Snapshot, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	path, err := exec.LookPath(t.Path)
	if err != nil {
		return leaf1.Snapshot{}, errors.Wrapf(err, "%s not found", t.Path)
	}
	cmd := exec.CommandContext(ctx, path, "-1", "-r", "-l", strconv.Itoa(leaf1.Leaf), "-s", strconv.Itoa(leaf1.SubLeaf)) // #nosec G204
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("running command", slog.String("cmd", cmd.String()))
	if err := cmd.Run(); err != nil {
		return leaf1.Snapshot{}, errors.Wrapf(err, "%s failed: %s", cmd.String(), bytes.TrimSpace(stderr.Bytes()))
	}
	return ParseRaw(stdout.String())
}

// ParseRaw finds the leaf 1, sub-leaf 0 line in raw cpuid output. When the
// output covers several processors the first one is used.
func ParseRaw(output string) (leaf1.Snapshot, error) {
	for _, match := range reRawLeaf.FindAllStringSubmatch(output, -1) {
		values := make([]uint32, 0, 6)
		for _, hex := range match[1:] {
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return leaf1.Snapshot{}, errors.Wrapf(err, "invalid register value %s", hex)
			}
			values = append(values, uint32(v))
		}
		if values[0] != leaf1.Leaf || values[1] != leaf1.SubLeaf {
			continue
		}
		return leaf1.Snapshot{A: values[2], B: values[3], C: values[4], D: values[5]}, nil
	}
	return leaf1.Snapshot{}, errors.New("leaf 0x00000001 sub-leaf 0x00 not found in cpuid output")
}
