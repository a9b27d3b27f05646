package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"
	"cpuleaf/internal/util"

	"github.com/spf13/cobra"
)

// source flags
var (
	flagSource   string
	flagCPU      int
	flagInput    string
	flagEAX      string
	flagEBX      string
	flagECX      string
	flagEDX      string
	flagToolPath string
	flagTimeout  time.Duration
)

// source flag names
const (
	FlagSourceName   = "source"
	FlagCPUName      = "cpu"
	FlagInputName    = "input"
	FlagEAXName      = "eax"
	FlagEBXName      = "ebx"
	FlagECXName      = "ecx"
	FlagEDXName      = "edx"
	FlagToolPathName = "cpuid-path"
	FlagTimeoutName  = "timeout"
)

var registerFlagNames = []string{FlagEAXName, FlagEBXName, FlagECXName, FlagEDXName}

var sourceFlags = []Flag{
	{Name: FlagSourceName, Help: fmt.Sprintf("where to read the registers from, one of: %s", strings.Join(source.Kinds, ", "))},
	{Name: FlagCPUName, Help: "logical processor queried through the Linux cpuid driver"},
	{Name: FlagInputName, Help: "snapshot file, YAML or raw 'cpuid -r' output"},
	{Name: FlagEAXName, Help: "EAX value, hex by default, 0d prefix for decimal"},
	{Name: FlagEBXName, Help: "EBX value"},
	{Name: FlagECXName, Help: "ECX value"},
	{Name: FlagEDXName, Help: "EDX value"},
	{Name: FlagToolPathName, Help: "path to the cpuid command line tool"},
	{Name: FlagTimeoutName, Help: "time limit for the cpuid command line tool"},
}

func AddSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSource, FlagSourceName, source.KindAuto, sourceFlags[0].Help)
	cmd.Flags().IntVar(&flagCPU, FlagCPUName, 0, sourceFlags[1].Help)
	cmd.Flags().StringVar(&flagInput, FlagInputName, "", sourceFlags[2].Help)
	cmd.Flags().StringVar(&flagEAX, FlagEAXName, "", sourceFlags[3].Help)
	cmd.Flags().StringVar(&flagEBX, FlagEBXName, "", sourceFlags[4].Help)
	cmd.Flags().StringVar(&flagECX, FlagECXName, "", sourceFlags[5].Help)
	cmd.Flags().StringVar(&flagEDX, FlagEDXName, "", sourceFlags[6].Help)
	cmd.Flags().StringVar(&flagToolPath, FlagToolPathName, "cpuid", sourceFlags[7].Help)
	cmd.Flags().DurationVar(&flagTimeout, FlagTimeoutName, 10*time.Second, sourceFlags[8].Help)

	cmd.MarkFlagsMutuallyExclusive(FlagInputName, FlagEAXName)
	cmd.MarkFlagsMutuallyExclusive(FlagInputName, FlagCPUName)
}

func GetSourceFlagGroup() FlagGroup {
	return FlagGroup{
		GroupName: "Register Source Options",
		Flags:     sourceFlags,
	}
}

// SourceKind returns the source selected by the flags. An explicit input
// file or register value implies its source when --source was left at auto.
func SourceKind(cmd *cobra.Command) string {
	kind, _ := cmd.Flags().GetString(FlagSourceName)
	if kind != source.KindAuto {
		return kind
	}
	if input, _ := cmd.Flags().GetString(FlagInputName); input != "" {
		return source.KindFile
	}
	for _, name := range registerFlagNames {
		if cmd.Flags().Changed(name) {
			return source.KindRegs
		}
	}
	if cmd.Flags().Changed(FlagCPUName) {
		return source.KindDevCPU
	}
	return source.KindAuto
}

func ValidateSourceFlags(cmd *cobra.Command) error {
	kind, _ := cmd.Flags().GetString(FlagSourceName)
	if !slices.Contains(source.Kinds, kind) {
		return fmt.Errorf("--%s must be one of: %s", FlagSourceName, strings.Join(source.Kinds, ", "))
	}
	kind = SourceKind(cmd)
	input, _ := cmd.Flags().GetString(FlagInputName)
	if kind == source.KindFile {
		if input == "" {
			return fmt.Errorf("--%s %s requires --%s", FlagSourceName, source.KindFile, FlagInputName)
		}
		exists, err := util.FileExists(util.ExpandUser(input))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("input file %s does not exist", input)
		}
	} else if input != "" {
		return fmt.Errorf("--%s can only be used with --%s %s", FlagInputName, FlagSourceName, source.KindFile)
	}
	for _, name := range registerFlagNames {
		if !cmd.Flags().Changed(name) {
			continue
		}
		if kind != source.KindRegs {
			return fmt.Errorf("--%s can only be used with --%s %s", name, FlagSourceName, source.KindRegs)
		}
		value, _ := cmd.Flags().GetString(name)
		if _, err := source.ParseRegister(value); err != nil {
			return fmt.Errorf("--%s: %v", name, err)
		}
	}
	if cpu, _ := cmd.Flags().GetInt(FlagCPUName); cpu < 0 {
		return fmt.Errorf("--%s must be 0 or greater", FlagCPUName)
	}
	if timeout, _ := cmd.Flags().GetDuration(FlagTimeoutName); timeout <= 0 {
		return fmt.Errorf("--%s must be greater than 0", FlagTimeoutName)
	}
	return nil
}

// GetSource builds the register source selected by the source flags. The
// flags must have been validated.
func GetSource(cmd *cobra.Command) (leaf1.Source, error) {
	cpu, _ := cmd.Flags().GetInt(FlagCPUName)
	toolPath, _ := cmd.Flags().GetString(FlagToolPathName)
	timeout, _ := cmd.Flags().GetDuration(FlagTimeoutName)
	tool := source.Tool{Path: toolPath, Timeout: timeout}
	var src leaf1.Source
	switch kind := SourceKind(cmd); kind {
	case source.KindAuto:
		src = source.Auto{Sources: []leaf1.Source{source.Native{}, source.DevCPU{CPU: cpu}, tool}}
	case source.KindNative:
		src = source.Native{}
	case source.KindDevCPU:
		src = source.DevCPU{CPU: cpu}
	case source.KindTool:
		src = tool
	case source.KindFile:
		input, _ := cmd.Flags().GetString(FlagInputName)
		src = source.File{Path: util.ExpandUser(input)}
	case source.KindRegs:
		var regs [4]uint32
		for i, name := range registerFlagNames {
			value, _ := cmd.Flags().GetString(name)
			if value == "" {
				continue
			}
			v, err := source.ParseRegister(value)
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", name, err)
			}
			regs[i] = v
		}
		src = source.Static{A: regs[0], B: regs[1], C: regs[2], D: regs[3]}
	default:
		return nil, fmt.Errorf("unknown register source %s", kind)
	}
	slog.Debug("register source selected", slog.String("source", source.Describe(src)))
	return src, nil
}
