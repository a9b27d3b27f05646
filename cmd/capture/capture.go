// Package capture is a subcommand of the root command. It saves the leaf 1
// registers to a snapshot file that the other commands can read with --input.
package capture

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cpuleaf/internal/common"
	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"
	"cpuleaf/internal/translate"

	"github.com/spf13/cobra"
)

const cmdName = "capture"

var examples = []string{
	fmt.Sprintf("  Capture this processor:           $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Capture to a named file:          $ %s %s skylake.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Capture logical processor 3:      $ %s %s --cpu 3", common.AppName, cmdName),
	fmt.Sprintf("  Convert 'cpuid -r' output:        $ %s %s --input cpuid.txt cpuid.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [file]",
	Short:         "Save the registers to a snapshot file",
	Long:          "Saves the registers to a YAML snapshot file. The file name defaults to <host>_leaf1.yaml in the output directory. Use - to write to stdout.",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
}

func init() {
	common.AddSourceFlags(Cmd)
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	return []common.FlagGroup{common.GetSourceFlagGroup()}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateSourceFlags(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// defaultFileName is the snapshot name used when none is given.
func defaultFileName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s_leaf%d.yaml", common.SanitizeName(host), leaf1.Leaf)
}

func runCmd(cmd *cobra.Command, args []string) error {
	src, err := common.GetSource(cmd)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	snapshot, err := src.Snapshot()
	if err != nil {
		err = fmt.Errorf("failed to read registers: %w", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	cmd.SilenceUsage = true
	capture := source.NewCapture(snapshot, source.Describe(src))
	name := defaultFileName()
	if len(args) > 0 {
		name = args[0]
	}
	if name == "-" {
		out, err := source.MarshalCapture(capture)
		if err != nil {
			slog.Error(err.Error())
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	path := common.OutputPath(common.GetAppContext(cmd), name)
	if err := source.WriteCapture(path, capture); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		return err
	}
	slog.Info("snapshot written", slog.String("path", path), slog.String("source", capture.Source))
	fmt.Fprintln(cmd.OutOrStdout(), translate.From("snapshot written to %s", path))
	return nil
}
