// Package diff is a subcommand of the root command. It compares two snapshot
// files and prints what changed between them.
package diff

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cpuleaf/internal/common"
	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"
	"cpuleaf/internal/table"
	"cpuleaf/internal/translate"
	"cpuleaf/internal/util"

	"github.com/spf13/cobra"
)

const cmdName = "diff"

var examples = []string{
	fmt.Sprintf("  Compare two captures:             $ %s %s before.yaml after.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Compare with 'cpuid -r' output:   $ %s %s host.yaml cpuid.txt", common.AppName, cmdName),
	fmt.Sprintf("  Fail when anything changed:       $ %s %s --exit-code before.yaml after.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " <old> <new>",
	Short:         "Compare two snapshot files",
	Long:          "Prints the version and additional information fields that differ between two snapshot files, followed by the features added and removed.",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
}

var flagExitCode bool

const flagExitCodeName = "exit-code"

// comparedTables are the single record tables compared field by field.
var comparedTables = []string{table.VersionTableName, table.AdditionalTableName}

func init() {
	Cmd.Flags().BoolVar(&flagExitCode, flagExitCodeName, false, "")
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	return []common.FlagGroup{
		{
			GroupName: "Options",
			Flags: []common.Flag{
				{
					Name: flagExitCodeName,
					Help: "exit with 1 when the snapshots differ",
				},
			},
		},
	}
}

// DifferentError is returned with --exit-code when the snapshots differ.
type DifferentError struct {
	Changes int
}

func (e *DifferentError) Error() string {
	return fmt.Sprintf("snapshots differ in %d place(s)", e.Changes)
}

func (e *DifferentError) ExitCode() int {
	return 1
}

func validateFlags(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		exists, err := util.FileExists(path)
		if err == nil && !exists {
			err = fmt.Errorf("snapshot file %s does not exist", path)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	var results [2]leaf1.Result
	for i, path := range args {
		c, err := source.ReadCapture(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			cmd.SilenceUsage = true
			return err
		}
		results[i] = leaf1.Identify(c.Snapshot())
	}
	cmd.SilenceUsage = true
	changes, err := printDiff(cmd.OutOrStdout(), results[0], results[1])
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	slog.Info("snapshots compared", slog.String("old", args[0]), slog.String("new", args[1]), slog.Int("changes", changes))
	if changes > 0 && flagExitCode {
		return &DifferentError{Changes: changes}
	}
	return nil
}

// printDiff writes the differences between prev and next to w and returns
// how many it found.
func printDiff(w io.Writer, prev, next leaf1.Result) (int, error) {
	tables, err := table.GetTables(comparedTables...)
	if err != nil {
		return 0, err
	}
	changes := 0
	for _, def := range tables {
		prevValues := table.GetValuesForTable(def, prev)
		nextValues := table.GetValuesForTable(def, next)
		for i, field := range prevValues.Fields {
			if i >= len(nextValues.Fields) || len(field.Values) == 0 || len(nextValues.Fields[i].Values) == 0 {
				continue
			}
			from, to := field.Values[0], nextValues.Fields[i].Values[0]
			if from == to {
				continue
			}
			fmt.Fprintln(w, translate.From("%s changed from %s to %s", translate.From(field.Name), from, to))
			changes++
		}
	}
	for _, reg := range leaf1.Registers {
		from, _ := prev.Features.Value(reg)
		to, _ := next.Features.Value(reg)
		if from != to {
			fmt.Fprintln(w, translate.From("%s changed from %s to %s", reg.String(), hex(from), hex(to)))
			changes++
		}
	}
	// reserved placeholders are not features, so leaf1.Diff skips them
	for _, f := range leaf1.Features() {
		if f.Name != leaf1.Reserved {
			continue
		}
		from, _ := prev.Features.Bit(f.Register, int(f.Bit))
		to, _ := next.Features.Bit(f.Register, int(f.Bit))
		if from != to {
			name := fmt.Sprintf("%s[%02d] %s", f.Register, f.Bit, f.Name)
			fmt.Fprintln(w, translate.From("%s changed from %s to %s", name, bitValue(from), bitValue(to)))
			changes++
		}
	}
	added, removed := leaf1.Diff(prev.Features, next.Features)
	if len(added) > 0 {
		fmt.Fprintln(w, translate.From("added: %s", strings.Join(added, ", ")))
	}
	if len(removed) > 0 {
		fmt.Fprintln(w, translate.From("removed: %s", strings.Join(removed, ", ")))
	}
	changes += len(added) + len(removed)
	if changes == 0 {
		fmt.Fprintln(w, translate.From("no differences"))
	}
	return changes, nil
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}

func bitValue(set bool) string {
	if set {
		return "1"
	}
	return "0"
}
