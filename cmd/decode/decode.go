// Package decode is a subcommand of the root command. It reads the leaf 1
// registers and reports what they decode to.
package decode

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"cpuleaf/internal/common"
	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/report"
	"cpuleaf/internal/source"
	"cpuleaf/internal/table"
	"cpuleaf/internal/translate"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const cmdName = "decode"

var examples = []string{
	fmt.Sprintf("  Decode this processor:            $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Feature flags only, as JSON:      $ %s %s --features --format json", common.AppName, cmdName),
	fmt.Sprintf("  Supported feature names:          $ %s %s --list", common.AppName, cmdName),
	fmt.Sprintf("  Bit by bit dump of a capture:     $ %s %s --dump --input skylake.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Spreadsheet in a directory:       $ %s %s --format xlsx --output reports", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Decode the version, additional information, and feature flags",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagAll bool
	// categories
	flagVersion    bool
	flagAdditional bool
	flagFeatures   bool
	flagUarch      bool

	flagFormat []string
	flagList   bool
	flagDump   bool
)

// flag names
const (
	flagAllName = "all"
	// categories
	flagVersionName    = "version-info"
	flagAdditionalName = "additional"
	flagFeaturesName   = "features"
	flagUarchName      = "uarch"

	flagFormatName = "format"
	flagListName   = "list"
	flagDumpName   = "dump"
)

// categories maps flag names to tables that will be included in report
var categories = []common.Category{
	{FlagName: flagVersionName, FlagVar: &flagVersion, Help: "Processor Version", TableNames: []string{table.VersionTableName}},
	{FlagName: flagAdditionalName, FlagVar: &flagAdditional, Help: "Brand, CLFLUSH, and APIC Information", TableNames: []string{table.AdditionalTableName}},
	{FlagName: flagFeaturesName, FlagVar: &flagFeatures, Help: "Feature Flags", TableNames: []string{table.FeatureTableName}},
	{FlagName: flagUarchName, FlagVar: &flagUarch, Help: "Microarchitecture", TableNames: []string{table.MicroarchitectureTableName}},
}

func init() {
	// set up category flags
	for _, cat := range categories {
		Cmd.Flags().BoolVar(cat.FlagVar, cat.FlagName, cat.DefaultValue, cat.Help)
	}
	// set up other flags
	Cmd.Flags().BoolVar(&flagAll, flagAllName, true, "")
	Cmd.Flags().StringSliceVar(&flagFormat, flagFormatName, []string{report.FormatTxt}, "")
	Cmd.Flags().BoolVar(&flagList, flagListName, false, "")
	Cmd.Flags().BoolVar(&flagDump, flagDumpName, false, "")

	common.AddSourceFlags(Cmd)

	Cmd.MarkFlagsMutuallyExclusive(flagListName, flagDumpName)
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagAllName,
			Help: "report all categories",
		},
	}
	for _, cat := range categories {
		flags = append(flags, common.Flag{
			Name: cat.FlagName,
			Help: cat.Help,
		})
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Categories",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: flagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(report.FormatOptions, ", ")),
		},
		{
			Name: flagListName,
			Help: "print only the names of the supported features",
		},
		{
			Name: flagDumpName,
			Help: "print every bit field and feature bit of the registers",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Other Options",
		Flags:     flags,
	})
	groups = append(groups, common.GetSourceFlagGroup())
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	// clear flagAll if any categories are selected
	if flagAll {
		for _, cat := range categories {
			if cat.FlagVar != nil && *cat.FlagVar {
				flagAll = false
				break
			}
		}
	}
	// validate format options
	for _, format := range flagFormat {
		if !slices.Contains(report.FormatOptions, format) {
			err := fmt.Errorf("format options are: %s", strings.Join(report.FormatOptions, ", "))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	if (flagList || flagDump) && cmd.Flags().Changed(flagFormatName) {
		err := fmt.Errorf("--%s cannot be combined with --%s or --%s", flagFormatName, flagListName, flagDumpName)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	// common source flags
	if err := common.ValidateSourceFlags(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	src, err := common.GetSource(cmd)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	result, err := leaf1.IdentifyFrom(src)
	if err != nil {
		err = fmt.Errorf("failed to read registers: %w", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	slog.Info("decoded registers", slog.String("source", source.Describe(src)), slog.String("version", result.Version.String()))
	out := cmd.OutOrStdout()
	switch {
	case flagList:
		fmt.Fprintln(out, wrapList(translate.From("CPU Features: %s", ""), result.Features.Enabled(), terminalWidth()))
		return nil
	case flagDump:
		fmt.Fprint(out, dump(result))
		return nil
	}
	var tableNames []string
	for _, cat := range categories {
		if (cat.FlagVar != nil && *cat.FlagVar) || flagAll {
			tableNames = append(tableNames, cat.TableNames...)
		}
	}
	tables, err := table.GetTables(tableNames...)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	allTableValues := table.ProcessTables(tables, result)
	return writeReports(cmd, out, allTableValues)
}

// writeReports prints a single text or json report to out. Spreadsheets,
// multiple formats, and an explicit output directory produce files.
func writeReports(cmd *cobra.Command, out io.Writer, allTableValues []table.TableValues) error {
	appContext := common.GetAppContext(cmd)
	toStdout := appContext.OutputDir == "" && len(flagFormat) == 1 && flagFormat[0] != report.FormatXlsx
	for _, format := range flagFormat {
		reportBytes, err := report.Create(format, allTableValues)
		if err != nil {
			err = fmt.Errorf("failed to create %s report: %w", format, err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			cmd.SilenceUsage = true
			return err
		}
		if toStdout {
			_, err = out.Write(reportBytes)
			return err
		}
		host, _ := os.Hostname()
		name := fmt.Sprintf("%s_%s.%s", common.SanitizeName(host), cmdName, format)
		path := common.OutputPath(appContext, name)
		if err := common.WriteOutput(path, reportBytes); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			cmd.SilenceUsage = true
			return err
		}
		slog.Info("report written", slog.String("path", path))
		fmt.Fprintln(out, translate.From("report written to %s", filepath.Clean(path)))
	}
	return nil
}

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd()) // #nosec G115
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// wrapList joins names after prefix, separated by ", ", breaking lines
// before width columns. Continuation lines are indented to the end of the
// prefix. A width of 0 disables wrapping.
func wrapList(prefix string, names []string, width int) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	start := utf8.RuneCountInString(prefix)
	col := start
	indent := strings.Repeat(" ", start)
	for i, name := range names {
		item := name
		if i < len(names)-1 {
			item += ","
		}
		if i > 0 {
			if width > 0 && col+1+len(item) > width && col > start {
				sb.WriteString("\n" + indent)
				col = start
			} else {
				sb.WriteString(" ")
				col++
			}
		}
		sb.WriteString(item)
		col += len(item)
	}
	return sb.String()
}

func dump(result leaf1.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "EAX=0x%08x EBX=0x%08x ECX=0x%08x EDX=0x%08x\n\n", result.Registers.A, result.Registers.B, result.Registers.C, result.Registers.D)
	sb.WriteString(result.Version.VersionDump())
	sb.WriteString("\n")
	sb.WriteString(result.Additional.String())
	sb.WriteString("\n\n")
	for _, line := range strings.SplitAfter(result.Features.FeatureDump(), "\n") {
		if name, state, ok := strings.Cut(line, ": "); ok {
			line = name + ": " + translate.From(strings.TrimSuffix(state, "\n")) + "\n"
		}
		sb.WriteString(line)
	}
	return sb.String()
}
