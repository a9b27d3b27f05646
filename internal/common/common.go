// Package common defines data structures and functions that are used by multiple
// application commands, e.g., decode, check, capture, serve.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cpuleaf/internal/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	Timestamp   string // Timestamp is the time the application started.
	OutputDir   string // OutputDir is the directory requested with --output, empty when output goes to the current directory or stdout.
	LogFilePath string // LogFilePath is the path to the log file, empty when logging elsewhere.
	Version     string // Version is the version of the application.
	Debug       bool   // Debug is true when debug logging is enabled.
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// GetAppContext returns the AppContext stored on the root command.
func GetAppContext(cmd *cobra.Command) AppContext {
	if appContext, ok := cmd.Root().Context().Value(AppContext{}).(AppContext); ok {
		return appContext
	}
	return AppContext{}
}

// OutputPath resolves a file name given on the command line. Bare file names
// are placed in the output directory.
func OutputPath(appContext AppContext, name string) string {
	if name == "" || filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) || appContext.OutputDir == "" {
		return name
	}
	return filepath.Join(appContext.OutputDir, name)
}

// WriteOutput writes out to path, or to stdout when path is empty or "-".
func WriteOutput(path string, out []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := util.CreateDirectoryIfNotExists(dir, 0755); err != nil { // #nosec G301
			return err
		}
	}
	if err := os.WriteFile(path, out, 0644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SanitizeName replaces the characters that are not safe in file names with
// underscores. Letters, digits, underscores, periods, and dashes are kept.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == '.' {
			return r
		}
		if r >= 'a' && r <= 'z' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r
		}
		if r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, name)
}

// Category selects report tables with a command line flag.
type Category struct {
	FlagName     string
	TableNames   []string
	FlagVar      *bool
	DefaultValue bool
	Help         string
}

// UsageFunc prints a command's flags grouped the way groups returns them,
// followed by the global flags.
func UsageFunc(groups func() []FlagGroup) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
		if cmd.Example != "" {
			cmd.Printf("Examples:\n%s\n\n", cmd.Example)
		}
		cmd.Println("Flags:")
		for _, group := range groups() {
			cmd.Printf("  %s:\n", group.GroupName)
			for _, flag := range group.Flags {
				flagDefault := ""
				if f := cmd.Flags().Lookup(flag.Name); f != nil && f.DefValue != "" && f.DefValue != "[]" {
					flagDefault = fmt.Sprintf(" (default: %s)", f.DefValue)
				}
				cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
			}
		}
		cmd.Println("\nGlobal Flags:")
		cmd.InheritedFlags().VisitAll(func(pf *pflag.Flag) {
			flagDefault := ""
			if pf.DefValue != "" && pf.DefValue != "false" {
				flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
			}
			cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
		})
		return nil
	}
}
