// Package check is a subcommand of the root command. It tests the feature
// flags against a requirement and fails when the requirement is not met.
package check

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cpuleaf/internal/common"
	"cpuleaf/internal/cpus"
	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"
	"cpuleaf/internal/translate"

	"github.com/spf13/cobra"
)

const cmdName = "check"

var examples = []string{
	fmt.Sprintf("  Require AVX and one of SSE4.x:    $ %s %s --require 'AVX && (SSE4_1 || SSE4_2)'", common.AppName, cmdName),
	fmt.Sprintf("  Require every listed feature:     $ %s %s --all SSE3,SSSE3,POPCNT", common.AppName, cmdName),
	fmt.Sprintf("  Require at least one feature:     $ %s %s --any AES,PCLMUL", common.AppName, cmdName),
	fmt.Sprintf("  Require a microarchitecture:      $ %s %s --uarch SPR", common.AppName, cmdName),
	fmt.Sprintf("  Check a captured snapshot:        $ %s %s --all AVX --input host.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Check that the processor supports a set of features",
	Long:          "Evaluates the requirements against the decoded feature flags. The exit code is 1 when any requirement is not satisfied.",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagRequire string
	flagAll     []string
	flagAny     []string
	flagUarch   string
)

// flag names
const (
	flagRequireName = "require"
	flagAllName     = "all"
	flagAnyName     = "any"
	flagUarchName   = "uarch"
)

func init() {
	Cmd.Flags().StringVar(&flagRequire, flagRequireName, "", "")
	Cmd.Flags().StringSliceVar(&flagAll, flagAllName, []string{}, "")
	Cmd.Flags().StringSliceVar(&flagAny, flagAnyName, []string{}, "")
	Cmd.Flags().StringVar(&flagUarch, flagUarchName, "", "")

	common.AddSourceFlags(Cmd)

	Cmd.MarkFlagsOneRequired(flagRequireName, flagAllName, flagAnyName, flagUarchName)
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagRequireName,
			Help: "boolean expression over feature names, e.g., 'AVX && !HYPERVISOR'",
		},
		{
			Name: flagAllName,
			Help: "comma separated features that must all be supported",
		},
		{
			Name: flagAnyName,
			Help: "comma separated features of which at least one must be supported",
		},
		{
			Name: flagUarchName,
			Help: "microarchitecture the processor must be, e.g., SPR",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Requirement Options",
		Flags:     flags,
	})
	groups = append(groups, common.GetSourceFlagGroup())
	return groups
}

// UnmetError is returned when at least one requirement is not satisfied.
type UnmetError struct {
	Requirements []string
}

func (e *UnmetError) Error() string {
	return fmt.Sprintf("requirements not satisfied: %s", strings.Join(e.Requirements, "; "))
}

func (e *UnmetError) ExitCode() int {
	return 1
}

// requirement is one condition to evaluate against the feature flags.
type requirement struct {
	description string
	// evaluate returns whether the condition holds and the names of the
	// features it found missing, if it can tell.
	evaluate func(leaf1.Result) (bool, []string, error)
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if _, err := buildRequirements(); err != nil {
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

// buildRequirements turns the requirement flags into requirements. Feature
// names must be in the registry.
func buildRequirements() ([]requirement, error) {
	var requirements []requirement
	if flagRequire != "" {
		r, err := leaf1.NewRequirement(flagRequire)
		if err != nil {
			return nil, err
		}
		if unknown := r.Unknown(); len(unknown) > 0 {
			return nil, fmt.Errorf("unknown feature(s) in --%s: %s", flagRequireName, strings.Join(unknown, ", "))
		}
		requirements = append(requirements, requirement{
			description: r.String(),
			evaluate: func(result leaf1.Result) (bool, []string, error) {
				ok, err := r.Satisfied(result.Features)
				return ok, nil, err
			},
		})
	}
	all, err := featureNames(flagAllName, flagAll)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		requirements = append(requirements, requirement{
			description: strings.Join(all, " && "),
			evaluate: func(result leaf1.Result) (bool, []string, error) {
				var missing []string
				for _, name := range all {
					if !result.Features.Has(name) {
						missing = append(missing, name)
					}
				}
				return len(missing) == 0, missing, nil
			},
		})
	}
	anyOf, err := featureNames(flagAnyName, flagAny)
	if err != nil {
		return nil, err
	}
	if len(anyOf) > 0 {
		requirements = append(requirements, requirement{
			description: strings.Join(anyOf, " || "),
			evaluate: func(result leaf1.Result) (bool, []string, error) {
				if result.Features.HasAny(anyOf...) {
					return true, nil, nil
				}
				return false, anyOf, nil
			},
		})
	}
	if flagUarch != "" {
		want, err := cpus.GetCPUByMicroArchitecture(flagUarch)
		if err != nil {
			return nil, fmt.Errorf("unknown microarchitecture in --%s: %s", flagUarchName, flagUarch)
		}
		requirements = append(requirements, requirement{
			description: "uarch == " + want.MicroArchitecture,
			evaluate: func(result leaf1.Result) (bool, []string, error) {
				cpu, err := cpus.LookupVersion(result.Version)
				if err != nil {
					slog.Debug("microarchitecture not recognized", slog.String("version", result.Version.String()))
					return false, nil, nil
				}
				return cpu.MicroArchitecture == want.MicroArchitecture, nil, nil
			},
		})
	}
	return requirements, nil
}

// featureNames trims and upper cases the names given to flag and checks them
// against the registry.
func featureNames(flag string, values []string) ([]string, error) {
	var names, unknown []string
	for _, value := range values {
		name := strings.ToUpper(strings.TrimSpace(value))
		if name == "" {
			continue
		}
		if _, ok := leaf1.Find(name); !ok || name == leaf1.Reserved {
			unknown = append(unknown, value)
			continue
		}
		names = append(names, name)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown feature(s) in --%s: %s", flag, strings.Join(unknown, ", "))
	}
	return names, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	requirements, err := buildRequirements()
	if err != nil {
		return err
	}
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
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()
	var unmet []string
	for _, r := range requirements {
		ok, missing, err := r.evaluate(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			return err
		}
		slog.Info("requirement evaluated", slog.String("requirement", r.description), slog.Bool("satisfied", ok), slog.String("source", source.Describe(src)))
		if ok {
			fmt.Fprintln(out, translate.From("requirement satisfied: %s", r.description))
			continue
		}
		unmet = append(unmet, r.description)
		fmt.Fprintln(out, translate.From("requirement not satisfied: %s", r.description))
		if len(missing) > 0 {
			fmt.Fprintln(out, "  "+translate.From("missing features: %s", strings.Join(missing, ", ")))
		}
	}
	if len(unmet) > 0 {
		return &UnmetError{Requirements: unmet}
	}
	return nil
}
