// Package verify is a subcommand of the root command. It cross-checks the
// decoder against an independent CPUID library on the running host.
package verify

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"cpuleaf/internal/common"
	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"
	"cpuleaf/internal/translate"

	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/cobra"
)

const cmdName = "verify"

var examples = []string{
	fmt.Sprintf("  Verify this processor:            $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Verify through the cpuid driver:  $ %s %s --source devcpu", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Compare the decoded registers with an independent CPUID library",
	Long:          "Reads the registers from this host and compares the family, model, stepping, and common feature flags with the values reported by github.com/klauspost/cpuid.",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
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
	if kind := common.SourceKind(cmd); kind == source.KindFile || kind == source.KindRegs {
		err := fmt.Errorf("the %s source does not describe this host", kind)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// MismatchError is returned when the decoder and the reference disagree.
type MismatchError struct {
	Mismatches []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("decoded values differ from the reference: %s", strings.Join(e.Mismatches, ", "))
}

func (e *MismatchError) ExitCode() int {
	return 1
}

// reference is what the independent library reports for the host.
type reference struct {
	family   int
	model    int
	stepping int
	supports func(cpuid.FeatureID) bool
}

func hostReference() reference {
	return reference{
		family:   cpuid.CPU.Family,
		model:    cpuid.CPU.Model,
		stepping: cpuid.CPU.Stepping,
		supports: func(id cpuid.FeatureID) bool { return cpuid.CPU.Supports(id) },
	}
}

// referenceFeatures maps feature names to the library's identifiers. Only
// flags the library takes straight from leaf 1 are listed.
var referenceFeatures = []struct {
	name string
	id   cpuid.FeatureID
}{
	{"FPU", cpuid.X87},
	{"CX8", cpuid.CX8},
	{"CMOV", cpuid.CMOV},
	{"MMX", cpuid.MMX},
	{"FXSR", cpuid.FXSR},
	{"SSE", cpuid.SSE},
	{"SSE2", cpuid.SSE2},
	{"HTT", cpuid.HTT},
	{"SSE3", cpuid.SSE3},
	{"PCLMUL", cpuid.CLMUL},
	{"SSSE3", cpuid.SSSE3},
	{"FMA", cpuid.FMA3},
	{"CX16", cpuid.CX16},
	{"SSE4_1", cpuid.SSE4},
	{"SSE4_2", cpuid.SSE42},
	{"MOVBE", cpuid.MOVBE},
	{"POPCNT", cpuid.POPCNT},
	{"AES", cpuid.AESNI},
	{"OSXSAVE", cpuid.OSXSAVE},
	{"F16C", cpuid.F16C},
	{"RDRAND", cpuid.RDRAND},
	{"HYPERVISOR", cpuid.HYPERVISOR},
}

// comparison is one value checked against the reference.
type comparison struct {
	name      string
	decoded   string
	reference string
}

func (c comparison) matches() bool {
	return c.decoded == c.reference
}

func compare(result leaf1.Result, ref reference) []comparison {
	v := result.Version
	comparisons := []comparison{
		{"Display Family", strconv.Itoa(int(v.DisplayFamily)), strconv.Itoa(ref.family)},
		{"Effective Model", strconv.Itoa(int(v.EffectiveModel)), strconv.Itoa(ref.model)},
		{"Stepping ID", strconv.Itoa(int(v.SteppingID)), strconv.Itoa(ref.stepping)},
	}
	for _, f := range referenceFeatures {
		comparisons = append(comparisons, comparison{
			name:      f.name,
			decoded:   yesNo(result.Features.Has(f.name)),
			reference: yesNo(ref.supports(f.id)),
		})
	}
	return comparisons
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
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
	cmd.SilenceUsage = true
	slog.Debug("reference processor", slog.String("brand", cpuid.CPU.BrandName), slog.String("vendor", cpuid.CPU.VendorString))
	return report(cmd, compare(result, hostReference()))
}

func report(cmd *cobra.Command, comparisons []comparison) error {
	out := cmd.OutOrStdout()
	var mismatches []string
	for _, c := range comparisons {
		name := translate.From(c.name)
		if c.matches() {
			fmt.Fprintln(out, translate.From("%s matches", name))
			continue
		}
		mismatches = append(mismatches, c.name)
		fmt.Fprintln(out, translate.From("%s mismatch: decoded %s, reference %s", name, translate.From(c.decoded), translate.From(c.reference)))
		slog.Warn("decoded value differs from reference", slog.String("name", c.name), slog.String("decoded", c.decoded), slog.String("reference", c.reference))
	}
	if len(mismatches) > 0 {
		return &MismatchError{Mismatches: mismatches}
	}
	return nil
}
