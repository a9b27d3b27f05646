// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package verify

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cpuleaf/internal/leaf1"

	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coffeeLake = leaf1.Identify(leaf1.Snapshot{A: 0x000906ea, B: 0x00100800, C: 0x7ffafbbf, D: 0xbfebfbff})

// coffeeLakeReference reports what the library would on the same processor.
func coffeeLakeReference() reference {
	return reference{
		family:   6,
		model:    158,
		stepping: 10,
		supports: func(id cpuid.FeatureID) bool {
			for _, f := range referenceFeatures {
				if f.id == id {
					return coffeeLake.Features.Has(f.name)
				}
			}
			return false
		},
	}
}

func TestCompareMatches(t *testing.T) {
	comparisons := compare(coffeeLake, coffeeLakeReference())
	require.Len(t, comparisons, 3+len(referenceFeatures))
	for _, c := range comparisons {
		assert.True(t, c.matches(), c.name)
	}
	assert.Equal(t, comparison{"Effective Model", "158", "158"}, comparisons[1])
}

func TestCompareMismatches(t *testing.T) {
	ref := coffeeLakeReference()
	ref.model = 14
	ref.supports = func(id cpuid.FeatureID) bool { return id == cpuid.HYPERVISOR }
	var mismatched []string
	for _, c := range compare(coffeeLake, ref) {
		if !c.matches() {
			mismatched = append(mismatched, c.name)
		}
	}
	assert.Contains(t, mismatched, "Effective Model")
	assert.Contains(t, mismatched, "SSE3")
	assert.Contains(t, mismatched, "HYPERVISOR")
	assert.NotContains(t, mismatched, "Display Family")
}

func TestReferenceFeaturesAreRegistered(t *testing.T) {
	for _, f := range referenceFeatures {
		_, ok := leaf1.Find(f.name)
		assert.True(t, ok, f.name)
	}
}

func TestReport(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, report(cmd, []comparison{{"SSE3", "Yes", "Yes"}}))
	assert.Equal(t, "SSE3 matches\n", out.String())

	out.Reset()
	err := report(cmd, []comparison{{"Stepping ID", "10", "10"}, {"AES", "Yes", "No"}})
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"AES"}, mismatch.Mismatches)
	assert.Equal(t, 1, mismatch.ExitCode())
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, []string{"Stepping ID matches", "AES mismatch: decoded Yes, reference No"}, lines)
}

func TestValidateFlagsRejectsOtherHosts(t *testing.T) {
	reset := func() {
		Cmd.Flags().VisitAll(func(f *pflag.Flag) {
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		})
	}
	defer reset()

	reset()
	require.NoError(t, Cmd.Flags().Set("eax", "0x906ea"))
	assert.Error(t, validateFlags(Cmd, nil))

	reset()
	input := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(input, []byte("leaf: 1\nsubleaf: 0\neax: 0x906ea\nebx: 0\necx: 0\nedx: 0\n"), 0600))
	require.NoError(t, Cmd.Flags().Set("input", input))
	assert.ErrorContains(t, validateFlags(Cmd, nil), "does not describe this host")

	reset()
	require.NoError(t, Cmd.Flags().Set("source", "native"))
	assert.NoError(t, validateFlags(Cmd, nil))
}
