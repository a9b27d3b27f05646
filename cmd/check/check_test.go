// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package check

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Coffee Lake EAX; SSE3 and AVX in ECX, FPU in EDX
var registerArgs = []string{"--eax", "0x000906ea", "--ecx", "0x10000001", "--edx", "0x1"}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	Cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	})
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(&bytes.Buffer{})
	Cmd.SetArgs(append(args, registerArgs...))
	err := Cmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		satisfied bool
		output    []string
	}{
		{
			name:      "expression satisfied",
			args:      []string{"--require", "AVX && SSE3 && !HYPERVISOR"},
			satisfied: true,
			output:    []string{"requirement satisfied: AVX && SSE3 && !HYPERVISOR"},
		},
		{
			name:   "expression not satisfied",
			args:   []string{"--require", "AVX && AES"},
			output: []string{"requirement not satisfied: AVX && AES"},
		},
		{
			name:      "all, lower case names",
			args:      []string{"--all", "sse3,avx"},
			satisfied: true,
			output:    []string{"requirement satisfied: SSE3 && AVX"},
		},
		{
			name:   "all with missing feature",
			args:   []string{"--all", "SSE3,AES,FMA"},
			output: []string{"requirement not satisfied: SSE3 && AES && FMA", "  missing features: AES, FMA"},
		},
		{
			name:      "any",
			args:      []string{"--any", "AES,AVX"},
			satisfied: true,
			output:    []string{"requirement satisfied: AES || AVX"},
		},
		{
			name:   "any none supported",
			args:   []string{"--any", "AES,FMA"},
			output: []string{"requirement not satisfied: AES || FMA", "  missing features: AES, FMA"},
		},
		{
			name:      "microarchitecture, any case",
			args:      []string{"--uarch", "cfl"},
			satisfied: true,
			output:    []string{"requirement satisfied: uarch == CFL"},
		},
		{
			name:   "other microarchitecture",
			args:   []string{"--uarch", "SPR"},
			output: []string{"requirement not satisfied: uarch == SPR"},
		},
		{
			name:   "one of several unmet",
			args:   []string{"--require", "SSE3", "--all", "AES"},
			output: []string{"requirement satisfied: SSE3", "requirement not satisfied: AES", "  missing features: AES"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.satisfied {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				var unmet *UnmetError
				require.ErrorAs(t, err, &unmet)
				assert.Equal(t, 1, unmet.ExitCode())
			}
			lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			assert.Equal(t, tt.output, lines)
		})
	}
}

func TestCheckInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no requirement", nil},
		{"unknown feature in expression", []string{"--require", "AVX && WARP_DRIVE"}},
		{"unparsable expression", []string{"--require", "AVX &&"}},
		{"unknown feature in all", []string{"--all", "SSE3,NOPE"}},
		{"reserved is not a feature", []string{"--any", "RESERVED"}},
		{"unknown microarchitecture", []string{"--uarch", "Z80"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			var unmet *UnmetError
			assert.NotErrorAs(t, err, &unmet)
		})
	}
}
