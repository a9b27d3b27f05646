// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirement(t *testing.T) {
	// SSE3, SSE4_1, AVX in ECX; FPU, SSE, SSE2 in EDX
	fs := NewFeatureSet(1<<0|1<<19|1<<28, 1<<0|1<<25|1<<26)
	tests := []struct {
		expression string
		want       bool
	}{
		{"AVX", true},
		{"AVX && SSE4_1", true},
		{"AVX && SSE4_2", false},
		{"SSE4_1 || SSE4_2", true},
		{"SSE && SSE2 && !HYPERVISOR", true},
		{"(FMA || F16C) && AVX", false},
		{"AVX512F", false},
		{"!AVX512F && FPU", true},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			req, err := NewRequirement(tt.expression)
			require.NoError(t, err)
			got, err := req.Satisfied(fs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequirement_Unknown(t *testing.T) {
	req, err := NewRequirement("AVX && AVX512F && SSE4_2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AVX", "AVX512F", "SSE4_2"}, req.Features())
	assert.Equal(t, []string{"AVX512F"}, req.Unknown())
	assert.Equal(t, "AVX && AVX512F && SSE4_2", req.String())
}

func TestRequirement_ParseError(t *testing.T) {
	_, err := NewRequirement("AVX &&")
	assert.Error(t, err)
}

func TestRequirement_NotBoolean(t *testing.T) {
	req, err := NewRequirement("1 + 2")
	require.NoError(t, err)
	_, err = req.Satisfied(FeatureSet{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a boolean")
}
