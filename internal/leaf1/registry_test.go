// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import (
	"strings"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Total(t *testing.T) {
	for _, reg := range Registers {
		features, err := Registry(reg)
		require.NoError(t, err)
		require.Len(t, features, 32)
		for bit, f := range features {
			assert.Equal(t, uint(bit), f.Bit, "%v bit %d", reg, bit)
			assert.Equal(t, reg, f.Register)
			assert.NotEmpty(t, f.Name)
		}
	}
	assert.Len(t, Features(), 64)
}

func TestRegistry_ReturnsCopy(t *testing.T) {
	features, err := Registry(RegisterC)
	require.NoError(t, err)
	features[0].Name = "CLOBBERED"

	f, err := Lookup(RegisterC, 0)
	require.NoError(t, err)
	assert.Equal(t, "SSE3", f.Name)
	again, err := Registry(RegisterC)
	require.NoError(t, err)
	assert.Equal(t, "SSE3", again[0].Name)
	fs := NewFeatureSet(1, 0)
	assert.True(t, fs.Has("SSE3"))
	assert.False(t, fs.Has("CLOBBERED"))
	_, ok := Find("CLOBBERED")
	assert.False(t, ok)
}

func TestRegistry_UniqueNames(t *testing.T) {
	seen := mapset.NewSet[string]()
	for _, f := range Features() {
		if f.Name == Reserved {
			assert.Empty(t, f.Description)
			continue
		}
		assert.False(t, seen.Contains(f.Name), "duplicate feature name %s", f.Name)
		seen.Add(f.Name)
	}
	assert.Equal(t, 62, seen.Cardinality())
}

func TestLookup(t *testing.T) {
	tests := []struct {
		reg  Register
		bit  int
		name string
	}{
		{RegisterC, 0, "SSE3"},
		{RegisterC, 16, Reserved},
		{RegisterC, 24, "TSC_DEADLINE"},
		{RegisterC, 31, "HYPERVISOR"},
		{RegisterD, 0, "FPU"},
		{RegisterD, 4, "TSC"},
		{RegisterD, 10, Reserved},
		{RegisterD, 31, "PBE"},
	}
	for _, tt := range tests {
		f, err := Lookup(tt.reg, tt.bit)
		require.NoError(t, err)
		assert.Equal(t, tt.name, f.Name)
	}
}

func TestLookup_InvalidArgument(t *testing.T) {
	for _, bit := range []int{-1, 32, 64} {
		_, err := Lookup(RegisterC, bit)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	_, err := Lookup(Register(2), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.True(t, strings.Contains(err.Error(), "Register(2)"))
}

func TestFind(t *testing.T) {
	f, ok := Find("AVX")
	require.True(t, ok)
	assert.Equal(t, RegisterC, f.Register)
	assert.Equal(t, uint(28), f.Bit)

	f, ok = Find(Reserved)
	require.True(t, ok)
	assert.Equal(t, RegisterD, f.Register)

	_, ok = Find("AVX512F")
	assert.False(t, ok)
}
