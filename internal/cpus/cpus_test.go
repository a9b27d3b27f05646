// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpus

import (
	"testing"

	"cpuleaf/internal/leaf1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCPU_ICX(t *testing.T) {
	// Test Ice Lake (ICX) - Family 6, Model 106
	cpu, err := GetCPU(6, 106, 6)
	require.NoError(t, err)
	assert.Equal(t, UarchICX, cpu.MicroArchitecture)
	assert.Equal(t, 8, cpu.MemoryChannelCount)
	assert.Equal(t, 2, cpu.LogicalThreadCount)
}

func TestGetCPU_SKX(t *testing.T) {
	// Test Skylake (SKX) - Family 6, Model 85
	cpu, err := GetCPU(6, 85, 4)
	require.NoError(t, err)
	assert.Equal(t, UarchSKX, cpu.MicroArchitecture)
	assert.Equal(t, 6, cpu.MemoryChannelCount)
	assert.Equal(t, 2, cpu.LogicalThreadCount)
}

func TestGetCPU_ModelIsFullMatch(t *testing.T) {
	// model 8 must not match the Skylake-SP pattern "85"
	_, err := GetCPU(6, 8, 0)
	assert.Error(t, err)
	// Genoa covers models 16-31 only
	_, err = GetCPU(25, 160, 0)
	require.NoError(t, err)
	cpu, err := GetCPU(25, 17, 1)
	require.NoError(t, err)
	assert.Equal(t, UarchGenoa, cpu.MicroArchitecture)
}

func TestGetCPU_Unknown(t *testing.T) {
	_, err := GetCPU(99, 999, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CPU match not found")
}

func TestLookupVersion(t *testing.T) {
	tests := []struct {
		name  string
		eax   uint32
		uarch string
	}{
		{"Coffee Lake", 0x000906EA, UarchCFL},
		{"Kaby Lake", 0x000806E9, UarchKBL},
		{"Cascade Lake", 0x00050657, UarchCLX},
		{"Sapphire Rapids", 0x000806F8, UarchSPR},
		{"Emerald Rapids", 0x000C06F2, UarchEMR},
		{"Rome", 0x00830F10, UarchRome},
		{"Milan", 0x00A00F11, UarchMilan},
		{"Genoa", 0x00A10F11, UarchGenoa},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, err := LookupVersion(leaf1.DecodeVersion(tt.eax))
			require.NoError(t, err)
			assert.Equal(t, tt.uarch, cpu.MicroArchitecture)
		})
	}
}

func TestLookupVersion_Unknown(t *testing.T) {
	// Pentium 4, family 0xF model 2
	_, err := LookupVersion(leaf1.DecodeVersion(0x00000F29))
	assert.Error(t, err)
}

func TestGetCPUByMicroArchitecture(t *testing.T) {
	tests := []struct {
		name          string
		uarch         string
		expectError   bool
		expectedUarch string
	}{
		{
			name:          "exact match - ICX",
			uarch:         UarchICX,
			expectError:   false,
			expectedUarch: UarchICX,
		},
		{
			name:          "exact match - SPR",
			uarch:         UarchSPR,
			expectError:   false,
			expectedUarch: UarchSPR,
		},
		{
			name:          "case insensitive - icx",
			uarch:         "icx",
			expectError:   false,
			expectedUarch: UarchICX,
		},
		{
			name:        "unknown microarchitecture",
			uarch:       "UNKNOWN",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, err := GetCPUByMicroArchitecture(tt.uarch)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUarch, cpu.MicroArchitecture)
			}
		})
	}
}

func TestIsIntelCPUFamily(t *testing.T) {
	tests := []struct {
		name     string
		family   int
		expected bool
	}{
		{"family 6", 6, true},
		{"family 19", 19, true},
		{"family 15", 15, false},
		{"family 0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsIntelCPUFamily(tt.family)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIdentifiersHaveCharacteristics(t *testing.T) {
	for _, entry := range cpuIdentifiers {
		_, ok := cpuCharacteristicsMap[entry.MicroArchitecture]
		assert.True(t, ok, entry.MicroArchitecture)
	}
}
