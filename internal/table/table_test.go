// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package table

import (
	"testing"

	"cpuleaf/internal/leaf1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Core i7-8700K as reported by cpuid -r on bare metal
var coffeeLake = leaf1.Snapshot{A: 0x000906ea, B: 0x00100800, C: 0x7ffafbbf, D: 0xbfebfbff}

func fieldValue(t *testing.T, tv TableValues, name string) string {
	t.Helper()
	i, err := GetFieldIndex(name, tv)
	require.NoError(t, err)
	return tv.Fields[i].Values[0]
}

func TestGetTables(t *testing.T) {
	tables, err := GetTables()
	require.NoError(t, err)
	require.Len(t, tables, len(TableNames))
	for i, table := range tables {
		assert.Equal(t, TableNames[i], table.Name)
		assert.NotNil(t, table.FieldsFunc)
	}

	tables, err = GetTables(FeatureTableName)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.True(t, tables[0].HasRows)

	_, err = GetTables("Bogus")
	assert.Error(t, err)
}

func TestVersionTable(t *testing.T) {
	table, err := GetTableByName(VersionTableName)
	require.NoError(t, err)
	tv := GetValuesForTable(table, leaf1.Identify(coffeeLake))
	assert.Equal(t, "0x000906ea", fieldValue(t, tv, "EAX"))
	assert.Equal(t, "10", fieldValue(t, tv, "Stepping ID"))
	assert.Equal(t, "14", fieldValue(t, tv, "Model"))
	assert.Equal(t, "6", fieldValue(t, tv, "Family ID"))
	assert.Equal(t, "0 (Original OEM Processor)", fieldValue(t, tv, "Processor Type"))
	assert.Equal(t, "9", fieldValue(t, tv, "Extended Model ID"))
	assert.Equal(t, "158", fieldValue(t, tv, "Effective Model"))
	assert.Equal(t, "6", fieldValue(t, tv, "Display Family"))
	assert.Equal(t, "0x06ea", fieldValue(t, tv, "Signature"))
}

func TestVersionTableReservedFields(t *testing.T) {
	table, err := GetTableByName(VersionTableName)
	require.NoError(t, err)
	tv := GetValuesForTable(table, leaf1.Identify(coffeeLake))
	assert.Equal(t, "0", fieldValue(t, tv, "Reserved A"))
	assert.Equal(t, "0", fieldValue(t, tv, "Reserved B"))

	// both reserved fields all ones, everything else zero
	tv = GetValuesForTable(table, leaf1.Identify(leaf1.Snapshot{A: 0xF000C000}))
	assert.Equal(t, "3", fieldValue(t, tv, "Reserved A"))
	assert.Equal(t, "15", fieldValue(t, tv, "Reserved B"))
	assert.Equal(t, "0", fieldValue(t, tv, "Display Family"))
	i, err := GetFieldIndex("Reserved A", tv)
	require.NoError(t, err)
	assert.Equal(t, "bits 15:14", tv.Fields[i].Description)
	i, err = GetFieldIndex("Reserved B", tv)
	require.NoError(t, err)
	assert.Equal(t, "bits 31:28", tv.Fields[i].Description)
}

func TestAdditionalTable(t *testing.T) {
	table, err := GetTableByName(AdditionalTableName)
	require.NoError(t, err)
	tv := GetValuesForTable(table, leaf1.Identify(coffeeLake))
	assert.Equal(t, "0", fieldValue(t, tv, "Brand Index"))
	assert.Equal(t, "64", fieldValue(t, tv, "CLFLUSH Line Size"))
	assert.Equal(t, "16", fieldValue(t, tv, "Max Addressable IDs"))
	assert.Equal(t, "0", fieldValue(t, tv, "Local APIC ID"))
	assert.Empty(t, tv.Insights)

	// HTT clear with a non-zero count
	tv = GetValuesForTable(table, leaf1.Identify(leaf1.Snapshot{B: 0x00040000}))
	require.Len(t, tv.Insights, 1)
	assert.Contains(t, tv.Insights[0].Justification, "HTT")
}

func TestFeatureTable(t *testing.T) {
	table, err := GetTableByName(FeatureTableName)
	require.NoError(t, err)
	tv := GetValuesForTable(table, leaf1.Identify(coffeeLake))
	require.Len(t, tv.Fields, 5)
	for _, field := range tv.Fields {
		assert.Len(t, field.Values, 64, field.Name)
	}
	// first row is ECX bit 0, row 32 is EDX bit 0
	assert.Equal(t, "ECX", tv.Fields[0].Values[0])
	assert.Equal(t, "SSE3", tv.Fields[2].Values[0])
	assert.Equal(t, "Yes", tv.Fields[3].Values[0])
	assert.Equal(t, "EDX", tv.Fields[0].Values[32])
	assert.Equal(t, "FPU", tv.Fields[2].Values[32])
	// ECX bit 31 is clear on bare metal
	assert.Equal(t, "HYPERVISOR", tv.Fields[2].Values[31])
	assert.Equal(t, "No", tv.Fields[3].Values[31])
	assert.Empty(t, tv.Insights)
}

func TestFeatureTableInsights(t *testing.T) {
	table, err := GetTableByName(FeatureTableName)
	require.NoError(t, err)
	// HYPERVISOR, AVX without OSXSAVE, reserved EDX bit 10
	tv := GetValuesForTable(table, leaf1.Identify(leaf1.Snapshot{C: 1<<31 | 1<<28, D: 1 << 10}))
	require.Len(t, tv.Insights, 3)
	assert.Contains(t, tv.Insights[0].Justification, "HYPERVISOR")
	assert.Contains(t, tv.Insights[1].Justification, "OSXSAVE")
	assert.Contains(t, tv.Insights[2].Justification, "reserved")
}

func TestMicroarchitectureTable(t *testing.T) {
	table, err := GetTableByName(MicroarchitectureTableName)
	require.NoError(t, err)
	tv := GetValuesForTable(table, leaf1.Identify(coffeeLake))
	assert.Equal(t, "CFL", fieldValue(t, tv, "Microarchitecture"))
	assert.Equal(t, "Intel", fieldValue(t, tv, "Vendor"))
	assert.Equal(t, "2", fieldValue(t, tv, "Memory Channels"))
	assert.Equal(t, "Unknown", fieldValue(t, tv, "Cache Ways"))

	// unknown processors produce an empty table
	tv = GetValuesForTable(table, leaf1.Identify(leaf1.Snapshot{}))
	assert.Empty(t, tv.Fields)
	assert.Equal(t, "Microarchitecture not recognized.", tv.NoDataFound)
}

func TestGetValuesForTableValidation(t *testing.T) {
	uneven := TableDefinition{
		Name: "Uneven",
		FieldsFunc: func(leaf1.Result) []Field {
			return []Field{
				{Name: "A", Values: []string{"1", "2"}},
				{Name: "B", Values: []string{"1"}},
			}
		},
	}
	tv := GetValuesForTable(uneven, leaf1.Result{})
	assert.Empty(t, tv.Fields)

	unnamed := TableDefinition{
		Name: "Unnamed",
		FieldsFunc: func(leaf1.Result) []Field {
			return []Field{{Values: []string{"1"}}}
		},
	}
	tv = GetValuesForTable(unnamed, leaf1.Result{})
	assert.Empty(t, tv.Fields)

	assert.Panics(t, func() { GetValuesForTable(TableDefinition{Name: "NoFunc"}, leaf1.Result{}) })
}

func TestGetFieldIndex(t *testing.T) {
	tv := TableValues{
		TableDefinition: TableDefinition{Name: "T"},
		Fields: []Field{
			{Name: "Empty"},
			{Name: "Full", Values: []string{"x"}},
		},
	}
	i, err := GetFieldIndex("Full", tv)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	_, err = GetFieldIndex("Empty", tv)
	assert.Error(t, err)
	_, err = GetFieldIndex("Missing", tv)
	assert.Error(t, err)
}

func TestProcessTables(t *testing.T) {
	tables, err := GetTables()
	require.NoError(t, err)
	all := ProcessTables(tables, leaf1.Identify(coffeeLake))
	require.Len(t, all, len(tables))
	for _, tv := range all {
		assert.NotEmpty(t, tv.Fields, tv.Name)
	}
}
