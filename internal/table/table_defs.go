// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package table

// table_defs.go defines the tables used for generating reports

import (
	"fmt"
	"log/slog"
	"strconv"

	"cpuleaf/internal/cpus"
	"cpuleaf/internal/leaf1"
)

const (
	// report table names
	VersionTableName           = "Processor Version"
	AdditionalTableName        = "Additional Information"
	FeatureTableName           = "Feature Flags"
	MicroarchitectureTableName = "Microarchitecture"
	// built by the report package from the insights of the other tables
	InsightsTableName = "Insights"
)

// TableNames lists the report tables in report order.
var TableNames = []string{
	VersionTableName,
	AdditionalTableName,
	FeatureTableName,
	MicroarchitectureTableName,
}

var tableDefinitions = map[string]TableDefinition{
	VersionTableName: {
		Name:       VersionTableName,
		HasRows:    false,
		FieldsFunc: versionTableValues},
	AdditionalTableName: {
		Name:         AdditionalTableName,
		HasRows:      false,
		FieldsFunc:   additionalTableValues,
		InsightsFunc: additionalTableInsights},
	FeatureTableName: {
		Name:         FeatureTableName,
		HasRows:      true,
		FieldsFunc:   featureTableValues,
		InsightsFunc: featureTableInsights},
	MicroarchitectureTableName: {
		Name:        MicroarchitectureTableName,
		HasRows:     false,
		NoDataFound: "Microarchitecture not recognized.",
		FieldsFunc:  microarchitectureTableValues},
}

// GetTableByName returns the definition of a report table.
func GetTableByName(name string) (TableDefinition, error) {
	table, ok := tableDefinitions[name]
	if !ok {
		return TableDefinition{}, fmt.Errorf("table %s not found", name)
	}
	return table, nil
}

// GetTables returns the named table definitions, or all tables in report
// order when no names are given.
func GetTables(names ...string) ([]TableDefinition, error) {
	if len(names) == 0 {
		names = TableNames
	}
	var tables []TableDefinition
	for _, name := range names {
		table, err := GetTableByName(name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}

func versionTableValues(result leaf1.Result) []Field {
	v := result.Version
	return []Field{
		{Name: "EAX", Values: []string{hex(result.Registers.A)}},
		{Name: "Stepping ID", Description: "bits 3:0", Values: []string{strconv.Itoa(int(v.SteppingID))}},
		{Name: "Model", Description: "bits 7:4", Values: []string{strconv.Itoa(int(v.Model))}},
		{Name: "Family ID", Description: "bits 11:8", Values: []string{strconv.Itoa(int(v.FamilyID))}},
		{Name: "Processor Type", Description: "bits 13:12", Values: []string{fmt.Sprintf("%d (%s)", v.ProcessorType, v.ProcessorTypeName())}},
		{Name: "Reserved A", Description: "bits 15:14", Values: []string{strconv.Itoa(int(v.ReservedA))}},
		{Name: "Extended Model ID", Description: "bits 19:16", Values: []string{strconv.Itoa(int(v.ExtendedModelID))}},
		{Name: "Extended Family ID", Description: "bits 27:20", Values: []string{strconv.Itoa(int(v.ExtendedFamilyID))}},
		{Name: "Reserved B", Description: "bits 31:28", Values: []string{strconv.Itoa(int(v.ReservedB))}},
		{Name: "Effective Model", Values: []string{strconv.Itoa(int(v.EffectiveModel))}},
		{Name: "Display Family", Values: []string{strconv.Itoa(int(v.DisplayFamily))}},
		{Name: "Signature", Values: []string{fmt.Sprintf("0x%04x", v.Signature)}},
	}
}

func additionalTableValues(result leaf1.Result) []Field {
	a := result.Additional
	return []Field{
		{Name: "EBX", Values: []string{hex(result.Registers.B)}},
		{Name: "Brand Index", Description: "bits 7:0", Values: []string{strconv.Itoa(int(a.BrandIndex))}},
		{Name: "CLFLUSH Line Size", Description: "bits 15:8, in bytes", Values: []string{strconv.Itoa(int(a.CLFlushLineSize))}},
		{Name: "Max Addressable IDs", Description: "bits 23:16", Values: []string{strconv.Itoa(int(a.MaxAddressableIDs))}},
		{Name: "Local APIC ID", Description: "bits 31:24", Values: []string{strconv.Itoa(int(a.LocalAPICID))}},
	}
}

func additionalTableInsights(result leaf1.Result, tableValues TableValues) []Insight {
	insights := []Insight{}
	if _, err := GetFieldIndex("Max Addressable IDs", tableValues); err != nil {
		slog.Warn(err.Error())
		return insights
	}
	if !result.Features.Has("HTT") && result.Additional.MaxAddressableIDs != 0 {
		insights = append(insights, Insight{
			Recommendation: "Ignore Max Addressable IDs.",
			Justification:  "HTT is not set, so the field is not valid on this processor.",
		})
	}
	return insights
}

func featureTableValues(result leaf1.Result) []Field {
	fields := []Field{
		{Name: "Register"},
		{Name: "Bit"},
		{Name: "Name"},
		{Name: "Supported"},
		{Name: "Description"},
	}
	for _, f := range leaf1.Features() {
		supported, err := result.Features.Bit(f.Register, int(f.Bit))
		if err != nil {
			slog.Error("failed to read feature bit", slog.String("feature", f.Name), slog.String("error", err.Error()))
			return []Field{}
		}
		fields[0].Values = append(fields[0].Values, f.Register.String())
		fields[1].Values = append(fields[1].Values, strconv.Itoa(int(f.Bit)))
		fields[2].Values = append(fields[2].Values, f.Name)
		fields[3].Values = append(fields[3].Values, yesNo(supported))
		fields[4].Values = append(fields[4].Values, f.Description)
	}
	return fields
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func featureTableInsights(result leaf1.Result, tableValues TableValues) []Insight {
	insights := []Insight{}
	if result.Features.Has("HYPERVISOR") {
		insights = append(insights, Insight{
			Recommendation: "Compare with a capture taken on the host.",
			Justification:  "HYPERVISOR is set; the hypervisor may hide or emulate feature flags.",
		})
	}
	if result.Features.Has("AVX") && !result.Features.Has("OSXSAVE") {
		insights = append(insights, Insight{
			Recommendation: "Enable XSAVE support in the operating system to use AVX.",
			Justification:  "AVX is supported by the processor but OSXSAVE is not set.",
		})
	}
	reservedC, _ := result.Features.Bit(leaf1.RegisterC, 16)
	reservedD, _ := result.Features.Bit(leaf1.RegisterD, 10)
	if reservedC || reservedD {
		insights = append(insights, Insight{
			Recommendation: "Check the register source.",
			Justification:  "A reserved feature bit is set.",
		})
	}
	return insights
}

func microarchitectureTableValues(result leaf1.Result) []Field {
	cpu, err := cpus.LookupVersion(result.Version)
	if err != nil {
		slog.Debug("microarchitecture lookup failed", slog.String("error", err.Error()))
		return []Field{}
	}
	vendor := "AMD"
	if cpus.IsIntelCPUFamily(int(result.Version.DisplayFamily)) {
		vendor = "Intel"
	}
	return []Field{
		{Name: "Microarchitecture", Values: []string{cpu.MicroArchitecture}},
		{Name: "Vendor", Values: []string{vendor}},
		{Name: "Memory Channels", Values: []string{countOrUnknown(cpu.MemoryChannelCount)}},
		{Name: "Threads per Core", Values: []string{countOrUnknown(cpu.LogicalThreadCount)}},
		{Name: "Cache Ways", Values: []string{countOrUnknown(cpu.CacheWayCount)}},
	}
}

func countOrUnknown(n int) string {
	if n == 0 {
		return "Unknown"
	}
	return strconv.Itoa(n)
}
