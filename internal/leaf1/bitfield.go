// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

// BitField is a fixed-width unsigned slice of a 32-bit register.
type BitField struct {
	Name  string
	Low   uint // position of the least significant bit
	Width uint
}

// Mask returns the field's bits in their register position.
func (f BitField) Mask() uint32 {
	return ((1 << f.Width) - 1) << f.Low
}

// Extract returns the field value shifted down to bit 0.
func (f BitField) Extract(v uint32) uint32 {
	return (v & f.Mask()) >> f.Low
}

// High returns the position of the most significant bit.
func (f BitField) High() uint {
	return f.Low + f.Width - 1
}

// VersionLayout describes register A (EAX) of leaf 1, low bits first.
var VersionLayout = []BitField{
	{Name: "Stepping ID", Low: 0, Width: 4},
	{Name: "Model", Low: 4, Width: 4},
	{Name: "Family ID", Low: 8, Width: 4},
	{Name: "Processor Type", Low: 12, Width: 2},
	{Name: "Reserved", Low: 14, Width: 2},
	{Name: "Extended Model ID", Low: 16, Width: 4},
	{Name: "Extended Family ID", Low: 20, Width: 8},
	{Name: "Reserved", Low: 28, Width: 4},
}

// AdditionalLayout describes register B (EBX) of leaf 1, low bits first.
var AdditionalLayout = []BitField{
	{Name: "Brand Index", Low: 0, Width: 8},
	{Name: "CLFLUSH Line Size", Low: 8, Width: 8},
	{Name: "Max Addressable IDs", Low: 16, Width: 8},
	{Name: "Local APIC ID", Low: 24, Width: 8},
}

// indexes into VersionLayout
const (
	fieldStepping = iota
	fieldModel
	fieldFamily
	fieldProcessorType
	fieldReservedA
	fieldExtendedModel
	fieldExtendedFamily
	fieldReservedB
)

// indexes into AdditionalLayout
const (
	fieldBrandIndex = iota
	fieldCLFlush
	fieldMaxIDs
	fieldAPICID
)
