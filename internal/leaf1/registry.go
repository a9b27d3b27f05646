// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import (
	"fmt"
	"slices"
)

// Register selects one of the two feature registers of leaf 1.
type Register int

const (
	RegisterC Register = iota // ECX
	RegisterD                 // EDX
)

// Registers lists the feature registers in materialization order.
var Registers = []Register{RegisterC, RegisterD}

func (r Register) String() string {
	switch r {
	case RegisterC:
		return "ECX"
	case RegisterD:
		return "EDX"
	}
	return fmt.Sprintf("Register(%d)", int(r))
}

// Reserved names every bit the registry does not assign a feature to. It is
// the only name that repeats.
const Reserved = "RESERVED"

// Feature is one named capability bit.
type Feature struct {
	Name        string
	Register    Register
	Bit         uint
	Description string
}

// Mask returns the feature's bit in its register.
func (f Feature) Mask() uint32 {
	return 1 << f.Bit
}

// Supported reports whether the feature's bit is set in v.
func (f Feature) Supported(v uint32) bool {
	return (v>>f.Bit)&1 != 0
}

// ecxFeatures is indexed by bit position.
var ecxFeatures = [32]Feature{
	{"SSE3", RegisterC, 0, "Streaming SIMD Extensions 3"},
	{"PCLMUL", RegisterC, 1, "PCLMULQDQ carry-less multiply"},
	{"DTES64", RegisterC, 2, "64-bit debug store area"},
	{"MONITOR", RegisterC, 3, "MONITOR/MWAIT"},
	{"DS_CPL", RegisterC, 4, "CPL qualified debug store"},
	{"VMX", RegisterC, 5, "Virtual Machine Extensions"},
	{"SMX", RegisterC, 6, "Safer Mode Extensions"},
	{"EST", RegisterC, 7, "Enhanced SpeedStep technology"},
	{"TM2", RegisterC, 8, "Thermal Monitor 2"},
	{"SSSE3", RegisterC, 9, "Supplemental Streaming SIMD Extensions 3"},
	{"CID", RegisterC, 10, "L1 context ID"},
	{"SDBG", RegisterC, 11, "Silicon debug interface"},
	{"FMA", RegisterC, 12, "Fused multiply-add"},
	{"CX16", RegisterC, 13, "CMPXCHG16B"},
	{"XTPR", RegisterC, 14, "xTPR update control"},
	{"PDCM", RegisterC, 15, "Perfmon and debug capability"},
	{Reserved, RegisterC, 16, ""},
	{"PCID", RegisterC, 17, "Process-context identifiers"},
	{"DCA", RegisterC, 18, "Direct cache access"},
	{"SSE4_1", RegisterC, 19, "Streaming SIMD Extensions 4.1"},
	{"SSE4_2", RegisterC, 20, "Streaming SIMD Extensions 4.2"},
	{"X2APIC", RegisterC, 21, "x2APIC"},
	{"MOVBE", RegisterC, 22, "MOVBE"},
	{"POPCNT", RegisterC, 23, "POPCNT"},
	{"TSC_DEADLINE", RegisterC, 24, "APIC timer TSC deadline mode"},
	{"AES", RegisterC, 25, "AES instruction set"},
	{"XSAVE", RegisterC, 26, "XSAVE/XRSTOR"},
	{"OSXSAVE", RegisterC, 27, "XSAVE enabled by the OS"},
	{"AVX", RegisterC, 28, "Advanced Vector Extensions"},
	{"F16C", RegisterC, 29, "Half-precision conversion"},
	{"RDRAND", RegisterC, 30, "RDRAND"},
	{"HYPERVISOR", RegisterC, 31, "Running under a hypervisor"},
}

// edxFeatures is indexed by bit position.
var edxFeatures = [32]Feature{
	{"FPU", RegisterD, 0, "x87 FPU on chip"},
	{"VME", RegisterD, 1, "Virtual 8086 mode extensions"},
	{"DE", RegisterD, 2, "Debugging extensions"},
	{"PSE", RegisterD, 3, "Page size extension"},
	{"TSC", RegisterD, 4, "Time stamp counter"},
	{"MSR", RegisterD, 5, "RDMSR/WRMSR"},
	{"PAE", RegisterD, 6, "Physical address extension"},
	{"MCE", RegisterD, 7, "Machine check exception"},
	{"CX8", RegisterD, 8, "CMPXCHG8B"},
	{"APIC", RegisterD, 9, "APIC on chip"},
	{Reserved, RegisterD, 10, ""},
	{"SEP", RegisterD, 11, "SYSENTER/SYSEXIT"},
	{"MTRR", RegisterD, 12, "Memory type range registers"},
	{"PGE", RegisterD, 13, "Page global enable"},
	{"MCA", RegisterD, 14, "Machine check architecture"},
	{"CMOV", RegisterD, 15, "Conditional move"},
	{"PAT", RegisterD, 16, "Page attribute table"},
	{"PSE36", RegisterD, 17, "36-bit page size extension"},
	{"PSN", RegisterD, 18, "Processor serial number"},
	{"CLFLUSH", RegisterD, 19, "CLFLUSH"},
	{"NX", RegisterD, 20, "No-execute bit"},
	{"DS", RegisterD, 21, "Debug store"},
	{"ACPI", RegisterD, 22, "Thermal monitor and clock control"},
	{"MMX", RegisterD, 23, "MMX"},
	{"FXSR", RegisterD, 24, "FXSAVE/FXRSTOR"},
	{"SSE", RegisterD, 25, "Streaming SIMD Extensions"},
	{"SSE2", RegisterD, 26, "Streaming SIMD Extensions 2"},
	{"SS", RegisterD, 27, "Self snoop"},
	{"HTT", RegisterD, 28, "Max APIC IDs field is valid"},
	{"TM", RegisterD, 29, "Thermal monitor"},
	{"IA64", RegisterD, 30, "IA64 processor emulating x86"},
	{"PBE", RegisterD, 31, "Pending break enable"},
}

// Registry returns the features of one register ordered by bit. The slice is
// a copy; the registry itself never changes.
func Registry(reg Register) ([]Feature, error) {
	features, err := registry(reg)
	if err != nil {
		return nil, err
	}
	return slices.Clone(features[:]), nil
}

func registry(reg Register) (*[32]Feature, error) {
	switch reg {
	case RegisterC:
		return &ecxFeatures, nil
	case RegisterD:
		return &edxFeatures, nil
	}
	return nil, fmt.Errorf("%w: unknown register %v", ErrInvalidArgument, reg)
}

// Features returns all 64 registry entries, ECX first.
func Features() []Feature {
	all := make([]Feature, 0, 64)
	all = append(all, ecxFeatures[:]...)
	all = append(all, edxFeatures[:]...)
	return all
}

// Lookup returns the feature at a register bit.
func Lookup(reg Register, bit int) (Feature, error) {
	features, err := registry(reg)
	if err != nil {
		return Feature{}, err
	}
	if bit < 0 || bit >= len(features) {
		return Feature{}, fmt.Errorf("%w: bit %d out of range for %v", ErrInvalidArgument, bit, reg)
	}
	return features[bit], nil
}

// Find returns the registry entry with the given name. Reserved matches the
// EDX placeholder, the one that wins when flags are materialized.
func Find(name string) (Feature, bool) {
	all := Features()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Name == name {
			return all[i], true
		}
	}
	return Feature{}, false
}
