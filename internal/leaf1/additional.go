// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import "fmt"

// CLFlushUnit is the granularity of the CLFLUSH line size field in bytes.
const CLFlushUnit = 8

// AdditionalInfo is the brand, cache line and APIC information decoded from
// register B.
type AdditionalInfo struct {
	BrandIndex        uint8  // bits 7:0
	CLFlushLineSize   uint16 // bits 15:8, scaled to bytes
	MaxAddressableIDs uint8  // bits 23:16
	LocalAPICID       uint8  // bits 31:24
}

// DecodeAdditional slices register B into an AdditionalInfo. Every input is valid.
func DecodeAdditional(b uint32) AdditionalInfo {
	return AdditionalInfo{
		BrandIndex:        uint8(AdditionalLayout[fieldBrandIndex].Extract(b)),
		CLFlushLineSize:   uint16(AdditionalLayout[fieldCLFlush].Extract(b)) * CLFlushUnit,
		MaxAddressableIDs: uint8(AdditionalLayout[fieldMaxIDs].Extract(b)),
		LocalAPICID:       uint8(AdditionalLayout[fieldAPICID].Extract(b)),
	}
}

func (a AdditionalInfo) String() string {
	return fmt.Sprintf("Brand Index: %d\nCLFLUSH Line Size: %d bytes\nMax Addressable IDs: %d\nLocal APIC ID: %d",
		a.BrandIndex, a.CLFlushLineSize, a.MaxAddressableIDs, a.LocalAPICID)
}
