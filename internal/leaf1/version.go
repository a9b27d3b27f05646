// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import "fmt"

// VersionInfo is the processor version and type decoded from register A.
//
// ProcessorType and the two reserved fields are decoded as opaque numbers.
// They are not validated and carry no meaning on processors that leave them
// undefined.
type VersionInfo struct {
	SteppingID       uint8 // bits 3:0
	Model            uint8 // bits 7:4
	FamilyID         uint8 // bits 11:8
	ProcessorType    uint8 // bits 13:12
	ReservedA        uint8 // bits 15:14
	ExtendedModelID  uint8 // bits 19:16
	ExtendedFamilyID uint8 // bits 27:20
	ReservedB        uint8 // bits 31:28

	// EffectiveModel merges ExtendedModelID into Model on families 0x6 and 0xF.
	EffectiveModel uint8
	// DisplayFamily adds ExtendedFamilyID to FamilyID on family 0xF.
	DisplayFamily uint16
	// Signature is family, model and stepping packed as 0xFMS. Extended
	// fields are not part of it, so it does not uniquely identify a processor.
	Signature uint16
}

// DecodeVersion slices register A into a VersionInfo. Every input is valid.
func DecodeVersion(a uint32) VersionInfo {
	v := VersionInfo{
		SteppingID:       uint8(VersionLayout[fieldStepping].Extract(a)),
		Model:            uint8(VersionLayout[fieldModel].Extract(a)),
		FamilyID:         uint8(VersionLayout[fieldFamily].Extract(a)),
		ProcessorType:    uint8(VersionLayout[fieldProcessorType].Extract(a)),
		ReservedA:        uint8(VersionLayout[fieldReservedA].Extract(a)),
		ExtendedModelID:  uint8(VersionLayout[fieldExtendedModel].Extract(a)),
		ExtendedFamilyID: uint8(VersionLayout[fieldExtendedFamily].Extract(a)),
		ReservedB:        uint8(VersionLayout[fieldReservedB].Extract(a)),
	}
	v.EffectiveModel = EffectiveModel(v.FamilyID, v.Model, v.ExtendedModelID)
	v.DisplayFamily = DisplayFamily(v.FamilyID, v.ExtendedFamilyID)
	v.Signature = uint16(v.FamilyID)<<8 | uint16(v.Model)<<4 | uint16(v.SteppingID)
	return v
}

// EffectiveModel returns the model number after applying the extended model
// bits. Only families 0x6 and 0xF extend the model space.
func EffectiveModel(family, model, extendedModel uint8) uint8 {
	if family == 0x06 || family == 0x0F {
		return extendedModel<<4 + model
	}
	return model
}

// DisplayFamily returns the family number after applying the extended family
// bits, which only count on family 0xF.
func DisplayFamily(family, extendedFamily uint8) uint16 {
	if family == 0x0F {
		return uint16(family) + uint16(extendedFamily)
	}
	return uint16(family)
}

// Raw packs the bit-sliced fields back into the register value.
func (v VersionInfo) Raw() uint32 {
	fields := []uint8{
		v.SteppingID, v.Model, v.FamilyID, v.ProcessorType,
		v.ReservedA, v.ExtendedModelID, v.ExtendedFamilyID, v.ReservedB,
	}
	var a uint32
	for i, f := range VersionLayout {
		a |= (uint32(fields[i]) << f.Low) & f.Mask()
	}
	return a
}

// ProcessorTypeName returns the conventional name of the processor type
// field. Some processors reserve the field, so the name is informational.
func (v VersionInfo) ProcessorTypeName() string {
	switch v.ProcessorType {
	case 0:
		return "Original OEM Processor"
	case 1:
		return "OverDrive Processor"
	case 2:
		return "Dual Processor"
	default:
		return "Reserved"
	}
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("Family 0x%x, Model 0x%x, Stepping 0x%x (signature 0x%04x)", v.DisplayFamily, v.EffectiveModel, v.SteppingID, v.Signature)
}
