// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import (
	"fmt"
	"strings"
)

// VersionDump renders register A field by field, high bits first, followed
// by the derived values.
func (v VersionInfo) VersionDump() string {
	var sb strings.Builder
	raw := v.Raw()
	for i := len(VersionLayout) - 1; i >= 0; i-- {
		f := VersionLayout[i]
		sb.WriteString(fmt.Sprintf("%-20s bits %2d:%-2d = 0x%x\n", f.Name, f.High(), f.Low, f.Extract(raw)))
	}
	sb.WriteString(fmt.Sprintf("%-20s           = 0x%x\n", "Effective Model", v.EffectiveModel))
	sb.WriteString(fmt.Sprintf("%-20s           = 0x%x\n", "Display Family", v.DisplayFamily))
	sb.WriteString(fmt.Sprintf("%-20s           = 0x%04x\n", "Signature", v.Signature))
	return sb.String()
}

// FeatureDump renders every registry bit of both registers with its state.
func (fs FeatureSet) FeatureDump() string {
	var sb strings.Builder
	for _, f := range Features() {
		state := "Not supported"
		if f.Supported(fs.regs[f.Register]) {
			state = "Supported"
		}
		sb.WriteString(fmt.Sprintf("%s[%02d] %-12s: %s\n", f.Register, f.Bit, f.Name, state))
	}
	return sb.String()
}
