// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package cpus maps decoded leaf 1 family, model, and stepping values to x86
// microarchitectures and their characteristics.
package cpus

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"cpuleaf/internal/leaf1"
)

// IntelFamilies are the display families used by Intel processors covered here.
var IntelFamilies = []int{6, 19}

// Microarchitecture constants
const (
	// Intel Core CPUs
	UarchHSW = "HSW"
	UarchBDW = "BDW"
	UarchSKL = "SKL"
	UarchKBL = "KBL"
	UarchCFL = "CFL"
	UarchRKL = "RKL"
	UarchTGL = "TGL"
	UarchADL = "ADL"
	UarchMTL = "MTL"
	UarchARL = "ARL"
	// Intel Xeon CPUs
	UarchHSX  = "HSX"
	UarchBDX  = "BDX"
	UarchSKX  = "SKX"
	UarchCLX  = "CLX"
	UarchCPX  = "CPX"
	UarchICX  = "ICX"
	UarchSPR  = "SPR"
	UarchEMR  = "EMR"
	UarchSRF  = "SRF"
	UarchGNR  = "GNR"
	UarchGNRD = "GNR-D"
	UarchCWF  = "CWF"
	UarchDMR  = "DMR"
	// AMD CPUs
	UarchNaples     = "Naples"
	UarchRome       = "Rome"
	UarchMilan      = "Milan"
	UarchGenoa      = "Genoa"
	UarchBergamo    = "Bergamo"
	UarchTurinZen5  = "Turin (Zen 5)"
	UarchTurinZen5c = "Turin (Zen 5c)"
)

// CPUCharacteristics describes a microarchitecture. Counts that vary by die
// within one model are zero.
type CPUCharacteristics struct {
	MicroArchitecture  string
	MemoryChannelCount int
	LogicalThreadCount int
	CacheWayCount      int
}

// CPUIdentifier selects microarchitectures by decoded version values. Model
// and Stepping are regular expressions over decimal numbers; an empty
// Stepping matches any stepping.
type CPUIdentifier struct {
	Family   int
	Model    string
	Stepping string
}

// cpuCharacteristicsMap maps microarchitecture name to CPU characteristics
var cpuCharacteristicsMap = map[string]CPUCharacteristics{
	// Intel Core CPUs
	UarchHSW: {MicroArchitecture: UarchHSW, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Haswell
	UarchBDW: {MicroArchitecture: UarchBDW, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Broadwell
	UarchSKL: {MicroArchitecture: UarchSKL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Skylake
	UarchKBL: {MicroArchitecture: UarchKBL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Kabylake
	UarchCFL: {MicroArchitecture: UarchCFL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Coffeelake
	UarchRKL: {MicroArchitecture: UarchRKL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Rocket Lake
	UarchTGL: {MicroArchitecture: UarchTGL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Tiger Lake
	UarchADL: {MicroArchitecture: UarchADL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Alder Lake
	UarchMTL: {MicroArchitecture: UarchMTL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Meteor Lake
	UarchARL: {MicroArchitecture: UarchARL, MemoryChannelCount: 2, LogicalThreadCount: 2, CacheWayCount: 0}, // Arrow Lake
	// Intel Xeon CPUs
	UarchHSX:  {MicroArchitecture: UarchHSX, MemoryChannelCount: 4, LogicalThreadCount: 2, CacheWayCount: 20},  // Haswell
	UarchBDX:  {MicroArchitecture: UarchBDX, MemoryChannelCount: 4, LogicalThreadCount: 2, CacheWayCount: 20},  // Broadwell
	UarchSKX:  {MicroArchitecture: UarchSKX, MemoryChannelCount: 6, LogicalThreadCount: 2, CacheWayCount: 11},  // Skylake
	UarchCLX:  {MicroArchitecture: UarchCLX, MemoryChannelCount: 6, LogicalThreadCount: 2, CacheWayCount: 11},  // Cascadelake
	UarchCPX:  {MicroArchitecture: UarchCPX, MemoryChannelCount: 6, LogicalThreadCount: 2, CacheWayCount: 11},  // Cooperlake
	UarchICX:  {MicroArchitecture: UarchICX, MemoryChannelCount: 8, LogicalThreadCount: 2, CacheWayCount: 12},  // Icelake
	UarchSPR:  {MicroArchitecture: UarchSPR, MemoryChannelCount: 8, LogicalThreadCount: 2, CacheWayCount: 15},  // Sapphire Rapids
	UarchEMR:  {MicroArchitecture: UarchEMR, MemoryChannelCount: 8, LogicalThreadCount: 2, CacheWayCount: 15},  // Emerald Rapids
	UarchSRF:  {MicroArchitecture: UarchSRF, MemoryChannelCount: 0, LogicalThreadCount: 1, CacheWayCount: 12},  // Sierra Forest
	UarchGNR:  {MicroArchitecture: UarchGNR, MemoryChannelCount: 0, LogicalThreadCount: 2, CacheWayCount: 16},  // Granite Rapids
	UarchGNRD: {MicroArchitecture: UarchGNRD, MemoryChannelCount: 8, LogicalThreadCount: 2, CacheWayCount: 16}, // Granite Rapids - D
	UarchCWF:  {MicroArchitecture: UarchCWF, MemoryChannelCount: 12, LogicalThreadCount: 1, CacheWayCount: 0},  // Clearwater Forest
	UarchDMR:  {MicroArchitecture: UarchDMR, MemoryChannelCount: 16, LogicalThreadCount: 1, CacheWayCount: 0},  // Diamond Rapids
	// AMD CPUs
	UarchNaples:     {MicroArchitecture: UarchNaples, MemoryChannelCount: 8, LogicalThreadCount: 2, CacheWayCount: 0},      // Naples
	UarchRome:       {MicroArchitecture: UarchRome, MemoryChannelCount: 8, LogicalThreadCount: 2, CacheWayCount: 0},        // Rome
	UarchMilan:      {MicroArchitecture: UarchMilan, MemoryChannelCount: 8, LogicalThreadCount: 2, CacheWayCount: 0},       // Milan
	UarchGenoa:      {MicroArchitecture: UarchGenoa, MemoryChannelCount: 12, LogicalThreadCount: 2, CacheWayCount: 0},      // Genoa
	UarchBergamo:    {MicroArchitecture: UarchBergamo, MemoryChannelCount: 12, LogicalThreadCount: 2, CacheWayCount: 0},    // Bergamo
	UarchTurinZen5:  {MicroArchitecture: UarchTurinZen5, MemoryChannelCount: 12, LogicalThreadCount: 2, CacheWayCount: 0},  // Turin (Zen 5)
	UarchTurinZen5c: {MicroArchitecture: UarchTurinZen5c, MemoryChannelCount: 12, LogicalThreadCount: 2, CacheWayCount: 0}, // Turin (Zen 5c)
}

// cpuIdentifiers maps decoded version values to microarchitecture names. The
// first match wins.
var cpuIdentifiers = []struct {
	Identifier        CPUIdentifier
	MicroArchitecture string
}{
	// Intel Core CPUs
	{CPUIdentifier{Family: 6, Model: "(60|69|70)"}, UarchHSW},                             // Haswell
	{CPUIdentifier{Family: 6, Model: "(61|71)"}, UarchBDW},                                // Broadwell
	{CPUIdentifier{Family: 6, Model: "(78|94)"}, UarchSKL},                                // Skylake
	{CPUIdentifier{Family: 6, Model: "(142|158)", Stepping: "9"}, UarchKBL},               // Kabylake
	{CPUIdentifier{Family: 6, Model: "(142|158)", Stepping: "(10|11|12|13)"}, UarchCFL},   // Coffeelake
	{CPUIdentifier{Family: 6, Model: "167"}, UarchRKL},                                    // Rocket Lake
	{CPUIdentifier{Family: 6, Model: "(140|141)"}, UarchTGL},                              // Tiger Lake
	{CPUIdentifier{Family: 6, Model: "(151|154)"}, UarchADL},                              // Alder Lake
	{CPUIdentifier{Family: 6, Model: "170", Stepping: "4"}, UarchMTL},                     // Meteor Lake
	{CPUIdentifier{Family: 6, Model: "197", Stepping: "2"}, UarchARL},                     // Arrow Lake
	// Intel Xeon CPUs
	{CPUIdentifier{Family: 6, Model: "63"}, UarchHSX},                                     // Haswell
	{CPUIdentifier{Family: 6, Model: "(79|86)"}, UarchBDX},                                // Broadwell
	{CPUIdentifier{Family: 6, Model: "85", Stepping: "(0|1|2|3|4)"}, UarchSKX},            // Skylake
	{CPUIdentifier{Family: 6, Model: "85", Stepping: "(5|6|7)"}, UarchCLX},                // Cascadelake
	{CPUIdentifier{Family: 6, Model: "85", Stepping: "11"}, UarchCPX},                     // Cooperlake
	{CPUIdentifier{Family: 6, Model: "(106|108)"}, UarchICX},                              // Icelake
	{CPUIdentifier{Family: 6, Model: "143"}, UarchSPR},                                    // Sapphire Rapids
	{CPUIdentifier{Family: 6, Model: "207"}, UarchEMR},                                    // Emerald Rapids
	{CPUIdentifier{Family: 6, Model: "175"}, UarchSRF},                                    // Sierra Forest
	{CPUIdentifier{Family: 6, Model: "173"}, UarchGNR},                                    // Granite Rapids
	{CPUIdentifier{Family: 6, Model: "174"}, UarchGNRD},                                   // Granite Rapids - D
	{CPUIdentifier{Family: 6, Model: "221"}, UarchCWF},                                    // Clearwater Forest
	{CPUIdentifier{Family: 19, Model: "1"}, UarchDMR},                                     // Diamond Rapids
	// AMD CPUs
	{CPUIdentifier{Family: 23, Model: "1"}, UarchNaples},                                  // Naples
	{CPUIdentifier{Family: 23, Model: "49"}, UarchRome},                                   // Rome
	{CPUIdentifier{Family: 25, Model: "1"}, UarchMilan},                                   // Milan
	{CPUIdentifier{Family: 25, Model: "(1[6-9]|2[0-9]|3[01])"}, UarchGenoa},               // Genoa, model 16-31
	{CPUIdentifier{Family: 25, Model: "(16[0-9]|17[0-5])"}, UarchBergamo},                 // Bergamo, model 160-175
	{CPUIdentifier{Family: 26, Model: "2"}, UarchTurinZen5},                               // Turin (Zen 5)
	{CPUIdentifier{Family: 26, Model: "17"}, UarchTurinZen5c},                             // Turin (Zen 5c)
}

// LookupVersion returns the characteristics of the processor a VersionInfo
// was decoded from, using its display family and effective model.
func LookupVersion(v leaf1.VersionInfo) (CPUCharacteristics, error) {
	return GetCPU(int(v.DisplayFamily), int(v.EffectiveModel), int(v.SteppingID))
}

// GetCPU retrieves CPU characteristics for a family, model and stepping.
func GetCPU(family, model, stepping int) (cpu CPUCharacteristics, err error) {
	modelStr := strconv.Itoa(model)
	steppingStr := strconv.Itoa(stepping)
	for _, entry := range cpuIdentifiers {
		id := entry.Identifier
		if id.Family != family {
			continue
		}
		if !fullMatch(id.Model, modelStr) {
			continue
		}
		// if there is a stepping, it must match too
		if id.Stepping != "" && !fullMatch(id.Stepping, steppingStr) {
			continue
		}
		uarch := entry.MicroArchitecture
		var ok bool
		cpu, ok = cpuCharacteristicsMap[uarch]
		if !ok {
			err = fmt.Errorf("CPU characteristics not found for microarchitecture %s", uarch)
		}
		return
	}
	err = fmt.Errorf("CPU match not found for family %d, model %d, stepping %d", family, model, stepping)
	return
}

// fullMatch reports whether pattern matches all of s.
func fullMatch(pattern, s string) bool {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func GetCPUByMicroArchitecture(uarch string) (cpu CPUCharacteristics, err error) {
	// Try exact match first
	if chars, ok := cpuCharacteristicsMap[uarch]; ok {
		cpu = chars
		return
	}
	// Try case-insensitive match
	for key, chars := range cpuCharacteristicsMap {
		if strings.EqualFold(key, uarch) {
			cpu = chars
			return
		}
	}
	err = fmt.Errorf("CPU match not found for uarch %s", uarch)
	return
}

// IsIntelCPUFamily checks if the CPU family corresponds to Intel CPUs.
func IsIntelCPUFamily(family int) bool {
	return slices.Contains(IntelFamilies, family)
}
