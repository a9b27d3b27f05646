// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// FeatureSet holds the feature flags materialized from registers C and D.
// The zero value reports every feature as unsupported.
type FeatureSet struct {
	flags map[string]bool
	regs  [2]uint32 // indexed by Register
}

// NewFeatureSet materializes flags from register C, then register D. A name
// present in both registers takes the value from D.
func NewFeatureSet(c, d uint32) FeatureSet {
	fs := FeatureSet{
		flags: make(map[string]bool, 63),
		regs:  [2]uint32{RegisterC: c, RegisterD: d},
	}
	for _, reg := range Registers {
		materialize(fs.flags, fs.regs[reg], mustRegistry(reg)[:])
	}
	return fs
}

func materialize(flags map[string]bool, v uint32, features []Feature) {
	for _, f := range features {
		flags[f.Name] = f.Supported(v)
	}
}

func mustRegistry(reg Register) *[32]Feature {
	features, err := registry(reg)
	if err != nil {
		panic(err)
	}
	return features
}

// Has reports whether the named feature is supported. Names the registry
// does not know are reported as unsupported.
func (fs FeatureSet) Has(name string) bool {
	return fs.flags[name]
}

// HasAll reports whether every named feature is supported. It is true when
// no names are given.
func (fs FeatureSet) HasAll(names ...string) bool {
	for _, name := range names {
		if !fs.Has(name) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one named feature is supported. It is false
// when no names are given.
func (fs FeatureSet) HasAny(names ...string) bool {
	for _, name := range names {
		if fs.Has(name) {
			return true
		}
	}
	return false
}

// Bit reports the flag at a register bit. Unlike Has, it distinguishes the
// two reserved placeholders.
func (fs FeatureSet) Bit(reg Register, bit int) (bool, error) {
	f, err := Lookup(reg, bit)
	if err != nil {
		return false, err
	}
	return f.Supported(fs.regs[reg]), nil
}

// Value returns the raw register the flags were materialized from.
func (fs FeatureSet) Value(reg Register) (uint32, error) {
	if _, err := registry(reg); err != nil {
		return 0, err
	}
	return fs.regs[reg], nil
}

// Enabled returns the supported feature names in registry order, reserved
// placeholders excluded.
func (fs FeatureSet) Enabled() []string {
	var names []string
	for _, f := range Features() {
		if f.Name != Reserved && f.Supported(fs.regs[f.Register]) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Map returns a copy of the materialized flags.
func (fs FeatureSet) Map() map[string]bool {
	m := make(map[string]bool, len(fs.flags))
	for name, ok := range fs.flags {
		m[name] = ok
	}
	return m
}

// String renders the supported features as a single line.
func (fs FeatureSet) String() string {
	return fmt.Sprintf("CPU Features: %s", strings.Join(fs.Enabled(), ", "))
}

// Diff returns the features supported by next but not prev (added) and by
// prev but not next (removed), both in registry order.
func Diff(prev, next FeatureSet) (added, removed []string) {
	prevSet := mapset.NewSet(prev.Enabled()...)
	nextSet := mapset.NewSet(next.Enabled()...)
	addedSet := nextSet.Difference(prevSet)
	removedSet := prevSet.Difference(nextSet)
	for _, f := range Features() {
		if addedSet.Contains(f.Name) {
			added = append(added, f.Name)
		}
		if removedSet.Contains(f.Name) {
			removed = append(removed, f.Name)
		}
	}
	return
}
