// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package leaf1 decodes the registers returned by the processor feature
// identification query (CPUID leaf 1, sub-leaf 0) into version, additional
// information and feature flags.
//
// Decoding is pure arithmetic. Every 32-bit register value decodes to a defined
// result, including reserved fields, which are returned as opaque numbers and
// are not checked against any hardware specification. Issuing the query is
// left to a Source.
package leaf1

// Leaf and SubLeaf identify the query the registers must come from.
const (
	Leaf    = 0x1
	SubLeaf = 0x0
)

// Snapshot is the four registers returned by one leaf 1 query.
type Snapshot struct {
	A uint32 `yaml:"eax" json:"eax"`
	B uint32 `yaml:"ebx" json:"ebx"`
	C uint32 `yaml:"ecx" json:"ecx"`
	D uint32 `yaml:"edx" json:"edx"`
}

// Source performs the leaf 1 query and returns its registers.
type Source interface {
	Snapshot() (Snapshot, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func() (Snapshot, error)

func (f SourceFunc) Snapshot() (Snapshot, error) {
	return f()
}

// Result is everything decoded from one snapshot.
type Result struct {
	Registers  Snapshot
	Version    VersionInfo
	Additional AdditionalInfo
	Features   FeatureSet
}

// Identify decodes a snapshot that has already been read.
func Identify(s Snapshot) Result {
	return Result{
		Registers:  s,
		Version:    DecodeVersion(s.A),
		Additional: DecodeAdditional(s.B),
		Features:   NewFeatureSet(s.C, s.D),
	}
}

// IdentifyFrom reads one snapshot from src and decodes it. An error from src
// is returned as is.
func IdentifyFrom(src Source) (Result, error) {
	s, err := src.Snapshot()
	if err != nil {
		return Result{}, err
	}
	return Identify(s), nil
}
