// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cpuleaf/internal/leaf1"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Capture is the on-disk form of a snapshot.
type Capture struct {
	Host     string    `yaml:"host,omitempty"`
	Source   string    `yaml:"source,omitempty"`
	Captured time.Time `yaml:"captured,omitempty"`
	Leaf     uint32    `yaml:"leaf"`
	SubLeaf  uint32    `yaml:"subleaf"`
	EAX      Hex32     `yaml:"eax"`
	EBX      Hex32     `yaml:"ebx"`
	ECX      Hex32     `yaml:"ecx"`
	EDX      Hex32     `yaml:"edx"`
}

// Hex32 is a register value written as a hex string and read from either a
// hex string or a plain integer.
type Hex32 uint32

func (h Hex32) MarshalYAML() (any, error) {
	return fmt.Sprintf("0x%08x", uint32(h)), nil
}

func (h *Hex32) UnmarshalYAML(unmarshal func(any) error) error {
	var n uint32
	if err := unmarshal(&n); err == nil {
		*h = Hex32(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseRegister(s)
	if err != nil {
		return err
	}
	*h = Hex32(v)
	return nil
}

// NewCapture records s with the current host and time.
func NewCapture(s leaf1.Snapshot, sourceName string) Capture {
	host, _ := os.Hostname()
	return Capture{
		Host:     host,
		Source:   sourceName,
		Captured: time.Now().UTC().Truncate(time.Second),
		Leaf:     leaf1.Leaf,
		SubLeaf:  leaf1.SubLeaf,
		EAX:      Hex32(s.A),
		EBX:      Hex32(s.B),
		ECX:      Hex32(s.C),
		EDX:      Hex32(s.D),
	}
}

// Snapshot returns the captured registers.
func (c Capture) Snapshot() leaf1.Snapshot {
	return leaf1.Snapshot{A: uint32(c.EAX), B: uint32(c.EBX), C: uint32(c.ECX), D: uint32(c.EDX)}
}

// MarshalCapture returns c as YAML.
func MarshalCapture(c Capture) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal capture")
	}
	return out, nil
}

// WriteCapture writes c to path as YAML.
func WriteCapture(path string, c Capture) error {
	out, err := MarshalCapture(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil { // #nosec G306
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// ReadCapture loads a snapshot file. YAML files (.yaml, .yml) hold a Capture;
// anything else is treated as raw `cpuid -r` output.
func ReadCapture(path string) (Capture, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return Capture{}, errors.Wrapf(err, "failed to read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var c Capture
		if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return Capture{}, errors.Wrapf(err, "failed to parse %s", path)
		}
		if c.Leaf != leaf1.Leaf || c.SubLeaf != leaf1.SubLeaf {
			return Capture{}, errors.Errorf("%s holds leaf 0x%x sub-leaf 0x%x, expected leaf 0x%x sub-leaf 0x%x", path, c.Leaf, c.SubLeaf, leaf1.Leaf, leaf1.SubLeaf)
		}
		return c, nil
	default:
		s, err := ParseRaw(string(data))
		if err != nil {
			return Capture{}, errors.Wrapf(err, "failed to parse %s", path)
		}
		return Capture{Source: KindTool, Leaf: leaf1.Leaf, SubLeaf: leaf1.SubLeaf, EAX: Hex32(s.A), EBX: Hex32(s.B), ECX: Hex32(s.C), EDX: Hex32(s.D)}, nil
	}
}

// File reads the registers from a snapshot file.
type File struct {
	Path string
}

func (f File) String() string {
	return fmt.Sprintf("%s(%s)", KindFile, f.Path)
}

func (f File) Snapshot() (leaf1.Snapshot, error) {
	c, err := ReadCapture(f.Path)
	if err != nil {
		return leaf1.Snapshot{}, err
	}
	return c.Snapshot(), nil
}
