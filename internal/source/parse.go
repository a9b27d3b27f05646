// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseRegister parses a 32-bit register value written in hex (with or
// without 0x), or in decimal when prefixed with 0d.
func ParseRegister(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 16
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	case strings.HasPrefix(s, "0d"):
		s = s[2:]
		base = 10
	}
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return 0, errors.New("empty register value")
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid register value")
	}
	return uint32(v), nil
}
