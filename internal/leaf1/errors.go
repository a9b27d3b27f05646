// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import "errors"

// ErrInvalidArgument is returned when a registry query names a register or bit
// outside the leaf 1 feature registers. It indicates a caller bug.
var ErrInvalidArgument = errors.New("invalid argument")
