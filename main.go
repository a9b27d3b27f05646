// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"cpuleaf/cmd"
)

// profileEnv names the directory that receives CPU and heap profiles. Unset
// disables profiling.
const profileEnv = "CPULEAF_PROFILE"

func main() {
	os.Exit(run())
}

func run() int {
	dir := os.Getenv(profileEnv)
	if dir == "" {
		return cmd.Execute()
	}
	cpuPath := filepath.Join(dir, "cpu.prof")
	memPath := filepath.Join(dir, "mem.prof")
	cpuFile, err := os.Create(cpuPath) // #nosec G304
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cpuFile.Close()
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	code := cmd.Execute()
	pprof.StopCPUProfile()

	memFile, err := os.Create(memPath) // #nosec G304
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer memFile.Close()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Profiling data written to %s and %s\n", cpuPath, memPath)
	fmt.Fprintf(os.Stderr, "To analyze, use:\n  go tool pprof %s\n  go tool pprof -http=:8080 %s\n", cpuPath, cpuPath)
	return code
}
