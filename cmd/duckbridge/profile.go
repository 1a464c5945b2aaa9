// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

var (
	cpuProfilePath    string
	allocsProfilePath string
)

func registerProfileFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cpuProfilePath, "cpu-profile", "", "write cpu profile to the specified file")
	cmd.PersistentFlags().StringVar(&allocsProfilePath, "allocs-profile", "", "write allocs profile to the specified file")
}

func startCPUProfile() func() {
	if cpuProfilePath == "" {
		return func() {}
	}
	f, err := os.Create(cpuProfilePath)
	if err != nil {
		logutil.Warnf("cannot create cpu profile %s: %v", cpuProfilePath, err)
		return func() {}
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		logutil.Warnf("cannot start cpu profile: %v", err)
		f.Close()
		return func() {}
	}
	logutil.Infof("CPU profiling enabled, writing to %s", cpuProfilePath)
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}

func writeAllocsProfile() {
	if allocsProfilePath == "" {
		return
	}
	profile := pprof.Lookup("allocs")
	if profile == nil {
		return
	}
	f, err := os.Create(allocsProfilePath)
	if err != nil {
		logutil.Warnf("cannot create allocs profile %s: %v", allocsProfilePath, err)
		return
	}
	defer f.Close()
	if err := profile.WriteTo(f, 0); err != nil {
		logutil.Warnf("cannot write allocs profile: %v", err)
		return
	}
	logutil.Infof("Allocs profile written to %s", allocsProfilePath)
}
