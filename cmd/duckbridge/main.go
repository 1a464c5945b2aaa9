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
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/foreign/memengine"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

const defaultDemoOrders = 10000

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFile string
		orders     int
		stopCPU    func()
		pool       *mpool.MPool
	)
	root := &cobra.Command{
		Use:           "duckbridge",
		Short:         "Query the demo engine and convert its chunks to host vectors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configFile != "" {
				var err error
				if cfg, err = config.Load(configFile); err != nil {
					return err
				}
			}
			logutil.SetupMOLogger(&cfg.Log)

			var err error
			pool, err = cfg.Pool.NewPool(prometheus.NewRegistry())
			if err != nil {
				return err
			}
			engine, err := memengine.NewDemo(orders)
			if err != nil {
				return err
			}
			pu := config.NewParameterUnit(cfg, pool, engine)
			cmd.SetContext(context.WithValue(cmd.Context(), config.ParameterUnitKey, pu))

			stopCPU = startCPUProfile()
			logutil.Debug("duckbridge started",
				zap.String("command", cmd.Name()),
				zap.Int("orders", orders),
				zap.Bool("force-copy", cfg.Bridge.ForceCopy))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			stopCPU()
			writeAllocsProfile()
			if pool != nil {
				mpool.DeleteMPool(pool)
			}
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "toml configuration file")
	root.PersistentFlags().IntVar(&orders, "orders", defaultDemoOrders, "rows of the demo orders table")
	registerProfileFlags(root)

	root.AddCommand(
		queryCommand(),
		tablesCommand(),
		benchCommand(),
	)
	return root
}
