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
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/bridge"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

var demoQueries = []string{
	"SELECT * FROM region",
	"SELECT * FROM nation",
	"SELECT * FROM orders",
}

func benchCommand() *cobra.Command {
	var (
		workers int
		repeat  int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Convert the demo tables on parallel connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pu := config.GetParameterUnit(ctx)

			queries := make([]string, 0, repeat*len(demoQueries))
			for i := 0; i < repeat; i++ {
				queries = append(queries, demoQueries...)
			}
			start := time.Now()
			tasks, err := bridge.RunParallel(ctx, pu.Engine, pu.Pool, pu.SV.Bridge, workers, queries, nil)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"query", "chunks", "rows", "error"})
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			rows := 0
			for _, task := range tasks {
				msg := ""
				if task.Err != nil {
					msg = task.Err.Error()
				}
				table.Append([]string{task.Query, strconv.Itoa(task.Chunks), strconv.Itoa(task.Rows), msg})
				rows += task.Rows
			}
			table.Render()
			logutil.Info("bench finished",
				zap.Int("workers", workers),
				zap.Int("queries", len(queries)),
				zap.Int("rows", rows),
				zap.Duration("elapsed", elapsed))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d rows in %v\n", rows, elapsed.Round(time.Microsecond))
			return err
		},
	}
	cmd.Flags().IntVar(&workers, "parallel", runtime.NumCPU(), "number of concurrent connections")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "times each demo query is run")
	return cmd
}
