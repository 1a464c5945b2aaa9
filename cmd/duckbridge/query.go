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

	"github.com/spf13/cobra"

	"github.com/matrixorigin/duckbridge/pkg/arrowconv"
	"github.com/matrixorigin/duckbridge/pkg/bridge"
	"github.com/matrixorigin/duckbridge/pkg/config"
)

func openDatabase(ctx context.Context) (*bridge.Database, error) {
	pu := config.GetParameterUnit(ctx)
	return bridge.Open(ctx, pu.Engine, pu.Pool, pu.SV.Bridge)
}

func queryCommand() *cobra.Command {
	var arrowFile string
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			if arrowFile == "" {
				return db.Print(ctx, args[0], cmd.OutOrStdout())
			}
			rows, err := exportArrow(ctx, db, args[0], arrowFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", rows, arrowFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&arrowFile, "arrow", "", "write the result to an Arrow IPC file instead of printing it")
	return cmd
}

// exportArrow writes every batch of query to path. Arrow buffers are
// charged to the session's pool.
func exportArrow(ctx context.Context, db *bridge.Database, query, path string) (int64, error) {
	r, err := db.Execute(ctx, query)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	if err = r.Err(); err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	w := arrowconv.NewFileWriter(f, arrowconv.NewPoolAllocator(db.Pool()))
	for {
		ok, err := r.Next(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		bat, err := r.Batch(ctx)
		if err != nil {
			return 0, err
		}
		err = w.Write(bat)
		bat.Clean()
		if err != nil {
			return 0, err
		}
	}
	if err = w.Close(); err != nil {
		return 0, err
	}
	return w.Rows(), f.Sync()
}
