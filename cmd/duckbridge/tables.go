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
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/foreign/memengine"
)

type catalog interface {
	Tables() []*memengine.Table
}

func tablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the demo catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pu := config.GetParameterUnit(cmd.Context())
			c, ok := pu.Engine.(catalog)
			if !ok {
				return moerr.NewNYI(cmd.Context(), "listing tables of %T", pu.Engine)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"table", "rows", "columns"})
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			for _, t := range c.Tables() {
				cols := make([]string, len(t.Columns))
				for i, def := range t.Columns {
					cols[i] = def.Name + " " + def.Type.String()
				}
				table.Append([]string{t.Name, strconv.Itoa(t.Rows()), strings.Join(cols, ", ")})
			}
			table.Render()
			return nil
		},
	}
}
