// Copyright 2024 Matrix Origin
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

package memengine

import (
	"fmt"

	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

var regionNames = []string{"AFRICA", "AMERICA", "ASIA", "EUROPE", "MIDDLE EAST"}

var nationNames = []struct {
	name   string
	region int32
}{
	{"ALGERIA", 0}, {"ARGENTINA", 1}, {"BRAZIL", 1}, {"CANADA", 1}, {"EGYPT", 4},
	{"ETHIOPIA", 0}, {"FRANCE", 3}, {"GERMANY", 3}, {"INDIA", 2}, {"INDONESIA", 2},
	{"IRAN", 4}, {"IRAQ", 4}, {"JAPAN", 2}, {"JORDAN", 4}, {"KENYA", 0},
	{"MOROCCO", 0}, {"MOZAMBIQUE", 0}, {"PERU", 1}, {"CHINA", 2}, {"ROMANIA", 3},
	{"SAUDI ARABIA", 4}, {"VIETNAM", 2}, {"RUSSIA", 3}, {"UNITED KINGDOM", 3}, {"UNITED STATES", 1},
}

var orderStatus = []string{"F", "O", "P"}

// NewDemo returns an engine with a small TPC-H flavoured catalog: region,
// nation and orders. orders spans several chunks.
func NewDemo(orders int) (*Engine, error) {
	e := New()

	region := &Table{
		Name: "region",
		Columns: []ColumnDef{
			{Name: "r_regionkey", Type: foreign.NewType(foreign.TypeInteger)},
			{Name: "r_name", Type: foreign.NewType(foreign.TypeVarchar)},
		},
		Data: make([][]any, 2),
	}
	for i, n := range regionNames {
		region.Data[0] = append(region.Data[0], int32(i))
		region.Data[1] = append(region.Data[1], n)
	}

	nation := &Table{
		Name: "nation",
		Columns: []ColumnDef{
			{Name: "n_nationkey", Type: foreign.NewType(foreign.TypeInteger)},
			{Name: "n_name", Type: foreign.NewType(foreign.TypeVarchar)},
			{Name: "n_regionkey", Type: foreign.NewType(foreign.TypeInteger), Encoding: foreign.Dictionary},
		},
		Data: make([][]any, 3),
	}
	for i, n := range nationNames {
		nation.Data[0] = append(nation.Data[0], int32(i))
		nation.Data[1] = append(nation.Data[1], n.name)
		nation.Data[2] = append(nation.Data[2], n.region)
	}

	ord := &Table{
		Name: "orders",
		Columns: []ColumnDef{
			{Name: "o_orderkey", Type: foreign.NewType(foreign.TypeBigint)},
			{Name: "o_custkey", Type: foreign.NewType(foreign.TypeHugeint)},
			{Name: "o_orderstatus", Type: foreign.NewType(foreign.TypeVarchar), Encoding: foreign.Dictionary},
			{Name: "o_totalprice", Type: foreign.NewDecimalType(15, 2)},
			{Name: "o_discount", Type: foreign.NewDecimalType(4, 2)},
			{Name: "o_orderdate", Type: foreign.NewType(foreign.TypeDate)},
			{Name: "o_shipped", Type: foreign.NewType(foreign.TypeTimestamp)},
			{Name: "o_urgent", Type: foreign.NewType(foreign.TypeBoolean)},
			{Name: "o_comment", Type: foreign.NewType(foreign.TypeVarchar)},
		},
		Data: make([][]any, 9),
	}
	for i := 0; i < orders; i++ {
		var shipped any
		if i%7 != 0 {
			shipped = int64(725846400+i*3600) * 1000000
		}
		var comment any
		if i%11 != 0 {
			comment = fmt.Sprintf("order %d: deliver carefully packed goods", i)
		}
		row := []any{
			int64(i + 1),
			int64(i % 1500),
			orderStatus[i%len(orderStatus)],
			int64(100000 + i*137%9000000),
			int64(i % 11),
			int32(8401 + i%2400),
			shipped,
			i%5 == 0,
			comment,
		}
		for j, v := range row {
			ord.Data[j] = append(ord.Data[j], v)
		}
	}

	for _, t := range []*Table{region, nation, ord} {
		if err := e.CreateTable(t); err != nil {
			return nil, err
		}
	}
	return e, nil
}
