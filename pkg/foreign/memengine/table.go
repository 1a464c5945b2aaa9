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
	"strings"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

// ColumnDef describes one column of a table. Dictionary columns are
// dictionary encoded chunk by chunk.
type ColumnDef struct {
	Name     string
	Type     foreign.Type
	Encoding foreign.Encoding
}

// Table is a catalog entry. Data holds one slice of values per column;
// a nil value is NULL.
type Table struct {
	Name    string
	Columns []ColumnDef
	Data    [][]any
}

func (t *Table) Rows() int {
	if len(t.Data) == 0 {
		return 0
	}
	return len(t.Data[0])
}

func (t *Table) validate() error {
	t.Name = strings.ToLower(t.Name)
	if t.Name == "" || !selectStar.MatchString("select * from "+t.Name) {
		return moerr.NewInvalidInputNoCtx("invalid table name '%s'", t.Name)
	}
	if len(t.Columns) == 0 || len(t.Data) != len(t.Columns) {
		return moerr.NewInvalidInputNoCtx("table %s has %d columns and %d data slices", t.Name, len(t.Columns), len(t.Data))
	}
	for i, c := range t.Columns {
		if len(t.Data[i]) != t.Rows() {
			return moerr.NewInvalidInputNoCtx("column %s.%s has %d rows, want %d", t.Name, c.Name, len(t.Data[i]), t.Rows())
		}
		if c.Encoding != foreign.Flat && c.Encoding != foreign.Dictionary {
			return moerr.NewInvalidInputNoCtx("column %s.%s uses %s encoding", t.Name, c.Name, c.Encoding)
		}
	}
	return nil
}

// chunk slices rows [start, end) into a chunk description.
func (t *Table) chunk(start, end int) *ChunkData {
	cd := &ChunkData{Rows: end - start, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		vals := t.Data[i][start:end]
		if c.Encoding == foreign.Dictionary {
			cd.Columns[i] = dictionaryEncode(vals)
		} else {
			cd.Columns[i] = Column{Encoding: foreign.Flat, Values: vals}
		}
	}
	return cd
}

// dictionaryEncode builds a base of the distinct values in first seen
// order. Slot 1 of a base with more than one value is left uninitialized
// and no selection refers to it.
func dictionaryEncode(vals []any) Column {
	col := Column{Encoding: foreign.Dictionary, Selection: make([]uint32, len(vals))}
	seen := make(map[any]uint32)
	nullSlot := -1
	for i, v := range vals {
		if v == nil {
			if nullSlot < 0 {
				nullSlot = len(col.Values)
				col.Values = append(col.Values, nil)
			}
			col.Selection[i] = uint32(nullSlot)
			continue
		}
		idx, ok := seen[v]
		if !ok {
			idx = uint32(len(col.Values))
			seen[v] = idx
			col.Values = append(col.Values, v)
		}
		col.Selection[i] = idx
	}
	if len(col.Values) > 1 {
		col.Values = append(col.Values[:1], append([]any{Poison}, col.Values[1:]...)...)
		for i, s := range col.Selection {
			if s >= 1 {
				col.Selection[i] = s + 1
			}
		}
	}
	return col
}
