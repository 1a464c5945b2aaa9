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
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

type poison struct{}

// Poison marks a dictionary base slot as uninitialized memory. Reading it
// yields garbage; a long string slot points far outside the heap.
var Poison = poison{}

// Column describes one vector of a chunk.
//
// Flat columns list one value per row in Values, nil for NULL. Dictionary
// columns select from a base given either by Values or by a nested Child.
// Constant columns repeat Values[0]. Sequence columns count from Start by
// Increment.
type Column struct {
	Encoding  foreign.Encoding
	Values    []any
	Selection []uint32
	Child     *Column
	Start     int64
	Increment int64
}

// ChunkData describes one chunk of a canned result.
type ChunkData struct {
	Rows    int
	Columns []Column
}

// Canned is a result served for a registered query text.
type Canned struct {
	Names  []string
	Types  []foreign.Type
	Chunks []*ChunkData

	err string
}

func (c *Canned) validate() error {
	if len(c.Names) != len(c.Types) {
		return moerr.NewInvalidInputNoCtx("canned result with %d names and %d types", len(c.Names), len(c.Types))
	}
	for i, cd := range c.Chunks {
		if len(cd.Columns) != len(c.Types) {
			return moerr.NewInvalidInputNoCtx("chunk %d has %d columns, want %d", i, len(cd.Columns), len(c.Types))
		}
		for j := range cd.Columns {
			if err := cd.Columns[j].validate(cd.Rows); err != nil {
				return err
			}
		}
	}
	return nil
}

// length is the number of rows the column describes.
func (col *Column) length(rows int) int {
	switch col.Encoding {
	case foreign.Flat:
		return len(col.Values)
	case foreign.Dictionary:
		return len(col.Selection)
	}
	return rows
}

func (col *Column) base() *Column {
	if col.Child != nil {
		return col.Child
	}
	return &Column{Encoding: foreign.Flat, Values: col.Values}
}

func (col *Column) validate(rows int) error {
	if n := col.length(rows); n != rows {
		return moerr.NewInvalidInputNoCtx("%s column with %d rows in a chunk of %d", col.Encoding, n, rows)
	}
	switch col.Encoding {
	case foreign.Flat, foreign.Sequence:
	case foreign.Constant:
		if len(col.Values) != 1 {
			return moerr.NewInvalidInputNoCtx("constant column with %d values", len(col.Values))
		}
	case foreign.Dictionary:
		base := col.base()
		if base.Encoding != foreign.Flat && base.Encoding != foreign.Dictionary {
			return moerr.NewInvalidInputNoCtx("dictionary over a %s column", base.Encoding)
		}
		n := base.length(0)
		if err := base.validate(n); err != nil {
			return err
		}
		for _, s := range col.Selection {
			if int(s) >= n {
				return moerr.NewInvalidInputNoCtx("selection %d beyond dictionary of %d", s, n)
			}
		}
	default:
		return moerr.NewInvalidInputNoCtx("unknown encoding %s", col.Encoding)
	}
	return nil
}
