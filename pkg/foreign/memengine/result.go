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
	"context"

	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

type result struct {
	engine *Engine
	err    string
	names  []string
	types  []foreign.Type
	next   func(i int) *ChunkData
	idx    int
	closed bool
}

var _ foreign.Result = new(result)

func failed(msg string) *result {
	return &result{err: msg}
}

func newCannedResult(e *Engine, c *Canned) *result {
	return &result{
		engine: e,
		names:  c.Names,
		types:  c.Types,
		next: func(i int) *ChunkData {
			if i < len(c.Chunks) {
				return c.Chunks[i]
			}
			return nil
		},
	}
}

func newScanResult(e *Engine, t *Table) *result {
	rows, step := t.Rows(), ChunkRows
	r := &result{
		engine: e,
		names:  make([]string, len(t.Columns)),
		types:  make([]foreign.Type, len(t.Columns)),
		next: func(i int) *ChunkData {
			start := i * step
			if start >= rows {
				return nil
			}
			return t.chunk(start, min(start+step, rows))
		},
	}
	for i, c := range t.Columns {
		r.names[i], r.types[i] = c.Name, c.Type
	}
	return r
}

func (r *result) Success() bool {
	return r.err == ""
}

func (r *result) Error() string {
	return r.err
}

func (r *result) ColumnCount() int {
	return len(r.types)
}

func (r *result) ColumnName(i int) string {
	return r.names[i]
}

func (r *result) ColumnType(i int) foreign.Type {
	return r.types[i]
}

func (r *result) Fetch(ctx context.Context) (foreign.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.closed || !r.Success() {
		return nil, nil
	}
	cd := r.next(r.idx)
	if cd == nil {
		return nil, nil
	}
	r.idx++
	c, err := buildChunk(r.engine, r.types, cd)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *result) Close() {
	r.closed = true
}
