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

package bridge

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/container/batch"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/container/vector"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// Database runs queries on one connection of a foreign engine. Every
// vector it hands out is allocated from its pool or is a view over
// foreign memory. A Database is not safe for concurrent use.
type Database struct {
	conn   foreign.Conn
	mp     *mpool.MPool
	cfg    config.BridgeConfig
	closed bool
}

func Open(ctx context.Context, engine foreign.Engine, mp *mpool.MPool, cfg config.BridgeConfig) (*Database, error) {
	if mp == nil {
		return nil, moerr.NewInvalidInput(ctx, "nil mpool")
	}
	conn, err := engine.Connect(ctx)
	if err != nil {
		return nil, foreignError(ctx, err)
	}
	logutil.Debug("bridge connected",
		zap.String("pool", mp.Tag()),
		zap.Bool("force-copy", cfg.ForceCopy),
		zap.Int("batch-rows-hint", cfg.BatchRowsHint))
	return &Database{conn: conn, mp: mp, cfg: cfg}, nil
}

func (db *Database) Pool() *mpool.MPool {
	return db.mp
}

// Execute submits query. A query the engine rejects is not an error here:
// the returned result reports it through Success and Error, and yields no
// chunks.
func (db *Database) Execute(ctx context.Context, query string) (*Result, error) {
	if db.closed {
		return nil, moerr.NewInvalidState(ctx, "database closed")
	}
	logutil.Debug("submit query", zap.String("query", query))
	res := db.conn.Query(ctx, query)
	r := &Result{
		res:       res,
		mp:        db.mp,
		forceCopy: db.cfg.ForceCopy,
		iter:      newChunkIterator(res),
	}
	if !res.Success() {
		r.errMsg = res.Error()
		logutil.Warn("query failed",
			zap.String("query", query),
			zap.String("error", r.errMsg))
		return r, nil
	}

	r.success = true
	names := make([]string, res.ColumnCount())
	typs := make([]types.Type, res.ColumnCount())
	for i := range names {
		names[i] = res.ColumnName(i)
		typ, err := MapType(ctx, res.ColumnType(i))
		if err != nil {
			// surfaced when a chunk is converted
			typ = types.T_any.ToType()
		}
		typs[i] = typ
	}
	schema, err := types.NewRowType(names, typs)
	if err != nil {
		res.Close()
		return nil, err
	}
	r.schema = schema
	return r, nil
}

// Print runs query and writes the rows as a text table.
func (db *Database) Print(ctx context.Context, query string, w io.Writer) error {
	r, err := db.Execute(ctx, query)
	if err != nil {
		return err
	}
	defer r.Close()
	if err = r.Err(); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(r.Schema().Names())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	rows := 0
	for {
		ok, err := r.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		bat, err := r.Batch(ctx)
		if err != nil {
			return err
		}
		for i := 0; i < bat.RowCount(); i++ {
			table.Append(bat.Row(i))
		}
		rows += bat.RowCount()
		bat.Clean()
	}
	table.Render()
	_, err = fmt.Fprintf(w, "(%d rows)\n", rows)
	return err
}

func (db *Database) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	return db.conn.Close()
}

// Result is one submitted query. Its schema is fixed when the query is
// submitted.
type Result struct {
	res       foreign.Result
	mp        *mpool.MPool
	forceCopy bool

	success bool
	errMsg  string

	schema types.RowType
	iter   *ChunkIterator
}

func (r *Result) Success() bool {
	return r.success
}

// Error is the message of a failed query, empty on success.
func (r *Result) Error() string {
	return r.errMsg
}

// Err returns an ErrQueryFailed error for a failed query.
func (r *Result) Err() error {
	if r.success {
		return nil
	}
	return moerr.NewQueryFailed(moerr.Context(), r.errMsg)
}

// Schema is empty for a failed query. Columns whose type the bridge
// cannot carry are typed ANY.
func (r *Result) Schema() types.RowType {
	return r.schema
}

func (r *Result) Iter() *ChunkIterator {
	return r.iter
}

// ToBatch converts every column of chunk. On error nothing is returned and
// the vectors converted so far are freed.
func (r *Result) ToBatch(ctx context.Context, chunk foreign.Chunk) (*batch.Batch, error) {
	if chunk.ColumnCount() != r.schema.Len() {
		return nil, moerr.NewInternalError(ctx, "chunk of %d columns for a result of %d", chunk.ColumnCount(), r.schema.Len())
	}
	bat := batch.NewWithSchema(r.schema)
	for i := 0; i < chunk.ColumnCount(); i++ {
		vec, err := r.column(ctx, chunk, i)
		if err != nil {
			bat.Clean()
			return nil, err
		}
		bat.SetVector(int32(i), vec)
	}
	bat.SetRowCount(chunk.Size())
	return bat, nil
}

func (r *Result) column(ctx context.Context, chunk foreign.Chunk, i int) (*vector.Vector, error) {
	c := converter{ctx: ctx, mp: r.mp, forceCopy: r.forceCopy}
	vec, err := c.convert(chunk.Column(i), chunk.Size(), nil)
	if err != nil {
		return nil, err
	}
	if want := r.schema.Fields[i].Type; !vec.GetType().Eq(want) {
		vec.Free()
		return nil, moerr.NewInternalError(ctx, "column %s converted to %s, schema has %s",
			r.schema.Fields[i].Name, vec.GetType(), want)
	}
	return vec, nil
}

// Next advances to the next chunk and reports whether there is one. It
// shares the iterator returned by Iter.
func (r *Result) Next(ctx context.Context) (bool, error) {
	chunk, err := r.iter.Next(ctx)
	return chunk != nil, err
}

// Vector converts column i of the current chunk.
func (r *Result) Vector(ctx context.Context, i int) (*vector.Vector, error) {
	chunk := r.iter.Current()
	if chunk == nil {
		return nil, moerr.NewInvalidState(ctx, "no current chunk")
	}
	if i < 0 || i >= chunk.ColumnCount() {
		return nil, moerr.NewInvalidInput(ctx, "column %d of %d", i, chunk.ColumnCount())
	}
	return r.column(ctx, chunk, i)
}

// Batch converts the current chunk.
func (r *Result) Batch(ctx context.Context) (*batch.Batch, error) {
	chunk := r.iter.Current()
	if chunk == nil {
		return nil, moerr.NewInvalidState(ctx, "no current chunk")
	}
	return r.ToBatch(ctx, chunk)
}

// Close releases the current chunk and the foreign result. Vectors already
// converted stay valid.
func (r *Result) Close() {
	r.iter.Close()
	r.res.Close()
}
