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

package foreign

import "context"

// Retainer is a strong reference to the memory behind a foreign vector.
// Release must be called exactly once.
type Retainer interface {
	Release()
}

// Vector is one column of a chunk.
//
// A Flat vector holds ElementSize(Type) bytes per row in Data. Long strings
// point into Heap. A Dictionary vector exposes Child and Selection and has
// no Data of its own. Constant
// and Sequence vectors only exist until the chunk is normalized.
type Vector interface {
	Type() Type
	Encoding() Encoding
	// Validity is one bit per row in little endian uint64 words, set for a
	// valid row. nil means every row is valid.
	Validity() []uint64
	Data() []byte
	Heap() []byte
	Child() Vector
	Selection() []uint32
	// Retain returns a new strong reference to the memory of the vector,
	// valid after the chunk has been released or reused.
	Retain() Retainer
}

// Chunk is a batch of rows.
type Chunk interface {
	Size() int
	ColumnCount() int
	Column(i int) Vector
	// Normalize flattens Constant and Sequence vectors in place. Flat and
	// Dictionary vectors are left alone.
	Normalize() error
	// Release gives the chunk back to the engine. Retained vectors stay
	// valid.
	Release()
}

// Result is the outcome of one query. A failed result has no columns and
// no chunks.
type Result interface {
	Success() bool
	Error() string
	ColumnCount() int
	ColumnName(i int) string
	ColumnType(i int) Type
	// Fetch returns the next chunk, or nil once the result is exhausted.
	Fetch(ctx context.Context) (Chunk, error)
	Close()
}

// Conn runs queries. A Conn is not safe for concurrent use.
type Conn interface {
	Query(ctx context.Context, sql string) Result
	Close() error
}

type Engine interface {
	Connect(ctx context.Context) (Conn, error)
}
