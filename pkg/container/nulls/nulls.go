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

package nulls

import (
	"fmt"

	"github.com/matrixorigin/duckbridge/pkg/common/bitmap"
	"github.com/matrixorigin/duckbridge/pkg/common/buffer"
	"github.com/matrixorigin/duckbridge/pkg/common/malloc"
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
)

// Nulls is a validity bitmap of length rows over a buffer of exactly
// ⌈length/8⌉ bytes. A set bit marks a valid row and a cleared bit a null
// one. A nil *Nulls means every row is valid.
type Nulls struct {
	buf    *buffer.Buffer
	length int
}

// NewWithBuffer adopts one reference of buf as the bitmap of length rows.
func NewWithBuffer(buf *buffer.Buffer, length int) (*Nulls, error) {
	if buf.Len() != bitmap.Nbytes(length) {
		return nil, moerr.NewInternalErrorNoCtx("null bitmap of %d bytes for %d rows", buf.Len(), length)
	}
	return &Nulls{buf: buf, length: length}, nil
}

// NewWithSize allocates a bitmap of length rows, all valid.
func NewWithSize(alloc malloc.Allocator, length int) (*Nulls, error) {
	buf, err := buffer.AllocNoClear(alloc, bitmap.Nbytes(length))
	if err != nil {
		return nil, err
	}
	bs := buf.Bytes()
	for i := range bs {
		bs[i] = 0xff
	}
	return &Nulls{buf: buf, length: length}, nil
}

// Build allocates a bitmap of length rows with rows marked null.
func Build(alloc malloc.Allocator, length int, rows ...uint64) (*Nulls, error) {
	nsp, err := NewWithSize(alloc, length)
	if err != nil {
		return nil, err
	}
	nsp.Add(rows...)
	return nsp, nil
}

func (nsp *Nulls) Length() int {
	if nsp == nil {
		return 0
	}
	return nsp.length
}

func (nsp *Nulls) Buffer() *buffer.Buffer {
	if nsp == nil {
		return nil
	}
	return nsp.buf
}

// Bytes is the raw validity bitmap.
func (nsp *Nulls) Bytes() []byte {
	if nsp == nil {
		return nil
	}
	return nsp.buf.Bytes()
}

// Contains reports whether row is null.
func (nsp *Nulls) Contains(row uint64) bool {
	return nsp != nil && !bitmap.Contains(nsp.buf.Bytes(), row)
}

// Add marks rows null.
func (nsp *Nulls) Add(rows ...uint64) {
	for _, row := range rows {
		bitmap.Remove(nsp.buf.Bytes(), row)
	}
}

// Del marks rows valid.
func (nsp *Nulls) Del(rows ...uint64) {
	for _, row := range rows {
		bitmap.Add(nsp.buf.Bytes(), row)
	}
}

// Count returns the number of null rows.
func (nsp *Nulls) Count() int {
	if nsp == nil {
		return 0
	}
	return nsp.length - bitmap.Count(nsp.buf.Bytes(), nsp.length)
}

func (nsp *Nulls) Any() bool {
	return nsp.Count() > 0
}

// ToArray lists the null rows in ascending order.
func (nsp *Nulls) ToArray() []uint64 {
	if nsp == nil {
		return nil
	}
	var rows []uint64
	itr := bitmap.NewInvertIterator(nsp.buf.Bytes(), nsp.length)
	for row, ok := itr.Next(); ok; row, ok = itr.Next() {
		rows = append(rows, row)
	}
	return rows
}

func (nsp *Nulls) String() string {
	return fmt.Sprintf("%v", nsp.ToArray())
}

func (nsp *Nulls) Free() {
	if nsp != nil && nsp.buf != nil {
		nsp.buf.Release()
		nsp.buf = nil
	}
}
