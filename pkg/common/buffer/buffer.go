// Copyright 2021 - 2023 Matrix Origin
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

package buffer

import (
	"sync/atomic"

	"github.com/matrixorigin/duckbridge/pkg/common/malloc"
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
)

// Retainer holds an external owner alive. Release is called exactly once,
// when the last holder of the view built over it drops.
type Retainer interface {
	Release()
}

type RetainerFunc func()

func (f RetainerFunc) Release() {
	f()
}

// Buffer is a reference counted byte range. It either owns memory taken
// from an allocator or is a view over bytes owned by someone else.
type Buffer struct {
	data []byte
	refs atomic.Int32

	deallocator malloc.Deallocator
	retainer    Retainer
	view        bool
}

// Alloc returns a zeroed buffer of size bytes with one reference.
func Alloc(alloc malloc.Allocator, size int) (*Buffer, error) {
	return allocate(alloc, size, 0)
}

// AllocNoClear is Alloc for callers that overwrite every byte.
func AllocNoClear(alloc malloc.Allocator, size int) (*Buffer, error) {
	return allocate(alloc, size, malloc.NoClear)
}

func allocate(alloc malloc.Allocator, size int, hints malloc.Hints) (*Buffer, error) {
	if size < 0 {
		return nil, moerr.NewInvalidInputNoCtx("buffer size %d", size)
	}
	b := &Buffer{}
	b.refs.Store(1)
	if size == 0 {
		return b, nil
	}
	data, dec, err := alloc.Allocate(uint64(size), hints)
	if err != nil {
		return nil, err
	}
	b.data = data[:size]
	b.deallocator = dec
	return b, nil
}

// NewView wraps data without copying. The retainer must own data; it is
// released when the returned buffer's last reference drops.
func NewView(data []byte, retainer Retainer) *Buffer {
	b := &Buffer{
		data:     data,
		retainer: retainer,
		view:     true,
	}
	b.refs.Store(1)
	return b
}

func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) IsView() bool {
	return b.view
}

func (b *Buffer) Refs() int32 {
	return b.refs.Load()
}

func (b *Buffer) Retain() *Buffer {
	if b.refs.Add(1) <= 1 {
		panic(moerr.NewInternalErrorNoCtx("retain of a released buffer"))
	}
	return b
}

// Release drops one reference. The memory goes back to its owner when the
// count reaches zero.
func (b *Buffer) Release() {
	n := b.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic(moerr.NewInternalErrorNoCtx("buffer released more than retained"))
	}
	b.data = nil
	if b.deallocator != nil {
		b.deallocator.Deallocate(0)
		b.deallocator = nil
	}
	if b.retainer != nil {
		b.retainer.Release()
		b.retainer = nil
	}
}
