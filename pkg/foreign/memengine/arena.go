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
	"sync/atomic"
	"unsafe"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

// BlockSize is the size in bytes of one arena block.
var BlockSize = 256 << 10

// poisonByte fills released arenas and uninitialized dictionary slots.
const poisonByte = 0xdb

// arena owns the memory of one chunk. It goes back to the engine free list
// once the chunk and every retained vector have been released, at which
// point its bytes are poisoned and later reused by another chunk.
type arena struct {
	engine *Engine
	blocks [][]uint64
	cur    int
	off    int
	refs   atomic.Int32
}

func words(b []uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&b[0])), len(b)*8)
}

// alloc returns n zeroed bytes aligned to 8.
func (a *arena) alloc(n int) []byte {
	if n == 0 {
		return nil
	}
	n8 := (n + 7) &^ 7
	for {
		if a.cur < len(a.blocks) {
			b := words(a.blocks[a.cur])
			if a.off+n8 <= len(b) {
				s := b[a.off : a.off+n : a.off+n]
				clear(s)
				a.off += n8
				return s
			}
			a.cur++
			a.off = 0
			continue
		}
		a.blocks = append(a.blocks, make([]uint64, max(BlockSize, n8)/8))
	}
}

func (a *arena) allocWords(n int) []uint64 {
	if n == 0 {
		return nil
	}
	b := a.alloc(n * 8)
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
}

func (a *arena) retain() foreign.Retainer {
	if a.refs.Add(1) <= 1 {
		panic(moerr.NewInternalErrorNoCtx("retain of a released arena"))
	}
	a.engine.stats.retains.Add(1)
	return &arenaRetainer{a: a}
}

func (a *arena) unref() {
	n := a.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic(moerr.NewInternalErrorNoCtx("arena released more than retained"))
	}
	for _, b := range a.blocks {
		bs := words(b)
		for i := range bs {
			bs[i] = poisonByte
		}
	}
	a.cur, a.off = 0, 0
	a.engine.putArena(a)
}

type arenaRetainer struct {
	a        *arena
	released atomic.Bool
}

func (r *arenaRetainer) Release() {
	if r.released.Swap(true) {
		panic(moerr.NewInternalErrorNoCtx("foreign retainer released twice"))
	}
	r.a.engine.stats.releases.Add(1)
	r.a.unref()
}
