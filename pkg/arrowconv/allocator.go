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

package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
)

// PoolAllocator charges Arrow buffers to a host memory pool. Allocate
// panics with an OOM error once the pool is full. BatchToRecord turns the
// panic back into an error.
type PoolAllocator struct {
	mp *mpool.MPool
}

var _ memory.Allocator = new(PoolAllocator)

func NewPoolAllocator(mp *mpool.MPool) *PoolAllocator {
	return &PoolAllocator{mp: mp}
}

func (a *PoolAllocator) Allocate(size int) []byte {
	bs, err := a.mp.Alloc(size)
	if err != nil {
		panic(err)
	}
	return bs
}

func (a *PoolAllocator) Reallocate(size int, b []byte) []byte {
	if size == len(b) {
		return b
	}
	if size < 0 {
		panic(moerr.NewInvalidInputNoCtx("arrow reallocate size %d", size))
	}
	nb := a.Allocate(size)
	copy(nb, b)
	a.mp.Free(b)
	return nb
}

func (a *PoolAllocator) Free(b []byte) {
	a.mp.Free(b)
}
