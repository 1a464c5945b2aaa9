// Copyright 2022 Matrix Origin
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

package malloc

import (
	"sync"
	"sync/atomic"
)

type Hints uint64

const (
	// NoClear tells the allocator the caller overwrites every byte, so a
	// reused block need not be zeroed.
	NoClear Hints = 1 << iota
	// DoNotReuse tells the allocator not to recycle the block on free.
	DoNotReuse
)

func (h Hints) Has(x Hints) bool {
	return h&x == x
}

// Allocator hands out byte slices together with the Deallocator that
// gives them back. Returned slices are 8-byte aligned.
type Allocator interface {
	Allocate(size uint64, hints Hints) ([]byte, Deallocator, error)
}

// Deallocator releases one allocation. It must be called exactly once.
type Deallocator interface {
	Deallocate(hints Hints)
}

// FuncDeallocator adapts a plain function into a Deallocator.
type FuncDeallocator func(hints Hints)

func (f FuncDeallocator) Deallocate(hints Hints) {
	f(hints)
}

type chainDeallocator []Deallocator

func (c chainDeallocator) Deallocate(hints Hints) {
	for _, dec := range c {
		dec.Deallocate(hints)
	}
}

// ChainDeallocator runs the given deallocators in order. nil entries are
// skipped.
func ChainDeallocator(decs ...Deallocator) Deallocator {
	var ret chainDeallocator
	for _, dec := range decs {
		if dec == nil {
			continue
		}
		if chain, ok := dec.(chainDeallocator); ok {
			ret = append(ret, chain...)
			continue
		}
		ret = append(ret, dec)
	}
	return ret
}

// ClosureDeallocatorPool recycles the small closure objects that carry
// per-allocation arguments into a shared deallocate function.
type ClosureDeallocatorPool[T any] struct {
	deallocate func(Hints, *T)
	pool       sync.Pool
}

type closureDeallocator[T any] struct {
	args T
	pool *ClosureDeallocatorPool[T]
	done atomic.Bool
}

func NewClosureDeallocatorPool[T any](
	deallocate func(Hints, *T),
) *ClosureDeallocatorPool[T] {
	ret := &ClosureDeallocatorPool[T]{
		deallocate: deallocate,
	}
	ret.pool.New = func() any {
		return &closureDeallocator[T]{pool: ret}
	}
	return ret
}

func (c *ClosureDeallocatorPool[T]) Get(args T) Deallocator {
	closure := c.pool.Get().(*closureDeallocator[T])
	closure.args = args
	closure.done.Store(false)
	return closure
}

func (c *closureDeallocator[T]) Deallocate(hints Hints) {
	if !c.done.CompareAndSwap(false, true) {
		panic("deallocate called twice")
	}
	c.pool.deallocate(hints, &c.args)
	var zero T
	c.args = zero
	c.pool.pool.Put(c)
}
