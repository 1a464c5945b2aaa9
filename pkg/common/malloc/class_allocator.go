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

package malloc

import (
	"sync/atomic"
	"unsafe"
)

// ClassAllocator is a pure Go allocator that rounds requests up to size
// classes and keeps a bounded number of freed blocks per class for reuse.
// Requests larger than the largest class go straight to the Go heap.
type ClassAllocator struct {
	classSizes []uint64
	pools      []classAllocatorPool
}

type classAllocatorPool struct {
	numAlloc atomic.Int64
	numFree  atomic.Int64
	ch       chan []byte
}

type classDeallocatorArgs struct {
	slice []byte
	class int
}

var dumbDeallocator = FuncDeallocator(func(Hints) {})

func NewClassAllocator(
	maxBufferSize uint64,
) *ClassAllocator {
	const (
		minClassSize    = 128
		maxClassSize    = 8 * (1 << 20)
		classSizeFactor = 1.8
	)

	classSizes := func() (ret []uint64) {
		for size := uint64(minClassSize); size <= maxClassSize; size = uint64(float64(size) * classSizeFactor) {
			// keep every class a multiple of 8 so slices stay word aligned
			ret = append(ret, (size+7)&^7)
		}
		return
	}()

	classSumSize := func() (ret uint64) {
		for _, size := range classSizes {
			ret += size
		}
		return
	}()

	bufferedObjectsPerClass := int(maxBufferSize / classSumSize)

	pools := make([]classAllocatorPool, 0, len(classSizes))
	for range classSizes {
		pools = append(pools, classAllocatorPool{
			ch: make(chan []byte, bufferedObjectsPerClass),
		})
	}

	return &ClassAllocator{
		classSizes: classSizes,
		pools:      pools,
	}
}

var _ Allocator = new(ClassAllocator)

func (p *ClassAllocator) requestSizeToClass(size uint64) int {
	for class, classSize := range p.classSizes {
		if classSize >= size {
			return class
		}
	}
	return -1
}

// alignedBytes returns a zeroed, 8-byte aligned slice of n bytes.
func alignedBytes(n uint64) []byte {
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*8)[:n]
}

func (p *ClassAllocator) Allocate(size uint64, hints Hints) ([]byte, Deallocator, error) {
	if size == 0 {
		return nil, dumbDeallocator, nil
	}
	class := p.requestSizeToClass(size)
	if class == -1 {
		return alignedBytes(size), dumbDeallocator, nil
	}
	pool := &p.pools[class]
	var slice []byte
	select {
	case slice = <-pool.ch:
		if !hints.Has(NoClear) {
			clear(slice)
		}
	default:
		slice = alignedBytes(p.classSizes[class])
	}
	pool.numAlloc.Add(1)
	args := &classDeallocatorArgs{slice: slice, class: class}
	return slice[:size], FuncDeallocator(func(hints Hints) {
		p.deallocate(hints, args)
	}), nil
}

func (p *ClassAllocator) deallocate(hints Hints, args *classDeallocatorArgs) {
	pool := &p.pools[args.class]
	pool.numFree.Add(1)
	if hints.Has(DoNotReuse) {
		return
	}
	select {
	case pool.ch <- args.slice:
	default:
	}
}

// Stats returns the number of allocations and frees served by the class
// that holds size-byte requests.
func (p *ClassAllocator) Stats(size uint64) (numAlloc, numFree int64) {
	class := p.requestSizeToClass(size)
	if class == -1 {
		return 0, 0
	}
	return p.pools[class].numAlloc.Load(), p.pools[class].numFree.Load()
}
