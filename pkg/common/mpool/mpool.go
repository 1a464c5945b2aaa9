// Copyright 2021 - 2022 Matrix Origin
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

package mpool

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/malloc"
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// MPoolStats are the counters of one pool.
type MPoolStats struct {
	NumAlloc      atomic.Int64 // number of allocations
	NumFree       atomic.Int64 // number of frees
	NumCurrBytes  atomic.Int64 // current number of bytes
	HighWaterMark atomic.Int64 // high water mark
}

func (s *MPoolStats) Report(tab string) string {
	if s.HighWaterMark.Load() == 0 {
		// empty, reduce noise.
		return ""
	}

	ret := ""
	ret += fmt.Sprintf("%s allocations : %d\n", tab, s.NumAlloc.Load())
	ret += fmt.Sprintf("%s frees : %d\n", tab, s.NumFree.Load())
	ret += fmt.Sprintf("%s current bytes : %d\n", tab, s.NumCurrBytes.Load())
	ret += fmt.Sprintf("%s high water mark : %d\n", tab, s.HighWaterMark.Load())
	return ret
}

func (s *MPoolStats) ReportJson() string {
	if s.HighWaterMark.Load() == 0 {
		return ""
	}
	ret := fmt.Sprintf("{\"alloc\": %d,", s.NumAlloc.Load())
	ret += fmt.Sprintf("\"free\": %d,", s.NumFree.Load())
	ret += fmt.Sprintf("\"cur\": %d,", s.NumCurrBytes.Load())
	ret += fmt.Sprintf("\"hwm\": %d}", s.HighWaterMark.Load())
	return ret
}

func (s *MPoolStats) recordAlloc(sz int64) {
	s.NumAlloc.Add(1)
	curr := s.NumCurrBytes.Add(sz)
	for {
		hwm := s.HighWaterMark.Load()
		if curr <= hwm || s.HighWaterMark.CompareAndSwap(hwm, curr) {
			return
		}
	}
}

func (s *MPoolStats) recordFree(sz int64) {
	s.NumFree.Add(1)
	s.NumCurrBytes.Add(-sz)
}

// MPool is the host memory pool. Every host buffer allocated by the bridge
// comes from one; views over foreign memory are never charged to it.
type MPool struct {
	id    int64
	tag   string
	cap   int64
	stats MPoolStats

	upstream        malloc.Allocator
	deallocatorPool *malloc.ClosureDeallocatorPool[mpoolDeallocatorArgs]

	// outstanding Alloc results, so Free can find their deallocator
	mu          sync.Mutex
	outstanding map[*byte]malloc.Deallocator
}

type mpoolDeallocatorArgs struct {
	pool *MPool
	size int64
}

const NoLimit = 0

var nextPool atomic.Int64

var defaultAllocator = sync.OnceValue(func() malloc.Allocator {
	return malloc.NewClassAllocator(256 << 20)
})

// DefaultAllocator is the process-wide upstream allocator used when a pool
// is created without one.
func DefaultAllocator() malloc.Allocator {
	return defaultAllocator()
}

// NewMPool creates a pool limited to capacity bytes; NoLimit disables the
// check. A nil upstream uses DefaultAllocator.
func NewMPool(tag string, capacity int64, upstream malloc.Allocator) (*MPool, error) {
	if capacity < 0 {
		return nil, moerr.NewInvalidInputNoCtx("mpool %s capacity %d", tag, capacity)
	}
	if upstream == nil {
		upstream = DefaultAllocator()
	}
	mp := &MPool{
		id:          nextPool.Add(1),
		tag:         tag,
		cap:         capacity,
		upstream:    upstream,
		outstanding: make(map[*byte]malloc.Deallocator),
	}
	mp.deallocatorPool = malloc.NewClosureDeallocatorPool(
		func(_ malloc.Hints, args *mpoolDeallocatorArgs) {
			args.pool.stats.recordFree(args.size)
		},
	)
	globalPools.Store(mp.id, mp)
	return mp, nil
}

func MustNew(tag string) *MPool {
	mp, err := NewMPool(tag, NoLimit, nil)
	if err != nil {
		panic(err)
	}
	return mp
}

// DeleteMPool removes the pool from the global report. Buffers still
// allocated from it stay valid.
func DeleteMPool(mp *MPool) {
	if mp == nil {
		return
	}
	if n := mp.stats.NumCurrBytes.Load(); n != 0 {
		logutil.Warn("mpool deleted with outstanding bytes",
			zap.String("tag", mp.tag),
			zap.Int64("bytes", n))
	}
	globalPools.Delete(mp.id)
}

func (mp *MPool) Tag() string {
	return mp.tag
}

func (mp *MPool) Cap() int64 {
	return mp.cap
}

func (mp *MPool) Stats() *MPoolStats {
	return &mp.stats
}

func (mp *MPool) CurrNB() int64 {
	return mp.stats.NumCurrBytes.Load()
}

func (mp *MPool) String() string {
	return fmt.Sprintf("mpool %s (cap %d)\n%s", mp.tag, mp.cap, mp.stats.Report("\t"))
}

var _ malloc.Allocator = new(MPool)

// Allocate implements malloc.Allocator. The returned deallocator gives the
// bytes back to the upstream allocator and updates the pool accounting.
func (mp *MPool) Allocate(size uint64, hints malloc.Hints) ([]byte, malloc.Deallocator, error) {
	sz := int64(size)
	if mp.cap != NoLimit && mp.stats.NumCurrBytes.Load()+sz > mp.cap {
		logutil.Warn("mpool out of memory",
			zap.String("tag", mp.tag),
			zap.Int64("request", sz),
			zap.Int64("current", mp.stats.NumCurrBytes.Load()),
			zap.Int64("cap", mp.cap))
		return nil, nil, moerr.NewOOM(moerr.Context())
	}
	data, dec, err := mp.upstream.Allocate(size, hints)
	if err != nil {
		return nil, nil, err
	}
	mp.stats.recordAlloc(sz)
	return data, malloc.ChainDeallocator(
		dec,
		mp.deallocatorPool.Get(mpoolDeallocatorArgs{pool: mp, size: sz}),
	), nil
}

// Alloc returns a zeroed slice of sz bytes that must be given back with Free.
func (mp *MPool) Alloc(sz int) ([]byte, error) {
	if sz < 0 {
		return nil, moerr.NewInvalidInputNoCtx("mpool alloc size %d", sz)
	}
	if sz == 0 {
		return nil, nil
	}
	data, dec, err := mp.Allocate(uint64(sz), 0)
	if err != nil {
		return nil, err
	}
	mp.mu.Lock()
	mp.outstanding[unsafe.SliceData(data)] = dec
	mp.mu.Unlock()
	return data, nil
}

// Free releases a slice returned by Alloc. Freeing nil is a no-op.
func (mp *MPool) Free(bs []byte) {
	if len(bs) == 0 {
		return
	}
	key := unsafe.SliceData(bs)
	mp.mu.Lock()
	dec, ok := mp.outstanding[key]
	delete(mp.outstanding, key)
	mp.mu.Unlock()
	if !ok {
		panic(moerr.NewInternalErrorNoCtx("mpool %s free of unknown slice", mp.tag))
	}
	dec.Deallocate(0)
}

var globalPools sync.Map

// ReportMemUsage reports the pools whose tag matches tag as json; an empty
// tag reports every pool.
func ReportMemUsage(tag string) string {
	type usage struct {
		Tag   string          `json:"tag"`
		Stats json.RawMessage `json:"stats"`
	}
	var ret []usage
	globalPools.Range(func(_, v any) bool {
		mp := v.(*MPool)
		if tag != "" && mp.tag != tag {
			return true
		}
		stats := mp.stats.ReportJson()
		if stats == "" {
			stats = "{}"
		}
		ret = append(ret, usage{Tag: mp.tag, Stats: json.RawMessage(stats)})
		return true
	})
	data, err := json.Marshal(ret)
	if err != nil {
		return "[]"
	}
	return string(data)
}
