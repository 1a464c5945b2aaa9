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
	"github.com/prometheus/client_golang/prometheus"
)

type MetricsAllocator[U Allocator] struct {
	upstream        U
	deallocatorPool *ClosureDeallocatorPool[metricsDeallocatorArgs]

	allocateBytesCounter   prometheus.Counter
	inuseBytesGauge        prometheus.Gauge
	allocateObjectsCounter prometheus.Counter
	inuseObjectsGauge      prometheus.Gauge
}

type metricsDeallocatorArgs struct {
	size uint64
}

// AllocatorMetrics is the set of collectors a MetricsAllocator reports to.
type AllocatorMetrics struct {
	AllocateBytes   prometheus.Counter
	InuseBytes      prometheus.Gauge
	AllocateObjects prometheus.Counter
	InuseObjects    prometheus.Gauge
}

// NewAllocatorMetrics builds the collectors for one named pool and
// registers them with reg when reg is not nil.
func NewAllocatorMetrics(reg prometheus.Registerer, pool string) (*AllocatorMetrics, error) {
	labels := prometheus.Labels{"pool": pool}
	m := &AllocatorMetrics{
		AllocateBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "duckbridge",
			Subsystem:   "mpool",
			Name:        "allocate_bytes_total",
			Help:        "Total bytes allocated from the host pool.",
			ConstLabels: labels,
		}),
		InuseBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "duckbridge",
			Subsystem:   "mpool",
			Name:        "inuse_bytes",
			Help:        "Bytes currently held by host buffers.",
			ConstLabels: labels,
		}),
		AllocateObjects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "duckbridge",
			Subsystem:   "mpool",
			Name:        "allocate_objects_total",
			Help:        "Total allocations served by the host pool.",
			ConstLabels: labels,
		}),
		InuseObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "duckbridge",
			Subsystem:   "mpool",
			Name:        "inuse_objects",
			Help:        "Allocations not yet freed.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.AllocateBytes, m.InuseBytes, m.AllocateObjects, m.InuseObjects} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func NewMetricsAllocator[U Allocator](
	upstream U,
	metrics *AllocatorMetrics,
) *MetricsAllocator[U] {

	var ret *MetricsAllocator[U]

	ret = &MetricsAllocator[U]{
		upstream:               upstream,
		allocateBytesCounter:   metrics.AllocateBytes,
		inuseBytesGauge:        metrics.InuseBytes,
		allocateObjectsCounter: metrics.AllocateObjects,
		inuseObjectsGauge:      metrics.InuseObjects,

		deallocatorPool: NewClosureDeallocatorPool(
			func(hints Hints, args *metricsDeallocatorArgs) {
				ret.inuseBytesGauge.Sub(float64(args.size))
				ret.inuseObjectsGauge.Dec()
			},
		),
	}

	return ret
}

var _ Allocator = new(MetricsAllocator[Allocator])

func (m *MetricsAllocator[U]) Allocate(size uint64, hints Hints) ([]byte, Deallocator, error) {
	ptr, dec, err := m.upstream.Allocate(size, hints)
	if err != nil {
		return nil, nil, err
	}
	m.allocateBytesCounter.Add(float64(size))
	m.inuseBytesGauge.Add(float64(size))
	m.allocateObjectsCounter.Inc()
	m.inuseObjectsGauge.Inc()

	return ptr, ChainDeallocator(
		dec,
		m.deallocatorPool.Get(metricsDeallocatorArgs{
			size: size,
		}),
	), nil
}
