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
	"sync/atomic"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/container/batch"
	"github.com/matrixorigin/duckbridge/pkg/foreign/memengine"
)

func TestRunParallel(t *testing.T) {
	defer leaktest.AfterTest(t)()
	stubs := gostub.Stub(&memengine.ChunkRows, 64)
	defer stubs.Reset()

	e, err := memengine.NewDemo(500)
	require.NoError(t, err)
	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)

	queries := []string{
		"select * from orders",
		"select * from nation",
		"select * from region",
		"select * from missing",
		"select * from orders",
	}
	var batches atomic.Int64
	tasks, err := RunParallel(context.Background(), e, mp, config.BridgeConfig{}, 3, queries,
		func(i int, bat *batch.Batch) error {
			defer bat.Clean()
			batches.Add(1)
			if bat.RowCount() == 0 {
				return moerr.NewInternalErrorNoCtx("empty batch of query %d", i)
			}
			return nil
		})
	require.NoError(t, err)
	require.Len(t, tasks, len(queries))

	require.Equal(t, 500, tasks[0].Rows)
	require.Equal(t, 8, tasks[0].Chunks)
	require.Equal(t, 25, tasks[1].Rows)
	require.Equal(t, 5, tasks[2].Rows)
	require.True(t, moerr.IsMoErrCode(tasks[3].Err, moerr.ErrQueryFailed))
	require.Equal(t, 500, tasks[4].Rows)
	for i, task := range tasks {
		require.Equal(t, queries[i], task.Query)
		if i != 3 {
			require.NoError(t, task.Err)
		}
	}
	require.Equal(t, int64(8+1+1+8), batches.Load())
	// every session ran on a connection of its own
	require.Equal(t, int64(len(queries)), e.Stats().Queries)
	requireReleased(t, e)
	require.Equal(t, int64(0), mp.CurrNB())
}

func TestRunParallelBatchError(t *testing.T) {
	defer leaktest.AfterTest(t)()

	e, err := memengine.NewDemo(10)
	require.NoError(t, err)
	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)

	tasks, err := RunParallel(context.Background(), e, mp, config.BridgeConfig{ForceCopy: true}, 2,
		[]string{"select * from orders", "select * from region"},
		func(i int, bat *batch.Batch) error {
			bat.Clean()
			if i == 0 {
				return moerr.NewNYI(context.Background(), "orders")
			}
			return nil
		})
	require.NoError(t, err)
	require.True(t, moerr.IsMoErrCode(tasks[0].Err, moerr.ErrNYI))
	require.NoError(t, tasks[1].Err)
	requireReleased(t, e)
	require.Equal(t, int64(0), mp.CurrNB())
}

func TestRunParallelPanic(t *testing.T) {
	defer leaktest.AfterTest(t)()

	e, err := memengine.NewDemo(1)
	require.NoError(t, err)
	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)

	tasks, err := RunParallel(context.Background(), e, mp, config.BridgeConfig{}, 1,
		[]string{"select * from region"},
		func(i int, bat *batch.Batch) error {
			bat.Clean()
			panic("batch consumer")
		})
	require.NoError(t, err)
	require.True(t, moerr.IsMoErrCode(tasks[0].Err, moerr.ErrInternal))
	requireReleased(t, e)
}

func TestRunParallelBadWorkers(t *testing.T) {
	_, err := RunParallel(context.Background(), memengine.New(), mpool.MustNew(t.Name()),
		config.BridgeConfig{}, 0, nil, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}
