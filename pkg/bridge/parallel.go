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
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/container/batch"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// Task is the outcome of one query of a parallel run.
type Task struct {
	Query  string
	Chunks int
	Rows   int
	Err    error
}

// BatchFunc receives every batch of query i. It runs on a worker and owns
// bat, which it must Clean.
type BatchFunc func(i int, bat *batch.Batch) error

// RunParallel runs every query in a session of its own, each on a distinct
// connection, at most workers at a time. Query failures and conversion
// errors are reported per task; the returned error is only set when the
// run itself could not be scheduled.
func RunParallel(
	ctx context.Context,
	engine foreign.Engine,
	mp *mpool.MPool,
	cfg config.BridgeConfig,
	workers int,
	queries []string,
	fn BatchFunc,
) ([]Task, error) {
	if workers <= 0 {
		return nil, moerr.NewInvalidInput(ctx, "parallel run with %d workers", workers)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := pool.ReleaseTimeout(5 * time.Second); err != nil {
			logutil.Warn("release parallel query pool", zap.Error(err))
		}
	}()

	tasks := make([]Task, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		tasks[i].Query = q
		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					logutil.Error("parallel query panicked",
						zap.String("query", q),
						zap.Any("panic", v))
					tasks[i].Err = moerr.ConvertPanicError(ctx, v)
				}
			}()
			tasks[i].Err = runTask(ctx, engine, mp, cfg, i, &tasks[i], fn)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()
	return tasks, nil
}

func runTask(
	ctx context.Context,
	engine foreign.Engine,
	mp *mpool.MPool,
	cfg config.BridgeConfig,
	i int,
	task *Task,
	fn BatchFunc,
) error {
	db, err := Open(ctx, engine, mp, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := db.Execute(ctx, task.Query)
	if err != nil {
		return err
	}
	defer r.Close()
	if err = r.Err(); err != nil {
		return err
	}
	for {
		ok, err := r.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		bat, err := r.Batch(ctx)
		if err != nil {
			return err
		}
		task.Chunks++
		task.Rows += bat.RowCount()
		if fn == nil {
			bat.Clean()
			continue
		}
		if err = fn(i, bat); err != nil {
			return err
		}
	}
}
