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
	"errors"

	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// IterState is the lifecycle state of a ChunkIterator.
type IterState int

const (
	// IterOpen fetches on the next call to Next.
	IterOpen IterState = iota
	// IterDrained has seen the end of the result or a fetch error.
	IterDrained
	// IterClosed has released its current chunk and the result.
	IterClosed
)

func (s IterState) String() string {
	switch s {
	case IterOpen:
		return "open"
	case IterDrained:
		return "drained"
	case IterClosed:
		return "closed"
	}
	return "unknown"
}

// ChunkIterator yields the chunks of a foreign result in the order the
// engine produces them. It owns at most one chunk: Next and Close release
// the chunk returned before. Host vectors built from a released chunk stay
// valid through their own retainers.
type ChunkIterator struct {
	res    foreign.Result
	state  IterState
	cur    foreign.Chunk
	chunks int
	rows   int
}

func newChunkIterator(res foreign.Result) *ChunkIterator {
	it := &ChunkIterator{res: res}
	if !res.Success() {
		it.state = IterDrained
	}
	return it
}

func (it *ChunkIterator) State() IterState {
	return it.state
}

// Current is the chunk returned by the last Next, nil after the end of
// the stream.
func (it *ChunkIterator) Current() foreign.Chunk {
	return it.cur
}

// Next fetches and normalizes the next chunk. It returns nil at the end of
// the stream, which an empty chunk also signals. A failed fetch ends the
// stream as well.
func (it *ChunkIterator) Next(ctx context.Context) (foreign.Chunk, error) {
	it.release()
	if it.state != IterOpen {
		return nil, nil
	}

	chunk, err := it.res.Fetch(ctx)
	if err != nil {
		it.state = IterDrained
		return nil, foreignError(ctx, err)
	}
	if chunk == nil || chunk.Size() == 0 {
		if chunk != nil {
			chunk.Release()
		}
		it.state = IterDrained
		logutil.Debug("foreign result drained",
			zap.Int("chunks", it.chunks),
			zap.Int("rows", it.rows))
		return nil, nil
	}
	if err = chunk.Normalize(); err != nil {
		chunk.Release()
		it.state = IterDrained
		return nil, foreignError(ctx, err)
	}

	it.cur = chunk
	it.chunks++
	it.rows += chunk.Size()
	logutil.Debug("fetched foreign chunk",
		zap.Int("rows", chunk.Size()),
		zap.Int("columns", chunk.ColumnCount()))
	return chunk, nil
}

// Close stops the iteration. It can be called more than once.
func (it *ChunkIterator) Close() {
	if it.state == IterClosed {
		return
	}
	it.release()
	it.state = IterClosed
	logutil.Debug("chunk iterator closed", zap.Int("chunks", it.chunks))
}

func (it *ChunkIterator) release() {
	if it.cur != nil {
		it.cur.Release()
		it.cur = nil
	}
}

// foreignError codes an error from the foreign engine. Context errors are
// returned as they are so callers can match them.
func foreignError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return moerr.ConvertGoError(ctx, err)
}
