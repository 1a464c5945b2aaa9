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
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/foreign/memengine"
	"github.com/matrixorigin/duckbridge/pkg/foreign/mock_foreign"
)

func newMockResult(ctrl *gomock.Controller, success bool) *mock_foreign.MockResult {
	res := mock_foreign.NewMockResult(ctrl)
	res.EXPECT().Success().Return(success).AnyTimes()
	return res
}

func newMockChunk(ctrl *gomock.Controller, size int) *mock_foreign.MockChunk {
	chunk := mock_foreign.NewMockChunk(ctrl)
	chunk.EXPECT().Size().Return(size).AnyTimes()
	chunk.EXPECT().ColumnCount().Return(0).AnyTimes()
	return chunk
}

func TestIteratorOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	res := newMockResult(ctrl, true)
	c1, c2 := newMockChunk(ctrl, 2), newMockChunk(ctrl, 3)
	gomock.InOrder(
		res.EXPECT().Fetch(gomock.Any()).Return(c1, nil),
		c1.EXPECT().Normalize().Return(nil),
		c1.EXPECT().Release(),
		res.EXPECT().Fetch(gomock.Any()).Return(c2, nil),
		c2.EXPECT().Normalize().Return(nil),
		c2.EXPECT().Release(),
		res.EXPECT().Fetch(gomock.Any()).Return(nil, nil),
	)

	it := newChunkIterator(res)
	require.Equal(t, IterOpen, it.State())
	got, err := it.Next(ctx)
	require.NoError(t, err)
	require.Same(t, c1, got)
	require.Same(t, c1, it.Current())

	got, err = it.Next(ctx)
	require.NoError(t, err)
	require.Same(t, c2, got)

	got, err = it.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Nil(t, it.Current())
	require.Equal(t, IterDrained, it.State())

	// drained iterators do not fetch again
	got, err = it.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	it.Close()
	it.Close()
	require.Equal(t, IterClosed, it.State())
}

func TestIteratorEmptyChunk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	res := newMockResult(ctrl, true)
	empty := newMockChunk(ctrl, 0)
	res.EXPECT().Fetch(gomock.Any()).Return(empty, nil)
	empty.EXPECT().Release()

	it := newChunkIterator(res)
	got, err := it.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, IterDrained, it.State())
}

func TestIteratorFetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	res := newMockResult(ctrl, true)
	res.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("disk on fire"))

	it := newChunkIterator(res)
	_, err := it.Next(context.Background())
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
	require.Contains(t, err.Error(), "disk on fire")
	require.Equal(t, IterDrained, it.State())

	got, err := it.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestIteratorNormalizeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	res := newMockResult(ctrl, true)
	chunk := newMockChunk(ctrl, 4)
	res.EXPECT().Fetch(gomock.Any()).Return(chunk, nil)
	chunk.EXPECT().Normalize().Return(moerr.NewNYI(context.Background(), "normalize"))
	chunk.EXPECT().Release()

	it := newChunkIterator(res)
	_, err := it.Next(context.Background())
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNYI))
	require.Equal(t, IterDrained, it.State())
}

func TestIteratorCloseReleasesCurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	res := newMockResult(ctrl, true)
	chunk := newMockChunk(ctrl, 1)
	res.EXPECT().Fetch(gomock.Any()).Return(chunk, nil)
	chunk.EXPECT().Normalize().Return(nil)
	chunk.EXPECT().Release().Times(1)

	it := newChunkIterator(res)
	_, err := it.Next(context.Background())
	require.NoError(t, err)
	it.Close()
	it.Close()

	got, err := it.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, IterClosed, it.State())
}

func TestIteratorFailedResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	it := newChunkIterator(newMockResult(ctrl, false))
	require.Equal(t, IterDrained, it.State())
	got, err := it.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestIteratorCanceled(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	env.single(t, "one", foreign.NewType(foreign.TypeBigint), flat(1))

	r, err := env.db.Execute(context.Background(), "one")
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, IterDrained, r.Iter().State())
}

func TestIteratorNormalizes(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	require.NoError(t, env.engine.Register("encodings", &memengine.Canned{
		Names: []string{"k", "v"},
		Types: []foreign.Type{foreign.NewType(foreign.TypeBigint), foreign.NewType(foreign.TypeVarchar)},
		Chunks: []*memengine.ChunkData{{
			Rows: 3,
			Columns: []memengine.Column{
				{Encoding: foreign.Sequence, Start: 10, Increment: 5},
				{Encoding: foreign.Constant, Values: []any{"same"}},
			},
		}},
	}))

	r, chunk := env.first(t, "encodings")
	defer r.Close()
	require.Equal(t, foreign.Flat, chunk.Column(0).Encoding())
	require.Equal(t, foreign.Flat, chunk.Column(1).Encoding())

	bat, err := r.Batch(context.Background())
	require.NoError(t, err)
	defer bat.Clean()
	require.Equal(t, []string{"15", "same"}, bat.Row(1))
	require.Equal(t, []string{"20", "same"}, bat.Row(2))
}

func TestUnsupportedEncoding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	vec := mock_foreign.NewMockVector(ctrl)
	vec.EXPECT().Encoding().Return(foreign.Sequence).AnyTimes()
	vec.EXPECT().Type().Return(foreign.NewType(foreign.TypeBigint)).AnyTimes()

	c := converter{ctx: context.Background()}
	_, err := c.convert(vec, 3, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedEncoding))
	_, err = c.convertFlat(vec, 3, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedEncoding))
	_, err = c.convertDictionary(vec, 3, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedEncoding))
}

func TestIterStateLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.BridgeConfig{})
	env.single(t, "one row", foreign.NewType(foreign.TypeInteger), flat(int32(1)))

	// a session opened with Open exposes the iterator states
	db, err := Open(ctx, env.engine, env.mp, config.BridgeConfig{})
	require.NoError(t, err)
	defer db.Close()

	r, err := db.Execute(ctx, "select * from missing")
	require.NoError(t, err)
	require.Equal(t, IterDrained, r.Iter().State())
	r.Close()
	require.Equal(t, IterClosed, r.Iter().State())

	r, err = db.Execute(ctx, "one row")
	require.NoError(t, err)
	require.Equal(t, IterOpen, r.Iter().State())
	ok, err := r.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.Next(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, IterDrained, r.Iter().State())
	r.Close()
	require.Equal(t, IterClosed, r.Iter().State())

	require.Equal(t, "open", IterOpen.String())
	require.Equal(t, "drained", IterDrained.String())
	require.Equal(t, "closed", IterClosed.String())
	require.Equal(t, "unknown", IterState(9).String())
}
