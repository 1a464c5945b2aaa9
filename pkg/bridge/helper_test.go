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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/foreign/memengine"
)

type testEnv struct {
	engine *memengine.Engine
	mp     *mpool.MPool
	db     *Database
}

func newTestEnv(t *testing.T, cfg config.BridgeConfig) *testEnv {
	mp, err := mpool.NewMPool(t.Name(), mpool.NoLimit, nil)
	require.NoError(t, err)
	e := memengine.New()
	db, err := Open(context.Background(), e, mp, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
		mpool.DeleteMPool(mp)
	})
	return &testEnv{engine: e, mp: mp, db: db}
}

// single registers sql as a one column, one chunk result.
func (env *testEnv) single(t *testing.T, sql string, typ foreign.Type, col memengine.Column) {
	rows := len(col.Values)
	if col.Encoding == foreign.Dictionary {
		rows = len(col.Selection)
	}
	require.NoError(t, env.engine.Register(sql, &memengine.Canned{
		Names:  []string{"c"},
		Types:  []foreign.Type{typ},
		Chunks: []*memengine.ChunkData{{Rows: rows, Columns: []memengine.Column{col}}},
	}))
}

// first executes sql and positions the result on its first chunk.
func (env *testEnv) first(t *testing.T, sql string) (*Result, foreign.Chunk) {
	ctx := context.Background()
	r, err := env.db.Execute(ctx, sql)
	require.NoError(t, err)
	require.True(t, r.Success(), r.Error())
	chunk, err := r.Iter().Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, chunk)
	return r, chunk
}

// requireReleased checks every retainer taken on the engine was released
// and no chunk memory is held.
func requireReleased(t *testing.T, e *memengine.Engine) {
	st := e.Stats()
	require.Equal(t, st.Retains, st.Releases)
	require.Equal(t, int64(0), st.ArenasLive)
}

func flat(vals ...any) memengine.Column {
	return memengine.Column{Encoding: foreign.Flat, Values: vals}
}
