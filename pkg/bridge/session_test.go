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
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/foreign/memengine"
	"github.com/matrixorigin/duckbridge/pkg/foreign/mock_foreign"
)

func TestExecuteFailure(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	env.engine.RegisterError("select boom", "Binder Error: boom")
	ctx := context.Background()

	for sql, msg := range map[string]string{
		"select boom":            "Binder Error: boom",
		"selec * from orders":    "Parser Error: syntax error at or near \"selec\"",
		"select * from no_table": "Catalog Error: Table with name no_table does not exist!",
	} {
		r, err := env.db.Execute(ctx, sql)
		require.NoError(t, err)
		require.False(t, r.Success())
		require.Equal(t, msg, r.Error())
		require.True(t, moerr.IsMoErrCode(r.Err(), moerr.ErrQueryFailed))
		require.Contains(t, r.Err().Error(), msg)
		require.Equal(t, 0, r.Schema().Len())
		require.Equal(t, IterDrained, r.Iter().State())

		ok, err := r.Next(ctx)
		require.NoError(t, err)
		require.False(t, ok)
		_, err = r.Batch(ctx)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
		r.Close()
	}
}

func TestSchema(t *testing.T) {
	e, err := memengine.NewDemo(3)
	require.NoError(t, err)
	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)
	db, err := Open(context.Background(), e, mp, config.BridgeConfig{})
	require.NoError(t, err)
	defer db.Close()

	r, err := db.Execute(context.Background(), "select * from orders")
	require.NoError(t, err)
	defer r.Close()
	require.True(t, r.Success())
	require.Empty(t, r.Error())
	require.NoError(t, r.Err())
	require.Equal(t, "ROW(o_orderkey BIGINT, o_custkey HUGEINT, o_orderstatus VARCHAR, "+
		"o_totalprice DECIMAL(15,2), o_discount DECIMAL(4,2), o_orderdate DATE, "+
		"o_shipped TIMESTAMP, o_urgent BOOL, o_comment VARCHAR)", r.Schema().String())
	require.Equal(t, int32(15), r.Schema().Fields[3].Type.Width)
	require.Equal(t, int32(2), r.Schema().Fields[3].Type.Scale)
}

func TestScanOrders(t *testing.T) {
	stubs := gostub.Stub(&memengine.ChunkRows, 16)
	defer stubs.Reset()

	e, err := memengine.NewDemo(100)
	require.NoError(t, err)
	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)
	db, err := Open(context.Background(), e, mp, config.BridgeConfig{BatchRowsHint: 16})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	r, err := db.Execute(ctx, "SELECT * FROM orders;")
	require.NoError(t, err)

	rows, chunks := 0, 0
	for {
		chunk, err := r.Iter().Next(ctx)
		require.NoError(t, err)
		if chunk == nil {
			break
		}
		bat, err := r.ToBatch(ctx, chunk)
		require.NoError(t, err)
		require.Equal(t, chunk.Size(), bat.RowCount())
		require.Equal(t, r.Schema().String(), bat.Schema().String())
		require.True(t, bat.GetVector(2).IsDict())
		for i := 0; i < bat.RowCount(); i++ {
			n := rows + i
			row := bat.Row(i)
			require.Equal(t, strconv.Itoa(n+1), row[0])
			require.Equal(t, []string{"F", "O", "P"}[n%3], row[2])
			require.Equal(t, n%7 == 0, bat.GetVector(6).IsNull(i))
			require.Equal(t, n%11 == 0, bat.GetVector(8).IsNull(i))
		}
		rows += bat.RowCount()
		chunks++
		bat.Clean()
	}
	require.Equal(t, 100, rows)
	require.Equal(t, 7, chunks)
	r.Close()
	requireReleased(t, e)
	require.Equal(t, int64(0), mp.CurrNB())
}

func TestToBatchUnsupportedColumn(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	require.NoError(t, env.engine.Register("blob", &memengine.Canned{
		Names: []string{"k", "b"},
		Types: []foreign.Type{foreign.NewType(foreign.TypeBigint), foreign.NewType(foreign.TypeBlob)},
		Chunks: []*memengine.ChunkData{{
			Rows:    2,
			Columns: []memengine.Column{flat(1, 2), flat("x", "y")},
		}},
	}))

	r, chunk := env.first(t, "blob")
	require.Equal(t, types.T_any, r.Schema().Fields[1].Type.Oid)

	bat, err := r.ToBatch(context.Background(), chunk)
	require.Nil(t, bat)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedType))

	// column 0 converts on its own
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)
	vec.Free()

	r.Close()
	requireReleased(t, env.engine)
}

func TestToBatchOutOfMemory(t *testing.T) {
	mp, err := mpool.NewMPool(t.Name(), 16, nil)
	require.NoError(t, err)
	defer mpool.DeleteMPool(mp)
	e := memengine.New()
	require.NoError(t, e.Register("wide", &memengine.Canned{
		Names: []string{"k", "d"},
		Types: []foreign.Type{foreign.NewType(foreign.TypeBigint), foreign.NewDecimalType(9, 2)},
		Chunks: []*memengine.ChunkData{{
			Rows:    3,
			Columns: []memengine.Column{flat(1, 2, 3), flat(1, 2, 3)},
		}},
	}))
	db, err := Open(context.Background(), e, mp, config.BridgeConfig{})
	require.NoError(t, err)
	defer db.Close()

	r, err := db.Execute(context.Background(), "wide")
	require.NoError(t, err)
	ok, err := r.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = r.Batch(context.Background())
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
	r.Close()
	requireReleased(t, e)
	require.Equal(t, int64(0), mp.CurrNB())
}

func TestResultCursor(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	require.NoError(t, env.engine.Register("two chunks", &memengine.Canned{
		Names: []string{"k"},
		Types: []foreign.Type{foreign.NewType(foreign.TypeInteger)},
		Chunks: []*memengine.ChunkData{
			{Rows: 2, Columns: []memengine.Column{flat(1, 2)}},
			{Rows: 1, Columns: []memengine.Column{flat(3)}},
		},
	}))
	ctx := context.Background()
	r, err := env.db.Execute(ctx, "two chunks")
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Vector(ctx, 0)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

	var got []string
	for {
		ok, err := r.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		_, err = r.Vector(ctx, 1)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
		_, err = r.Vector(ctx, -1)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

		vec, err := r.Vector(ctx, 0)
		require.NoError(t, err)
		got = append(got, vec.String())
		vec.Free()
	}
	require.Equal(t, []string{"INT-[1 2]", "INT-[3]"}, got)
}

func TestPrint(t *testing.T) {
	e, err := memengine.NewDemo(1)
	require.NoError(t, err)
	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)
	db, err := Open(context.Background(), e, mp, config.BridgeConfig{})
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	require.NoError(t, db.Print(context.Background(), "select * from region", &buf))
	out := buf.String()
	require.Contains(t, out, "r_regionkey")
	require.Contains(t, out, "r_name")
	require.Contains(t, out, "MIDDLE EAST")
	require.True(t, strings.HasSuffix(out, "(5 rows)\n"))

	err = db.Print(context.Background(), "select * from nowhere", &buf)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrQueryFailed))
	requireReleased(t, e)
}

func TestDatabaseClosed(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	require.NoError(t, env.db.Close())
	_, err := env.db.Execute(context.Background(), "select * from x")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestOpenErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	_, err := Open(ctx, memengine.New(), nil, config.BridgeConfig{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	engine := mock_foreign.NewMockEngine(ctrl)
	engine.EXPECT().Connect(gomock.Any()).Return(nil, errors.New("no route"))
	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)
	_, err = Open(ctx, engine, mp, config.BridgeConfig{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
}

func TestExecuteWithMockConn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	res := newMockResult(ctrl, true)
	res.EXPECT().ColumnCount().Return(2).AnyTimes()
	res.EXPECT().ColumnName(0).Return("a")
	res.EXPECT().ColumnName(1).Return("b")
	res.EXPECT().ColumnType(0).Return(foreign.NewType(foreign.TypeDouble))
	res.EXPECT().ColumnType(1).Return(foreign.NewType(foreign.TypeMap))
	res.EXPECT().Close()

	conn := mock_foreign.NewMockConn(ctrl)
	conn.EXPECT().Query(gomock.Any(), "q").Return(res)
	conn.EXPECT().Close().Return(nil)
	engine := mock_foreign.NewMockEngine(ctrl)
	engine.EXPECT().Connect(gomock.Any()).Return(conn, nil)

	mp := mpool.MustNew(t.Name())
	defer mpool.DeleteMPool(mp)
	db, err := Open(ctx, engine, mp, config.BridgeConfig{})
	require.NoError(t, err)
	r, err := db.Execute(ctx, "q")
	require.NoError(t, err)
	require.Equal(t, "ROW(a DOUBLE, b ANY)", r.Schema().String())

	// a chunk that does not match the schema
	_, err = r.ToBatch(ctx, newMockChunk(ctrl, 1))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))

	r.Close()
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
}
