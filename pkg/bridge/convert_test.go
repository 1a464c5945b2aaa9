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
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/duckbridge/pkg/config"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/container/vector"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/foreign/memengine"
)

func samePointer(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && unsafe.SliceData(a) == unsafe.SliceData(b)
}

func TestFlatInt64View(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	env.single(t, "flat int64", foreign.NewType(foreign.TypeBigint), flat(1, 2, 3, 4))

	r, chunk := env.first(t, "flat int64")
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)

	require.Equal(t, types.T_int64, vec.GetType().Oid)
	require.Equal(t, 4, vec.Length())
	require.Equal(t, []int64{1, 2, 3, 4}, vector.MustFixedCol[int64](vec))
	require.Nil(t, vec.GetNulls())
	require.True(t, vec.Data().IsView())
	require.True(t, samePointer(chunk.Column(0).Data(), vec.Data().Bytes()))
	require.Equal(t, int64(0), env.mp.CurrNB())

	// the view outlives the chunk and the result
	r.Close()
	require.Equal(t, int64(1), env.engine.Stats().ArenasLive)
	require.Equal(t, []int64{1, 2, 3, 4}, vector.MustFixedCol[int64](vec))

	vec.Free()
	requireReleased(t, env.engine)
	require.Equal(t, int64(1), env.engine.Stats().Releases)
}

func TestFlatInt64Nulls(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	env.single(t, "flat nulls", foreign.NewType(foreign.TypeBigint), flat(5, 6, nil, 7, 8, 9))

	r, chunk := env.first(t, "flat nulls")
	defer r.Close()
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)
	defer vec.Free()

	require.Equal(t, 6, vec.Length())
	require.Equal(t, []uint64{2}, vec.GetNulls().ToArray())
	require.Len(t, vec.GetNulls().Bytes(), 1)
	require.True(t, vec.GetNulls().Buffer().IsView())
	for i := 0; i < 6; i++ {
		require.Equal(t, !foreign.RowIsValid(chunk.Column(0).Validity(), i), vec.IsNull(i))
	}
	require.True(t, samePointer(chunk.Column(0).Data(), vec.Data().Bytes()))
	require.Equal(t, "BIGINT-[5 6 null 7 8 9]", vec.String())
	// one retainer for the values, one for the validity
	require.Equal(t, int64(2), env.engine.Stats().Retains)
}

func TestFlatPrimitives(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	require.NoError(t, env.engine.Register("primitives", &memengine.Canned{
		Names: []string{"b", "i8", "i16", "i32", "f32", "f64", "d"},
		Types: []foreign.Type{
			foreign.NewType(foreign.TypeBoolean),
			foreign.NewType(foreign.TypeTinyint),
			foreign.NewType(foreign.TypeSmallint),
			foreign.NewType(foreign.TypeInteger),
			foreign.NewType(foreign.TypeFloat),
			foreign.NewType(foreign.TypeDouble),
			foreign.NewType(foreign.TypeDate),
		},
		Chunks: []*memengine.ChunkData{{
			Rows: 3,
			Columns: []memengine.Column{
				flat(true, nil, false),
				flat(-128, 0, 127),
				flat(nil, -300, 300),
				flat(1<<20, -1, nil),
				flat(float32(1.5), nil, float32(-2)),
				flat(0.25, 1e100, nil),
				flat("1970-01-02", "2024-02-29", nil),
			},
		}},
	}))

	r, chunk := env.first(t, "primitives")
	defer r.Close()
	bat, err := r.ToBatch(context.Background(), chunk)
	require.NoError(t, err)
	defer bat.Clean()

	require.Equal(t, 3, bat.RowCount())
	require.Equal(t, "ROW(b BOOL, i8 TINYINT, i16 SMALLINT, i32 INT, f32 FLOAT, f64 DOUBLE, d DATE)",
		bat.Schema().String())
	require.Equal(t, []string{"true", "-128", "null", "1048576", "1.5", "0.25", "1970-01-02"}, bat.Row(0))
	require.Equal(t, []string{"null", "0", "-300", "-1", "null", "1e+100", "2024-02-29"}, bat.Row(1))
	require.Equal(t, []string{"false", "127", "300", "null", "-2", "null", "null"}, bat.Row(2))

	for i, vec := range bat.Vecs {
		require.True(t, vec.Data().IsView(), bat.Attrs[i])
		require.True(t, samePointer(chunk.Column(i).Data(), vec.Data().Bytes()), bat.Attrs[i])
	}
	require.Equal(t, types.Date(1), vector.MustFixedCol[types.Date](bat.Vecs[6])[0])
	require.Equal(t, int64(0), env.mp.CurrNB())
}

func TestDecimalNarrowBacking(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	ft := foreign.Type{ID: foreign.TypeDecimal, Width: 15, Scale: 4, Backing: foreign.PhysicalInt32}
	env.single(t, "decimal int32", ft, flat(12345, -12345, 0))

	r, chunk := env.first(t, "decimal int32")
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)

	require.Equal(t, types.T_decimal64, vec.GetType().Oid)
	require.Equal(t, int32(15), vec.GetType().Width)
	require.Equal(t, int32(4), vec.GetType().Scale)
	require.Equal(t, []types.Decimal64{12345, -12345, 0}, vector.MustFixedCol[types.Decimal64](vec))
	require.False(t, vec.Data().IsView())
	require.False(t, samePointer(chunk.Column(0).Data(), vec.Data().Bytes()))
	require.Equal(t, int64(3*8), env.mp.CurrNB())
	require.Equal(t, "DECIMAL(15,4)-[1.2345 -1.2345 0.0000]", vec.String())

	// a deep copy holds nothing of the chunk
	r.Close()
	require.Equal(t, int64(0), env.engine.Stats().Retains)
	requireReleased(t, env.engine)
	vec.Free()
	require.Equal(t, int64(0), env.mp.CurrNB())

	env.single(t, "decimal int16", foreign.NewDecimalType(4, 2), flat("1.5", nil, "-99.99"))
	r, _ = env.first(t, "decimal int16")
	defer r.Close()
	vec, err = r.Vector(context.Background(), 0)
	require.NoError(t, err)
	defer vec.Free()
	require.Equal(t, types.Decimal64(150), vector.GetFixedAt[types.Decimal64](vec, 0))
	require.Equal(t, types.Decimal64(-9999), vector.GetFixedAt[types.Decimal64](vec, 2))
	require.True(t, vec.IsNull(1))
	require.False(t, vec.GetNulls().Buffer().IsView())
}

func TestDecimalWideBacking(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	big := int64(1) << 36 // 2^100 = 2^36 * 2^64
	env.single(t, "decimal int128", foreign.NewDecimalType(38, 10), flat(
		foreign.Hugeint{Lower: 0, Upper: big},
		foreign.Hugeint{Lower: 0, Upper: -big},
	))

	r, chunk := env.first(t, "decimal int128")
	defer r.Close()
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)
	defer vec.Free()

	require.Equal(t, types.T_decimal128, vec.GetType().Oid)
	require.Equal(t, int32(38), vec.GetType().Width)
	require.Equal(t, int32(10), vec.GetType().Scale)
	vals := vector.MustFixedCol[types.Decimal128](vec)
	require.Equal(t, types.Int128{Lo: 0, Hi: big}, vals[0].ToInt128())
	require.Equal(t, types.Int128{Lo: 0, Hi: -big}, vals[1].ToInt128())
	require.Equal(t, "1267650600228229401496703205376", vals[0].ToInt128().String())
	require.Equal(t, chunk.Column(0).Data(), vec.Data().Bytes())
	require.True(t, samePointer(chunk.Column(0).Data(), vec.Data().Bytes()))

	env.single(t, "decimal int64", foreign.NewDecimalType(15, 2), flat("12.34", "-0.01"))
	r2, chunk2 := env.first(t, "decimal int64")
	defer r2.Close()
	vec2, err := r2.Vector(context.Background(), 0)
	require.NoError(t, err)
	defer vec2.Free()
	require.Equal(t, []types.Decimal64{1234, -1}, vector.MustFixedCol[types.Decimal64](vec2))
	require.True(t, samePointer(chunk2.Column(0).Data(), vec2.Data().Bytes()))
}

func TestHugeintCopy(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	env.single(t, "hugeint", foreign.NewType(foreign.TypeHugeint), flat(
		foreign.Hugeint{Lower: 1, Upper: 2}, -7, nil, 5))

	r, chunk := env.first(t, "hugeint")
	defer r.Close()
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)
	defer vec.Free()

	vals := vector.MustFixedCol[types.Int128](vec)
	require.Equal(t, types.Int128{Lo: 1, Hi: 2}, vals[0])
	require.Equal(t, types.Int128FromInt64(-7), vals[1])
	require.Equal(t, types.Int128{}, vals[2])
	require.Equal(t, types.Int128FromInt64(5), vals[3])
	require.Equal(t, []uint64{2}, vec.GetNulls().ToArray())
	require.False(t, samePointer(chunk.Column(0).Data(), vec.Data().Bytes()))
}

func TestTimestampUnits(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	require.NoError(t, env.engine.Register("timestamps", &memengine.Canned{
		Names: []string{"s", "ms", "us", "ns"},
		Types: []foreign.Type{
			foreign.NewType(foreign.TypeTimestampS),
			foreign.NewType(foreign.TypeTimestampMS),
			foreign.NewType(foreign.TypeTimestamp),
			foreign.NewType(foreign.TypeTimestampNS),
		},
		Chunks: []*memengine.ChunkData{{
			Rows: 3,
			Columns: []memengine.Column{
				flat(1, -1, nil),
				flat(1500, -1, nil),
				flat(42, -42, "2024-01-02 03:04:05.123456"),
				flat(1999, -1, nil),
			},
		}},
	}))

	r, chunk := env.first(t, "timestamps")
	defer r.Close()
	bat, err := r.ToBatch(context.Background(), chunk)
	require.NoError(t, err)
	defer bat.Clean()

	col := func(i int) []types.Timestamp {
		return vector.MustFixedCol[types.Timestamp](bat.Vecs[i])[:2]
	}
	require.Equal(t, []types.Timestamp{1000000, -1000000}, col(0))
	require.Equal(t, []types.Timestamp{1500000, -1000}, col(1))
	require.Equal(t, []types.Timestamp{42, -42}, col(2))
	require.Equal(t, []types.Timestamp{1, -1}, col(3))
	require.Equal(t, "2024-01-02 03:04:05.123456", bat.Vecs[2].Format(2))
	for i := range bat.Vecs {
		require.Equal(t, types.T_timestamp, bat.Vecs[i].GetType().Oid)
		require.False(t, bat.Vecs[i].Data().IsView())
	}
}

func TestVarcharCopy(t *testing.T) {
	long := "a string longer than twelve bytes"
	for _, force := range []bool{false, true} {
		env := newTestEnv(t, config.BridgeConfig{ForceCopy: force})
		env.single(t, "varchar", foreign.NewType(foreign.TypeVarchar), flat("short", long, nil, "", "exactly12byt"))

		r, chunk := env.first(t, "varchar")
		vec, err := r.Vector(context.Background(), 0)
		require.NoError(t, err)

		require.Equal(t, "short", vec.GetStringAt(0))
		require.Equal(t, long, vec.GetStringAt(1))
		require.True(t, vec.IsNull(2))
		require.Equal(t, "", vec.GetStringAt(3))
		require.Equal(t, "exactly12byt", vec.GetStringAt(4))
		require.False(t, samePointer(chunk.Column(0).Data(), vec.Data().Bytes()))

		require.Len(t, vec.Areas(), 1)
		area := vec.Areas()[0]
		require.Equal(t, !force, area.IsView())
		require.Equal(t, !force, samePointer(chunk.Column(0).Heap(), area.Bytes()))

		r.Close()
		require.Equal(t, long, vec.GetStringAt(1))
		vec.Free()
		requireReleased(t, env.engine)
		require.Equal(t, int64(0), env.mp.CurrNB())
	}
}

func TestVarcharInlineOnly(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	env.single(t, "inline", foreign.NewType(foreign.TypeVarchar), flat("a", "bc"))

	r, _ := env.first(t, "inline")
	defer r.Close()
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)
	defer vec.Free()
	require.Empty(t, vec.Areas())
	require.Equal(t, "VARCHAR-[a bc]", vec.String())
	require.Equal(t, int64(0), env.engine.Stats().Retains)
}

func TestForceCopy(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{ForceCopy: true})
	env.single(t, "force", foreign.NewType(foreign.TypeBigint), flat(5, 6, nil, 7))

	r, chunk := env.first(t, "force")
	vec, err := r.Vector(context.Background(), 0)
	require.NoError(t, err)

	require.False(t, vec.Data().IsView())
	require.False(t, vec.GetNulls().Buffer().IsView())
	require.False(t, samePointer(chunk.Column(0).Data(), vec.Data().Bytes()))
	require.Equal(t, "BIGINT-[5 6 null 7]", vec.String())
	require.Equal(t, int64(0), env.engine.Stats().Retains)
	require.Equal(t, int64(4*8+1), env.mp.CurrNB())

	r.Close()
	requireReleased(t, env.engine)
	require.Equal(t, "BIGINT-[5 6 null 7]", vec.String())
	vec.Free()
	require.Equal(t, int64(0), env.mp.CurrNB())
}

func TestAllValidValidity(t *testing.T) {
	env := newTestEnv(t, config.BridgeConfig{})
	env.single(t, "valid", foreign.NewType(foreign.TypeInteger), flat(1, 2, 3))

	r, chunk := env.first(t, "valid")
	defer r.Close()
	// a validity mask with every bit set is dropped
	c := converter{ctx: context.Background(), mp: env.mp}
	vec, err := c.convertFlat(&allValid{Vector: chunk.Column(0)}, 3, nil)
	require.NoError(t, err)
	defer vec.Free()
	require.Nil(t, vec.GetNulls())
	require.False(t, vec.HasNull())
}

type allValid struct {
	foreign.Vector
}

func (v *allValid) Validity() []uint64 {
	return []uint64{^uint64(0)}
}
