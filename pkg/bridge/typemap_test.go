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

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

func TestMapType(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		ft       foreign.Type
		want     types.Type
		zeroCopy bool
	}{
		{foreign.NewType(foreign.TypeBoolean), types.T_bool.ToType(), true},
		{foreign.NewType(foreign.TypeTinyint), types.T_int8.ToType(), true},
		{foreign.NewType(foreign.TypeSmallint), types.T_int16.ToType(), true},
		{foreign.NewType(foreign.TypeInteger), types.T_int32.ToType(), true},
		{foreign.NewType(foreign.TypeBigint), types.T_int64.ToType(), true},
		{foreign.NewType(foreign.TypeHugeint), types.T_int128.ToType(), false},
		{foreign.NewType(foreign.TypeFloat), types.T_float32.ToType(), true},
		{foreign.NewType(foreign.TypeDouble), types.T_float64.ToType(), true},
		{foreign.NewType(foreign.TypeDate), types.T_date.ToType(), true},
		{foreign.NewType(foreign.TypeTimestamp), types.T_timestamp.ToType(), false},
		{foreign.NewType(foreign.TypeTimestampS), types.T_timestamp.ToType(), false},
		{foreign.NewType(foreign.TypeTimestampMS), types.T_timestamp.ToType(), false},
		{foreign.NewType(foreign.TypeTimestampNS), types.T_timestamp.ToType(), false},
		{foreign.NewType(foreign.TypeVarchar), types.T_varchar.ToType(), false},
		{foreign.NewDecimalType(4, 2), types.New(types.T_decimal64, 4, 2), false},
		{foreign.NewDecimalType(9, 0), types.New(types.T_decimal64, 9, 0), false},
		{foreign.NewDecimalType(18, 6), types.New(types.T_decimal64, 18, 6), true},
		{foreign.NewDecimalType(38, 10), types.New(types.T_decimal128, 38, 10), true},
		// storage follows the backing
		{foreign.Type{ID: foreign.TypeDecimal, Width: 15, Scale: 4, Backing: foreign.PhysicalInt32},
			types.New(types.T_decimal64, 15, 4), false},
		{foreign.Type{ID: foreign.TypeDecimal, Width: 10, Scale: 1, Backing: foreign.PhysicalInt128},
			types.New(types.T_decimal128, 10, 1), true},
	}
	for _, c := range cases {
		got, err := MapType(ctx, c.ft)
		require.NoError(t, err, c.ft.String())
		require.True(t, c.want.Eq(got), "%s: %s != %s", c.ft, got, c.want)
		require.Equal(t, c.zeroCopy, IsZeroCopy(c.ft), c.ft.String())

		again, _ := MapType(ctx, c.ft)
		require.Equal(t, got, again)
	}
}

func TestMapTypeUnsupported(t *testing.T) {
	ctx := context.Background()
	for _, id := range []foreign.TypeID{
		foreign.TypeInvalid, foreign.TypeUTinyint, foreign.TypeUBigint, foreign.TypeTime,
		foreign.TypeInterval, foreign.TypeBlob, foreign.TypeEnum, foreign.TypeList,
		foreign.TypeStruct, foreign.TypeMap,
	} {
		_, err := MapType(ctx, foreign.NewType(id))
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedType), id.String())
		require.False(t, IsZeroCopy(foreign.NewType(id)))
	}

	_, err := MapType(ctx, foreign.Type{ID: foreign.TypeDecimal, Width: 10, Scale: 2, Backing: foreign.PhysicalDouble})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedBacking))
	_, err = MapType(ctx, foreign.Type{ID: foreign.TypeDecimal, Width: 10, Scale: 2})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedBacking))

	_, err = MapType(ctx, foreign.NewDecimalType(39, 2))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedType))
	_, err = MapType(ctx, foreign.NewDecimalType(4, 5))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnsupportedType))
}
