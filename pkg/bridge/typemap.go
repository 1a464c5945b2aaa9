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

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

// mapping is the host side of a foreign column type.
type mapping struct {
	typ types.Type
	// zeroCopy is set when the foreign flat layout is the host layout, so
	// the payload can be adopted as a view.
	zeroCopy bool
}

var primitives = map[foreign.TypeID]mapping{
	foreign.TypeBoolean:     {typ: types.T_bool.ToType(), zeroCopy: true},
	foreign.TypeTinyint:     {typ: types.T_int8.ToType(), zeroCopy: true},
	foreign.TypeSmallint:    {typ: types.T_int16.ToType(), zeroCopy: true},
	foreign.TypeInteger:     {typ: types.T_int32.ToType(), zeroCopy: true},
	foreign.TypeBigint:      {typ: types.T_int64.ToType(), zeroCopy: true},
	foreign.TypeFloat:       {typ: types.T_float32.ToType(), zeroCopy: true},
	foreign.TypeDouble:      {typ: types.T_float64.ToType(), zeroCopy: true},
	foreign.TypeDate:        {typ: types.T_date.ToType(), zeroCopy: true},
	foreign.TypeHugeint:     {typ: types.T_int128.ToType()},
	foreign.TypeTimestampS:  {typ: types.T_timestamp.ToType()},
	foreign.TypeTimestampMS: {typ: types.T_timestamp.ToType()},
	foreign.TypeTimestamp:   {typ: types.T_timestamp.ToType()},
	foreign.TypeTimestampNS: {typ: types.T_timestamp.ToType()},
	foreign.TypeVarchar:     {typ: types.T_varchar.ToType()},
}

func lookup(ctx context.Context, ft foreign.Type) (mapping, error) {
	if ft.ID != foreign.TypeDecimal {
		m, ok := primitives[ft.ID]
		if !ok {
			return mapping{}, moerr.NewUnsupportedType(ctx, ft.String())
		}
		return m, nil
	}

	if ft.Width < 1 || ft.Width > types.MaxDecimal128Precision || ft.Scale > ft.Width {
		return mapping{}, moerr.NewUnsupportedType(ctx, ft.String())
	}
	width, scale := int32(ft.Width), int32(ft.Scale)
	// the host storage follows the backing, not the precision
	switch ft.Backing {
	case foreign.PhysicalInt16, foreign.PhysicalInt32:
		return mapping{typ: types.New(types.T_decimal64, width, scale)}, nil
	case foreign.PhysicalInt64:
		return mapping{typ: types.New(types.T_decimal64, width, scale), zeroCopy: true}, nil
	case foreign.PhysicalInt128:
		return mapping{typ: types.New(types.T_decimal128, width, scale), zeroCopy: true}, nil
	}
	return mapping{}, moerr.NewUnsupportedBacking(ctx, ft.Backing.String(), ft.String())
}

// MapType returns the host type of a foreign column type. It fails with
// ErrUnsupportedType for types the bridge cannot carry and with
// ErrUnsupportedBacking for a decimal stored in anything but a 16, 32, 64
// or 128 bit integer.
func MapType(ctx context.Context, ft foreign.Type) (types.Type, error) {
	m, err := lookup(ctx, ft)
	if err != nil {
		return types.Type{}, err
	}
	return m.typ, nil
}

// IsZeroCopy reports whether flat columns of ft are adopted without a copy.
func IsZeroCopy(ft foreign.Type) bool {
	m, err := lookup(context.Background(), ft)
	return err == nil && m.zeroCopy
}
