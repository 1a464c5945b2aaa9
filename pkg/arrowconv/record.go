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

// Package arrowconv exports host batches as Apache Arrow records.
package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/container/batch"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/container/vector"
)

type options struct {
	flatten bool
}

type Option func(*options)

// WithFlatten decodes dictionary vectors into plain arrays, which gives
// every batch of a result the same schema.
func WithFlatten() Option {
	return func(o *options) {
		o.flatten = true
	}
}

// DataType returns the Arrow type of a host type. HUGEINT becomes
// DECIMAL(38,0).
func DataType(typ types.Type) (arrow.DataType, error) {
	switch typ.Oid {
	case types.T_bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case types.T_int8:
		return arrow.PrimitiveTypes.Int8, nil
	case types.T_int16:
		return arrow.PrimitiveTypes.Int16, nil
	case types.T_int32:
		return arrow.PrimitiveTypes.Int32, nil
	case types.T_int64:
		return arrow.PrimitiveTypes.Int64, nil
	case types.T_int128:
		return &arrow.Decimal128Type{Precision: types.MaxDecimal128Precision, Scale: 0}, nil
	case types.T_float32:
		return arrow.PrimitiveTypes.Float32, nil
	case types.T_float64:
		return arrow.PrimitiveTypes.Float64, nil
	case types.T_decimal64, types.T_decimal128:
		return &arrow.Decimal128Type{Precision: typ.Width, Scale: typ.Scale}, nil
	case types.T_date:
		return arrow.FixedWidthTypes.Date32, nil
	case types.T_timestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case types.T_varchar:
		return arrow.BinaryTypes.String, nil
	}
	return nil, moerr.NewUnsupportedType(moerr.Context(), typ.String())
}

// BatchToRecord converts bat into a record allocated from mem. A
// dictionary vector over a flat base becomes a dictionary array with
// uint32 indices. The caller releases the record.
func BatchToRecord(mem memory.Allocator, bat *batch.Batch, opts ...Option) (rec arrow.Record, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fields := make([]arrow.Field, len(bat.Vecs))
	cols := make([]arrow.Array, 0, len(bat.Vecs))
	defer func() {
		if e := recover(); e != nil {
			rec, err = nil, moerr.ConvertPanicError(moerr.Context(), e)
		}
		for _, col := range cols {
			col.Release()
		}
	}()
	for i, vec := range bat.Vecs {
		var col arrow.Array
		if vec.IsDict() && !vec.Dict().IsDict() && !o.flatten {
			col, err = dictArray(mem, vec)
		} else {
			col, err = plainArray(mem, vec, bat.RowCount())
		}
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		fields[i] = arrow.Field{Name: bat.Attrs[i], Type: col.DataType(), Nullable: true}
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(bat.RowCount())), nil
}

func dictArray(mem memory.Allocator, vec *vector.Vector) (arrow.Array, error) {
	base := vec.Dict()
	values, err := plainArray(mem, base, base.Length())
	if err != nil {
		return nil, err
	}
	defer values.Release()

	b := array.NewUint32Builder(mem)
	defer b.Release()
	b.Reserve(vec.Length())
	for i, idx := range vec.Indices() {
		if vec.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.Append(idx)
	}
	indices := b.NewArray()
	defer indices.Release()

	dt := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint32, ValueType: values.DataType()}
	return array.NewDictionaryArray(dt, indices, values), nil
}

type appender[T any] interface {
	array.Builder
	Append(T)
}

func fill[T any](b appender[T], vec *vector.Vector, n int, get func(int) T) arrow.Array {
	defer b.Release()
	b.Reserve(n)
	for i := 0; i < n; i++ {
		if vec.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.Append(get(i))
	}
	return b.NewArray()
}

// plainArray reads n rows of vec, following dictionary selections.
func plainArray(mem memory.Allocator, vec *vector.Vector, n int) (arrow.Array, error) {
	dt, err := DataType(*vec.GetType())
	if err != nil {
		return nil, err
	}
	switch vec.GetType().Oid {
	case types.T_bool:
		return fill(array.NewBooleanBuilder(mem), vec, n, func(i int) bool {
			return vector.GetFixedAt[bool](vec, i)
		}), nil
	case types.T_int8:
		return fill(array.NewInt8Builder(mem), vec, n, func(i int) int8 {
			return vector.GetFixedAt[int8](vec, i)
		}), nil
	case types.T_int16:
		return fill(array.NewInt16Builder(mem), vec, n, func(i int) int16 {
			return vector.GetFixedAt[int16](vec, i)
		}), nil
	case types.T_int32:
		return fill(array.NewInt32Builder(mem), vec, n, func(i int) int32 {
			return vector.GetFixedAt[int32](vec, i)
		}), nil
	case types.T_int64:
		return fill(array.NewInt64Builder(mem), vec, n, func(i int) int64 {
			return vector.GetFixedAt[int64](vec, i)
		}), nil
	case types.T_float32:
		return fill(array.NewFloat32Builder(mem), vec, n, func(i int) float32 {
			return vector.GetFixedAt[float32](vec, i)
		}), nil
	case types.T_float64:
		return fill(array.NewFloat64Builder(mem), vec, n, func(i int) float64 {
			return vector.GetFixedAt[float64](vec, i)
		}), nil
	case types.T_int128:
		return fill(array.NewDecimal128Builder(mem, dt.(*arrow.Decimal128Type)), vec, n, func(i int) decimal128.Num {
			x := vector.GetFixedAt[types.Int128](vec, i)
			return decimal128.New(x.Hi, x.Lo)
		}), nil
	case types.T_decimal64:
		return fill(array.NewDecimal128Builder(mem, dt.(*arrow.Decimal128Type)), vec, n, func(i int) decimal128.Num {
			return decimal128.FromI64(int64(vector.GetFixedAt[types.Decimal64](vec, i)))
		}), nil
	case types.T_decimal128:
		return fill(array.NewDecimal128Builder(mem, dt.(*arrow.Decimal128Type)), vec, n, func(i int) decimal128.Num {
			x := vector.GetFixedAt[types.Decimal128](vec, i)
			return decimal128.New(int64(x.B64_127), x.B0_63)
		}), nil
	case types.T_date:
		return fill(array.NewDate32Builder(mem), vec, n, func(i int) arrow.Date32 {
			return arrow.Date32(vector.GetFixedAt[types.Date](vec, i))
		}), nil
	case types.T_timestamp:
		return fill(array.NewTimestampBuilder(mem, dt.(*arrow.TimestampType)), vec, n, func(i int) arrow.Timestamp {
			return arrow.Timestamp(vector.GetFixedAt[types.Timestamp](vec, i))
		}), nil
	case types.T_varchar:
		return fill(array.NewStringBuilder(mem), vec, n, vec.GetStringAt), nil
	}
	return nil, moerr.NewUnsupportedType(moerr.Context(), vec.GetType().String())
}
