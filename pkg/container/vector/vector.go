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

package vector

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/matrixorigin/duckbridge/pkg/common/buffer"
	"github.com/matrixorigin/duckbridge/pkg/common/malloc"
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/container/nulls"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
)

const (
	FLAT = iota // flat vector represent a uncompressed vector
	DICT        // dictionary vector, uint32 selections over a base vector
)

// Vector represent a column
type Vector struct {
	// vector's class
	class int
	// type represent the type of column
	typ types.Type
	nsp *nulls.Nulls // validity, flat vectors only

	// FLAT: length elements of typ. DICT: length uint32 selections.
	data *buffer.Buffer

	// areas hold the bytes of strings longer than the inline size.
	areas     []*buffer.Buffer
	areaBytes [][]byte

	// base of a dictionary vector
	dict *Vector

	length int
	refs   atomic.Int32
}

// NewFlat builds a flat vector of length rows. It adopts one reference of
// data and nsp; nsp may be nil when no row is null.
func NewFlat(typ types.Type, length int, nsp *nulls.Nulls, data *buffer.Buffer) (*Vector, error) {
	if want := length * typ.TypeSize(); data.Len() != want {
		return nil, moerr.NewInternalErrorNoCtx("%s vector of %d rows over %d bytes, want %d",
			typ, length, data.Len(), want)
	}
	if nsp != nil && nsp.Length() != length {
		return nil, moerr.NewInternalErrorNoCtx("null bitmap of %d rows for vector of %d rows",
			nsp.Length(), length)
	}
	v := &Vector{
		class:  FLAT,
		typ:    typ,
		nsp:    nsp,
		data:   data,
		length: length,
	}
	v.refs.Store(1)
	return v, nil
}

// AllocFlat allocates a zeroed flat vector of length rows with no nulls.
func AllocFlat(alloc malloc.Allocator, typ types.Type, length int) (*Vector, error) {
	data, err := buffer.Alloc(alloc, length*typ.TypeSize())
	if err != nil {
		return nil, err
	}
	return NewFlat(typ, length, nil, data)
}

// NewDict wraps base with length selections held in indices. It adopts one
// reference of base and of indices. Every selection must address a row
// of base.
func NewDict(base *Vector, length int, indices *buffer.Buffer) (*Vector, error) {
	if indices.Len() != length*4 {
		return nil, moerr.NewInternalErrorNoCtx("dictionary of %d rows over %d index bytes", length, indices.Len())
	}
	sels := types.DecodeSlice[uint32](indices.Bytes())
	for i, s := range sels {
		if int(s) >= base.Length() {
			return nil, moerr.NewInternalErrorNoCtx("dictionary selection %d at row %d beyond base of %d rows",
				s, i, base.Length())
		}
	}
	v := &Vector{
		class:  DICT,
		typ:    base.typ,
		data:   indices,
		dict:   base,
		length: length,
	}
	v.refs.Store(1)
	return v, nil
}

func (v *Vector) Class() int {
	return v.class
}

func (v *Vector) IsDict() bool {
	return v.class == DICT
}

func (v *Vector) GetType() *types.Type {
	return &v.typ
}

func (v *Vector) Length() int {
	return v.length
}

func (v *Vector) GetNulls() *nulls.Nulls {
	return v.nsp
}

// Data is the values buffer of a flat vector or the index buffer of a
// dictionary one.
func (v *Vector) Data() *buffer.Buffer {
	return v.data
}

// Dict returns the base of a dictionary vector.
func (v *Vector) Dict() *Vector {
	return v.dict
}

func (v *Vector) Indices() []uint32 {
	if v.class != DICT {
		return nil
	}
	return types.DecodeSlice[uint32](v.data.Bytes())
}

// SetAreas adopts one reference of each area. Varlena area indexes refer to
// positions in areas.
func (v *Vector) SetAreas(areas []*buffer.Buffer) {
	v.areas = areas
	v.areaBytes = make([][]byte, len(areas))
	for i, a := range areas {
		v.areaBytes[i] = a.Bytes()
	}
}

func (v *Vector) Areas() []*buffer.Buffer {
	return v.areas
}

// row resolves a dictionary row to the flat vector and row holding it.
func (v *Vector) row(i int) (*Vector, int) {
	for v.class == DICT {
		i = int(types.DecodeSlice[uint32](v.data.Bytes())[i])
		v = v.dict
	}
	return v, i
}

func (v *Vector) IsNull(i int) bool {
	f, r := v.row(i)
	return f.nsp.Contains(uint64(r))
}

// HasNull reports whether any row of the vector is null.
func (v *Vector) HasNull() bool {
	if v.class == FLAT {
		return v.nsp.Any()
	}
	for i := 0; i < v.length; i++ {
		if v.IsNull(i) {
			return true
		}
	}
	return false
}

// MustFixedCol returns the values of a flat vector.
func MustFixedCol[T types.FixedSizeT](v *Vector) []T {
	if v.class != FLAT {
		panic(moerr.NewInternalErrorNoCtx("fixed column of a dictionary vector"))
	}
	return types.DecodeSlice[T](v.data.Bytes())
}

// GetFixedAt returns row i, following dictionary selections. The value of
// a null row is unspecified.
func GetFixedAt[T types.FixedSizeT](v *Vector, i int) T {
	f, r := v.row(i)
	return types.DecodeSlice[T](f.data.Bytes())[r]
}

func (v *Vector) GetBytesAt(i int) []byte {
	f, r := v.row(i)
	vs := types.DecodeSlice[types.Varlena](f.data.Bytes())
	return vs[r].GetByteSlice(f.areaBytes)
}

func (v *Vector) GetStringAt(i int) string {
	f, r := v.row(i)
	vs := types.DecodeSlice[types.Varlena](f.data.Bytes())
	return vs[r].GetString(f.areaBytes)
}

// Format renders row i as text, "null" for a null row.
func (v *Vector) Format(i int) string {
	if v.IsNull(i) {
		return "null"
	}
	switch v.typ.Oid {
	case types.T_bool:
		return strconv.FormatBool(GetFixedAt[bool](v, i))
	case types.T_int8:
		return strconv.FormatInt(int64(GetFixedAt[int8](v, i)), 10)
	case types.T_int16:
		return strconv.FormatInt(int64(GetFixedAt[int16](v, i)), 10)
	case types.T_int32:
		return strconv.FormatInt(int64(GetFixedAt[int32](v, i)), 10)
	case types.T_int64:
		return strconv.FormatInt(GetFixedAt[int64](v, i), 10)
	case types.T_int128:
		return GetFixedAt[types.Int128](v, i).String()
	case types.T_float32:
		return strconv.FormatFloat(float64(GetFixedAt[float32](v, i)), 'g', -1, 32)
	case types.T_float64:
		return strconv.FormatFloat(GetFixedAt[float64](v, i), 'g', -1, 64)
	case types.T_decimal64:
		return GetFixedAt[types.Decimal64](v, i).Format(v.typ.Scale)
	case types.T_decimal128:
		return GetFixedAt[types.Decimal128](v, i).Format(v.typ.Scale)
	case types.T_date:
		return GetFixedAt[types.Date](v, i).String()
	case types.T_timestamp:
		return GetFixedAt[types.Timestamp](v, i).String()
	case types.T_varchar:
		return v.GetStringAt(i)
	}
	panic(moerr.NewInternalErrorNoCtx("vec to string unknown type %s", v.typ))
}

func (v *Vector) String() string {
	var sb strings.Builder
	if v.class == DICT {
		sb.WriteString("dict")
	}
	sb.WriteByte('[')
	for i := 0; i < v.length; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.Format(i))
	}
	sb.WriteByte(']')
	return fmt.Sprintf("%s-%s", v.typ, sb.String())
}

// Retain adds a holder. Every holder calls Free once.
func (v *Vector) Retain() *Vector {
	v.refs.Add(1)
	return v
}

// Free drops one holder; the last one releases the buffers, which gives
// pool memory back and releases foreign retainers of views.
func (v *Vector) Free() {
	n := v.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic(moerr.NewInternalErrorNoCtx("vector freed more than retained"))
	}
	v.nsp.Free()
	v.nsp = nil
	if v.data != nil {
		v.data.Release()
		v.data = nil
	}
	for _, a := range v.areas {
		a.Release()
	}
	v.areas, v.areaBytes = nil, nil
	if v.dict != nil {
		v.dict.Free()
		v.dict = nil
	}
}
