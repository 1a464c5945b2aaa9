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

package types

import (
	"fmt"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
)

type T uint8

const (
	// any family
	T_any T = 0

	// bool family
	T_bool T = 10

	// numeric/integer family
	T_int8   T = 20
	T_int16  T = 21
	T_int32  T = 22
	T_int64  T = 23
	T_int128 T = 24

	// numeric/float family
	T_float32    T = 30
	T_float64    T = 31
	T_decimal64  T = 32
	T_decimal128 T = 33

	// date family
	T_date      T = 50
	T_timestamp T = 52

	// string family
	T_varchar T = 61
)

const (
	MaxDecimal64Precision  = 18
	MaxDecimal128Precision = 38
)

// Type is a host column type. Width is the decimal precision and Scale the
// number of fractional digits; both are zero for other types.
type Type struct {
	Oid T

	// Size of a single element in bytes
	Size int32

	Width int32
	Scale int32
}

// Field is one named column of a row type.
type Field struct {
	Name string
	Type Type
}

// RowType is the ordered list of (name, type) pairs describing a result.
type RowType struct {
	Fields []Field
}

// NewRowType copies names and typs into a row type. The two slices must
// have the same length.
func NewRowType(names []string, typs []Type) (RowType, error) {
	if len(names) != len(typs) {
		return RowType{}, moerr.NewInvalidInputNoCtx("row type with %d names and %d types", len(names), len(typs))
	}
	fields := make([]Field, len(names))
	for i := range names {
		fields[i] = Field{Name: names[i], Type: typs[i]}
	}
	return RowType{Fields: fields}, nil
}

func (r RowType) Len() int {
	return len(r.Fields)
}

func (r RowType) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

func (r RowType) Types() []Type {
	typs := make([]Type, len(r.Fields))
	for i, f := range r.Fields {
		typs[i] = f.Type
	}
	return typs
}

func (r RowType) String() string {
	s := "ROW("
	for i, f := range r.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + " " + f.Type.String()
	}
	return s + ")"
}

// New builds a type; width and scale only matter for decimals.
func New(oid T, width, scale int32) Type {
	return Type{
		Oid:   oid,
		Size:  int32(oid.TypeLen()),
		Width: width,
		Scale: scale,
	}
}

// NewDecimalType picks decimal64 for precision up to 18 and decimal128 up
// to 38.
func NewDecimalType(precision, scale int32) (Type, error) {
	if precision < 1 || precision > MaxDecimal128Precision {
		return Type{}, moerr.NewInvalidInputNoCtx("decimal precision %d", precision)
	}
	if scale < 0 || scale > precision {
		return Type{}, moerr.NewInvalidInputNoCtx("decimal(%d,%d) scale", precision, scale)
	}
	if precision <= MaxDecimal64Precision {
		return New(T_decimal64, precision, scale), nil
	}
	return New(T_decimal128, precision, scale), nil
}

func (t T) ToType() Type {
	return New(t, 0, 0)
}

func (t Type) IsDecimal() bool {
	return t.Oid == T_decimal64 || t.Oid == T_decimal128
}

func (t Type) IsVarlen() bool {
	return t.Oid == T_varchar
}

func (t Type) Eq(b Type) bool {
	return t.Oid == b.Oid && t.Size == b.Size && t.Width == b.Width && t.Scale == b.Scale
}

func (t Type) String() string {
	if t.IsDecimal() {
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Width, t.Scale)
	}
	return t.Oid.String()
}

func (t Type) TypeSize() int {
	return t.Oid.TypeLen()
}

func (t T) String() string {
	switch t {
	case T_any:
		return "ANY"
	case T_bool:
		return "BOOL"
	case T_int8:
		return "TINYINT"
	case T_int16:
		return "SMALLINT"
	case T_int32:
		return "INT"
	case T_int64:
		return "BIGINT"
	case T_int128:
		return "HUGEINT"
	case T_float32:
		return "FLOAT"
	case T_float64:
		return "DOUBLE"
	case T_decimal64:
		return "DECIMAL64"
	case T_decimal128:
		return "DECIMAL128"
	case T_date:
		return "DATE"
	case T_timestamp:
		return "TIMESTAMP"
	case T_varchar:
		return "VARCHAR"
	}
	return fmt.Sprintf("unexpected type: %d", t)
}

// TypeLen returns the size of one element of the type in bytes.
func (t T) TypeLen() int {
	switch t {
	case T_bool, T_int8:
		return 1
	case T_int16:
		return 2
	case T_int32, T_float32, T_date:
		return 4
	case T_int64, T_float64, T_decimal64, T_timestamp:
		return 8
	case T_int128, T_decimal128:
		return 16
	case T_varchar:
		return VarlenaSize
	case T_any:
		return 0
	}
	panic(moerr.NewInternalErrorNoCtx("unknown type %d", t))
}

// FixedLength returns the element size for fixed width types and -1 for
// varlen ones.
func (t T) FixedLength() int {
	if t == T_varchar {
		return -1
	}
	return t.TypeLen()
}
