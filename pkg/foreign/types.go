// Copyright 2024 Matrix Origin
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

// Package foreign is the contract an embedded columnar SQL engine fulfils
// to have its results bridged. Results are fetched as chunks of typed
// vectors laid out the way DuckDB lays them out in memory.
package foreign

import "fmt"

// TypeID is the logical type of a foreign column. The numbering follows
// the DuckDB C API.
type TypeID uint8

const (
	TypeInvalid TypeID = iota
	TypeBoolean
	TypeTinyint
	TypeSmallint
	TypeInteger
	TypeBigint
	TypeUTinyint
	TypeUSmallint
	TypeUInteger
	TypeUBigint
	TypeFloat
	TypeDouble
	TypeTimestamp
	TypeDate
	TypeTime
	TypeInterval
	TypeHugeint
	TypeVarchar
	TypeBlob
	TypeDecimal
	TypeTimestampS
	TypeTimestampMS
	TypeTimestampNS
	TypeEnum
	TypeList
	TypeStruct
	TypeMap
)

var typeNames = [...]string{
	TypeInvalid:     "INVALID",
	TypeBoolean:     "BOOLEAN",
	TypeTinyint:     "TINYINT",
	TypeSmallint:    "SMALLINT",
	TypeInteger:     "INTEGER",
	TypeBigint:      "BIGINT",
	TypeUTinyint:    "UTINYINT",
	TypeUSmallint:   "USMALLINT",
	TypeUInteger:    "UINTEGER",
	TypeUBigint:     "UBIGINT",
	TypeFloat:       "FLOAT",
	TypeDouble:      "DOUBLE",
	TypeTimestamp:   "TIMESTAMP",
	TypeDate:        "DATE",
	TypeTime:        "TIME",
	TypeInterval:    "INTERVAL",
	TypeHugeint:     "HUGEINT",
	TypeVarchar:     "VARCHAR",
	TypeBlob:        "BLOB",
	TypeDecimal:     "DECIMAL",
	TypeTimestampS:  "TIMESTAMP_S",
	TypeTimestampMS: "TIMESTAMP_MS",
	TypeTimestampNS: "TIMESTAMP_NS",
	TypeEnum:        "ENUM",
	TypeList:        "LIST",
	TypeStruct:      "STRUCT",
	TypeMap:         "MAP",
}

func (t TypeID) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("TYPE(%d)", uint8(t))
}

// PhysicalType is the in-memory representation backing a logical type.
// Only decimals have a choice of backing.
type PhysicalType uint8

const (
	PhysicalInvalid PhysicalType = iota
	PhysicalInt16
	PhysicalInt32
	PhysicalInt64
	PhysicalInt128
	PhysicalDouble
)

func (p PhysicalType) String() string {
	switch p {
	case PhysicalInt16:
		return "INT16"
	case PhysicalInt32:
		return "INT32"
	case PhysicalInt64:
		return "INT64"
	case PhysicalInt128:
		return "INT128"
	case PhysicalDouble:
		return "DOUBLE"
	}
	return "INVALID"
}

// Type describes a foreign column. Width, Scale and Backing are only set
// for decimals.
type Type struct {
	ID      TypeID
	Width   uint8
	Scale   uint8
	Backing PhysicalType
}

// DecimalBacking is the physical type DuckDB picks for a decimal width.
func DecimalBacking(width uint8) PhysicalType {
	switch {
	case width <= 4:
		return PhysicalInt16
	case width <= 9:
		return PhysicalInt32
	case width <= 18:
		return PhysicalInt64
	case width <= 38:
		return PhysicalInt128
	}
	return PhysicalInvalid
}

func NewType(id TypeID) Type {
	return Type{ID: id}
}

func NewDecimalType(width, scale uint8) Type {
	return Type{ID: TypeDecimal, Width: width, Scale: scale, Backing: DecimalBacking(width)}
}

func (t Type) String() string {
	if t.ID == TypeDecimal {
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Width, t.Scale)
	}
	return t.ID.String()
}

// ElementSize is the width in bytes of one flat element, 0 for types
// without a fixed width.
func (t Type) ElementSize() int {
	switch t.ID {
	case TypeBoolean, TypeTinyint, TypeUTinyint:
		return 1
	case TypeSmallint, TypeUSmallint:
		return 2
	case TypeInteger, TypeUInteger, TypeFloat, TypeDate:
		return 4
	case TypeBigint, TypeUBigint, TypeDouble, TypeTime,
		TypeTimestamp, TypeTimestampS, TypeTimestampMS, TypeTimestampNS:
		return 8
	case TypeHugeint, TypeInterval, TypeVarchar, TypeBlob:
		return 16
	case TypeDecimal:
		switch t.Backing {
		case PhysicalInt16:
			return 2
		case PhysicalInt32:
			return 4
		case PhysicalInt64, PhysicalDouble:
			return 8
		case PhysicalInt128:
			return 16
		}
	}
	return 0
}

// Encoding is the vector type of a foreign column.
type Encoding uint8

const (
	Flat Encoding = iota
	Constant
	Dictionary
	Sequence
)

func (e Encoding) String() string {
	switch e {
	case Flat:
		return "FLAT"
	case Constant:
		return "CONSTANT"
	case Dictionary:
		return "DICTIONARY"
	case Sequence:
		return "SEQUENCE"
	}
	return fmt.Sprintf("ENCODING(%d)", uint8(e))
}
