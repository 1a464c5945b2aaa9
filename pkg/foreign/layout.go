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

package foreign

import (
	"encoding/binary"
	"unsafe"
)

// Hugeint is the 128-bit integer layout, low word first.
type Hugeint struct {
	Lower uint64
	Upper int64
}

// Timestamp is the timestamp layout. The unit of Value depends on the
// logical type: seconds, milliseconds, microseconds or nanoseconds since
// the epoch.
type Timestamp struct {
	Value int64
}

const (
	StringSize       = 16
	StringInlineSize = 12
	StringPrefixSize = 4
)

// String is the 16 byte string layout: a uint32 length, then either the
// bytes inline or a 4 byte prefix and the uint64 offset of the bytes in
// the vector heap.
type String [StringSize]byte

func InlineString(s []byte) (v String) {
	binary.LittleEndian.PutUint32(v[0:4], uint32(len(s)))
	copy(v[4:], s)
	return
}

func HeapString(s []byte, offset uint64) (v String) {
	binary.LittleEndian.PutUint32(v[0:4], uint32(len(s)))
	copy(v[4:8], s[:StringPrefixSize])
	binary.LittleEndian.PutUint64(v[8:16], offset)
	return
}

func (s *String) Len() uint32 {
	return binary.LittleEndian.Uint32(s[0:4])
}

func (s *String) IsInlined() bool {
	return s.Len() <= StringInlineSize
}

func (s *String) Inlined() []byte {
	return s[4 : 4+s.Len()]
}

func (s *String) Prefix() []byte {
	return s[4:8]
}

func (s *String) Offset() uint64 {
	return binary.LittleEndian.Uint64(s[8:16])
}

// Bytes returns the value, reading long strings from heap.
func (s *String) Bytes(heap []byte) []byte {
	if s.IsInlined() {
		return s.Inlined()
	}
	off := s.Offset()
	return heap[off : off+uint64(s.Len())]
}

// RowIsValid reads the validity bit of row; nil validity is all valid.
func RowIsValid(validity []uint64, row int) bool {
	if validity == nil {
		return true
	}
	return validity[row>>6]&(1<<(uint(row)&63)) != 0
}

// ValidityBytes views the words as bytes, in row order on little endian
// machines.
func ValidityBytes(validity []uint64) []byte {
	if len(validity) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&validity[0])), len(validity)*8)
}

// Values reinterprets data as a slice of T.
func Values[T any](data []byte) []T {
	var t T
	sz := int(unsafe.Sizeof(t))
	if len(data) < sz {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/sz)
}
