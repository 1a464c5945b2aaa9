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
	"encoding/binary"
	"unsafe"
)

const (
	VarlenaSize       = 16
	VarlenaInlineSize = 12
	VarlenaPrefixSize = 4
)

// Varlena is the host string descriptor. Bytes 0..4 hold the length. A
// value of at most VarlenaInlineSize bytes is stored inline after it;
// a longer one keeps its first four bytes as a prefix followed by the index
// of the area holding it and its offset within that area.
type Varlena [VarlenaSize]byte

func BuildVarlenaInline(data []byte) (v Varlena) {
	binary.LittleEndian.PutUint32(v[0:4], uint32(len(data)))
	copy(v[4:], data)
	return
}

// BuildVarlenaArea describes a value of length bytes stored at offset in
// area; prefix is the first bytes of the value.
func BuildVarlenaArea(length uint32, prefix []byte, area, offset uint32) (v Varlena) {
	binary.LittleEndian.PutUint32(v[0:4], length)
	copy(v[4:8], prefix)
	binary.LittleEndian.PutUint32(v[8:12], area)
	binary.LittleEndian.PutUint32(v[12:16], offset)
	return
}

func (v *Varlena) Len() uint32 {
	return binary.LittleEndian.Uint32(v[0:4])
}

func (v *Varlena) IsSmall() bool {
	return v.Len() <= VarlenaInlineSize
}

func (v *Varlena) Prefix() []byte {
	n := min(v.Len(), VarlenaPrefixSize)
	return v[4 : 4+n]
}

// Area returns the area index and offset of a non inline value.
func (v *Varlena) Area() (uint32, uint32) {
	return binary.LittleEndian.Uint32(v[8:12]), binary.LittleEndian.Uint32(v[12:16])
}

// GetByteSlice returns the value bytes; inline values alias the descriptor.
func (v *Varlena) GetByteSlice(areas [][]byte) []byte {
	n := v.Len()
	if n <= VarlenaInlineSize {
		return v[4 : 4+n]
	}
	area, off := v.Area()
	return areas[area][off : off+n]
}

func (v *Varlena) GetString(areas [][]byte) string {
	bs := v.GetByteSlice(areas)
	if len(bs) == 0 {
		return ""
	}
	return unsafe.String(&bs[0], len(bs))
}
