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

// Package bitmap holds byte-granular 1-bit-per-row helpers. Bit i lives in
// byte i/8 at position i%8 (least significant bit first), which is the
// order little-endian uint64 validity words use as well.
package bitmap

import (
	"math/bits"
)

/*
 * Array giving the position of the right-most set bit for each possible
 * byte value. The 0th entry of the array should not be used.
 */
var rightmostOnePos8 = [256]uint8{
	0, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	6, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	7, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	6, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	5, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
	4, 0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0,
}

// Nbytes is the number of bytes needed to hold n bits.
func Nbytes(n int) int {
	return (n + 7) / 8
}

func Contains(bm []byte, i uint64) bool {
	return bm[i>>3]&(1<<(i&7)) != 0
}

func Add(bm []byte, i uint64) {
	bm[i>>3] |= 1 << (i & 7)
}

func Remove(bm []byte, i uint64) {
	bm[i>>3] &^= 1 << (i & 7)
}

// AddRange sets bits [start, end).
func AddRange(bm []byte, start, end uint64) {
	for i := start; i < end; i++ {
		Add(bm, i)
	}
}

// Count returns the number of set bits among the first n.
func Count(bm []byte, n int) int {
	full := n / 8
	cnt := 0
	for _, b := range bm[:full] {
		cnt += bits.OnesCount8(b)
	}
	if rem := n % 8; rem != 0 {
		cnt += bits.OnesCount8(bm[full] & (1<<rem - 1))
	}
	return cnt
}

// All reports whether all of the first n bits are set.
func All(bm []byte, n int) bool {
	return Count(bm, n) == n
}

// Iterator walks the set (or unset) bits of the first n bits of a bitmap.
type Iterator struct {
	bm     []byte
	n      uint64
	i      uint64
	invert bool
}

// NewIterator iterates the set bits. NewInvertIterator iterates the unset
// bits, which is how null rows are listed from a validity bitmap.
func NewIterator(bm []byte, n int) *Iterator {
	return &Iterator{bm: bm, n: uint64(n)}
}

func NewInvertIterator(bm []byte, n int) *Iterator {
	return &Iterator{bm: bm, n: uint64(n), invert: true}
}

func (itr *Iterator) word(i uint64) byte {
	w := itr.bm[i>>3]
	if itr.invert {
		w = ^w
	}
	return w
}

// Next returns the next position and false once exhausted.
func (itr *Iterator) Next() (uint64, bool) {
	for itr.i < itr.n {
		// mask off the bits already visited in this byte
		w := itr.word(itr.i) &^ (1<<(itr.i&7) - 1)
		if w == 0 {
			itr.i = (itr.i | 7) + 1
			continue
		}
		pos := itr.i&^7 + uint64(rightmostOnePos8[w])
		if pos >= itr.n {
			itr.i = itr.n
			return 0, false
		}
		itr.i = pos + 1
		return pos, true
	}
	return 0, false
}
