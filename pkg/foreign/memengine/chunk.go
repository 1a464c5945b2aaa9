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

package memengine

import (
	"encoding/binary"
	"math"
	"math/big"
	"unsafe"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
)

type vector struct {
	typ      foreign.Type
	enc      foreign.Encoding
	validity []uint64
	data     []byte
	heap     []byte
	child    *vector
	sel      []uint32

	// sequence parameters
	start, increment int64

	arena *arena
}

var _ foreign.Vector = new(vector)

func (v *vector) Type() foreign.Type {
	return v.typ
}

func (v *vector) Encoding() foreign.Encoding {
	return v.enc
}

func (v *vector) Validity() []uint64 {
	return v.validity
}

func (v *vector) Data() []byte {
	return v.data
}

func (v *vector) Heap() []byte {
	return v.heap
}

func (v *vector) Selection() []uint32 {
	return v.sel
}

func (v *vector) Retain() foreign.Retainer {
	return v.arena.retain()
}

func (v *vector) Child() foreign.Vector {
	if v.child == nil {
		return nil
	}
	return v.child
}

type chunk struct {
	size     int
	cols     []*vector
	arena    *arena
	released bool
}

var _ foreign.Chunk = new(chunk)

func (c *chunk) Size() int {
	return c.size
}

func (c *chunk) ColumnCount() int {
	return len(c.cols)
}

func (c *chunk) Column(i int) foreign.Vector {
	return c.cols[i]
}

func (c *chunk) Release() {
	if c.released {
		return
	}
	c.released = true
	c.arena.unref()
}

func (c *chunk) Normalize() error {
	for _, v := range c.cols {
		switch v.enc {
		case foreign.Constant:
			es := v.typ.ElementSize()
			data := c.arena.alloc(c.size * es)
			for i := 0; i < c.size; i++ {
				copy(data[i*es:], v.data[:es])
			}
			if v.validity != nil && v.validity[0]&1 == 0 {
				// all rows null
				v.validity = c.arena.allocWords((c.size + 63) / 64)
			} else {
				v.validity = nil
			}
			v.data, v.enc = data, foreign.Flat
		case foreign.Sequence:
			es := v.typ.ElementSize()
			data := c.arena.alloc(c.size * es)
			for i := 0; i < c.size; i++ {
				putInt(v.typ, data[i*es:], v.start+int64(i)*v.increment)
			}
			v.data, v.enc = data, foreign.Flat
		}
	}
	return nil
}

func buildChunk(e *Engine, typs []foreign.Type, cd *ChunkData) (*chunk, error) {
	a := e.getArena()
	c := &chunk{size: cd.Rows, arena: a, cols: make([]*vector, len(cd.Columns))}
	for i := range cd.Columns {
		v, err := buildVector(a, typs[i], &cd.Columns[i], cd.Rows)
		if err != nil {
			c.Release()
			return nil, err
		}
		c.cols[i] = v
	}
	return c, nil
}

func buildVector(a *arena, typ foreign.Type, col *Column, rows int) (*vector, error) {
	v := &vector{typ: typ, enc: col.Encoding, arena: a}
	switch col.Encoding {
	case foreign.Flat:
		if err := fillFlat(a, v, col.Values); err != nil {
			return nil, err
		}
	case foreign.Constant:
		// a null constant gets a single cleared validity word
		if err := fillFlat(a, v, col.Values[:1]); err != nil {
			return nil, err
		}
	case foreign.Sequence:
		if !isInteger(typ.ID) {
			return nil, moerr.NewInvalidInputNoCtx("sequence of %s", typ)
		}
		v.start, v.increment = col.Start, col.Increment
	case foreign.Dictionary:
		base := col.base()
		child, err := buildVector(a, typ, base, base.length(0))
		if err != nil {
			return nil, err
		}
		v.child = child
		if n := len(col.Selection); n > 0 {
			b := a.alloc(4 * n)
			v.sel = unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n)
			copy(v.sel, col.Selection)
		}
	}
	return v, nil
}

func fillFlat(a *arena, v *vector, vals []any) error {
	n := len(vals)
	es := v.typ.ElementSize()
	v.data = a.alloc(n * es)
	for _, val := range vals {
		if val == nil {
			v.validity = a.allocWords((n + 63) / 64)
			for i, val := range vals {
				if val != nil {
					v.validity[i>>6] |= 1 << (uint(i) & 63)
				}
			}
			break
		}
	}

	if v.typ.ID == foreign.TypeVarchar || v.typ.ID == foreign.TypeBlob {
		heapLen := 0
		for _, val := range vals {
			if s, ok := asBytes(val); ok && len(s) > foreign.StringInlineSize {
				heapLen += len(s)
			}
		}
		v.heap = a.alloc(heapLen)
		off := 0
		strs := foreign.Values[foreign.String](v.data)
		for i, val := range vals {
			switch x := val.(type) {
			case nil:
			case poison:
				poisonSlot(v.data[i*es : (i+1)*es])
			default:
				s, ok := asBytes(x)
				if !ok {
					return moerr.NewInvalidInputNoCtx("%T value for %s", val, v.typ)
				}
				if len(s) <= foreign.StringInlineSize {
					strs[i] = foreign.InlineString(s)
					continue
				}
				copy(v.heap[off:], s)
				strs[i] = foreign.HeapString(s, uint64(off))
				off += len(s)
			}
		}
		return nil
	}

	for i, val := range vals {
		switch val.(type) {
		case nil:
		case poison:
			poisonSlot(v.data[i*es : (i+1)*es])
		default:
			if err := putValue(v.typ, v.data[i*es:(i+1)*es], val); err != nil {
				return err
			}
		}
	}
	return nil
}

func poisonSlot(b []byte) {
	for i := range b {
		b[i] = poisonByte
	}
}

func asBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case string:
		return []byte(x), true
	case []byte:
		return x, true
	}
	return nil, false
}

func isInteger(id foreign.TypeID) bool {
	switch id {
	case foreign.TypeTinyint, foreign.TypeSmallint, foreign.TypeInteger, foreign.TypeBigint, foreign.TypeHugeint,
		foreign.TypeUTinyint, foreign.TypeUSmallint, foreign.TypeUInteger, foreign.TypeUBigint:
		return true
	}
	return false
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}

// putInt stores x in the width of typ.
func putInt(typ foreign.Type, dst []byte, x int64) {
	switch typ.ElementSize() {
	case 1:
		dst[0] = byte(x)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(x))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(x))
	case 8:
		binary.LittleEndian.PutUint64(dst, uint64(x))
	case 16:
		putHugeint(dst, foreign.Hugeint{Lower: uint64(x), Upper: x >> 63})
	}
}

func putHugeint(dst []byte, h foreign.Hugeint) {
	binary.LittleEndian.PutUint64(dst[0:8], h.Lower)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(h.Upper))
}

func putValue(typ foreign.Type, dst []byte, val any) error {
	bad := func() error {
		return moerr.NewInvalidInputNoCtx("%T value %v for %s", val, val, typ)
	}
	switch typ.ID {
	case foreign.TypeBoolean:
		b, ok := val.(bool)
		if !ok {
			return bad()
		}
		if b {
			dst[0] = 1
		}
	case foreign.TypeFloat:
		switch x := val.(type) {
		case float32:
			binary.LittleEndian.PutUint32(dst, math.Float32bits(x))
		case float64:
			binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(x)))
		default:
			return bad()
		}
	case foreign.TypeDouble:
		switch x := val.(type) {
		case float32:
			binary.LittleEndian.PutUint64(dst, math.Float64bits(float64(x)))
		case float64:
			binary.LittleEndian.PutUint64(dst, math.Float64bits(x))
		default:
			return bad()
		}
	case foreign.TypeHugeint:
		if h, ok := val.(foreign.Hugeint); ok {
			putHugeint(dst, h)
			return nil
		}
		x, ok := asInt64(val)
		if !ok {
			return bad()
		}
		putInt(typ, dst, x)
	case foreign.TypeDate:
		if s, ok := val.(string); ok {
			d, err := types.ParseDate(s)
			if err != nil {
				return err
			}
			putInt(typ, dst, int64(d))
			return nil
		}
		x, ok := asInt64(val)
		if !ok {
			return bad()
		}
		putInt(typ, dst, x)
	case foreign.TypeTimestamp, foreign.TypeTimestampS, foreign.TypeTimestampMS, foreign.TypeTimestampNS:
		if s, ok := val.(string); ok {
			ts, err := types.ParseTimestamp(s)
			if err != nil {
				return err
			}
			putInt(typ, dst, fromMicros(typ.ID, int64(ts)))
			return nil
		}
		x, ok := asInt64(val)
		if !ok {
			return bad()
		}
		putInt(typ, dst, x)
	case foreign.TypeDecimal:
		return putDecimal(typ, dst, val)
	default:
		if !isInteger(typ.ID) {
			return moerr.NewNYI(moerr.Context(), "memengine values of type %s", typ)
		}
		x, ok := asInt64(val)
		if !ok {
			return bad()
		}
		putInt(typ, dst, x)
	}
	return nil
}

func fromMicros(id foreign.TypeID, us int64) int64 {
	switch id {
	case foreign.TypeTimestampS:
		return us / types.MicroSecsPerSec
	case foreign.TypeTimestampMS:
		return us / 1000
	case foreign.TypeTimestampNS:
		return us * 1000
	}
	return us
}

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// putDecimal stores an unscaled integer, a Hugeint, or a decimal literal
// rescaled to the column's scale.
func putDecimal(typ foreign.Type, dst []byte, val any) error {
	var unscaled *big.Int
	switch x := val.(type) {
	case foreign.Hugeint:
		putHugeint(dst, x)
		return nil
	case string:
		d, err := types.ParseDecimal(x)
		if err != nil {
			return err
		}
		if d.Scale > int32(typ.Scale) {
			return moerr.NewOutOfRangeNoCtx(typ.String(), "'%s' has more than %d fractional digits", x, typ.Scale)
		}
		unscaled = d.Unscaled.Big()
		unscaled.Mul(unscaled, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(int32(typ.Scale)-d.Scale)), nil))
	default:
		i, ok := asInt64(val)
		if !ok {
			return moerr.NewInvalidInputNoCtx("%T value for %s", val, typ)
		}
		unscaled = big.NewInt(i)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(typ.Width)), nil)
	if new(big.Int).Abs(unscaled).Cmp(limit) >= 0 {
		return moerr.NewOutOfRangeNoCtx(typ.String(), "value %s", unscaled)
	}
	if typ.Backing == foreign.PhysicalInt128 {
		u := new(big.Int).Set(unscaled)
		if u.Sign() < 0 {
			u.Add(u, two128)
		}
		lo := new(big.Int).And(u, new(big.Int).SetUint64(math.MaxUint64)).Uint64()
		hi := new(big.Int).Rsh(u, 64).Uint64()
		putHugeint(dst, foreign.Hugeint{Lower: lo, Upper: int64(hi)})
		return nil
	}
	if len(dst) == 0 {
		return moerr.NewInvalidInputNoCtx("decimal backing %s", typ.Backing)
	}
	putInt(typ, dst, unscaled.Int64())
	return nil
}
