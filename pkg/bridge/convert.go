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
	"math"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/bitmap"
	"github.com/matrixorigin/duckbridge/pkg/common/buffer"
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/container/nulls"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/container/vector"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// converter turns the foreign vectors of one chunk into host vectors. Deep
// copies and dictionary indices are allocated from mp; views hold their
// own retainer of the foreign memory.
type converter struct {
	ctx       context.Context
	mp        *mpool.MPool
	forceCopy bool
}

// convert materializes the first length rows of fv. When used is not nil
// only the rows it contains are ever read; the others are left zero.
func (c *converter) convert(fv foreign.Vector, length int, used *roaring.Bitmap) (*vector.Vector, error) {
	switch fv.Encoding() {
	case foreign.Flat:
		return c.convertFlat(fv, length, used)
	case foreign.Dictionary:
		return c.convertDictionary(fv, length, used)
	}
	return nil, moerr.NewUnsupportedEncoding(c.ctx, fv.Encoding().String())
}

// convertFlat converts a flat column of any mapped type. Layout compatible
// columns are adopted as views, everything else is copied row by row.
func (c *converter) convertFlat(fv foreign.Vector, length int, used *roaring.Bitmap) (*vector.Vector, error) {
	if fv.Encoding() != foreign.Flat {
		return nil, moerr.NewUnsupportedEncoding(c.ctx, fv.Encoding().String())
	}
	ft := fv.Type()
	m, err := lookup(c.ctx, ft)
	if err != nil {
		return nil, err
	}
	n := length * ft.ElementSize()
	data := fv.Data()
	if len(data) < n {
		return nil, moerr.NewInternalError(c.ctx, "%s vector of %d bytes for %d rows", ft, len(data), length)
	}
	data = data[:n]

	if m.zeroCopy && !c.forceCopy {
		logutil.Debug("view foreign vector",
			zap.String("type", ft.String()),
			zap.Int("rows", length))
		return c.viewFlat(fv, m.typ, length, data)
	}
	logutil.Debug("copy foreign vector",
		zap.String("type", ft.String()),
		zap.Int("rows", length),
		zap.Bool("masked", used != nil))
	return c.copyFlat(fv, m, length, data, used)
}

func (c *converter) viewFlat(fv foreign.Vector, typ types.Type, length int, data []byte) (*vector.Vector, error) {
	nsp, err := c.validity(fv, length, true)
	if err != nil {
		return nil, err
	}
	buf := buffer.NewView(data, fv.Retain())
	vec, err := vector.NewFlat(typ, length, nsp, buf)
	if err != nil {
		buf.Release()
		nsp.Free()
		return nil, err
	}
	return vec, nil
}

func (c *converter) copyFlat(fv foreign.Vector, m mapping, length int, data []byte, used *roaring.Bitmap) (*vector.Vector, error) {
	buf, err := buffer.Alloc(c.mp, length*m.typ.TypeSize())
	if err != nil {
		return nil, err
	}
	nsp, err := c.validity(fv, length, false)
	if err != nil {
		buf.Release()
		return nil, err
	}
	vec, err := vector.NewFlat(m.typ, length, nsp, buf)
	if err != nil {
		buf.Release()
		nsp.Free()
		return nil, err
	}

	if m.zeroCopy {
		// same layout, forced copy
		copy(buf.Bytes(), data)
		return vec, nil
	}

	// null and unused rows are never read
	skip := func(i int) bool {
		return nsp.Contains(uint64(i)) || (used != nil && !used.Contains(uint32(i)))
	}
	ft := fv.Type()
	switch ft.ID {
	case foreign.TypeHugeint:
		castRows(vector.MustFixedCol[types.Int128](vec), foreign.Values[foreign.Hugeint](data), skip,
			func(h foreign.Hugeint) types.Int128 {
				return types.Int128{Lo: h.Lower, Hi: h.Upper}
			})
	case foreign.TypeTimestampS, foreign.TypeTimestampMS, foreign.TypeTimestamp, foreign.TypeTimestampNS:
		castRows(vector.MustFixedCol[types.Timestamp](vec), foreign.Values[foreign.Timestamp](data), skip,
			timestampCast(ft.ID))
	case foreign.TypeVarchar:
		err = c.copyStrings(vec, fv, data, skip)
	case foreign.TypeDecimal:
		switch ft.Backing {
		case foreign.PhysicalInt16:
			castRows(vector.MustFixedCol[types.Decimal64](vec), foreign.Values[int16](data), skip,
				func(x int16) types.Decimal64 { return types.Decimal64(x) })
		case foreign.PhysicalInt32:
			castRows(vector.MustFixedCol[types.Decimal64](vec), foreign.Values[int32](data), skip,
				func(x int32) types.Decimal64 { return types.Decimal64(x) })
		default:
			err = moerr.NewUnsupportedBacking(c.ctx, ft.Backing.String(), ft.String())
		}
	default:
		err = moerr.NewUnsupportedType(c.ctx, ft.String())
	}
	if err != nil {
		vec.Free()
		return nil, err
	}
	return vec, nil
}

func castRows[F, H any](dst []H, src []F, skip func(int) bool, cast func(F) H) {
	for i := range dst {
		if skip(i) {
			continue
		}
		dst[i] = cast(src[i])
	}
}

// timestampCast scales a foreign timestamp to microseconds. Nanoseconds
// are truncated toward negative infinity.
func timestampCast(id foreign.TypeID) func(foreign.Timestamp) types.Timestamp {
	switch id {
	case foreign.TypeTimestampS:
		return func(ts foreign.Timestamp) types.Timestamp {
			return types.Timestamp(ts.Value * types.MicroSecsPerSec)
		}
	case foreign.TypeTimestampMS:
		return func(ts foreign.Timestamp) types.Timestamp {
			return types.Timestamp(ts.Value * 1000)
		}
	case foreign.TypeTimestampNS:
		return func(ts foreign.Timestamp) types.Timestamp {
			us := ts.Value / 1000
			if ts.Value%1000 < 0 {
				us--
			}
			return types.Timestamp(us)
		}
	}
	return func(ts foreign.Timestamp) types.Timestamp {
		return types.Timestamp(ts.Value)
	}
}

// copyStrings rewrites the string descriptors. Long strings keep their
// bytes in the foreign heap, which becomes area 0 of the vector, unless
// copies are forced.
func (c *converter) copyStrings(vec *vector.Vector, fv foreign.Vector, data []byte, skip func(int) bool) error {
	src := foreign.Values[foreign.String](data)
	dst := vector.MustFixedCol[types.Varlena](vec)
	heap := fv.Heap()
	long := false
	for i := range dst {
		if skip(i) {
			continue
		}
		s := &src[i]
		if s.IsInlined() {
			dst[i] = types.BuildVarlenaInline(s.Inlined())
			continue
		}
		off, n := s.Offset(), uint64(s.Len())
		if off > math.MaxUint32 || off+n > uint64(len(heap)) {
			return moerr.NewInternalError(c.ctx, "string of %d bytes at heap offset %d, heap has %d bytes",
				n, off, len(heap))
		}
		dst[i] = types.BuildVarlenaArea(s.Len(), s.Prefix(), 0, uint32(off))
		long = true
	}
	if !long {
		return nil
	}

	var area *buffer.Buffer
	if c.forceCopy {
		var err error
		if area, err = buffer.AllocNoClear(c.mp, len(heap)); err != nil {
			return err
		}
		copy(area.Bytes(), heap)
	} else {
		area = buffer.NewView(heap, fv.Retain())
	}
	vec.SetAreas([]*buffer.Buffer{area})
	return nil
}

// validity builds the host null bitmap of the first length rows. It is
// nil when none of them is null. Both sides keep one bit per row, set for
// a valid row, so the bytes are viewed or copied as they are.
func (c *converter) validity(fv foreign.Vector, length int, view bool) (*nulls.Nulls, error) {
	words := fv.Validity()
	if words == nil || length == 0 {
		return nil, nil
	}
	nb := bitmap.Nbytes(length)
	bs := foreign.ValidityBytes(words)
	if len(bs) < nb {
		return nil, moerr.NewInternalError(c.ctx, "validity of %d bytes for %d rows", len(bs), length)
	}
	bs = bs[:nb]
	if bitmap.All(bs, length) {
		return nil, nil
	}

	var buf *buffer.Buffer
	if view {
		buf = buffer.NewView(bs, fv.Retain())
	} else {
		var err error
		if buf, err = buffer.AllocNoClear(c.mp, nb); err != nil {
			return nil, err
		}
		copy(buf.Bytes(), bs)
	}
	nsp, err := nulls.NewWithBuffer(buf, length)
	if err != nil {
		buf.Release()
		return nil, err
	}
	return nsp, nil
}
