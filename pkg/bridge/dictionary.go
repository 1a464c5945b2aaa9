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
	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/buffer"
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/container/vector"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// convertDictionary converts a dictionary column into a host dictionary
// over a materialized base.
//
// The foreign side does not report the size of the base, so only the
// prefix up to the largest selected slot is materialized. Slots in that
// prefix may still be uninitialized. When the base has to be decoded row
// by row, a used-slot bitmap restricts decoding to the selected slots.
// Rows outside used, when given, select slot 0.
func (c *converter) convertDictionary(fv foreign.Vector, length int, used *roaring.Bitmap) (*vector.Vector, error) {
	if fv.Encoding() != foreign.Dictionary {
		return nil, moerr.NewUnsupportedEncoding(c.ctx, fv.Encoding().String())
	}
	child := fv.Child()
	if child == nil {
		return nil, moerr.NewInternalError(c.ctx, "dictionary vector without a child")
	}
	sel := fv.Selection()
	if len(sel) < length {
		return nil, moerr.NewInternalError(c.ctx, "dictionary of %d rows with %d selections", length, len(sel))
	}
	isUsed := func(i int) bool {
		return used == nil || used.Contains(uint32(i))
	}

	baseLength := 0
	for i := 0; i < length; i++ {
		if isUsed(i) && int(sel[i]) >= baseLength {
			baseLength = int(sel[i]) + 1
		}
	}
	if length > 0 && baseLength == 0 {
		baseLength = 1
	}

	mask, err := c.needsUsedMask(child)
	if err != nil {
		return nil, err
	}
	var childUsed *roaring.Bitmap
	if mask {
		childUsed = roaring.New()
		for i := 0; i < length; i++ {
			if isUsed(i) {
				childUsed.Add(sel[i])
			}
		}
	}
	logutil.Debug("convert foreign dictionary",
		zap.String("type", child.Type().String()),
		zap.Int("rows", length),
		zap.Int("base", baseLength),
		zap.Bool("masked", mask))

	base, err := c.convert(child, baseLength, childUsed)
	if err != nil {
		return nil, err
	}
	indices, err := buffer.AllocNoClear(c.mp, length*4)
	if err != nil {
		base.Free()
		return nil, err
	}
	idx := types.DecodeSlice[uint32](indices.Bytes())
	for i := range idx {
		if isUsed(i) {
			idx[i] = sel[i]
		} else {
			idx[i] = 0
		}
	}
	vec, err := vector.NewDict(base, length, indices)
	if err != nil {
		indices.Release()
		base.Free()
		return nil, err
	}
	return vec, nil
}

// needsUsedMask reports whether materializing child reads its rows one by
// one, which must not touch uninitialized slots.
func (c *converter) needsUsedMask(child foreign.Vector) (bool, error) {
	if child.Encoding() == foreign.Dictionary {
		return true, nil
	}
	m, err := lookup(c.ctx, child.Type())
	if err != nil {
		return false, err
	}
	return !m.zeroCopy, nil
}
