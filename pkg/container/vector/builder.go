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
	"github.com/matrixorigin/duckbridge/pkg/common/buffer"
	"github.com/matrixorigin/duckbridge/pkg/common/malloc"
	"github.com/matrixorigin/duckbridge/pkg/container/nulls"
	"github.com/matrixorigin/duckbridge/pkg/container/types"
)

// FromSlice copies vals into a new flat vector; nullRows are marked null.
func FromSlice[T types.FixedSizeT](alloc malloc.Allocator, typ types.Type, vals []T, nullRows ...uint64) (*Vector, error) {
	v, err := AllocFlat(alloc, typ, len(vals))
	if err != nil {
		return nil, err
	}
	copy(MustFixedCol[T](v), vals)
	if len(nullRows) > 0 {
		if v.nsp, err = nulls.Build(alloc, len(vals), nullRows...); err != nil {
			v.Free()
			return nil, err
		}
	}
	return v, nil
}

// FromStrings builds a varchar vector; long strings share one area.
func FromStrings(alloc malloc.Allocator, vals []string, nullRows ...uint64) (*Vector, error) {
	v, err := AllocFlat(alloc, types.T_varchar.ToType(), len(vals))
	if err != nil {
		return nil, err
	}
	areaLen := 0
	for _, s := range vals {
		if len(s) > types.VarlenaInlineSize {
			areaLen += len(s)
		}
	}
	var area *buffer.Buffer
	if areaLen > 0 {
		if area, err = buffer.AllocNoClear(alloc, areaLen); err != nil {
			v.Free()
			return nil, err
		}
		v.SetAreas([]*buffer.Buffer{area})
	}
	col := MustFixedCol[types.Varlena](v)
	off := 0
	for i, s := range vals {
		if len(s) <= types.VarlenaInlineSize {
			col[i] = types.BuildVarlenaInline([]byte(s))
			continue
		}
		copy(area.Bytes()[off:], s)
		col[i] = types.BuildVarlenaArea(uint32(len(s)), []byte(s[:types.VarlenaPrefixSize]), 0, uint32(off))
		off += len(s)
	}
	if len(nullRows) > 0 {
		if v.nsp, err = nulls.Build(alloc, len(vals), nullRows...); err != nil {
			v.Free()
			return nil, err
		}
	}
	return v, nil
}
