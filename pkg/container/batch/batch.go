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

package batch

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/duckbridge/pkg/container/types"
	"github.com/matrixorigin/duckbridge/pkg/container/vector"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// Batch represents a part of a relationship: one vector per attribute and
// a row count shared by all of them. There is no batch level null mask.
type Batch struct {
	// Attrs column name list
	Attrs []string
	// Vecs col data
	Vecs []*vector.Vector

	rowCount int
}

func New(attrs []string) *Batch {
	return &Batch{
		Attrs: attrs,
		Vecs:  make([]*vector.Vector, len(attrs)),
	}
}

// NewWithSchema creates an empty batch for the columns of rt.
func NewWithSchema(rt types.RowType) *Batch {
	return New(rt.Names())
}

func (bat *Batch) RowCount() int {
	return bat.rowCount
}

func (bat *Batch) SetRowCount(rowCount int) {
	bat.rowCount = rowCount
}

func (bat *Batch) VectorCount() int {
	return len(bat.Vecs)
}

func (bat *Batch) SetVector(pos int32, vec *vector.Vector) {
	bat.Vecs[pos] = vec
}

func (bat *Batch) GetVector(pos int32) *vector.Vector {
	return bat.Vecs[pos]
}

// Schema returns the row type formed by the attributes and vector types.
func (bat *Batch) Schema() types.RowType {
	typs := make([]types.Type, len(bat.Vecs))
	for i, vec := range bat.Vecs {
		typs[i] = *vec.GetType()
	}
	rt, _ := types.NewRowType(bat.Attrs, typs)
	return rt
}

// Row renders row i, one string per column.
func (bat *Batch) Row(i int) []string {
	row := make([]string, len(bat.Vecs))
	for j, vec := range bat.Vecs {
		row[j] = vec.Format(i)
	}
	return row
}

// Clean frees every vector. Vectors retained elsewhere stay valid.
func (bat *Batch) Clean() {
	for i, vec := range bat.Vecs {
		if vec != nil {
			vec.Free()
			bat.Vecs[i] = nil
		}
	}
	bat.rowCount = 0
}

func (bat *Batch) IsEmpty() bool {
	return bat.rowCount == 0
}

func (bat *Batch) String() string {
	var buf bytes.Buffer

	for i, vec := range bat.Vecs {
		buf.WriteString(fmt.Sprintf("%d : %s\n", i, vec.String()))
	}
	return buf.String()
}

func (bat *Batch) Log(tag string) {
	if bat == nil || bat.rowCount < 1 {
		return
	}
	logutil.Infof("\n" + tag + "\n" + bat.String())
}
