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

package arrowconv

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/container/batch"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// FileWriter writes the batches of one result to an Arrow IPC file.
// Dictionaries are decoded so all records share the schema of the first.
type FileWriter struct {
	w    io.Writer
	mem  memory.Allocator
	fw   *ipc.FileWriter
	rows int64
}

func NewFileWriter(w io.Writer, mem memory.Allocator) *FileWriter {
	return &FileWriter{w: w, mem: mem}
}

func (w *FileWriter) Write(bat *batch.Batch) error {
	rec, err := BatchToRecord(w.mem, bat, WithFlatten())
	if err != nil {
		return err
	}
	defer rec.Release()

	if w.fw == nil {
		w.fw, err = ipc.NewFileWriter(w.w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(w.mem))
		if err != nil {
			return moerr.ConvertGoError(moerr.Context(), err)
		}
	}
	if err = w.fw.Write(rec); err != nil {
		return moerr.ConvertGoError(moerr.Context(), err)
	}
	w.rows += rec.NumRows()
	return nil
}

// Rows is the number of rows written so far.
func (w *FileWriter) Rows() int64 {
	return w.rows
}

// Close writes the file footer. A writer that saw no batch writes nothing.
func (w *FileWriter) Close() error {
	if w.fw == nil {
		return nil
	}
	err := w.fw.Close()
	w.fw = nil
	if err != nil {
		return moerr.ConvertGoError(moerr.Context(), err)
	}
	logutil.Debug("arrow file written", zap.Int64("rows", w.rows))
	return nil
}
