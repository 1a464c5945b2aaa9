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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
)

func run(t *testing.T, args ...string) (string, error) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTables(t *testing.T) {
	out, err := run(t, "--orders", "7", "tables")
	require.NoError(t, err)
	require.Contains(t, out, "nation")
	require.Contains(t, out, "r_regionkey INTEGER, r_name VARCHAR")
	require.Contains(t, out, "o_totalprice DECIMAL(15,2)")
}

func TestQueryPrint(t *testing.T) {
	out, err := run(t, "query", "select * from region;")
	require.NoError(t, err)
	require.Contains(t, out, "r_regionkey")
	require.Contains(t, out, "MIDDLE EAST")
	require.Contains(t, out, "(5 rows)")
}

func TestQueryFailure(t *testing.T) {
	_, err := run(t, "query", "select * from lineitem")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrQueryFailed), "%v", err)

	_, err = run(t, "query")
	require.Error(t, err)
}

func TestQueryArrow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.arrow")
	out, err := run(t, "--orders", "100", "query", "--arrow", path, "select * from orders")
	require.NoError(t, err)
	require.Contains(t, out, "wrote 100 rows")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	rd, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	require.NoError(t, err)
	defer rd.Close()
	require.Equal(t, 9, rd.Schema().NumFields())
	require.Equal(t, "o_orderstatus", rd.Schema().Field(2).Name)
	rec, err := rd.Record(0)
	require.NoError(t, err)
	require.Equal(t, int64(100), rec.NumRows())
}

func TestBench(t *testing.T) {
	out, err := run(t, "--orders", "50", "bench", "--parallel", "2", "--repeat", "2")
	require.NoError(t, err)
	require.Contains(t, out, "SELECT * FROM orders")
	// 2 x (5 regions + 25 nations + 50 orders)
	require.Contains(t, out, "160 rows in")

	_, err = run(t, "bench", "--parallel", "0")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput), "%v", err)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte("[pool]\ncapacity = 0\nmetrics = true\n[bridge]\nforce-copy = true\n"), 0o644))
	out, err := run(t, "--config", good, "query", "select * from nation")
	require.NoError(t, err)
	require.Contains(t, out, "(25 rows)")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[pool]\ncapacity = -1\n"), 0o644))
	_, err = run(t, "--config", bad, "tables")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig), "%v", err)
}
