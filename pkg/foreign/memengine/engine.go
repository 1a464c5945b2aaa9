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

// Package memengine is an in-process columnar engine producing chunks in
// DuckDB's memory layout. It serves registered query texts and
// "SELECT * FROM <table>" over an ordered catalog.
package memengine

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

// ChunkRows is the maximum number of rows of a chunk produced by a scan.
var ChunkRows = 2048

type engineStats struct {
	arenasAllocated atomic.Int64
	arenasReused    atomic.Int64
	arenasLive      atomic.Int64
	retains         atomic.Int64
	releases        atomic.Int64
	queries         atomic.Int64
}

// Stats is a snapshot of the engine's memory accounting.
type Stats struct {
	ArenasAllocated int64
	ArenasReused    int64
	// ArenasLive counts arenas held by a chunk or a retained vector.
	ArenasLive int64
	Retains    int64
	Releases   int64
	Queries    int64
}

type Engine struct {
	mu      sync.Mutex
	catalog *btree.BTreeG[*Table]
	queries map[string]*Canned
	free    []*arena

	stats engineStats
}

var _ foreign.Engine = new(Engine)

func New() *Engine {
	return &Engine{
		catalog: btree.NewG(8, func(a, b *Table) bool {
			return a.Name < b.Name
		}),
		queries: make(map[string]*Canned),
	}
}

func (e *Engine) Stats() Stats {
	return Stats{
		ArenasAllocated: e.stats.arenasAllocated.Load(),
		ArenasReused:    e.stats.arenasReused.Load(),
		ArenasLive:      e.stats.arenasLive.Load(),
		Retains:         e.stats.retains.Load(),
		Releases:        e.stats.releases.Load(),
		Queries:         e.stats.queries.Load(),
	}
}

func (e *Engine) getArena() *arena {
	e.mu.Lock()
	var a *arena
	if n := len(e.free); n > 0 {
		a = e.free[n-1]
		e.free = e.free[:n-1]
	}
	e.mu.Unlock()

	if a == nil {
		a = &arena{engine: e}
		e.stats.arenasAllocated.Add(1)
	} else {
		e.stats.arenasReused.Add(1)
	}
	a.refs.Store(1)
	e.stats.arenasLive.Add(1)
	return a
}

func (e *Engine) putArena(a *arena) {
	e.stats.arenasLive.Add(-1)
	e.mu.Lock()
	e.free = append(e.free, a)
	e.mu.Unlock()
}

// CreateTable adds t to the catalog.
func (e *Engine) CreateTable(t *Table) error {
	if err := t.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.catalog.Get(&Table{Name: t.Name}); ok {
		return moerr.NewInvalidInputNoCtx("table %s already exists", t.Name)
	}
	e.catalog.ReplaceOrInsert(t)
	return nil
}

func (e *Engine) Table(name string) (*Table, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Get(&Table{Name: strings.ToLower(name)})
}

// Tables lists the catalog in name order.
func (e *Engine) Tables() []*Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	tables := make([]*Table, 0, e.catalog.Len())
	e.catalog.Ascend(func(t *Table) bool {
		tables = append(tables, t)
		return true
	})
	return tables
}

// Register makes sql return res. Query texts are matched after trimming
// white space and a trailing semicolon.
func (e *Engine) Register(sql string, res *Canned) error {
	if err := res.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries[normalizeSQL(sql)] = res
	return nil
}

// RegisterError makes sql fail with msg.
func (e *Engine) RegisterError(sql string, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries[normalizeSQL(sql)] = &Canned{err: msg}
}

func normalizeSQL(sql string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
}

var selectStar = regexp.MustCompile(`(?i)^select\s+\*\s+from\s+([a-z_][a-z0-9_]*)$`)

func (e *Engine) Connect(_ context.Context) (foreign.Conn, error) {
	return &conn{engine: e}, nil
}

type conn struct {
	engine *Engine
	closed bool
}

func (c *conn) Query(ctx context.Context, sql string) foreign.Result {
	e := c.engine
	e.stats.queries.Add(1)
	if c.closed {
		return failed("Connection Error: connection closed")
	}
	text := normalizeSQL(sql)

	e.mu.Lock()
	canned, ok := e.queries[text]
	e.mu.Unlock()
	if ok {
		if canned.err != "" {
			return failed(canned.err)
		}
		return newCannedResult(e, canned)
	}

	m := selectStar.FindStringSubmatch(text)
	if m == nil {
		logutil.Debug("memengine cannot parse query", zap.String("sql", sql))
		return failed("Parser Error: syntax error at or near \"" + firstWord(text) + "\"")
	}
	t, ok := e.Table(m[1])
	if !ok {
		return failed("Catalog Error: Table with name " + m[1] + " does not exist!")
	}
	return newScanResult(e, t)
}

func (c *conn) Close() error {
	c.closed = true
	return nil
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
