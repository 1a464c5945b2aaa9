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

package config

import (
	"context"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matrixorigin/duckbridge/pkg/common/malloc"
	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
	"github.com/matrixorigin/duckbridge/pkg/common/mpool"
	"github.com/matrixorigin/duckbridge/pkg/foreign"
	"github.com/matrixorigin/duckbridge/pkg/logutil"
)

type ConfigurationKeyType int

const (
	ParameterUnitKey ConfigurationKeyType = 1
)

const (
	defaultPoolName      = "duckbridge"
	defaultBatchRowsHint = 2048
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
	defaultLogMaxSize    = 512
)

// PoolConfig of the host memory pool
type PoolConfig struct {
	//default is 'duckbridge'. the tag of the pool, also the metrics label.
	Name string `toml:"name"`

	//default is 0. the maximum bytes allocated from the pool, 0 means no limit.
	Capacity int64 `toml:"capacity"`

	//default is false. if true, pool allocations are counted by prometheus metrics.
	Metrics bool `toml:"metrics"`
}

// BridgeConfig of the vector conversion
type BridgeConfig struct {
	//default is false. if true, foreign buffers are always copied instead of viewed.
	ForceCopy bool `toml:"force-copy"`

	//default is 2048. expected rows per chunk, advisory only.
	BatchRowsHint int `toml:"batch-rows-hint"`
}

type Config struct {
	Log    logutil.LogConfig `toml:"log"`
	Pool   PoolConfig        `toml:"pool"`
	Bridge BridgeConfig      `toml:"bridge"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.fill()
	return cfg
}

// Load decodes the toml file at path, fills in defaults and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, moerr.NewBadConfig(moerr.Context(), "%s: %v", path, err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) fill() {
	if cfg.Pool.Name == "" {
		cfg.Pool.Name = defaultPoolName
	}
	if cfg.Bridge.BatchRowsHint == 0 {
		cfg.Bridge.BatchRowsHint = defaultBatchRowsHint
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultLogFormat
	}
	if cfg.Log.MaxSize == 0 {
		cfg.Log.MaxSize = defaultLogMaxSize
	}
}

func (cfg *Config) Validate() error {
	if cfg.Pool.Capacity < 0 {
		return moerr.NewBadConfig(moerr.Context(), "pool capacity %d", cfg.Pool.Capacity)
	}
	if cfg.Bridge.BatchRowsHint < 0 {
		return moerr.NewBadConfig(moerr.Context(), "bridge batch-rows-hint %d", cfg.Bridge.BatchRowsHint)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return moerr.NewBadConfig(moerr.Context(), "log format %s", cfg.Log.Format)
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error", "panic", "fatal":
	default:
		return moerr.NewBadConfig(moerr.Context(), "log level %s", cfg.Log.Level)
	}
	return nil
}

// NewPool builds the host memory pool. With metrics enabled the pool's
// upstream allocator reports to reg.
func (c *PoolConfig) NewPool(reg prometheus.Registerer) (*mpool.MPool, error) {
	var upstream malloc.Allocator
	if c.Metrics {
		metrics, err := malloc.NewAllocatorMetrics(reg, c.Name)
		if err != nil {
			return nil, err
		}
		upstream = malloc.NewMetricsAllocator(mpool.DefaultAllocator(), metrics)
	}
	return mpool.NewMPool(c.Name, c.Capacity, upstream)
}

type ParameterUnit struct {
	SV *Config

	//host memory
	Pool *mpool.MPool

	//foreign engine
	Engine foreign.Engine
}

func NewParameterUnit(sv *Config, pool *mpool.MPool, engine foreign.Engine) *ParameterUnit {
	return &ParameterUnit{
		SV:     sv,
		Pool:   pool,
		Engine: engine,
	}
}

// GetParameterUnit gets the configuration from the context.
func GetParameterUnit(ctx context.Context) *ParameterUnit {
	pu, ok := ctx.Value(ParameterUnitKey).(*ParameterUnit)
	if !ok || pu == nil {
		panic("parameter unit is invalid")
	}
	return pu
}
