// Package config loads the application's TOML configuration.
//
// Every value has a working default, so running without a config file is
// fully supported. CLI flags override file values; the precedence is
// flags > file > defaults.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pepgraph/pepgraph/pkg/cache"
	"github.com/pepgraph/pepgraph/pkg/errors"
	"github.com/pepgraph/pepgraph/pkg/layout"
	"github.com/pepgraph/pepgraph/pkg/metrics"
	"github.com/pepgraph/pepgraph/pkg/pipeline"
)

// Cache backend names accepted in the [cache] section.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full application configuration.
type Config struct {
	Cache    CacheConfig    `toml:"cache"`
	Graph    GraphConfig    `toml:"graph"`
	PageRank PageRankConfig `toml:"pagerank"`
	Layout   LayoutConfig   `toml:"layout"`
	Server   ServerConfig   `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// GraphConfig controls citation graph construction.
type GraphConfig struct {
	ExcludeSelf bool   `toml:"exclude_self"`
	FilterValid bool   `toml:"filter_valid"`
	SourceURL   string `toml:"source_url"`
}

// PageRankConfig controls the PageRank computation.
type PageRankConfig struct {
	Damping       float64 `toml:"damping"`
	Tolerance     float64 `toml:"tolerance"`
	MaxIterations int     `toml:"max_iterations"`
}

// LayoutConfig controls the layout computation.
type LayoutConfig struct {
	Seed       int64   `toml:"seed"`
	Iterations int     `toml:"iterations"`
	Spread     float64 `toml:"spread"`
	Repulsion  float64 `toml:"repulsion"`
	Columns    int     `toml:"columns"`
	Margin     float64 `toml:"margin"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	md := metrics.DefaultOptions()
	ld := layout.DefaultOptions()
	return Config{
		Cache: CacheConfig{
			Backend:   BackendFile,
			Dir:       defaultCacheDir(),
			RedisAddr: "localhost:6379",
		},
		Graph: GraphConfig{
			ExcludeSelf: true,
			FilterValid: true,
		},
		PageRank: PageRankConfig{
			Damping:       md.Damping,
			Tolerance:     md.Tolerance,
			MaxIterations: md.MaxIterations,
		},
		Layout: LayoutConfig{
			Seed:       ld.Seed,
			Iterations: ld.Iterations,
			Spread:     ld.Spread,
			Repulsion:  ld.Repulsion,
			Columns:    ld.Columns,
			Margin:     ld.Margin,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a TOML config file on top of the defaults. An empty path returns
// the defaults; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config: %s", path)
	}
	return cfg, nil
}

// PipelineOptions converts the config to pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		ExcludeSelf:   c.Graph.ExcludeSelf,
		FilterValid:   c.Graph.FilterValid,
		SourceURL:     c.Graph.SourceURL,
		Damping:       c.PageRank.Damping,
		Tolerance:     c.PageRank.Tolerance,
		MaxIterations: c.PageRank.MaxIterations,
		Seed:          c.Layout.Seed,
		Iterations:    c.Layout.Iterations,
		Spread:        c.Layout.Spread,
		Repulsion:     c.Layout.Repulsion,
		Columns:       c.Layout.Columns,
		Margin:        c.Layout.Margin,
	}
}

// OpenCache constructs the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendFile, "":
		return cache.NewFileCache(c.Cache.Dir)
	case BackendRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisAddr)
	case BackendNone:
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend: %s", c.Cache.Backend)
	}
}

// defaultCacheDir places the cache under the user cache directory, falling
// back to a dotdir in the working directory when it cannot be determined.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "pepgraph")
	}
	return ".pepgraph-cache"
}
