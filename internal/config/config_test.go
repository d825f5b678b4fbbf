package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pepgraph/pepgraph/pkg/cache"
	"github.com/pepgraph/pepgraph/pkg/errors"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Cache.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
	if !cfg.Graph.ExcludeSelf || !cfg.Graph.FilterValid {
		t.Error("graph defaults must exclude self-citations and filter invalid targets")
	}
	if cfg.PageRank.Damping != 0.85 {
		t.Errorf("damping = %v, want 0.85", cfg.PageRank.Damping)
	}
	if cfg.Layout.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Layout.Seed)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[cache]
backend = "none"

[pagerank]
damping = 0.9

[layout]
seed = 7

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Cache.Backend != BackendNone {
		t.Errorf("backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.PageRank.Damping != 0.9 {
		t.Errorf("damping = %v, want 0.9", cfg.PageRank.Damping)
	}
	if cfg.Layout.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Layout.Seed)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want :9090", cfg.Server.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.PageRank.MaxIterations != 100 {
		t.Errorf("max_iterations = %d, want default 100", cfg.PageRank.MaxIterations)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache\nbroken"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Layout.Seed = 99
	cfg.PageRank.Damping = 0.5

	opts := cfg.PipelineOptions()
	if opts.Seed != 99 || opts.Damping != 0.5 {
		t.Errorf("options not mapped: seed=%d damping=%v", opts.Seed, opts.Damping)
	}
	if !opts.ExcludeSelf || !opts.FilterValid {
		t.Error("graph options not mapped")
	}
}

func TestOpenCache(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = BackendNone

	c, err := cfg.OpenCache(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("cache = %T, want *cache.NullCache", c)
	}

	cfg.Cache.Backend = BackendFile
	cfg.Cache.Dir = t.TempDir()
	fc, err := cfg.OpenCache(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()
	if _, ok := fc.(*cache.FileCache); !ok {
		t.Errorf("cache = %T, want *cache.FileCache", fc)
	}

	cfg.Cache.Backend = "bogus"
	if _, err := cfg.OpenCache(context.Background()); err == nil {
		t.Error("unknown backend must error")
	}
}
