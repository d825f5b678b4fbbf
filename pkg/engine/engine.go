// Package engine holds the latest pipeline result behind an explicit,
// mutex-guarded handle. Callers construct an Engine, refresh it with a
// document set, and read consistent snapshots; there is no hidden global
// state and no implicit recomputation.
package engine

import (
	"context"
	"sync"

	"github.com/pepgraph/pepgraph/pkg/errors"
	"github.com/pepgraph/pepgraph/pkg/pep"
	"github.com/pepgraph/pepgraph/pkg/pipeline"
)

// Engine owns a pipeline runner and the most recent result.
// All methods are safe for concurrent use.
type Engine struct {
	runner *pipeline.Runner
	opts   pipeline.Options

	mu      sync.RWMutex
	current *pipeline.Result
}

// New creates an engine. The options are fixed at construction so every
// refresh produces comparable snapshots.
func New(runner *pipeline.Runner, opts pipeline.Options) *Engine {
	return &Engine{
		runner: runner,
		opts:   opts,
	}
}

// Refresh runs the pipeline over docs and installs the result as the current
// snapshot. On error the previous snapshot is kept.
func (e *Engine) Refresh(ctx context.Context, docs []pep.Document) (*pipeline.Result, error) {
	result, err := e.runner.Execute(ctx, docs, e.opts)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.current = result
	e.mu.Unlock()

	return result, nil
}

// ForceRefresh runs the pipeline bypassing all caches.
func (e *Engine) ForceRefresh(ctx context.Context, docs []pep.Document) (*pipeline.Result, error) {
	opts := e.opts
	opts.Refresh = true

	result, err := e.runner.Execute(ctx, docs, opts)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.current = result
	e.mu.Unlock()

	return result, nil
}

// Snapshot returns the current result. It errors until the first successful
// Refresh.
func (e *Engine) Snapshot() (*pipeline.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.current == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no snapshot available, refresh first")
	}
	return e.current, nil
}

// Invalidate discards the current snapshot. The next Snapshot call fails
// until a Refresh installs a new one.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.current = nil
	e.mu.Unlock()
}

// Ready reports whether a snapshot is available.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current != nil
}

// Close releases the underlying runner's resources.
func (e *Engine) Close() error {
	return e.runner.Close()
}
