// Package pipeline provides the core citation analysis pipeline.
//
// This package implements the complete parse → extract → graph → metrics →
// layout pipeline that can be used by CLI, API, and worker components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Extract structured records from document headers
//  2. Extract: Find citations in document bodies and header fields
//  3. Graph: Build the directed citation graph
//  4. Derive: Compute node metrics and layout positions (run concurrently)
//
// The graph, metrics, and layout stages are cached by content hash, so a
// re-run over unchanged documents is nearly free.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{ExcludeSelf: true, FilterValid: true}
//	result, err := runner.Execute(ctx, docs, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Graph.NodeCount())
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pepgraph/pepgraph/pkg/cache"
	"github.com/pepgraph/pepgraph/pkg/citation"
	"github.com/pepgraph/pepgraph/pkg/errors"
	"github.com/pepgraph/pepgraph/pkg/graph"
	"github.com/pepgraph/pepgraph/pkg/layout"
	"github.com/pepgraph/pepgraph/pkg/metrics"
	"github.com/pepgraph/pepgraph/pkg/pep"
)

// Options contains all configuration for the citation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Graph options
	ExcludeSelf bool   `json:"exclude_self,omitempty"`
	FilterValid bool   `json:"filter_valid,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// PageRank options
	Damping       float64 `json:"damping,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`

	// Layout options
	Seed       int64   `json:"seed,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	Spread     float64 `json:"spread,omitempty"`
	Repulsion  float64 `json:"repulsion,omitempty"`
	Columns    int     `json:"columns,omitempty"`
	Margin     float64 `json:"margin,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// SnapshotID uniquely identifies this pipeline run.
	SnapshotID string

	// Records are the successfully parsed documents, sorted by number.
	Records []pep.Record

	// Rows are the aggregated citation counts.
	Rows []citation.Row

	// Graph is the citation graph.
	Graph *graph.Directed

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Metrics holds per-node degree and PageRank values.
	Metrics map[int]metrics.NodeMetrics

	// Positions holds per-node layout coordinates.
	Positions map[int]layout.Position

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DocCount    int
	ParseFailed int
	NodeCount   int
	EdgeCount   int
	ParseTime   time.Duration
	GraphTime   time.Duration
	MetricsTime time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks cache hits for each cached pipeline stage.
type CacheInfo struct {
	GraphHit   bool // Whether the graph came from cache
	MetricsHit bool // Whether metrics came from cache
	LayoutHit  bool // Whether positions came from cache
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	md := metrics.DefaultOptions()
	if o.Damping == 0 {
		o.Damping = md.Damping
	}
	if o.Damping <= 0 || o.Damping >= 1 {
		return errors.New(errors.ErrCodeInvalidInput, "damping must be in (0, 1)")
	}
	if o.Tolerance == 0 {
		o.Tolerance = md.Tolerance
	}
	if o.Tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tolerance must be non-negative")
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = md.MaxIterations
	}
	if o.MaxIterations < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "max_iterations must be positive")
	}

	ld := layout.DefaultOptions()
	if o.Seed == 0 {
		o.Seed = ld.Seed
	}
	if o.Iterations == 0 {
		o.Iterations = ld.Iterations
	}
	if o.Iterations < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "iterations must be positive")
	}
	if o.Spread == 0 {
		o.Spread = ld.Spread
	}
	if o.Spread <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spread must be positive")
	}
	if o.Repulsion == 0 {
		o.Repulsion = ld.Repulsion
	}
	if o.Columns == 0 {
		o.Columns = ld.Columns
	}
	if o.Columns < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "columns must be positive")
	}
	if o.Margin == 0 {
		o.Margin = ld.Margin
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// MetricsOptions returns the metric computation options.
func (o *Options) MetricsOptions() metrics.Options {
	return metrics.Options{
		Damping:       o.Damping,
		Tolerance:     o.Tolerance,
		MaxIterations: o.MaxIterations,
	}
}

// LayoutOptions returns the layout computation options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Seed:       o.Seed,
		Iterations: o.Iterations,
		Spread:     o.Spread,
		Repulsion:  o.Repulsion,
		Columns:    o.Columns,
		Margin:     o.Margin,
	}
}

// GraphKeyOpts returns cache key options for graph construction.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		ExcludeSelf: o.ExcludeSelf,
		FilterValid: o.FilterValid,
	}
}

// MetricsKeyOpts returns cache key options for metric computation.
func (o *Options) MetricsKeyOpts() cache.MetricsKeyOpts {
	return cache.MetricsKeyOpts{
		Damping:       o.Damping,
		Tolerance:     o.Tolerance,
		MaxIterations: o.MaxIterations,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:       o.Seed,
		Iterations: o.Iterations,
		Spread:     o.Spread,
		Repulsion:  o.Repulsion,
		Columns:    o.Columns,
		Margin:     o.Margin,
	}
}
