package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pepgraph/pepgraph/pkg/cache"
	"github.com/pepgraph/pepgraph/pkg/citation"
	"github.com/pepgraph/pepgraph/pkg/graph"
	"github.com/pepgraph/pepgraph/pkg/layout"
	"github.com/pepgraph/pepgraph/pkg/metrics"
	"github.com/pepgraph/pepgraph/pkg/observability"
	"github.com/pepgraph/pepgraph/pkg/pep"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → extract → graph → metrics/layout pipeline
// with caching. Metrics and layout are independent functions of the graph and
// run concurrently.
func (r *Runner) Execute(ctx context.Context, docs []pep.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		SnapshotID: uuid.NewString(),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, len(docs))
	batch := pep.ParseDocuments(docs, opts.Logger)
	result.Records = batch.Records
	result.Stats.DocCount = len(docs)
	result.Stats.ParseFailed = batch.Failed
	result.Stats.ParseTime = time.Since(parseStart)
	observability.Pipeline().OnParseComplete(ctx, len(batch.Records), batch.Failed, result.Stats.ParseTime)

	r.Logger.Info("parsed documents",
		"parsed", len(batch.Records),
		"failed", batch.Failed,
		"duration", result.Stats.ParseTime)

	// Stage 2+3: Extract and build graph
	graphStart := time.Now()
	g, rows, graphHit, err := r.BuildGraphWithCacheInfo(ctx, docs, batch.Records, opts)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	result.Rows = rows
	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.GraphTime = time.Since(graphStart)
	result.CacheInfo.GraphHit = graphHit

	// Graph hash keys the derived stages and identifies the snapshot content.
	if graphData, err := graph.Marshal(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("built citation graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.GraphTime)

	// Stage 4: Metrics and layout, concurrently.
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		start := time.Now()
		m, hit := r.ComputeMetricsWithCacheInfo(ctx, g, result.GraphHash, opts)
		result.Metrics = m
		result.Stats.MetricsTime = time.Since(start)
		result.CacheInfo.MetricsHit = hit
	}()

	go func() {
		defer wg.Done()
		start := time.Now()
		p, hit := r.ComputeLayoutWithCacheInfo(ctx, g, result.GraphHash, opts)
		result.Positions = p
		result.Stats.LayoutTime = time.Since(start)
		result.CacheInfo.LayoutHit = hit
	}()

	wg.Wait()

	r.Logger.Info("computed metrics and layout",
		"metrics_duration", result.Stats.MetricsTime,
		"layout_duration", result.Stats.LayoutTime)

	return result, nil
}

// BuildGraphWithCacheInfo extracts citations and builds the graph, consulting
// the cache first. Citation rows are always recomputed (extraction is pure
// and local); only the assembled graph is cached, keyed by the content hash
// of the documents plus the graph options.
func (r *Runner) BuildGraphWithCacheInfo(ctx context.Context, docs []pep.Document, records []pep.Record, opts Options) (*graph.Directed, []citation.Row, bool, error) {
	r.applyLogger(&opts)

	observability.Pipeline().OnStageStart(ctx, "graph", len(docs))
	start := time.Now()

	rows := citation.ExtractAll(docs, opts.ExcludeSelf, opts.Logger)

	cacheKey := r.Keyer.GraphKey(hashDocuments(docs), opts.GraphKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "graph")
			if g, err := graph.Unmarshal(data); err == nil {
				observability.Pipeline().OnStageComplete(ctx, "graph", time.Since(start), nil)
				return g, rows, true, nil
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "graph")
		}
	}

	buildOpts := graph.BuildOptions{
		Provenance: graph.Provenance{
			FetchedAt: time.Now().UTC().Format(time.RFC3339),
			SourceURL: opts.SourceURL,
		},
	}
	if opts.FilterValid {
		buildOpts.ValidNumbers = pep.NumberSet(records)
	}

	g, err := graph.Build(rows, buildOpts)
	if err != nil {
		observability.Pipeline().OnStageComplete(ctx, "graph", time.Since(start), err)
		return nil, nil, false, err
	}

	if data, err := graph.Marshal(g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}

	observability.Pipeline().OnStageComplete(ctx, "graph", time.Since(start), nil)
	return g, rows, false, nil
}

// ComputeMetricsWithCacheInfo computes node metrics with caching.
// Cache failures fall through to recomputation; metrics are pure functions of
// the graph, so a miss is never an error.
func (r *Runner) ComputeMetricsWithCacheInfo(ctx context.Context, g *graph.Directed, graphHash string, opts Options) (map[int]metrics.NodeMetrics, bool) {
	observability.Pipeline().OnStageStart(ctx, "metrics", g.NodeCount())
	start := time.Now()

	cacheKey := r.Keyer.MetricsKey(graphHash, opts.MetricsKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached map[int]metrics.NodeMetrics
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "metrics")
				observability.Pipeline().OnStageComplete(ctx, "metrics", time.Since(start), nil)
				return cached, true
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "metrics")
		}
	}

	m := metrics.Compute(g, opts.MetricsOptions())

	if data, err := json.Marshal(m); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLMetrics)
		observability.Cache().OnCacheSet(ctx, "metrics", len(data))
	}

	observability.Pipeline().OnStageComplete(ctx, "metrics", time.Since(start), nil)
	return m, false
}

// ComputeLayoutWithCacheInfo computes node positions with caching.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *graph.Directed, graphHash string, opts Options) (map[int]layout.Position, bool) {
	observability.Pipeline().OnStageStart(ctx, "layout", g.NodeCount())
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached map[int]layout.Position
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				observability.Pipeline().OnStageComplete(ctx, "layout", time.Since(start), nil)
				return cached, true
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "layout")
		}
	}

	p := layout.Compute(g, opts.LayoutOptions())

	if data, err := json.Marshal(p); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	observability.Pipeline().OnStageComplete(ctx, "layout", time.Since(start), nil)
	return p, false
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashDocuments computes a content hash over document names and texts in
// input order.
func hashDocuments(docs []pep.Document) string {
	data, _ := json.Marshal(docs)
	return cache.Hash(data)
}
