// Package cache provides content-addressed caching for pipeline stages.
//
// Each pipeline stage (graph build, metrics, layout) is cached independently
// under a key derived from the content hash of its input plus the options
// that influence the result. Backends: a file cache for CLI usage, a Redis
// cache for long-running servers, and a null cache to disable caching.
package cache

import (
	"context"
	"time"
)

// Default TTLs per stage. Graph results expire so a stale snapshot is
// eventually refetched; derived results are pure functions of the graph and
// can live longer.
const (
	TTLGraph   = 24 * time.Hour
	TTLMetrics = 7 * 24 * time.Hour
	TTLLayout  = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts are the options that influence graph construction.
type GraphKeyOpts struct {
	ExcludeSelf bool
	FilterValid bool
}

// MetricsKeyOpts are the options that influence metric computation.
type MetricsKeyOpts struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
}

// LayoutKeyOpts are the options that influence layout computation.
type LayoutKeyOpts struct {
	Seed       int64
	Iterations int
	Spread     float64
	Repulsion  float64
	Columns    int
	Margin     float64
}

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	GraphKey(docsHash string, opts GraphKeyOpts) string
	MetricsKey(graphHash string, opts MetricsKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes the input hash together with the stage options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// GraphKey generates a key for graph caching.
func (k *DefaultKeyer) GraphKey(docsHash string, opts GraphKeyOpts) string {
	return hashKey("graph", docsHash, opts)
}

// MetricsKey generates a key for metrics caching.
func (k *DefaultKeyer) MetricsKey(graphHash string, opts MetricsKeyOpts) string {
	return hashKey("metrics", graphHash, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
