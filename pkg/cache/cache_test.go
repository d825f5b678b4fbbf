package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatal(err)
	}

	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != "value" {
		t.Errorf("got %q, want %q", data, "value")
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected cache miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	_, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expired entry must be a miss")
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatal(err)
	}

	_, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("zero TTL entry must not expire")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("deleted entry must be a miss")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "absent"); err != nil {
		t.Errorf("delete of missing key: %v", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, ok, _ := c.Get(ctx, key); ok {
			t.Errorf("key %q survived clear", key)
		}
	}
}

func TestNullCacheAlwaysMisses(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("null cache must never hit")
	}
}

func TestKeyerDistinctStages(t *testing.T) {
	k := NewDefaultKeyer()

	graphKey := k.GraphKey("abc", GraphKeyOpts{ExcludeSelf: true})
	metricsKey := k.MetricsKey("abc", MetricsKeyOpts{Damping: 0.85})
	layoutKey := k.LayoutKey("abc", LayoutKeyOpts{Seed: 42})

	if graphKey == metricsKey || graphKey == layoutKey || metricsKey == layoutKey {
		t.Error("stage keys must not collide for the same input hash")
	}
}

func TestKeyerSensitiveToOptions(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.GraphKey("abc", GraphKeyOpts{ExcludeSelf: true, FilterValid: true})
	b := k.GraphKey("abc", GraphKeyOpts{ExcludeSelf: false, FilterValid: true})
	if a == b {
		t.Error("graph key must change when options change")
	}

	c := k.LayoutKey("abc", LayoutKeyOpts{Seed: 42, Iterations: 100})
	d := k.LayoutKey("abc", LayoutKeyOpts{Seed: 7, Iterations: 100})
	if c == d {
		t.Error("layout key must change when the seed changes")
	}
}

func TestKeyerDeterministic(t *testing.T) {
	k := NewDefaultKeyer()
	opts := MetricsKeyOpts{Damping: 0.85, Tolerance: 1e-6, MaxIterations: 100}

	if k.MetricsKey("abc", opts) != k.MetricsKey("abc", opts) {
		t.Error("same inputs must produce the same key")
	}
}

func TestHashStable(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	if a != b {
		t.Error("hash must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
	if a == Hash([]byte("world")) {
		t.Error("different inputs must produce different hashes")
	}
}
