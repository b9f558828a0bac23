package cache

import (
	"context"
	"time"

	"github.com/stripedcache/stripedcache/policy"
)

// EvictReason explains why an entry was removed by the cache (as opposed to
// an explicit Remove by the caller).
type EvictReason int

const (
	// EvictCapacity: removed to keep the entry count within MaxCapacity.
	EvictCapacity EvictReason = iota
	// EvictSize: removed to keep the total weight within MaxBytes.
	EvictSize
	// EvictExpired: removed because its TTL elapsed (lazy on access, or
	// during a sweep).
	EvictExpired
)

// String returns a stable label for the reason ("capacity", "size",
// "expired"); metric adapters use it directly.
func (r EvictReason) String() string {
	switch r {
	case EvictSize:
		return "size"
	case EvictExpired:
		return "expired"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks. A NoopMetrics
// implementation is provided and used by default; metrics/prom exports the
// same signals to Prometheus.
type Metrics interface {
	Hit()
	Miss()
	Insert()
	Evict(reason EvictReason)
	Size(entries int, bytes int64)
}

// Clock provides time in UnixNano; inject a fake for deterministic TTL tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache. Zero values are safe; defaults are applied in
// New:
//   - nil Policy   => LRU
//   - Shards == 0  => auto (≈2*GOMAXPROCS, rounded to a power of two)
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => time.Now
//
// Most callers should go through the Builder, which validates the fields it
// sets and reads more naturally.
type Options[K comparable, V any] struct {
	// Capacity is the global entry-count ceiling. Zero means unbounded.
	// The budget is distributed exactly across shards, so Len never exceeds
	// Capacity at any instant.
	Capacity int

	// Shards is the number of lock-striped partitions, rounded up to a power
	// of two and clamped so no shard receives a zero capacity budget. The
	// count is fixed for the cache's lifetime.
	Shards int

	// Policy selects eviction victims. All shards share one factory; each
	// shard binds its own instance.
	Policy policy.Policy[K]

	// DefaultTTL applies to Set/Add when no per-key TTL is given.
	// Zero disables default expiry.
	DefaultTTL time.Duration

	// SweepInterval enables a background goroutine that periodically removes
	// expired entries without waiting for access. Zero disables it; Sweep can
	// still be called manually. The goroutine stops on Close.
	SweepInterval time.Duration

	// SizeOf computes a logical weight per value (e.g. bytes). Combined with
	// MaxBytes the cache evicts until the total weight fits. nil = all
	// entries weigh zero.
	SizeOf   func(v V) int64
	MaxBytes int64

	// DisableStats turns off the hit/miss/insert/evict counters behind
	// Stats. Counting is cheap (per-shard padded atomics) so it is on by
	// default.
	DisableStats bool

	// Loader fetches a value on cache miss; used by GetOrLoad. Concurrent
	// loads for the same key are coalesced.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for every eviction, under the shard lock: keep it
	// lightweight.
	OnEvict func(k K, v V, reason EvictReason)

	Metrics Metrics
	Clock   Clock
}
