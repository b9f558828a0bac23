package cache

import (
	"context"
	"time"

	"github.com/stripedcache/stripedcache/policy"
	"github.com/stripedcache/stripedcache/policy/fifo"
	"github.com/stripedcache/stripedcache/policy/lfu"
	"github.com/stripedcache/stripedcache/policy/lru"
	"github.com/stripedcache/stripedcache/policy/none"
	"github.com/stripedcache/stripedcache/policy/ttlfirst"
)

// Builder assembles a cache fluently and validates as it goes. The first
// configuration error sticks and is reported by Build; Build never panics.
//
//	c, err := cache.NewBuilder[string, []byte]().
//		MaxCapacity(10_000).
//		WithLRU().
//		Shards(16).
//		WithTTL(5 * time.Minute).
//		Build()
type Builder[K comparable, V any] struct {
	opt Options[K, V]
	// ttlWrap marks policies that should become TTL-aware when a default
	// TTL is configured (LRU/LFU; custom policies opt out).
	ttlWrap bool
	err     error
}

// NewBuilder starts a builder with the package defaults: unbounded, LRU,
// automatic shard count, stats enabled.
func NewBuilder[K comparable, V any]() *Builder[K, V] {
	return &Builder[K, V]{}
}

func (b *Builder[K, V]) fail(field, reason string) *Builder[K, V] {
	if b.err == nil {
		b.err = configErr(field, reason)
	}
	return b
}

// MaxCapacity sets the global entry ceiling. An explicit zero (or negative)
// capacity is a configuration error; leave MaxCapacity uncalled for an
// unbounded cache.
func (b *Builder[K, V]) MaxCapacity(n int) *Builder[K, V] {
	if n <= 0 {
		return b.fail("MaxCapacity", "must be positive (omit for unbounded)")
	}
	b.opt.Capacity = n
	return b
}

// MaxBytes bounds the total entry weight; sizeOf computes each value's
// weight.
func (b *Builder[K, V]) MaxBytes(n int64, sizeOf func(V) int64) *Builder[K, V] {
	if n <= 0 {
		return b.fail("MaxBytes", "must be positive")
	}
	if sizeOf == nil {
		return b.fail("SizeOf", "required when MaxBytes is set")
	}
	b.opt.MaxBytes = n
	b.opt.SizeOf = sizeOf
	return b
}

// Shards fixes the number of lock stripes (rounded up to a power of two).
// An explicit zero or negative count is a configuration error; leave Shards
// uncalled for an automatic count.
func (b *Builder[K, V]) Shards(n int) *Builder[K, V] {
	if n <= 0 {
		return b.fail("Shards", "must be positive (omit for automatic)")
	}
	b.opt.Shards = n
	return b
}

func (b *Builder[K, V]) policy(p policy.Policy[K], ttlWrap bool) *Builder[K, V] {
	b.opt.Policy = p
	b.ttlWrap = ttlWrap
	return b
}

// WithLRU selects least-recently-used eviction (the default).
func (b *Builder[K, V]) WithLRU() *Builder[K, V] { return b.policy(lru.New[K](), true) }

// WithLFU selects least-frequently-used eviction.
func (b *Builder[K, V]) WithLFU() *Builder[K, V] { return b.policy(lfu.New[K](), true) }

// WithFIFO selects first-in-first-out eviction.
func (b *Builder[K, V]) WithFIFO() *Builder[K, V] { return b.policy(fifo.New[K](), false) }

// WithNoEviction disables eviction: on a bounded cache, inserts beyond
// capacity fail with ErrCapacityExceeded.
func (b *Builder[K, V]) WithNoEviction() *Builder[K, V] { return b.policy(none.New[K](), false) }

// WithPolicy installs a custom policy as-is (no TTL-aware wrapping).
func (b *Builder[K, V]) WithPolicy(p policy.Policy[K]) *Builder[K, V] {
	if p == nil {
		return b.fail("Policy", "must not be nil")
	}
	b.opt.Policy = p
	b.ttlWrap = false
	return b
}

// WithTTL sets the default time-to-live for Set/Add. When combined with
// WithLRU or WithLFU, the policy becomes TTL-aware: an expired entry is
// always the first eviction candidate, since it carries no value.
func (b *Builder[K, V]) WithTTL(d time.Duration) *Builder[K, V] {
	if d <= 0 {
		return b.fail("TTL", "must be positive")
	}
	b.opt.DefaultTTL = d
	return b
}

// WithSweepInterval runs a background sweep of expired entries every d.
func (b *Builder[K, V]) WithSweepInterval(d time.Duration) *Builder[K, V] {
	if d <= 0 {
		return b.fail("SweepInterval", "must be positive")
	}
	b.opt.SweepInterval = d
	return b
}

// WithStats enables or disables the hit/miss/insert/evict counters.
func (b *Builder[K, V]) WithStats(enabled bool) *Builder[K, V] {
	b.opt.DisableStats = !enabled
	return b
}

// WithMetrics plugs an observability backend (e.g. the metrics/prom adapter).
func (b *Builder[K, V]) WithMetrics(m Metrics) *Builder[K, V] {
	b.opt.Metrics = m
	return b
}

// WithClock overrides the time source; tests inject a fake clock here.
func (b *Builder[K, V]) WithClock(clk Clock) *Builder[K, V] {
	b.opt.Clock = clk
	return b
}

// WithLoader configures the miss loader used by GetOrLoad.
func (b *Builder[K, V]) WithLoader(fn func(ctx context.Context, k K) (V, error)) *Builder[K, V] {
	b.opt.Loader = fn
	return b
}

// WithOnEvict registers an eviction callback (runs under the shard lock).
func (b *Builder[K, V]) WithOnEvict(fn func(k K, v V, reason EvictReason)) *Builder[K, V] {
	b.opt.OnEvict = fn
	return b
}

// Build validates and assembles the cache. The returned error is the first
// configuration problem encountered, either by a fluent setter or by New.
func (b *Builder[K, V]) Build() (Cache[K, V], error) {
	if b.err != nil {
		return nil, b.err
	}
	opt := b.opt
	if opt.DefaultTTL > 0 && (b.ttlWrap || opt.Policy == nil) {
		if opt.Policy == nil {
			opt.Policy = lru.New[K]()
		}
		opt.Policy = ttlfirst.New(opt.Policy)
	}
	return New(opt)
}
