package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stripedcache/stripedcache/internal/singleflight"
	"github.com/stripedcache/stripedcache/internal/util"
	"github.com/stripedcache/stripedcache/policy/lru"
)

// cache is the sharded implementation behind the Cache interface.
type cache[K comparable, V any] struct {
	shards []*shard[K, V] // length is a power of two
	hash   func(K) uint64
	closed atomic.Bool

	opt Options[K, V]

	// Coalesces concurrent loads in GetOrLoad.
	flight singleflight.Group[K, V]

	// Background sweeper lifecycle.
	stop    context.CancelFunc
	sweeper sync.WaitGroup
}

// New constructs a cache from Options. It validates the configuration and
// returns a ConfigError instead of panicking on bad input. Defaults:
//   - nil Policy  -> LRU
//   - Shards == 0 -> auto, rounded up to the next power of two
//   - nil Metrics -> NoopMetrics
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if opt.Capacity < 0 {
		return nil, configErr("Capacity", "must not be negative")
	}
	if opt.Shards < 0 {
		return nil, configErr("Shards", "must not be negative")
	}
	if opt.MaxBytes < 0 {
		return nil, configErr("MaxBytes", "must not be negative")
	}
	if opt.MaxBytes > 0 && opt.SizeOf == nil {
		return nil, configErr("SizeOf", "required when MaxBytes is set")
	}
	if opt.DefaultTTL < 0 {
		return nil, configErr("DefaultTTL", "must not be negative")
	}
	if opt.SweepInterval < 0 {
		return nil, configErr("SweepInterval", "must not be negative")
	}

	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K]()
	}

	sh := opt.Shards
	if sh == 0 {
		sh = util.ReasonableShardCount()
	} else {
		sh = int(util.NextPow2(uint64(sh)))
	}
	// With a bounded cache every shard must own a non-zero slice of each
	// budget, otherwise keys routed to a zero-budget shard could never be
	// stored (and a zero byte budget would read as "unbounded"). Clamp rather
	// than reject: the shard count is a tuning knob, the budgets are a
	// contract.
	if opt.Capacity > 0 && sh > opt.Capacity {
		sh = int(util.PrevPow2(uint64(opt.Capacity)))
	}
	if opt.MaxBytes > 0 && int64(sh) > opt.MaxBytes {
		sh = int(util.PrevPow2(uint64(opt.MaxBytes)))
	}

	c := &cache[K, V]{
		shards: make([]*shard[K, V], sh),
		hash:   util.HashKey[K],
		opt:    opt,
	}

	// Distribute the budgets exactly: the per-shard capacities sum to
	// Capacity (and the weight budgets to MaxBytes), so the global ceiling
	// holds at every instant. The first remainder shards take one extra.
	capBase, capExtra := 0, 0
	if opt.Capacity > 0 {
		capBase, capExtra = opt.Capacity/sh, opt.Capacity%sh
	}
	bytesBase, bytesExtra := int64(0), int64(0)
	if opt.MaxBytes > 0 {
		bytesBase, bytesExtra = opt.MaxBytes/int64(sh), opt.MaxBytes%int64(sh)
	}
	for i := range c.shards {
		sc := capBase
		if opt.Capacity > 0 && i < capExtra {
			sc++
		}
		sb := bytesBase
		if opt.MaxBytes > 0 && int64(i) < bytesExtra {
			sb++
		}
		c.shards[i] = newShard[K, V](sc, sb, opt.Policy, &c.opt)
	}

	if opt.SweepInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		c.stop = cancel
		c.sweeper.Add(1)
		go c.sweepLoop(ctx, opt.SweepInterval)
	}
	return c, nil
}

// ---- single-key operations ----

func (c *cache[K, V]) Set(k K, v V) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.shardOf(k).set(k, v, c.defaultDeadline())
}

func (c *cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.shardOf(k).set(k, v, c.deadline(ttl))
}

func (c *cache[K, V]) Swap(k K, v V) (V, bool, error) {
	if c.closed.Load() {
		var zero V
		return zero, false, ErrClosed
	}
	return c.shardOf(k).swap(k, v, c.defaultDeadline())
}

func (c *cache[K, V]) Add(k K, v V) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	return c.shardOf(k).add(k, v, c.defaultDeadline())
}

func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.shardOf(k).get(k)
}

func (c *cache[K, V]) GetMut(k K, fn func(*V)) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardOf(k).getMut(k, fn)
}

func (c *cache[K, V]) Remove(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.shardOf(k).remove(k)
}

func (c *cache[K, V]) Contains(k K) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardOf(k).contains(k)
}

// ---- cross-shard operations ----
//
// All of these visit shards in ascending index order, one lock at a time, and
// never nest shard locks. The composite view is eventually consistent.

func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.size()
	}
	return total
}

func (c *cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.clear()
	}
}

func (c *cache[K, V]) Keys() []K {
	var out []K
	for _, s := range c.shards {
		out = s.keys(out)
	}
	return out
}

func (c *cache[K, V]) Values() []V {
	var out []V
	for _, s := range c.shards {
		out = s.values(out)
	}
	return out
}

func (c *cache[K, V]) Items() []Item[K, V] {
	var out []Item[K, V]
	for _, s := range c.shards {
		out = s.items(out)
	}
	return out
}

func (c *cache[K, V]) Load(items []Item[K, V]) error {
	if c.closed.Load() {
		return ErrClosed
	}
	var errs []error
	for _, it := range items {
		if err := c.Set(it.Key, it.Value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *cache[K, V]) Stats() Stats {
	var agg Stats
	for _, s := range c.shards {
		s.stats.snapshot(&agg)
	}
	return agg
}

func (c *cache[K, V]) ResetStats() {
	for _, s := range c.shards {
		s.stats.reset()
	}
}

func (c *cache[K, V]) Sweep() int {
	total := 0
	for _, s := range c.shards {
		total += s.sweep()
	}
	return total
}

// ---- deadlines ----

// defaultDeadline resolves DefaultTTL to an absolute deadline (0 = no TTL).
func (c *cache[K, V]) defaultDeadline() int64 {
	return c.deadline(c.opt.DefaultTTL)
}

// deadline converts a relative TTL into an absolute UnixNano deadline.
// A non-positive ttl returns 0 (no expiration).
func (c *cache[K, V]) deadline(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	now := time.Now().UnixNano()
	if c.opt.Clock != nil {
		now = c.opt.Clock.NowUnixNano()
	}
	return now + int64(ttl)
}

// ---- routing ----

func (c *cache[K, V]) ShardFor(k K) int {
	return util.ShardIndex(c.hash(k), len(c.shards))
}

func (c *cache[K, V]) ShardCount() int { return len(c.shards) }

// shardOf picks the owning shard by hashing the key and masking with len-1;
// len(c.shards) is guaranteed to be a power of two.
func (c *cache[K, V]) shardOf(k K) *shard[K, V] {
	return c.shards[int(c.hash(k))&(len(c.shards)-1)]
}

// ---- loading ----

func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return c.flight.Do(ctx, k, func() (V, error) {
		// Double-check after winning/joining the flight: another caller may
		// have populated the key already.
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err == nil {
			err = c.Set(k, v)
		}
		return v, err
	})
}

// ---- lifecycle ----

func (c *cache[K, V]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.stop != nil {
		c.stop()
		c.sweeper.Wait()
	}
	return nil
}

// sweepLoop periodically collects expired entries so write-once keys do not
// linger until their next (possibly never) access.
func (c *cache[K, V]) sweepLoop(ctx context.Context, every time.Duration) {
	defer c.sweeper.Done()

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Sweep()
		}
	}
}
