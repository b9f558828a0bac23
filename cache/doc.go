// Package cache provides a generic, sharded in-memory key/value cache with
// pluggable eviction policies (LRU by default), per-entry TTL with lazy and
// periodic expiry, batch application with per-key outcomes, aggregated
// hit/miss/eviction statistics, and optional weight-based capacity.
//
// # Design
//
//   - Concurrency: the keyspace is lock-striped across a power-of-two number
//     of shards, each guarded by its own RWMutex. A key belongs to exactly
//     one shard for the cache's lifetime, so same-key operations are
//     linearized by that shard's lock. The lock is held only for the single
//     call that needs it; nothing here blocks on I/O.
//
//   - Storage: each shard keeps a map[K]*node for lookups and an intrusive
//     doubly linked list for ordering. Single-key operations are O(1)
//     expected; policies that rank victims by metadata (LFU, size-based,
//     TTL-first, random) pay an O(shard) scan per eviction.
//
//   - Capacity: the global entry budget is distributed exactly across
//     shards, and a shard evicts before inserting, so Len never exceeds
//     MaxCapacity, not even transiently. When the policy declines to pick a
//     victim (no-eviction policy at capacity), the insert fails with
//     ErrCapacityExceeded instead of overgrowing.
//
//   - Policies: eviction is pluggable via the policy package. Provided:
//     lru, lfu, fifo, none, ttlfirst (expiry-aware decorator), sizebased,
//     adaptive (LRU/LFU switching), random. Policies are notified
//     synchronously under the shard lock, so their bookkeeping can never
//     drift from the resident set.
//
//   - TTL: entries carry absolute UnixNano deadlines. Expiry is lazy on
//     access and proactive through Sweep (manually, or periodically via
//     SweepInterval). Expired removals are counted separately from capacity
//     evictions.
//
//   - Global operations: Clear, Len, Stats, Keys/Values/Items and Sweep lock
//     shards independently in ascending index order. The composite view can
//     mix per-shard states from slightly different instants; that is a
//     documented relaxation, chosen over a cross-shard transaction that
//     would defeat lock striping. Shard locks are never nested, so deadlock
//     is structurally impossible.
//
//   - Handles: a Cache value is a cheap handle onto shared shards; hand it
//     to as many goroutines as needed. There is no separate "shared" wrapper
//     type.
//
//   - Observability: Stats() aggregates per-shard padded counters on demand;
//     Options.Metrics receives Hit/Miss/Insert/Evict/Size signals, with a
//     Prometheus adapter in metrics/prom.
//
// # Basic usage
//
//	c, err := cache.NewBuilder[string, []byte]().
//		MaxCapacity(10_000).
//		WithLRU().
//		Build()
//	if err != nil {
//		// configuration problem: fix and rebuild
//	}
//	_ = c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//		_ = v
//	}
//	c.Remove("a")
//
// # With TTL and sweeping
//
//	c, _ := cache.NewBuilder[string, string]().
//		MaxCapacity(1024).
//		WithLRU().
//		WithTTL(200 * time.Millisecond).
//		WithSweepInterval(time.Second).
//		Build()
//	defer c.Close()
//	_ = c.Set("tmp", "v") // expires on read or at the next sweep
//
// # Batches
//
//	res := c.ApplyBatch([]cache.Op[string, string]{
//		{Kind: cache.OpSet, Key: "a", Value: "1"},
//		{Kind: cache.OpGet, Key: "b"},
//		{Kind: cache.OpRemove, Key: "c"},
//	})
//	for _, r := range res.Results {
//		_ = r // per-key outcome; failures never roll back neighbors
//	}
//
// See policy for the Policy/Hooks contracts used to implement custom
// strategies, and metrics/prom for Prometheus export.
package cache
