package cache

import (
	"context"
	"time"
)

// Item is one exported key/value pair. The snapshot export (Items) and
// import (Load) speak in Items so a persistence collaborator can serialize
// them in whatever format it likes; the cache mandates none.
type Item[K comparable, V any] struct {
	Key   K
	Value V
}

// Cache is a sharded, in-memory key/value cache. All methods are safe for
// concurrent use by multiple goroutines, and a Cache value is a cheap handle:
// copies share the same shards, so it can be passed around freely.
//
// Operations on a single key are linearized by the owning shard's lock and
// run in amortized O(1) (one map access plus constant pointer fixes; policies
// that rank victims by metadata pay an O(shard) scan per eviction).
// Operations that span all shards (Clear, Len, Stats, Keys, Values, Items,
// Sweep) visit shards one at a time in ascending index order: the result can
// mix per-shard states from slightly different instants. That relaxation is
// deliberate; no operation ever holds two shard locks at once.
type Cache[K comparable, V any] interface {
	// Set inserts or updates k→v using DefaultTTL (if any). It returns
	// ErrCapacityExceeded when the cache is full and the active policy
	// declines to evict, and ErrClosed after Close.
	Set(k K, v V) error

	// SetWithTTL is Set with a per-key TTL (relative duration). A
	// non-positive ttl disables expiration for this entry.
	SetWithTTL(k K, v V, ttl time.Duration) error

	// Swap is Set, additionally returning the value it replaced (replaced
	// reports whether the key was present).
	Swap(k K, v V) (prev V, replaced bool, err error)

	// Add inserts k→v only if k is absent; it returns false (and no error)
	// when the key already exists.
	Add(k K, v V) (bool, error)

	// Get returns the value for k. On a hit the entry is promoted according
	// to the active policy; an expired entry reads as absent, is removed,
	// and counts as an expiration plus a miss.
	Get(k K) (V, bool)

	// GetMut runs fn on the stored value in place, under the owning shard's
	// lock, and counts as an access. fn must be short and must not touch the
	// cache. Returns false without calling fn when k is absent or expired.
	GetMut(k K, fn func(*V)) bool

	// Remove deletes k and returns the removed value. Removing an absent key
	// is a normal outcome (zero value, false), not an error.
	Remove(k K) (V, bool)

	// Contains reports whether k is live, without promoting it or touching
	// the stats.
	Contains(k K) bool

	// Len returns the number of resident entries across all shards.
	Len() int

	// Clear removes all entries from every shard. Idempotent. Stats survive;
	// only ResetStats zeroes them.
	Clear()

	// Keys, Values and Items return snapshots of the live entries. Entries
	// inserted or evicted while the snapshot is being taken may or may not
	// appear.
	Keys() []K
	Values() []V
	Items() []Item[K, V]

	// Load bulk-inserts items through the regular Set path (policy and
	// capacity rules apply). Per-key failures are joined into the returned
	// error; the remaining items are still applied.
	Load(items []Item[K, V]) error

	// ApplyBatch applies each operation independently to its routed shard
	// and reports a per-key outcome. A batch is not a transaction: some
	// operations may fail while others succeed, and nothing is rolled back.
	ApplyBatch(ops []Op[K, V]) BatchResult[K, V]

	// Stats returns a snapshot of the aggregated counters (zeroes when stats
	// are disabled). ResetStats zeroes all counters.
	Stats() Stats
	ResetStats()

	// Sweep removes expired entries shard by shard without waiting for
	// access, returning how many were removed. With SweepInterval set, a
	// background goroutine calls it periodically.
	Sweep() int

	// ShardFor reports which shard k routes to; stable for the cache's
	// lifetime. ShardCount returns the fixed number of shards.
	ShardFor(k K) int
	ShardCount() int

	// GetOrLoad returns the value for k, loading it via Options.Loader on a
	// miss. Concurrent loads for the same key are coalesced so the loader
	// runs at most once. Returns ErrNoLoader when no loader is configured.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Close stops the background sweeper (if any) and marks the cache
	// closed: mutations return ErrClosed, lookups read as absent.
	Close() error
}
