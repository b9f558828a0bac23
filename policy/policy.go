// Package policy defines the eviction-policy contracts shared by the cache
// shards and the concrete policies (none, fifo, lru, lfu, ttlfirst, sizebased,
// adaptive, random).
package policy

// Node is the metadata view of one resident entry that a policy may consult
// or update. The shard owns the node; a policy must only touch the metadata
// relevant to its strategy so that inactive bookkeeping costs nothing.
type Node[K comparable] interface {
	Key() K
	// Seq is the shard-local insertion sequence number. Unique and monotonic,
	// so FIFO ordering and tie-breaks are always deterministic.
	Seq() uint64
	// LastAccess is the shard-local logical tick of the last policy-relevant
	// access (see Hooks.Tick). Zero until a policy first calls Touch.
	LastAccess() int64
	// Frequency is the access counter maintained by frequency-based policies.
	Frequency() uint64
	// Size is the entry weight computed by Options.SizeOf (0 when unset).
	Size() int64
	// ExpiresAt is the absolute UnixNano expiry deadline (0 = no TTL).
	ExpiresAt() int64

	// Touch records tick as the entry's last access.
	Touch(tick int64)
	// Bump increments the access frequency counter.
	Bump()
}

// Hooks expose shard internals a policy may use: O(1) intrusive-list
// operations, a metadata scan, and the shard's notion of time.
// All hook calls happen under the shard lock; hooks manage only ordering and
// iteration, the shard owns the key->node map.
type Hooks[K comparable] interface {
	// MoveToFront promotes the node to the head of the shard list (MRU).
	MoveToFront(Node[K])
	// Back returns the node at the tail of the shard list (oldest position),
	// or nil when the shard is empty.
	Back() Node[K]
	// Len returns the number of resident nodes in the shard.
	Len() int
	// Range calls fn for every resident node until fn returns false.
	// Policies that rank victims by metadata (LFU, size, TTL, random) scan
	// through it; the iteration order is unspecified.
	Range(fn func(Node[K]) bool)
	// Now returns the shard clock in UnixNano (injectable for tests).
	Now() int64
	// Tick returns the next value of the shard's logical access counter.
	Tick() int64
}

// ShardPolicy is a per-shard policy instance bound to that shard's hooks.
// All methods are invoked synchronously under the shard lock, so policy state
// can never drift from the shard's resident set.
//
// The shard links new nodes at the list head itself; OnInsert/OnAccess/
// OnUpdate are notifications that let the policy maintain its metadata and
// ordering. SelectVictim is called when the shard must free space; returning
// ok=false means the policy declines to evict and the triggering insert fails
// with a capacity error.
type ShardPolicy[K comparable] interface {
	OnInsert(Node[K])
	OnAccess(Node[K])
	OnUpdate(Node[K])
	OnRemove(Node[K])
	SelectVictim() (victim Node[K], ok bool)
	// Reset drops all policy-internal state (shard Clear).
	Reset()
}

// Policy is a factory producing shard-local policy instances bound to a
// particular shard's hooks. One factory configures all shards of a cache.
type Policy[K comparable] interface {
	New(Hooks[K]) ShardPolicy[K]
}

// MissObserver is an optional extension: a policy implementing it is told
// about lookups that missed (absent or expired key). The adaptive policy uses
// this to detect evictions it regrets.
type MissObserver[K comparable] interface {
	OnMiss(key K)
}
