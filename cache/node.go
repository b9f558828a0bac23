package cache

// node is an intrusive doubly linked list element owned by a shard. It stores
// the key/value alongside the metadata the eviction policies consult. Exactly
// one live node exists per key per shard; the shard's map and list always
// reference the same node.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links. The head is the newest position (MRU under
	// promoting policies, newest insertion otherwise), the tail the oldest.
	prev *node[K, V]
	next *node[K, V]

	// seq is the shard-local insertion sequence number, unique and monotonic.
	seq uint64
	// access is the logical tick of the last policy-relevant access.
	access int64
	// freq is the access counter maintained by frequency-based policies.
	freq uint64
	// size is the entry weight from Options.SizeOf (0 when unset).
	size int64
	// exp is the absolute expiry deadline in UnixNano. Zero means no TTL.
	exp int64
}

// policy.Node implementation. Policies may only call these while the owning
// shard's lock is held.

func (n *node[K, V]) Key() K            { return n.key }
func (n *node[K, V]) Seq() uint64       { return n.seq }
func (n *node[K, V]) LastAccess() int64 { return n.access }
func (n *node[K, V]) Frequency() uint64 { return n.freq }
func (n *node[K, V]) Size() int64       { return n.size }
func (n *node[K, V]) ExpiresAt() int64  { return n.exp }
func (n *node[K, V]) Touch(tick int64)  { n.access = tick }
func (n *node[K, V]) Bump()             { n.freq++ }
