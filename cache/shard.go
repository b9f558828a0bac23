package cache

import (
	"sync"
	"time"

	"github.com/stripedcache/stripedcache/policy"
)

// shard is an independent partition of the cache: one lock around one
// map[K]*node, one intrusive list (head = newest position, tail = oldest),
// one policy instance, and one set of stat counters. A key belongs to exactly
// one shard for the cache's lifetime, so same-key operations are linearized
// by this lock and nothing here needs further synchronization.
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.RWMutex
	m     map[K]*node[K, V]
	head  *node[K, V]
	tail  *node[K, V]
	len   int
	bytes int64 // total weight when SizeOf is set

	cap      int   // per-shard entry budget (0 = unbounded)
	maxBytes int64 // per-shard weight budget (0 = disabled)

	seq  uint64 // insertion sequence, monotonic per shard
	tick int64  // logical access counter handed out via Hooks.Tick

	pol     policy.ShardPolicy[K]
	missObs policy.MissObserver[K] // non-nil iff pol wants miss signals
	opt     *Options[K, V]

	// Stat counters live on their own cache lines; nil when stats are
	// disabled (all methods are nil-safe).
	stats *shardStats
}

// newShard binds a policy instance to this shard and sets its budgets.
func newShard[K comparable, V any](cap int, maxBytes int64, pol policy.Policy[K], opt *Options[K, V]) *shard[K, V] {
	s := &shard[K, V]{
		m:        make(map[K]*node[K, V]),
		cap:      cap,
		maxBytes: maxBytes,
		opt:      opt,
	}
	if !opt.DisableStats {
		s.stats = &shardStats{}
	}
	s.pol = pol.New(shardHooks[K, V]{s: s})
	if mo, ok := s.pol.(policy.MissObserver[K]); ok {
		s.missObs = mo
	}
	return s
}

// set inserts or updates k→v. exp is an absolute UnixNano deadline (0 = no
// TTL). For a new key at capacity, eviction happens before insertion so the
// entry budget is never exceeded, not even transiently; if the policy yields
// no victim the insert fails with ErrCapacityExceeded.
func (s *shard[K, V]) set(k K, v V, exp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, err := s.setLocked(k, v, exp)
	return err
}

// swap is set, but also reports the value it replaced.
func (s *shard[K, V]) swap(k K, v V, exp int64) (V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(k, v, exp)
}

// add inserts k→v only if the key is absent. Returns false when the key
// already exists (no update is performed).
func (s *shard[K, V]) add(k K, v V, exp int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[k]; exists {
		return false, nil
	}
	_, _, err := s.setLocked(k, v, exp)
	return err == nil, err
}

func (s *shard[K, V]) setLocked(k K, v V, exp int64) (prev V, replaced bool, err error) {
	sz := s.sizeOf(v)
	// A value larger than the whole byte budget can never fit; reject before
	// any eviction so a doomed write cannot displace residents.
	if s.maxBytes > 0 && sz > s.maxBytes {
		return prev, false, ErrCapacityExceeded
	}

	if n, ok := s.m[k]; ok {
		// Make room for the growth before touching the entry: a failed update
		// leaves the old value resident and the budget intact.
		if delta := sz - n.size; delta > 0 {
			if err := s.shrinkToBytesLocked(delta); err != nil {
				return prev, false, err
			}
		}
		if _, still := s.m[k]; still {
			prev = n.val
			s.bytes += sz - n.size
			n.val = v
			n.exp = exp
			n.size = sz
			s.pol.OnUpdate(n)
			s.stats.insert()
			s.opt.Metrics.Insert()
			s.opt.Metrics.Size(s.len, s.bytes)
			return prev, true, nil
		}
		// The shrink chose the entry being updated as its victim; insert the
		// new value fresh below.
	}

	// New entry: make room first.
	if s.cap > 0 && s.len >= s.cap {
		if !s.evictOneLocked(EvictCapacity) {
			return prev, false, ErrCapacityExceeded
		}
	}
	if err := s.shrinkToBytesLocked(sz); err != nil {
		return prev, false, err
	}

	s.seq++
	n := &node[K, V]{key: k, val: v, exp: exp, size: sz, seq: s.seq}
	s.m[k] = n
	s.insertFront(n)
	s.pol.OnInsert(n)
	s.stats.insert()
	s.opt.Metrics.Insert()
	s.opt.Metrics.Size(s.len, s.bytes)
	return prev, false, nil
}

// shrinkToBytesLocked greedily evicts until the weight budget has room for
// incoming more bytes. An incoming weight that exceeds the budget outright is
// rejected before anything is evicted; otherwise it errors only when the
// budget still cannot be met after the policy stops producing victims.
func (s *shard[K, V]) shrinkToBytesLocked(incoming int64) error {
	if s.maxBytes <= 0 {
		return nil
	}
	if incoming > s.maxBytes {
		return ErrCapacityExceeded
	}
	for s.bytes+incoming > s.maxBytes && s.len > 0 {
		if !s.evictOneLocked(EvictSize) {
			break
		}
	}
	if s.bytes+incoming > s.maxBytes {
		return ErrCapacityExceeded
	}
	return nil
}

// get returns the value for k. Expired entries are treated as absent: they
// are removed on the spot, counted as an expiration, and the lookup counts as
// a miss.
func (s *shard[K, V]) get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		s.missLocked(k)
		var zero V
		return zero, false
	}
	if s.expiredLocked(n) {
		s.evictNodeLocked(n, EvictExpired)
		s.missLocked(k)
		var zero V
		return zero, false
	}

	s.pol.OnAccess(n)
	s.stats.hit()
	s.opt.Metrics.Hit()
	return n.val, true
}

// getMut runs fn on the stored value in place, under the shard lock, and
// counts as an access. Returns false (without calling fn) when the key is
// absent or expired.
func (s *shard[K, V]) getMut(k K, fn func(*V)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		s.missLocked(k)
		return false
	}
	if s.expiredLocked(n) {
		s.evictNodeLocked(n, EvictExpired)
		s.missLocked(k)
		return false
	}

	fn(&n.val)
	s.pol.OnAccess(n)
	s.stats.hit()
	s.opt.Metrics.Hit()
	return true
}

// remove deletes k and returns the removed value. An absent key is a normal
// outcome, not an error, and explicit removals count as neither hits, misses
// nor evictions.
func (s *shard[K, V]) remove(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	s.pol.OnRemove(n)
	s.removeNode(n)
	delete(s.m, k)
	s.opt.Metrics.Size(s.len, s.bytes)
	return n.val, true
}

// contains reports presence without touching recency/frequency metadata or
// stats. Expired entries read as absent but are left for the lazy path or the
// sweeper to collect, which keeps contains on the read lock.
func (s *shard[K, V]) contains(k K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.m[k]
	return ok && !s.expiredLocked(n)
}

func (s *shard[K, V]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.len
}

// clear drops all entries and policy state. Stats are deliberately kept;
// they reset only through ResetStats.
func (s *shard[K, V]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[K]*node[K, V])
	s.head, s.tail = nil, nil
	s.len = 0
	s.bytes = 0
	s.pol.Reset()
	s.opt.Metrics.Size(0, 0)
}

// sweep removes every entry whose deadline elapsed, returning the count.
// It works on the entries resident at the time of the call; keys inserted
// while the sweep runs on other shards are untouched.
func (s *shard[K, V]) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []*node[K, V]
	for n := s.head; n != nil; n = n.next {
		if n.exp != 0 && now >= n.exp {
			expired = append(expired, n)
		}
	}
	for _, n := range expired {
		s.evictNodeLocked(n, EvictExpired)
	}
	if len(expired) > 0 {
		s.opt.Metrics.Size(s.len, s.bytes)
	}
	return len(expired)
}

// items appends a snapshot of this shard's live entries, newest first.
func (s *shard[K, V]) items(dst []Item[K, V]) []Item[K, V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	for n := s.head; n != nil; n = n.next {
		if n.exp != 0 && now >= n.exp {
			continue
		}
		dst = append(dst, Item[K, V]{Key: n.key, Value: n.val})
	}
	return dst
}

func (s *shard[K, V]) keys(dst []K) []K {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	for n := s.head; n != nil; n = n.next {
		if n.exp != 0 && now >= n.exp {
			continue
		}
		dst = append(dst, n.key)
	}
	return dst
}

func (s *shard[K, V]) values(dst []V) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	for n := s.head; n != nil; n = n.next {
		if n.exp != 0 && now >= n.exp {
			continue
		}
		dst = append(dst, n.val)
	}
	return dst
}

// -------------------- internals (mu held) --------------------

func (s *shard[K, V]) missLocked(k K) {
	s.stats.miss()
	s.opt.Metrics.Miss()
	if s.missObs != nil {
		s.missObs.OnMiss(k)
	}
}

func (s *shard[K, V]) expiredLocked(n *node[K, V]) bool {
	return n.exp != 0 && s.now() >= n.exp
}

func (s *shard[K, V]) now() int64 {
	if s.opt.Clock != nil {
		return s.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

func (s *shard[K, V]) sizeOf(v V) int64 {
	if s.opt.SizeOf == nil {
		return 0
	}
	if sz := s.opt.SizeOf(v); sz > 0 {
		return sz
	}
	return 0
}

// insertFront links n at the head in O(1).
func (s *shard[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
	s.bytes += n.size
}

// moveToFront promotes n to the head in O(1).
func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	if n == s.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// removeNode unlinks n and updates counters in O(1).
func (s *shard[K, V]) removeNode(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
	s.bytes -= n.size
	if s.bytes < 0 {
		s.bytes = 0
	}
}

// evictOneLocked asks the policy for a victim and removes it. Returns false
// when the policy declines (or the shard is empty).
func (s *shard[K, V]) evictOneLocked(reason EvictReason) bool {
	v, ok := s.pol.SelectVictim()
	if !ok {
		return false
	}
	s.evictNodeLocked(v.(*node[K, V]), reason)
	return true
}

// evictNodeLocked removes n, records the eviction, and fires the callback.
// The policy is notified synchronously so its state can never reference a
// phantom entry.
func (s *shard[K, V]) evictNodeLocked(n *node[K, V], reason EvictReason) {
	s.pol.OnRemove(n)
	s.removeNode(n)
	delete(s.m, n.key)
	s.stats.evict(reason)
	s.opt.Metrics.Evict(reason)
	if cb := s.opt.OnEvict; cb != nil {
		// Runs under the shard lock: callbacks must not call back into the
		// cache for keys of this shard.
		cb(n.key, n.val, reason)
	}
}

// -------------------- policy hooks --------------------

// shardHooks adapts shard internals to policy.Hooks. All calls happen under
// the shard lock.
type shardHooks[K comparable, V any] struct{ s *shard[K, V] }

func (h shardHooks[K, V]) MoveToFront(x policy.Node[K]) { h.s.moveToFront(x.(*node[K, V])) }

func (h shardHooks[K, V]) Back() policy.Node[K] {
	if h.s.tail == nil {
		return nil
	}
	return h.s.tail
}

func (h shardHooks[K, V]) Len() int { return h.s.len }

func (h shardHooks[K, V]) Range(fn func(policy.Node[K]) bool) {
	for n := h.s.head; n != nil; n = n.next {
		if !fn(n) {
			return
		}
	}
}

func (h shardHooks[K, V]) Now() int64 { return h.s.now() }

func (h shardHooks[K, V]) Tick() int64 {
	h.s.tick++
	return h.s.tick
}
