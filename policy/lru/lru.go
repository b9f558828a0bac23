// Package lru implements the least-recently-used eviction policy. It is the
// cache's default.
package lru

import "github.com/stripedcache/stripedcache/policy"

// lru is a classic move-to-front policy: the shard list is kept in recency
// order, so the victim is simply the list tail. The list position doubles as
// the recency metadata, and entries inserted together keep their relative
// insertion order until one of them is read, which is exactly the documented
// tie-break.
type lru[K comparable] struct {
	h policy.Hooks[K]
}

type lruPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-shard LRU instances.
func New[K comparable]() policy.Policy[K] { return lruPolicy[K]{} }

func (lruPolicy[K]) New(h policy.Hooks[K]) policy.ShardPolicy[K] {
	return &lru[K]{h: h}
}

// OnInsert is a no-op: the shard already links new entries at the list head.
func (p *lru[K]) OnInsert(policy.Node[K]) {}

// OnAccess promotes the entry to MRU.
func (p *lru[K]) OnAccess(n policy.Node[K]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry to MRU (updates count as recent use).
func (p *lru[K]) OnUpdate(n policy.Node[K]) { p.h.MoveToFront(n) }

func (p *lru[K]) OnRemove(policy.Node[K]) {}

// SelectVictim returns the list tail: the entry with the oldest access.
func (p *lru[K]) SelectVictim() (policy.Node[K], bool) {
	n := p.h.Back()
	if n == nil {
		return nil, false
	}
	return n, true
}

func (p *lru[K]) Reset() {}
