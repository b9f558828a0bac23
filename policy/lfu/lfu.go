// Package lfu implements least-frequently-used eviction.
package lfu

import "github.com/stripedcache/stripedcache/policy"

// lfu keeps the access frequency on the node itself and selects victims with
// a metadata scan: smallest frequency wins, ties go to the oldest last access,
// and remaining ties to the smallest insertion sequence. The scan is O(n) per
// eviction, which is acceptable because evictions are rare relative to reads
// and shards bound n.
type lfu[K comparable] struct {
	h policy.Hooks[K]
}

type lfuPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-shard LFU instances.
func New[K comparable]() policy.Policy[K] { return lfuPolicy[K]{} }

func (lfuPolicy[K]) New(h policy.Hooks[K]) policy.ShardPolicy[K] {
	return &lfu[K]{h: h}
}

// OnInsert counts admission as the first use.
func (p *lfu[K]) OnInsert(n policy.Node[K]) {
	n.Bump()
	n.Touch(p.h.Tick())
}

// OnAccess bumps the frequency and refreshes the access tick (the tick is the
// tie-breaker between equally frequent entries).
func (p *lfu[K]) OnAccess(n policy.Node[K]) {
	n.Bump()
	n.Touch(p.h.Tick())
}

// OnUpdate follows OnAccess semantics: an overwrite counts as a use.
func (p *lfu[K]) OnUpdate(n policy.Node[K]) { p.OnAccess(n) }

func (p *lfu[K]) OnRemove(policy.Node[K]) {}

func (p *lfu[K]) SelectVictim() (policy.Node[K], bool) {
	var victim policy.Node[K]
	p.h.Range(func(n policy.Node[K]) bool {
		if victim == nil || less(n, victim) {
			victim = n
		}
		return true
	})
	if victim == nil {
		return nil, false
	}
	return victim, true
}

func (p *lfu[K]) Reset() {}

// less orders candidates: lower frequency first, then older access, then
// older insertion.
func less[K comparable](a, b policy.Node[K]) bool {
	if a.Frequency() != b.Frequency() {
		return a.Frequency() < b.Frequency()
	}
	if a.LastAccess() != b.LastAccess() {
		return a.LastAccess() < b.LastAccess()
	}
	return a.Seq() < b.Seq()
}
