// Package fifo implements first-in-first-out eviction.
package fifo

import "github.com/stripedcache/stripedcache/policy"

// fifo never promotes entries, so the shard's intrusive list keeps pure
// insertion order: head is the newest entry, tail is the oldest. The victim is
// always the tail, i.e. the entry with the smallest insertion sequence number.
// Sequence numbers are unique, so ties cannot occur.
type fifo[K comparable] struct {
	h policy.Hooks[K]
}

type fifoPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-shard FIFO instances.
func New[K comparable]() policy.Policy[K] { return fifoPolicy[K]{} }

func (fifoPolicy[K]) New(h policy.Hooks[K]) policy.ShardPolicy[K] {
	return &fifo[K]{h: h}
}

func (p *fifo[K]) OnInsert(policy.Node[K]) {}

// OnAccess is a no-op: FIFO ignores reads, and leaving the metadata untouched
// keeps the read path as cheap as possible.
func (p *fifo[K]) OnAccess(policy.Node[K]) {}

// OnUpdate is a no-op: overwriting a value does not renew its queue position.
func (p *fifo[K]) OnUpdate(policy.Node[K]) {}

func (p *fifo[K]) OnRemove(policy.Node[K]) {}

func (p *fifo[K]) SelectVictim() (policy.Node[K], bool) {
	n := p.h.Back()
	if n == nil {
		return nil, false
	}
	return n, true
}

func (p *fifo[K]) Reset() {}
