// Package sizebased implements size-weighted eviction: the victim is the
// entry contributing most to the byte budget. The shard re-invokes the policy
// greedily while it is over budget, so one oversized write can displace
// several large residents in a row.
package sizebased

import "github.com/stripedcache/stripedcache/policy"

type sizePolicy[K comparable] struct{}

type sizeBased[K comparable] struct {
	h policy.Hooks[K]
}

// New returns a Policy factory that constructs per-shard size-based instances.
// Pair it with Options.SizeOf and MaxBytes; without a size function every
// entry weighs zero and the policy degrades to oldest-insertion order.
func New[K comparable]() policy.Policy[K] { return sizePolicy[K]{} }

func (sizePolicy[K]) New(h policy.Hooks[K]) policy.ShardPolicy[K] {
	return &sizeBased[K]{h: h}
}

func (p *sizeBased[K]) OnInsert(policy.Node[K]) {}
func (p *sizeBased[K]) OnAccess(policy.Node[K]) {}
func (p *sizeBased[K]) OnUpdate(policy.Node[K]) {}
func (p *sizeBased[K]) OnRemove(policy.Node[K]) {}

// SelectVictim returns the largest resident entry; among equally large
// entries the oldest insertion loses.
func (p *sizeBased[K]) SelectVictim() (policy.Node[K], bool) {
	var victim policy.Node[K]
	p.h.Range(func(n policy.Node[K]) bool {
		if victim == nil || bigger(n, victim) {
			victim = n
		}
		return true
	})
	if victim == nil {
		return nil, false
	}
	return victim, true
}

func (p *sizeBased[K]) Reset() {}

func bigger[K comparable](a, b policy.Node[K]) bool {
	if a.Size() != b.Size() {
		return a.Size() > b.Size()
	}
	return a.Seq() < b.Seq()
}
