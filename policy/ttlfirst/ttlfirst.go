// Package ttlfirst decorates any base policy with expiry awareness: an
// already-expired entry is always preferred as the victim, because it carries
// no value. Only when nothing has expired does the base policy choose.
//
// Wrapping lru.New or lfu.New yields the TTL-aware LRU/LFU hybrids.
package ttlfirst

import "github.com/stripedcache/stripedcache/policy"

type ttlFirstPolicy[K comparable] struct {
	base policy.Policy[K]
}

type ttlFirst[K comparable] struct {
	h    policy.Hooks[K]
	base policy.ShardPolicy[K]
}

// New returns a Policy factory wrapping base with expiry-first victim
// selection.
func New[K comparable](base policy.Policy[K]) policy.Policy[K] {
	return ttlFirstPolicy[K]{base: base}
}

func (p ttlFirstPolicy[K]) New(h policy.Hooks[K]) policy.ShardPolicy[K] {
	return &ttlFirst[K]{h: h, base: p.base.New(h)}
}

func (p *ttlFirst[K]) OnInsert(n policy.Node[K]) { p.base.OnInsert(n) }
func (p *ttlFirst[K]) OnAccess(n policy.Node[K]) { p.base.OnAccess(n) }
func (p *ttlFirst[K]) OnUpdate(n policy.Node[K]) { p.base.OnUpdate(n) }
func (p *ttlFirst[K]) OnRemove(n policy.Node[K]) { p.base.OnRemove(n) }

// SelectVictim scans for the entry with the earliest elapsed deadline and
// falls back to the base policy when nothing has expired yet.
func (p *ttlFirst[K]) SelectVictim() (policy.Node[K], bool) {
	now := p.h.Now()
	var expired policy.Node[K]
	p.h.Range(func(n policy.Node[K]) bool {
		exp := n.ExpiresAt()
		if exp == 0 || exp > now {
			return true
		}
		if expired == nil || exp < expired.ExpiresAt() {
			expired = n
		}
		return true
	})
	if expired != nil {
		return expired, true
	}
	return p.base.SelectVictim()
}

func (p *ttlFirst[K]) Reset() { p.base.Reset() }
