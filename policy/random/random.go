// Package random implements uniform random eviction. It is mainly a baseline
// for policy comparisons and a tool for tests: under a fixed seed the victim
// sequence is fully deterministic.
package random

import (
	"math/rand"
	"sync/atomic"

	"github.com/stripedcache/stripedcache/policy"
)

type randomPolicy[K comparable] struct {
	seed   int64
	stream atomic.Int64
}

// New returns a Policy factory for random eviction. Each shard instance gets
// its own rand.Rand derived from seed, so shards never contend on a shared
// source and a seeded cache evicts reproducibly.
func New[K comparable](seed int64) policy.Policy[K] {
	return &randomPolicy[K]{seed: seed}
}

func (p *randomPolicy[K]) New(h policy.Hooks[K]) policy.ShardPolicy[K] {
	// Derive a distinct stream per shard from the base seed.
	stream := p.stream.Add(1)
	return &random[K]{
		h:   h,
		rng: rand.New(rand.NewSource(p.seed + stream*0x9E3779B9)),
	}
}

type random[K comparable] struct {
	h   policy.Hooks[K]
	rng *rand.Rand
}

func (p *random[K]) OnInsert(policy.Node[K]) {}
func (p *random[K]) OnAccess(policy.Node[K]) {}
func (p *random[K]) OnUpdate(policy.Node[K]) {}
func (p *random[K]) OnRemove(policy.Node[K]) {}

// SelectVictim reservoir-samples one node: the i-th node seen replaces the
// current choice with probability 1/i, giving every resident entry equal odds
// in a single pass without materializing the key set.
func (p *random[K]) SelectVictim() (policy.Node[K], bool) {
	var victim policy.Node[K]
	i := 0
	p.h.Range(func(n policy.Node[K]) bool {
		i++
		if p.rng.Intn(i) == 0 {
			victim = n
		}
		return true
	})
	if victim == nil {
		return nil, false
	}
	return victim, true
}

func (p *random[K]) Reset() {}
