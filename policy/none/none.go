// Package none implements the no-eviction policy: the cache never selects a
// victim, so inserts beyond a configured capacity fail with a capacity error.
// Use it when the caller wants an explicit signal instead of silent eviction,
// or with an unbounded cache.
package none

import "github.com/stripedcache/stripedcache/policy"

type nonePolicy[K comparable] struct{}

type none[K comparable] struct{}

// New returns a Policy factory for the no-eviction policy.
func New[K comparable]() policy.Policy[K] { return nonePolicy[K]{} }

func (nonePolicy[K]) New(policy.Hooks[K]) policy.ShardPolicy[K] { return none[K]{} }

func (none[K]) OnInsert(policy.Node[K]) {}
func (none[K]) OnAccess(policy.Node[K]) {}
func (none[K]) OnUpdate(policy.Node[K]) {}
func (none[K]) OnRemove(policy.Node[K]) {}

// SelectVictim always declines; the shard turns that into ErrCapacityExceeded.
func (none[K]) SelectVictim() (policy.Node[K], bool) { return nil, false }

func (none[K]) Reset() {}
