package cache

import "github.com/stripedcache/stripedcache/internal/util"

// Stats is a point-in-time snapshot of the cache counters, aggregated across
// shards. Counters only grow; ResetStats is the single way to zero them.
//
// Evictions counts capacity- and size-pressure removals; Expirations counts
// TTL removals separately so capacity churn and time churn stay
// distinguishable. Explicit Remove calls are counted by neither.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Insertions  uint64
	Evictions   uint64
	Expirations uint64
}

// Lookups returns the total number of Get-class calls observed.
func (s Stats) Lookups() uint64 { return s.Hits + s.Misses }

// HitRate returns Hits / Lookups, or 0 when nothing was looked up yet.
func (s Stats) HitRate() float64 {
	if l := s.Lookups(); l > 0 {
		return float64(s.Hits) / float64(l)
	}
	return 0
}

// MissRate returns Misses / Lookups, or 0 when nothing was looked up yet.
func (s Stats) MissRate() float64 {
	if l := s.Lookups(); l > 0 {
		return float64(s.Misses) / float64(l)
	}
	return 0
}

// shardStats holds one shard's counters on dedicated cache lines. All methods
// are safe on a nil receiver, which is how DisableStats is implemented: a
// shard without stats simply carries a nil pointer and every record becomes a
// no-op.
type shardStats struct {
	hits    util.PaddedAtomicUint64
	misses  util.PaddedAtomicUint64
	inserts util.PaddedAtomicUint64
	evicts  util.PaddedAtomicUint64
	expired util.PaddedAtomicUint64
}

func (s *shardStats) hit() {
	if s != nil {
		s.hits.Add(1)
	}
}

func (s *shardStats) miss() {
	if s != nil {
		s.misses.Add(1)
	}
}

func (s *shardStats) insert() {
	if s != nil {
		s.inserts.Add(1)
	}
}

func (s *shardStats) evict(reason EvictReason) {
	if s == nil {
		return
	}
	if reason == EvictExpired {
		s.expired.Add(1)
	} else {
		s.evicts.Add(1)
	}
}

// snapshot adds this shard's counters into agg.
func (s *shardStats) snapshot(agg *Stats) {
	if s == nil {
		return
	}
	agg.Hits += s.hits.Load()
	agg.Misses += s.misses.Load()
	agg.Insertions += s.inserts.Load()
	agg.Evictions += s.evicts.Load()
	agg.Expirations += s.expired.Load()
}

func (s *shardStats) reset() {
	if s == nil {
		return
	}
	s.hits.Store(0)
	s.misses.Store(0)
	s.inserts.Store(0)
	s.evicts.Store(0)
	s.expired.Store(0)
}
