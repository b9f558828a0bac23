package cache

import "time"

// OpKind identifies one batch operation.
type OpKind uint8

const (
	OpSet OpKind = iota
	OpGet
	OpRemove
)

// String returns "set", "get" or "remove".
func (k OpKind) String() string {
	switch k {
	case OpGet:
		return "get"
	case OpRemove:
		return "remove"
	default:
		return "set"
	}
}

// Op is one operation in a batch. Value is used by OpSet only; TTL overrides
// DefaultTTL for that set when positive.
type Op[K comparable, V any] struct {
	Kind  OpKind
	Key   K
	Value V
	TTL   time.Duration
}

// OpResult reports the outcome of one batch operation.
//   - OpSet: Err is nil on success (ErrCapacityExceeded and friends
//     otherwise).
//   - OpGet: Found tells whether the key was live; Value carries the hit.
//   - OpRemove: Found tells whether anything was removed; Value carries the
//     removed value. An absent key is a normal outcome, Err stays nil.
type OpResult[K comparable, V any] struct {
	Key   K
	Kind  OpKind
	Value V
	Found bool
	Err   error
}

// BatchResult is the per-key outcome report of ApplyBatch, in the same order
// as the submitted operations.
type BatchResult[K comparable, V any] struct {
	Results []OpResult[K, V]
}

// Failed returns the results that carry an error.
func (r BatchResult[K, V]) Failed() []OpResult[K, V] {
	var out []OpResult[K, V]
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Ok reports whether every operation in the batch succeeded.
func (r BatchResult[K, V]) Ok() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// ApplyBatch applies each operation independently to the shard its key routes
// to, taking that shard's lock only for the duration of the one operation.
// A batch is not a cross-key transaction: a failing operation (say, a set
// hitting ErrCapacityExceeded under the no-eviction policy) is reported in
// its slot while every other operation proceeds, and nothing is rolled back.
func (c *cache[K, V]) ApplyBatch(ops []Op[K, V]) BatchResult[K, V] {
	results := make([]OpResult[K, V], len(ops))
	for i, op := range ops {
		res := OpResult[K, V]{Key: op.Key, Kind: op.Kind}
		switch op.Kind {
		case OpGet:
			res.Value, res.Found = c.Get(op.Key)
		case OpRemove:
			if c.closed.Load() {
				res.Err = ErrClosed
				break
			}
			res.Value, res.Found = c.Remove(op.Key)
		default:
			if op.TTL > 0 {
				res.Err = c.SetWithTTL(op.Key, op.Value, op.TTL)
			} else {
				res.Err = c.Set(op.Key, op.Value)
			}
			res.Found = res.Err == nil
		}
		results[i] = res
	}
	return BatchResult[K, V]{Results: results}
}
