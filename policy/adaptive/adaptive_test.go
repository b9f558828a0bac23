package adaptive

import (
	"testing"

	"github.com/stripedcache/stripedcache/policy"
)

type testNode[K comparable] struct {
	key    K
	seq    uint64
	access int64
	freq   uint64
}

func (n *testNode[K]) Key() K            { return n.key }
func (n *testNode[K]) Seq() uint64       { return n.seq }
func (n *testNode[K]) LastAccess() int64 { return n.access }
func (n *testNode[K]) Frequency() uint64 { return n.freq }
func (n *testNode[K]) Size() int64       { return 0 }
func (n *testNode[K]) ExpiresAt() int64  { return 0 }
func (n *testNode[K]) Touch(tick int64)  { n.access = tick }
func (n *testNode[K]) Bump()             { n.freq++ }

type mockHooks[K comparable] struct {
	nodes []policy.Node[K] // front (MRU) .. back (LRU)
	tick  int64
}

func (h *mockHooks[K]) MoveToFront(n policy.Node[K]) {
	for i, x := range h.nodes {
		if x == n {
			copy(h.nodes[1:i+1], h.nodes[:i])
			h.nodes[0] = n
			return
		}
	}
}

func (h *mockHooks[K]) Back() policy.Node[K] {
	if len(h.nodes) == 0 {
		return nil
	}
	return h.nodes[len(h.nodes)-1]
}

func (h *mockHooks[K]) Len() int { return len(h.nodes) }

func (h *mockHooks[K]) Range(fn func(policy.Node[K]) bool) {
	for _, n := range h.nodes {
		if !fn(n) {
			return
		}
	}
}

func (h *mockHooks[K]) Now() int64  { return 0 }
func (h *mockHooks[K]) Tick() int64 { h.tick++; return h.tick }

// remove mimics the shard: unlink the node and notify the policy.
func (h *mockHooks[K]) remove(p policy.ShardPolicy[K], n policy.Node[K]) {
	p.OnRemove(n)
	for i, x := range h.nodes {
		if x == n {
			h.nodes = append(h.nodes[:i], h.nodes[i+1:]...)
			return
		}
	}
}

// Fresh instances start in recency mode: the victim is the list back, exactly
// like LRU.
func TestAdaptive_StartsInRecencyMode(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string](0).New(h)

	if _, ok := p.SelectVictim(); ok {
		t.Fatalf("empty shard must produce no victim")
	}

	a := &testNode[string]{key: "a", seq: 1}
	b := &testNode[string]{key: "b", seq: 2}
	h.nodes = []policy.Node[string]{b, a}

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "a" {
		t.Fatalf("recency mode must pick the back node, got %v ok=%v", v, ok)
	}
}

// A miss on a recency-evicted ghost charges the recency mode and flips victim
// selection to frequency order.
func TestAdaptive_RegretFlipsToFrequency(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string](8).New(h)
	mo := p.(policy.MissObserver[string])

	old := &testNode[string]{key: "old", seq: 1}
	hot := &testNode[string]{key: "hot", seq: 2}
	h.nodes = []policy.Node[string]{hot, old}
	p.OnInsert(old)
	p.OnInsert(hot)
	p.OnAccess(hot)
	p.OnAccess(hot)

	// Recency mode evicts "old" (the back node) despite "hot" being hotter.
	v, ok := p.SelectVictim()
	if !ok || v.Key() != "old" {
		t.Fatalf("recency victim must be old, got %v ok=%v", v, ok)
	}
	h.remove(p, v)

	// The evicted key comes back as a miss: recency regrets, frequency does
	// not, so the mode flips.
	mo.OnMiss("old")

	cold := &testNode[string]{key: "cold", seq: 3}
	h.nodes = append([]policy.Node[string]{cold}, h.nodes...)
	p.OnInsert(cold) // freq 1; "hot" has freq 3

	v, ok = p.SelectVictim()
	if !ok || v.Key() != "cold" {
		t.Fatalf("frequency mode must pick the least used entry, got %v ok=%v", v, ok)
	}
}

// Misses on keys that were never ghosted charge neither mode and leave the
// selection order alone.
func TestAdaptive_UnrelatedMissKeepsMode(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string](8).New(h)
	mo := p.(policy.MissObserver[string])

	a := &testNode[string]{key: "a", seq: 1}
	b := &testNode[string]{key: "b", seq: 2}
	h.nodes = []policy.Node[string]{b, a}
	p.OnInsert(a)
	p.OnInsert(b)
	p.OnAccess(b)

	mo.OnMiss("stranger")
	mo.OnMiss("another")

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "a" {
		t.Fatalf("mode must remain recency, got %v ok=%v", v, ok)
	}
}

// A user-initiated removal (not chosen by SelectVictim) is never ghosted:
// missing that key later blames no mode.
func TestAdaptive_UserRemovalNotGhosted(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string](8).New(h)
	mo := p.(policy.MissObserver[string])

	a := &testNode[string]{key: "a", seq: 1}
	b := &testNode[string]{key: "b", seq: 2}
	h.nodes = []policy.Node[string]{b, a}
	p.OnInsert(a)
	p.OnInsert(b)
	p.OnAccess(b)
	p.OnAccess(b)

	h.remove(p, a) // plain delete, no SelectVictim involved
	mo.OnMiss("a")

	// Still recency mode: victim is the current back node.
	v, ok := p.SelectVictim()
	if !ok || v.Key() != "b" {
		t.Fatalf("user removal must not charge a mode, got %v ok=%v", v, ok)
	}
}

// Reset drops ghosts and returns to recency mode.
func TestAdaptive_Reset(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string](8).New(h)
	mo := p.(policy.MissObserver[string])

	old := &testNode[string]{key: "old", seq: 1}
	hot := &testNode[string]{key: "hot", seq: 2}
	h.nodes = []policy.Node[string]{hot, old}
	p.OnInsert(old)
	p.OnInsert(hot)
	p.OnAccess(hot)

	v, _ := p.SelectVictim()
	h.remove(p, v)
	mo.OnMiss("old") // flips to frequency

	p.Reset()

	// Back in recency mode after Reset.
	a := &testNode[string]{key: "a", seq: 3}
	h.nodes = append(h.nodes, a) // back position
	if v, ok := p.SelectVictim(); !ok || v.Key() != "a" {
		t.Fatalf("Reset must restore recency mode, got %v ok=%v", v, ok)
	}
}

// The ghost table is bounded: old ghosts fall off and stop influencing mode
// choice.
func TestAdaptive_GhostTableBounded(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string](1).New(h) // single ghost slot
	mo := p.(policy.MissObserver[string])

	first := &testNode[string]{key: "first", seq: 1}
	second := &testNode[string]{key: "second", seq: 2}
	h.nodes = []policy.Node[string]{second, first}
	p.OnInsert(first)
	p.OnInsert(second)

	v, _ := p.SelectVictim() // evicts "first", ghosted
	h.remove(p, v)
	v, _ = p.SelectVictim() // evicts "second", displaces "first" ghost
	h.remove(p, v)

	mo.OnMiss("first") // no longer ghosted, charges nobody

	third := &testNode[string]{key: "third", seq: 3}
	h.nodes = []policy.Node[string]{third}
	if v, ok := p.SelectVictim(); !ok || v.Key() != "third" {
		t.Fatalf("mode must remain recency, got %v ok=%v", v, ok)
	}
}
