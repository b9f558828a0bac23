package ttlfirst

import (
	"testing"

	"github.com/stripedcache/stripedcache/policy"
	"github.com/stripedcache/stripedcache/policy/lru"
)

type testNode[K comparable] struct {
	key    K
	seq    uint64
	access int64
	freq   uint64
	size   int64
	exp    int64
}

func (n *testNode[K]) Key() K            { return n.key }
func (n *testNode[K]) Seq() uint64       { return n.seq }
func (n *testNode[K]) LastAccess() int64 { return n.access }
func (n *testNode[K]) Frequency() uint64 { return n.freq }
func (n *testNode[K]) Size() int64       { return n.size }
func (n *testNode[K]) ExpiresAt() int64  { return n.exp }
func (n *testNode[K]) Touch(tick int64)  { n.access = tick }
func (n *testNode[K]) Bump()             { n.freq++ }

type mockHooks[K comparable] struct {
	nodes []policy.Node[K] // front (MRU) .. back (LRU)
	moves int
	now   int64
	tick  int64
}

func (h *mockHooks[K]) MoveToFront(n policy.Node[K]) {
	h.moves++
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

func (h *mockHooks[K]) Now() int64  { return h.now }
func (h *mockHooks[K]) Tick() int64 { h.tick++; return h.tick }

// An expired entry beats the base policy's choice, and among several expired
// entries the earliest deadline goes first.
func TestTTLFirst_ExpiredBeatsBase(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{now: 100}
	p := New(lru.New[string]()).New(h)

	lruVictim := &testNode[string]{key: "lru-victim", exp: 0} // never expires
	expLate := &testNode[string]{key: "late", exp: 90}
	expEarly := &testNode[string]{key: "early", exp: 50}
	h.nodes = []policy.Node[string]{expLate, expEarly, lruVictim} // lru-victim at back

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "early" {
		t.Fatalf("earliest expired must win, got %v ok=%v", v, ok)
	}
}

// With nothing expired the decorator is transparent: the base policy picks.
func TestTTLFirst_FallsBackToBase(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{now: 100}
	p := New(lru.New[string]()).New(h)

	a := &testNode[string]{key: "a", exp: 500} // alive
	b := &testNode[string]{key: "b", exp: 0}   // no TTL
	h.nodes = []policy.Node[string]{b, a}      // a is LRU

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "a" {
		t.Fatalf("base LRU must pick the back node, got %v ok=%v", v, ok)
	}
}

// A deadline exactly at now counts as expired.
func TestTTLFirst_DeadlineAtNow(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{now: 100}
	p := New(lru.New[string]()).New(h)

	n := &testNode[string]{key: "edge", exp: 100}
	h.nodes = []policy.Node[string]{n}

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "edge" {
		t.Fatalf("deadline == now must count as expired, got %v ok=%v", v, ok)
	}
}

// Access notifications pass through to the base policy (LRU promotion).
func TestTTLFirst_DelegatesToBase(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{now: 100}
	p := New(lru.New[string]()).New(h)

	a := &testNode[string]{key: "a"}
	b := &testNode[string]{key: "b"}
	h.nodes = []policy.Node[string]{b, a}

	p.OnAccess(a)
	if h.moves != 1 {
		t.Fatalf("OnAccess must reach the base policy")
	}
	if v, ok := p.SelectVictim(); !ok || v.Key() != "b" {
		t.Fatalf("promotion must be reflected in the next selection, got %v ok=%v", v, ok)
	}
}
