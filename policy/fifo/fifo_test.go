package fifo

import (
	"testing"

	"github.com/stripedcache/stripedcache/policy"
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
	nodes []policy.Node[K] // front (newest) .. back (oldest)
	moves int
	tick  int64
}

func (h *mockHooks[K]) MoveToFront(n policy.Node[K]) { h.moves++ }

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

// FIFO never reorders: accesses and updates must not promote the node.
func TestFIFO_NoPromotion(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string]().New(h)

	n := &testNode[string]{key: "k"}
	h.nodes = []policy.Node[string]{n}

	p.OnInsert(n)
	p.OnAccess(n)
	p.OnUpdate(n)
	p.OnRemove(n)

	if h.moves != 0 {
		t.Fatalf("FIFO must never call MoveToFront, got %d calls", h.moves)
	}
}

// The victim is always the oldest insertion regardless of access pattern.
func TestFIFO_SelectVictim_Oldest(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string]().New(h)

	if _, ok := p.SelectVictim(); ok {
		t.Fatalf("empty shard must produce no victim")
	}

	oldest := &testNode[string]{key: "first", seq: 1}
	newest := &testNode[string]{key: "second", seq: 2}
	h.nodes = []policy.Node[string]{newest, oldest}

	p.OnAccess(oldest) // access must not save it

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "first" {
		t.Fatalf("victim must be the oldest insertion, got %v ok=%v", v, ok)
	}
}
