package sizebased

import (
	"testing"

	"github.com/stripedcache/stripedcache/policy"
)

type testNode[K comparable] struct {
	key  K
	seq  uint64
	size int64
}

func (n *testNode[K]) Key() K            { return n.key }
func (n *testNode[K]) Seq() uint64       { return n.seq }
func (n *testNode[K]) LastAccess() int64 { return 0 }
func (n *testNode[K]) Frequency() uint64 { return 0 }
func (n *testNode[K]) Size() int64       { return n.size }
func (n *testNode[K]) ExpiresAt() int64  { return 0 }
func (n *testNode[K]) Touch(int64)       {}
func (n *testNode[K]) Bump()             {}

type mockHooks[K comparable] struct {
	nodes []policy.Node[K]
}

func (h *mockHooks[K]) MoveToFront(policy.Node[K]) {}

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
func (h *mockHooks[K]) Tick() int64 { return 0 }

// The heaviest entry is the victim.
func TestSizeBased_SelectVictim_Largest(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string]().New(h)

	if _, ok := p.SelectVictim(); ok {
		t.Fatalf("empty shard must produce no victim")
	}

	small := &testNode[string]{key: "small", seq: 1, size: 10}
	big := &testNode[string]{key: "big", seq: 2, size: 900}
	mid := &testNode[string]{key: "mid", seq: 3, size: 100}
	h.nodes = []policy.Node[string]{small, big, mid}

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "big" {
		t.Fatalf("victim must be the largest entry, got %v ok=%v", v, ok)
	}
}

// Equal sizes: the older insertion loses, deterministically.
func TestSizeBased_SelectVictim_TieBreaksOnSeq(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string]().New(h)

	first := &testNode[string]{key: "first", seq: 1, size: 64}
	second := &testNode[string]{key: "second", seq: 2, size: 64}
	h.nodes = []policy.Node[string]{second, first}

	v, ok := p.SelectVictim()
	if !ok || v.Key() != "first" {
		t.Fatalf("tie must go to the older insertion, got %v ok=%v", v, ok)
	}
}
