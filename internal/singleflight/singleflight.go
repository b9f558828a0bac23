// Package singleflight coalesces concurrent function calls per key so that
// the work runs at most once while everyone waits for the shared result.
//
// The cache cannot use golang.org/x/sync/singleflight here: that Group is
// string-keyed, and funneling arbitrary comparable keys through a string (or
// their 64-bit hash) can collide and hand a caller the result computed for a
// different key. Keeping the group generic makes that impossible.
package singleflight

import (
	"context"
	"sync"
)

// Group deduplicates concurrent Do calls by key. The zero value is ready to
// use.
type Group[K comparable, V any] struct {
	mu       sync.Mutex
	inflight map[K]*flight[V]
}

// flight is one in-progress call. The leader publishes val/err and then
// closes done; the close is the happens-before edge that makes the published
// values visible to every waiter.
type flight[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Do executes fn once per key among concurrent callers: the first caller
// becomes the leader and runs fn, later callers block until the leader
// publishes. A waiter whose ctx is cancelled unblocks alone with ctx.Err();
// the leader keeps running, so cancellation of the underlying work must be
// handled inside fn if it is wanted.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[K]*flight[V])
	}
	if f, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		return g.wait(ctx, f)
	}
	f := &flight[V]{done: make(chan struct{})}
	g.inflight[key] = f
	g.mu.Unlock()

	f.val, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()

	return f.val, f.err
}

func (g *Group[K, V]) wait(ctx context.Context, f *flight[V]) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
