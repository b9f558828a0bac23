// Package adaptive implements a policy that switches between recency-based
// (LRU-like) and frequency-based (LFU-like) victim selection depending on
// which mode has been making fewer mistakes recently.
//
// A mistake is detected through a bounded ghost table: when a victim is
// evicted, its key is remembered together with the mode that chose it. A later
// miss on a ghosted key means that eviction was regrettable. Each mode's
// regret is tracked with an exponentially weighted moving average, and the
// mode with the lower regret picks the next victim. This is a simplified
// ARC-style adaptation.
package adaptive

import (
	"container/list"

	"github.com/VividCortex/ewma"

	"github.com/stripedcache/stripedcache/policy"
)

type mode int

const (
	recency mode = iota
	frequency
)

// DefaultGhostCap bounds the ghost table when no explicit capacity is given.
const DefaultGhostCap = 256

type adaptivePolicy[K comparable] struct {
	ghostCap int
}

// New returns a Policy factory for the adaptive policy. ghostCap bounds the
// per-shard table of remembered victims; values below 1 fall back to
// DefaultGhostCap.
func New[K comparable](ghostCap int) policy.Policy[K] {
	if ghostCap < 1 {
		ghostCap = DefaultGhostCap
	}
	return adaptivePolicy[K]{ghostCap: ghostCap}
}

func (p adaptivePolicy[K]) New(h policy.Hooks[K]) policy.ShardPolicy[K] {
	a := &adaptive[K]{
		h:        h,
		ghostCap: p.ghostCap,
	}
	a.reset()
	return a
}

type ghostEntry[K comparable] struct {
	key K
	by  mode
}

type adaptive[K comparable] struct {
	h        policy.Hooks[K]
	mode     mode
	regret   [2]ewma.MovingAverage
	ghostCap int

	// Ghosts: keys of recent victims, newest at the list front.
	order  *list.List
	ghosts map[K]*list.Element

	// Key selected by the last SelectVictim call; its OnRemove is an
	// eviction (and gets ghosted), any other OnRemove is a user delete.
	pending    K
	pendingSet bool
}

// OnInsert maintains both rankings: the shard list head position provides
// recency, the node counter provides frequency. A re-inserted ghost is no
// longer a ghost.
func (a *adaptive[K]) OnInsert(n policy.Node[K]) {
	n.Bump()
	n.Touch(a.h.Tick())
	a.dropGhost(n.Key())
}

func (a *adaptive[K]) OnAccess(n policy.Node[K]) {
	n.Bump()
	n.Touch(a.h.Tick())
	a.h.MoveToFront(n)
}

func (a *adaptive[K]) OnUpdate(n policy.Node[K]) { a.OnAccess(n) }

func (a *adaptive[K]) OnRemove(n policy.Node[K]) {
	k := n.Key()
	if a.pendingSet && k == a.pending {
		a.pendingSet = false
		a.addGhost(k, a.mode)
		return
	}
	// User-initiated removal: the key's history is gone for good.
	a.dropGhost(k)
}

// OnMiss implements policy.MissObserver. A miss on a ghosted key charges the
// mode that evicted it; every miss feeds both averages so they stay
// comparable.
func (a *adaptive[K]) OnMiss(k K) {
	culprit, ghosted := mode(0), false
	if el, ok := a.ghosts[k]; ok {
		culprit = el.Value.(ghostEntry[K]).by
		ghosted = true
		a.order.Remove(el)
		delete(a.ghosts, k)
	}
	for m := range a.regret {
		if ghosted && mode(m) == culprit {
			a.regret[m].Add(1)
		} else {
			a.regret[m].Add(0)
		}
	}
	if a.regret[frequency].Value() < a.regret[recency].Value() {
		a.mode = frequency
	} else {
		a.mode = recency
	}
}

func (a *adaptive[K]) SelectVictim() (policy.Node[K], bool) {
	var victim policy.Node[K]
	if a.mode == recency {
		victim = a.h.Back()
	} else {
		a.h.Range(func(n policy.Node[K]) bool {
			if victim == nil || lessFrequent(n, victim) {
				victim = n
			}
			return true
		})
	}
	if victim == nil {
		return nil, false
	}
	a.pending = victim.Key()
	a.pendingSet = true
	return victim, true
}

func (a *adaptive[K]) Reset() { a.reset() }

func (a *adaptive[K]) reset() {
	a.mode = recency
	a.regret[recency] = ewma.NewMovingAverage()
	a.regret[frequency] = ewma.NewMovingAverage()
	a.order = list.New()
	a.ghosts = make(map[K]*list.Element)
	a.pendingSet = false
}

func (a *adaptive[K]) addGhost(k K, by mode) {
	if el, ok := a.ghosts[k]; ok {
		a.order.Remove(el)
	}
	a.ghosts[k] = a.order.PushFront(ghostEntry[K]{key: k, by: by})
	for a.order.Len() > a.ghostCap {
		tail := a.order.Back()
		if tail == nil {
			break
		}
		delete(a.ghosts, tail.Value.(ghostEntry[K]).key)
		a.order.Remove(tail)
	}
}

func (a *adaptive[K]) dropGhost(k K) {
	if el, ok := a.ghosts[k]; ok {
		a.order.Remove(el)
		delete(a.ghosts, k)
	}
}

func lessFrequent[K comparable](x, y policy.Node[K]) bool {
	if x.Frequency() != y.Frequency() {
		return x.Frequency() < y.Frequency()
	}
	if x.LastAccess() != y.LastAccess() {
		return x.LastAccess() < y.LastAccess()
	}
	return x.Seq() < y.Seq()
}

var _ policy.MissObserver[string] = (*adaptive[string])(nil)
