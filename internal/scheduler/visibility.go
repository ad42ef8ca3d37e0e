package scheduler

import "sync"

// VisibilityGate is the single source of truth for whether background work
// should run. The UI reports page visibility changes into it; both the price
// ticker and the history scheduler consult it before firing and subscribe to
// re-arm with a catch-up fetch on the hidden-to-visible transition.
type VisibilityGate struct {
	mu      sync.RWMutex
	visible bool

	subMu   sync.Mutex
	subs    map[int]func(bool)
	nextSub int
}

// NewVisibilityGate creates a gate that starts visible, matching a freshly
// loaded page.
func NewVisibilityGate() *VisibilityGate {
	return &VisibilityGate{
		visible: true,
		subs:    make(map[int]func(bool)),
	}
}

// Visible reports whether background work may run.
func (g *VisibilityGate) Visible() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.visible
}

// Set updates the visibility state. Subscribers are notified synchronously
// on an actual transition so timer teardown completes before Set returns.
func (g *VisibilityGate) Set(visible bool) {
	g.mu.Lock()
	if g.visible == visible {
		g.mu.Unlock()
		return
	}
	g.visible = visible
	g.mu.Unlock()

	g.subMu.Lock()
	callbacks := make([]func(bool), 0, len(g.subs))
	for _, fn := range g.subs {
		callbacks = append(callbacks, fn)
	}
	g.subMu.Unlock()

	for _, fn := range callbacks {
		fn(visible)
	}
}

// Subscribe registers a callback for visibility transitions. The returned
// function cancels the subscription.
func (g *VisibilityGate) Subscribe(fn func(visible bool)) func() {
	g.subMu.Lock()
	defer g.subMu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn

	return func() {
		g.subMu.Lock()
		defer g.subMu.Unlock()
		delete(g.subs, id)
	}
}
