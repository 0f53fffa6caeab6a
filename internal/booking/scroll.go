package booking

import "sync"

// ScrollLock disables background page scrolling while the booking form is
// shown. Acquire and Release are idempotent.
type ScrollLock interface {
	Acquire()
	Release()
	Enabled() bool
}

// PageScroll is a boolean scroll guard. A released lock always means the page
// scrolls, no matter how many times Acquire was called before.
type PageScroll struct {
	mu     sync.Mutex
	locked bool
}

// NewPageScroll returns a guard in the given state, used when a flow is
// rebuilt from a stored session.
func NewPageScroll(locked bool) *PageScroll {
	return &PageScroll{locked: locked}
}

func (p *PageScroll) Acquire() {
	p.mu.Lock()
	p.locked = true
	p.mu.Unlock()
}

func (p *PageScroll) Release() {
	p.mu.Lock()
	p.locked = false
	p.mu.Unlock()
}

// Enabled reports whether the page can scroll.
func (p *PageScroll) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.locked
}
