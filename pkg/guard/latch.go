package guard

import "sync"

// Latch is a one-shot ready signal. Waiters receive from Done; Open
// releases all of them, current and future. Opening twice is a no-op.
type Latch struct {
	once sync.Once
	ch   chan struct{}
}

// NewLatch returns a closed (not yet open) latch.
func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Open releases every waiter.
func (l *Latch) Open() {
	l.once.Do(func() { close(l.ch) })
}

// Done is closed once the latch is open.
func (l *Latch) Done() <-chan struct{} { return l.ch }

// IsOpen reports whether Open has been called.
func (l *Latch) IsOpen() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}
