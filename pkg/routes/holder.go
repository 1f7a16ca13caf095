package routes

import "sync/atomic"

// Holder publishes the active Table. Tables are never mutated; a reload
// swaps in a new one.
type Holder struct {
	p atomic.Pointer[Table]
}

// NewHolder returns a Holder serving t.
func NewHolder(t *Table) *Holder {
	h := &Holder{}
	h.p.Store(t)
	return h
}

// Table returns the active table.
func (h *Holder) Table() *Table { return h.p.Load() }

// Swap replaces the active table.
func (h *Holder) Swap(t *Table) { h.p.Store(t) }
