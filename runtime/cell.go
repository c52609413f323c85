package runtime

import "sync"

// Cell is the shared-ownership, interior-mutability handle spec §9 calls
// for: every locally created global/table/memory/callable must be
// reachable by index from the store, by name from the export map, and (for
// functions) from element segments, all at once. Go's pointers already
// give us the sharing; Cell adds the runtime-checked borrow discipline
// described in spec §5/§9 ("at most one active writer per entity ...
// attempting to take a writer while a reader exists is a bug") on top,
// using sync.RWMutex's non-blocking TryLock/TryRLock so a misuse panics
// immediately instead of deadlocking the single cooperative thread.
type Cell[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewCell wraps v for shared, borrow-checked access.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// Borrow takes a shared read handle, returning the value and a release
// function the caller must call when done (the same shape as
// context.WithCancel's cancel function). Panics if the cell is currently
// held exclusively.
func (c *Cell[T]) Borrow() (*T, func()) {
	if !c.mu.TryRLock() {
		panic("runtime: borrow while exclusively held")
	}
	return &c.v, c.mu.RUnlock
}

// BorrowMut takes the exclusive write handle. Panics if the cell is
// currently borrowed in any form (shared or exclusive) — this is the
// "call_indirect borrows a table while the callee also writes to it" case
// spec §5 calls out: the borrow must be released before re-entering.
func (c *Cell[T]) BorrowMut() (*T, func()) {
	if !c.mu.TryLock() {
		panic("runtime: borrow_mut while already borrowed")
	}
	return &c.v, c.mu.Unlock
}
