// Package mailbox implements the single-producer/single-consumer handoff
// the design notes call for in place of the source's unsynchronized
// shared record: a sequence-locked slot that the writer never blocks on
// and the reader retries if it observes a torn update.
package mailbox

import "sync/atomic"

// Box publishes the latest value of T from exactly one writer goroutine to
// exactly one reader goroutine without blocking either side.
type Box[T any] struct {
	seq   atomic.Uint64
	value T
	valid atomic.Bool
}

// New returns an empty Box.
func New[T any]() *Box[T] {
	return &Box[T]{}
}

// Publish stores v as the latest value. Safe to call only from the Box's
// single writer goroutine.
func (b *Box[T]) Publish(v T) {
	b.seq.Add(1) // odd: write in progress
	b.value = v
	b.valid.Store(true)
	b.seq.Add(1) // even: write complete
}

// Load returns the most recently published value and true, or the zero
// value and false if nothing has been published yet. Safe to call only
// from the Box's single reader goroutine.
func (b *Box[T]) Load() (T, bool) {
	for {
		s1 := b.seq.Load()
		if s1&1 != 0 {
			continue // writer mid-publish, retry
		}
		v := b.value
		s2 := b.seq.Load()
		if s1 == s2 {
			return v, b.valid.Load()
		}
	}
}
