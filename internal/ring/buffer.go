// Package ring implements the bounded FIFO buffers of spec.md §4.5: fixed
// capacity, monotonic ids, eviction of the oldest entry when full, and a
// waiter queue supporting long-poll semantics. LogBuffer and NetBuffer are
// thin, type-specific wrappers over a shared generic core so the waiter
// and eviction logic is written once.
package ring

import (
	"sync"
	"time"
)

const (
	DefaultCapacity  = 50000
	DefaultListLimit = 500
	MaxListLimit     = 5000
	DefaultWaitMs    = 25000
	MinWaitMs        = 1000
	MaxWaitMs        = 120000
)

// entry pairs a stored value with the monotonic id assigned to it.
type entry[T any] struct {
	id    int64
	value T
}

// Buffer is a bounded FIFO of T with long-poll waiters, generic over the
// stored type so LogEvent and NetworkRequestSummary share one
// implementation (spec.md §4.5).
type Buffer[T any] struct {
	mu      sync.Mutex
	cap     int
	nextID  int64
	entries []entry[T]
	waiters []*waiter[T]
}

type waiter[T any] struct {
	afterID int64
	filter  func(T) bool
	limit   int
	resultC chan result[T]
}

// result carries a matched batch plus the id of its last element, so
// WaitForAfter never has to re-derive nextAfter from the buffer after the
// waiter channel has already delivered a snapshot.
type result[T any] struct {
	values []T
	lastID int64
}

// New returns a Buffer with the given capacity (DefaultCapacity if cap<=0).
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer[T]{cap: capacity}
}

// Add assigns the next monotonic id to value, appends it, evicts the
// oldest entry if over capacity, and wakes any waiters whose filter
// matches — all waiters that match are released with the full matching
// batch, edge-triggered and batched per spec.md §5.
func (b *Buffer[T]) Add(value T) int64 {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.entries = append(b.entries, entry[T]{id: id, value: value})
	if len(b.entries) > b.cap {
		b.entries = b.entries[len(b.entries)-b.cap:]
	}

	var stillWaiting []*waiter[T]
	for _, w := range b.waiters {
		values, lastID := b.collectAfterLocked(w.afterID, w.filter, w.limit)
		if len(values) > 0 {
			w.resultC <- result[T]{values: values, lastID: lastID}
			close(w.resultC)
			continue
		}
		stillWaiting = append(stillWaiting, w)
	}
	b.waiters = stillWaiting
	b.mu.Unlock()
	return id
}

// ListAfter returns the oldest entries with id > afterID matching filter,
// up to limit (DefaultListLimit if <=0, clamped to MaxListLimit), plus the
// id of the last returned entry (or afterID if none matched).
func (b *Buffer[T]) ListAfter(afterID int64, filter func(T) bool, limit int) ([]T, int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	limit = clampLimit(limit)
	values, lastID := b.collectAfterLocked(afterID, filter, limit)
	if len(values) == 0 {
		return values, afterID
	}
	return values, lastID
}

// collectAfterLocked must be called with b.mu held. It returns the
// matching values in id order plus the id of the last matched entry.
func (b *Buffer[T]) collectAfterLocked(afterID int64, filter func(T) bool, limit int) ([]T, int64) {
	var out []T
	var lastID int64
	for _, e := range b.entries {
		if e.id <= afterID {
			continue
		}
		if filter != nil && !filter(e.value) {
			continue
		}
		out = append(out, e.value)
		lastID = e.id
		if len(out) >= limit {
			break
		}
	}
	return out, lastID
}

// WaitForAfter returns immediately if matching entries already exist;
// otherwise parks a waiter until new matching entries arrive or timeoutMs
// elapses (clamped to [MinWaitMs, MaxWaitMs], default DefaultWaitMs).
func (b *Buffer[T]) WaitForAfter(afterID int64, filter func(T) bool, limit int, timeoutMs int) (events []T, nextAfter int64, timedOut bool) {
	limit = clampLimit(limit)
	timeout := clampWaitMs(timeoutMs)

	b.mu.Lock()
	values, lastID := b.collectAfterLocked(afterID, filter, limit)
	if len(values) > 0 {
		b.mu.Unlock()
		return values, lastID, false
	}
	w := &waiter[T]{afterID: afterID, filter: filter, limit: limit, resultC: make(chan result[T], 1)}
	b.waiters = append(b.waiters, w)
	b.mu.Unlock()

	select {
	case res := <-w.resultC:
		return res.values, res.lastID, false
	case <-time.After(timeout):
		b.removeWaiter(w)
		return nil, afterID, true
	}
}

func (b *Buffer[T]) removeWaiter(target *waiter[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.waiters {
		if w == target {
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			break
		}
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func clampWaitMs(ms int) time.Duration {
	if ms <= 0 {
		ms = DefaultWaitMs
	}
	if ms < MinWaitMs {
		ms = MinWaitMs
	}
	if ms > MaxWaitMs {
		ms = MaxWaitMs
	}
	return time.Duration(ms) * time.Millisecond
}

// Len returns the current number of stored entries.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// HighWaterMark returns the most recently assigned id.
func (b *Buffer[T]) HighWaterMark() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextID
}
