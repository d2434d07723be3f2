package util

import (
	"math/rand"
	"time"
)

// Backoff produces a bounded exponential sequence of delays (doubling from
// Base up to Max, without jitter). The registry lock protocol and the CDP
// source's reconnection schedule use LockStepDelay and ReconnectDelay
// below, not Backoff.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
	n    int
}

// NewBackoff creates a Backoff starting at base, capped at max.
func NewBackoff(base, max time.Duration) *Backoff {
	return &Backoff{Base: base, Max: max}
}

// Next returns the next delay in the sequence and advances the internal
// attempt counter.
func (b *Backoff) Next() time.Duration {
	b.n++
	d := b.Base << uint(b.n-1)
	if d <= 0 || d > b.Max {
		d = b.Max
	}
	return d
}

// Reset restarts the sequence from the first attempt.
func (b *Backoff) Reset() { b.n = 0 }

// LockStepDelay implements the lockfile acquisition backoff of spec.md
// §4.1: base 25ms * attempt, plus up to 25ms random jitter, capped at
// 200ms per step.
func LockStepDelay(attempt int) time.Duration {
	d := time.Duration(attempt) * 25 * time.Millisecond
	d += time.Duration(rand.Intn(25)) * time.Millisecond
	if d > 200*time.Millisecond {
		d = 200 * time.Millisecond
	}
	return d
}

// ReconnectDelay implements the CDP source's reconnection schedule of
// spec.md §4.3: 250ms, 500ms, 1s, capped at 5s.
func ReconnectDelay(attempt int) time.Duration {
	schedule := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}
	if attempt <= 0 {
		attempt = 1
	}
	if attempt > len(schedule) {
		return 5 * time.Second
	}
	return schedule[attempt-1]
}
