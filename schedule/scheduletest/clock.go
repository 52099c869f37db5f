// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package scheduletest provides clocks for tests of time-dependent code
package scheduletest

import (
	"sync"
	"time"
)

// ManualClock only moves when told to. Timers created with After fire once
// the clock is advanced to or past their deadline.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
	added   chan struct{}
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now, added: make(chan struct{}, 64)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	at := c.now.Add(d)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, waiter{at: at, ch: ch})

	select {
	case c.added <- struct{}{}:
	default:
	}
	return ch
}

// Advance moves the clock forward and fires every timer that came due
func (c *ManualClock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// Set jumps the clock to t (which may be in the past) and fires due timers
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.at.After(t) {
			w.ch <- t
			continue
		}
		pending = append(pending, w)
	}
	c.waiters = pending
}

// Waiters returns the number of timers that have not fired yet
func (c *ManualClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// BlockUntil waits until at least n timers are pending or the timeout expires.
// It reports whether the count was reached.
func (c *ManualClock) BlockUntil(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if c.Waiters() >= n {
			return true
		}
		select {
		case <-c.added:
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			return c.Waiters() >= n
		}
	}
}

// SteppingClock returns the given instants in order, one per Now call, and
// then keeps returning the last one.
type SteppingClock struct {
	mu    sync.Mutex
	times []time.Time
	reads int
}

func NewSteppingClock(times ...time.Time) *SteppingClock {
	return &SteppingClock{times: times}
}

func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.reads
	if i >= len(c.times) {
		i = len(c.times) - 1
	}
	c.reads++
	return c.times[i]
}

func (c *SteppingClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Reads returns how many times Now was called
func (c *SteppingClock) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
