package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for request throttling
type Limiter interface {
	// Allow checks if a request is allowed right now without blocking
	Allow() bool
	// Wait blocks until the limiter allows another request
	Wait()
	// Reset resets the limiter state
	Reset()
}

// FixedInterval enforces a minimum pause between consecutive requests. It is
// a politeness throttle for walking a remote feed, not a retry or backoff
// mechanism.
type FixedInterval struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewFixedInterval creates a limiter that spaces requests at least interval
// apart. A zero or negative interval disables throttling.
func NewFixedInterval(interval time.Duration) *FixedInterval {
	return &FixedInterval{
		interval: interval,
	}
}

// Allow reports whether a request may proceed immediately
func (f *FixedInterval) Allow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if f.last.IsZero() || now.Sub(f.last) >= f.interval {
		f.last = now
		return true
	}

	return false
}

// Wait blocks until the interval since the previous request has elapsed
func (f *FixedInterval) Wait() {
	f.mu.Lock()
	now := time.Now()
	var sleep time.Duration
	if !f.last.IsZero() {
		if elapsed := now.Sub(f.last); elapsed < f.interval {
			sleep = f.interval - elapsed
		}
	}
	// Reserve the slot before sleeping so concurrent callers queue up
	f.last = now.Add(sleep)
	f.mu.Unlock()

	if sleep > 0 {
		time.Sleep(sleep)
	}
}

// Reset clears the limiter so the next request proceeds immediately
func (f *FixedInterval) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.last = time.Time{}
}
