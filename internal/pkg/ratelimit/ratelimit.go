package ratelimit

import (
	"sync"
	"time"
)

// FixedWindow counts attempts per key in discrete windows. A window opens on the first
// attempt for a key and resets once it has elapsed, so up to 2*max attempts can land
// around a window boundary.
type FixedWindow struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	records map[string]*record

	// closed windows are swept from Allow at most once per window
	nextSweep time.Time
}

type record struct {
	count     int
	resetTime time.Time
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) {
		l.now = now
	}
}

func NewFixedWindow(maxAttempts int, window time.Duration, opts ...Option) *FixedWindow {
	l := &FixedWindow{
		max:     maxAttempts,
		window:  window,
		now:     time.Now,
		records: make(map[string]*record),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records an attempt for key and reports whether it is within the limit.
// Denied attempts are not counted.
func (l *FixedWindow) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		l.prune(now)
		l.nextSweep = now.Add(l.window)
	}

	rec, ok := l.records[key]
	if !ok || now.After(rec.resetTime) {
		l.records[key] = &record{count: 1, resetTime: now.Add(l.window)}
		return true
	}
	if rec.count >= l.max {
		return false
	}
	rec.count++
	return true
}

// Attempts returns the attempt count of the current window for key.
func (l *FixedWindow) Attempts(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || l.now().After(rec.resetTime) {
		return 0
	}
	return rec.count
}

// Prune drops records whose window has already closed.
func (l *FixedWindow) Prune() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prune(now)
}

func (l *FixedWindow) prune(now time.Time) int {
	removed := 0
	for key, rec := range l.records {
		if now.After(rec.resetTime) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}
