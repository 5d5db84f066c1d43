package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestFixedWindowAllowsUpToMaxThenDenies(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewFixedWindow(3, 600000*time.Millisecond, WithClock(clock.Now))

	assert.True(t, l.Allow("guest@example.com"))
	assert.True(t, l.Allow("guest@example.com"))
	assert.True(t, l.Allow("guest@example.com"))
	assert.False(t, l.Allow("guest@example.com"))
	assert.Equal(t, 3, l.Attempts("guest@example.com"), "denied attempts are not counted")

	clock.Advance(10*time.Minute + time.Millisecond)

	require.True(t, l.Allow("guest@example.com"))
	assert.Equal(t, 1, l.Attempts("guest@example.com"))
}

func TestFixedWindowBoundaryIsInclusive(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewFixedWindow(1, time.Minute, WithClock(clock.Now))

	require.True(t, l.Allow("k"))
	clock.Advance(time.Minute)
	assert.False(t, l.Allow("k"), "window resets only once now is past the reset time")
	clock.Advance(time.Nanosecond)
	assert.True(t, l.Allow("k"))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	l := NewFixedWindow(1, time.Hour)

	assert.True(t, l.Allow("user-a"))
	assert.False(t, l.Allow("user-a"))
	assert.True(t, l.Allow("user-b"))
	assert.True(t, l.Allow("anonymous"))
}

func TestFixedWindowPrune(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewFixedWindow(5, time.Second, WithClock(clock.Now))

	for i := 0; i < 4; i++ {
		l.Allow(fmt.Sprintf("k%d", i))
	}
	clock.Advance(2 * time.Second)

	assert.Equal(t, 4, l.Prune())
	assert.Equal(t, 0, l.Prune())
	l.Allow("fresh")
	assert.Equal(t, 1, l.Attempts("fresh"))
}

func TestFixedWindowConcurrentCallers(t *testing.T) {
	l := NewFixedWindow(10, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestFixedWindowDropsClosedWindowsFromAllow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewFixedWindow(3, time.Minute, WithClock(clock.Now))

	for i := 0; i < 10000; i++ {
		l.Allow(fmt.Sprintf("guest%d@example.com", i))
	}
	clock.Advance(24 * time.Hour)
	require.True(t, l.Allow("late@example.com"))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.records, 1)
	assert.Contains(t, l.records, "late@example.com")
}

func TestFixedWindowSweepKeepsOpenWindows(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewFixedWindow(2, time.Minute, WithClock(clock.Now))

	l.Allow("a")
	clock.Advance(90 * time.Second)
	l.Allow("b")
	l.Allow("b")
	clock.Advance(40 * time.Second)

	assert.False(t, l.Allow("b"), "b's window is still open after a sweep")
	assert.Equal(t, 0, l.Attempts("a"))
}
