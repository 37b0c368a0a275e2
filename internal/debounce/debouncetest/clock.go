// Package debouncetest provides a manually driven clock for debounce tests.
package debouncetest

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/debounce"
)

// Clock only moves when Advance is called. Due callbacks run synchronously
// on the goroutine calling Advance, in deadline order.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*timer
}

type timer struct {
	clock   *Clock
	at      time.Duration
	seq     int
	f       func()
	stopped bool
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	was := !t.stopped
	t.stopped = true
	return was
}

func New() *Clock {
	return &Clock{}
}

// Now is the elapsed fake time since New.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &timer{clock: c, at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Pending counts scheduled timers that have neither fired nor been stopped.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer that becomes due.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.stopped = true
		c.mu.Unlock()

		next.f()
	}
}

func (c *Clock) nextDueLocked(target time.Duration) *timer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.timers = live

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at != c.timers[j].at {
			return c.timers[i].at < c.timers[j].at
		}
		return c.timers[i].seq < c.timers[j].seq
	})

	if len(c.timers) == 0 || c.timers[0].at > target {
		return nil
	}
	return c.timers[0]
}
