// Package debounce stabilises a rapidly changing value: the committed value
// only moves once the input has stayed unchanged for the delay.
package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type options struct {
	clock Clock
}

type Option func(*options)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// Debouncer commits the last value passed to Set once the input stopped
// changing for the delay. Each quiet period yields exactly one commit.
type Debouncer[T comparable] struct {
	clock    Clock
	onCommit func(T)

	mu         sync.Mutex
	delay      time.Duration
	input      T
	value      T
	pending    T
	hasPending bool
	gen        uint64
	timer      Timer
	stopped    bool
}

// New creates a debouncer whose committed value starts at initial. onCommit
// may be nil; when set it runs after every commit, outside the lock.
func New[T comparable](initial T, delay time.Duration, onCommit func(T), opts ...Option) *Debouncer[T] {
	o := options{clock: realClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Debouncer[T]{
		clock:    o.clock,
		onCommit: onCommit,
		delay:    delay,
		input:    initial,
		value:    initial,
	}
}

// Set records v and restarts the delay. A previously scheduled commit is
// discarded. Setting the same input again is not a change and leaves any
// running timer alone.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || v == d.input {
		return
	}

	d.input = v
	d.pending = v
	d.hasPending = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Value returns the last committed value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.value
}

// Pending returns the value waiting for its quiet period, if any.
func (d *Debouncer[T]) Pending() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending, d.hasPending
}

// SetDelay changes the delay used by the next Set. A running timer keeps
// its original deadline.
func (d *Debouncer[T]) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.delay = delay
}

func (d *Debouncer[T]) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.delay
}

// Flush commits the pending value immediately. It reports whether anything
// was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.hasPending || d.stopped {
		d.mu.Unlock()
		return false
	}
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v := d.commitLocked()
	d.mu.Unlock()

	d.notify(v)
	return true
}

// Stop cancels any pending commit. Later Set calls are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.hasPending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.hasPending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	v := d.commitLocked()
	d.mu.Unlock()

	d.notify(v)
}

func (d *Debouncer[T]) commitLocked() T {
	d.value = d.pending
	d.hasPending = false
	var zero T
	d.pending = zero
	return d.value
}

func (d *Debouncer[T]) notify(v T) {
	if d.onCommit != nil {
		d.onCommit(v)
	}
}
