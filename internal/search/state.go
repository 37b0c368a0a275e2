// Package search holds the shared search term. It is created once by the
// app and handed to whoever needs it.
package search

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/debounce"
)

// Snapshot is a consistent view of the state.
type Snapshot struct {
	Term    string `json:"term"`
	Settled string `json:"settled"`
	Pending bool   `json:"pending"`
}

type options struct {
	clock     debounce.Clock
	onSettled func(string)
}

type Option func(*options)

// WithClock drives the debounce timer from c.
func WithClock(c debounce.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithOnSettled registers a hook called with every settled term.
func WithOnSettled(fn func(term string)) Option {
	return func(o *options) { o.onSettled = fn }
}

// State is the current search term plus its debounced, settled value.
// It is not persisted.
type State struct {
	mu   sync.RWMutex
	term string

	settled *debounce.Debouncer[string]
}

func New(delay time.Duration, opts ...Option) *State {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var dopts []debounce.Option
	if o.clock != nil {
		dopts = append(dopts, debounce.WithClock(o.clock))
	}

	return &State{
		settled: debounce.New("", delay, o.onSettled, dopts...),
	}
}

// Term returns the raw term as last set.
func (s *State) Term() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.term
}

// SetTerm updates the term. The settled value follows once the term has
// been stable for the debounce delay.
func (s *State) SetTerm(term string) {
	s.mu.Lock()
	s.term = term
	s.mu.Unlock()

	s.settled.Set(term)
}

// Clear resets the term. Like any other change, the empty term settles
// after the debounce delay.
func (s *State) Clear() {
	s.SetTerm("")
}

// Settled returns the last debounced term.
func (s *State) Settled() string {
	return s.settled.Value()
}

func (s *State) Snapshot() Snapshot {
	_, pending := s.settled.Pending()
	return Snapshot{
		Term:    s.Term(),
		Settled: s.Settled(),
		Pending: pending,
	}
}

// Close cancels any pending settle.
func (s *State) Close() {
	s.settled.Stop()
}
