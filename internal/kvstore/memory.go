package kvstore

import (
	"context"
	"sync"
)

// Memory keeps entries in process memory. Nothing survives a restart; used
// by tests and by storage.backend=memory.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
	closed  bool
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]string),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.entries[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.entries, key)
	return nil
}

// Len returns the number of keys held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
