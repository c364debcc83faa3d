// Package sequence abstracts the shared monotonic counters behind an
// injected allocator, so the versioning protocol can be exercised without a
// database. Issued values are never reused or rolled back; gaps are
// acceptable, duplicates are not.
package sequence

import (
	"context"
	"sync"
)

// Allocator hands out the next value of a named sequence.
type Allocator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Memory is an in-process allocator backed by per-name counters.
type Memory struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemory constructs an empty in-process allocator. Every sequence starts
// at 1.
func NewMemory() *Memory {
	return &Memory{counters: make(map[string]int64)}
}

func (m *Memory) Next(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}

// Seed advances a sequence so the next issued value is start. Used by tests
// that assert concrete ids.
func (m *Memory) Seed(name string, start int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = start - 1
}
