package sequence

import (
	"context"
	"sync"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	NextCodeFunc func(ctx context.Context, cfg Config) (string, error)

	mu   sync.Mutex
	next map[string]int64
}

// NextCode implements Allocator. Without a custom func it hands out
// sequential codes per prefix starting at Base+1.
func (m *MockAllocator) NextCode(ctx context.Context, cfg Config) (string, error) {
	if m.NextCodeFunc != nil {
		return m.NextCodeFunc(ctx, cfg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next == nil {
		m.next = make(map[string]int64)
	}
	key := string(cfg.Kind) + ":" + cfg.Prefix
	if m.next[key] == 0 {
		m.next[key] = cfg.Base
	}
	m.next[key]++
	return cfg.Format(m.next[key]), nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
