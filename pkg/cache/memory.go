package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Cache. Expired entries are never returned and are
// removed by a janitor goroutine every cleanupInterval.
type Memory struct {
	items *gocache.Cache
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an empty Memory cache. A cleanupInterval of zero disables
// the janitor; expired entries are then dropped lazily on access.
func NewMemory(cleanupInterval time.Duration) *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get looks up key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

// Set stores a copy of value. It is a no-op when ttl <= 0.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) {
	m.items.Delete(key)
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (m *Memory) Len() int {
	return m.items.ItemCount()
}
