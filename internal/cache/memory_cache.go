package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

// MemoryCache is an in-process CacheService used when no Redis is configured
// (sandbox installs) and in tests. Values are stored as JSON so behavior
// matches the Redis implementation.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{data: data, expiresAt: expires}
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryCache) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}
