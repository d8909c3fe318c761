package cache

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/careroute/backend/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is a process-local CacheProvider used when Redis is not
// configured. Expired entries are evicted lazily on read and when the entry
// count reaches maxEntries.
type MemoryAdapter struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryAdapter creates an in-memory cache holding at most maxEntries keys
func NewMemoryAdapter(maxEntries int) *MemoryAdapter {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryAdapter{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, providers.ErrCacheMiss
	}
	return append([]byte(nil), entry.value...), nil
}

func (m *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}

	var expiresAt time.Time
	if expirationSeconds > 0 {
		expiresAt = m.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	m.entries[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: expiresAt}
	return nil
}

func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryAdapter) Ping(context.Context) error { return nil }

// evictLocked drops expired entries, or one arbitrary entry when none expired
func (m *MemoryAdapter) evictLocked() {
	now := m.now()
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
	if len(m.entries) < m.maxEntries {
		return
	}
	for key := range m.entries {
		delete(m.entries, key)
		return
	}
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)
