package snapshot

import (
	"context"

	"salesdash/internal/cache"
)

// MemoryStore keeps snapshots in process. Entries never expire here; the
// Cache decides freshness from the snapshot timestamp.
type MemoryStore struct {
	entries *cache.LRUCache[Snapshot]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: cache.NewLRUCache[Snapshot](16, 0)}
}

func (m *MemoryStore) Save(_ context.Context, key string, s Snapshot) error {
	m.entries.Set(key, s.clone())
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) (Snapshot, error) {
	s, ok := m.entries.Get(key)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return s.clone(), nil
}
