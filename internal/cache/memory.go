package cache

import "sync"

// MemStore is a map-backed Store. It does not survive restarts and is meant
// for tests and throwaway runs.
type MemStore struct {
	mu sync.RWMutex
	db map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{db: make(map[string][]byte)}
}

func (m *MemStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.db[key]
	return b, ok, nil
}

func (m *MemStore) Put(key string, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.db[key] = b
	return nil
}

func (m *MemStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.db[key]
	return ok
}

// Len returns the number of stored entries.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.db)
}
