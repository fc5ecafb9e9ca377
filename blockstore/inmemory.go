package blockstore

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store keyed by content address. It is safe for
// concurrent use and is the reference implementation used by the package
// tests and by embedders that do not need a remote store.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

// Put stores a copy of data under its content address.
func (m *MemStore) Put(ctx context.Context, data []byte) (Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref := NewReference(data)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[ref.String()]; !ok {
		cp := make([]byte, len(data))
		copy(cp, data)
		m.blobs[ref.String()] = cp
	}
	return ref, nil
}

// Get returns a copy of the blob at ref, or ErrNotFound.
func (m *MemStore) Get(ctx context.Context, ref Reference) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[ref.String()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Len reports the number of stored blobs.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
