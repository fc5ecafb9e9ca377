package dirindex

import (
	"context"
	"sort"
	"sync"

	"github.com/asabya/fdp-storage/account"
)

// MemIndex is an in-memory Index, safe for concurrent use.
type MemIndex struct {
	mu      sync.RWMutex
	entries map[string]map[string]bool // owner/dirPath -> name -> isFile
}

// NewMemIndex returns an empty in-memory directory index.
func NewMemIndex() *MemIndex {
	return &MemIndex{entries: make(map[string]map[string]bool)}
}

func dirKey(owner account.Address, dirPath string) string {
	return owner.String() + ":" + dirPath
}

func (m *MemIndex) AddEntry(ctx context.Context, owner account.Address, dirPath, name string, isFile bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := dirKey(owner, dirPath)
	if m.entries[k] == nil {
		m.entries[k] = make(map[string]bool)
	}
	m.entries[k][name] = isFile
	return nil
}

func (m *MemIndex) RemoveEntry(ctx context.Context, owner account.Address, dirPath, name string, isFile bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries[dirKey(owner, dirPath)], name)
	return nil
}

func (m *MemIndex) List(ctx context.Context, owner account.Address, dirPath string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := m.entries[dirKey(owner, dirPath)]
	result := make([]Entry, 0, len(names))
	for name, isFile := range names {
		result = append(result, Entry{Name: name, IsFile: isFile})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
