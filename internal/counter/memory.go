package counter

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps counts in process memory. It is the fallback state and
// lives for the lifetime of the process unless reset.
type MemoryStore struct {
	mu       sync.RWMutex
	views    map[string]int64
	visitors map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		views:    make(map[string]int64),
		visitors: make(map[string][]string),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Views(_ context.Context, page string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.views[page], nil
}

func (m *MemoryStore) SetViews(_ context.Context, page string, n int64) error {
	m.mu.Lock()
	m.views[page] = n
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Visitors(_ context.Context, page string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.visitors[page]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *MemoryStore) SetVisitors(_ context.Context, page string, ids []string) error {
	cp := make([]string, len(ids))
	copy(cp, ids)
	m.mu.Lock()
	m.visitors[page] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) VisitorCount(_ context.Context, page string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.visitors[page])), nil
}

func (m *MemoryStore) IncrViews(_ context.Context, page string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[page]++
	return m.views[page], nil
}

func (m *MemoryStore) AddVisitor(_ context.Context, page, id string) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.visitors[page]
	if containsID(ids, id) {
		return false, int64(len(ids)), nil
	}
	m.visitors[page] = append(ids, id)
	return true, int64(len(ids) + 1), nil
}

func (m *MemoryStore) Pages(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{}, len(m.views))
	for p := range m.views {
		seen[p] = struct{}{}
	}
	for p := range m.visitors {
		seen[p] = struct{}{}
	}
	pages := make([]string, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages, nil
}

func (m *MemoryStore) DeletePage(_ context.Context, page string) error {
	m.mu.Lock()
	delete(m.views, page)
	delete(m.visitors, page)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	m.views = make(map[string]int64)
	m.visitors = make(map[string][]string)
	m.mu.Unlock()
	return nil
}
