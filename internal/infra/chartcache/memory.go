package chartcache

import (
	"container/list"
	"context"
	"sync"

	"github.com/astrachart/astrachart/internal/domain/chart"
)

// Memory is a fixed-capacity LRU cache for computed position datasets.
// Eviction is strictly least-recently-used; entries never expire by time.
type Memory struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type memoryEntry struct {
	key   string
	value chart.Result
}

// NewMemory builds a cache holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 128
	}
	return &Memory{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached result and refreshes its recency.
func (m *Memory) Get(_ context.Context, key string) (chart.Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	elem, ok := m.entries[key]
	if !ok {
		return chart.Result{}, false, nil
	}
	m.order.MoveToFront(elem)
	return elem.Value.(*memoryEntry).value, true, nil
}

// Put stores a result, evicting the least-recently-used entry when full.
// Storing an existing key overwrites it; last write wins.
func (m *Memory) Put(_ context.Context, key string, value chart.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.entries[key]; ok {
		elem.Value.(*memoryEntry).value = value
		m.order.MoveToFront(elem)
		return nil
	}
	if m.order.Len() >= m.capacity {
		oldest := m.order.Back()
		if oldest != nil {
			m.order.Remove(oldest)
			delete(m.entries, oldest.Value.(*memoryEntry).key)
		}
	}
	m.entries[key] = m.order.PushFront(&memoryEntry{key: key, value: value})
	return nil
}

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

var _ chart.ResultCache = (*Memory)(nil)
