package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Document),
		now:         time.Now,
	}
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	id := newID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], prepare(doc, id, m.now()))
	return id, nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, filter Document, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &QueryError{Collection: collection, Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []Document{}
	for _, doc := range m.collections[collection] {
		if len(result) >= limit {
			break
		}
		if matches(doc, filter) {
			result = append(result, cloneDocument(doc))
		}
	}
	return result, nil
}

func (m *MemoryStore) ListCollections(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name, docs := range m.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Close() error { return nil }
