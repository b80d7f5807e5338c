package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// JsonFileStore stores each collection as a JSON array on disk, in
// insertion order.
//
// Layout:
//
//	data_dir/
//	  devlogpost.json   # "devlogpost" collection
//	  milestone.json    # "milestone" collection
//	  feedback.json     # "feedback" collection
//
// Timestamps are written as RFC 3339 strings and come back as strings.
type JsonFileStore struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

func NewJsonFileStore(dir string) (*JsonFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &JsonFileStore{dir: dir, now: time.Now}, nil
}

func (s *JsonFileStore) collectionPath(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *JsonFileStore) loadCollection(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return docs, nil
}

// saveCollection writes through a temp file so a crash mid-write never
// leaves a truncated collection behind.
func (s *JsonFileStore) saveCollection(path string, docs []Document) error {
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *JsonFileStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.collectionPath(collection)
	docs, err := s.loadCollection(path)
	if err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	id := newID()
	docs = append(docs, prepare(doc, id, s.now()))
	if err := s.saveCollection(path, docs); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	return id, nil
}

func (s *JsonFileStore) Query(ctx context.Context, collection string, filter Document, limit int) ([]Document, error) {
	if err := checkCollection(collection); err != nil {
		return nil, &QueryError{Collection: collection, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &QueryError{Collection: collection, Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, err := s.loadCollection(s.collectionPath(collection))
	if err != nil {
		return nil, &QueryError{Collection: collection, Err: err}
	}
	result := []Document{}
	for _, doc := range docs {
		if len(result) >= limit {
			break
		}
		if matches(doc, filter) {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (s *JsonFileStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &QueryError{Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *JsonFileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *JsonFileStore) Name() string { return filepath.Base(s.dir) }

func (s *JsonFileStore) Close() error { return nil }
