package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SqliteStore stores all collections in a single SQLite database.
//
// Tables:
//
//	documents(seq, collection, id, data)  seq gives insertion order
//
// Documents are kept as JSON text, so timestamps come back as strings.
type SqliteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
	now  func() time.Time
}

func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		id TEXT NOT NULL UNIQUE,
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS documents_collection ON documents (collection, seq)`); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStore{db: db, path: dbPath, now: time.Now}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	id := newID()
	b, err := json.Marshal(prepare(doc, id, s.now()))
	if err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)",
		collection, id, string(b),
	); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	return id, nil
}

func (s *SqliteStore) Query(ctx context.Context, collection string, filter Document, limit int) ([]Document, error) {
	result := []Document{}
	if limit <= 0 {
		return result, nil
	}
	// Without a filter the limit can go straight into SQL; with one, rows
	// are matched in Go and scanning stops once limit is reached.
	query := "SELECT data FROM documents WHERE collection = ? ORDER BY seq"
	args := []any{collection}
	if len(filter) == 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Collection: collection, Err: err}
	}
	defer rows.Close()
	for rows.Next() && len(result) < limit {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, &QueryError{Collection: collection, Err: err}
		}
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, &QueryError{Collection: collection, Err: fmt.Errorf("decode stored document: %w", err)}
		}
		if matches(doc, filter) {
			result = append(result, doc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Collection: collection, Err: err}
	}
	return result, nil
}

func (s *SqliteStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT collection FROM documents ORDER BY collection")
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &QueryError{Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Err: err}
	}
	return names, nil
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteStore) Name() string {
	return strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
}
