package store

import (
	"context"
	"fmt"
	"path/filepath"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DatabaseURL string
	Database    string
	DataDir     string
}

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"mongo"  - MongoDB at DatabaseURL (default); ErrUnavailable if unset
//	"sqlite" - SQLite database at DataDir/whiskers.db
//	"json"   - JSON files in DataDir
//	"memory" - In-memory (ephemeral, for testing)
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "mongo", "":
		if opts.DatabaseURL == "" {
			return nil, ErrUnavailable
		}
		return NewMongoStore(ctx, opts.DatabaseURL, opts.Database)
	case "sqlite":
		return NewSqliteStore(filepath.Join(opts.DataDir, "whiskers.db"))
	case "json":
		return NewJsonFileStore(opts.DataDir)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: mongo, sqlite, json, memory)", opts.Backend)
	}
}
