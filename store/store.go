// Package store defines the document store interface and its backends.
package store

import "context"

// Document is a single JSON-like record in a collection.
type Document = map[string]any

// Field names the store manages on every document.
const (
	FieldID        = "_id"
	FieldCreatedAt = "created_at"
)

// Store is the interface that all backing stores must implement.
// It operates on named collections of append-only documents, each
// identified by a store-assigned string id.
type Store interface {
	// Insert writes a copy of doc into collection and returns its new id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)

	// Query returns up to limit documents matching filter, in insertion
	// order. An empty filter matches everything. No match is not an error.
	Query(ctx context.Context, collection string, filter Document, limit int) ([]Document, error)

	// ListCollections returns the names of all collections that contain data.
	ListCollections(ctx context.Context) ([]string, error)

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error

	// Name is the database name shown in status reports.
	Name() string

	// Close releases the underlying connection.
	Close() error
}
