package store

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when no live database connection exists.
var ErrUnavailable = errors.New("store: database unavailable")

// WriteError reports a failed insert.
type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write to %q: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// QueryError reports a failed read.
type QueryError struct {
	Collection string
	Err        error
}

func (e *QueryError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store: query: %v", e.Err)
	}
	return fmt.Sprintf("store: query %q: %v", e.Collection, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
