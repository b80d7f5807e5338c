// Package health probes the document store for the status endpoint.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/stevemurr/whiskers-api/store"
)

// Database states reported by Probe.
const (
	DatabaseUnavailable   = "unavailable"   // no store configured
	DatabaseUninitialized = "uninitialized" // store handle exists, ping failed
	DatabaseConnected     = "connected"
)

// Connection labels reported by Probe.
const (
	Connected    = "Connected"
	NotConnected = "Not Connected"
)

const (
	maxCollections = 10
	maxErrorLen    = 60
)

// Report is the status record served at /test.
type Report struct {
	Backend          bool     `json:"backend" yaml:"backend"`
	Database         string   `json:"database" yaml:"database"`
	DatabaseURL      bool     `json:"database_url" yaml:"database_url"`
	DatabaseName     *string  `json:"database_name" yaml:"database_name"`
	ConnectionStatus string   `json:"connection_status" yaml:"connection_status"`
	Collections      []string `json:"collections" yaml:"collections"`
	Error            string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Options controls a probe.
type Options struct {
	// DatabaseURLSet reports whether a database location is configured.
	DatabaseURLSet bool
	// Timeout bounds the whole probe. Zero means no extra deadline.
	Timeout time.Duration
}

// Probe inspects st and never fails: errors and panics raised while
// probing end up, truncated, in Report.Error. st may be nil.
func Probe(ctx context.Context, st store.Store, opts Options) (r Report) {
	r = Report{
		Backend:          true,
		Database:         DatabaseUnavailable,
		DatabaseURL:      opts.DatabaseURLSet,
		ConnectionStatus: NotConnected,
		Collections:      []string{},
	}
	if st == nil {
		return r
	}

	defer func() {
		if p := recover(); p != nil {
			r.Error = truncate(fmt.Sprint(p))
		}
	}()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	name := st.Name()
	r.DatabaseName = &name
	r.Database = DatabaseUninitialized

	if err := st.Ping(ctx); err != nil {
		r.Error = truncate(err.Error())
		return r
	}
	r.Database = DatabaseConnected
	r.ConnectionStatus = Connected

	names, err := st.ListCollections(ctx)
	if err != nil {
		r.Error = truncate(err.Error())
		return r
	}
	if len(names) > maxCollections {
		names = names[:maxCollections]
	}
	r.Collections = append(r.Collections, names...)
	return r
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxErrorLen {
		return s
	}
	return string(runes[:maxErrorLen])
}
