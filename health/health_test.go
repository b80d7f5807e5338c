package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/whiskers-api/store"
)

// fakeStore implements store.Store with scripted probe results.
type fakeStore struct {
	store.Store
	name     string
	pingErr  error
	listErr  error
	names    []string
	panicMsg string
	sawCtx   context.Context
}

func (f *fakeStore) Name() string { return f.name }

func (f *fakeStore) Ping(ctx context.Context) error {
	f.sawCtx = ctx
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.pingErr
}

func (f *fakeStore) ListCollections(ctx context.Context) ([]string, error) {
	return f.names, f.listErr
}

func TestProbeNoStore(t *testing.T) {
	r := Probe(context.Background(), nil, Options{})
	assert.True(t, r.Backend)
	assert.Equal(t, DatabaseUnavailable, r.Database)
	assert.Equal(t, NotConnected, r.ConnectionStatus)
	assert.False(t, r.DatabaseURL)
	assert.Nil(t, r.DatabaseName)
	assert.NotNil(t, r.Collections)
	assert.Empty(t, r.Error)
}

func TestProbeConnected(t *testing.T) {
	var names []string
	for i := 0; i < 15; i++ {
		names = append(names, fmt.Sprintf("c%02d", i))
	}
	st := &fakeStore{name: "whiskers", names: names}

	r := Probe(context.Background(), st, Options{DatabaseURLSet: true, Timeout: time.Second})
	assert.Equal(t, DatabaseConnected, r.Database)
	assert.Equal(t, Connected, r.ConnectionStatus)
	assert.True(t, r.DatabaseURL)
	require.NotNil(t, r.DatabaseName)
	assert.Equal(t, "whiskers", *r.DatabaseName)
	assert.Equal(t, names[:10], r.Collections)

	_, hasDeadline := st.sawCtx.Deadline()
	assert.True(t, hasDeadline)
}

func TestProbePingFails(t *testing.T) {
	st := &fakeStore{name: "whiskers", pingErr: errors.New(strings.Repeat("server selection timeout ", 10))}

	r := Probe(context.Background(), st, Options{})
	assert.Equal(t, DatabaseUninitialized, r.Database)
	assert.Equal(t, NotConnected, r.ConnectionStatus)
	assert.Len(t, []rune(r.Error), 60)
	assert.Empty(t, r.Collections)
}

// slowStore never answers a ping until its context ends.
type slowStore struct {
	store.Store
}

func (slowStore) Name() string { return "whiskers" }

func (slowStore) Ping(ctx context.Context) error {
	<-ctx.Done()
	return fmt.Errorf("server selection error: %w, current topology: { Type: Unknown, Servers: [{ Addr: db:27017, Type: Unknown }] }", ctx.Err())
}

func TestProbeTimeoutBoundsPing(t *testing.T) {
	start := time.Now()
	r := Probe(context.Background(), slowStore{}, Options{Timeout: 50 * time.Millisecond})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, DatabaseUninitialized, r.Database)
	assert.Equal(t, NotConnected, r.ConnectionStatus)
	assert.Len(t, []rune(r.Error), 60)
	assert.True(t, strings.HasPrefix(r.Error, "server selection error: context deadline exceeded"))
	assert.Empty(t, r.Collections)
}

func TestProbeListFails(t *testing.T) {
	st := &fakeStore{name: "whiskers", listErr: errors.New("not authorized")}

	r := Probe(context.Background(), st, Options{})
	assert.Equal(t, DatabaseConnected, r.Database)
	assert.Equal(t, "not authorized", r.Error)
	assert.Empty(t, r.Collections)
}

func TestProbeRecoversPanics(t *testing.T) {
	st := &fakeStore{name: "whiskers", panicMsg: "driver exploded"}

	var r Report
	require.NotPanics(t, func() {
		r = Probe(context.Background(), st, Options{})
	})
	assert.True(t, r.Backend)
	assert.Equal(t, "driver exploded", r.Error)
}

func TestProbeMemoryStore(t *testing.T) {
	st := store.NewMemoryStore()
	_, err := st.Insert(context.Background(), "devlogpost", store.Document{"title": "t"})
	require.NoError(t, err)

	r := Probe(context.Background(), st, Options{})
	assert.Equal(t, DatabaseConnected, r.Database)
	assert.Equal(t, []string{"devlogpost"}, r.Collections)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	long := strings.Repeat("é", 80)
	assert.Equal(t, strings.Repeat("é", 60), truncate(long))
}
