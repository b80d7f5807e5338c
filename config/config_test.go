package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "DATABASE_URL", "DATABASE_NAME", "STORE_BACKEND", "DATA_DIR", "ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "mongo", cfg.StoreBackend)
	assert.Equal(t, "whiskers", cfg.DatabaseName)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.False(t, cfg.HasDatabaseURL())
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("PROBE_TIMEOUT", "500ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.True(t, cfg.HasDatabaseURL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.ProbeTimeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"port not a number": {"PORT", "eighty"},
		"port out of range": {"PORT", "70000"},
		"unknown backend":   {"STORE_BACKEND", "redis"},
		"unknown format":    {"LOG_FORMAT", "xml"},
		"zero body":         {"MAX_BODY_BYTES", "0"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
