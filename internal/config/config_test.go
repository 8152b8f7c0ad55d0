package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/polycache.db", cfg.DB.Path)
	assert.Equal(t, 30*time.Second, cfg.DB.BusyTimeout)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Gamma.BaseURL)
	assert.Equal(t, 60, cfg.ClobREST.Fidelity)
	assert.Equal(t, "top", cfg.Catalog.Mode)
	assert.Equal(t, "@every 1h", cfg.Cron.Expire)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polycache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /tmp/cache.db
  busy_timeout: 45s
catalog:
  mode: soon
  soon_days: 7
`), 0o644))
	t.Setenv("POLYCACHE_CATALOG_SOON_DAYS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cache.db", cfg.DB.Path)
	assert.Equal(t, 45*time.Second, cfg.DB.BusyTimeout)
	assert.Equal(t, "soon", cfg.Catalog.Mode)
	assert.Equal(t, 2, cfg.Catalog.SoonDays)
	assert.Equal(t, 100, cfg.Catalog.Limit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
