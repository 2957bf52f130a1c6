package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
redis:
  addr: "localhost:6379"
visitor:
  idle_timeout: 30m
catalog:
  remote_url: "https://example.com/products.json"
`), 0o600))

	t.Setenv("STOREFRONT_REDIS_ADDR", "redis:6379")
	t.Setenv("STOREFRONT_LOG_DEVELOPMENT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Visitor.IdleTimeout)
	assert.Equal(t, "https://example.com/products.json", cfg.Catalog.RemoteURL)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "storefront_visitor", cfg.Visitor.CookieName)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [oops"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("STOREFRONT_REDIS_DB", "two")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Visitor.IdleTimeout = 0
	assert.Error(t, cfg.Validate())
}
