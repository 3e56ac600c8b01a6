package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileAppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
http:
  addr: "127.0.0.1:9999"
analytics:
  group_by: product_id
database:
  path: /tmp/od.db
`), 0o600))

	t.Setenv("ORDERDESK_LOG_LEVEL", "debug")

	cfg, err := LoadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.HTTP.Addr)
	assert.Equal(t, "product_id", cfg.Analytics.GroupBy)
	assert.Equal(t, "/tmp/od.db", cfg.DB.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, "orderdesk.orders", cfg.Events.RabbitMQ.Exchange)
}

func TestLoadFileMissingExplicitPath(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DB: DBConfig{Driver: "postgres"}}
	assert.Error(t, cfg.Validate())

	cfg.DB.DSN = "postgres://localhost/orderdesk"
	assert.NoError(t, cfg.Validate())

	cfg.Events.RabbitMQ.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg = &Config{DB: DBConfig{Driver: "mysql", Path: "x"}}
	assert.Error(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LogConfig{Level: "debug"}.SlogLevel().String())
	assert.Equal(t, "INFO", LogConfig{Level: "???"}.SlogLevel().String())
}
