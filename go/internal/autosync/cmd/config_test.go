package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("RECKON_TOKEN", "")
	t.Setenv("RECKON_API_URL", "")
	t.Setenv("NATS_URL", "")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sync:
  interval: 10s
  cycle_timeout: 3s
local_path: /tmp/progress.db
api_url: http://progress.internal:8080
token: from-file
`), 0o600))

	t.Setenv("RECKON_TOKEN", "from-env")
	t.Setenv("RECKON_API_URL", "")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Sync.Interval)
	assert.Equal(t, 3*time.Second, cfg.Sync.CycleTimeout)
	assert.Equal(t, "/tmp/progress.db", cfg.LocalPath)
	assert.Equal(t, "http://progress.internal:8080", cfg.APIURL)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, ":9090", cfg.HealthAddr)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sync: [unclosed"), 0o600))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
