package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Host.WatchDebounce)
	assert.Equal(t, 1000, cfg.Host.LogStoreCapacity)
	assert.Equal(t, ".", cfg.Paths.ScriptRoot)
	assert.NotEmpty(t, cfg.Paths.LogRoot)
	assert.NotEmpty(t, cfg.Paths.SecretsDir)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	document := `
host:
  debounce: 2s
  capacity: 50
paths:
  root: /srv/functions
  logs: /var/log/funchost
`
	require.NoError(t, os.WriteFile(path, []byte(document), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Host.WatchDebounce)
	assert.Equal(t, 50, cfg.Host.LogStoreCapacity)
	assert.Equal(t, "/srv/functions", cfg.Paths.ScriptRoot)
	assert.Equal(t, "/var/log/funchost", cfg.Paths.LogRoot)

	// Keys the file omits keep their defaults.
	assert.NotEmpty(t, cfg.Paths.SecretsDir)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("FUNCHOST_PATHS_ROOT", "/env/functions")
	t.Setenv("FUNCHOST_HOST_DEBOUNCE", "3s")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/env/functions", cfg.Paths.ScriptRoot)
	assert.Equal(t, 3*time.Second, cfg.Host.WatchDebounce)
}

func TestLoadConfigEnvironmentBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths:\n  root: /from/file\n"), 0644))
	t.Setenv("FUNCHOST_PATHS_ROOT", "/from/env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Paths.ScriptRoot)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host:\n  bogus: true\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: [oops"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
