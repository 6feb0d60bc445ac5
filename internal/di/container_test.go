package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	appconfig "github.com/jvano/azure-webjobs-sdk-script/internal/config"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/secrets"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	document := "host:\n  debounce: 250ms\npaths:\n  secrets: " + filepath.Join(dir, "secrets") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(document), 0644))
	return path
}

func TestModuleBuildsGraph(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir)

	var (
		cfg     *appconfig.Config
		manager *host.Manager
		store   *secrets.Store
	)

	app := fx.New(
		fx.NopLogger,
		fx.Supply(NewAppConfig(configPath, dir, filepath.Join(dir, "logs"))),
		Module,
		fx.Populate(&cfg, &manager, &store),
	)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	defer func() {
		require.NoError(t, app.Stop(context.Background()))
	}()

	assert.Equal(t, dir, cfg.Paths.ScriptRoot)
	assert.Equal(t, filepath.Join(dir, "logs"), cfg.Paths.LogRoot)
	assert.Equal(t, 250*time.Millisecond, cfg.Host.WatchDebounce)
	require.NotNil(t, manager)

	// The secret store is wired against a live database.
	key, err := store.MasterKey()
	require.NoError(t, err)
	assert.NotEmpty(t, key.Value)
}

func TestModuleFlagOverridesBeatConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	document := "paths:\n  root: /from/file\n  secrets: " + filepath.Join(dir, "secrets") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(document), 0644))

	var cfg *appconfig.Config
	app := fx.New(
		fx.NopLogger,
		fx.Supply(NewAppConfig(path, "/from/flag", "")),
		Module,
		fx.Populate(&cfg),
	)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	defer func() {
		require.NoError(t, app.Stop(context.Background()))
	}()

	assert.Equal(t, "/from/flag", cfg.Paths.ScriptRoot)
}

func TestModuleRejectsMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: [oops"), 0644))

	app := fx.New(
		fx.NopLogger,
		fx.Supply(NewAppConfig(path, "", "")),
		Module,
		fx.Invoke(func(*appconfig.Config) {}),
	)
	assert.Error(t, app.Err())
}
