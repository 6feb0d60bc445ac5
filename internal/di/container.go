package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/fx"

	appconfig "github.com/jvano/azure-webjobs-sdk-script/internal/config"
	"github.com/jvano/azure-webjobs-sdk-script/internal/repository"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host"
	hostconfig "github.com/jvano/azure-webjobs-sdk-script/pkg/host/config"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/metrics"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/secrets"
)

// AppConfig carries command-line settings into the fx graph.
type AppConfig struct {
	ConfigPath string
	ScriptRoot string
	LogRoot    string
}

// NewAppConfig creates the application configuration supplied to fx.
// Empty ScriptRoot and LogRoot defer to the configuration file.
func NewAppConfig(configPath, scriptRoot, logRoot string) *AppConfig {
	return &AppConfig{
		ConfigPath: configPath,
		ScriptRoot: scriptRoot,
		LogRoot:    logRoot,
	}
}

// Module wires every dependency the host runtime needs.
var Module = fx.Options(
	fx.Provide(
		loadConfig,
		newEnvironment,
		newRecorder,
		newHostOptions,
		newManager,
		openSecretsDB,
		newSecretStore,
	),
)

// loadConfig resolves the configuration file and applies flag overrides.
func loadConfig(app *AppConfig) (*appconfig.Config, error) {
	cfg, err := appconfig.LoadConfig(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if app.ScriptRoot != "" {
		cfg.Paths.ScriptRoot = app.ScriptRoot
	}
	if app.LogRoot != "" {
		cfg.Paths.LogRoot = app.LogRoot
	}
	return cfg, nil
}

func newEnvironment() hostconfig.Environment {
	return hostconfig.DetectEnvironment()
}

func newRecorder() metrics.Recorder {
	return metrics.NewInMemoryRecorder()
}

func newHostOptions(cfg *appconfig.Config, env hostconfig.Environment, recorder metrics.Recorder) *host.Options {
	return host.DefaultOptions().
		WithScriptRoot(cfg.Paths.ScriptRoot).
		WithLogRoot(cfg.Paths.LogRoot).
		WithEnvironment(env).
		WithMetrics(recorder).
		WithLogStoreCapacity(cfg.Host.LogStoreCapacity)
}

func newManager(opts *host.Options, cfg *appconfig.Config) *host.Manager {
	return host.NewManager(opts).WithDebounce(cfg.Host.WatchDebounce)
}

// openSecretsDB opens the database backing the secret store and closes
// it when the application stops.
func openSecretsDB(lc fx.Lifecycle, cfg *appconfig.Config) (repository.KeyValueStore, error) {
	if err := os.MkdirAll(cfg.Paths.SecretsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	store, err := repository.Open(filepath.Join(cfg.Paths.SecretsDir, secrets.DatabaseFileName))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

func newSecretStore(db repository.KeyValueStore) *secrets.Store {
	return secrets.NewStore(db)
}
