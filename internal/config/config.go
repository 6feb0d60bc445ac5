package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration constants
const (
	// DefaultConfigPath is the default path to the config file
	DefaultConfigPath = "~/.funchost/config.yaml"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "FUNCHOST_"
)

// Config holds the process-level configuration of the funchost CLI.
// The host configuration document (host.json) is resolved separately,
// per generation; this layer only decides where things live and how the
// process behaves.
type Config struct {
	// Host run-loop options
	Host HostConfig `koanf:"host"`

	// Filesystem locations
	Paths PathsConfig `koanf:"paths"`
}

// HostConfig holds run-loop configuration
type HostConfig struct {
	// How long to wait after the last file change before restarting
	WatchDebounce time.Duration `koanf:"debounce"`

	// Capacity of the in-memory log store
	LogStoreCapacity int `koanf:"capacity"`
}

// PathsConfig holds the filesystem layout
type PathsConfig struct {
	// Root directory of the deployed functions
	ScriptRoot string `koanf:"root"`

	// Root directory for host logs and the debug sentinel
	LogRoot string `koanf:"logs"`

	// Directory of the secrets database
	SecretsDir string `koanf:"secrets"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Host: HostConfig{
			WatchDebounce:    500 * time.Millisecond,
			LogStoreCapacity: 1000,
		},
		Paths: PathsConfig{
			ScriptRoot: ".",
			LogRoot:    filepath.Join(homeDir, ".funchost", "logs"),
			SecretsDir: filepath.Join(homeDir, ".funchost", "secrets"),
		},
	}
}

// LoadConfig loads configuration from the specified path and environment variables
func LoadConfig(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Set default values
	defaultConfig := DefaultConfig()
	err := k.Load(newStructProvider(defaultConfig), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// Expand tilde in config path if needed
	expandedPath := configPath
	if strings.HasPrefix(configPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			expandedPath = filepath.Join(homeDir, configPath[2:])
		}
	}

	// Try to load from config file (if it exists)
	if _, err := os.Stat(expandedPath); err == nil {
		if err := k.Load(file.Provider(expandedPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Load from environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Unmarshal into Config struct
	var config Config
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:      &config,
			ErrorUnused: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// structProvider is a provider that loads configuration from a struct
type structProvider struct {
	cfg interface{}
}

// newStructProvider creates a new struct provider
func newStructProvider(cfg interface{}) *structProvider {
	return &structProvider{cfg: cfg}
}

// Read reads the configuration from the struct
func (s *structProvider) Read() (map[string]interface{}, error) {
	var out map[string]interface{}

	// Use mapstructure to convert struct to map
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "koanf",
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(s.cfg); err != nil {
		return nil, err
	}

	return out, nil
}

// ReadBytes is required by the Provider interface but not used for struct providers
func (s *structProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not supported for struct provider")
}
