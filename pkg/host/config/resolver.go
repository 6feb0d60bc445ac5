package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	hosterrors "github.com/jvano/azure-webjobs-sdk-script/pkg/host/errors"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/logging"
)

// Resolver resolves host configuration documents into typed trees for
// the environment it was created with. Resolution is pure: the same
// document always produces the same tree, defaults are re-applied from
// scratch on every call, and nothing carries over between calls.
type Resolver struct {
	env      Environment
	validate *validator.Validate
}

// NewResolver creates a resolver for the given environment.
func NewResolver(env Environment) *Resolver {
	return &Resolver{env: env, validate: validator.New()}
}

// Environment returns the environment this resolver resolves against.
func (r *Resolver) Environment() Environment {
	return r.env
}

// Resolve resolves a raw host configuration document. An empty or
// whitespace-only document resolves to pure defaults.
func (r *Resolver) Resolve(document []byte) (*HostConfiguration, error) {
	k := koanf.New(".")
	if len(bytes.TrimSpace(document)) > 0 {
		if err := k.Load(rawbytes.Provider(document), kjson.Parser()); err != nil {
			return nil, hosterrors.NewParseError(HostFileName, err)
		}
	}
	return r.apply(k, HostFileName)
}

// ResolveFile resolves the document at path. A missing file resolves
// like an empty document, so a brand-new script root starts from pure
// defaults.
func (r *Resolver) ResolveFile(path string) (*HostConfiguration, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return r.apply(koanf.New("."), path)
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, hosterrors.NewParseError(path, err)
	}
	return r.apply(k, path)
}

// apply layers the document over a fresh default tree. Only keys
// present in the document override defaults, so an explicit false or
// empty string wins while an absent key restores the default.
func (r *Resolver) apply(k *koanf.Koanf, fileName string) (*HostConfiguration, error) {
	cfg := Default(r.env)

	if k.Exists("id") {
		cfg.ID = k.String("id")
	}

	if err := r.applyQueues(k, fileName, &cfg.Queues); err != nil {
		return nil, err
	}
	r.applyBlobs(k, &cfg.Blobs)
	r.applyHTTP(k, &cfg.HTTP)
	if err := r.applySingleton(k, fileName, &cfg.Singleton); err != nil {
		return nil, err
	}
	if err := r.applyTracing(k, fileName, &cfg.Tracing); err != nil {
		return nil, err
	}
	if err := r.applyLogger(k, fileName, &cfg.Logger); err != nil {
		return nil, err
	}

	if k.Exists("fileWatchingEnabled") {
		cfg.FileWatchingEnabled = k.Bool("fileWatchingEnabled")
	}
	// Document entries append after the built-in watch directory, never
	// replace it.
	if k.Exists("watchDirectories") {
		cfg.WatchDirectories = append(cfg.WatchDirectories, k.Strings("watchDirectories")...)
	}

	// A present functions key installs an allow-list, even an empty
	// one. An explicit null behaves like an absent key.
	if k.Exists("functions") && k.Get("functions") != nil {
		cfg.Functions = append([]string{}, k.Strings("functions")...)
	}

	if k.Exists("functionTimeout") && k.Get("functionTimeout") != nil {
		timeout, err := r.durationValue(k, "functionTimeout", fileName)
		if err != nil {
			return nil, err
		}
		// The dynamic tier enforces timeout bounds; elsewhere explicit
		// values are accepted verbatim.
		if r.env.DynamicSku && (timeout < MinFunctionTimeout || timeout > MaxFunctionTimeout) {
			return nil, hosterrors.NewRangeError("functionTimeout", timeout, MinFunctionTimeout, MaxFunctionTimeout)
		}
		cfg.FunctionTimeout = &timeout
	}

	if err := cfg.validate(r.validate); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *Resolver) applyQueues(k *koanf.Koanf, fileName string, queues *QueuesConfig) error {
	if d, ok, err := r.optionalDuration(k, "queues.maxPollingInterval", fileName); err != nil {
		return err
	} else if ok {
		queues.MaxPollingInterval = d
	}
	if k.Exists("queues.batchSize") {
		queues.BatchSize = k.Int("queues.batchSize")
		// newBatchThreshold tracks the configured batch size unless the
		// document pins it explicitly below.
		queues.NewBatchThreshold = queues.BatchSize / 2
	}
	if k.Exists("queues.maxDequeueCount") {
		queues.MaxDequeueCount = k.Int("queues.maxDequeueCount")
	}
	if k.Exists("queues.newBatchThreshold") {
		queues.NewBatchThreshold = k.Int("queues.newBatchThreshold")
	}
	if d, ok, err := r.optionalDuration(k, "queues.visibilityTimeout", fileName); err != nil {
		return err
	} else if ok {
		queues.VisibilityTimeout = d
	}
	return nil
}

func (r *Resolver) applyBlobs(k *koanf.Koanf, blobs *BlobsConfig) {
	if k.Exists("blobs.centralizedPoisonQueue") {
		blobs.CentralizedPoisonQueue = k.Bool("blobs.centralizedPoisonQueue")
	}
}

func (r *Resolver) applyHTTP(k *koanf.Koanf, http *HTTPConfig) {
	if k.Exists("http.routePrefix") {
		http.RoutePrefix = k.String("http.routePrefix")
	}
	if k.Exists("http.dynamicThrottlingEnabled") {
		http.DynamicThrottlingEnabled = k.Bool("http.dynamicThrottlingEnabled")
	}
	if k.Exists("http.maxConcurrentRequests") {
		http.MaxConcurrentRequests = k.Int("http.maxConcurrentRequests")
	}
	if k.Exists("http.maxOutstandingRequests") {
		http.MaxOutstandingRequests = k.Int("http.maxOutstandingRequests")
	}
}

func (r *Resolver) applySingleton(k *koanf.Koanf, fileName string, singleton *SingletonConfig) error {
	targets := []struct {
		path  string
		field *time.Duration
	}{
		{"singleton.lockPeriod", &singleton.LockPeriod},
		{"singleton.listenerLockPeriod", &singleton.ListenerLockPeriod},
		{"singleton.listenerLockRecoveryPollingInterval", &singleton.ListenerLockRecoveryPollingInterval},
		{"singleton.lockAcquisitionTimeout", &singleton.LockAcquisitionTimeout},
		{"singleton.lockAcquisitionPollingInterval", &singleton.LockAcquisitionPollingInterval},
	}
	for _, target := range targets {
		d, ok, err := r.optionalDuration(k, target.path, fileName)
		if err != nil {
			return err
		}
		if ok {
			*target.field = d
		}
	}
	return nil
}

func (r *Resolver) applyTracing(k *koanf.Koanf, fileName string, tracing *TracingConfig) error {
	if k.Exists("tracing.consoleLevel") {
		level, err := logging.ParseConsoleLevel(k.String("tracing.consoleLevel"))
		if err != nil {
			return hosterrors.NewParseError(fileName, err)
		}
		tracing.ConsoleLevel = level
	}
	if k.Exists("tracing.fileLoggingMode") {
		mode, err := logging.ParseFileLoggingMode(k.String("tracing.fileLoggingMode"))
		if err != nil {
			return hosterrors.NewParseError(fileName, err)
		}
		tracing.FileLoggingMode = mode
	}
	return nil
}

func (r *Resolver) applyLogger(k *koanf.Koanf, fileName string, logger *LoggerConfig) error {
	if k.Exists("logger.categoryFilter.defaultLevel") {
		level, err := logging.ParseLevel(k.String("logger.categoryFilter.defaultLevel"))
		if err != nil {
			return hosterrors.NewParseError(fileName, err)
		}
		logger.DefaultLevel = level
	}
	if k.Exists("logger.categoryFilter.categoryLevels") {
		raw := k.StringMap("logger.categoryFilter.categoryLevels")
		levels := make(map[string]logging.Level, len(raw))
		for category, name := range raw {
			level, err := logging.ParseLevel(name)
			if err != nil {
				return hosterrors.NewParseError(fileName, err)
			}
			levels[category] = level
		}
		logger.CategoryLevels = levels
	}
	return nil
}

// optionalDuration reads the Go duration string at path when the key
// is present. Any other value shape is a document error.
func (r *Resolver) optionalDuration(k *koanf.Koanf, path, fileName string) (time.Duration, bool, error) {
	if !k.Exists(path) || k.Get(path) == nil {
		return 0, false, nil
	}
	d, err := r.durationValue(k, path, fileName)
	if err != nil {
		return 0, false, err
	}
	return d, true, nil
}

func (r *Resolver) durationValue(k *koanf.Koanf, path, fileName string) (time.Duration, error) {
	raw, ok := k.Get(path).(string)
	if !ok {
		return 0, hosterrors.NewParseError(fileName, fmt.Errorf("'%s' must be a duration string such as \"30s\"", path))
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, hosterrors.NewParseError(fileName, fmt.Errorf("invalid duration for '%s': %v", path, err))
	}
	return d, nil
}
