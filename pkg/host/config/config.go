package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	hosterrors "github.com/jvano/azure-webjobs-sdk-script/pkg/host/errors"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/logging"
)

// File names and built-in values.
const (
	HostFileName          = "host.json"
	DefaultWatchDirectory = "node_modules"
	DefaultRoutePrefix    = "api"
)

// Queue trigger defaults and bounds.
const (
	DefaultMaxPollingInterval               = time.Minute
	MinPollingInterval                      = 100 * time.Millisecond
	DefaultBatchSize                        = 16
	MaxBatchSize                            = 32
	DefaultMaxDequeueCount                  = 5
	DefaultVisibilityTimeout  time.Duration = 0
)

// Singleton lock defaults and bounds.
const (
	DefaultLockPeriod                          = 15 * time.Second
	DefaultListenerLockPeriod                  = time.Minute
	MinLockPeriod                              = 15 * time.Second
	MaxLockPeriod                              = time.Minute
	DefaultListenerLockRecoveryPollingInterval = time.Minute
	MinListenerLockRecoveryPollingInterval     = 15 * time.Second
	DefaultLockAcquisitionTimeout              = time.Minute
	MinLockAcquisitionTimeout                  = 5 * time.Second
	DefaultLockAcquisitionPollingInterval      = 5 * time.Second
	MinLockAcquisitionPollingInterval          = time.Second
)

// Function timeout bounds, enforced on the dynamic tier only.
const (
	MinFunctionTimeout            = time.Second
	MaxFunctionTimeout            = 10 * time.Minute
	DefaultDynamicFunctionTimeout = 5 * time.Minute
)

// QueuesConfig tunes the queue trigger listeners.
type QueuesConfig struct {
	MaxPollingInterval time.Duration
	BatchSize          int
	MaxDequeueCount    int
	NewBatchThreshold  int
	VisibilityTimeout  time.Duration
}

// BlobsConfig tunes the blob trigger listeners.
type BlobsConfig struct {
	CentralizedPoisonQueue bool
}

// HTTPConfig tunes the HTTP trigger surface. A -1 request limit means
// unbounded.
type HTTPConfig struct {
	RoutePrefix              string
	DynamicThrottlingEnabled bool
	MaxConcurrentRequests    int
	MaxOutstandingRequests   int
}

// SingletonConfig tunes distributed singleton lock behavior.
type SingletonConfig struct {
	LockPeriod                          time.Duration
	ListenerLockPeriod                  time.Duration
	ListenerLockRecoveryPollingInterval time.Duration
	LockAcquisitionTimeout              time.Duration
	LockAcquisitionPollingInterval      time.Duration
}

// TracingConfig tunes the console and file log providers.
type TracingConfig struct {
	ConsoleLevel    logging.Level
	FileLoggingMode logging.FileLoggingMode
}

// LoggerConfig is the category filter section.
type LoggerConfig struct {
	DefaultLevel   logging.Level
	CategoryLevels map[string]logging.Level
}

// HostConfiguration is the typed tree host configuration resolution
// produces. Every field carries its documented default until a
// document key overrides it.
type HostConfiguration struct {
	// ID is the stable host identifier. Empty when the document does
	// not assign one; the host then derives it from the script root.
	ID string

	Queues    QueuesConfig
	Blobs     BlobsConfig
	HTTP      HTTPConfig
	Singleton SingletonConfig
	Tracing   TracingConfig
	Logger    LoggerConfig

	FileWatchingEnabled bool
	WatchDirectories    []string

	// Functions is the function allow-list. nil admits every
	// discovered function; an empty non-nil slice admits none.
	Functions []string

	// FunctionTimeout bounds a single invocation. nil means no limit.
	FunctionTimeout *time.Duration
}

// Default returns the configuration in effect when no document value
// overrides it. Every call allocates a fresh tree.
func Default(env Environment) *HostConfiguration {
	cfg := &HostConfiguration{
		Queues: QueuesConfig{
			MaxPollingInterval: DefaultMaxPollingInterval,
			BatchSize:          DefaultBatchSize,
			MaxDequeueCount:    DefaultMaxDequeueCount,
			NewBatchThreshold:  DefaultBatchSize / 2,
			VisibilityTimeout:  DefaultVisibilityTimeout,
		},
		HTTP: HTTPConfig{
			RoutePrefix:            DefaultRoutePrefix,
			MaxConcurrentRequests:  -1,
			MaxOutstandingRequests: -1,
		},
		Singleton: SingletonConfig{
			LockPeriod:                          DefaultLockPeriod,
			ListenerLockPeriod:                  DefaultListenerLockPeriod,
			ListenerLockRecoveryPollingInterval: DefaultListenerLockRecoveryPollingInterval,
			LockAcquisitionTimeout:              DefaultLockAcquisitionTimeout,
			LockAcquisitionPollingInterval:      DefaultLockAcquisitionPollingInterval,
		},
		Tracing: TracingConfig{
			ConsoleLevel:    logging.LevelInformation,
			FileLoggingMode: logging.FileLoggingDebugOnly,
		},
		Logger: LoggerConfig{
			DefaultLevel: logging.LevelInformation,
		},
		FileWatchingEnabled: true,
		WatchDirectories:    []string{DefaultWatchDirectory},
	}
	if env.DynamicSku {
		timeout := DefaultDynamicFunctionTimeout
		cfg.FunctionTimeout = &timeout
	}
	return cfg
}

// DeriveHostID returns the stable host identifier used when the
// document does not assign one: the first 32 hex characters of the
// SHA-256 of the cleaned absolute script root path.
func DeriveHostID(scriptRoot string) string {
	abs, err := filepath.Abs(scriptRoot)
	if err != nil {
		abs = scriptRoot
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return hex.EncodeToString(sum[:])[:32]
}

type boundsCheck struct {
	setting string
	value   interface{}
	min     interface{}
	max     interface{}
}

// boundsChecks enumerates every range-limited setting with its bounds.
// A nil max means unbounded above. The same values drive both the
// validation tags and the RangeError messages, so the two cannot
// drift apart.
func (c *HostConfiguration) boundsChecks() []boundsCheck {
	return []boundsCheck{
		{"queues.maxPollingInterval", c.Queues.MaxPollingInterval, MinPollingInterval, nil},
		{"queues.batchSize", c.Queues.BatchSize, 1, MaxBatchSize},
		{"queues.maxDequeueCount", c.Queues.MaxDequeueCount, 1, nil},
		{"queues.newBatchThreshold", c.Queues.NewBatchThreshold, 0, nil},
		{"queues.visibilityTimeout", c.Queues.VisibilityTimeout, time.Duration(0), nil},
		{"http.maxConcurrentRequests", c.HTTP.MaxConcurrentRequests, -1, nil},
		{"http.maxOutstandingRequests", c.HTTP.MaxOutstandingRequests, -1, nil},
		{"singleton.lockPeriod", c.Singleton.LockPeriod, MinLockPeriod, MaxLockPeriod},
		{"singleton.listenerLockPeriod", c.Singleton.ListenerLockPeriod, MinLockPeriod, MaxLockPeriod},
		{"singleton.listenerLockRecoveryPollingInterval", c.Singleton.ListenerLockRecoveryPollingInterval, MinListenerLockRecoveryPollingInterval, nil},
		{"singleton.lockAcquisitionTimeout", c.Singleton.LockAcquisitionTimeout, MinLockAcquisitionTimeout, nil},
		{"singleton.lockAcquisitionPollingInterval", c.Singleton.LockAcquisitionPollingInterval, MinLockAcquisitionPollingInterval, nil},
	}
}

// validate enforces every bounded setting and converts the first
// violation into a RangeError naming the setting and its exact bounds.
func (c *HostConfiguration) validate(v *validator.Validate) error {
	for _, check := range c.boundsChecks() {
		tag := fmt.Sprintf("min=%v", check.min)
		if check.max != nil {
			tag = fmt.Sprintf("min=%v,max=%v", check.min, check.max)
		}
		if err := v.Var(check.value, tag); err != nil {
			return hosterrors.NewRangeError(check.setting, check.value, check.min, check.max)
		}
	}
	return nil
}
