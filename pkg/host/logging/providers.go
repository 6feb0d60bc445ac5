package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProviderKind identifies one provider slot in the pipeline registry.
type ProviderKind string

const (
	ProviderConsole   ProviderKind = "console"
	ProviderFile      ProviderKind = "file"
	ProviderTelemetry ProviderKind = "telemetry"
	ProviderStore     ProviderKind = "store"
)

// HostLogFileName is the file the file provider appends to under
// <logRoot>/host.
const HostLogFileName = "host.log"

// ProviderContext carries everything a provider constructor may need:
// the resolved pipeline settings plus the collaborators owned by the
// builder.
type ProviderContext struct {
	Settings  PipelineSettings
	Console   io.Writer
	Telemetry TelemetryPublisher
	Store     *LogStore

	// OnClose registers a resource the factory closes when the
	// pipeline is torn down.
	OnClose func(io.Closer)
}

// ProviderFunc builds the core for one provider slot. Returning a nil
// core (and nil error) leaves the slot out of the pipeline.
type ProviderFunc func(ProviderContext) (zapcore.Core, error)

// ProviderRegistry maps provider kinds to their constructors. Providers
// are built in registration order, so the registry also fixes the
// fan-out order of the pipeline.
type ProviderRegistry struct {
	order     []ProviderKind
	providers map[ProviderKind]ProviderFunc
}

// NewProviderRegistry returns an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[ProviderKind]ProviderFunc)}
}

// Register adds or replaces the constructor for a provider kind.
// Replacing keeps the kind's original position in the build order.
func (r *ProviderRegistry) Register(kind ProviderKind, fn ProviderFunc) {
	if _, exists := r.providers[kind]; !exists {
		r.order = append(r.order, kind)
	}
	r.providers[kind] = fn
}

// Kinds returns the registered provider kinds in build order.
func (r *ProviderRegistry) Kinds() []ProviderKind {
	kinds := make([]ProviderKind, len(r.order))
	copy(kinds, r.order)
	return kinds
}

// DefaultProviders returns the standard registry: console, file and
// remote telemetry, plus the in-memory store when one is attached.
func DefaultProviders() *ProviderRegistry {
	registry := NewProviderRegistry()
	registry.Register(ProviderConsole, consoleProvider)
	registry.Register(ProviderFile, fileProvider)
	registry.Register(ProviderTelemetry, telemetryProvider)
	registry.Register(ProviderStore, storeProvider)
	return registry
}

// consoleProvider writes human-readable output to the console writer,
// gated by the configured console verbosity.
func consoleProvider(pctx ProviderContext) (zapcore.Core, error) {
	threshold := pctx.Settings.ConsoleLevel
	if threshold == LevelNone {
		return nil, nil
	}
	enabler := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= threshold.zapLevel()
	})
	encoder := zapcore.NewConsoleEncoder(consoleEncoderConfig())
	return zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(pctx.Console)), enabler), nil
}

// fileProvider appends JSON events to <logRoot>/host/host.log. It is
// wired when the file logging mode is "always", or when the mode is
// "debugOnly" and the host is in debug mode at build time.
func fileProvider(pctx ProviderContext) (zapcore.Core, error) {
	switch pctx.Settings.FileLoggingMode {
	case FileLoggingNever:
		return nil, nil
	case FileLoggingDebugOnly:
		if pctx.Settings.InDebugMode == nil || !pctx.Settings.InDebugMode() {
			return nil, nil
		}
	}
	dir := filepath.Join(pctx.Settings.LogRoot, "host")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create host log directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(dir, HostLogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open host log file: %w", err)
	}
	if pctx.OnClose != nil {
		pctx.OnClose(file)
	}
	encoder := zapcore.NewJSONEncoder(fileEncoderConfig())
	return zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(file)), zapcore.DebugLevel), nil
}

// telemetryProvider routes events to the remote telemetry publisher. It
// is wired only when an instrumentation key is configured.
func telemetryProvider(pctx ProviderContext) (zapcore.Core, error) {
	if pctx.Settings.InstrumentationKey == "" {
		return nil, nil
	}
	publisher := pctx.Telemetry
	if publisher == nil {
		publisher = discardPublisher{}
	}
	return newTelemetryCore(publisher), nil
}

// storeProvider captures recent events into the builder's in-memory
// store when one is attached.
func storeProvider(pctx ProviderContext) (zapcore.Core, error) {
	if pctx.Store == nil {
		return nil, nil
	}
	return newStoreCore(pctx.Store), nil
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
