package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

// Metric events emitted while the pipeline is built. Exactly one of the
// two fires per build, depending on whether an instrumentation key is
// configured.
const (
	MetricTelemetryEnabled  = "host.telemetry.enabled"
	MetricTelemetryDisabled = "host.telemetry.disabled"
)

// MetricsSink receives the counter events the builder emits.
type MetricsSink interface {
	Count(name string)
}

// PipelineSettings are the resolved configuration values the pipeline
// is built from.
type PipelineSettings struct {
	// ConsoleLevel gates the console provider; None removes it.
	ConsoleLevel Level

	// FileLoggingMode decides whether the file provider participates.
	FileLoggingMode FileLoggingMode

	// LogRoot is the directory the file provider writes under.
	LogRoot string

	// DefaultLevel and CategoryLevels form the category filter shared
	// by every logger the pipeline creates.
	DefaultLevel   Level
	CategoryLevels map[string]Level

	// InstrumentationKey enables the remote telemetry provider when
	// non-empty.
	InstrumentationKey string

	// InDebugMode is sampled once at build time to decide whether a
	// debugOnly file provider is wired.
	InDebugMode func() bool
}

// Builder assembles the host logging pipeline: it runs every registered
// provider constructor, fans the resulting cores out behind a single
// core, and attaches the category filter.
type Builder struct {
	registry  *ProviderRegistry
	metrics   MetricsSink
	telemetry TelemetryPublisher
	console   io.Writer
	store     *LogStore
}

// NewBuilder returns a builder with the default provider registry and
// console output on stdout.
func NewBuilder() *Builder {
	return &Builder{
		registry: DefaultProviders(),
		console:  os.Stdout,
	}
}

// WithRegistry replaces the provider registry.
func (b *Builder) WithRegistry(registry *ProviderRegistry) *Builder {
	b.registry = registry
	return b
}

// WithMetrics sets the sink for the builder's metric events.
func (b *Builder) WithMetrics(metrics MetricsSink) *Builder {
	b.metrics = metrics
	return b
}

// WithTelemetryPublisher sets the publisher behind the telemetry
// provider.
func (b *Builder) WithTelemetryPublisher(publisher TelemetryPublisher) *Builder {
	b.telemetry = publisher
	return b
}

// WithConsoleWriter redirects the console provider's output.
func (b *Builder) WithConsoleWriter(w io.Writer) *Builder {
	b.console = w
	return b
}

// WithStore attaches an in-memory store that retains recent events.
func (b *Builder) WithStore(store *LogStore) *Builder {
	b.store = store
	return b
}

// Build constructs the pipeline for the given settings and returns the
// factory that creates category loggers over it. Build also emits the
// telemetry wiring metric: host.telemetry.enabled when an
// instrumentation key is configured, host.telemetry.disabled otherwise.
func (b *Builder) Build(settings PipelineSettings) (*Factory, error) {
	factory := newFactory(NewCategoryFilter(settings.DefaultLevel, settings.CategoryLevels))

	pctx := ProviderContext{
		Settings:  settings,
		Console:   b.console,
		Telemetry: b.telemetry,
		Store:     b.store,
		OnClose:   factory.addCloser,
	}
	if pctx.Console == nil {
		pctx.Console = os.Stdout
	}

	var cores []zapcore.Core
	for _, kind := range b.registry.Kinds() {
		core, err := b.registry.providers[kind](pctx)
		if err != nil {
			factory.Close()
			return nil, fmt.Errorf("failed to build '%s' logging provider: %w", kind, err)
		}
		if core != nil {
			cores = append(cores, core)
		}
	}

	if b.metrics != nil {
		if settings.InstrumentationKey != "" {
			b.metrics.Count(MetricTelemetryEnabled)
		} else {
			b.metrics.Count(MetricTelemetryDisabled)
		}
	}

	if len(cores) == 0 {
		factory.core = zapcore.NewNopCore()
	} else {
		factory.core = zapcore.NewTee(cores...)
	}
	return factory, nil
}
