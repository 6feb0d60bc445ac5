// Package host assembles one generation of the script host: it resolves
// the configuration document, builds the logging pipeline, discovers
// functions and arbitrates their HTTP routes. A Host is built, used for
// one configuration generation and discarded; the Manager owns the
// restart loop that replaces it.
package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/config"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/debug"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/discovery"
	hosterrors "github.com/jvano/azure-webjobs-sdk-script/pkg/host/errors"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/logging"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/metrics"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/routes"
)

// Log categories used by the host's own components.
const (
	CategoryStartup   = "Host.Startup"
	CategoryDiscovery = "Host.Discovery"
	CategoryManager   = "Host.Manager"
)

// Lifecycle metric names.
const (
	MetricHostStarted   = "host.started"
	MetricHostRestarted = "host.restarted"
)

// Options defines configurable options for the host.
type Options struct {
	// Root directory of the deployed functions; host.json lives here.
	ScriptRoot string

	// Root directory for host logs and the debug sentinel.
	LogRoot string

	// Execution environment consulted during configuration resolution.
	Environment config.Environment

	// Destination of the console provider and the bootstrap logger.
	ConsoleWriter io.Writer

	// Optional sink for lifecycle and pipeline metrics.
	Metrics metrics.Recorder

	// Optional telemetry publisher backing the telemetry provider.
	TelemetryPublisher logging.TelemetryPublisher

	// Capacity of the per-category log store.
	LogStoreCapacity int
}

// DefaultOptions returns a new Options with default values.
func DefaultOptions() *Options {
	return &Options{
		ScriptRoot:       ".",
		LogRoot:          "logs",
		Environment:      config.DetectEnvironment(),
		ConsoleWriter:    os.Stdout,
		LogStoreCapacity: logging.DefaultLogStoreCapacity,
	}
}

// WithScriptRoot sets the functions root directory.
func (o *Options) WithScriptRoot(root string) *Options {
	o.ScriptRoot = root
	return o
}

// WithLogRoot sets the log root directory.
func (o *Options) WithLogRoot(root string) *Options {
	o.LogRoot = root
	return o
}

// WithEnvironment sets the execution environment.
func (o *Options) WithEnvironment(env config.Environment) *Options {
	o.Environment = env
	return o
}

// WithConsoleWriter sets the console output destination.
func (o *Options) WithConsoleWriter(w io.Writer) *Options {
	o.ConsoleWriter = w
	return o
}

// WithMetrics sets the metrics recorder.
func (o *Options) WithMetrics(recorder metrics.Recorder) *Options {
	o.Metrics = recorder
	return o
}

// WithTelemetryPublisher sets the telemetry publisher.
func (o *Options) WithTelemetryPublisher(publisher logging.TelemetryPublisher) *Options {
	o.TelemetryPublisher = publisher
	return o
}

// WithLogStoreCapacity sets the log store capacity.
func (o *Options) WithLogStoreCapacity(capacity int) *Options {
	o.LogStoreCapacity = capacity
	return o
}

// Host is one configuration generation of the script host.
type Host struct {
	opts       *Options
	id         string
	instanceID string

	cfg     *config.HostConfiguration
	tracker *debug.Tracker
	factory *logging.Factory
	store   *logging.LogStore
	log     *logging.Logger

	functions []*discovery.FunctionMetadata
	errs      map[string][]string
	routes    *routes.Table
}

// New creates an uninitialized host. Initialize does all the work; a
// host that failed to initialize holds no resources beyond the tracker.
func New(opts *Options) *Host {
	if opts == nil {
		opts = DefaultOptions()
	}
	sentinel := filepath.Join(opts.LogRoot, "host", debug.SentinelFileName)
	return &Host{
		opts:       opts,
		instanceID: uuid.NewString(),
		tracker:    debug.NewTracker(sentinel),
		routes:     routes.NewTable(),
		errs:       make(map[string][]string),
	}
}

// Initialize resolves the configuration document, builds the logging
// pipeline and scans the function tree. Configuration failures are
// fatal; per-function failures are recorded and surfaced through
// FunctionErrors without aborting start-up.
func (h *Host) Initialize(ctx context.Context) error {
	// Until the pipeline exists the host logs through a plain console
	// factory so resolution failures are still visible.
	boot := logging.NewConsoleFactory(h.opts.ConsoleWriter)
	log := boot.CreateLogger(CategoryStartup)

	configPath := filepath.Join(h.opts.ScriptRoot, config.HostFileName)
	log.Info(ctx, fmt.Sprintf("Reading host configuration file '%s'", configPath))

	resolver := config.NewResolver(h.opts.Environment)
	cfg, err := resolver.ResolveFile(configPath)
	if err != nil {
		log.Error(ctx, "Host configuration file read failed", zap.Error(err))
		return err
	}
	h.cfg = cfg

	h.id = cfg.ID
	if h.id == "" {
		h.id = config.DeriveHostID(h.opts.ScriptRoot)
	}

	factory, err := h.buildPipeline(cfg)
	if err != nil {
		log.Error(ctx, "Logging pipeline build failed", zap.Error(err))
		return err
	}
	h.factory = factory
	h.log = factory.CreateLogger(CategoryStartup)

	// Every event of this generation carries the host identity.
	ctx = h.ScopeContext(ctx)
	h.log.Info(ctx, "Host configuration applied",
		zap.Bool("debug", h.tracker.InDebugMode()))

	scanner := discovery.NewScanner(factory.CreateLogger(CategoryDiscovery))
	result, err := scanner.ScanFunctions(ctx, h.opts.ScriptRoot)
	if err != nil {
		h.log.Error(ctx, "Function discovery failed", zap.Error(err))
		return err
	}

	h.functions = filterFunctions(result.Functions, cfg.Functions)
	h.errs = filterErrors(result.Errors, cfg.Functions)
	h.buildRouteTable(ctx)

	invokable := h.InvokableFunctions()
	if len(invokable) == 0 {
		h.log.Warn(ctx, hosterrors.NewNoFunctionsError(h.opts.ScriptRoot).Error())
	}

	if h.opts.Metrics != nil {
		h.opts.Metrics.Count(MetricHostStarted)
	}
	h.log.Info(ctx, "Host initialized",
		zap.Int("functions", len(h.functions)),
		zap.Int("invokable", len(invokable)))
	return nil
}

func (h *Host) buildPipeline(cfg *config.HostConfiguration) (*logging.Factory, error) {
	h.store = logging.NewLogStore(h.opts.LogStoreCapacity)

	builder := logging.NewBuilder().
		WithConsoleWriter(h.opts.ConsoleWriter).
		WithStore(h.store)
	if h.opts.Metrics != nil {
		builder = builder.WithMetrics(h.opts.Metrics)
	}
	if h.opts.TelemetryPublisher != nil {
		builder = builder.WithTelemetryPublisher(h.opts.TelemetryPublisher)
	}

	return builder.Build(logging.PipelineSettings{
		ConsoleLevel:       cfg.Tracing.ConsoleLevel,
		FileLoggingMode:    cfg.Tracing.FileLoggingMode,
		LogRoot:            h.opts.LogRoot,
		DefaultLevel:       cfg.Logger.DefaultLevel,
		CategoryLevels:     cfg.Logger.CategoryLevels,
		InstrumentationKey: h.opts.Environment.InstrumentationKey,
		InDebugMode:        h.tracker.InDebugMode,
	})
}

// buildRouteTable registers every invokable HTTP function. A rejected
// route is recorded against its function and excludes it from the
// invokable set; it never aborts the other registrations.
func (h *Host) buildRouteTable(ctx context.Context) {
	table := routes.NewTable()
	for _, fn := range h.functions {
		if !fn.Invokable() || len(h.errs[fn.Name]) > 0 {
			continue
		}
		if fn.Trigger == nil || !fn.Trigger.IsHTTP() {
			continue
		}
		route := fn.Trigger.Route
		if route == "" {
			route = routes.DefaultRoute(fn.Name)
		}
		if err := table.Validate(fn.Name, route, fn.Trigger.Methods); err != nil {
			h.errs[fn.Name] = append(h.errs[fn.Name], err.Error())
			h.log.Warn(ctx, fmt.Sprintf("Function '%s' route registration failed", fn.Name),
				zap.Error(err))
		}
	}
	h.routes = table
}

// ScopeContext returns ctx carrying the host identity scope so every
// event logged under it names this host instance.
func (h *Host) ScopeContext(ctx context.Context) context.Context {
	return logging.WithScope(ctx, map[string]interface{}{
		"hostId":         h.id,
		"hostInstanceId": h.instanceID,
	})
}

// ID returns the stable host identifier.
func (h *Host) ID() string {
	return h.id
}

// InstanceID returns the identifier of this host instance. Each
// generation gets a fresh one.
func (h *Host) InstanceID() string {
	return h.instanceID
}

// ScriptRoot returns the functions root directory.
func (h *Host) ScriptRoot() string {
	return h.opts.ScriptRoot
}

// Configuration returns the resolved configuration snapshot.
func (h *Host) Configuration() *config.HostConfiguration {
	return h.cfg
}

// Functions returns every discovered function, including ones excluded
// from the invokable set by recorded errors.
func (h *Host) Functions() []*discovery.FunctionMetadata {
	return h.functions
}

// Function returns the named function's metadata, or nil.
func (h *Host) Function(name string) *discovery.FunctionMetadata {
	for _, fn := range h.functions {
		if strings.EqualFold(fn.Name, name) {
			return fn
		}
	}
	return nil
}

// InvokableFunctions returns the functions eligible to serve
// invocations: enabled, no discovery errors, no route errors.
func (h *Host) InvokableFunctions() []*discovery.FunctionMetadata {
	var out []*discovery.FunctionMetadata
	for _, fn := range h.functions {
		if fn.Invokable() && len(h.errs[fn.Name]) == 0 {
			out = append(out, fn)
		}
	}
	return out
}

// FunctionErrors returns the accumulated per-function error report.
// The returned map is a copy.
func (h *Host) FunctionErrors() map[string][]string {
	out := make(map[string][]string, len(h.errs))
	for name, msgs := range h.errs {
		out[name] = append([]string(nil), msgs...)
	}
	return out
}

// Routes returns the route table of this generation.
func (h *Host) Routes() *routes.Table {
	return h.routes
}

// Tracker returns the debug-mode tracker.
func (h *Host) Tracker() *debug.Tracker {
	return h.tracker
}

// InDebugMode reports whether the host is currently in debug mode.
func (h *Host) InDebugMode() bool {
	return h.tracker.InDebugMode()
}

// NotifyDebug places the host in debug mode and touches the sentinel.
func (h *Host) NotifyDebug() {
	h.tracker.NotifyDebug()
}

// LoggerFactory returns the logging pipeline of this generation, or nil
// before Initialize succeeds.
func (h *Host) LoggerFactory() *logging.Factory {
	return h.factory
}

// LogStore returns the in-memory log store fed by the pipeline.
func (h *Host) LogStore() *logging.LogStore {
	return h.store
}

// Close releases the logging pipeline.
func (h *Host) Close() error {
	if h.factory == nil {
		return nil
	}
	return h.factory.Close()
}

// filterFunctions applies the allow-list. A nil list admits everything;
// an empty non-nil list admits nothing.
func filterFunctions(functions []*discovery.FunctionMetadata, allowed []string) []*discovery.FunctionMetadata {
	if allowed == nil {
		return functions
	}
	var out []*discovery.FunctionMetadata
	for _, fn := range functions {
		if containsFold(allowed, fn.Name) {
			out = append(out, fn)
		}
	}
	return out
}

// filterErrors drops error entries for functions outside the allow-list
// so the report matches the filtered function set.
func filterErrors(errs map[string][]string, allowed []string) map[string][]string {
	out := make(map[string][]string, len(errs))
	for name, msgs := range errs {
		if allowed != nil && !containsFold(allowed, name) {
			continue
		}
		out[name] = append([]string(nil), msgs...)
	}
	return out
}

func containsFold(list []string, name string) bool {
	for _, entry := range list {
		if strings.EqualFold(entry, name) {
			return true
		}
	}
	return false
}
