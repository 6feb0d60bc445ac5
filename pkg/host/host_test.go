package host

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/config"
	hosterrors "github.com/jvano/azure-webjobs-sdk-script/pkg/host/errors"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/metrics"
)

func writeHostFile(t *testing.T, root, document string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.HostFileName), []byte(document), 0644))
}

func writeFunction(t *testing.T, root, name, document string, files ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if document != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "function.json"), []byte(document), 0644))
	}
	for _, file := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte("// stub"), 0644))
	}
}

func newTestHost(t *testing.T, root string) (*Host, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	opts := DefaultOptions().
		WithScriptRoot(root).
		WithLogRoot(t.TempDir()).
		WithConsoleWriter(buf).
		WithEnvironment(config.Environment{})
	return New(opts), buf
}

func TestHostInitialize(t *testing.T) {
	root := t.TempDir()
	writeHostFile(t, root, `{"id": "testhost"}`)
	writeFunction(t, root, "HttpA",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req", "route": "orders/{id}", "methods": ["GET"]}]}`,
		"run.js")
	writeFunction(t, root, "HttpB",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req"}]}`,
		"index.js")
	writeFunction(t, root, "Worker",
		`{"bindings": [{"type": "queueTrigger", "direction": "in", "name": "msg"}]}`,
		"worker.py")

	h, _ := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	assert.Equal(t, "testhost", h.ID())
	assert.NotEmpty(t, h.InstanceID())
	assert.Len(t, h.Functions(), 3)
	assert.Len(t, h.InvokableFunctions(), 3)
	assert.Empty(t, h.FunctionErrors())

	entry, ok := h.Routes().Lookup("HttpA")
	require.True(t, ok)
	assert.Equal(t, "orders/{id}", entry.Route)
	assert.Equal(t, []string{"GET"}, entry.Methods)

	// No explicit template: the function name is the route.
	entry, ok = h.Routes().Lookup("HttpB")
	require.True(t, ok)
	assert.Equal(t, "HttpB", entry.Route)

	// Non-HTTP functions claim no route slot.
	_, ok = h.Routes().Lookup("Worker")
	assert.False(t, ok)
}

func TestHostInitializeWithoutHostFile(t *testing.T) {
	root := t.TempDir()
	writeFunction(t, root, "Fn",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req"}]}`,
		"run.js")

	h, _ := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	// A missing document resolves to defaults and a derived host ID.
	assert.Equal(t, config.DeriveHostID(root), h.ID())
	assert.Len(t, h.InvokableFunctions(), 1)
}

func TestHostInitializeParseErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	writeHostFile(t, root, `{"id": `)

	h, buf := newTestHost(t, root)
	err := h.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, hosterrors.IsParseError(err))

	// The reading/failed message pair is visible on the console.
	out := buf.String()
	assert.Contains(t, out, "Reading host configuration file")
	assert.Contains(t, out, "Host configuration file read failed")
}

func TestHostInitializeRangeErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	writeHostFile(t, root, `{"queues": {"batchSize": 64}}`)

	h, _ := newTestHost(t, root)
	err := h.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, hosterrors.IsRangeError(err))
}

func TestHostFunctionErrorsDoNotAbortStartup(t *testing.T) {
	root := t.TempDir()
	writeFunction(t, root, "Good",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req"}]}`,
		"run.js")
	writeFunction(t, root, "Bad",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "a"}, {"type": "queueTrigger", "direction": "in", "name": "b"}]}`,
		"run.js")

	h, _ := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	assert.Len(t, h.Functions(), 2)

	invokable := h.InvokableFunctions()
	require.Len(t, invokable, 1)
	assert.Equal(t, "Good", invokable[0].Name)

	errs := h.FunctionErrors()
	require.Contains(t, errs, "Bad")
	assert.NotEmpty(t, errs["Bad"])
}

func TestHostRouteConflictRecordedAgainstLoser(t *testing.T) {
	root := t.TempDir()
	writeFunction(t, root, "AaFirst",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req", "route": "items"}]}`,
		"run.js")
	writeFunction(t, root, "BbSecond",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req", "route": "/items/"}]}`,
		"run.js")

	h, _ := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	// Directories scan in name order, so the first registration wins.
	_, ok := h.Routes().Lookup("AaFirst")
	assert.True(t, ok)
	_, ok = h.Routes().Lookup("BbSecond")
	assert.False(t, ok)

	errs := h.FunctionErrors()
	require.Contains(t, errs, "BbSecond")
	assert.Contains(t, errs["BbSecond"][0], "AaFirst")

	invokable := h.InvokableFunctions()
	require.Len(t, invokable, 1)
	assert.Equal(t, "AaFirst", invokable[0].Name)
}

func TestHostReservedRouteRejected(t *testing.T) {
	root := t.TempDir()
	writeFunction(t, root, "Sneaky",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req", "route": "admin/tasks"}]}`,
		"run.js")

	h, _ := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	errs := h.FunctionErrors()
	require.Contains(t, errs, "Sneaky")
	assert.Contains(t, errs["Sneaky"][0], "built in routes")
	assert.Empty(t, h.InvokableFunctions())
}

func TestHostAllowListFiltersFunctions(t *testing.T) {
	root := t.TempDir()
	writeHostFile(t, root, `{"functions": ["kept"]}`)
	writeFunction(t, root, "Kept",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req"}]}`,
		"run.js")
	writeFunction(t, root, "Dropped",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req"}]}`,
		"run.js")

	h, _ := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	// Allow-list entries match case-insensitively.
	require.Len(t, h.Functions(), 1)
	assert.Equal(t, "Kept", h.Functions()[0].Name)
	_, ok := h.Routes().Lookup("Dropped")
	assert.False(t, ok)
}

func TestHostEmptyAllowListAdmitsNothing(t *testing.T) {
	root := t.TempDir()
	writeHostFile(t, root, `{"functions": []}`)
	writeFunction(t, root, "Fn",
		`{"bindings": [{"type": "httpTrigger", "direction": "in", "name": "req"}]}`,
		"run.js")

	h, buf := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	assert.Empty(t, h.Functions())
	assert.Contains(t, buf.String(), "no invokable functions")
}

func TestHostScopeCarriesIdentity(t *testing.T) {
	root := t.TempDir()
	writeHostFile(t, root, `{"id": "scopedhost"}`)

	h, buf := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	log := h.LoggerFactory().CreateLogger("Probe")
	log.Info(h.ScopeContext(context.Background()), "scope probe")

	out := buf.String()
	assert.Contains(t, out, "scope probe")
	assert.Contains(t, out, "scope_hostId")
	assert.Contains(t, out, "scopedhost")
	assert.Contains(t, out, "scope_hostInstanceId")
	assert.Contains(t, out, h.InstanceID())
}

func TestHostEmitsLifecycleMetrics(t *testing.T) {
	root := t.TempDir()
	recorder := metrics.NewInMemoryRecorder()

	buf := &bytes.Buffer{}
	opts := DefaultOptions().
		WithScriptRoot(root).
		WithLogRoot(t.TempDir()).
		WithConsoleWriter(buf).
		WithEnvironment(config.Environment{}).
		WithMetrics(recorder)

	h := New(opts)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	assert.Equal(t, int64(1), recorder.Value(MetricHostStarted))
	// No instrumentation key: exactly one disabled event, no enabled one.
	assert.Equal(t, int64(1), recorder.Value("host.telemetry.disabled"))
	assert.Equal(t, int64(0), recorder.Value("host.telemetry.enabled"))
}

func TestHostTelemetryEnabledMetricWithKey(t *testing.T) {
	root := t.TempDir()
	recorder := metrics.NewInMemoryRecorder()

	opts := DefaultOptions().
		WithScriptRoot(root).
		WithLogRoot(t.TempDir()).
		WithConsoleWriter(&bytes.Buffer{}).
		WithEnvironment(config.Environment{InstrumentationKey: "ikey-123"}).
		WithMetrics(recorder)

	h := New(opts)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	assert.Equal(t, int64(1), recorder.Value("host.telemetry.enabled"))
	assert.Equal(t, int64(0), recorder.Value("host.telemetry.disabled"))
}

func TestHostInstanceIDFreshPerGeneration(t *testing.T) {
	root := t.TempDir()

	first, _ := newTestHost(t, root)
	second, _ := newTestHost(t, root)
	assert.NotEqual(t, first.InstanceID(), second.InstanceID())
}

func TestHostNotifyDebug(t *testing.T) {
	root := t.TempDir()

	h, _ := newTestHost(t, root)
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	assert.False(t, h.InDebugMode())
	h.NotifyDebug()
	assert.True(t, h.InDebugMode())
	assert.FileExists(t, h.Tracker().SentinelPath())
}
