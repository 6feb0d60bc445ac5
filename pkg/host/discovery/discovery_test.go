package discovery

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/logging"
)

func newTestScanner() *Scanner {
	return NewScanner(logging.NewConsoleFactory(io.Discard).CreateLogger("Host.Discovery"))
}

func writeFunction(t *testing.T, root, name, doc string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if doc != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, FunctionFileName), []byte(doc), 0644))
	}
	for fileName, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(content), 0644))
	}
}

func TestScanFunctions(t *testing.T) {
	root := t.TempDir()
	writeFunction(t, root, "FnHttp", `{
		"bindings": [
			{"type": "httpTrigger", "direction": "in", "name": "req", "route": "orders/{id}", "methods": ["GET", "POST"]},
			{"type": "http", "direction": "out", "name": "res"}
		]
	}`, map[string]string{"run.js": "module.exports = {}"})
	writeFunction(t, root, "FnQueue", `{
		"scriptFile": "src/worker.py",
		"bindings": [{"type": "queueTrigger", "direction": "in", "name": "msg"}]
	}`, nil)
	writeFunction(t, root, "FnNoDoc", "", map[string]string{"handler.py": "pass"})

	// Root-level files and invalidly named directories are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("docs"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "1bad"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "host"), 0755))

	result, err := newTestScanner().ScanFunctions(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Functions, 3)
	assert.Len(t, result.Invokable(), 3)

	http := result.ByName("FnHttp")
	require.NotNil(t, http)
	require.NotNil(t, http.Trigger)
	assert.True(t, http.Trigger.IsHTTP())
	assert.Equal(t, "orders/{id}", http.Trigger.Route)
	assert.Equal(t, []string{"GET", "POST"}, http.Trigger.Methods)
	assert.Equal(t, filepath.Join(root, "FnHttp", "run.js"), http.ScriptFile)
	assert.True(t, http.Invokable())

	queue := result.ByName("FnQueue")
	require.NotNil(t, queue)
	require.NotNil(t, queue.Trigger)
	assert.False(t, queue.Trigger.IsHTTP())
	assert.Equal(t, filepath.Join(root, "FnQueue", "src", "worker.py"), queue.ScriptFile)

	noDoc := result.ByName("FnNoDoc")
	require.NotNil(t, noDoc)
	assert.Nil(t, noDoc.Trigger)
	assert.Equal(t, filepath.Join(root, "FnNoDoc", "handler.py"), noDoc.ScriptFile)
	assert.True(t, noDoc.Invokable())

	// Invalid names are reported without metadata.
	assert.Nil(t, result.ByName("1bad"))
	assert.Nil(t, result.ByName("host"))
	assert.Contains(t, result.Errors["1bad"][0], "not a valid function name")
	assert.Contains(t, result.Errors["host"][0], "reserved")
}

func TestScanFunctionsCollectsErrorsPerFunction(t *testing.T) {
	root := t.TempDir()
	writeFunction(t, root, "FnGood", `{
		"bindings": [{"type": "timerTrigger", "direction": "in", "name": "timer"}]
	}`, map[string]string{"run.js": "ok"})
	writeFunction(t, root, "FnTwoTriggers", `{
		"bindings": [
			{"type": "httpTrigger", "direction": "in", "name": "req"},
			{"type": "queueTrigger", "direction": "in", "name": "msg"}
		]
	}`, map[string]string{"run.js": "ok"})
	writeFunction(t, root, "FnNoTrigger", `{"bindings": []}`, map[string]string{"run.js": "ok"})
	writeFunction(t, root, "FnAmbiguous", "", map[string]string{"a.js": "x", "b.js": "y"})
	writeFunction(t, root, "FnBadJSON", `{"bindings": [`, map[string]string{"run.js": "ok"})
	writeFunction(t, root, "FnDisabled", `{
		"disabled": true,
		"bindings": [{"type": "timerTrigger", "direction": "in", "name": "timer"}]
	}`, map[string]string{"run.js": "ok"})

	result, err := newTestScanner().ScanFunctions(context.Background(), root)
	require.NoError(t, err)

	// One bad function never hides its siblings.
	require.Len(t, result.Functions, 6)

	invokable := result.Invokable()
	require.Len(t, invokable, 1)
	assert.Equal(t, "FnGood", invokable[0].Name)

	assert.Contains(t, result.Errors["FnTwoTriggers"][0], "multiple trigger bindings")
	assert.Contains(t, result.Errors["FnNoTrigger"][0], "no trigger binding")
	assert.Contains(t, result.Errors["FnAmbiguous"][0], "unable to determine the primary function script file")
	assert.Contains(t, result.Errors["FnBadJSON"][0], "unable to parse function.json")

	// Disabled is a state, not an error.
	disabled := result.ByName("FnDisabled")
	require.NotNil(t, disabled)
	assert.True(t, disabled.Disabled)
	assert.Empty(t, disabled.Errors)
	assert.False(t, disabled.Invokable())
	assert.NotContains(t, result.Errors, "FnDisabled")
}

func TestScanFunctionsBindingValidation(t *testing.T) {
	root := t.TempDir()
	writeFunction(t, root, "FnBadBinding", `{
		"bindings": [
			{"type": "httpTrigger", "direction": "in", "name": "req"},
			{"direction": "in", "name": "extra"}
		]
	}`, map[string]string{"run.js": "ok"})
	writeFunction(t, root, "FnBadDirection", `{
		"bindings": [{"type": "httpTrigger", "direction": "sideways", "name": "req"}]
	}`, map[string]string{"run.js": "ok"})
	writeFunction(t, root, "FnOutTrigger", `{
		"bindings": [{"type": "queueTrigger", "direction": "out", "name": "msg"}]
	}`, map[string]string{"run.js": "ok"})

	result, err := newTestScanner().ScanFunctions(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, result.Errors["FnBadBinding"][0], "missing required field 'type'")
	assert.Contains(t, result.Errors["FnBadDirection"][0], "must be one of")
	assert.Contains(t, result.Errors["FnOutTrigger"][0], "direction must be 'in'")
}

func TestScanFunctionsMissingRoot(t *testing.T) {
	_, err := newTestScanner().ScanFunctions(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read script root")
}
