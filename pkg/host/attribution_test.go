package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/discovery"
)

func metadata(name, scriptFile string) *discovery.FunctionMetadata {
	return &discovery.FunctionMetadata{Name: name, ScriptFile: scriptFile}
}

func TestAttributeFaultMatchesNestedFrames(t *testing.T) {
	functions := []*discovery.FunctionMetadata{
		metadata("FunctionA", `D:\home\site\wwwroot\FunctionA\run.js`),
		metadata("FunctionB", `D:\home\site\wwwroot\FunctionB\run.js`),
	}

	// The failing frame is a nested helper, not the function's own
	// entry file.
	trace := `Error: boom
    at helper (D:\home\site\wwwroot\FunctionA\foo\bar.js:10:5)
    at process._tickCallback (internal/process/next_tick.js:68:7)`

	fn := AttributeFault(functions, trace)
	require.NotNil(t, fn)
	assert.Equal(t, "FunctionA", fn.Name)
}

func TestAttributeFaultForwardSlashes(t *testing.T) {
	functions := []*discovery.FunctionMetadata{
		metadata("FunctionB", "/home/site/wwwroot/FunctionB/run.js"),
	}

	trace := "Error: boom\n    at /home/site/wwwroot/functionb/helpers/util.js:3:1"
	fn := AttributeFault(functions, trace)
	require.NotNil(t, fn)
	assert.Equal(t, "FunctionB", fn.Name)
}

func TestAttributeFaultNoMatch(t *testing.T) {
	functions := []*discovery.FunctionMetadata{
		metadata("FunctionA", "/root/FunctionA/run.js"),
	}

	assert.Nil(t, AttributeFault(functions, "Error: boom\n    at /elsewhere/other/run.js:1:1"))
	assert.Nil(t, AttributeFault(functions, ""))
	assert.Nil(t, AttributeFault(nil, "Error: boom at /root/FunctionA/run.js"))
}

func TestAttributeFaultFirstMatchWins(t *testing.T) {
	functions := []*discovery.FunctionMetadata{
		metadata("First", "/root/First/run.js"),
		metadata("Second", "/root/Second/run.js"),
	}

	trace := "at /root/Second/a.js:1:1\nat /root/First/b.js:2:2"
	fn := AttributeFault(functions, trace)
	require.NotNil(t, fn)
	assert.Equal(t, "First", fn.Name)
}

func TestAttributeFaultWholeSegmentOnly(t *testing.T) {
	functions := []*discovery.FunctionMetadata{
		metadata("Fn", "/root/Fn/run.js"),
	}

	// "FnOther" contains "Fn" as a prefix but is a different segment.
	assert.Nil(t, AttributeFault(functions, "at /root/FnOther/run.js:1:1"))

	fn := AttributeFault(functions, "at /root/Fn/run.js:1:1")
	require.NotNil(t, fn)
}

func TestAttributeFaultFollowsScriptDirectory(t *testing.T) {
	// A function whose script escaped to a shared sibling directory is
	// attributed by where its code lives, not by its function name.
	functions := []*discovery.FunctionMetadata{
		metadata("Escaper", "/root/shared/common.js"),
	}

	fn := AttributeFault(functions, "at /root/shared/common.js:7:3")
	require.NotNil(t, fn)
	assert.Equal(t, "Escaper", fn.Name)

	assert.Nil(t, AttributeFault(functions, "at /root/Escaper/run.js:1:1"))
}

func TestAttributeFaultWithoutScriptFileUsesName(t *testing.T) {
	functions := []*discovery.FunctionMetadata{
		metadata("Bare", ""),
	}

	fn := AttributeFault(functions, `at C:\site\Bare\handler.py line 12`)
	require.NotNil(t, fn)
	assert.Equal(t, "Bare", fn.Name)
}
