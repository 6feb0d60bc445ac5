package host

import (
	"path/filepath"
	"strings"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/discovery"
)

// AttributeFault attributes a runtime failure to the function whose
// source directory appears as a path segment anywhere in the textual
// stack trace, not only in the top frame. Matching is case-insensitive
// and accepts both slash styles. Returns nil when no known function's
// directory appears.
func AttributeFault(functions []*discovery.FunctionMetadata, stackTrace string) *discovery.FunctionMetadata {
	if stackTrace == "" {
		return nil
	}
	trace := strings.ToLower(strings.ReplaceAll(stackTrace, `\`, "/"))

	for _, fn := range functions {
		segment := "/" + strings.ToLower(faultSegment(fn)) + "/"
		if strings.Contains(trace, segment) {
			return fn
		}
	}
	return nil
}

// faultSegment is the directory name a function's frames carry: the
// directory of its primary script when resolved, else the function
// name. An explicit scriptFile that escapes to a sibling directory
// attributes faults to that directory, matching where the erroring
// code actually lives.
func faultSegment(fn *discovery.FunctionMetadata) string {
	if fn.ScriptFile != "" {
		if dir := filepath.Base(filepath.Dir(fn.ScriptFile)); dir != "." && dir != string(filepath.Separator) {
			return dir
		}
	}
	return fn.Name
}
