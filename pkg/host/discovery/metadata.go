package discovery

import (
	"fmt"
	"regexp"
	"strings"
)

// FunctionFileName is the per-function metadata document.
const FunctionFileName = "function.json"

// ReservedFunctionName is the directory name reserved for the host
// itself; no function may claim it.
const ReservedFunctionName = "host"

var functionNameRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateName checks a function directory name: it must start with a
// letter, continue with letters, digits, underscores or hyphens, and
// must not collide with the reserved host name.
func ValidateName(name string) error {
	if !functionNameRegexp.MatchString(name) {
		return fmt.Errorf("'%s' is not a valid function name", name)
	}
	if strings.EqualFold(name, ReservedFunctionName) {
		return fmt.Errorf("'%s' is a reserved function name", name)
	}
	return nil
}

// TriggerBinding describes the single trigger of a function.
type TriggerBinding struct {
	// Type is the trigger kind, for example "httpTrigger" or
	// "queueTrigger".
	Type string

	// Name is the binding parameter name.
	Name string

	// Route is the HTTP route template; empty means the function name
	// is used.
	Route string

	// Methods restricts the HTTP methods; empty admits all.
	Methods []string
}

// IsHTTP reports whether this is the HTTP trigger.
func (b *TriggerBinding) IsHTTP() bool {
	return strings.EqualFold(b.Type, "httpTrigger")
}

// FunctionMetadata is the discovery result for one function directory.
type FunctionMetadata struct {
	Name       string
	Directory  string
	ScriptFile string
	Disabled   bool

	// Trigger is nil when the function declares no metadata document.
	Trigger *TriggerBinding

	// Errors collects everything wrong with the function. A function
	// with errors keeps its metadata for diagnostics but is excluded
	// from the invokable set.
	Errors []string
}

// Invokable reports whether the function is eligible for indexing.
func (m *FunctionMetadata) Invokable() bool {
	return !m.Disabled && len(m.Errors) == 0
}

// functionDocument mirrors the function.json wire shape. Unknown
// binding properties are deliberately ignored; bindings carry
// kind-specific settings the host does not interpret.
type functionDocument struct {
	ScriptFile string            `json:"scriptFile"`
	Disabled   bool              `json:"disabled"`
	Bindings   []bindingDocument `json:"bindings" validate:"dive"`
}

type bindingDocument struct {
	Type      string   `json:"type" validate:"required"`
	Direction string   `json:"direction" validate:"omitempty,oneof=in out inout"`
	Name      string   `json:"name"`
	Route     string   `json:"route"`
	Methods   []string `json:"methods"`
}

func (d *bindingDocument) isTrigger() bool {
	return strings.HasSuffix(strings.ToLower(d.Type), "trigger")
}
