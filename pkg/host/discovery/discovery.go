package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/logging"
)

// Scanner discovers functions in the immediate subdirectories of a
// script root.
type Scanner struct {
	log      *logging.Logger
	validate *validator.Validate
}

// NewScanner creates a scanner reporting per-function problems on the
// given logger.
func NewScanner(log *logging.Logger) *Scanner {
	return &Scanner{log: log, validate: validator.New()}
}

// ScanResult is the outcome of one scan of a script root.
type ScanResult struct {
	// Functions holds metadata for every validly named function
	// directory, including functions with errors.
	Functions []*FunctionMetadata

	// Errors maps function names to everything wrong with them. Names
	// invalid enough to produce no metadata still get an entry here.
	Errors map[string][]string
}

// Invokable returns the functions eligible for indexing.
func (r *ScanResult) Invokable() []*FunctionMetadata {
	var out []*FunctionMetadata
	for _, fn := range r.Functions {
		if fn.Invokable() {
			out = append(out, fn)
		}
	}
	return out
}

// ByName returns the metadata for a function, or nil when the name was
// never discovered.
func (r *ScanResult) ByName(name string) *FunctionMetadata {
	for _, fn := range r.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// ScanFunctions walks the immediate subdirectories of root and builds
// metadata for each. Per-function problems are collected, logged and
// reported; they never abort the scan of sibling directories.
func (s *Scanner) ScanFunctions(ctx context.Context, root string) (*ScanResult, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("unable to read script root '%s': %w", root, err)
	}

	result := &ScanResult{Errors: make(map[string][]string)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()

		// Invalid names produce an error entry but no metadata.
		if err := ValidateName(name); err != nil {
			result.Errors[name] = append(result.Errors[name], err.Error())
			s.log.Warn(ctx, fmt.Sprintf("Function directory '%s' skipped", name), zap.Error(err))
			continue
		}

		metadata := s.readFunction(name, filepath.Join(root, name))
		result.Functions = append(result.Functions, metadata)
		if len(metadata.Errors) > 0 {
			result.Errors[name] = append(result.Errors[name], metadata.Errors...)
			s.log.Warn(ctx, fmt.Sprintf("Function '%s' has configuration errors and will not be enabled", name),
				zap.Strings("errors", metadata.Errors))
		}
	}
	return result, nil
}

func (s *Scanner) readFunction(name, dir string) *FunctionMetadata {
	metadata := &FunctionMetadata{Name: name, Directory: dir}

	doc, err := s.readDocument(dir)
	if err != nil {
		// Without a readable document there is no way to know the
		// declared script file, so resolution stops here.
		metadata.Errors = append(metadata.Errors, err.Error())
		return metadata
	}

	scriptFile := ""
	if doc != nil {
		scriptFile = doc.ScriptFile
		metadata.Disabled = doc.Disabled
		metadata.Errors = append(metadata.Errors, s.validateDocument(doc)...)

		trigger, terrs := extractTrigger(doc)
		metadata.Trigger = trigger
		metadata.Errors = append(metadata.Errors, terrs...)
	}

	script, err := DeterminePrimaryScriptFile(scriptFile, dir, os.DirFS(dir))
	if err != nil {
		metadata.Errors = append(metadata.Errors, err.Error())
	} else {
		metadata.ScriptFile = script
	}
	return metadata
}

func (s *Scanner) readDocument(dir string) (*functionDocument, error) {
	data, err := os.ReadFile(filepath.Join(dir, FunctionFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %v", FunctionFileName, err)
	}
	var doc functionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %v", FunctionFileName, err)
	}
	return &doc, nil
}

func (s *Scanner) validateDocument(doc *functionDocument) []string {
	err := s.validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("binding is missing required field '%s'", strings.ToLower(fe.Field())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("binding field '%s' must be one of [%s] (got '%v')",
				strings.ToLower(fe.Field()), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return msgs
}

// extractTrigger pulls the single trigger binding out of the document.
// A document, once present, must declare exactly one trigger.
func extractTrigger(doc *functionDocument) (*TriggerBinding, []string) {
	var triggers []bindingDocument
	for _, binding := range doc.Bindings {
		if binding.isTrigger() {
			triggers = append(triggers, binding)
		}
	}
	switch {
	case len(triggers) == 0:
		return nil, []string{"no trigger binding defined; a function must declare exactly one trigger"}
	case len(triggers) > 1:
		return nil, []string{"multiple trigger bindings defined; a function may declare only one trigger"}
	}

	trigger := triggers[0]
	var errs []string
	if trigger.Direction != "" && !strings.EqualFold(trigger.Direction, "in") {
		errs = append(errs, fmt.Sprintf("trigger binding direction must be 'in' (got '%s')", trigger.Direction))
	}
	return &TriggerBinding{
		Type:    trigger.Type,
		Name:    trigger.Name,
		Route:   trigger.Route,
		Methods: trigger.Methods,
	}, errs
}
