package errors

import (
	"errors"
	"fmt"
)

// ParseError indicates the host configuration document could not be parsed.
// It is fatal to host start-up.
type ParseError struct {
	// File is the configuration file the document was read from.
	File string

	// Underlying parser error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse host configuration file '%s': %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps a parser failure with the name of the offending file.
func NewParseError(file string, err error) *ParseError {
	return &ParseError{File: file, Err: err}
}

// RangeError indicates a resolved configuration value fell outside its declared
// bounds. The message always states the exact bounds so the operator can fix the
// document without consulting source code.
type RangeError struct {
	Setting string
	Value   interface{}
	Min     interface{}
	Max     interface{}
}

func (e *RangeError) Error() string {
	if e.Max == nil {
		return fmt.Sprintf("%s must be at least %v (got %v)", e.Setting, e.Min, e.Value)
	}
	return fmt.Sprintf("%s must be between %v and %v (got %v)", e.Setting, e.Min, e.Max, e.Value)
}

// NewRangeError creates a RangeError for the named setting.
func NewRangeError(setting string, value, minimum, maximum interface{}) *RangeError {
	return &RangeError{Setting: setting, Value: value, Min: minimum, Max: maximum}
}

// ConfigurationError indicates a single function could not be configured, for
// example when no unambiguous primary script file exists. It is local to the
// offending function and never aborts the scan of its siblings.
type ConfigurationError struct {
	// Function is the function directory (or name) the error belongs to.
	// Empty for host-level configuration errors.
	Function string
	Message  string
	Err      error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Function != "" {
		msg = fmt.Sprintf("function '%s': %s", e.Function, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a ConfigurationError scoped to one function.
func NewConfigurationError(function, message string) *ConfigurationError {
	return &ConfigurationError{Function: function, Message: message}
}

// NewNoFunctionsError reports that a scan of the script root produced no
// invokable functions. Logged as a warning, never fatal.
func NewNoFunctionsError(root string) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf("no invokable functions found in '%s'", root)}
}

// RouteConflictError indicates a function attempted to register an HTTP route
// already owned by another function for an overlapping method set.
type RouteConflictError struct {
	// Function is the function whose registration was rejected.
	Function string

	// OtherFunction owns the colliding route slot.
	OtherFunction string

	// Route is the normalized route template both functions mapped to.
	Route string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("the route specified for function '%s' conflicts with the route defined by function '%s'", e.Function, e.OtherFunction)
}

// NewRouteConflictError creates a RouteConflictError naming both parties.
func NewRouteConflictError(function, otherFunction, route string) *RouteConflictError {
	return &RouteConflictError{Function: function, OtherFunction: otherFunction, Route: route}
}

// IsParseError checks whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsRangeError checks whether err is (or wraps) a RangeError.
func IsRangeError(err error) bool {
	var re *RangeError
	return errors.As(err, &re)
}

// IsConfigurationError checks whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsRouteConflictError checks whether err is (or wraps) a RouteConflictError.
func IsRouteConflictError(err error) bool {
	var rc *RouteConflictError
	return errors.As(err, &rc)
}
