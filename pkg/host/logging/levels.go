package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the severity of a log event or the threshold of a filter.
// Levels are ordered from most verbose to most severe; None is a
// filter-only value that suppresses every event for its category.
type Level int8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
	LevelNone
)

var levelNames = map[Level]string{
	LevelTrace:       "Trace",
	LevelDebug:       "Debug",
	LevelInformation: "Information",
	LevelWarning:     "Warning",
	LevelError:       "Error",
	LevelCritical:    "Critical",
	LevelNone:        "None",
}

// String returns the canonical name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int8(l))
}

// ParseLevel parses a level name, case-insensitively. The short forms
// "info" and "warn" are accepted alongside the canonical names.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "information", "info":
		return LevelInformation, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	case "none":
		return LevelNone, nil
	default:
		return LevelInformation, fmt.Errorf("unknown log level '%s'", s)
	}
}

// Enabled reports whether an event at this level passes a filter whose
// threshold is the given level. A None threshold admits nothing.
func (l Level) Enabled(threshold Level) bool {
	if threshold == LevelNone {
		return false
	}
	return l >= threshold
}

// zapLevel maps the seven-step host scale onto zap's coarser scale.
// Trace collapses into Debug and Critical into Error; exact-level
// filtering happens in CategoryFilter before zap ever sees the event.
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelTrace, LevelDebug:
		return zapcore.DebugLevel
	case LevelInformation:
		return zapcore.InfoLevel
	case LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// FileLoggingMode controls whether the file provider participates in
// the pipeline.
type FileLoggingMode int8

const (
	// FileLoggingDebugOnly wires the file provider only while the host
	// is in debug mode at pipeline build time.
	FileLoggingDebugOnly FileLoggingMode = iota
	// FileLoggingAlways wires the file provider unconditionally.
	FileLoggingAlways
	// FileLoggingNever leaves the file provider out of the pipeline.
	FileLoggingNever
)

// String returns the configuration name of the mode.
func (m FileLoggingMode) String() string {
	switch m {
	case FileLoggingAlways:
		return "always"
	case FileLoggingNever:
		return "never"
	default:
		return "debugOnly"
	}
}

// ParseFileLoggingMode parses a file logging mode name, case-insensitively.
func ParseFileLoggingMode(s string) (FileLoggingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debugonly":
		return FileLoggingDebugOnly, nil
	case "always":
		return FileLoggingAlways, nil
	case "never":
		return FileLoggingNever, nil
	default:
		return FileLoggingDebugOnly, fmt.Errorf("unknown file logging mode '%s'", s)
	}
}

// ParseConsoleLevel parses the legacy four-step console verbosity scale
// onto the host level scale: off suppresses console output entirely,
// error admits errors and worse, info admits informational events and
// worse, verbose admits everything.
func ParseConsoleLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return LevelNone, nil
	case "error":
		return LevelError, nil
	case "info":
		return LevelInformation, nil
	case "verbose":
		return LevelTrace, nil
	default:
		return LevelInformation, fmt.Errorf("unknown console level '%s'", s)
	}
}
