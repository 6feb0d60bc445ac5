package logging

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Factory creates category loggers that share one provider fan-out and
// one category filter.
type Factory struct {
	core   zapcore.Core
	filter *CategoryFilter

	closeOnce sync.Once
	closers   []io.Closer
}

// NewFactory wraps an existing core and filter. Most callers build a
// factory through Builder.Build; NewFactory exists for embedders that
// bring their own core.
func NewFactory(core zapcore.Core, filter *CategoryFilter) *Factory {
	factory := newFactory(filter)
	factory.core = core
	return factory
}

func newFactory(filter *CategoryFilter) *Factory {
	if filter == nil {
		filter = NewCategoryFilter(LevelInformation, nil)
	}
	return &Factory{core: zapcore.NewNopCore(), filter: filter}
}

// NewConsoleFactory returns a minimal pipeline that writes Information
// and above to w. It backs host logging before the configured pipeline
// exists.
func NewConsoleFactory(w io.Writer) *Factory {
	encoder := zapcore.NewConsoleEncoder(consoleEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), zapcore.InfoLevel)
	return NewFactory(core, NewCategoryFilter(LevelInformation, nil))
}

// CreateLogger returns a logger emitting under the given category.
func (f *Factory) CreateLogger(category string) *Logger {
	return &Logger{
		category: category,
		filter:   f.filter,
		zl:       zap.New(f.core).Named(category),
	}
}

// Filter returns the category filter shared by this factory's loggers.
func (f *Factory) Filter() *CategoryFilter {
	return f.filter
}

// Sync flushes every provider in the pipeline.
func (f *Factory) Sync() error {
	return f.core.Sync()
}

// Close flushes the pipeline and releases provider resources such as
// the host log file. It is safe to call more than once.
func (f *Factory) Close() error {
	var err error
	f.closeOnce.Do(func() {
		err = f.core.Sync()
		for _, closer := range f.closers {
			if cerr := closer.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}

func (f *Factory) addCloser(closer io.Closer) {
	f.closers = append(f.closers, closer)
}

// Logger emits structured events for one category through the host
// pipeline. Events below the category's threshold are dropped before
// any provider sees them; scope properties carried by the context are
// appended as scope_-prefixed fields.
type Logger struct {
	category string
	filter   *CategoryFilter
	zl       *zap.Logger
}

// Category returns the category this logger emits under.
func (l *Logger) Category() string {
	return l.category
}

// Trace logs at the Trace level.
func (l *Logger) Trace(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, LevelTrace, msg, fields)
}

// Debug logs at the Debug level.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, LevelDebug, msg, fields)
}

// Info logs at the Information level.
func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, LevelInformation, msg, fields)
}

// Warn logs at the Warning level.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, LevelWarning, msg, fields)
}

// Error logs at the Error level. Attach the failure with zap.Error.
func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, LevelError, msg, fields)
}

// Critical logs at the Critical level.
func (l *Logger) Critical(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, LevelCritical, msg, fields)
}

// Log logs at an explicit level.
func (l *Logger) Log(ctx context.Context, level Level, msg string, fields ...zap.Field) {
	l.log(ctx, level, msg, fields)
}

func (l *Logger) log(ctx context.Context, level Level, msg string, fields []zap.Field) {
	if level == LevelNone || !l.filter.Enabled(l.category, level) {
		return
	}
	if ctx != nil {
		fields = append(fields, scopeFields(ctx)...)
	}
	if entry := l.zl.Check(level.zapLevel(), msg); entry != nil {
		entry.Write(fields...)
	}
}
