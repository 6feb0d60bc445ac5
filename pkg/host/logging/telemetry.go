package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// TelemetryEvent is one log event flattened for a remote collector.
type TelemetryEvent struct {
	Time       time.Time
	Category   string
	Level      string
	Message    string
	Properties map[string]interface{}
}

// TelemetryPublisher receives events routed to the remote telemetry
// provider. The collector behind it is an external collaborator; the
// pipeline only decides which events reach it.
type TelemetryPublisher interface {
	Publish(event TelemetryEvent)
}

type discardPublisher struct{}

func (discardPublisher) Publish(TelemetryEvent) {}

// telemetryCore adapts a TelemetryPublisher to the core interface so it
// can participate in the pipeline fan-out.
type telemetryCore struct {
	publisher TelemetryPublisher
	fields    []zapcore.Field
}

func newTelemetryCore(publisher TelemetryPublisher) zapcore.Core {
	return &telemetryCore{publisher: publisher}
}

func (c *telemetryCore) Enabled(zapcore.Level) bool { return true }

func (c *telemetryCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &telemetryCore{
		publisher: c.publisher,
		fields:    make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(append(clone.fields, c.fields...), fields...)
	return clone
}

func (c *telemetryCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return checked.AddCore(entry, c)
}

func (c *telemetryCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range c.fields {
		field.AddTo(encoder)
	}
	for _, field := range fields {
		field.AddTo(encoder)
	}
	c.publisher.Publish(TelemetryEvent{
		Time:       entry.Time,
		Category:   entry.LoggerName,
		Level:      entry.Level.String(),
		Message:    entry.Message,
		Properties: encoder.Fields,
	})
	return nil
}

func (c *telemetryCore) Sync() error { return nil }
