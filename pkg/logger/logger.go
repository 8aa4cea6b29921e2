package logger

import (
	"context"
)

// Logger is the logging abstraction the application layers depend on.
// Concrete implementations live next to it (ZapLogger, Nop).
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// WithContext returns a logger enriched with values carried by ctx.
	WithContext(ctx context.Context) Logger

	// WithFields returns a child logger that always emits fields.
	WithFields(fields ...Field) Logger

	// Sync flushes any buffered log entries
	Sync() error
}

// Field is a single key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// Stringer logs v.String(); used for decimals and other value types.
func Stringer(key string, v interface{ String() string }) Field {
	return Field{Key: key, Value: v.String()}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

type requestIDKey struct{}

// ContextWithRequestID stores a request id that WithContext will attach.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
