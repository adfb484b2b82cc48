package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger interface used by every component
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Options describe how to configure a logger instance
type Options struct {
	Level  string    // debug, info, warn, error (default info)
	Pretty bool      // human-readable console output instead of JSON
	Output io.Writer // defaults to stderr
}

// DefaultLogger writes structured entries through zerolog
type DefaultLogger struct {
	zl zerolog.Logger
}

// NewDefaultLogger creates a JSON logger at info level on stderr
func NewDefaultLogger() Logger {
	return New(Options{})
}

// New creates a logger from options
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	zl := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()

	return &DefaultLogger{zl: zl}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a logger that tags every entry with a component field
func WithComponent(logger Logger, component string) Logger {
	if dl, ok := logger.(*DefaultLogger); ok {
		return &DefaultLogger{zl: dl.zl.With().Str("component", component).Logger()}
	}
	if logger == nil {
		return WithComponent(NewDefaultLogger(), component)
	}
	return &componentLogger{next: logger, component: component}
}

// fieldsToMap converts the variadic fields slice to a map
// Expected format: key1, value1, key2, value2, ...
func fieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			if key, ok := fields[i].(string); ok {
				result[key] = fields[i+1]
			} else {
				result[fmt.Sprintf("field_%d", i/2)] = fields[i]
				result[fmt.Sprintf("field_%d_value", i/2)] = fields[i+1]
			}
		} else {
			// Odd number of fields, keep the dangling one under an index key
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
		}
	}

	return result
}

func (l *DefaultLogger) log(e *zerolog.Event, msg string, fields []interface{}) {
	if len(fields) > 0 {
		e = e.Fields(fieldsToMap(fields))
	}
	e.Msg(msg)
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.log(l.zl.Debug(), msg, fields)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.log(l.zl.Info(), msg, fields)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.log(l.zl.Warn(), msg, fields)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.log(l.zl.Error(), msg, fields)
}

type componentLogger struct {
	next      Logger
	component string
}

func (c *componentLogger) with(fields []interface{}) []interface{} {
	return append([]interface{}{"component", c.component}, fields...)
}

func (c *componentLogger) Debug(msg string, fields ...interface{}) { c.next.Debug(msg, c.with(fields)...) }
func (c *componentLogger) Info(msg string, fields ...interface{})  { c.next.Info(msg, c.with(fields)...) }
func (c *componentLogger) Warn(msg string, fields ...interface{})  { c.next.Warn(msg, c.with(fields)...) }
func (c *componentLogger) Error(msg string, fields ...interface{}) { c.next.Error(msg, c.with(fields)...) }

// OperationFailure is the logging view of errors.OperationError (declared here to avoid an import cycle)
type OperationFailure interface {
	Error() string
	GetCode() string
	IsRetryable() bool
	GetContext() map[string]string
	GetTimestamp() time.Time
}

// LogError logs a failed operation with its classification and context
func LogError(logger Logger, err error, operation string, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	if err == nil {
		return
	}

	if opErr, ok := err.(OperationFailure); ok {
		fields := []interface{}{
			"operation", operation,
			"error_code", opErr.GetCode(),
			"retryable", opErr.IsRetryable(),
			"timestamp", opErr.GetTimestamp(),
		}

		for k, v := range opErr.GetContext() {
			fields = append(fields, k, v)
		}

		for k, v := range context {
			fields = append(fields, k, v)
		}

		logger.Error(fmt.Sprintf("Operation failed: %s", err.Error()), fields...)
	} else {
		fields := []interface{}{
			"operation", operation,
			"error_type", fmt.Sprintf("%T", err),
		}

		for k, v := range context {
			fields = append(fields, k, v)
		}

		logger.Error(fmt.Sprintf("Unexpected error: %s", err.Error()), fields...)
	}
}

// LogCleanupFailure logs a failed resource release. These never change the
// outcome of the operation that owned the resource, so they are warnings.
func LogCleanupFailure(logger Logger, err error, operation, resource string) {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Warn(fmt.Sprintf("Cleanup failed: %v", err),
		"operation", operation,
		"resource", resource,
	)
}

// LogOperation logs a completed operation for monitoring
func LogOperation(logger Logger, operation string, duration time.Duration, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}

	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Debug(fmt.Sprintf("Operation completed: %s", operation), fields...)
}
