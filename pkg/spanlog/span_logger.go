package spanlog

import (
	"context"
	"fmt"

	"github.com/erc7824/tracelog/pkg/log"
)

// RootLoggerName is used for loggers whose facade logger has no name.
const RootLoggerName = "root"

const (
	// Used when a value is missing for a key in key-value pairs
	missingValue = "MISSING"
	// Used as the key when an invalid (non-string) key is encountered
	invalidKey = "invalidKeysAndValues"
)

var _ log.Logger = SpanLogger{}

// SpanLogger is a log.Logger that writes every call to a wrapped logger and,
// as span events, to the Logger of the same name obtained from a Provider.
// The span is resolved from the context captured at construction.
type SpanLogger struct {
	ctx      context.Context
	lg       log.Logger
	provider *Provider
	logger   *Logger
}

// NewSpanLogger wraps lg so that its calls are also recorded on the spans
// active in ctx. The wrapped logger's caller skip is incremented by 1 to
// account for the wrapper.
func NewSpanLogger(ctx context.Context, lg log.Logger, provider *Provider) log.Logger {
	return newSpanLogger(ctx, log.OrNoop(lg).AddCallerSkip(1), provider)
}

func newSpanLogger(ctx context.Context, lg log.Logger, provider *Provider) SpanLogger {
	name := lg.Name()
	if name == "" {
		name = RootLoggerName
	}
	// name is never empty here, so CreateLogger cannot fail.
	logger, _ := provider.CreateLogger(name)

	return SpanLogger{
		ctx:      ctx,
		lg:       lg,
		provider: provider,
		logger:   logger,
	}
}

// Debug logs a debug message to both the wrapped logger and the span.
func (sl SpanLogger) Debug(msg string, keysAndValues ...any) {
	sl.record(LevelDebug, msg, keysAndValues)
	sl.lg.Debug(msg, sl.withTraceContext(keysAndValues)...)
}

// Info logs an info message to both the wrapped logger and the span.
func (sl SpanLogger) Info(msg string, keysAndValues ...any) {
	sl.record(LevelInformation, msg, keysAndValues)
	sl.lg.Info(msg, sl.withTraceContext(keysAndValues)...)
}

// Warn logs a warning message to both the wrapped logger and the span.
func (sl SpanLogger) Warn(msg string, keysAndValues ...any) {
	sl.record(LevelWarning, msg, keysAndValues)
	sl.lg.Warn(msg, sl.withTraceContext(keysAndValues)...)
}

// Error logs an error message to both the wrapped logger and the span.
// An error value under the "error" or "err" key becomes the record's error.
func (sl SpanLogger) Error(msg string, keysAndValues ...any) {
	sl.record(LevelError, msg, keysAndValues)
	sl.lg.Error(msg, sl.withTraceContext(keysAndValues)...)
}

// Fatal records a critical event on the span before handing the call to
// the wrapped logger, which may terminate the program.
func (sl SpanLogger) Fatal(msg string, keysAndValues ...any) {
	sl.record(LevelCritical, msg, keysAndValues)
	sl.lg.Fatal(msg, sl.withTraceContext(keysAndValues)...)
}

// WithKV returns a SpanLogger whose wrapped logger carries the extra pair.
func (sl SpanLogger) WithKV(key string, value any) log.Logger {
	return SpanLogger{
		ctx:      sl.ctx,
		lg:       sl.lg.WithKV(key, value),
		provider: sl.provider,
		logger:   sl.logger,
	}
}

// GetAllKV returns all key-value pairs from the wrapped logger.
func (sl SpanLogger) GetAllKV() []any {
	return sl.lg.GetAllKV()
}

// WithName returns a SpanLogger for the renamed wrapped logger, recording
// through the provider's Logger of the new name.
func (sl SpanLogger) WithName(name string) log.Logger {
	return newSpanLogger(sl.ctx, sl.lg.WithName(name), sl.provider)
}

// Name returns the name of the wrapped logger.
func (sl SpanLogger) Name() string {
	return sl.lg.Name()
}

// AddCallerSkip returns a SpanLogger with increased caller skip on the wrapped logger.
func (sl SpanLogger) AddCallerSkip(skip int) log.Logger {
	return SpanLogger{
		ctx:      sl.ctx,
		lg:       sl.lg.AddCallerSkip(skip),
		provider: sl.provider,
		logger:   sl.logger,
	}
}

func (sl SpanLogger) record(level Level, msg string, keysAndValues []any) {
	if !sl.logger.Enabled(sl.ctx, level) {
		return
	}

	persistent := sl.lg.GetAllKV()
	all := make([]any, 0, len(persistent)+len(keysAndValues))
	all = append(all, persistent...)
	all = append(all, keysAndValues...)

	fields, err := kvToFields(all)
	// Message(msg) is never nil, so Log cannot fail.
	_ = sl.logger.Log(sl.ctx, level, EventID{}, Pairs(fields...), err, Message(msg))
}

// withTraceContext prepends the trace and span IDs of the active span, when
// the span exposes them, to the pairs passed to the wrapped logger.
func (sl SpanLogger) withTraceContext(keysAndValues []any) []any {
	opts := sl.logger.options.Load()
	if opts == nil || opts.SpanResolver == nil {
		return keysAndValues
	}
	span, ok := opts.SpanResolver.ActiveSpan(sl.ctx)
	if !ok {
		return keysAndValues
	}
	ids, ok := span.(interface {
		TraceID() string
		SpanID() string
	})
	if !ok {
		return keysAndValues
	}

	return append([]any{
		"traceId", ids.TraceID(),
		"spanId", ids.SpanID(),
	}, keysAndValues...)
}

// kvToFields converts alternating keys and values into fields. The first
// error value stored under "error" or "err" is returned separately.
func kvToFields(keysAndValues []any) ([]Field, error) {
	if len(keysAndValues)%2 != 0 {
		keysAndValues = append(keysAndValues, missingValue)
	}

	var recordErr error
	fields := make([]Field, 0, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			fields = append(fields, Field{Key: invalidKey, Value: fmt.Sprint(keysAndValues[i:])})
			break
		}

		value := keysAndValues[i+1]
		if err, isErr := value.(error); isErr && recordErr == nil && (key == "error" || key == "err") {
			recordErr = err
			continue
		}
		fields = append(fields, Field{Key: key, Value: value})
	}

	return fields, recordErr
}

// SetContextLogger stores lg in ctx. When ctx carries an active span
// according to the provider's options, lg is first wrapped in a SpanLogger.
// If lg is nil, a NoopLogger is used.
func SetContextLogger(ctx context.Context, lg log.Logger, provider *Provider) context.Context {
	lg = log.OrNoop(lg)

	if provider != nil {
		opts := provider.current.Load()
		if opts.SpanResolver != nil {
			if _, ok := opts.SpanResolver.ActiveSpan(ctx); ok {
				lg = NewSpanLogger(ctx, lg, provider)
			}
		}
	}

	return log.SetContextLogger(ctx, lg)
}
