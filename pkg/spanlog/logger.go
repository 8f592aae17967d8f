package spanlog

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Logger writes log records as events onto the span that is active when
// the record is logged. Obtain one from Provider.CreateLogger; it is safe
// for concurrent use.
type Logger struct {
	name    string
	filter  Filter
	metrics *Metrics
	options atomic.Pointer[Options]
}

func newLogger(name string, filter Filter, options *Options, metrics *Metrics) *Logger {
	lg := &Logger{
		name:    name,
		filter:  filter,
		metrics: metrics,
	}
	lg.options.Store(options)
	return lg
}

// Name returns the name the logger was created with.
func (l *Logger) Name() string {
	return l.name
}

// Enabled reports whether a record of the given level would be written.
// It is false for LevelNone, when ctx carries no active span, or when the
// filter rejects the level. Nothing is cached between calls.
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	_, ok := l.activeSpan(ctx, l.options.Load(), level)
	return ok
}

// Log writes a record to the active span.
//
// When the record is not enabled Log returns immediately without calling
// format. A non-nil err produces an error event and sets the error tag.
// The rendered message produces a second event unless it is empty.
// Log fails only when format is nil.
func (l *Logger) Log(ctx context.Context, level Level, _ EventID, state State, err error, format Formatter) error {
	opts := l.options.Load()

	span, ok := l.activeSpan(ctx, opts, level)
	if !ok {
		l.metrics.recordSkipped(skipReasonDisabled)
		return nil
	}
	if format == nil {
		return errors.Wrapf(ErrNilFormatter, "logger %q", l.name)
	}

	if err != nil {
		span = span.SetTag(TagError, true).Log(
			Field{Key: FieldEvent, Value: EventError},
			Field{Key: FieldErrorObject, Value: err},
			Field{Key: FieldErrorKind, Value: errorKind(err)},
			Field{Key: FieldMessage, Value: err.Error()},
			Field{Key: FieldStack, Value: errorStack(err)},
		)
		l.metrics.recordEvent(eventKindError)
	}

	message := format(state, err)
	if message == "" {
		l.metrics.recordSkipped(skipReasonEmptyMessage)
		return nil
	}

	span.Log(l.messageFields(opts, level, state, message)...)
	l.metrics.recordEvent(eventKindMessage)

	return nil
}

// BeginScope accepts a scope state for compatibility with scoped logging
// APIs. Scopes are not tracked; the returned handle is NullScope.
func (l *Logger) BeginScope(State) io.Closer {
	return NullScope
}

func (l *Logger) activeSpan(ctx context.Context, opts *Options, level Level) (Span, bool) {
	if level == LevelNone || opts == nil || opts.SpanResolver == nil {
		return nil, false
	}

	span, ok := opts.SpanResolver.ActiveSpan(ctx)
	if !ok || span == nil {
		return nil, false
	}

	if !l.filter(l.name, level) {
		return nil, false
	}

	return span, true
}

func (l *Logger) messageFields(opts *Options, level Level, state State, message string) []Field {
	stateFields, structured := state.Fields()

	n := 2
	if opts.IncludeLoggerName {
		n++
	}
	if opts.IncludeKeyValuePairs && structured {
		n += len(stateFields)
	}

	fields := make([]Field, 0, n)
	fields = append(fields,
		Field{Key: FieldEvent, Value: level},
		Field{Key: FieldMessage, Value: message},
	)

	if opts.IncludeLoggerName {
		fields = append(fields, Field{Key: FieldLogger, Value: l.name})
	}

	if opts.IncludeKeyValuePairs && structured {
		for _, f := range stateFields {
			if f.Key == OriginalFormatKey {
				continue
			}
			fields = append(fields, Field{Key: KeyPrefix + f.Key, Value: f.Value})
		}
	}

	return fields
}
