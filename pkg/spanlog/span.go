package spanlog

import "context"

// Field names shared with existing OpenTracing tooling. They must not change.
const (
	FieldEvent       = "event"
	FieldMessage     = "message"
	FieldErrorObject = "error.object"
	FieldErrorKind   = "error.kind"
	FieldStack       = "stack"
	FieldLogger      = "logger"

	// KeyPrefix is prepended to the key of every structured state entry.
	KeyPrefix = "log."
	// OriginalFormatKey holds the raw message template in template state.
	// It is never emitted as a field.
	OriginalFormatKey = "{OriginalFormat}"

	// TagError is the boolean span tag set when a record carries an error.
	TagError = "error"
	// EventError is the event field value of error events.
	EventError = "error"
)

// Field is a named value. Fields are kept in the order they were added.
type Field struct {
	Key   string
	Value any
}

// KV returns a Field.
func KV(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Span is the write side of a tracing span as seen by a Logger.
type Span interface {
	// Log writes one structured event made of the ordered fields.
	Log(fields ...Field) Span
	// SetTag sets span-level metadata.
	SetTag(key string, value any) Span
}

// SpanResolver finds the span that is active for ctx.
// Implementations must report false when there is none.
type SpanResolver interface {
	ActiveSpan(ctx context.Context) (Span, bool)
}

// SpanResolverFunc adapts a function to SpanResolver.
type SpanResolverFunc func(ctx context.Context) (Span, bool)

// ActiveSpan calls f(ctx).
func (f SpanResolverFunc) ActiveSpan(ctx context.Context) (Span, bool) {
	return f(ctx)
}
