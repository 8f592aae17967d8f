// Package otelspan connects spanlog to OpenTelemetry tracing.
package otelspan

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erc7824/tracelog/pkg/spanlog"
)

var (
	_ spanlog.Span         = &Span{}
	_ spanlog.SpanResolver = Resolver{}
)

// DefaultEventName names events that carry no usable event field.
const DefaultEventName = "log"

// Resolver resolves the OpenTelemetry span stored in a context. Spans with
// an invalid span context or that are not recording are reported as absent.
type Resolver struct{}

// ActiveSpan implements spanlog.SpanResolver.
func (Resolver) ActiveSpan(ctx context.Context) (spanlog.Span, bool) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() || !span.IsRecording() {
		return nil, false
	}
	return Wrap(span), true
}

// Span writes spanlog events to an OpenTelemetry span. Every event becomes
// a span event named after its event field, with all fields as attributes.
type Span struct {
	span trace.Span
}

// Wrap returns a Span writing to span.
func Wrap(span trace.Span) *Span {
	return &Span{span: span}
}

// TraceID returns the trace ID of the span as a string.
func (s *Span) TraceID() string {
	return s.span.SpanContext().TraceID().String()
}

// SpanID returns the span ID of the span as a string.
func (s *Span) SpanID() string {
	return s.span.SpanContext().SpanID().String()
}

// Log adds one span event.
func (s *Span) Log(fields ...spanlog.Field) spanlog.Span {
	s.span.AddEvent(eventName(fields), trace.WithAttributes(fieldsToAttributes(fields)...))
	return s
}

// SetTag sets a span attribute. Setting the error tag to true also marks
// the span status as an error.
func (s *Span) SetTag(key string, value any) spanlog.Span {
	s.span.SetAttributes(toAttribute(key, value))
	if flag, ok := value.(bool); ok && flag && key == spanlog.TagError {
		s.span.SetStatus(codes.Error, "")
	}
	return s
}

func eventName(fields []spanlog.Field) string {
	for _, f := range fields {
		if f.Key != spanlog.FieldEvent {
			continue
		}
		switch v := f.Value.(type) {
		case string:
			if v != "" {
				return v
			}
		case fmt.Stringer:
			return v.String()
		}
		return DefaultEventName
	}
	return DefaultEventName
}

func fieldsToAttributes(fields []spanlog.Field) []attribute.KeyValue {
	attributes := make([]attribute.KeyValue, 0, len(fields))
	for _, f := range fields {
		attributes = append(attributes, toAttribute(f.Key, f.Value))
	}
	return attributes
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case nil:
		return attribute.String(key, "")
	case bool:
		return attribute.Bool(key, v)
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int8, int16, int32, int64, uint8, uint16, uint32:
		return attribute.Int64(key, toInt64(v))
	case float32, float64:
		return attribute.Float64(key, toFloat64(v))
	case []string:
		return attribute.StringSlice(key, v)
	case error:
		return attribute.String(key, v.Error())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

// toInt64 converts the integer types accepted by toAttribute to int64.
func toInt64(value any) int64 {
	switch v := value.(type) {
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	default:
		return 0
	}
}

// toFloat64 converts float types to float64.
func toFloat64(value any) float64 {
	switch v := value.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}
