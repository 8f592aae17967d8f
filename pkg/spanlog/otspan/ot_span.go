// Package otspan connects spanlog to the OpenTracing API.
package otspan

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"

	"github.com/erc7824/tracelog/pkg/spanlog"
)

var (
	_ spanlog.Span         = &Span{}
	_ spanlog.SpanResolver = Resolver{}
)

// Resolver resolves the OpenTracing span stored in a context with
// opentracing.ContextWithSpan.
type Resolver struct{}

// ActiveSpan implements spanlog.SpanResolver.
func (Resolver) ActiveSpan(ctx context.Context) (spanlog.Span, bool) {
	span := opentracing.SpanFromContext(ctx)
	if span == nil {
		return nil, false
	}
	return Wrap(span), true
}

// Span writes spanlog events as OpenTracing log records.
type Span struct {
	span opentracing.Span
}

// Wrap returns a Span writing to span.
func Wrap(span opentracing.Span) *Span {
	return &Span{span: span}
}

// Log writes one log record holding all fields in order.
func (s *Span) Log(fields ...spanlog.Field) spanlog.Span {
	s.span.LogFields(toLogFields(fields)...)
	return s
}

// SetTag sets a span tag. The error tag goes through ext.Error so tracers
// treating it specially see a boolean.
func (s *Span) SetTag(key string, value any) spanlog.Span {
	if flag, ok := value.(bool); ok && key == string(ext.Error) {
		ext.Error.Set(s.span, flag)
		return s
	}
	s.span.SetTag(key, value)
	return s
}

func toLogFields(fields []spanlog.Field) []otlog.Field {
	out := make([]otlog.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, toLogField(f.Key, f.Value))
	}
	return out
}

// toLogField picks the typed field constructor for value. Errors are kept
// as objects so the key is not rewritten to "error".
func toLogField(key string, value any) otlog.Field {
	switch v := value.(type) {
	case nil:
		return otlog.String(key, "<nil>")
	case string:
		return otlog.String(key, v)
	case bool:
		return otlog.Bool(key, v)
	case int:
		return otlog.Int(key, v)
	case int32:
		return otlog.Int32(key, v)
	case int64:
		return otlog.Int64(key, v)
	case uint32:
		return otlog.Uint32(key, v)
	case uint64:
		return otlog.Uint64(key, v)
	case float32:
		return otlog.Float32(key, v)
	case float64:
		return otlog.Float64(key, v)
	case error:
		return otlog.Object(key, v)
	case fmt.Stringer:
		return otlog.String(key, v.String())
	default:
		return otlog.Object(key, v)
	}
}
