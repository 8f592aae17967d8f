package otelspan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/erc7824/tracelog/pkg/spanlog"
	"github.com/erc7824/tracelog/pkg/spanlog/otelspan"
)

func setup(t *testing.T, options spanlog.Options) (*tracetest.SpanRecorder, trace.Tracer, *spanlog.Logger) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	options.SpanResolver = otelspan.Resolver{}
	provider := spanlog.NewStaticProvider(options, spanlog.WithMinLevel(spanlog.LevelInformation))
	t.Cleanup(func() { _ = provider.Close() })

	logger, err := provider.CreateLogger("otelspan_test")
	require.NoError(t, err)

	return recorder, tp.Tracer("otelspan_test"), logger
}

func TestResolver(t *testing.T) {
	_, tracer, _ := setup(t, spanlog.Options{})

	_, ok := otelspan.Resolver{}.ActiveSpan(context.Background())
	assert.False(t, ok)

	remote := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: [16]byte{1},
		SpanID:  [8]byte{1},
	}))
	_, ok = otelspan.Resolver{}.ActiveSpan(remote)
	assert.False(t, ok, "a non-recording span context is not an active span")

	ctx, span := tracer.Start(context.Background(), "op")
	resolved, ok := otelspan.Resolver{}.ActiveSpan(ctx)
	require.True(t, ok)

	ids, ok := resolved.(*otelspan.Span)
	require.True(t, ok)
	assert.Equal(t, span.SpanContext().TraceID().String(), ids.TraceID())
	assert.Equal(t, span.SpanContext().SpanID().String(), ids.SpanID())

	span.End()
	_, ok = otelspan.Resolver{}.ActiveSpan(ctx)
	assert.False(t, ok, "ended spans no longer record")
}

func TestLogger_InformationForActiveSpan(t *testing.T) {
	recorder, tracer, logger := setup(t, spanlog.Options{})

	ctx, span := tracer.Start(context.Background(), "foo")
	require.NoError(t, logger.Log(ctx, spanlog.LevelInformation, spanlog.EventID{}, spanlog.Template("test"), nil, spanlog.FormatState))
	require.NoError(t, logger.Log(ctx, spanlog.LevelDebug, spanlog.EventID{}, spanlog.Template("test"), nil, spanlog.FormatState))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Information", events[0].Name)
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("event", "Information"),
		attribute.String("message", "test"),
	}, events[0].Attributes)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
}

func TestLogger_InactiveSpan(t *testing.T) {
	recorder, tracer, logger := setup(t, spanlog.Options{})

	_, span := tracer.Start(context.Background(), "foo")
	require.NoError(t, logger.Log(context.Background(), spanlog.LevelInformation, spanlog.EventID{}, spanlog.Template("test"), nil, spanlog.FormatState))
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Empty(t, recorder.Ended()[0].Events())
}

func TestLogger_Error(t *testing.T) {
	recorder, tracer, logger := setup(t, spanlog.Options{IncludeLoggerName: true, IncludeKeyValuePairs: true})

	ctx, span := tracer.Start(context.Background(), "foo")
	err := logger.Log(ctx, spanlog.LevelInformation, spanlog.EventID{},
		spanlog.Template("log message {attempt}", 2), errors.New("exception message"), spanlog.FormatState)
	require.NoError(t, err)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	assert.Contains(t, ended[0].Attributes(), attribute.Bool("error", true))
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	events := ended[0].Events()
	require.Len(t, events, 2)

	assert.Equal(t, "error", events[0].Name)
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("event", "error"),
		attribute.String("error.object", "exception message"),
		attribute.String("error.kind", "errorString"),
		attribute.String("message", "exception message"),
		attribute.String("stack", ""),
	}, events[0].Attributes)

	assert.Equal(t, "Information", events[1].Name)
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("event", "Information"),
		attribute.String("message", "log message 2"),
		attribute.String("logger", "otelspan_test"),
		attribute.Int("log.attempt", 2),
	}, events[1].Attributes)
}

func TestSpan_EventName(t *testing.T) {
	recorder, tracer, _ := setup(t, spanlog.Options{})

	_, span := tracer.Start(context.Background(), "foo")
	s := otelspan.Wrap(span)
	s.Log(spanlog.KV("message", "no event"))
	s.Log(spanlog.KV("event", ""), spanlog.KV("message", "empty event"))
	s.Log(spanlog.KV("event", "custom"))
	s.SetTag("error", false)
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 3)
	assert.Equal(t, otelspan.DefaultEventName, events[0].Name)
	assert.Equal(t, otelspan.DefaultEventName, events[1].Name)
	assert.Equal(t, "custom", events[2].Name)
	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}
