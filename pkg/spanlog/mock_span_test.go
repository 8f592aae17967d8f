package spanlog_test

import (
	"context"
	"sync"

	"github.com/erc7824/tracelog/pkg/spanlog"
)

var _ spanlog.Span = &MockSpan{}

// MockSpan is a test double for spanlog.Span.
// It records every event and tag it receives.
type MockSpan struct {
	traceID string
	spanID  string

	mu     sync.Mutex
	events [][]spanlog.Field
	tags   map[string]any
}

// NewMockSpan creates a new mock with the specified trace and span IDs.
func NewMockSpan(traceID, spanID string) *MockSpan {
	return &MockSpan{
		traceID: traceID,
		spanID:  spanID,
		tags:    make(map[string]any),
	}
}

// Log captures a copy of the fields as one event.
func (s *MockSpan) Log(fields ...spanlog.Field) spanlog.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, append([]spanlog.Field(nil), fields...))
	return s
}

// SetTag captures the tag.
func (s *MockSpan) SetTag(key string, value any) spanlog.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[key] = value
	return s
}

// TraceID returns the configured trace ID.
func (s *MockSpan) TraceID() string { return s.traceID }

// SpanID returns the configured span ID.
func (s *MockSpan) SpanID() string { return s.spanID }

// Events returns all recorded events in order.
func (s *MockSpan) Events() [][]spanlog.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]spanlog.Field(nil), s.events...)
}

// Tags returns a copy of the recorded tags.
func (s *MockSpan) Tags() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make(map[string]any, len(s.tags))
	for k, v := range s.tags {
		tags[k] = v
	}
	return tags
}

type mockSpanKey struct{}

// ContextWithMockSpan makes span the active span of the returned context.
func ContextWithMockSpan(ctx context.Context, span *MockSpan) context.Context {
	return context.WithValue(ctx, mockSpanKey{}, span)
}

// MockResolver resolves spans stored with ContextWithMockSpan.
var MockResolver = spanlog.SpanResolverFunc(func(ctx context.Context) (spanlog.Span, bool) {
	span, ok := ctx.Value(mockSpanKey{}).(*MockSpan)
	if !ok || span == nil {
		return nil, false
	}
	return span, true
})

// fieldMap converts the fields of one event to a map for lookups.
func fieldMap(fields []spanlog.Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}
