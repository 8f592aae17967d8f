// Package slogspan provides a log/slog handler that writes records to the
// active span through a spanlog.Logger.
//
// Combine it with other handlers to keep a regular log output as well:
//
//	h, _ := slogspan.NewHandler(provider, "orders")
//	logger := slog.New(slogmulti.Fanout(h, slog.NewJSONHandler(os.Stdout, nil)))
//	logger.InfoContext(ctx, "order accepted", "id", 7)
package slogspan

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/erc7824/tracelog/pkg/spanlog"
)

var _ slog.Handler = &Handler{}

// DefaultErrorKey is the attribute key whose error value becomes the
// record error.
const DefaultErrorKey = "error"

// Handler is a slog.Handler backed by a spanlog.Logger.
type Handler struct {
	logger   *spanlog.Logger
	errorKey string
	prefix   string
	attrs    []spanlog.Field
	attrErr  error
}

// Option configures a Handler.
type Option func(*Handler)

// WithErrorKey sets the attribute key carrying the record error.
func WithErrorKey(key string) Option {
	return func(h *Handler) {
		h.errorKey = key
	}
}

// NewHandler returns a Handler writing through the provider's logger of
// the given name.
func NewHandler(p *spanlog.Provider, name string, opts ...Option) (*Handler, error) {
	if p == nil {
		return nil, errors.New("slogspan: nil provider")
	}
	logger, err := p.CreateLogger(name)
	if err != nil {
		return nil, errors.Wrap(err, "slogspan")
	}

	h := &Handler{
		logger:   logger,
		errorKey: DefaultErrorKey,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// FromSlogLevel maps a slog level onto the closest spanlog level. Levels
// between the named slog levels round down.
func FromSlogLevel(level slog.Level) spanlog.Level {
	switch {
	case level < slog.LevelDebug:
		return spanlog.LevelTrace
	case level < slog.LevelInfo:
		return spanlog.LevelDebug
	case level < slog.LevelWarn:
		return spanlog.LevelInformation
	case level < slog.LevelError:
		return spanlog.LevelWarning
	case level < slog.LevelError+4:
		return spanlog.LevelError
	default:
		return spanlog.LevelCritical
	}
}

// Enabled reports whether ctx carries an active span and level passes the
// provider's filter.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.logger.Enabled(ctx, FromSlogLevel(level))
}

// Handle writes the record. Attributes become structured state; the first
// error under the error key becomes the record error instead, whatever
// group the handler was opened with. Errors nested in a group attribute
// stay fields.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	fields := make([]spanlog.Field, 0, len(h.attrs)+record.NumAttrs())
	fields = append(fields, h.attrs...)
	recordErr := h.attrErr

	record.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a, &recordErr)
		return true
	})

	return h.logger.Log(ctx, FromSlogLevel(record.Level), spanlog.EventID{},
		spanlog.Pairs(fields...), recordErr, spanlog.Message(record.Message))
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	for _, a := range attrs {
		clone.attrs = clone.appendAttr(clone.attrs, clone.prefix, a, &clone.attrErr)
	}
	return clone
}

// WithGroup returns a Handler that qualifies later attribute keys with
// name, joined by dots.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.prefix = h.prefix + name + "."
	return clone
}

func (h *Handler) clone() *Handler {
	return &Handler{
		logger:   h.logger,
		errorKey: h.errorKey,
		prefix:   h.prefix,
		attrs:    append([]spanlog.Field(nil), h.attrs...),
		attrErr:  h.attrErr,
	}
}

// appendAttr flattens a into fields under prefix. A top-level attribute
// named by the error key holding an error is stored in *recordErr instead,
// unless an error was already taken. Group prefixes do not affect the match.
func (h *Handler) appendAttr(fields []spanlog.Field, prefix string, a slog.Attr, recordErr *error) []spanlog.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return fields
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			fields = h.appendAttr(fields, prefix, ga, nil)
		}
		return fields
	}

	if recordErr != nil && *recordErr == nil && h.errorKey != "" && a.Key == h.errorKey {
		if err, ok := a.Value.Any().(error); ok {
			*recordErr = err
			return fields
		}
	}

	return append(fields, spanlog.Field{Key: prefix + a.Key, Value: a.Value.Any()})
}
