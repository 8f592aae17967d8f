// Package spanlog turns log records into structured events on the trace span
// that is active when they are logged.
//
// Instrumented code keeps issuing ordinary log calls; every call that finds
// an active span becomes a correlated, queryable annotation on that span.
// Nothing is written when no span is active, and the message is not even
// rendered in that case.
//
// # Core Types
//
//   - Provider: creates and caches one Logger per name and propagates
//     Options reloads to every cached Logger
//   - Logger: filters records and writes them to the active span
//   - Options: snapshot of the translation settings plus the SpanResolver
//   - Span and SpanResolver: the tracing capabilities consumed; adapters live
//     in the otelspan (OpenTelemetry) and otspan (OpenTracing) packages
//
// # Basic Usage
//
//	provider := spanlog.NewStaticProvider(spanlog.Options{
//	    IncludeKeyValuePairs: true,
//	    SpanResolver:         otelspan.Resolver{},
//	}, spanlog.WithMinLevel(spanlog.LevelInformation))
//	defer provider.Close()
//
//	logger, err := provider.CreateLogger("orders")
//	if err != nil {
//	    return err
//	}
//
//	ctx, span := tracer.Start(ctx, "charge")
//	defer span.End()
//
//	state := spanlog.Template("charged order {OrderID}", orderID)
//	_ = logger.Log(ctx, spanlog.LevelInformation, spanlog.EventID{}, state, nil, spanlog.FormatState)
//
// # Event Layout
//
// A record carrying an error first sets the boolean span tag "error" and
// writes an error event:
//
//	event=error error.object=<err> error.kind=<type> message=<err.Error()> stack=<trace>
//
// The rendered message is then written as a second event, unless it is empty:
//
//	event=<Level> message=<msg> [logger=<name>] [log.<key>=<value> ...]
//
// The "logger" field is added when Options.IncludeLoggerName is set. One
// "log."-prefixed field per entry of structured State is added when
// Options.IncludeKeyValuePairs is set; the "{OriginalFormat}" entry of
// template state is always left out.
//
// # Reloading Options
//
// A Provider follows an OptionsMonitor. Reloader is the in-memory monitor,
// package config provides one backed by a watched file:
//
//	reloader := spanlog.NewReloader(spanlog.Options{SpanResolver: otelspan.Resolver{}})
//	provider := spanlog.NewProvider(reloader)
//
//	reloader.Reload(spanlog.Options{IncludeLoggerName: true, SpanResolver: otelspan.Resolver{}})
//
// Every Logger, created before or after the reload, uses the new snapshot on
// its next call. Snapshots are swapped atomically; a call never observes a
// mix of two snapshots.
//
// # Logging Facades
//
// SpanLogger decorates a log.Logger so its calls go both to the wrapped
// logger and to the span; package slogspan provides a slog.Handler.
package spanlog
