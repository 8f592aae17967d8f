// Package log provides the structured logging facade tracelog uses for its
// own diagnostics.
//
// The Logger interface is small and key-value based:
//
//	logger := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelInfo})
//	logger.Info("options reloaded", "loggers", 12)
//
// Two implementations are provided:
//
//   - ZapLogger: backed by Uber's zap, with console, logfmt and json encoders
//   - NoopLogger: discards everything; the default wherever a logger is optional
//
// Loggers can travel in a context:
//
//	ctx = log.SetContextLogger(ctx, logger)
//	log.FromContext(ctx).Debug("watching", "path", path)
//
// Routing these calls onto trace spans is done by package spanlog, which
// wraps a Logger with a span-aware decorator.
//
// # Environment Configuration
//
// Config is read by cleanenv:
//
//   - LOG_FORMAT: Output format (console, logfmt, json)
//   - LOG_LEVEL: Minimum log level (debug, info, warn, error, fatal)
//   - LOG_OUTPUT: Output destination (stderr, stdout, or file path)
package log
