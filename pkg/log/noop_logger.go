package log

var _ Logger = NoopLogger{}

// NoopLogger discards every message. It is the default diagnostics logger
// for components that were not given one.
type NoopLogger struct{}

// NewNoopLogger creates a new NoopLogger instance.
func NewNoopLogger() Logger {
	return NoopLogger{}
}

func (n NoopLogger) Debug(msg string, keysAndValues ...any) {}
func (n NoopLogger) Info(msg string, keysAndValues ...any)  {}
func (n NoopLogger) Warn(msg string, keysAndValues ...any)  {}
func (n NoopLogger) Error(msg string, keysAndValues ...any) {}
func (n NoopLogger) Fatal(msg string, keysAndValues ...any) {}
func (n NoopLogger) WithKV(key string, value any) Logger    { return n }
func (n NoopLogger) GetAllKV() []any                        { return []any{} }
func (n NoopLogger) WithName(name string) Logger            { return n }
func (n NoopLogger) Name() string                           { return "noop" }
func (n NoopLogger) AddCallerSkip(skip int) Logger          { return n }

// OrNoop returns lg, or a NoopLogger when lg is nil.
func OrNoop(lg Logger) Logger {
	if lg == nil {
		return NoopLogger{}
	}
	return lg
}
