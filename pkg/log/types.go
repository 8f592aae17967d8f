package log

// Logger is the structured logging interface used across tracelog for
// diagnostics of its own machinery (reloads, watchers, CLI output).
type Logger interface {
	// Debug logs a message for low-level debugging.
	// keysAndValues lets you add structured context (e.g., "path", p).
	Debug(msg string, keysAndValues ...any)
	// Info logs routine events or state changes.
	Info(msg string, keysAndValues ...any)
	// Warn logs unexpected situations the program can recover from.
	Warn(msg string, keysAndValues ...any)
	// Error logs a failure that needs attention.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure and may terminate the program.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger with an extra key-value pair for all future logs.
	WithKV(key string, value any) Logger
	// GetAllKV returns all persistent key-value pairs for this logger.
	GetAllKV() []any
	// WithName returns a logger with a specific name (e.g., module or component).
	WithName(name string) Logger
	// Name returns the logger's name.
	Name() string
	// AddCallerSkip returns a logger that skips extra stack frames when reporting log source.
	// Returns itself if unsupported.
	AddCallerSkip(skip int) Logger
}

// Level represents the severity level of a diagnostic log message.
type Level string

const (
	// LevelDebug is the most verbose level, used for debugging purposes.
	LevelDebug Level = "debug"
	// LevelInfo is used for informational messages.
	LevelInfo Level = "info"
	// LevelWarn is used for warning messages that indicate potential issues.
	LevelWarn Level = "warn"
	// LevelError is used for error messages that indicate something went wrong.
	LevelError Level = "error"
	// LevelFatal is used for fatal errors that typically cause the program to exit.
	LevelFatal Level = "fatal"
)
