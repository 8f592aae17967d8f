package spanlog_test

import "github.com/erc7824/tracelog/pkg/log"

var _ log.Logger = &MockLogger{}

// MockLogger is a test double for log.Logger.
// It captures the last entry and tracks logger state for verification.
type MockLogger struct {
	lastEntry MockLogEntry

	name          string
	keysAndValues []any
	callerSkip    int
}

// NewMockLogger creates a new mock logger with the given name.
func NewMockLogger(name string) *MockLogger {
	return &MockLogger{
		name:          name,
		keysAndValues: []any{},
	}
}

// MockLogEntry represents a captured log entry.
type MockLogEntry struct {
	Level         log.Level
	Message       string
	KeysAndValues []any
}

func (ml *MockLogger) Debug(msg string, keysAndValues ...any) {
	ml.updateLastEntry(log.LevelDebug, msg, keysAndValues...)
}

func (ml *MockLogger) Info(msg string, keysAndValues ...any) {
	ml.updateLastEntry(log.LevelInfo, msg, keysAndValues...)
}

func (ml *MockLogger) Warn(msg string, keysAndValues ...any) {
	ml.updateLastEntry(log.LevelWarn, msg, keysAndValues...)
}

func (ml *MockLogger) Error(msg string, keysAndValues ...any) {
	ml.updateLastEntry(log.LevelError, msg, keysAndValues...)
}

func (ml *MockLogger) Fatal(msg string, keysAndValues ...any) {
	ml.updateLastEntry(log.LevelFatal, msg, keysAndValues...)
}

// WithKV adds a key-value pair to the logger's context.
func (ml *MockLogger) WithKV(key string, value any) log.Logger {
	ml.keysAndValues = append(ml.keysAndValues, key, value)
	return ml
}

func (ml *MockLogger) GetAllKV() []any { return ml.keysAndValues }

// WithName sets the logger's name.
func (ml *MockLogger) WithName(name string) log.Logger {
	ml.name = name
	return ml
}

func (ml *MockLogger) Name() string {
	return ml.name
}

// AddCallerSkip increases the caller skip count.
func (ml *MockLogger) AddCallerSkip(skip int) log.Logger {
	ml.callerSkip += skip
	return ml
}

// CallerSkip returns the current caller skip count.
func (ml *MockLogger) CallerSkip() int {
	return ml.callerSkip
}

// LastEntry returns the most recently captured log entry.
func (ml *MockLogger) LastEntry() MockLogEntry {
	return ml.lastEntry
}

func (ml *MockLogger) updateLastEntry(level log.Level, msg string, keysAndValues ...any) {
	ml.lastEntry = MockLogEntry{
		Level:         level,
		Message:       msg,
		KeysAndValues: append(append([]any{}, ml.keysAndValues...), keysAndValues...),
	}
}
