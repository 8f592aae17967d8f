package log_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erc7824/tracelog/pkg/log"
)

// TestZapLogger tests the ZapLogger implementation.
// It verifies:
// 1. Correct log level output
// 2. Logger naming hierarchy with WithName
// 3. Key-value pair propagation with WithKV
// 4. Caller information points at this file, also through AddCallerSkip
func TestZapLogger(t *testing.T) {
	cfg := log.Config{
		Format: "json",
		Level:  log.LevelDebug,
		Output: "stdout",
	}
	tws := &testWriteSyncer{}
	logger := log.NewZapLogger(cfg, tws)

	testName := "watcher"
	logger = logger.WithName(testName)

	keysAndValues := []any{"path", "/etc/tracelog.yaml", "attempt", "2"}
	testMessage := "reload failed"

	logger.Debug(testMessage, keysAndValues...)
	tws.AssertEntry(t, log.LevelDebug, testName, testMessage, keysAndValues...)

	logger.Info(testMessage, keysAndValues...)
	tws.AssertEntry(t, log.LevelInfo, testName, testMessage, keysAndValues...)

	logger.Warn(testMessage, keysAndValues...)
	tws.AssertEntry(t, log.LevelWarn, testName, testMessage, keysAndValues...)

	logger.Error(testMessage, keysAndValues...)
	tws.AssertEntry(t, log.LevelError, testName, testMessage, keysAndValues...)

	subsystem := "fsnotify"
	expectedName := fmt.Sprintf("%s.%s", testName, subsystem)
	logger = logger.WithName(subsystem)
	assert.Equal(t, expectedName, logger.Name())

	logger = logger.WithKV("component", "config")
	assert.Equal(t, []any{"component", "config"}, logger.GetAllKV())
	allKeysAndValues := append([]any{"component", "config"}, keysAndValues...)

	logger.Info(testMessage, keysAndValues...)
	tws.AssertEntry(t, log.LevelInfo, expectedName, testMessage, allKeysAndValues...)

	wrapper := func(msg string, keysAndValues ...any) {
		logger.AddCallerSkip(1).Warn(msg, keysAndValues...)
	}
	wrapper(testMessage, keysAndValues...)
	tws.AssertEntry(t, log.LevelWarn, expectedName, testMessage, allKeysAndValues...)
}

func TestZapLogger_WithKVDoesNotShareBacking(t *testing.T) {
	base := log.NewZapLogger(log.Config{Format: "json", Output: "stdout"}).WithKV("a", 1)

	left := base.WithKV("b", 2)
	right := base.WithKV("c", 3)

	assert.Equal(t, []any{"a", 1, "b", 2}, left.GetAllKV())
	assert.Equal(t, []any{"a", 1, "c", 3}, right.GetAllKV())
}

// TestZapLogger_FileOutput tests logfmt entries appended to a file.
// It verifies:
// 1. A file path output is opened for appending
// 2. Entries below the level are dropped
func TestZapLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracelog.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o600))

	logger := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelWarn, Output: path})
	logger.Info("dropped")
	logger.WithName("watcher").Warn("reload failed", "attempt", 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "existing\n"))
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "logger=watcher")
	assert.Contains(t, out, `msg="reload failed"`)
	assert.Contains(t, out, "attempt=2")
}

// testWriteSyncer is a zapcore.WriteSyncer that captures the last written entry.
type testWriteSyncer struct {
	lastEntry []byte
}

func (tws *testWriteSyncer) Write(p []byte) (n int, err error) {
	tws.lastEntry = append([]byte(nil), p...)
	return len(p), nil
}

func (tws *testWriteSyncer) Sync() error {
	return nil
}

// AssertEntry verifies that the last written log entry matches expected values.
func (tws *testWriteSyncer) AssertEntry(t *testing.T, level log.Level, name, message string, keysAndValues ...any) {
	t.Helper()

	entryMap := make(map[string]any)
	require.NoError(t, json.Unmarshal(tws.lastEntry, &entryMap), "Failed to unmarshal log entry: %s", string(tws.lastEntry))

	assert.Contains(t, entryMap, "ts")
	assert.Equal(t, name, entryMap["logger"])
	assert.Equal(t, string(level), entryMap["level"])
	assert.Equal(t, message, entryMap["msg"])
	caller, _ := entryMap["caller"].(string)
	assert.True(t, strings.HasPrefix(caller, "log/zap_logger_test.go:"), "unexpected caller %q", caller)

	for i := 0; i < len(keysAndValues); i += 2 {
		assert.Equal(t, keysAndValues[i+1], entryMap[keysAndValues[i].(string)])
	}

	assert.Equal(t, len(keysAndValues)/2, len(entryMap)-5) // -5 for ts, level, logger, caller and msg
}
