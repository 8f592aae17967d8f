package log

import (
	"os"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = &ZapLogger{}

// ZapLogger writes tracelog diagnostics through a zap SugaredLogger.
type ZapLogger struct {
	lg *zap.SugaredLogger
	kv []any
}

// Config selects the encoder, threshold and destination of a ZapLogger.
// cleanenv fills it from LOG_FORMAT, LOG_LEVEL and LOG_OUTPUT.
type Config struct {
	Format string `env:"LOG_FORMAT" env-default:"console" yaml:"format"` // console, logfmt or json
	Level  Level  `env:"LOG_LEVEL" env-default:"info" yaml:"level"`
	Output string `env:"LOG_OUTPUT" env-default:"stderr" yaml:"output"` // stderr, stdout or a file path
}

// NewZapLogger builds a ZapLogger from conf. Entries are also copied to
// every tee.
func NewZapLogger(conf Config, tees ...zapcore.WriteSyncer) Logger {
	sinks := append([]zapcore.WriteSyncer{outputSink(conf.Output)}, tees...)
	core := zapcore.NewCore(newEncoder(conf.Format), zapcore.NewMultiWriteSyncer(sinks...), zapLevel(conf.Level))

	// Two frames: the exported level method and write.
	return &ZapLogger{lg: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()}
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "json":
		return zapcore.NewJSONEncoder(cfg)
	case "logfmt":
		return zaplogfmt.NewEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// outputSink falls back to stderr when output names a file that cannot be
// opened for appending.
func outputSink(output string) zapcore.WriteSyncer {
	switch output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr)
	case "stdout":
		return zapcore.Lock(os.Stdout)
	}

	f, err := os.OpenFile(output, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.Lock(f)
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...any) { l.write(LevelDebug, msg, keysAndValues) }
func (l *ZapLogger) Info(msg string, keysAndValues ...any)  { l.write(LevelInfo, msg, keysAndValues) }
func (l *ZapLogger) Warn(msg string, keysAndValues ...any)  { l.write(LevelWarn, msg, keysAndValues) }
func (l *ZapLogger) Error(msg string, keysAndValues ...any) { l.write(LevelError, msg, keysAndValues) }
func (l *ZapLogger) Fatal(msg string, keysAndValues ...any) { l.write(LevelFatal, msg, keysAndValues) }

func (l *ZapLogger) write(level Level, msg string, keysAndValues []any) {
	l.lg.Logw(zapLevel(level), msg, keysAndValues...)
}

// WithKV returns a logger that adds key and value to every entry. The
// receiver is left untouched.
func (l *ZapLogger) WithKV(key string, value any) Logger {
	kv := make([]any, 0, len(l.kv)+2)
	kv = append(append(kv, l.kv...), key, value)
	return &ZapLogger{lg: l.lg.With(key, value), kv: kv}
}

// GetAllKV returns the pairs added with WithKV, oldest first.
func (l *ZapLogger) GetAllKV() []any {
	return l.kv
}

// WithName appends name to the dotted logger name.
func (l *ZapLogger) WithName(name string) Logger {
	return &ZapLogger{lg: l.lg.Named(name), kv: l.kv}
}

func (l *ZapLogger) Name() string {
	return l.lg.Desugar().Name()
}

// AddCallerSkip is used by wrappers such as spanlog.SpanLogger so the
// reported caller is their caller.
func (l *ZapLogger) AddCallerSkip(skip int) Logger {
	return &ZapLogger{lg: l.lg.WithOptions(zap.AddCallerSkip(skip)), kv: l.kv}
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}
