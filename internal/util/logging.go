// Package util provides common utilities including logging helpers,
// file system operations, and passphrase-based encryption.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger atomic.Pointer[zap.Logger]

func init() {
	globalLogger.Store(zap.NewNop())
}

// LogOptions selects the level, encoding and destination of the process logger.
type LogOptions struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Path   string // file path, "stdout" or "stderr"
}

// InitLogger builds a zap logger from opts and installs it as the process
// logger. The returned func syncs the logger and releases its sink.
func InitLogger(opts LogOptions) (*zap.Logger, func() error, error) {
	logger, closeFn, err := NewLogger(opts)
	if err != nil {
		return nil, nil, err
	}
	SetLogger(logger)
	return logger, closeFn, nil
}

// NewLogger creates a logger without installing it. Call the returned func
// once the logger is no longer used.
func NewLogger(opts LogOptions) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     rfc3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var (
		sink zapcore.WriteSyncer
		file *os.File
	)
	switch opts.Path {
	case "", "stderr":
		sink = zapcore.AddSync(os.Stderr)
	case "stdout":
		sink = zapcore.AddSync(os.Stdout)
	default:
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		sink = zapcore.AddSync(file)
	}

	core := zapcore.NewCore(encoder, sink, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	closeFn := func() error {
		// Sync on a terminal fails with EINVAL; only the file matters.
		_ = logger.Sync()
		if file == nil {
			return nil
		}
		return file.Close()
	}
	return logger, closeFn, nil
}

func rfc3339TimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(time.RFC3339))
}

// SetLogger replaces the process logger. A nil logger installs a no-op one.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	globalLogger.Store(l)
}

// Logger returns the process logger.
func Logger() *zap.Logger {
	return globalLogger.Load()
}

// LogError logs an error with context if it is non-nil. A nil logger falls
// back to the process logger.
func LogError(l *zap.Logger, context string, err error) {
	if err == nil {
		return
	}
	if l == nil {
		l = Logger()
	}
	l.WithOptions(zap.AddCallerSkip(1)).Error(context, zap.Error(err))
}
