// logger/logger.go
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// ensureInitialized builds the default zap logger on first use so packages
// can log without explicit setup (init order during tests included).
func ensureInitialized() {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Level = zap.NewAtomicLevelAt(levelFromEnv())
		cfg.DisableStacktrace = true
		l, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			// zap's production config only fails on bad output paths;
			// fall back to a plain example logger rather than dying here.
			l = zap.NewExample()
		}
		sugar = l.Sugar()
	})
}

func levelFromEnv() zapcore.Level {
	switch strings.ToLower(os.Getenv("GIFMAKER_LOG_LEVEL")) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	ensureInitialized()
	_ = sugar.Sync()
}

// Debug logs a debug message
func Debug(v ...interface{}) {
	ensureInitialized()
	sugar.Debug(v...)
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...interface{}) {
	ensureInitialized()
	sugar.Debugf(format, v...)
}

// Info logs an info message
func Info(v ...interface{}) {
	ensureInitialized()
	sugar.Info(v...)
}

// Infof logs a formatted info message
func Infof(format string, v ...interface{}) {
	ensureInitialized()
	sugar.Infof(format, v...)
}

// Warn logs a warning message
func Warn(v ...interface{}) {
	ensureInitialized()
	sugar.Warn(v...)
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...interface{}) {
	ensureInitialized()
	sugar.Warnf(format, v...)
}

// Error logs an error message
func Error(v ...interface{}) {
	ensureInitialized()
	sugar.Error(v...)
}

// Errorf logs a formatted error message
func Errorf(format string, v ...interface{}) {
	ensureInitialized()
	sugar.Errorf(format, v...)
}

// Fatal logs an error message and exits the program
func Fatal(v ...interface{}) {
	ensureInitialized()
	sugar.Fatal(v...)
}

// Fatalf logs a formatted error message and exits the program
func Fatalf(format string, v ...interface{}) {
	ensureInitialized()
	sugar.Fatalf(format, v...)
}
