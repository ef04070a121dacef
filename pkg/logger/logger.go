// Package logger is a process-wide zap logger with package-level helpers.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	base  = zap.NewNop()
	sugar = base.Sugar()
)

// Init builds the global logger. Development mode writes colored console
// output; otherwise JSON.
func Init(service string, isDevelopment bool) error {
	var cfg zap.Config
	if isDevelopment {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Set(l.With(zap.String("service", service)))
	return nil
}

// InitDefault initializes a development logger, falling back to a no-op
// logger if zap cannot be built.
func InitDefault(service string) {
	if err := Init(service, true); err != nil {
		Set(zap.NewNop())
	}
}

// Set replaces the global logger. Tests use it with zaptest or observer cores.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	sugar = l.Sugar()
}

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func S() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

func Infof(template string, args ...any)  { S().Infof(template, args...) }
func Warnf(template string, args ...any)  { S().Warnf(template, args...) }
func Errorf(template string, args ...any) { S().Errorf(template, args...) }
func Debugf(template string, args ...any) { S().Debugf(template, args...) }
func Fatalf(template string, args ...any) { S().Fatalf(template, args...) }
