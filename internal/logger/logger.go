package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log is the global zap logger instance
var log = zap.NewNop()

// Initialize builds the global logger. Debug mode switches to the
// development config and lowers the level to Debug.
func Initialize(debug bool) error {
	var zapConfig zap.Config
	if debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	built, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	log = built
	return nil
}

// Sync flushes any buffered log entries
func Sync() {
	_ = log.Sync()
}

// Debug logs a debug message with fields
func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

// Info logs an info message with fields
func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

// Warn logs a warning message with fields
func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

// Error logs an error with fields
func Error(msg string, err error, fields ...zap.Field) {
	log.Error(msg, append(fields, zap.Error(err))...)
}

// Fatal logs a fatal error and exits
func Fatal(msg string, err error, fields ...zap.Field) {
	log.Fatal(msg, append(fields, zap.Error(err))...)
}
