package logger

import (
	"sync"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/registry"
	"github.com/philipp01105/ulog/sink"
)

var (
	defaultDispatcher *Dispatcher
	defaultMu         sync.RWMutex
)

func init() {
	// The default dispatcher starts with no sinks at TraceLevel
	defaultDispatcher = NewBuilder().Build()
}

// Default returns the process-wide dispatcher
func Default() *Dispatcher {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultDispatcher
}

// SetDefault replaces the process-wide dispatcher. The previous one is
// not shut down.
func SetDefault(d *Dispatcher) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDispatcher = d
}

// Package-level convenience functions using the default dispatcher

// Initialize initializes the default dispatcher
func Initialize() error {
	return Default().Initialize()
}

// Shutdown removes every sink from the default dispatcher
func Shutdown() error {
	return Default().Shutdown()
}

// SetGlobalLogLevel sets the global floor of the default dispatcher
func SetGlobalLogLevel(level core.Level) error {
	return Default().SetGlobalLogLevel(level)
}

// GlobalLogLevel returns the global floor of the default dispatcher
func GlobalLogLevel() core.Level {
	return Default().GlobalLogLevel()
}

// RegisterSink registers s with the default dispatcher
func RegisterSink(s sink.Sink) (registry.Handle, error) {
	return Default().RegisterSink(s)
}

// RemoveSink removes a sink from the default dispatcher
func RemoveSink(h registry.Handle) error {
	return Default().RemoveSink(h)
}

// EnableSink enables a sink of the default dispatcher
func EnableSink(h registry.Handle) error {
	return Default().EnableSink(h)
}

// DisableSink disables a sink of the default dispatcher
func DisableSink(h registry.Handle) error {
	return Default().DisableSink(h)
}

// FlushSink flushes a sink of the default dispatcher
func FlushSink(h registry.Handle) error {
	return Default().FlushSink(h)
}

// SetSinkLevel sets the level of a sink of the default dispatcher
func SetSinkLevel(h registry.Handle, level core.Level) error {
	return Default().SetSinkLevel(h, level)
}

// SetRootSink designates the root sink of the default dispatcher
func SetRootSink(h registry.Handle) error {
	return Default().SetRootSink(h)
}

// LogRoot logs to the root sink of the default dispatcher
func LogRoot(level core.Level, msg []byte) error {
	return Default().LogRoot(level, msg)
}

// Log logs msg using the default dispatcher
func Log(level core.Level, msg []byte) error {
	return Default().Log(level, msg)
}

// Flog logs a formatted message using the default dispatcher
func Flog(level core.Level, format string, args ...interface{}) error {
	return Default().Flog(level, format, args...)
}

// Trace logs a trace message using the default dispatcher
func Trace(msg []byte) error {
	return Default().Trace(msg)
}

// Debug logs a debug message using the default dispatcher
func Debug(msg []byte) error {
	return Default().Debug(msg)
}

// Info logs an info message using the default dispatcher
func Info(msg []byte) error {
	return Default().Info(msg)
}

// Warn logs a warning message using the default dispatcher
func Warn(msg []byte) error {
	return Default().Warn(msg)
}

// Error logs an error message using the default dispatcher
func Error(msg []byte) error {
	return Default().Error(msg)
}

// Fatal logs a fatal message using the default dispatcher. It does not exit.
func Fatal(msg []byte) error {
	return Default().Fatal(msg)
}

// Tracef logs a formatted trace message using the default dispatcher
func Tracef(format string, args ...interface{}) error {
	return Default().Tracef(format, args...)
}

// Debugf logs a formatted debug message using the default dispatcher
func Debugf(format string, args ...interface{}) error {
	return Default().Debugf(format, args...)
}

// Infof logs a formatted info message using the default dispatcher
func Infof(format string, args ...interface{}) error {
	return Default().Infof(format, args...)
}

// Warnf logs a formatted warning message using the default dispatcher
func Warnf(format string, args ...interface{}) error {
	return Default().Warnf(format, args...)
}

// Errorf logs a formatted error message using the default dispatcher
func Errorf(format string, args ...interface{}) error {
	return Default().Errorf(format, args...)
}

// Fatalf logs a formatted fatal message using the default dispatcher. It
// does not exit.
func Fatalf(format string, args ...interface{}) error {
	return Default().Fatalf(format, args...)
}
