package logger

import (
	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/registry"
	"github.com/philipp01105/ulog/sink"
)

// Level Re-export type and constants for convenience
type Level = core.Level

const (
	TraceLevel = core.TraceLevel
	DebugLevel = core.DebugLevel
	InfoLevel  = core.InfoLevel
	WarnLevel  = core.WarnLevel
	ErrorLevel = core.ErrorLevel
	FatalLevel = core.FatalLevel
)

// Handle addresses a registered sink
type Handle = registry.Handle

// None is the wildcard handle meaning "all sinks"
var None = registry.None

// Sink is the capability contract of a log destination
type Sink = sink.Sink

// ParseLevel converts a string to a Level
func ParseLevel(s string) (Level, error) {
	return core.ParseLevel(s)
}
