package sink

import (
	"github.com/philipp01105/ulog/core"
)

// IOType identifies the kind of destination behind a sink
type IOType uint8

const (
	UnknownIO IOType = iota
	ConsoleIO
	SemihostingIO
	FileIO
	SerialIO
	ForwarderIO
	MetricsIO
)

// String returns the string representation of the IO type
func (t IOType) String() string {
	switch t {
	case ConsoleIO:
		return "console"
	case SemihostingIO:
		return "semihosting"
	case FileIO:
		return "file"
	case SerialIO:
		return "serial"
	case ForwarderIO:
		return "forwarder"
	case MetricsIO:
		return "metrics"
	default:
		return "unknown"
	}
}

// Sink defines the interface for log destinations
type Sink interface {
	// Open prepares the destination. Called once, before the sink is reachable.
	Open() error
	// Close releases the destination. Called once, after the sink is unreachable.
	Close() error
	// Flush forces buffered bytes out. Safe to call repeatedly.
	Flush() error
	// Log writes msg if the sink is enabled and level passes its threshold.
	// msg must not be retained after Log returns.
	Log(level core.Level, msg []byte) error

	Enable()
	Disable()
	Enabled() bool

	SetLevel(level core.Level)
	Level() core.Level

	SetName(name string)
	Name() string

	IOType() IOType
}

// StatsProvider is implemented by sinks that expose counters
type StatsProvider interface {
	Stats() Snapshot
}
