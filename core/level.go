package core

import (
	"fmt"
	"strings"
)

// Level represents the severity level of a log message
type Level int8

const (
	// TraceLevel for very fine grained diagnostic output
	TraceLevel Level = iota
	// DebugLevel for detailed debugging information
	DebugLevel
	// InfoLevel for general informational messages
	InfoLevel
	// WarnLevel for warning messages
	WarnLevel
	// ErrorLevel for error messages
	ErrorLevel
	// FatalLevel for unrecoverable conditions. uLog never exits the process.
	FatalLevel

	// MinLevel is the lowest level and the default global floor
	MinLevel = TraceLevel
	// MaxLevel is the highest level
	MaxLevel = FatalLevel
)

// LevelCount is the number of defined levels
const LevelCount = int(MaxLevel) + 1

var levelNames = [LevelCount]string{
	TraceLevel: "TRACE",
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
	FatalLevel: "FATAL",
}

// String returns the string representation of the level
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// Valid reports whether l is one of the defined levels
func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// Admits reports whether a message at msg passes a threshold of l
func (l Level) Admits(msg Level) bool {
	return msg >= l
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and accepts WARNING as an alias for WARN.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TraceLevel, nil
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL":
		return FatalLevel, nil
	default:
		return MinLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
