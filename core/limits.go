package core

import "time"

const (
	// MaxSinks is the number of registry slots. It bounds memory use and
	// the cost of every dispatch.
	MaxSinks = 10

	// MaxMessageLength is the size of every internal formatting buffer.
	// Formatted messages longer than this are truncated.
	MaxMessageLength = 256

	// MaxNestingDepth bounds how many times the owner of the guard may
	// re-acquire it, e.g. a sink that logs from inside its own Log call.
	MaxNestingDepth = 8

	// DefaultLockTimeout bounds guard acquisition when no timeout is set.
	DefaultLockTimeout = 10 * time.Millisecond
)
