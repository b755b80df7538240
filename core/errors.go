package core

import (
	"errors"
	"fmt"
)

// Root sentinels, one per Result code.
var (
	ErrFail           = errors.New("ulog: fail")
	ErrMessageTooLong = errors.New("ulog: message too long")
	ErrLocked         = errors.New("ulog: locked")
	ErrFull           = errors.New("ulog: registry full")
	ErrInvalidLevel   = errors.New("ulog: invalid level")
)

// Specific failures. Each wraps one of the root sentinels.
var (
	ErrBadMessage     = fmt.Errorf("%w: empty message", ErrFail)
	ErrBelowThreshold = fmt.Errorf("%w: below threshold", ErrFail)
	ErrDisabled       = fmt.Errorf("%w: sink disabled", ErrFail)
	ErrInvalidHandle  = fmt.Errorf("%w: invalid sink handle", ErrFail)
	ErrNotOwner       = fmt.Errorf("%w: guard not held by caller", ErrFail)
	ErrSinkPanic      = fmt.Errorf("%w: sink panicked", ErrFail)
	ErrShortWrite     = fmt.Errorf("%w: short write", ErrFail)
	ErrNotComparable  = fmt.Errorf("%w: sink is not comparable", ErrFail)
	ErrClosed         = fmt.Errorf("%w: sink closed", ErrFail)
	ErrNestingDepth   = fmt.Errorf("%w: nesting depth exceeded", ErrLocked)
)

// Result is the coarse outcome of an operation
type Result uint8

const (
	ResultSuccess Result = iota
	ResultFail
	ResultMessageTooLong
	ResultLocked
	ResultFull
	ResultInvalidLevel
)

// String returns the string representation of the result
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultFail:
		return "Fail"
	case ResultMessageTooLong:
		return "FailMessageTooLong"
	case ResultLocked:
		return "Locked"
	case ResultFull:
		return "Full"
	case ResultInvalidLevel:
		return "InvalidLevel"
	default:
		return "Unknown"
	}
}

// ResultOf maps an error returned by any uLog operation to its Result.
// Errors that do not wrap a root sentinel map to ResultFail.
func ResultOf(err error) Result {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrLocked):
		return ResultLocked
	case errors.Is(err, ErrFull):
		return ResultFull
	case errors.Is(err, ErrMessageTooLong):
		return ResultMessageTooLong
	case errors.Is(err, ErrInvalidLevel):
		return ResultInvalidLevel
	default:
		return ResultFail
	}
}
