// Package core defines the shared types used across uLog.
//
// It provides the Level type for severity filtering, the sentinel errors
// that make up the result taxonomy, and the build-time limits that size
// every fixed-capacity structure in the module.
//
// Errors are grouped under a handful of root sentinels (ErrFail,
// ErrMessageTooLong, ErrLocked, ErrFull, ErrInvalidLevel). More specific
// errors wrap one of them, so callers can either match the exact cause
// with errors.Is or collapse any error into a Result code with ResultOf:
//
//	if core.ResultOf(err) == core.ResultLocked {
//	    // guard timed out, message was dropped
//	}
//
// Limits are constants rather than runtime options. Structures that are
// allowed to be smaller (the registry capacity, the nesting depth) take a
// runtime value that is clamped to the constant.
package core
