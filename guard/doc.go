// Package guard provides the re-entrant, timeout-bounded lock that
// serializes registry mutation and dispatch in uLog.
//
// Ownership is tied to the calling goroutine. The owner may acquire the
// guard again without blocking, e.g. when a sink reports an error through
// the dispatcher from inside its own Log call; every Acquire must be paired
// with a Release on the same goroutine. Nesting is bounded by the depth
// given to New, after which Acquire fails with core.ErrNestingDepth.
//
// Every acquisition is bounded:
//
//	timeout < 0   wait forever
//	timeout == 0  try once
//	timeout > 0   wait at most timeout, then fail with core.ErrLocked
//
// The uncontended path takes a single non-blocking channel send and does
// not allocate. A timer is only created when the guard is contended.
package guard
