// Package registry implements the fixed-capacity sink registry.
//
// The registry owns an array of core.MaxSinks slots. A Handle names a slot
// by index and generation; the generation of a slot is bumped every time
// it is cleared, so a handle kept after RemoveSink never resolves again,
// even if a later registration reuses the same slot. None, the zero Handle,
// never resolves and is used by callers as the "all sinks" wildcard.
//
// Registry is not safe for concurrent use. Dispatchers hold their guard
// around every call, which also makes Register's check-then-insert
// sequence atomic.
package registry
