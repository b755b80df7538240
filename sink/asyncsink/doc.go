// Package asyncsink decouples a slow sink from the caller with a bounded
// queue and a background writer goroutine.
//
// Messages are copied into preallocated buffers of core.MaxMessageLength
// bytes, so a full queue never allocates. When every buffer is in use the
// per-level OverflowPolicy decides what happens:
//
//   - DropNewest discards the incoming message
//   - DropOldest discards the oldest queued message to make room. An oldest
//     message of higher level than the incoming one is written synchronously
//     instead, so lower levels never evict more severe messages.
//   - Block waits up to BlockTimeout, then writes synchronously
//
// By default Error and Fatal messages block, everything else is dropped.
// Flush waits until the queue is empty and then flushes the wrapped sink.
// Close drains the queue for at most DrainTimeout before closing it.
package asyncsink
