// Package formatter provides the bounded text buffer used for formatted
// log calls and the text decoration shared by writer-backed sinks.
//
// Buffer is a fixed-size, allocation-free text buffer. It implements
// io.Writer and never reports an error: bytes beyond its capacity are
// discarded and the buffer remembers that it was truncated. This lets
// fmt.Fprintf fill it in one pass while the caller decides whether a
// truncated message is acceptable.
//
// TextFormatter decorates an opaque message with an optional timestamp,
// level tag, ANSI color and trailing newline. It writes into a
// caller-owned bytes.Buffer so sinks can keep one buffer per instance and
// issue a single Write per message. The level tags (" [INFO] ", etc.) are
// pre-computed so the common path is a single WriteString call.
package formatter
