package formatter

import (
	"fmt"

	"github.com/philipp01105/ulog/core"
)

// Buffer is a fixed-capacity text buffer of core.MaxMessageLength bytes.
// The zero value is an empty buffer ready to use.
type Buffer struct {
	data      [core.MaxMessageLength]byte
	n         int
	truncated bool
}

// Reset empties the buffer
func (b *Buffer) Reset() {
	b.n = 0
	b.truncated = false
}

// Write appends as much of p as fits. It always reports len(p) so that
// fmt keeps formatting; use Truncated to find out whether bytes were lost.
func (b *Buffer) Write(p []byte) (int, error) {
	c := copy(b.data[b.n:], p)
	b.n += c
	if c < len(p) {
		b.truncated = true
	}
	return len(p), nil
}

// WriteString appends as much of s as fits
func (b *Buffer) WriteString(s string) (int, error) {
	c := copy(b.data[b.n:], s)
	b.n += c
	if c < len(s) {
		b.truncated = true
	}
	return len(s), nil
}

// Printf appends a formatted string and reports whether the buffer is
// truncated afterwards
func (b *Buffer) Printf(format string, args ...interface{}) bool {
	fmt.Fprintf(b, format, args...)
	return b.truncated
}

// Bytes returns the buffered bytes. The slice aliases the buffer and is
// only valid until the next Reset or Write.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n]
}

// Len returns the number of buffered bytes
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the buffer capacity
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Truncated reports whether any write since the last Reset was cut short
func (b *Buffer) Truncated() bool {
	return b.truncated
}
