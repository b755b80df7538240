package formatter

import (
	"bytes"
	"time"

	"github.com/philipp01105/ulog/core"
)

// Config holds text decoration options
type Config struct {
	// TimestampFormat prefixes each message with the current time in this
	// layout (empty for no timestamp)
	TimestampFormat string
	// LevelTag prefixes each message with its level, e.g. "[WARN] "
	LevelTag bool
	// Newline appends '\n' to messages that do not already end with one
	Newline bool
	// Color wraps each message in an ANSI color chosen by level
	Color bool
}

// TextFormatter decorates messages as human-readable text
type TextFormatter struct {
	Config
	now func() time.Time
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	return &TextFormatter{Config: cfg, now: time.Now}
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [core.LevelCount]string{
	core.TraceLevel: "[TRACE] ",
	core.DebugLevel: "[DEBUG] ",
	core.InfoLevel:  "[INFO] ",
	core.WarnLevel:  "[WARN] ",
	core.ErrorLevel: "[ERROR] ",
	core.FatalLevel: "[FATAL] ",
}

var levelColors = [core.LevelCount]string{
	core.TraceLevel: "\x1b[90m",
	core.DebugLevel: "\x1b[36m",
	core.InfoLevel:  "\x1b[32m",
	core.WarnLevel:  "\x1b[33m",
	core.ErrorLevel: "\x1b[31m",
	core.FatalLevel: "\x1b[35;1m",
}

const colorReset = "\x1b[0m"

// LevelTag returns the bracketed tag for l, e.g. "[INFO] "
func LevelTag(l core.Level) string {
	if l.Valid() {
		return levelBrackets[l]
	}
	return "[UNKNOWN] "
}

// Plain reports whether FormatTo would write msg unchanged
func (f *TextFormatter) Plain() bool {
	return f.TimestampFormat == "" && !f.LevelTag && !f.Newline && !f.Color
}

// FormatTo writes the decorated message into buf
func (f *TextFormatter) FormatTo(buf *bytes.Buffer, level core.Level, msg []byte) {
	colored := f.Color && level.Valid()
	if colored {
		buf.WriteString(levelColors[level])
	}

	if f.TimestampFormat != "" {
		buf.Write(f.now().AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
		buf.WriteByte(' ')
	}

	if f.LevelTag {
		buf.WriteString(LevelTag(level))
	}

	body := msg
	if f.Newline && len(body) > 0 && body[len(body)-1] == '\n' {
		body = body[:len(body)-1]
	}
	buf.Write(body)

	if colored {
		buf.WriteString(colorReset)
	}

	if f.Newline {
		buf.WriteByte('\n')
	}
}

// WriteNamePrefix writes the "[name] -- " prefix used by per-sink
// formatted logging
func WriteNamePrefix(b *Buffer, name string) {
	b.WriteString("[")
	b.WriteString(name)
	b.WriteString("] -- ")
}
