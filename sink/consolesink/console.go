package consolesink

import (
	"bytes"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/formatter"
	"github.com/philipp01105/ulog/sink"
)

// ColorMode decides whether output is wrapped in ANSI colors
type ColorMode uint8

const (
	// ColorNever leaves output uncolored
	ColorNever ColorMode = iota
	// ColorAuto colors output when the writer is a terminal
	ColorAuto
	// ColorAlways colors output unconditionally
	ColorAlways
)

// Config holds configuration for the console sink
type Config struct {
	sink.Options
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Format decorates each message (default: messages are written as is)
	Format formatter.Config
	// Color overrides Format.Color (default: ColorNever)
	Color ColorMode
}

// Sink writes messages to an io.Writer
type Sink struct {
	sink.Base
	writer io.Writer
	format *formatter.TextFormatter
	stats  *sink.Stats

	mu  sync.Mutex // protects buf and serializes writes
	buf bytes.Buffer
}

// New creates a console sink
func New(cfg Config) *Sink {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	switch cfg.Color {
	case ColorAlways:
		cfg.Format.Color = true
	case ColorAuto:
		cfg.Format.Color = isTerminal(cfg.Writer)
	}

	s := &Sink{
		writer: cfg.Writer,
		format: formatter.NewTextFormatter(cfg.Format),
		stats:  sink.NewStats(),
	}
	s.buf.Grow(core.MaxMessageLength + 64)
	cfg.Options.Apply(s)
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Open is a no-op; the writer is owned by the caller
func (s *Sink) Open() error {
	return nil
}

// Close flushes the writer. The writer itself is not closed.
func (s *Sink) Close() error {
	return s.Flush()
}

// Flush flushes writers that buffer, such as *bufio.Writer
func (s *Sink) Flush() error {
	f, ok := s.writer.(interface{ Flush() error })
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.Flush()
}

// Log writes msg, decorated according to the configured format
func (s *Sink) Log(level core.Level, msg []byte) error {
	if err := s.Admit(level, msg); err != nil {
		s.stats.Record(err)
		return err
	}

	s.mu.Lock()
	out := msg
	if !s.format.Plain() {
		s.buf.Reset()
		s.format.FormatTo(&s.buf, level, msg)
		out = s.buf.Bytes()
	}
	n, err := s.writer.Write(out)
	s.mu.Unlock()

	if err == nil && n < len(out) {
		err = core.ErrShortWrite
	}
	s.stats.Record(err)
	return err
}

// IOType reports sink.ConsoleIO
func (s *Sink) IOType() sink.IOType {
	return sink.ConsoleIO
}

// Stats returns a snapshot of the current statistics
func (s *Sink) Stats() sink.Snapshot {
	return s.stats.GetSnapshot()
}
