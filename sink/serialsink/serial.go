package serialsink

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/formatter"
	"github.com/philipp01105/ulog/sink"
)

// DefaultBaud is used when Config.Baud is zero
const DefaultBaud = 115200

// Config holds configuration for the serial sink
type Config struct {
	sink.Options
	// Device is the tty path, e.g. /dev/ttyUSB0
	Device string
	// Baud is the line speed (default: 115200)
	Baud int
	// Format decorates each message (default: messages are written as is)
	Format formatter.Config
}

// Sink writes messages to a serial device
type Sink struct {
	sink.Base
	cfg    Config
	format *formatter.TextFormatter
	stats  *sink.Stats

	mu   sync.Mutex
	port *os.File
	buf  bytes.Buffer
}

// New creates a serial sink. The device is opened by Open.
func New(cfg Config) (*Sink, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("%w: device is required", core.ErrFail)
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if !supportedBaud(cfg.Baud) {
		return nil, fmt.Errorf("%w: unsupported baud rate %d", core.ErrFail, cfg.Baud)
	}
	s := &Sink{
		cfg:    cfg,
		format: formatter.NewTextFormatter(cfg.Format),
		stats:  sink.NewStats(),
	}
	cfg.Options.Apply(s)
	return s, nil
}

// Open opens and configures the device
func (s *Sink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return nil
	}
	port, err := os.OpenFile(s.cfg.Device, openFlags, 0)
	if err != nil {
		return err
	}
	if err := configure(int(port.Fd()), s.cfg.Baud); err != nil {
		return errors.Join(fmt.Errorf("configure %s: %w", s.cfg.Device, err), port.Close())
	}
	s.port = port
	return nil
}

// Close drains pending output and closes the device
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil
	}
	err := drain(int(s.port.Fd()))
	err = errors.Join(err, s.port.Close())
	s.port = nil
	return err
}

// Flush blocks until queued output has been transmitted
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return core.ErrClosed
	}
	return drain(int(s.port.Fd()))
}

// Log writes msg to the device
func (s *Sink) Log(level core.Level, msg []byte) error {
	if err := s.Admit(level, msg); err != nil {
		s.stats.Record(err)
		return err
	}

	s.mu.Lock()
	err := s.writeLocked(level, msg)
	s.mu.Unlock()

	s.stats.Record(err)
	return err
}

func (s *Sink) writeLocked(level core.Level, msg []byte) error {
	if s.port == nil {
		return core.ErrClosed
	}
	out := msg
	if !s.format.Plain() {
		s.buf.Reset()
		s.format.FormatTo(&s.buf, level, msg)
		out = s.buf.Bytes()
	}
	n, err := s.port.Write(out)
	if err == nil && n < len(out) {
		err = core.ErrShortWrite
	}
	return err
}

// IOType reports sink.SerialIO
func (s *Sink) IOType() sink.IOType {
	return sink.SerialIO
}

// Stats returns a snapshot of the current statistics
func (s *Sink) Stats() sink.Snapshot {
	return s.stats.GetSnapshot()
}
