package probesink

import (
	"io"
	"sync"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink"
)

// DefaultChannel is the channel used when Config.Channel is zero; 1 is
// the conventional stdout channel of semihosting hosts
const DefaultChannel uint8 = 1

// Channel is a probe connection with numbered output channels
type Channel interface {
	WriteChannel(ch uint8, p []byte) (int, error)
}

// WriterChannel adapts an io.Writer to Channel, ignoring the channel number
type WriterChannel struct {
	W io.Writer
}

// WriteChannel writes p to the wrapped writer
func (w WriterChannel) WriteChannel(_ uint8, p []byte) (int, error) {
	return w.W.Write(p)
}

// Close closes the wrapped writer if it is an io.Closer
func (w WriterChannel) Close() error {
	if c, ok := w.W.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Config holds configuration for the probe sink
type Config struct {
	sink.Options
	// Probe is the transport to write to
	Probe Channel
	// Channel is the output channel number (default: 1)
	Channel uint8
}

// Sink writes messages to a debug-probe channel
type Sink struct {
	sink.Base
	probe   Channel
	channel uint8
	stats   *sink.Stats
	mu      sync.Mutex
}

// New creates a probe sink
func New(cfg Config) *Sink {
	if cfg.Channel == 0 {
		cfg.Channel = DefaultChannel
	}
	s := &Sink{
		probe:   cfg.Probe,
		channel: cfg.Channel,
		stats:   sink.NewStats(),
	}
	cfg.Options.Apply(s)
	return s
}

// Open fails when no probe transport was configured
func (s *Sink) Open() error {
	if s.probe == nil {
		return core.ErrClosed
	}
	return nil
}

// Close closes the probe when it is an io.Closer
func (s *Sink) Close() error {
	if c, ok := s.probe.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Flush is a no-op; probe writes are unbuffered
func (s *Sink) Flush() error {
	return nil
}

// Log writes msg to the probe channel. A partial write fails with
// core.ErrShortWrite.
func (s *Sink) Log(level core.Level, msg []byte) error {
	if err := s.Admit(level, msg); err != nil {
		s.stats.Record(err)
		return err
	}

	if s.probe == nil {
		s.stats.Record(core.ErrClosed)
		return core.ErrClosed
	}

	s.mu.Lock()
	n, err := s.probe.WriteChannel(s.channel, msg)
	s.mu.Unlock()

	if err == nil && n != len(msg) {
		err = core.ErrShortWrite
	}
	s.stats.Record(err)
	return err
}

// IOType reports sink.SemihostingIO
func (s *Sink) IOType() sink.IOType {
	return sink.SemihostingIO
}

// Stats returns a snapshot of the current statistics
func (s *Sink) Stats() sink.Snapshot {
	return s.stats.GetSnapshot()
}
