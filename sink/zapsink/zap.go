package zapsink

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink"
)

// Config holds configuration for the zap sink
type Config struct {
	sink.Options
	// Logger receives the messages (default: zap.NewNop())
	Logger *zap.Logger
}

// Sink forwards messages to a zap core
type Sink struct {
	sink.Base
	core  zapcore.Core
	name  string
	stats *sink.Stats
	now   func() time.Time
}

// New creates a zap sink
func New(cfg Config) *Sink {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	s := &Sink{
		core:  l.Core(),
		name:  l.Name(),
		stats: sink.NewStats(),
		now:   time.Now,
	}
	cfg.Options.Apply(s)
	return s
}

// Open is a no-op
func (s *Sink) Open() error {
	return nil
}

// Close syncs the zap core
func (s *Sink) Close() error {
	return s.Flush()
}

// Flush syncs the zap core
func (s *Sink) Flush() error {
	return s.core.Sync()
}

// Log writes msg as a zap entry with "sink" and "level" fields
func (s *Sink) Log(level core.Level, msg []byte) error {
	if err := s.Admit(level, msg); err != nil {
		s.stats.Record(err)
		return err
	}

	ent := zapcore.Entry{
		Level:      ZapLevel(level),
		Time:       s.now(),
		LoggerName: s.name,
		Message:    string(msg),
	}
	if ce := s.core.Check(ent, nil); ce != nil {
		ce.Write(
			zap.String("sink", s.Name()),
			zap.String("level", level.String()),
		)
	}
	s.stats.IncrementProcessed()
	return nil
}

// ZapLevel maps a core.Level to the closest zap level. TraceLevel has no
// zap counterpart and maps to debug.
func ZapLevel(level core.Level) zapcore.Level {
	switch level {
	case core.TraceLevel, core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	case core.ErrorLevel:
		return zapcore.ErrorLevel
	case core.FatalLevel:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

// IOType reports sink.ForwarderIO
func (s *Sink) IOType() sink.IOType {
	return sink.ForwarderIO
}

// Stats returns a snapshot of the current statistics
func (s *Sink) Stats() sink.Snapshot {
	return s.stats.GetSnapshot()
}
