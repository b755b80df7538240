package logger

import (
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/formatter"
	"github.com/philipp01105/ulog/guard"
	"github.com/philipp01105/ulog/registry"
	"github.com/philipp01105/ulog/sink"
)

// Dispatcher fans log messages out to a bounded set of registered sinks.
// All registry mutation and dispatch is serialized by one re-entrant guard.
type Dispatcher struct {
	guard       *guard.Guard
	reg         *registry.Registry
	lockTimeout time.Duration
	reportTrunc bool
	diag        *zap.Logger

	initialized atomic.Bool
	level       atomic.Int32    // written under guard
	root        registry.Handle // guarded

	// one formatting buffer per nesting depth, indexed by guard depth
	fmtBufs [core.MaxNestingDepth]formatter.Buffer

	dispatched   atomic.Uint64
	filtered     atomic.Uint64
	locked       atomic.Uint64
	sinkFailures atomic.Uint64
}

// Builder provides a fluent API for building Dispatcher instances
type Builder struct {
	capacity    int
	lockTimeout time.Duration
	level       core.Level
	maxNesting  int
	diag        *zap.Logger
	reportTrunc bool
}

// NewBuilder creates a new dispatcher builder
func NewBuilder() *Builder {
	return &Builder{
		capacity:    core.MaxSinks,
		lockTimeout: core.DefaultLockTimeout,
		level:       core.MinLevel,
		maxNesting:  core.MaxNestingDepth,
	}
}

// WithCapacity sets the number of usable registry slots (1..core.MaxSinks)
func (b *Builder) WithCapacity(n int) *Builder {
	b.capacity = n
	return b
}

// WithLockTimeout bounds every guard acquisition. Negative waits forever,
// zero only tries once.
func (b *Builder) WithLockTimeout(d time.Duration) *Builder {
	b.lockTimeout = d
	return b
}

// WithLevel sets the initial global log level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithMaxNesting sets how often the guard owner may re-enter (1..core.MaxNestingDepth)
func (b *Builder) WithMaxNesting(n int) *Builder {
	b.maxNesting = n
	return b
}

// WithDiagnostics sets the logger used for internal diagnostics such as
// failed sink registration or recovered sink panics
func (b *Builder) WithDiagnostics(l *zap.Logger) *Builder {
	b.diag = l
	return b
}

// WithTruncationReport makes formatted logging return core.ErrMessageTooLong
// when the message had to be truncated. The truncated message is logged
// either way.
func (b *Builder) WithTruncationReport(enabled bool) *Builder {
	b.reportTrunc = enabled
	return b
}

// Build creates an initialized Dispatcher
func (b *Builder) Build() *Dispatcher {
	diag := b.diag
	if diag == nil {
		diag = zap.NewNop()
	}
	d := &Dispatcher{
		guard:       guard.New(b.maxNesting),
		reg:         registry.New(b.capacity),
		lockTimeout: b.lockTimeout,
		reportTrunc: b.reportTrunc,
		diag:        diag,
	}
	d.level.Store(int32(b.level))
	d.initialized.Store(true)
	return d
}

func (d *Dispatcher) acquire() error {
	err := d.guard.Acquire(d.lockTimeout)
	if err != nil && errors.Is(err, core.ErrLocked) {
		d.locked.Add(1)
	}
	return err
}

func (d *Dispatcher) release() {
	if err := d.guard.Release(); err != nil {
		d.diag.Error("guard release failed", zap.Error(err))
	}
}

// Initialize prepares the dispatcher after construction or Shutdown. It is
// idempotent: only the first caller to win the guard clears the registry.
// Sinks registered while uninitialized are closed as they are removed.
func (d *Dispatcher) Initialize() error {
	if d.initialized.Load() {
		return nil
	}
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	if d.initialized.Load() {
		return nil
	}
	if err := d.reg.RemoveAll(); err != nil {
		d.diag.Warn("closing sinks on initialize", zap.Error(err))
	}
	d.root = registry.None
	d.initialized.Store(true)
	return nil
}

// Initialized reports whether Initialize has run since the last Shutdown
func (d *Dispatcher) Initialized() bool {
	return d.initialized.Load()
}

// Shutdown removes and closes every sink, clears the root sink, resets the
// global level and marks the dispatcher uninitialized. The returned error
// combines every Close failure; the registry is empty afterwards regardless.
func (d *Dispatcher) Shutdown() error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	err := d.reg.RemoveAll()
	d.root = registry.None
	d.level.Store(int32(core.MinLevel))
	d.initialized.Store(false)
	return err
}

// SetGlobalLogLevel sets the process-wide floor below which messages never
// reach a sink
func (d *Dispatcher) SetGlobalLogLevel(level core.Level) error {
	if err := d.acquire(); err != nil {
		return err
	}
	d.level.Store(int32(level))
	d.release()
	return nil
}

// GlobalLogLevel returns the current global floor
func (d *Dispatcher) GlobalLogLevel() core.Level {
	return core.Level(d.level.Load())
}

// Log fans msg out to every enabled sink whose level is at or above the
// global floor. Empty messages are rejected before the guard is taken.
//
// The registry gate compares each sink's level against the global floor,
// not against level; whether the message itself is admitted is left to
// the sink's own Log. Sink failures do not stop the fan-out and are not
// reported to the caller.
func (d *Dispatcher) Log(level core.Level, msg []byte) error {
	if len(msg) == 0 {
		return core.ErrBadMessage
	}
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	floor := core.Level(d.level.Load())
	if level < floor {
		d.filtered.Add(1)
		return core.ErrBelowThreshold
	}

	for i := 0; i < d.reg.Cap(); i++ {
		s := d.reg.At(i)
		if s == nil || !s.Enabled() || s.Level() < floor {
			continue
		}
		d.deliver(s, level, msg)
	}
	d.dispatched.Add(1)
	return nil
}

// LogRoot writes msg to the root sink only, applying the same gates as Log
func (d *Dispatcher) LogRoot(level core.Level, msg []byte) error {
	if len(msg) == 0 {
		return core.ErrBadMessage
	}
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	floor := core.Level(d.level.Load())
	if level < floor {
		d.filtered.Add(1)
		return core.ErrBelowThreshold
	}
	s, ok := d.reg.Get(d.root)
	if !ok {
		return core.ErrInvalidHandle
	}
	if s.Enabled() && s.Level() >= floor {
		d.deliver(s, level, msg)
	}
	d.dispatched.Add(1)
	return nil
}

// deliver calls s.Log, swallowing its error and any panic
func (d *Dispatcher) deliver(s sink.Sink, level core.Level, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			d.sinkFailures.Add(1)
			d.diag.Warn("sink panicked during log",
				zap.String("sink", s.Name()),
				zap.Any("panic", r),
			)
		}
	}()
	if err := s.Log(level, msg); err != nil && !sink.IsGateError(err) {
		d.sinkFailures.Add(1)
		d.diag.Debug("sink failed to log", zap.String("sink", s.Name()), zap.Error(err))
	}
}

// Trace logs msg at TraceLevel
func (d *Dispatcher) Trace(msg []byte) error {
	return d.Log(core.TraceLevel, msg)
}

// Debug logs msg at DebugLevel
func (d *Dispatcher) Debug(msg []byte) error {
	return d.Log(core.DebugLevel, msg)
}

// Info logs msg at InfoLevel
func (d *Dispatcher) Info(msg []byte) error {
	return d.Log(core.InfoLevel, msg)
}

// Warn logs msg at WarnLevel
func (d *Dispatcher) Warn(msg []byte) error {
	return d.Log(core.WarnLevel, msg)
}

// Error logs msg at ErrorLevel
func (d *Dispatcher) Error(msg []byte) error {
	return d.Log(core.ErrorLevel, msg)
}

// Fatal logs msg at FatalLevel. The process keeps running.
func (d *Dispatcher) Fatal(msg []byte) error {
	return d.Log(core.FatalLevel, msg)
}

// Snapshot is a point-in-time copy of dispatcher counters
type Snapshot struct {
	// Dispatched counts Log calls that reached the fan-out
	Dispatched uint64
	// Filtered counts Log calls rejected by the global floor
	Filtered uint64
	// Locked counts operations that timed out on the guard
	Locked uint64
	// SinkFailures counts sink Log calls that failed or panicked
	SinkFailures uint64
}

// Stats returns a snapshot of the dispatcher counters
func (d *Dispatcher) Stats() Snapshot {
	return Snapshot{
		Dispatched:   d.dispatched.Load(),
		Filtered:     d.filtered.Load(),
		Locked:       d.locked.Load(),
		SinkFailures: d.sinkFailures.Load(),
	}
}
