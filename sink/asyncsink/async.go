package asyncsink

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink"
)

// Config holds configuration for the async wrapper
type Config struct {
	// Sink is the wrapped sink
	Sink sink.Sink
	// BufferSize is the number of queued messages (default: 64)
	BufferSize int
	// OverflowPolicy defines per-level overflow behavior (default: DefaultLevelPolicy)
	OverflowPolicy map[core.Level]OverflowPolicy
	// BlockTimeout is the timeout for the Block policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout bounds draining the queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// applyDefaults fills in zero-value fields with defaults.
func applyDefaults(cfg *Config) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if cfg.OverflowPolicy == nil {
		cfg.OverflowPolicy = DefaultLevelPolicy()
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
}

type record struct {
	level core.Level
	n     int
	data  [core.MaxMessageLength]byte
}

// Sink queues messages for a wrapped sink. Enable, level and name state
// is the wrapped sink's own.
type Sink struct {
	inner        sink.Sink
	policy       [core.LevelCount]OverflowPolicy
	blockTimeout time.Duration
	drainTimeout time.Duration
	stats        *sink.Stats

	free  chan *record
	queue chan *record

	// life is held shared by Log while enqueueing and exclusively by
	// Open and Close
	life    sync.RWMutex
	running atomic.Bool
	closed  chan struct{}
	done    chan struct{}

	writeMu sync.Mutex // serializes inner.Log between worker and fallback writes

	mu      sync.Mutex
	cond    *sync.Cond
	pending int // queued or being written
}

// New wraps cfg.Sink. The queue is started by Open.
func New(cfg Config) (*Sink, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("%w: wrapped sink is required", core.ErrFail)
	}
	applyDefaults(&cfg)

	s := &Sink{
		inner:        cfg.Sink,
		blockTimeout: cfg.BlockTimeout,
		drainTimeout: cfg.DrainTimeout,
		stats:        sink.NewStats(),
		free:         make(chan *record, cfg.BufferSize),
		queue:        make(chan *record, cfg.BufferSize),
	}
	s.cond = sync.NewCond(&s.mu)
	for l := core.MinLevel; l <= core.MaxLevel; l++ {
		if p, ok := cfg.OverflowPolicy[l]; ok {
			s.policy[l] = p
		}
	}
	records := make([]record, cfg.BufferSize)
	for i := range records {
		s.free <- &records[i]
	}
	return s, nil
}

// Unwrap returns the wrapped sink
func (s *Sink) Unwrap() sink.Sink {
	return s.inner
}

// Open opens the wrapped sink and starts the writer goroutine
func (s *Sink) Open() error {
	s.life.Lock()
	defer s.life.Unlock()

	if s.running.Load() {
		return nil
	}
	if err := s.inner.Open(); err != nil {
		return err
	}
	s.closed = make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)
	go s.process(s.closed, s.done)
	return nil
}

// Close drains the queue within the drain timeout, then flushes and
// closes the wrapped sink
func (s *Sink) Close() error {
	s.life.Lock()
	defer s.life.Unlock()

	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	close(s.closed)
	<-s.done

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.inner.Flush()
	return s.inner.Close()
}

// Flush waits for queued messages to be written, then flushes the
// wrapped sink
func (s *Sink) Flush() error {
	s.mu.Lock()
	for s.pending > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.inner.Flush()
}

// Log copies msg into a queue buffer. Messages longer than
// core.MaxMessageLength are truncated, queued, and reported with
// core.ErrMessageTooLong.
func (s *Sink) Log(level core.Level, msg []byte) error {
	switch {
	case len(msg) == 0:
		return core.ErrBadMessage
	case !s.inner.Enabled():
		return core.ErrDisabled
	case level < s.inner.Level():
		return core.ErrBelowThreshold
	}

	s.life.RLock()
	defer s.life.RUnlock()
	if !s.running.Load() {
		return core.ErrClosed
	}

	r := s.acquire(level)
	if r == nil {
		return nil
	}
	if r == fallback {
		return s.writeSync(level, msg)
	}

	r.level = level
	r.n = copy(r.data[:], msg)
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	s.queue <- r

	if r.n < len(msg) {
		return core.ErrMessageTooLong
	}
	return nil
}

// fallback is returned by acquire when the caller must write synchronously
var fallback = &record{}

// acquire returns a free buffer, applying the level's overflow policy when
// none is available. nil means the message was dropped.
func (s *Sink) acquire(level core.Level) *record {
	select {
	case r := <-s.free:
		return r
	default:
	}

	switch s.policyFor(level) {
	case Block:
		timer := time.NewTimer(s.blockTimeout)
		defer timer.Stop()
		select {
		case r := <-s.free:
			return r
		case <-timer.C:
			// Timeout - fall back to synchronous write
			s.stats.IncrementBlocked()
			return fallback
		}

	case DropOldest:
		select {
		case old := <-s.queue:
			if old.level > level {
				// a more severe message is never evicted; write it now and
				// reuse its buffer
				_ = s.writeSync(old.level, old.data[:old.n])
			} else {
				s.stats.IncrementDropped(old.level)
			}
			s.done1()
			return old
		default:
			// everything is in flight
			s.stats.IncrementDropped(level)
			return nil
		}

	default:
		s.stats.IncrementDropped(level)
		return nil
	}
}

func (s *Sink) policyFor(level core.Level) OverflowPolicy {
	if level.Valid() {
		return s.policy[level]
	}
	return DropNewest
}

func (s *Sink) writeSync(level core.Level, msg []byte) error {
	if len(msg) > core.MaxMessageLength {
		msg = msg[:core.MaxMessageLength]
	}
	s.writeMu.Lock()
	err := s.inner.Log(level, msg)
	s.writeMu.Unlock()
	s.stats.Record(err)
	return err
}

// process writes queued messages until closed, then drains the queue
// within the drain timeout
func (s *Sink) process(closed, done chan struct{}) {
	defer close(done)

	for {
		select {
		case r := <-s.queue:
			s.write(r)
		case <-closed:
			deadline := time.NewTimer(s.drainTimeout)
			defer deadline.Stop()
			for {
				select {
				case r := <-s.queue:
					s.write(r)
					continue
				case <-deadline.C:
					s.discard()
				default:
				}
				return
			}
		}
	}
}

func (s *Sink) write(r *record) {
	s.writeMu.Lock()
	err := s.inner.Log(r.level, r.data[:r.n])
	s.writeMu.Unlock()
	s.stats.Record(err)

	s.free <- r
	s.done1()
}

// discard drops whatever is still queued after the drain deadline
func (s *Sink) discard() {
	for {
		select {
		case r := <-s.queue:
			s.stats.IncrementDropped(r.level)
			s.free <- r
			s.done1()
		default:
			return
		}
	}
}

func (s *Sink) done1() {
	s.mu.Lock()
	s.pending--
	if s.pending == 0 {
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

// Pending returns the number of messages queued or being written
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stats returns a snapshot of the queue statistics
func (s *Sink) Stats() sink.Snapshot {
	return s.stats.GetSnapshot()
}

func (s *Sink) Enable()                   { s.inner.Enable() }
func (s *Sink) Disable()                  { s.inner.Disable() }
func (s *Sink) Enabled() bool             { return s.inner.Enabled() }
func (s *Sink) SetLevel(level core.Level) { s.inner.SetLevel(level) }
func (s *Sink) Level() core.Level         { return s.inner.Level() }
func (s *Sink) SetName(name string)       { s.inner.SetName(name) }
func (s *Sink) Name() string              { return s.inner.Name() }
func (s *Sink) IOType() sink.IOType       { return s.inner.IOType() }
