package sink

import (
	"errors"
	"sync/atomic"

	"github.com/philipp01105/ulog/core"
)

// Stats tracks sink statistics
type Stats struct {
	// dropped counts messages discarded per level, e.g. on queue overflow
	dropped [core.LevelCount]atomic.Uint64
	// rejected counts messages refused by the sink-side gates
	rejected atomic.Uint64
	// failed counts write errors from the destination
	failed atomic.Uint64
	// blocked counts times a writer had to wait for queue space
	blocked atomic.Uint64
	// processed counts messages written to the destination
	processed atomic.Uint64
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementDropped atomically increments the dropped counter for a level.
// Levels outside the defined range are counted as Fatal.
func (s *Stats) IncrementDropped(level core.Level) {
	if !level.Valid() {
		level = core.MaxLevel
	}
	s.dropped[level].Add(1)
}

// IncrementRejected atomically increments the rejected counter
func (s *Stats) IncrementRejected() {
	s.rejected.Add(1)
}

// IncrementFailed atomically increments the failed counter
func (s *Stats) IncrementFailed() {
	s.failed.Add(1)
}

// IncrementBlocked atomically increments the blocked counter
func (s *Stats) IncrementBlocked() {
	s.blocked.Add(1)
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	s.processed.Add(1)
}

// Record counts the outcome of a Log call: a nil error is processed, a
// gate failure is rejected, anything else failed
func (s *Stats) Record(err error) {
	switch {
	case err == nil:
		s.processed.Add(1)
	case IsGateError(err):
		s.rejected.Add(1)
	default:
		s.failed.Add(1)
	}
}

// IsGateError reports whether err is a sink-side gate refusal (disabled,
// below threshold or empty message) rather than a destination failure
func IsGateError(err error) bool {
	return errors.Is(err, core.ErrDisabled) ||
		errors.Is(err, core.ErrBelowThreshold) ||
		errors.Is(err, core.ErrBadMessage)
}

// GetDropped returns the dropped count for a level
func (s *Stats) GetDropped(level core.Level) uint64 {
	if !level.Valid() {
		return 0
	}
	return s.dropped[level].Load()
}

// GetTotalDropped returns the total dropped across all levels
func (s *Stats) GetTotalDropped() uint64 {
	var total uint64
	for i := range s.dropped {
		total += s.dropped[i].Load()
	}
	return total
}

// Reset resets all counters to zero
func (s *Stats) Reset() {
	for i := range s.dropped {
		s.dropped[i].Store(0)
	}
	s.rejected.Store(0)
	s.failed.Store(0)
	s.blocked.Store(0)
	s.processed.Store(0)
}

// Snapshot is a point-in-time copy of Stats
type Snapshot struct {
	Dropped   [core.LevelCount]uint64
	Rejected  uint64
	Failed    uint64
	Blocked   uint64
	Processed uint64
}

// TotalDropped returns the dropped count across all levels
func (s Snapshot) TotalDropped() uint64 {
	var total uint64
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	snap := Snapshot{
		Rejected:  s.rejected.Load(),
		Failed:    s.failed.Load(),
		Blocked:   s.blocked.Load(),
		Processed: s.processed.Load(),
	}
	for i := range s.dropped {
		snap.Dropped[i] = s.dropped[i].Load()
	}
	return snap
}
