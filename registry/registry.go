package registry

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink"
)

type slot struct {
	sink sink.Sink
	gen  uint32
}

// Registry is a bounded collection of sinks addressed by Handle. The zero
// value is not usable; create one with New.
type Registry struct {
	slots [core.MaxSinks]slot
	cap   int
	len   int
}

// New creates a registry with the given number of usable slots, clamped
// to 1..core.MaxSinks
func New(capacity int) *Registry {
	r := &Registry{}
	r.init(capacity)
	return r
}

func (r *Registry) init(capacity int) {
	if capacity <= 0 || capacity > core.MaxSinks {
		capacity = core.MaxSinks
	}
	r.cap = capacity
	for i := range r.slots {
		r.slots[i].gen = 1
	}
}

// Cap returns the number of usable slots
func (r *Registry) Cap() int {
	return r.cap
}

// Len returns the number of occupied slots
func (r *Registry) Len() int {
	return r.len
}

// Register installs s in the first free slot after a successful Open and
// returns its handle. A sink that is already registered keeps its handle
// and is not opened again.
func (r *Registry) Register(s sink.Sink) (Handle, error) {
	if s == nil {
		return None, fmt.Errorf("%w: nil sink", core.ErrFail)
	}
	if !reflect.TypeOf(s).Comparable() {
		return None, core.ErrNotComparable
	}

	free := -1
	for i := 0; i < r.cap; i++ {
		cur := r.slots[i].sink
		if cur == nil {
			if free < 0 {
				free = i
			}
			continue
		}
		if cur == s {
			return r.handle(i), nil
		}
	}

	if free < 0 {
		return None, core.ErrFull
	}
	if err := s.Open(); err != nil {
		return None, fmt.Errorf("open sink %q: %w", s.Name(), err)
	}

	r.slots[free].sink = s
	r.len++
	return r.handle(free), nil
}

// Remove clears the slot named by h and closes its sink. The slot is
// cleared even when Close fails; the Close error is returned.
func (r *Registry) Remove(h Handle) error {
	i, ok := r.Resolve(h)
	if !ok {
		return core.ErrInvalidHandle
	}
	s := r.clear(i)
	if err := s.Close(); err != nil {
		return fmt.Errorf("close sink %q: %w", s.Name(), err)
	}
	return nil
}

// RemoveAll clears and closes every occupied slot. The returned error
// combines every Close failure.
func (r *Registry) RemoveAll() error {
	var errs error
	for i := 0; i < r.cap; i++ {
		if r.slots[i].sink == nil {
			continue
		}
		s := r.clear(i)
		if err := s.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close sink %q: %w", s.Name(), err))
		}
	}
	return errs
}

// Resolve maps a handle to its slot index. Stale, foreign and out of range
// handles do not resolve.
func (r *Registry) Resolve(h Handle) (int, bool) {
	if h.IsNone() {
		return 0, false
	}
	i := int(h.index)
	if i >= r.cap {
		return 0, false
	}
	sl := &r.slots[i]
	if sl.sink == nil || sl.gen != h.gen {
		return 0, false
	}
	return i, true
}

// Get returns the sink named by h
func (r *Registry) Get(h Handle) (sink.Sink, bool) {
	i, ok := r.Resolve(h)
	if !ok {
		return nil, false
	}
	return r.slots[i].sink, true
}

// Find returns the handle of s if it is registered
func (r *Registry) Find(s sink.Sink) (Handle, bool) {
	if s == nil || !reflect.TypeOf(s).Comparable() {
		return None, false
	}
	for i := 0; i < r.cap; i++ {
		if r.slots[i].sink == s {
			return r.handle(i), true
		}
	}
	return None, false
}

// At returns the sink in slot i, or nil when the slot is empty or out of
// range
func (r *Registry) At(i int) sink.Sink {
	if i < 0 || i >= r.cap {
		return nil
	}
	return r.slots[i].sink
}

// ForEach calls fn for every occupied slot in slot order until fn returns
// false
func (r *Registry) ForEach(fn func(h Handle, s sink.Sink) bool) {
	for i := 0; i < r.cap; i++ {
		s := r.slots[i].sink
		if s == nil {
			continue
		}
		if !fn(r.handle(i), s) {
			return
		}
	}
}

func (r *Registry) handle(i int) Handle {
	return Handle{index: uint16(i), gen: r.slots[i].gen}
}

// clear empties slot i and retires its generation
func (r *Registry) clear(i int) sink.Sink {
	sl := &r.slots[i]
	s := sl.sink
	sl.sink = nil
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	r.len--
	return s
}
