package logger

import (
	"go.uber.org/zap"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/registry"
	"github.com/philipp01105/ulog/sink"
)

// RegisterSink opens s and installs it in the first free slot. A sink that
// is already registered returns its existing handle.
func (d *Dispatcher) RegisterSink(s sink.Sink) (registry.Handle, error) {
	if err := d.acquire(); err != nil {
		return registry.None, err
	}
	defer d.release()

	h, err := d.reg.Register(s)
	if err != nil {
		d.diag.Debug("sink registration failed", zap.Error(err))
		return registry.None, err
	}
	return h, nil
}

// RemoveSink closes and removes the sink named by h. With None every sink
// is removed and the call always succeeds once the guard is held. The slot
// is freed even if Close fails; that error is returned.
func (d *Dispatcher) RemoveSink(h registry.Handle) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	if h.IsNone() {
		if err := d.reg.RemoveAll(); err != nil {
			d.diag.Debug("closing sinks on remove all", zap.Error(err))
		}
		d.root = registry.None
		return nil
	}

	err := d.reg.Remove(h)
	if h == d.root {
		d.root = registry.None
	}
	return err
}

// EnableSink enables the sink named by h, or every sink for None
func (d *Dispatcher) EnableSink(h registry.Handle) error {
	return d.apply(h, func(s sink.Sink) error {
		s.Enable()
		return nil
	})
}

// DisableSink disables the sink named by h, or every sink for None
func (d *Dispatcher) DisableSink(h registry.Handle) error {
	return d.apply(h, func(s sink.Sink) error {
		s.Disable()
		return nil
	})
}

// FlushSink flushes the sink named by h, or every sink for None. Flush
// errors are only returned for a specific handle.
func (d *Dispatcher) FlushSink(h registry.Handle) error {
	return d.apply(h, sink.Sink.Flush)
}

// SetSinkLevel sets the minimum level of the sink named by h, or of every
// sink for None
func (d *Dispatcher) SetSinkLevel(h registry.Handle, level core.Level) error {
	return d.apply(h, func(s sink.Sink) error {
		s.SetLevel(level)
		return nil
	})
}

func (d *Dispatcher) apply(h registry.Handle, op func(sink.Sink) error) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	if h.IsNone() {
		d.reg.ForEach(func(_ registry.Handle, s sink.Sink) bool {
			if err := op(s); err != nil {
				d.diag.Debug("sink operation failed", zap.String("sink", s.Name()), zap.Error(err))
			}
			return true
		})
		return nil
	}

	s, ok := d.reg.Get(h)
	if !ok {
		return core.ErrInvalidHandle
	}
	return op(s)
}

// Sink returns the sink named by h
func (d *Dispatcher) Sink(h registry.Handle) (sink.Sink, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	defer d.release()

	s, ok := d.reg.Get(h)
	if !ok {
		return nil, core.ErrInvalidHandle
	}
	return s, nil
}

// ForEachSink calls fn for every registered sink in slot order while
// holding the guard. fn may call back into the dispatcher.
func (d *Dispatcher) ForEachSink(fn func(h registry.Handle, s sink.Sink) bool) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	d.reg.ForEach(fn)
	return nil
}

// SinkCount returns the number of registered sinks and the registry capacity
func (d *Dispatcher) SinkCount() (n, capacity int, err error) {
	if err := d.acquire(); err != nil {
		return 0, 0, err
	}
	defer d.release()

	return d.reg.Len(), d.reg.Cap(), nil
}

// SetRootSink designates h as the root sink. None clears the root.
func (d *Dispatcher) SetRootSink(h registry.Handle) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	if !h.IsNone() {
		if _, ok := d.reg.Resolve(h); !ok {
			return core.ErrInvalidHandle
		}
	}
	d.root = h
	return nil
}

// RootSink returns the root sink handle, if one is set and still live
func (d *Dispatcher) RootSink() (registry.Handle, bool) {
	if err := d.acquire(); err != nil {
		return registry.None, false
	}
	defer d.release()

	if _, ok := d.reg.Resolve(d.root); !ok {
		return registry.None, false
	}
	return d.root, true
}
