package sink

import (
	"sync/atomic"

	"github.com/philipp01105/ulog/core"
)

// Base implements the state accessors of Sink. Embed it in concrete sinks
// and call Admit at the top of Log.
type Base struct {
	disabled atomic.Bool
	level    atomic.Int32
	name     atomic.Pointer[string]
}

// Enable allows the sink to log
func (b *Base) Enable() {
	b.disabled.Store(false)
}

// Disable stops the sink from logging
func (b *Base) Disable() {
	b.disabled.Store(true)
}

// Enabled reports whether the sink may log
func (b *Base) Enabled() bool {
	return !b.disabled.Load()
}

// SetLevel sets the minimum level the sink logs
func (b *Base) SetLevel(level core.Level) {
	b.level.Store(int32(level))
}

// Level returns the minimum level the sink logs
func (b *Base) Level() core.Level {
	return core.Level(b.level.Load())
}

// SetName assigns an advisory name, used for message prefixes
func (b *Base) SetName(name string) {
	b.name.Store(&name)
}

// Name returns the sink name
func (b *Base) Name() string {
	if p := b.name.Load(); p != nil {
		return *p
	}
	return ""
}

// Admit applies the sink-side gates to a message
func (b *Base) Admit(level core.Level, msg []byte) error {
	switch {
	case len(msg) == 0:
		return core.ErrBadMessage
	case b.disabled.Load():
		return core.ErrDisabled
	case level < b.Level():
		return core.ErrBelowThreshold
	}
	return nil
}

// Options are the common settings accepted by every concrete sink config
type Options struct {
	// Name assigned to the sink
	Name string
	// Level is the minimum level the sink logs (default: TraceLevel)
	Level core.Level
	// Disabled creates the sink in the disabled state
	Disabled bool
}

// Apply copies the options onto a sink
func (o Options) Apply(s Sink) {
	s.SetName(o.Name)
	s.SetLevel(o.Level)
	if o.Disabled {
		s.Disable()
	} else {
		s.Enable()
	}
}
