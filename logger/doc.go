// Package logger is the public API of uLog. It owns the sink registry,
// the global level and the root sink, and fans every message out to the
// registered sinks.
//
// A Dispatcher holds up to core.MaxSinks sinks. Registry changes and
// dispatch are serialized by a re-entrant guard with a bounded wait, so a
// sink may log from inside its own Log without deadlocking, and a caller
// that cannot take the guard in time gets core.ErrLocked instead of
// blocking:
//
//	d := logger.NewBuilder().
//	    WithLevel(logger.InfoLevel).
//	    WithLockTimeout(5 * time.Millisecond).
//	    Build()
//
//	h, err := d.RegisterSink(consolesink.New(consolesink.Config{}))
//	d.Infof("boot %d", 1)
//	d.RemoveSink(h)
//
// Messages are byte slices and are never copied by the dispatcher. The
// formatted variants render into a fixed buffer; longer output is
// truncated to core.MaxMessageLength.
//
// The package initializes a default Dispatcher with no sinks in init().
// The package-level functions delegate to it.
package logger
