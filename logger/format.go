package logger

import (
	"github.com/philipp01105/ulog/core"
)

// Flog formats a message into a bounded internal buffer and logs it.
// Output longer than core.MaxMessageLength is truncated and still logged;
// the truncation is only reported when the dispatcher was built with
// WithTruncationReport(true).
func (d *Dispatcher) Flog(level core.Level, format string, args ...interface{}) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	if level < core.Level(d.level.Load()) {
		d.filtered.Add(1)
		return core.ErrBelowThreshold
	}

	// A sink may call Flog from inside Log; each depth gets its own buffer
	// so the outer message is not overwritten mid fan-out.
	buf := &d.fmtBufs[d.guard.Depth()-1]
	buf.Reset()
	truncated := buf.Printf(format, args...)

	err := d.Log(level, buf.Bytes())
	if err == nil && truncated && d.reportTrunc {
		return core.ErrMessageTooLong
	}
	return err
}

// Tracef logs a formatted message at TraceLevel
func (d *Dispatcher) Tracef(format string, args ...interface{}) error {
	return d.Flog(core.TraceLevel, format, args...)
}

// Debugf logs a formatted message at DebugLevel
func (d *Dispatcher) Debugf(format string, args ...interface{}) error {
	return d.Flog(core.DebugLevel, format, args...)
}

// Infof logs a formatted message at InfoLevel
func (d *Dispatcher) Infof(format string, args ...interface{}) error {
	return d.Flog(core.InfoLevel, format, args...)
}

// Warnf logs a formatted message at WarnLevel
func (d *Dispatcher) Warnf(format string, args ...interface{}) error {
	return d.Flog(core.WarnLevel, format, args...)
}

// Errorf logs a formatted message at ErrorLevel
func (d *Dispatcher) Errorf(format string, args ...interface{}) error {
	return d.Flog(core.ErrorLevel, format, args...)
}

// Fatalf logs a formatted message at FatalLevel. The process keeps running.
func (d *Dispatcher) Fatalf(format string, args ...interface{}) error {
	return d.Flog(core.FatalLevel, format, args...)
}
