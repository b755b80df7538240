package config

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/formatter"
	"github.com/philipp01105/ulog/logger"
	"github.com/philipp01105/ulog/registry"
	"github.com/philipp01105/ulog/sink"
	"github.com/philipp01105/ulog/sink/asyncsink"
	"github.com/philipp01105/ulog/sink/consolesink"
	"github.com/philipp01105/ulog/sink/filesink"
	"github.com/philipp01105/ulog/sink/probesink"
	"github.com/philipp01105/ulog/sink/promsink"
	"github.com/philipp01105/ulog/sink/serialsink"
	"github.com/philipp01105/ulog/sink/zapsink"
)

// BuildOptions carries process resources sinks may bind to.
type BuildOptions struct {
	// Diagnostics receives dispatcher diagnostics and zap sink output
	// (default: zap.NewNop())
	Diagnostics *zap.Logger
	// Registerer receives prometheus sink collectors
	// (default: prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer
	// Stdout and Stderr back console sinks (default: os.Stdout, os.Stderr)
	Stdout io.Writer
	Stderr io.Writer
	// DialTimeout bounds connecting probe sinks (default: 2s)
	DialTimeout time.Duration
}

func (o *BuildOptions) applyDefaults() {
	if o.Diagnostics == nil {
		o.Diagnostics = zap.NewNop()
	}
	if o.Registerer == nil {
		o.Registerer = prometheus.DefaultRegisterer
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 2 * time.Second
	}
}

// Registered describes a sink installed by Build.
type Registered struct {
	Name   string
	Type   string
	Async  bool
	Handle registry.Handle
	Sink   sink.Sink
}

// Build creates a dispatcher and registers every configured sink in order.
// On failure every sink registered so far is removed again.
func Build(cfg Config, opts BuildOptions) (*logger.Dispatcher, []Registered, error) {
	opts.applyDefaults()

	level, err := core.ParseLevel(cfg.Dispatcher.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("dispatcher.level: %w", err)
	}
	d := logger.NewBuilder().
		WithCapacity(cfg.Dispatcher.Capacity).
		WithLockTimeout(cfg.Dispatcher.LockTimeout).
		WithLevel(level).
		WithMaxNesting(cfg.Dispatcher.MaxNesting).
		WithTruncationReport(cfg.Dispatcher.ReportTruncation).
		WithDiagnostics(opts.Diagnostics).
		Build()

	fail := func(err error) (*logger.Dispatcher, []Registered, error) {
		if shutdownErr := d.Shutdown(); shutdownErr != nil {
			opts.Diagnostics.Warn("closing sinks after failed build", zap.Error(shutdownErr))
		}
		return nil, nil, err
	}

	registered := make([]Registered, 0, len(cfg.Sinks))
	for _, sc := range cfg.Sinks {
		inner, err := newSink(sc, opts)
		if err != nil {
			return fail(fmt.Errorf("sink %q: %w", sc.Name, err))
		}
		s := inner
		if sc.Async.Enabled {
			if s, err = wrapAsync(inner, sc.Async); err != nil {
				closeUnregistered(inner, opts.Diagnostics)
				return fail(fmt.Errorf("sink %q: %w", sc.Name, err))
			}
		}

		h, err := d.RegisterSink(s)
		if err != nil {
			// an unregistered async wrapper never started, so close what it wraps
			closeUnregistered(inner, opts.Diagnostics)
			return fail(fmt.Errorf("register sink %q: %w", sc.Name, err))
		}
		registered = append(registered, Registered{
			Name:   sc.Name,
			Type:   sc.Type,
			Async:  sc.Async.Enabled,
			Handle: h,
			Sink:   s,
		})
		opts.Diagnostics.Debug("sink registered",
			zap.String("sink", sc.Name),
			zap.String("type", sc.Type),
			zap.Stringer("handle", h),
		)

		if sc.Name == cfg.Root {
			if err := d.SetRootSink(h); err != nil {
				return fail(fmt.Errorf("root sink %q: %w", sc.Name, err))
			}
		}
	}

	return d, registered, nil
}

// closeUnregistered releases resources a sink acquired before it reached the
// dispatcher, such as a probe connection
func closeUnregistered(s sink.Sink, diag *zap.Logger) {
	if err := s.Close(); err != nil {
		diag.Warn("closing unregistered sink", zap.String("sink", s.Name()), zap.Error(err))
	}
}

func newSink(sc SinkConfig, opts BuildOptions) (sink.Sink, error) {
	level, err := core.ParseLevel(sc.Level)
	if err != nil {
		return nil, err
	}
	common := sink.Options{Name: sc.Name, Level: level, Disabled: sc.Disabled}
	format := formatter.Config{
		TimestampFormat: sc.Timestamp,
		LevelTag:        sc.LevelTag,
		Newline:         sc.Newline,
	}

	switch sc.Type {
	case TypeConsole:
		w := opts.Stdout
		if sc.Console.Output == "stderr" {
			w = opts.Stderr
		}
		return consolesink.New(consolesink.Config{
			Options: common,
			Writer:  w,
			Format:  format,
			Color:   colorMode(sc.Console.Color),
		}), nil

	case TypeFile:
		return filesink.New(filesink.Config{
			Options:        common,
			Filename:       sc.File.Path,
			Format:         format,
			MaxSize:        sc.File.MaxSize,
			MaxBackups:     sc.File.MaxBackups,
			RotateInterval: sc.File.RotateInterval,
		})

	case TypeSerial:
		return serialsink.New(serialsink.Config{
			Options: common,
			Device:  sc.Serial.Device,
			Baud:    sc.Serial.Baud,
			Format:  format,
		})

	case TypeProbe:
		conn, err := net.DialTimeout("tcp", sc.Probe.Address, opts.DialTimeout)
		if err != nil {
			return nil, fmt.Errorf("connect probe: %w", err)
		}
		return probesink.New(probesink.Config{
			Options: common,
			Probe:   probesink.WriterChannel{W: conn},
			Channel: sc.Probe.Channel,
		}), nil

	case TypeZap:
		return zapsink.New(zapsink.Config{
			Options: common,
			Logger:  opts.Diagnostics.Named(sc.Name),
		}), nil

	case TypePrometheus:
		return promsink.New(promsink.Config{
			Options:    common,
			Registerer: opts.Registerer,
			Namespace:  sc.Prometheus.Namespace,
		}), nil
	}
	return nil, fmt.Errorf("unknown sink type %q", sc.Type)
}

func colorMode(s string) consolesink.ColorMode {
	switch s {
	case "always":
		return consolesink.ColorAlways
	case "auto":
		return consolesink.ColorAuto
	default:
		return consolesink.ColorNever
	}
}

func wrapAsync(s sink.Sink, ac AsyncConfig) (sink.Sink, error) {
	var policy map[core.Level]asyncsink.OverflowPolicy
	if len(ac.Policy) > 0 {
		policy = asyncsink.DefaultLevelPolicy()
		for name, p := range ac.Policy {
			level, err := core.ParseLevel(name)
			if err != nil {
				return nil, err
			}
			if policy[level], err = asyncsink.ParsePolicy(p); err != nil {
				return nil, err
			}
		}
	}
	return asyncsink.New(asyncsink.Config{
		Sink:           s,
		BufferSize:     ac.BufferSize,
		OverflowPolicy: policy,
		BlockTimeout:   ac.BlockTimeout,
		DrainTimeout:   ac.DrainTimeout,
	})
}
