package promsink

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink"
)

// Config holds configuration for the metrics sink
type Config struct {
	sink.Options
	// Registerer receives the collectors (default: prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer
	// Namespace prefixes metric names (default: "ulog")
	Namespace string
}

// Sink counts messages and bytes per level
type Sink struct {
	sink.Base
	reg prometheus.Registerer

	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	sizes    prometheus.Histogram

	// pre-resolved children, indexed by level
	msgByLevel  [core.LevelCount]prometheus.Counter
	byteByLevel [core.LevelCount]prometheus.Counter
}

// New creates a metrics sink. The sink name is attached to every series
// as the "sink" label.
func New(cfg Config) *Sink {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "ulog"
	}
	constLabels := prometheus.Labels{"sink": cfg.Name}

	s := &Sink{
		reg: cfg.Registerer,
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "messages_total",
			Help:        "Log messages accepted, partitioned by level.",
			ConstLabels: constLabels,
		}, []string{"level"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "message_bytes_total",
			Help:        "Log message payload bytes, partitioned by level.",
			ConstLabels: constLabels,
		}, []string{"level"}),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "message_size_bytes",
			Help:        "Distribution of log message sizes.",
			ConstLabels: constLabels,
			Buckets:     []float64{16, 32, 64, 128, 192, core.MaxMessageLength},
		}),
	}
	for l := core.MinLevel; l <= core.MaxLevel; l++ {
		s.msgByLevel[l] = s.messages.WithLabelValues(l.String())
		s.byteByLevel[l] = s.bytes.WithLabelValues(l.String())
	}
	cfg.Options.Apply(s)
	return s
}

func (s *Sink) collectors() []prometheus.Collector {
	return []prometheus.Collector{s.messages, s.bytes, s.sizes}
}

// Open registers the collectors
func (s *Sink) Open() error {
	for i, c := range s.collectors() {
		if err := s.reg.Register(c); err != nil {
			for _, done := range s.collectors()[:i] {
				s.reg.Unregister(done)
			}
			return fmt.Errorf("register log collector: %w", err)
		}
	}
	return nil
}

// Close unregisters the collectors
func (s *Sink) Close() error {
	for _, c := range s.collectors() {
		s.reg.Unregister(c)
	}
	return nil
}

// Flush is a no-op
func (s *Sink) Flush() error {
	return nil
}

// Log counts msg
func (s *Sink) Log(level core.Level, msg []byte) error {
	if err := s.Admit(level, msg); err != nil {
		return err
	}
	if !level.Valid() {
		return core.ErrInvalidLevel
	}
	s.msgByLevel[level].Inc()
	s.byteByLevel[level].Add(float64(len(msg)))
	s.sizes.Observe(float64(len(msg)))
	return nil
}

// IOType reports sink.MetricsIO
func (s *Sink) IOType() sink.IOType {
	return sink.MetricsIO
}
