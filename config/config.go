// Package config loads and validates uLog configuration via Viper and
// builds a dispatcher with the configured sinks.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink/asyncsink"
)

// Sink types understood by Build
const (
	TypeConsole    = "console"
	TypeFile       = "file"
	TypeSerial     = "serial"
	TypeProbe      = "probe"
	TypeZap        = "zap"
	TypePrometheus = "prometheus"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	// Root names the sink that receives LogRoot output
	Root  string       `mapstructure:"root"`
	Sinks []SinkConfig `mapstructure:"sinks"`
}

// DispatcherConfig tunes the dispatcher itself.
type DispatcherConfig struct {
	Level            string        `mapstructure:"level"`
	Capacity         int           `mapstructure:"capacity"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	MaxNesting       int           `mapstructure:"max_nesting"`
	ReportTruncation bool          `mapstructure:"report_truncation"`
}

// LoggingConfig toggles zap development features of the diagnostics logger.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SinkConfig describes one sink. Only the block matching Type is used.
type SinkConfig struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Level    string `mapstructure:"level"`
	Disabled bool   `mapstructure:"disabled"`

	// decoration, used by console, file and serial sinks
	Timestamp string `mapstructure:"timestamp"`
	LevelTag  bool   `mapstructure:"level_tag"`
	Newline   bool   `mapstructure:"newline"`

	Console    ConsoleConfig    `mapstructure:"console"`
	File       FileConfig       `mapstructure:"file"`
	Serial     SerialConfig     `mapstructure:"serial"`
	Probe      ProbeConfig      `mapstructure:"probe"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Async      AsyncConfig      `mapstructure:"async"`
}

// ConsoleConfig configures a console sink.
type ConsoleConfig struct {
	// Output is "stdout" or "stderr"
	Output string `mapstructure:"output"`
	// Color is "auto", "always" or "never"
	Color string `mapstructure:"color"`
}

// FileConfig configures a file sink.
type FileConfig struct {
	Path           string        `mapstructure:"path"`
	MaxSize        int64         `mapstructure:"max_size"`
	MaxBackups     int           `mapstructure:"max_backups"`
	RotateInterval time.Duration `mapstructure:"rotate_interval"`
}

// SerialConfig configures a serial sink.
type SerialConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
}

// ProbeConfig configures a probe sink reached over TCP.
type ProbeConfig struct {
	Address string `mapstructure:"address"`
	Channel uint8  `mapstructure:"channel"`
}

// PrometheusConfig configures a metrics sink.
type PrometheusConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// AsyncConfig wraps the sink in a queue when enabled.
type AsyncConfig struct {
	Enabled      bool              `mapstructure:"enabled"`
	BufferSize   int               `mapstructure:"buffer_size"`
	BlockTimeout time.Duration     `mapstructure:"block_timeout"`
	DrainTimeout time.Duration     `mapstructure:"drain_timeout"`
	Policy       map[string]string `mapstructure:"policy"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ULOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applySinkDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dispatcher.level", "trace")
	v.SetDefault("dispatcher.capacity", core.MaxSinks)
	v.SetDefault("dispatcher.lock_timeout", core.DefaultLockTimeout)
	v.SetDefault("dispatcher.max_nesting", core.MaxNestingDepth)
	v.SetDefault("dispatcher.report_truncation", false)
	v.SetDefault("logging.development", false)
}

// applySinkDefaults fills per-sink defaults Viper cannot express for list
// elements
func (c *Config) applySinkDefaults() {
	for i := range c.Sinks {
		s := &c.Sinks[i]
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		if s.Name == "" {
			s.Name = fmt.Sprintf("%s%d", s.Type, i)
		}
		if s.Level == "" {
			s.Level = "trace"
		}
		if s.Type == TypeConsole && s.Console.Output == "" {
			s.Console.Output = "stdout"
		}
		if s.Type == TypeConsole && s.Console.Color == "" {
			s.Console.Color = "auto"
		}
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if _, err := core.ParseLevel(c.Dispatcher.Level); err != nil {
		return fmt.Errorf("dispatcher.level: %w", err)
	}
	if c.Dispatcher.Capacity <= 0 || c.Dispatcher.Capacity > core.MaxSinks {
		return fmt.Errorf("dispatcher.capacity must be between 1 and %d", core.MaxSinks)
	}
	if c.Dispatcher.MaxNesting <= 0 || c.Dispatcher.MaxNesting > core.MaxNestingDepth {
		return fmt.Errorf("dispatcher.max_nesting must be between 1 and %d", core.MaxNestingDepth)
	}
	if len(c.Sinks) > c.Dispatcher.Capacity {
		return fmt.Errorf("%d sinks configured but capacity is %d", len(c.Sinks), c.Dispatcher.Capacity)
	}

	var errs []error
	names := make(map[string]bool, len(c.Sinks))
	for i, s := range c.Sinks {
		if names[s.Name] {
			errs = append(errs, fmt.Errorf("sinks[%d]: duplicate name %q", i, s.Name))
		}
		names[s.Name] = true
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sinks[%d] %q: %w", i, s.Name, err))
		}
	}
	if c.Root != "" && !names[c.Root] {
		errs = append(errs, fmt.Errorf("root sink %q is not configured", c.Root))
	}
	return errors.Join(errs...)
}

// Validate checks the settings of a single sink
func (s SinkConfig) Validate() error {
	if _, err := core.ParseLevel(s.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}

	switch s.Type {
	case TypeConsole:
		switch s.Console.Output {
		case "stdout", "stderr":
		default:
			return fmt.Errorf("console.output must be stdout or stderr, got %q", s.Console.Output)
		}
		switch s.Console.Color {
		case "auto", "always", "never":
		default:
			return fmt.Errorf("console.color must be auto, always or never, got %q", s.Console.Color)
		}
	case TypeFile:
		if s.File.Path == "" {
			return fmt.Errorf("file.path is required")
		}
		if s.File.MaxSize < 0 || s.File.MaxBackups < 0 {
			return fmt.Errorf("file rotation limits must be >= 0")
		}
	case TypeSerial:
		if s.Serial.Device == "" {
			return fmt.Errorf("serial.device is required")
		}
	case TypeProbe:
		if s.Probe.Address == "" {
			return fmt.Errorf("probe.address is required")
		}
	case TypeZap, TypePrometheus:
	default:
		return fmt.Errorf("unknown sink type %q", s.Type)
	}

	for level, policy := range s.Async.Policy {
		if _, err := core.ParseLevel(level); err != nil {
			return fmt.Errorf("async.policy: %w", err)
		}
		if _, err := asyncsink.ParsePolicy(policy); err != nil {
			return fmt.Errorf("async.policy: %w", err)
		}
	}
	if s.Async.BufferSize < 0 {
		return fmt.Errorf("async.buffer_size must be >= 0")
	}
	return nil
}
