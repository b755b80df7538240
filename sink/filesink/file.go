package filesink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/formatter"
	"github.com/philipp01105/ulog/sink"
)

const backupTimeFormat = "2006-01-02T15-04-05.000000000"

// Config holds configuration for the file sink
type Config struct {
	sink.Options
	// Filename is the path to the log file
	Filename string
	// Format decorates each message (default: messages are written as is)
	Format formatter.Config
	// BufferSize is the size of the write buffer (default: 4096)
	BufferSize int
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxBackups is the maximum number of old log files to retain (0 = keep all)
	MaxBackups int
	// RotateInterval is the interval for time-based rotation (0 = no interval rotation)
	RotateInterval time.Duration
}

// Sink appends messages to a file
type Sink struct {
	sink.Base
	cfg    Config
	format *formatter.TextFormatter
	stats  *sink.Stats

	mu             sync.Mutex
	file           *os.File
	w              *bufio.Writer
	buf            bytes.Buffer
	currentSize    int64
	lastRotateTime time.Time
}

// New creates a file sink. The file is not touched until Open.
func New(cfg Config) (*Sink, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", core.ErrFail)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}
	s := &Sink{
		cfg:    cfg,
		format: formatter.NewTextFormatter(cfg.Format),
		stats:  sink.NewStats(),
	}
	cfg.Options.Apply(s)
	return s, nil
}

// Filename returns the path of the active log file
func (s *Sink) Filename() string {
	return s.cfg.Filename
}

// Open creates the parent directory and opens the file for appending
func (s *Sink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.Filename), 0755); err != nil {
		return err
	}
	return s.openFile()
}

func (s *Sink) openFile() error {
	file, err := os.OpenFile(s.cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		return errors.Join(err, file.Close())
	}

	s.file = file
	if s.w == nil {
		s.w = bufio.NewWriterSize(file, s.cfg.BufferSize)
	} else {
		s.w.Reset(file)
	}
	s.currentSize = info.Size()
	s.lastRotateTime = time.Now()
	return nil
}

// Close flushes, syncs and closes the file
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.syncLocked()
	err = errors.Join(err, s.file.Close())
	s.file = nil
	return err
}

// Flush writes buffered data to the file and syncs it
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return core.ErrClosed
	}
	return s.syncLocked()
}

func (s *Sink) syncLocked() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

// Log appends msg to the file, rotating first when a limit is reached
func (s *Sink) Log(level core.Level, msg []byte) error {
	if err := s.Admit(level, msg); err != nil {
		s.stats.Record(err)
		return err
	}

	s.mu.Lock()
	err := s.writeLocked(level, msg)
	s.mu.Unlock()

	s.stats.Record(err)
	return err
}

func (s *Sink) writeLocked(level core.Level, msg []byte) error {
	if s.file == nil {
		return core.ErrClosed
	}
	if err := s.rotateIfNeeded(); err != nil {
		return err
	}

	out := msg
	if !s.format.Plain() {
		s.buf.Reset()
		s.format.FormatTo(&s.buf, level, msg)
		out = s.buf.Bytes()
	}
	n, err := s.w.Write(out)
	s.currentSize += int64(n)
	return err
}

func (s *Sink) rotateIfNeeded() error {
	switch {
	case s.cfg.MaxSize > 0 && s.currentSize >= s.cfg.MaxSize:
	case s.cfg.RotateInterval > 0 && time.Since(s.lastRotateTime) >= s.cfg.RotateInterval:
	default:
		return nil
	}
	return s.rotate()
}

// rotate renames the current file to a timestamped backup and reopens
func (s *Sink) rotate() error {
	if err := s.syncLocked(); err != nil {
		return err
	}
	if err := s.file.Close(); err != nil {
		return err
	}

	rotated := s.cfg.Filename + "." + time.Now().Format(backupTimeFormat)
	if err := os.Rename(s.cfg.Filename, rotated); err != nil {
		if openErr := s.openFile(); openErr != nil {
			s.file = nil
			return fmt.Errorf("rotation failed: %v, reopen failed: %w", err, openErr)
		}
		return err
	}

	if s.cfg.MaxBackups > 0 {
		s.cleanupOldBackups()
	}
	if err := s.openFile(); err != nil {
		s.file = nil
		return err
	}
	s.currentSize = 0
	return nil
}

// Backups returns the rotated backup files, oldest first
func (s *Sink) Backups() ([]string, error) {
	base := filepath.Base(s.cfg.Filename)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(s.cfg.Filename), base+".*"))
	if err != nil {
		return nil, err
	}

	var backups []string
	for _, m := range matches {
		if _, err := time.Parse(backupTimeFormat, strings.TrimPrefix(filepath.Base(m), base+".")); err == nil {
			backups = append(backups, m)
		}
	}
	// the timestamp layout sorts lexically
	sort.Strings(backups)
	return backups, nil
}

// cleanupOldBackups removes old backup files based on MaxBackups
func (s *Sink) cleanupOldBackups() {
	backups, err := s.Backups()
	if err != nil || len(backups) <= s.cfg.MaxBackups {
		return
	}
	for _, f := range backups[:len(backups)-s.cfg.MaxBackups] {
		if err := os.Remove(f); err != nil {
			return
		}
	}
}

// IOType reports sink.FileIO
func (s *Sink) IOType() sink.IOType {
	return sink.FileIO
}

// Stats returns a snapshot of the current statistics
func (s *Sink) Stats() sink.Snapshot {
	return s.stats.GetSnapshot()
}
