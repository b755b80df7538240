package serialsink

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, core.ErrFail) {
		t.Errorf("New() without device = %v, want ErrFail", err)
	}
	if _, err := New(Config{Device: "/dev/null", Baud: -5}); !errors.Is(err, core.ErrFail) {
		t.Errorf("New() with bad baud = %v, want ErrFail", err)
	}

	s, err := New(Config{Device: "/dev/ttyS0"})
	if err != nil {
		t.Fatal(err)
	}
	if s.cfg.Baud != DefaultBaud {
		t.Errorf("Baud = %d, want %d", s.cfg.Baud, DefaultBaud)
	}
	if s.IOType() != sink.SerialIO {
		t.Errorf("IOType() = %v", s.IOType())
	}
}

func TestSink_OpenMissingDevice(t *testing.T) {
	s, err := New(Config{Device: filepath.Join(t.TempDir(), "missing")})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Open(); err == nil {
		t.Error("Open() on missing device should fail")
	}
	if err := s.Log(core.InfoLevel, []byte("x")); !errors.Is(err, core.ErrClosed) {
		t.Errorf("Log() = %v, want ErrClosed", err)
	}
}
