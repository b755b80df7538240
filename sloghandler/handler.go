package sloghandler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/formatter"
)

// Logger is the part of a dispatcher the handler writes to
type Logger interface {
	Log(level core.Level, msg []byte) error
}

// Handler implements slog.Handler on top of a Logger
type Handler struct {
	out   Logger
	level core.Level
	attrs string // pre-rendered WithAttrs output, leading space included
	group string
}

// New creates a slog.Handler writing to out. Records below level are not
// handled.
func New(out Logger, level core.Level) *Handler {
	return &Handler{
		out:   out,
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return LevelFromSlog(level) >= h.level
}

// Handle renders the record and logs it. Messages dropped by the global
// level are not reported as errors.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	var buf formatter.Buffer
	buf.WriteString(record.Message)
	buf.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, h.group, a)
		return true
	})

	err := h.out.Log(LevelFromSlog(record.Level), buf.Bytes())
	if errors.Is(err, core.ErrBelowThreshold) {
		return nil
	}
	return err
}

// WithAttrs returns a new Handler with additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&sb, h.group, a)
	}
	return &Handler{
		out:   h.out,
		level: h.level,
		attrs: sb.String(),
		group: h.group,
	}
}

// WithGroup returns a new Handler with the given group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		out:   h.out,
		level: h.level,
		attrs: h.attrs,
		group: joinKey(h.group, name),
	}
}

// LevelFromSlog converts a slog.Level to a core.Level. Levels under
// slog.LevelDebug map to TraceLevel.
func LevelFromSlog(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	case level >= slog.LevelDebug:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}

type stringWriter interface {
	WriteString(s string) (int, error)
}

// appendAttr writes " key=value", flattening groups into dotted keys
func appendAttr(w stringWriter, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		// an empty key inlines the group members
		prefix := group
		if a.Key != "" {
			prefix = joinKey(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(w, prefix, ga)
		}
		return
	}

	w.WriteString(" ")
	w.WriteString(joinKey(group, a.Key))
	w.WriteString("=")
	w.WriteString(valueString(a.Value))
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if needsQuoting(s) {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return v.String()
	}
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " =\"\t\n")
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
