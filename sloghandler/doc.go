// Package sloghandler provides an adapter from a uLog dispatcher to
// log/slog.Handler, so code written against the standard library's
// structured logging can log through the registered sinks.
//
// Records are rendered as "message key=value ..." into a bounded buffer;
// output past core.MaxMessageLength is truncated.
package sloghandler
