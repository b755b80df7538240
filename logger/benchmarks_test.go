package logger

import (
	"testing"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/sink"
)

type discardSink struct {
	sink.Base
}

func (*discardSink) Open() error         { return nil }
func (*discardSink) Close() error        { return nil }
func (*discardSink) Flush() error        { return nil }
func (*discardSink) IOType() sink.IOType { return sink.UnknownIO }

func (s *discardSink) Log(level core.Level, msg []byte) error {
	return s.Admit(level, msg)
}

func newBenchDispatcher(b *testing.B, sinks int) *Dispatcher {
	d := NewBuilder().WithLevel(InfoLevel).Build()
	for i := 0; i < sinks; i++ {
		if _, err := d.RegisterSink(&discardSink{}); err != nil {
			b.Fatal(err)
		}
	}
	return d
}

// BenchmarkInfo benchmarks Info() fanning out to one sink.
// Target: 0 allocs/op
func BenchmarkInfo(b *testing.B) {
	d := newBenchDispatcher(b, 1)
	msg := []byte("test message")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = d.Info(msg)
	}
}

// BenchmarkInfoAllSinks benchmarks Info() with a full registry
func BenchmarkInfoAllSinks(b *testing.B) {
	d := newBenchDispatcher(b, core.MaxSinks)
	msg := []byte("test message")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = d.Info(msg)
	}
}

// BenchmarkFilteredDebug benchmarks a message rejected by the global level
func BenchmarkFilteredDebug(b *testing.B) {
	d := newBenchDispatcher(b, 1)
	msg := []byte("test message")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = d.Debug(msg)
	}
}

// BenchmarkInfof benchmarks formatted logging into the internal buffer
func BenchmarkInfof(b *testing.B) {
	d := newBenchDispatcher(b, 1)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = d.Infof("request %d took %dms", i, 42)
	}
}

// BenchmarkInfoParallel benchmarks contended dispatch
func BenchmarkInfoParallel(b *testing.B) {
	d := NewBuilder().WithLockTimeout(-1).Build()
	if _, err := d.RegisterSink(&discardSink{}); err != nil {
		b.Fatal(err)
	}
	msg := []byte("test message")

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = d.Info(msg)
		}
	})
}
