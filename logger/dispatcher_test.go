package logger

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/registry"
	"github.com/philipp01105/ulog/sink"
)

// spy records every Log call and every admitted message
type spy struct {
	sink.Base

	mu       sync.Mutex
	calls    int
	msgs     [][]byte
	levels   []core.Level
	opened   int
	closed   int
	flushed  int
	openErr  error
	closeErr error
	logErr   error
	panicMsg string
	onLog    func(level core.Level, msg []byte)
}

func newSpy(name string, level core.Level) *spy {
	s := &spy{}
	s.SetName(name)
	s.SetLevel(level)
	return s
}

func (s *spy) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return s.openErr
}

func (s *spy) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return s.closeErr
}

func (s *spy) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed++
	return nil
}

func (s *spy) IOType() sink.IOType { return sink.UnknownIO }

func (s *spy) Log(level core.Level, msg []byte) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if err := s.Admit(level, msg); err != nil {
		return err
	}

	s.mu.Lock()
	s.msgs = append(s.msgs, append([]byte(nil), msg...))
	s.levels = append(s.levels, level)
	s.mu.Unlock()

	if s.onLog != nil {
		s.onLog(level, msg)
	}
	return s.logErr
}

func (s *spy) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *spy) admitted() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.msgs...)
}

func (s *spy) strings() []string {
	var out []string
	for _, m := range s.admitted() {
		out = append(out, string(m))
	}
	return out
}

func newTestDispatcher(opts ...func(*Builder)) *Dispatcher {
	b := NewBuilder().WithLockTimeout(-1)
	for _, o := range opts {
		o(b)
	}
	return b.Build()
}

func mustRegister(t *testing.T, d *Dispatcher, s sink.Sink) registry.Handle {
	t.Helper()
	h, err := d.RegisterSink(s)
	require.NoError(t, err)
	return h
}

func TestDispatcher_GlobalFilter(t *testing.T) {
	d := newTestDispatcher(func(b *Builder) { b.WithLevel(InfoLevel) })
	s := newSpy("s", TraceLevel)
	mustRegister(t, d, s)

	err := d.Debug([]byte("hidden"))
	assert.ErrorIs(t, err, core.ErrBelowThreshold)
	assert.Equal(t, 0, s.callCount())

	require.NoError(t, d.Info([]byte("shown")))
	assert.Equal(t, []string{"shown"}, s.strings())
	assert.Equal(t, uint64(1), d.Stats().Filtered)
	assert.Equal(t, uint64(1), d.Stats().Dispatched)
}

func TestDispatcher_ExactBytes(t *testing.T) {
	d := newTestDispatcher()
	a := newSpy("a", TraceLevel)
	b := newSpy("b", TraceLevel)
	mustRegister(t, d, a)
	mustRegister(t, d, b)

	msg := []byte("raw\x00bytes\nwithout decoration")
	require.NoError(t, d.Warn(msg))

	require.Len(t, a.admitted(), 1)
	require.Len(t, b.admitted(), 1)
	assert.True(t, bytes.Equal(msg, a.admitted()[0]))
	assert.True(t, bytes.Equal(msg, b.admitted()[0]))
	assert.Equal(t, []core.Level{WarnLevel}, a.levels)
}

func TestDispatcher_SinkLevelGate(t *testing.T) {
	// A=Info, B=Error, global=Debug: a Warn reaches both, only A admits it
	d := newTestDispatcher(func(b *Builder) { b.WithLevel(DebugLevel) })
	a := newSpy("a", InfoLevel)
	b := newSpy("b", ErrorLevel)
	mustRegister(t, d, a)
	mustRegister(t, d, b)

	require.NoError(t, d.Warn([]byte("w")))

	assert.Equal(t, 1, a.callCount())
	assert.Equal(t, 1, b.callCount())
	assert.Len(t, a.admitted(), 1)
	assert.Len(t, b.admitted(), 0)
	assert.Equal(t, uint64(0), d.Stats().SinkFailures, "gate refusals are not failures")
}

func TestDispatcher_SinkBelowGlobalSkipped(t *testing.T) {
	// A sink whose own level is under the global floor does not take part
	// in dispatch, even for messages it would admit.
	d := newTestDispatcher(func(b *Builder) { b.WithLevel(WarnLevel) })
	low := newSpy("low", DebugLevel)
	high := newSpy("high", ErrorLevel)
	mustRegister(t, d, low)
	mustRegister(t, d, high)

	require.NoError(t, d.Error([]byte("e")))
	assert.Equal(t, 0, low.callCount())
	assert.Equal(t, 1, high.callCount())
}

func TestDispatcher_DisabledSinkSkipped(t *testing.T) {
	d := newTestDispatcher()
	s := newSpy("s", TraceLevel)
	h := mustRegister(t, d, s)

	require.NoError(t, d.DisableSink(h))
	require.NoError(t, d.Info([]byte("x")))
	assert.Equal(t, 0, s.callCount())

	require.NoError(t, d.EnableSink(h))
	require.NoError(t, d.Info([]byte("y")))
	assert.Equal(t, []string{"y"}, s.strings())
}

func TestDispatcher_EmptyMessage(t *testing.T) {
	d := newTestDispatcher()
	s := newSpy("s", TraceLevel)
	mustRegister(t, d, s)

	assert.ErrorIs(t, d.Info(nil), core.ErrBadMessage)
	assert.ErrorIs(t, d.Info([]byte{}), core.ErrBadMessage)
	assert.ErrorIs(t, d.Info([]byte{}), core.ErrFail)
	assert.Equal(t, 0, s.callCount())
	assert.Equal(t, core.ResultFail, core.ResultOf(d.Info(nil)))
}

func TestDispatcher_Capacity(t *testing.T) {
	d := newTestDispatcher()
	sinks := make([]*spy, core.MaxSinks)
	handles := make([]registry.Handle, core.MaxSinks)
	for i := range sinks {
		sinks[i] = newSpy(fmt.Sprintf("s%d", i), TraceLevel)
		handles[i] = mustRegister(t, d, sinks[i])
	}

	_, err := d.RegisterSink(newSpy("extra", TraceLevel))
	assert.ErrorIs(t, err, core.ErrFull)
	assert.Equal(t, core.ResultFull, core.ResultOf(err))

	// re-registering a present sink returns its handle and does not reopen it
	h, err := d.RegisterSink(sinks[3])
	require.NoError(t, err)
	assert.Equal(t, handles[3], h)
	assert.Equal(t, 1, sinks[3].opened)

	n, capacity, err := d.SinkCount()
	require.NoError(t, err)
	assert.Equal(t, core.MaxSinks, n)
	assert.Equal(t, core.MaxSinks, capacity)
}

func TestDispatcher_BuilderCapacity(t *testing.T) {
	d := newTestDispatcher(func(b *Builder) { b.WithCapacity(2) })
	mustRegister(t, d, newSpy("a", TraceLevel))
	mustRegister(t, d, newSpy("b", TraceLevel))
	_, err := d.RegisterSink(newSpy("c", TraceLevel))
	assert.ErrorIs(t, err, core.ErrFull)
}

func TestDispatcher_OpenFailure(t *testing.T) {
	d := newTestDispatcher()
	s := newSpy("broken", TraceLevel)
	s.openErr = errors.New("no device")

	h, err := d.RegisterSink(s)
	require.Error(t, err)
	assert.True(t, h.IsNone())
	assert.Contains(t, err.Error(), "no device")

	n, _, err := d.SinkCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDispatcher_SlotOrderAfterReRegister(t *testing.T) {
	d := newTestDispatcher()
	var order []string
	mk := func(name string) *spy {
		s := newSpy(name, TraceLevel)
		s.onLog = func(core.Level, []byte) { order = append(order, name) }
		return s
	}
	a, b, c := mk("a"), mk("b"), mk("c")
	mustRegister(t, d, a)
	hb := mustRegister(t, d, b)
	mustRegister(t, d, c)

	require.NoError(t, d.RemoveSink(hb))
	assert.Equal(t, 1, b.closed)
	mustRegister(t, d, mk("d"))

	require.NoError(t, d.Info([]byte("m")))
	assert.Equal(t, []string{"a", "d", "c"}, order)
}

func TestDispatcher_StaleHandle(t *testing.T) {
	d := newTestDispatcher()
	s := newSpy("s", TraceLevel)
	h := mustRegister(t, d, s)
	require.NoError(t, d.RemoveSink(h))

	// the slot is reused but the old handle stays dead
	h2 := mustRegister(t, d, newSpy("t", TraceLevel))
	assert.NotEqual(t, h, h2)

	assert.ErrorIs(t, d.RemoveSink(h), core.ErrInvalidHandle)
	assert.ErrorIs(t, d.EnableSink(h), core.ErrInvalidHandle)
	assert.ErrorIs(t, d.DisableSink(h), core.ErrInvalidHandle)
	assert.ErrorIs(t, d.FlushSink(h), core.ErrInvalidHandle)
	assert.ErrorIs(t, d.SetSinkLevel(h, InfoLevel), core.ErrInvalidHandle)
	assert.ErrorIs(t, d.SetRootSink(h), core.ErrInvalidHandle)
	_, err := d.Sink(h)
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	assert.Equal(t, 1, s.closed)
}

func TestDispatcher_RemoveCloseError(t *testing.T) {
	d := newTestDispatcher()
	s := newSpy("s", TraceLevel)
	s.closeErr = errors.New("stuck")
	h := mustRegister(t, d, s)

	err := d.RemoveSink(h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stuck")

	n, _, _ := d.SinkCount()
	assert.Equal(t, 0, n, "slot is freed even when Close fails")
}

func TestDispatcher_RemoveAll(t *testing.T) {
	d := newTestDispatcher()
	a := newSpy("a", TraceLevel)
	b := newSpy("b", TraceLevel)
	b.closeErr = errors.New("ignored")
	mustRegister(t, d, a)
	hb := mustRegister(t, d, b)
	require.NoError(t, d.SetRootSink(hb))

	require.NoError(t, d.RemoveSink(None))
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)

	_, ok := d.RootSink()
	assert.False(t, ok)
	n, _, _ := d.SinkCount()
	assert.Equal(t, 0, n)
}

func TestDispatcher_WildcardOperations(t *testing.T) {
	d := newTestDispatcher()
	a := newSpy("a", TraceLevel)
	b := newSpy("b", TraceLevel)
	mustRegister(t, d, a)
	mustRegister(t, d, b)

	require.NoError(t, d.SetSinkLevel(None, ErrorLevel))
	assert.Equal(t, ErrorLevel, a.Level())
	assert.Equal(t, ErrorLevel, b.Level())

	require.NoError(t, d.DisableSink(None))
	assert.False(t, a.Enabled())
	assert.False(t, b.Enabled())

	require.NoError(t, d.EnableSink(None))
	assert.True(t, a.Enabled())
	assert.True(t, b.Enabled())

	require.NoError(t, d.FlushSink(None))
	assert.Equal(t, 1, a.flushed)
	assert.Equal(t, 1, b.flushed)
}

func TestDispatcher_RootSink(t *testing.T) {
	d := newTestDispatcher()
	a := newSpy("a", TraceLevel)
	root := newSpy("root", TraceLevel)
	mustRegister(t, d, a)
	hr := mustRegister(t, d, root)

	_, ok := d.RootSink()
	assert.False(t, ok)
	assert.ErrorIs(t, d.LogRoot(InfoLevel, []byte("x")), core.ErrInvalidHandle)

	require.NoError(t, d.SetRootSink(hr))
	got, ok := d.RootSink()
	require.True(t, ok)
	assert.Equal(t, hr, got)

	require.NoError(t, d.LogRoot(InfoLevel, []byte("only root")))
	assert.Equal(t, []string{"only root"}, root.strings())
	assert.Empty(t, a.admitted())

	require.NoError(t, d.RemoveSink(hr))
	_, ok = d.RootSink()
	assert.False(t, ok)

	require.NoError(t, d.SetRootSink(None))
}

func TestDispatcher_PanickingSink(t *testing.T) {
	d := newTestDispatcher()
	bad := newSpy("bad", TraceLevel)
	bad.panicMsg = "boom"
	good := newSpy("good", TraceLevel)
	mustRegister(t, d, bad)
	mustRegister(t, d, good)

	require.NoError(t, d.Info([]byte("survives")))
	assert.Equal(t, []string{"survives"}, good.strings())
	assert.Equal(t, uint64(1), d.Stats().SinkFailures)

	// the guard was released on the way out
	require.NoError(t, d.Info([]byte("again")))
}

func TestDispatcher_FailingSinkNotEscalated(t *testing.T) {
	d := newTestDispatcher()
	bad := newSpy("bad", TraceLevel)
	bad.logErr = core.ErrShortWrite
	mustRegister(t, d, bad)

	require.NoError(t, d.Info([]byte("x")))
	assert.Equal(t, uint64(1), d.Stats().SinkFailures)
}

func TestDispatcher_ReentrantLog(t *testing.T) {
	d := newTestDispatcher()
	s := newSpy("echo", TraceLevel)
	var nestedErr error
	s.onLog = func(level core.Level, msg []byte) {
		if err := d.Log(level, msg); err != nil {
			nestedErr = err
		}
	}
	mustRegister(t, d, s)

	require.NoError(t, d.Info([]byte("loop")))
	assert.Len(t, s.admitted(), core.MaxNestingDepth)
	assert.ErrorIs(t, nestedErr, core.ErrNestingDepth)
	assert.ErrorIs(t, nestedErr, core.ErrLocked)

	// fully released again
	require.NoError(t, d.Info([]byte("after")))
}

func TestDispatcher_ReentrantRegistration(t *testing.T) {
	d := newTestDispatcher()
	late := newSpy("late", TraceLevel)
	s := newSpy("s", TraceLevel)
	s.onLog = func(core.Level, []byte) {
		if late.opened == 0 {
			_, _ = d.RegisterSink(late)
		}
	}
	mustRegister(t, d, s)

	require.NoError(t, d.Info([]byte("first")))
	assert.Equal(t, 1, late.opened)
	// registered into a later slot during the fan-out, so it saw "first" too
	assert.Equal(t, []string{"first"}, late.strings())
}

func TestDispatcher_LockTimeout(t *testing.T) {
	d := NewBuilder().WithLockTimeout(10 * time.Millisecond).Build()
	entered := make(chan struct{})
	release := make(chan struct{})
	s := newSpy("slow", TraceLevel)
	s.onLog = func(core.Level, []byte) {
		close(entered)
		<-release
	}
	mustRegister(t, d, s)

	done := make(chan error, 1)
	go func() { done <- d.Info([]byte("holding")) }()
	<-entered

	start := time.Now()
	err := d.Info([]byte("blocked"))
	assert.ErrorIs(t, err, core.ErrLocked)
	assert.Equal(t, core.ResultLocked, core.ResultOf(err))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	_, err = d.RegisterSink(newSpy("other", TraceLevel))
	assert.ErrorIs(t, err, core.ErrLocked)
	assert.ErrorIs(t, d.SetGlobalLogLevel(ErrorLevel), core.ErrLocked)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, uint64(3), d.Stats().Locked)
	assert.Equal(t, TraceLevel, d.GlobalLogLevel())
}

func TestDispatcher_TryLock(t *testing.T) {
	d := NewBuilder().WithLockTimeout(0).Build()
	entered := make(chan struct{})
	release := make(chan struct{})
	s := newSpy("slow", TraceLevel)
	s.onLog = func(core.Level, []byte) {
		close(entered)
		<-release
	}
	mustRegister(t, d, s)

	go func() { _ = d.Info([]byte("holding")) }()
	<-entered
	assert.ErrorIs(t, d.Info([]byte("x")), core.ErrLocked)
	close(release)
}

func TestDispatcher_ConcurrentLastSlot(t *testing.T) {
	d := newTestDispatcher()
	for i := 0; i < core.MaxSinks-1; i++ {
		mustRegister(t, d, newSpy(fmt.Sprintf("s%d", i), TraceLevel))
	}

	contenders := []*spy{newSpy("x", TraceLevel), newSpy("y", TraceLevel)}
	errs := make([]error, len(contenders))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, s := range contenders {
		wg.Add(1)
		go func(i int, s *spy) {
			defer wg.Done()
			<-start
			_, errs[i] = d.RegisterSink(s)
		}(i, s)
	}
	close(start)
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, core.ErrFull):
			full++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, full)
}

func TestDispatcher_ConcurrentLog(t *testing.T) {
	d := newTestDispatcher()
	s := newSpy("s", TraceLevel)
	mustRegister(t, d, s)

	const goroutines, perG = 8, 200
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				_ = d.Infof("g%d-%d", g, i)
			}
		}(g)
	}
	wg.Wait()

	assert.Len(t, s.admitted(), goroutines*perG)
	assert.Equal(t, uint64(goroutines*perG), d.Stats().Dispatched)
}

func TestDispatcher_Flog(t *testing.T) {
	d := newTestDispatcher(func(b *Builder) { b.WithLevel(InfoLevel) })
	s := newSpy("s", TraceLevel)
	mustRegister(t, d, s)

	require.NoError(t, d.Infof("temp=%d unit=%s", 21, "C"))
	assert.Equal(t, []string{"temp=21 unit=C"}, s.strings())

	assert.ErrorIs(t, d.Debugf("x"), core.ErrBelowThreshold)
	assert.ErrorIs(t, d.Flog(InfoLevel, ""), core.ErrBadMessage)
}

func TestDispatcher_FlogTruncation(t *testing.T) {
	long := strings.Repeat("a", core.MaxMessageLength+50)

	d := newTestDispatcher()
	s := newSpy("s", TraceLevel)
	mustRegister(t, d, s)
	require.NoError(t, d.Infof("%s", long))
	require.Len(t, s.admitted(), 1)
	assert.Len(t, s.admitted()[0], core.MaxMessageLength)

	strict := newTestDispatcher(func(b *Builder) { b.WithTruncationReport(true) })
	s2 := newSpy("s2", TraceLevel)
	mustRegister(t, strict, s2)
	err := strict.Infof("%s", long)
	assert.ErrorIs(t, err, core.ErrMessageTooLong)
	assert.Len(t, s2.admitted(), 1, "truncated message is still logged")
}

func TestDispatcher_NestedFlogKeepsOuterMessage(t *testing.T) {
	d := newTestDispatcher()
	a := newSpy("a", TraceLevel)
	b := newSpy("b", TraceLevel)
	a.onLog = func(_ core.Level, msg []byte) {
		if string(msg) == "outer 1" {
			_ = d.Infof("inner %d", 2)
		}
	}
	mustRegister(t, d, a)
	mustRegister(t, d, b)

	require.NoError(t, d.Infof("outer %d", 1))
	assert.Equal(t, []string{"outer 1", "inner 2"}, a.strings())
	assert.Equal(t, []string{"inner 2", "outer 1"}, b.strings())
}

func TestDispatcher_GlobalLevel(t *testing.T) {
	d := newTestDispatcher()
	assert.Equal(t, core.MinLevel, d.GlobalLogLevel())
	require.NoError(t, d.SetGlobalLogLevel(FatalLevel))
	assert.Equal(t, FatalLevel, d.GlobalLogLevel())

	s := newSpy("s", FatalLevel)
	mustRegister(t, d, s)
	assert.ErrorIs(t, d.Error([]byte("e")), core.ErrBelowThreshold)
	require.NoError(t, d.Fatal([]byte("f")))
	assert.Equal(t, []string{"f"}, s.strings())
}

func TestDispatcher_ShutdownAndInitialize(t *testing.T) {
	d := newTestDispatcher()
	assert.True(t, d.Initialized())
	s := newSpy("s", TraceLevel)
	mustRegister(t, d, s)
	require.NoError(t, d.SetGlobalLogLevel(WarnLevel))

	require.NoError(t, d.Shutdown())
	assert.False(t, d.Initialized())
	assert.Equal(t, 1, s.closed)
	assert.Equal(t, TraceLevel, d.GlobalLogLevel())

	require.NoError(t, d.Initialize())
	require.NoError(t, d.Initialize())
	assert.True(t, d.Initialized())

	h := mustRegister(t, d, s)
	assert.False(t, h.IsNone())
	assert.Equal(t, 2, s.opened)
}

func TestDispatcher_InitializeClosesSinksRegisteredAfterShutdown(t *testing.T) {
	d := newTestDispatcher()
	require.NoError(t, d.Shutdown())

	s := newSpy("late", TraceLevel)
	mustRegister(t, d, s)
	assert.Equal(t, 1, s.opened)

	require.NoError(t, d.Initialize())
	n, _, err := d.SinkCount()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, s.closed)

	// a later Initialize has nothing left to close
	require.NoError(t, d.Initialize())
	assert.Equal(t, 1, s.closed)
}

func TestDispatcher_ConcurrentInitialize(t *testing.T) {
	d := newTestDispatcher()
	require.NoError(t, d.Shutdown())

	const workers = 8
	spies := make([]*spy, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		spies[i] = newSpy(fmt.Sprintf("s%d", i), TraceLevel)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := d.Initialize(); err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = d.RegisterSink(spies[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
	assert.True(t, d.Initialized())

	// only the first Initialize clears, so no registered sink was dropped
	n, _, err := d.SinkCount()
	require.NoError(t, err)
	assert.Equal(t, workers, n)
	for _, s := range spies {
		assert.Equal(t, 1, s.opened)
		assert.Zero(t, s.closed, s.Name())
	}
}

func TestDispatcher_ShutdownCombinesCloseErrors(t *testing.T) {
	d := newTestDispatcher()
	a := newSpy("a", TraceLevel)
	a.closeErr = errors.New("a failed")
	b := newSpy("b", TraceLevel)
	b.closeErr = errors.New("b failed")
	mustRegister(t, d, a)
	mustRegister(t, d, b)

	err := d.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "b failed")
}

func TestDispatcher_ForEachSink(t *testing.T) {
	d := newTestDispatcher()
	mustRegister(t, d, newSpy("a", TraceLevel))
	mustRegister(t, d, newSpy("b", TraceLevel))

	var names []string
	require.NoError(t, d.ForEachSink(func(_ registry.Handle, s sink.Sink) bool {
		names = append(names, s.Name())
		return true
	}))
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestDispatcher_RegisterNil(t *testing.T) {
	d := newTestDispatcher()
	_, err := d.RegisterSink(nil)
	assert.ErrorIs(t, err, core.ErrFail)
}
