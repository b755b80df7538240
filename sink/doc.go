// Package sink defines the capability contract every uLog output
// destination implements, plus the building blocks concrete sinks embed.
//
// A Sink is opened exactly once when it is registered with a dispatcher and
// closed exactly once when it is removed. Between the two the dispatcher
// calls Log for every message that passes the global floor. The dispatcher
// only checks that the sink is enabled and that its level is compatible
// with the global floor; the per-message level check is the sink's job, so
// Log must re-check both gates itself. Base.Admit does exactly that.
//
// Log must not retain msg after it returns. The caller may reuse or modify
// the backing array immediately, so a sink must copy or fully consume the
// bytes before returning.
//
// Base carries the enable flag, minimum level and name with atomic access
// so Enable/SetLevel never race with Log. Its zero value is an enabled sink
// at TraceLevel. Stats tracks per-sink counters.
package sink
