// Package tracing turns hook invocations of the emulator components into
// records and hands them to tracers that log, count or store them.
package tracing

// A Tracer consumes trace records.
type Tracer interface {
	Trace(r Record)
}

// A Clock tells the current emulated EE cycle. *sched.Scheduler is a Clock.
type Clock interface {
	Now() uint64
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(r Record)

// Trace calls f(r).
func (f TracerFunc) Trace(r Record) {
	f(r)
}
