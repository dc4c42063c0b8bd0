package tracing

import (
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/system"
)

// CollectTrace lets the tracer collect records from a domain.
func CollectTrace(domain hooking.Hookable, tracer Tracer, clock Clock) {
	domain.AcceptHook(&traceHook{t: tracer, clock: clock})
}

// CollectSystemTrace attaches the tracer to every hookable component of the
// system.
func CollectSystemTrace(sys *system.System, tracer Tracer) {
	for _, d := range sys.Hookables() {
		CollectTrace(d, tracer, sys.Scheduler())
	}
}

// A traceHook is a hook that converts invocations into records.
type traceHook struct {
	t     Tracer
	clock Clock
}

// Func forwards traced positions to the tracer.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	r := recordOf(ctx, h.clock.Now())
	if r == nil {
		return
	}

	h.t.Trace(r)
}
