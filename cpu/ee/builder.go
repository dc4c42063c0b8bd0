package ee

import (
	"io"

	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sirupsen/logrus"
)

// Builder can build EE interpreters.
type Builder struct {
	bus   Bus
	log   *logrus.Entry
	int0  intc.Line
	int1  intc.Line
	cond0 func() bool
}

// MakeBuilder returns a Builder with no interrupt lines attached.
func MakeBuilder() Builder {
	return Builder{}
}

// WithBus sets the address space the EE fetches from.
func (b Builder) WithBus(bus Bus) Builder {
	b.bus = bus
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log *logrus.Entry) Builder {
	b.log = log
	return b
}

// WithINTC connects the INTC line to Cause.IP2.
func (b Builder) WithINTC(line intc.Line) Builder {
	b.int0 = line
	return b
}

// WithDMAC connects the DMAC line to Cause.IP3.
func (b Builder) WithDMAC(line intc.Line) Builder {
	b.int1 = line
	return b
}

// WithCOP0Condition sets the source of the condition tested by BC0F/BC0T.
func (b Builder) WithCOP0Condition(cond func() bool) Builder {
	b.cond0 = cond
	return b
}

// Build creates the interpreter. The returned CPU is reset.
func (b Builder) Build(name string) *CPU {
	if b.bus == nil {
		panic("ee: bus is required")
	}

	log := b.log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}

	c := &CPU{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		bus:          b.bus,
		log:          log.WithField("component", name),
		int0:         b.int0,
		int1:         b.int1,
		cond0:        b.cond0,
	}

	if c.int0 == nil {
		c.int0 = intc.LineFunc(func() bool { return false })
	}

	if c.int1 == nil {
		c.int1 = intc.LineFunc(func() bool { return false })
	}

	if c.cond0 == nil {
		c.cond0 = func() bool { return false }
	}

	c.Reset()

	return c
}
