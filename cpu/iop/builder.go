package iop

import (
	"io"

	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sirupsen/logrus"
)

// Builder can build IOP interpreters.
type Builder struct {
	bus  Bus
	log  *logrus.Entry
	line intc.Line
}

// MakeBuilder returns a Builder with no interrupt line attached.
func MakeBuilder() Builder {
	return Builder{}
}

// WithBus sets the address space.
func (b Builder) WithBus(bus Bus) Builder {
	b.bus = bus
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log *logrus.Entry) Builder {
	b.log = log
	return b
}

// WithInterruptLine connects the IOP INTC output to Cause.IP2.
func (b Builder) WithInterruptLine(line intc.Line) Builder {
	b.line = line
	return b
}

// Build creates the interpreter. The returned CPU is reset.
func (b Builder) Build(name string) *CPU {
	if b.bus == nil {
		panic("iop: bus is required")
	}

	log := b.log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}

	line := b.line
	if line == nil {
		line = intc.LineFunc(func() bool { return false })
	}

	c := &CPU{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		bus:          b.bus,
		log:          log.WithField("component", name),
		line:         line,
	}
	c.Reset()

	return c
}
