package eedma

import (
	"io"

	"github.com/sarchlab/ps2sim/dma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sirupsen/logrus"
)

// Builder can build EE DMA controllers.
type Builder struct {
	mem   dma.Memory
	log   *logrus.Entry
	ports map[int]dma.QuadPort
}

// MakeBuilder returns a Builder that connects every non-scratchpad channel to
// a stub port.
func MakeBuilder() Builder {
	return Builder{}
}

// WithMemory sets the memory the channels transfer to and from.
func (b Builder) WithMemory(m dma.Memory) Builder {
	b.mem = m
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log *logrus.Entry) Builder {
	b.log = log
	return b
}

// WithPort connects channel ch to p.
func (b Builder) WithPort(ch int, p dma.QuadPort) Builder {
	ports := make(map[int]dma.QuadPort, len(b.ports)+1)
	for k, v := range b.ports {
		ports[k] = v
	}

	ports[ch] = p
	b.ports = ports

	return b
}

// Build creates the controller. The returned DMAC is reset.
func (b Builder) Build(name string) *DMAC {
	if b.mem == nil {
		panic("eedma: memory is required")
	}

	log := b.log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}

	d := &DMAC{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		log:          log.WithField("component", name),
		mem:          b.mem,
	}

	for i := range d.ch {
		c := &d.ch[i]
		c.channelDesc = channelDescs[i]

		switch {
		case b.ports[i] != nil:
			c.port = b.ports[i]
		case i == FromSPR || i == ToSPR:
			c.port = sprPort{d: d, c: c}
		default:
			c.port = dma.NewStubPort(c.name, d.log)
		}
	}

	d.Reset()

	return d
}
