package eedma

import (
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/mem"
)

// sprPort connects the fromSPR and toSPR channels to the scratchpad at SADR.
type sprPort struct {
	d *DMAC
	c *channel
}

func (p sprPort) addr() uint32 {
	return mem.ScratchpadBase | p.c.sadr
}

func (p sprPort) advance() {
	p.c.sadr = (p.c.sadr + 16) & (mem.ScratchpadSize - 1)
}

func (p sprPort) PushQuad(q bits.U128) bool {
	if err := p.d.mem.WritePhys128(p.addr(), q); err != nil {
		p.d.log.WithError(err).Error("scratchpad write")
		return false
	}

	p.advance()

	return true
}

func (p sprPort) PullQuad() (bits.U128, bool) {
	q, err := p.d.mem.ReadPhys128(p.addr())
	if err != nil {
		p.d.log.WithError(err).Error("scratchpad read")
		return bits.U128{}, false
	}

	p.advance()

	return q, true
}
