// Package eedma implements the EE DMA controller: ten channels that move
// quadwords between main memory (or the scratchpad) and the peripherals,
// in normal or chain mode.
package eedma

import (
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/dma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/mem"
	"github.com/sirupsen/logrus"
)

// Control register addresses.
const (
	DCTRL    = 0x1000E000
	DSTAT    = 0x1000E010
	DPCR     = 0x1000E020
	DSQWC    = 0x1000E030
	DRBSR    = 0x1000E040
	DRBOR    = 0x1000E050
	DSTADR   = 0x1000E060
	DENABLER = 0x1000F520
	DENABLEW = 0x1000F590
)

const (
	ctrlDMAE      = 1 << 0
	enableHold    = 1 << 16
	enableDefault = 0x1201
	statCISMask   = 0x3FF
	statW1CMask   = 0xE3FF
	statCIMMask   = 0x03FF0000
	sprAddr       = 1 << 31
)

// DMAC is the EE DMA controller.
type DMAC struct {
	*hooking.HookableBase

	name string
	log  *logrus.Entry
	mem  dma.Memory

	ch [NumChannels]channel

	ctrl   uint32
	stat   uint32
	pcr    uint32
	sqwc   uint32
	rbsr   uint32
	rbor   uint32
	stadr  uint32
	enable uint32
}

// Name returns the name of the controller.
func (d *DMAC) Name() string {
	return d.name
}

// Reset stops every channel and clears the registers.
func (d *DMAC) Reset() {
	for i := range d.ch {
		d.ch[i].reset()
	}

	d.ctrl, d.stat, d.pcr, d.sqwc = 0, 0, 0, 0
	d.rbsr, d.rbor, d.stadr = 0, 0, 0
	d.enable = enableDefault
}

// Asserted reports whether an enabled channel interrupt is pending. It is the
// EE's Cause.IP3 line.
func (d *DMAC) Asserted() bool {
	return d.stat&statCISMask&(d.stat>>16) != 0
}

// Cond0 is the condition tested by BC0F/BC0T: every channel selected in
// D_PCR.CPC has finished.
func (d *DMAC) Cond0() bool {
	return (^d.pcr|d.stat)&statCISMask == statCISMask
}

// Stat returns D_STAT.
func (d *DMAC) Stat() uint32 {
	return d.stat
}

// Busy reports whether channel i has STR set.
func (d *DMAC) Busy(i int) bool {
	return d.ch[i].running()
}

func (d *DMAC) held() bool {
	return d.ctrl&ctrlDMAE == 0 || d.enable&enableHold != 0
}

// Run advances the controller by the given number of ticks. Each tick moves
// at most one quadword per running channel.
func (d *DMAC) Run(cycles uint64) {
	for t := uint64(0); t < cycles; t++ {
		if d.held() {
			return
		}

		active := false

		for i := range d.ch {
			if !d.ch[i].running() {
				continue
			}

			active = true
			d.step(i)
		}

		if !active {
			return
		}
	}
}

func (d *DMAC) step(i int) {
	c := &d.ch[i]

	switch c.mode() {
	case ModeNormal:
		d.stepNormal(i)
	case ModeChain:
		if c.fromMemory() {
			d.stepSourceChain(i)
		} else {
			d.stepDestChain(i)
		}
	default:
		d.log.WithFields(logrus.Fields{
			"channel": c.name,
			"chcr":    c.chcr,
		}).Warn("unsupported transfer mode")
		d.abort(i)
	}
}

func (d *DMAC) stepNormal(i int) {
	c := &d.ch[i]

	if c.qwc == 0 {
		d.finish(i)
		return
	}

	if d.move(i) && c.qwc == 0 {
		d.finish(i)
	}
}

func (d *DMAC) stepSourceChain(i int) {
	c := &d.ch[i]

	if c.ttePending {
		if c.port.PushQuad(bits.U128{Lo: c.tteQuad}) {
			c.ttePending = false
		}

		return
	}

	if c.qwc > 0 {
		if d.move(i) && c.qwc == 0 && c.tagEnd {
			d.finish(i)
		}

		return
	}

	if c.tagEnd {
		d.finish(i)
		return
	}

	tag, err := d.mem.ReadPhys128(d.physAddr(c.tadr))
	if err != nil {
		d.fault(i, "tag fetch", err)
		return
	}

	if !d.applySourceTag(i, tag) {
		return
	}

	if c.qwc == 0 && c.tagEnd && !c.ttePending {
		d.finish(i)
	}
}

func (d *DMAC) applySourceTag(i int, tag bits.U128) bool {
	c := &d.ch[i]
	qwc, id, irq, addr := decodeTag(tag)

	c.chcr = c.chcr&0xFFFF | uint32(tag.Lo)&0xFFFF0000
	c.qwc = qwc

	switch id {
	case TagREFE:
		c.madr = addr
		c.tadr += 16
		c.tagEnd = true
	case TagCNT:
		c.madr = c.tadr + 16
		c.tadr = c.madr + qwc*16
	case TagNEXT:
		c.madr = c.tadr + 16
		c.tadr = addr
	case TagREF, TagREFS:
		c.madr = addr
		c.tadr += 16
	case TagCALL:
		asp := c.asp()
		if asp >= 2 {
			d.log.WithField("channel", c.name).Warn("call tag overflows the address stack")
			d.abort(i)

			return false
		}

		c.madr = c.tadr + 16
		c.asr[asp] = c.madr + qwc*16
		c.setASP(asp + 1)
		c.tadr = addr
	case TagRET:
		c.madr = c.tadr + 16

		asp := c.asp()
		if asp == 0 {
			c.tagEnd = true
			break
		}

		c.setASP(asp - 1)
		c.tadr = c.asr[asp-1]
	case TagEND:
		c.madr = c.tadr + 16
		c.tagEnd = true
	}

	if irq && c.chcr&CHCRTIE != 0 {
		c.tagEnd = true
	}

	if c.chcr&CHCRTTE != 0 {
		c.ttePending = true
		c.tteQuad = tag.Hi
	}

	d.log.WithFields(logrus.Fields{
		"channel": c.name,
		"id":      id,
		"qwc":     qwc,
		"addr":    addr,
	}).Trace("source tag")

	return true
}

func (d *DMAC) stepDestChain(i int) {
	c := &d.ch[i]

	if c.qwc > 0 {
		if d.move(i) && c.qwc == 0 && c.tagEnd {
			d.finish(i)
		}

		return
	}

	if c.tagEnd {
		d.finish(i)
		return
	}

	tag, ok := c.port.PullQuad()
	if !ok {
		return
	}

	qwc, id, irq, addr := decodeTag(tag)
	c.chcr = c.chcr&0xFFFF | uint32(tag.Lo)&0xFFFF0000
	c.qwc = qwc
	c.madr = addr

	switch id {
	case TagCNTS, TagDCNT:
	case TagDEND:
		c.tagEnd = true
	default:
		d.log.WithFields(logrus.Fields{
			"channel": c.name,
			"id":      id,
		}).Warn("invalid destination chain tag")
		d.abort(i)

		return
	}

	if irq && c.chcr&CHCRTIE != 0 {
		c.tagEnd = true
	}

	if c.qwc == 0 && c.tagEnd {
		d.finish(i)
	}
}

func decodeTag(tag bits.U128) (qwc, id uint32, irq bool, addr uint32) {
	qwc = uint32(tag.Lo & 0xFFFF)
	id = uint32(tag.Lo>>28) & 7
	irq = tag.Lo>>31&1 != 0
	addr = uint32(tag.Lo>>32) &^ 0xF

	return qwc, id, irq, addr
}

// move transfers one quadword between MADR and the channel port. It returns
// false when nothing moved.
func (d *DMAC) move(i int) bool {
	c := &d.ch[i]
	paddr := d.physAddr(c.madr)

	if c.fromMemory() {
		q, err := d.mem.ReadPhys128(paddr)
		if err != nil {
			d.fault(i, "read", err)
			return false
		}

		if !c.port.PushQuad(q) {
			return false
		}
	} else {
		q, ok := c.port.PullQuad()
		if !ok {
			return false
		}

		if err := d.mem.WritePhys128(paddr, q); err != nil {
			d.fault(i, "write", err)
			return false
		}
	}

	c.madr += 16
	c.qwc--
	c.units++

	return true
}

func (d *DMAC) physAddr(madr uint32) uint32 {
	if madr&sprAddr != 0 {
		return mem.ScratchpadBase | madr&(mem.ScratchpadSize-1)&^0xF
	}

	return madr & 0x7FFFFFF0
}

func (d *DMAC) fault(i int, op string, err error) {
	d.log.WithFields(logrus.Fields{
		"channel": d.ch[i].name,
		"op":      op,
	}).WithError(err).Error("transfer aborted")
	d.abort(i)
}

func (d *DMAC) abort(i int) {
	d.ch[i].chcr &^= CHCRSTR
}

func (d *DMAC) finish(i int) {
	c := &d.ch[i]
	c.chcr &^= CHCRSTR
	d.stat |= 1 << i

	d.log.WithFields(logrus.Fields{
		"channel": c.name,
		"qwc":     c.units,
	}).Debug("transfer done")

	if d.NumHooks() == 0 {
		return
	}

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    dma.HookPosTransferDone,
		Item: &dma.TransferInfo{
			Controller: d.name,
			Channel:    i,
			Name:       c.name,
			Units:      c.units,
			Chain:      c.mode() == ModeChain,
		},
	})
}
