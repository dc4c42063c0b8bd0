// Package iopdma implements the IOP DMA controller: fourteen channels that
// move words between IOP memory and the peripherals, including the SIF chain
// transfers that carry data to and from the EE.
package iopdma

import (
	"github.com/sarchlab/ps2sim/dma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sirupsen/logrus"
)

// Control register addresses.
const (
	DPCR  = 0x1F8010F0
	DICR  = 0x1F8010F4
	DPCR2 = 0x1F801570
	DICR2 = 0x1F801574
)

// DICR fields.
const (
	DICRForce        = 1 << 15
	DICREnableShift  = 16
	DICRMasterEnable = 1 << 23
	DICRFlagShift    = 24
	DICRMasterFlag   = 1 << 31

	dicrWritable = 0x00FFFFFF
	dicrFlags    = 0x7F000000
)

// DMAC is the IOP DMA controller.
type DMAC struct {
	*hooking.HookableBase

	name string
	log  *logrus.Entry
	mem  dma.Memory
	irq  func()

	ch [NumChannels]channel

	dpcr  uint32
	dicr  uint32
	dpcr2 uint32
	dicr2 uint32
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

	d.dpcr = 0x07654321
	d.dpcr2 = 0x07654321
	d.dicr = 0
	d.dicr2 = 0
}

// DICR returns the primary interrupt register.
func (d *DMAC) DICR() uint32 {
	return d.dicr
}

// DICR2 returns the secondary interrupt register.
func (d *DMAC) DICR2() uint32 {
	return d.dicr2
}

// Busy reports whether channel i has START set.
func (d *DMAC) Busy(i int) bool {
	return d.ch[i].running()
}

// Run advances the controller by the given number of ticks. Each tick moves
// at most one word per running channel.
func (d *DMAC) Run(cycles uint64) {
	for t := uint64(0); t < cycles; t++ {
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

	switch {
	case c.sync() == SyncBurst || c.sync() == SyncSlice:
		d.stepBlock(i)
	case c.sync() == SyncChain && i == SIF0:
		d.stepSIF0(i)
	case c.sync() == SyncChain && i == SIF1:
		d.stepSIF1(i)
	default:
		d.log.WithFields(logrus.Fields{
			"channel": c.name,
			"chcr":    c.chcr,
		}).Warn("unsupported sync mode")
		c.chcr &^= CHCRStart
	}
}

func (d *DMAC) stepBlock(i int) {
	c := &d.ch[i]

	if c.remaining == 0 {
		d.finish(i)
		return
	}

	if !d.move(i) {
		return
	}

	if c.sync() == SyncSlice {
		c.blockLeft--
		if c.blockLeft == 0 {
			c.bcr -= 1 << 16
			c.blockLeft = c.bcr & 0xFFFF
		}
	}

	if c.remaining == 0 {
		d.finish(i)
	}
}

func (d *DMAC) stepSIF0(i int) {
	c := &d.ch[i]

	if len(c.fwd) > 0 {
		if c.port.PushWord(c.fwd[0]) {
			c.fwd = c.fwd[1:]
		}

		return
	}

	if c.remaining > 0 {
		if d.move(i) && c.remaining == 0 && c.end {
			d.finish(i)
		}

		return
	}

	if c.end {
		d.finish(i)
		return
	}

	w0, err := d.mem.ReadPhys32(c.tadr)
	if err != nil {
		d.fault(i, "tag fetch", err)
		return
	}

	w1, err := d.mem.ReadPhys32(c.tadr + 4)
	if err != nil {
		d.fault(i, "tag fetch", err)
		return
	}

	d.applyTag(i, w0, w1)

	if c.chcr&CHCRTagFwd != 0 {
		eeTag := [2]uint32{}
		for k := range eeTag {
			if eeTag[k], err = d.mem.ReadPhys32(c.tadr + 8 + uint32(k)*4); err != nil {
				d.fault(i, "tag fetch", err)
				return
			}
		}

		c.fwd = append(c.fwd[:0], eeTag[0], eeTag[1], 0, 0)
		c.tadr += 16
	} else {
		c.tadr += 8
	}
}

func (d *DMAC) stepSIF1(i int) {
	c := &d.ch[i]

	if c.remaining > 0 {
		if d.move(i) && c.remaining == 0 && c.end {
			d.finish(i)
		}

		return
	}

	if c.end {
		d.finish(i)
		return
	}

	w, ok := c.port.PullWord()
	if !ok {
		return
	}

	c.header = append(c.header, w)
	if len(c.header) < 4 {
		return
	}

	d.applyTag(i, c.header[0], c.header[1])
	c.header = c.header[:0]

	if c.remaining == 0 && c.end {
		d.finish(i)
	}
}

func (d *DMAC) applyTag(i int, w0, w1 uint32) {
	c := &d.ch[i]
	c.madr = w0 & addrMask
	c.remaining = (w1 + 3) &^ 3
	c.end = w0&(tagIRQ|tagEnd) != 0

	d.log.WithFields(logrus.Fields{
		"channel": c.name,
		"madr":    c.madr,
		"words":   c.remaining,
		"end":     c.end,
	}).Trace("sif tag")
}

// move transfers one word between MADR and the channel port. It returns
// false when nothing moved.
func (d *DMAC) move(i int) bool {
	c := &d.ch[i]

	if c.fromRAM() || (i == SIF0 && c.sync() == SyncChain) {
		w, err := d.mem.ReadPhys32(c.madr &^ 3)
		if err != nil {
			d.fault(i, "read", err)
			return false
		}

		if !c.port.PushWord(w) {
			return false
		}
	} else {
		w, ok := c.port.PullWord()
		if !ok {
			return false
		}

		if err := d.mem.WritePhys32(c.madr&^3, w); err != nil {
			d.fault(i, "write", err)
			return false
		}
	}

	c.madr = (c.madr + 4) & addrMask
	c.remaining--
	c.units++

	return true
}

func (d *DMAC) fault(i int, op string, err error) {
	d.log.WithFields(logrus.Fields{
		"channel": d.ch[i].name,
		"op":      op,
	}).WithError(err).Error("transfer aborted")
	d.ch[i].chcr &^= CHCRStart
}

func (d *DMAC) finish(i int) {
	c := &d.ch[i]
	c.chcr &^= CHCRStart

	if i < 7 {
		if d.dicr&(1<<(DICREnableShift+i)) != 0 {
			d.dicr |= 1 << (DICRFlagShift + i)
		}
	} else if d.dicr2&(1<<(DICREnableShift+i-7)) != 0 {
		d.dicr2 |= 1 << (DICRFlagShift + i - 7)
	}

	d.updateMaster()

	d.log.WithFields(logrus.Fields{
		"channel": c.name,
		"words":   c.units,
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
			Chain:      c.sync() == SyncChain,
		},
	})
}

// updateMaster recomputes DICR bit 31 and requests the DMA interrupt on its
// rising edge.
func (d *DMAC) updateMaster() {
	flags := d.dicr&dicrFlags | d.dicr2&dicrFlags
	master := d.dicr&DICRForce != 0 ||
		(d.dicr&DICRMasterEnable != 0 && flags != 0)
	was := d.dicr&DICRMasterFlag != 0

	if !master {
		d.dicr &^= DICRMasterFlag
		return
	}

	d.dicr |= DICRMasterFlag
	if !was && d.irq != nil {
		d.irq()
	}
}
