package intc

import (
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sirupsen/logrus"
)

// IOPSource names an IOP interrupt source by its bit position in I_STAT.
type IOPSource uint

// IOP interrupt sources.
const (
	IOPVBlank IOPSource = iota
	IOPGPU
	IOPCDVD
	IOPDMA
	IOPTimer0
	IOPTimer1
	IOPTimer2
	IOPSIO0
	IOPSIO1
	IOPSPU2
	IOPPIO
	IOPEVBlank
	IOPDVD
	IOPPCMCIA
	IOPTimer3
	IOPTimer4
	IOPTimer5
	IOPSIO2
)

// IOP register addresses.
const (
	IOPIStat = 0x1F801070
	IOPIMask = 0x1F801074
	IOPICtrl = 0x1F801078
)

const iopSourceMask = 0x03FFFFFF

// IOP is the IOP interrupt controller. Its line drives Cause.IP2 of the IOP.
type IOP struct {
	*hooking.HookableBase

	stat   uint32
	mask   uint32
	ctrl   uint32
	forced bool
	log    *logrus.Entry
}

// NewIOP creates an IOP interrupt controller.
func NewIOP(log *logrus.Entry) *IOP {
	return &IOP{
		HookableBase: hooking.NewHookableBase(),
		log:          log.WithField("component", "iop-intc"),
	}
}

// Name returns the component name.
func (c *IOP) Name() string {
	return "iop-intc"
}

// Reset clears every register and the force flag.
func (c *IOP) Reset() {
	c.stat = 0
	c.mask = 0
	c.ctrl = 0
	c.forced = false
}

// RequestInterrupt raises the status bit of src.
func (c *IOP) RequestInterrupt(src IOPSource) {
	c.stat |= 1 << src
	c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosRequest, Item: uint(src)})
}

// WriteStat acknowledges the sources whose bits are set.
func (c *IOP) WriteStat(bits uint32) {
	c.stat &^= bits
}

// WriteMask assigns the mask.
func (c *IOP) WriteMask(bits uint32) {
	c.mask = bits & iopSourceMask
}

// ReadCtrl returns I_CTRL and clears it, as the hardware does.
func (c *IOP) ReadCtrl() uint32 {
	v := c.ctrl
	c.ctrl = 0

	return v
}

// WriteCtrl sets I_CTRL. Bit 0 enables the line.
func (c *IOP) WriteCtrl(v uint32) {
	c.ctrl = v & 1
}

// Force holds the line asserted regardless of status, mask and I_CTRL.
func (c *IOP) Force(on bool) {
	c.forced = on
}

// Stat returns I_STAT.
func (c *IOP) Stat() uint32 {
	return c.stat
}

// Mask returns I_MASK.
func (c *IOP) Mask() uint32 {
	return c.mask
}

// Asserted reports the level of the IOP interrupt line.
func (c *IOP) Asserted() bool {
	if c.forced {
		return true
	}

	return c.ctrl&1 != 0 && c.stat&c.mask != 0
}

// Load serves reads of I_STAT, I_MASK and I_CTRL.
func (c *IOP) Load(addr uint32, width int) uint64 {
	switch addr &^ 3 {
	case IOPIStat:
		return uint64(c.stat)
	case IOPIMask:
		return uint64(c.mask)
	case IOPICtrl:
		return uint64(c.ReadCtrl())
	}

	c.log.Warnf("read%d of unknown register 0x%08x", width*8, addr)

	return 0
}

// Store serves writes of I_STAT, I_MASK and I_CTRL. I_STAT acknowledges the
// bits written as zero.
func (c *IOP) Store(addr uint32, width int, v uint64) {
	switch addr &^ 3 {
	case IOPIStat:
		c.WriteStat(^uint32(v))
	case IOPIMask:
		c.WriteMask(uint32(v))
	case IOPICtrl:
		c.WriteCtrl(uint32(v))
	default:
		c.log.Warnf("write%d of unknown register 0x%08x <- 0x%x", width*8, addr, v)
	}
}
