package intc

import (
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sirupsen/logrus"
)

// EESource names an EE interrupt source by its bit position in I_STAT.
type EESource uint

// EE interrupt sources.
const (
	EEGS EESource = iota
	EESBUS
	EEVBlankStart
	EEVBlankEnd
	EEVIF0
	EEVIF1
	EEVU0
	EEVU1
	EEIPU
	EETimer0
	EETimer1
	EETimer2
	EETimer3
	EESFIFO
	EEVU0Watchdog
)

// EE register addresses.
const (
	EEIStat = 0x1000F000
	EEIMask = 0x1000F010
)

const eeSourceMask = 0x7FFF

// EE is the EE interrupt controller (INTC). Its line is INT0 of the EE.
type EE struct {
	*hooking.HookableBase

	stat uint32
	mask uint32
	log  *logrus.Entry
}

// NewEE creates an EE interrupt controller.
func NewEE(log *logrus.Entry) *EE {
	return &EE{
		HookableBase: hooking.NewHookableBase(),
		log:          log.WithField("component", "ee-intc"),
	}
}

// Name returns the component name.
func (c *EE) Name() string {
	return "ee-intc"
}

// Reset clears status and mask.
func (c *EE) Reset() {
	c.stat = 0
	c.mask = 0
}

// RequestInterrupt raises the status bit of src.
func (c *EE) RequestInterrupt(src EESource) {
	c.stat |= 1 << src
	c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosRequest, Item: uint(src)})
}

// WriteStat acknowledges the sources whose bits are set.
func (c *EE) WriteStat(bits uint32) {
	c.stat &^= bits
}

// WriteMask toggles the mask bits that are set. Writing the same value twice
// restores the original mask.
func (c *EE) WriteMask(bits uint32) {
	c.mask ^= bits & eeSourceMask
}

// Stat returns I_STAT.
func (c *EE) Stat() uint32 {
	return c.stat
}

// Mask returns I_MASK.
func (c *EE) Mask() uint32 {
	return c.mask
}

// Asserted reports the level of INT0.
func (c *EE) Asserted() bool {
	return c.stat&c.mask != 0
}

// Load serves reads of I_STAT and I_MASK.
func (c *EE) Load(addr uint32, width int) uint64 {
	switch addr &^ 0xF {
	case EEIStat:
		return uint64(c.stat)
	case EEIMask:
		return uint64(c.mask)
	}

	c.log.Warnf("read%d of unknown register 0x%08x", width*8, addr)

	return 0
}

// Store serves writes of I_STAT and I_MASK.
func (c *EE) Store(addr uint32, width int, v uint64) {
	switch addr &^ 0xF {
	case EEIStat:
		c.WriteStat(uint32(v))
	case EEIMask:
		c.WriteMask(uint32(v))
	default:
		c.log.Warnf("write%d of unknown register 0x%08x <- 0x%x", width*8, addr, v)
	}
}
