package iop

import (
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
)

// COP0 register numbers.
const (
	BPC      = 3
	BDA      = 5
	JumpDest = 6
	DCIC     = 7
	BadVAddr = 8
	BDAM     = 9
	BPCM     = 11
	Status   = 12
	Cause    = 13
	EPC      = 14
	PRId     = 15
)

// Status bits.
const (
	StatusIEc = 1 << 0
	StatusKUc = 1 << 1
	StatusIM  = 0xFF << 8
	StatusIsC = 1 << 16
	StatusBEV = 1 << 22
)

// Cause bits.
const (
	CauseExcCode = 0x1F << 2
	CauseSW      = 3 << 8
	CauseIP2     = 1 << 10
	CauseBD      = 1 << 31
)

const (
	prid = 0x1F

	vectorBEV    = 0xBFC00180
	vectorNormal = 0x80000080
)

// COP0 is the system control coprocessor of the IOP. Status keeps a
// three-entry stack of interrupt enable and kernel/user bits in its low six
// bits: exceptions push it, RFE pops it.
type COP0 struct {
	regs [32]uint32
}

func (c *COP0) reset() {
	c.regs = [32]uint32{}
	c.regs[Status] = StatusBEV
	c.regs[PRId] = prid
}

// Reg returns a COP0 register.
func (c *COP0) Reg(n int) uint32 {
	return c.regs[n]
}

// Write applies an MTC0 write. Only the software interrupt bits of Cause are
// writable.
func (c *COP0) Write(n int, v uint32) {
	switch n {
	case Cause:
		c.regs[Cause] = c.regs[Cause]&^CauseSW | v&CauseSW
	case PRId:
	default:
		c.regs[n] = v
	}
}

// isolated reports whether Status.IsC detaches the data cache from memory.
func (c *COP0) isolated() bool {
	return c.regs[Status]&StatusIsC != 0
}

func (c *CPU) vector() uint32 {
	if c.cop0.regs[Status]&StatusBEV != 0 {
		return vectorBEV
	}

	return vectorNormal
}

// DoException enters an exception and pushes the interrupt enable stack.
func (c *CPU) DoException(vector uint32, code cpu.ExcCode) {
	cop := &c.cop0
	cause := cop.regs[Cause]&^(CauseExcCode|CauseBD) | uint32(code)<<2

	if c.ds.active {
		cop.regs[EPC] = c.pc - 4
		cause |= CauseBD
	} else {
		cop.regs[EPC] = c.pc
	}

	sr := cop.regs[Status]
	cop.regs[Status] = sr&^0x3F | (sr<<2)&0x3F
	cop.regs[Cause] = cause

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    cpu.HookPosException,
		Item: &cpu.ExceptionInfo{
			Unit:   c.name,
			Code:   code,
			EPC:    cop.regs[EPC],
			Vector: vector,
			Delay:  cause&CauseBD != 0,
		},
	})

	c.pc = vector - 4
	c.ds = delaySlot{}
}

// rfe pops the interrupt enable stack. The pending branch of the jump that
// holds RFE in its delay slot still commits.
func (c *CPU) rfe() {
	sr := c.cop0.regs[Status]
	c.cop0.regs[Status] = sr&^0xF | (sr>>2)&0xF
}

func (c *CPU) checkInterrupts() {
	cop := &c.cop0

	if c.line.Asserted() {
		cop.regs[Cause] |= CauseIP2
	} else {
		cop.regs[Cause] &^= CauseIP2
	}

	if cop.regs[Status]&StatusIEc == 0 {
		return
	}

	if cop.regs[Cause]&cop.regs[Status]&StatusIM == 0 {
		return
	}

	c.ds.active = c.ds.pending
	c.DoException(c.vector(), cpu.ExcInt)
	c.pc += 4
}
