package ee

import (
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
)

// COP0 register numbers.
const (
	Index      = 0
	Random     = 1
	EntryLo0   = 2
	EntryLo1   = 3
	ContextReg = 4
	PageMask   = 5
	Wired      = 6
	BadVAddr   = 8
	Count      = 9
	EntryHi    = 10
	Compare    = 11
	Status     = 12
	Cause      = 13
	EPC        = 14
	PRId       = 15
	Config     = 16
	BadPAddr   = 23
	Debug      = 24
	Perf       = 25
	TagLo      = 28
	TagHi      = 29
	ErrorEPC   = 30
)

// Status bits.
const (
	StatusIE  = 1 << 0
	StatusEXL = 1 << 1
	StatusERL = 1 << 2
	StatusKSU = 3 << 3
	StatusIM  = 0xFF << 8
	StatusEIE = 1 << 16
	StatusEDI = 1 << 17
	StatusBEV = 1 << 22
)

// Cause bits.
const (
	CauseExcCode = 0x1F << 2
	CauseIP0     = 1 << 8
	CauseIP1     = 1 << 9
	CauseIP2     = 1 << 10
	CauseIP3     = 1 << 11
	CauseIP7     = 1 << 15
	CauseBD      = 1 << 31
)

const (
	prid = 0x2E20

	causeWritable = CauseIP0 | CauseIP1

	vectorBase    = 0x80000000
	vectorBaseBEV = 0xBFC00200

	offsetTLBRefill = 0x000
	offsetCommon    = 0x180
	offsetInterrupt = 0x200
)

// COP0 is the system control coprocessor of the EE.
type COP0 struct {
	regs [32]uint32
}

func (c *COP0) reset() {
	c.regs = [32]uint32{}
	c.regs[Status] = StatusERL | StatusBEV
	c.regs[PRId] = prid
}

// Reg returns a COP0 register.
func (c *COP0) Reg(n int) uint32 {
	return c.regs[n]
}

// Write applies an MTC0 write. Hardware-owned Cause bits and PRId are kept.
// Writing Compare acknowledges the timer interrupt.
func (c *COP0) Write(n int, v uint32) {
	switch n {
	case Cause:
		c.regs[Cause] = c.regs[Cause]&^causeWritable | v&causeWritable
	case Compare:
		c.regs[Compare] = v
		c.regs[Cause] &^= CauseIP7
	case PRId:
	default:
		c.regs[n] = v
	}
}

func (c *COP0) tick() {
	c.regs[Count]++
	if c.regs[Count] == c.regs[Compare] {
		c.regs[Cause] |= CauseIP7
	}
}

func (c *COP0) interruptsEnabled() bool {
	sr := c.regs[Status]

	return sr&StatusIE != 0 && sr&StatusEIE != 0 &&
		sr&(StatusEXL|StatusERL) == 0
}

func (c *CPU) commonVector() uint32 {
	if c.cop0.regs[Status]&StatusBEV != 0 {
		return vectorBaseBEV + offsetCommon
	}

	return vectorBase + offsetCommon
}

func (c *CPU) interruptVector() uint32 {
	if c.cop0.regs[Status]&StatusBEV != 0 {
		return vectorBaseBEV + offsetInterrupt
	}

	return vectorBase + offsetInterrupt
}

// DoException enters an exception. EPC and Cause.BD are only updated when the
// CPU is not already at exception level. The branch waiting in the delay slot
// is abandoned.
func (c *CPU) DoException(vector uint32, code cpu.ExcCode) {
	cop := &c.cop0
	cause := cop.regs[Cause]&^(CauseExcCode|CauseBD) | uint32(code)<<2

	if cop.regs[Status]&StatusEXL == 0 {
		if c.ds.active {
			cop.regs[EPC] = c.pc - 4
			cause |= CauseBD
		} else {
			cop.regs[EPC] = c.pc
		}
	}

	cop.regs[Cause] = cause
	cop.regs[Status] |= StatusEXL

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

func (c *CPU) checkInterrupts() {
	cop := &c.cop0
	hw := uint32(0)

	if c.int0.Asserted() {
		hw |= CauseIP2
	}

	if c.int1.Asserted() {
		hw |= CauseIP3
	}

	cop.regs[Cause] = cop.regs[Cause]&^(CauseIP2|CauseIP3) | hw

	if !cop.interruptsEnabled() {
		return
	}

	if cop.regs[Cause]&cop.regs[Status]&StatusIM == 0 {
		return
	}

	c.ds.active = c.ds.pending
	c.DoException(c.interruptVector(), cpu.ExcInt)
	c.pc += 4
}

// eret returns from an exception. The level bit that was set on entry is
// popped, ERL before EXL. The EE keeps no mode stack, so Status is not
// shifted the way KUo/IEo are on the IOP.
func (c *CPU) eret() {
	cop := &c.cop0

	if cop.regs[Status]&StatusERL != 0 {
		c.pc = cop.regs[ErrorEPC] - 4
		cop.regs[Status] &^= StatusERL
	} else {
		c.pc = cop.regs[EPC] - 4
		cop.regs[Status] &^= StatusEXL
	}

	c.ds = delaySlot{}
}
