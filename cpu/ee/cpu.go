// Package ee implements the interpreter of the Emotion Engine core, a 64-bit
// MIPS III derivative with 128-bit general registers, the MMI parallel
// integer extension, a single-precision FPU and a VU0 register interface.
package ee

import (
	"fmt"

	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sirupsen/logrus"
)

// Bus is the virtual address space seen by the EE.
type Bus interface {
	Read8(vaddr uint32) (uint8, error)
	Read16(vaddr uint32) (uint16, error)
	Read32(vaddr uint32) (uint32, error)
	Read64(vaddr uint32) (uint64, error)
	Read128(vaddr uint32) (bits.U128, error)
	Write8(vaddr uint32, v uint8) error
	Write16(vaddr uint32, v uint16) error
	Write32(vaddr uint32, v uint32) error
	Write64(vaddr uint32, v uint64) error
	Write128(vaddr uint32, v bits.U128) error
}

// delaySlot tracks a taken branch. A branch handler sets pending. The next
// step moves pending into active and commits the target after the delay
// slot instruction executed.
type delaySlot struct {
	pending bool
	target  uint32
	active  bool
	commit  uint32
}

// CPU is the EE interpreter.
type CPU struct {
	*hooking.HookableBase

	name  string
	bus   Bus
	log   *logrus.Entry
	int0  intc.Line
	int1  intc.Line
	cond0 func() bool

	pc  uint32
	gpr [32]bits.U128
	hi  bits.U128
	lo  bits.U128
	sa  uint32
	ds  delaySlot

	cop0 COP0
	fpu  FPU
	vu0  VU0

	retired uint64
}

var _ cpu.Interpreter = (*CPU)(nil)

// Name returns the name of the interpreter.
func (c *CPU) Name() string {
	return c.name
}

// Reset zeroes the architectural state and points PC at the reset vector.
func (c *CPU) Reset() {
	c.pc = cpu.ResetVector
	c.gpr = [32]bits.U128{}
	c.hi = bits.U128{}
	c.lo = bits.U128{}
	c.sa = 0
	c.ds = delaySlot{}
	c.cop0.reset()
	c.fpu.reset()
	c.vu0.reset()
	c.retired = 0
}

// PC returns the address of the next instruction.
func (c *CPU) PC() uint32 {
	return c.pc
}

// SetPC redirects execution. Any pending branch is dropped.
func (c *CPU) SetPC(pc uint32) {
	c.pc = pc
	c.ds = delaySlot{}
}

// Retired returns the number of instructions executed since reset.
func (c *CPU) Retired() uint64 {
	return c.retired
}

// GPR returns a general register.
func (c *CPU) GPR(r int) bits.U128 {
	return c.gpr[r]
}

// SetGPR writes a general register. Writes to r0 are dropped.
func (c *CPU) SetGPR(r int, v bits.U128) {
	if r != 0 {
		c.gpr[r] = v
	}
}

// GPR64 returns the low doubleword of a general register.
func (c *CPU) GPR64(r int) uint64 {
	return c.gpr[r].Lo
}

// SetGPR64 writes the low doubleword of a general register.
func (c *CPU) SetGPR64(r int, v uint64) {
	c.setD(uint32(r), v)
}

// HI returns the 128-bit HI register. HI1 is the upper doubleword.
func (c *CPU) HI() bits.U128 {
	return c.hi
}

// LO returns the 128-bit LO register. LO1 is the upper doubleword.
func (c *CPU) LO() bits.U128 {
	return c.lo
}

// SA returns the funnel shift amount register.
func (c *CPU) SA() uint32 {
	return c.sa
}

// COP0 returns the system control coprocessor.
func (c *CPU) COP0() *COP0 {
	return &c.cop0
}

// FPU returns the floating point coprocessor.
func (c *CPU) FPU() *FPU {
	return &c.fpu
}

// VU0 returns the VU0 registers reachable through COP2.
func (c *CPU) VU0() *VU0 {
	return &c.vu0
}

// Run executes cycles steps. It stops at the first failing step.
func (c *CPU) Run(cycles int) error {
	for i := 0; i < cycles; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Step executes one instruction, commits a due branch, advances Count and
// takes a pending interrupt.
func (c *CPU) Step() error {
	c.ds.active, c.ds.commit = c.ds.pending, c.ds.target
	c.ds.pending = false

	pc := c.pc

	err := c.fetchAndExecute(pc)
	if err != nil {
		c.ds.pending, c.ds.target = c.ds.active, c.ds.commit
		c.ds.active = false

		return err
	}

	c.pc += 4
	if c.ds.active {
		c.pc = c.ds.commit
		c.ds.active = false
	}

	c.retired++
	c.cop0.tick()
	c.checkInterrupts()

	return nil
}

func (c *CPU) fetchAndExecute(pc uint32) error {
	if pc&3 != 0 {
		c.cop0.regs[BadVAddr] = pc
		c.DoException(c.commonVector(), cpu.ExcAdEL)

		return nil
	}

	word, err := c.bus.Read32(pc)
	if err != nil {
		return fmt.Errorf("%s: fetch: %w", c.name, err)
	}

	inst := cpu.Decode(word)

	if err := execPrimary(c, inst); err != nil {
		return err
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    cpu.HookPosRetire,
			Item:   inst,
			Detail: pc,
		})
	}

	return nil
}

func (c *CPU) illegal(inst cpu.Instruction) error {
	c.log.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%08x", c.pc),
		"word": fmt.Sprintf("0x%08x", inst.Word),
	}).Error("unimplemented instruction")

	return &cpu.UnimplementedError{Unit: c.name, PC: c.pc, Inst: inst}
}

func (c *CPU) gprD(r uint32) uint64 {
	return c.gpr[r].Lo
}

func (c *CPU) gprW(r uint32) uint32 {
	return uint32(c.gpr[r].Lo)
}

func (c *CPU) setD(r uint32, v uint64) {
	if r != 0 {
		c.gpr[r].Lo = v
	}
}

// setW writes a 32-bit result sign-extended into the low doubleword.
func (c *CPU) setW(r uint32, v uint32) {
	c.setD(r, bits.SignExtend32(v))
}

func (c *CPU) setQ(r uint32, v bits.U128) {
	if r != 0 {
		c.gpr[r] = v
	}
}

func (c *CPU) branch(target uint32) {
	c.ds.pending = true
	c.ds.target = target
}

func (c *CPU) branchIf(cond bool, inst cpu.Instruction) {
	if cond {
		c.branch(c.pc + 4 + inst.BranchOffset())
	}
}

// branchLikely takes the branch or skips the delay slot.
func (c *CPU) branchLikely(cond bool, inst cpu.Instruction) {
	if cond {
		c.branch(c.pc + 4 + inst.BranchOffset())
		return
	}

	c.pc += 4
}

func (c *CPU) link(r uint32) {
	c.setD(r, uint64(c.pc+8))
}
