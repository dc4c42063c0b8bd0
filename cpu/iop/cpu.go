// Package iop implements the interpreter of the I/O processor, a 32-bit
// MIPS R3000A class core.
//
// Load delay slots are not modeled: a loaded value is visible to the next
// instruction.
package iop

import (
	"fmt"

	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sirupsen/logrus"
)

// Bus is the virtual address space seen by the IOP.
type Bus interface {
	Read8(vaddr uint32) (uint8, error)
	Read16(vaddr uint32) (uint16, error)
	Read32(vaddr uint32) (uint32, error)
	Write8(vaddr uint32, v uint8) error
	Write16(vaddr uint32, v uint16) error
	Write32(vaddr uint32, v uint32) error
}

type delaySlot struct {
	pending bool
	target  uint32
	active  bool
	commit  uint32
}

// CPU is the IOP interpreter.
type CPU struct {
	*hooking.HookableBase

	name string
	bus  Bus
	log  *logrus.Entry
	line intc.Line

	pc  uint32
	gpr [32]uint32
	hi  uint32
	lo  uint32
	ds  delaySlot

	cop0 COP0

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
	c.gpr = [32]uint32{}
	c.hi, c.lo = 0, 0
	c.ds = delaySlot{}
	c.cop0.reset()
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
func (c *CPU) GPR(r int) uint32 {
	return c.gpr[r]
}

// SetGPR writes a general register. Writes to r0 are dropped.
func (c *CPU) SetGPR(r int, v uint32) {
	c.set(uint32(r), v)
}

// HI returns the HI register.
func (c *CPU) HI() uint32 {
	return c.hi
}

// LO returns the LO register.
func (c *CPU) LO() uint32 {
	return c.lo
}

// COP0 returns the system control coprocessor.
func (c *CPU) COP0() *COP0 {
	return &c.cop0
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

// Step executes one instruction, commits a due branch and takes a pending
// interrupt.
func (c *CPU) Step() error {
	c.ds.active, c.ds.commit = c.ds.pending, c.ds.target
	c.ds.pending = false

	pc := c.pc

	if err := c.fetchAndExecute(pc); err != nil {
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
	c.checkInterrupts()

	return nil
}

func (c *CPU) fetchAndExecute(pc uint32) error {
	if pc&3 != 0 {
		c.cop0.regs[BadVAddr] = pc
		c.DoException(c.vector(), cpu.ExcAdEL)

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

func (c *CPU) set(r uint32, v uint32) {
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
