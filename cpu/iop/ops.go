package iop

import (
	"fmt"

	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
)

type handler func(c *CPU, inst cpu.Instruction) error

var (
	primaryTable [64]handler
	specialTable [64]handler
	regimmTable  [32]handler
	cop0Table    [32]handler
	cop0COTable  [64]handler
)

func dispatch(table []handler, key uint32, c *CPU, inst cpu.Instruction) error {
	h := table[key]
	if h == nil {
		return c.illegal(inst)
	}

	return h(c, inst)
}

func execPrimary(c *CPU, i cpu.Instruction) error {
	return dispatch(primaryTable[:], i.Opcode, c, i)
}

func execSpecial(c *CPU, i cpu.Instruction) error {
	return dispatch(specialTable[:], i.Funct, c, i)
}

func execRegimm(c *CPU, i cpu.Instruction) error {
	return dispatch(regimmTable[:], i.Rt, c, i)
}

func execCOP0(c *CPU, i cpu.Instruction) error {
	return dispatch(cop0Table[:], i.Rs, c, i)
}

func execCOP0CO(c *CPU, i cpu.Instruction) error {
	return dispatch(cop0COTable[:], i.Funct, c, i)
}

func init() {
	primaryTable = [64]handler{
		0x00: execSpecial, 0x01: execRegimm, 0x02: opJ, 0x03: opJAL,
		0x04: opBEQ, 0x05: opBNE, 0x06: opBLEZ, 0x07: opBGTZ,
		0x08: opADDI, 0x09: opADDIU, 0x0A: opSLTI, 0x0B: opSLTIU,
		0x0C: opANDI, 0x0D: opORI, 0x0E: opXORI, 0x0F: opLUI,
		0x10: execCOP0,
		0x20: opLB, 0x21: opLH, 0x22: opLWL, 0x23: opLW,
		0x24: opLBU, 0x25: opLHU, 0x26: opLWR,
		0x28: opSB, 0x29: opSH, 0x2A: opSWL, 0x2B: opSW, 0x2E: opSWR,
	}

	specialTable = [64]handler{
		0x00: opSLL, 0x02: opSRL, 0x03: opSRA,
		0x04: opSLLV, 0x06: opSRLV, 0x07: opSRAV,
		0x08: opJR, 0x09: opJALR, 0x0C: opSYSCALL, 0x0D: opBREAK,
		0x10: opMFHI, 0x11: opMTHI, 0x12: opMFLO, 0x13: opMTLO,
		0x18: opMULT, 0x19: opMULTU, 0x1A: opDIV, 0x1B: opDIVU,
		0x20: opADD, 0x21: opADDU, 0x22: opSUB, 0x23: opSUBU,
		0x24: opAND, 0x25: opOR, 0x26: opXOR, 0x27: opNOR,
		0x2A: opSLT, 0x2B: opSLTU,
	}

	regimmTable = [32]handler{
		0x00: opBLTZ, 0x01: opBGEZ, 0x10: opBLTZAL, 0x11: opBGEZAL,
	}

	cop0Table = [32]handler{
		0x00: opMFC0, 0x04: opMTC0, 0x10: execCOP0CO,
	}
	cop0COTable = [64]handler{
		0x10: opRFE,
	}
}

func (c *CPU) addr(i cpu.Instruction) uint32 {
	return c.gpr[i.Rs] + uint32(i.SImm)
}

func (c *CPU) aligned(addr uint32, size uint32, store bool) bool {
	if addr&(size-1) == 0 {
		return true
	}

	c.cop0.regs[BadVAddr] = addr

	code := cpu.ExcAdEL
	if store {
		code = cpu.ExcAdES
	}

	c.DoException(c.vector(), code)

	return false
}

func (c *CPU) memErr(err error) error {
	return fmt.Errorf("%s: pc 0x%08x: %w", c.name, c.pc, err)
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}

// Jumps and branches.

func opJ(c *CPU, i cpu.Instruction) error {
	c.branch((c.pc+4)&0xF0000000 | i.Target<<2)
	return nil
}

func opJAL(c *CPU, i cpu.Instruction) error {
	c.set(31, c.pc+8)
	c.branch((c.pc+4)&0xF0000000 | i.Target<<2)

	return nil
}

func opJR(c *CPU, i cpu.Instruction) error {
	c.branch(c.gpr[i.Rs])
	return nil
}

func opJALR(c *CPU, i cpu.Instruction) error {
	target := c.gpr[i.Rs]
	c.set(i.Rd, c.pc+8)
	c.branch(target)

	return nil
}

func opBEQ(c *CPU, i cpu.Instruction) error {
	c.branchIf(c.gpr[i.Rs] == c.gpr[i.Rt], i)
	return nil
}

func opBNE(c *CPU, i cpu.Instruction) error {
	c.branchIf(c.gpr[i.Rs] != c.gpr[i.Rt], i)
	return nil
}

func opBLEZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int32(c.gpr[i.Rs]) <= 0, i)
	return nil
}

func opBGTZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int32(c.gpr[i.Rs]) > 0, i)
	return nil
}

func opBLTZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int32(c.gpr[i.Rs]) < 0, i)
	return nil
}

func opBGEZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int32(c.gpr[i.Rs]) >= 0, i)
	return nil
}

func opBLTZAL(c *CPU, i cpu.Instruction) error {
	cond := int32(c.gpr[i.Rs]) < 0
	c.set(31, c.pc+8)
	c.branchIf(cond, i)

	return nil
}

func opBGEZAL(c *CPU, i cpu.Instruction) error {
	cond := int32(c.gpr[i.Rs]) >= 0
	c.set(31, c.pc+8)
	c.branchIf(cond, i)

	return nil
}

func opSYSCALL(c *CPU, _ cpu.Instruction) error {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    cpu.HookPosSyscall,
		Item: &cpu.SyscallInfo{
			Unit:   c.name,
			PC:     c.pc,
			Number: int32(c.gpr[4]),
		},
	})
	c.DoException(c.vector(), cpu.ExcSyscall)

	return nil
}

func opBREAK(c *CPU, _ cpu.Instruction) error {
	c.DoException(c.vector(), cpu.ExcBreak)
	return nil
}

// Arithmetic and logic.

func (c *CPU) overflow() {
	c.DoException(c.vector(), cpu.ExcOverflow)
}

func opADDI(c *CPU, i cpu.Instruction) error {
	a, b := c.gpr[i.Rs], uint32(i.SImm)
	r := a + b

	if (a^r)&(b^r)&0x80000000 != 0 {
		c.overflow()
		return nil
	}

	c.set(i.Rt, r)

	return nil
}

func opADDIU(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, c.gpr[i.Rs]+uint32(i.SImm))
	return nil
}

func opSLTI(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, b2u(int32(c.gpr[i.Rs]) < i.SImm))
	return nil
}

func opSLTIU(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, b2u(c.gpr[i.Rs] < uint32(i.SImm)))
	return nil
}

func opANDI(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, c.gpr[i.Rs]&uint32(i.Imm))
	return nil
}

func opORI(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, c.gpr[i.Rs]|uint32(i.Imm))
	return nil
}

func opXORI(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, c.gpr[i.Rs]^uint32(i.Imm))
	return nil
}

func opLUI(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, uint32(i.Imm)<<16)
	return nil
}

func opADD(c *CPU, i cpu.Instruction) error {
	a, b := c.gpr[i.Rs], c.gpr[i.Rt]
	r := a + b

	if (a^r)&(b^r)&0x80000000 != 0 {
		c.overflow()
		return nil
	}

	c.set(i.Rd, r)

	return nil
}

func opADDU(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rs]+c.gpr[i.Rt])
	return nil
}

func opSUB(c *CPU, i cpu.Instruction) error {
	a, b := c.gpr[i.Rs], c.gpr[i.Rt]
	r := a - b

	if (a^b)&(a^r)&0x80000000 != 0 {
		c.overflow()
		return nil
	}

	c.set(i.Rd, r)

	return nil
}

func opSUBU(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rs]-c.gpr[i.Rt])
	return nil
}

func opAND(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rs]&c.gpr[i.Rt])
	return nil
}

func opOR(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rs]|c.gpr[i.Rt])
	return nil
}

func opXOR(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rs]^c.gpr[i.Rt])
	return nil
}

func opNOR(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, ^(c.gpr[i.Rs] | c.gpr[i.Rt]))
	return nil
}

func opSLT(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, b2u(int32(c.gpr[i.Rs]) < int32(c.gpr[i.Rt])))
	return nil
}

func opSLTU(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, b2u(c.gpr[i.Rs] < c.gpr[i.Rt]))
	return nil
}

func opSLL(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rt]<<i.Sa)
	return nil
}

func opSRL(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rt]>>i.Sa)
	return nil
}

func opSRA(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, uint32(int32(c.gpr[i.Rt])>>i.Sa))
	return nil
}

func opSLLV(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rt]<<(c.gpr[i.Rs]&0x1F))
	return nil
}

func opSRLV(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.gpr[i.Rt]>>(c.gpr[i.Rs]&0x1F))
	return nil
}

func opSRAV(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, uint32(int32(c.gpr[i.Rt])>>(c.gpr[i.Rs]&0x1F)))
	return nil
}

func opMFHI(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.hi)
	return nil
}

func opMTHI(c *CPU, i cpu.Instruction) error {
	c.hi = c.gpr[i.Rs]
	return nil
}

func opMFLO(c *CPU, i cpu.Instruction) error {
	c.set(i.Rd, c.lo)
	return nil
}

func opMTLO(c *CPU, i cpu.Instruction) error {
	c.lo = c.gpr[i.Rs]
	return nil
}

func opMULT(c *CPU, i cpu.Instruction) error {
	p := uint64(int64(int32(c.gpr[i.Rs])) * int64(int32(c.gpr[i.Rt])))
	c.hi, c.lo = uint32(p>>32), uint32(p)

	return nil
}

func opMULTU(c *CPU, i cpu.Instruction) error {
	p := uint64(c.gpr[i.Rs]) * uint64(c.gpr[i.Rt])
	c.hi, c.lo = uint32(p>>32), uint32(p)

	return nil
}

func opDIV(c *CPU, i cpu.Instruction) error {
	n, d := int32(c.gpr[i.Rs]), int32(c.gpr[i.Rt])

	switch {
	case d == 0:
		c.hi = uint32(n)
		if n < 0 {
			c.lo = 1
		} else {
			c.lo = 0xFFFFFFFF
		}
	case n == -1<<31 && d == -1:
		c.hi, c.lo = 0, uint32(n)
	default:
		c.hi, c.lo = uint32(n%d), uint32(n/d)
	}

	return nil
}

func opDIVU(c *CPU, i cpu.Instruction) error {
	n, d := c.gpr[i.Rs], c.gpr[i.Rt]

	if d == 0 {
		c.hi, c.lo = n, 0xFFFFFFFF
		return nil
	}

	c.hi, c.lo = n%d, n/d

	return nil
}

// Loads and stores.

func opLB(c *CPU, i cpu.Instruction) error {
	v, err := c.bus.Read8(c.addr(i))
	if err != nil {
		return c.memErr(err)
	}

	c.set(i.Rt, uint32(int32(int8(v))))

	return nil
}

func opLBU(c *CPU, i cpu.Instruction) error {
	v, err := c.bus.Read8(c.addr(i))
	if err != nil {
		return c.memErr(err)
	}

	c.set(i.Rt, uint32(v))

	return nil
}

func opLH(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 2, false) {
		return nil
	}

	v, err := c.bus.Read16(a)
	if err != nil {
		return c.memErr(err)
	}

	c.set(i.Rt, bits.SignExtend16To32(v))

	return nil
}

func opLHU(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 2, false) {
		return nil
	}

	v, err := c.bus.Read16(a)
	if err != nil {
		return c.memErr(err)
	}

	c.set(i.Rt, uint32(v))

	return nil
}

func opLW(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 4, false) {
		return nil
	}

	v, err := c.bus.Read32(a)
	if err != nil {
		return c.memErr(err)
	}

	c.set(i.Rt, v)

	return nil
}

func opLWL(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	c.set(i.Rt, c.gpr[i.Rt]&(0x00FFFFFF>>shift)|w<<(24-shift))

	return nil
}

func opLWR(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	c.set(i.Rt, c.gpr[i.Rt]&(0xFFFFFF00<<(24-shift))|w>>shift)

	return nil
}

func opSB(c *CPU, i cpu.Instruction) error {
	if c.cop0.isolated() {
		return nil
	}

	if err := c.bus.Write8(c.addr(i), uint8(c.gpr[i.Rt])); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSH(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 2, true) || c.cop0.isolated() {
		return nil
	}

	if err := c.bus.Write16(a, uint16(c.gpr[i.Rt])); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSW(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 4, true) || c.cop0.isolated() {
		return nil
	}

	if err := c.bus.Write32(a, c.gpr[i.Rt]); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSWL(c *CPU, i cpu.Instruction) error {
	if c.cop0.isolated() {
		return nil
	}

	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	w = w&(0xFFFFFF00<<shift) | c.gpr[i.Rt]>>(24-shift)

	if err := c.bus.Write32(a&^3, w); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSWR(c *CPU, i cpu.Instruction) error {
	if c.cop0.isolated() {
		return nil
	}

	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	w = w&(0x00FFFFFF>>(24-shift)) | c.gpr[i.Rt]<<shift

	if err := c.bus.Write32(a&^3, w); err != nil {
		return c.memErr(err)
	}

	return nil
}

// COP0.

func opMFC0(c *CPU, i cpu.Instruction) error {
	c.set(i.Rt, c.cop0.regs[i.Rd])
	return nil
}

func opMTC0(c *CPU, i cpu.Instruction) error {
	c.cop0.Write(int(i.Rd), c.gpr[i.Rt])
	return nil
}

func opRFE(c *CPU, _ cpu.Instruction) error {
	c.rfe()
	return nil
}
