package ee

import (
	"fmt"

	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/cpu"
)

func (c *CPU) addr(i cpu.Instruction) uint32 {
	return c.gprW(i.Rs) + uint32(i.SImm)
}

// aligned raises an address error when addr is not a multiple of size.
func (c *CPU) aligned(addr uint32, size uint32, store bool) bool {
	if addr&(size-1) == 0 {
		return true
	}

	c.cop0.regs[BadVAddr] = addr

	code := cpu.ExcAdEL
	if store {
		code = cpu.ExcAdES
	}

	c.DoException(c.commonVector(), code)

	return false
}

func (c *CPU) memErr(err error) error {
	return fmt.Errorf("%s: pc 0x%08x: %w", c.name, c.pc, err)
}

func opLB(c *CPU, i cpu.Instruction) error {
	v, err := c.bus.Read8(c.addr(i))
	if err != nil {
		return c.memErr(err)
	}

	c.setD(i.Rt, bits.SignExtend8(v))

	return nil
}

func opLBU(c *CPU, i cpu.Instruction) error {
	v, err := c.bus.Read8(c.addr(i))
	if err != nil {
		return c.memErr(err)
	}

	c.setD(i.Rt, uint64(v))

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

	c.setD(i.Rt, bits.SignExtend16(v))

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

	c.setD(i.Rt, uint64(v))

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

	c.setW(i.Rt, v)

	return nil
}

func opLWU(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 4, false) {
		return nil
	}

	v, err := c.bus.Read32(a)
	if err != nil {
		return c.memErr(err)
	}

	c.setD(i.Rt, uint64(v))

	return nil
}

func opLD(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 8, false) {
		return nil
	}

	v, err := c.bus.Read64(a)
	if err != nil {
		return c.memErr(err)
	}

	c.setD(i.Rt, v)

	return nil
}

func opLQ(c *CPU, i cpu.Instruction) error {
	v, err := c.bus.Read128(c.addr(i) &^ 0xF)
	if err != nil {
		return c.memErr(err)
	}

	c.setQ(i.Rt, v)

	return nil
}

func opLWL(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	r := c.gprW(i.Rt)&(0x00FFFFFF>>shift) | w<<(24-shift)
	c.setW(i.Rt, r)

	return nil
}

// LWR only sign-extends when it loads the whole word.
func opLWR(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	if shift == 0 {
		c.setW(i.Rt, w)
		return nil
	}

	r := c.gprW(i.Rt)&(0xFFFFFF00<<(24-shift)) | w>>shift
	c.setD(i.Rt, c.gprD(i.Rt)&^0xFFFFFFFF|uint64(r))

	return nil
}

func opLDL(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := uint64(a&7) * 8

	d, err := c.bus.Read64(a &^ 7)
	if err != nil {
		return c.memErr(err)
	}

	c.setD(i.Rt, c.gprD(i.Rt)&(0x00FFFFFFFFFFFFFF>>shift)|d<<(56-shift))

	return nil
}

func opLDR(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := uint64(a&7) * 8

	d, err := c.bus.Read64(a &^ 7)
	if err != nil {
		return c.memErr(err)
	}

	c.setD(i.Rt, c.gprD(i.Rt)&(0xFFFFFFFFFFFFFF00<<(56-shift))|d>>shift)

	return nil
}

func opSB(c *CPU, i cpu.Instruction) error {
	if err := c.bus.Write8(c.addr(i), uint8(c.gprD(i.Rt))); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSH(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 2, true) {
		return nil
	}

	if err := c.bus.Write16(a, uint16(c.gprD(i.Rt))); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSW(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 4, true) {
		return nil
	}

	if err := c.bus.Write32(a, c.gprW(i.Rt)); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSD(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 8, true) {
		return nil
	}

	if err := c.bus.Write64(a, c.gprD(i.Rt)); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSQ(c *CPU, i cpu.Instruction) error {
	if err := c.bus.Write128(c.addr(i)&^0xF, c.gpr[i.Rt]); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSWL(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	w = w&(0xFFFFFF00<<shift) | c.gprW(i.Rt)>>(24-shift)

	if err := c.bus.Write32(a&^3, w); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSWR(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := (a & 3) * 8

	w, err := c.bus.Read32(a &^ 3)
	if err != nil {
		return c.memErr(err)
	}

	w = w&(0x00FFFFFF>>(24-shift)) | c.gprW(i.Rt)<<shift

	if err := c.bus.Write32(a&^3, w); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSDL(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := uint64(a&7) * 8

	d, err := c.bus.Read64(a &^ 7)
	if err != nil {
		return c.memErr(err)
	}

	d = d&(0xFFFFFFFFFFFFFF00<<shift) | c.gprD(i.Rt)>>(56-shift)

	if err := c.bus.Write64(a&^7, d); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opSDR(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	shift := uint64(a&7) * 8

	d, err := c.bus.Read64(a &^ 7)
	if err != nil {
		return c.memErr(err)
	}

	d = d&(0x00FFFFFFFFFFFFFF>>(56-shift)) | c.gprD(i.Rt)<<shift

	if err := c.bus.Write64(a&^7, d); err != nil {
		return c.memErr(err)
	}

	return nil
}
