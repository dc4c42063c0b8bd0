package ee

import (
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/cpu"
)

// VU0 holds the VU0 registers the EE reaches through COP2. The vector unit
// itself is not emulated; macro instructions are ignored.
type VU0 struct {
	VF [32]bits.U128
	VI [32]uint32
}

// vf0 always reads as (0, 0, 0, 1.0).
var vf0 = bits.Quad(0, 0, 0, 0x3F800000)

func (v *VU0) reset() {
	v.VF = [32]bits.U128{}
	v.VF[0] = vf0
	v.VI = [32]uint32{}
}

func (v *VU0) setVF(n uint32, q bits.U128) {
	if n != 0 {
		v.VF[n] = q
	}
}

// Integer registers VI0..VI15 are 16 bits wide. VI0 reads as zero.
func (v *VU0) setVI(n uint32, x uint32) {
	switch {
	case n == 0:
	case n < 16:
		v.VI[n] = x & 0xFFFF
	default:
		v.VI[n] = x
	}
}

func opQMFC2(c *CPU, i cpu.Instruction) error {
	c.setQ(i.Rt, c.vu0.VF[i.Rd])
	return nil
}

func opQMTC2(c *CPU, i cpu.Instruction) error {
	c.vu0.setVF(i.Rd, c.gpr[i.Rt])
	return nil
}

func opCFC2(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rt, c.vu0.VI[i.Rd])
	return nil
}

func opCTC2(c *CPU, i cpu.Instruction) error {
	c.vu0.setVI(i.Rd, c.gprW(i.Rt))
	return nil
}

func opLQC2(c *CPU, i cpu.Instruction) error {
	v, err := c.bus.Read128(c.addr(i) &^ 0xF)
	if err != nil {
		return c.memErr(err)
	}

	c.vu0.setVF(i.Rt, v)

	return nil
}

func opSQC2(c *CPU, i cpu.Instruction) error {
	if err := c.bus.Write128(c.addr(i)&^0xF, c.vu0.VF[i.Rt]); err != nil {
		return c.memErr(err)
	}

	return nil
}

func opVUMacro(c *CPU, i cpu.Instruction) error {
	c.log.Debugf("vu0 macro instruction 0x%08x at 0x%08x ignored", i.Word, c.pc)
	return nil
}

// VU0 is never busy, so BC2F branches and BC2T falls through.
func opBC2F(c *CPU, i cpu.Instruction) error {
	c.branchIf(true, i)
	return nil
}

func opBC2T(c *CPU, i cpu.Instruction) error {
	c.branchIf(false, i)
	return nil
}

func opBC2FL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(true, i)
	return nil
}

func opBC2TL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(false, i)
	return nil
}
