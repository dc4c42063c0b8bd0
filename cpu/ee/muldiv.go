package ee

import (
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/cpu"
)

// The R5900 has two multiply/divide pipelines. Pipeline 0 writes the low
// doublewords of HI and LO, pipeline 1 (the *1 instructions) the high ones.

func (c *CPU) setHILO(pipe int, hi, lo uint32) {
	c.hi = c.hi.SetDword(pipe, bits.SignExtend32(hi))
	c.lo = c.lo.SetDword(pipe, bits.SignExtend32(lo))
}

func (c *CPU) hilo(pipe int) uint64 {
	return uint64(uint32(c.hi.Dword(pipe)))<<32 | uint64(uint32(c.lo.Dword(pipe)))
}

func (c *CPU) mult(pipe int, i cpu.Instruction, signed bool) {
	var p uint64
	if signed {
		p = uint64(int64(int32(c.gprW(i.Rs))) * int64(int32(c.gprW(i.Rt))))
	} else {
		p = uint64(c.gprW(i.Rs)) * uint64(c.gprW(i.Rt))
	}

	c.setHILO(pipe, uint32(p>>32), uint32(p))
	c.setD(i.Rd, c.lo.Dword(pipe))
}

func (c *CPU) madd(pipe int, i cpu.Instruction, signed bool) {
	var p uint64
	if signed {
		p = uint64(int64(int32(c.gprW(i.Rs))) * int64(int32(c.gprW(i.Rt))))
	} else {
		p = uint64(c.gprW(i.Rs)) * uint64(c.gprW(i.Rt))
	}

	r := c.hilo(pipe) + p
	c.setHILO(pipe, uint32(r>>32), uint32(r))
	c.setD(i.Rd, c.lo.Dword(pipe))
}

// div follows the hardware results for division by zero and for the one
// overflowing signed quotient.
func (c *CPU) div(pipe int, i cpu.Instruction) {
	n, d := int32(c.gprW(i.Rs)), int32(c.gprW(i.Rt))

	switch {
	case d == 0:
		q := int32(-1)
		if n < 0 {
			q = 1
		}

		c.setHILO(pipe, uint32(n), uint32(q))
	case n == -1<<31 && d == -1:
		c.setHILO(pipe, 0, uint32(n))
	default:
		c.setHILO(pipe, uint32(n%d), uint32(n/d))
	}
}

func (c *CPU) divu(pipe int, i cpu.Instruction) {
	n, d := c.gprW(i.Rs), c.gprW(i.Rt)

	if d == 0 {
		c.setHILO(pipe, n, 0xFFFFFFFF)
		return
	}

	c.setHILO(pipe, n%d, n/d)
}

func opMULT(c *CPU, i cpu.Instruction) error {
	c.mult(0, i, true)
	return nil
}

func opMULTU(c *CPU, i cpu.Instruction) error {
	c.mult(0, i, false)
	return nil
}

func opMULT1(c *CPU, i cpu.Instruction) error {
	c.mult(1, i, true)
	return nil
}

func opMULTU1(c *CPU, i cpu.Instruction) error {
	c.mult(1, i, false)
	return nil
}

func opDIV(c *CPU, i cpu.Instruction) error {
	c.div(0, i)
	return nil
}

func opDIVU(c *CPU, i cpu.Instruction) error {
	c.divu(0, i)
	return nil
}

func opDIV1(c *CPU, i cpu.Instruction) error {
	c.div(1, i)
	return nil
}

func opDIVU1(c *CPU, i cpu.Instruction) error {
	c.divu(1, i)
	return nil
}

func opMADD(c *CPU, i cpu.Instruction) error {
	c.madd(0, i, true)
	return nil
}

func opMADDU(c *CPU, i cpu.Instruction) error {
	c.madd(0, i, false)
	return nil
}

func opMADD1(c *CPU, i cpu.Instruction) error {
	c.madd(1, i, true)
	return nil
}

func opMADDU1(c *CPU, i cpu.Instruction) error {
	c.madd(1, i, false)
	return nil
}

func opMFHI(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.hi.Lo)
	return nil
}

func opMFLO(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.lo.Lo)
	return nil
}

func opMTHI(c *CPU, i cpu.Instruction) error {
	c.hi.Lo = c.gprD(i.Rs)
	return nil
}

func opMTLO(c *CPU, i cpu.Instruction) error {
	c.lo.Lo = c.gprD(i.Rs)
	return nil
}

func opMFHI1(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.hi.Hi)
	return nil
}

func opMFLO1(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.lo.Hi)
	return nil
}

func opMTHI1(c *CPU, i cpu.Instruction) error {
	c.hi.Hi = c.gprD(i.Rs)
	return nil
}

func opMTLO1(c *CPU, i cpu.Instruction) error {
	c.lo.Hi = c.gprD(i.Rs)
	return nil
}
