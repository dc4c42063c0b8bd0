package ee

import "github.com/sarchlab/ps2sim/cpu"

func opNop(*CPU, cpu.Instruction) error {
	return nil
}

func addOverflows32(a, b, r uint32) bool {
	return (a^r)&(b^r)&0x80000000 != 0
}

func addOverflows64(a, b, r uint64) bool {
	return (a^r)&(b^r)&(1<<63) != 0
}

func (c *CPU) overflow() {
	c.DoException(c.commonVector(), cpu.ExcOverflow)
}

func opADDI(c *CPU, i cpu.Instruction) error {
	a, b := c.gprW(i.Rs), uint32(i.SImm)
	r := a + b

	if addOverflows32(a, b, r) {
		c.overflow()
		return nil
	}

	c.setW(i.Rt, r)

	return nil
}

func opADDIU(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rt, c.gprW(i.Rs)+uint32(i.SImm))
	return nil
}

func opDADDI(c *CPU, i cpu.Instruction) error {
	a, b := c.gprD(i.Rs), uint64(int64(i.SImm))
	r := a + b

	if addOverflows64(a, b, r) {
		c.overflow()
		return nil
	}

	c.setD(i.Rt, r)

	return nil
}

func opDADDIU(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rt, c.gprD(i.Rs)+uint64(int64(i.SImm)))
	return nil
}

func opSLTI(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rt, b2u(int64(c.gprD(i.Rs)) < int64(i.SImm)))
	return nil
}

func opSLTIU(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rt, b2u(c.gprD(i.Rs) < uint64(int64(i.SImm))))
	return nil
}

func opANDI(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rt, c.gprD(i.Rs)&uint64(i.Imm))
	return nil
}

func opORI(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rt, c.gprD(i.Rs)|uint64(i.Imm))
	return nil
}

func opXORI(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rt, c.gprD(i.Rs)^uint64(i.Imm))
	return nil
}

func opLUI(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rt, uint32(i.Imm)<<16)
	return nil
}

func opADD(c *CPU, i cpu.Instruction) error {
	a, b := c.gprW(i.Rs), c.gprW(i.Rt)
	r := a + b

	if addOverflows32(a, b, r) {
		c.overflow()
		return nil
	}

	c.setW(i.Rd, r)

	return nil
}

func opADDU(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, c.gprW(i.Rs)+c.gprW(i.Rt))
	return nil
}

func opSUB(c *CPU, i cpu.Instruction) error {
	a, b := c.gprW(i.Rs), c.gprW(i.Rt)
	r := a - b

	if (a^b)&(a^r)&0x80000000 != 0 {
		c.overflow()
		return nil
	}

	c.setW(i.Rd, r)

	return nil
}

func opSUBU(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, c.gprW(i.Rs)-c.gprW(i.Rt))
	return nil
}

func opDADD(c *CPU, i cpu.Instruction) error {
	a, b := c.gprD(i.Rs), c.gprD(i.Rt)
	r := a + b

	if addOverflows64(a, b, r) {
		c.overflow()
		return nil
	}

	c.setD(i.Rd, r)

	return nil
}

func opDADDU(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rs)+c.gprD(i.Rt))
	return nil
}

func opDSUB(c *CPU, i cpu.Instruction) error {
	a, b := c.gprD(i.Rs), c.gprD(i.Rt)
	r := a - b

	if (a^b)&(a^r)&(1<<63) != 0 {
		c.overflow()
		return nil
	}

	c.setD(i.Rd, r)

	return nil
}

func opDSUBU(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rs)-c.gprD(i.Rt))
	return nil
}

func opAND(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rs)&c.gprD(i.Rt))
	return nil
}

func opOR(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rs)|c.gprD(i.Rt))
	return nil
}

func opXOR(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rs)^c.gprD(i.Rt))
	return nil
}

func opNOR(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, ^(c.gprD(i.Rs) | c.gprD(i.Rt)))
	return nil
}

func opSLT(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, b2u(int64(c.gprD(i.Rs)) < int64(c.gprD(i.Rt))))
	return nil
}

func opSLTU(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, b2u(c.gprD(i.Rs) < c.gprD(i.Rt)))
	return nil
}

func opMOVZ(c *CPU, i cpu.Instruction) error {
	if c.gprD(i.Rt) == 0 {
		c.setD(i.Rd, c.gprD(i.Rs))
	}

	return nil
}

func opMOVN(c *CPU, i cpu.Instruction) error {
	if c.gprD(i.Rt) != 0 {
		c.setD(i.Rd, c.gprD(i.Rs))
	}

	return nil
}

func opSLL(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, c.gprW(i.Rt)<<i.Sa)
	return nil
}

func opSRL(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, c.gprW(i.Rt)>>i.Sa)
	return nil
}

func opSRA(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, uint32(int32(c.gprW(i.Rt))>>i.Sa))
	return nil
}

func opSLLV(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, c.gprW(i.Rt)<<(c.gprW(i.Rs)&0x1F))
	return nil
}

func opSRLV(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, c.gprW(i.Rt)>>(c.gprW(i.Rs)&0x1F))
	return nil
}

func opSRAV(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rd, uint32(int32(c.gprW(i.Rt))>>(c.gprW(i.Rs)&0x1F)))
	return nil
}

func opDSLL(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rt)<<i.Sa)
	return nil
}

func opDSRL(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rt)>>i.Sa)
	return nil
}

func opDSRA(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, uint64(int64(c.gprD(i.Rt))>>i.Sa))
	return nil
}

func opDSLL32(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rt)<<(i.Sa+32))
	return nil
}

func opDSRL32(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rt)>>(i.Sa+32))
	return nil
}

func opDSRA32(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, uint64(int64(c.gprD(i.Rt))>>(i.Sa+32)))
	return nil
}

func opDSLLV(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rt)<<(c.gprD(i.Rs)&0x3F))
	return nil
}

func opDSRLV(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, c.gprD(i.Rt)>>(c.gprD(i.Rs)&0x3F))
	return nil
}

func opDSRAV(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, uint64(int64(c.gprD(i.Rt))>>(c.gprD(i.Rs)&0x3F)))
	return nil
}

func opMFSA(c *CPU, i cpu.Instruction) error {
	c.setD(i.Rd, uint64(c.sa))
	return nil
}

func opMTSA(c *CPU, i cpu.Instruction) error {
	c.sa = c.gprW(i.Rs) & 0x0F
	return nil
}

func opMTSAB(c *CPU, i cpu.Instruction) error {
	c.sa = (c.gprW(i.Rs) & 0x0F) ^ (uint32(i.Imm) & 0x0F)
	return nil
}

func opMTSAH(c *CPU, i cpu.Instruction) error {
	c.sa = ((c.gprW(i.Rs) & 0x07) ^ (uint32(i.Imm) & 0x07)) * 2
	return nil
}

func (c *CPU) trap(cond bool) {
	if cond {
		c.DoException(c.commonVector(), cpu.ExcTrap)
	}
}

func opTGE(c *CPU, i cpu.Instruction) error {
	c.trap(int64(c.gprD(i.Rs)) >= int64(c.gprD(i.Rt)))
	return nil
}

func opTGEU(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) >= c.gprD(i.Rt))
	return nil
}

func opTLT(c *CPU, i cpu.Instruction) error {
	c.trap(int64(c.gprD(i.Rs)) < int64(c.gprD(i.Rt)))
	return nil
}

func opTLTU(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) < c.gprD(i.Rt))
	return nil
}

func opTEQ(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) == c.gprD(i.Rt))
	return nil
}

func opTNE(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) != c.gprD(i.Rt))
	return nil
}

func opTGEI(c *CPU, i cpu.Instruction) error {
	c.trap(int64(c.gprD(i.Rs)) >= int64(i.SImm))
	return nil
}

func opTGEIU(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) >= uint64(int64(i.SImm)))
	return nil
}

func opTLTI(c *CPU, i cpu.Instruction) error {
	c.trap(int64(c.gprD(i.Rs)) < int64(i.SImm))
	return nil
}

func opTLTIU(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) < uint64(int64(i.SImm)))
	return nil
}

func opTEQI(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) == uint64(int64(i.SImm)))
	return nil
}

func opTNEI(c *CPU, i cpu.Instruction) error {
	c.trap(c.gprD(i.Rs) != uint64(int64(i.SImm)))
	return nil
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
