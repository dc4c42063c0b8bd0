package ee

import "github.com/sarchlab/ps2sim/cpu"

func opMFC0(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rt, c.cop0.regs[i.Rd])
	return nil
}

func opMTC0(c *CPU, i cpu.Instruction) error {
	c.cop0.Write(int(i.Rd), c.gprW(i.Rt))
	return nil
}

func opERET(c *CPU, _ cpu.Instruction) error {
	c.eret()
	return nil
}

// EI and DI only take effect in kernel mode or when Status.EDI is set.
func (c *CPU) eiAllowed() bool {
	sr := c.cop0.regs[Status]
	kernel := sr&StatusKSU == 0 || sr&(StatusEXL|StatusERL) != 0

	return kernel || sr&StatusEDI != 0
}

func opEI(c *CPU, _ cpu.Instruction) error {
	if c.eiAllowed() {
		c.cop0.regs[Status] |= StatusEIE
	}

	return nil
}

func opDI(c *CPU, _ cpu.Instruction) error {
	if c.eiAllowed() {
		c.cop0.regs[Status] &^= StatusEIE
	}

	return nil
}

func opBC0F(c *CPU, i cpu.Instruction) error {
	c.branchIf(!c.cond0(), i)
	return nil
}

func opBC0T(c *CPU, i cpu.Instruction) error {
	c.branchIf(c.cond0(), i)
	return nil
}

func opBC0FL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(!c.cond0(), i)
	return nil
}

func opBC0TL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(c.cond0(), i)
	return nil
}
