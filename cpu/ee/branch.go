package ee

import (
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
)

func opJ(c *CPU, i cpu.Instruction) error {
	c.branch((c.pc+4)&0xF0000000 | i.Target<<2)
	return nil
}

func opJAL(c *CPU, i cpu.Instruction) error {
	c.link(31)
	c.branch((c.pc+4)&0xF0000000 | i.Target<<2)

	return nil
}

func opJR(c *CPU, i cpu.Instruction) error {
	c.branch(c.gprW(i.Rs))
	return nil
}

func opJALR(c *CPU, i cpu.Instruction) error {
	target := c.gprW(i.Rs)
	c.link(i.Rd)
	c.branch(target)

	return nil
}

func opBEQ(c *CPU, i cpu.Instruction) error {
	c.branchIf(c.gprD(i.Rs) == c.gprD(i.Rt), i)
	return nil
}

func opBNE(c *CPU, i cpu.Instruction) error {
	c.branchIf(c.gprD(i.Rs) != c.gprD(i.Rt), i)
	return nil
}

func opBLEZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int64(c.gprD(i.Rs)) <= 0, i)
	return nil
}

func opBGTZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int64(c.gprD(i.Rs)) > 0, i)
	return nil
}

func opBEQL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(c.gprD(i.Rs) == c.gprD(i.Rt), i)
	return nil
}

func opBNEL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(c.gprD(i.Rs) != c.gprD(i.Rt), i)
	return nil
}

func opBLEZL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(int64(c.gprD(i.Rs)) <= 0, i)
	return nil
}

func opBGTZL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(int64(c.gprD(i.Rs)) > 0, i)
	return nil
}

func opBLTZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int64(c.gprD(i.Rs)) < 0, i)
	return nil
}

func opBGEZ(c *CPU, i cpu.Instruction) error {
	c.branchIf(int64(c.gprD(i.Rs)) >= 0, i)
	return nil
}

func opBLTZL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(int64(c.gprD(i.Rs)) < 0, i)
	return nil
}

func opBGEZL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(int64(c.gprD(i.Rs)) >= 0, i)
	return nil
}

// The link register is written whether or not the branch is taken.
func opBLTZAL(c *CPU, i cpu.Instruction) error {
	cond := int64(c.gprD(i.Rs)) < 0
	c.link(31)
	c.branchIf(cond, i)

	return nil
}

func opBGEZAL(c *CPU, i cpu.Instruction) error {
	cond := int64(c.gprD(i.Rs)) >= 0
	c.link(31)
	c.branchIf(cond, i)

	return nil
}

func opBLTZALL(c *CPU, i cpu.Instruction) error {
	cond := int64(c.gprD(i.Rs)) < 0
	c.link(31)
	c.branchLikely(cond, i)

	return nil
}

func opBGEZALL(c *CPU, i cpu.Instruction) error {
	cond := int64(c.gprD(i.Rs)) >= 0
	c.link(31)
	c.branchLikely(cond, i)

	return nil
}

func opSYSCALL(c *CPU, _ cpu.Instruction) error {
	n := int32(c.gprW(3))

	c.log.Debugf("syscall %s (%d) at 0x%08x", SyscallName(n), n, c.pc)
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    cpu.HookPosSyscall,
		Item: &cpu.SyscallInfo{
			Unit:   c.name,
			PC:     c.pc,
			Number: n,
			Name:   SyscallName(n),
		},
	})

	c.DoException(c.commonVector(), cpu.ExcSyscall)

	return nil
}

func opBREAK(c *CPU, _ cpu.Instruction) error {
	c.DoException(c.commonVector(), cpu.ExcBreak)
	return nil
}
