package iop

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sarchlab/ps2sim/mem"
)

const base = 0x00001000

func itype(op, rs, rt uint32, imm uint16) uint32 {
	return op<<26 | rs<<21 | rt<<16 | uint32(imm)
}

func rtype(rs, rt, rd, sa, funct uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | sa<<6 | funct
}

const (
	syscall = 0x0000000C
	rfe     = 0x42000010
)

var _ = Describe("CPU", func() {
	var (
		space *mem.Space
		c     *CPU
		irq   bool
	)

	load := func(addr uint32, words ...uint32) {
		for k, w := range words {
			Expect(space.Write32(addr+uint32(4*k), w)).To(Succeed())
		}
	}

	step := func(n int) {
		for k := 0; k < n; k++ {
			Expect(c.Step()).To(Succeed())
		}
	}

	BeforeEach(func() {
		space = mem.NewSpace("iop", mem.IOPPageTableLimit, mem.TranslateIOP)
		Expect(space.RegisterRegion(0, 0x10000, 0xFFFF, make([]byte, 0x10000))).
			To(Succeed())

		irq = false
		c = MakeBuilder().
			WithBus(space).
			WithInterruptLine(intc.LineFunc(func() bool { return irq })).
			Build("iop")
		c.COP0().Write(Status, 0)
		c.SetPC(base)
	})

	It("should discard writes to r0", func() {
		load(base, itype(0x09, 0, 0, 5))
		step(1)

		Expect(c.GPR(0)).To(BeZero())
	})

	It("should execute the delay slot before the branch target", func() {
		load(base,
			itype(0x04, 0, 0, 2), // beq r0, r0, +8
			itype(0x09, 0, 1, 5), // addiu r1, r0, 5
		)
		step(2)

		Expect(c.PC()).To(Equal(uint32(base + 12)))
		Expect(c.GPR(1)).To(Equal(uint32(5)))
	})

	It("should push the interrupt stack on exception and pop it on RFE", func() {
		load(base, syscall)
		load(0x80, rfe)
		c.COP0().Write(Status, 0x0D) // KUp=1 IEp=0 KUc=0 IEc=1 plus bit 3

		step(1)

		Expect(c.PC()).To(Equal(uint32(0x80000080)))
		Expect(c.COP0().Reg(EPC)).To(Equal(uint32(base)))
		Expect(c.COP0().Reg(Status) & 0x3F).To(Equal(uint32(0x34)))
		Expect(c.COP0().Reg(Cause) & CauseExcCode >> 2).To(Equal(uint32(cpu.ExcSyscall)))

		step(1)
		Expect(c.COP0().Reg(Status) & 0x3F).To(Equal(uint32(0x3D)))
	})

	It("should use the boot vector when BEV is set", func() {
		load(base, syscall)
		c.COP0().Write(Status, StatusBEV)

		step(1)

		Expect(c.PC()).To(Equal(uint32(0xBFC00180)))
	})

	It("should take an interrupt when IEc and IM2 are set", func() {
		load(base, 0, 0)
		c.COP0().Write(Status, StatusIEc|CauseIP2)
		irq = true

		step(1)

		Expect(c.PC()).To(Equal(uint32(0x80000080)))
		Expect(c.COP0().Reg(EPC)).To(Equal(uint32(base + 4)))
		Expect(c.COP0().Reg(Status) & StatusIEc).To(BeZero())
	})

	It("should record the branch as EPC for an interrupt before a delay slot", func() {
		load(base,
			itype(0x04, 0, 0, 8), // beq r0, r0, +32
			0,
		)
		c.COP0().Write(Status, StatusIEc|CauseIP2)
		irq = true

		step(1)

		Expect(c.COP0().Reg(EPC)).To(Equal(uint32(base)))
		Expect(c.COP0().Reg(Cause) & CauseBD).NotTo(BeZero())
	})

	It("should drop stores while the cache is isolated", func() {
		load(base, itype(0x2B, 0, 1, 0x2000)) // sw r1, 0x2000(r0)
		c.SetGPR(1, 0xDEADBEEF)
		c.COP0().Write(Status, StatusIsC)

		step(1)

		Expect(space.Read32(0x2000)).To(BeZero())
	})

	It("should multiply and divide", func() {
		load(base,
			rtype(1, 2, 0, 0, 0x18), // mult r1, r2
			rtype(0, 0, 3, 0, 0x12), // mflo r3
			rtype(0, 0, 4, 0, 0x10), // mfhi r4
			rtype(1, 2, 0, 0, 0x1B), // divu r1, r2
			rtype(0, 0, 5, 0, 0x12), // mflo r5
		)
		c.SetGPR(1, 0xFFFFFFFF)
		c.SetGPR(2, 2)

		step(5)

		Expect(c.GPR(3)).To(Equal(uint32(0xFFFFFFFE)))
		Expect(c.GPR(4)).To(Equal(uint32(0xFFFFFFFF)))
		Expect(c.GPR(5)).To(Equal(uint32(0x7FFFFFFF)))
	})

	It("should sign extend byte loads", func() {
		Expect(space.Write8(0x2000, 0x80)).To(Succeed())
		load(base,
			itype(0x20, 0, 1, 0x2000), // lb
			itype(0x24, 0, 2, 0x2000), // lbu
		)

		step(2)

		Expect(c.GPR(1)).To(Equal(uint32(0xFFFFFF80)))
		Expect(c.GPR(2)).To(Equal(uint32(0x80)))
	})

	It("should report unimplemented instructions", func() {
		load(base, 0x12<<26) // cop2 does not exist on this core

		err := c.Step()

		Expect(errors.Is(err, cpu.ErrUnimplemented)).To(BeTrue())
		Expect(c.PC()).To(Equal(uint32(base)))
	})
})
