package ee

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sarchlab/ps2sim/mem"
)

const base = 0x80001000

var _ = Describe("CPU", func() {
	var (
		space *mem.Space
		c     *CPU
		irq   bool
	)

	load := func(words ...uint32) {
		for k, w := range words {
			Expect(space.Write32(base+uint32(4*k), w)).To(Succeed())
		}
	}

	step := func(n int) {
		for k := 0; k < n; k++ {
			Expect(c.Step()).To(Succeed())
		}
	}

	BeforeEach(func() {
		space = mem.NewSpace("ee", mem.EEPageTableLimit, mem.TranslateEE)
		Expect(space.RegisterRegion(0, 1<<20, 1<<20-1, make([]byte, 1<<20))).
			To(Succeed())

		irq = false
		c = MakeBuilder().
			WithBus(space).
			WithINTC(intc.LineFunc(func() bool { return irq })).
			Build("ee")
		c.COP0().Write(Status, 0)
		c.SetPC(base)
	})

	It("should start at the reset vector", func() {
		c.Reset()

		Expect(c.PC()).To(Equal(uint32(cpu.ResetVector)))
		Expect(c.COP0().Reg(Status) & StatusERL).NotTo(BeZero())
		Expect(c.COP0().Reg(PRId)).To(Equal(uint32(0x2E20)))
	})

	It("should discard writes to r0", func() {
		load(
			itype(0x09, 0, 0, 5),    // addiu r0, r0, 5
			itype(0x0F, 0, 0, 0x1234), // lui r0, 0x1234
		)
		step(2)

		Expect(c.GPR(0).IsZero()).To(BeTrue())

		c.SetGPR(0, bits.Quad(1, 2, 3, 4))
		Expect(c.GPR(0).IsZero()).To(BeTrue())
	})

	It("should execute the delay slot before the branch target", func() {
		load(
			itype(0x04, 0, 0, 2), // beq r0, r0, +8
			itype(0x09, 0, 1, 5), // addiu r1, r0, 5
			nop,
			itype(0x09, 0, 2, 7), // target
		)

		step(1)
		Expect(c.PC()).To(Equal(uint32(base + 4)))

		step(1)
		Expect(c.PC()).To(Equal(uint32(base + 12)))
		Expect(c.GPR64(1)).To(Equal(uint64(5)))
	})

	It("should skip the delay slot of an untaken likely branch", func() {
		load(
			itype(0x15, 0, 0, 4), // bnel r0, r0, +16
			itype(0x09, 0, 1, 5), // addiu r1, r0, 5
			itype(0x09, 0, 2, 7), // addiu r2, r0, 7
		)
		step(2)

		Expect(c.GPR64(1)).To(BeZero())
		Expect(c.GPR64(2)).To(Equal(uint64(7)))
	})

	It("should link past the delay slot", func() {
		load(0x0C000000 | (base+0x100)>>2&0x03FFFFFF) // jal base+0x100
		step(2)

		Expect(c.GPR64(31)).To(Equal(uint64(base + 8)))
		Expect(c.PC()).To(Equal(uint32(base + 0x100)))
	})

	It("should round trip through a syscall and ERET", func() {
		load(syscall)
		Expect(space.Write32(0x80000180, eret)).To(Succeed())

		step(1)
		cop := c.COP0()
		Expect(c.PC()).To(Equal(uint32(0x80000180)))
		Expect(cop.Reg(EPC)).To(Equal(uint32(base)))
		Expect(cop.Reg(Cause) & CauseExcCode >> 2).To(Equal(uint32(cpu.ExcSyscall)))
		Expect(cop.Reg(Status) & StatusEXL).NotTo(BeZero())

		step(1)
		Expect(c.PC()).To(Equal(uint32(base)))
		Expect(cop.Reg(Status) & StatusEXL).To(BeZero())
	})

	It("should point EPC at the branch for a fault in a delay slot", func() {
		load(
			itype(0x04, 0, 0, 8), // beq r0, r0, +32
			syscall,
		)
		step(2)

		Expect(c.COP0().Reg(EPC)).To(Equal(uint32(base)))
		Expect(c.COP0().Reg(Cause) & CauseBD).NotTo(BeZero())
		Expect(c.PC()).To(Equal(uint32(0x80000180)))
	})

	It("should return from an error level exception through ErrorEPC", func() {
		load(eret)
		c.COP0().Write(Status, StatusERL)
		c.COP0().Write(ErrorEPC, 0x80004000)

		step(1)

		Expect(c.PC()).To(Equal(uint32(0x80004000)))
		Expect(c.COP0().Reg(Status) & StatusERL).To(BeZero())
	})

	It("should clear only the level bit on ERET", func() {
		load(eret)
		c.COP0().Write(Status, StatusEXL|StatusIE|2<<3|StatusEIE)
		c.COP0().Write(EPC, 0x80004000)

		step(1)

		Expect(c.PC()).To(Equal(uint32(0x80004000)))
		Expect(c.COP0().Reg(Status)).To(Equal(uint32(StatusIE | 2<<3 | StatusEIE)))
	})

	It("should use the bootstrap vectors when BEV is set", func() {
		load(syscall)
		c.COP0().Write(Status, StatusBEV)

		step(1)

		Expect(c.PC()).To(Equal(uint32(0xBFC00380)))
	})

	It("should take an interrupt from the INTC line", func() {
		load(nop, nop)
		c.COP0().Write(Status, StatusIE|StatusEIE|CauseIP2)
		irq = true

		step(1)

		Expect(c.PC()).To(Equal(uint32(0x80000200)))
		Expect(c.COP0().Reg(EPC)).To(Equal(uint32(base + 4)))
		Expect(c.COP0().Reg(Cause) & CauseIP2).NotTo(BeZero())
		Expect(c.COP0().Reg(Cause) & CauseExcCode).To(BeZero())
	})

	It("should not take an interrupt without EIE", func() {
		load(nop, nop)
		c.COP0().Write(Status, StatusIE|CauseIP2)
		irq = true

		step(1)

		Expect(c.PC()).To(Equal(uint32(base + 4)))
	})

	It("should raise IP7 when Count reaches Compare", func() {
		load(nop, nop, nop)
		c.COP0().Write(Count, 0)
		c.COP0().Write(Compare, 2)

		step(2)
		Expect(c.COP0().Reg(Cause) & CauseIP7).NotTo(BeZero())

		c.COP0().Write(Compare, 100)
		Expect(c.COP0().Reg(Cause) & CauseIP7).To(BeZero())
	})

	It("should keep hardware cause bits from MTC0", func() {
		c.COP0().Write(Cause, 0xFFFFFFFF)

		Expect(c.COP0().Reg(Cause)).To(Equal(uint32(CauseIP0 | CauseIP1)))
	})

	It("should keep TLB registers as plain storage", func() {
		load(
			copOp(0, 0x04, 1, ContextReg, 0, 0), // mtc0 r1, Context
			copOp(0, 0x00, 2, ContextReg, 0, 0), // mfc0 r2, Context
		)
		c.SetGPR64(1, 0x00123450)

		step(2)

		Expect(c.COP0().Reg(ContextReg)).To(Equal(uint32(0x00123450)))
		Expect(c.GPR(2).Word(0)).To(Equal(uint32(0x00123450)))
	})

	It("should raise an overflow exception on ADD", func() {
		load(rtype(1, 2, 3, 0, 0x20)) // add r3, r1, r2
		c.SetGPR64(1, 0x7FFFFFFF)
		c.SetGPR64(2, 1)
		c.SetGPR64(3, 99)

		step(1)

		Expect(c.GPR64(3)).To(Equal(uint64(99)))
		Expect(c.COP0().Reg(Cause) & CauseExcCode >> 2).To(Equal(uint32(cpu.ExcOverflow)))
	})

	It("should raise an address error on a misaligned load", func() {
		load(itype(0x23, 1, 2, 2)) // lw r2, 2(r1)
		c.SetGPR64(1, 0x80002000)

		step(1)

		Expect(c.COP0().Reg(BadVAddr)).To(Equal(uint32(0x80002002)))
		Expect(c.COP0().Reg(Cause) & CauseExcCode >> 2).To(Equal(uint32(cpu.ExcAdEL)))
	})

	It("should report unimplemented instructions", func() {
		load(0x3B << 26)

		err := c.Step()

		Expect(errors.Is(err, cpu.ErrUnimplemented)).To(BeTrue())
		var ue *cpu.UnimplementedError
		Expect(errors.As(err, &ue)).To(BeTrue())
		Expect(ue.PC).To(Equal(uint32(base)))
		Expect(c.PC()).To(Equal(uint32(base)))
	})

	It("should report unmapped loads", func() {
		load(itype(0x23, 1, 2, 0))
		c.SetGPR64(1, 0xBF801234)

		err := c.Step()

		Expect(errors.Is(err, mem.ErrUnmapped)).To(BeTrue())
	})

	It("should invoke exception hooks", func() {
		var infos []*cpu.ExceptionInfo
		c.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == cpu.HookPosException {
				infos = append(infos, ctx.Item.(*cpu.ExceptionInfo))
			}
		}))
		load(syscall)

		step(1)

		Expect(infos).To(HaveLen(1))
		Expect(infos[0].Code).To(Equal(cpu.ExcSyscall))
		Expect(infos[0].EPC).To(Equal(uint32(base)))
	})

	It("should name syscalls from $v1", func() {
		Expect(SyscallName(0x3C)).To(Equal("SetupThread"))
		Expect(SyscallName(-0x10)).To(Equal("AddIntcHandler"))
		Expect(SyscallName(0x200)).To(Equal("syscall_200"))
	})

	Context("integer", func() {
		It("should write the product to rd, LO and HI", func() {
			load(rtype(1, 2, 3, 0, 0x18)) // mult r3, r1, r2
			c.SetGPR64(1, uint64(0xFFFFFFFFFFFFFFFE))
			c.SetGPR64(2, 0x40000000)

			step(1)

			Expect(c.GPR64(3)).To(Equal(uint64(0xFFFFFFFF80000000)))
			Expect(c.LO().Lo).To(Equal(uint64(0xFFFFFFFF80000000)))
			Expect(c.HI().Lo).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))
		})

		It("should use pipeline 1 for MULT1", func() {
			load(mmiOp(1, 2, 0, 0, 0x18))
			c.SetGPR64(1, 3)
			c.SetGPR64(2, 4)

			step(1)

			Expect(c.LO().Hi).To(Equal(uint64(12)))
			Expect(c.LO().Lo).To(BeZero())
		})

		It("should follow the hardware on division by zero", func() {
			load(rtype(1, 2, 0, 0, 0x1A)) // div r1, r2
			c.SetGPR64(1, uint64(0xFFFFFFFFFFFFFFF9))

			step(1)

			Expect(c.LO().Lo).To(Equal(uint64(1)))
			Expect(c.HI().Lo).To(Equal(uint64(0xFFFFFFFFFFFFFFF9)))
		})

		It("should assemble an unaligned word with LWL and LWR", func() {
			Expect(space.Write32(0x80002000, 0x44332211)).To(Succeed())
			Expect(space.Write32(0x80002004, 0x88776655)).To(Succeed())
			load(
				itype(0x22, 1, 2, 4), // lwl r2, 4(r1)
				itype(0x26, 1, 2, 1), // lwr r2, 1(r1)
			)
			c.SetGPR64(1, 0x80002000)

			step(2)

			Expect(uint32(c.GPR64(2))).To(Equal(uint32(0x55443322)))
		})

		It("should store and load quadwords", func() {
			load(
				itype(0x1F, 1, 2, 0), // sq r2, 0(r1)
				itype(0x1E, 1, 3, 8), // lq r3, 8(r1)
			)
			c.SetGPR64(1, 0x80002000)
			c.SetGPR(2, bits.Quad(1, 2, 3, 4))

			step(2)

			Expect(c.GPR(3)).To(Equal(bits.Quad(1, 2, 3, 4)))
		})

		It("should shift doublewords", func() {
			load(rtype(0, 1, 2, 4, 0x3C)) // dsll32 r2, r1, 4
			c.SetGPR64(1, 1)

			step(1)

			Expect(c.GPR64(2)).To(Equal(uint64(1) << 36))
		})

		It("should trap on TEQ", func() {
			load(rtype(1, 2, 0, 0, 0x34))
			c.SetGPR64(1, 7)
			c.SetGPR64(2, 7)

			step(1)

			Expect(c.COP0().Reg(Cause) & CauseExcCode >> 2).To(Equal(uint32(cpu.ExcTrap)))
		})
	})

	Context("MMI", func() {
		It("should add words in parallel", func() {
			load(mmiOp(1, 2, 3, 0x00, 0x08)) // paddw
			c.SetGPR(1, bits.Quad(1, 2, 3, 0xFFFFFFFF))
			c.SetGPR(2, bits.Quad(10, 20, 30, 1))

			step(1)

			Expect(c.GPR(3)).To(Equal(bits.Quad(11, 22, 33, 0)))
		})

		It("should saturate signed halfword adds", func() {
			load(mmiOp(1, 2, 3, 0x14, 0x08)) // paddsh
			c.SetGPR(1, bits.U128{Lo: 0x7FFF})
			c.SetGPR(2, bits.U128{Lo: 0x0001})

			step(1)

			Expect(c.GPR(3).Half(0)).To(Equal(uint16(0x7FFF)))
		})

		It("should interleave low words", func() {
			load(mmiOp(1, 2, 3, 0x12, 0x08)) // pextlw
			c.SetGPR(1, bits.Quad(0xA0, 0xA1, 0xA2, 0xA3))
			c.SetGPR(2, bits.Quad(0xB0, 0xB1, 0xB2, 0xB3))

			step(1)

			Expect(c.GPR(3)).To(Equal(bits.Quad(0xB0, 0xA0, 0xB1, 0xA1)))
		})

		It("should copy doublewords with PCPYLD and PCPYUD", func() {
			load(
				mmiOp(1, 2, 3, 0x0E, 0x09), // pcpyld
				mmiOp(1, 2, 4, 0x0E, 0x29), // pcpyud
			)
			c.SetGPR(1, bits.U128{Lo: 1, Hi: 2})
			c.SetGPR(2, bits.U128{Lo: 3, Hi: 4})

			step(2)

			Expect(c.GPR(3)).To(Equal(bits.U128{Lo: 3, Hi: 1}))
			Expect(c.GPR(4)).To(Equal(bits.U128{Lo: 2, Hi: 4}))
		})

		It("should funnel shift by SA bytes", func() {
			load(
				itype(0x01, 0, 0x18, 4),    // mtsab r0, 4
				mmiOp(1, 2, 3, 0x1B, 0x28), // qfsrv
			)
			c.SetGPR(1, bits.Quad(0xA0, 0xA1, 0xA2, 0xA3))
			c.SetGPR(2, bits.Quad(0xB0, 0xB1, 0xB2, 0xB3))

			step(2)

			Expect(c.SA()).To(Equal(uint32(4)))
			Expect(c.GPR(3)).To(Equal(bits.Quad(0xB1, 0xB2, 0xB3, 0xA0)))
		})

		It("should count leading sign bits", func() {
			load(mmiOp(1, 0, 2, 0, 0x04)) // plzcw
			c.SetGPR64(1, 0xFFFFFFFF_00000001)

			step(1)

			Expect(c.GPR(2).Word(0)).To(Equal(uint32(30)))
			Expect(c.GPR(2).Word(1)).To(Equal(uint32(31)))
		})

		It("should move HI and LO with PMFHL.LW and PMTHL.LW", func() {
			load(
				mmiOp(1, 0, 0, 0, 0x31), // pmthl.lw r1
				mmiOp(0, 0, 2, 0, 0x30), // pmfhl.lw r2
			)
			c.SetGPR(1, bits.Quad(1, 2, 3, 4))

			step(2)

			Expect(c.GPR(2)).To(Equal(bits.Quad(1, 2, 3, 4)))
			Expect(c.LO().Word(0)).To(Equal(uint32(1)))
			Expect(c.HI().Word(0)).To(Equal(uint32(2)))
		})

		It("should multiply words 0 and 2", func() {
			load(mmiOp(1, 2, 3, 0x0C, 0x09)) // pmultw
			c.SetGPR(1, bits.Quad(3, 0, 0xFFFFFFFF, 0))
			c.SetGPR(2, bits.Quad(5, 0, 2, 0))

			step(1)

			Expect(c.GPR(3)).To(Equal(bits.U128{Lo: 15, Hi: 0xFFFFFFFFFFFFFFFE}))
			Expect(c.LO().Lo).To(Equal(uint64(15)))
		})

		It("should subtract word products from HI and LO with PMSUBW", func() {
			load(mmiOp(1, 2, 3, 0x04, 0x09)) // pmsubw
			c.lo = bits.Quad(20, 0, 0, 0)
			c.SetGPR(1, bits.Quad(3, 0, 1, 0))
			c.SetGPR(2, bits.Quad(5, 0, 1, 0))

			step(1)

			Expect(c.GPR(3)).To(Equal(bits.U128{Lo: 5, Hi: 0xFFFFFFFFFFFFFFFF}))
			Expect(c.LO().Word(0)).To(Equal(uint32(5)))
			Expect(c.HI().Word(2)).To(Equal(uint32(0xFFFFFFFF)))
		})

		It("should spread halfword products over HI and LO", func() {
			load(mmiOp(1, 2, 3, 0x1C, 0x09)) // pmulth
			c.SetGPR(1, fromHalves([8]uint16{1, 2, 3, 4, 5, 6, 7, 0xFFFF}))
			c.SetGPR(2, fromHalves([8]uint16{10, 10, 10, 10, 10, 10, 10, 2}))

			step(1)

			Expect(c.LO()).To(Equal(bits.Quad(10, 20, 50, 60)))
			Expect(c.HI()).To(Equal(bits.Quad(30, 40, 70, 0xFFFFFFFE)))
			Expect(c.GPR(3)).To(Equal(bits.Quad(10, 30, 50, 70)))
		})

		It("should accumulate halfword products with PMADDH and PMSUBH", func() {
			load(
				mmiOp(1, 2, 3, 0x10, 0x09), // pmaddh
				mmiOp(1, 2, 4, 0x14, 0x09), // pmsubh
			)
			c.lo = bits.Quad(1, 1, 1, 1)
			c.hi = bits.Quad(2, 2, 2, 2)
			c.SetGPR(1, fromHalves([8]uint16{3, 3, 3, 3, 3, 3, 3, 3}))
			c.SetGPR(2, fromHalves([8]uint16{4, 4, 4, 4, 4, 4, 4, 4}))

			step(2)

			Expect(c.GPR(3)).To(Equal(bits.Quad(13, 14, 13, 14)))
			Expect(c.GPR(4)).To(Equal(bits.Quad(1, 2, 1, 2)))
			Expect(c.LO()).To(Equal(bits.Quad(1, 1, 1, 1)))
		})

		It("should add and subtract adjacent products with PHMADH and PHMSBH", func() {
			load(
				mmiOp(1, 2, 3, 0x11, 0x09), // phmadh
				mmiOp(1, 2, 4, 0x15, 0x09), // phmsbh
			)
			c.lo = bits.Quad(9, 9, 9, 9)
			c.hi = bits.Quad(9, 9, 9, 9)
			c.SetGPR(1, fromHalves([8]uint16{1, 2, 3, 4, 5, 6, 7, 8}))
			c.SetGPR(2, fromHalves([8]uint16{2, 2, 2, 2, 2, 2, 2, 2}))

			step(1)

			Expect(c.GPR(3)).To(Equal(bits.Quad(6, 14, 22, 30)))
			Expect(c.LO()).To(Equal(bits.Quad(6, 9, 22, 9)))
			Expect(c.HI()).To(Equal(bits.Quad(14, 9, 30, 9)))

			step(1)

			Expect(c.GPR(4)).To(Equal(bits.Quad(2, 2, 2, 2)))
		})

		It("should divide every word by a halfword with PDIVBW", func() {
			load(
				mmiOp(1, 2, 0, 0x1D, 0x09), // pdivbw
				mmiOp(1, 0, 0, 0x1D, 0x09), // pdivbw by r0
			)
			c.SetGPR(1, bits.Quad(100, 0xFFFFFF9C, 7, 0xFFFFFFFB))
			c.SetGPR(2, bits.Quad(0xFFFF0007, 0, 0, 0))

			step(1)

			Expect(c.LO()).To(Equal(bits.Quad(14, 0xFFFFFFF2, 1, 0)))
			Expect(c.HI()).To(Equal(bits.Quad(2, 0xFFFFFFFE, 0, 0xFFFFFFFB)))

			step(1)

			Expect(c.LO()).To(Equal(bits.Quad(0xFFFFFFFF, 1, 0xFFFFFFFF, 1)))
			Expect(c.HI()).To(Equal(bits.Quad(100, 0xFFFFFF9C, 7, 0xFFFFFFFB)))
		})

		It("should subtract low and add high halfwords with PADSBH", func() {
			load(mmiOp(1, 2, 3, 0x04, 0x28)) // padsbh
			c.SetGPR(1, fromHalves([8]uint16{10, 10, 10, 10, 10, 10, 10, 10}))
			c.SetGPR(2, fromHalves([8]uint16{3, 3, 3, 3, 3, 3, 3, 3}))

			step(1)

			Expect(c.GPR(3)).To(Equal(fromHalves([8]uint16{7, 7, 7, 7, 13, 13, 13, 13})))
		})

		It("should expand and pack 1:5:5:5 pixels", func() {
			load(
				mmiOp(0, 1, 3, 0x1E, 0x08), // pext5
				mmiOp(0, 3, 4, 0x1F, 0x08), // ppac5
			)
			c.SetGPR(1, bits.Quad(0x883F, 0, 0x7FFF, 0))

			step(2)

			Expect(c.GPR(3)).To(Equal(bits.Quad(0x801008F8, 0, 0x00F8F8F8, 0)))
			Expect(c.GPR(4)).To(Equal(bits.Quad(0x883F, 0, 0x7FFF, 0)))
		})
	})

	Context("FPU", func() {
		f32 := math.Float32bits

		It("should add singles", func() {
			load(copOp(1, 0x10, 2, 1, 3, 0x00)) // add.s f3, f1, f2
			c.FPU().SetF(1, 1.5)
			c.FPU().SetF(2, 2.25)

			step(1)

			Expect(c.FPU().F(3)).To(Equal(float32(3.75)))
		})

		It("should clamp overflow to the largest normal", func() {
			load(copOp(1, 0x10, 2, 1, 3, 0x02)) // mul.s
			c.FPU().SetF(1, math.MaxFloat32)
			c.FPU().SetF(2, 2)

			step(1)

			Expect(c.FPU().FPR[3]).To(Equal(uint32(0x7F7FFFFF)))
			Expect(c.FPU().FCR31 & FCR31SO).NotTo(BeZero())
		})

		It("should treat exponent 255 as a number", func() {
			load(copOp(1, 0x10, 2, 1, 3, 0x01)) // sub.s
			c.FPU().FPR[1] = 0x7F800000
			c.FPU().FPR[2] = 0x7F800000

			step(1)

			Expect(c.FPU().FPR[3]).To(Equal(uint32(0)))
		})

		It("should flush denormal results to zero", func() {
			load(copOp(1, 0x10, 2, 1, 3, 0x02)) // mul.s
			c.FPU().FPR[1] = f32(-0x1p-100)
			c.FPU().FPR[2] = f32(0x1p-30)

			step(1)

			Expect(c.FPU().FPR[3]).To(Equal(uint32(0x80000000)))
			Expect(c.FPU().FCR31 & FCR31SU).NotTo(BeZero())
		})

		It("should flag division by zero", func() {
			load(copOp(1, 0x10, 2, 1, 3, 0x03)) // div.s
			c.FPU().SetF(1, -4)

			step(1)

			Expect(c.FPU().FPR[3]).To(Equal(uint32(0xFF7FFFFF)))
			Expect(c.FPU().FCR31 & FCR31D).NotTo(BeZero())
		})

		It("should convert with truncation and saturation", func() {
			load(
				copOp(1, 0x10, 0, 1, 2, 0x24), // cvt.w.s f2, f1
				copOp(1, 0x10, 0, 3, 4, 0x24), // cvt.w.s f4, f3
			)
			c.FPU().SetF(1, -2.75)
			c.FPU().SetF(3, 1e20)

			step(2)

			Expect(int32(c.FPU().FPR[2])).To(Equal(int32(-2)))
			Expect(c.FPU().FPR[4]).To(Equal(uint32(0x7FFFFFFF)))
		})

		It("should branch on the compare condition", func() {
			load(
				copOp(1, 0x10, 2, 1, 0, 0x34), // c.lt.s f1, f2
				copOp(1, 0x08, 1, 0, 0, 0)|2,  // bc1t +8
				nop,
			)
			c.FPU().SetF(1, 1)
			c.FPU().SetF(2, 2)

			step(3)

			Expect(c.PC()).To(Equal(uint32(base + 16)))
		})

		It("should expose FCR0", func() {
			load(copOp(1, 0x02, 1, 0, 0, 0)) // cfc1 r1, fcr0

			step(1)

			Expect(c.GPR64(1)).To(Equal(uint64(0x2E00)))
		})
	})

	Context("COP2", func() {
		It("should move quadwords to and from VU0", func() {
			load(
				copOp(2, 0x05, 1, 4, 0, 0), // qmtc2 r1, vf4
				copOp(2, 0x01, 2, 4, 0, 0), // qmfc2 r2, vf4
			)
			c.SetGPR(1, bits.Quad(1, 2, 3, 4))

			step(2)

			Expect(c.GPR(2)).To(Equal(bits.Quad(1, 2, 3, 4)))
		})

		It("should keep VF0 constant", func() {
			load(copOp(2, 0x05, 1, 0, 0, 0))
			c.SetGPR(1, bits.Quad(1, 2, 3, 4))

			step(1)

			Expect(c.VU0().VF[0]).To(Equal(bits.Quad(0, 0, 0, 0x3F800000)))
		})
	})
})
