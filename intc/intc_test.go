package intc

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return logrus.NewEntry(l)
}

var _ = Describe("EE", func() {
	var c *EE

	BeforeEach(func() {
		c = NewEE(quietLog())
	})

	It("should assert only when a requested source is unmasked", func() {
		c.RequestInterrupt(EEVBlankStart)
		Expect(c.Asserted()).To(BeFalse())

		c.WriteMask(1 << EEVBlankStart)
		Expect(c.Asserted()).To(BeTrue())
	})

	It("should toggle the mask on each write", func() {
		c.WriteMask(0x0C)
		Expect(c.Mask()).To(Equal(uint32(0x0C)))

		c.WriteMask(0x0C)
		Expect(c.Mask()).To(Equal(uint32(0)))
	})

	It("should acknowledge with write-one-to-clear", func() {
		c.RequestInterrupt(EEGS)
		c.RequestInterrupt(EETimer0)
		c.WriteStat(1 << EEGS)

		Expect(c.Stat()).To(Equal(uint32(1 << EETimer0)))
	})

	It("should serve its registers over MMIO", func() {
		c.RequestInterrupt(EESBUS)
		c.Store(EEIMask, 4, 1<<EESBUS)

		Expect(c.Load(EEIStat, 4)).To(Equal(uint64(1 << EESBUS)))
		Expect(c.Load(EEIMask, 4)).To(Equal(uint64(1 << EESBUS)))
		Expect(c.Asserted()).To(BeTrue())

		c.Store(EEIStat, 4, 1<<EESBUS)
		Expect(c.Asserted()).To(BeFalse())
	})

	It("should invoke hooks on request", func() {
		var got []uint
		c.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosRequest))
			got = append(got, ctx.Item.(uint))
		}))

		c.RequestInterrupt(EETimer2)

		Expect(got).To(Equal([]uint{uint(EETimer2)}))
	})
})

var _ = Describe("IOP", func() {
	var c *IOP

	BeforeEach(func() {
		c = NewIOP(quietLog())
	})

	It("should need I_CTRL to assert", func() {
		c.RequestInterrupt(IOPDMA)
		c.WriteMask(1 << IOPDMA)
		Expect(c.Asserted()).To(BeFalse())

		c.WriteCtrl(1)
		Expect(c.Asserted()).To(BeTrue())
	})

	It("should assign the mask", func() {
		c.WriteMask(0x0C)
		c.WriteMask(0x0C)

		Expect(c.Mask()).To(Equal(uint32(0x0C)))
	})

	It("should clear I_CTRL when it is read", func() {
		c.Store(IOPICtrl, 4, 1)

		Expect(c.Load(IOPICtrl, 4)).To(Equal(uint64(1)))
		Expect(c.Load(IOPICtrl, 4)).To(Equal(uint64(0)))
	})

	It("should acknowledge the bits written as zero", func() {
		c.RequestInterrupt(IOPVBlank)
		c.RequestInterrupt(IOPTimer5)

		c.Store(IOPIStat, 4, uint64(^uint32(1<<IOPVBlank)))

		Expect(c.Stat()).To(Equal(uint32(1 << IOPTimer5)))
	})

	It("should hold the line while forced", func() {
		c.Force(true)
		Expect(c.Asserted()).To(BeTrue())

		c.Force(false)
		Expect(c.Asserted()).To(BeFalse())
	})
})
