package eedma

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/dma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/mem"
	"github.com/sirupsen/logrus"
)

type recordingPort struct {
	got    []bits.U128
	supply []bits.U128
	full   bool
}

func (p *recordingPort) PushQuad(q bits.U128) bool {
	if p.full {
		return false
	}

	p.got = append(p.got, q)

	return true
}

func (p *recordingPort) PullQuad() (bits.U128, bool) {
	if len(p.supply) == 0 {
		return bits.U128{}, false
	}

	q := p.supply[0]
	p.supply = p.supply[1:]

	return q, true
}

func tag(qwc, id uint32, irq bool, addr uint32) bits.U128 {
	lo := uint64(qwc) | uint64(id)<<28 | uint64(addr)<<32
	if irq {
		lo |= 1 << 31
	}

	return bits.U128{Lo: lo}
}

func chreg(ch int, reg uint32) uint32 {
	return ChannelBase(ch) + reg
}

var _ = Describe("DMAC", func() {
	var (
		space *mem.Space
		port  *recordingPort
		d     *DMAC
	)

	BeforeEach(func() {
		l := logrus.New()
		l.SetOutput(io.Discard)

		space = mem.NewSpace("ee", mem.EEPageTableLimit, mem.TranslateEE)
		Expect(space.RegisterRegion(0, 1<<20, 1<<20-1, make([]byte, 1<<20))).To(Succeed())
		Expect(space.RegisterRegion(mem.ScratchpadBase, mem.ScratchpadSize,
			mem.ScratchpadSize-1, make([]byte, mem.ScratchpadSize))).To(Succeed())

		port = &recordingPort{}
		d = MakeBuilder().
			WithMemory(space).
			WithLogger(logrus.NewEntry(l)).
			WithPort(GIF, port).
			WithPort(SIF0, port).
			Build("ee-dmac")
		d.Store(DCTRL, 4, ctrlDMAE)
	})

	fill := func(addr uint32, n int) {
		for i := 0; i < n; i++ {
			q := bits.Quad(uint32(i), uint32(i)+1, uint32(i)+2, uint32(i)+3)
			Expect(space.WritePhys128(addr+uint32(i)*16, q)).To(Succeed())
		}
	}

	It("should finish a normal transfer after QWC ticks", func() {
		fill(0x1000, 4)
		d.Store(chreg(GIF, RegMADR), 4, 0x1000)
		d.Store(chreg(GIF, RegQWC), 4, 4)
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR|CHCRDir)

		d.Run(3)
		Expect(d.Busy(GIF)).To(BeTrue())

		d.Run(1)
		Expect(d.Busy(GIF)).To(BeFalse())
		Expect(d.Stat() & (1 << GIF)).NotTo(BeZero())
		Expect(port.got).To(HaveLen(4))
		Expect(port.got[3].Word(0)).To(Equal(uint32(3)))
		Expect(d.Load(chreg(GIF, RegMADR), 4)).To(Equal(uint64(0x1040)))
		Expect(d.Load(chreg(GIF, RegQWC), 4)).To(BeZero())
	})

	It("should hold transfers while disabled", func() {
		d.Store(DCTRL, 4, 0)
		d.Store(chreg(GIF, RegQWC), 4, 1)
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR)
		d.Run(10)
		Expect(d.Busy(GIF)).To(BeTrue())

		d.Store(DCTRL, 4, ctrlDMAE)
		d.Store(DENABLEW, 4, enableHold)
		d.Run(10)
		Expect(d.Busy(GIF)).To(BeTrue())
		Expect(d.Load(DENABLER, 4)).To(Equal(uint64(enableHold)))
	})

	It("should stall while the port refuses", func() {
		port.full = true
		d.Store(chreg(GIF, RegQWC), 4, 1)
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR)

		d.Run(5)
		Expect(d.Busy(GIF)).To(BeTrue())

		port.full = false
		d.Run(1)
		Expect(d.Busy(GIF)).To(BeFalse())
	})

	It("should clear CIS and toggle CIM through D_STAT", func() {
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR)
		d.Run(1)
		Expect(d.Asserted()).To(BeFalse())

		d.Store(DSTAT, 4, 1<<(16+GIF))
		Expect(d.Asserted()).To(BeTrue())

		d.Store(DSTAT, 4, 1<<GIF)
		Expect(d.Asserted()).To(BeFalse())
		Expect(d.Stat()).To(Equal(uint32(1 << (16 + GIF))))

		d.Store(DSTAT, 4, 1<<(16+GIF))
		Expect(d.Stat()).To(BeZero())
	})

	It("should report the BC0 condition from D_PCR", func() {
		Expect(d.Cond0()).To(BeTrue())

		d.Store(DPCR, 4, 1<<GIF)
		Expect(d.Cond0()).To(BeFalse())

		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR)
		d.Run(1)
		Expect(d.Cond0()).To(BeTrue())
	})

	It("should walk a source chain of cnt, ref and end tags", func() {
		Expect(space.WritePhys128(0x2000, tag(1, TagCNT, false, 0))).To(Succeed())
		Expect(space.WritePhys128(0x2010, bits.Quad(0xA, 0, 0, 0))).To(Succeed())
		Expect(space.WritePhys128(0x2020, tag(2, TagREF, false, 0x3000))).To(Succeed())
		Expect(space.WritePhys128(0x2030, tag(0, TagEND, false, 0))).To(Succeed())
		fill(0x3000, 2)

		d.Store(chreg(GIF, RegTADR), 4, 0x2000)
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR|CHCRDir|ModeChain<<CHCRModShift)
		d.Run(20)

		Expect(d.Busy(GIF)).To(BeFalse())
		Expect(port.got).To(HaveLen(3))
		Expect(port.got[0].Word(0)).To(Equal(uint32(0xA)))
		Expect(port.got[2].Word(0)).To(Equal(uint32(1)))
		Expect(d.Load(chreg(GIF, RegCHCR), 4) >> 28 & 7).To(Equal(uint64(TagEND)))
	})

	It("should return through the address stack", func() {
		Expect(space.WritePhys128(0x2000, tag(0, TagCALL, false, 0x4000))).To(Succeed())
		Expect(space.WritePhys128(0x2010, tag(0, TagEND, false, 0))).To(Succeed())
		Expect(space.WritePhys128(0x4000, tag(1, TagRET, false, 0))).To(Succeed())
		Expect(space.WritePhys128(0x4010, bits.Quad(0xB, 0, 0, 0))).To(Succeed())

		d.Store(chreg(GIF, RegTADR), 4, 0x2000)
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR|CHCRDir|ModeChain<<CHCRModShift)
		d.Run(20)

		Expect(d.Busy(GIF)).To(BeFalse())
		Expect(port.got).To(HaveLen(1))
		Expect(port.got[0].Word(0)).To(Equal(uint32(0xB)))
		Expect(d.Load(chreg(GIF, RegASR0), 4)).To(Equal(uint64(0x2010)))
		Expect(d.Load(chreg(GIF, RegTADR), 4)).To(Equal(uint64(0x2010)))
	})

	It("should stop after an IRQ tag when TIE is set", func() {
		Expect(space.WritePhys128(0x2000, tag(1, TagCNT, true, 0))).To(Succeed())
		Expect(space.WritePhys128(0x2020, tag(1, TagCNT, false, 0))).To(Succeed())

		d.Store(chreg(GIF, RegTADR), 4, 0x2000)
		d.Store(chreg(GIF, RegCHCR), 4,
			CHCRSTR|CHCRDir|CHCRTIE|ModeChain<<CHCRModShift)
		d.Run(20)

		Expect(d.Busy(GIF)).To(BeFalse())
		Expect(port.got).To(HaveLen(1))
	})

	It("should forward the tag when TTE is set", func() {
		t := tag(1, TagEND, false, 0)
		t.Hi = 0x1122334455667788
		Expect(space.WritePhys128(0x2000, t)).To(Succeed())

		d.Store(chreg(GIF, RegTADR), 4, 0x2000)
		d.Store(chreg(GIF, RegCHCR), 4,
			CHCRSTR|CHCRDir|CHCRTTE|ModeChain<<CHCRModShift)
		d.Run(20)

		Expect(port.got).To(HaveLen(2))
		Expect(port.got[0].Lo).To(Equal(uint64(0x1122334455667788)))
	})

	It("should take destination chain tags from the port", func() {
		port.supply = []bits.U128{
			tag(1, TagDCNT, false, 0x5000),
			bits.Quad(7, 7, 7, 7),
			tag(1, TagDEND, false, 0x6000),
			bits.Quad(9, 9, 9, 9),
		}

		d.Store(chreg(SIF0, RegCHCR), 4, CHCRSTR|ModeChain<<CHCRModShift)
		d.Run(20)

		Expect(d.Busy(SIF0)).To(BeFalse())
		Expect(d.Stat() & (1 << SIF0)).NotTo(BeZero())

		q, err := space.ReadPhys128(0x5000)
		Expect(err).NotTo(HaveOccurred())
		Expect(q).To(Equal(bits.Quad(7, 7, 7, 7)))

		q, _ = space.ReadPhys128(0x6000)
		Expect(q).To(Equal(bits.Quad(9, 9, 9, 9)))
	})

	It("should copy into the scratchpad at SADR", func() {
		fill(0x1000, 2)
		d.Store(chreg(ToSPR, RegMADR), 4, 0x1000)
		d.Store(chreg(ToSPR, RegQWC), 4, 2)
		d.Store(chreg(ToSPR, RegSADR), 4, 0x100)
		d.Store(chreg(ToSPR, RegCHCR), 4, CHCRSTR)
		d.Run(2)

		q, _ := space.ReadPhys128(mem.ScratchpadBase + 0x110)
		Expect(q.Word(0)).To(Equal(uint32(1)))
		Expect(d.Load(chreg(ToSPR, RegSADR), 4)).To(Equal(uint64(0x120)))
	})

	It("should abort an interleave transfer without completing it", func() {
		d.Store(chreg(GIF, RegQWC), 4, 1)
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR|ModeInterleave<<CHCRModShift)
		d.Run(1)

		Expect(d.Busy(GIF)).To(BeFalse())
		Expect(d.Stat()).To(BeZero())
		Expect(port.got).To(BeEmpty())
	})

	It("should report finished transfers through hooks", func() {
		var info *dma.TransferInfo
		d.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			info = ctx.Item.(*dma.TransferInfo)
		}))

		d.Store(chreg(GIF, RegQWC), 4, 2)
		d.Store(chreg(GIF, RegCHCR), 4, CHCRSTR|CHCRDir)
		d.Run(2)

		Expect(info).NotTo(BeNil())
		Expect(info.Name).To(Equal("gif"))
		Expect(info.Units).To(Equal(uint64(2)))
	})
})
