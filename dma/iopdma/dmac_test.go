package iopdma

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/mem"
	"github.com/sarchlab/ps2sim/sif"
	"github.com/sirupsen/logrus"
)

type wordPort struct {
	got    []uint32
	supply []uint32
}

func (p *wordPort) PushWord(w uint32) bool {
	p.got = append(p.got, w)
	return true
}

func (p *wordPort) PullWord() (uint32, bool) {
	if len(p.supply) == 0 {
		return 0, false
	}

	w := p.supply[0]
	p.supply = p.supply[1:]

	return w, true
}

var _ = Describe("DMAC", func() {
	var (
		space *mem.Space
		port  *wordPort
		s     *sif.SIF
		irqs  int
		d     *DMAC
	)

	BeforeEach(func() {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log := logrus.NewEntry(l)

		space = mem.NewSpace("iop", mem.IOPPageTableLimit, mem.TranslateIOP)
		Expect(space.RegisterRegion(0, 1<<16, 1<<16-1, make([]byte, 1<<16))).To(Succeed())

		port = &wordPort{}
		s = sif.New(log)
		irqs = 0

		d = MakeBuilder().
			WithMemory(space).
			WithLogger(log).
			WithInterrupt(func() { irqs++ }).
			WithPort(SPU2Core0, port).
			WithPort(SIF0, sif.IOPSIF0Port{S: s}).
			WithPort(SIF1, sif.IOPSIF1Port{S: s}).
			Build("iop-dmac")
	})

	reg := func(ch int, r uint32) uint32 {
		return ChannelBase(ch) + r
	}

	It("should move a burst of size times count words", func() {
		for i := uint32(0); i < 6; i++ {
			Expect(space.WritePhys32(0x100+i*4, 0x10+i)).To(Succeed())
		}

		d.Store(reg(SPU2Core0, RegMADR), 4, 0x100)
		d.Store(reg(SPU2Core0, RegBCR), 4, 2<<16|3)
		d.Store(reg(SPU2Core0, RegCHCR), 4, CHCRStart|CHCRFromRAM)

		d.Run(5)
		Expect(d.Busy(SPU2Core0)).To(BeTrue())

		d.Run(1)
		Expect(d.Busy(SPU2Core0)).To(BeFalse())
		Expect(port.got).To(Equal([]uint32{0x10, 0x11, 0x12, 0x13, 0x14, 0x15}))
	})

	It("should count down blocks in slice mode", func() {
		port.supply = []uint32{1, 2, 3, 4}

		d.Store(reg(SPU2Core0, RegMADR), 4, 0x200)
		d.Store(reg(SPU2Core0, RegBCR), 4, 2<<16|2)
		d.Store(reg(SPU2Core0, RegCHCR), 4, CHCRStart|SyncSlice<<CHCRSyncShift)

		d.Run(2)
		Expect(d.Load(reg(SPU2Core0, RegBCR), 4) >> 16).To(Equal(uint64(1)))

		d.Run(2)
		Expect(d.Busy(SPU2Core0)).To(BeFalse())

		w, _ := space.ReadPhys32(0x20C)
		Expect(w).To(Equal(uint32(4)))
	})

	It("should merge halfword writes to BCR", func() {
		d.Store(reg(SPU2Core0, RegBCR), 2, 0x10)
		d.Store(reg(SPU2Core0, RegBCR)+2, 2, 0x3)
		Expect(d.Load(reg(SPU2Core0, RegBCR), 4)).To(Equal(uint64(0x30010)))
	})

	It("should raise the master flag only for enabled channels", func() {
		d.Store(reg(SPU2Core0, RegBCR), 4, 1)
		d.Store(reg(SPU2Core0, RegCHCR), 4, CHCRStart|CHCRFromRAM)
		d.Run(1)
		Expect(d.DICR()).To(BeZero())
		Expect(irqs).To(BeZero())

		d.Store(DICR, 4, DICRMasterEnable|1<<(DICREnableShift+SPU2Core0))
		d.Store(reg(SPU2Core0, RegCHCR), 4, CHCRStart|CHCRFromRAM)
		d.Run(1)

		Expect(d.DICR() & (1 << (DICRFlagShift + SPU2Core0))).NotTo(BeZero())
		Expect(d.DICR() & DICRMasterFlag).NotTo(BeZero())
		Expect(irqs).To(Equal(1))
	})

	It("should clear flags written as one", func() {
		d.Store(DICR2, 4, 1<<(DICREnableShift+SPU2Core1-7))
		d.Store(DICR, 4, DICRMasterEnable)
		d.Store(reg(SPU2Core1, RegBCR), 4, 1)
		d.Store(reg(SPU2Core1, RegCHCR), 4, CHCRStart|CHCRFromRAM)
		d.Run(1)

		Expect(d.DICR2() & (1 << (DICRFlagShift + SPU2Core1 - 7))).NotTo(BeZero())
		Expect(d.DICR() & DICRMasterFlag).NotTo(BeZero())

		d.Store(DICR2, 4, 1<<(DICREnableShift+SPU2Core1-7)|1<<(DICRFlagShift+SPU2Core1-7))
		Expect(d.DICR2() & dicrFlags).To(BeZero())
		Expect(d.DICR() & DICRMasterFlag).To(BeZero())
	})

	It("should place byte writes to DICR at their lane", func() {
		d.Store(DICR+2, 1, (DICRMasterEnable|1<<(DICREnableShift+SPU2Core0))>>16)
		Expect(d.DICR()).To(Equal(uint32(DICRMasterEnable | 1<<(DICREnableShift+SPU2Core0))))

		d.Store(reg(SPU2Core0, RegBCR), 4, 1)
		d.Store(reg(SPU2Core0, RegCHCR), 4, CHCRStart|CHCRFromRAM)
		d.Run(1)
		Expect(d.DICR() & DICRMasterFlag).NotTo(BeZero())

		d.Store(DICR, 2, 0)
		Expect(d.DICR() & (1 << (DICRFlagShift + SPU2Core0))).NotTo(BeZero())

		d.Store(DICR+3, 1, 1<<SPU2Core0)
		Expect(d.DICR() & dicrFlags).To(BeZero())
		Expect(d.DICR() & DICRMasterFlag).To(BeZero())
		Expect(d.DICR() & DICRMasterEnable).NotTo(BeZero())
	})

	It("should merge byte writes to DPCR", func() {
		d.Store(DPCR, 4, 0x07654321)
		d.Store(DPCR+1, 1, 0xAB)
		Expect(d.Load(DPCR, 4)).To(Equal(uint64(0x0765AB21)))
	})

	It("should request the interrupt when forced", func() {
		d.Store(DICR, 4, DICRForce)
		Expect(irqs).To(Equal(1))
		Expect(d.Load(DICR, 4) & DICRMasterFlag).NotTo(BeZero())
	})

	It("should stream a SIF0 chain into the FIFO with the EE tag first", func() {
		Expect(space.WritePhys32(0x1000, 0x2000|tagEnd)).To(Succeed())
		Expect(space.WritePhys32(0x1004, 2)).To(Succeed())
		Expect(space.WritePhys32(0x1008, 0xEE00EE00)).To(Succeed())
		Expect(space.WritePhys32(0x100C, 0x00000001)).To(Succeed())
		Expect(space.WritePhys32(0x2000, 0xAAAA)).To(Succeed())
		Expect(space.WritePhys32(0x2004, 0xBBBB)).To(Succeed())

		d.Store(reg(SIF0, RegTADR), 4, 0x1000)
		d.Store(reg(SIF0, RegCHCR), 4,
			CHCRStart|CHCRFromRAM|CHCRTagFwd|SyncChain<<CHCRSyncShift)
		d.Run(20)

		Expect(d.Busy(SIF0)).To(BeFalse())

		fifo := s.SIF0()
		Expect(fifo.Len()).To(Equal(8))

		var got []uint32
		for fifo.Len() > 0 {
			w, _ := fifo.Pop()
			got = append(got, w)
		}

		Expect(got[:4]).To(Equal([]uint32{0xEE00EE00, 1, 0, 0}))
		Expect(got[4:6]).To(Equal([]uint32{0xAAAA, 0xBBBB}))
	})

	It("should write a SIF1 packet to the address in its header", func() {
		fifo := s.SIF1()
		for _, w := range []uint32{0x3000 | tagEnd, 4, 0, 0, 5, 6, 7, 8} {
			Expect(fifo.Push(w)).To(BeTrue())
		}

		d.Store(reg(SIF1, RegCHCR), 4, CHCRStart|SyncChain<<CHCRSyncShift)
		d.Run(20)

		Expect(d.Busy(SIF1)).To(BeFalse())

		for i, want := range []uint32{5, 6, 7, 8} {
			w, err := space.ReadPhys32(0x3000 + uint32(i)*4)
			Expect(err).NotTo(HaveOccurred())
			Expect(w).To(Equal(want))
		}
	})

	It("should stall SIF1 until the payload arrives", func() {
		fifo := s.SIF1()
		for _, w := range []uint32{0x3000 | tagEnd, 4, 0, 0} {
			fifo.Push(w)
		}

		d.Store(reg(SIF1, RegCHCR), 4, CHCRStart|SyncChain<<CHCRSyncShift)
		d.Run(20)
		Expect(d.Busy(SIF1)).To(BeTrue())

		for _, w := range []uint32{1, 2, 3, 4} {
			fifo.Push(w)
		}

		d.Run(20)
		Expect(d.Busy(SIF1)).To(BeFalse())
	})

	It("should abort linked-list transfers", func() {
		d.Store(reg(GPU, RegCHCR), 4, CHCRStart|SyncLinkedList<<CHCRSyncShift)
		d.Run(1)
		Expect(d.Busy(GPU)).To(BeFalse())
	})
})
