package system

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/config"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/dma/eedma"
	"github.com/sarchlab/ps2sim/dma/iopdma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sarchlab/ps2sim/sched"
	"github.com/sarchlab/ps2sim/sif"
)

// spinBIOS branches to itself forever.
func spinBIOS() []byte {
	return words(0x1000FFFF, 0)
}

func words(ws ...uint32) []byte {
	b := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}

	return b
}

// writeELF writes a one-segment MIPS executable loaded at vaddr.
func writeELF(path string, vaddr uint32, code []byte) {
	const ehsize, phsize = 52, 32

	var buf bytes.Buffer
	ident := [16]byte{0x7F, 'E', 'L', 'F', 1, 1, 1}
	buf.Write(ident[:])

	le := binary.LittleEndian
	hdr := []any{
		uint16(2), uint16(8), uint32(1), vaddr, uint32(ehsize), uint32(0),
		uint32(0), uint16(ehsize), uint16(phsize), uint16(1),
		uint16(40), uint16(0), uint16(0),
	}
	for _, v := range hdr {
		Expect(binary.Write(&buf, le, v)).To(Succeed())
	}

	ph := []uint32{
		1, ehsize + phsize, vaddr, vaddr,
		uint32(len(code)), uint32(len(code)) + 0x100, 7, 0x10,
	}
	for _, v := range ph {
		Expect(binary.Write(&buf, le, v)).To(Succeed())
	}

	buf.Write(code)
	Expect(os.WriteFile(path, buf.Bytes(), 0o600)).To(Succeed())
}

var _ = Describe("System", func() {
	var (
		cfg config.Config
		s   *System
	)

	BeforeEach(func() {
		cfg = config.Default()

		var err error
		s, err = New(cfg, WithBIOS(spinBIOS()))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should refuse to start without a BIOS", func() {
		_, err := New(config.Default())
		Expect(err).To(MatchError(ErrNoBIOS))

		cfg.BIOSPath = filepath.Join(GinkgoT().TempDir(), "missing.bin")
		_, err = New(cfg)
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should start both processors at the reset vector", func() {
		Expect(s.EE().PC()).To(Equal(uint32(cpu.ResetVector)))
		Expect(s.IOP().PC()).To(Equal(uint32(cpu.ResetVector)))
	})

	It("should size a frame for NTSC timing", func() {
		Expect(sched.EEClock.CyclesPer(sched.NTSCFrameRate)).
			To(Equal(uint64(CyclesPerFrame)))
	})

	It("should run a frame at the clock ratios", func() {
		Expect(s.RunFrame()).To(Succeed())

		Expect(s.Frame()).To(Equal(uint64(1)))
		Expect(s.Cycles()).To(Equal(uint64(CyclesPerFrame)))
		Expect(s.EE().Retired()).To(Equal(uint64(CyclesPerFrame)))
		Expect(s.IOP().Retired()).To(Equal(uint64(CyclesPerFrame / 8)))
	})

	It("should raise both vblank interrupts within a frame", func() {
		fired := map[string]uint64{}
		s.Scheduler().AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == sched.HookPosBeforeEvent {
				fired[ctx.Item.(sched.Event).Name] = ctx.Item.(sched.Event).Deadline
			}
		}))

		Expect(s.RunFrame()).To(Succeed())

		Expect(fired).To(HaveKeyWithValue("vblank-start", uint64(VBlankStartCycle)))
		Expect(fired).To(HaveKeyWithValue("vblank-end", uint64(CyclesPerFrame)))
		Expect(s.EEINTC().Stat() & (1<<intc.EEVBlankStart | 1<<intc.EEVBlankEnd)).
			To(Equal(uint32(1<<intc.EEVBlankStart | 1<<intc.EEVBlankEnd)))
		Expect(s.IOPINTC().Stat() & (1 << intc.IOPVBlank)).NotTo(BeZero())
		Expect(s.IOPINTC().Stat() & (1 << intc.IOPEVBlank)).NotTo(BeZero())

		Expect(s.RunFrame()).To(Succeed())
		Expect(fired["vblank-start"]).To(Equal(uint64(VBlankStartCycle + CyclesPerFrame)))
	})

	It("should halt only the faulting processor under the cpu policy", func() {
		s, err := New(cfg, WithBIOS(words(0x4C000000)))
		Expect(err).NotTo(HaveOccurred())

		var faults []FaultInfo
		s.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosFault {
				faults = append(faults, ctx.Item.(FaultInfo))
			}
		}))

		Expect(s.RunFrame()).To(Succeed())
		Expect(s.Halted("ee")).To(BeTrue())
		Expect(s.Halted("iop")).To(BeTrue())
		Expect(s.Fault("ee")).To(MatchError(cpu.ErrUnimplemented))
		Expect(faults).To(HaveLen(2))
		Expect(s.Cycles()).To(Equal(uint64(CyclesPerFrame)))

		Expect(s.Reset()).To(Succeed())
		Expect(s.Halted("ee")).To(BeFalse())
	})

	It("should end the frame under the session policy", func() {
		cfg.HaltOnFault = config.HaltSession
		s, err := New(cfg, WithBIOS(words(0x4C000000)))
		Expect(err).NotTo(HaveOccurred())

		err = s.RunFrame()
		Expect(err).To(MatchError(cpu.ErrUnimplemented))
		Expect(s.Frame()).To(BeZero())
	})

	It("should fast boot an ELF", func() {
		path := filepath.Join(GinkgoT().TempDir(), "game.elf")
		writeELF(path, 0x00100000, words(0x24010007, 0x1000FFFF, 0))

		Expect(s.EESpace().Write32(0x00100010, 0xDEADBEEF)).To(Succeed())

		s.SetGamePath(path)
		Expect(s.Reset()).To(Succeed())
		Expect(s.EE().PC()).To(Equal(uint32(0x00100000)))

		w, err := s.EESpace().Read32(0x00100010)
		Expect(err).NotTo(HaveOccurred())
		Expect(w).To(BeZero())

		Expect(s.SingleStep()).To(Succeed())
		Expect(s.EE().GPR64(1)).To(Equal(uint64(7)))
	})

	It("should reject a game that is not an ELF", func() {
		path := filepath.Join(GinkgoT().TempDir(), "game.elf")
		Expect(os.WriteFile(path, []byte("not an elf"), 0o600)).To(Succeed())

		s.SetGamePath(path)
		Expect(s.Reset()).NotTo(Succeed())
	})

	It("should map the peripherals into both address spaces", func() {
		name, ok := s.EESpace().DeviceAt(intc.EEIMask)
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("ee-intc"))

		name, _ = s.EESpace().DeviceAt(0x1000F100)
		Expect(name).To(Equal("ee-misc"))

		name, _ = s.IOPSpace().DeviceAt(iopdma.DICR2)
		Expect(name).To(Equal("iop-dmac2"))

		Expect(s.EESpace().Write32(0xB000F010, 1<<intc.EETimer0)).To(Succeed())
		Expect(s.EEINTC().Mask()).To(Equal(uint32(1 << intc.EETimer0)))

		Expect(s.EESpace().Write32(sif.EEBase+sif.RegMSFLG, 0x10000)).To(Succeed())
		w, err := s.IOPSpace().Read32(0xBD000000 + sif.RegMSFLG)
		Expect(err).NotTo(HaveOccurred())
		Expect(w).To(Equal(uint32(0x10000)))

		Expect(s.IOPSpace().Write32(0x00000010, 0x1234)).To(Succeed())
		w, _ = s.EESpace().Read32(0xBC000010)
		Expect(w).To(Equal(uint32(0x1234)))
	})

	It("should carry a packet from EE memory to IOP memory through the SIF", func() {
		ee := s.EESpace()
		for i, w := range []uint32{0x2000 | 1<<31, 4, 0, 0, 1, 2, 3, 4} {
			Expect(ee.Write32(0x1000+uint32(i)*4, w)).To(Succeed())
		}

		Expect(ee.Write32(eedma.DCTRL, 1)).To(Succeed())
		Expect(ee.Write32(eedma.ChannelBase(eedma.SIF1)+eedma.RegMADR, 0x1000)).To(Succeed())
		Expect(ee.Write32(eedma.ChannelBase(eedma.SIF1)+eedma.RegQWC, 2)).To(Succeed())
		Expect(ee.Write32(eedma.ChannelBase(eedma.SIF1)+eedma.RegCHCR, eedma.CHCRSTR)).To(Succeed())

		iopSpace := s.IOPSpace()
		Expect(iopSpace.Write32(iopdma.ChannelBase(iopdma.SIF1)+iopdma.RegCHCR,
			iopdma.CHCRStart|iopdma.SyncChain<<iopdma.CHCRSyncShift)).To(Succeed())

		for i := 0; i < 200; i++ {
			Expect(s.SingleStep()).To(Succeed())
		}

		Expect(s.EEDMAC().Busy(eedma.SIF1)).To(BeFalse())
		Expect(s.IOPDMAC().Busy(iopdma.SIF1)).To(BeFalse())

		for i, want := range []uint32{1, 2, 3, 4} {
			w, err := iopSpace.ReadPhys32(0x2000 + uint32(i)*4)
			Expect(err).NotTo(HaveOccurred())
			Expect(w).To(Equal(want))
		}
	})
})

var _ = Describe("Runner", func() {
	It("should hold frames while paused", func() {
		s, err := New(config.Default(), WithBIOS(spinBIOS()))
		Expect(err).NotTo(HaveOccurred())

		r := NewRunner(s)
		r.Pause()
		Expect(r.Paused()).To(BeTrue())

		done := make(chan error, 1)
		go func() { done <- r.Run(1) }()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

		var frame uint64
		r.Inspect(func(s *System) { frame = s.Frame() })
		Expect(frame).To(BeZero())

		r.Continue()
		Eventually(done, 30*time.Second).Should(Receive(BeNil()))
		Expect(s.Frame()).To(Equal(uint64(1)))
	})
})
