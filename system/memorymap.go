package system

import (
	"github.com/sarchlab/ps2sim/dma/eedma"
	"github.com/sarchlab/ps2sim/dma/iopdma"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sarchlab/ps2sim/mem"
	"github.com/sarchlab/ps2sim/sif"
	"github.com/sarchlab/ps2sim/timer"
)

const iopScratchpadMask = mem.PageSize - 1

type region struct {
	base, size, mask uint32
	buf              []byte
}

type window struct {
	name  string
	start uint32
	size  uint32
	dev   mem.Device
	stub  bool
}

func (s *System) eeRegions() []region {
	return []region{
		{0, mem.EERAMSize, mem.EERAMSize - 1, s.eeRAM},
		{mem.EEIOPRAMBase, mem.IOPRAMSize, mem.IOPRAMSize - 1, s.iopRAM},
		{mem.BIOSBase, mem.BIOSSize, mem.BIOSSize - 1, s.rom},
		{mem.ScratchpadBase, mem.ScratchpadSize, mem.ScratchpadSize - 1, s.spr},
	}
}

func (s *System) iopRegions() []region {
	return []region{
		{0, mem.IOPRAMMirrorSize, mem.IOPRAMSize - 1, s.iopRAM},
		{mem.IOPScratchpadBase, mem.PageSize, iopScratchpadMask, s.iopSPR},
		{mem.BIOSBase, mem.BIOSSize, mem.BIOSSize - 1, s.rom},
	}
}

func (s *System) eeWindows() []window {
	return []window{
		{name: "ee-timer", start: timer.EEBase, size: 0x2000, dev: s.eeTimers},
		{name: "ipu-gif-vif", start: 0x10002000, size: 0x6000, stub: true},
		{name: "ee-dmac", start: eedma.ChannelBase(eedma.VIF0), size: 0x6000, dev: s.eeDMAC},
		{name: "ee-dmac-ctrl", start: eedma.DCTRL, size: 0x70, dev: s.eeDMAC},
		{name: "ee-intc", start: intc.EEIStat, size: 0x20, dev: s.eeINTC},
		{name: "sif", start: sif.EEBase, size: 0x70, dev: s.sif.EEDevice()},
		{name: "d-enabler", start: eedma.DENABLER, size: 0x10, dev: s.eeDMAC},
		{name: "d-enablew", start: eedma.DENABLEW, size: 0x10, dev: s.eeDMAC},
		{name: "ee-misc", start: 0x1000F000, size: 0x1000, stub: true},
		{name: "vu-mem", start: 0x11000000, size: 0x10000, stub: true},
		{name: "gs-priv", start: 0x12000000, size: 0x2000, stub: true},
	}
}

func (s *System) iopWindows() []window {
	return []window{
		{name: "sif", start: sif.IOPBase, size: 0x70, dev: s.sif.IOPDevice()},
		{name: "iop-intc", start: intc.IOPIStat, size: 0xC, dev: s.iopINTC},
		{name: "iop-dmac", start: iopdma.ChannelBase(iopdma.MDECIn), size: 0x80, dev: s.iopDMAC},
		{name: "iop-dmac2", start: iopdma.ChannelBase(iopdma.SPU2Core1), size: 0x80, dev: s.iopDMAC},
		{name: "iop-timer", start: timer.IOPBase0, size: 0x30, dev: s.iopTimers},
		{name: "iop-timer2", start: timer.IOPBase3, size: 0x30, dev: s.iopTimers},
		{name: "iop-hw", start: 0x1F801000, size: 0x1000, stub: true},
		{name: "spu2", start: 0x1F900000, size: 0x10000, stub: true},
		{name: "cdvd", start: 0x1F402000, size: 0x100, stub: true},
		{name: "cache-ctrl", start: mem.IOPCacheControl &^ 0xF, size: 0x10, stub: true},
	}
}

func (s *System) buildSpace(sp *mem.Space, regions []region, windows []window) error {
	for _, r := range regions {
		if err := sp.RegisterRegion(r.base, r.size, r.mask, r.buf); err != nil {
			return err
		}
	}

	for _, w := range windows {
		dev := w.dev
		if w.stub {
			stub := mem.NewStubDevice(w.name, s.log)
			s.stubs = append(s.stubs, stub)
			dev = stub
		}

		sp.MapDevice(w.name, mem.NewRange(w.start, w.size), dev)
	}

	return nil
}
