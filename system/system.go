// Package system assembles the EE, the IOP and their peripherals into one
// emulated console and drives it frame by frame.
package system

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/ps2sim/config"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/cpu/ee"
	"github.com/sarchlab/ps2sim/cpu/iop"
	"github.com/sarchlab/ps2sim/dma/eedma"
	"github.com/sarchlab/ps2sim/dma/iopdma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sarchlab/ps2sim/mem"
	"github.com/sarchlab/ps2sim/sched"
	"github.com/sarchlab/ps2sim/sif"
	"github.com/sarchlab/ps2sim/timer"
	"github.com/sirupsen/logrus"
)

// Frame timing in EE cycles: 294.912 MHz at 59.94 Hz.
const (
	CyclesPerFrame   = 4920115
	VBlankStartCycle = 4489019
)

// ErrNoBIOS is returned when no BIOS image could be loaded.
var ErrNoBIOS = errors.New("no BIOS image")

// System owns every component of one emulation session.
type System struct {
	*hooking.HookableBase

	cfg      config.Config
	log      *logrus.Entry
	bios     []byte
	gamePath string

	eeRAM  []byte
	iopRAM []byte
	rom    []byte
	spr    []byte
	iopSPR []byte

	eeSpace  *mem.Space
	iopSpace *mem.Space
	stubs    []*mem.StubDevice

	eeINTC    *intc.EE
	iopINTC   *intc.IOP
	ee        *ee.CPU
	iop       *iop.CPU
	eeDMAC    *eedma.DMAC
	iopDMAC   *iopdma.DMAC
	eeTimers  *timer.EE
	iopTimers *timer.IOP
	sif       *sif.SIF
	sched     *sched.Scheduler

	halted map[string]error
	frame  uint64
	busAcc uint64
	iopAcc uint64

	vblankStart   sched.ID
	vblankEnd     sched.ID
	vblankStartAt uint64
	vblankEndAt   uint64
}

// New builds every component and resets the system. The BIOS comes from
// WithBIOS or, failing that, cfg.BIOSPath.
func New(cfg config.Config, opts ...Option) (*System, error) {
	s := &System{
		HookableBase: hooking.NewHookableBase(),
		cfg:          cfg,
		gamePath:     cfg.GamePath,
		halted:       make(map[string]error),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = logrus.NewEntry(l)
	}

	if s.cfg.Quantum == 0 {
		s.cfg.Quantum = config.DefaultQuantum
	}

	if err := s.loadBIOS(); err != nil {
		return nil, err
	}

	if err := s.build(); err != nil {
		return nil, err
	}

	if err := s.Reset(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *System) loadBIOS() error {
	if s.bios == nil {
		if s.cfg.BIOSPath == "" {
			return ErrNoBIOS
		}

		image, err := os.ReadFile(s.cfg.BIOSPath)
		if err != nil {
			return fmt.Errorf("loading BIOS: %w", err)
		}

		s.bios = image
	}

	switch {
	case len(s.bios) == 0:
		return ErrNoBIOS
	case len(s.bios) > mem.BIOSSize:
		return fmt.Errorf("BIOS image is %d bytes, more than %d", len(s.bios), mem.BIOSSize)
	}

	return nil
}

func (s *System) build() error {
	s.eeRAM = make([]byte, mem.EERAMSize)
	s.iopRAM = make([]byte, mem.IOPRAMSize)
	s.rom = make([]byte, mem.BIOSSize)
	s.spr = make([]byte, mem.ScratchpadSize)
	s.iopSPR = make([]byte, mem.PageSize)

	s.eeSpace = mem.NewSpace("ee", mem.EEPageTableLimit, mem.TranslateEE)
	s.iopSpace = mem.NewSpace("iop", mem.IOPPageTableLimit, mem.TranslateIOP)

	s.sched = sched.New()
	s.eeINTC = intc.NewEE(s.log)
	s.iopINTC = intc.NewIOP(s.log)
	s.sif = sif.New(s.log)
	s.eeTimers = timer.NewEE(s.log, s.eeINTC)
	s.iopTimers = timer.NewIOP(s.log, s.iopINTC)

	s.eeDMAC = eedma.MakeBuilder().
		WithMemory(s.eeSpace).
		WithLogger(s.log).
		WithPort(eedma.SIF0, sif.EESIF0Port{S: s.sif}).
		WithPort(eedma.SIF1, sif.EESIF1Port{S: s.sif}).
		Build("ee-dmac")

	s.iopDMAC = iopdma.MakeBuilder().
		WithMemory(s.iopSpace).
		WithLogger(s.log).
		WithInterrupt(func() { s.iopINTC.RequestInterrupt(intc.IOPDMA) }).
		WithPort(iopdma.SIF0, sif.IOPSIF0Port{S: s.sif}).
		WithPort(iopdma.SIF1, sif.IOPSIF1Port{S: s.sif}).
		Build("iop-dmac")

	s.ee = ee.MakeBuilder().
		WithBus(s.eeSpace).
		WithLogger(s.log).
		WithINTC(s.eeINTC).
		WithDMAC(s.eeDMAC).
		WithCOP0Condition(s.eeDMAC.Cond0).
		Build("ee")

	s.iop = iop.MakeBuilder().
		WithBus(s.iopSpace).
		WithLogger(s.log).
		WithInterruptLine(s.iopINTC).
		Build("iop")

	if err := s.buildSpace(s.eeSpace, s.eeRegions(), s.eeWindows()); err != nil {
		return err
	}

	return s.buildSpace(s.iopSpace, s.iopRegions(), s.iopWindows())
}

// Reset returns every component to its power-on state, reloads the BIOS and,
// when a game path is set, loads the game for fast boot.
func (s *System) Reset() error {
	clear(s.eeRAM)
	clear(s.iopRAM)
	clear(s.spr)
	clear(s.iopSPR)
	clear(s.rom)
	copy(s.rom, s.bios)

	for _, stub := range s.stubs {
		stub.Reset()
	}

	s.sched.Reset()
	s.eeINTC.Reset()
	s.iopINTC.Reset()
	s.sif.Reset()
	s.eeTimers.Reset()
	s.iopTimers.Reset()
	s.eeDMAC.Reset()
	s.iopDMAC.Reset()
	s.ee.Reset()
	s.iop.Reset()

	clear(s.halted)
	s.frame = 0
	s.busAcc = 0
	s.iopAcc = 0

	s.scheduleVBlanks()

	if s.gamePath == "" {
		return nil
	}

	entry, err := s.loadELF(s.gamePath)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	s.ee.SetPC(entry)
	s.log.WithFields(logrus.Fields{
		"path":  s.gamePath,
		"entry": fmt.Sprintf("0x%08x", entry),
	}).Info("fast boot")

	return nil
}

// SetGamePath records the ELF loaded by the next Reset. An empty path boots
// the BIOS.
func (s *System) SetGamePath(path string) {
	s.gamePath = path
}

// Frame returns the number of completed frames.
func (s *System) Frame() uint64 {
	return s.frame
}

// Cycles returns the number of EE cycles emulated since reset.
func (s *System) Cycles() uint64 {
	return s.sched.Now()
}

// Halted reports whether the named interpreter stopped on a fault.
func (s *System) Halted(name string) bool {
	_, ok := s.halted[name]
	return ok
}

// Fault returns the fault that halted the named interpreter.
func (s *System) Fault(name string) error {
	return s.halted[name]
}

// EE returns the EE interpreter.
func (s *System) EE() *ee.CPU {
	return s.ee
}

// IOP returns the IOP interpreter.
func (s *System) IOP() *iop.CPU {
	return s.iop
}

// EESpace returns the EE address space.
func (s *System) EESpace() *mem.Space {
	return s.eeSpace
}

// IOPSpace returns the IOP address space.
func (s *System) IOPSpace() *mem.Space {
	return s.iopSpace
}

// EEINTC returns the EE interrupt controller.
func (s *System) EEINTC() *intc.EE {
	return s.eeINTC
}

// IOPINTC returns the IOP interrupt controller.
func (s *System) IOPINTC() *intc.IOP {
	return s.iopINTC
}

// EEDMAC returns the EE DMA controller.
func (s *System) EEDMAC() *eedma.DMAC {
	return s.eeDMAC
}

// IOPDMAC returns the IOP DMA controller.
func (s *System) IOPDMAC() *iopdma.DMAC {
	return s.iopDMAC
}

// SIF returns the sub-system interface.
func (s *System) SIF() *sif.SIF {
	return s.sif
}

// Scheduler returns the scheduler.
func (s *System) Scheduler() *sched.Scheduler {
	return s.sched
}

// Hookables returns every component that accepts hooks, the System included.
func (s *System) Hookables() []hooking.Hookable {
	return []hooking.Hookable{
		s, s.ee, s.iop, s.eeDMAC, s.iopDMAC,
		s.eeINTC, s.iopINTC, s.sif, s.sched,
	}
}

// A Named component can be listed by the monitor.
type Named interface {
	Name() string
}

// Components returns the components whose state the monitor can show.
func (s *System) Components() []Named {
	return []Named{
		s.ee, s.iop, s.eeDMAC, s.iopDMAC, s.eeINTC, s.iopINTC,
		s.eeTimers, s.iopTimers, s.sif, s.sched,
	}
}

var (
	_ cpu.Interpreter = (*ee.CPU)(nil)
	_ cpu.Interpreter = (*iop.CPU)(nil)
)
