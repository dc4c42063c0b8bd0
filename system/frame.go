package system

import (
	"fmt"

	"github.com/sarchlab/ps2sim/config"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sarchlab/ps2sim/sched"
	"github.com/sirupsen/logrus"
)

// Clock ratios relative to the EE.
const (
	busDivider = uint64(sched.EEClock / sched.BusClock)
	iopDivider = uint64(sched.EEClock / sched.IOPClock)
)

// HookPosFrame is invoked after each completed frame. The item is a
// FrameInfo.
var HookPosFrame = &hooking.HookPos{Name: "Frame"}

// HookPosFault is invoked when an interpreter faults. The item is a
// FaultInfo.
var HookPosFault = &hooking.HookPos{Name: "Fault"}

// FrameInfo summarizes a completed frame.
type FrameInfo struct {
	Frame      uint64
	Cycles     uint64
	EERetired  uint64
	IOPRetired uint64
	EEPC       uint32
	IOPPC      uint32
}

// FaultInfo describes an interpreter fault.
type FaultInfo struct {
	Unit string
	PC   uint32
	Err  error
}

// RunFrame emulates one frame of CyclesPerFrame EE cycles. Under the session
// fault policy the first interpreter fault ends the frame and is returned.
func (s *System) RunFrame() error {
	remaining := uint64(CyclesPerFrame)

	for remaining > 0 {
		q := min(s.cfg.Quantum, remaining)
		if err := s.advance(q); err != nil {
			return err
		}

		remaining -= q
	}

	s.frame++
	s.notifyFrame()

	return nil
}

// SingleStep executes one EE instruction and advances the peripherals and
// the IOP by their share of one EE cycle.
func (s *System) SingleStep() error {
	return s.advance(1)
}

// advance runs n EE cycles, then the EE-side peripherals for their half-rate
// share, then the IOP side for its eighth-rate share, then the scheduler.
func (s *System) advance(n uint64) error {
	if err := s.run(s.ee, n); err != nil {
		return err
	}

	s.busAcc += n
	bus := s.busAcc / busDivider
	s.busAcc %= busDivider

	s.eeDMAC.Run(bus)
	s.eeTimers.Run(bus)

	s.iopAcc += n
	iopCycles := s.iopAcc / iopDivider
	s.iopAcc %= iopDivider

	if err := s.run(s.iop, iopCycles); err != nil {
		return err
	}

	s.iopDMAC.Run(iopCycles)
	s.iopTimers.Run(iopCycles)

	s.sched.Tick(n)
	s.sched.RunEvents()

	return nil
}

func (s *System) run(c cpu.Interpreter, n uint64) error {
	if n == 0 || s.Halted(c.Name()) {
		return nil
	}

	err := c.Run(int(n))
	if err == nil {
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"unit":  c.Name(),
		"pc":    fmt.Sprintf("0x%08x", c.PC()),
		"cycle": s.sched.Now(),
	}).WithError(err).Error("interpreter fault")

	if s.NumHooks() > 0 {
		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosFault,
			Item:   FaultInfo{Unit: c.Name(), PC: c.PC(), Err: err},
		})
	}

	if s.cfg.HaltOnFault == config.HaltSession {
		return fmt.Errorf("%s at cycle %d: %w", c.Name(), s.sched.Now(), err)
	}

	s.halted[c.Name()] = err

	return nil
}

func (s *System) notifyFrame() {
	s.log.WithFields(logrus.Fields{
		"frame":  s.frame,
		"cycles": s.sched.Now(),
	}).Debug("frame done")

	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosFrame,
		Item: FrameInfo{
			Frame:      s.frame,
			Cycles:     s.sched.Now(),
			EERetired:  s.ee.Retired(),
			IOPRetired: s.iop.Retired(),
			EEPC:       s.ee.PC(),
			IOPPC:      s.iop.PC(),
		},
	})
}

// scheduleVBlanks queues the first pair of vblank events. Each event queues
// its successor one frame after its own deadline, so the period does not
// drift when an event fires late within a quantum.
func (s *System) scheduleVBlanks() {
	s.vblankStart = s.sched.NewID()
	s.vblankEnd = s.sched.NewID()
	s.vblankStartAt = VBlankStartCycle
	s.vblankEndAt = CyclesPerFrame

	s.addAt(s.vblankStartAt, s.vblankStart, "vblank-start", s.onVBlankStart)
	s.addAt(s.vblankEndAt, s.vblankEnd, "vblank-end", s.onVBlankEnd)
}

func (s *System) addAt(deadline uint64, id sched.ID, name string, cb sched.Callback) {
	delay := uint64(0)
	if now := s.sched.Now(); deadline > now {
		delay = deadline - now
	}

	s.sched.AddNamed(delay, id, name, cb)
}

func (s *System) onVBlankStart() {
	s.eeINTC.RequestInterrupt(intc.EEVBlankStart)
	s.iopINTC.RequestInterrupt(intc.IOPVBlank)

	s.vblankStartAt += CyclesPerFrame
	s.addAt(s.vblankStartAt, s.vblankStart, "vblank-start", s.onVBlankStart)
}

func (s *System) onVBlankEnd() {
	s.eeINTC.RequestInterrupt(intc.EEVBlankEnd)
	s.iopINTC.RequestInterrupt(intc.IOPEVBlank)

	s.vblankEndAt += CyclesPerFrame
	s.addAt(s.vblankEndAt, s.vblankEnd, "vblank-end", s.onVBlankEnd)
}
