// Package sif implements the sub-system interface that connects the EE and
// the IOP: the mailbox registers both processors poll during boot and the two
// FIFOs the DMA controllers stream through.
package sif

import (
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sirupsen/logrus"
)

// Mailbox register bases.
const (
	EEBase  = 0x1000F200
	IOPBase = 0x1D000000
)

// Register offsets from either base.
const (
	RegMSCOM = 0x00
	RegSMCOM = 0x10
	RegMSFLG = 0x20
	RegSMFLG = 0x30
	RegCTRL  = 0x40
	RegBD6   = 0x60
)

// HookPosMailbox is invoked after a mailbox register write. The item is a
// MailboxWrite.
var HookPosMailbox = &hooking.HookPos{Name: "SIFMailbox"}

// MailboxWrite describes a write to a mailbox register.
type MailboxWrite struct {
	FromIOP bool
	Reg     uint32
	Value   uint32
}

// SIF owns the mailbox registers and the two FIFOs.
type SIF struct {
	*hooking.HookableBase

	log *logrus.Entry

	mscom uint32
	smcom uint32
	msflg uint32
	smflg uint32
	ctrl  uint32
	bd6   uint32

	sif0 FIFO
	sif1 FIFO
}

// New creates a SIF.
func New(log *logrus.Entry) *SIF {
	return &SIF{
		HookableBase: hooking.NewHookableBase(),
		log:          log.WithField("component", "sif"),
	}
}

// Name returns "sif".
func (s *SIF) Name() string {
	return "sif"
}

// Reset clears the registers and empties both FIFOs.
func (s *SIF) Reset() {
	s.mscom, s.smcom, s.msflg, s.smflg, s.ctrl, s.bd6 = 0, 0, 0, 0, 0, 0
	s.sif0.Reset()
	s.sif1.Reset()
}

// SIF0 returns the IOP to EE FIFO.
func (s *SIF) SIF0() *FIFO {
	return &s.sif0
}

// SIF1 returns the EE to IOP FIFO.
func (s *SIF) SIF1() *FIFO {
	return &s.sif1
}

// MSFLG returns the main to sub flag register.
func (s *SIF) MSFLG() uint32 {
	return s.msflg
}

// SMFLG returns the sub to main flag register.
func (s *SIF) SMFLG() uint32 {
	return s.smflg
}

func (s *SIF) read(reg uint32) uint32 {
	switch reg {
	case RegMSCOM:
		return s.mscom
	case RegSMCOM:
		return s.smcom
	case RegMSFLG:
		return s.msflg
	case RegSMFLG:
		return s.smflg
	case RegCTRL:
		return s.ctrl
	case RegBD6:
		return s.bd6
	}

	return 0
}

func (s *SIF) writeEE(reg, v uint32) {
	switch reg {
	case RegMSCOM:
		s.mscom = v
	case RegMSFLG:
		s.msflg |= v
	case RegSMFLG:
		s.smflg &^= v
	case RegCTRL:
		if v&0x100 != 0 {
			s.ctrl &^= 0x100
		} else {
			s.ctrl |= 0x100
		}
	case RegBD6:
		s.bd6 = v
	default:
		s.log.Warnf("EE write to read-only mailbox register 0x%02x", reg)
		return
	}

	s.notify(false, reg, v)
}

func (s *SIF) writeIOP(reg, v uint32) {
	switch reg {
	case RegSMCOM:
		s.smcom = v
	case RegMSFLG:
		s.msflg &^= v
	case RegSMFLG:
		s.smflg |= v
	case RegCTRL:
		s.ctrl ^= v & 0xF0
	case RegBD6:
		s.bd6 = v
	default:
		s.log.Warnf("IOP write to read-only mailbox register 0x%02x", reg)
		return
	}

	s.notify(true, reg, v)
}

func (s *SIF) notify(fromIOP bool, reg, v uint32) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosMailbox,
		Item:   MailboxWrite{FromIOP: fromIOP, Reg: reg, Value: v},
	})
}

// EEDevice returns the mailbox window as the EE sees it.
func (s *SIF) EEDevice() *Window {
	return &Window{sif: s, base: EEBase}
}

// IOPDevice returns the mailbox window as the IOP sees it.
func (s *SIF) IOPDevice() *Window {
	return &Window{sif: s, base: IOPBase, iop: true}
}

// Window is a processor's view of the mailbox registers.
type Window struct {
	sif  *SIF
	base uint32
	iop  bool
}

// Load reads a mailbox register.
func (w *Window) Load(addr uint32, _ int) uint64 {
	return uint64(w.sif.read((addr - w.base) &^ 0xF))
}

// Store writes a mailbox register.
func (w *Window) Store(addr uint32, _ int, v uint64) {
	reg := (addr - w.base) &^ 0xF
	if w.iop {
		w.sif.writeIOP(reg, uint32(v))
		return
	}

	w.sif.writeEE(reg, uint32(v))
}

// EESIF0Port is the EE DMAC end of the IOP to EE FIFO.
type EESIF0Port struct{ S *SIF }

// PushQuad refuses; SIF0 only flows toward the EE.
func (p EESIF0Port) PushQuad(bits.U128) bool {
	return false
}

// PullQuad pops four words once they are all buffered.
func (p EESIF0Port) PullQuad() (bits.U128, bool) {
	f := &p.S.sif0
	if f.Len() < 4 {
		return bits.U128{}, false
	}

	var w [4]uint32
	for i := range w {
		w[i], _ = f.Pop()
	}

	return bits.Quad(w[0], w[1], w[2], w[3]), true
}

// EESIF1Port is the EE DMAC end of the EE to IOP FIFO.
type EESIF1Port struct{ S *SIF }

// PushQuad pushes four words once there is room for all of them.
func (p EESIF1Port) PushQuad(q bits.U128) bool {
	f := &p.S.sif1
	if f.Free() < 4 {
		return false
	}

	for i := 0; i < 4; i++ {
		f.Push(q.Word(i))
	}

	return true
}

// PullQuad refuses; SIF1 only flows toward the IOP.
func (p EESIF1Port) PullQuad() (bits.U128, bool) {
	return bits.U128{}, false
}

// IOPSIF0Port is the IOP DMAC end of the IOP to EE FIFO.
type IOPSIF0Port struct{ S *SIF }

// PushWord pushes w.
func (p IOPSIF0Port) PushWord(w uint32) bool {
	return p.S.sif0.Push(w)
}

// PullWord refuses.
func (p IOPSIF0Port) PullWord() (uint32, bool) {
	return 0, false
}

// IOPSIF1Port is the IOP DMAC end of the EE to IOP FIFO.
type IOPSIF1Port struct{ S *SIF }

// PushWord refuses.
func (p IOPSIF1Port) PushWord(uint32) bool {
	return false
}

// PullWord pops a word.
func (p IOPSIF1Port) PullWord() (uint32, bool) {
	return p.S.sif1.Pop()
}
