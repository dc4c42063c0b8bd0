package timer

import (
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sirupsen/logrus"
)

// EE timer register layout.
const (
	EEBase   = 0x10000000
	EEStride = 0x800
	EECount  = 0x00
	EEMode   = 0x10
	EEComp   = 0x20
	EEHold   = 0x30

	NumEETimers = 4
)

// EE MODE fields.
const (
	EEModeClks = 3 << 0
	EEModeZRET = 1 << 6
	EEModeCUE  = 1 << 7
	EEModeCMPE = 1 << 8
	EEModeOVFE = 1 << 9
	EEModeEQUF = 1 << 10
	EEModeOVFF = 1 << 11

	eeFlags = EEModeEQUF | EEModeOVFF
)

// HBlankCycles is the number of bus cycles per horizontal blank, the input of
// a timer clocked from HBLANK.
const HBlankCycles = 9371

var eeDividers = [4]uint64{1, 16, 256, HBlankCycles}

// EEInterrupts receives timer interrupt requests.
type EEInterrupts interface {
	RequestInterrupt(src intc.EESource)
}

type eeTimer struct {
	count uint32
	mode  uint32
	comp  uint32
	hold  uint32
	pre   prescaler
}

// EE holds the four EE timers.
type EE struct {
	log   *logrus.Entry
	intc  EEInterrupts
	timer [NumEETimers]eeTimer
}

// NewEE creates the EE timers.
func NewEE(log *logrus.Entry, ic EEInterrupts) *EE {
	return &EE{
		log:  log.WithField("component", "ee-timer"),
		intc: ic,
	}
}

// Name returns the component name.
func (e *EE) Name() string {
	return "ee-timer"
}

// Reset stops and clears every timer.
func (e *EE) Reset() {
	e.timer = [NumEETimers]eeTimer{}
}

// Count returns the count of timer n.
func (e *EE) Count(n int) uint32 {
	return e.timer[n].count
}

// Run advances every enabled timer by the given number of bus cycles.
func (e *EE) Run(cycles uint64) {
	for n := range e.timer {
		t := &e.timer[n]
		if t.mode&EEModeCUE == 0 {
			continue
		}

		e.advance(n, t.pre.ticks(cycles, eeDividers[t.mode&EEModeClks]))
	}
}

func (e *EE) advance(n int, ticks uint64) {
	t := &e.timer[n]

	for ticks > 0 {
		count, used, ev := advance(uint64(t.count), uint64(t.comp), 0x10000, ticks)
		t.count = uint32(count)
		ticks -= used

		switch ev {
		case evTarget:
			e.compare(n)
		case evWrap:
			e.overflow(n)
			if t.comp == 0 {
				e.compare(n)
			}
		}
	}
}

func (e *EE) compare(n int) {
	t := &e.timer[n]

	if t.mode&EEModeCMPE != 0 && t.mode&EEModeEQUF == 0 {
		t.mode |= EEModeEQUF
		e.intc.RequestInterrupt(intc.EETimer0 + intc.EESource(n))
	}

	if t.mode&EEModeZRET != 0 {
		t.count = 0
	}
}

func (e *EE) overflow(n int) {
	t := &e.timer[n]

	if t.mode&EEModeOVFE != 0 && t.mode&EEModeOVFF == 0 {
		t.mode |= EEModeOVFF
		e.intc.RequestInterrupt(intc.EETimer0 + intc.EESource(n))
	}
}

func eeDecode(addr uint32) (int, uint32) {
	off := addr - EEBase
	return int(off / EEStride), (off % EEStride) &^ 0xF
}

// Load reads a timer register.
func (e *EE) Load(addr uint32, _ int) uint64 {
	n, reg := eeDecode(addr)
	if n >= NumEETimers {
		return 0
	}

	t := &e.timer[n]

	switch reg {
	case EECount:
		return uint64(t.count)
	case EEMode:
		return uint64(t.mode)
	case EEComp:
		return uint64(t.comp)
	case EEHold:
		return uint64(t.hold)
	}

	return 0
}

// Store writes a timer register. MODE flag bits written as one are cleared.
func (e *EE) Store(addr uint32, _ int, v uint64) {
	n, reg := eeDecode(addr)
	if n >= NumEETimers {
		return
	}

	t := &e.timer[n]
	w := uint32(v)

	switch reg {
	case EECount:
		t.count = w & 0xFFFF
	case EEMode:
		flags := t.mode & eeFlags &^ (w & eeFlags)
		t.mode = w&0x3FF | flags
		e.log.WithFields(logrus.Fields{
			"timer": n,
			"mode":  t.mode,
		}).Trace("mode")
	case EEComp:
		t.comp = w & 0xFFFF
	case EEHold:
		t.hold = w & 0xFFFF
	}
}
