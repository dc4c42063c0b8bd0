package timer

import (
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sirupsen/logrus"
)

// IOP timer register layout.
const (
	IOPBase0     = 0x1F801100
	IOPBase3     = 0x1F801480
	IOPStride    = 0x10
	IOPCount     = 0x0
	IOPMode      = 0x4
	IOPTarget    = 0x8
	NumIOPTimers = 6
)

// IOP MODE fields.
const (
	IOPModeResetOnTarget = 1 << 3
	IOPModeIRQOnTarget   = 1 << 4
	IOPModeIRQOnWrap     = 1 << 5
	IOPModeRepeat        = 1 << 6
	IOPModeToggle        = 1 << 7
	IOPModeDiv8          = 1 << 9
	IOPModeIRQ           = 1 << 10
	IOPModeReachedTarget = 1 << 11
	IOPModeReachedWrap   = 1 << 12
	IOPModePrescaleShift = 13
)

var iopSources = [NumIOPTimers]intc.IOPSource{
	intc.IOPTimer0, intc.IOPTimer1, intc.IOPTimer2,
	intc.IOPTimer3, intc.IOPTimer4, intc.IOPTimer5,
}

var iopPrescalers = [4]uint64{1, 8, 16, 256}

// IOPInterrupts receives timer interrupt requests.
type IOPInterrupts interface {
	RequestInterrupt(src intc.IOPSource)
}

type iopTimer struct {
	count  uint64
	mode   uint32
	target uint64
	fired  bool
	pre    prescaler
}

// IOP holds the six IOP timers.
type IOP struct {
	log   *logrus.Entry
	intc  IOPInterrupts
	timer [NumIOPTimers]iopTimer
}

// NewIOP creates the IOP timers.
func NewIOP(log *logrus.Entry, ic IOPInterrupts) *IOP {
	return &IOP{
		log:  log.WithField("component", "iop-timer"),
		intc: ic,
	}
}

// Name returns the component name.
func (p *IOP) Name() string {
	return "iop-timer"
}

// Reset clears every timer.
func (p *IOP) Reset() {
	p.timer = [NumIOPTimers]iopTimer{}
	for n := range p.timer {
		p.timer[n].mode = IOPModeIRQ
	}
}

// Count returns the count of timer n.
func (p *IOP) Count(n int) uint64 {
	return p.timer[n].count
}

func limit(n int) uint64 {
	if n < 3 {
		return 1 << 16
	}

	return 1 << 32
}

func (p *IOP) divider(n int) uint64 {
	mode := p.timer[n].mode

	switch {
	case n >= 4:
		return iopPrescalers[(mode>>IOPModePrescaleShift)&3]
	case n == 2 && mode&IOPModeDiv8 != 0:
		return 8
	}

	return 1
}

// Run advances every timer by the given number of IOP cycles.
func (p *IOP) Run(cycles uint64) {
	for n := range p.timer {
		t := &p.timer[n]
		ticks := t.pre.ticks(cycles, p.divider(n))

		for ticks > 0 {
			count, used, ev := advance(t.count, t.target, limit(n), ticks)
			t.count = count
			ticks -= used

			switch ev {
			case evTarget:
				t.mode |= IOPModeReachedTarget
				if t.mode&IOPModeResetOnTarget != 0 {
					t.count = 0
				}

				if t.mode&IOPModeIRQOnTarget != 0 {
					p.raise(n)
				}
			case evWrap:
				t.mode |= IOPModeReachedWrap
				if t.mode&IOPModeIRQOnWrap != 0 {
					p.raise(n)
				}
			}
		}
	}
}

func (p *IOP) raise(n int) {
	t := &p.timer[n]

	if t.fired && t.mode&IOPModeRepeat == 0 {
		return
	}

	if t.mode&IOPModeToggle != 0 {
		t.mode ^= IOPModeIRQ
		if t.mode&IOPModeIRQ != 0 {
			return
		}
	} else {
		// Pulse mode. The active-low bit stays low until MODE is written.
		t.mode &^= IOPModeIRQ
	}

	t.fired = true
	p.intc.RequestInterrupt(iopSources[n])
}

func iopDecode(addr uint32) (int, uint32, bool) {
	switch {
	case addr >= IOPBase0 && addr < IOPBase0+3*IOPStride:
		return int(addr-IOPBase0) / IOPStride, addr & 0xC, true
	case addr >= IOPBase3 && addr < IOPBase3+3*IOPStride:
		return 3 + int(addr-IOPBase3)/IOPStride, addr & 0xC, true
	}

	return 0, 0, false
}

// Load reads a timer register. Reading MODE clears the reached flags.
func (p *IOP) Load(addr uint32, _ int) uint64 {
	n, reg, ok := iopDecode(addr)
	if !ok {
		return 0
	}

	t := &p.timer[n]

	switch reg {
	case IOPCount:
		return t.count
	case IOPMode:
		v := t.mode
		t.mode &^= IOPModeReachedTarget | IOPModeReachedWrap

		return uint64(v)
	case IOPTarget:
		return t.target
	}

	return 0
}

// Store writes a timer register. Writing MODE restarts the count.
func (p *IOP) Store(addr uint32, _ int, v uint64) {
	n, reg, ok := iopDecode(addr)
	if !ok {
		return
	}

	t := &p.timer[n]
	mask := limit(n) - 1

	switch reg {
	case IOPCount:
		t.count = v & mask
	case IOPMode:
		t.mode = uint32(v)&^(IOPModeIRQ|IOPModeReachedTarget|IOPModeReachedWrap) | IOPModeIRQ
		t.count = 0
		t.fired = false
		t.pre = prescaler{}
	case IOPTarget:
		t.target = v & mask
	}
}
