// Package dma holds what the EE and IOP DMA controllers share: the memory and
// peripheral port contracts, the stub ports that stand in for peripherals
// that are not emulated, and the hook reported when a transfer completes.
package dma

import (
	"github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sirupsen/logrus"
)

// Memory is the physical memory a controller transfers to and from.
type Memory interface {
	ReadPhys32(paddr uint32) (uint32, error)
	WritePhys32(paddr uint32, v uint32) error
	ReadPhys128(paddr uint32) (bits.U128, error)
	WritePhys128(paddr uint32, v bits.U128) error
}

// A QuadPort is the peripheral end of an EE channel. Push and Pull return
// false when the peripheral cannot take or give a quadword this tick.
type QuadPort interface {
	PushQuad(q bits.U128) bool
	PullQuad() (bits.U128, bool)
}

// A WordPort is the peripheral end of an IOP channel.
type WordPort interface {
	PushWord(w uint32) bool
	PullWord() (uint32, bool)
}

// HookPosTransferDone is invoked when a channel finishes. The item is a
// *TransferInfo.
var HookPosTransferDone = &hooking.HookPos{Name: "DMATransferDone"}

// TransferInfo describes a finished channel transfer.
type TransferInfo struct {
	Controller string
	Channel    int
	Name       string
	Units      uint64
	Chain      bool
}

// StubPort accepts everything pushed into it and supplies zeros. It stands in
// for peripherals that are not emulated.
type StubPort struct {
	name   string
	log    *logrus.Entry
	pushed uint64
	pulled uint64
}

// NewStubPort creates a StubPort.
func NewStubPort(name string, log *logrus.Entry) *StubPort {
	return &StubPort{name: name, log: log.WithField("port", name)}
}

// PushQuad discards q.
func (p *StubPort) PushQuad(q bits.U128) bool {
	p.pushed++
	p.log.Tracef("push %s", q)

	return true
}

// PullQuad returns zero.
func (p *StubPort) PullQuad() (bits.U128, bool) {
	p.pulled++
	return bits.U128{}, true
}

// PushWord discards w.
func (p *StubPort) PushWord(w uint32) bool {
	p.pushed++
	p.log.Tracef("push %08x", w)

	return true
}

// PullWord returns zero.
func (p *StubPort) PullWord() (uint32, bool) {
	p.pulled++
	return 0, true
}

// Pushed returns the number of units the port received.
func (p *StubPort) Pushed() uint64 {
	return p.pushed
}

// Pulled returns the number of units the port supplied.
func (p *StubPort) Pulled() uint64 {
	return p.pulled
}
