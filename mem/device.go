package mem

import (
	"github.com/sirupsen/logrus"
)

// A Device serves the memory-mapped registers of a peripheral. Addresses are
// physical. Width is the access size in bytes (1, 2, 4 or 8); 128-bit
// accesses reach devices as two 64-bit accesses, low half first.
type Device interface {
	Load(addr uint32, width int) uint64
	Store(addr uint32, width int, v uint64)
}

// StubDevice stands in for a peripheral that is not emulated. Reads return
// the last value written to the same address, or zero.
type StubDevice struct {
	name    string
	log     *logrus.Entry
	latched map[uint32]uint64
}

// NewStubDevice creates a stub that logs its accesses under the given name.
func NewStubDevice(name string, log *logrus.Entry) *StubDevice {
	return &StubDevice{
		name:    name,
		log:     log.WithField("device", name),
		latched: make(map[uint32]uint64),
	}
}

// Name returns the name of the stubbed peripheral.
func (d *StubDevice) Name() string {
	return d.name
}

// Load returns the latched value of addr.
func (d *StubDevice) Load(addr uint32, width int) uint64 {
	v := d.latched[addr]
	d.log.Debugf("read%d 0x%08x -> 0x%x", width*8, addr, v)

	return v
}

// Store latches v at addr.
func (d *StubDevice) Store(addr uint32, width int, v uint64) {
	d.log.Debugf("write%d 0x%08x <- 0x%x", width*8, addr, v)
	d.latched[addr] = v
}

// Reset forgets every latched value.
func (d *StubDevice) Reset() {
	clear(d.latched)
}
