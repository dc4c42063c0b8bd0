// Package intc implements the interrupt controllers of the EE and the IOP.
//
// Both controllers keep one status bit and one mask bit per source and drive a
// level-sensitive line that the owning interpreter polls on every step. The
// two differ in how software writes the mask: the EE controller toggles mask
// bits, the IOP controller assigns them.
package intc

import "github.com/sarchlab/ps2sim/hooking"

// A Line is an interrupt output polled by a processor.
type Line interface {
	Asserted() bool
}

// HookPosRequest is triggered when a source raises its status bit. The item
// is the source number as a uint.
var HookPosRequest = &hooking.HookPos{Name: "InterruptRequest"}

// LineFunc adapts a function to the Line interface.
type LineFunc func() bool

// Asserted calls f.
func (f LineFunc) Asserted() bool {
	return f()
}
