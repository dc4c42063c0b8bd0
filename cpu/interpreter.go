package cpu

import (
	"fmt"

	"github.com/sarchlab/ps2sim/hooking"
)

// ResetVector is where both processors start fetching after reset.
const ResetVector = 0xBFC00000

// ExcCode is the exception cause code stored in Cause bits 2..6.
type ExcCode uint32

// Exception codes.
const (
	ExcInt      ExcCode = 0
	ExcAdEL     ExcCode = 4
	ExcAdES     ExcCode = 5
	ExcSyscall  ExcCode = 8
	ExcBreak    ExcCode = 9
	ExcReserved ExcCode = 10
	ExcOverflow ExcCode = 12
	ExcTrap     ExcCode = 13
)

var excNames = map[ExcCode]string{
	ExcInt:      "Int",
	ExcAdEL:     "AdEL",
	ExcAdES:     "AdES",
	ExcSyscall:  "Syscall",
	ExcBreak:    "Bp",
	ExcReserved: "RI",
	ExcOverflow: "Ov",
	ExcTrap:     "Tr",
}

func (c ExcCode) String() string {
	if n, ok := excNames[c]; ok {
		return n
	}

	return fmt.Sprintf("Exc%d", uint32(c))
}

// An Interpreter executes instructions of one processor.
type Interpreter interface {
	hooking.Hookable

	Name() string
	Reset()
	Step() error
	Run(cycles int) error
	PC() uint32
	SetPC(pc uint32)
}

// HookPosException is invoked when a processor enters an exception. The item
// is an *ExceptionInfo.
var HookPosException = &hooking.HookPos{Name: "Exception"}

// HookPosSyscall is invoked before a SYSCALL exception is entered. The item is
// a *SyscallInfo.
var HookPosSyscall = &hooking.HookPos{Name: "Syscall"}

// HookPosRetire is invoked after every executed instruction when hooks are
// attached. The item is the Instruction and the detail the PC it was fetched
// from.
var HookPosRetire = &hooking.HookPos{Name: "Retire"}

// ExceptionInfo describes one exception entry.
type ExceptionInfo struct {
	Unit   string
	Code   ExcCode
	EPC    uint32
	Vector uint32
	Delay  bool
}

// SyscallInfo describes one system call.
type SyscallInfo struct {
	Unit   string
	PC     uint32
	Number int32
	Name   string
}
