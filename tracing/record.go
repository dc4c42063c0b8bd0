package tracing

import (
	"fmt"

	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/dma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/intc"
	"github.com/sarchlab/ps2sim/sched"
	"github.com/sarchlab/ps2sim/sif"
	"github.com/sarchlab/ps2sim/system"
)

// Record kinds. Each kind is recorded into its own table.
const (
	KindException = "exception"
	KindSyscall   = "syscall"
	KindTransfer  = "dma"
	KindInterrupt = "interrupt"
	KindMailbox   = "mailbox"
	KindEvent     = "event"
	KindFrame     = "frame"
	KindFault     = "fault"
)

// Kinds lists every record kind in table order.
var Kinds = []string{
	KindException, KindSyscall, KindTransfer, KindInterrupt,
	KindMailbox, KindEvent, KindFrame, KindFault,
}

// A Record is one traced occurrence.
type Record interface {
	Kind() string
}

// ExceptionRecord is a CPU exception entry.
type ExceptionRecord struct {
	Cycle  uint64
	Unit   string
	Code   string
	EPC    uint32
	Vector uint32
	Delay  bool
}

// Kind returns KindException.
func (ExceptionRecord) Kind() string { return KindException }

// SyscallRecord is a SYSCALL instruction.
type SyscallRecord struct {
	Cycle  uint64
	Unit   string
	PC     uint32
	Number int32
	Name   string
}

// Kind returns KindSyscall.
func (SyscallRecord) Kind() string { return KindSyscall }

// TransferRecord is a finished DMA transfer.
type TransferRecord struct {
	Cycle      uint64
	Controller string
	Channel    int
	Name       string
	Units      uint64
	Chain      bool
}

// Kind returns KindTransfer.
func (TransferRecord) Kind() string { return KindTransfer }

// InterruptRecord is an interrupt source raising its status bit.
type InterruptRecord struct {
	Cycle      uint64
	Controller string
	Source     uint
}

// Kind returns KindInterrupt.
func (InterruptRecord) Kind() string { return KindInterrupt }

// MailboxRecord is a SIF mailbox register write.
type MailboxRecord struct {
	Cycle   uint64
	FromIOP bool
	Reg     uint32
	Value   uint32
}

// Kind returns KindMailbox.
func (MailboxRecord) Kind() string { return KindMailbox }

// EventRecord is a scheduler event about to fire.
type EventRecord struct {
	Cycle    uint64
	Deadline uint64
	ID       uint64
	Name     string
}

// Kind returns KindEvent.
func (EventRecord) Kind() string { return KindEvent }

// FrameRecord summarises a completed frame.
type FrameRecord struct {
	Frame      uint64
	Cycles     uint64
	EERetired  uint64
	IOPRetired uint64
	EEPC       uint32
	IOPPC      uint32
}

// Kind returns KindFrame.
func (FrameRecord) Kind() string { return KindFrame }

// FaultRecord is an interpreter fault.
type FaultRecord struct {
	Cycle uint64
	Unit  string
	PC    uint32
	Error string
}

// Kind returns KindFault.
func (FaultRecord) Kind() string { return KindFault }

// sampleRecords gives one zero value per kind, used to create tables.
var sampleRecords = map[string]Record{
	KindException: ExceptionRecord{},
	KindSyscall:   SyscallRecord{},
	KindTransfer:  TransferRecord{},
	KindInterrupt: InterruptRecord{},
	KindMailbox:   MailboxRecord{},
	KindEvent:     EventRecord{},
	KindFrame:     FrameRecord{},
	KindFault:     FaultRecord{},
}

// recordOf converts a hook invocation into a Record. It returns nil for
// positions that are not traced, such as instruction retirement.
func recordOf(ctx hooking.HookCtx, now uint64) Record {
	switch ctx.Pos {
	case cpu.HookPosException:
		info := ctx.Item.(*cpu.ExceptionInfo)
		return ExceptionRecord{
			Cycle:  now,
			Unit:   info.Unit,
			Code:   info.Code.String(),
			EPC:    info.EPC,
			Vector: info.Vector,
			Delay:  info.Delay,
		}
	case cpu.HookPosSyscall:
		info := ctx.Item.(*cpu.SyscallInfo)
		return SyscallRecord{
			Cycle:  now,
			Unit:   info.Unit,
			PC:     info.PC,
			Number: info.Number,
			Name:   info.Name,
		}
	case dma.HookPosTransferDone:
		info := ctx.Item.(*dma.TransferInfo)
		return TransferRecord{
			Cycle:      now,
			Controller: info.Controller,
			Channel:    info.Channel,
			Name:       info.Name,
			Units:      info.Units,
			Chain:      info.Chain,
		}
	case intc.HookPosRequest:
		return InterruptRecord{
			Cycle:      now,
			Controller: domainName(ctx.Domain),
			Source:     ctx.Item.(uint),
		}
	case sif.HookPosMailbox:
		w := ctx.Item.(sif.MailboxWrite)
		return MailboxRecord{
			Cycle:   now,
			FromIOP: w.FromIOP,
			Reg:     w.Reg,
			Value:   w.Value,
		}
	case sched.HookPosBeforeEvent:
		e := ctx.Item.(sched.Event)
		return EventRecord{
			Cycle:    now,
			Deadline: e.Deadline,
			ID:       uint64(e.ID),
			Name:     e.Name,
		}
	case system.HookPosFrame:
		f := ctx.Item.(system.FrameInfo)
		return FrameRecord{
			Frame:      f.Frame,
			Cycles:     f.Cycles,
			EERetired:  f.EERetired,
			IOPRetired: f.IOPRetired,
			EEPC:       f.EEPC,
			IOPPC:      f.IOPPC,
		}
	case system.HookPosFault:
		f := ctx.Item.(system.FaultInfo)
		return FaultRecord{
			Cycle: now,
			Unit:  f.Unit,
			PC:    f.PC,
			Error: fmt.Sprint(f.Err),
		}
	}

	return nil
}

func domainName(d hooking.Hookable) string {
	if n, ok := d.(interface{ Name() string }); ok {
		return n.Name()
	}

	return fmt.Sprintf("%T", d)
}
