package ee

import "fmt"

var syscallNames = map[int32]string{
	0x01: "ResetEE",
	0x02: "SetGsCrt",
	0x04: "Exit",
	0x05: "_ExceptionEpilogue",
	0x06: "LoadExecPS2",
	0x07: "ExecPS2",
	0x0D: "SetVTLBRefillHandler",
	0x0E: "SetVCommonHandler",
	0x0F: "SetVInterruptHandler",
	0x10: "AddIntcHandler",
	0x11: "RemoveIntcHandler",
	0x12: "AddDmacHandler",
	0x13: "RemoveDmacHandler",
	0x14: "_EnableIntc",
	0x15: "_DisableIntc",
	0x16: "_EnableDmac",
	0x17: "_DisableDmac",
	0x18: "_SetAlarm",
	0x19: "_ReleaseAlarm",
	0x1A: "_iEnableIntc",
	0x1B: "_iDisableIntc",
	0x1C: "_iEnableDmac",
	0x1D: "_iDisableDmac",
	0x1E: "_iSetAlarm",
	0x1F: "_iReleaseAlarm",
	0x20: "CreateThread",
	0x21: "DeleteThread",
	0x22: "StartThread",
	0x23: "ExitThread",
	0x24: "ExitDeleteThread",
	0x25: "TerminateThread",
	0x26: "iTerminateThread",
	0x27: "DisableDispatchThread",
	0x28: "EnableDispatchThread",
	0x29: "ChangeThreadPriority",
	0x2A: "iChangeThreadPriority",
	0x2B: "RotateThreadReadyQueue",
	0x2C: "_iRotateThreadReadyQueue",
	0x2D: "ReleaseWaitThread",
	0x2E: "iReleaseWaitThread",
	0x2F: "GetThreadId",
	0x30: "ReferThreadStatus",
	0x31: "iReferThreadStatus",
	0x32: "SleepThread",
	0x33: "WakeupThread",
	0x34: "_iWakeupThread",
	0x35: "CancelWakeupThread",
	0x36: "iCancelWakeupThread",
	0x37: "SuspendThread",
	0x38: "_iSuspendThread",
	0x39: "ResumeThread",
	0x3A: "iResumeThread",
	0x3B: "JoinThread",
	0x3C: "SetupThread",
	0x3D: "SetupHeap",
	0x3E: "EndOfHeap",
	0x40: "CreateSema",
	0x41: "DeleteSema",
	0x42: "SignalSema",
	0x43: "iSignalSema",
	0x44: "WaitSema",
	0x45: "PollSema",
	0x46: "iPollSema",
	0x47: "ReferSemaStatus",
	0x48: "iReferSemaStatus",
	0x4A: "SetOsdConfigParam",
	0x4B: "GetOsdConfigParam",
	0x4C: "GetGsHParam",
	0x4D: "GetGsVParam",
	0x4E: "SetGsHParam",
	0x4F: "SetGsVParam",
	0x64: "FlushCache",
	0x70: "GsGetIMR",
	0x71: "GsPutIMR",
	0x73: "SetVSyncFlag",
	0x74: "SetSyscall",
	0x76: "SifDmaStat",
	0x77: "SifSetDma",
	0x78: "SifSetDChain",
	0x79: "SifSetReg",
	0x7A: "SifGetReg",
	0x7B: "ExecOSD",
	0x7C: "Deci2Call",
	0x7D: "PSMode",
	0x7E: "MachineType",
	0x7F: "GetMemorySize",
}

// SyscallName returns the BIOS name of system call n, which is read from $v1.
// Negative numbers select the interrupt-context variant of the same call.
func SyscallName(n int32) string {
	if n < 0 {
		n = -n
	}

	if name, ok := syscallNames[n]; ok {
		return name
	}

	return fmt.Sprintf("syscall_%02x", n)
}
