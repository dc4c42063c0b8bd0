package mem

// EE physical memory map.
const (
	EERAMSize        = 32 << 20
	EEIOPRAMBase     = 0x1C000000
	BIOSBase         = 0x1FC00000
	BIOSSize         = 4 << 20
	ScratchpadBase   = 0x70000000
	ScratchpadSize   = 16 << 10
	EEPageTableLimit = 0x80000000
)

// IOP physical memory map.
const (
	IOPRAMSize            = 2 << 20
	IOPRAMMirrorSize      = 8 << 20
	IOPScratchpadBase     = 0x1F800000
	IOPScratchpadSize     = 1 << 10
	IOPCacheControl       = 0xFFFE0130
	IOPPageTableLimit     = 0x20000000
	iopKSEG2              = 0xFFFE0000
	physicalMask          = 0x1FFFFFFF
	eeUncachedWindowStart = 0x20000000
	eeUncachedWindowEnd   = 0x40000000
	eeRAMAliasMask        = 0x01FFFFFF
)

// A Translator maps a virtual address to a physical one.
type Translator func(vaddr uint32) uint32

// TranslateEE maps an EE virtual address. The scratchpad window is returned
// unchanged, the uncached and uncached-accelerated windows alias main RAM, and
// every other address loses its segment bits.
func TranslateEE(vaddr uint32) uint32 {
	switch {
	case vaddr&0xF0000000 == ScratchpadBase:
		return vaddr
	case vaddr >= eeUncachedWindowStart && vaddr < eeUncachedWindowEnd:
		return vaddr & eeRAMAliasMask
	default:
		return vaddr & physicalMask
	}
}

// TranslateIOP maps an IOP virtual address. KSEG2 holds the cache control
// register and passes through unchanged.
func TranslateIOP(vaddr uint32) uint32 {
	if vaddr >= iopKSEG2 {
		return vaddr
	}

	return vaddr & physicalMask
}
