package mem

import (
	"fmt"
	"sort"

	"github.com/sarchlab/ps2sim/bits"
)

// PageShift is log2 of the page table granularity.
const PageShift = 12

// PageSize is the page table granularity in bytes.
const PageSize = 1 << PageShift

const pageMask = PageSize - 1

// A Page is the host memory backing one page table slot.
type Page = *[PageSize]byte

type deviceMapping struct {
	name   string
	window Range
	dev    Device
}

// A Space is the address space seen by one processor. Memory regions are
// installed into a flat page table indexed by physical address; accesses that
// miss the page table are dispatched to the device whose window contains the
// physical address.
type Space struct {
	name      string
	translate Translator
	pages     []Page
	regions   []Range
	devices   []deviceMapping
}

// NewSpace creates an address space whose page table covers the physical
// addresses below limit.
func NewSpace(name string, limit uint64, translate Translator) *Space {
	return &Space{
		name:      name,
		translate: translate,
		pages:     make([]Page, limit>>PageShift),
	}
}

// Name returns the name of the space.
func (s *Space) Name() string {
	return s.name
}

// Translate returns the physical address of vaddr.
func (s *Space) Translate(vaddr uint32) uint32 {
	return s.translate(vaddr)
}

// RegisterRegion installs buf into every page slot of [base, base+size). The
// offset into buf is (address - base) & mask, so a mask smaller than size
// mirrors the buffer. Regions must be page aligned and must not overlap.
func (s *Space) RegisterRegion(base, size, mask uint32, buf []byte) error {
	if base&pageMask != 0 || size&pageMask != 0 || size == 0 {
		return fmt.Errorf("%s: region 0x%08x+0x%x is not page aligned",
			s.name, base, size)
	}

	if mask&pageMask != pageMask || uint64(len(buf)) < uint64(mask)+1 {
		return fmt.Errorf("%s: region 0x%08x mask 0x%x does not fit a %d-byte buffer",
			s.name, base, mask, len(buf))
	}

	r := NewRange(base, size)
	if r.End()>>PageShift > uint64(len(s.pages)) {
		return fmt.Errorf("%s: region 0x%08x+0x%x exceeds the page table",
			s.name, base, size)
	}

	for _, other := range s.regions {
		if other.Overlaps(r) {
			return fmt.Errorf("%s: region 0x%08x+0x%x overlaps 0x%08x+0x%x",
				s.name, base, size, other.Start, other.Length)
		}
	}

	for off := uint32(0); off < size; off += PageSize {
		src := off & mask
		s.pages[(base+off)>>PageShift] = Page(buf[src : src+PageSize])
	}

	s.regions = append(s.regions, r)

	return nil
}

// MapDevice routes page table misses inside window to dev.
func (s *Space) MapDevice(name string, window Range, dev Device) {
	s.devices = append(s.devices, deviceMapping{name: name, window: window, dev: dev})
	sort.SliceStable(s.devices, func(i, j int) bool {
		return s.devices[i].window.Length < s.devices[j].window.Length
	})
}

// DeviceAt returns the name of the device that serves paddr, if any.
func (s *Space) DeviceAt(paddr uint32) (string, bool) {
	m := s.findDevice(paddr)
	if m == nil {
		return "", false
	}

	return m.name, true
}

// findDevice prefers the narrowest window, so a catch-all stub can sit under
// more specific devices.
func (s *Space) findDevice(paddr uint32) *deviceMapping {
	for i := range s.devices {
		if s.devices[i].window.Contains(paddr) {
			return &s.devices[i]
		}
	}

	return nil
}

func (s *Space) page(paddr uint32) Page {
	idx := paddr >> PageShift
	if uint64(idx) >= uint64(len(s.pages)) {
		return nil
	}

	return s.pages[idx]
}

// IsMemory reports whether paddr is backed by a region.
func (s *Space) IsMemory(paddr uint32) bool {
	return s.page(paddr) != nil
}

func (s *Space) load(vaddr, paddr uint32, width int) (uint64, error) {
	if p := s.page(paddr); p != nil {
		off := paddr & pageMask
		if int(off)+width <= PageSize {
			return bits.LoadLE(p[off:], width), nil
		}

		return s.loadSplit(vaddr, paddr, width)
	}

	m := s.findDevice(paddr)
	if m == nil {
		return 0, &UnmappedError{Space: s.name, VAddr: vaddr, PAddr: paddr, Width: width}
	}

	return m.dev.Load(paddr, width), nil
}

func (s *Space) loadSplit(vaddr, paddr uint32, width int) (uint64, error) {
	var v uint64

	for i := width - 1; i >= 0; i-- {
		b, err := s.load(vaddr+uint32(i), paddr+uint32(i), 1)
		if err != nil {
			return 0, err
		}

		v = v<<8 | b
	}

	return v, nil
}

func (s *Space) store(vaddr, paddr uint32, width int, v uint64) error {
	if p := s.page(paddr); p != nil {
		off := paddr & pageMask
		if int(off)+width <= PageSize {
			bits.StoreLE(p[off:], width, v)
			return nil
		}

		for i := 0; i < width; i++ {
			err := s.store(vaddr+uint32(i), paddr+uint32(i), 1, v>>(8*uint(i)))
			if err != nil {
				return err
			}
		}

		return nil
	}

	m := s.findDevice(paddr)
	if m == nil {
		return &UnmappedError{
			Space: s.name, VAddr: vaddr, PAddr: paddr, Width: width,
			Write: true, Value: v,
		}
	}

	m.dev.Store(paddr, width, v)

	return nil
}

// Read8 reads a byte at vaddr.
func (s *Space) Read8(vaddr uint32) (uint8, error) {
	v, err := s.load(vaddr, s.translate(vaddr), 1)
	return uint8(v), err
}

// Read16 reads a halfword at vaddr.
func (s *Space) Read16(vaddr uint32) (uint16, error) {
	v, err := s.load(vaddr, s.translate(vaddr), 2)
	return uint16(v), err
}

// Read32 reads a word at vaddr.
func (s *Space) Read32(vaddr uint32) (uint32, error) {
	v, err := s.load(vaddr, s.translate(vaddr), 4)
	return uint32(v), err
}

// Read64 reads a doubleword at vaddr.
func (s *Space) Read64(vaddr uint32) (uint64, error) {
	return s.load(vaddr, s.translate(vaddr), 8)
}

// Read128 reads a quadword at vaddr. The caller aligns vaddr.
func (s *Space) Read128(vaddr uint32) (bits.U128, error) {
	return s.ReadPhys128(s.translate(vaddr))
}

// Write8 writes a byte at vaddr.
func (s *Space) Write8(vaddr uint32, v uint8) error {
	return s.store(vaddr, s.translate(vaddr), 1, uint64(v))
}

// Write16 writes a halfword at vaddr.
func (s *Space) Write16(vaddr uint32, v uint16) error {
	return s.store(vaddr, s.translate(vaddr), 2, uint64(v))
}

// Write32 writes a word at vaddr.
func (s *Space) Write32(vaddr uint32, v uint32) error {
	return s.store(vaddr, s.translate(vaddr), 4, uint64(v))
}

// Write64 writes a doubleword at vaddr.
func (s *Space) Write64(vaddr uint32, v uint64) error {
	return s.store(vaddr, s.translate(vaddr), 8, v)
}

// Write128 writes a quadword at vaddr. The caller aligns vaddr.
func (s *Space) Write128(vaddr uint32, v bits.U128) error {
	return s.WritePhys128(s.translate(vaddr), v)
}

// ReadPhys32 reads a word at a physical address, bypassing translation. DMA
// controllers address memory physically.
func (s *Space) ReadPhys32(paddr uint32) (uint32, error) {
	v, err := s.load(paddr, paddr, 4)
	return uint32(v), err
}

// WritePhys32 writes a word at a physical address.
func (s *Space) WritePhys32(paddr uint32, v uint32) error {
	return s.store(paddr, paddr, 4, uint64(v))
}

// ReadPhys128 reads a quadword at a physical address.
func (s *Space) ReadPhys128(paddr uint32) (bits.U128, error) {
	if p := s.page(paddr); p != nil && paddr&pageMask <= PageSize-16 {
		return bits.FromLE(p[paddr&pageMask:]), nil
	}

	lo, err := s.load(paddr, paddr, 8)
	if err != nil {
		return bits.U128{}, err
	}

	hi, err := s.load(paddr+8, paddr+8, 8)
	if err != nil {
		return bits.U128{}, err
	}

	return bits.U128{Lo: lo, Hi: hi}, nil
}

// WritePhys128 writes a quadword at a physical address.
func (s *Space) WritePhys128(paddr uint32, v bits.U128) error {
	if p := s.page(paddr); p != nil && paddr&pageMask <= PageSize-16 {
		v.PutLE(p[paddr&pageMask:])
		return nil
	}

	if err := s.store(paddr, paddr, 8, v.Lo); err != nil {
		return err
	}

	return s.store(paddr+8, paddr+8, 8, v.Hi)
}
