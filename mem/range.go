package mem

// A Range is a contiguous window of physical addresses.
type Range struct {
	Start  uint32 // Start address
	Length uint32 // Length of the mapping
}

// NewRange creates a Range.
func NewRange(start, length uint32) Range {
	return Range{Start: start, Length: length}
}

// Contains returns whether addr is located inside this range.
func (r Range) Contains(addr uint32) bool {
	return addr-r.Start < r.Length
}

// Offset returns the distance between addr and the start of the range. It does
// not check that the range contains the address.
func (r Range) Offset(addr uint32) uint32 {
	return addr - r.Start
}

// End returns the first address after the range.
func (r Range) End() uint64 {
	return uint64(r.Start) + uint64(r.Length)
}

// Overlaps reports whether the two ranges share at least one address.
func (r Range) Overlaps(o Range) bool {
	return uint64(r.Start) < o.End() && uint64(o.Start) < r.End()
}
