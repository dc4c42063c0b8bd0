package mem

import (
	"errors"
	"fmt"
)

// ErrUnmapped is matched by every error that reports an access to an address
// that neither a region nor a device claims.
var ErrUnmapped = errors.New("unmapped address")

// UnmappedError describes an access that fell through the page table and
// found no device.
type UnmappedError struct {
	Space string
	VAddr uint32
	PAddr uint32
	Width int
	Write bool
	Value uint64
}

func (e *UnmappedError) Error() string {
	if e.Write {
		return fmt.Sprintf("%s: unmapped %d-bit write of 0x%x at 0x%08x (physical 0x%08x)",
			e.Space, e.Width*8, e.Value, e.VAddr, e.PAddr)
	}

	return fmt.Sprintf("%s: unmapped %d-bit read at 0x%08x (physical 0x%08x)",
		e.Space, e.Width*8, e.VAddr, e.PAddr)
}

// Is makes errors.Is(err, ErrUnmapped) hold.
func (e *UnmappedError) Is(target error) bool {
	return target == ErrUnmapped
}
