// Package bits holds the fixed-width helpers shared by the interpreters, the
// address spaces and the DMA controllers.
package bits

import "encoding/binary"

// SignExtend8 sign-extends an 8-bit value to 64 bits.
func SignExtend8(v uint8) uint64 {
	return uint64(int64(int8(v)))
}

// SignExtend16 sign-extends a 16-bit value to 64 bits.
func SignExtend16(v uint16) uint64 {
	return uint64(int64(int16(v)))
}

// SignExtend32 sign-extends a 32-bit value to 64 bits.
func SignExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

// SignExtend16To32 sign-extends a 16-bit value to 32 bits.
func SignExtend16To32(v uint16) uint32 {
	return uint32(int32(int16(v)))
}

// Field extracts width bits of v starting at bit lsb.
func Field(v uint32, lsb, width uint) uint32 {
	return (v >> lsb) & (1<<width - 1)
}

// Bit reports whether bit n of v is set.
func Bit(v uint32, n uint) bool {
	return v&(1<<n) != 0
}

// LoadLE reads a little-endian value of the given byte width (1, 2, 4 or 8)
// from b.
func LoadLE(b []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}

	panic("bits: unsupported width")
}

// StoreLE writes v as a little-endian value of the given byte width into b.
func StoreLE(b []byte, width int, v uint64) {
	switch width {
	case 1:
		b[0] = uint8(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		panic("bits: unsupported width")
	}
}
