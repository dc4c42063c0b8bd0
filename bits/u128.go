package bits

import (
	"encoding/binary"
	"fmt"
)

// U128 is a 128-bit value, such as an EE general purpose register or a DMA
// quadword. Lanes are numbered from the least significant end, so Word(0) is
// bits 0..31 and Dword(1) is bits 64..127.
type U128 struct {
	Lo uint64
	Hi uint64
}

// Quad builds a U128 from four 32-bit words, w0 being the least significant.
func Quad(w0, w1, w2, w3 uint32) U128 {
	return U128{
		Lo: uint64(w0) | uint64(w1)<<32,
		Hi: uint64(w2) | uint64(w3)<<32,
	}
}

// FromLE reads a little-endian quadword from b.
func FromLE(b []byte) U128 {
	return U128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// PutLE writes q into b in little-endian order.
func (q U128) PutLE(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], q.Lo)
	binary.LittleEndian.PutUint64(b[8:16], q.Hi)
}

// Dword returns 64-bit lane i (0 or 1).
func (q U128) Dword(i int) uint64 {
	if i == 0 {
		return q.Lo
	}

	return q.Hi
}

// SetDword returns q with 64-bit lane i replaced.
func (q U128) SetDword(i int, v uint64) U128 {
	if i == 0 {
		q.Lo = v
	} else {
		q.Hi = v
	}

	return q
}

// Word returns 32-bit lane i (0..3).
func (q U128) Word(i int) uint32 {
	return uint32(q.Dword(i>>1) >> (32 * uint(i&1)))
}

// SetWord returns q with 32-bit lane i replaced.
func (q U128) SetWord(i int, v uint32) U128 {
	shift := 32 * uint(i&1)
	d := q.Dword(i >> 1)
	d = d&^(0xFFFFFFFF<<shift) | uint64(v)<<shift

	return q.SetDword(i>>1, d)
}

// Half returns 16-bit lane i (0..7).
func (q U128) Half(i int) uint16 {
	return uint16(q.Dword(i>>2) >> (16 * uint(i&3)))
}

// SetHalf returns q with 16-bit lane i replaced.
func (q U128) SetHalf(i int, v uint16) U128 {
	shift := 16 * uint(i&3)
	d := q.Dword(i >> 2)
	d = d&^(0xFFFF<<shift) | uint64(v)<<shift

	return q.SetDword(i>>2, d)
}

// Byte returns 8-bit lane i (0..15).
func (q U128) Byte(i int) uint8 {
	return uint8(q.Dword(i>>3) >> (8 * uint(i&7)))
}

// SetByte returns q with 8-bit lane i replaced.
func (q U128) SetByte(i int, v uint8) U128 {
	shift := 8 * uint(i&7)
	d := q.Dword(i >> 3)
	d = d&^(0xFF<<shift) | uint64(v)<<shift

	return q.SetDword(i>>3, d)
}

// And returns q & r.
func (q U128) And(r U128) U128 { return U128{q.Lo & r.Lo, q.Hi & r.Hi} }

// Or returns q | r.
func (q U128) Or(r U128) U128 { return U128{q.Lo | r.Lo, q.Hi | r.Hi} }

// Xor returns q ^ r.
func (q U128) Xor(r U128) U128 { return U128{q.Lo ^ r.Lo, q.Hi ^ r.Hi} }

// Not returns ^q.
func (q U128) Not() U128 { return U128{^q.Lo, ^q.Hi} }

// IsZero reports whether every bit of q is clear.
func (q U128) IsZero() bool { return q.Lo == 0 && q.Hi == 0 }

// Rsh returns q shifted right by n bits (0..127), filling with zeros.
func (q U128) Rsh(n uint) U128 {
	switch {
	case n == 0:
		return q
	case n >= 128:
		return U128{}
	case n >= 64:
		return U128{Lo: q.Hi >> (n - 64)}
	default:
		return U128{Lo: q.Lo>>n | q.Hi<<(64-n), Hi: q.Hi >> n}
	}
}

// Lsh returns q shifted left by n bits (0..127), filling with zeros.
func (q U128) Lsh(n uint) U128 {
	switch {
	case n == 0:
		return q
	case n >= 128:
		return U128{}
	case n >= 64:
		return U128{Hi: q.Lo << (n - 64)}
	default:
		return U128{Lo: q.Lo << n, Hi: q.Hi<<n | q.Lo>>(64-n)}
	}
}

// String formats q as 32 hex digits, most significant first.
func (q U128) String() string {
	return fmt.Sprintf("%016x%016x", q.Hi, q.Lo)
}
