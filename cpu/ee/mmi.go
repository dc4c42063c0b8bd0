package ee

import (
	"math"
	"math/bits"

	u "github.com/sarchlab/ps2sim/bits"
	"github.com/sarchlab/ps2sim/cpu"
)

// Lane helpers. Lane 0 is the least significant.

func words(q u.U128) [4]uint32 {
	return [4]uint32{q.Word(0), q.Word(1), q.Word(2), q.Word(3)}
}

func fromWords(w [4]uint32) u.U128 {
	return u.Quad(w[0], w[1], w[2], w[3])
}

func halves(q u.U128) (h [8]uint16) {
	for k := range h {
		h[k] = q.Half(k)
	}

	return h
}

func fromHalves(h [8]uint16) (q u.U128) {
	for k, v := range h {
		q = q.SetHalf(k, v)
	}

	return q
}

func bytesOf(q u.U128) (b [16]uint8) {
	for k := range b {
		b[k] = q.Byte(k)
	}

	return b
}

func fromBytes(b [16]uint8) (q u.U128) {
	for k, v := range b {
		q = q.SetByte(k, v)
	}

	return q
}

func (c *CPU) rsrt(i cpu.Instruction) (u.U128, u.U128) {
	return c.gpr[i.Rs], c.gpr[i.Rt]
}

func mapW(a, b u.U128, f func(x, y uint32) uint32) u.U128 {
	x, y := words(a), words(b)

	var r [4]uint32
	for k := range r {
		r[k] = f(x[k], y[k])
	}

	return fromWords(r)
}

func mapH(a, b u.U128, f func(x, y uint16) uint16) u.U128 {
	x, y := halves(a), halves(b)

	var r [8]uint16
	for k := range r {
		r[k] = f(x[k], y[k])
	}

	return fromHalves(r)
}

func mapB(a, b u.U128, f func(x, y uint8) uint8) u.U128 {
	x, y := bytesOf(a), bytesOf(b)

	var r [16]uint8
	for k := range r {
		r[k] = f(x[k], y[k])
	}

	return fromBytes(r)
}

func parW(f func(x, y uint32) uint32) handler {
	return func(c *CPU, i cpu.Instruction) error {
		rs, rt := c.rsrt(i)
		c.setQ(i.Rd, mapW(rs, rt, f))

		return nil
	}
}

func parH(f func(x, y uint16) uint16) handler {
	return func(c *CPU, i cpu.Instruction) error {
		rs, rt := c.rsrt(i)
		c.setQ(i.Rd, mapH(rs, rt, f))

		return nil
	}
}

func parB(f func(x, y uint8) uint8) handler {
	return func(c *CPU, i cpu.Instruction) error {
		rs, rt := c.rsrt(i)
		c.setQ(i.Rd, mapB(rs, rt, f))

		return nil
	}
}

func mask32(b bool) uint32 {
	if b {
		return math.MaxUint32
	}

	return 0
}

func mask16(b bool) uint16 {
	if b {
		return math.MaxUint16
	}

	return 0
}

func mask8(b bool) uint8 {
	if b {
		return math.MaxUint8
	}

	return 0
}

func sat32(v int64) uint32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return 0x80000000
	}

	return uint32(v)
}

func sat16(v int64) uint16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return 0x8000
	}

	return uint16(v)
}

func sat8(v int64) uint8 {
	switch {
	case v > math.MaxInt8:
		return math.MaxInt8
	case v < math.MinInt8:
		return 0x80
	}

	return uint8(v)
}

func usat(v, limit int64) int64 {
	switch {
	case v > limit:
		return limit
	case v < 0:
		return 0
	}

	return v
}

var (
	opPADDW = parW(func(x, y uint32) uint32 { return x + y })
	opPSUBW = parW(func(x, y uint32) uint32 { return x - y })
	opPCGTW = parW(func(x, y uint32) uint32 { return mask32(int32(x) > int32(y)) })
	opPMAXW = parW(func(x, y uint32) uint32 {
		if int32(x) > int32(y) {
			return x
		}
		return y
	})
	opPADDH = parH(func(x, y uint16) uint16 { return x + y })
	opPSUBH = parH(func(x, y uint16) uint16 { return x - y })
	opPCGTH = parH(func(x, y uint16) uint16 { return mask16(int16(x) > int16(y)) })
	opPMAXH = parH(func(x, y uint16) uint16 {
		if int16(x) > int16(y) {
			return x
		}
		return y
	})
	opPADDB = parB(func(x, y uint8) uint8 { return x + y })
	opPSUBB = parB(func(x, y uint8) uint8 { return x - y })
	opPCGTB = parB(func(x, y uint8) uint8 { return mask8(int8(x) > int8(y)) })

	opPADDSW = parW(func(x, y uint32) uint32 { return sat32(int64(int32(x)) + int64(int32(y))) })
	opPSUBSW = parW(func(x, y uint32) uint32 { return sat32(int64(int32(x)) - int64(int32(y))) })
	opPADDSH = parH(func(x, y uint16) uint16 { return sat16(int64(int16(x)) + int64(int16(y))) })
	opPSUBSH = parH(func(x, y uint16) uint16 { return sat16(int64(int16(x)) - int64(int16(y))) })
	opPADDSB = parB(func(x, y uint8) uint8 { return sat8(int64(int8(x)) + int64(int8(y))) })
	opPSUBSB = parB(func(x, y uint8) uint8 { return sat8(int64(int8(x)) - int64(int8(y))) })

	opPCEQW = parW(func(x, y uint32) uint32 { return mask32(x == y) })
	opPCEQH = parH(func(x, y uint16) uint16 { return mask16(x == y) })
	opPCEQB = parB(func(x, y uint8) uint8 { return mask8(x == y) })
	opPMINW = parW(func(x, y uint32) uint32 {
		if int32(x) < int32(y) {
			return x
		}
		return y
	})
	opPMINH = parH(func(x, y uint16) uint16 {
		if int16(x) < int16(y) {
			return x
		}
		return y
	})

	opPADDUW = parW(func(x, y uint32) uint32 { return uint32(usat(int64(x)+int64(y), math.MaxUint32)) })
	opPSUBUW = parW(func(x, y uint32) uint32 { return uint32(usat(int64(x)-int64(y), math.MaxUint32)) })
	opPADDUH = parH(func(x, y uint16) uint16 { return uint16(usat(int64(x)+int64(y), math.MaxUint16)) })
	opPSUBUH = parH(func(x, y uint16) uint16 { return uint16(usat(int64(x)-int64(y), math.MaxUint16)) })
	opPADDUB = parB(func(x, y uint8) uint8 { return uint8(usat(int64(x)+int64(y), math.MaxUint8)) })
	opPSUBUB = parB(func(x, y uint8) uint8 { return uint8(usat(int64(x)-int64(y), math.MaxUint8)) })

	opPAND = parW(func(x, y uint32) uint32 { return x & y })
	opPOR  = parW(func(x, y uint32) uint32 { return x | y })
	opPXOR = parW(func(x, y uint32) uint32 { return x ^ y })
	opPNOR = parW(func(x, y uint32) uint32 { return ^(x | y) })
)

func opPABSW(c *CPU, i cpu.Instruction) error {
	w := words(c.gpr[i.Rt])
	for k, v := range w {
		switch {
		case v == 0x80000000:
			w[k] = math.MaxInt32
		case int32(v) < 0:
			w[k] = -v
		}
	}

	c.setQ(i.Rd, fromWords(w))

	return nil
}

func opPABSH(c *CPU, i cpu.Instruction) error {
	h := halves(c.gpr[i.Rt])
	for k, v := range h {
		switch {
		case v == 0x8000:
			h[k] = math.MaxInt16
		case int16(v) < 0:
			h[k] = -v
		}
	}

	c.setQ(i.Rd, fromHalves(h))

	return nil
}

// Pack, extend and interleave.

func opPEXTLW(c *CPU, i cpu.Instruction) error {
	s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])
	c.setQ(i.Rd, fromWords([4]uint32{t[0], s[0], t[1], s[1]}))

	return nil
}

func opPEXTUW(c *CPU, i cpu.Instruction) error {
	s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])
	c.setQ(i.Rd, fromWords([4]uint32{t[2], s[2], t[3], s[3]}))

	return nil
}

func opPPACW(c *CPU, i cpu.Instruction) error {
	s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])
	c.setQ(i.Rd, fromWords([4]uint32{t[0], t[2], s[0], s[2]}))

	return nil
}

func extendH(c *CPU, i cpu.Instruction, base int) {
	s, t := halves(c.gpr[i.Rs]), halves(c.gpr[i.Rt])

	var r [8]uint16
	for k := 0; k < 4; k++ {
		r[2*k] = t[base+k]
		r[2*k+1] = s[base+k]
	}

	c.setQ(i.Rd, fromHalves(r))
}

func opPEXTLH(c *CPU, i cpu.Instruction) error {
	extendH(c, i, 0)
	return nil
}

func opPEXTUH(c *CPU, i cpu.Instruction) error {
	extendH(c, i, 4)
	return nil
}

func opPPACH(c *CPU, i cpu.Instruction) error {
	s, t := halves(c.gpr[i.Rs]), halves(c.gpr[i.Rt])

	var r [8]uint16
	for k := 0; k < 4; k++ {
		r[k] = t[2*k]
		r[k+4] = s[2*k]
	}

	c.setQ(i.Rd, fromHalves(r))

	return nil
}

func extendB(c *CPU, i cpu.Instruction, base int) {
	s, t := bytesOf(c.gpr[i.Rs]), bytesOf(c.gpr[i.Rt])

	var r [16]uint8
	for k := 0; k < 8; k++ {
		r[2*k] = t[base+k]
		r[2*k+1] = s[base+k]
	}

	c.setQ(i.Rd, fromBytes(r))
}

func opPEXTLB(c *CPU, i cpu.Instruction) error {
	extendB(c, i, 0)
	return nil
}

func opPEXTUB(c *CPU, i cpu.Instruction) error {
	extendB(c, i, 8)
	return nil
}

func opPPACB(c *CPU, i cpu.Instruction) error {
	s, t := bytesOf(c.gpr[i.Rs]), bytesOf(c.gpr[i.Rt])

	var r [16]uint8
	for k := 0; k < 8; k++ {
		r[k] = t[2*k]
		r[k+8] = s[2*k]
	}

	c.setQ(i.Rd, fromBytes(r))

	return nil
}

func opPINTH(c *CPU, i cpu.Instruction) error {
	s, t := halves(c.gpr[i.Rs]), halves(c.gpr[i.Rt])

	var r [8]uint16
	for k := 0; k < 4; k++ {
		r[2*k] = t[k]
		r[2*k+1] = s[k+4]
	}

	c.setQ(i.Rd, fromHalves(r))

	return nil
}

func opPINTEH(c *CPU, i cpu.Instruction) error {
	s, t := halves(c.gpr[i.Rs]), halves(c.gpr[i.Rt])

	var r [8]uint16
	for k := 0; k < 4; k++ {
		r[2*k] = t[2*k]
		r[2*k+1] = s[2*k]
	}

	c.setQ(i.Rd, fromHalves(r))

	return nil
}

func permuteH(order [8]int) handler {
	return func(c *CPU, i cpu.Instruction) error {
		t := halves(c.gpr[i.Rt])

		var r [8]uint16
		for k, from := range order {
			r[k] = t[from]
		}

		c.setQ(i.Rd, fromHalves(r))

		return nil
	}
}

func permuteW(order [4]int) handler {
	return func(c *CPU, i cpu.Instruction) error {
		t := words(c.gpr[i.Rt])
		c.setQ(i.Rd, fromWords([4]uint32{t[order[0]], t[order[1]], t[order[2]], t[order[3]]}))

		return nil
	}
}

var (
	opPEXEH  = permuteH([8]int{2, 1, 0, 3, 6, 5, 4, 7})
	opPREVH  = permuteH([8]int{3, 2, 1, 0, 7, 6, 5, 4})
	opPEXCH  = permuteH([8]int{0, 2, 1, 3, 4, 6, 5, 7})
	opPCPYH  = permuteH([8]int{0, 0, 0, 0, 4, 4, 4, 4})
	opPEXEW  = permuteW([4]int{2, 1, 0, 3})
	opPROT3W = permuteW([4]int{1, 2, 0, 3})
	opPEXCW  = permuteW([4]int{0, 2, 1, 3})
)

func opPCPYLD(c *CPU, i cpu.Instruction) error {
	c.setQ(i.Rd, u.U128{Lo: c.gpr[i.Rt].Lo, Hi: c.gpr[i.Rs].Lo})
	return nil
}

func opPCPYUD(c *CPU, i cpu.Instruction) error {
	c.setQ(i.Rd, u.U128{Lo: c.gpr[i.Rs].Hi, Hi: c.gpr[i.Rt].Hi})
	return nil
}

// PLZCW counts the leading bits equal to the sign bit, minus one, in the two
// low words of rs.
func opPLZCW(c *CPU, i cpu.Instruction) error {
	rs := c.gpr[i.Rs]
	r := c.gpr[i.Rd]

	for k := 0; k < 2; k++ {
		w := rs.Word(k)
		if int32(w) < 0 {
			w = ^w
		}

		r = r.SetWord(k, uint32(bits.LeadingZeros32(w)-1))
	}

	c.setD(i.Rd, r.Lo)

	return nil
}

// Parallel shifts by the immediate shift amount.

func shiftH(f func(v uint16, s uint32) uint16) handler {
	return func(c *CPU, i cpu.Instruction) error {
		h := halves(c.gpr[i.Rt])
		for k := range h {
			h[k] = f(h[k], i.Sa&0xF)
		}

		c.setQ(i.Rd, fromHalves(h))

		return nil
	}
}

func shiftW(f func(v uint32, s uint32) uint32) handler {
	return func(c *CPU, i cpu.Instruction) error {
		w := words(c.gpr[i.Rt])
		for k := range w {
			w[k] = f(w[k], i.Sa)
		}

		c.setQ(i.Rd, fromWords(w))

		return nil
	}
}

// Variable shifts operate on words 0 and 2 and sign-extend into the
// doublewords.
func shiftVW(f func(v uint32, s uint32) uint32) handler {
	return func(c *CPU, i cpu.Instruction) error {
		s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])

		var r u.U128
		for p := 0; p < 2; p++ {
			r = r.SetDword(p, u.SignExtend32(f(t[2*p], s[2*p]&0x1F)))
		}

		c.setQ(i.Rd, r)

		return nil
	}
}

var (
	opPSLLH  = shiftH(func(v uint16, s uint32) uint16 { return v << s })
	opPSRLH  = shiftH(func(v uint16, s uint32) uint16 { return v >> s })
	opPSRAH  = shiftH(func(v uint16, s uint32) uint16 { return uint16(int16(v) >> s) })
	opPSLLW  = shiftW(func(v uint32, s uint32) uint32 { return v << s })
	opPSRLW  = shiftW(func(v uint32, s uint32) uint32 { return v >> s })
	opPSRAW  = shiftW(func(v uint32, s uint32) uint32 { return uint32(int32(v) >> s) })
	opPSLLVW = shiftVW(func(v uint32, s uint32) uint32 { return v << s })
	opPSRLVW = shiftVW(func(v uint32, s uint32) uint32 { return v >> s })
	opPSRAVW = shiftVW(func(v uint32, s uint32) uint32 { return uint32(int32(v) >> s) })
)

// QFSRV funnel-shifts the 256-bit value rs:rt right by SA bytes.
func opQFSRV(c *CPU, i cpu.Instruction) error {
	rs, rt := c.rsrt(i)
	n := uint(c.sa&0xF) * 8

	if n == 0 {
		c.setQ(i.Rd, rt)
		return nil
	}

	c.setQ(i.Rd, rt.Rsh(n).Or(rs.Lsh(128-n)))

	return nil
}

// HI/LO transfers.

func opPMFHI(c *CPU, i cpu.Instruction) error {
	c.setQ(i.Rd, c.hi)
	return nil
}

func opPMFLO(c *CPU, i cpu.Instruction) error {
	c.setQ(i.Rd, c.lo)
	return nil
}

func opPMTHI(c *CPU, i cpu.Instruction) error {
	c.hi = c.gpr[i.Rs]
	return nil
}

func opPMTLO(c *CPU, i cpu.Instruction) error {
	c.lo = c.gpr[i.Rs]
	return nil
}

func opPMFHL(c *CPU, i cpu.Instruction) error {
	lo, hi := words(c.lo), words(c.hi)

	switch i.Sa {
	case 0: // LW
		c.setQ(i.Rd, fromWords([4]uint32{lo[0], hi[0], lo[2], hi[2]}))
	case 1: // UW
		c.setQ(i.Rd, fromWords([4]uint32{lo[1], hi[1], lo[3], hi[3]}))
	case 2: // SLW
		var r u.U128
		for p := 0; p < 2; p++ {
			v := int64(uint64(hi[2*p])<<32 | uint64(lo[2*p]))
			r = r.SetDword(p, u.SignExtend32(sat32(v)))
		}

		c.setQ(i.Rd, r)
	case 3: // LH
		lh, hh := halves(c.lo), halves(c.hi)
		c.setQ(i.Rd, fromHalves([8]uint16{
			lh[0], lh[2], hh[0], hh[2], lh[4], lh[6], hh[4], hh[6],
		}))
	case 4: // SH
		s := func(w uint32) uint16 { return sat16(int64(int32(w))) }
		c.setQ(i.Rd, fromHalves([8]uint16{
			s(lo[0]), s(lo[1]), s(hi[0]), s(hi[1]),
			s(lo[2]), s(lo[3]), s(hi[2]), s(hi[3]),
		}))
	default:
		return c.illegal(i)
	}

	return nil
}

func opPMTHL(c *CPU, i cpu.Instruction) error {
	if i.Sa != 0 {
		return c.illegal(i)
	}

	s := words(c.gpr[i.Rs])
	lo, hi := words(c.lo), words(c.hi)
	lo[0], hi[0], lo[2], hi[2] = s[0], s[1], s[2], s[3]
	c.lo, c.hi = fromWords(lo), fromWords(hi)

	return nil
}

// Parallel word multiply and divide use words 0 and 2, one per pipeline.

func (c *CPU) setPipeHILO(p int, hi, lo uint32) {
	c.hi = c.hi.SetDword(p, u.SignExtend32(hi))
	c.lo = c.lo.SetDword(p, u.SignExtend32(lo))
}

func pmult(signed, accumulate bool) handler {
	return func(c *CPU, i cpu.Instruction) error {
		s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])

		var r u.U128
		for p := 0; p < 2; p++ {
			var prod uint64
			if signed {
				prod = uint64(int64(int32(s[2*p])) * int64(int32(t[2*p])))
			} else {
				prod = uint64(s[2*p]) * uint64(t[2*p])
			}

			if accumulate {
				prod += uint64(c.hi.Word(2*p))<<32 | uint64(c.lo.Word(2*p))
			}

			c.setPipeHILO(p, uint32(prod>>32), uint32(prod))
			r = r.SetDword(p, prod)
		}

		c.setQ(i.Rd, r)

		return nil
	}
}

var (
	opPMULTW  = pmult(true, false)
	opPMULTUW = pmult(false, false)
	opPMADDW  = pmult(true, true)
	opPMADDUW = pmult(false, true)
)

func opPDIVW(c *CPU, i cpu.Instruction) error {
	s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])

	for p := 0; p < 2; p++ {
		n, d := int32(s[2*p]), int32(t[2*p])

		switch {
		case d == 0:
			q := int32(-1)
			if n < 0 {
				q = 1
			}

			c.setPipeHILO(p, uint32(n), uint32(q))
		case n == math.MinInt32 && d == -1:
			c.setPipeHILO(p, 0, uint32(n))
		default:
			c.setPipeHILO(p, uint32(n%d), uint32(n/d))
		}
	}

	return nil
}

func opPDIVUW(c *CPU, i cpu.Instruction) error {
	s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])

	for p := 0; p < 2; p++ {
		n, d := s[2*p], t[2*p]
		if d == 0 {
			c.setPipeHILO(p, n, math.MaxUint32)
			continue
		}

		c.setPipeHILO(p, n%d, n/d)
	}

	return nil
}

func opPMSUBW(c *CPU, i cpu.Instruction) error {
	s, t := words(c.gpr[i.Rs]), words(c.gpr[i.Rt])

	var r u.U128
	for p := 0; p < 2; p++ {
		acc := int64(uint64(c.hi.Word(2*p))<<32 | uint64(c.lo.Word(2*p)))
		prod := uint64(acc - int64(int32(s[2*p]))*int64(int32(t[2*p])))

		c.setPipeHILO(p, uint32(prod>>32), uint32(prod))
		r = r.SetDword(p, prod)
	}

	c.setQ(i.Rd, r)

	return nil
}

// Parallel halfword multiplies spread eight 32-bit products over HI and LO:
// products 0,1 and 4,5 go to LO, 2,3 and 6,7 to HI. Rd receives products
// 0, 2, 4 and 6.
func pmulth(combine func(acc, prod uint32) uint32) handler {
	return func(c *CPU, i cpu.Instruction) error {
		s, t := halves(c.gpr[i.Rs]), halves(c.gpr[i.Rt])
		lo, hi := words(c.lo), words(c.hi)

		for k := 0; k < 8; k++ {
			prod := uint32(int32(int16(s[k])) * int32(int16(t[k])))

			dst := &lo
			if k&2 != 0 {
				dst = &hi
			}

			w := k&1 | k>>2<<1
			dst[w] = combine(dst[w], prod)
		}

		c.lo, c.hi = fromWords(lo), fromWords(hi)
		c.setQ(i.Rd, fromWords([4]uint32{lo[0], hi[0], lo[2], hi[2]}))

		return nil
	}
}

// phmadh sums (or subtracts) adjacent halfword products. Results land in
// LO/HI words 0 and 2; words 1 and 3 keep their values.
func phmadh(sub bool) handler {
	return func(c *CPU, i cpu.Instruction) error {
		s, t := halves(c.gpr[i.Rs]), halves(c.gpr[i.Rt])
		lo, hi := words(c.lo), words(c.hi)

		var r [4]uint32
		for j := 0; j < 4; j++ {
			even := int32(int16(s[2*j])) * int32(int16(t[2*j]))
			odd := int32(int16(s[2*j+1])) * int32(int16(t[2*j+1]))

			v := odd + even
			if sub {
				v = odd - even
			}

			dst := &lo
			if j&1 != 0 {
				dst = &hi
			}

			dst[j&2] = uint32(v)
			r[j] = uint32(v)
		}

		c.lo, c.hi = fromWords(lo), fromWords(hi)
		c.setQ(i.Rd, fromWords(r))

		return nil
	}
}

var (
	opPMULTH = pmulth(func(_, p uint32) uint32 { return p })
	opPMADDH = pmulth(func(a, p uint32) uint32 { return a + p })
	opPMSUBH = pmulth(func(a, p uint32) uint32 { return a - p })
	opPHMADH = phmadh(false)
	opPHMSBH = phmadh(true)
)

// opPDIVBW divides each word of rs by halfword 0 of rt. Remainders are
// sign-extended halfwords.
func opPDIVBW(c *CPU, i cpu.Instruction) error {
	s := words(c.gpr[i.Rs])
	d := int32(int16(c.gpr[i.Rt].Half(0)))

	var lo, hi [4]uint32
	for k, v := range s {
		n := int32(v)

		switch {
		case d == 0:
			lo[k], hi[k] = math.MaxUint32, v
			if n < 0 {
				lo[k] = 1
			}
		case n == math.MinInt32 && d == -1:
			lo[k], hi[k] = v, 0
		default:
			lo[k] = uint32(n / d)
			hi[k] = uint32(int32(int16(n % d)))
		}
	}

	c.lo, c.hi = fromWords(lo), fromWords(hi)

	return nil
}

// opPADSBH subtracts the low four halfwords and adds the high four.
func opPADSBH(c *CPU, i cpu.Instruction) error {
	s, t := halves(c.gpr[i.Rs]), halves(c.gpr[i.Rt])

	var r [8]uint16
	for k := 0; k < 4; k++ {
		r[k] = s[k] - t[k]
		r[k+4] = s[k+4] + t[k+4]
	}

	c.setQ(i.Rd, fromHalves(r))

	return nil
}

// PEXT5 and PPAC5 convert between 1:5:5:5 and 8:8:8:8 pixels.

func opPEXT5(c *CPU, i cpu.Instruction) error {
	w := words(c.gpr[i.Rt])
	for k, v := range w {
		w[k] = (v&0x1F)<<3 | (v>>5&0x1F)<<11 | (v>>10&0x1F)<<19 | (v>>15&1)<<31
	}

	c.setQ(i.Rd, fromWords(w))

	return nil
}

func opPPAC5(c *CPU, i cpu.Instruction) error {
	w := words(c.gpr[i.Rt])
	for k, v := range w {
		w[k] = v>>3&0x1F | (v>>11&0x1F)<<5 | (v>>19&0x1F)<<10 | (v>>31&1)<<15
	}

	c.setQ(i.Rd, fromWords(w))

	return nil
}
