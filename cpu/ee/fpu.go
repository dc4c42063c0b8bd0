package ee

import (
	"math"

	"github.com/sarchlab/ps2sim/cpu"
)

// FCR31 bits.
const (
	FCR31C  = 1 << 23
	FCR31I  = 1 << 17
	FCR31D  = 1 << 16
	FCR31O  = 1 << 15
	FCR31U  = 1 << 14
	FCR31SI = 1 << 6
	FCR31SD = 1 << 5
	FCR31SO = 1 << 4
	FCR31SU = 1 << 3

	fcr0          = 0x2E00
	fcr31Writable = 0x0083C078

	signBit   = 0x80000000
	maxNormal = 0x7F7FFFFF
	expMask   = 0x7F800000
)

// FPU is COP1. It has no infinities, NaNs or denormals: an exponent of 255 is
// an ordinary large number, overflowing results clamp to the largest normal
// and results below the smallest normal flush to a signed zero. Results are
// rounded toward zero.
type FPU struct {
	FPR   [32]uint32
	ACC   uint32
	FCR31 uint32
}

func (f *FPU) reset() {
	*f = FPU{}
}

// F returns register n as a float32.
func (f *FPU) F(n int) float32 {
	return math.Float32frombits(f.FPR[n])
}

// SetF writes register n.
func (f *FPU) SetF(n int, v float32) {
	f.FPR[n] = math.Float32bits(v)
}

func operand(v uint32) float64 {
	switch v & expMask {
	case expMask:
		return float64(math.Float32frombits(v&signBit | maxNormal))
	case 0:
		if v&signBit != 0 {
			return math.Copysign(0, -1)
		}

		return 0
	}

	return float64(math.Float32frombits(v))
}

func signOf(x float64) uint32 {
	if math.Signbit(x) {
		return signBit
	}

	return 0
}

// result rounds x to single precision and updates the O and U flags.
func (f *FPU) result(x float64) uint32 {
	f.FCR31 &^= FCR31O | FCR31U

	if x == 0 {
		return signOf(x)
	}

	if math.Abs(x) >= 0x1p128 {
		f.FCR31 |= FCR31O | FCR31SO
		return signOf(x) | maxNormal
	}

	r := float32(x)
	if math.Abs(float64(r)) > math.Abs(x) {
		r = math.Nextafter32(r, 0)
	}

	if math.Abs(float64(r)) < 0x1p-126 {
		f.FCR31 |= FCR31U | FCR31SU
		return signOf(x)
	}

	return math.Float32bits(r)
}

func (f *FPU) reg(n uint32) float64 {
	return operand(f.FPR[n])
}

func (f *FPU) divide(n, d uint32) uint32 {
	f.FCR31 &^= FCR31I | FCR31D

	a, b := operand(n), operand(d)
	if b == 0 {
		if a == 0 {
			f.FCR31 |= FCR31I | FCR31SI
		} else {
			f.FCR31 |= FCR31D | FCR31SD
		}

		return (n^d)&signBit | maxNormal
	}

	return f.result(a / b)
}

func opMFC1(c *CPU, i cpu.Instruction) error {
	c.setW(i.Rt, c.fpu.FPR[i.Fs()])
	return nil
}

func opMTC1(c *CPU, i cpu.Instruction) error {
	c.fpu.FPR[i.Fs()] = c.gprW(i.Rt)
	return nil
}

func opCFC1(c *CPU, i cpu.Instruction) error {
	switch i.Fs() {
	case 0:
		c.setW(i.Rt, fcr0)
	case 31:
		c.setW(i.Rt, c.fpu.FCR31)
	default:
		c.setW(i.Rt, 0)
	}

	return nil
}

func opCTC1(c *CPU, i cpu.Instruction) error {
	if i.Fs() == 31 {
		c.fpu.FCR31 = c.gprW(i.Rt) & fcr31Writable
	}

	return nil
}

func opLWC1(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 4, false) {
		return nil
	}

	v, err := c.bus.Read32(a)
	if err != nil {
		return c.memErr(err)
	}

	c.fpu.FPR[i.Ft()] = v

	return nil
}

func opSWC1(c *CPU, i cpu.Instruction) error {
	a := c.addr(i)
	if !c.aligned(a, 4, true) {
		return nil
	}

	if err := c.bus.Write32(a, c.fpu.FPR[i.Ft()]); err != nil {
		return c.memErr(err)
	}

	return nil
}

func (c *CPU) fcond() bool {
	return c.fpu.FCR31&FCR31C != 0
}

func opBC1F(c *CPU, i cpu.Instruction) error {
	c.branchIf(!c.fcond(), i)
	return nil
}

func opBC1T(c *CPU, i cpu.Instruction) error {
	c.branchIf(c.fcond(), i)
	return nil
}

func opBC1FL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(!c.fcond(), i)
	return nil
}

func opBC1TL(c *CPU, i cpu.Instruction) error {
	c.branchLikely(c.fcond(), i)
	return nil
}

func opADDS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.result(f.reg(i.Fs()) + f.reg(i.Ft()))

	return nil
}

func opSUBS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.result(f.reg(i.Fs()) - f.reg(i.Ft()))

	return nil
}

func opMULS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.result(f.reg(i.Fs()) * f.reg(i.Ft()))

	return nil
}

func opDIVS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.divide(f.FPR[i.Fs()], f.FPR[i.Ft()])

	return nil
}

func opSQRTS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FCR31 &^= FCR31I | FCR31D

	x := f.reg(i.Ft())
	if x == 0 {
		f.FPR[i.Fd()] = f.FPR[i.Ft()] & signBit
		return nil
	}

	if x < 0 {
		f.FCR31 |= FCR31I | FCR31SI
	}

	f.FPR[i.Fd()] = f.result(math.Sqrt(math.Abs(x)))

	return nil
}

func opRSQRTS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FCR31 &^= FCR31I | FCR31D

	n, d := f.reg(i.Fs()), f.reg(i.Ft())
	if d == 0 {
		f.FCR31 |= FCR31D | FCR31SD
		f.FPR[i.Fd()] = f.FPR[i.Fs()]&signBit | maxNormal

		return nil
	}

	if d < 0 {
		f.FCR31 |= FCR31I | FCR31SI
	}

	f.FPR[i.Fd()] = f.result(n / math.Sqrt(math.Abs(d)))

	return nil
}

func opABSS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.FPR[i.Fs()] &^ signBit
	f.FCR31 &^= FCR31O | FCR31U

	return nil
}

func opNEGS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.FPR[i.Fs()] ^ signBit
	f.FCR31 &^= FCR31O | FCR31U

	return nil
}

func opMOVS(c *CPU, i cpu.Instruction) error {
	c.fpu.FPR[i.Fd()] = c.fpu.FPR[i.Fs()]
	return nil
}

func opADDAS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.ACC = f.result(f.reg(i.Fs()) + f.reg(i.Ft()))

	return nil
}

func opSUBAS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.ACC = f.result(f.reg(i.Fs()) - f.reg(i.Ft()))

	return nil
}

func opMULAS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.ACC = f.result(f.reg(i.Fs()) * f.reg(i.Ft()))

	return nil
}

func opMADDS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.result(operand(f.ACC) + f.reg(i.Fs())*f.reg(i.Ft()))

	return nil
}

func opMSUBS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.result(operand(f.ACC) - f.reg(i.Fs())*f.reg(i.Ft()))

	return nil
}

func opMADDAS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.ACC = f.result(operand(f.ACC) + f.reg(i.Fs())*f.reg(i.Ft()))

	return nil
}

func opMSUBAS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.ACC = f.result(operand(f.ACC) - f.reg(i.Fs())*f.reg(i.Ft()))

	return nil
}

// CVT.W.S saturates values whose magnitude reaches 2^31.
func opCVTWS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	v := f.FPR[i.Fs()]

	switch {
	case (v>>23)&0xFF <= 0x9D:
		f.FPR[i.Fd()] = uint32(int32(math.Float32frombits(v)))
	case v&signBit != 0:
		f.FPR[i.Fd()] = 0x80000000
	default:
		f.FPR[i.Fd()] = 0x7FFFFFFF
	}

	return nil
}

func opCVTSW(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.FPR[i.Fd()] = f.result(float64(int32(f.FPR[i.Fs()])))

	return nil
}

func opMAXS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	if f.reg(i.Fs()) >= f.reg(i.Ft()) {
		f.FPR[i.Fd()] = f.FPR[i.Fs()]
	} else {
		f.FPR[i.Fd()] = f.FPR[i.Ft()]
	}

	f.FCR31 &^= FCR31O | FCR31U

	return nil
}

func opMINS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	if f.reg(i.Fs()) <= f.reg(i.Ft()) {
		f.FPR[i.Fd()] = f.FPR[i.Fs()]
	} else {
		f.FPR[i.Fd()] = f.FPR[i.Ft()]
	}

	f.FCR31 &^= FCR31O | FCR31U

	return nil
}

func (f *FPU) setCond(b bool) {
	if b {
		f.FCR31 |= FCR31C
	} else {
		f.FCR31 &^= FCR31C
	}
}

func opCFS(c *CPU, _ cpu.Instruction) error {
	c.fpu.setCond(false)
	return nil
}

func opCEQS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.setCond(f.reg(i.Fs()) == f.reg(i.Ft()))

	return nil
}

func opCLTS(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.setCond(f.reg(i.Fs()) < f.reg(i.Ft()))

	return nil
}

func opCLES(c *CPU, i cpu.Instruction) error {
	f := &c.fpu
	f.setCond(f.reg(i.Fs()) <= f.reg(i.Ft()))

	return nil
}
