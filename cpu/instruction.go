// Package cpu holds what the EE and IOP interpreters share: the decoded
// instruction value, the interpreter contract, exception codes and the error
// returned for opcodes that are not emulated.
package cpu

import "fmt"

// Instruction is the decoded view of one 32-bit MIPS instruction word.
type Instruction struct {
	Word   uint32
	Opcode uint32
	Rs     uint32
	Rt     uint32
	Rd     uint32
	Sa     uint32
	Funct  uint32
	Imm    uint16
	SImm   int32
	Target uint32
}

// Decode splits word into its fields.
func Decode(word uint32) Instruction {
	return Instruction{
		Word:   word,
		Opcode: word >> 26,
		Rs:     (word >> 21) & 0x1F,
		Rt:     (word >> 16) & 0x1F,
		Rd:     (word >> 11) & 0x1F,
		Sa:     (word >> 6) & 0x1F,
		Funct:  word & 0x3F,
		Imm:    uint16(word),
		SImm:   int32(int16(word)),
		Target: word & 0x03FFFFFF,
	}
}

// Fs is the COP1 source register field, which shares bits with Rd.
func (i Instruction) Fs() uint32 {
	return i.Rd
}

// Ft is the COP1 second source register field.
func (i Instruction) Ft() uint32 {
	return i.Rt
}

// Fd is the COP1 destination register field, which shares bits with Sa.
func (i Instruction) Fd() uint32 {
	return i.Sa
}

// BranchOffset is the sign-extended immediate shifted into a byte offset.
func (i Instruction) BranchOffset() uint32 {
	return uint32(i.SImm << 2)
}

func (i Instruction) String() string {
	return fmt.Sprintf(
		"%08x op=%02x rs=%d rt=%d rd=%d sa=%d funct=%02x imm=%04x",
		i.Word, i.Opcode, i.Rs, i.Rt, i.Rd, i.Sa, i.Funct, i.Imm)
}

// RegNames are the conventional MIPS names of the general registers.
var RegNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}
