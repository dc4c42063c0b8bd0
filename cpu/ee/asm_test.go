package ee

func itype(op, rs, rt uint32, imm uint16) uint32 {
	return op<<26 | rs<<21 | rt<<16 | uint32(imm)
}

func rtype(rs, rt, rd, sa, funct uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | sa<<6 | funct
}

func mmiOp(rs, rt, rd, sa, funct uint32) uint32 {
	return 0x1C<<26 | rtype(rs, rt, rd, sa, funct)
}

func copOp(n, rs, rt, rd, sa, funct uint32) uint32 {
	return (0x10+n)<<26 | rtype(rs, rt, rd, sa, funct)
}

const (
	nop     = 0
	syscall = 0x0000000C
	eret    = 0x42000018
)
