package ee

import "github.com/sarchlab/ps2sim/cpu"

type handler func(c *CPU, inst cpu.Instruction) error

// Each level of the dispatch tree is indexed by the field the instruction set
// uses at that level: opcode, then funct, rt, rs or sa.
var (
	primaryTable [64]handler
	specialTable [64]handler
	regimmTable  [32]handler

	cop0Table   [32]handler
	cop0BCTable [32]handler
	cop0COTable [64]handler

	cop1Table   [32]handler
	cop1BCTable [32]handler
	cop1STable  [64]handler
	cop1WTable  [64]handler

	cop2Table   [32]handler
	cop2BCTable [32]handler

	mmiTable  [64]handler
	mmi0Table [32]handler
	mmi1Table [32]handler
	mmi2Table [32]handler
	mmi3Table [32]handler
)

func dispatch(table []handler, key uint32, c *CPU, inst cpu.Instruction) error {
	h := table[key]
	if h == nil {
		return c.illegal(inst)
	}

	return h(c, inst)
}

func execPrimary(c *CPU, inst cpu.Instruction) error {
	return dispatch(primaryTable[:], inst.Opcode, c, inst)
}

func execSpecial(c *CPU, inst cpu.Instruction) error {
	return dispatch(specialTable[:], inst.Funct, c, inst)
}

func execRegimm(c *CPU, inst cpu.Instruction) error {
	return dispatch(regimmTable[:], inst.Rt, c, inst)
}

func execCOP0(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop0Table[:], inst.Rs, c, inst)
}

func execCOP0BC(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop0BCTable[:], inst.Rt, c, inst)
}

func execCOP0CO(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop0COTable[:], inst.Funct, c, inst)
}

func execCOP1(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop1Table[:], inst.Rs, c, inst)
}

func execCOP1BC(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop1BCTable[:], inst.Rt, c, inst)
}

func execCOP1S(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop1STable[:], inst.Funct, c, inst)
}

func execCOP1W(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop1WTable[:], inst.Funct, c, inst)
}

func execCOP2(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop2Table[:], inst.Rs, c, inst)
}

func execCOP2BC(c *CPU, inst cpu.Instruction) error {
	return dispatch(cop2BCTable[:], inst.Rt, c, inst)
}

func execMMI(c *CPU, inst cpu.Instruction) error {
	return dispatch(mmiTable[:], inst.Funct, c, inst)
}

func execMMI0(c *CPU, inst cpu.Instruction) error {
	return dispatch(mmi0Table[:], inst.Sa, c, inst)
}

func execMMI1(c *CPU, inst cpu.Instruction) error {
	return dispatch(mmi1Table[:], inst.Sa, c, inst)
}

func execMMI2(c *CPU, inst cpu.Instruction) error {
	return dispatch(mmi2Table[:], inst.Sa, c, inst)
}

func execMMI3(c *CPU, inst cpu.Instruction) error {
	return dispatch(mmi3Table[:], inst.Sa, c, inst)
}

func init() {
	primaryTable = [64]handler{
		0x00: execSpecial, 0x01: execRegimm, 0x02: opJ, 0x03: opJAL,
		0x04: opBEQ, 0x05: opBNE, 0x06: opBLEZ, 0x07: opBGTZ,
		0x08: opADDI, 0x09: opADDIU, 0x0A: opSLTI, 0x0B: opSLTIU,
		0x0C: opANDI, 0x0D: opORI, 0x0E: opXORI, 0x0F: opLUI,
		0x10: execCOP0, 0x11: execCOP1, 0x12: execCOP2,
		0x14: opBEQL, 0x15: opBNEL, 0x16: opBLEZL, 0x17: opBGTZL,
		0x18: opDADDI, 0x19: opDADDIU, 0x1A: opLDL, 0x1B: opLDR,
		0x1C: execMMI, 0x1E: opLQ, 0x1F: opSQ,
		0x20: opLB, 0x21: opLH, 0x22: opLWL, 0x23: opLW,
		0x24: opLBU, 0x25: opLHU, 0x26: opLWR, 0x27: opLWU,
		0x28: opSB, 0x29: opSH, 0x2A: opSWL, 0x2B: opSW,
		0x2C: opSDL, 0x2D: opSDR, 0x2E: opSWR, 0x2F: opNop,
		0x31: opLWC1, 0x33: opNop, 0x36: opLQC2, 0x37: opLD,
		0x39: opSWC1, 0x3E: opSQC2, 0x3F: opSD,
	}

	specialTable = [64]handler{
		0x00: opSLL, 0x02: opSRL, 0x03: opSRA,
		0x04: opSLLV, 0x06: opSRLV, 0x07: opSRAV,
		0x08: opJR, 0x09: opJALR, 0x0A: opMOVZ, 0x0B: opMOVN,
		0x0C: opSYSCALL, 0x0D: opBREAK, 0x0F: opNop,
		0x10: opMFHI, 0x11: opMTHI, 0x12: opMFLO, 0x13: opMTLO,
		0x14: opDSLLV, 0x16: opDSRLV, 0x17: opDSRAV,
		0x18: opMULT, 0x19: opMULTU, 0x1A: opDIV, 0x1B: opDIVU,
		0x20: opADD, 0x21: opADDU, 0x22: opSUB, 0x23: opSUBU,
		0x24: opAND, 0x25: opOR, 0x26: opXOR, 0x27: opNOR,
		0x28: opMFSA, 0x29: opMTSA, 0x2A: opSLT, 0x2B: opSLTU,
		0x2C: opDADD, 0x2D: opDADDU, 0x2E: opDSUB, 0x2F: opDSUBU,
		0x30: opTGE, 0x31: opTGEU, 0x32: opTLT, 0x33: opTLTU,
		0x34: opTEQ, 0x36: opTNE,
		0x38: opDSLL, 0x3A: opDSRL, 0x3B: opDSRA,
		0x3C: opDSLL32, 0x3E: opDSRL32, 0x3F: opDSRA32,
	}

	regimmTable = [32]handler{
		0x00: opBLTZ, 0x01: opBGEZ, 0x02: opBLTZL, 0x03: opBGEZL,
		0x08: opTGEI, 0x09: opTGEIU, 0x0A: opTLTI, 0x0B: opTLTIU,
		0x0C: opTEQI, 0x0E: opTNEI,
		0x10: opBLTZAL, 0x11: opBGEZAL, 0x12: opBLTZALL, 0x13: opBGEZALL,
		0x18: opMTSAB, 0x19: opMTSAH,
	}

	cop0Table = [32]handler{
		0x00: opMFC0, 0x04: opMTC0, 0x08: execCOP0BC, 0x10: execCOP0CO,
	}
	cop0BCTable = [32]handler{
		0x00: opBC0F, 0x01: opBC0T, 0x02: opBC0FL, 0x03: opBC0TL,
	}
	cop0COTable = [64]handler{
		0x01: opNop, 0x02: opNop, 0x06: opNop, 0x08: opNop,
		0x18: opERET, 0x38: opEI, 0x39: opDI,
	}

	cop1Table = [32]handler{
		0x00: opMFC1, 0x02: opCFC1, 0x04: opMTC1, 0x06: opCTC1,
		0x08: execCOP1BC, 0x10: execCOP1S, 0x14: execCOP1W,
	}
	cop1BCTable = [32]handler{
		0x00: opBC1F, 0x01: opBC1T, 0x02: opBC1FL, 0x03: opBC1TL,
	}
	cop1STable = [64]handler{
		0x00: opADDS, 0x01: opSUBS, 0x02: opMULS, 0x03: opDIVS,
		0x04: opSQRTS, 0x05: opABSS, 0x06: opMOVS, 0x07: opNEGS,
		0x16: opRSQRTS,
		0x18: opADDAS, 0x19: opSUBAS, 0x1A: opMULAS,
		0x1C: opMADDS, 0x1D: opMSUBS, 0x1E: opMADDAS, 0x1F: opMSUBAS,
		0x24: opCVTWS, 0x28: opMAXS, 0x29: opMINS,
		0x30: opCFS, 0x32: opCEQS, 0x34: opCLTS, 0x36: opCLES,
	}
	cop1WTable = [64]handler{
		0x20: opCVTSW,
	}

	cop2Table = [32]handler{
		0x01: opQMFC2, 0x02: opCFC2, 0x05: opQMTC2, 0x06: opCTC2,
		0x08: execCOP2BC,
	}
	for rs := 0x10; rs < 0x20; rs++ {
		cop2Table[rs] = opVUMacro
	}
	cop2BCTable = [32]handler{
		0x00: opBC2F, 0x01: opBC2T, 0x02: opBC2FL, 0x03: opBC2TL,
	}

	mmiTable = [64]handler{
		0x00: opMADD, 0x01: opMADDU, 0x04: opPLZCW,
		0x08: execMMI0, 0x09: execMMI2,
		0x10: opMFHI1, 0x11: opMTHI1, 0x12: opMFLO1, 0x13: opMTLO1,
		0x18: opMULT1, 0x19: opMULTU1, 0x1A: opDIV1, 0x1B: opDIVU1,
		0x20: opMADD1, 0x21: opMADDU1,
		0x28: execMMI1, 0x29: execMMI3,
		0x30: opPMFHL, 0x31: opPMTHL,
		0x34: opPSLLH, 0x36: opPSRLH, 0x37: opPSRAH,
		0x3C: opPSLLW, 0x3E: opPSRLW, 0x3F: opPSRAW,
	}
	mmi0Table = [32]handler{
		0x00: opPADDW, 0x01: opPSUBW, 0x02: opPCGTW, 0x03: opPMAXW,
		0x04: opPADDH, 0x05: opPSUBH, 0x06: opPCGTH, 0x07: opPMAXH,
		0x08: opPADDB, 0x09: opPSUBB, 0x0A: opPCGTB,
		0x10: opPADDSW, 0x11: opPSUBSW, 0x12: opPEXTLW, 0x13: opPPACW,
		0x14: opPADDSH, 0x15: opPSUBSH, 0x16: opPEXTLH, 0x17: opPPACH,
		0x18: opPADDSB, 0x19: opPSUBSB, 0x1A: opPEXTLB, 0x1B: opPPACB,
		0x1E: opPEXT5, 0x1F: opPPAC5,
	}
	mmi1Table = [32]handler{
		0x01: opPABSW, 0x02: opPCEQW, 0x03: opPMINW,
		0x04: opPADSBH, 0x05: opPABSH, 0x06: opPCEQH, 0x07: opPMINH,
		0x0A: opPCEQB,
		0x10: opPADDUW, 0x11: opPSUBUW, 0x12: opPEXTUW,
		0x14: opPADDUH, 0x15: opPSUBUH, 0x16: opPEXTUH,
		0x18: opPADDUB, 0x19: opPSUBUB, 0x1A: opPEXTUB, 0x1B: opQFSRV,
	}
	mmi2Table = [32]handler{
		0x00: opPMADDW, 0x02: opPSLLVW, 0x03: opPSRLVW, 0x04: opPMSUBW,
		0x08: opPMFHI, 0x09: opPMFLO, 0x0A: opPINTH,
		0x0C: opPMULTW, 0x0D: opPDIVW, 0x0E: opPCPYLD,
		0x10: opPMADDH, 0x11: opPHMADH, 0x12: opPAND, 0x13: opPXOR,
		0x14: opPMSUBH, 0x15: opPHMSBH,
		0x1A: opPEXEH, 0x1B: opPREVH, 0x1C: opPMULTH, 0x1D: opPDIVBW,
		0x1E: opPEXEW, 0x1F: opPROT3W,
	}
	mmi3Table = [32]handler{
		0x00: opPMADDUW, 0x03: opPSRAVW,
		0x08: opPMTHI, 0x09: opPMTLO, 0x0A: opPINTEH,
		0x0C: opPMULTUW, 0x0D: opPDIVUW, 0x0E: opPCPYUD,
		0x12: opPOR, 0x13: opPNOR,
		0x1A: opPEXCH, 0x1B: opPCPYH, 0x1E: opPEXCW,
	}
}
