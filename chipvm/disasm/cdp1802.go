package disasm

import "fmt"

var shortBranches = [16]string{
	"BR", "BQ", "BZ", "BDF", "B1", "B2", "B3", "B4",
	"SKP", "BNQ", "BNZ", "BNF", "BN1", "BN2", "BN3", "BN4",
}

var longBranches = [16]string{
	"LBR", "LBQ", "LBZ", "LBDF", "NOP", "LSNQ", "LSNZ", "LSNF",
	"LSKP", "LBNQ", "LBNZ", "LBNF", "LSIE", "LSQ", "LSZ", "LSDF",
}

var control = [16]string{
	"RET", "DIS", "LDXA", "STXD", "ADC", "SDB", "SHRC", "SMB",
	"SAV", "MARK", "REQ", "SEQ", "ADCI", "SDBI", "SHLC", "SMBI",
}

var alu = [16]string{
	"LDX", "OR", "AND", "XOR", "ADD", "SD", "SHR", "SM",
	"LDI", "ORI", "ANI", "XRI", "ADI", "SDI", "SHL", "SMI",
}

var registerOps = [16]string{
	0x1: "INC", 0x2: "DEC", 0x4: "LDA", 0x5: "STR",
	0x8: "GLO", 0x9: "GHI", 0xA: "PLO", 0xB: "PHI", 0xD: "SEP", 0xE: "SEX",
}

// DisassembleCDP1802At decodes the COSMAC instruction at pc.
func DisassembleCDP1802At(pc uint32, read Reader) Line {
	op := read(pc)
	hi, lo := op>>4, op&0xF
	line := Line{Address: pc, Opcode: uint16(op), Length: 1}

	switch {
	case op == 0x00:
		line.Instruction = "IDL"
	case hi == 0x0:
		line.Instruction = fmt.Sprintf("LDN R%X", lo)
	case hi == 0x3 && lo == 0x8:
		line.Instruction = shortBranches[lo]
	case hi == 0x3:
		line.Length = 2
		line.Instruction = fmt.Sprintf("%s $%02X", shortBranches[lo], read(pc+1))
	case op == 0x60:
		line.Instruction = "IRX"
	case op == 0x68:
		line.Instruction = fmt.Sprintf("DB $%02X", op)
	case hi == 0x6 && lo < 8:
		line.Instruction = fmt.Sprintf("OUT %d", lo)
	case hi == 0x6:
		line.Instruction = fmt.Sprintf("INP %d", lo-8)
	case hi == 0x7 && (lo == 0xC || lo == 0xD || lo == 0xF):
		line.Length = 2
		line.Instruction = fmt.Sprintf("%s $%02X", control[lo], read(pc+1))
	case hi == 0x7:
		line.Instruction = control[lo]
	case hi == 0xC && (lo < 4 || (lo >= 9 && lo <= 0xB)):
		line.Length = 3
		line.Instruction = fmt.Sprintf("%s $%02X%02X", longBranches[lo], read(pc+1), read(pc+2))
	case hi == 0xC:
		line.Instruction = longBranches[lo]
	case hi == 0xF && lo >= 8 && lo != 0xE:
		line.Length = 2
		line.Instruction = fmt.Sprintf("%s $%02X", alu[lo], read(pc+1))
	case hi == 0xF:
		line.Instruction = alu[lo]
	default:
		line.Instruction = fmt.Sprintf("%s R%X", registerOps[hi], lo)
	}
	return line
}

// DisassembleCDP1802Range decodes count COSMAC instructions from start.
func DisassembleCDP1802Range(start uint32, count int, read Reader) []Line {
	lines := make([]Line, 0, count)
	pc := start
	for i := 0; i < count; i++ {
		line := DisassembleCDP1802At(pc, read)
		lines = append(lines, line)
		pc += uint32(line.Length)
	}
	return lines
}
