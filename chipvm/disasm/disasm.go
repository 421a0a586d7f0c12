package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/valerio/go-chipvm/chipvm/config"
)

// Line is one decoded instruction.
type Line struct {
	Address     uint32
	Opcode      uint16
	Instruction string
	Length      int
}

// Reader returns the byte at address.
type Reader func(address uint32) uint8

// pattern decodes one opcode extension. Long patterns consume the word
// after the opcode as an operand.
type pattern struct {
	mask, value uint16
	long        bool
	format      func(op, operand uint16) string
}

func (p pattern) matches(op uint16) bool {
	return op&p.mask == p.value
}

var schip10Patterns = []pattern{
	{mask: 0xFFFF, value: 0x00FD, format: fixed("EXIT")},
	{mask: 0xFFFF, value: 0x00FE, format: fixed("LOW")},
	{mask: 0xFFFF, value: 0x00FF, format: fixed("HIGH")},
	{mask: 0xF0FF, value: 0xF030, format: func(op, _ uint16) string { return fmt.Sprintf("LD HF, V%X", x(op)) }},
	{mask: 0xF0FF, value: 0xF075, format: func(op, _ uint16) string { return fmt.Sprintf("LD R, V%X", x(op)) }},
	{mask: 0xF0FF, value: 0xF085, format: func(op, _ uint16) string { return fmt.Sprintf("LD V%X, R", x(op)) }},
}

var schip11Patterns = append([]pattern{
	{mask: 0xFFF0, value: 0x00C0, format: func(op, _ uint16) string { return fmt.Sprintf("SCD $%X", n(op)) }},
	{mask: 0xFFFF, value: 0x00FB, format: fixed("SCR")},
	{mask: 0xFFFF, value: 0x00FC, format: fixed("SCL")},
}, schip10Patterns...)

var xochipPatterns = append([]pattern{
	{mask: 0xFFF0, value: 0x00D0, format: func(op, _ uint16) string { return fmt.Sprintf("SCU $%X", n(op)) }},
	{mask: 0xF00F, value: 0x5002, format: func(op, _ uint16) string { return fmt.Sprintf("SAVE V%X - V%X", x(op), y(op)) }},
	{mask: 0xF00F, value: 0x5003, format: func(op, _ uint16) string { return fmt.Sprintf("LOAD V%X - V%X", x(op), y(op)) }},
	{mask: 0xFFFF, value: 0xF000, long: true, format: func(_, operand uint16) string { return fmt.Sprintf("LD I, $%04X", operand) }},
	{mask: 0xFFFF, value: 0xF002, format: fixed("AUDIO")},
	{mask: 0xF0FF, value: 0xF001, format: func(op, _ uint16) string { return fmt.Sprintf("PLANE $%X", x(op)) }},
	{mask: 0xF0FF, value: 0xF03A, format: func(op, _ uint16) string { return fmt.Sprintf("PITCH V%X", x(op)) }},
}, schip11Patterns...)

var hyperwavePatterns = append([]pattern{
	{mask: 0xFFFF, value: 0x00E1, format: fixed("NOT")},
	{mask: 0xFFFF, value: 0x00F1, format: fixed("MODE OR")},
	{mask: 0xFFFF, value: 0x00F2, format: fixed("MODE SUB")},
	{mask: 0xFFFF, value: 0x00F3, format: fixed("MODE XOR")},
	{mask: 0xF00F, value: 0x5001, format: func(op, _ uint16) string { return fmt.Sprintf("SGT V%X, V%X", x(op), y(op)) }},
	{mask: 0xF00F, value: 0x800C, format: func(op, _ uint16) string { return fmt.Sprintf("MUL V%X, V%X", x(op), y(op)) }},
	{mask: 0xF00F, value: 0x800D, format: func(op, _ uint16) string { return fmt.Sprintf("DIV V%X, V%X", x(op), y(op)) }},
	{mask: 0xF00F, value: 0x800F, format: func(op, _ uint16) string { return fmt.Sprintf("RDIV V%X, V%X", x(op), y(op)) }},
	{mask: 0xFFFF, value: 0xF100, long: true, format: func(_, operand uint16) string { return fmt.Sprintf("JP $%04X", operand) }},
	{mask: 0xFFFF, value: 0xF200, long: true, format: func(_, operand uint16) string { return fmt.Sprintf("CALL $%04X", operand) }},
	{mask: 0xFFFF, value: 0xF300, long: true, format: func(_, operand uint16) string { return fmt.Sprintf("JP V0, $%04X", operand) }},
	{mask: 0xF0FF, value: 0xF003, format: func(op, _ uint16) string { return fmt.Sprintf("PAL V%X", x(op)) }},
	{mask: 0xF0FF, value: 0xF01F, format: func(op, _ uint16) string { return fmt.Sprintf("SUB I, V%X", x(op)) }},
}, xochipPatterns...)

var megachipPatterns = append([]pattern{
	{mask: 0xFFFF, value: 0x0010, format: fixed("MEGAOFF")},
	{mask: 0xFFFF, value: 0x0011, format: fixed("MEGAON")},
	{mask: 0xFFF0, value: 0x00B0, format: func(op, _ uint16) string { return fmt.Sprintf("SCU $%X", n(op)) }},
	{mask: 0xFF00, value: 0x0100, long: true, format: func(op, operand uint16) string { return fmt.Sprintf("LDHI I, $%02X%04X", op&0xFF, operand) }},
	{mask: 0xFF00, value: 0x0200, format: func(op, _ uint16) string { return fmt.Sprintf("LDPAL $%02X", op&0xFF) }},
	{mask: 0xFF00, value: 0x0300, format: func(op, _ uint16) string { return fmt.Sprintf("SPRW $%02X", op&0xFF) }},
	{mask: 0xFF00, value: 0x0400, format: func(op, _ uint16) string { return fmt.Sprintf("SPRH $%02X", op&0xFF) }},
	{mask: 0xFF00, value: 0x0500, format: func(op, _ uint16) string { return fmt.Sprintf("ALPHA $%02X", op&0xFF) }},
	{mask: 0xFFF0, value: 0x0600, format: func(op, _ uint16) string { return fmt.Sprintf("DIGISND $%X", n(op)) }},
	{mask: 0xFFFF, value: 0x0700, format: fixed("STOPSND")},
	{mask: 0xFFF0, value: 0x0800, format: func(op, _ uint16) string { return fmt.Sprintf("BMODE $%X", n(op)) }},
	{mask: 0xFF00, value: 0x0900, format: func(op, _ uint16) string { return fmt.Sprintf("CCOL $%02X", op&0xFF) }},
}, schip11Patterns...)

var chip8xPatterns = []pattern{
	{mask: 0xFFFF, value: 0x02A0, format: fixed("BGCOL")},
	{mask: 0xF00F, value: 0x5001, format: func(op, _ uint16) string { return fmt.Sprintf("ADDO V%X, V%X", x(op), y(op)) }},
	{mask: 0xF000, value: 0xB000, format: func(op, _ uint16) string { return fmt.Sprintf("COL V%X, V%X, $%X", x(op), y(op), n(op)) }},
	{mask: 0xF0FF, value: 0xE0F2, format: func(op, _ uint16) string { return fmt.Sprintf("SKP2 V%X", x(op)) }},
	{mask: 0xF0FF, value: 0xE0F5, format: func(op, _ uint16) string { return fmt.Sprintf("SKNP2 V%X", x(op)) }},
	{mask: 0xF0FF, value: 0xF0F8, format: func(op, _ uint16) string { return fmt.Sprintf("OUT V%X", x(op)) }},
	{mask: 0xF0FF, value: 0xF0FB, format: func(op, _ uint16) string { return fmt.Sprintf("INP V%X", x(op)) }},
}

func patternsFor(v config.Variant) []pattern {
	switch v {
	case config.Chip8X:
		return chip8xPatterns
	case config.SChip10:
		return schip10Patterns
	case config.SChip11, config.SChipModern:
		return schip11Patterns
	case config.XOChip:
		return xochipPatterns
	case config.HyperWaveChip64:
		return hyperwavePatterns
	case config.MegaChip:
		return megachipPatterns
	}
	return nil
}

// hasMachineCalls reports whether 0NNN is a native subroutine call.
func hasMachineCalls(v config.Variant) bool {
	switch v {
	case config.Chip8, config.StrictChip8, config.Chip8X:
		return true
	}
	return false
}

// DisassembleAt decodes the instruction at pc as the given variant sees it.
// Unknown words decode as DW.
func DisassembleAt(pc uint32, read Reader, v config.Variant) Line {
	op := uint16(read(pc))<<8 | uint16(read(pc+1))
	line := Line{Address: pc, Opcode: op, Length: 2}

	for _, p := range patternsFor(v) {
		if !p.matches(op) {
			continue
		}
		var operand uint16
		if p.long {
			operand = uint16(read(pc+2))<<8 | uint16(read(pc+3))
			line.Length = 4
		}
		line.Instruction = p.format(op, operand)
		return line
	}

	if op>>12 == 0 && op != 0x00E0 && op != 0x00EE {
		line.Instruction = fmt.Sprintf("DW $%04X", op)
		if hasMachineCalls(v) {
			line.Instruction = fmt.Sprintf("SYS $%03X", op&0xFFF)
		}
		return line
	}
	if name, ok := baseName(op); ok {
		if params := baseOperands(op); params != "" {
			line.Instruction = name + " " + params
		} else {
			line.Instruction = name
		}
		return line
	}
	line.Instruction = fmt.Sprintf("DW $%04X", op)
	return line
}

// DisassembleRange decodes count instructions starting at start.
func DisassembleRange(start uint32, count int, read Reader, v config.Variant) []Line {
	lines := make([]Line, 0, count)
	pc := start
	for i := 0; i < count; i++ {
		line := DisassembleAt(pc, read, v)
		lines = append(lines, line)
		pc += uint32(line.Length)
	}
	return lines
}

// DisassembleAround decodes before instructions ahead of pc, the one at pc
// and after more. Instructions are assumed to be two bytes wide going
// backwards, so a long instruction right before pc may decode misaligned.
func DisassembleAround(pc uint32, before, after int, read Reader, v config.Variant) []Line {
	start := pc
	for i := 0; i < before && start >= 2; i++ {
		start -= 2
	}
	lines := DisassembleRange(start, int(pc-start)/2+1+after, read, v)
	return lines
}

// FormatLine renders a line for display, marking the current instruction.
func FormatLine(line Line, current bool) string {
	prefix := " "
	if current {
		prefix = "→"
	}
	return fmt.Sprintf("%s0x%04X: %04X  %s", prefix, line.Address, line.Opcode, line.Instruction)
}

// baseName looks op up in the CHIP-8 instruction set.
func baseName(op uint16) (string, bool) {
	for _, candidate := range chip8.Opcodes[int(op>>12)] {
		if candidate.Info.Mask&op == candidate.Info.Value && candidate.Instruction != nil {
			return strings.ToUpper(candidate.Instruction.Name), true
		}
	}
	return "", false
}

func baseOperands(op uint16) string {
	switch op >> 12 {
	case 0x0:
		return ""
	case 0x1, 0x2:
		return fmt.Sprintf("$%03X", op&0xFFF)
	case 0x3, 0x4, 0x6, 0x7, 0xC:
		return fmt.Sprintf("V%X, $%02X", x(op), op&0xFF)
	case 0x5, 0x8, 0x9:
		return fmt.Sprintf("V%X, V%X", x(op), y(op))
	case 0xA:
		return fmt.Sprintf("I, $%03X", op&0xFFF)
	case 0xB:
		return fmt.Sprintf("V0, $%03X", op&0xFFF)
	case 0xD:
		return fmt.Sprintf("V%X, V%X, $%X", x(op), y(op), n(op))
	case 0xE:
		return fmt.Sprintf("V%X", x(op))
	}

	switch op & 0xFF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x(op))
	case 0x0A:
		return fmt.Sprintf("V%X, K", x(op))
	case 0x15:
		return fmt.Sprintf("DT, V%X", x(op))
	case 0x18:
		return fmt.Sprintf("ST, V%X", x(op))
	case 0x1E:
		return fmt.Sprintf("I, V%X", x(op))
	case 0x29:
		return fmt.Sprintf("F, V%X", x(op))
	case 0x33:
		return fmt.Sprintf("B, V%X", x(op))
	case 0x55:
		return fmt.Sprintf("[I], V%X", x(op))
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x(op))
	}
	return fmt.Sprintf("V%X", x(op))
}

func fixed(text string) func(op, operand uint16) string {
	return func(uint16, uint16) string { return text }
}

func x(op uint16) uint16 { return (op >> 8) & 0xF }
func y(op uint16) uint16 { return (op >> 4) & 0xF }
func n(op uint16) uint16 { return op & 0xF }
