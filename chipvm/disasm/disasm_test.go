package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chipvm/chipvm/config"
)

func reader(base uint32, program ...uint8) Reader {
	return func(address uint32) uint8 {
		if address < base || int(address-base) >= len(program) {
			return 0
		}
		return program[address-base]
	}
}

func TestDisassembleExtensions(t *testing.T) {
	tests := []struct {
		name     string
		variant  config.Variant
		program  []uint8
		expected string
		length   int
	}{
		{"schip exit", config.SChip10, []uint8{0x00, 0xFD}, "EXIT", 2},
		{"schip hires", config.SChip11, []uint8{0x00, 0xFF}, "HIGH", 2},
		{"schip scroll down", config.SChipModern, []uint8{0x00, 0xC4}, "SCD $4", 2},
		{"schip big font", config.SChip11, []uint8{0xF3, 0x30}, "LD HF, V3", 2},
		{"schip flags", config.SChip10, []uint8{0xF7, 0x85}, "LD V7, R", 2},
		{"xo long index", config.XOChip, []uint8{0xF0, 0x00, 0x12, 0x34}, "LD I, $1234", 4},
		{"xo save range", config.XOChip, []uint8{0x51, 0x42}, "SAVE V1 - V4", 2},
		{"xo plane", config.XOChip, []uint8{0xF3, 0x01}, "PLANE $3", 2},
		{"xo scroll up", config.XOChip, []uint8{0x00, 0xD2}, "SCU $2", 2},
		{"hwc long call", config.HyperWaveChip64, []uint8{0xF2, 0x00, 0x40, 0x00}, "CALL $4000", 4},
		{"hwc inherits xo", config.HyperWaveChip64, []uint8{0xF0, 0x00, 0x00, 0x10}, "LD I, $0010", 4},
		{"hwc multiply", config.HyperWaveChip64, []uint8{0x81, 0x2C}, "MUL V1, V2", 2},
		{"mega long index", config.MegaChip, []uint8{0x01, 0x03, 0x00, 0x10}, "LDHI I, $030010", 4},
		{"mega on", config.MegaChip, []uint8{0x00, 0x11}, "MEGAON", 2},
		{"mega sprite width", config.MegaChip, []uint8{0x03, 0x10}, "SPRW $10", 2},
		{"chip8x color", config.Chip8X, []uint8{0xB1, 0x23}, "COL V1, V2, $3", 2},
		{"chip8x tone", config.Chip8X, []uint8{0xF4, 0xF8}, "OUT V4", 2},
		{"machine call", config.Chip8, []uint8{0x03, 0x45}, "SYS $345", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := DisassembleAt(0x200, reader(0x200, tt.program...), tt.variant)
			assert.Equal(t, tt.expected, line.Instruction)
			assert.Equal(t, tt.length, line.Length)
			assert.Equal(t, uint32(0x200), line.Address)
		})
	}
}

func TestDisassembleBase(t *testing.T) {
	tests := []struct {
		name     string
		program  []uint8
		expected string
	}{
		{"clear", []uint8{0x00, 0xE0}, "CLS"},
		{"jump", []uint8{0x12, 0x08}, "JP $208"},
		{"load byte", []uint8{0x61, 0x05}, "LD V1, $05"},
		{"index", []uint8{0xA3, 0x00}, "LD I, $300"},
		{"draw", []uint8{0xD1, 0x25}, "DRW V1, V2, $5"},
		{"delay", []uint8{0xF2, 0x15}, "LD DT, V2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := DisassembleAt(0x200, reader(0x200, tt.program...), config.Chip8)
			assert.Equal(t, tt.expected, line.Instruction)
			assert.Equal(t, 2, line.Length)
		})
	}
}

func TestExtensionsAreVariantScoped(t *testing.T) {
	program := reader(0x200, 0xF0, 0x00, 0x12, 0x34)
	line := DisassembleAt(0x200, program, config.SChip11)
	assert.Equal(t, 2, line.Length)
	assert.NotEqual(t, "LD I, $1234", line.Instruction)
}

func TestDisassembleRange(t *testing.T) {
	program := reader(0x200, 0xF0, 0x00, 0x12, 0x34, 0x00, 0xE0, 0x12, 0x00)
	lines := DisassembleRange(0x200, 3, program, config.XOChip)
	require.Len(t, lines, 3)
	assert.Equal(t, uint32(0x200), lines[0].Address)
	assert.Equal(t, uint32(0x204), lines[1].Address)
	assert.Equal(t, uint32(0x206), lines[2].Address)
	assert.Equal(t, uint16(0x1200), lines[2].Opcode)
}

func TestDisassembleAround(t *testing.T) {
	program := reader(0x200, 0x60, 0x01, 0x61, 0x02, 0x62, 0x03, 0x63, 0x04)

	lines := DisassembleAround(0x204, 2, 1, program, config.Chip8)
	require.Len(t, lines, 4)
	assert.Equal(t, uint32(0x200), lines[0].Address)
	assert.Equal(t, uint32(0x204), lines[2].Address)

	lines = DisassembleAround(0x000, 3, 0, program, config.Chip8)
	require.Len(t, lines, 1)
	assert.Equal(t, uint32(0x000), lines[0].Address)
}

func TestFormatLine(t *testing.T) {
	line := Line{Address: 0x200, Opcode: 0x00E0, Instruction: "CLS", Length: 2}
	assert.Equal(t, " 0x0200: 00E0  CLS", FormatLine(line, false))
	assert.Equal(t, "→0x0200: 00E0  CLS", FormatLine(line, true))
}

func TestDisassembleCDP1802(t *testing.T) {
	tests := []struct {
		name     string
		program  []uint8
		expected string
		length   int
	}{
		{"idle", []uint8{0x00}, "IDL", 1},
		{"load via register", []uint8{0x0A}, "LDN RA", 1},
		{"short branch", []uint8{0x3C, 0x20}, "BN1 $20", 2},
		{"short skip", []uint8{0x38}, "SKP", 1},
		{"long branch", []uint8{0xC0, 0x80, 0x00}, "LBR $8000", 3},
		{"long skip", []uint8{0xCE}, "LSZ", 1},
		{"no-op", []uint8{0xC4}, "NOP", 1},
		{"output", []uint8{0x62}, "OUT 2", 1},
		{"input", []uint8{0x69}, "INP 1", 1},
		{"immediate", []uint8{0xF8, 0x0F}, "LDI $0F", 2},
		{"shift left", []uint8{0xFE}, "SHL", 1},
		{"mark", []uint8{0x79}, "MARK", 1},
		{"immediate add carry", []uint8{0x7C, 0x01}, "ADCI $01", 2},
		{"set program counter", []uint8{0xD3}, "SEP R3", 1},
		{"put high", []uint8{0xB2}, "PHI R2", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := DisassembleCDP1802At(0, reader(0, tt.program...))
			assert.Equal(t, tt.expected, line.Instruction)
			assert.Equal(t, tt.length, line.Length)
		})
	}

	lines := DisassembleCDP1802Range(0, 3, reader(0, 0xF8, 0x01, 0xC0, 0x00, 0x10, 0x00))
	require.Len(t, lines, 3)
	assert.Equal(t, uint32(5), lines[2].Address)
}
