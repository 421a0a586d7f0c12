package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chipvm/chipvm/config"
)

type patternRecorder struct {
	pattern [16]uint8
	pitch   uint8
	loads   int
}

func (p *patternRecorder) LoadPattern(pattern [16]uint8) {
	p.pattern = pattern
	p.loads++
}

func (p *patternRecorder) SetPitch(pitch uint8) { p.pitch = pitch }

type trackRecorder struct {
	rate, size int
	loop       bool
	start      uint32
	playing    bool
}

func (r *trackRecorder) Play(rate, size int, loop bool, start uint32) {
	r.rate, r.size, r.loop, r.start, r.playing = rate, size, loop, start, true
}

func (r *trackRecorder) Stop() { r.playing = false }

type toneRecorder struct{ value uint8 }

func (r *toneRecorder) LatchFrequency(value uint8) { r.value = value }

func TestDoubleSkip(t *testing.T) {
	tests := []struct {
		name    string
		variant config.Variant
		program []uint8
		want    uint32
	}{
		{"xo-chip over F000", config.XOChip, []uint8{0x30, 0x00, 0xF0, 0x00, 0x12, 0x34}, 0x206},
		{"xo-chip ordinary", config.XOChip, []uint8{0x30, 0x00, 0x60, 0x01}, 0x204},
		{"xo-chip not taken", config.XOChip, []uint8{0x30, 0x01, 0xF0, 0x00, 0x12, 0x34}, 0x202},
		{"xo-chip key skip", config.XOChip, []uint8{0xE0, 0xA1, 0xF0, 0x00, 0x12, 0x34}, 0x206},
		{"hyperwave over F200", config.HyperWaveChip64, []uint8{0x40, 0x01, 0xF2, 0x00, 0x03, 0x00}, 0x206},
		{"hyperwave over F300", config.HyperWaveChip64, []uint8{0x50, 0x20, 0xF3, 0x00, 0x03, 0x00}, 0x206},
		{"hyperwave F400 is short", config.HyperWaveChip64, []uint8{0x30, 0x00, 0xF4, 0x00}, 0x204},
		{"mega-chip over 01NN", config.MegaChip, []uint8{0x90, 0x10, 0x01, 0x12, 0x34, 0x56}, 0x206},
		{"chip-8 has no long words", config.Chip8, []uint8{0x30, 0x00, 0xF0, 0x00}, 0x204},
		{"schip-modern has no long words", config.SChipModern, []uint8{0x30, 0x00, 0xF0, 0x00}, 0x204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.variant, tt.program...)
			m.V[1] = 1
			step(t, m)
			assert.Equal(t, tt.want, m.PC)
		})
	}

	t.Run("memory is read at skip time", func(t *testing.T) {
		m := newMachine(t, config.XOChip, 0x30, 0x00, 0x60, 0x01)
		m.write(0x202, 0xF0)
		m.write(0x203, 0x00)
		step(t, m)
		assert.Equal(t, uint32(0x206), m.PC)
	})
}

func TestXOChip(t *testing.T) {
	t.Run("long index load", func(t *testing.T) {
		m := newMachine(t, config.XOChip, 0xF0, 0x00, 0xBE, 0xEF)
		step(t, m)
		assert.Equal(t, uint32(0xBEEF), m.I)
		assert.Equal(t, uint32(0x204), m.PC)
	})

	t.Run("register range", func(t *testing.T) {
		m := newMachine(t, config.XOChip, 0x51, 0x32, 0x53, 0x12, 0x54, 0x63)
		m.V[1], m.V[2], m.V[3] = 1, 2, 3
		m.I = 0x400

		step(t, m)
		assert.Equal(t, []uint8{1, 2, 3}, []uint8{m.read(0x400), m.read(0x401), m.read(0x402)})
		assert.Equal(t, uint32(0x400), m.I)

		step(t, m)
		assert.Equal(t, []uint8{3, 2, 1}, []uint8{m.read(0x400), m.read(0x401), m.read(0x402)})

		step(t, m)
		assert.Equal(t, []uint8{3, 2, 1}, m.V[4:7])
		assert.Equal(t, uint32(0x400), m.I)
	})

	t.Run("plane select and scroll up", func(t *testing.T) {
		m := newMachine(t, config.XOChip, 0xF2, 0x01, 0x00, 0xD2)
		m.Display.SetPixel(0, 10, 3)
		step(t, m)
		assert.Equal(t, uint8(2), m.Display.SelectedPlanes())

		step(t, m)
		assert.Equal(t, uint8(1), m.Display.Pixel(0, 10))
		assert.Equal(t, uint8(2), m.Display.Pixel(0, 6))
	})

	t.Run("audio pattern and pitch", func(t *testing.T) {
		m := newMachine(t, config.XOChip, 0xF0, 0x02, 0xF5, 0x3A)
		sink := &patternRecorder{}
		m.Pattern = sink
		m.I = 0x400
		for i := uint32(0); i < 16; i++ {
			m.write(0x400+i, uint8(i*3))
		}
		m.V[5] = 99

		step(t, m)
		step(t, m)
		assert.Equal(t, 1, sink.loads)
		assert.Equal(t, uint8(45), sink.pattern[15])
		assert.Equal(t, uint8(99), sink.pitch)
	})

	t.Run("lores resolution switch clears", func(t *testing.T) {
		m := newMachine(t, config.XOChip, 0x00, 0xFF)
		m.Display.SetPixel(5, 5, 1)
		step(t, m)
		assert.True(t, m.Display.Hires())
		assert.Equal(t, uint8(0), m.Display.Pixel(5, 5))
	})
}

func TestHyperWave(t *testing.T) {
	t.Run("arithmetic", func(t *testing.T) {
		tests := []struct {
			name                string
			op                  uint8
			vx, vy              uint8
			wantX, wantY, wantF uint8
		}{
			{"multiply", 0x2C, 0x20, 0x10, 0x00, 0x10, 0x02},
			{"divide", 0x2D, 7, 2, 3, 2, 1},
			{"divide by zero", 0x2D, 7, 0, 0, 0, 0},
			{"reverse divide", 0x2F, 3, 10, 3, 10, 1},
			{"reverse divide by zero clears VY", 0x2F, 0, 10, 0, 0, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := newMachine(t, config.HyperWaveChip64, 0x81, tt.op)
				m.V[1], m.V[2] = tt.vx, tt.vy
				step(t, m)
				assert.Equal(t, tt.wantX, m.V[1])
				assert.Equal(t, tt.wantY, m.V[2])
				assert.Equal(t, tt.wantF, m.V[0xF])
			})
		}
	})

	t.Run("long call and return", func(t *testing.T) {
		program := make([]uint8, 0x102)
		copy(program, []uint8{0xF2, 0x00, 0x03, 0x00})
		program[0x100], program[0x101] = 0x00, 0xEE
		m := newMachine(t, config.HyperWaveChip64, program...)

		step(t, m)
		assert.Equal(t, uint32(0x300), m.PC)
		step(t, m)
		assert.Equal(t, uint32(0x204), m.PC)
	})

	t.Run("long jumps", func(t *testing.T) {
		m := newMachine(t, config.HyperWaveChip64, 0xF1, 0x00, 0x12, 0x34)
		step(t, m)
		assert.Equal(t, uint32(0x1234), m.PC)

		m = newMachine(t, config.HyperWaveChip64, 0xF3, 0x00, 0x12, 0x34)
		m.V[0] = 6
		step(t, m)
		assert.Equal(t, uint32(0x123A), m.PC)
	})

	t.Run("skip greater", func(t *testing.T) {
		m := newMachine(t, config.HyperWaveChip64, 0x51, 0x21, 0x51, 0x21)
		m.V[1], m.V[2] = 5, 4
		assert.True(t, step(t, m).Has(SkipTaken))
		m.PC = 0x202
		m.V[1] = 4
		assert.False(t, step(t, m).Has(SkipTaken))
	})

	t.Run("or combine keeps pixels", func(t *testing.T) {
		m := newMachine(t, config.HyperWaveChip64, 0x00, 0xF1, 0xD0, 0x01, 0xD0, 0x01)
		m.I = 0x400
		m.write(0x400, 0x80)
		for i := 0; i < 3; i++ {
			step(t, m)
		}
		assert.Equal(t, uint8(1), m.V[0xF])
		assert.Equal(t, uint8(1), m.Display.Pixel(0, 0))
		assert.Equal(t, uint8(1), m.Display.Pixel(1, 1))
	})

	t.Run("invert palette and index", func(t *testing.T) {
		m := newMachine(t, config.HyperWaveChip64, 0x00, 0xE1, 0xF1, 0x03, 0xF2, 0x1F)
		m.I = 0x400
		m.write(0x400, 0x12)
		m.write(0x401, 0x34)
		m.write(0x402, 0x56)
		m.V[2] = 0x10

		step(t, m)
		assert.Equal(t, uint8(1), m.Display.Pixel(7, 7))
		step(t, m)
		assert.Equal(t, uint32(0xFF123456), m.Display.Palette()[1])
		step(t, m)
		assert.Equal(t, uint32(0x3F0), m.I)
	})
}

func TestMegaChip(t *testing.T) {
	program := []uint8{
		0x00, 0x11, // mode on
		0x01, 0x00, 0x04, 0x00, // I = 0x400
		0x02, 0x01, // palette entry 1
		0x01, 0x00, 0x04, 0x04, // I = 0x404
		0x03, 0x01, // sprite width 1
		0x04, 0x01, // sprite height 1
		0x09, 0x01, // collision index 1
		0xD0, 0x11,
		0xD0, 0x11,
		0x00, 0xE0,
	}

	m := newMachine(t, config.MegaChip, program...)
	m.write(0x400, 0xFF)
	m.write(0x401, 0x11)
	m.write(0x402, 0x22)
	m.write(0x403, 0x33)
	m.write(0x404, 0x01)
	mega := m.MegaChip()
	require.NotNil(t, mega)

	for i := 0; i < 7; i++ {
		step(t, m)
	}
	assert.True(t, mega.Enabled())
	assert.Equal(t, uint32(0x404), m.I)
	assert.Equal(t, uint32(0xFF112233), mega.ColorForIndex(1))

	assert.Equal(t, Handled|DrawExecuted, step(t, m))
	assert.Equal(t, uint8(0), m.V[0xF])
	assert.Equal(t, uint32(0xFF112233), mega.BackAt(0, 0))

	step(t, m)
	assert.Equal(t, uint8(1), m.V[0xF])

	assert.Equal(t, Handled|ClsExecuted, step(t, m))
	assert.Equal(t, uint32(0xFF112233), mega.FrontAt(0, 0))
	assert.Equal(t, uint32(0), mega.BackAt(0, 0))
	assert.Equal(t, uint8(0), mega.IndexAt(0, 0))
}

func TestMegaChipLegacyMode(t *testing.T) {
	m := newMachine(t, config.MegaChip, 0x00, 0xE0, 0x00, 0x11, 0x00, 0x10, 0x00, 0xFF)
	assert.Equal(t, Handled, step(t, m))
	step(t, m)
	step(t, m)
	assert.False(t, m.MegaChip().Enabled())
	step(t, m)
	assert.True(t, m.Display.Hires())
}

func TestMegaChipUndefinedSystemOpcodes(t *testing.T) {
	tests := []struct {
		name string
		op   [2]uint8
	}{
		{"unknown 00xx", [2]uint8{0x00, 0xFA}},
		{"scroll down zero rows", [2]uint8{0x00, 0xC0}},
		{"stop sound with operand", [2]uint8{0x07, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, config.MegaChip, 0x00, 0x11, tt.op[0], tt.op[1])
			step(t, m)

			_, err := m.Step()
			var invalid *InvalidInstructionError
			require.ErrorAs(t, err, &invalid)
			assert.ErrorIs(t, err, ErrInvalidInstruction)
			assert.Equal(t, Opcode(uint16(tt.op[0])<<8|uint16(tt.op[1])), invalid.Opcode)
			assert.Equal(t, uint32(0x202), invalid.Address)
			assert.Equal(t, config.MegaChip, invalid.Variant)
		})
	}
}

func TestMegaChipFontAndTrack(t *testing.T) {
	m := newMachine(t, config.MegaChip,
		0x00, 0x11,
		0xF2, 0x29,
		0xD0, 0x05,
		0xA4, 0x00,
		0x06, 0x00,
		0x07, 0x00,
	)
	track := &trackRecorder{}
	m.Track = track
	m.V[2] = 1
	m.write(0x400, 0x1F)
	m.write(0x401, 0x40)
	m.write(0x404, 0x10)

	step(t, m)
	assert.True(t, step(t, m).Has(FontSpritePointer))
	step(t, m)
	// glyph "1" starts with 0x20
	assert.Equal(t, uint32(0xFFFFFFFF), m.MegaChip().BackAt(2, 0))
	assert.Equal(t, uint32(0), m.MegaChip().BackAt(0, 0))

	step(t, m)
	step(t, m)
	assert.True(t, track.playing)
	assert.Equal(t, 8000, track.rate)
	assert.Equal(t, 16, track.size)
	assert.True(t, track.loop)
	assert.Equal(t, uint32(0x406), track.start)

	step(t, m)
	assert.False(t, track.playing)
}

func TestChip8X(t *testing.T) {
	m := newMachine(t, config.Chip8X,
		0x51, 0x21,
		0xB0, 0x23,
		0x02, 0xA0,
		0xF4, 0xF8,
		0xE1, 0xF2,
	)
	tone := &toneRecorder{}
	m.Tone = tone
	require.Equal(t, uint32(0x300), m.PC)

	m.V[1], m.V[2] = 0x35, 0x46
	step(t, m)
	assert.Equal(t, uint8(0x73), m.V[1])

	m.V[0], m.V[1], m.V[2] = 0x0A, 2, 3
	step(t, m)
	d := m.Chip8X()
	assert.Equal(t, uint8(3), d.ForegroundColor(8, 2))
	assert.Equal(t, uint8(3), d.ForegroundColor(15, 4))
	assert.Equal(t, uint8(0), d.ForegroundColor(16, 2))
	assert.Equal(t, uint8(0), d.ForegroundColor(8, 5))

	before := d.Background()
	step(t, m)
	assert.NotEqual(t, before, d.Background())

	m.V[4] = 0x42
	step(t, m)
	assert.Equal(t, uint8(0x42), tone.value)

	assert.False(t, step(t, m).Has(SkipTaken))
}
