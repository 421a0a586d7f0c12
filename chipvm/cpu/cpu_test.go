package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/video"
)

func newMachine(t *testing.T, v config.Variant, program ...uint8) *Machine {
	t.Helper()
	return newMachineWith(t, config.Hint{Variant: &v}, program...)
}

func newMachineWith(t *testing.T, hint config.Hint, program ...uint8) *Machine {
	t.Helper()
	m, err := New(config.Resolve(hint, config.Hint{}), input.NewKeypad(), video.DefaultPalette())
	require.NoError(t, err)
	require.NoError(t, m.LoadProgram(program))
	m.Seed(1)
	return m
}

func step(t *testing.T, m *Machine) Result {
	t.Helper()
	r, err := m.Step()
	require.NoError(t, err)
	return r
}

func pixels(d *video.Display) []uint8 {
	out := make([]uint8, 0, d.PhysicalWidth()*d.PhysicalHeight())
	for y := 0; y < d.PhysicalHeight(); y++ {
		for x := 0; x < d.PhysicalWidth(); x++ {
			out = append(out, d.Pixel(x, y))
		}
	}
	return out
}

func TestLoadThenAdd(t *testing.T) {
	m := newMachine(t, config.Chip8, 0x60, 0x05, 0x70, 0x03)
	start := m.PC

	assert.Equal(t, Handled, step(t, m))
	assert.Equal(t, Handled, step(t, m))

	assert.Equal(t, uint8(8), m.V[0])
	assert.Equal(t, start+4, m.PC)
}

func TestSubtractFlagIsNoBorrow(t *testing.T) {
	variants := []config.Variant{config.Chip8, config.SChip11, config.XOChip, config.HyperWaveChip64}

	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {
			m := newMachine(t, v, 0x81, 0x25, 0x81, 0x27)
			for vx := 0; vx < 256; vx += 5 {
				for vy := 0; vy < 256; vy += 7 {
					m.PC = 0x200
					m.V[1], m.V[2] = uint8(vx), uint8(vy)
					step(t, m)
					assert.Equal(t, uint8(vx-vy), m.V[1])
					assert.Equal(t, bitOf(vx >= vy), m.V[0xF], "8XY5 %d-%d", vx, vy)

					m.V[1], m.V[2] = uint8(vx), uint8(vy)
					step(t, m)
					assert.Equal(t, uint8(vy-vx), m.V[1])
					assert.Equal(t, bitOf(vy >= vx), m.V[0xF], "8XY7 %d-%d", vy, vx)
				}
			}
		})
	}
}

func bitOf(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func TestBCD(t *testing.T) {
	for v := 0; v < 256; v++ {
		h, tens, o := BCD(uint8(v))
		assert.LessOrEqual(t, h, uint8(9))
		assert.LessOrEqual(t, tens, uint8(9))
		assert.LessOrEqual(t, o, uint8(9))
		assert.Equal(t, v, int(h)*100+int(tens)*10+int(o))
	}

	t.Run("stored at I", func(t *testing.T) {
		m := newMachine(t, config.Chip8, 0xF3, 0x33)
		m.V[3] = 255
		m.I = 0x300
		step(t, m)
		assert.Equal(t, []uint8{2, 5, 5}, []uint8{m.read(0x300), m.read(0x301), m.read(0x302)})
	})
}

func TestDrawTwiceRestoresPlane(t *testing.T) {
	sprite := []uint8{0xF0, 0x90, 0xFF}
	tests := []struct {
		name    string
		variant config.Variant
		hires   bool
		planes  uint8
	}{
		{"chip-8", config.Chip8, false, 1},
		{"schip-1.1 hires row count", config.SChip11, true, 1},
		{"schip-1.1 lores", config.SChip11, false, 1},
		{"schip-modern hires", config.SChipModern, true, 1},
		{"xo-chip lores two planes", config.XOChip, false, 3},
		{"xo-chip hires", config.XOChip, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.variant, 0xD0, 0x13, 0xD0, 0x13)
			d := m.Display
			d.SetHires(tt.hires)
			d.SelectPlanes(tt.planes)
			m.I = 0x300
			for i := 0; i < 2*len(sprite); i++ {
				m.write(0x300+uint32(i), sprite[i%len(sprite)])
			}
			m.V[0], m.V[1] = 10, 5

			// the leftmost pixel of every sprite row is already lit
			scale := d.PhysicalWidth() / d.Width()
			for row := 0; row < len(sprite); row++ {
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						d.SetPixel(10*scale+dx, (5+row)*scale+dy, 1)
					}
				}
			}
			before := pixels(d)

			step(t, m)
			first := m.V[0xF]
			assert.NotEqual(t, before, pixels(d))

			step(t, m)
			assert.Equal(t, first, m.V[0xF])
			assert.Equal(t, before, pixels(d))
		})
	}
}

func TestDrawEmptySpriteWithClipping(t *testing.T) {
	m := newMachine(t, config.Chip8, 0xA3, 0x00, 0xD0, 0x05)
	require.True(t, m.Quirks().Clipping)
	m.Display.SetPixel(3, 3, 1)
	m.Display.SetPixel(62, 31, 1)
	m.V[0xF] = 1
	before := pixels(m.Display)

	step(t, m)
	r := step(t, m)

	assert.True(t, r.Has(Handled|DrawExecuted))
	assert.Equal(t, uint8(0), m.V[0xF])
	assert.Equal(t, before, pixels(m.Display))
}

// callChain builds main calling a chain of subroutines, each calling the
// next, the last one returning.
func callChain(depth int) []uint8 {
	program := make([]uint8, 0x100+4*depth)
	sub := func(k int) uint32 { return 0x300 + uint32(4*k) }
	program[0], program[1] = 0x20|uint8(sub(0)>>8), uint8(sub(0))
	program[2], program[3] = 0x12, 0x02
	for k := 0; k < depth; k++ {
		at := sub(k) - 0x200
		if k < depth-1 {
			program[at], program[at+1] = 0x20|uint8(sub(k+1)>>8), uint8(sub(k+1))
			program[at+2], program[at+3] = 0x00, 0xEE
		} else {
			program[at], program[at+1] = 0x00, 0xEE
		}
	}
	return program
}

func TestStackRoundTrip(t *testing.T) {
	for _, depth := range []int{1, 2, 8, 16} {
		t.Run(fmt.Sprintf("depth %d", depth), func(t *testing.T) {
			m := newMachine(t, config.Chip8, callChain(depth)...)
			for i := 0; i < 2*depth; i++ {
				step(t, m)
			}
			assert.Equal(t, uint32(0x202), m.PC)
			assert.Equal(t, uint16(0), m.SP)
		})
	}

	t.Run("seventeen calls wrap", func(t *testing.T) {
		m := newMachine(t, config.Chip8, callChain(17)...)
		for i := 0; i < 17; i++ {
			step(t, m)
		}
		assert.Equal(t, uint16(1), m.SP)
		for i := 0; i < 17; i++ {
			step(t, m)
		}
		assert.Equal(t, uint16(0), m.SP)
		// the first return address was overwritten by the seventeenth call
		assert.Equal(t, uint32(0x300+4*15+2), m.PC)
	})
}

func TestInvalidInstruction(t *testing.T) {
	tests := []struct {
		name    string
		variant config.Variant
		program []uint8
	}{
		{"chip-8 5XY1", config.Chip8, []uint8{0x51, 0x21}},
		{"chip-8 machine call", config.Chip8, []uint8{0x01, 0x23}},
		{"chip-8 00FF", config.Chip8, []uint8{0x00, 0xFF}},
		{"schip-1.1 00C0", config.SChip11, []uint8{0x00, 0xC0}},
		{"xo-chip 8XYC", config.XOChip, []uint8{0x81, 0x2C}},
		{"mega-chip blend 6", config.MegaChip, []uint8{0x00, 0x11, 0x08, 0x06}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.variant, tt.program...)
			var err error
			for i := 0; i < len(tt.program)/2 && err == nil; i++ {
				_, err = m.Step()
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInstruction))

			var invalid *InvalidInstructionError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.variant, invalid.Variant)
			last := len(tt.program) - 2
			assert.Equal(t, Opcode(uint16(tt.program[last])<<8|uint16(tt.program[last+1])), invalid.Opcode)
		})
	}
}

func TestQuirks(t *testing.T) {
	yes, no := true, false
	chip8, schip := config.Chip8, config.SChip11

	t.Run("vf reset", func(t *testing.T) {
		for _, reset := range []bool{true, false} {
			m := newMachineWith(t, config.Hint{Variant: &chip8, VFReset: &reset}, 0x81, 0x21)
			m.V[0xF] = 1
			step(t, m)
			assert.Equal(t, bitOf(!reset), m.V[0xF])
		}
	})

	t.Run("shift source", func(t *testing.T) {
		m := newMachineWith(t, config.Hint{Variant: &chip8, ShiftVXInPlace: &no}, 0x81, 0x26)
		m.V[1], m.V[2] = 0x01, 0x80
		step(t, m)
		assert.Equal(t, uint8(0x40), m.V[1])
		assert.Equal(t, uint8(0), m.V[0xF])

		m = newMachineWith(t, config.Hint{Variant: &chip8, ShiftVXInPlace: &yes}, 0x81, 0x2E)
		m.V[1], m.V[2] = 0x81, 0x01
		step(t, m)
		assert.Equal(t, uint8(0x02), m.V[1])
		assert.Equal(t, uint8(1), m.V[0xF])
	})

	t.Run("jump offset", func(t *testing.T) {
		m := newMachine(t, config.Chip8, 0xB3, 0x10)
		m.V[0], m.V[3] = 4, 9
		step(t, m)
		assert.Equal(t, uint32(0x314), m.PC)

		m = newMachine(t, config.SChip11, 0xB3, 0x10)
		m.V[0], m.V[3] = 4, 9
		step(t, m)
		assert.Equal(t, uint32(0x319), m.PC)
	})

	t.Run("memory increment", func(t *testing.T) {
		tests := []struct {
			variant config.Variant
			want    uint32
		}{
			{config.Chip8, 0x303},
			{config.SChip10, 0x302},
			{config.SChip11, 0x300},
		}
		for _, tt := range tests {
			m := newMachine(t, tt.variant, 0xF2, 0x55)
			m.I = 0x300
			m.V[0], m.V[1], m.V[2] = 7, 8, 9
			step(t, m)
			assert.Equal(t, tt.want, m.I, tt.variant.String())
			assert.Equal(t, uint8(9), m.read(0x302))
		}
	})

	t.Run("wrap instead of clip", func(t *testing.T) {
		m := newMachineWith(t, config.Hint{Variant: &schip, Clipping: &no}, 0xD0, 0x12)
		m.Display.SetHires(true)
		m.I = 0x300
		m.write(0x300, 0xFF)
		m.write(0x301, 0xFF)
		m.V[0] = 124
		m.V[1] = 63
		step(t, m)
		assert.Equal(t, uint8(1), m.Display.Pixel(127, 63))
		assert.Equal(t, uint8(1), m.Display.Pixel(0, 63))
		assert.Equal(t, uint8(1), m.Display.Pixel(3, 0))
	})
}

func TestRegistersWrap(t *testing.T) {
	m := newMachine(t, config.Chip8, 0x70, 0x02, 0x81, 0x04)
	m.V[0] = 0xFF
	step(t, m)
	assert.Equal(t, uint8(0x01), m.V[0])
	assert.Equal(t, uint8(0), m.V[0xF], "7XNN leaves VF alone")

	m.V[1] = 0xF0
	step(t, m)
	assert.Equal(t, uint8(0xF1), m.V[1])
	assert.Equal(t, uint8(0), m.V[0xF])
}

func TestIndexAndPCMask(t *testing.T) {
	m := newMachine(t, config.Chip8, 0xF0, 0x1E)
	m.I = 0xFFF
	m.V[0] = 2
	step(t, m)
	assert.Equal(t, uint32(0x001), m.I)

	m = newMachine(t, config.Chip8)
	m.PC = 0xFFE
	m.write(0xFFE, 0x60)
	m.write(0xFFF, 0x01)
	step(t, m)
	assert.Equal(t, uint32(0x000), m.PC)
}

func TestWaitKeyPressAndRelease(t *testing.T) {
	m := newMachine(t, config.Chip8, 0xF3, 0x0A)

	r := step(t, m)
	assert.True(t, r.Has(GetKeyExecuted))
	assert.Equal(t, uint32(0x200), m.PC)

	m.Keypad.Press(5)
	step(t, m)
	assert.Equal(t, uint32(0x200), m.PC)
	step(t, m)
	assert.Equal(t, uint32(0x200), m.PC, "held key is not delivered")

	m.Keypad.Release(5)
	step(t, m)
	assert.Equal(t, uint32(0x202), m.PC)
	assert.Equal(t, uint8(5), m.V[3])
}

func TestSkipKey(t *testing.T) {
	m := newMachine(t, config.Chip8, 0xE1, 0x9E, 0x00, 0x00, 0xE1, 0xA1)
	m.V[1] = 0x1A
	m.Keypad.Press(0xA)

	r := step(t, m)
	assert.True(t, r.Has(SkipTaken))
	assert.Equal(t, uint32(0x204), m.PC)

	r = step(t, m)
	assert.False(t, r.Has(SkipTaken))
	assert.Equal(t, uint32(0x206), m.PC)
}

func TestFontPointers(t *testing.T) {
	m := newMachine(t, config.SChip11, 0xF1, 0x29, 0xF1, 0x30)
	m.V[1] = 0x0B

	r := step(t, m)
	assert.True(t, r.Has(FontSpritePointer))
	assert.Equal(t, video.SmallGlyphAddress(0xB), m.I)
	assert.Equal(t, video.SmallFont[0xB*5], m.read(m.I))

	r = step(t, m)
	assert.True(t, r.Has(FontSpritePointer))
	assert.Equal(t, video.BigGlyphAddress(0xB), m.I)
	assert.Equal(t, video.SChipBigFont[0xB*10], m.read(m.I))
}

func TestLongDrawHint(t *testing.T) {
	m := newMachine(t, config.Chip8, 0xD0, 0x15, 0xD0, 0x14)
	m.V[0] = 6

	assert.True(t, step(t, m).Has(LongDrawExecuted))
	assert.Equal(t, Handled|DrawExecuted, step(t, m))
}

func TestTimers(t *testing.T) {
	m := newMachine(t, config.Chip8, 0xF1, 0x15, 0xF2, 0x18, 0xF3, 0x07)
	m.V[1], m.V[2] = 3, 1
	step(t, m)
	step(t, m)
	m.TickTimers()
	m.TickTimers()
	step(t, m)
	assert.Equal(t, uint8(1), m.V[3])
	assert.Equal(t, uint8(0), m.SoundTimer)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "none", Result(0).String())
	assert.Equal(t, "handled|skip", (Handled | SkipTaken).String())
}

func TestNewRejectsVIP(t *testing.T) {
	_, err := New(config.Settings{Variant: config.CosmacVIP}, nil, video.DefaultPalette())
	assert.Error(t, err)
}
