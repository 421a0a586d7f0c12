package cpu

import "github.com/valerio/go-chipvm/chipvm/video"

func megachipTable() Table {
	t := schip11Table()
	t[0x0] = intercept(megachipSystem, t[0x0])
	t[0xD] = intercept(megachipDraw, t[0xD])
	t[0xF] = megachipMisc(t[0xF])
	return t
}

var megaBlendModes = [...]video.BlendMode{
	video.BlendNormal,
	video.Blend25,
	video.Blend50,
	video.Blend75,
	video.BlendAdd,
	video.BlendMultiply,
}

// megachipSystem handles the 0NNN page. 0010 and 0011 switch the mode and
// never clear the screen. With the mode off every other opcode falls
// through to SCHIP 1.1; with it on, undefined forms are invalid.
func megachipSystem(m *Machine, op Opcode) (Result, error) {
	d := m.mega
	switch op {
	case 0x0010:
		d.SetEnabled(false)
		return Handled, nil
	case 0x0011:
		d.SetEnabled(true)
		return Handled, nil
	}
	if !d.Enabled() {
		return 0, nil
	}

	n := op.N()
	switch op.X() {
	case 0x0:
		switch {
		case op&0xFFF0 == 0x00B0:
			d.ScrollUp(int(n))
			d.TriggerScroll()
		case op&0xFFF0 == 0x00C0:
			if n == 0 {
				return megaInvalid(m, op)
			}
			d.ScrollDown(int(n))
			d.TriggerScroll()
		case op == 0x00E0:
			d.Flush()
			d.Clear()
			return Handled | ClsExecuted, nil
		case op == 0x00EE:
			m.jump(m.pop())
		case op == 0x00FB:
			d.ScrollRight(4)
			d.TriggerScroll()
		case op == 0x00FC:
			d.ScrollLeft(4)
			d.TriggerScroll()
		case op == 0x00FD:
			m.terminated = true
		case op == 0x00FE, op == 0x00FF:
			// resolution switches are ignored in MegaChip mode
		default:
			return megaInvalid(m, op)
		}
	case 0x1:
		// 01NN NNNN: 24-bit I
		m.setI(uint32(op.NN())<<16 | uint32(m.word(m.PC)))
		m.skip()
	case 0x2:
		// 02NN: NN ARGB palette entries from I, starting at index 1
		for i := uint32(0); i < uint32(op.NN()); i++ {
			base := m.I + i*4
			argb := uint32(m.read(base))<<24 | uint32(m.read(base+1))<<16 |
				uint32(m.read(base+2))<<8 | uint32(m.read(base+3))
			d.LoadPaletteEntry(int(i)+1, argb)
		}
	case 0x3:
		d.SetSpriteWidth(int(op.NN()))
	case 0x4:
		d.SetSpriteHeight(int(op.NN()))
	case 0x5:
		d.SetScreenAlpha(op.NN())
	case 0x6:
		// 06NU: rate(16) size(24) at I, samples from I+6; N=0 loops
		rate := int(m.word(m.I))
		size := int(m.read(m.I+2))<<16 | int(m.read(m.I+3))<<8 | int(m.read(m.I+4))
		if size == 0 {
			return megaInvalid(m, op)
		}
		if m.Track != nil {
			m.Track.Play(rate, size, n == 0, m.I+6)
		}
	case 0x7:
		if op.NN() != 0 {
			return megaInvalid(m, op)
		}
		if m.Track != nil {
			m.Track.Stop()
		}
	case 0x8:
		if op.Y() != 0 || int(n) >= len(megaBlendModes) {
			return megaInvalid(m, op)
		}
		d.SetBlendMode(megaBlendModes[n])
	case 0x9:
		d.SetCollisionIndex(op.NN())
	default:
		return megaInvalid(m, op)
	}
	return Handled, nil
}

// megaInvalid rejects a 0NNN opcode that MegaChip mode does not define
// instead of letting it reach the SCHIP table.
func megaInvalid(m *Machine, op Opcode) (Result, error) {
	address := (m.PC - 2) & m.addrMask
	return 0, &InvalidInstructionError{Opcode: op, Address: address, Variant: m.settings.Variant}
}

// megachipDraw draws font glyphs in white when I still points at the last
// glyph FX29/FX30 selected, and otherwise draws an indexed color sprite of
// the configured size. VF reports a hit on the collision color index.
func megachipDraw(m *Machine, op Opcode) (Result, error) {
	d := m.mega
	if !d.Enabled() {
		return 0, nil
	}
	clip := m.settings.Quirks.Clipping
	x0 := int(m.V[op.X()]) % video.MegaBufferSize
	y0 := int(m.V[op.Y()]) % video.MegaBufferSize
	m.V[0xF] = 0

	if m.I == m.fontIndex {
		rows, wide, length := spriteShape(op.N(), true)
		for i := 0; i < rows; i++ {
			y := y0 + i
			if y >= video.MegaBufferSize {
				if clip {
					break
				}
				y %= video.MegaBufferSize
			}
			row := m.spriteRow(m.I, i, wide)
			plotRow(row, length, x0, video.MegaBufferSize, clip, func(x int) bool {
				d.DrawFontPixel(x, y)
				return false
			})
		}
		return Handled | DrawExecuted, nil
	}

	width, height := d.SpriteWidth(), d.SpriteHeight()
	target := d.CollisionIndex()
	for i := 0; i < height; i++ {
		y := y0 + i
		if y >= video.MegaBufferSize {
			if clip {
				break
			}
			y %= video.MegaBufferSize
		}
		for j := 0; j < width; j++ {
			x := x0 + j
			if x >= video.MegaBufferSize {
				if clip {
					break
				}
				x %= video.MegaBufferSize
			}
			index := m.read(m.I + uint32(i*width+j))
			if index == 0 {
				continue
			}
			if d.IndexAt(x, y) == target && d.ColorForIndex(index) != 0 {
				m.V[0xF] = 1
			}
			d.DrawIndexed(x, y, index)
		}
	}
	return Handled | DrawExecuted, nil
}

// megachipMisc presents the back buffer before a key wait and remembers
// font pointers for megachipDraw.
func megachipMisc(parent Handler) Handler {
	return func(m *Machine, op Opcode) (Result, error) {
		r, err := parent(m, op)
		if err != nil || !m.mega.Enabled() {
			return r, err
		}
		switch {
		case r.Has(GetKeyExecuted):
			m.mega.Flush()
		case r.Has(FontSpritePointer):
			m.fontIndex = m.I
		}
		return r, nil
	}
}
