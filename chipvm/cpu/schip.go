package cpu

import "github.com/valerio/go-chipvm/chipvm/video"

func schip10Table() Table {
	t := chip8Table()
	t[0x0] = extend(t[0x0], schip10System)
	t[0xD] = schip10Draw
	t[0xF] = extend(t[0xF], schipMisc)
	return t
}

func schip11Table() Table {
	t := schip10Table()
	t[0x0] = extend(t[0x0], schip11System)
	t[0xD] = schip11Draw
	return t
}

func schipModernTable() Table {
	t := schip11Table()
	t[0x0] = intercept(schipModernSystem, t[0x0])
	t[0xD] = schipModernDraw
	return t
}

// 00FD, 00FE, 00FF
func schip10System(m *Machine, op Opcode) (Result, error) {
	switch op {
	case 0x00FD:
		m.terminated = true
	case 0x00FE:
		m.Display.SetHires(false)
	case 0x00FF:
		m.Display.SetHires(true)
	default:
		return 0, nil
	}
	return Handled, nil
}

// 00FB, 00FC, 00CN. Scrolls move physical pixels, so lores moves by half a
// logical pixel. 00C0 is not an instruction.
func schip11System(m *Machine, op Opcode) (Result, error) {
	switch {
	case op == 0x00FB:
		m.Display.ScrollRight(4)
	case op == 0x00FC:
		m.Display.ScrollLeft(4)
	case op&0xFFF0 == 0x00C0 && op.N() != 0:
		m.Display.ScrollDown(int(op.N()))
	default:
		return 0, nil
	}
	return Handled, nil
}

// Resolution switches clear the screen, and scrolls move logical pixels.
func schipModernSystem(m *Machine, op Opcode) (Result, error) {
	unit := m.scrollUnit()
	switch {
	case op == 0x00FE:
		m.Display.SetHires(false)
		m.Display.Clear()
	case op == 0x00FF:
		m.Display.SetHires(true)
		m.Display.Clear()
	case op == 0x00FB:
		m.Display.ScrollRight(4 * unit)
	case op == 0x00FC:
		m.Display.ScrollLeft(4 * unit)
	case op&0xFFF0 == 0x00C0:
		m.Display.ScrollDown(int(op.N()) * unit)
	default:
		return 0, nil
	}
	return Handled, nil
}

// FX30, FX75, FX85
func schipMisc(m *Machine, op Opcode) (Result, error) {
	x := op.X()
	switch op.NN() {
	case 0x30:
		m.setI(video.BigGlyphAddress(m.V[x]))
		return Handled | FontSpritePointer, nil
	case 0x75:
		copy(m.Flags[:x+1], m.V[:x+1])
	case 0x85:
		copy(m.V[:x+1], m.Flags[:x+1])
	default:
		return 0, nil
	}
	return Handled, nil
}
