package cpu

func xochipTable() Table {
	t := schipModernTable()
	t[0x0] = extend(t[0x0], xochipSystem)
	t[0x5] = extend(t[0x5], xochipRegisterRange)
	t[0xD] = xochipDraw
	t[0xF] = extend(t[0xF], xochipMisc)
	return t
}

// 00DN
func xochipSystem(m *Machine, op Opcode) (Result, error) {
	if op&0xFFF0 != 0x00D0 {
		return 0, nil
	}
	m.Display.ScrollUp(int(op.N()) * m.scrollUnit())
	return Handled, nil
}

// 5XY2 saves and 5XY3 loads VX..VY at I, in descending register order when
// X > Y. I is left unchanged.
func xochipRegisterRange(m *Machine, op Opcode) (Result, error) {
	n := op.N()
	if n != 2 && n != 3 {
		return 0, nil
	}
	x, y := int(op.X()), int(op.Y())
	step := 1
	if x > y {
		step = -1
	}
	for r, offset := x, uint32(0); ; r, offset = r+step, offset+1 {
		if n == 2 {
			m.write(m.I+offset, m.V[r])
		} else {
			m.V[r] = m.read(m.I + offset)
		}
		if r == y {
			break
		}
	}
	return Handled, nil
}

// F000 NNNN, FN01, F002, FX3A
func xochipMisc(m *Machine, op Opcode) (Result, error) {
	switch {
	case op == 0xF000:
		m.setI(uint32(m.word(m.PC)))
		m.skip()
	case op.NN() == 0x01:
		m.Display.SelectPlanes(op.X())
	case op == 0xF002:
		var pattern [16]uint8
		for i := range pattern {
			pattern[i] = m.read(m.I + uint32(i))
		}
		if m.Pattern != nil {
			m.Pattern.LoadPattern(pattern)
		}
	case op.NN() == 0x3A:
		if m.Pattern != nil {
			m.Pattern.SetPitch(m.V[op.X()])
		}
	default:
		return 0, nil
	}
	return Handled, nil
}
