package cpu

func chip8xTable() Table {
	t := chip8Table()
	t[0x0] = extend(t[0x0], chip8xSystem)
	t[0x5] = extend(t[0x5], chip8xAddOctal)
	t[0xB] = chip8xColor
	t[0xE] = extend(t[0xE], chip8xSecondKeypad)
	t[0xF] = extend(t[0xF], chip8xPorts)
	return t
}

// 02A0 steps the background color.
func chip8xSystem(m *Machine, op Opcode) (Result, error) {
	if op != 0x02A0 {
		return 0, nil
	}
	m.chip8x.CycleBackground()
	return Handled, nil
}

// 5XY1 adds the two octal digit pairs of VX and VY without carry between
// them.
func chip8xAddOctal(m *Machine, op Opcode) (Result, error) {
	if op.N() != 1 {
		return 0, nil
	}
	x := op.X()
	m.V[x] = ((m.V[x] & 0x77) + (m.V[op.Y()] & 0x77)) & 0x77
	return Handled, nil
}

// BXYN colors N rows starting at row V(X+1) in the 8 pixel column of VX and
// switches to per-row color. BXY0 colors a rectangle of 8x4 zones described
// by VX and V(X+1) and switches back to zone color. The color is the low
// three bits of VY.
func chip8xColor(m *Machine, op Opcode) (Result, error) {
	d := m.chip8x
	vx := int(m.V[op.X()])
	vx1 := int(m.V[(op.X()+1)%16])
	color := m.V[op.Y()] & 0x7
	width, height := d.Width(), d.Height()

	if n := int(op.N()); n > 0 {
		d.SetExtendedColorDraw(true)
		column := vx & 0x38
		for i := 0; i < n; i++ {
			row := vx1 + i
			if row >= height {
				break
			}
			for j := 0; j < 8; j++ {
				if column+j >= width {
					break
				}
				d.SetForegroundColor(column+j, row, color)
			}
		}
		return Handled, nil
	}

	d.SetExtendedColorDraw(false)
	zonesWide, left := vx>>4+1, vx&0xF
	zonesHigh, top := vx1>>4+1, vx1&0xF
	for i := 0; i < zonesHigh; i++ {
		baseY := (top + i) * 4
		for j := 0; j < zonesWide; j++ {
			baseX := (left + j) * 8
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 8; dx++ {
					d.SetForegroundColor(baseX+dx, baseY+dy, color)
				}
			}
		}
	}
	return Handled, nil
}

// EXF2 and EXF5 test the second keypad, which is not connected: they
// never skip.
func chip8xSecondKeypad(m *Machine, op Opcode) (Result, error) {
	switch op.NN() {
	case 0xF2, 0xF5:
		return Handled, nil
	}
	return 0, nil
}

// FXF8 sends VX to the VP-595 tone generator. FXFB reads an input port
// with nothing attached and leaves VX alone.
func chip8xPorts(m *Machine, op Opcode) (Result, error) {
	switch op.NN() {
	case 0xF8:
		if m.Tone != nil {
			m.Tone.LatchFrequency(m.V[op.X()])
		}
	case 0xFB:
	default:
		return 0, nil
	}
	return Handled, nil
}
