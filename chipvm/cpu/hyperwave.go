package cpu

import "github.com/valerio/go-chipvm/chipvm/video"

func hyperwaveTable() Table {
	t := xochipTable()
	t[0x0] = extend(t[0x0], hyperwaveSystem)
	t[0x5] = extend(t[0x5], hyperwaveSkipGreater)
	t[0x8] = extend(t[0x8], hyperwaveArithmetic)
	t[0xF] = extend(t[0xF], hyperwaveMisc)
	return t
}

// 00E1 inverts the selected planes, 00F1-00F3 select the combine mode.
func hyperwaveSystem(m *Machine, op Opcode) (Result, error) {
	switch op {
	case 0x00E1:
		m.Display.Invert()
	case 0x00F1:
		m.combine = video.CombineOR
	case 0x00F2:
		m.combine = video.CombineSubtract
	case 0x00F3:
		m.combine = video.CombineXOR
	default:
		return 0, nil
	}
	return Handled, nil
}

// 5XY1
func hyperwaveSkipGreater(m *Machine, op Opcode) (Result, error) {
	if op.N() != 1 {
		return 0, nil
	}
	return skipIf(m, m.V[op.X()] > m.V[op.Y()]), nil
}

// 8XYC multiplies, 8XYD and 8XYF divide with the remainder in VF. Division
// by zero clears VF and the dividend register: VX for 8XYD, VY for 8XYF.
func hyperwaveArithmetic(m *Machine, op Opcode) (Result, error) {
	x := op.X()
	vx, vy := m.V[x], m.V[op.Y()]
	switch op.N() {
	case 0xC:
		product := uint16(vx) * uint16(vy)
		m.V[x] = uint8(product)
		m.V[0xF] = uint8(product >> 8)
	case 0xD:
		if vy == 0 {
			m.V[x] = 0
			m.V[0xF] = 0
			break
		}
		m.V[x] = vx / vy
		m.V[0xF] = vx % vy
	case 0xF:
		if vx == 0 {
			m.V[op.Y()] = 0
			m.V[0xF] = 0
			break
		}
		m.V[x] = vy / vx
		m.V[0xF] = vy % vx
	default:
		return 0, nil
	}
	return Handled, nil
}

// F100/F200/F300 NNNN long jump, call and jump0; FX03 palette; FX1F.
func hyperwaveMisc(m *Machine, op Opcode) (Result, error) {
	switch {
	case op == 0xF100:
		m.jump(uint32(m.word(m.PC)))
	case op == 0xF200:
		target := uint32(m.word(m.PC))
		m.push(m.PC + 2)
		m.jump(target)
	case op == 0xF300:
		m.jump(uint32(m.word(m.PC)) + uint32(m.V[0]))
	case op.NN() == 0x03:
		rgb := uint32(m.read(m.I))<<16 | uint32(m.read(m.I+1))<<8 | uint32(m.read(m.I+2))
		m.Display.SetPaletteEntry(int(op.X()), rgb)
	case op.NN() == 0x1F:
		m.setI(m.I - uint32(m.V[op.X()]))
	default:
		return 0, nil
	}
	return Handled, nil
}
