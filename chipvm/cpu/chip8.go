package cpu

import (
	"github.com/valerio/go-chipvm/chipvm/bit"
	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/video"
)

func chip8Table() Table {
	return Table{
		chip8System,
		chip8Jump,
		chip8Call,
		chip8SkipEqualImmediate,
		chip8SkipNotEqualImmediate,
		chip8SkipEqualRegister,
		chip8LoadImmediate,
		chip8AddImmediate,
		chip8Arithmetic,
		chip8SkipNotEqualRegister,
		chip8LoadIndex,
		chip8JumpOffset,
		chip8Random,
		chip8Draw,
		chip8SkipKey,
		chip8Misc,
	}
}

// 00E0, 00EE
func chip8System(m *Machine, op Opcode) (Result, error) {
	switch op {
	case 0x00E0:
		m.Display.Clear()
	case 0x00EE:
		m.jump(m.pop())
	default:
		return 0, nil
	}
	return Handled, nil
}

// 1NNN
func chip8Jump(m *Machine, op Opcode) (Result, error) {
	m.jump(op.NNN())
	return Handled, nil
}

// 2NNN
func chip8Call(m *Machine, op Opcode) (Result, error) {
	m.push(m.PC)
	m.jump(op.NNN())
	return Handled, nil
}

func skipIf(m *Machine, cond bool) Result {
	if cond {
		m.skip()
		return Handled | SkipTaken
	}
	return Handled
}

// 3XNN
func chip8SkipEqualImmediate(m *Machine, op Opcode) (Result, error) {
	return skipIf(m, m.V[op.X()] == op.NN()), nil
}

// 4XNN
func chip8SkipNotEqualImmediate(m *Machine, op Opcode) (Result, error) {
	return skipIf(m, m.V[op.X()] != op.NN()), nil
}

// 5XY0
func chip8SkipEqualRegister(m *Machine, op Opcode) (Result, error) {
	if op.N() != 0 {
		return 0, nil
	}
	return skipIf(m, m.V[op.X()] == m.V[op.Y()]), nil
}

// 6XNN
func chip8LoadImmediate(m *Machine, op Opcode) (Result, error) {
	m.V[op.X()] = op.NN()
	return Handled, nil
}

// 7XNN, no carry
func chip8AddImmediate(m *Machine, op Opcode) (Result, error) {
	m.V[op.X()] += op.NN()
	return Handled, nil
}

// 8XYN. VF is written after VX so that VF as destination holds the flag.
func chip8Arithmetic(m *Machine, op Opcode) (Result, error) {
	x := op.X()
	vx, vy := m.V[x], m.V[op.Y()]
	quirks := m.settings.Quirks

	switch op.N() {
	case 0x0:
		m.V[x] = vy
	case 0x1:
		m.V[x] = vx | vy
		if quirks.VFReset {
			m.V[0xF] = 0
		}
	case 0x2:
		m.V[x] = vx & vy
		if quirks.VFReset {
			m.V[0xF] = 0
		}
	case 0x3:
		m.V[x] = vx ^ vy
		if quirks.VFReset {
			m.V[0xF] = 0
		}
	case 0x4:
		sum, carry := bit.CheckedAdd(vx, vy)
		m.V[x] = sum
		m.setVF(carry)
	case 0x5:
		diff, borrow := bit.CheckedSub(vx, vy)
		m.V[x] = diff
		m.setVF(!borrow)
	case 0x6:
		operand := vy
		if quirks.ShiftVXInPlace {
			operand = vx
		}
		m.V[x] = operand >> 1
		m.setVF(operand&0x01 != 0)
	case 0x7:
		diff, borrow := bit.CheckedSub(vy, vx)
		m.V[x] = diff
		m.setVF(!borrow)
	case 0xE:
		operand := vy
		if quirks.ShiftVXInPlace {
			operand = vx
		}
		m.V[x] = operand << 1
		m.setVF(operand&0x80 != 0)
	default:
		return 0, nil
	}
	return Handled, nil
}

// 9XY0
func chip8SkipNotEqualRegister(m *Machine, op Opcode) (Result, error) {
	if op.N() != 0 {
		return 0, nil
	}
	return skipIf(m, m.V[op.X()] != m.V[op.Y()]), nil
}

// ANNN
func chip8LoadIndex(m *Machine, op Opcode) (Result, error) {
	m.setI(op.NNN())
	return Handled, nil
}

// BNNN, or BXNN with the jump quirk
func chip8JumpOffset(m *Machine, op Opcode) (Result, error) {
	offset := m.V[0]
	if m.settings.Quirks.JumpWithVX {
		offset = m.V[op.X()]
	}
	m.jump(op.NNN() + uint32(offset))
	return Handled, nil
}

// CXNN
func chip8Random(m *Machine, op Opcode) (Result, error) {
	m.V[op.X()] = uint8(m.rng.Uint32()) & op.NN()
	return Handled, nil
}

// EX9E, EXA1
func chip8SkipKey(m *Machine, op Opcode) (Result, error) {
	pressed := m.keys()&(1<<(m.V[op.X()]&0xF)) != 0
	switch op.NN() {
	case 0x9E:
		return skipIf(m, pressed), nil
	case 0xA1:
		return skipIf(m, !pressed), nil
	}
	return 0, nil
}

// FXNN
func chip8Misc(m *Machine, op Opcode) (Result, error) {
	x := op.X()
	switch op.NN() {
	case 0x07:
		m.V[x] = m.DelayTimer
	case 0x0A:
		m.waitKey(x)
		return Handled | GetKeyExecuted, nil
	case 0x15:
		m.DelayTimer = m.V[x]
	case 0x18:
		m.SoundTimer = m.V[x]
	case 0x1E:
		m.setI(m.I + uint32(m.V[x]))
	case 0x29:
		m.setI(video.SmallGlyphAddress(m.V[x]))
		return Handled | FontSpritePointer, nil
	case 0x33:
		h, t, o := BCD(m.V[x])
		m.write(m.I, h)
		m.write(m.I+1, t)
		m.write(m.I+2, o)
	case 0x55:
		for i := uint32(0); i <= uint32(x); i++ {
			m.write(m.I+i, m.V[i])
		}
		m.advanceIndex(x)
	case 0x65:
		for i := uint32(0); i <= uint32(x); i++ {
			m.V[i] = m.read(m.I + i)
		}
		m.advanceIndex(x)
	default:
		return 0, nil
	}
	return Handled, nil
}

func (m *Machine) advanceIndex(x uint8) {
	switch m.settings.Quirks.MemoryIncrement {
	case config.IncrementByX:
		m.setI(m.I + uint32(x))
	case config.IncrementByXPlusOne:
		m.setI(m.I + uint32(x) + 1)
	}
}

// waitKey implements FX0A as a press-then-release wait. The key is latched
// on press and delivered once it is released or another key takes over.
func (m *Machine) waitKey(x uint8) {
	first, pressed := firstKey(m.keys())
	if m.waitingKey >= 0 {
		if !pressed || first != uint8(m.waitingKey) {
			m.V[x] = uint8(m.waitingKey)
			m.waitingKey = -1
			return
		}
		m.rewind()
		return
	}
	if pressed {
		m.waitingKey = int(first)
	}
	m.rewind()
}

// BCD splits v into decimal digits using fixed-point reciprocal
// multiplication.
func BCD(v uint8) (hundreds, tens, ones uint8) {
	h := (uint64(v) * 0x51EB851F) >> 37
	r := uint64(v) - h*100
	t := (r * 0xCCCD) >> 19
	o := r - t*10
	return uint8(h), uint8(t), uint8(o)
}
