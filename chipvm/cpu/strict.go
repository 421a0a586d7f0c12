package cpu

import (
	"github.com/valerio/go-chipvm/chipvm/memory"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// COSMAC VIP interpreter timing, in 1802 machine cycles.
const (
	StrictStartupCycles = 3250
	StrictFrameCycles   = 3668

	strictFrameLead       = 2572
	strictFrameStart      = 1096
	strictInterruptCycles = 1832
	strictClearCycles     = 3078
)

// StrictClock counts the machine cycles the VIP interpreter would have
// spent. Crossing a frame boundary runs the 60 Hz interrupt: OnFrame is
// called, the timers tick and the interrupt routine's own cycles are
// charged.
type StrictClock struct {
	// OnFrame runs at every frame interrupt before the timers tick.
	OnFrame func()

	cycles    uint64
	nextFrame uint64
	m         *Machine
}

func (c *StrictClock) Cycles() uint64 {
	return c.cycles
}

// NextFrame is the cycle count at which the next interrupt fires.
func (c *StrictClock) NextFrame() uint64 {
	return c.nextFrame
}

func (c *StrictClock) LeftInFrame() uint64 {
	return c.nextFrame - c.cycles
}

func (c *StrictClock) add(n uint64) {
	c.cycles += n
	if c.cycles < c.nextFrame {
		return
	}
	irq := uint64(strictInterruptCycles)
	if c.m.SoundTimer != 0 {
		irq += 4
	}
	if c.m.DelayTimer != 0 {
		irq += 8
	}
	if c.OnFrame != nil {
		c.OnFrame()
	}
	c.m.TickTimers()
	c.cycles += irq
	c.nextFrame = strictFrameAfter(c.cycles)
}

func strictFrameAfter(cycles uint64) uint64 {
	return ((cycles+strictFrameLead)/StrictFrameCycles)*StrictFrameCycles + strictFrameStart
}

// strictState is the sub-state of an instruction that spans several steps.
// While waiting the same opcode is fetched again and remaining counts the
// cycles still owed.
type strictState struct {
	clock     StrictClock
	waiting   bool
	remaining uint64
}

func newStrictState(m *Machine) *strictState {
	s := &strictState{}
	s.clock.m = m
	s.clock.cycles = StrictStartupCycles
	s.clock.nextFrame = strictFrameAfter(StrictStartupCycles)
	return s
}

func strictTable() Table {
	t := Table{
		strictSystem,
		strictJump,
		strictCall,
		strictSkipEqualImmediate,
		strictSkipNotEqualImmediate,
		strictSkipEqualRegister,
		strictLoadImmediate,
		strictAddImmediate,
		strictArithmetic,
		strictSkipNotEqualRegister,
		strictLoadIndex,
		strictJumpOffset,
		strictRandom,
		strictDraw,
		strictSkipKey,
		strictMisc,
	}
	for i := range t {
		t[i] = strictTimed(t[i])
	}
	return t
}

// strictTimed charges the fetch and decode cost of the interpreter loop.
// Re-entries of a waiting instruction are free and report Waiting.
func strictTimed(h Handler) Handler {
	return func(m *Machine, op Opcode) (Result, error) {
		s := m.strict
		var extra Result
		if s.waiting {
			extra = Waiting
		} else if op.Family() != 0 {
			s.clock.add(68)
		} else {
			s.clock.add(40)
		}
		r, err := h(m, op)
		if r&Handled != 0 {
			r |= extra
		}
		return r, err
	}
}

// Stack word n sits just below the work area, growing downward.
func strictStackAddress(sp uint16) uint32 {
	return memory.WorkAreaOffset - 2*uint32(sp) - 2
}

func (m *Machine) writeStackWord(sp uint16, value uint32) {
	address := strictStackAddress(sp)
	m.write(address, uint8(value>>8))
	m.write(address+1, uint8(value))
}

func (m *Machine) strictPush(value uint32) {
	m.writeStackWord(m.SP, value)
	m.SP++
}

func (m *Machine) strictPop() uint32 {
	m.SP--
	return uint32(m.word(strictStackAddress(m.SP)))
}

// strictSkip charges the taken or not-taken cost of a conditional skip.
func strictSkip(m *Machine, cond bool, taken, notTaken uint64) Result {
	if cond {
		m.skip()
		m.strict.clock.add(taken)
		return Handled | SkipTaken
	}
	m.strict.clock.add(notTaken)
	return Handled
}

// 00E0 spans 3078 cycles and clears once they have elapsed. 00EE.
func strictSystem(m *Machine, op Opcode) (Result, error) {
	s := m.strict
	switch op {
	case 0x00E0:
		left := s.clock.LeftInFrame()
		if !s.waiting {
			s.waiting = true
			m.rewind()
			s.remaining = 0
			if strictClearCycles > left {
				s.remaining = strictClearCycles - left
			}
			s.clock.add(left)
			return Handled, nil
		}
		if s.remaining != 0 {
			s.remaining -= min(s.remaining, left)
			s.clock.add(left)
		}
		if s.remaining == 0 {
			s.waiting = false
			m.Display.Clear()
		} else {
			m.rewind()
		}
	case 0x00EE:
		m.jump(m.strictPop())
		s.clock.add(10)
	default:
		return 0, nil
	}
	return Handled, nil
}

func strictJump(m *Machine, op Opcode) (Result, error) {
	m.jump(op.NNN())
	m.strict.clock.add(12)
	return Handled, nil
}

func strictCall(m *Machine, op Opcode) (Result, error) {
	m.strictPush(m.PC)
	m.jump(op.NNN())
	m.strict.clock.add(26)
	return Handled, nil
}

func strictSkipEqualImmediate(m *Machine, op Opcode) (Result, error) {
	return strictSkip(m, m.V[op.X()] == op.NN(), 14, 10), nil
}

func strictSkipNotEqualImmediate(m *Machine, op Opcode) (Result, error) {
	return strictSkip(m, m.V[op.X()] != op.NN(), 14, 10), nil
}

func strictSkipEqualRegister(m *Machine, op Opcode) (Result, error) {
	if op.N() != 0 {
		return 0, nil
	}
	return strictSkip(m, m.V[op.X()] == m.V[op.Y()], 18, 14), nil
}

func strictLoadImmediate(m *Machine, op Opcode) (Result, error) {
	m.V[op.X()] = op.NN()
	m.strict.clock.add(6)
	return Handled, nil
}

func strictAddImmediate(m *Machine, op Opcode) (Result, error) {
	m.V[op.X()] += op.NN()
	m.strict.clock.add(10)
	return Handled, nil
}

// 8XYN runs as code the interpreter assembles on its stack, so every
// variant but 8XY0 leaves that word in the next stack slot.
func strictArithmetic(m *Machine, op Opcode) (Result, error) {
	n := op.N()
	if n != 0 {
		m.writeStackWord(m.SP, uint32(0xF0+uint16(n))<<8|0xD3)
	}
	x := op.X()
	vx, vy := m.V[x], m.V[op.Y()]
	switch n {
	case 0x0:
		m.V[x] = vy
		m.strict.clock.add(12)
		return Handled, nil
	case 0x1:
		m.V[x] = vx | vy
		m.V[0xF] = 0
	case 0x2:
		m.V[x] = vx & vy
		m.V[0xF] = 0
	case 0x3:
		m.V[x] = vx ^ vy
		m.V[0xF] = 0
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		m.V[x] = uint8(sum)
		m.setVF(sum > 0xFF)
	case 0x5:
		m.V[x] = vx - vy
		m.setVF(vx >= vy)
	case 0x6:
		m.V[x] = vy >> 1
		m.setVF(vy&0x01 != 0)
	case 0x7:
		m.V[x] = vy - vx
		m.setVF(vy >= vx)
	case 0xE:
		m.V[x] = vy << 1
		m.setVF(vy&0x80 != 0)
	default:
		return 0, nil
	}
	m.strict.clock.add(44)
	return Handled, nil
}

func strictSkipNotEqualRegister(m *Machine, op Opcode) (Result, error) {
	if op.N() != 0 {
		return 0, nil
	}
	return strictSkip(m, m.V[op.X()] != m.V[op.Y()], 18, 14), nil
}

func strictLoadIndex(m *Machine, op Opcode) (Result, error) {
	m.setI(op.NNN())
	m.strict.clock.add(12)
	return Handled, nil
}

// BNNN costs two more cycles when the target is on another page.
func strictJumpOffset(m *Machine, op Opcode) (Result, error) {
	from := m.PC
	to := op.NNN() + uint32(m.V[0])
	m.jump(to)
	m.strict.clock.add(pageCost(from, to, 24, 22))
	return Handled, nil
}

func pageCost(from, to uint32, crossed, same uint64) uint64 {
	if from&0xFF00 != to&0xFF00 {
		return crossed
	}
	return same
}

func strictRandom(m *Machine, op Opcode) (Result, error) {
	m.V[op.X()] = uint8(m.rng.Uint32()) & op.NN()
	m.strict.clock.add(36)
	return Handled, nil
}

// DXYN first waits out the sprite preparation time, charged as whole
// frames, and draws on the step after it has elapsed.
func strictDraw(m *Machine, op Opcode) (Result, error) {
	s := m.strict
	x0 := int(m.V[op.X()]) % m.Display.Width()
	y0 := int(m.V[op.Y()]) % m.Display.Height()
	n := int(op.N())
	left := s.clock.LeftInFrame()

	switch {
	case !s.waiting:
		prepare := uint64(68 + n*(46+20*(x0&7)))
		s.waiting = true
		m.rewind()
		s.remaining = 0
		if prepare > left {
			s.remaining = prepare - left
		}
		s.clock.add(left)
	case s.remaining != 0:
		m.rewind()
		s.remaining -= min(s.remaining, left)
		s.clock.add(left)
	default:
		s.waiting = false
		m.strictSprite(x0, y0, n)
	}
	return Handled, nil
}

// strictSprite clips at both edges and mirrors the interpreter's shifted
// row buffer into the work area. Each row costs more when it collides.
func (m *Machine) strictSprite(x0, y0, n int) {
	d := m.Display
	width, height := d.Width(), d.Height()
	shift := x0 & 7
	cost := uint64(26)
	collided := false

	m.V[0xF] = 0
	for i := 0; i < n; i++ {
		y := y0 + i
		if y >= height {
			break
		}
		row := m.read(m.I + uint32(i))
		work := memory.WorkAreaOffset + uint32(i)*2
		m.write(work, row>>shift)
		if shift != 0 {
			m.write(work+1, row<<(8-shift))
		} else {
			m.write(work+1, 0)
		}

		var leftByte, rightByte bool
		for j := 0; j < 8; j++ {
			x := x0 + j
			if x >= width {
				break
			}
			if row&(0x80>>j) == 0 {
				continue
			}
			if d.Flip(x, y, 1) {
				if j+shift < 8 {
					leftByte = true
				} else {
					rightByte = true
				}
				collided = true
			}
		}
		cost += 34
		if leftByte {
			cost += 4
		}
		if x0 < 56 {
			cost += 16
		}
		if rightByte {
			cost += 4
		}
	}
	m.strict.clock.add(cost)
	m.setVF(collided)
}

func strictSkipKey(m *Machine, op Opcode) (Result, error) {
	pressed := m.keys()&(1<<(m.V[op.X()]&0xF)) != 0
	switch op.NN() {
	case 0x9E:
		return strictSkip(m, pressed, 18, 14), nil
	case 0xA1:
		return strictSkip(m, !pressed, 18, 14), nil
	}
	return 0, nil
}

func strictMisc(m *Machine, op Opcode) (Result, error) {
	s := m.strict
	x := op.X()
	s.clock.add(4)
	switch op.NN() {
	case 0x07:
		m.V[x] = m.DelayTimer
		s.clock.add(6)
	case 0x0A:
		m.strictWaitKey(x)
		return Handled | GetKeyExecuted, nil
	case 0x15:
		m.DelayTimer = m.V[x]
		s.clock.add(6)
	case 0x18:
		m.SoundTimer = m.V[x]
		s.clock.add(6)
	case 0x1E:
		from := m.I
		m.setI(m.I + uint32(m.V[x]))
		s.clock.add(pageCost(from, from+uint32(m.V[x]), 18, 12))
	case 0x29:
		m.setI(video.SmallGlyphAddress(m.V[x]))
		s.clock.add(16)
		return Handled | FontSpritePointer, nil
	case 0x33:
		h, t, o := BCD(m.V[x])
		m.write(m.I, h)
		m.write(m.I+1, t)
		m.write(m.I+2, o)
		s.clock.add(80 + uint64(h+t+o)*16)
	case 0x55:
		s.clock.add(14)
		for i := uint32(0); i <= uint32(x); i++ {
			m.write(m.I+i, m.V[i])
			s.clock.add(14)
		}
		m.setI(m.I + uint32(x) + 1)
	case 0x65:
		s.clock.add(14)
		for i := uint32(0); i <= uint32(x); i++ {
			m.V[i] = m.read(m.I + i)
			s.clock.add(14)
		}
		m.setI(m.I + uint32(x) + 1)
	default:
		return 0, nil
	}
	return Handled, nil
}

// strictWaitKey is FX0A on the VIP: the key is latched on press, delivered
// on release, and followed by a four frame beep during which the
// instruction keeps waiting.
func (m *Machine) strictWaitKey(x uint8) {
	s := m.strict
	if s.remaining != 0 {
		if m.SoundTimer != 0 {
			m.rewind()
			s.clock.add(s.clock.LeftInFrame())
			return
		}
		s.remaining = 0
		s.waiting = false
		s.clock.add(10)
		return
	}

	first, pressed := firstKey(m.keys())
	if m.waitingKey >= 0 {
		if !pressed || first != uint8(m.waitingKey) {
			m.V[x] = uint8(m.waitingKey)
			m.waitingKey = -1
			s.clock.add(s.clock.LeftInFrame())
			s.remaining = 3 * StrictFrameCycles
		}
		m.SoundTimer = 4
	} else if pressed {
		m.waitingKey = int(first)
	}
	m.rewind()
	s.waiting = true
}
