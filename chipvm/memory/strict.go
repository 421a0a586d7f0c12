package memory

// Layout of the upper RAM page used by the VIP CHIP-8 interpreter.
const (
	StrictSize      = 0x1000
	StackOffset     = 0xEA0
	WorkAreaOffset  = 0xED0
	RegistersOffset = 0xEF0
	DisplayOffset   = 0xF00

	stackSlots = 16
	stackLow   = WorkAreaOffset - stackSlots*2
)

// PixelPlane is a 1-bit 64x32 surface mirrored into the display page.
type PixelPlane interface {
	Lit(x, y int) bool
	SetLit(x, y int, on bool)
}

// StrictMemory is the 4 KiB VIP address space where the interpreter's
// registers, call stack and display buffer live in RAM. Those regions are
// mapped onto live machine state so programs that peek or poke them see the
// same bytes the interpreter would. Reads past the end return 0xFF and
// writes past the end are dropped.
type StrictMemory struct {
	ram       [StrictSize]uint8
	registers *[16]uint8
	stack     *[16]uint32
	plane     PixelPlane
}

func NewStrict() *StrictMemory {
	return &StrictMemory{}
}

// Attach maps the register file, stack and display page onto machine state.
func (s *StrictMemory) Attach(registers *[16]uint8, stack *[16]uint32, plane PixelPlane) {
	s.registers = registers
	s.stack = stack
	s.plane = plane
}

func (s *StrictMemory) Size() int {
	return StrictSize
}

func (s *StrictMemory) Read(address uint32) uint8 {
	if address >= StrictSize {
		return 0xFF
	}
	switch {
	case s.registers != nil && address >= RegistersOffset && address < DisplayOffset:
		return s.registers[address-RegistersOffset]
	case s.stack != nil && address >= stackLow && address < WorkAreaOffset:
		slot, high := stackSlot(address)
		if high {
			return uint8(s.stack[slot] >> 8)
		}
		return uint8(s.stack[slot])
	case s.plane != nil && address >= DisplayOffset:
		return s.readDisplayByte(address - DisplayOffset)
	}
	return s.ram[address]
}

func (s *StrictMemory) Write(address uint32, value uint8) {
	if address >= StrictSize {
		return
	}
	switch {
	case s.registers != nil && address >= RegistersOffset && address < DisplayOffset:
		s.registers[address-RegistersOffset] = value
	case s.stack != nil && address >= stackLow && address < WorkAreaOffset:
		slot, high := stackSlot(address)
		if high {
			s.stack[slot] = (s.stack[slot] & 0x00FF) | uint32(value)<<8
		} else {
			s.stack[slot] = (s.stack[slot] & 0xFF00) | uint32(value)
		}
	case s.plane != nil && address >= DisplayOffset:
		s.writeDisplayByte(address-DisplayOffset, value)
	default:
		s.ram[address] = value
	}
}

// Load copies a program into plain RAM.
func (s *StrictMemory) Load(address uint32, data []uint8) error {
	if int(address)+len(data) > StrictSize {
		return errTooLarge(len(data), address, StrictSize)
	}
	copy(s.ram[address:], data)
	return nil
}

// ClearDisplay zeroes the 256 byte display page.
func (s *StrictMemory) ClearDisplay() {
	for i := uint32(0); i < 0x100; i++ {
		s.Write(DisplayOffset+i, 0)
	}
}

// Stack word i lives at WorkAreaOffset-2i-2 (high byte) and -1 (low byte).
func stackSlot(address uint32) (slot int, high bool) {
	offset := WorkAreaOffset - 1 - address
	return int(offset / 2), offset%2 == 1
}

func (s *StrictMemory) readDisplayByte(offset uint32) uint8 {
	row := int(offset >> 3)
	col := int(offset&7) << 3
	var value uint8
	for i := 0; i < 8; i++ {
		if s.plane.Lit(col+i, row) {
			value |= 0x80 >> i
		}
	}
	return value
}

func (s *StrictMemory) writeDisplayByte(offset uint32, value uint8) {
	row := int(offset >> 3)
	col := int(offset&7) << 3
	for i := 0; i < 8; i++ {
		s.plane.SetLit(col+i, row, value&(0x80>>i) != 0)
	}
}
