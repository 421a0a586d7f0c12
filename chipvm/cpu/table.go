package cpu

import "github.com/valerio/go-chipvm/chipvm/config"

// Handler executes one opcode family. A zero Result without error means the
// handler does not recognize the opcode and the next layer may try it.
type Handler func(m *Machine, op Opcode) (Result, error)

// Table maps the high nibble of an opcode to its handler.
type Table [16]Handler

// extend layers own under parent: parent runs first and own only sees
// opcodes the parent left unhandled.
func extend(parent, own Handler) Handler {
	return func(m *Machine, op Opcode) (Result, error) {
		r, err := parent(m, op)
		if err != nil || r&Handled != 0 {
			return r, err
		}
		return own(m, op)
	}
}

// intercept lets own reinterpret opcodes before parent sees them.
func intercept(own, parent Handler) Handler {
	return extend(own, parent)
}

// doubleSkip advances past the operand word of a long instruction when a
// taken skip lands on one. The preceding bytes are re-read from memory.
func doubleSkip(h Handler) Handler {
	return func(m *Machine, op Opcode) (Result, error) {
		r, err := h(m, op)
		if err == nil && r.Has(Handled|SkipTaken) && m.longPrefix != nil && m.longPrefix(m) {
			m.skip()
		}
		return r, err
	}
}

func withDoubleSkip(t Table) Table {
	for _, family := range []uint8{0x3, 0x4, 0x5, 0x9, 0xE} {
		t[family] = doubleSkip(t[family])
	}
	return t
}

func tableFor(v config.Variant) Table {
	switch v {
	case config.StrictChip8:
		return strictTable()
	case config.Chip8X:
		return chip8xTable()
	case config.SChip10:
		return schip10Table()
	case config.SChip11:
		return schip11Table()
	case config.SChipModern:
		return schipModernTable()
	case config.XOChip:
		return withDoubleSkip(xochipTable())
	case config.HyperWaveChip64:
		return withDoubleSkip(hyperwaveTable())
	case config.MegaChip:
		return withDoubleSkip(megachipTable())
	default:
		return chip8Table()
	}
}

// longPrefixFor returns the test for "the word just skipped was the first
// half of a two-word instruction".
func longPrefixFor(v config.Variant) func(m *Machine) bool {
	switch v {
	case config.XOChip:
		return func(m *Machine) bool {
			return m.word(m.PC-2) == 0xF000
		}
	case config.HyperWaveChip64:
		return func(m *Machine) bool {
			high := m.read(m.PC - 2)
			return high >= 0xF0 && high <= 0xF3 && m.read(m.PC-1) == 0x00
		}
	case config.MegaChip:
		return func(m *Machine) bool {
			return m.read(m.PC-2) == 0x01
		}
	}
	return nil
}
