package config

import (
	"fmt"
	"strings"
)

// MemoryIncrement selects how FX55/FX65 advance the index register.
type MemoryIncrement int

const (
	IncrementNone MemoryIncrement = iota
	IncrementByX
	IncrementByXPlusOne
)

func (m MemoryIncrement) String() string {
	switch m {
	case IncrementNone:
		return "none"
	case IncrementByX:
		return "x"
	case IncrementByXPlusOne:
		return "x+1"
	}
	return fmt.Sprintf("MemoryIncrement(%d)", int(m))
}

// ParseMemoryIncrement accepts "none", "x" and "x+1".
func ParseMemoryIncrement(s string) (MemoryIncrement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "0", "false":
		return IncrementNone, nil
	case "x":
		return IncrementByX, nil
	case "x+1", "x1", "true":
		return IncrementByXPlusOne, nil
	}
	return IncrementNone, fmt.Errorf("unknown memory increment %q", s)
}

func (m MemoryIncrement) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MemoryIncrement) UnmarshalText(text []byte) error {
	parsed, err := ParseMemoryIncrement(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Quirks holds the behavior switches that differ between real machines.
// A Quirks value is resolved once per session and never mutated.
type Quirks struct {
	VFReset         bool
	MemoryIncrement MemoryIncrement
	DisplayWait     bool
	Clipping        bool
	ShiftVXInPlace  bool
	JumpWithVX      bool
}

// DefaultQuirks returns the quirk set of the real machine behind v.
func DefaultQuirks(v Variant) Quirks {
	switch v {
	case Chip8, Chip8X, StrictChip8:
		return Quirks{VFReset: true, MemoryIncrement: IncrementByXPlusOne, DisplayWait: true, Clipping: true}
	case SChip10:
		return Quirks{MemoryIncrement: IncrementByX, DisplayWait: true, Clipping: true, ShiftVXInPlace: true, JumpWithVX: true}
	case SChip11:
		return Quirks{DisplayWait: true, Clipping: true, ShiftVXInPlace: true, JumpWithVX: true}
	case SChipModern:
		return Quirks{Clipping: true, ShiftVXInPlace: true, JumpWithVX: true}
	case XOChip, HyperWaveChip64:
		return Quirks{MemoryIncrement: IncrementByXPlusOne}
	case MegaChip:
		return Quirks{ShiftVXInPlace: true}
	}
	return Quirks{}
}

// DefaultIPF returns the default instructions per frame for v.
func DefaultIPF(v Variant, displayWait bool) int {
	switch v {
	case Chip8, Chip8X:
		if displayWait {
			return 15
		}
		return 11
	case SChip10, SChip11, SChipModern:
		return 30
	case XOChip, HyperWaveChip64, MegaChip:
		return 1000
	}
	return 0
}
