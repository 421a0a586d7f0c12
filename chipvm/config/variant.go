package config

import (
	"fmt"
	"strings"
)

// Variant identifies one machine of the CHIP-8 lineage.
type Variant int

const (
	Chip8 Variant = iota
	StrictChip8
	Chip8X
	SChip10
	SChip11
	SChipModern
	XOChip
	MegaChip
	HyperWaveChip64
	CosmacVIP
)

var variantNames = [...]string{
	Chip8:           "chip-8",
	StrictChip8:     "strict-chip-8",
	Chip8X:          "chip-8x",
	SChip10:         "schip-1.0",
	SChip11:         "schip-1.1",
	SChipModern:     "schip-modern",
	XOChip:          "xo-chip",
	MegaChip:        "mega-chip",
	HyperWaveChip64: "hyperwave-chip-64",
	CosmacVIP:       "cosmac-vip",
}

// Aliases accepted by ParseVariant in addition to the canonical names.
var variantAliases = map[string]Variant{
	"chip8":        Chip8,
	"strict":       StrictChip8,
	"chip8x":       Chip8X,
	"schip":        SChip11,
	"schip-legacy": SChip11,
	"xochip":       XOChip,
	"megachip":     MegaChip,
	"hwc64":        HyperWaveChip64,
	"vip":          CosmacVIP,
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

// ParseVariant maps a variant identifier to its Variant.
func ParseVariant(s string) (Variant, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range variantNames {
		if n == name {
			return Variant(i), nil
		}
	}
	if v, ok := variantAliases[name]; ok {
		return v, nil
	}
	return Chip8, fmt.Errorf("unknown variant %q", s)
}

// Variants returns every known variant in declaration order.
func Variants() []Variant {
	out := make([]Variant, len(variantNames))
	for i := range variantNames {
		out[i] = Variant(i)
	}
	return out
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MemorySize is the size of the address space, always a power of two.
func (v Variant) MemorySize() int {
	switch v {
	case XOChip, HyperWaveChip64:
		return 0x10000
	case MegaChip:
		return 0x1000000
	default:
		return 0x1000
	}
}

// ProgramStart is the address where ROMs are loaded and PC starts.
func (v Variant) ProgramStart() uint32 {
	switch v {
	case Chip8X:
		return 0x300
	case CosmacVIP:
		return 0x000
	default:
		return 0x200
	}
}

// HasBigFont reports whether the variant ships the 8x10 glyph set.
func (v Variant) HasBigFont() bool {
	switch v {
	case SChip10, SChip11, SChipModern, XOChip, MegaChip, HyperWaveChip64:
		return true
	}
	return false
}
