package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	for _, v := range Variants() {
		t.Run(v.String(), func(t *testing.T) {
			parsed, err := ParseVariant(v.String())
			require.NoError(t, err)
			assert.Equal(t, v, parsed)
		})
	}

	t.Run("alias", func(t *testing.T) {
		parsed, err := ParseVariant("XOChip")
		require.NoError(t, err)
		assert.Equal(t, XOChip, parsed)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseVariant("nope")
		assert.Error(t, err)
	})
}

func TestResolvePrecedence(t *testing.T) {
	xo := XOChip
	schip := SChip11
	yes := true
	no := false
	byX := IncrementByX
	ipf := 200

	tests := []struct {
		name     string
		override Hint
		database Hint
		expected Settings
	}{
		{
			name:     "variant defaults",
			expected: Settings{Variant: Chip8, Quirks: DefaultQuirks(Chip8), IPF: 15},
		},
		{
			name:     "database selects variant",
			database: Hint{Variant: &xo, Title: "Game"},
			expected: Settings{Title: "Game", Variant: XOChip, Quirks: DefaultQuirks(XOChip), IPF: 1000},
		},
		{
			name:     "override beats database",
			override: Hint{Variant: &schip, Clipping: &no, IPF: &ipf},
			database: Hint{Variant: &xo, Clipping: &yes, MemoryIncrement: &byX},
			expected: Settings{
				Variant: SChip11,
				Quirks: Quirks{
					MemoryIncrement: IncrementByX,
					DisplayWait:     true,
					ShiftVXInPlace:  true,
					JumpWithVX:      true,
				},
				IPF: 200,
			},
		},
		{
			name:     "display wait changes chip-8 ipf",
			override: Hint{DisplayWait: &no},
			expected: Settings{
				Variant: Chip8,
				Quirks:  Quirks{VFReset: true, MemoryIncrement: IncrementByXPlusOne, Clipping: true},
				IPF:     11,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.override, tt.database))
		})
	}
}

func TestResolveIgnoresInvalidIncrement(t *testing.T) {
	bad := MemoryIncrement(9)
	s := Resolve(Hint{MemoryIncrement: &bad}, Hint{})
	assert.Equal(t, IncrementByXPlusOne, s.Quirks.MemoryIncrement)
}

func TestDatabaseLookup(t *testing.T) {
	rom := []byte{0x60, 0x05, 0x70, 0x03}
	doc := `{"programs": {"` + strings.ToUpper(Digest(rom)) + `": {"title": "Adder", "variant": "schip-modern", "memoryIncrement": "x", "ipf": 50}}}`

	db, err := LoadDatabase(strings.NewReader(doc))
	require.NoError(t, err)

	hint, ok := db.Lookup(rom)
	require.True(t, ok)
	assert.Equal(t, "Adder", hint.Title)
	require.NotNil(t, hint.Variant)
	assert.Equal(t, SChipModern, *hint.Variant)
	require.NotNil(t, hint.MemoryIncrement)
	assert.Equal(t, IncrementByX, *hint.MemoryIncrement)

	_, ok = db.Lookup([]byte{0x00})
	assert.False(t, ok)

	var empty *Database
	_, ok = empty.Lookup(rom)
	assert.False(t, ok)
}

func TestDatabaseRejectsUnknownVariant(t *testing.T) {
	_, err := LoadDatabase(strings.NewReader(`{"programs": {"ab": {"variant": "nes"}}}`))
	assert.Error(t, err)
}
