package cpu

import "strings"

// Result is the bitmask a handler returns to describe what it did.
type Result uint16

const (
	// Handled marks an opcode recognized by some layer of the table.
	Handled Result = 1 << iota
	SkipTaken
	DrawExecuted
	// LongDrawExecuted marks a draw that took two frames on the VIP.
	LongDrawExecuted
	GetKeyExecuted
	// FontSpritePointer marks that I now points at a font glyph.
	FontSpritePointer
	ClsExecuted
	// Waiting marks a strict instruction that is still in progress.
	Waiting
)

var resultNames = []string{
	"handled", "skip", "draw", "long-draw", "get-key", "font", "cls", "waiting",
}

// Has reports whether every flag in f is set.
func (r Result) Has(f Result) bool {
	return r&f == f
}

func (r Result) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	for i, name := range resultNames {
		if r&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
