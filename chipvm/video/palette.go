package video

import (
	"fmt"
	"sort"
	"strings"
)

// Palette maps a bitplane combination (0-15) to an ARGB color.
type Palette [16]uint32

// rgbaPalette builds a palette from 0xRRGGBBAA literals.
func rgbaPalette(colors ...uint32) Palette {
	var p Palette
	for i, c := range colors {
		r := (c >> 24) & 0xFF
		g := (c >> 16) & 0xFF
		b := (c >> 8) & 0xFF
		a := c & 0xFF
		p[i] = a<<24 | r<<16 | g<<8 | b
	}
	return p
}

var palettes = map[string]Palette{
	"cadmium": rgbaPalette(
		0x1a1c2cff, 0xf4f4f4ff, 0x94b0c2ff, 0x333c57ff,
		0xb13e53ff, 0xa7f070ff, 0x3b5dc9ff, 0xffcd75ff,
		0x5d275dff, 0x38b764ff, 0x29366fff, 0x566c86ff,
		0xef7d57ff, 0x73eff7ff, 0x41a6f6ff, 0x257179ff,
	),
	"silicon8": rgbaPalette(
		0x000000ff, 0xffffffff, 0xaaaaaaff, 0x555555ff,
		0xff0000ff, 0x00ff00ff, 0x0000ffff, 0xffff00ff,
		0x880000ff, 0x008800ff, 0x000088ff, 0x888800ff,
		0xff00ffff, 0x00ffffff, 0x880088ff, 0x008888ff,
	),
	"pico8": rgbaPalette(
		0x000000ff, 0xfff1e8ff, 0xc2c3c7ff, 0x5f574fff,
		0xef7d57ff, 0x00e436ff, 0x29adffff, 0xffec27ff,
		0xab5236ff, 0x008751ff, 0x1d2b53ff, 0xffa300ff,
		0xff77a8ff, 0xffccaaff, 0x7e2553ff, 0x83769cff,
	),
	"octoclassic": rgbaPalette(
		0x996600ff, 0xffcc00ff, 0xff6600ff, 0x662200ff,
		0x000000ff, 0x000000ff, 0x000000ff, 0x000000ff,
		0x000000ff, 0x000000ff, 0x000000ff, 0x000000ff,
		0x000000ff, 0x000000ff, 0x000000ff, 0x000000ff,
	),
	"lcd": rgbaPalette(
		0xf2fff2ff, 0x5b8c7cff, 0xadd9bcff, 0x0d1a1aff,
		0x000000ff, 0x000000ff, 0x000000ff, 0x000000ff,
		0x000000ff, 0x000000ff, 0x000000ff, 0x000000ff,
		0x000000ff, 0x000000ff, 0x000000ff, 0x000000ff,
	),
	"c64": rgbaPalette(
		0x000000ff, 0xffffffff, 0xadadadff, 0x626262ff,
		0xa1683cff, 0x9ae29bff, 0x887ecbff, 0xc9d487ff,
		0x9f4e44ff, 0x5cab5eff, 0x50459bff, 0x6d5412ff,
		0xcb7e75ff, 0x6abfc6ff, 0xa057a3ff, 0x898989ff,
	),
	"cga": rgbaPalette(
		0x000000ff, 0xffffffff, 0xaaaaaaff, 0x555555ff,
		0xff5555ff, 0x55ff55ff, 0x5555ffff, 0xffff55ff,
		0xaa0000ff, 0x00aa00ff, 0x0000aaff, 0xaa5500ff,
		0xff55ffff, 0x55ffffff, 0xaa00aaff, 0x00aaaaff,
	),
}

// DefaultPaletteName is used when no palette is configured.
const DefaultPaletteName = "cadmium"

// DefaultPalette returns the default palette.
func DefaultPalette() Palette {
	return palettes[DefaultPaletteName]
}

// LookupPalette returns the built-in palette with the given name.
func LookupPalette(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(name)]
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q (available: %s)", name, strings.Join(PaletteNames(), ", "))
	}
	return p, nil
}

// PaletteNames lists the built-in palettes in alphabetical order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
