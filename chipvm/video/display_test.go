package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayLogicalSize(t *testing.T) {
	tests := []struct {
		name           string
		display        *Display
		hires          bool
		expectedWidth  int
		expectedHeight int
	}{
		{"chip-8", NewDisplay(64, 32, false, DefaultPalette()), false, 64, 32},
		{"extended lores", NewDisplay(128, 64, true, DefaultPalette()), false, 64, 32},
		{"extended hires", NewDisplay(128, 64, true, DefaultPalette()), true, 128, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.display.SetHires(tt.hires)
			assert.Equal(t, tt.expectedWidth, tt.display.Width())
			assert.Equal(t, tt.expectedHeight, tt.display.Height())
		})
	}
}

func TestDisplayFlipTwiceRestores(t *testing.T) {
	d := NewDisplay(64, 32, false, DefaultPalette())
	d.SetPixel(3, 4, 1)

	first := d.Flip(3, 4, 1)
	second := d.Flip(3, 4, 1)

	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, uint8(1), d.Pixel(3, 4))
}

func TestDisplayPlotModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     CombineMode
		initial  uint8
		expected uint8
		collided bool
	}{
		{"xor sets", CombineXOR, 0, 1, false},
		{"xor clears", CombineXOR, 1, 0, true},
		{"or keeps", CombineOR, 1, 1, true},
		{"or sets", CombineOR, 0, 1, false},
		{"subtract clears", CombineSubtract, 1, 0, true},
		{"subtract on empty", CombineSubtract, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisplay(64, 32, false, DefaultPalette())
			d.SetPixel(0, 0, tt.initial)
			assert.Equal(t, tt.collided, d.Plot(0, 0, 1, tt.mode))
			assert.Equal(t, tt.expected, d.Pixel(0, 0))
		})
	}
}

func TestDisplayPlanesAreIndependent(t *testing.T) {
	d := NewDisplay(128, 64, true, DefaultPalette())
	d.SetPixel(0, 0, 0b11)

	d.SelectPlanes(2)
	d.Clear()
	assert.Equal(t, uint8(1), d.Pixel(0, 0))

	d.SelectPlanes(1)
	d.Invert()
	assert.Equal(t, uint8(0), d.Pixel(0, 0))
	assert.Equal(t, uint8(1), d.Pixel(1, 0))
}

func TestDisplayScroll(t *testing.T) {
	tests := []struct {
		name   string
		scroll func(d *Display)
		x, y   int
	}{
		{"down", func(d *Display) { d.ScrollDown(3) }, 10, 13},
		{"up", func(d *Display) { d.ScrollUp(2) }, 10, 8},
		{"left", func(d *Display) { d.ScrollLeft(4) }, 6, 10},
		{"right", func(d *Display) { d.ScrollRight(4) }, 14, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisplay(128, 64, true, DefaultPalette())
			d.SetPixel(10, 10, 0b11)
			d.SelectPlanes(1)

			tt.scroll(d)

			assert.Equal(t, uint8(1), d.Pixel(tt.x, tt.y))
			assert.Equal(t, uint8(2), d.Pixel(10, 10), "unselected plane must stay")
		})
	}

	t.Run("off the edge", func(t *testing.T) {
		d := NewDisplay(64, 32, false, DefaultPalette())
		d.SetPixel(0, 31, 1)
		d.ScrollDown(1)
		for y := 0; y < 32; y++ {
			assert.Equal(t, uint8(0), d.Pixel(0, y))
		}
	})
}

func TestDisplayRender(t *testing.T) {
	p := DefaultPalette()
	d := NewDisplay(64, 32, false, p)
	d.SetPixel(1, 2, 1)

	fb := NewFrameBuffer(64, 32)
	d.Render(fb)

	assert.Equal(t, p[1], fb.GetPixel(1, 2))
	assert.Equal(t, p[0], fb.GetPixel(0, 0))
}

func TestDisplayPaletteEntry(t *testing.T) {
	d := NewDisplay(128, 64, true, Palette{})
	d.SetPaletteEntry(3, 0x123456)
	assert.Equal(t, uint32(0xFF123456), d.Palette()[3])
}

func TestLookupPalette(t *testing.T) {
	p, err := LookupPalette("Silicon8")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), p[1])
	assert.Equal(t, uint32(0xFF000000), p[0])

	_, err = LookupPalette("sepia")
	assert.Error(t, err)
}

func TestGlyphAddresses(t *testing.T) {
	assert.Equal(t, uint32(0x0A*5), SmallGlyphAddress(0xFA))
	assert.Equal(t, uint32(BigFontAddress+3*10), BigGlyphAddress(3))
	assert.Len(t, SmallFont, 16*SmallGlyphSize)
	assert.Len(t, SChipBigFont, 16*BigGlyphSize)
	assert.Len(t, OctoBigFont, 16*BigGlyphSize)
}
