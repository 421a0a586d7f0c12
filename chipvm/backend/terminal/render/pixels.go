package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// Color converts a packed ARGB pixel to a true-color terminal color.
func Color(pixel uint32) tcell.Color {
	r, g, b, _ := video.RGBA(pixel)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// HalfBlock returns the cell that shows top over bottom: an upper half
// block in the top color over a background in the bottom color.
func HalfBlock(top, bottom uint32) (rune, tcell.Style) {
	if top == bottom {
		return ' ', tcell.StyleDefault.Background(Color(top))
	}
	return '▀', tcell.StyleDefault.Foreground(Color(top)).Background(Color(bottom))
}

// Step is the smallest pixel stride that fits size pixels into cells.
func Step(size, cells int) int {
	if cells <= 0 {
		return size
	}
	return max((size+cells-1)/cells, 1)
}
