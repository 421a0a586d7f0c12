package video

// CombineMode selects how a sprite bit is merged into a bitplane.
type CombineMode uint8

const (
	CombineXOR CombineMode = iota
	CombineOR
	CombineSubtract
)

func (m CombineMode) String() string {
	switch m {
	case CombineOR:
		return "or"
	case CombineSubtract:
		return "subtract"
	default:
		return "xor"
	}
}

// PlaneCount is the number of bitplanes a pixel can carry.
const PlaneCount = 4

const allPlanes uint8 = 1<<PlaneCount - 1

// Display is a bitplane framebuffer. Each pixel holds up to four plane bits
// and the palette maps the combination to a color.
//
// An extended display has a physical resolution twice its low-resolution
// logical size: in lores the logical width and height are halved, in hires
// they equal the physical size.
type Display struct {
	width    int
	height   int
	extended bool
	hires    bool
	selected uint8
	pixels   []uint8
	palette  Palette
}

// NewDisplay creates a display of width x height physical pixels.
func NewDisplay(width, height int, extended bool, palette Palette) *Display {
	return &Display{
		width:    width,
		height:   height,
		extended: extended,
		selected: 1,
		pixels:   make([]uint8, width*height),
		palette:  palette,
	}
}

// Reset clears every plane and returns to lores with plane 1 selected.
func (d *Display) Reset() {
	for i := range d.pixels {
		d.pixels[i] = 0
	}
	d.hires = false
	d.selected = 1
}

// Width is the logical width sprites are positioned against.
func (d *Display) Width() int {
	if d.extended && !d.hires {
		return d.width / 2
	}
	return d.width
}

// Height is the logical height sprites are positioned against.
func (d *Display) Height() int {
	if d.extended && !d.hires {
		return d.height / 2
	}
	return d.height
}

func (d *Display) PhysicalWidth() int {
	return d.width
}

func (d *Display) PhysicalHeight() int {
	return d.height
}

func (d *Display) Hires() bool {
	return d.hires
}

func (d *Display) SetHires(hires bool) {
	d.hires = hires
}

// SelectPlanes sets the plane mask targeted by draw, clear and scroll.
func (d *Display) SelectPlanes(mask uint8) {
	d.selected = mask & allPlanes
}

func (d *Display) SelectedPlanes() uint8 {
	return d.selected
}

// Pixel returns the plane bits at a physical position.
func (d *Display) Pixel(x, y int) uint8 {
	return d.pixels[y*d.width+x]
}

// SetPixel overwrites the plane bits at a physical position.
func (d *Display) SetPixel(x, y int, value uint8) {
	d.pixels[y*d.width+x] = value & allPlanes
}

// Flip XORs planes into a physical pixel and reports whether any of those
// planes were lit beforehand.
func (d *Display) Flip(x, y int, planes uint8) bool {
	i := y*d.width + x
	collided := d.pixels[i]&planes != 0
	d.pixels[i] ^= planes
	return collided
}

// Plot merges planes into a physical pixel using mode. The result reports
// whether any of the planes were lit before the write.
func (d *Display) Plot(x, y int, planes uint8, mode CombineMode) bool {
	i := y*d.width + x
	collided := d.pixels[i]&planes != 0
	switch mode {
	case CombineOR:
		d.pixels[i] |= planes
	case CombineSubtract:
		d.pixels[i] &^= planes
	default:
		d.pixels[i] ^= planes
	}
	return collided
}

// Lit reports whether plane 1 is set at a physical position.
func (d *Display) Lit(x, y int) bool {
	return d.pixels[y*d.width+x]&1 != 0
}

// SetLit sets or clears plane 1 at a physical position.
func (d *Display) SetLit(x, y int, on bool) {
	i := y*d.width + x
	if on {
		d.pixels[i] |= 1
	} else {
		d.pixels[i] &^= 1
	}
}

// Clear zeroes the selected planes.
func (d *Display) Clear() {
	for i := range d.pixels {
		d.pixels[i] &^= d.selected
	}
}

// Invert flips the selected planes of every pixel.
func (d *Display) Invert() {
	for i := range d.pixels {
		d.pixels[i] ^= d.selected
	}
}

// ScrollUp moves the selected planes up by n physical rows.
func (d *Display) ScrollUp(n int) {
	d.scroll(0, -n)
}

// ScrollDown moves the selected planes down by n physical rows.
func (d *Display) ScrollDown(n int) {
	d.scroll(0, n)
}

// ScrollLeft moves the selected planes left by n physical columns.
func (d *Display) ScrollLeft(n int) {
	d.scroll(-n, 0)
}

// ScrollRight moves the selected planes right by n physical columns.
func (d *Display) ScrollRight(n int) {
	d.scroll(n, 0)
}

// scroll shifts the selected planes by (dx, dy). Vacated pixels are cleared
// and unselected planes stay put.
func (d *Display) scroll(dx, dy int) {
	mask := d.selected
	if mask == 0 || (dx == 0 && dy == 0) {
		return
	}

	shifted := make([]uint8, len(d.pixels))
	for y := 0; y < d.height; y++ {
		sy := y - dy
		if sy < 0 || sy >= d.height {
			continue
		}
		for x := 0; x < d.width; x++ {
			sx := x - dx
			if sx < 0 || sx >= d.width {
				continue
			}
			shifted[y*d.width+x] = d.pixels[sy*d.width+sx] & mask
		}
	}

	for i := range d.pixels {
		d.pixels[i] = d.pixels[i]&^mask | shifted[i]
	}
}

func (d *Display) Palette() Palette {
	return d.palette
}

func (d *Display) SetPalette(p Palette) {
	d.palette = p
}

// SetPaletteEntry stores an opaque RGB color at index.
func (d *Display) SetPaletteEntry(index int, rgb uint32) {
	d.palette[index&0xF] = 0xFF000000 | rgb&0xFFFFFF
}

// Render writes the physical image into fb, which must match the physical
// size.
func (d *Display) Render(fb *FrameBuffer) {
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			fb.SetPixel(uint(x), uint(y), Color(d.palette[d.pixels[y*d.width+x]&allPlanes]))
		}
	}
}
