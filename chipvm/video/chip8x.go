package video

var chip8XBackground = [4]uint32{0xFF000080, 0xFF000000, 0xFF008000, 0xFF800000}

var chip8XForeground = [8]uint32{
	0xFF181818, 0xFFFF0000, 0xFF0000FF, 0xFFFF00FF,
	0xFF00FF00, 0xFFFFFF00, 0xFF00FFFF, 0xFFFFFFFF,
}

// Chip8XDisplay adds the VP-590 color board to a 64x32 screen. Foreground
// colors are stored per pixel and sampled per 8x4 zone unless extended color
// drawing is enabled.
type Chip8XDisplay struct {
	*Display

	foreground    [64 * 32]uint8
	background    int
	extendedColor bool
}

func NewChip8XDisplay(palette Palette) *Chip8XDisplay {
	d := &Chip8XDisplay{Display: NewDisplay(64, 32, false, palette)}
	d.Reset()
	return d
}

// Reset clears the screen and restores the blue power-on zone.
func (d *Chip8XDisplay) Reset() {
	d.Display.Reset()
	d.background = 0
	for i := range d.foreground {
		d.foreground[i] = 0
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			d.foreground[y*64+x] = 2
		}
	}
}

// CycleBackground steps through blue, black, green and red.
func (d *Chip8XDisplay) CycleBackground() {
	d.background = (d.background + 1) % len(chip8XBackground)
}

func (d *Chip8XDisplay) Background() uint32 {
	return chip8XBackground[d.background]
}

// SetForegroundColor stores a color index for (x, y). Positions off screen
// are ignored.
func (d *Chip8XDisplay) SetForegroundColor(x, y int, color uint8) {
	if x < 0 || x >= 64 || y < 0 || y >= 32 {
		return
	}
	d.foreground[y*64+x] = color & 0x7
}

func (d *Chip8XDisplay) ForegroundColor(x, y int) uint8 {
	return d.foreground[y*64+x]
}

func (d *Chip8XDisplay) SetExtendedColorDraw(enabled bool) {
	d.extendedColor = enabled
}

func (d *Chip8XDisplay) Render(fb *FrameBuffer) {
	bg := Color(chip8XBackground[d.background])
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			zone := d.foreground[y*64+x]
			if !d.extendedColor {
				zone = d.foreground[(y&^3)*64+(x&^7)]
			}
			if d.Lit(x, y) {
				fb.SetPixel(uint(x), uint(y), Color(chip8XForeground[zone]))
			} else {
				fb.SetPixel(uint(x), uint(y), bg)
			}
		}
	}
}
