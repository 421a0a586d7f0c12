package cpu

import "github.com/valerio/go-chipvm/chipvm/video"

// plotRow walks the set bits of one sprite row, most significant first, and
// calls plot with the destination column. Columns past the right edge are
// dropped when clipping and wrapped otherwise. It reports whether any plot
// collided.
func plotRow(row uint16, length, x0, width int, clip bool, plot func(x int) bool) bool {
	collided := false
	for j := 0; j < length; j++ {
		x := x0 + j
		if x >= width {
			if clip {
				break
			}
			x %= width
		}
		if row&(1<<(length-1-j)) == 0 {
			continue
		}
		if plot(x) {
			collided = true
		}
	}
	return collided
}

// plotBlock draws one lores pixel as a 2x2 block of physical pixels.
// Collision is taken from the top half only.
func plotBlock(d *video.Display, x, y int, planes uint8, mode video.CombineMode) bool {
	px, py := x*2, y*2
	collided := d.Plot(px, py, planes, mode)
	if d.Plot(px+1, py, planes, mode) {
		collided = true
	}
	d.Plot(px, py+1, planes, mode)
	d.Plot(px+1, py+1, planes, mode)
	return collided
}

// spriteRow reads row i of a sprite at base, two bytes per row when wide.
func (m *Machine) spriteRow(base uint32, i int, wide bool) uint16 {
	if wide {
		return m.word(base + uint32(i)*2)
	}
	return uint16(m.read(base + uint32(i)))
}

// spriteShape returns the row count and row width of DXYN, where N=0 is a
// 16 row sprite.
func spriteShape(n uint8, wideAllowed bool) (height int, wide bool, length int) {
	height = int(n)
	if height == 0 {
		height = 16
	}
	wide = wideAllowed && height >= 16
	length = 8
	if wide {
		length = 16
	}
	return height, wide, length
}

// chip8Draw is the classic 8xN DXYN on a single-resolution screen.
func chip8Draw(m *Machine, op Opcode) (Result, error) {
	d := m.Display
	width, height := d.Width(), d.Height()
	clip := m.settings.Quirks.Clipping
	x0 := int(m.V[op.X()]) % width
	y0 := int(m.V[op.Y()]) % height
	n := int(op.N())

	result := Handled | DrawExecuted
	if n > 4 && n+(x0&7) > 9 {
		result = Handled | LongDrawExecuted
	}

	m.V[0xF] = 0
	collided := false
	for i := 0; i < n; i++ {
		y := y0 + i
		if y >= height {
			if clip {
				break
			}
			y %= height
		}
		row := m.spriteRow(m.I, i, false)
		if plotRow(row, 8, x0, width, clip, func(x int) bool {
			return d.Flip(x, y, 1)
		}) {
			collided = true
		}
	}
	m.setVF(collided)
	return result, nil
}

// copyLoresRow duplicates the top half of a lores row into its bottom half
// across the 32 pixel window SCHIP 1.x redraws after each row.
func copyLoresRow(d *video.Display, x0, y int) {
	x1 := (x0 * 2) & 0x70
	x2 := min(x1+32, d.PhysicalWidth())
	py := y * 2
	for j := x1; j < x2; j++ {
		d.SetPixel(j, py+1, d.Pixel(j, py))
	}
}

// schip10Draw: 16x16 sprites only in hires, lores draws 2x2 blocks and
// copies rows, collision is a boolean.
func schip10Draw(m *Machine, op Opcode) (Result, error) {
	d := m.Display
	hires := d.Hires()
	width, height := d.Width(), d.Height()
	clip := m.settings.Quirks.Clipping
	x0 := int(m.V[op.X()]) % width
	y0 := int(m.V[op.Y()]) % height
	rows, wide, length := spriteShape(op.N(), hires)

	m.V[0xF] = 0
	collided := false
	for i := 0; i < rows; i++ {
		y := y0 + i
		if y >= height {
			if clip {
				break
			}
			y %= height
		}
		row := m.spriteRow(m.I, i, wide)
		if plotRow(row, length, x0, width, clip, func(x int) bool {
			if hires {
				return d.Flip(x, y, 1)
			}
			return plotBlock(d, x, y, 1, video.CombineXOR)
		}) {
			collided = true
		}
		if !hires {
			copyLoresRow(d, x0, y)
		}
	}
	m.setVF(collided)
	return Handled | DrawExecuted, nil
}

// schip11Draw counts collided rows in hires, including rows clipped off the
// bottom. Lores collision saturates at one.
func schip11Draw(m *Machine, op Opcode) (Result, error) {
	d := m.Display
	hires := d.Hires()
	width, height := d.Width(), d.Height()
	clip := m.settings.Quirks.Clipping
	x0 := int(m.V[op.X()]) % width
	y0 := int(m.V[op.Y()]) % height
	rows, wide, length := spriteShape(op.N(), hires)

	m.V[0xF] = 0
	counter := uint8(0)
	for i := 0; i < rows; i++ {
		y := y0 + i
		if y >= height {
			if clip {
				if hires {
					counter++
				}
				continue
			}
			y %= height
		}
		row := m.spriteRow(m.I, i, wide)
		rowCollided := plotRow(row, length, x0, width, clip, func(x int) bool {
			if hires {
				return d.Flip(x, y, 1)
			}
			return plotBlock(d, x, y, 1, video.CombineXOR)
		})
		if !hires {
			copyLoresRow(d, x0, y)
			if rowCollided {
				counter = 1
			}
		} else if rowCollided {
			counter++
		}
	}
	m.V[0xF] = counter
	return Handled | DrawExecuted, nil
}

// schipModernDraw draws 16x16 sprites in both resolutions with a boolean
// collision.
func schipModernDraw(m *Machine, op Opcode) (Result, error) {
	d := m.Display
	hires := d.Hires()
	width, height := d.Width(), d.Height()
	clip := m.settings.Quirks.Clipping
	x0 := int(m.V[op.X()]) % width
	y0 := int(m.V[op.Y()]) % height
	rows, wide, length := spriteShape(op.N(), true)

	m.V[0xF] = 0
	collided := false
	for i := 0; i < rows; i++ {
		y := y0 + i
		if y >= height {
			if clip {
				break
			}
			y %= height
		}
		row := m.spriteRow(m.I, i, wide)
		if plotRow(row, length, x0, width, clip, func(x int) bool {
			if hires {
				return d.Flip(x, y, 1)
			}
			return plotBlock(d, x, y, 1, video.CombineXOR)
		}) {
			collided = true
		}
	}
	m.setVF(collided)
	return Handled | DrawExecuted, nil
}

// xochipDraw repeats the sprite once per selected plane. Sprite data for
// successive planes follows on in memory, and rows clipped off the bottom
// still consume their bytes.
func xochipDraw(m *Machine, op Opcode) (Result, error) {
	d := m.Display
	hires := d.Hires()
	width, height := d.Width(), d.Height()
	clip := m.settings.Quirks.Clipping
	x0 := int(m.V[op.X()]) % width
	y0 := int(m.V[op.Y()]) % height
	rows, wide, length := spriteShape(op.N(), true)
	selected := d.SelectedPlanes()
	mode := m.combine

	m.V[0xF] = 0
	collided := false
	cursor := 0
	for plane := uint8(1); plane < 1<<video.PlaneCount; plane <<= 1 {
		if selected&plane == 0 {
			continue
		}
		for i := 0; i < rows; i++ {
			y := y0 + i
			if y >= height {
				if clip {
					cursor++
					continue
				}
				y %= height
			}
			row := m.spriteRow(m.I, cursor, wide)
			if plotRow(row, length, x0, width, clip, func(x int) bool {
				if hires {
					return d.Plot(x, y, plane, mode)
				}
				return plotBlock(d, x, y, plane, mode)
			}) {
				collided = true
			}
			cursor++
		}
	}
	m.setVF(collided)
	return Handled | DrawExecuted, nil
}
