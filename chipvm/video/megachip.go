package video

// BlendMode selects how a MegaChip sprite pixel merges with the back buffer.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	Blend25
	Blend50
	Blend75
	BlendAdd
	BlendMultiply
)

// MegaChip geometry.
const (
	MegaBufferSize  = 256
	MegaImageWidth  = 256
	MegaImageHeight = 192
)

// MegaChipDisplay layers the 256-color MegaChip mode on top of an SCHIP
// bitplane display. With the mode off every call falls through to the
// embedded display.
//
// Sprites are drawn into a back buffer together with an index buffer used
// for collision detection. The back buffer is copied to the front buffer on
// flush, and scrolls act on the front buffer.
type MegaChipDisplay struct {
	*Display

	back    []uint32
	index   []uint8
	front   []uint32
	palette [256]uint32

	spriteWidth    int
	spriteHeight   int
	screenAlpha    uint8
	collisionIndex uint8
	blend          BlendMode

	enabled         bool
	scrollTriggered bool
}

// NewMegaChipDisplay creates a MegaChip display whose legacy mode renders
// with palette.
func NewMegaChipDisplay(palette Palette) *MegaChipDisplay {
	m := &MegaChipDisplay{
		Display: NewDisplay(128, 64, true, palette),
		back:    make([]uint32, MegaBufferSize*MegaBufferSize),
		index:   make([]uint8, MegaBufferSize*MegaBufferSize),
		front:   make([]uint32, MegaBufferSize*MegaBufferSize),
	}
	m.Reset()
	return m
}

// Reset returns to legacy mode with empty buffers.
func (m *MegaChipDisplay) Reset() {
	m.Display.Reset()
	for i := range m.back {
		m.back[i] = 0
		m.index[i] = 0
		m.front[i] = 0
	}
	for i := range m.palette {
		m.palette[i] = 0
	}
	m.palette[255] = 0xFFFFFFFF
	m.spriteWidth = 0
	m.spriteHeight = 0
	m.screenAlpha = 0xFF
	m.collisionIndex = 0
	m.blend = BlendNormal
	m.enabled = false
	m.scrollTriggered = false
}

func (m *MegaChipDisplay) Enabled() bool {
	return m.enabled
}

// SetEnabled switches MegaChip mode. Buffers are left untouched.
func (m *MegaChipDisplay) SetEnabled(enabled bool) {
	m.enabled = enabled
}

func (m *MegaChipDisplay) Width() int {
	if !m.enabled {
		return m.Display.Width()
	}
	return MegaBufferSize
}

func (m *MegaChipDisplay) Height() int {
	if !m.enabled {
		return m.Display.Height()
	}
	return MegaBufferSize
}

// SetSpriteWidth sets the sprite width. Values below 1 mean 256.
func (m *MegaChipDisplay) SetSpriteWidth(w int) {
	if w < 1 {
		w = 256
	}
	m.spriteWidth = w
}

func (m *MegaChipDisplay) SpriteWidth() int {
	return m.spriteWidth
}

// SetSpriteHeight sets the sprite height. Values below 1 mean 256.
func (m *MegaChipDisplay) SetSpriteHeight(h int) {
	if h < 1 {
		h = 256
	}
	m.spriteHeight = h
}

func (m *MegaChipDisplay) SpriteHeight() int {
	return m.spriteHeight
}

func (m *MegaChipDisplay) SetScreenAlpha(alpha uint8) {
	m.screenAlpha = alpha
}

func (m *MegaChipDisplay) SetBlendMode(mode BlendMode) {
	m.blend = mode
}

func (m *MegaChipDisplay) BlendMode() BlendMode {
	return m.blend
}

func (m *MegaChipDisplay) SetCollisionIndex(index uint8) {
	m.collisionIndex = index
}

func (m *MegaChipDisplay) CollisionIndex() uint8 {
	return m.collisionIndex
}

// LoadPaletteEntry stores an ARGB color. Index 0 is reserved as transparent.
func (m *MegaChipDisplay) LoadPaletteEntry(index int, argb uint32) {
	if index < 1 || index > 255 {
		return
	}
	m.palette[index] = argb
}

func (m *MegaChipDisplay) ColorForIndex(index uint8) uint32 {
	return m.palette[index]
}

// IndexAt returns the palette index last drawn at (x, y).
func (m *MegaChipDisplay) IndexAt(x, y int) uint8 {
	return m.index[y*MegaBufferSize+x]
}

// BackAt returns the back buffer color at (x, y).
func (m *MegaChipDisplay) BackAt(x, y int) uint32 {
	return m.back[y*MegaBufferSize+x]
}

// FrontAt returns the front buffer color at (x, y).
func (m *MegaChipDisplay) FrontAt(x, y int) uint32 {
	return m.front[y*MegaBufferSize+x]
}

// TriggerScroll marks that the next render must show the back buffer
// beneath the scrolled front buffer.
func (m *MegaChipDisplay) TriggerScroll() {
	m.scrollTriggered = true
}

func (m *MegaChipDisplay) ScrollTriggered() bool {
	return m.scrollTriggered
}

// DrawIndexed blends palette entry index into the back buffer.
func (m *MegaChipDisplay) DrawIndexed(x, y int, index uint8) {
	i := y*MegaBufferSize + x
	src := m.palette[index]
	dst := m.back[i]
	switch m.blend {
	case Blend25:
		m.back[i] = BlendAlpha(src, dst, 64)
	case Blend50:
		m.back[i] = BlendAlpha(src, dst, 128)
	case Blend75:
		m.back[i] = BlendAlpha(src, dst, 192)
	case BlendAdd:
		m.back[i] = AddColors(src, dst)
	case BlendMultiply:
		m.back[i] = MultiplyColors(src, dst)
	default:
		m.back[i] = src
	}
	m.index[i] = index
}

// DrawFontPixel paints an opaque white font pixel.
func (m *MegaChipDisplay) DrawFontPixel(x, y int) {
	i := y*MegaBufferSize + x
	m.back[i] = 0xFFFFFFFF
	m.index[i] = 255
}

// Clear resets the back and index buffers in MegaChip mode and clears the
// selected planes otherwise.
func (m *MegaChipDisplay) Clear() {
	if !m.enabled {
		m.Display.Clear()
		return
	}
	for i := range m.back {
		m.back[i] = m.palette[0]
		m.index[i] = 0
	}
}

// Flush copies the back buffer to the front buffer.
func (m *MegaChipDisplay) Flush() {
	m.scrollTriggered = false
	copy(m.front, m.back)
}

func (m *MegaChipDisplay) ScrollUp(n int) {
	if !m.enabled {
		m.Display.ScrollUp(n)
		return
	}
	m.scrollFront(0, -n)
}

func (m *MegaChipDisplay) ScrollDown(n int) {
	if !m.enabled {
		m.Display.ScrollDown(n)
		return
	}
	m.scrollFront(0, n)
}

func (m *MegaChipDisplay) ScrollLeft(n int) {
	if !m.enabled {
		m.Display.ScrollLeft(n)
		return
	}
	m.scrollFront(-n, 0)
}

func (m *MegaChipDisplay) ScrollRight(n int) {
	if !m.enabled {
		m.Display.ScrollRight(n)
		return
	}
	m.scrollFront(n, 0)
}

// scrollFront shifts the visible 256x192 area of the front buffer.
func (m *MegaChipDisplay) scrollFront(dx, dy int) {
	shifted := make([]uint32, MegaImageWidth*MegaImageHeight)
	for y := 0; y < MegaImageHeight; y++ {
		sy := y - dy
		if sy < 0 || sy >= MegaImageHeight {
			continue
		}
		for x := 0; x < MegaImageWidth; x++ {
			sx := x - dx
			if sx < 0 || sx >= MegaImageWidth {
				continue
			}
			shifted[y*MegaImageWidth+x] = m.front[sy*MegaBufferSize+sx]
		}
	}
	for y := 0; y < MegaImageHeight; y++ {
		copy(m.front[y*MegaBufferSize:y*MegaBufferSize+MegaImageWidth], shifted[y*MegaImageWidth:(y+1)*MegaImageWidth])
	}
}

// Render writes the 256x192 image into fb. In legacy mode the SCHIP screen
// is doubled and centered vertically.
func (m *MegaChipDisplay) Render(fb *FrameBuffer) {
	if m.enabled {
		for y := 0; y < MegaImageHeight; y++ {
			for x := 0; x < MegaImageWidth; x++ {
				i := y*MegaBufferSize + x
				pixel := uint32(BlackColor)
				if m.scrollTriggered && m.back[i]&0xFF000000 != 0 {
					pixel = m.back[i]
				}
				if m.front[i]&0xFF000000 != 0 {
					pixel = m.front[i]
				}
				fb.SetPixel(uint(x), uint(y), Color(BlendAlpha(pixel, uint32(BlackColor), uint32(m.screenAlpha))))
			}
		}
		return
	}

	fb.Fill(BlackColor)
	w, h := m.Display.PhysicalWidth(), m.Display.PhysicalHeight()
	offset := (MegaImageHeight - h*2) / 2
	colors := m.Display.Palette()
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			c := Color(colors[m.Display.Pixel(sx, sy)])
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					fb.SetPixel(uint(sx*2+dx), uint(offset+sy*2+dy), c)
				}
			}
		}
	}
}

// BlendAlpha mixes src over dst with alpha in 0-255. The result is opaque.
func BlendAlpha(src, dst, alpha uint32) uint32 {
	inv := 255 - alpha
	mix := func(shift uint) uint32 {
		return (((src>>shift)&0xFF)*alpha + ((dst>>shift)&0xFF)*inv) / 255 << shift
	}
	return 0xFF000000 | mix(16) | mix(8) | mix(0)
}

// AddColors adds the channels of src and dst with saturation.
func AddColors(src, dst uint32) uint32 {
	add := func(shift uint) uint32 {
		return min(((src>>shift)&0xFF)+((dst>>shift)&0xFF), 255) << shift
	}
	return 0xFF000000 | add(16) | add(8) | add(0)
}

// MultiplyColors multiplies the channels of src and dst.
func MultiplyColors(src, dst uint32) uint32 {
	mul := func(shift uint) uint32 {
		return ((src>>shift)&0xFF)*((dst>>shift)&0xFF)/255<<shift
	}
	return 0xFF000000 | mul(16) | mul(8) | mul(0)
}
