package video

// Color is a packed 0xAARRGGBB value.
type Color uint32

const (
	BlackColor Color = 0xFF000000
	WhiteColor Color = 0xFFFFFFFF
)

type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the specified size.
func NewFrameBuffer(width, height uint) *FrameBuffer {
	colorSlice := make([]uint32, width*height)

	return &FrameBuffer{
		width:  width,
		height: height,
		buffer: colorSlice,
	}
}

func (fb FrameBuffer) Width() uint {
	return fb.width
}

func (fb FrameBuffer) Height() uint {
	return fb.height
}

func (fb FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color Color) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Fill paints every pixel with color.
func (fb *FrameBuffer) Fill(color Color) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// RGBA splits a packed ARGB color into its components.
func RGBA(color uint32) (r, g, b, a uint8) {
	return uint8(color >> 16), uint8(color >> 8), uint8(color), uint8(color >> 24)
}
