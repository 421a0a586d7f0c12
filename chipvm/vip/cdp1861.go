package vip

import (
	"github.com/valerio/go-chipvm/chipvm/cdp1802"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// CDP1861 raster timing, in CPU machine cycles and scanlines.
const (
	FrameCycles   = LinesPerFrame * CyclesPerLine
	LinesPerFrame = 262
	CyclesPerLine = 14

	ScreenWidth  = 64
	ScreenHeight = 128

	interruptBegin = 78
	interruptEnd   = 80
	firstEFBegin   = 76
	firstEFEnd     = 80
	displayBegin   = 80
	displayEnd     = displayBegin + ScreenHeight
	secondEFBegin  = 204
	secondEFEnd    = 208

	// DMA-OUT is requested one cycle ahead of the slot it is served in.
	dmaBegin     = 3
	dmaEnd       = dmaBegin + bytesPerLine
	bytesPerLine = ScreenWidth / 8
)

// CDP1861 is the VIP video chip. It steals eight DMA-OUT cycles per
// display line to fetch one row of 64 pixels, interrupts the CPU two lines
// before the display area, and drives EF1 around its start and end.
//
// INP 1 enables the display and OUT 1 disables it; the change takes effect
// at the next frame.
type CDP1861 struct {
	baseDevice

	display *video.Display
	line    int
	column  int

	enableLatch  bool
	enabled      bool
	dma          cdp1802.DMAStatus
	interrupting bool
	ef1          bool
}

func NewCDP1861(palette video.Palette) *CDP1861 {
	return &CDP1861{display: video.NewDisplay(ScreenWidth, ScreenHeight, false, palette)}
}

func (v *CDP1861) Reset() {
	v.display.Reset()
	v.line, v.column = 0, 0
	v.enableLatch, v.enabled = false, false
	v.dma = cdp1802.DMANone
	v.interrupting, v.ef1 = false, false
}

func (v *CDP1861) Display() *video.Display { return v.display }
func (v *CDP1861) Line() int               { return v.line }
func (v *CDP1861) Enabled() bool           { return v.enabled }
func (v *CDP1861) EF1() bool               { return v.ef1 }

// Tick updates the request lines after the CPU has completed machine cycle
// number cycles.
func (v *CDP1861) Tick(cycles uint64) {
	if cycles%FrameCycles == 0 {
		v.enabled = v.enableLatch
	}

	if v.enabled {
		v.ef1 = within(v.line, firstEFBegin, firstEFEnd) || within(v.line, secondEFBegin, secondEFEnd)
		v.interrupting = within(v.line, interruptBegin, interruptEnd)
		v.dma = cdp1802.DMANone
		if within(v.line, displayBegin, displayEnd) && within(int(cycles%CyclesPerLine), dmaBegin, dmaEnd) {
			v.dma = cdp1802.DMAOut
		}
	} else {
		v.ef1, v.interrupting = false, false
		v.dma = cdp1802.DMANone
	}

	if cycles%CyclesPerLine == 0 {
		v.line = (v.line + 1) % LinesPerFrame
		v.column = 0
	}
}

func (v *CDP1861) DMAStatus() cdp1802.DMAStatus { return v.dma }
func (v *CDP1861) Interrupting() bool           { return v.interrupting }

// DMAOut shifts one byte of the current line onto the screen.
func (v *CDP1861) DMAOut(_ uint16, value uint8) {
	row := v.line - displayBegin
	if row < 0 || row >= ScreenHeight || v.column >= bytesPerLine {
		return
	}
	x0 := v.column * 8
	for i := 0; i < 8; i++ {
		v.display.SetLit(x0+i, row, value&(0x80>>i) != 0)
	}
	v.column++
}

func (v *CDP1861) InputPort(port uint8) bool  { return port == 1 }
func (v *CDP1861) OutputPort(port uint8) bool { return port == 1 }

func (v *CDP1861) Input(uint8) uint8 {
	v.enableLatch = true
	return 0
}

func (v *CDP1861) Output(uint8, uint8) {
	v.enableLatch = false
}

func within(value, begin, end int) bool {
	return value >= begin && value < end
}
