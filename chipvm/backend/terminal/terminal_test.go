package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chipvm/chipvm/backend"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/disasm"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/input/event"
	"github.com/valerio/go-chipvm/chipvm/video"
)

func newTestBackend(t *testing.T, width, height int) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	screen := tcell.NewSimulationScreen("")
	b := New()
	require.NoError(t, b.initScreen(screen, backend.BackendConfig{Title: "chip-8", ShowDebug: true}))
	screen.SetSize(width, height)
	t.Cleanup(func() { _ = b.Cleanup() })
	return b, screen
}

func findAction(events []backend.InputEvent, act action.Action) (event.Type, bool) {
	for _, e := range events {
		if e.Action == act {
			return e.Type, true
		}
	}
	return 0, false
}

func TestKeypadPressHoldRelease(t *testing.T) {
	b, screen := newTestBackend(t, 120, 40)
	frame := video.NewFrameBuffer(64, 32)

	screen.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	typ, ok := findAction(events, action.Key5)
	require.True(t, ok)
	assert.Equal(t, event.Press, typ)

	screen.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	events, err = b.Update(frame)
	require.NoError(t, err)
	typ, ok = findAction(events, action.Key5)
	require.True(t, ok)
	assert.Equal(t, event.Hold, typ)

	time.Sleep(keyTimeout + 20*time.Millisecond)
	events, err = b.Update(frame)
	require.NoError(t, err)
	typ, ok = findAction(events, action.Key5)
	require.True(t, ok)
	assert.Equal(t, event.Release, typ)

	events, err = b.Update(frame)
	require.NoError(t, err)
	_, ok = findAction(events, action.Key5)
	assert.False(t, ok)
}

func TestControlKeysAreQueued(t *testing.T) {
	b, screen := newTestBackend(t, 120, 40)
	frame := video.NewFrameBuffer(64, 32)

	screen.InjectKey(tcell.KeyF5, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'P', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.Contains(t, events, backend.InputEvent{Action: action.EmulatorReset, Type: event.Press})
	assert.Contains(t, events, backend.InputEvent{Action: action.EmulatorPauseToggle, Type: event.Press})

	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestQuitStopsRendering(t *testing.T) {
	b, screen := newTestBackend(t, 120, 40)

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	events, err := b.Update(video.NewFrameBuffer(64, 32))
	require.NoError(t, err)
	assert.Contains(t, events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	assert.False(t, b.running)
}

func TestLogLevelKeys(t *testing.T) {
	b, screen := newTestBackend(t, 120, 40)
	frame := video.NewFrameBuffer(64, 32)

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	_, err := b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, b.logLevel)

	for range 4 {
		screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	}
	_, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, b.logLevel)
}

func TestRendersFrame(t *testing.T) {
	b, screen := newTestBackend(t, 120, 40)
	frame := video.NewFrameBuffer(64, 32)
	frame.Fill(video.BlackColor)
	frame.SetPixel(0, 0, video.WhiteColor)

	b.UpdateDebugData(&debug.CompleteDebugData{
		Machine:     "chip-8",
		Interpreter: &debug.InterpreterState{PC: 0x200},
		Disassembly: []disasm.Line{{Address: 0x200, Opcode: 0x00E0, Instruction: "CLS", Length: 2}},
	})
	_, err := b.Update(frame)
	require.NoError(t, err)

	cells, width, _ := screen.GetContents()
	top := cells[1*width+0]
	require.NotEmpty(t, top.Runes)
	assert.Equal(t, '▀', top.Runes[0])
	fg, bg, _ := top.Style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), bg)

	divider := cells[5*width+65]
	require.NotEmpty(t, divider.Runes)
	assert.Equal(t, '│', divider.Runes[0])
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name       string
		w, h       uint
		termW      int
		termH      int
		step, cols int
	}{
		{"lores", 64, 32, 120, 40, 1, 64},
		{"hires", 128, 64, 200, 50, 1, 128},
		{"hires narrow", 128, 64, 120, 40, 2, 64},
		{"megachip", 256, 192, 120, 40, 4, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, cols, _ := layout(video.NewFrameBuffer(tt.w, tt.h), tt.termW, tt.termH)
			assert.Equal(t, tt.step, step)
			assert.Equal(t, tt.cols, cols)
		})
	}
}

func TestTerminalTooSmall(t *testing.T) {
	b, screen := newTestBackend(t, 40, 10)
	_, err := b.Update(video.NewFrameBuffer(64, 32))
	require.NoError(t, err)

	cells, width, _ := screen.GetContents()
	row := cells[5*width : 6*width]
	require.NotEmpty(t, row[0].Runes)
	assert.Equal(t, 'T', row[0].Runes[0])
}
