package emulator

import (
	"context"
	"fmt"

	"github.com/valerio/go-chipvm/chipvm/audio"
	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// Emulator is the interface for all emulator implementations
type Emulator interface {
	// RunUntilFrame emulates one 60 Hz frame.
	RunUntilFrame(ctx context.Context) error
	GetCurrentFrame() *video.FrameBuffer
	HandleAction(act action.Action, pressed bool)
	ExtractDebugData() *debug.CompleteDebugData
	GetAudioProvider() audio.Provider
	// Terminated reports that the program exited on its own.
	Terminated() bool
}

var (
	_ Emulator = (*Chip8)(nil)
	_ Emulator = (*VIP)(nil)
)

// Options are the parts of a session that do not come from the quirk
// resolution.
type Options struct {
	Palette video.Palette
	Keypad  *input.Keypad
	// Mixer receives one frame of audio per emulated frame. A nil mixer
	// gets a fresh one.
	Mixer *audio.Mixer
	// Beep replaces the synthesized buzzer of variants that only have one.
	Beep audio.Voice
	// MonitorROM is mapped at 0x8000 on the COSMAC VIP.
	MonitorROM []uint8
	// Seed makes the random number generator deterministic when non-zero.
	Seed uint64
}

func (o *Options) defaults() {
	if o.Keypad == nil {
		o.Keypad = input.NewKeypad()
	}
	if o.Mixer == nil {
		o.Mixer = audio.NewMixer()
	}
	if o.Palette == (video.Palette{}) {
		o.Palette = video.DefaultPalette()
	}
}

// New creates the emulator for settings.Variant with program loaded.
func New(settings config.Settings, program []uint8, opts Options) (Emulator, error) {
	opts.defaults()
	if settings.Variant == config.CosmacVIP {
		return NewVIP(program, opts)
	}
	e, err := NewChip8(settings, program, opts)
	if err != nil {
		return nil, fmt.Errorf("creating %s emulator: %w", settings.Variant, err)
	}
	return e, nil
}
