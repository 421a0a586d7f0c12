//go:build sdl2

package sdl2

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/valerio/go-chipvm/chipvm/audio"
	"github.com/valerio/go-chipvm/chipvm/backend"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/input/event"
	"github.com/valerio/go-chipvm/chipvm/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	// windowWidth is the window width at scale 1, whatever the frame size.
	windowWidth = 640

	bytesPerPixel = 4

	// maxQueuedAudio caps the device queue so latency cannot build up
	// while the emulator runs ahead of real time.
	maxQueuedAudio = audio.SamplesPerFrame * 2 * 6
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig

	texWidth, texHeight int
	pixels              []byte

	audioID  sdl.AudioDeviceID
	audioBuf []byte
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	scale := int32(max(config.Scale, 1))
	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		windowWidth*scale,
		windowWidth/2*scale,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	if config.Audio != nil {
		if err := s.openAudio(); err != nil {
			slog.Warn("Audio disabled", "error", err)
		}
	}

	s.running = true
	slog.Info("SDL2 backend initialized", "title", config.Title)
	return nil
}

func (s *Backend) openAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     audio.SampleRate,
		Format:   sdl.AUDIO_S16SYS,
		Channels: 1,
		Samples:  1024,
	}
	var actual sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &actual, 0)
	if err != nil {
		return err
	}
	s.audioID = id
	sdl.PauseAudioDevice(id, false)
	return nil
}

// resizeTexture recreates the streaming texture when the frame size
// changes, as it does on a hires switch.
func (s *Backend) resizeTexture(width, height int) error {
	if s.texture != nil && width == s.texWidth && height == s.texHeight {
		return nil
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	texture, err := s.renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(width),
		int32(height),
	)
	if err != nil {
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture
	s.texWidth, s.texHeight = width, height
	s.pixels = make([]byte, width*height*bytesPerPixel)
	s.renderer.SetLogicalSize(int32(width), int32(height))
	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		events = append(events, s.handleEvent(e)...)
	}
	if !s.running {
		return events, nil
	}

	if err := s.renderFrame(frame); err != nil {
		return events, err
	}
	s.queueAudio()
	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.audioID != 0 {
		sdl.CloseAudioDevice(s.audioID)
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

func (s *Backend) handleEvent(e sdl.Event) []backend.InputEvent {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		s.running = false
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}

	case *sdl.KeyboardEvent:
		act, ok := mapKey(e.Keysym.Sym)
		if !ok {
			return nil
		}
		_, keypad := act.Keypad()
		switch {
		case e.Type == sdl.KEYUP && keypad:
			return []backend.InputEvent{{Action: act, Type: event.Release}}
		case e.Type != sdl.KEYDOWN:
			return nil
		case e.Repeat != 0 && keypad:
			return []backend.InputEvent{{Action: act, Type: event.Hold}}
		case e.Repeat != 0:
			return nil
		}
		if act == action.EmulatorQuit {
			s.running = false
		}
		return []backend.InputEvent{{Action: act, Type: event.Press}}
	}
	return nil
}

// mapKey resolves a key through the shared default mapping, which names
// letters in lower case.
func mapKey(key sdl.Keycode) (action.Action, bool) {
	name := sdl.GetKeyName(key)
	if len(name) == 1 {
		name = strings.ToLower(name)
	}
	return input.GetDefaultMapping(name)
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	width, height := int(frame.Width()), int(frame.Height())
	if err := s.resizeTexture(width, height); err != nil {
		return err
	}

	// RGBA8888 is stored as ABGR bytes on little-endian hosts.
	for i, pixel := range frame.ToSlice() {
		r, g, b, a := video.RGBA(pixel)
		dst := s.pixels[i*bytesPerPixel:]
		dst[0] = a
		dst[1] = b
		dst[2] = g
		dst[3] = r
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), width*bytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}
	s.renderer.SetDrawColor(0, 0, 0, 255)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}

func (s *Backend) queueAudio() {
	provider := s.config.Audio
	if provider == nil {
		return
	}
	samples := provider.GetSamples(provider.Buffered())
	if s.audioID == 0 || len(samples) == 0 {
		return
	}
	if sdl.GetQueuedAudioSize(s.audioID) > maxQueuedAudio {
		return
	}

	s.audioBuf = s.audioBuf[:0]
	for _, sample := range samples {
		s.audioBuf = binary.NativeEndian.AppendUint16(s.audioBuf, uint16(sample))
	}
	if err := sdl.QueueAudio(s.audioID, s.audioBuf); err != nil {
		slog.Warn("Failed to queue audio", "error", err)
	}
}
