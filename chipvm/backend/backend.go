package backend

import (
	"github.com/valerio/go-chipvm/chipvm/audio"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/input/event"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// Backend represents a complete emulator platform (rendering + input + audio)
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (snapshots, log panels, debug views)
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config BackendConfig) error

	// Update renders frame, polls platform events and returns them as
	// actions for the emulator loop to dispatch.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// DebugViewer is implemented by backends that can show interpreter state.
type DebugViewer interface {
	UpdateDebugData(data *debug.CompleteDebugData)
}

// InputEvent is one action raised by the platform.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title     string
	Scale     int
	ShowDebug bool // Backends may ignore unsupported features
	// Audio is drained by backends that can play sound. May be nil.
	Audio audio.Provider
}
