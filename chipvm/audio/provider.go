package audio

// Provider is consumed by backends that play audio.
type Provider interface {
	// GetSamples retrieves audio samples for playback
	GetSamples(count int) []int16

	// Buffered is the number of samples waiting to be played
	Buffered() int

	// ToggleMute flips the output between silent and audible
	ToggleMute()
	Muted() bool
}

// Voice renders one frame of sound. soundTimer is the sound timer (or the
// tone line state) sampled at the end of the frame; a voice returns false
// when it produced silence.
type Voice interface {
	Render(buf []int16, soundTimer int) bool
}

var _ Provider = (*Mixer)(nil)
