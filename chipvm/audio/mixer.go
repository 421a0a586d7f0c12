package audio

import (
	"log/slog"
	"sync"
)

// Mixer collects frames rendered by the active voice and hands them to the
// backend. The emulator goroutine pushes and the audio callback pulls.
type Mixer struct {
	mu       sync.Mutex
	buffer   []int16
	frame    []int16
	muted    bool
	recorder *Recorder
}

func NewMixer() *Mixer {
	return &Mixer{
		buffer: make([]int16, 0, SamplesPerFrame*maxBufferedFrames),
		frame:  make([]int16, SamplesPerFrame),
	}
}

// SetRecorder tees every frame into r. Pass nil to stop recording.
func (m *Mixer) SetRecorder(r *Recorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorder = r
}

// PushFrame renders one frame from v. A nil voice produces silence.
func (m *Mixer) PushFrame(v Voice, soundTimer int) {
	for i := range m.frame {
		m.frame[i] = 0
	}
	if v != nil {
		v.Render(m.frame, soundTimer)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recorder != nil {
		if err := m.recorder.Write(m.frame); err != nil {
			slog.Warn("Stopping audio recording", "error", err)
			m.recorder = nil
		}
	}

	if m.muted {
		return
	}
	if len(m.buffer)+len(m.frame) > cap(m.buffer) {
		// drop the oldest frame
		m.buffer = append(m.buffer[:0], m.buffer[SamplesPerFrame:]...)
	}
	m.buffer = append(m.buffer, m.frame...)
}

func (m *Mixer) GetSamples(count int) []int16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	samples := make([]int16, count)
	n := copy(samples, m.buffer)
	m.buffer = append(m.buffer[:0], m.buffer[n:]...)
	return samples
}

// Buffered returns the number of samples waiting to be played.
func (m *Mixer) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}

func (m *Mixer) ToggleMute() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = !m.muted
	if m.muted {
		m.buffer = m.buffer[:0]
	}
}

func (m *Mixer) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}
