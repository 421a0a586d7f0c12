package audio

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chipvm/chipvm/memory"
)

func TestPatternVoiceSilentWithoutTimer(t *testing.T) {
	v := NewBuzzer()
	buf := make([]int16, SamplesPerFrame)
	assert.False(t, v.Render(buf, 0))
	for _, s := range buf {
		assert.Equal(t, int16(0), s)
	}
}

func TestPatternVoicePlaysPattern(t *testing.T) {
	v := NewPatternVoice()
	var pattern [16]uint8
	pattern[0] = 0x80
	v.LoadPattern(pattern)

	buf := make([]int16, 4)
	require.True(t, v.Render(buf, 1))
	assert.Equal(t, int16(squareAmplitude), buf[0], "first bit of the pattern is set")

	v.LoadPattern([16]uint8{})
	require.True(t, v.Render(buf, 1))
	for _, s := range buf {
		assert.Equal(t, int16(-squareAmplitude), s)
	}
}

func TestPitchFrequency(t *testing.T) {
	tests := []struct {
		pitch    uint8
		expected float64
	}{
		{64, 4000},
		{112, 8000},
		{16, 2000},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, PitchFrequency(tt.pitch), 0.001)
	}
}

func TestVP595Latch(t *testing.T) {
	v := NewVP595()
	assert.InDelta(t, 27535.0/129, v.Frequency(), 1e-9)

	v.LatchFrequency(0x10)
	assert.InDelta(t, 27535.0/17, v.Frequency(), 1e-9)

	buf := make([]int16, 8)
	require.True(t, v.Render(buf, 3))
	assert.Equal(t, int16(squareAmplitude), buf[0])
}

func TestTrackVoice(t *testing.T) {
	mem := memory.New(0x1000)
	require.NoError(t, mem.Load(0x100, []uint8{0x80, 0xFF, 0x00}))

	v := NewTrackVoice(mem)
	buf := make([]int16, 5)
	assert.False(t, v.Render(buf, 0))

	v.Play(SampleRate, 3, false, 0x100)
	require.True(t, v.Render(buf, 0))
	assert.Equal(t, []int16{0, 127 << 8, -128 << 8, 0, 0}, buf)
	assert.False(t, v.Playing())

	v.Play(SampleRate, 3, true, 0x100)
	v.Render(buf, 0)
	assert.Equal(t, int16(127<<8), buf[4], "looping wraps to the start")
	assert.True(t, v.Playing())

	v.Stop()
	assert.False(t, v.Playing())
}

func TestMixer(t *testing.T) {
	m := NewMixer()
	m.PushFrame(NewBuzzer(), 1)
	assert.Equal(t, SamplesPerFrame, m.Buffered())

	samples := m.GetSamples(10)
	assert.Len(t, samples, 10)
	assert.Equal(t, SamplesPerFrame-10, m.Buffered())

	m.ToggleMute()
	assert.True(t, m.Muted())
	assert.Equal(t, 0, m.Buffered())
	m.PushFrame(NewBuzzer(), 1)
	assert.Equal(t, 0, m.Buffered())

	for _, s := range m.GetSamples(4) {
		assert.Equal(t, int16(0), s, "underrun pads with silence")
	}
}

func TestMixerDropsOldestFrames(t *testing.T) {
	m := NewMixer()
	for i := 0; i < maxBufferedFrames+3; i++ {
		m.PushFrame(nil, 0)
	}
	assert.Equal(t, SamplesPerFrame*maxBufferedFrames, m.Buffered())
}

type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	copy(s.buf[s.pos:], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = int(offset)
	case io.SeekCurrent:
		s.pos += int(offset)
	case io.SeekEnd:
		s.pos = len(s.buf) + int(offset)
	}
	return int64(s.pos), nil
}

func TestRecorderRoundTripsThroughSampleVoice(t *testing.T) {
	out := &seekBuffer{}
	rec := NewRecorder(out)

	frame := make([]int16, SamplesPerFrame)
	for i := range frame {
		frame[i] = int16(1000 * math.Sin(float64(i)/10))
	}
	require.NoError(t, rec.Write(frame))
	require.NoError(t, rec.Close())

	data, rate, err := decodeWAV(bytes.NewReader(out.buf))
	require.NoError(t, err)
	assert.Equal(t, SampleRate, rate)
	assert.Equal(t, frame, data)

	path := filepath.Join(t.TempDir(), "buzz.wav")
	require.NoError(t, os.WriteFile(path, out.buf, 0o644))
	v, err := LoadSampleFile(path)
	require.NoError(t, err)
	assert.Equal(t, SamplesPerFrame, v.Len())

	buf := make([]int16, 3)
	require.True(t, v.Render(buf, 1))
	assert.Equal(t, frame[:3], buf)
}

func TestLoadSampleFileRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buzz.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS"), 0o644))
	_, err := LoadSampleFile(path)
	assert.Error(t, err)
}

func TestMixerRecordsFrames(t *testing.T) {
	out := &seekBuffer{}
	rec := NewRecorder(out)
	m := NewMixer()
	m.SetRecorder(rec)
	m.PushFrame(NewBuzzer(), 1)
	m.PushFrame(NewBuzzer(), 0)
	m.SetRecorder(nil)
	require.NoError(t, rec.Close())

	data, _, err := decodeWAV(bytes.NewReader(out.buf))
	require.NoError(t, err)
	assert.Len(t, data, 2*SamplesPerFrame)
}
