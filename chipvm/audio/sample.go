package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// SampleVoice loops a recorded clip while the sound timer runs, replacing the
// synthesized buzzer. The clip is mono and resampled on the fly.
type SampleVoice struct {
	data  []int16
	step  float64
	pos   float64
	level float64
}

// NewSampleVoice wraps mono 16-bit PCM recorded at rate Hz.
func NewSampleVoice(data []int16, rate int) (*SampleVoice, error) {
	if len(data) == 0 {
		return nil, errors.New("sample has no audio data")
	}
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	return &SampleVoice{
		data:  data,
		step:  float64(rate) / SampleRate,
		level: 1,
	}, nil
}

// Len returns the clip length in source samples.
func (v *SampleVoice) Len() int {
	return len(v.data)
}

func (v *SampleVoice) Render(buf []int16, soundTimer int) bool {
	if soundTimer <= 0 {
		v.pos = 0
		return false
	}
	n := float64(len(v.data))
	for i := range buf {
		if v.pos >= n {
			v.pos -= n * float64(int(v.pos/n))
		}
		buf[i] = int16(float64(v.data[int(v.pos)]) * v.level)
		v.pos += v.step
	}
	return true
}

// LoadSampleFile reads a WAV or MP3 clip. Only the first channel is kept.
func LoadSampleFile(path string) (*SampleVoice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample: %w", err)
	}
	defer f.Close()

	var (
		data []int16
		rate int
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		data, rate, err = decodeWAV(f)
	case ".mp3":
		data, rate, err = decodeMP3(f)
	default:
		return nil, fmt.Errorf("unsupported sample format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded buzzer sample", "path", path, "samples", len(data), "rate", rate)
	return NewSampleVoice(data, rate)
}

func decodeWAV(r io.ReadSeeker) ([]int16, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		channels = 1
	}
	shift := int(dec.BitDepth) - 16

	data := make([]int16, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		s := buf.Data[i]
		switch {
		case dec.BitDepth == 8:
			s = (s - 128) << 8
		case shift > 0:
			s >>= shift
		}
		data = append(data, int16(s))
	}
	return data, int(dec.SampleRate), nil
}

// decodeMP3 keeps the left channel of go-mp3's 16-bit little endian stereo
// stream.
func decodeMP3(r io.Reader) ([]int16, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: %w", err)
	}
	data := make([]int16, 0, len(pcm)/4)
	for i := 0; i+1 < len(pcm); i += 4 {
		data = append(data, int16(uint16(pcm[i])|uint16(pcm[i+1])<<8))
	}
	return data, dec.SampleRate(), nil
}
