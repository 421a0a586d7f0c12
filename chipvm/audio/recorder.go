package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes the mixed output to a 16-bit mono WAV stream.
type Recorder struct {
	enc    *wav.Encoder
	closer io.Closer
	buf    *goaudio.IntBuffer
}

// NewRecorder encodes to w. The stream is finalized by Close.
func NewRecorder(w io.WriteSeeker) *Recorder {
	return &Recorder{
		enc: wav.NewEncoder(w, SampleRate, 16, 1, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: SampleRate},
			Data:           make([]int, SamplesPerFrame),
			SourceBitDepth: 16,
		},
	}
}

// CreateRecorder creates path and records into it.
func CreateRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	r := NewRecorder(f)
	r.closer = f
	return r, nil
}

// Write appends samples to the recording.
func (r *Recorder) Write(samples []int16) error {
	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("writing recording: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file it was created with.
func (r *Recorder) Close() error {
	err := r.enc.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("closing recording: %w", err)
	}
	return nil
}
