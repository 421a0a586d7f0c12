package audio

import (
	"math"

	"github.com/valerio/go-chipvm/chipvm/memory"
)

// TrackVoice streams unsigned 8-bit PCM straight out of interpreter memory,
// as used by MegaChip's digitized sound opcodes.
type TrackVoice struct {
	bus memory.Bus

	start   uint32
	size    int
	loop    bool
	step    float64
	pos     float64
	playing bool
}

func NewTrackVoice(bus memory.Bus) *TrackVoice {
	return &TrackVoice{bus: bus}
}

// Play starts a track of size bytes at start, sampled at rate Hz.
func (v *TrackVoice) Play(rate int, size int, loop bool, start uint32) {
	v.step = float64(rate) / SampleRate
	v.size = size
	v.start = start
	v.loop = loop
	v.pos = 0
	v.playing = size > 0
}

// Stop silences the track.
func (v *TrackVoice) Stop() {
	*v = TrackVoice{bus: v.bus}
}

func (v *TrackVoice) Playing() bool {
	return v.playing
}

// Render ignores soundTimer: a track plays until it ends or is stopped.
func (v *TrackVoice) Render(buf []int16, _ int) bool {
	if !v.playing {
		return false
	}
	size := float64(v.size)
	for i := range buf {
		if v.loop && v.pos >= size {
			v.pos = math.Mod(v.pos, size)
		}
		if v.pos >= size {
			v.playing = false
			buf[i] = 0
			continue
		}
		sample := int16(v.bus.Read(v.start+uint32(v.pos))) - 128
		buf[i] = sample << 8
		v.pos += v.step
	}
	return true
}
