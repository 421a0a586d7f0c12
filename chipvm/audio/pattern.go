package audio

import "math"

// DefaultPitch is the pitch register value of a freshly reset XO-CHIP.
const DefaultPitch = 64

// buzzerPitch gives the classic buzzer its 1.4 kHz-ish tone with the default
// pattern.
const buzzerPitch = 175

var buzzerPattern = [16]uint8{
	0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0,
}

// PatternVoice plays a 128-bit one-bit pattern at a rate set by the pitch
// register. Classic interpreters use it with a fixed square pattern.
type PatternVoice struct {
	pattern [16]uint8
	step    float64
	phase   float64
}

// NewBuzzer returns a pattern voice preloaded with the square buzzer.
func NewBuzzer() *PatternVoice {
	v := &PatternVoice{pattern: buzzerPattern}
	v.SetPitch(buzzerPitch)
	return v
}

// NewPatternVoice returns a silent pattern voice at the default pitch.
func NewPatternVoice() *PatternVoice {
	v := &PatternVoice{}
	v.SetPitch(DefaultPitch)
	return v
}

// LoadPattern replaces the 16 byte pattern.
func (v *PatternVoice) LoadPattern(pattern [16]uint8) {
	v.pattern = pattern
}

func (v *PatternVoice) Pattern() [16]uint8 {
	return v.pattern
}

// SetPitch maps pitch to a playback rate of 4000*2^((pitch-64)/48) bits per
// second.
func (v *PatternVoice) SetPitch(pitch uint8) {
	v.step = PitchFrequency(pitch) / 128 / SampleRate
}

// PitchFrequency returns the pattern bit rate for pitch.
func PitchFrequency(pitch uint8) float64 {
	return 4000 * math.Pow(2, (float64(pitch)-64)/48)
}

func (v *PatternVoice) Render(buf []int16, soundTimer int) bool {
	if soundTimer <= 0 {
		v.phase = 0
		return false
	}
	for i := range buf {
		bitStep := int(v.phase * 128)
		if v.pattern[bitStep>>3]&(1<<(7^(bitStep&7))) != 0 {
			buf[i] = squareAmplitude
		} else {
			buf[i] = -squareAmplitude
		}
		v.phase = math.Mod(v.phase+v.step, 1)
	}
	return true
}

// SquareVoice is a plain 50% duty square wave. The CHIP-8X sound board
// latches its frequency from an output port.
type SquareVoice struct {
	frequency float64
	phase     float64
}

func NewSquareVoice(frequency float64) *SquareVoice {
	return &SquareVoice{frequency: frequency}
}

// NewVP595 returns the CHIP-8X tone generator at its power-on frequency.
func NewVP595() *SquareVoice {
	v := &SquareVoice{}
	v.LatchFrequency(0)
	return v
}

// LatchFrequency sets the frequency from a VP-595 port value. Zero selects
// the default of 0x80.
func (v *SquareVoice) LatchFrequency(value uint8) {
	if value == 0 {
		value = 0x80
	}
	v.frequency = 27535.0 / (float64(value) + 1)
}

func (v *SquareVoice) Frequency() float64 {
	return v.frequency
}

func (v *SquareVoice) Render(buf []int16, soundTimer int) bool {
	if soundTimer <= 0 {
		v.phase = 0
		return false
	}
	step := v.frequency / SampleRate
	for i := range buf {
		if v.phase < 0.5 {
			buf[i] = squareAmplitude
		} else {
			buf[i] = -squareAmplitude
		}
		v.phase = math.Mod(v.phase+step, 1)
	}
	return true
}
