package emulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-chipvm/chipvm/audio"
	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/cpu"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/disasm"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/timing"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// ThrottleThreshold is the IPF target from which the instruction budget
// adapts to how long frames actually take.
const ThrottleThreshold = 1000000

// ErrStopped is returned once the interpreter hit an invalid instruction.
var ErrStopped = errors.New("emulator stopped")

// Chip8 drives an interpreter of the CHIP-8 family one frame at a time.
type Chip8 struct {
	machine  *cpu.Machine
	settings config.Settings
	program  []uint8
	opts     Options

	frame *video.FrameBuffer
	mixer *audio.Mixer
	voice audio.Voice
	track *audio.TrackVoice

	targetIPF  int
	currentIPF int
	waitFrames int

	frames       uint64
	instructions uint64
	lastFrameIPF int
	err          error
}

// NewChip8 builds the interpreter for settings and loads program.
func NewChip8(settings config.Settings, program []uint8, opts Options) (*Chip8, error) {
	opts.defaults()
	e := &Chip8{
		settings:  settings,
		program:   program,
		opts:      opts,
		mixer:     opts.Mixer,
		targetIPF: max(settings.IPF, 1),
	}
	if err := e.boot(); err != nil {
		return nil, err
	}
	slog.Info("Loaded program", "variant", settings.Variant, "bytes", len(program), "ipf", e.targetIPF, "quirks", fmt.Sprintf("%+v", settings.Quirks))
	return e, nil
}

func (e *Chip8) boot() error {
	m, err := cpu.New(e.settings, e.opts.Keypad, e.opts.Palette)
	if err != nil {
		return err
	}
	if err := m.LoadProgram(e.program); err != nil {
		return err
	}
	if e.opts.Seed != 0 {
		m.Seed(e.opts.Seed)
	}

	e.voice = e.opts.Beep
	if e.voice == nil {
		e.voice = audio.NewBuzzer()
	}
	e.track = nil
	switch e.settings.Variant {
	case config.XOChip, config.HyperWaveChip64:
		pattern := audio.NewPatternVoice()
		m.Pattern = pattern
		e.voice = pattern
	case config.Chip8X:
		tone := audio.NewVP595()
		m.Tone = tone
		e.voice = tone
	case config.MegaChip:
		e.track = audio.NewTrackVoice(m.Bus)
		m.Track = e.track
	}

	if clock := m.Strict(); clock != nil {
		clock.OnFrame = e.endOfFrame
	}

	e.machine = m
	e.frame = newFrameFor(m)
	e.currentIPF = e.targetIPF
	e.waitFrames = 0
	e.err = nil
	return nil
}

func newFrameFor(m *cpu.Machine) *video.FrameBuffer {
	switch {
	case m.MegaChip() != nil:
		return video.NewFrameBuffer(video.MegaImageWidth, video.MegaImageHeight)
	case m.Chip8X() != nil:
		return video.NewFrameBuffer(64, 32)
	}
	return video.NewFrameBuffer(uint(m.Display.PhysicalWidth()), uint(m.Display.PhysicalHeight()))
}

// Machine exposes the interpreter, for tests and debug views.
func (e *Chip8) Machine() *cpu.Machine {
	return e.machine
}

// CurrentIPF is the instruction budget of the next frame.
func (e *Chip8) CurrentIPF() int {
	return e.currentIPF
}

func (e *Chip8) Terminated() bool {
	return e.machine.Terminated()
}

func (e *Chip8) RunUntilFrame(ctx context.Context) error {
	if e.err != nil {
		return e.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.machine.Terminated() {
		return nil
	}

	start := time.Now()
	var err error
	if e.machine.Strict() != nil {
		err = e.runStrictFrame()
	} else {
		err = e.runFrame()
		e.endOfFrame()
	}
	e.frames++
	if err != nil {
		var invalid *cpu.InvalidInstructionError
		if errors.As(err, &invalid) {
			slog.Error("Invalid instruction", "opcode", invalid.Opcode, "address", fmt.Sprintf("0x%04X", invalid.Address), "variant", invalid.Variant)
		}
		e.err = fmt.Errorf("%w: %w", ErrStopped, err)
		return e.err
	}

	if e.targetIPF >= ThrottleThreshold {
		e.throttle(time.Since(start))
	}
	return nil
}

// runFrame ticks the timers and executes up to the instruction budget.
func (e *Chip8) runFrame() error {
	m := e.machine
	m.TickTimers()
	e.lastFrameIPF = 0
	if e.waitFrames > 0 {
		e.waitFrames--
		return nil
	}
	for i := 0; i < e.currentIPF; i++ {
		r, err := m.Step()
		if err != nil {
			return err
		}
		e.instructions++
		e.lastFrameIPF++
		if e.frameEnds(r) {
			break
		}
		if m.Terminated() {
			slog.Info("Program exited", "frame", e.frames, "pc", fmt.Sprintf("0x%04X", m.PC))
			break
		}
	}
	return nil
}

// runStrictFrame executes until the machine clock crosses the next frame
// interrupt, which renders and pushes audio itself.
func (e *Chip8) runStrictFrame() error {
	clock := e.machine.Strict()
	target := clock.NextFrame()
	e.lastFrameIPF = 0
	for clock.Cycles() < target {
		r, err := e.machine.Step()
		if err != nil {
			return err
		}
		if !r.Has(cpu.Waiting) {
			e.instructions++
			e.lastFrameIPF++
		}
	}
	return nil
}

// frameEnds reports whether r waits for the vertical blank.
func (e *Chip8) frameEnds(r cpu.Result) bool {
	if mega := e.machine.MegaChip(); mega != nil && mega.Enabled() {
		return r.Has(cpu.Handled | cpu.ClsExecuted)
	}
	if !e.settings.Quirks.DisplayWait {
		return false
	}
	switch {
	case r.Has(cpu.DrawExecuted):
		return true
	case r.Has(cpu.LongDrawExecuted):
		e.waitFrames = 1
		return true
	}
	return false
}

func (e *Chip8) endOfFrame() {
	e.machine.Render(e.frame)
	sound := int(e.machine.SoundTimer)
	if e.track != nil && e.track.Playing() {
		e.mixer.PushFrame(e.track, sound)
		return
	}
	e.mixer.PushFrame(e.voice, sound)
}

// throttle trims the instruction budget when frames run long and grows it
// back when they finish early.
func (e *Chip8) throttle(elapsed time.Duration) {
	adjust := int((elapsed - timing.FrameDuration()) / 100)
	e.currentIPF = min(max(e.currentIPF-adjust, 1), e.targetIPF)
}

func (e *Chip8) GetCurrentFrame() *video.FrameBuffer {
	return e.frame
}

func (e *Chip8) GetAudioProvider() audio.Provider {
	return e.mixer
}

func (e *Chip8) HandleAction(act action.Action, pressed bool) {
	if act == action.EmulatorReset && pressed {
		e.Reset()
	}
}

// Reset rebuilds the interpreter and reloads the program.
func (e *Chip8) Reset() {
	if err := e.boot(); err != nil {
		slog.Error("Failed to reset emulator", "error", err)
		return
	}
	slog.Info("Emulator reset", "variant", e.settings.Variant)
}

func (e *Chip8) ExtractDebugData() *debug.CompleteDebugData {
	m := e.machine
	state := &debug.InterpreterState{
		V:          m.V,
		I:          m.I,
		PC:         m.PC,
		SP:         m.SP,
		Stack:      append([]uint32(nil), m.Stack[:]...),
		DelayTimer: m.DelayTimer,
		SoundTimer: m.SoundTimer,
	}
	if clock := m.Strict(); clock != nil {
		state.Cycles = clock.Cycles()
	}
	return &debug.CompleteDebugData{
		Machine:     e.settings.Variant.String(),
		Interpreter: state,
		Disassembly: disasm.DisassembleAround(m.PC, 4, 8, m.Bus.Read, e.settings.Variant),
		Frame:       e.frames,
	}
}

// Stats reports the frame and instruction counters.
func (e *Chip8) Stats() (frames, instructions uint64, lastFrame int) {
	return e.frames, e.instructions, e.lastFrameIPF
}
