package emulator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chipvm/chipvm/audio"
	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/disasm"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/video"
	"github.com/valerio/go-chipvm/chipvm/vip"
)

// VIP drives a COSMAC VIP one CDP1861 frame at a time.
type VIP struct {
	machine *vip.Machine
	program []uint8
	frame   *video.FrameBuffer
	mixer   *audio.Mixer
	beeper  audio.Voice

	frames       uint64
	instructions uint64
}

// NewVIP builds a VIP with program in RAM and the optional monitor ROM.
func NewVIP(program []uint8, opts Options) (*VIP, error) {
	opts.defaults()
	e := &VIP{
		machine: vip.New(opts.Keypad, opts.MonitorROM, opts.Palette),
		program: program,
		frame:   video.NewFrameBuffer(vip.ScreenWidth, vip.ScreenHeight),
		mixer:   opts.Mixer,
		beeper:  opts.Beep,
	}
	if e.beeper == nil {
		e.beeper = audio.NewBuzzer()
	}
	if err := e.machine.LoadProgram(program); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	slog.Info("Loaded program", "variant", config.CosmacVIP, "bytes", len(program), "monitor", len(opts.MonitorROM) > 0)
	return e, nil
}

// Machine exposes the VIP, for tests and debug views.
func (e *VIP) Machine() *vip.Machine {
	return e.machine
}

func (e *VIP) RunUntilFrame(ctx context.Context) error {
	n, err := e.machine.RunFrame(ctx)
	e.instructions += uint64(n)
	if err != nil {
		return err
	}
	e.frames++
	e.machine.Render(e.frame)

	q := 0
	if e.machine.Q() {
		q = 1
	}
	e.mixer.PushFrame(e.beeper, q)
	return nil
}

// Terminated is always false: the 1802 has no exit.
func (e *VIP) Terminated() bool {
	return false
}

func (e *VIP) GetCurrentFrame() *video.FrameBuffer {
	return e.frame
}

func (e *VIP) GetAudioProvider() audio.Provider {
	return e.mixer
}

func (e *VIP) HandleAction(act action.Action, pressed bool) {
	if act != action.EmulatorReset || !pressed {
		return
	}
	e.machine.Reset()
	// RAM survives a reset on real hardware, but the program may have
	// overwritten itself.
	if err := e.machine.LoadProgram(e.program); err != nil {
		slog.Error("Failed to reload program", "error", err)
	}
	slog.Info("Emulator reset", "variant", config.CosmacVIP)
}

func (e *VIP) ExtractDebugData() *debug.CompleteDebugData {
	c := e.machine.CPU
	state := &debug.ProcessorState{
		D:      c.D(),
		DF:     c.DF(),
		P:      c.P(),
		X:      c.X(),
		T:      c.T(),
		IE:     c.IE(),
		Q:      c.Q(),
		State:  c.State().String(),
		Cycles: c.MachineCycles(),
	}
	for i := range state.R {
		state.R[i] = c.R(uint8(i))
	}
	read := func(address uint32) uint8 {
		return e.machine.Memory.Read(uint16(address))
	}
	return &debug.CompleteDebugData{
		Machine:     config.CosmacVIP.String(),
		Processor:   state,
		Disassembly: disasm.DisassembleCDP1802Range(uint32(state.R[state.P]), 12, read),
		Frame:       e.frames,
	}
}

// Stats reports the frame and instruction counters.
func (e *VIP) Stats() (frames, instructions uint64) {
	return e.frames, e.instructions
}
