package vip

import (
	"context"
	"log/slog"

	"github.com/valerio/go-chipvm/chipvm/cdp1802"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// Machine is a COSMAC VIP: a CDP1802 with 4 KiB of RAM, an optional
// monitor ROM, the CDP1861 display and the hex keypad. The Q line drives
// the beeper.
type Machine struct {
	CPU    *cdp1802.CPU
	Memory *Memory
	Video  *CDP1861
	Keypad *Keypad

	devices      *deviceSet
	instructions int
}

// New builds a VIP. Without a monitor ROM programs run straight from
// address 0.
func New(keys *input.Keypad, rom []uint8, palette video.Palette) *Machine {
	if keys == nil {
		keys = input.NewKeypad()
	}
	m := &Machine{
		Memory: NewMemory(rom),
		Video:  NewCDP1861(palette),
		Keypad: NewKeypad(keys),
	}
	m.devices = newDeviceSet(m.Memory, m.Video, m.Keypad)
	m.CPU = cdp1802.New(m.Memory, m.devices)

	slog.Debug("Created COSMAC VIP", "rom", len(rom), "latched", m.Memory.Latched())
	return m
}

// LoadProgram copies program into RAM at address 0.
func (m *Machine) LoadProgram(program []uint8) error {
	return m.Memory.Load(0, program)
}

// Reset asserts CLEAR on the CPU and re-arms the ROM latch.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.Memory.Reset()
	m.Video.Reset()
}

// Cycle runs one machine cycle and reports whether an instruction
// completed.
func (m *Machine) Cycle() bool {
	done := m.CPU.Run()
	m.devices.tick(m.CPU.MachineCycles())
	m.CPU.Advance()
	if done {
		m.instructions++
	}
	return done
}

// RunFrame runs one video frame worth of machine cycles and returns the
// number of instructions completed. It stops early if ctx is cancelled.
func (m *Machine) RunFrame(ctx context.Context) (int, error) {
	m.instructions = 0
	for i := 0; i < FrameCycles; i++ {
		if i%CyclesPerLine == 0 {
			if err := ctx.Err(); err != nil {
				return m.instructions, err
			}
		}
		m.Cycle()
	}
	return m.instructions, nil
}

// Q reports the state of the Q output, which gates the beeper.
func (m *Machine) Q() bool {
	return m.CPU.Q()
}

// Render draws the CDP1861 screen into fb.
func (m *Machine) Render(fb *video.FrameBuffer) {
	m.Video.Display().Render(fb)
}
