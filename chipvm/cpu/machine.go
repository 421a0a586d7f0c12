package cpu

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/valerio/go-chipvm/chipvm/bit"
	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/memory"
	"github.com/valerio/go-chipvm/chipvm/video"
)

// StackSize is the number of return addresses the call stack holds. The
// stack pointer wraps silently past it.
const StackSize = 16

// PatternSink receives XO-CHIP audio pattern updates.
type PatternSink interface {
	LoadPattern(pattern [16]uint8)
	SetPitch(pitch uint8)
}

// TrackPlayer plays MegaChip digitized audio out of memory.
type TrackPlayer interface {
	Play(rate int, size int, loop bool, start uint32)
	Stop()
}

// ToneLatch receives the CHIP-8X VP-595 frequency byte.
type ToneLatch interface {
	LatchFrequency(value uint8)
}

type loader interface {
	Load(address uint32, data []uint8) error
}

// Machine is the register file and peripherals of one CHIP-8 family
// interpreter, together with the handler table of its variant.
type Machine struct {
	V          [16]uint8
	I          uint32
	PC         uint32
	Stack      [StackSize]uint32
	SP         uint16
	DelayTimer uint8
	SoundTimer uint8

	// Flags is the persistent storage written by FX75 and read by FX85.
	Flags [16]uint8

	Bus     memory.Bus
	Display *video.Display
	Keypad  *input.Keypad

	// Optional sound sinks, nil when the variant has no such device.
	Pattern PatternSink
	Track   TrackPlayer
	Tone    ToneLatch

	settings config.Settings
	addrMask uint32
	table    Table
	rng      *rand.Rand

	waitingKey int
	terminated bool

	combine    video.CombineMode
	longPrefix func(m *Machine) bool

	mega      *video.MegaChipDisplay
	fontIndex uint32
	chip8x    *video.Chip8XDisplay
	strict    *strictState
}

// New creates the interpreter for settings.Variant with fonts loaded and
// PC at the program start.
func New(settings config.Settings, keypad *input.Keypad, palette video.Palette) (*Machine, error) {
	v := settings.Variant
	if v == config.CosmacVIP {
		return nil, fmt.Errorf("%s runs on the cdp1802 core", v)
	}
	if keypad == nil {
		keypad = input.NewKeypad()
	}

	m := &Machine{
		Keypad:     keypad,
		settings:   settings,
		addrMask:   uint32(v.MemorySize() - 1),
		waitingKey: -1,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}

	var mem loader
	switch v {
	case config.StrictChip8:
		m.addrMask = 0xFFFF
		m.Display = video.NewDisplay(64, 32, false, palette)
		strict := memory.NewStrict()
		strict.Attach(&m.V, &m.Stack, m.Display)
		m.Bus, mem = strict, strict
		m.strict = newStrictState(m)
	default:
		ram := memory.New(v.MemorySize())
		m.Bus, mem = ram, ram
	}

	switch v {
	case config.Chip8:
		m.Display = video.NewDisplay(64, 32, false, palette)
	case config.Chip8X:
		m.chip8x = video.NewChip8XDisplay(palette)
		m.Display = m.chip8x.Display
	case config.MegaChip:
		m.mega = video.NewMegaChipDisplay(palette)
		m.Display = m.mega.Display
	case config.HyperWaveChip64:
		var black video.Palette
		for i := range black {
			black[i] = uint32(video.BlackColor)
		}
		m.Display = video.NewDisplay(128, 64, true, black)
	case config.SChip10, config.SChip11, config.SChipModern, config.XOChip:
		m.Display = video.NewDisplay(128, 64, true, palette)
	}

	if err := mem.Load(video.SmallFontAddress, video.SmallFont); err != nil {
		return nil, fmt.Errorf("loading small font: %w", err)
	}
	if v.HasBigFont() {
		big := video.OctoBigFont
		if v == config.SChip10 || v == config.SChip11 || v == config.MegaChip {
			big = video.SChipBigFont
		}
		if err := mem.Load(video.BigFontAddress, big); err != nil {
			return nil, fmt.Errorf("loading big font: %w", err)
		}
	}

	m.table = tableFor(v)
	m.longPrefix = longPrefixFor(v)
	m.PC = v.ProgramStart()

	slog.Debug("Created interpreter", "variant", v, "memory", v.MemorySize(), "ipf", settings.IPF)
	return m, nil
}

// LoadProgram copies rom to the program start of the variant.
func (m *Machine) LoadProgram(rom []uint8) error {
	mem, ok := m.Bus.(loader)
	if !ok {
		return fmt.Errorf("bus %T cannot load programs", m.Bus)
	}
	if err := mem.Load(m.settings.Variant.ProgramStart(), rom); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	return nil
}

// Seed makes CXNN deterministic.
func (m *Machine) Seed(seed uint64) {
	m.rng = rand.New(rand.NewPCG(seed, 0))
}

func (m *Machine) Variant() config.Variant {
	return m.settings.Variant
}

// Quirks returns the quirk set resolved for this session.
func (m *Machine) Quirks() config.Quirks {
	return m.settings.Quirks
}

func (m *Machine) Settings() config.Settings {
	return m.settings
}

// Terminated reports whether the program executed an exit opcode.
func (m *Machine) Terminated() bool {
	return m.terminated
}

// MegaChip returns the MegaChip display, or nil for other variants.
func (m *Machine) MegaChip() *video.MegaChipDisplay {
	return m.mega
}

// Chip8X returns the CHIP-8X color display, or nil for other variants.
func (m *Machine) Chip8X() *video.Chip8XDisplay {
	return m.chip8x
}

// Strict returns the cycle clock of the strict interpreter, or nil.
func (m *Machine) Strict() *StrictClock {
	if m.strict == nil {
		return nil
	}
	return &m.strict.clock
}

// Render draws the current screen of the variant into fb.
func (m *Machine) Render(fb *video.FrameBuffer) {
	switch {
	case m.mega != nil:
		m.mega.Render(fb)
	case m.chip8x != nil:
		m.chip8x.Render(fb)
	default:
		m.Display.Render(fb)
	}
}

// Step fetches and executes one instruction.
func (m *Machine) Step() (Result, error) {
	address := m.PC
	op := Opcode(m.word(address))
	m.PC = (m.PC + 2) & m.addrMask

	result, err := m.table[op.Family()](m, op)
	if err != nil {
		return result, err
	}
	if result&Handled == 0 {
		return result, &InvalidInstructionError{Opcode: op, Address: address, Variant: m.settings.Variant}
	}
	return result, nil
}

// TickTimers decrements the delay and sound timers once.
func (m *Machine) TickTimers() {
	if m.DelayTimer > 0 {
		m.DelayTimer--
	}
	if m.SoundTimer > 0 {
		m.SoundTimer--
	}
}

func (m *Machine) read(address uint32) uint8 {
	return m.Bus.Read(address)
}

func (m *Machine) write(address uint32, value uint8) {
	m.Bus.Write(address, value)
}

func (m *Machine) word(address uint32) uint16 {
	return bit.Combine(m.read(address), m.read(address+1))
}

func (m *Machine) setI(value uint32) {
	m.I = value & m.addrMask
}

func (m *Machine) jump(address uint32) {
	m.PC = address & m.addrMask
}

// skip advances PC over one instruction word.
func (m *Machine) skip() {
	m.PC = (m.PC + 2) & m.addrMask
}

// rewind makes the current instruction execute again on the next step.
func (m *Machine) rewind() {
	m.PC = (m.PC - 2) & m.addrMask
}

func (m *Machine) push(value uint32) {
	m.Stack[m.SP%StackSize] = value
	m.SP = (m.SP + 1) % StackSize
}

func (m *Machine) pop() uint32 {
	m.SP = (m.SP - 1) % StackSize
	return m.Stack[m.SP]
}

func (m *Machine) setVF(on bool) {
	m.V[0xF] = bit.FromBool(on)
}

// keys returns one consistent view of the keypad for an opcode.
func (m *Machine) keys() uint16 {
	return m.Keypad.Snapshot()
}

func firstKey(keys uint16) (uint8, bool) {
	for i := uint8(0); i < 16; i++ {
		if keys&(1<<i) != 0 {
			return i, true
		}
	}
	return 0, false
}

// scrollUnit is the physical size of one logical pixel for variants that
// scroll in logical units.
func (m *Machine) scrollUnit() int {
	if m.Display.Hires() {
		return 1
	}
	return 2
}
