package vip

import "fmt"

const (
	// RAMSize is the on-board RAM, mirrored through the low 32 KiB.
	RAMSize = 0x1000
	// ROMBase is where the monitor ROM is decoded.
	ROMBase = 0x8000
)

// Memory is the VIP address space. While the A15 latch is set, which it is
// after reset when a monitor ROM is present, every access is forced into
// the ROM half so the CPU starts in the monitor at address 0. The first
// OUT to a port with bit 2 set clears the latch.
type Memory struct {
	ram     [RAMSize]uint8
	rom     []uint8
	latched bool
}

// NewMemory returns VIP memory with rom mapped at ROMBase. rom may be nil.
func NewMemory(rom []uint8) *Memory {
	m := &Memory{rom: rom}
	m.Reset()
	return m
}

// Reset sets the A15 latch again when a ROM is present. RAM is kept.
func (m *Memory) Reset() {
	m.latched = len(m.rom) > 0
}

func (m *Memory) Latched() bool {
	return m.latched
}

// Unlatch releases the A15 latch.
func (m *Memory) Unlatch() {
	m.latched = false
}

func (m *Memory) Read(address uint16) uint8 {
	if m.latched {
		address |= ROMBase
	}
	if address >= ROMBase {
		if len(m.rom) == 0 {
			return 0xFF
		}
		return m.rom[int(address-ROMBase)%len(m.rom)]
	}
	return m.ram[address&(RAMSize-1)]
}

// Write stores into RAM. Writes decoded into the ROM half are dropped.
func (m *Memory) Write(address uint16, value uint8) {
	if m.latched {
		address |= ROMBase
	}
	if address >= ROMBase {
		return
	}
	m.ram[address&(RAMSize-1)] = value
}

// Load copies data into RAM at address.
func (m *Memory) Load(address uint16, data []uint8) error {
	if int(address)+len(data) > RAMSize {
		return fmt.Errorf("program of %d bytes at 0x%04X exceeds %d bytes of RAM", len(data), address, RAMSize)
	}
	copy(m.ram[address:], data)
	return nil
}

// RAM exposes on-board RAM for debug readers.
func (m *Memory) RAM() []uint8 {
	return m.ram[:]
}
