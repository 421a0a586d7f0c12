package memory

import (
	"fmt"
	"math/bits"
)

// Bus is the byte-addressed view of memory used by every processor.
type Bus interface {
	Read(address uint32) uint8
	Write(address uint32, value uint8)
	Size() int
}

// Memory is a flat power-of-two address space. Out-of-range addresses wrap
// through the bounds mask.
type Memory struct {
	data []uint8
	mask uint32
}

// New allocates size bytes. size must be a power of two.
func New(size int) *Memory {
	if size <= 0 || bits.OnesCount(uint(size)) != 1 {
		panic(fmt.Sprintf("memory size must be a power of two, got %d", size))
	}
	return &Memory{
		data: make([]uint8, size),
		mask: uint32(size - 1),
	}
}

func (m *Memory) Read(address uint32) uint8 {
	return m.data[address&m.mask]
}

func (m *Memory) Write(address uint32, value uint8) {
	m.data[address&m.mask] = value
}

func (m *Memory) Size() int {
	return len(m.data)
}

// Mask returns the address bounds mask.
func (m *Memory) Mask() uint32 {
	return m.mask
}

// Load copies data starting at address. It fails if data does not fit.
func (m *Memory) Load(address uint32, data []uint8) error {
	if int(address)+len(data) > len(m.data) {
		return errTooLarge(len(data), address, len(m.data))
	}
	copy(m.data[address:], data)
	return nil
}

// Bytes exposes the backing slice for debug readers.
func (m *Memory) Bytes() []uint8 {
	return m.data
}

func errTooLarge(length int, address uint32, size int) error {
	return fmt.Errorf("program of %d bytes at 0x%X exceeds memory size 0x%X", length, address, size)
}
