package vip

import (
	"github.com/valerio/go-chipvm/chipvm/cdp1802"
	"github.com/valerio/go-chipvm/chipvm/input"
)

// Device is a peripheral on the VIP I/O bus. Embed baseDevice to get the
// behavior of an unconnected port for the methods a device does not need.
type Device interface {
	Tick(cycles uint64)
	DMAStatus() cdp1802.DMAStatus
	Interrupting() bool
	DMAIn(address uint16) uint8
	DMAOut(address uint16, value uint8)
	InputPort(port uint8) bool
	OutputPort(port uint8) bool
	Input(port uint8) uint8
	Output(port uint8, value uint8)
}

// baseDevice never requests anything. The VIP pulls the data bus up, so
// unclaimed reads see 0xFF.
type baseDevice struct{}

func (baseDevice) Tick(uint64)                  {}
func (baseDevice) DMAStatus() cdp1802.DMAStatus { return cdp1802.DMANone }
func (baseDevice) Interrupting() bool           { return false }
func (baseDevice) DMAIn(uint16) uint8           { return 0xFF }
func (baseDevice) DMAOut(uint16, uint8)         {}
func (baseDevice) InputPort(uint8) bool         { return false }
func (baseDevice) OutputPort(uint8) bool        { return false }
func (baseDevice) Input(uint8) uint8            { return 0xFF }
func (baseDevice) Output(uint8, uint8)          {}

// Keypad is the hex keypad. OUT 2 latches a key number and EF3 reports
// whether that key is held.
type Keypad struct {
	baseDevice
	keys    *input.Keypad
	latched uint8
}

func NewKeypad(keys *input.Keypad) *Keypad {
	return &Keypad{keys: keys}
}

func (k *Keypad) OutputPort(port uint8) bool  { return port == 2 }
func (k *Keypad) Output(_ uint8, value uint8) { k.latched = value & 0xF }
func (k *Keypad) Latched() uint8              { return k.latched }
func (k *Keypad) Pressed() bool               { return k.keys.IsPressed(k.latched) }

// deviceSet is the cdp1802.Devices view of every VIP peripheral.
type deviceSet struct {
	memory  *Memory
	video   *CDP1861
	keypad  *Keypad
	devices []Device
}

func newDeviceSet(memory *Memory, video *CDP1861, keypad *Keypad) *deviceSet {
	return &deviceSet{
		memory:  memory,
		video:   video,
		keypad:  keypad,
		devices: []Device{video, keypad},
	}
}

func (s *deviceSet) tick(cycles uint64) {
	for _, d := range s.devices {
		d.Tick(cycles)
	}
}

// DMAStatus merges the device requests; DMA-IN wins over DMA-OUT.
func (s *deviceSet) DMAStatus() cdp1802.DMAStatus {
	status := cdp1802.DMANone
	for _, d := range s.devices {
		switch d.DMAStatus() {
		case cdp1802.DMAIn:
			return cdp1802.DMAIn
		case cdp1802.DMAOut:
			status = cdp1802.DMAOut
		}
	}
	return status
}

func (s *deviceSet) Interrupting() bool {
	for _, d := range s.devices {
		if d.Interrupting() {
			return true
		}
	}
	return false
}

func (s *deviceSet) DMAIn(address uint16) uint8 {
	for _, d := range s.devices {
		if d.DMAStatus() == cdp1802.DMAIn {
			return d.DMAIn(address)
		}
	}
	return 0xFF
}

func (s *deviceSet) DMAOut(address uint16, value uint8) {
	for _, d := range s.devices {
		if d.DMAStatus() == cdp1802.DMAOut {
			d.DMAOut(address, value)
			return
		}
	}
}

func (s *deviceSet) Input(port uint8) uint8 {
	for _, d := range s.devices {
		if d.InputPort(port) {
			return d.Input(port)
		}
	}
	return 0xFF
}

func (s *deviceSet) Output(port uint8, value uint8) {
	if port&4 != 0 {
		s.memory.Unlatch()
	}
	for _, d := range s.devices {
		if d.OutputPort(port) {
			d.Output(port, value)
			return
		}
	}
}

// Flags reports EF1 from the video chip and EF3 from the keypad.
func (s *deviceSet) Flags() uint8 {
	var flags uint8
	if s.video.EF1() {
		flags |= 1 << 0
	}
	if s.keypad.Pressed() {
		flags |= 1 << 2
	}
	return flags
}
