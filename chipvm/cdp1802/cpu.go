package cdp1802

import "log/slog"

// Bus is the 64 KiB address space seen by the CPU.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Devices is the set of peripherals the CPU polls once per machine cycle.
// The CPU never starts a DMA transfer itself; it only arbitrates the
// requests reported here against instruction execution.
type Devices interface {
	DMAStatus() DMAStatus
	Interrupting() bool
	// DMAIn returns the byte written to M(R0) during a DMA-IN cycle.
	DMAIn(address uint16) uint8
	// DMAOut receives M(R0) during a DMA-OUT cycle.
	DMAOut(address uint16, value uint8)
	Input(port uint8) uint8
	Output(port uint8, value uint8)
	// Flags returns EF1-EF4 in bits 0-3, set when the line is asserted.
	Flags() uint8
}

// CPU is a CDP1802 advanced one machine cycle at a time.
type CPU struct {
	d  uint8
	df bool
	b  uint8
	r  [16]uint16
	p  uint8
	x  uint8
	n  uint8
	i  uint8
	t  uint8
	ie bool
	q  bool
	ef uint8

	state  State
	long   bool
	idle   bool
	cycles uint64

	bus     Bus
	devices Devices
}

// New returns a CPU in the reset state.
func New(bus Bus, devices Devices) *CPU {
	if devices == nil {
		devices = NoDevices{}
	}
	c := &CPU{bus: bus, devices: devices}
	c.Reset()
	return c
}

// Reset asserts CLEAR: the next two cycles are the reset and
// initialization cycles.
func (c *CPU) Reset() {
	c.state = StateReset
	c.long = false
	c.idle = false
}

func (c *CPU) State() State               { return c.state }
func (c *CPU) MachineCycles() uint64      { return c.cycles }
func (c *CPU) D() uint8                   { return c.d }
func (c *CPU) DF() bool                   { return c.df }
func (c *CPU) B() uint8                   { return c.b }
func (c *CPU) R(index uint8) uint16       { return c.r[index&0xF] }
func (c *CPU) P() uint8                   { return c.p }
func (c *CPU) X() uint8                   { return c.x }
func (c *CPU) N() uint8                   { return c.n }
func (c *CPU) I() uint8                   { return c.i }
func (c *CPU) T() uint8                   { return c.t }
func (c *CPU) IE() bool                   { return c.ie }
func (c *CPU) Q() bool                    { return c.q }
func (c *CPU) Idle() bool                 { return c.idle }
func (c *CPU) EF(line int) bool           { return c.ef&(1<<(line-1)) != 0 }
func (c *CPU) SetR(index uint8, v uint16) { c.r[index&0xF] = v }
func (c *CPU) SetP(p uint8)               { c.p = p & 0xF }
func (c *CPU) SetX(x uint8)               { c.x = x & 0xF }
func (c *CPU) SetD(d uint8)               { c.d = d }
func (c *CPU) SetDF(df bool)              { c.df = df }
func (c *CPU) SetIE(ie bool)              { c.ie = ie }

// Cycle runs one machine cycle and moves to the next state. It reports
// whether an instruction finished during the cycle.
func (c *CPU) Cycle() bool {
	done := c.Run()
	c.Advance()
	return done
}

// Run performs the work of the current state without changing it. Callers
// that clock devices between cycles call Run, tick the devices, then call
// Advance.
func (c *CPU) Run() bool {
	c.ef = c.devices.Flags()
	done := false

	switch c.state {
	case StateReset:
		c.i, c.n = 0, 0
		c.q = false
		c.ie = true
		c.x, c.p = 0, 0
	case StateInit:
		c.r[0] = 0
	case StateFetch:
		opcode := c.bus.Read(c.r[c.p])
		c.r[c.p]++
		c.i, c.n = opcode>>4, opcode&0xF
	case StateExecute:
		if c.idle {
			c.bus.Read(c.r[0])
			break
		}
		c.execute()
		done = !c.long && !c.idle
	case StateDMAIn:
		c.bus.Write(c.r[0], c.devices.DMAIn(c.r[0]))
		c.r[0]++
	case StateDMAOut:
		c.devices.DMAOut(c.r[0], c.bus.Read(c.r[0]))
		c.r[0]++
	case StateInterrupt:
	}

	c.cycles++
	return done
}

// Advance samples the device requests and enters the next state.
func (c *CPU) Advance() {
	dma := c.devices.DMAStatus()
	interrupt := c.ie && c.devices.Interrupting()
	next := NextState(c.state, c.long, dma, interrupt, c.idle)

	if next != StateExecute {
		c.idle = false
	}
	if next == StateInterrupt {
		c.t = c.x<<4 | c.p
		c.p, c.x = 1, 2
		c.ie = false
		slog.Debug("cdp1802 interrupt", "t", c.t, "cycles", c.cycles)
	}
	c.state = next
}

// NoDevices is a device set with nothing attached: the data bus floats
// high and no line is ever asserted.
type NoDevices struct{}

func (NoDevices) DMAStatus() DMAStatus { return DMANone }
func (NoDevices) Interrupting() bool   { return false }
func (NoDevices) DMAIn(uint16) uint8   { return 0xFF }
func (NoDevices) DMAOut(uint16, uint8) {}
func (NoDevices) Input(uint8) uint8    { return 0xFF }
func (NoDevices) Output(uint8, uint8)  {}
func (NoDevices) Flags() uint8         { return 0 }
