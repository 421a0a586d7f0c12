package debug

import "github.com/valerio/go-chipvm/chipvm/disasm"

// InterpreterState is the register file of a CHIP-8 family interpreter.
type InterpreterState struct {
	V          [16]uint8
	I          uint32
	PC         uint32
	SP         uint16
	Stack      []uint32
	DelayTimer uint8
	SoundTimer uint8
	// Cycles is only set by the strict interpreter.
	Cycles uint64
}

// ProcessorState is the register file of a CDP1802.
type ProcessorState struct {
	R      [16]uint16
	D      uint8
	DF     bool
	P, X   uint8
	T      uint8
	IE     bool
	Q      bool
	State  string
	Cycles uint64
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerStepInstruction:
		return "step-instruction"
	case DebuggerStepFrame:
		return "step-frame"
	}
	return "unknown"
}

// CompleteDebugData is everything a debug panel shows. Exactly one of
// Interpreter and Processor is set.
type CompleteDebugData struct {
	Machine       string
	Interpreter   *InterpreterState
	Processor     *ProcessorState
	Disassembly   []disasm.Line
	DebuggerState DebuggerState
	Frame         uint64
}

// CurrentAddress is the program counter the disassembly is centered on.
func (d *CompleteDebugData) CurrentAddress() uint32 {
	switch {
	case d.Interpreter != nil:
		return d.Interpreter.PC
	case d.Processor != nil:
		return uint32(d.Processor.R[d.Processor.P&0xF])
	}
	return 0
}

// DisassemblyText renders the disassembly with the current line marked.
func (d *CompleteDebugData) DisassemblyText() []string {
	pc := d.CurrentAddress()
	out := make([]string, len(d.Disassembly))
	for i, line := range d.Disassembly {
		out[i] = disasm.FormatLine(line, line.Address == pc)
	}
	return out
}
