package cdp1802

import "fmt"

// State is the machine cycle type the CPU performs next.
type State uint8

const (
	StateReset State = iota
	StateInit
	StateFetch
	StateExecute
	StateDMAIn
	StateDMAOut
	StateInterrupt
)

var stateNames = [...]string{"reset", "init", "fetch", "execute", "dma-in", "dma-out", "interrupt"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// IsDMA reports whether s is a DMA cycle.
func (s State) IsDMA() bool {
	return s == StateDMAIn || s == StateDMAOut
}

// DMAStatus is the DMA request a device asserts for the coming cycle.
type DMAStatus uint8

const (
	DMANone DMAStatus = iota
	DMAIn
	DMAOut
)

func (d DMAStatus) String() string {
	switch d {
	case DMAIn:
		return "in"
	case DMAOut:
		return "out"
	}
	return "none"
}

// NextState returns the state after a cycle in current. longPending holds
// while a long branch or skip still owes its second execute cycle.
// interrupt is the interrupt line already gated by IE. idle holds while an
// IDL instruction waits for a request.
//
// DMA-IN wins over DMA-OUT, which wins over an interrupt. An interrupt
// cycle is never followed by another one.
func NextState(current State, longPending bool, dma DMAStatus, interrupt, idle bool) State {
	switch current {
	case StateReset:
		return StateInit
	case StateFetch:
		return StateExecute
	case StateExecute:
		if longPending {
			return StateExecute
		}
	}

	switch dma {
	case DMAIn:
		return StateDMAIn
	case DMAOut:
		return StateDMAOut
	}
	if interrupt && current != StateInterrupt && current != StateInit {
		return StateInterrupt
	}
	if idle && current == StateExecute {
		return StateExecute
	}
	return StateFetch
}
