package cpu

import "fmt"

// Opcode is a 16-bit instruction word.
type Opcode uint16

// Family is the high nibble, used to select the handler.
func (o Opcode) Family() uint8 { return uint8(o >> 12) }

func (o Opcode) X() uint8 { return uint8(o>>8) & 0xF }

func (o Opcode) Y() uint8 { return uint8(o>>4) & 0xF }

func (o Opcode) N() uint8 { return uint8(o) & 0xF }

func (o Opcode) NN() uint8 { return uint8(o) }

func (o Opcode) NNN() uint32 { return uint32(o) & 0xFFF }

// High is the first byte of the instruction.
func (o Opcode) High() uint8 { return uint8(o >> 8) }

func (o Opcode) String() string {
	return fmt.Sprintf("%04X", uint16(o))
}
