package cpu

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chipvm/chipvm/config"
)

// ErrInvalidInstruction is matched by every InvalidInstructionError.
var ErrInvalidInstruction = errors.New("invalid instruction")

// InvalidInstructionError is returned when no layer of the active table
// handles an opcode. It is fatal to the session.
type InvalidInstructionError struct {
	Opcode  Opcode
	Address uint32
	Variant config.Variant
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("invalid instruction %s at 0x%04X for %s", e.Opcode, e.Address, e.Variant)
}

func (e *InvalidInstructionError) Is(target error) bool {
	return target == ErrInvalidInstruction
}
