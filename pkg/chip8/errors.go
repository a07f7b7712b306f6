package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrAddressOutOfBounds = errors.New("address out of bounds")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrMisalignedJump     = errors.New("jump target is not an even address")
)

// CycleError records where a fatal error stopped the machine. It unwraps to
// one of the sentinel errors above.
type CycleError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle at 0x%03X (opcode 0x%04X): %v", e.PC, e.Opcode, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}
