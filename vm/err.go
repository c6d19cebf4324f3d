package vm

import (
	"errors"

	"github.com/aryanA101a/lc3-vm-go/translate"
)

var f = translate.From

var (
	// Image loader errors
	ErrImageTooShort  = errors.New(f("image too short"))
	ErrImageOddLength = errors.New(f("image has an odd number of bytes"))
	ErrImageTooLarge  = errors.New(f("image runs past the end of memory"))

	// Execution errors
	ErrInstructionLimit = errors.New(f("instruction limit reached"))
)

// ErrOpcode reports an opcode with no user mode meaning (RTI, RES).
type ErrOpcode struct {
	Addr  Word // address the instruction was fetched from
	Instr Word
}

func (eo ErrOpcode) Error() string {
	return f("unsupported opcode %v (0x%04x) at 0x%04x", Decode(eo.Instr), uint16(eo.Instr), uint16(eo.Addr))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrTrap reports a TRAP to a vector with no service routine.
type ErrTrap struct {
	Addr   Word
	Vector TrapVector
}

func (et ErrTrap) Error() string {
	return f("unsupported trap code 0x%02x at 0x%04x", uint8(et.Vector), uint16(et.Addr))
}

func (et ErrTrap) Is(err error) (ok bool) {
	_, ok = err.(ErrTrap)
	return
}
