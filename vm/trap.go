package vm

import "fmt"

// TrapVector selects a trap service routine.
type TrapVector uint8

const (
	TRAP_GETC  TrapVector = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   TrapVector = 0x21 /* output a character */
	TRAP_PUTS  TrapVector = 0x22 /* output a word string */
	TRAP_IN    TrapVector = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP TrapVector = 0x24 /* output a byte string */
	TRAP_HALT  TrapVector = 0x25 /* halt the program */
)

func (tv TrapVector) String() string {
	switch tv {
	case TRAP_GETC:
		return "GETC"
	case TRAP_OUT:
		return "OUT"
	case TRAP_PUTS:
		return "PUTS"
	case TRAP_IN:
		return "IN"
	case TRAP_PUTSP:
		return "PUTSP"
	case TRAP_HALT:
		return "HALT"
	}
	return fmt.Sprintf("TrapVector(0x%02x)", uint8(tv))
}

// Display is the output device of the trap routines.
type Display interface {
	WriteByte(c byte) error
	Flush() error
}

// trap runs the service routine for vector. addr is the address of the
// TRAP instruction, for error reporting.
func (cpu *cpu) trap(addr Word, vector TrapVector) error {
	switch vector {
	case TRAP_GETC:
		key, _ := cpu.readKey()
		cpu.reg.Write(R0, Word(key))
		cpu.reg.UpdateFlags(R0)
		return nil

	case TRAP_IN:
		key, ok := cpu.readKey()
		if ok {
			if err := cpu.display.WriteByte(key); err != nil {
				return err
			}
			if err := cpu.display.Flush(); err != nil {
				return err
			}
		}
		cpu.reg.Write(R0, Word(key))
		cpu.reg.UpdateFlags(R0)
		return nil

	case TRAP_OUT:
		if err := cpu.display.WriteByte(byte(cpu.reg.Read(R0))); err != nil {
			return err
		}
		return cpu.display.Flush()

	case TRAP_PUTS:
		for ptr := cpu.reg.Read(R0); ; ptr++ {
			c := cpu.memory.Read(ptr)
			if c == 0 {
				break
			}
			if err := cpu.display.WriteByte(byte(c)); err != nil {
				return err
			}
		}
		return cpu.display.Flush()

	case TRAP_PUTSP:
		for ptr := cpu.reg.Read(R0); ; ptr++ {
			w := cpu.memory.Read(ptr)
			if w == 0 {
				break
			}
			if err := cpu.display.WriteByte(byte(w)); err != nil {
				return err
			}
			if hi := byte(w >> 8); hi != 0 {
				if err := cpu.display.WriteByte(hi); err != nil {
					return err
				}
			}
		}
		return cpu.display.Flush()

	case TRAP_HALT:
		cpu.stop()
		return cpu.display.Flush()
	}

	return ErrTrap{Addr: addr, Vector: vector}
}

// readKey reads from the keyboard; no keyboard reads as exhausted input.
func (cpu *cpu) readKey() (byte, bool) {
	if cpu.keyboard == nil {
		return 0, false
	}
	return cpu.keyboard.ReadKey()
}
