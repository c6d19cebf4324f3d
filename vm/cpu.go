package vm

import (
	"context"
	"log"
)

// How many instructions run between checks for cancellation.
const ctxCheckInterval = 1 << 12

type cpu struct {
	running  bool
	reg      *RegisterFile
	memory   *Memory
	keyboard Keyboard
	display  Display
	cycles   uint64

	maxCycles uint64 // 0 means no limit

	// trace receives one line per executed instruction. nil disables tracing.
	trace *log.Logger
}

func newCpu(memory *Memory, keyboard Keyboard, display Display) *cpu {
	return &cpu{
		reg:      NewRegisterFile(),
		memory:   memory,
		keyboard: keyboard,
		display:  display,
	}
}

// run executes instructions until HALT, a fatal error or ctx is done.
func (cpu *cpu) run(ctx context.Context) error {
	cpu.running = true

	for cpu.running {
		if cpu.cycles%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				cpu.stop()
				return err
			}
		}
		if cpu.maxCycles != 0 && cpu.cycles >= cpu.maxCycles {
			cpu.stop()
			return ErrInstructionLimit
		}
		if err := cpu.step(); err != nil {
			cpu.stop()
			return err
		}
	}

	return nil
}

func (cpu *cpu) stop() {
	cpu.running = false
}

// step fetches, decodes and executes a single instruction.
func (cpu *cpu) step() error {
	addr := cpu.reg.Read(PC)
	instr := instruction(cpu.memory.Read(addr))
	cpu.reg.Write(PC, addr+1)
	cpu.cycles++

	err := cpu.execute(addr, instr)
	if cpu.trace != nil {
		cpu.trace.Printf("0x%04x %-4v 0x%04x %v", addr, instr.opcode(), Word(instr), cpu.reg)
	}
	return err
}

// execute performs instr, fetched from addr. PC already points past it.
func (cpu *cpu) execute(addr Word, instr instruction) error {
	reg := cpu.reg

	switch instr.opcode() {
	case OP_ADD:
		dr, sr1 := instr.dr(), instr.sr1()
		if instr.immFlag() {
			reg.Write(dr, reg.Read(sr1)+instr.imm5())
		} else {
			reg.Write(dr, reg.Read(sr1)+reg.Read(instr.sr2()))
		}
		reg.UpdateFlags(dr)

	case OP_AND:
		dr, sr1 := instr.dr(), instr.sr1()
		if instr.immFlag() {
			reg.Write(dr, reg.Read(sr1)&instr.imm5())
		} else {
			reg.Write(dr, reg.Read(sr1)&reg.Read(instr.sr2()))
		}
		reg.UpdateFlags(dr)

	case OP_NOT:
		dr := instr.dr()
		reg.Write(dr, ^reg.Read(instr.sr1()))
		reg.UpdateFlags(dr)

	case OP_BR:
		if instr.nzp()&reg.Cond() != 0 {
			reg.Write(PC, reg.Read(PC)+instr.pcOffset9())
		}

	case OP_JMP:
		// JMP R7 is RET
		reg.Write(PC, reg.Read(instr.baseR()))

	case OP_JSR:
		// Read the base register before linking, JSRR R7 adds the old R7.
		pc := reg.Read(PC)
		if instr.jsrFlag() {
			pc += instr.pcOffset11()
		} else {
			pc += reg.Read(instr.baseR())
		}
		reg.Write(R7, reg.Read(PC))
		reg.Write(PC, pc)

	case OP_LD:
		dr := instr.dr()
		reg.Write(dr, cpu.memory.Read(reg.Read(PC)+instr.pcOffset9()))
		reg.UpdateFlags(dr)

	case OP_LDI:
		dr := instr.dr()
		reg.Write(dr, cpu.memory.Read(cpu.memory.Read(reg.Read(PC)+instr.pcOffset9())))
		reg.UpdateFlags(dr)

	case OP_LDR:
		dr := instr.dr()
		reg.Write(dr, cpu.memory.Read(reg.Read(instr.baseR())+instr.offset6()))
		reg.UpdateFlags(dr)

	case OP_LEA:
		dr := instr.dr()
		reg.Write(dr, reg.Read(PC)+instr.pcOffset9())
		reg.UpdateFlags(dr)

	case OP_ST:
		cpu.memory.Write(reg.Read(PC)+instr.pcOffset9(), reg.Read(instr.dr()))

	case OP_STI:
		cpu.memory.Write(cpu.memory.Read(reg.Read(PC)+instr.pcOffset9()), reg.Read(instr.dr()))

	case OP_STR:
		cpu.memory.Write(reg.Read(instr.baseR())+instr.offset6(), reg.Read(instr.dr()))

	case OP_TRAP:
		return cpu.trap(addr, instr.trapVect())

	case OP_RTI, OP_RES:
		return ErrOpcode{Addr: addr, Instr: Word(instr)}
	}

	return nil
}
