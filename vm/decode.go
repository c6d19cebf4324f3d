package vm

import "fmt"

// Opcode is the 4-bit operation selector in bits 15..12 of an instruction.
type Opcode uint8

// opcodes
const (
	OP_BR   Opcode = iota /* branch */
	OP_ADD                /* add */
	OP_LD                 /* load */
	OP_ST                 /* store */
	OP_JSR                /* jump register */
	OP_AND                /* bitwise and */
	OP_LDR                /* load register */
	OP_STR                /* store register */
	OP_RTI                /* unused */
	OP_NOT                /* bitwise not */
	OP_LDI                /* load indirect */
	OP_STI                /* store indirect */
	OP_JMP                /* jump */
	OP_RES                /* reserved (unused) */
	OP_LEA                /* load effective address */
	OP_TRAP               /* execute trap */
	OPCODE_COUNT
)

var opcodeNames = [OPCODE_COUNT]string{
	OP_BR:   "BR",
	OP_ADD:  "ADD",
	OP_LD:   "LD",
	OP_ST:   "ST",
	OP_JSR:  "JSR",
	OP_AND:  "AND",
	OP_LDR:  "LDR",
	OP_STR:  "STR",
	OP_RTI:  "RTI",
	OP_NOT:  "NOT",
	OP_LDI:  "LDI",
	OP_STI:  "STI",
	OP_JMP:  "JMP",
	OP_RES:  "RES",
	OP_LEA:  "LEA",
	OP_TRAP: "TRAP",
}

func (op Opcode) String() string {
	if op >= OPCODE_COUNT {
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
	return opcodeNames[op]
}

// Decode returns the opcode of instr. Every 16-bit word decodes.
func Decode(instr Word) Opcode {
	return Opcode(instr >> 12)
}

// instruction gives named access to the operand fields of a word.
type instruction Word

func (in instruction) opcode() Opcode { return Decode(Word(in)) }
func (in instruction) dr() Register { return Register((in >> 9) & 0b111) }
func (in instruction) sr1() Register { return Register((in >> 6) & 0b111) }
func (in instruction) sr2() Register { return Register(in & 0b111) }
func (in instruction) baseR() Register { return in.sr1() }
func (in instruction) immFlag() bool { return (in>>5)&0b1 == 1 }
func (in instruction) jsrFlag() bool { return (in>>11)&0b1 == 1 }
func (in instruction) nzp() Flag { return Flag((in >> 9) & 0b111) }
func (in instruction) imm5() Word { return sext(Word(in)&0x1F, 5) }
func (in instruction) offset6() Word { return sext(Word(in)&0x3F, 6) }
func (in instruction) pcOffset9() Word { return sext(Word(in)&0x1FF, 9) }
func (in instruction) pcOffset11() Word { return sext(Word(in)&0x7FF, 11) }
func (in instruction) trapVect() TrapVector { return TrapVector(in & 0xFF) }

// sext sign extends the low bitCount bits of x to a full word.
func sext(x Word, bitCount uint) Word {
	if (x>>(bitCount-1))&0b1 != 0 {
		x |= 0xFFFF << bitCount
	}
	return x
}
