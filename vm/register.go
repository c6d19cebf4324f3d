package vm

import (
	"fmt"
	"strings"
)

// Word is the LC-3 machine word.
type Word uint16

// Register names one cell of the register file.
type Register uint8

// general purpose registers, followed by the internal ones
const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	PC   // program counter
	COND // condition flags
	REGISTER_COUNT
)

var registerNames = [REGISTER_COUNT]string{
	"R0", "R1", "R2", "R3", "R4", "R5", "R6", "R7", "PC", "COND",
}

func (r Register) String() string {
	if r >= REGISTER_COUNT {
		return fmt.Sprintf("Register(%d)", uint8(r))
	}
	return registerNames[r]
}

// Flag is a condition code. The values form the nzp bit set tested by BR.
type Flag Word

// flags
const (
	FLAG_POS Flag = 0b001
	FLAG_ZRO Flag = 0b010
	FLAG_NEG Flag = 0b100
)

func (fl Flag) String() string {
	switch fl {
	case FLAG_POS:
		return "P"
	case FLAG_ZRO:
		return "Z"
	case FLAG_NEG:
		return "N"
	}
	return fmt.Sprintf("Flag(%03b)", Word(fl))
}

// RegisterFile holds R0-R7, the program counter and the condition register.
type RegisterFile struct {
	reg [REGISTER_COUNT]Word
}

// NewRegisterFile returns a register file ready to run a user program:
// PC at UserSpaceStart and COND at FLAG_ZRO.
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{}
	rf.reg[PC] = UserSpaceStart
	rf.reg[COND] = Word(FLAG_ZRO)
	return rf
}

func (rf *RegisterFile) Read(r Register) Word {
	return rf.reg[r]
}

func (rf *RegisterFile) Write(r Register, value Word) {
	rf.reg[r] = value
}

// Cond returns the current condition flag.
func (rf *RegisterFile) Cond() Flag {
	return Flag(rf.reg[COND])
}

// UpdateFlags sets COND from the sign of r.
func (rf *RegisterFile) UpdateFlags(r Register) {
	if rf.reg[r] == 0 {
		rf.reg[COND] = Word(FLAG_ZRO)
	} else if rf.reg[r]>>15 != 0 {
		rf.reg[COND] = Word(FLAG_NEG)
	} else {
		rf.reg[COND] = Word(FLAG_POS)
	}
}

func (rf *RegisterFile) String() string {
	var sb strings.Builder
	for r := R0; r <= R7; r++ {
		fmt.Fprintf(&sb, "%v=0x%04x ", r, rf.reg[r])
	}
	fmt.Fprintf(&sb, "PC=0x%04x COND=%v", rf.reg[PC], rf.Cond())
	return sb.String()
}
