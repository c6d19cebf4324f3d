// Package vm implements the LC-3, a 16-bit educational computer.
//
// A VM owns a Memory of 65,536 words, a RegisterFile with eight general
// purpose registers, the program counter and the condition flags, and a
// Console that serves both as the memory-mapped keyboard (KBSR/KBDR) and
// as the display for the trap routines. Run fetches, decodes and executes
// instructions until the program executes TRAP HALT.
package vm
