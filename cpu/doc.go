// Package cpu implements the RISKY virtual processor and its assembler.
//
// The processor has 256 sixteen-bit registers (r0-r255), 64KiB of byte
// addressable memory and a 16-bit program counter. Every instruction is
// four bytes: a five bit opcode and three flag bits in the first byte,
// the result register in the second, and either two operand registers
// or a 16-bit big-endian literal in the last two. Which fields and flags
// an opcode uses is fixed by its Shape; decoding ignores everything else.
//
// Data channel instructions (qdc, cdc, rea, wri) are delegated to a Port
// supplied by the caller.
//
// The assembler provides a small macro assembly language for the instruction
// set, supporting labels, equates and compile-time expression evaluation.
package cpu
