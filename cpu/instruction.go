package cpu

import (
	"fmt"
	"strings"
)

// INSTRUCTION_SIZE is the length in bytes of every encoded instruction.
const INSTRUCTION_SIZE = 4

// Raw is an encoded instruction.
type Raw [INSTRUCTION_SIZE]byte

// String returns the raw bytes as hex.
func (raw Raw) String() string {
	return fmt.Sprintf("%02x%02x_%02x%02x", raw[0], raw[1], raw[2], raw[3])
}

// Instruction is a decoded instruction. Fields and flags not used by
// the opcode's Shape are always zero.
type Instruction struct {
	Opcode Opcode
	AFlag  bool
	BFlag  bool
	CFlag  bool
	R      uint8  // Result register.
	A      uint8  // First operand register.
	B      uint8  // Second operand register.
	L      uint16 // Literal, set only.
}

// Flags returns the instruction flags as a mask.
func (ins Instruction) Flags() (flags Flag) {
	if ins.AFlag {
		flags |= FLAG_A
	}
	if ins.BFlag {
		flags |= FLAG_B
	}
	if ins.CFlag {
		flags |= FLAG_C
	}
	return
}

// setFlags sets the instruction flags from a mask.
func (ins *Instruction) setFlags(flags Flag) {
	ins.AFlag = flags&FLAG_A != 0
	ins.BFlag = flags&FLAG_B != 0
	ins.CFlag = flags&FLAG_C != 0
}

// Normalize returns the instruction with every field and flag its opcode
// does not use cleared.
func (ins Instruction) Normalize() (out Instruction) {
	out.Opcode = ins.Opcode
	shape, ok := ins.Opcode.Shape()
	if !ok {
		return
	}

	out.setFlags(ins.Flags() & shape.Flags)
	if shape.Form.HasR() {
		out.R = ins.R
	}
	if shape.Form.HasA() {
		out.A = ins.A
	}
	if shape.Form.HasB() {
		out.B = ins.B
	}
	if shape.Form.HasL() {
		out.L = ins.L
	}

	return
}

// Decode an instruction from its raw form. Only the bytes and bits
// belonging to the opcode's shape are read.
func Decode(raw Raw) (ins Instruction, err error) {
	ins.Opcode = Opcode((raw[0] >> 3) % OPCODE_COUNT)

	shape, ok := ins.Opcode.Shape()
	if !ok {
		err = ErrOpcodeDecode
		return
	}

	ins.setFlags(Flag(raw[0]) & shape.Flags)

	switch shape.Form {
	case FORM_NONE:
		// pass
	case FORM_R:
		ins.R = raw[1]
	case FORM_RA:
		ins.R = raw[1]
		ins.A = raw[2]
	case FORM_RAB:
		ins.R = raw[1]
		ins.A = raw[2]
		ins.B = raw[3]
	case FORM_RL:
		ins.R = raw[1]
		ins.L = (uint16(raw[2]) << 8) | uint16(raw[3])
	default:
		err = ErrOpcodeDecode
		return
	}

	return
}

// Encode an instruction to its raw form. Flags and fields the opcode does
// not use are encoded as zero. Opcodes outside of the five opcode bits are
// truncated.
func Encode(ins Instruction) (raw Raw) {
	ins.Opcode %= OPCODE_COUNT
	ins = ins.Normalize()

	shape, _ := ins.Opcode.Shape()

	raw[0] = (uint8(ins.Opcode) << 3) | uint8(ins.Flags())

	switch shape.Form {
	case FORM_R:
		raw[1] = ins.R
	case FORM_RA:
		raw[1] = ins.R
		raw[2] = ins.A
	case FORM_RAB:
		raw[1] = ins.R
		raw[2] = ins.A
		raw[3] = ins.B
	case FORM_RL:
		raw[1] = ins.R
		raw[2] = uint8(ins.L >> 8)
		raw[3] = uint8(ins.L)
	}

	return
}

// String returns the assembly language representation of the instruction.
func (ins Instruction) String() string {
	shape, ok := ins.Opcode.Shape()
	if !ok {
		return ins.Opcode.String()
	}

	words := []string{ins.Opcode.String()}
	if flags := ins.Flags() & shape.Flags; flags != FLAG_NONE {
		words[0] += "." + flags.String()
	}

	switch shape.Form {
	case FORM_R:
		words = append(words, fmt.Sprintf("r%d", ins.R))
	case FORM_RA:
		words = append(words, fmt.Sprintf("r%d", ins.R), fmt.Sprintf("r%d", ins.A))
	case FORM_RAB:
		words = append(words, fmt.Sprintf("r%d", ins.R), fmt.Sprintf("r%d", ins.A), fmt.Sprintf("r%d", ins.B))
	case FORM_RL:
		words = append(words, fmt.Sprintf("r%d", ins.R), fmt.Sprintf("0x%04x", ins.L))
	}

	return strings.Join(words, " ")
}
