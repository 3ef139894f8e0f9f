package cpu

import (
	"strings"
)

// Opcode is the operation selector of an instruction.
type Opcode uint8

//go:generate go tool stringer -linecomment -type=Opcode
const (
	NOP = Opcode(0)  // nop
	JMP = Opcode(1)  // jmp
	BRA = Opcode(2)  // bra
	HLT = Opcode(3)  // hlt
	EQU = Opcode(4)  // equ
	NEQ = Opcode(5)  // neq
	GTN = Opcode(6)  // gtn
	LTN = Opcode(7)  // ltn
	ADD = Opcode(8)  // add
	SUB = Opcode(9)  // sub
	MLT = Opcode(10) // mlt
	DIV = Opcode(11) // div
	MOD = Opcode(12) // mod
	INC = Opcode(13) // inc
	DEC = Opcode(14) // dec
	QOP = Opcode(15) // qop
	EOR = Opcode(16) // eor
	AND = Opcode(17) // and
	XOR = Opcode(18) // xor
	NOT = Opcode(19) // not
	LSH = Opcode(20) // lsh
	RSH = Opcode(21) // rsh
	ROT = Opcode(22) // rot
	CAS = Opcode(23) // cas
	SET = Opcode(24) // set
	COP = Opcode(25) // cop
	LOD = Opcode(26) // lod
	SAV = Opcode(27) // sav
	QDC = Opcode(28) // qdc
	CDC = Opcode(29) // cdc
	REA = Opcode(30) // rea
	WRI = Opcode(31) // wri
)

// OPCODE_COUNT is the number of opcodes addressable by the five opcode bits.
const OPCODE_COUNT = 32

// Flag is a bit mask of the three instruction flags, in raw bit order.
type Flag uint8

const (
	FLAG_NONE = Flag(0)
	FLAG_A    = Flag(1 << 2) // Width: operate on the low byte only.
	FLAG_B    = Flag(1 << 1) // Signed, or direction for shifts and rotates.
	FLAG_C    = Flag(1 << 0) // Fill bit for cas.
	FLAG_MASK = FLAG_A | FLAG_B | FLAG_C
)

// String returns the flag letters, as used in the assembler suffix.
func (flags Flag) String() string {
	var sb strings.Builder
	if flags&FLAG_A != 0 {
		sb.WriteByte('a')
	}
	if flags&FLAG_B != 0 {
		sb.WriteByte('b')
	}
	if flags&FLAG_C != 0 {
		sb.WriteByte('c')
	}
	return sb.String()
}

// Form selects how the operand bytes of an instruction are interpreted.
type Form int

const (
	FORM_NONE = Form(0) // no operands
	FORM_R    = Form(1) // r
	FORM_RA   = Form(2) // r, a
	FORM_RAB  = Form(3) // r, a, b
	FORM_RL   = Form(4) // r, 16-bit literal in the a/b bytes
)

// Operands returns the number of assembler operands of the form.
func (form Form) Operands() int {
	switch form {
	case FORM_R:
		return 1
	case FORM_RA, FORM_RL:
		return 2
	case FORM_RAB:
		return 3
	}
	return 0
}

// HasR is true if the form carries the r register.
func (form Form) HasR() bool {
	return form != FORM_NONE
}

// HasA is true if the form carries the a register.
func (form Form) HasA() bool {
	return form == FORM_RA || form == FORM_RAB
}

// HasB is true if the form carries the b register.
func (form Form) HasB() bool {
	return form == FORM_RAB
}

// HasL is true if the form carries the 16-bit literal.
func (form Form) HasL() bool {
	return form == FORM_RL
}

// Shape is the field presence entry of an opcode: which flags are
// meaningful, and which operand form the raw bytes carry.
type Shape struct {
	Flags Flag
	Form  Form
}

var (
	shapeNone   = Shape{Flags: FLAG_NONE, Form: FORM_NONE}
	shapeJump   = Shape{Flags: FLAG_NONE, Form: FORM_R}
	shapeBranch = Shape{Flags: FLAG_A, Form: FORM_RA}
	shapeBinary = Shape{Flags: FLAG_A | FLAG_B | FLAG_C, Form: FORM_RAB}
	shapeUnary  = Shape{Flags: FLAG_A | FLAG_B, Form: FORM_RA}
	shapeIo     = Shape{Flags: FLAG_NONE, Form: FORM_RA}
	shapeQuery  = Shape{Flags: FLAG_A | FLAG_B | FLAG_C, Form: FORM_R}
	shapeSet    = Shape{Flags: FLAG_A, Form: FORM_RL}
)

// shapes is indexed by opcode, and must cover every opcode.
var shapes = [OPCODE_COUNT]Shape{
	NOP: shapeNone,
	HLT: shapeNone,
	JMP: shapeJump,
	BRA: shapeBranch,
	EQU: shapeBinary,
	NEQ: shapeBinary,
	GTN: shapeBinary,
	LTN: shapeBinary,
	ADD: shapeBinary,
	SUB: shapeBinary,
	MLT: shapeBinary,
	DIV: shapeBinary,
	MOD: shapeBinary,
	EOR: shapeBinary,
	AND: shapeBinary,
	XOR: shapeBinary,
	LSH: shapeBinary,
	RSH: shapeBinary,
	CAS: shapeBinary,
	QDC: shapeBinary,
	CDC: shapeBinary,
	INC: shapeUnary,
	DEC: shapeUnary,
	NOT: shapeUnary,
	ROT: shapeUnary,
	COP: shapeUnary,
	LOD: shapeUnary,
	SAV: shapeUnary,
	REA: shapeIo,
	WRI: shapeIo,
	QOP: shapeQuery,
	SET: shapeSet,
}

// Shape returns the field presence entry for the opcode.
func (op Opcode) Shape() (shape Shape, ok bool) {
	if int(op) >= len(shapes) {
		return
	}
	return shapes[op], true
}

var mnemonics = func() map[string]Opcode {
	m := make(map[string]Opcode, OPCODE_COUNT)
	for n := range OPCODE_COUNT {
		op := Opcode(n)
		m[op.String()] = op
	}
	return m
}()

// ParseOpcode returns the opcode for a lower case mnemonic.
func ParseOpcode(mnemonic string) (op Opcode, ok bool) {
	op, ok = mnemonics[mnemonic]
	return
}
