package cpu

import (
	"errors"

	"github.com/ezrec/risky/translate"
)

var f = translate.From

var (
	// Fault classes
	ErrArithmetic = errors.New(f("arithmetic fault"))
	ErrMemory     = errors.New(f("memory fault"))
	ErrPort       = errors.New(f("port fault"))

	// Cpu errors
	ErrHalted       = errors.New(f("halted"))
	ErrTickLimit    = errors.New(f("tick limit reached"))
	ErrDivideByZero = errors.New(f("divide by zero"))
	ErrOutOfBounds  = errors.New(f("fetch out of bounds"))
	ErrPortDetached = errors.New(f("no port attached"))
	ErrDispatch     = errors.New(f("no dispatch for opcode"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrOpcodeAlu    = errors.New(f("alu"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOrgBackwards       = errors.New(f(".org before current address"))
	ErrImageOverflow      = errors.New(f("program exceeds memory"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrFlagInvalid        = errors.New(f("flag invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrFault is a fatal fault of the processor, with a snapshot of the
// machine at the faulting instruction. None of the instruction's effects
// have been applied.
type ErrFault struct {
	Err         error
	Pc          uint16
	Raw         Raw
	Instruction Instruction
	Register    [REGISTER_COUNT]uint16
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%04x [%v] %v: %v", err.Pc, err.Raw, err.Instruction, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrLoad is a failure to load a memory image.
type ErrLoad struct {
	Size int // Bytes read before the failure.
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("load %d of %d bytes: %v", err.Size, MEMORY_SIZE, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err *ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err *ErrMacro) Unwrap() error {
	return err.Err
}
