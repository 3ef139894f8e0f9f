// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = func() map[string]string {
	equ := maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return equ
}()

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a single pass macro assembler for the RISKY processor.
type Assembler struct {
	Verbose    bool        // If set, verbosely logs the assembler actions.
	Statements []Statement // List of assembled statements.

	predefine map[string]string   // Predefines
	Label     map[string]uint16   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr      int // Address of the next statement.
	expansion int // Count of macro expansions.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil || v64 > 0xffff || v64 < -0x8000 {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)
	if invert {
		value = ^value
	}

	return
}

// registerOf returns the register address of a word.
func (asm *Assembler) registerOf(word string) (reg uint8, err error) {
	num, ok := strings.CutPrefix(word, "r")
	if !ok {
		err = ErrParseRegister(word)
		return
	}

	v64, err := strconv.ParseUint(num, 10, 8)
	if err != nil {
		err = ErrParseRegister(word)
		return
	}

	reg = uint8(v64)
	return
}

// literalOf returns the value of a word, or the label it refers to.
func (asm *Assembler) literalOf(word string) (value uint16, label string, err error) {
	value, err = asm.valueOf(word)
	if err != nil && reLabel.MatchString(word) {
		label = word
		err = nil
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// parseLine parses a single line into words, handling equates, labels and
// macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint16, 16)
		}
		asm.Label[label] = uint16(asm.addr)
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		prefix := fmt.Sprintf("%v_%v_", name, asm.expansion)
		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", prefix)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = map[string]uint16{}
	asm.Statements = asm.Statements[:0]
	asm.addr = 0
	asm.expansion = 0
	asm.Macro = map[string](*Macro){}
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statements {
		st := &asm.Statements[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		label := st.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = st.LineNo
			line = strings.Join(st.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		switch {
		case len(st.Codes) > 0:
			st.Codes[0].L = addr
		case len(st.Data) >= 2:
			st.Data[0] = uint8(addr >> 8)
			st.Data[1] = uint8(addr)
		}
	}

	prog = &Program{
		Statements: asm.Statements,
		Labels:     maps.Clone(asm.Label),
	}
	asm.Statements = nil

	return
}

// parseMnemonic splits a mnemonic into its opcode and flags.
func parseMnemonic(word string) (op Opcode, flags Flag, err error) {
	name, suffix, _ := strings.Cut(word, ".")

	op, ok := ParseOpcode(name)
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	shape, _ := op.Shape()
	for _, letter := range suffix {
		var flag Flag
		switch letter {
		case 'a':
			flag = FLAG_A
		case 'b':
			flag = FLAG_B
		case 'c':
			flag = FLAG_C
		default:
			err = ErrFlagInvalid
			return
		}
		if shape.Flags&flag == 0 {
			err = ErrFlagInvalid
			return
		}
		flags |= flag
	}

	return
}

// instruction assembles a single mnemonic and its operands.
func (asm *Assembler) instruction(mnemonic string, args []string) (ins Instruction, label string, err error) {
	op, flags, err := parseMnemonic(mnemonic)
	if err != nil {
		return
	}

	shape, _ := op.Shape()
	if len(args) < shape.Form.Operands() {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > shape.Form.Operands() {
		err = ErrOpcodeExtraArgs
		return
	}

	ins.Opcode = op
	ins.setFlags(flags)

	if shape.Form.HasR() {
		ins.R, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
	}
	if shape.Form.HasA() {
		ins.A, err = asm.registerOf(args[1])
		if err != nil {
			return
		}
	}
	if shape.Form.HasB() {
		ins.B, err = asm.registerOf(args[2])
		if err != nil {
			return
		}
	}
	if shape.Form.HasL() {
		ins.L, label, err = asm.literalOf(args[1])
		if err != nil {
			return
		}
	}

	return
}

// data assembles the values of a .word or .byte directive.
func (asm *Assembler) data(size int, args []string) (data []byte, label string, err error) {
	if len(args) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	for n, word := range args {
		var value uint16
		if size == 2 && n == 0 && len(args) == 1 {
			value, label, err = asm.literalOf(word)
		} else {
			value, err = asm.valueOf(word)
		}
		if err != nil {
			return
		}
		if size == 2 {
			data = append(data, uint8(value>>8), uint8(value))
		} else {
			data = append(data, uint8(value))
		}
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Instruction
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || (len(codes) == 0 && len(data) == 0) {
			return
		}
		st := Statement{
			LineNo:    lineno,
			Addr:      uint16(asm.addr),
			Words:     initial_words,
			Codes:     codes,
			Data:      data,
			LinkLabel: label,
		}
		if asm.addr+st.Size() > MEMORY_SIZE {
			err = ErrImageOverflow
			return
		}
		if asm.Verbose {
			log.Printf("%04x: %v", st.Addr, codes)
		}
		asm.Statements = append(asm.Statements, st)
		asm.addr += st.Size()
	}()

	mnemonic, suffix, _ := strings.Cut(words[0], ".")
	if len(mnemonic) == 0 {
		// Directive
		mnemonic = "." + suffix
		suffix = ""
	}
	args := words[1:]

	// Pseudo-op expansion
	switch mnemonic {
	case ".org":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var addr uint16
		addr, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if int(addr) < asm.addr {
			err = ErrOrgBackwards
			return
		}
		asm.addr = int(addr)
	case ".word":
		data, label, err = asm.data(2, args)
	case ".byte":
		data, _, err = asm.data(1, args)
	case "exit":
		if len(args) > 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		codes = append(codes, Instruction{Opcode: HLT})
	case "jump":
		// jump rT TARGET => set rT TARGET; jmp rT
		if len(args) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var set, jmp Instruction
		set, label, err = asm.instruction("set", args)
		if err != nil {
			return
		}
		jmp, _, err = asm.instruction("jmp", args[:1])
		if err != nil {
			return
		}
		codes = append(codes, set, jmp)
	case "branch":
		// branch rT rC TARGET => set rT TARGET; bra rT rC
		if len(args) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		bra_mnemonic := "bra"
		if len(suffix) > 0 {
			bra_mnemonic += "." + suffix
		}
		var set, bra Instruction
		set, label, err = asm.instruction("set", []string{args[0], args[2]})
		if err != nil {
			return
		}
		bra, _, err = asm.instruction(bra_mnemonic, args[:2])
		if err != nil {
			return
		}
		codes = append(codes, set, bra)
	default:
		if strings.HasPrefix(mnemonic, ".") {
			err = ErrInstructionInvalid
			return
		}
		var ins Instruction
		ins, label, err = asm.instruction(words[0], args)
		if err != nil {
			return
		}
		codes = append(codes, ins)
	}

	return
}
