// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"iter"
	"maps"
	"slices"
)

// Statement is a single assembled source statement.
type Statement struct {
	LineNo    int           // Source line number.
	Addr      uint16        // Memory address of the statement.
	Words     []string      // Source words of the statement.
	Codes     []Instruction // Instructions, if any.
	Data      []byte        // Data bytes, if any.
	LinkLabel string        // Label to link into the first instruction literal.
}

// Size in bytes of the statement in memory.
func (st *Statement) Size() int {
	return len(st.Codes)*INSTRUCTION_SIZE + len(st.Data)
}

// Bytes returns the encoded statement.
func (st *Statement) Bytes() (data []byte) {
	data = make([]byte, 0, st.Size())
	for _, ins := range st.Codes {
		raw := Encode(ins)
		data = append(data, raw[:]...)
	}
	data = append(data, st.Data...)
	return
}

// Program is an assembled program listing.
type Program struct {
	Statements []Statement
	Labels     map[string]uint16
}

// Debug locates the statement containing an address.
type Debug struct {
	*Statement
	Index int // Instruction index in the statement, or -1 in data.
}

// Debug returns the statement containing pc. The Statement is nil if pc
// is outside of the program.
func (prog *Program) Debug(pc uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		offset := int(pc) - int(st.Addr)
		if offset < 0 || offset >= st.Size() {
			continue
		}
		dbg = Debug{
			Statement: &prog.Statements[n],
			Index:     -1,
		}
		if offset < len(st.Codes)*INSTRUCTION_SIZE {
			dbg.Index = offset / INSTRUCTION_SIZE
		}
		break
	}

	return
}

// Image returns the flat memory image of the program, padded with zeros to
// MEMORY_SIZE bytes.
func (prog *Program) Image() (image []byte) {
	image = make([]byte, MEMORY_SIZE)
	for _, st := range prog.Statements {
		copy(image[st.Addr:], st.Bytes())
	}

	return
}

// Codes iterates over the addresses and instructions of the program.
func (prog *Program) Codes() iter.Seq2[uint16, Instruction] {
	return func(yield func(addr uint16, ins Instruction) bool) {
		for _, st := range prog.Statements {
			for n, ins := range st.Codes {
				if !yield(st.Addr+uint16(n*INSTRUCTION_SIZE), ins) {
					return
				}
			}
		}
	}
}

// Symbols returns the debug symbols of the program.
func (prog *Program) Symbols(source string) (sym *Symbols) {
	sym = &Symbols{
		Version: Version(),
		Source:  source,
		Labels:  maps.Clone(prog.Labels),
	}
	if sym.Labels == nil {
		sym.Labels = map[string]uint16{}
	}

	for _, st := range prog.Statements {
		sym.Lines = append(sym.Lines, Line{
			Addr:   st.Addr,
			Size:   uint32(st.Size()),
			LineNo: st.LineNo,
		})
	}

	slices.SortStableFunc(sym.Lines, func(a, b Line) int {
		return int(a.Addr) - int(b.Addr)
	})

	return
}

// Disassemble iterates over count instructions of a memory image, starting
// at address from. Iteration stops early at the end of the image.
func Disassemble(image []byte, from uint16, count int) iter.Seq2[uint16, Instruction] {
	return func(yield func(addr uint16, ins Instruction) bool) {
		addr := int(from)
		for range count {
			if addr+INSTRUCTION_SIZE > len(image) {
				return
			}
			var raw Raw
			copy(raw[:], image[addr:addr+INSTRUCTION_SIZE])
			ins, err := Decode(raw)
			if err != nil {
				return
			}
			if !yield(uint16(addr), ins) {
				return
			}
			addr += INSTRUCTION_SIZE
		}
	}
}
