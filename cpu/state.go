package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strings"
)

const (
	REGISTER_COUNT = 1 << 8  // Registers, addressed by a byte.
	MEMORY_SIZE    = 1 << 16 // Bytes of memory, addressed by a word.
)

// Register and memory addresses must cover their arrays exactly; every
// access then stays in range without a check.
var (
	_ [REGISTER_COUNT - (math.MaxUint8 + 1)]struct{}
	_ [(math.MaxUint8 + 1) - REGISTER_COUNT]struct{}
	_ [MEMORY_SIZE - (math.MaxUint16 + 1)]struct{}
	_ [(math.MaxUint16 + 1) - MEMORY_SIZE]struct{}
)

var (
	errLoadShort = errors.New(f("image too short"))
	errLoadLong  = errors.New(f("image too long"))
)

// State is the machine state: registers, memory and program counter.
type State struct {
	Pc       uint16                 // Address of the next instruction.
	Register [REGISTER_COUNT]uint16 // Register file.
	Memory   *[MEMORY_SIZE]byte     // Memory, nil once closed.
}

// NewState creates a zeroed machine state.
func NewState() (st *State) {
	st = &State{
		Memory: &[MEMORY_SIZE]byte{},
	}

	return
}

// Reset zeros the registers and program counter. Memory is kept.
func (st *State) Reset() {
	clear(st.Register[:])
	st.Pc = 0
}

// Close releases the memory of the state.
func (st *State) Close() (err error) {
	st.Memory = nil
	return
}

// Load fills memory from a flat image of exactly MEMORY_SIZE bytes.
// Memory is unchanged on failure.
func (st *State) Load(r io.Reader) (err error) {
	image := &[MEMORY_SIZE]byte{}

	n, err := io.ReadFull(r, image[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = errLoadShort
		}
		err = &ErrLoad{Size: n, Err: err}
		return
	}

	var extra [1]byte
	m, err := r.Read(extra[:])
	if m != 0 {
		err = &ErrLoad{Size: n + m, Err: errLoadLong}
		return
	}
	if err != nil && !errors.Is(err, io.EOF) {
		err = &ErrLoad{Size: n, Err: err}
		return
	}
	err = nil

	*st.Memory = *image

	return
}

// Image returns a copy of memory.
func (st *State) Image() (image []byte) {
	image = make([]byte, MEMORY_SIZE)
	copy(image, st.Memory[:])
	return
}

// ReadWord reads the big-endian word at addr. The second byte wraps
// around the end of memory.
func (st *State) ReadWord(addr uint16) uint16 {
	return (uint16(st.Memory[addr]) << 8) | uint16(st.Memory[addr+1])
}

// WriteWord writes a big-endian word at addr. The second byte wraps
// around the end of memory.
func (st *State) WriteWord(addr uint16, value uint16) {
	st.Memory[addr] = uint8(value >> 8)
	st.Memory[addr+1] = uint8(value)
}

// Raw returns the instruction bytes at addr, or false if fewer than
// INSTRUCTION_SIZE bytes of memory remain.
func (st *State) Raw(addr uint16) (raw Raw, ok bool) {
	if int(addr) > MEMORY_SIZE-INSTRUCTION_SIZE {
		return
	}
	copy(raw[:], st.Memory[addr:int(addr)+INSTRUCTION_SIZE])
	ok = true
	return
}

// Registers iterates over all register addresses and values.
func (st *State) Registers() iter.Seq2[uint8, uint16] {
	return func(yield func(uint8, uint16) bool) {
		for n, value := range st.Register {
			if !yield(uint8(n), value) {
				return
			}
		}
	}
}

// String returns the program counter and the non-zero registers.
func (st *State) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "% 5s: %04X\n", "pc", st.Pc)
	for n, value := range st.Registers() {
		if value == 0 {
			continue
		}
		fmt.Fprintf(&sb, "% 5s: %04X\n", fmt.Sprintf("r%d", n), value)
	}

	return sb.String()
}
