package cpu

import (
	"fmt"
	"io"
	"maps"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/risky/internal"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cpu: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Line maps a range of memory to a source line.
type Line struct {
	Addr   uint16 `cbor:"1,keyasint"`
	Size   uint32 `cbor:"2,keyasint"`
	LineNo int    `cbor:"3,keyasint"`
}

// Symbols is the debug information of an assembled program, stored next
// to its image.
type Symbols struct {
	Version string            `cbor:"1,keyasint"`
	Source  string            `cbor:"2,keyasint,omitempty"` // source file name
	Labels  map[string]uint16 `cbor:"3,keyasint"`
	Lines   []Line            `cbor:"4,keyasint,omitempty"` // sorted by address
}

// Marshal writes the symbols in CBOR form.
func (sym *Symbols) Marshal(w io.Writer) (err error) {
	data, err := cborEncMode.Marshal(sym)
	if err != nil {
		return
	}

	_, err = w.Write(data)

	return
}

// UnmarshalSymbols reads symbols written by Symbols.Marshal.
func UnmarshalSymbols(r io.Reader) (sym *Symbols, err error) {
	sym = &Symbols{}
	err = cbor.NewDecoder(r).Decode(sym)
	if err != nil {
		sym = nil
		err = fmt.Errorf("cpu: unmarshal symbols: %w", err)
		return
	}

	return
}

// LineNo returns the source line containing pc, or 0.
func (sym *Symbols) LineNo(pc uint16) (lineno int) {
	for _, line := range sym.Lines {
		if uint32(pc) >= uint32(line.Addr) && uint32(pc) < uint32(line.Addr)+line.Size {
			return line.LineNo
		}
	}

	return
}

// Label returns the nearest label at or before pc, and the offset from it.
func (sym *Symbols) Label(pc uint16) (label string, offset uint16, ok bool) {
	for name, addr := range internal.IterSeq2Sorted(maps.All(sym.Labels)) {
		if addr > pc {
			continue
		}
		if !ok || pc-addr < offset {
			label, offset, ok = name, pc-addr, true
		}
	}

	return
}
