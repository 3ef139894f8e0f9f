package cpu

// TRUE and FALSE are the register values of relational results.
const (
	TRUE  = uint16(0xffff)
	FALSE = uint16(0)
)

// Result of an ALU operation.
type Result struct {
	Value    uint16 // Output value, zero extended from the operation width.
	Overflow bool   // Carry, borrow, signed overflow or bits shifted out.
}

// width is the operand width selected by FLAG_A.
type width struct {
	bits uint
	mask uint16
}

func widthOf(flags Flag) width {
	if flags&FLAG_A != 0 {
		return width{bits: 8, mask: 0x00ff}
	}
	return width{bits: 16, mask: 0xffff}
}

// signed interprets a width-truncated value as two's complement.
func (w width) signed(value uint16) int32 {
	sign := uint16(1) << (w.bits - 1)
	v := int32(value & w.mask)
	if value&sign != 0 {
		v -= int32(w.mask) + 1
	}
	return v
}

// fits is true if a signed value is representable at the width.
func (w width) fits(value int32) bool {
	limit := int32(1) << (w.bits - 1)
	return value >= -limit && value < limit
}

// Truncate returns value truncated to the width selected by flags.
func Truncate(flags Flag, value uint16) uint16 {
	return value & widthOf(flags).mask
}

// Alu performs an arithmetic, bitwise or relational operation on a and b.
//
// FLAG_A selects byte width for both operands and the result. FLAG_B
// selects signed operation for arithmetic and comparisons, arithmetic
// shift for rsh, and right-ward direction for rot and cas. FLAG_C is the
// bit shifted in by cas. Unary operations ignore b.
func Alu(op Opcode, flags Flag, a, b uint16) (res Result, err error) {
	w := widthOf(flags)
	signed := flags&FLAG_B != 0

	a &= w.mask
	b &= w.mask

	switch op {
	case ADD:
		res = add(w, signed, a, b)
	case SUB:
		res = sub(w, signed, a, b)
	case INC:
		res = add(w, signed, a, 1)
	case DEC:
		res = sub(w, signed, a, 1)
	case MLT:
		res = mlt(w, signed, a, b)
	case DIV, MOD:
		res, err = divmod(w, signed, op == MOD, a, b)
	case EOR:
		res.Value = a | b
	case AND:
		res.Value = a & b
	case XOR:
		res.Value = a ^ b
	case NOT:
		res.Value = ^a & w.mask
	case COP:
		res.Value = a
	case LSH:
		res = cascade(w, false, false, a, b)
	case RSH:
		if signed {
			res = arithmeticShift(w, a, b)
		} else {
			res = cascade(w, true, false, a, b)
		}
	case CAS:
		res = cascade(w, signed, flags&FLAG_C != 0, a, b)
	case ROT:
		res = rotate(w, signed, a)
	case EQU:
		res.Value = boolean(a == b)
	case NEQ:
		res.Value = boolean(a != b)
	case GTN:
		if signed {
			res.Value = boolean(w.signed(a) > w.signed(b))
		} else {
			res.Value = boolean(a > b)
		}
	case LTN:
		if signed {
			res.Value = boolean(w.signed(a) < w.signed(b))
		} else {
			res.Value = boolean(a < b)
		}
	default:
		err = ErrOpcodeAlu
	}

	return
}

func boolean(value bool) uint16 {
	if value {
		return TRUE
	}
	return FALSE
}

func add(w width, signed bool, a, b uint16) (res Result) {
	sum := uint32(a) + uint32(b)
	res.Value = uint16(sum) & w.mask
	if signed {
		res.Overflow = !w.fits(w.signed(a) + w.signed(b))
	} else {
		res.Overflow = sum > uint32(w.mask)
	}
	return
}

func sub(w width, signed bool, a, b uint16) (res Result) {
	res.Value = (a - b) & w.mask
	if signed {
		res.Overflow = !w.fits(w.signed(a) - w.signed(b))
	} else {
		res.Overflow = b > a
	}
	return
}

func mlt(w width, signed bool, a, b uint16) (res Result) {
	product := uint32(a) * uint32(b)
	res.Value = uint16(product) & w.mask
	if signed {
		res.Overflow = !w.fits(w.signed(a) * w.signed(b))
	} else {
		res.Overflow = product > uint32(w.mask)
	}
	return
}

func divmod(w width, signed bool, modulo bool, a, b uint16) (res Result, err error) {
	if b == 0 {
		err = ErrDivideByZero
		return
	}

	if !signed {
		if modulo {
			res.Value = a % b
		} else {
			res.Value = a / b
		}
		return
	}

	sa, sb := w.signed(a), w.signed(b)
	var value int32
	if modulo {
		value = sa % sb
	} else {
		value = sa / sb
		// Only MIN / -1 leaves the range.
		res.Overflow = !w.fits(value)
	}
	res.Value = uint16(value) & w.mask

	return
}

// cascade shifts a by n bits, filling the vacated bits with fill.
func cascade(w width, right bool, fill bool, a, n uint16) (res Result) {
	if uint(n) >= w.bits {
		res.Overflow = a != 0
		if fill {
			res.Value = w.mask
		}
		return
	}

	filler := uint16(0)
	if fill {
		filler = uint16(1)<<n - 1
	}

	if right {
		res.Overflow = a&(uint16(1)<<n-1) != 0
		res.Value = (a >> n) | (filler << (w.bits - uint(n)))
	} else {
		wide := uint32(a) << n
		res.Overflow = wide&^uint32(w.mask) != 0
		res.Value = uint16(wide) | filler
	}
	res.Value &= w.mask

	return
}

func arithmeticShift(w width, a, n uint16) (res Result) {
	if uint(n) >= w.bits {
		n = uint16(w.bits - 1)
		res.Overflow = a != 0
	} else {
		res.Overflow = a&(uint16(1)<<n-1) != 0
	}
	res.Value = uint16(w.signed(a)>>n) & w.mask
	return
}

// rotate a by one bit, left or right, within the width.
func rotate(w width, right bool, a uint16) (res Result) {
	if right {
		res.Value = (a >> 1) | (a << (w.bits - 1))
	} else {
		res.Value = (a << 1) | (a >> (w.bits - 1))
	}
	res.Value &= w.mask
	return
}
