package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

// Version of the instruction set.
const (
	VERSION_MAJOR = 0
	VERSION_MINOR = 4
	VERSION_PATCH = 0
)

// Version returns the instruction set version as a string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VERSION_MAJOR, VERSION_MINOR, VERSION_PATCH)
}

// Port is the data channel interface of the processor.
//
// The processor passes register values through unchanged, and holds no
// opinion on what a channel represents.
type Port interface {
	// Query returns the status of a channel.
	Query(channel, value uint16) (status uint16, err error)
	// Configure sends a configuration value to a channel.
	Configure(channel, value uint16) (status uint16, err error)
	// Read a value from a channel address.
	Read(addr uint16) (value uint16, err error)
	// Write a value to a channel address.
	Write(addr uint16, value uint16) (err error)
}

// Status of the previously executed instruction, as reported by qop.
type Status uint16

const (
	STATUS_SUCCESS  = Status(1 << 0) // Instruction completed.
	STATUS_FAULT    = Status(1 << 1) // Instruction faulted, and halted the processor.
	STATUS_OVERFLOW = Status(1 << 2) // ALU result overflowed.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":      fmt.Sprintf("%d", MEMORY_SIZE),
	"REGISTER_COUNT":   fmt.Sprintf("%d", REGISTER_COUNT),
	"INSTRUCTION_SIZE": fmt.Sprintf("%d", INSTRUCTION_SIZE),
	"TRUE":             fmt.Sprintf("0x%x", TRUE),
	"FALSE":            fmt.Sprintf("0x%x", FALSE),
	"STATUS_SUCCESS":   fmt.Sprintf("0x%x", uint16(STATUS_SUCCESS)),
	"STATUS_FAULT":     fmt.Sprintf("0x%x", uint16(STATUS_FAULT)),
	"STATUS_OVERFLOW":  fmt.Sprintf("0x%x", uint16(STATUS_OVERFLOW)),
}

// Cpu is the execution engine. It exclusively owns its State.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	*State           // Machine state.
	Port   Port      // Data channel port, may be nil.
	Halted bool      // Set by hlt, or by a fault.
	Fault  *ErrFault // Fault that halted the processor, if any.
	Status Status    // Status of the previous instruction.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU with zeroed state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		State: NewState(),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Close releases the machine state.
func (cpu *Cpu) Close() (err error) {
	return cpu.State.Close()
}

// Reset the processor to run from address 0.
//   - Clears the registers and program counter, memory is kept.
//   - Clears the halted state and the fault.
//   - Keeps the status of the last instruction, so a restarted program
//     can query why the previous run stopped.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.State.Reset()
	cpu.Halted = false
	cpu.Fault = nil
	cpu.Ticks = 0
}

// Fetch the raw instruction at the program counter.
func (cpu *Cpu) Fetch() (raw Raw, err error) {
	raw, ok := cpu.State.Raw(cpu.Pc)
	if !ok {
		err = errors.Join(ErrMemory, ErrOutOfBounds)
		return
	}

	return
}

// Tick executes a single instruction cycle. Any fault halts the processor
// and is returned as an *ErrFault.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		return ErrHalted
	}

	var raw Raw
	var ins Instruction

	pc := cpu.Pc
	defer func() {
		if err != nil {
			err = cpu.fault(err, pc, raw, ins)
		}
	}()

	raw, err = cpu.Fetch()
	if err != nil {
		return
	}

	ins, err = Decode(raw)
	if err != nil {
		return
	}

	err = cpu.Execute(ins)

	return
}

// fault halts the processor, and records a snapshot of the fault.
func (cpu *Cpu) fault(err error, pc uint16, raw Raw, ins Instruction) error {
	fault := &ErrFault{
		Err:         err,
		Pc:          pc,
		Raw:         raw,
		Instruction: ins,
		Register:    cpu.Register,
	}

	if cpu.Verbose {
		log.Printf("%04x: %v", pc, fault)
	}

	cpu.Halted = true
	cpu.Fault = fault
	cpu.Status = STATUS_FAULT

	return fault
}

// Run ticks until the processor halts or faults.
func (cpu *Cpu) Run() (err error) {
	for !cpu.Halted {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// RunFor ticks until the processor halts or faults, or returns
// ErrTickLimit after limit instructions.
func (cpu *Cpu) RunFor(limit int) (err error) {
	for range limit {
		if cpu.Halted {
			return
		}
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	if !cpu.Halted {
		err = ErrTickLimit
	}

	return
}

// Execute executes a single decoded instruction at the program counter.
// On error no state is changed.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc, ins)
	}

	ins = ins.Normalize()
	flags := ins.Flags()

	next_pc := cpu.Pc + INSTRUCTION_SIZE
	status := STATUS_SUCCESS
	halt := false

	// Deferred effect of the instruction.
	var commit func()
	set_register := func(value uint16) {
		commit = func() { cpu.Register[ins.R] = value }
	}

	reg_r := cpu.Register[ins.R]
	reg_a := cpu.Register[ins.A]
	reg_b := cpu.Register[ins.B]

	switch ins.Opcode {
	case NOP:
		// pass
	case HLT:
		halt = true
	case JMP:
		next_pc = reg_r
	case BRA:
		if Truncate(flags, reg_a) != 0 {
			next_pc = reg_r
		}
	case EQU, NEQ, GTN, LTN,
		ADD, SUB, MLT, DIV, MOD,
		EOR, AND, XOR, LSH, RSH, CAS,
		INC, DEC, NOT, ROT, COP:
		var res Result
		res, err = Alu(ins.Opcode, flags, reg_a, reg_b)
		if err != nil {
			if errors.Is(err, ErrDivideByZero) {
				err = errors.Join(ErrArithmetic, err)
			}
			return
		}
		if res.Overflow {
			status |= STATUS_OVERFLOW
		}
		set_register(res.Value)
	case LOD:
		if ins.AFlag {
			set_register(uint16(cpu.Memory[reg_a]))
		} else {
			set_register(cpu.ReadWord(reg_a))
		}
	case SAV:
		if ins.AFlag {
			commit = func() { cpu.Memory[reg_a] = uint8(reg_r) }
		} else {
			commit = func() { cpu.WriteWord(reg_a, reg_r) }
		}
	case SET:
		set_register(Truncate(flags, ins.L))
	case QOP:
		set_register(cpu.query(flags))
	case QDC, CDC, REA, WRI:
		err = cpu.channel(ins, reg_r, reg_a, reg_b, set_register)
		if err != nil {
			return
		}
	default:
		err = ErrDispatch
		return
	}

	if commit != nil {
		commit()
	}

	cpu.Pc = next_pc
	cpu.Status = status
	cpu.Ticks++
	if halt {
		cpu.Halted = true
	}

	return
}

// query returns the qop value for the status of the previous instruction.
func (cpu *Cpu) query(flags Flag) uint16 {
	if flags == FLAG_NONE {
		return uint16(cpu.Status)
	}

	var selected Status
	if flags&FLAG_A != 0 {
		selected |= STATUS_SUCCESS
	}
	if flags&FLAG_B != 0 {
		selected |= STATUS_FAULT
	}
	if flags&FLAG_C != 0 {
		selected |= STATUS_OVERFLOW
	}

	return boolean(cpu.Status&selected != 0)
}

// channel delegates a data channel instruction to the port.
func (cpu *Cpu) channel(ins Instruction, reg_r, reg_a, reg_b uint16, set_register func(uint16)) (err error) {
	if cpu.Port == nil {
		err = errors.Join(ErrPort, ErrPortDetached)
		return
	}

	var value uint16
	switch ins.Opcode {
	case QDC:
		value, err = cpu.Port.Query(reg_a, reg_b)
	case CDC:
		value, err = cpu.Port.Configure(reg_a, reg_b)
	case REA:
		value, err = cpu.Port.Read(reg_a)
	case WRI:
		err = cpu.Port.Write(reg_a, reg_r)
		if err != nil {
			err = errors.Join(ErrPort, err)
		}
		return
	}
	if err != nil {
		err = errors.Join(ErrPort, err)
		return
	}

	set_register(value)

	return
}
