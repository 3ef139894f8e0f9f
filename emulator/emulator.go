// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"
	"os"
	"time"

	"github.com/ezrec/risky/cpu"
	"github.com/ezrec/risky/internal"
	"github.com/ezrec/risky/io"
)

// Addresses of the words of the built-in monitor ROM.
const (
	MONITOR_VERSION_MAJOR = 0 // Instruction set major version.
	MONITOR_VERSION_MINOR = 1 // Instruction set minor version.
	MONITOR_VERSION_PATCH = 2 // Instruction set patch version.
	MONITOR_MEMORY_PAGES  = 3 // Memory size, in 256 byte pages.
)

var _emulator_defines = map[string]string{
	"MONITOR_VERSION_MAJOR": fmt.Sprintf("%d", MONITOR_VERSION_MAJOR),
	"MONITOR_VERSION_MINOR": fmt.Sprintf("%d", MONITOR_VERSION_MINOR),
	"MONITOR_VERSION_PATCH": fmt.Sprintf("%d", MONITOR_VERSION_PATCH),
	"MONITOR_MEMORY_PAGES":  fmt.Sprintf("%d", MONITOR_MEMORY_PAGES),
}

// Emulator state. CPU + IO channels.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the loaded program, if any.
	Symbols  *cpu.Symbols // Debug symbols of the loaded image, if any.
	Config   Config       // Configuration the emulator was created with.

	Dump stdio.Writer // If set, the machine state is written after every tick.

	Bus       io.Bus       // Data channel bus.
	Temporary io.Temporary // Temporary buffer IO channel.
	Tape      io.Tape      // Tape IO channel.
	Depot     io.Depot     // Depot (Drum) IO channel.
	Monitor   io.Rom       // Monitor ROM IO channel.
}

// NewEmulator creates a new emulator. The depot and the monitor ROM are
// loaded from the paths in the configuration, if set.
func NewEmulator(cfg Config) (emu *Emulator, err error) {
	emu = &Emulator{
		Verbose: cfg.Verbose,
		Cpu:     cpu.NewCpu(),
		Config:  cfg,
	}

	emu.Temporary.Capacity = cfg.Temporary.Capacity
	if emu.Temporary.Capacity == 0 {
		emu.Temporary.Capacity = EMULATOR_TEMP_CAPACITY
	}

	emu.Monitor.Data = []uint16{
		cpu.VERSION_MAJOR,
		cpu.VERSION_MINOR,
		cpu.VERSION_PATCH,
		cpu.MEMORY_SIZE >> 8,
	}
	if len(cfg.Monitor) != 0 {
		var data []byte
		data, err = os.ReadFile(cfg.Monitor)
		if err != nil {
			return
		}
		if len(data) > io.ROM_SIZE*2 {
			err = &ErrConfig{Path: cfg.Monitor, Err: ErrMonitorSize}
			return
		}
		emu.Monitor = *io.NewRom(data)
	}

	if len(cfg.Depot) != 0 {
		err = emu.Depot.Unmarshal(io.DirFS(cfg.Depot))
		if err != nil {
			return
		}
	}

	emu.Bus.SetChannel(io.CHANNEL_ID_TEMP, &emu.Temporary)
	emu.Bus.SetChannel(io.CHANNEL_ID_DEPOT, &emu.Depot)
	emu.Bus.SetChannel(io.CHANNEL_ID_TAPE, &emu.Tape)
	emu.Bus.SetChannel(io.CHANNEL_ID_MONITOR, &emu.Monitor)
	emu.Cpu.Port = &emu.Bus

	emu.Reset()

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Bus.Defines(),
	)
}

// Assembler returns an assembler with the emulator defines predefined.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	return
}

// Close the emulator, saving the depot drums if a depot is configured.
func (emu *Emulator) Close() (err error) {
	if len(emu.Config.Depot) != 0 {
		err = emu.Depot.Marshal(io.DirFS(emu.Config.Depot))
	}

	err = errors.Join(err, emu.Cpu.Close())

	return
}

// Load a memory image, and reset.
func (emu *Emulator) Load(image stdio.Reader) (err error) {
	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	emu.Reset()

	return
}

// LoadProgram loads the image of an assembled program, and its listing.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	image := prog.Image()
	err = emu.Cpu.Load(bytes.NewReader(image))
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Symbols = nil
	emu.Reset()

	return
}

// Reset the processor, and rewind all channels.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Bus.Rewind()
}

// LineNo returns the source line number of an address, or 0.
func (emu *Emulator) LineNo(pc uint16) int {
	if emu.Program != nil {
		dbg := emu.Program.Debug(pc)
		if dbg.Statement != nil {
			return dbg.LineNo
		}
	}

	if emu.Symbols != nil {
		return emu.Symbols.LineNo(pc)
	}

	return 0
}

// Tick performs a single tick of the emulator. Done is set once the
// processor has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted {
		done = true
		return
	}

	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: emu.LineNo(pc), Pc: pc, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.Dump != nil {
		_, err = fmt.Fprintf(emu.Dump, "%v\n", emu.Cpu.State)
		if err != nil {
			return
		}
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks until the processor halts, faults, the context is done, or the
// configured tick limit is reached. Ticks are paced by the configured delay.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	var pace <-chan time.Time
	if emu.Config.Delay > 0 {
		ticker := time.NewTicker(emu.Config.Delay)
		defer ticker.Stop()
		pace = ticker.C
	}

	for ticks := 0; ; ticks++ {
		if emu.Config.Limit > 0 && ticks >= emu.Config.Limit {
			pc := emu.Cpu.Pc
			err = &ErrRuntime{LineNo: emu.LineNo(pc), Pc: pc, Err: cpu.ErrTickLimit}
			return
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-pace:
			}
		} else if ctx.Err() != nil {
			err = ctx.Err()
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			if emu.Verbose {
				log.Printf("emulator: stopped after %d ticks", emu.Cpu.Ticks)
			}
			return
		}
	}
}

// Labels returns the known labels, sorted by name.
func (emu *Emulator) Labels() iter.Seq2[string, uint16] {
	labels := map[string]uint16{}
	if emu.Symbols != nil {
		maps.Copy(labels, emu.Symbols.Labels)
	}
	if emu.Program != nil {
		maps.Copy(labels, emu.Program.Labels)
	}

	return internal.IterSeq2Sorted(maps.All(labels))
}

// Where describes an address by its nearest label and source line.
func (emu *Emulator) Where(pc uint16) (where string) {
	where = fmt.Sprintf("0x%04x", pc)

	var sym *cpu.Symbols
	if emu.Program != nil {
		sym = emu.Program.Symbols("")
	} else {
		sym = emu.Symbols
	}
	if sym == nil {
		return
	}

	label, offset, ok := sym.Label(pc)
	if ok {
		where += fmt.Sprintf(" <%s+0x%x>", label, offset)
	}

	lineno := sym.LineNo(pc)
	if lineno != 0 {
		where += f(" line %d", lineno)
	}

	return
}
