package emulator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/risky/cpu"
	"github.com/ezrec/risky/io"
)

func newEmulator(t *testing.T, cfg Config) (emu *Emulator) {
	emu, err := NewEmulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { emu.Close() })

	return
}

func loadProgram(t *testing.T, emu *Emulator, program ...string) (prog *cpu.Program) {
	asm := emu.Assembler()
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	err = emu.LoadProgram(prog)
	if err != nil {
		t.Fatal(err)
	}

	return
}

// doRunSingle ticks once per instruction of a straight line program,
// checking the line number of each tick.
func doRunSingle(t *testing.T, emu *Emulator, program ...string) {
	assert := assert.New(t)

	prog := loadProgram(t, emu, program...)

	for _, st := range prog.Statements {
		here := program[st.LineNo-1]
		for range st.Codes {
			assert.Equal(st.LineNo, emu.LineNo(emu.Pc), here)
			done, err := emu.Tick()
			if err != nil {
				t.Log(emu.Cpu.String())
				t.Fatalf("%v: %v", here, err)
			}
			if done {
				return
			}
		}
	}

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, DefaultConfig())

	assert.False(emu.Verbose)
	assert.Equal(EMULATOR_TEMP_CAPACITY, emu.Temporary.Capacity)
	assert.Equal(&emu.Bus, emu.Cpu.Port)
	assert.Equal(&emu.Tape, emu.Bus.Channel(io.CHANNEL_ID_TAPE))
	assert.Equal(&emu.Monitor, emu.Bus.Channel(io.CHANNEL_ID_MONITOR))

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	assert.Equal("0xffff", defines["TRUE"])
	assert.Equal("2", defines["CHANNEL_ID_TAPE"])
	assert.Equal("3", defines["MONITOR_MEMORY_PAGES"])
	assert.Equal("0", defines["TEMP_CONFIGURE_CLEAR"])
}

func TestEmulatorTape(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, DefaultConfig())

	output := &bytes.Buffer{}
	emu.Tape.Input = strings.NewReader("echo")
	emu.Tape.Output = output

	loadProgram(t, emu,
		".equ TAPE $(CHANNEL_ID_TAPE << 8)",
		"	set r1 TAPE",
		"	set r3 CHANNEL_VOID",
		"loop:",
		"	rea r2 r1",
		"	equ r4 r2 r3",
		"	branch r5 r4 done",
		"	wri r2 r1",
		"	jump r5 loop",
		"done:",
		"	exit",
	)

	err := emu.Run(context.Background())
	assert.NoError(err)
	assert.True(emu.Halted)
	assert.Equal("echo", output.String())
}

func TestEmulatorTemporary(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, DefaultConfig())

	doRunSingle(t, emu,
		"set r1 $(CHANNEL_ID_TEMP << 8)",
		"set r2 0x1234",
		"wri r2 r1",
		"set r2 0x5678",
		"wri r2 r1",
		"set r3 CHANNEL_ID_TEMP",
		"qdc r4 r3 r0",
		"rea r5 r1",
		"rea r6 r1",
		"rea r7 r1",
		"exit",
	)

	assert.Equal(uint16(2), emu.Register[4])
	assert.Equal(uint16(0x1234), emu.Register[5])
	assert.Equal(uint16(0x5678), emu.Register[6])
	assert.Equal(io.CHANNEL_VOID, emu.Register[7])
}

func TestEmulatorTemporaryFull(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Temporary.Capacity = 1
	emu := newEmulator(t, cfg)

	loadProgram(t, emu,
		"set r1 $(CHANNEL_ID_TEMP << 8)",
		"wri r2 r1",
		"wri r2 r1",
		"exit",
	)

	err := emu.Run(context.Background())

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(3, runtime.LineNo)
		assert.Equal(uint16(8), runtime.Pc)
	}
	assert.ErrorIs(err, cpu.ErrPort)
	assert.ErrorIs(err, io.ErrChannelFull)
	assert.True(emu.Halted)
}

func TestEmulatorMonitor(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, DefaultConfig())

	doRunSingle(t, emu,
		"set r1 $(CHANNEL_ID_MONITOR << 8 | MONITOR_MEMORY_PAGES)",
		"rea r2 r1",
		"set r1 $(CHANNEL_ID_MONITOR << 8 | MONITOR_VERSION_MINOR)",
		"rea r3 r1",
		"exit",
	)

	assert.Equal(uint16(cpu.MEMORY_SIZE>>8), emu.Register[2])
	assert.Equal(uint16(cpu.VERSION_MINOR), emu.Register[3])
}

func TestEmulatorMonitorFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	rom := filepath.Join(dir, "monitor.rom")
	assert.NoError(os.WriteFile(rom, []byte{0xbe, 0xef}, 0o644))

	cfg := DefaultConfig()
	cfg.Monitor = rom
	emu := newEmulator(t, cfg)
	assert.Equal([]uint16{0xbeef}, emu.Monitor.Data)

	assert.NoError(os.WriteFile(rom, make([]byte, io.ROM_SIZE*2+2), 0o644))
	_, err := NewEmulator(cfg)
	assert.ErrorIs(err, ErrMonitorSize)
}

func TestEmulatorDepot(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	drum := make([]byte, io.DRUM_SIZE*2)
	drum[0], drum[1] = 0x00, 0x41
	assert.NoError(os.WriteFile(filepath.Join(dir, "0001.drum"), drum, 0o644))

	cfg := DefaultConfig()
	cfg.Depot = dir
	emu, err := NewEmulator(cfg)
	if !assert.NoError(err) {
		return
	}

	doRunSingle(t, emu,
		"set r1 CHANNEL_ID_DEPOT",
		"set r2 1",
		"cdc r3 r1 r2",
		"set r4 $(CHANNEL_ID_DEPOT << 8)",
		"rea r5 r4",
		"inc r5 r5",
		"wri r5 r4",
		"set r2 2",
		"qdc r6 r1 r2",
		"exit",
	)

	assert.Equal(uint16(io.DEPOT_SELECT_OK), emu.Register[3])
	assert.Equal(uint16(0x42), emu.Register[5])
	assert.Equal(io.CHANNEL_VOID, emu.Register[6])

	assert.NoError(emu.Close())

	data, err := os.ReadFile(filepath.Join(dir, "0001.drum"))
	assert.NoError(err)
	assert.Equal([]byte{0x00, 0x42}, data[:2])
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, DefaultConfig())

	loadProgram(t, emu,
		"set r1 1",
		"; divide by zero",
		"div r3 r1 r2",
		"exit",
	)

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)

	done, err = emu.Tick()
	assert.False(done)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(3, runtime.LineNo)
		assert.Equal(uint16(4), runtime.Pc)
		assert.Contains(runtime.Error(), "line 3")
	}

	var fault *cpu.ErrFault
	assert.True(errors.As(err, &fault))
	assert.ErrorIs(err, cpu.ErrDivideByZero)
	assert.ErrorIs(err, cpu.ErrArithmetic)
	assert.Equal(fault, emu.Fault)

	// Once halted, the emulator is done.
	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)

	// Reset keeps the fault status.
	emu.Reset()
	assert.False(emu.Halted)
	assert.Equal(cpu.STATUS_FAULT, emu.Status)
}

func TestEmulatorSymbols(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, DefaultConfig())

	asm := emu.Assembler()
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		"start:",
		"	nop",
		"fail:",
		"	div r1 r1 r0",
	}, "\n")))
	if !assert.NoError(err) {
		return
	}

	sym := &bytes.Buffer{}
	assert.NoError(prog.Symbols("fail.s").Marshal(sym))

	assert.NoError(emu.Load(bytes.NewReader(prog.Image())))
	emu.Symbols, err = cpu.UnmarshalSymbols(sym)
	assert.NoError(err)
	assert.Nil(emu.Program)

	err = emu.Run(context.Background())
	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(4, runtime.LineNo)
		assert.Equal(uint16(4), runtime.Pc)
	}

	assert.Equal("0x0004 <fail+0x0> line 4", emu.Where(4))
	assert.Equal("0x0002 <start+0x2> line 2", emu.Where(2))

	labels := map[string]uint16{}
	for name, addr := range emu.Labels() {
		labels[name] = addr
	}
	assert.Equal(map[string]uint16{"start": 0, "fail": 4}, labels)
}

func TestEmulatorRunLimit(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Limit = 10
	emu := newEmulator(t, cfg)

	loadProgram(t, emu,
		"top:",
		"	jump r1 top",
	)

	err := emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrTickLimit)
	assert.False(emu.Halted)
	assert.Equal(10, emu.Ticks)
}

func TestEmulatorRunCancel(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Delay = time.Millisecond
	emu := newEmulator(t, cfg)

	loadProgram(t, emu,
		"top:",
		"	jump r1 top",
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
	assert.False(emu.Halted)

	// A cancelled context stops an unpaced run before the first tick.
	emu.Config.Delay = 0
	emu.Reset()
	err = emu.Run(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
	assert.Equal(0, emu.Ticks)
}

func TestEmulatorDump(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, DefaultConfig())

	dump := &bytes.Buffer{}
	emu.Dump = dump

	loadProgram(t, emu,
		"set r7 0x1234",
		"exit",
	)

	assert.NoError(emu.Run(context.Background()))
	assert.Contains(dump.String(), "   r7: 1234")
	assert.Equal(2, strings.Count(dump.String(), "pc:"))
}
