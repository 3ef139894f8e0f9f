package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/ezrec/risky/cpu"
	"github.com/ezrec/risky/emulator"
	"github.com/ezrec/risky/internal"
)

var disasmCommand = cli.Command{
	Name:      "disasm",
	Usage:     "disassemble a memory image",
	ArgsUsage: "IMAGE",
	Action:    disasmAction,
	Flags: []cli.Flag{
		symFlag,
		cli.IntFlag{
			Name:  "from",
			Usage: "start at address `ADDR`",
		},
		cli.IntFlag{
			Name:  "count",
			Value: 64,
			Usage: "disassemble `N` instructions",
		},
	},
}

var dumpCommand = cli.Command{
	Name:      "dump",
	Usage:     "show the machine state of a freshly loaded memory image",
	ArgsUsage: "IMAGE",
	Action:    dumpAction,
	Flags: []cli.Flag{
		configFlag,
		symFlag,
	},
}

// disassemble writes count instructions of image, starting at from. Labels
// of sym, if any, are written before the instructions they name.
func disassemble(w io.Writer, image []byte, from uint16, count int, sym *cpu.Symbols) {
	labels := map[uint16][]string{}
	if sym != nil {
		for name, addr := range internal.IterSeq2Sorted(maps.All(sym.Labels)) {
			labels[addr] = append(labels[addr], name)
		}
	}

	for addr, ins := range cpu.Disassemble(image, from, count) {
		for _, name := range labels[addr] {
			fmt.Fprintf(w, "%s:\n", name)
		}
		fmt.Fprintf(w, "%04x: % x\t%v\n", addr, image[addr:addr+cpu.INSTRUCTION_SIZE], ins)
	}
}

func disasmAction(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return usageError(ctx, 1)
	}

	from := ctx.Int("from")
	if from < 0 || from >= cpu.MEMORY_SIZE {
		return exitError(errors.New(f("address 0x%x out of range", from)))
	}

	image, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return exitError(err)
	}

	var sym *cpu.Symbols
	if path := ctx.String(symFlag.Name); len(path) != 0 {
		var inf *os.File
		inf, err = os.Open(path)
		if err != nil {
			return exitError(err)
		}
		defer inf.Close()

		sym, err = cpu.UnmarshalSymbols(inf)
		if err != nil {
			return exitError(err)
		}
	}

	disassemble(os.Stdout, image, uint16(from), ctx.Int("count"), sym)

	return
}

func dumpAction(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return usageError(ctx, 1)
	}

	cfg := emulator.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err = emulator.LoadConfig(path)
		if err != nil {
			return exitError(err)
		}
	}
	// Dumping never writes back to the depot.
	cfg.Depot = ""

	emu, err := loadImage(cfg, ctx.Args().First(), ctx.String(symFlag.Name))
	if err != nil {
		return exitError(err)
	}
	defer emu.Close()

	writeState(os.Stdout, emu)
	if emu.Symbols != nil {
		writeLabels(os.Stdout, emu)
	}

	return
}
