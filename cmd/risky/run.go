package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/ezrec/risky/cpu"
	"github.com/ezrec/risky/emulator"
)

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "run a memory image",
	ArgsUsage: "IMAGE",
	Action:    runAction,
	Flags: []cli.Flag{
		configFlag,
		symFlag,
		verboseFlag,
		cli.DurationFlag{
			Name:  "delay",
			Usage: "pause between instructions",
		},
		cli.BoolFlag{
			Name:  "dump",
			Usage: "write the machine state to stderr after every instruction",
		},
		cli.IntFlag{
			Name:  "limit",
			Usage: "stop after `N` instructions, 0 for no limit",
		},
		cli.StringFlag{
			Name:  "tape-in",
			Usage: "tape input `FILE`, - for the terminal",
		},
		cli.StringFlag{
			Name:  "tape-out",
			Usage: "tape output `FILE`, - for the terminal",
		},
		cli.StringFlag{
			Name:  "depot",
			Usage: "directory of drum files",
		},
	},
}

// runConfig merges the configuration file with the command line.
func runConfig(ctx *cli.Context) (cfg emulator.Config, err error) {
	cfg = emulator.DefaultConfig()

	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err = emulator.LoadConfig(path)
		if err != nil {
			return
		}
	}

	if ctx.IsSet("delay") {
		cfg.Delay = ctx.Duration("delay")
	}
	if ctx.IsSet("limit") {
		cfg.Limit = ctx.Int("limit")
	}
	if ctx.Bool("verbose") {
		cfg.Verbose = true
	}
	if ctx.IsSet("tape-in") {
		cfg.Tape.Input = ctx.String("tape-in")
	}
	if ctx.IsSet("tape-out") {
		cfg.Tape.Output = ctx.String("tape-out")
	}
	if ctx.IsSet("depot") {
		cfg.Depot = ctx.String("depot")
	}

	if cfg.Delay < 0 || cfg.Limit < 0 {
		err = emulator.ErrConfigNegative
	}

	return
}

// loadImage creates an emulator, and loads an image and its symbols.
func loadImage(cfg emulator.Config, image string, sym string) (emu *emulator.Emulator, err error) {
	emu, err = emulator.NewEmulator(cfg)
	if err != nil {
		return
	}

	inf, err := os.Open(image)
	if err != nil {
		return
	}
	defer inf.Close()

	err = emu.Load(inf)
	if err != nil {
		return
	}

	if len(sym) != 0 {
		var symf *os.File
		symf, err = os.Open(sym)
		if err != nil {
			return
		}
		defer symf.Close()

		emu.Symbols, err = cpu.UnmarshalSymbols(symf)
		if err != nil {
			return
		}
	}

	return
}

func runAction(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return usageError(ctx, 1)
	}

	cfg, err := runConfig(ctx)
	if err != nil {
		return exitError(err)
	}

	emu, err := loadImage(cfg, ctx.Args().First(), ctx.String(symFlag.Name))
	if err != nil {
		return exitError(err)
	}
	defer func() {
		err = errors.Join(err, emu.Close())
	}()

	var closers []io.Closer
	defer func() {
		for _, closer := range closers {
			closer.Close()
		}
	}()

	switch cfg.Tape.Input {
	case "":
	case "-":
		var restore func() error
		restore, err = rawTerm(os.Stdin)
		if err != nil {
			return exitError(err)
		}
		defer restore()
		emu.Tape.Input = os.Stdin
	default:
		var inf *os.File
		inf, err = os.Open(cfg.Tape.Input)
		if err != nil {
			return exitError(err)
		}
		closers = append(closers, inf)
		emu.Tape.Input = inf
	}

	switch cfg.Tape.Output {
	case "":
	case "-":
		emu.Tape.Output = os.Stdout
	default:
		var ouf *os.File
		ouf, err = os.Create(cfg.Tape.Output)
		if err != nil {
			return exitError(err)
		}
		closers = append(closers, ouf)
		emu.Tape.Output = ouf
	}

	if ctx.Bool("dump") {
		emu.Dump = os.Stderr
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(runCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Print(f("interrupted"))
		} else {
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "%v\n", err)
		}
		writeState(os.Stderr, emu)
		return cli.NewExitError("", 1)
	}

	return
}
