package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/ezrec/risky/emulator"
)

var asmCommand = cli.Command{
	Name:      "asm",
	Usage:     "assemble a source file into a memory image",
	ArgsUsage: "SOURCE",
	Action:    asmAction,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "output, o",
			Usage: "memory image `FILE`, defaults to SOURCE with an .img extension",
		},
		cli.StringFlag{
			Name:  "sym",
			Usage: "write debug symbols to `FILE`",
		},
		cli.StringSliceFlag{
			Name:  "define, D",
			Usage: "predefine an equate as `NAME=VALUE`",
		},
		cli.BoolFlag{
			Name:  "list",
			Usage: "write the program listing to stdout",
		},
		verboseFlag,
	},
}

// parseDefine splits a NAME=VALUE definition. A bare NAME is defined as 1.
func parseDefine(define string) (name string, value string) {
	name, value, ok := strings.Cut(define, "=")
	if !ok {
		value = "1"
	}

	return strings.TrimSpace(name), strings.TrimSpace(value)
}

// imageName returns the default image file name for a source file.
func imageName(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".img"
}

func asmAction(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return usageError(ctx, 1)
	}

	source := ctx.Args().First()
	output := ctx.String("output")
	if len(output) == 0 {
		output = imageName(source)
	}

	emu, err := emulator.NewEmulator(emulator.DefaultConfig())
	if err != nil {
		return exitError(err)
	}
	defer emu.Close()
	emu.Verbose = ctx.Bool("verbose")

	asm := emu.Assembler()
	for _, define := range ctx.StringSlice("define") {
		asm.Predefine(parseDefine(define))
	}

	inf, err := os.Open(source)
	if err != nil {
		return exitError(err)
	}
	defer inf.Close()

	prog, err := asm.Parse(inf)
	if err != nil {
		return cli.NewExitError(f("%v: %v", source, err), 1)
	}

	if ctx.Bool("list") {
		writeListing(os.Stdout, prog)
	}

	err = os.WriteFile(output, prog.Image(), 0o644)
	if err != nil {
		return exitError(err)
	}

	if sym := ctx.String("sym"); len(sym) != 0 {
		var ouf *os.File
		ouf, err = os.Create(sym)
		if err != nil {
			return exitError(err)
		}
		err = prog.Symbols(source).Marshal(ouf)
		err = errors.Join(err, ouf.Close())
		if err != nil {
			return exitError(err)
		}
	}

	return
}
