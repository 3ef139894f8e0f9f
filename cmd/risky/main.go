// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/urfave/cli.v1"

	"github.com/ezrec/risky/cpu"
	"github.com/ezrec/risky/translate"
)

var f = translate.From

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	symFlag = cli.StringFlag{
		Name:  "sym",
		Usage: "debug symbols file",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose, v",
		Usage: "log every executed instruction",
	}
)

func newApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "risky"
	app.Usage = "assembler and emulator for the RISKY virtual processor"
	app.Version = cpu.Version()
	app.Commands = []cli.Command{
		runCommand,
		asmCommand,
		disasmCommand,
		dumpCommand,
	}

	return
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// exitError reports err, and exits with status 1.
func exitError(err error) error {
	return cli.NewExitError(err.Error(), 1)
}

// usageError reports a command line usage error.
func usageError(ctx *cli.Context, count int) error {
	return cli.NewExitError(f("%s: expected %d argument(s): %s",
		ctx.Command.Name, count, ctx.Command.ArgsUsage), 2)
}
