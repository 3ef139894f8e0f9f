package emulator

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EMULATOR_TEMP_CAPACITY is the default capacity, in words, of the
// temporary channel.
const EMULATOR_TEMP_CAPACITY = 8192

// Config of an emulator, as loaded from a TOML file.
//
//	delay = "10ms"
//	limit = 100000
//	depot = "drums/"
//	monitor = "monitor.rom"
//
//	[temporary]
//	capacity = 4096
//
//	[tape]
//	input = "-"
//	output = "out.txt"
type Config struct {
	Delay   time.Duration `toml:"delay"`   // Pause between ticks.
	Limit   int           `toml:"limit"`   // Maximum ticks for a run, 0 for no limit.
	Verbose bool          `toml:"verbose"` // Log every executed instruction.
	Depot   string        `toml:"depot"`   // Directory of XXXX.drum files.
	Monitor string        `toml:"monitor"` // Monitor ROM image, or empty for the built-in ROM.

	Temporary TemporaryConfig `toml:"temporary"`
	Tape      TapeConfig      `toml:"tape"`
}

// TemporaryConfig configures the temporary channel.
type TemporaryConfig struct {
	Capacity int `toml:"capacity"`
}

// TapeConfig names the tape input and output files. "-" is the terminal.
type TapeConfig struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() (cfg Config) {
	cfg = Config{
		Temporary: TemporaryConfig{
			Capacity: EMULATOR_TEMP_CAPACITY,
		},
		Tape: TapeConfig{
			Input:  "-",
			Output: "-",
		},
	}

	return
}

// LoadConfig reads a TOML configuration file over the defaults. Unknown keys
// are an error.
func LoadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	err = cfg.Decode(string(data))
	if err != nil {
		err = &ErrConfig{Path: path, Err: err}
		return
	}

	return
}

// Decode TOML text over the configuration.
func (cfg *Config) Decode(text string) (err error) {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return
	}

	undecoded := md.Undecoded()
	if len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		err = errors.Join(ErrConfigKey, errors.New(strings.Join(keys, ", ")))
		return
	}

	if cfg.Temporary.Capacity <= 0 {
		err = ErrConfigCapacity
		return
	}

	if cfg.Delay < 0 || cfg.Limit < 0 {
		err = ErrConfigNegative
		return
	}

	return
}
