package emulator

import (
	"errors"

	"github.com/ezrec/risky/translate"
)

var f = translate.From

var (
	ErrConfigKey      = errors.New(f("unknown configuration keys"))
	ErrConfigCapacity = errors.New(f("temporary capacity must be positive"))
	ErrConfigNegative = errors.New(f("delay and limit must not be negative"))
	ErrMonitorSize    = errors.New(f("monitor rom too large"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int    // Source line, or 0 if unknown.
	Pc     uint16 // Address of the instruction.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("pc 0x%04x %v", err.Pc, err.Err)
	}
	return f("line %d pc 0x%04x %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrConfig is an invalid configuration file.
type ErrConfig struct {
	Path string
	Err  error
}

func (err *ErrConfig) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}
