package io

import (
	"errors"

	"github.com/ezrec/risky/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull     = errors.New(f("channel full"))
	ErrChannelReadOnly = errors.New(f("channel read only"))

	// Drum errors
	ErrDrumNotSelected = errors.New(f("no drum selected"))
	ErrDrumSize        = errors.New(f("drum too large"))
)

// ErrChannelInvalid is an access to a channel with no device attached.
type ErrChannelInvalid uint16

func (err ErrChannelInvalid) Error() string {
	return f("channel %d invalid", uint16(err))
}
