package io

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
)

const (
	TAPE_STATUS_INPUT  = 1 << 0 // Input byte pending.
	TAPE_STATUS_OUTPUT = 1 << 1 // Output attached.
)

var _tape_defines = map[string]string{
	"TAPE_STATUS_INPUT":  fmt.Sprintf("%d", TAPE_STATUS_INPUT),
	"TAPE_STATUS_OUTPUT": fmt.Sprintf("%d", TAPE_STATUS_OUTPUT),
}

// Tape provides sequential byte I/O. It wraps an io.Reader for input and an
// io.Writer for output, one byte per word.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	hasInput  bool
	lastInput byte
	err       error // Sticky input error, io.EOF at end of tape.
}

var _ Channel = (*Tape)(nil)

// Defines returns an iter of defines for the channel.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(_tape_defines)
}

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// fill reads ahead a single input byte, if none is pending.
func (tc *Tape) fill() {
	if tc.hasInput || tc.err != nil {
		return
	}

	if tc.Input == nil {
		tc.err = io.EOF
		return
	}

	var one [1]byte
	for {
		n, err := tc.Input.Read(one[:])
		if n == 1 {
			tc.lastInput = one[0]
			tc.hasInput = true
			return
		}
		if err != nil {
			tc.err = err
			return
		}
	}
}

// Status returns TAPE_STATUS_INPUT if an input byte is pending, and
// TAPE_STATUS_OUTPUT if output is attached. Waits for input if none is
// pending and the input has not ended.
func (tc *Tape) Status(value uint16) (status uint16) {
	tc.fill()
	if tc.hasInput {
		status |= TAPE_STATUS_INPUT
	}
	if tc.Output != nil {
		status |= TAPE_STATUS_OUTPUT
	}

	return
}

// Configure is not supported on a tape.
func (tc *Tape) Configure(value uint16) (status uint16) {
	return CHANNEL_VOID
}

// Read returns the next input byte, or CHANNEL_VOID at the end of the tape.
func (tc *Tape) Read(addr uint8) (value uint16, err error) {
	tc.fill()
	if !tc.hasInput {
		value = CHANNEL_VOID
		if !errors.Is(tc.err, io.EOF) {
			err = tc.err
		}
		return
	}

	value = uint16(tc.lastInput)
	tc.hasInput = false

	return
}

// Write emits the low byte of value.
func (tc *Tape) Write(addr uint8, value uint16) (err error) {
	if tc.Output == nil {
		err = ErrChannelReadOnly
		return
	}

	_, err = tc.Output.Write([]byte{uint8(value)})

	return
}
