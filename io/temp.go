package io

import (
	"fmt"
	"iter"
	"maps"
)

const (
	// TEMP_CONFIGURE_CLEAR empties the temporary storage.
	TEMP_CONFIGURE_CLEAR = 0
)

var _temp_defines = map[string]string{
	"TEMP_CONFIGURE_CLEAR": fmt.Sprintf("%d", TEMP_CONFIGURE_CLEAR),
}

// Temporary implements a bounded FIFO of words. Writes push, reads pop, and
// the status is the number of words held.
type Temporary struct {
	Ring
}

var _ Channel = (*Temporary)(nil)

// Defines returns the equates of the channel.
func (temp *Temporary) Defines() iter.Seq2[string, string] {
	return maps.All(_temp_defines)
}

// Status returns the number of words held.
func (temp *Temporary) Status(value uint16) (status uint16) {
	return uint16(temp.Size)
}

// Configure with TEMP_CONFIGURE_CLEAR empties the storage. Other values
// are not supported.
func (temp *Temporary) Configure(value uint16) (status uint16) {
	if value != TEMP_CONFIGURE_CLEAR {
		return CHANNEL_VOID
	}

	temp.Rewind()
	return
}

// Read pops the oldest word, or returns CHANNEL_VOID if empty.
func (temp *Temporary) Read(addr uint8) (value uint16, err error) {
	value, ok := temp.Pop()
	if !ok {
		value = CHANNEL_VOID
	}

	return
}

// Write pushes a word. Returns ErrChannelFull if the storage is full.
func (temp *Temporary) Write(addr uint8, value uint16) (err error) {
	return temp.Push(value)
}
