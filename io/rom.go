package io

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// ROM_SIZE is the number of words addressable in a ROM.
const ROM_SIZE = 256

var _rom_defines = map[string]string{
	"ROM_SIZE": fmt.Sprintf("%d", ROM_SIZE),
}

// Rom is a read-only array of words.
type Rom struct {
	Data []uint16
}

var _ Channel = (*Rom)(nil)

// NewRom creates a ROM from big-endian bytes, truncated to ROM_SIZE words.
func NewRom(data []byte) (rc *Rom) {
	words := slices.Collect(WordsOf(data))
	if len(words) > ROM_SIZE {
		words = words[:ROM_SIZE]
	}

	rc = &Rom{Data: words}
	return
}

// Defines returns the equates of the channel.
func (rc *Rom) Defines() iter.Seq2[string, string] {
	return maps.All(_rom_defines)
}

// Rewind has no effect on a ROM.
func (rc *Rom) Rewind() {
}

// Status returns the number of words in the ROM.
func (rc *Rom) Status(value uint16) (status uint16) {
	return uint16(min(len(rc.Data), ROM_SIZE))
}

// Configure is not supported on a ROM.
func (rc *Rom) Configure(value uint16) (status uint16) {
	return CHANNEL_VOID
}

// Read returns the word at addr, or CHANNEL_VOID beyond the data.
func (rc *Rom) Read(addr uint8) (value uint16, err error) {
	if int(addr) >= len(rc.Data) {
		value = CHANNEL_VOID
		return
	}

	value = rc.Data[addr]
	return
}

// Write always fails with ErrChannelReadOnly.
func (rc *Rom) Write(addr uint8, value uint16) error {
	return ErrChannelReadOnly
}
