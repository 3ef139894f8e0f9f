// Package io provides the data channel bus and devices for the RISKY
// emulator. Devices are word-level: temporary storage (Temporary),
// persistent drum storage (Depot, Drum), sequential byte I/O (Tape), and
// read-only memory (Rom).
package io

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/risky/cpu"
	"github.com/ezrec/risky/internal"
)

// Channel defines the interface for all devices on the bus.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Status returns the status of the channel for a query value.
	Status(value uint16) (status uint16)
	// Configure sends a configuration value to the channel.
	Configure(value uint16) (status uint16)
	// Read a value from a device register.
	Read(addr uint8) (value uint16, err error)
	// Write a value to a device register.
	Write(addr uint8, value uint16) (err error)
}

// Definer is implemented by channels that export assembler equates.
type Definer interface {
	Defines() iter.Seq2[string, string]
}

// Channel ids of the standard devices.
const (
	CHANNEL_ID_TEMP    = 0
	CHANNEL_ID_DEPOT   = 1
	CHANNEL_ID_TAPE    = 2
	CHANNEL_ID_MONITOR = 7

	CHANNEL_COUNT = 256
)

// CHANNEL_VOID is returned by query and configure of an empty channel, and
// by reads of exhausted devices.
const CHANNEL_VOID = uint16(0xffff)

var _bus_defines = map[string]string{
	"CHANNEL_ID_TEMP":    fmt.Sprintf("%d", CHANNEL_ID_TEMP),
	"CHANNEL_ID_DEPOT":   fmt.Sprintf("%d", CHANNEL_ID_DEPOT),
	"CHANNEL_ID_TAPE":    fmt.Sprintf("%d", CHANNEL_ID_TAPE),
	"CHANNEL_ID_MONITOR": fmt.Sprintf("%d", CHANNEL_ID_MONITOR),
	"CHANNEL_VOID":       fmt.Sprintf("0x%x", CHANNEL_VOID),
}

// Bus routes the data channel instructions of the processor to channels.
//
// Query and configure address a channel by id. Read and write addresses
// carry the channel id in the high byte, and the device register in the
// low byte.
type Bus struct {
	channel [CHANNEL_COUNT]Channel
}

var _ cpu.Port = (*Bus)(nil)

// SetChannel attaches a channel, or detaches it if nil.
func (bus *Bus) SetChannel(id uint8, ch Channel) {
	bus.channel[id] = ch
}

// Channel returns the channel attached at id, or nil.
func (bus *Bus) Channel(id uint8) Channel {
	return bus.channel[id]
}

// Rewind rewinds all attached channels.
func (bus *Bus) Rewind() {
	for _, ch := range bus.channel {
		if ch != nil {
			ch.Rewind()
		}
	}
}

// Defines returns the equates of the bus and of all attached channels.
func (bus *Bus) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{maps.All(_bus_defines)}
	for _, ch := range bus.channel {
		definer, ok := ch.(Definer)
		if ok {
			seqs = append(seqs, definer.Defines())
		}
	}

	return internal.IterSeq2Concat(seqs...)
}

func (bus *Bus) lookup(id uint16) (ch Channel) {
	if id >= CHANNEL_COUNT {
		return
	}

	return bus.channel[id]
}

// Query returns the status of a channel.
func (bus *Bus) Query(channel, value uint16) (status uint16, err error) {
	ch := bus.lookup(channel)
	if ch == nil {
		status = CHANNEL_VOID
		return
	}

	status = ch.Status(value)
	return
}

// Configure sends a configuration value to a channel.
func (bus *Bus) Configure(channel, value uint16) (status uint16, err error) {
	ch := bus.lookup(channel)
	if ch == nil {
		status = CHANNEL_VOID
		return
	}

	status = ch.Configure(value)
	return
}

// Read a value from a channel device register.
func (bus *Bus) Read(addr uint16) (value uint16, err error) {
	ch := bus.lookup(addr >> 8)
	if ch == nil {
		err = ErrChannelInvalid(addr >> 8)
		return
	}

	return ch.Read(uint8(addr))
}

// Write a value to a channel device register.
func (bus *Bus) Write(addr uint16, value uint16) (err error) {
	ch := bus.lookup(addr >> 8)
	if ch == nil {
		err = ErrChannelInvalid(addr >> 8)
		return
	}

	return ch.Write(uint8(addr), value)
}
