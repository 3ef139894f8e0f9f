package io

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestRom(t *testing.T) {
	assert := assert.New(t)

	rom := NewRom([]byte{0x00, 0x01, 0x80, 0x00, 0xff, 0xff})
	rom.Rewind()

	assert.Equal(uint16(3), rom.Status(0))
	assert.Equal(CHANNEL_VOID, rom.Configure(0))

	for addr, expected := range []uint16{0x0001, 0x8000, 0xffff, CHANNEL_VOID} {
		value, err := rom.Read(uint8(addr))
		assert.NoError(err)
		assert.Equal(expected, value, addr)
	}

	assert.ErrorIs(rom.Write(0, 1), ErrChannelReadOnly)
}

func TestRom_Truncated(t *testing.T) {
	assert := assert.New(t)

	rom := NewRom(make([]byte, ROM_SIZE*2+10))
	assert.Equal(ROM_SIZE, len(rom.Data))
	assert.Equal(uint16(ROM_SIZE), rom.Status(0))
}

func TestTape_Read(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: strings.NewReader("Hi")}

	assert.Equal(uint16(TAPE_STATUS_INPUT), tape.Status(0))

	value, err := tape.Read(0)
	assert.NoError(err)
	assert.Equal(uint16('H'), value)

	value, err = tape.Read(0)
	assert.NoError(err)
	assert.Equal(uint16('i'), value)

	// End of tape.
	assert.Equal(uint16(0), tape.Status(0))
	value, err = tape.Read(0)
	assert.NoError(err)
	assert.Equal(CHANNEL_VOID, value)
}

func TestTape_ReadError(t *testing.T) {
	assert := assert.New(t)

	errTape := errors.New("tape snapped")
	tape := &Tape{Input: iotest.ErrReader(errTape)}

	value, err := tape.Read(0)
	assert.ErrorIs(err, errTape)
	assert.Equal(CHANNEL_VOID, value)
}

func TestTape_NoInput(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}

	value, err := tape.Read(0)
	assert.NoError(err)
	assert.Equal(CHANNEL_VOID, value)
	assert.Equal(uint16(0), tape.Status(0))
}

func TestTape_Write(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	tape := &Tape{Output: &buf}

	assert.Equal(uint16(TAPE_STATUS_OUTPUT), tape.Status(0))
	assert.NoError(tape.Write(0, 'O'))
	assert.NoError(tape.Write(0, 0x1200|'k'))
	assert.Equal("Ok", buf.String())

	assert.Equal(CHANNEL_VOID, tape.Configure(0))

	tape = &Tape{}
	assert.ErrorIs(tape.Write(0, 'x'), ErrChannelReadOnly)
}

func TestTemporary(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Ring: Ring{Capacity: 2}}
	temp.Rewind()

	assert.Equal(uint16(0), temp.Status(0))
	assert.NoError(temp.Write(0, 0x1234))
	assert.NoError(temp.Write(9, 0x5678))
	assert.ErrorIs(temp.Write(0, 0x9abc), ErrChannelFull)
	assert.Equal(uint16(2), temp.Status(0))

	value, err := temp.Read(0)
	assert.NoError(err)
	assert.Equal(uint16(0x1234), value)

	assert.Equal(uint16(0), temp.Configure(TEMP_CONFIGURE_CLEAR))
	assert.Equal(uint16(0), temp.Status(0))

	value, err = temp.Read(0)
	assert.NoError(err)
	assert.Equal(CHANNEL_VOID, value)

	assert.Equal(CHANNEL_VOID, temp.Configure(1))
}
