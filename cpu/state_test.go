package cpu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	assert.Equal(uint16(0), st.Pc)
	assert.Equal(MEMORY_SIZE, len(st.Memory))
	assert.Equal(REGISTER_COUNT, len(st.Register))

	st.Register[0] = 0x1234
	st.Register[255] = 0x5678
	st.Memory[0x100] = 0xaa
	st.Pc = 0x100

	st.Reset()
	assert.Equal(uint16(0), st.Pc)
	assert.Equal(uint16(0), st.Register[0])
	assert.Equal(uint16(0), st.Register[255])
	assert.Equal(uint8(0xaa), st.Memory[0x100])

	assert.NoError(st.Close())
	assert.Nil(st.Memory)
}

func TestStateWord(t *testing.T) {
	assert := assert.New(t)

	st := NewState()

	st.WriteWord(0x1000, 0xbeef)
	assert.Equal(uint8(0xbe), st.Memory[0x1000])
	assert.Equal(uint8(0xef), st.Memory[0x1001])
	assert.Equal(uint16(0xbeef), st.ReadWord(0x1000))

	// The second byte wraps to address 0.
	st.WriteWord(0xffff, 0x1234)
	assert.Equal(uint8(0x12), st.Memory[0xffff])
	assert.Equal(uint8(0x34), st.Memory[0x0000])
	assert.Equal(uint16(0x1234), st.ReadWord(0xffff))
}

func TestStateRaw(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	copy(st.Memory[0xfffc:], []byte{1, 2, 3, 4})

	raw, ok := st.Raw(0xfffc)
	assert.True(ok)
	assert.Equal(Raw{1, 2, 3, 4}, raw)

	for _, addr := range []uint16{0xfffd, 0xfffe, 0xffff} {
		_, ok = st.Raw(addr)
		assert.False(ok, "%04x", addr)
	}
}

func TestStateLoad(t *testing.T) {
	assert := assert.New(t)

	st := NewState()

	image := make([]byte, MEMORY_SIZE)
	image[0] = 0xc0
	image[MEMORY_SIZE-1] = 0x0c
	assert.NoError(st.Load(bytes.NewReader(image)))
	assert.Equal(image, st.Image())

	// Short images fail, and leave memory alone.
	err := st.Load(bytes.NewReader(make([]byte, 10)))
	var err_load *ErrLoad
	assert.True(errors.As(err, &err_load))
	assert.Equal(10, err_load.Size)
	assert.ErrorIs(err, errLoadShort)
	assert.Equal(image, st.Image())

	// Long images fail, and leave memory alone.
	err = st.Load(bytes.NewReader(make([]byte, MEMORY_SIZE+1)))
	assert.ErrorIs(err, errLoadLong)
	assert.Equal(image, st.Image())
}

func TestStateString(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.Pc = 0x10
	st.Register[5] = 0xab

	text := st.String()
	assert.Contains(text, "pc: 0010")
	assert.Contains(text, "r5: 00AB")
	assert.NotContains(text, "r4:")

	count := 0
	for n, value := range st.Registers() {
		if n == 5 {
			assert.Equal(uint16(0xab), value)
		}
		count++
	}
	assert.Equal(REGISTER_COUNT, count)
}
