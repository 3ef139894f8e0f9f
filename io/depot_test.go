package io

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestDepot_Rewind(t *testing.T) {
	assert := assert.New(t)

	depot := &Depot{}
	depot.NewDrum(1)
	depot.NewDrum(2)

	assert.Equal(uint16(DEPOT_SELECT_OK), depot.Configure(1))
	assert.NotNil(depot.Drum)

	depot.Rewind()

	// Should have no drum selected.
	assert.Nil(depot.Drum)

	// Drums 1 and 2 should still exist
	assert.NotNil(depot.Drums[1])
	assert.NotNil(depot.Drums[2])
}

func TestDepot_Select(t *testing.T) {
	assert := assert.New(t)

	depot := &Depot{}

	// Select drum that doesn't exist
	assert.Equal(CHANNEL_VOID, depot.Status(5))
	assert.Equal(CHANNEL_VOID, depot.Configure(5))
	assert.Nil(depot.Drum)

	_, err := depot.Read(0)
	assert.ErrorIs(err, ErrDrumNotSelected)
	assert.ErrorIs(depot.Write(0, 1), ErrDrumNotSelected)

	// Create a drum.
	existing := depot.NewDrum(5)
	assert.Equal(existing, depot.NewDrum(5))
	assert.Equal(uint16(DEPOT_SELECT_OK), depot.Status(5))
	assert.Equal(uint16(DEPOT_SELECT_OK), depot.Configure(5))
	assert.Equal(existing, depot.Drum)

	// Selecting a missing drum deselects.
	assert.Equal(CHANNEL_VOID, depot.Configure(6))
	assert.Nil(depot.Drum)
}

func TestDepot_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	depot := &Depot{}
	depot.NewDrum(1)
	depot.NewDrum(2)

	depot.Configure(1)
	assert.NoError(depot.Write(0xff, 0x1111))

	depot.Configure(2)
	assert.NoError(depot.Write(0xff, 0x2222))

	depot.Configure(1)
	value, err := depot.Read(0xff)
	assert.NoError(err)
	assert.Equal(uint16(0x1111), value)

	assert.Equal(uint16(0x2222), depot.Drums[2].Data[0xff])
}

func TestDepot_Unmarshal(t *testing.T) {
	assert := assert.New(t)

	drum := make([]byte, DRUM_SIZE*2)
	drum[0], drum[1] = 0xbe, 0xef

	filesys := fstest.MapFS{
		"0001.drum":  &fstest.MapFile{Data: drum},
		"00AB.drum":  &fstest.MapFile{Data: []byte{0x12, 0x34}},
		"readme.txt": &fstest.MapFile{Data: []byte("ignored")},
		"0002.drum/x": &fstest.MapFile{Data: []byte{1}},
	}

	depot := &Depot{}
	assert.NoError(depot.Unmarshal(filesys))
	assert.Equal(2, len(depot.Drums))
	assert.Equal(uint16(0xbeef), depot.Drums[1].Data[0])
	assert.Equal(uint16(0x1234), depot.Drums[0xab].Data[0])
	assert.Equal(uint16(0), depot.Drums[0xab].Data[1])
}

func TestDepot_Unmarshal_TooLarge(t *testing.T) {
	assert := assert.New(t)

	filesys := fstest.MapFS{
		"0001.drum": &fstest.MapFile{Data: make([]byte, DRUM_SIZE*2+1)},
	}

	depot := &Depot{}
	assert.ErrorIs(depot.Unmarshal(filesys), ErrDrumSize)
}

// memFS is an in-memory CreateFS.
type memFS map[string]*bytes.Buffer

type memFile struct {
	*bytes.Buffer
}

func (mf memFile) Close() error { return nil }

func (mfs memFS) Create(name string) (file io.WriteCloser, err error) {
	buf := &bytes.Buffer{}
	mfs[name] = buf
	return memFile{buf}, nil
}

func TestDepot_Marshal(t *testing.T) {
	assert := assert.New(t)

	depot := &Depot{}
	depot.NewDrum(0x10).Data[1] = 0xcafe
	depot.NewDrum(0x20)

	mfs := memFS{}
	assert.NoError(depot.Marshal(mfs))
	assert.Equal(2, len(mfs))
	if assert.Contains(mfs, "0010.drum") {
		data := mfs["0010.drum"].Bytes()
		assert.Equal(DRUM_SIZE*2, len(data))
		assert.Equal([]byte{0xca, 0xfe}, data[2:4])
	}
	assert.Contains(mfs, "0020.drum")
}

func TestDepot_DirFS(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	depot := &Depot{}
	depot.NewDrum(3).Data[DRUM_SIZE-1] = 0x4242
	assert.NoError(depot.Marshal(DirFS(dir)))

	info, err := os.Stat(filepath.Join(dir, "0003.drum"))
	assert.NoError(err)
	assert.Equal(int64(DRUM_SIZE*2), info.Size())

	again := &Depot{}
	assert.NoError(again.Unmarshal(DirFS(dir)))
	assert.Equal(depot.Drums[3].Data, again.Drums[3].Data)

	_, err = DirFS(dir).Create("../escape.drum")
	assert.Error(err)
}
