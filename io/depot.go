package io

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"maps"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/ezrec/risky/internal"
)

const (
	// DEPOT_SELECT_OK is returned by configure when a drum is selected.
	DEPOT_SELECT_OK = 0
)

var _depot_defines = map[string]string{
	"DRUM_SIZE":       fmt.Sprintf("%d", DRUM_SIZE),
	"DEPOT_SELECT_OK": fmt.Sprintf("%d", DEPOT_SELECT_OK),
}

var reDrumName = regexp.MustCompile(`(?i)^[0-9a-f]{4}\.drum$`)

// Depot represents a collection of drums providing persistent storage.
// Configure selects a drum by id; reads and writes address the words of the
// selected drum.
type Depot struct {
	*Drum
	Drums map[uint16](*Drum)
}

var _ Channel = &Depot{}

// Defines returns the equates of the channel.
func (depot *Depot) Defines() iter.Seq2[string, string] {
	return maps.All(_depot_defines)
}

// NewDrum returns the drum with the given id, creating it if needed.
func (depot *Depot) NewDrum(id uint16) (drum *Drum) {
	if depot.Drums == nil {
		depot.Drums = make(map[uint16](*Drum))
	}

	drum, ok := depot.Drums[id]
	if !ok {
		drum = &Drum{}
		depot.Drums[id] = drum
	}

	return
}

// Unmarshal loads depot data from a file system by scanning for drum files
// matching the pattern XXXX.drum (4 hex digits).
func (depot *Depot) Unmarshal(filesys fs.FS) (err error) {
	entries, err := fs.ReadDir(filesys, ".")
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !reDrumName.MatchString(name) {
			continue
		}

		var drum_id uint64
		drum_id, err = strconv.ParseUint(strings.TrimSuffix(name, path.Ext(name)), 16, 16)
		if err != nil {
			return
		}

		var data []byte
		data, err = fs.ReadFile(filesys, name)
		if err != nil {
			return
		}

		drum := depot.NewDrum(uint16(drum_id))
		err = drum.Unmarshal(bytes.NewReader(data))
		if err != nil {
			err = &fs.PathError{Op: "unmarshal", Path: name, Err: err}
			return
		}
	}

	return
}

// Marshal writes the depot's drums to a file system, as files named
// XXXX.drum for each drum.
func (depot *Depot) Marshal(filesys CreateFS) (err error) {
	for id, drum := range internal.IterSeq2Sorted(maps.All(depot.Drums)) {
		name := fmt.Sprintf("%04x.drum", id)

		var file io.WriteCloser
		file, err = filesys.Create(name)
		if err != nil {
			return
		}

		err = drum.Marshal(file)
		err = errors.Join(err, file.Close())
		if err != nil {
			return
		}
	}

	return
}

// Rewind deselects the current drum.
func (depot *Depot) Rewind() {
	depot.Drum = nil
}

// Status returns DEPOT_SELECT_OK if drum value exists, otherwise
// CHANNEL_VOID.
func (depot *Depot) Status(value uint16) (status uint16) {
	_, ok := depot.Drums[value]
	if !ok {
		return CHANNEL_VOID
	}

	return DEPOT_SELECT_OK
}

// Configure selects drum value. Returns DEPOT_SELECT_OK if the drum exists,
// otherwise deselects and returns CHANNEL_VOID.
func (depot *Depot) Configure(value uint16) (status uint16) {
	drum, ok := depot.Drums[value]
	if !ok {
		depot.Drum = nil
		return CHANNEL_VOID
	}

	depot.Drum = drum
	return DEPOT_SELECT_OK
}

// Read a word from the selected drum.
func (depot *Depot) Read(addr uint8) (value uint16, err error) {
	if depot.Drum == nil {
		err = ErrDrumNotSelected
		return
	}

	value = depot.Drum.Data[addr]
	return
}

// Write a word to the selected drum.
func (depot *Depot) Write(addr uint8, value uint16) (err error) {
	if depot.Drum == nil {
		err = ErrDrumNotSelected
		return
	}

	depot.Drum.Data[addr] = value
	return
}
