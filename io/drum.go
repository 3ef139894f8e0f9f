package io

import (
	"io"
	"slices"
)

// DRUM_SIZE is the number of words on a drum.
const DRUM_SIZE = 256

// Drum is a persistent array of DRUM_SIZE words.
type Drum struct {
	Data [DRUM_SIZE]uint16
}

// Unmarshal loads drum data from a reader. Short data is zero filled.
func (dc *Drum) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(io.LimitReader(file, DRUM_SIZE*2+1))
	if err != nil {
		return
	}

	if len(data) > DRUM_SIZE*2 {
		err = ErrDrumSize
		return
	}

	clear(dc.Data[:])
	for n, value := range slices.Collect(WordsOf(data)) {
		dc.Data[n] = value
	}

	return
}

// Marshal writes the drum data to a writer, as big-endian words.
func (dc *Drum) Marshal(file io.Writer) (err error) {
	_, err = file.Write(BytesOf(slices.Values(dc.Data[:])))

	return
}
