package io

import (
	"iter"
)

// WordsOf returns an iterator over big-endian 16-bit words of data. An odd
// trailing byte is yielded as the high byte of a final word.
func WordsOf(data []byte) iter.Seq[uint16] {
	return func(yield func(value uint16) bool) {
		for n := 0; n < len(data); n += 2 {
			value := uint16(data[n]) << 8
			if n+1 < len(data) {
				value |= uint16(data[n+1])
			}
			if !yield(value) {
				return
			}
		}
	}
}

// BytesOf returns words as big-endian bytes.
func BytesOf(words iter.Seq[uint16]) (data []byte) {
	for value := range words {
		data = append(data, uint8(value>>8), uint8(value))
	}

	return
}
