package io

import (
	"iter"
)

// RING_DEFAULT_CAPACITY is the default capacity in words for a new ring.
const RING_DEFAULT_CAPACITY = 256

// Ring is a bounded circular FIFO of words.
type Ring struct {
	Capacity int // Capacity in words.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []uint16
}

// Rewind empties the ring, and allocates its storage.
func (ring *Ring) Rewind() {
	if ring.Capacity == 0 {
		ring.Capacity = RING_DEFAULT_CAPACITY
	}
	ring.ReadIndex = 0
	ring.WriteIndex = 0
	ring.Size = 0
	ring.Data = make([]uint16, ring.Capacity)
}

// Push appends a word. Returns ErrChannelFull if the ring is full.
func (ring *Ring) Push(value uint16) (err error) {
	if ring.Data == nil {
		ring.Rewind()
	}

	if ring.Size >= ring.Capacity {
		err = ErrChannelFull
		return
	}

	ring.Data[ring.WriteIndex] = value

	ring.WriteIndex++
	if ring.WriteIndex == ring.Capacity {
		ring.WriteIndex = 0
	}
	ring.Size++

	return
}

// Pop removes the oldest word, or returns false if the ring is empty.
func (ring *Ring) Pop() (value uint16, ok bool) {
	if ring.Size == 0 {
		return
	}

	value = ring.Data[ring.ReadIndex]
	ring.ReadIndex++
	if ring.ReadIndex == ring.Capacity {
		ring.ReadIndex = 0
	}
	ring.Size--
	ok = true

	return
}

// Drain returns an iterator that pops words until the ring is empty.
func (ring *Ring) Drain() iter.Seq[uint16] {
	return func(yield func(value uint16) bool) {
		for {
			value, ok := ring.Pop()
			if !ok || !yield(value) {
				return
			}
		}
	}
}
