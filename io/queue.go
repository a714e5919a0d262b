package io

import (
	"iter"
)

// QUEUE_MIN_GROWTH is the smallest backing store allocated by a growing Queue.
const QUEUE_MIN_GROWTH = 8

// Queue implements a circular buffer of pending values.
// It operates as a FIFO with an optional fixed capacity and separate
// read/write positions.
type Queue struct {
	Capacity int // Capacity in values. Zero grows without bound.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []int64
}

var _ Channel = (*Queue)(nil)

// NewQueue creates an unbounded queue holding the values, in order.
func NewQueue(values ...int64) (queue *Queue) {
	queue = &Queue{}
	for _, value := range values {
		queue.Send(value)
	}

	return
}

// Len returns the number of pending values.
func (queue *Queue) Len() int {
	return queue.Size
}

// Rewind empties the queue, resetting indices.
func (queue *Queue) Rewind() {
	queue.ReadIndex = 0
	queue.WriteIndex = 0
	queue.Size = 0
}

// Pending returns an iterator over the queued values without consuming them.
func (queue *Queue) Pending() iter.Seq[int64] {
	return func(yield func(value int64) bool) {
		index := queue.ReadIndex
		for range queue.Size {
			if !yield(queue.Data[index]) {
				return
			}
			index++
			if index == len(queue.Data) {
				index = 0
			}
		}
	}
}

// Receive removes the oldest value from the queue.
// The buffer wraps around at the end of the backing store.
func (queue *Queue) Receive() (value int64, ok bool) {
	if queue.Size == 0 {
		return
	}

	value = queue.Data[queue.ReadIndex]
	queue.ReadIndex++
	if queue.ReadIndex == len(queue.Data) {
		queue.ReadIndex = 0
	}
	queue.Size--
	ok = true

	return
}

// Send writes a value at the current write position.
// Returns ErrChannelFull if the queue has reached capacity.
func (queue *Queue) Send(value int64) (err error) {
	if queue.Capacity > 0 && queue.Size >= queue.Capacity {
		err = ErrChannelFull
		return
	}

	if queue.Size == len(queue.Data) {
		queue.grow()
	}

	queue.Data[queue.WriteIndex] = value

	queue.WriteIndex++
	if queue.WriteIndex == len(queue.Data) {
		queue.WriteIndex = 0
	}
	queue.Size++

	return
}

// grow enlarges the backing store, unwrapping the pending values to its start.
func (queue *Queue) grow() {
	size := max(2*len(queue.Data), QUEUE_MIN_GROWTH)
	if queue.Capacity > 0 {
		size = min(size, queue.Capacity)
	}

	data := make([]int64, 0, size)
	for value := range queue.Pending() {
		data = append(data, value)
	}

	queue.ReadIndex = 0
	queue.WriteIndex = len(data)
	queue.Data = data[:size]
}
