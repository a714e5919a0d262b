package io

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue(t *testing.T) {
	assert := assert.New(t)

	queue := NewQueue(1, 2, 3)
	assert.Equal(3, queue.Len())
	assert.Equal([]int64{1, 2, 3}, slices.Collect(queue.Pending()))

	value, ok := queue.Receive()
	assert.True(ok)
	assert.Equal(int64(1), value)

	assert.NoError(queue.Send(4))
	assert.Equal([]int64{2, 3, 4}, slices.Collect(ReceiveAll(queue)))

	_, ok = queue.Receive()
	assert.False(ok)
	assert.Equal(0, queue.Len())
}

func TestQueue_Grow(t *testing.T) {
	assert := assert.New(t)

	queue := &Queue{}

	var expected []int64
	for n := range int64(100) {
		assert.NoError(queue.Send(n))
		expected = append(expected, n)

		// Keep the read position moving so the ring wraps.
		if n%3 == 0 {
			value, ok := queue.Receive()
			assert.True(ok)
			assert.Equal(expected[0], value)
			expected = expected[1:]
		}
	}

	assert.Equal(len(expected), queue.Len())
	assert.Equal(expected, slices.Collect(ReceiveAll(queue)))
}

func TestQueue_Send_CapacityFull(t *testing.T) {
	assert := assert.New(t)

	queue := &Queue{Capacity: 3}

	assert.NoError(queue.Send(10))
	assert.NoError(queue.Send(20))
	assert.NoError(queue.Send(30))
	assert.ErrorIs(queue.Send(40), ErrChannelFull)
	assert.Equal(3, len(queue.Data))

	value, ok := queue.Receive()
	assert.True(ok)
	assert.Equal(int64(10), value)

	assert.NoError(queue.Send(40))
	assert.Equal([]int64{20, 30, 40}, slices.Collect(queue.Pending()))
}

func TestQueue_Rewind(t *testing.T) {
	assert := assert.New(t)

	queue := NewQueue(5, 6)
	queue.Rewind()
	assert.Equal(0, queue.Len())
	assert.Equal(0, queue.ReadIndex)
	assert.Equal(0, queue.WriteIndex)

	_, ok := queue.Receive()
	assert.False(ok)
}

func TestCopy(t *testing.T) {
	assert := assert.New(t)

	src := NewQueue(1, 2, 3, 4)
	dst := &Queue{Capacity: 2}

	count, err := Copy(dst, src)
	assert.ErrorIs(err, ErrChannelFull)
	assert.Equal(2, count)
	assert.Equal([]int64{1, 2}, slices.Collect(dst.Pending()))
	assert.Equal([]int64{4}, slices.Collect(src.Pending()))

	dst = NewQueue()
	assert.NoError(SendAll(dst, 7, 8))
	count, err = Copy(dst, src)
	assert.NoError(err)
	assert.Equal(1, count)
	assert.Equal([]int64{7, 8, 4}, slices.Collect(dst.Pending()))
}
