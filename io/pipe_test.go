package io

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPipe(t *testing.T) {
	assert := assert.New(t)

	pipe := NewPipe(context.Background(), 2)

	go func() {
		defer pipe.Close()
		for n := range int64(10) {
			pipe.Send(n * n)
		}
	}()

	var values []int64
	for value := range ReceiveAll(pipe) {
		values = append(values, value)
	}

	assert.Equal([]int64{0, 1, 4, 9, 16, 25, 36, 49, 64, 81}, values)
}

func TestPipe_Closed(t *testing.T) {
	assert := assert.New(t)

	pipe := NewPipe(context.Background(), 0)
	assert.NoError(pipe.Send(1))
	pipe.Close()
	pipe.Close()

	// Buffered values survive the close, later values are dropped.
	assert.NoError(pipe.Send(2))

	value, ok := pipe.Receive()
	assert.True(ok)
	assert.Equal(int64(1), value)

	_, ok = pipe.Receive()
	assert.False(ok)
}

func TestPipe_Cancel(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	pipe := NewPipe(ctx, 1)

	done := make(chan bool)
	go func() {
		_, ok := pipe.Receive()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case ok := <-done:
		assert.False(ok)
	case <-time.After(time.Second):
		t.Fatal("receive not cancelled")
	}

	assert.ErrorIs(pipe.Send(1), context.Canceled)
}
