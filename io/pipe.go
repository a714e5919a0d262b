package io

import (
	"context"
	"sync"
)

// PIPE_DEFAULT_CAPACITY is the buffer size of a Pipe created with no capacity.
const PIPE_DEFAULT_CAPACITY = 16

// Pipe is a bounded channel connecting machines that run on separate
// goroutines. Receive blocks until a value is available, the pipe is
// closed, or the context is done.
type Pipe struct {
	ctx  context.Context
	data chan int64
	done chan struct{}
	once sync.Once
}

var _ Channel = (*Pipe)(nil)

// NewPipe creates a pipe buffering up to capacity values.
func NewPipe(ctx context.Context, capacity int) (pipe *Pipe) {
	if capacity <= 0 {
		capacity = PIPE_DEFAULT_CAPACITY
	}

	pipe = &Pipe{
		ctx:  ctx,
		data: make(chan int64, capacity),
		done: make(chan struct{}),
	}

	return
}

// Rewind is not possible on a pipe.
func (pipe *Pipe) Rewind() {
}

// Close marks the pipe as finished. Buffered values may still be received;
// values sent after Close are discarded.
func (pipe *Pipe) Close() {
	pipe.once.Do(func() { close(pipe.done) })
}

// Receive blocks for the next value.
func (pipe *Pipe) Receive() (value int64, ok bool) {
	select {
	case value = <-pipe.data:
		ok = true
		return
	default:
	}

	select {
	case value = <-pipe.data:
		ok = true
	case <-pipe.done:
		// Drain anything that raced with Close.
		select {
		case value = <-pipe.data:
			ok = true
		default:
		}
	case <-pipe.ctx.Done():
	}

	return
}

// Send blocks until the value is buffered, the pipe is closed, or the
// context is done.
func (pipe *Pipe) Send(value int64) (err error) {
	select {
	case <-pipe.done:
		return
	case <-pipe.ctx.Done():
		err = pipe.ctx.Err()
		return
	default:
	}

	select {
	case pipe.data <- value:
	case <-pipe.done:
		// Drop-on-floor, nobody is listening.
	case <-pipe.ctx.Done():
		err = pipe.ctx.Err()
	}

	return
}
