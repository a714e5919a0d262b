// Package io provides the integer channels that feed and drain Intcode
// machines. It includes a bounded in-memory FIFO (Queue), a blocking
// context-aware pipe for machines running on separate goroutines (Pipe),
// and a text stream adapter (Tape).
package io

// Channel defines the interface for all Intcode I/O channels.
// Channels carry signed integers in FIFO order.
type Channel interface {
	// Rewind resets the channel to its initial state, where possible.
	Rewind()
	// Receive removes and returns the next value. ok is false if no value
	// is available and none will become available.
	Receive() (value int64, ok bool)
	// Send appends a value to the channel.
	Send(value int64) error
}
