package io

import (
	"iter"
)

// SendAll sends every value to the channel, stopping at the first error.
func SendAll(ch Channel, values ...int64) (err error) {
	for _, value := range values {
		err = ch.Send(value)
		if err != nil {
			return
		}
	}
	return
}

// ReceiveAll returns an iterator that consumes values from the channel
// until it reports no more are available.
func ReceiveAll(ch Channel) iter.Seq[int64] {
	return func(yield func(value int64) bool) {
		for {
			value, ok := ch.Receive()
			if !ok {
				return
			}
			if !yield(value) {
				return
			}
		}
	}
}

// Copy moves values from one channel to another until the source is empty.
// It returns the number of values moved.
func Copy(dst, src Channel) (count int, err error) {
	for value := range ReceiveAll(src) {
		err = dst.Send(value)
		if err != nil {
			return
		}
		count++
	}
	return
}
