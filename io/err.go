package io

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull = errors.New(f("channel full"))
)

// ErrTapeSyntax is a tape token that is not an integer.
type ErrTapeSyntax string

func (err ErrTapeSyntax) Error() string {
	return f("tape value '%v' is not an integer", string(err))
}
