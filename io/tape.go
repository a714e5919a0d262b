package io

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode"
)

// Tape provides sequential I/O of integers as text.
// Input values are separated by commas or whitespace; output values are
// written one per line.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Err error // First input error, other than end of input.

	scanner *bufio.Scanner
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// scanValues is a bufio.SplitFunc yielding comma or space separated tokens.
func scanValues(data []byte, atEOF bool) (advance int, token []byte, err error) {
	isSep := func(r rune) bool { return r == ',' || unicode.IsSpace(r) }

	start := 0
	for start < len(data) && isSep(rune(data[start])) {
		start++
	}

	end := bytes.IndexFunc(data[start:], isSep)
	if end >= 0 {
		return start + end + 1, data[start : start+end], nil
	}

	if atEOF && start < len(data) {
		return len(data), data[start:], nil
	}

	return start, nil, nil
}

// Receive reads the next integer from the input stream.
func (tc *Tape) Receive() (value int64, ok bool) {
	if tc.Input == nil || tc.Err != nil {
		return
	}

	if tc.scanner == nil {
		tc.scanner = bufio.NewScanner(tc.Input)
		tc.scanner.Split(scanValues)
	}

	if !tc.scanner.Scan() {
		tc.Err = tc.scanner.Err()
		return
	}

	word := tc.scanner.Text()
	value, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		tc.Err = ErrTapeSyntax(word)
		value = 0
		return
	}

	ok = true
	return
}

// Send writes a value to the output stream.
func (tc *Tape) Send(value int64) (err error) {
	if tc.Output == nil {
		err = ErrChannelFull
		return
	}

	_, err = fmt.Fprintln(tc.Output, value)

	return
}
