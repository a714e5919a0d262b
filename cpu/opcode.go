package cpu

import (
	"fmt"
	"strings"
)

// CodeOp is an Intcode operation.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_ADD  = CodeOp(1)  // add
	OP_MUL  = CodeOp(2)  // mul
	OP_IN   = CodeOp(3)  // in
	OP_OUT  = CodeOp(4)  // out
	OP_JT   = CodeOp(5)  // jt
	OP_JF   = CodeOp(6)  // jf
	OP_LT   = CodeOp(7)  // lt
	OP_EQ   = CodeOp(8)  // eq
	OP_HALT = CodeOp(99) // halt
)

// CodeMode is a parameter addressing mode.
type CodeMode int

//go:generate go tool stringer -linecomment -type=CodeMode
const (
	MODE_POSITION  = CodeMode(0) // pos
	MODE_IMMEDIATE = CodeMode(1) // imm
)

// MODE_PARAMS is the number of parameter modes an instruction word carries.
const MODE_PARAMS = 3

// Valid returns true if the operation is part of the instruction set.
func (op CodeOp) Valid() bool {
	switch op {
	case OP_ADD, OP_MUL, OP_IN, OP_OUT, OP_JT, OP_JF, OP_LT, OP_EQ, OP_HALT:
		return true
	}
	return false
}

// Params returns the number of parameters following the instruction word.
func (op CodeOp) Params() int {
	switch op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		return 3
	case OP_JT, OP_JF:
		return 2
	case OP_IN, OP_OUT:
		return 1
	}
	return 0
}

// Width returns the number of memory cells occupied by the instruction.
func (op CodeOp) Width() int {
	return 1 + op.Params()
}

// Target returns the 1-based parameter written by the operation, or 0.
func (op CodeOp) Target() int {
	switch op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		return 3
	case OP_IN:
		return 1
	}
	return 0
}

// Code is a raw instruction word as stored in memory.
type Code int64

// MakeCode encodes an operation and its parameter modes into an instruction word.
func MakeCode(op CodeOp, modes ...CodeMode) Code {
	word := int64(op)
	scale := int64(100)
	for _, mode := range modes {
		word += int64(mode) * scale
		scale *= 10
	}
	return Code(word)
}

// Op returns the operation digits of the instruction word.
func (code Code) Op() CodeOp {
	return CodeOp(int64(code) % 100)
}

// Decode decodes and returns the operation and the three parameter modes.
func (code Code) Decode() (op CodeOp, modes [MODE_PARAMS]CodeMode, err error) {
	if code < 0 {
		err = ErrOpcode(code)
		return
	}

	op = code.Op()
	if !op.Valid() {
		err = ErrOpcode(code)
		return
	}

	block := int64(code) / 100
	for n := range modes {
		digit := block % 10
		if digit != int64(MODE_POSITION) && digit != int64(MODE_IMMEDIATE) {
			err = &ErrMode{Word: code, Param: n + 1, Mode: digit}
			return
		}
		modes[n] = CodeMode(digit)
		block /= 10
	}

	if block != 0 {
		err = &ErrMode{Word: code, Param: MODE_PARAMS + 1, Mode: block % 10}
		return
	}

	return
}

// String returns the assembly language representation of the instruction word.
func (code Code) String() string {
	op, modes, err := code.Decode()
	if err != nil {
		return fmt.Sprintf(".data %d", int64(code))
	}

	var sb strings.Builder
	sb.WriteString(op.String())
	for n := range op.Params() {
		fmt.Fprintf(&sb, ".%v", modes[n])
	}

	return sb.String()
}
