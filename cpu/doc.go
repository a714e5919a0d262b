// Package cpu implements the Intcode machine and its assembler.
//
// The machine consists of a flat memory of signed integers holding both the
// program and its data, an instruction pointer (IP), an input channel, and a
// diagnostic register holding the most recent output. Instructions are
// re-decoded from memory on every step, so programs may rewrite their own
// code.
//
// The assembler provides a small assembly language for the Intcode
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package cpu
