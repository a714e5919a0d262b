package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode"
)

// Link is an operand of an Opcode waiting for a label address.
type Link struct {
	Index int    // Index into Opcode.Codes.
	Label string // Label to resolve.
	Bias  int64  // Added to the label address.
}

// Opcode represents a line of source with its location and generated memory cells.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []int64
	Links  []Link
}

// Program is a sequence of opcodes, ready to be loaded into memory.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode covering an address.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (mem Memory) {
	for ip, code := range prog.Codes() {
		for len(mem) < ip {
			mem = append(mem, 0)
		}
		mem = append(mem, code)
	}

	return
}

// Codes returns an iterator over the addresses and cells of the program.
func (prog *Program) Codes() iter.Seq2[int, int64] {
	return func(yield func(ip int, code int64) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Ip+n, code) {
					return
				}
			}
		}
	}
}

// isImageSeparator is true for the characters between image values.
func isImageSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// ParseImage parses comma or whitespace separated integers into a Program.
// Each non-empty line of input becomes one Opcode.
func ParseImage(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, 1<<24)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{}
	ip := 0

	for scanner.Scan() {
		line = scanner.Text()
		lineno++

		words := strings.FieldsFunc(line, isImageSeparator)
		if len(words) == 0 {
			continue
		}

		codes := make([]int64, len(words))
		for n, word := range words {
			codes[n], err = strconv.ParseInt(word, 10, 64)
			if err != nil {
				err = ErrParseNumber(word)
				return
			}
		}

		prog.Opcodes = append(prog.Opcodes, Opcode{LineNo: lineno, Ip: ip, Words: words, Codes: codes})
		ip += len(codes)
	}

	err = scanner.Err()

	return
}

// FormatImage writes the memory as a single comma separated line.
func FormatImage(w io.Writer, mem Memory) (err error) {
	words := make([]string, len(mem))
	for n, value := range mem {
		words[n] = strconv.FormatInt(value, 10)
	}

	_, err = fmt.Fprintln(w, strings.Join(words, ","))

	return
}

// Disassemble returns an iterator over the instructions found by a linear
// sweep of memory, as assembly text. Cells that do not decode, that carry
// mode digits for missing parameters, or whose write target is marked
// immediate, are listed as .data.
func Disassemble(mem Memory) iter.Seq2[int, string] {
	return func(yield func(ip int, text string) bool) {
		for ip := 0; ip < len(mem); {
			code := Code(mem[ip])
			op, modes, err := code.Decode()
			width := op.Width()
			if err == nil && ip+width <= len(mem) &&
				MakeCode(op, modes[:op.Params()]...) == code &&
				(op.Target() == 0 || modes[op.Target()-1] == MODE_POSITION) {
				words := []string{op.String()}
				for n := range op.Params() {
					arg := strconv.FormatInt(mem[ip+1+n], 10)
					if modes[n] == MODE_IMMEDIATE && n+1 != op.Target() {
						arg = "#" + arg
					}
					words = append(words, arg)
				}
				if !yield(ip, strings.Join(words, " ")) {
					return
				}
				ip += width
				continue
			}

			if !yield(ip, fmt.Sprintf(".data %d", mem[ip])) {
				return
			}
			ip++
		}
	}
}
