package cpu

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/ezrec/intcode/io"
)

var log = commonlog.GetLogger("intcode.cpu")

// Channel is an I/O channel interface.
type Channel io.Channel

// State is the outcome of a machine step.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_OUTPUT  = State(1) // output
	STATE_HALTED  = State(2) // halted
)

// Cpu is the simulation context for an Intcode machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory     Memory  // Program and data.
	Ip         int     // Current instruction pointer.
	Input      Channel // Source of input instruction values.
	Output     Channel // Optional sink for output instruction values.
	Diagnostic int64   // Most recently output value.

	Ticks int // Instructions executed since reset.

	halted bool
	fault  error
}

// NewCpu creates a machine running a copy of the image, with the inputs
// pending on an unbounded queue.
func NewCpu(image Memory, inputs ...int64) (cpu *Cpu) {
	cpu = &Cpu{
		Input: io.NewQueue(),
	}

	// Sending to an unbounded queue cannot fail.
	_ = cpu.Reset(image, inputs...)

	return
}

// Reset the machine state.
// - Replaces memory with a copy of the image.
// - Rewinds the input channel, then queues the inputs.
// - Zeros the instruction pointer, diagnostic register and tick counter.
// - Clears the halted and fault state.
func (cpu *Cpu) Reset(image Memory, inputs ...int64) (err error) {
	if cpu.Verbose {
		log.Infof("cpu: reset, %d cells, %d inputs", len(image), len(inputs))
	}

	cpu.Memory = image.Clone()
	cpu.Ip = 0
	cpu.Diagnostic = 0
	cpu.Ticks = 0
	cpu.halted = false
	cpu.fault = nil

	if cpu.Input == nil {
		cpu.Input = io.NewQueue()
	}
	cpu.Input.Rewind()

	err = io.SendAll(cpu.Input, inputs...)

	return
}

// Halted returns true once the machine has executed a halt instruction.
func (cpu *Cpu) Halted() bool {
	return cpu.halted
}

// Fault returns the fault that stopped the machine, if any.
func (cpu *Cpu) Fault() error {
	return cpu.fault
}

// String returns the current machine state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "% 6s: %d\n", "ip", cpu.Ip)
	word, err := cpu.Memory.Load(int64(cpu.Ip))
	if err == nil {
		fmt.Fprintf(&sb, "% 6s: %d (%v)\n", "code", word, Code(word))
	} else {
		fmt.Fprintf(&sb, "% 6s: ----\n", "code")
	}
	fmt.Fprintf(&sb, "% 6s: %d\n", "diag", cpu.Diagnostic)
	fmt.Fprintf(&sb, "% 6s: %v\n", "halted", cpu.halted)
	fmt.Fprintf(&sb, "% 6s: %d\n", "ticks", cpu.Ticks)
	fmt.Fprintf(&sb, "% 6s: %d\n", "memory", len(cpu.Memory))

	return sb.String()
}

// FetchCode fetches the instruction word at the instruction pointer.
// The word is always read fresh from memory.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	word, err := cpu.Memory.Load(int64(cpu.Ip))
	if err != nil {
		return
	}

	code = Code(word)
	return
}

// Tick executes a single instruction cycle.
// A halted machine does not advance, and returns STATE_HALTED.
// A faulted machine does not advance, and returns its fault.
func (cpu *Cpu) Tick() (state State, err error) {
	if cpu.fault != nil {
		err = cpu.fault
		return
	}

	if cpu.halted {
		state = STATE_HALTED
		return
	}

	defer func() {
		if err != nil {
			cpu.fault = err
		}
	}()

	code, err := cpu.FetchCode()
	if err != nil {
		err = &ErrFault{Ip: cpu.Ip, Err: err}
		return
	}

	state, err = cpu.Execute(code)

	return
}

// Run steps the machine until it halts, and returns the value of
// memory cell 0.
func (cpu *Cpu) Run() (result int64, err error) {
	for !cpu.halted {
		_, err = cpu.Tick()
		if err != nil {
			return
		}
	}

	result, err = cpu.Memory.Load(0)

	return
}

// RunToOutput steps the machine until an output instruction has executed,
// or the machine halts. The diagnostic register holds the new output when
// STATE_OUTPUT is returned. Calling it again resumes where it stopped.
func (cpu *Cpu) RunToOutput() (state State, err error) {
	for {
		state, err = cpu.Tick()
		if err != nil || state != STATE_RUNNING {
			return
		}
	}
}

// Execute executes a single decoded instruction at the instruction pointer.
func (cpu *Cpu) Execute(code Code) (state State, err error) {
	defer func() {
		if err != nil {
			err = &ErrFault{Ip: cpu.Ip, Word: code, Err: err}
		}
	}()

	op, modes, err := code.Decode()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Infof("%04d: %v %v", cpu.Ip, code, cpu.Memory[cpu.Ip+1:min(cpu.Ip+op.Width(), len(cpu.Memory))])
	}

	next_ip := cpu.Ip + op.Width()
	state = STATE_RUNNING

	switch op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		var a, b, dst int64
		a, err = cpu.getValue(1, modes[0])
		if err != nil {
			return
		}
		b, err = cpu.getValue(2, modes[1])
		if err != nil {
			return
		}
		dst, err = cpu.getTarget(3)
		if err != nil {
			return
		}
		err = cpu.Memory.Store(dst, cpu.doAlu(op, a, b))
		if err != nil {
			return
		}
	case OP_IN:
		var dst int64
		dst, err = cpu.getTarget(1)
		if err != nil {
			return
		}
		if !cpu.Memory.Valid(dst) {
			err = &ErrAddressRange{Address: dst, Size: len(cpu.Memory)}
			return
		}
		value, ok := cpu.Input.Receive()
		if !ok {
			err = ErrInputUnderflow
			return
		}
		cpu.Memory[dst] = value
	case OP_OUT:
		var value int64
		value, err = cpu.getValue(1, modes[0])
		if err != nil {
			return
		}
		if cpu.Output != nil {
			err = cpu.Output.Send(value)
			if err != nil {
				err = fmt.Errorf("%w: %w", ErrOutput, err)
				return
			}
		}
		cpu.Diagnostic = value
		state = STATE_OUTPUT
	case OP_JT, OP_JF:
		var cond, target int64
		cond, err = cpu.getValue(1, modes[0])
		if err != nil {
			return
		}
		target, err = cpu.getValue(2, modes[1])
		if err != nil {
			return
		}
		if (cond != 0) == (op == OP_JT) {
			next_ip = int(target)
		}
	case OP_HALT:
		cpu.halted = true
		state = STATE_HALTED
		next_ip = cpu.Ip
		if cpu.Verbose {
			log.Infof("cpu: halted after %d ticks", cpu.Ticks+1)
		}
	default:
		err = ErrOpcode(code)
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks++

	return
}

// getValue gets the value of the n'th (1-based) parameter of the current
// instruction, according to its addressing mode.
func (cpu *Cpu) getValue(n int, mode CodeMode) (value int64, err error) {
	value, err = cpu.Memory.Load(int64(cpu.Ip + n))
	if err != nil {
		return
	}

	switch mode {
	case MODE_IMMEDIATE:
		// literal
	case MODE_POSITION:
		value, err = cpu.Memory.Load(value)
	default:
		panic("unknown mode")
	}

	return
}

// getTarget gets the address written by the n'th (1-based) parameter of the
// current instruction. Write targets are always positional.
func (cpu *Cpu) getTarget(n int) (addr int64, err error) {
	return cpu.Memory.Load(int64(cpu.Ip + n))
}

// doAlu performs the requested arithmetic or comparison, and returns the
// value to store.
func (cpu *Cpu) doAlu(op CodeOp, a, b int64) (output int64) {
	switch op {
	case OP_ADD:
		output = a + b
	case OP_MUL:
		output = a * b
	case OP_LT:
		if a < b {
			output = 1
		}
	case OP_EQ:
		if a == b {
			output = 1
		}
	}

	return
}
