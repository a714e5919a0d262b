// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/tliron/commonlog"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/internal"
	"github.com/ezrec/intcode/io"
)

var log = commonlog.GetLogger("intcode.emulator")

const (
	NOUN_ADDRESS = 1  // Address patched with the noun by Search.
	VERB_ADDRESS = 2  // Address patched with the verb by Search.
	SEARCH_LIMIT = 99 // Largest noun or verb tried by Search.
)

var _emulator_defines = map[string]string{
	"NOUN_ADDRESS": fmt.Sprintf("%d", NOUN_ADDRESS),
	"VERB_ADDRESS": fmt.Sprintf("%d", VERB_ADDRESS),
	"SEARCH_LIMIT": fmt.Sprintf("%d", SEARCH_LIMIT),
}

var (
	ErrNotFound = errors.New(f("no noun and verb produce the target"))
)

// Emulator state. CPU + program listing + tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Tape io.Tape // Tape receiving every output value, if it has an Output.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(nil),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		cpu.Defines(),
	)
}

// Reset reloads the program into memory and queues the inputs.
func (emu *Emulator) Reset(inputs ...int64) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Output = nil
	if emu.Tape.Output != nil {
		emu.Cpu.Output = &emu.Tape
	}

	err = emu.Cpu.Reset(emu.Program.Binary(), inputs...)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Infof("emulator: reset, %d opcodes", len(emu.Program.Opcodes))
	}

	return
}

// Patch overwrites memory cells starting at an address.
func (emu *Emulator) Patch(addr int64, values ...int64) (err error) {
	for n, value := range values {
		err = emu.Cpu.Memory.Store(addr+int64(n), value)
		if err != nil {
			return
		}
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return emu.Cpu.Ip
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Ip)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	state, err := emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = state == cpu.STATE_HALTED

	return
}

// Run ticks the emulator until the program halts, and returns the value of
// memory cell 0.
func (emu *Emulator) Run() (result int64, err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	result, err = emu.Cpu.Memory.Load(0)

	return
}

// Search runs the program for every noun and verb in [0, SEARCH_LIMIT],
// patched into NOUN_ADDRESS and VERB_ADDRESS, until memory cell 0 holds
// the target. It returns 100 * noun + verb.
func (emu *Emulator) Search(target int64) (answer int64, err error) {
	for noun := range int64(SEARCH_LIMIT + 1) {
		for verb := range int64(SEARCH_LIMIT + 1) {
			err = emu.Reset()
			if err != nil {
				return
			}
			err = emu.Patch(NOUN_ADDRESS, noun, verb)
			if err != nil {
				return
			}
			var result int64
			result, err = emu.Run()
			if err != nil {
				if emu.Verbose {
					log.Infof("emulator: noun %d verb %d: %v", noun, verb, err)
				}
				err = nil
				continue
			}
			if result == target {
				answer = 100*noun + verb
				return
			}
		}
	}

	err = ErrNotFound

	return
}
