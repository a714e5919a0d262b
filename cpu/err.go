package cpu

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Machine faults
	ErrDecode         = errors.New(f("decode fault"))
	ErrAddress        = errors.New(f("address fault"))
	ErrInputUnderflow = errors.New(f("input underflow"))
	ErrOutput         = errors.New(f("output failed"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrDataMissing        = errors.New(f(".data without values"))
	ErrTargetImmediate    = errors.New(f("immediate write target"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrOpcode is an instruction word whose operation is not in the instruction set.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode %d", int64(eo))
}

func (eo ErrOpcode) Is(err error) bool {
	return err == ErrDecode
}

// ErrMode is an instruction word with a parameter mode digit other than 0 or 1.
type ErrMode struct {
	Word  Code
	Param int
	Mode  int64
}

func (err *ErrMode) Error() string {
	return f("bad mode %d for parameter %d of %d", err.Mode, err.Param, int64(err.Word))
}

func (err *ErrMode) Is(target error) bool {
	return target == ErrDecode
}

// ErrAddressRange is a read or write outside of the machine memory.
type ErrAddressRange struct {
	Address int64
	Size    int
}

func (err *ErrAddressRange) Error() string {
	return f("address %d outside memory of %d", err.Address, err.Size)
}

func (err *ErrAddressRange) Is(target error) bool {
	return target == ErrAddress
}

// ErrFault indicates the location of a machine fault.
type ErrFault struct {
	Ip   int
	Word Code
	Err  error
}

func (err *ErrFault) Error() string {
	return f("ip %d word %d %v", err.Ip, int64(err.Word), err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
