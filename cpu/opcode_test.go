package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeDecode(t *testing.T) {
	table := [](struct {
		code  Code
		op    CodeOp
		modes [MODE_PARAMS]CodeMode
		text  string
	}){
		{1, OP_ADD, [3]CodeMode{}, "add.pos.pos.pos"},
		{1002, OP_MUL, [3]CodeMode{MODE_POSITION, MODE_IMMEDIATE, MODE_POSITION}, "mul.pos.imm.pos"},
		{1101, OP_ADD, [3]CodeMode{MODE_IMMEDIATE, MODE_IMMEDIATE, MODE_POSITION}, "add.imm.imm.pos"},
		{3, OP_IN, [3]CodeMode{}, "in.pos"},
		{104, OP_OUT, [3]CodeMode{MODE_IMMEDIATE}, "out.imm"},
		{1105, OP_JT, [3]CodeMode{MODE_IMMEDIATE, MODE_IMMEDIATE}, "jt.imm.imm"},
		{6, OP_JF, [3]CodeMode{}, "jf.pos.pos"},
		{10107, OP_LT, [3]CodeMode{MODE_IMMEDIATE, MODE_POSITION, MODE_IMMEDIATE}, "lt.imm.pos.imm"},
		{1008, OP_EQ, [3]CodeMode{MODE_POSITION, MODE_IMMEDIATE}, "eq.pos.imm.pos"},
		{99, OP_HALT, [3]CodeMode{}, "halt"},
	}

	for _, entry := range table {
		assert := assert.New(t)

		op, modes, err := entry.code.Decode()
		assert.NoError(err, entry.code)
		assert.Equal(entry.op, op)
		assert.Equal(entry.modes, modes)
		assert.Equal(entry.text, entry.code.String())
		assert.Equal(entry.op, entry.code.Op())
	}
}

func TestCodeDecodeInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, code := range []Code{0, 9, 10, 42, 98, 100, -1, -1001, 201, 1299, 21101, 100001} {
		_, _, err := code.Decode()
		assert.ErrorIs(err, ErrDecode, code)
		assert.Contains(code.String(), ".data", code)
	}
}

func TestCodeOpWidth(t *testing.T) {
	assert := assert.New(t)

	widths := map[CodeOp]int{
		OP_ADD:  4,
		OP_MUL:  4,
		OP_IN:   2,
		OP_OUT:  2,
		OP_JT:   3,
		OP_JF:   3,
		OP_LT:   4,
		OP_EQ:   4,
		OP_HALT: 1,
	}

	for op, width := range widths {
		assert.True(op.Valid(), op)
		assert.Equal(width, op.Width(), op)
	}

	assert.False(CodeOp(0).Valid())
	assert.False(CodeOp(9).Valid())
	assert.Equal("CodeOp(9)", CodeOp(9).String())
	assert.Equal("CodeMode(2)", CodeMode(2).String())
	assert.Equal("output", STATE_OUTPUT.String())

	assert.Equal(3, OP_EQ.Target())
	assert.Equal(1, OP_IN.Target())
	assert.Equal(0, OP_OUT.Target())
	assert.Equal(0, OP_JT.Target())
}

func TestMakeCode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Code(1002), MakeCode(OP_MUL, MODE_POSITION, MODE_IMMEDIATE))
	assert.Equal(Code(11105), MakeCode(OP_JT, MODE_IMMEDIATE, MODE_IMMEDIATE, MODE_IMMEDIATE))
	assert.Equal(Code(99), MakeCode(OP_HALT))
	assert.Equal(Code(4), MakeCode(OP_OUT, MODE_POSITION))
}

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := Memory{1, 2, 3}
	clone := mem.Clone()
	clone[0] = 100
	assert.Equal(int64(1), mem[0])

	assert.True(mem.Valid(0))
	assert.True(mem.Valid(2))
	assert.False(mem.Valid(3))
	assert.False(mem.Valid(-1))

	value, err := mem.Load(2)
	assert.NoError(err)
	assert.Equal(int64(3), value)

	_, err = mem.Load(3)
	assert.ErrorIs(err, ErrAddress)

	assert.NoError(mem.Store(1, -5))
	assert.Equal(Memory{1, -5, 3}, mem)

	err = mem.Store(-1, 0)
	var ear *ErrAddressRange
	if assert.ErrorAs(err, &ear) {
		assert.Equal(int64(-1), ear.Address)
		assert.Equal(3, ear.Size)
	}
}
