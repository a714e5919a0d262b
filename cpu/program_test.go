package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseImage(t *testing.T) {
	assert := assert.New(t)

	input := "1,0,0,0,99\n\n2, 3,0 ,3,\n99\n"

	prog, err := ParseImage(strings.NewReader(input))
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal(3, len(prog.Opcodes))
	assert.Equal(1, prog.Opcodes[0].LineNo)
	assert.Equal(3, prog.Opcodes[1].LineNo)
	assert.Equal(5, prog.Opcodes[1].Ip)
	assert.Equal(9, prog.Opcodes[2].Ip)
	assert.Equal(Memory{1, 0, 0, 0, 99, 2, 3, 0, 3, 99}, prog.Binary())

	dbg := prog.Debug(7)
	if assert.NotNil(dbg.Opcode) {
		assert.Equal(3, dbg.LineNo)
		assert.Equal(2, dbg.Index)
	}

	dbg = prog.Debug(10)
	assert.Nil(dbg.Opcode)
}

func TestParseImageErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := ParseImage(strings.NewReader("1,2\n3,x,4\n"))
	var number ErrParseNumber
	if assert.ErrorAs(err, &number) {
		assert.Equal(ErrParseNumber("x"), number)
	}
	var syntax *ErrSyntax
	if assert.ErrorAs(err, &syntax) {
		assert.Equal(2, syntax.LineNo)
		assert.Equal("3,x,4", syntax.Line)
	}

	prog, err := ParseImage(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Binary()))
}

func TestFormatImage(t *testing.T) {
	assert := assert.New(t)

	var buff bytes.Buffer
	err := FormatImage(&buff, Memory{3, -1, 0, 99})
	assert.NoError(err)
	assert.Equal("3,-1,0,99\n", buff.String())

	prog, err := ParseImage(&buff)
	assert.NoError(err)
	assert.Equal(Memory{3, -1, 0, 99}, prog.Binary())
}

func TestProgramBinaryGap(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{Ip: 0, Codes: []int64{1101, 2, 3}},
			{Ip: 5, Codes: []int64{99}},
		},
	}

	assert.Equal(Memory{1101, 2, 3, 0, 0, 99}, prog.Binary())

	var ips []int
	for ip := range prog.Codes() {
		ips = append(ips, ip)
		if ip == 1 {
			break
		}
	}
	assert.Equal([]int{0, 1}, ips)
}
