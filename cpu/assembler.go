// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// opMap maps mnemonics to operations.
var opMap = map[string]CodeOp{
	"add":  OP_ADD,
	"mul":  OP_MUL,
	"in":   OP_IN,
	"out":  OP_OUT,
	"jt":   OP_JT,
	"jf":   OP_JF,
	"lt":   OP_LT,
	"eq":   OP_EQ,
	"halt": OP_HALT,
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"HERE":           "0",
	"OP_ADD":         fmt.Sprintf("%d", OP_ADD),
	"OP_MUL":         fmt.Sprintf("%d", OP_MUL),
	"OP_IN":          fmt.Sprintf("%d", OP_IN),
	"OP_OUT":         fmt.Sprintf("%d", OP_OUT),
	"OP_JT":          fmt.Sprintf("%d", OP_JT),
	"OP_JF":          fmt.Sprintf("%d", OP_JF),
	"OP_LT":          fmt.Sprintf("%d", OP_LT),
	"OP_EQ":          fmt.Sprintf("%d", OP_EQ),
	"OP_HALT":        fmt.Sprintf("%d", OP_HALT),
	"MODE_POSITION":  fmt.Sprintf("%d", MODE_POSITION),
	"MODE_IMMEDIATE": fmt.Sprintf("%d", MODE_IMMEDIATE),
}

// Defines returns an iterator over the equates every assembly starts with.
func Defines() iter.Seq2[string, string] {
	return maps.All(sysEquate)
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabelRef   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)([+-][0-9]+)?$`)
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// EQUATE_DEPTH limits how many times a word is substituted by equates.
const EQUATE_DEPTH = 8

// Assembler is a single pass macro assembler for Intcode.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for local labels.
}

// Predefine defines a new equate or redefines an existing equate, applied
// at the start of every Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// isWordSeparator is true for characters that split the words of a line.
func isWordSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if len(word) == 0 {
		err = ErrOpcodeValueMissing
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// substitute replaces a word by its equate, repeatedly, keeping any
// immediate prefix.
func (asm *Assembler) substitute(word string) string {
	for range EQUATE_DEPTH {
		prefix := ""
		name := word
		if strings.HasPrefix(name, "#") {
			prefix = "#"
			name = name[1:]
		}
		equate, ok := asm.Equate[name]
		if !ok {
			break
		}
		if strings.HasPrefix(equate, "#") {
			prefix = ""
		}
		word = prefix + equate
	}

	return word
}

// operand decodes an instruction parameter. Unknown names are returned as
// a label to link once all labels are known.
func (asm *Assembler) operand(word string) (value int64, mode CodeMode, link *Link, err error) {
	mode = MODE_POSITION
	if strings.HasPrefix(word, "#") {
		mode = MODE_IMMEDIATE
		word = word[1:]
	}

	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	match := reLabelRef.FindStringSubmatch(word)
	if match == nil {
		return
	}
	err = nil

	var bias int64
	if len(match[2]) > 0 {
		bias, err = strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			err = ErrParseNumber(match[2])
			return
		}
	}

	ip, ok := asm.Label[match[1]]
	if ok {
		value = int64(ip) + bias
		return
	}

	link = &Link{Label: match[1], Bias: bias}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be
			// immediates or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	err = nil
	for key, ip := range asm.Label {
		if reIdentifier.MatchString(key) {
			pred[key] = starlark.MakeInt(ip)
		}
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, handling equates, labels and macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number and location.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
	asm.Equate["HERE"] = fmt.Sprintf("%v", asm.currentIp())

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "t":
				str = "\t"
			case "s":
				str = " "
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, isWordSeparator)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	for n, word := range words {
		words[n] = asm.substitute(word)
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)
		defer func() {
			old_equate["LINENO"] = asm.Equate["LINENO"]
			old_equate["HERE"] = asm.Equate["HERE"]
			asm.Equate = old_equate
		}()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Infof("%v: %v", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.FieldsFunc(line, isWordSeparator)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			ip, ok := asm.Label[link.Label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			op.Codes[link.Index] = int64(ip) + link.Bias
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []int64
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := slices.Clone(words)

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, Links: links}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// Alternate syntax substitutions
	switch {
	case len(words) == 2 && words[0] == "jump":
		// jump TARGET => jt #1 #TARGET
		words = []string{"jt", "#1", "#" + strings.TrimPrefix(words[1], "#")}
	case len(words) == 3 && words[0] == "mov":
		// mov SRC DST => add SRC #0 DST
		words = []string{"add", words[1], "#0", words[2]}
	case len(words) == 1 && words[0] == "exit":
		words = []string{"halt"}
	default:
		// unchanged
	}

	if words[0] == ".data" {
		if len(words) < 2 {
			err = ErrDataMissing
			return
		}
		for n, word := range words[1:] {
			value, mode, link, _err := asm.operand(word)
			if _err != nil {
				err = _err
				return
			}
			if mode != MODE_POSITION {
				err = ErrInstructionInvalid
				return
			}
			if link != nil {
				link.Index = n
				links = append(links, *link)
			}
			codes = append(codes, value)
		}
		return
	}

	op, ok := opMap[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := words[1:]
	if len(args) < op.Params() {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > op.Params() {
		err = ErrOpcodeExtraArgs
		return
	}

	modes := make([]CodeMode, op.Params())
	values := make([]int64, op.Params())
	var params []Link
	for n, arg := range args {
		value, mode, link, _err := asm.operand(arg)
		if _err != nil {
			err = _err
			return
		}
		if n+1 == op.Target() && mode != MODE_POSITION {
			err = ErrTargetImmediate
			return
		}
		if link != nil {
			link.Index = n + 1
			params = append(params, *link)
		}
		modes[n] = mode
		values[n] = value
	}

	codes = append([]int64{int64(MakeCode(op, modes...))}, values...)
	links = params

	return
}
