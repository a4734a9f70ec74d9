// Package asm assembles Hack assembly text into 16-bit machine words.
//
// Assembly is two-pass: the first pass records the ROM address of every
// (LABEL) declaration, the second encodes instructions and allocates RAM
// addresses for the remaining symbols from 16 upward in order of first use.
package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxAddress is the largest value an A-instruction can load.
const MaxAddress = 1<<15 - 1

// firstVariable is the RAM address of the first allocated variable.
const firstVariable = 16

var predefined = func() map[string]int {
	m := map[string]int{
		"SP":     0,
		"LCL":    1,
		"ARG":    2,
		"THIS":   3,
		"THAT":   4,
		"SCREEN": 16384,
		"KBD":    24576,
	}
	for i := 0; i < 16; i++ {
		m["R"+strconv.Itoa(i)] = i
	}
	return m
}()

// Error reports a malformed assembly line.
type Error struct {
	Line    int
	Text    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("asm: line %d: %s (%q)", e.Line, e.Message, e.Text)
}

// Program is an assembled program.
type Program struct {
	Words []uint16

	// Labels maps every declared label to its ROM address.
	Labels map[string]int

	// Variables maps every allocated symbol to its RAM address.
	Variables map[string]int

	// Lines maps each ROM address to its 1-based source line.
	Lines []int
}

// Assemble assembles one instruction or label per line. Comments and blank
// lines are ignored.
func Assemble(lines []string) (*Program, error) {
	return AssembleWith(DefaultISA, lines)
}

// AssembleString splits src into lines and assembles them.
func AssembleString(src string) (*Program, error) {
	return Assemble(strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n"))
}

// AssembleWith assembles lines against a specific instruction set.
func AssembleWith(isa *ISA, lines []string) (*Program, error) {
	prog := &Program{
		Labels:    make(map[string]int),
		Variables: make(map[string]int),
	}

	type instruction struct {
		text string
		line int
	}
	var insts []instruction

	for i, raw := range lines {
		text := clean(raw)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "(") {
			if !strings.HasSuffix(text, ")") || len(text) < 3 {
				return nil, &Error{Line: i + 1, Text: raw, Message: "malformed label"}
			}
			label := text[1 : len(text)-1]
			if !validSymbol(label) {
				return nil, &Error{Line: i + 1, Text: raw, Message: "invalid label name"}
			}
			if _, dup := prog.Labels[label]; dup {
				return nil, &Error{Line: i + 1, Text: raw, Message: "duplicate label"}
			}
			if _, clash := predefined[label]; clash {
				return nil, &Error{Line: i + 1, Text: raw, Message: "label redefines a predefined symbol"}
			}
			prog.Labels[label] = len(insts)
			continue
		}

		insts = append(insts, instruction{text: text, line: i + 1})
	}

	if len(insts) > MaxAddress+1 {
		return nil, fmt.Errorf("asm: program has %d instructions, ROM holds %d",
			len(insts), MaxAddress+1)
	}

	next := firstVariable
	prog.Words = make([]uint16, 0, len(insts))
	prog.Lines = make([]int, 0, len(insts))

	for _, inst := range insts {
		var (
			word uint16
			err  error
		)

		if strings.HasPrefix(inst.text, "@") {
			word, err = prog.encodeA(inst.text[1:], &next)
		} else {
			word, err = encodeC(isa, inst.text)
		}
		if err != nil {
			return nil, &Error{Line: inst.line, Text: inst.text, Message: err.Error()}
		}

		prog.Words = append(prog.Words, word)
		prog.Lines = append(prog.Lines, inst.line)
	}

	return prog, nil
}

func (p *Program) encodeA(operand string, next *int) (uint16, error) {
	if operand == "" {
		return 0, fmt.Errorf("missing A-instruction operand")
	}

	if operand[0] >= '0' && operand[0] <= '9' {
		v, err := strconv.Atoi(operand)
		if err != nil {
			return 0, fmt.Errorf("invalid constant %q", operand)
		}
		if v > MaxAddress {
			return 0, fmt.Errorf("constant %d exceeds %d", v, MaxAddress)
		}
		return uint16(v), nil
	}

	if !validSymbol(operand) {
		return 0, fmt.Errorf("invalid symbol %q", operand)
	}
	if v, ok := predefined[operand]; ok {
		return uint16(v), nil
	}
	if v, ok := p.Labels[operand]; ok {
		return uint16(v), nil
	}
	if v, ok := p.Variables[operand]; ok {
		return uint16(v), nil
	}

	if *next > MaxAddress {
		return 0, fmt.Errorf("out of RAM for variable %q", operand)
	}
	p.Variables[operand] = *next
	*next++

	return uint16(p.Variables[operand]), nil
}

func encodeC(isa *ISA, text string) (uint16, error) {
	dest, rest := "", text
	if i := strings.Index(rest, "="); i >= 0 {
		dest, rest = rest[:i], rest[i+1:]
	}

	comp, jump := rest, ""
	if i := strings.Index(rest, ";"); i >= 0 {
		comp, jump = rest[:i], rest[i+1:]
	}

	c, ok := isa.Comp(comp)
	if !ok {
		return 0, fmt.Errorf("unknown computation %q", comp)
	}
	d, ok := isa.Dest(dest)
	if !ok {
		return 0, fmt.Errorf("unknown destination %q", dest)
	}
	j, ok := isa.Jump(jump)
	if !ok {
		return 0, fmt.Errorf("unknown jump %q", jump)
	}

	return 0b111<<13 | c<<6 | d<<3 | j, nil
}

// clean strips comments and all whitespace.
func clean(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.Join(strings.Fields(line), "")
}

func validSymbol(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_.$:-", r):
		default:
			return false
		}
	}
	return true
}

// Format renders words as .hack text, one 16-character binary word per line.
func Format(words []uint16) string {
	var sb strings.Builder
	for _, w := range words {
		fmt.Fprintf(&sb, "%016b\n", w)
	}
	return sb.String()
}
