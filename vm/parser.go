package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/hackvm/segment"
)

const commentMarker = "//"

var kinds = map[string]Kind{
	OpAdd:      Arithmetic,
	OpSub:      Arithmetic,
	OpNeg:      Arithmetic,
	OpEq:       Arithmetic,
	OpGt:       Arithmetic,
	OpLt:       Arithmetic,
	OpAnd:      Arithmetic,
	OpOr:       Arithmetic,
	OpNot:      Arithmetic,
	"push":     Push,
	"pop":      Pop,
	"label":    Label,
	"goto":     Goto,
	"if-goto":  IfGoto,
	"call":     Call,
	"function": Function,
	"return":   Return,
}

// operands is the number of tokens following the opcode.
var operands = map[Kind]int{
	Arithmetic: 0,
	Push:       2,
	Pop:        2,
	Label:      1,
	Goto:       1,
	IfGoto:     1,
	Call:       2,
	Function:   2,
	Return:     0,
}

// Parser turns VM source text into commands. A Parser carries the unit name
// that every produced command is tagged with.
type Parser struct {
	unit string
}

// NewParser creates a parser for the given translation unit.
func NewParser(unit string) *Parser {
	return &Parser{unit: unit}
}

// Parse is a shorthand for NewParser(unit).ParseString(src).
func Parse(unit, src string) ([]Command, error) {
	return NewParser(unit).ParseString(src)
}

// ParseString parses a complete source text.
func (p *Parser) ParseString(src string) ([]Command, error) {
	return p.ParseReader(strings.NewReader(src))
}

// ParseReader parses the source read from r, preserving command order. It
// stops at the first malformed line.
func (p *Parser) ParseReader(r io.Reader) ([]Command, error) {
	var cmds []Command

	scanner := bufio.NewScanner(r)
	scanner.Split(scanLines)
	line := 0
	for scanner.Scan() {
		line++
		cmd, ok, err := p.ParseLine(scanner.Text(), line)
		if err != nil {
			return nil, err
		}
		if ok {
			cmds = append(cmds, cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading unit %q: %w", p.unit, err)
	}

	return cmds, nil
}

// ParseLine parses a single source line. ok is false for blank and
// comment-only lines.
func (p *Parser) ParseLine(text string, line int) (cmd Command, ok bool, err error) {
	code := text
	if i := strings.Index(code, commentMarker); i >= 0 {
		code = code[:i]
	}
	tokens := strings.Fields(code)
	if len(tokens) == 0 {
		return Command{}, false, nil
	}

	fail := func(format string, args ...any) (Command, bool, error) {
		return Command{}, false, &ParseError{
			Unit:   p.unit,
			Line:   line,
			Text:   strings.TrimSpace(text),
			Reason: fmt.Sprintf(format, args...),
		}
	}

	opcode := tokens[0]
	kind, known := kinds[opcode]
	if !known {
		return fail("unknown command %q", opcode)
	}

	want := operands[kind]
	if len(tokens)-1 < want {
		return fail("%s expects %d operand(s), got %d", opcode, want, len(tokens)-1)
	}
	if len(tokens)-1 > want {
		return fail("unexpected operand %q", tokens[want+1])
	}

	cmd = Command{Kind: kind, Opcode: opcode, Unit: p.unit, Line: line}

	switch kind {
	case Arithmetic:
		cmd.Arg1 = opcode
	case Return:
	default:
		cmd.Arg1 = tokens[1]
	}

	if want == 2 {
		n, err := strconv.Atoi(tokens[2])
		if err != nil {
			return fail("operand %q is not an integer", tokens[2])
		}
		if n < 0 {
			return fail("operand %d must not be negative", n)
		}
		cmd.Arg2 = n
	}

	switch kind {
	case Push, Pop:
		seg, found := segment.Lookup(cmd.Arg1)
		if !found {
			return fail("unknown segment %q", cmd.Arg1)
		}
		if kind == Pop && seg == segment.Constant {
			return fail("cannot pop into the constant segment")
		}
		if err := seg.CheckIndex(cmd.Arg2); err != nil {
			return fail("%v", err)
		}
	case Label, Goto, IfGoto:
		if !ValidName(cmd.Arg1) {
			return fail("invalid label name %q", cmd.Arg1)
		}
	case Call, Function:
		if err := CheckFunctionName(cmd.Arg1); err != nil {
			return fail("%v", err)
		}
		if cmd.Arg2 > segment.MaxConstant {
			return fail("count %d too large", cmd.Arg2)
		}
	}

	return cmd, true, nil
}

// scanLines splits on \n, \r\n and lone \r.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			return 0, nil, nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
