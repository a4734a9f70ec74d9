// Package vm models the stack-based VM language: typed commands and the parser
// that produces them from source text.
package vm

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/hackvm/segment"
)

// Kind classifies a VM command.
type Kind int

const (
	Arithmetic Kind = iota
	Push
	Pop
	Label
	Goto
	IfGoto
	Call
	Function
	Return
)

var kindNames = [...]string{
	Arithmetic: "arithmetic",
	Push:       "push",
	Pop:        "pop",
	Label:      "label",
	Goto:       "goto",
	IfGoto:     "if-goto",
	Call:       "call",
	Function:   "function",
	Return:     "return",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Command is one VM instruction.
type Command struct {
	Kind Kind

	// Opcode is the literal first token, e.g. "add" or "push".
	Opcode string

	// Arg1 is the arithmetic op for Arithmetic, the segment name for
	// Push/Pop, the label or function name for the flow and function
	// commands, and empty for Return.
	Arg1 string

	// Arg2 is the index for Push/Pop, the argument count for Call and the
	// local count for Function.
	Arg2 int

	// Unit is the translation unit (file base name) the command came from.
	Unit string

	// Line is the 1-based source line.
	Line int
}

// Segment returns the memory segment of a Push or Pop command.
func (c Command) Segment() segment.Segment {
	s, _ := segment.Lookup(c.Arg1)
	return s
}

// StackEffect is the net change of the stack depth caused by the command.
// Call is counted from the caller's point of view after the callee returned:
// the n arguments are replaced by one return value.
func (c Command) StackEffect() int {
	switch c.Kind {
	case Arithmetic:
		if IsUnary(c.Arg1) {
			return 0
		}
		return -1
	case Push:
		return 1
	case Pop, IfGoto:
		return -1
	case Call:
		return 1 - c.Arg2
	case Function:
		return c.Arg2
	default:
		return 0
	}
}

func (c Command) String() string {
	switch c.Kind {
	case Arithmetic:
		return c.Arg1
	case Push, Pop, Call, Function:
		return fmt.Sprintf("%s %s %d", c.Opcode, c.Arg1, c.Arg2)
	case Label, Goto, IfGoto:
		return fmt.Sprintf("%s %s", c.Opcode, c.Arg1)
	case Return:
		return c.Opcode
	}
	return c.Opcode
}

// Position renders the source location as unit:line.
func (c Command) Position() string {
	if c.Unit == "" {
		return strconv.Itoa(c.Line)
	}
	return fmt.Sprintf("%s:%d", c.Unit, c.Line)
}

// The arithmetic and logical operators.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpNeg = "neg"
	OpEq  = "eq"
	OpGt  = "gt"
	OpLt  = "lt"
	OpAnd = "and"
	OpOr  = "or"
	OpNot = "not"
)

// IsUnary reports whether op works in place on the stack top.
func IsUnary(op string) bool {
	return op == OpNeg || op == OpNot
}

// IsComparison reports whether op produces a boolean through a branch.
func IsComparison(op string) bool {
	return op == OpEq || op == OpGt || op == OpLt
}
