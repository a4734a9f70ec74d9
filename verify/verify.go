// Package verify provides checks that run next to the translator.
//
// It implements three complementary stages:
//
// 1. Static Lint (lint.go): structural checks on a command sequence
//   - STRUCT: duplicate functions, function bodies that fall off their end
//   - LABEL: jumps to labels the function does not declare, duplicate labels
//   - CALL: calls to functions defined nowhere in the program
//   - STACK: statically-known underflow in straight-line code
//
// 2. Functional Simulator (funcsim.go): executes the commands directly, with
// the same RAM layout and calling convention the translator emits, so it can
// serve as an oracle for the generated machine code.
//
// 3. Report (report.go): lint, functional simulation and a translate,
// assemble and emulate run, with the two final states compared.
//
// # Usage Example
//
//	cmds, _ := vm.Parse("Main", src)
//	report := verify.GenerateReport(cmds, config.Default())
//	report.WriteReport(os.Stdout)
package verify

import (
	"github.com/sarchlab/hackvm/vm"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT"
	IssueLabel  IssueType = "LABEL"
	IssueCall   IssueType = "CALL"
	IssueStack  IssueType = "STACK"
)

// Issue represents a single lint issue
type Issue struct {
	Type     IssueType
	Function string // Enclosing function, "" at top level
	Index    int    // Index of the command in the sequence, or -1
	Command  vm.Command
	Message  string
	Details  map[string]interface{}
}

// Position renders where the issue was found.
func (i Issue) Position() string {
	if i.Index < 0 {
		return "-"
	}
	return i.Command.Position()
}

// functionOf returns, for every command, the function it belongs to.
func functionOf(cmds []vm.Command) []string {
	owners := make([]string, len(cmds))
	current := ""
	for i, cmd := range cmds {
		if cmd.Kind == vm.Function {
			current = cmd.Arg1
		}
		owners[i] = current
	}
	return owners
}
