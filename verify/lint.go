package verify

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/vm"
)

// RunLint performs static checks on a whole program.
// Returns a list of issues found, or empty list if no issues.
func RunLint(cmds []vm.Command) []Issue {
	var issues []Issue

	owners := functionOf(cmds)

	issues = append(issues, checkFunctions(cmds)...)
	issues = append(issues, checkLabels(cmds, owners)...)
	issues = append(issues, checkCalls(cmds, owners)...)
	issues = append(issues, checkStack(cmds, owners)...)

	return issues
}

func checkFunctions(cmds []vm.Command) []Issue {
	var issues []Issue

	defined := make(map[string]int)
	for i, cmd := range cmds {
		if cmd.Kind != vm.Function {
			continue
		}

		if prev, dup := defined[cmd.Arg1]; dup {
			issues = append(issues, Issue{
				Type:     IssueStruct,
				Function: cmd.Arg1,
				Index:    i,
				Command:  cmd,
				Message: fmt.Sprintf("function %s defined again (first at %s)",
					cmd.Arg1, cmds[prev].Position()),
				Details: map[string]interface{}{"first": prev},
			})
			continue
		}
		defined[cmd.Arg1] = i
	}

	// A body ends where the next function starts or the sequence ends.
	for i, cmd := range cmds {
		if cmd.Kind != vm.Function {
			continue
		}

		end := len(cmds)
		for j := i + 1; j < len(cmds); j++ {
			if cmds[j].Kind == vm.Function {
				end = j
				break
			}
		}

		last := cmds[end-1]
		if last.Kind != vm.Return && last.Kind != vm.Goto {
			issues = append(issues, Issue{
				Type:     IssueStruct,
				Function: cmd.Arg1,
				Index:    end - 1,
				Command:  last,
				Message:  fmt.Sprintf("function %s does not end in return or goto", cmd.Arg1),
			})
		}
	}

	return issues
}

func checkLabels(cmds []vm.Command, owners []string) []Issue {
	var issues []Issue

	declared := make(map[string]int)
	for i, cmd := range cmds {
		if cmd.Kind != vm.Label {
			continue
		}

		key := codegen.Scoped(owners[i], cmd.Arg1)
		if prev, dup := declared[key]; dup {
			issues = append(issues, Issue{
				Type:     IssueLabel,
				Function: owners[i],
				Index:    i,
				Command:  cmd,
				Message: fmt.Sprintf("label %s declared again (first at %s)",
					cmd.Arg1, cmds[prev].Position()),
			})
			continue
		}
		declared[key] = i
	}

	for i, cmd := range cmds {
		if cmd.Kind != vm.Goto && cmd.Kind != vm.IfGoto {
			continue
		}

		if _, ok := declared[codegen.Scoped(owners[i], cmd.Arg1)]; !ok {
			issues = append(issues, Issue{
				Type:     IssueLabel,
				Function: owners[i],
				Index:    i,
				Command:  cmd,
				Message:  fmt.Sprintf("label %s is not declared in this function", cmd.Arg1),
			})
		}
	}

	return issues
}

func checkCalls(cmds []vm.Command, owners []string) []Issue {
	var issues []Issue

	defined := lo.SliceToMap(
		lo.Filter(cmds, func(c vm.Command, _ int) bool { return c.Kind == vm.Function }),
		func(c vm.Command) (string, bool) { return c.Arg1, true },
	)

	for i, cmd := range cmds {
		if cmd.Kind != vm.Call || defined[cmd.Arg1] {
			continue
		}

		issues = append(issues, Issue{
			Type:     IssueCall,
			Function: owners[i],
			Index:    i,
			Command:  cmd,
			Message:  fmt.Sprintf("call to undefined function %s", cmd.Arg1),
		})
	}

	return issues
}

// operandsNeeded is the number of stack cells a command consumes.
func operandsNeeded(cmd vm.Command) int {
	switch cmd.Kind {
	case vm.Arithmetic:
		if vm.IsUnary(cmd.Arg1) {
			return 1
		}
		return 2
	case vm.Pop, vm.IfGoto, vm.Return:
		return 1
	case vm.Call:
		return cmd.Arg2
	default:
		return 0
	}
}

// checkStack tracks the working stack depth from each function entry until
// the first label, goto or return; past that point the depth depends on
// control flow and is not checked.
func checkStack(cmds []vm.Command, owners []string) []Issue {
	var issues []Issue

	known := false
	depth := 0

	for i, cmd := range cmds {
		switch cmd.Kind {
		case vm.Function:
			known = true
			depth = 0
			continue
		case vm.Label:
			known = false
			continue
		}

		if !known {
			continue
		}

		need := operandsNeeded(cmd)
		if need > depth {
			issues = append(issues, Issue{
				Type:     IssueStack,
				Function: owners[i],
				Index:    i,
				Command:  cmd,
				Message: fmt.Sprintf("%s needs %d stack operand(s), %d available",
					cmd, need, depth),
				Details: map[string]interface{}{"needed": need, "depth": depth},
			})
			known = false
			continue
		}

		depth += cmd.StackEffect()

		if cmd.Kind == vm.Goto || cmd.Kind == vm.Return {
			known = false
		}
	}

	return issues
}
