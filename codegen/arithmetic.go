package codegen

import "github.com/sarchlab/hackvm/vm"

var unaryComp = map[string]string{
	vm.OpNeg: "M=-M",
	vm.OpNot: "M=!M",
}

var binaryComp = map[string]string{
	vm.OpAdd: "M=D+M",
	vm.OpSub: "M=M-D",
	vm.OpAnd: "M=D&M",
	vm.OpOr:  "M=D|M",
}

var compareJump = map[string]string{
	vm.OpEq: "JEQ",
	vm.OpGt: "JGT",
	vm.OpLt: "JLT",
}

// writeArithmetic expands one arithmetic or logical command.
//
// Unary ops rewrite the stack top in place. Binary ops pop y into D, leave A
// at x and combine into x. Comparisons compute x-y into D and branch to a
// fresh label triple that writes -1 (true) or 0 (false) back to x.
func (g *Generator) writeArithmetic(cmd vm.Command) error {
	op := cmd.Arg1

	if comp, ok := unaryComp[op]; ok {
		g.emit("@SP", "A=M-1", comp)
		return nil
	}

	if comp, ok := binaryComp[op]; ok {
		g.emit("@SP", "AM=M-1", "D=M", "A=A-1", comp)
		return nil
	}

	jump, ok := compareJump[op]
	if !ok {
		return generationError(cmd, "unknown arithmetic operator %q", op)
	}

	isTrue, isFalse, done := g.ctx.Labels.Compare()
	g.emit(
		"@SP", "AM=M-1", "D=M", "A=A-1", "D=M-D",
		"@"+isTrue, "D;"+jump,
		"@"+isFalse, "0;JMP",
		"("+isTrue+")", "D=-1",
		"@"+done, "0;JMP",
		"("+isFalse+")", "D=0",
		"("+done+")",
		"@SP", "A=M-1", "M=D",
	)

	return nil
}
