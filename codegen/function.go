package codegen

import "strconv"

// frameSize is the number of cells a call saves: the return address and
// LCL, ARG, THIS, THAT.
const frameSize = 5

// savedRegisters lists the registers a call saves, in push order.
var savedRegisters = []string{"LCL", "ARG", "THIS", "THAT"}

// writeCall emits the caller side of the calling convention:
//
//  1. allocate a return label unique to this call site
//  2. push the return address, then LCL, ARG, THIS, THAT
//  3. ARG = SP - n - 5, the first of the n arguments pushed by the caller
//  4. LCL = SP, where the callee's locals begin
//  5. jump to the callee
//  6. declare the return label as the resumption point
func (g *Generator) writeCall(function string, nArgs int) {
	ret := g.ctx.Labels.Return(g.ctx.Function)

	g.emit("@"+ret, "D=A")
	g.pushD()

	for _, reg := range savedRegisters {
		g.emit("@"+reg, "D=M")
		g.pushD()
	}

	g.emit(
		"@SP", "D=M",
		"@"+strconv.Itoa(nArgs+frameSize), "D=D-A",
		"@ARG", "M=D",
		"@SP", "D=M",
		"@LCL", "M=D",
		"@"+function, "0;JMP",
		"("+ret+")",
	)
}

// writeFunction declares the entry label and zeroes nLocals local slots.
func (g *Generator) writeFunction(function string, nLocals int) {
	g.ctx.Function = function

	g.emit("(" + function + ")")
	for i := 0; i < nLocals; i++ {
		g.emit("@SP", "A=M", "M=0", "@SP", "M=M+1")
	}
}

// writeReturn emits the callee side of the calling convention. The order is
// fixed:
//
//  1. R14 = LCL, the frame anchor, before any register is overwritten
//  2. R15 = *(R14 - 5), the return address, before *ARG is written (with
//     zero arguments ARG points at the return address slot)
//  3. *ARG = pop(), SP = ARG + 1
//  4. THAT, THIS, ARG, LCL = *(R14 - 1..4), always read through R14
//  5. jump to R15
func (g *Generator) writeReturn() {
	g.emit(
		"@LCL", "D=M",
		"@"+regFrame, "M=D",
		"@"+strconv.Itoa(frameSize), "A=D-A", "D=M",
		"@"+regRetAddr, "M=D",
	)

	g.popD()
	g.emit(
		"@ARG", "A=M", "M=D",
		"@ARG", "D=M+1",
		"@SP", "M=D",
	)

	for i := len(savedRegisters) - 1; i >= 0; i-- {
		offset := len(savedRegisters) - i
		g.emit(
			"@"+regFrame, "D=M",
			"@"+strconv.Itoa(offset), "A=D-A", "D=M",
			"@"+savedRegisters[i], "M=D",
		)
	}

	g.emit("@"+regRetAddr, "A=M", "0;JMP")
}
