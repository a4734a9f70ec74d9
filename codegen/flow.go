package codegen

func (g *Generator) writeLabel(label string) {
	g.emit("(" + g.ctx.scope(label) + ")")
}

func (g *Generator) writeGoto(label string) {
	g.emit("@"+g.ctx.scope(label), "0;JMP")
}

// writeIf pops the stack top and jumps when it is nonzero.
func (g *Generator) writeIf(label string) {
	g.popD()
	g.emit("@"+g.ctx.scope(label), "D;JNE")
}
