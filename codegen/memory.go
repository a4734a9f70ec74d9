package codegen

import (
	"strconv"

	"github.com/sarchlab/hackvm/config"
	"github.com/sarchlab/hackvm/segment"
	"github.com/sarchlab/hackvm/vm"
)

// writePush loads the source value into D and pushes it.
func (g *Generator) writePush(cmd vm.Command) error {
	seg := cmd.Segment()
	if err := seg.CheckIndex(cmd.Arg2); err != nil {
		return generationError(cmd, "%v", err)
	}
	index := strconv.Itoa(cmd.Arg2)

	switch seg.Mode() {
	case segment.Immediate:
		if seg != segment.Constant {
			return generationError(cmd, "unknown segment %q", cmd.Arg1)
		}
		g.emit("@"+index, "D=A")
	case segment.Indirect:
		g.emit("@"+seg.Register(), "D=M", "@"+index, "A=D+A", "D=M")
	case segment.Direct:
		symbol, err := g.directSymbol(cmd, seg)
		if err != nil {
			return err
		}
		g.emit("@"+symbol, "D=M")
	}

	g.pushD()

	return nil
}

// writePop stores the stack top into the destination slot.
//
// For indirect segments the destination address is computed first and parked
// in R13: both the address and the stack read need the A register.
func (g *Generator) writePop(cmd vm.Command) error {
	seg := cmd.Segment()
	if err := seg.CheckIndex(cmd.Arg2); err != nil {
		return generationError(cmd, "%v", err)
	}
	index := strconv.Itoa(cmd.Arg2)

	switch seg.Mode() {
	case segment.Indirect:
		g.emit("@"+seg.Register(), "D=M", "@"+index, "D=D+A", "@"+regPopAddr, "M=D")
		g.popD()
		g.emit("@"+regPopAddr, "A=M", "M=D")
	case segment.Direct:
		symbol, err := g.directSymbol(cmd, seg)
		if err != nil {
			return err
		}
		g.popD()
		g.emit("@"+symbol, "M=D")
	default:
		return generationError(cmd, "cannot pop into segment %q", cmd.Arg1)
	}

	return nil
}

// directSymbol returns the A-instruction operand of a direct segment slot.
// Static slots are namespaced by unit unless flat addressing is configured.
// The unit name must itself be a valid symbol, otherwise the assembler would
// read it as a constant or reject it.
func (g *Generator) directSymbol(cmd vm.Command, seg segment.Segment) (string, error) {
	if seg == segment.Static &&
		g.cfg.staticMode == config.StaticUnit && g.ctx.Unit != "" {
		if !vm.ValidName(g.ctx.Unit) {
			return "", generationError(cmd,
				"unit name %q cannot prefix a static symbol", g.ctx.Unit)
		}
		return g.ctx.Unit + "." + strconv.Itoa(cmd.Arg2), nil
	}

	addr, err := seg.Address(cmd.Arg2)
	if err != nil {
		return "", generationError(cmd, "%v", err)
	}

	return strconv.Itoa(addr), nil
}
