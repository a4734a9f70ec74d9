// Package codegen translates VM commands into Hack assembly.
//
// A Generator owns one Context for its whole lifetime. Commands are consumed
// strictly in order; each one appends its expansion to the output and may
// advance the context (current function, label counters).
//
// Scratch cells used by the expansions:
//
//	R13  destination address of an indirect pop
//	R14  frame anchor during return
//	R15  return address during return
package codegen

import (
	"errors"
	"strconv"

	"github.com/sarchlab/hackvm/config"
	"github.com/sarchlab/hackvm/vm"
)

const (
	regPopAddr = "R13"
	regFrame   = "R14"
	regRetAddr = "R15"
)

// Builder creates generators.
type Builder struct {
	bootstrap    bool
	entry        string
	stackBase    int
	initSegments bool
	staticMode   config.StaticMode
	comments     bool
	haltLoop     bool
}

// NewBuilder returns a builder with the default configuration.
func NewBuilder() Builder {
	return Builder{}.WithConfig(config.Default())
}

// WithConfig copies every generation setting from cfg.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.bootstrap = cfg.Bootstrap
	b.entry = cfg.Entry
	b.stackBase = cfg.StackBase
	b.initSegments = cfg.InitSegments
	b.staticMode = cfg.StaticMode
	b.comments = cfg.Comments
	b.haltLoop = cfg.HaltLoop
	return b
}

// WithBootstrap enables the SP initialisation and the call to the entry.
func (b Builder) WithBootstrap(enabled bool) Builder {
	b.bootstrap = enabled
	return b
}

// WithEntry sets the function called by the bootstrap.
func (b Builder) WithEntry(entry string) Builder {
	b.entry = entry
	return b
}

// WithStackBase sets the initial stack pointer.
func (b Builder) WithStackBase(base int) Builder {
	b.stackBase = base
	return b
}

// WithInitSegments makes a bootstrap-less program start with the legacy
// segment bases.
func (b Builder) WithInitSegments(enabled bool) Builder {
	b.initSegments = enabled
	return b
}

// WithStaticMode selects the static segment addressing.
func (b Builder) WithStaticMode(mode config.StaticMode) Builder {
	b.staticMode = mode
	return b
}

// WithComments emits the VM text of each command as an assembly comment.
func (b Builder) WithComments(enabled bool) Builder {
	b.comments = enabled
	return b
}

// WithHaltLoop appends a terminating self-loop.
func (b Builder) WithHaltLoop(enabled bool) Builder {
	b.haltLoop = enabled
	return b
}

// Build creates a generator with a fresh translation context.
func (b Builder) Build() *Generator {
	return &Generator{
		cfg: b,
		ctx: NewContext(),
	}
}

// Generator is the stateful VM to Hack translator.
type Generator struct {
	cfg Builder
	ctx *Context
	out []string

	translated bool
}

// Context exposes the translation context.
func (g *Generator) Context() *Context {
	return g.ctx
}

// Output returns the instructions generated so far.
func (g *Generator) Output() []string {
	return g.out
}

// Translate produces the complete program: bootstrap, every command in order
// and the halt loop. On error no output is returned. A generator translates
// one program; a second call fails, since the bootstrap and halt labels would
// be declared twice.
func (g *Generator) Translate(cmds []vm.Command) ([]string, error) {
	if g.translated {
		return nil, errors.New("codegen: generator has already translated a program")
	}
	g.translated = true

	g.Bootstrap()

	for _, cmd := range cmds {
		if err := g.Emit(cmd); err != nil {
			return nil, err
		}
	}

	g.Finish()

	return g.out, nil
}

// Bootstrap emits the program prologue.
func (g *Generator) Bootstrap() {
	if g.cfg.comments {
		g.emit("// bootstrap")
	}

	g.emit("@"+strconv.Itoa(g.cfg.stackBase), "D=A", "@SP", "M=D")

	if g.cfg.bootstrap {
		g.writeCall(g.cfg.entry, 0)
		return
	}

	if g.cfg.initSegments {
		for _, s := range []struct {
			reg  string
			base int
		}{
			{"LCL", config.LegacyLocalBase},
			{"ARG", config.LegacyArgumentBase},
			{"THIS", config.LegacyThisBase},
			{"THAT", config.LegacyThatBase},
		} {
			g.emit("@"+strconv.Itoa(s.base), "D=A", "@"+s.reg, "M=D")
		}
	}
}

// Finish emits the program epilogue.
func (g *Generator) Finish() {
	if !g.cfg.haltLoop {
		return
	}

	g.emit(
		"("+HaltLabel+")",
		"@"+HaltLabel,
		"0;JMP",
	)
}

// Emit translates a single command.
func (g *Generator) Emit(cmd vm.Command) error {
	g.ctx.Unit = cmd.Unit

	Trace("Translate",
		"Behavior", "Emit",
		"Kind", cmd.Kind.String(),
		"Command", cmd.String(),
		"Function", g.ctx.Function,
		"Position", cmd.Position(),
	)

	if g.cfg.comments {
		g.emit("// " + cmd.String())
	}

	switch cmd.Kind {
	case vm.Arithmetic:
		return g.writeArithmetic(cmd)
	case vm.Push:
		return g.writePush(cmd)
	case vm.Pop:
		return g.writePop(cmd)
	case vm.Label:
		g.writeLabel(cmd.Arg1)
	case vm.Goto:
		g.writeGoto(cmd.Arg1)
	case vm.IfGoto:
		g.writeIf(cmd.Arg1)
	case vm.Call:
		g.writeCall(cmd.Arg1, cmd.Arg2)
	case vm.Function:
		g.writeFunction(cmd.Arg1, cmd.Arg2)
	case vm.Return:
		g.writeReturn()
	default:
		return generationError(cmd, "unknown command kind %d", int(cmd.Kind))
	}

	return nil
}

func (g *Generator) emit(lines ...string) {
	g.out = append(g.out, lines...)
}

// pushD pushes the D register onto the stack.
func (g *Generator) pushD() {
	g.emit("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

// popD pops the stack top into D.
func (g *Generator) popD() {
	g.emit("@SP", "AM=M-1", "D=M")
}
