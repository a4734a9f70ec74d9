package codegen_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/config"
	"github.com/sarchlab/hackvm/vm"
)

var _ = Describe("Generator", func() {
	Context("Bootstrap", func() {
		It("should set SP and call the entry function", func() {
			lines := translate("function Sys.init 0\nlabel L\ngoto L\n", config.Default())

			Expect(lines[:4]).To(Equal([]string{"@256", "D=A", "@SP", "M=D"}))
			Expect(lines[4]).To(Equal("@$ret$0"))
			Expect(lines).To(ContainElement("@Sys.init"))
			Expect(lines).To(ContainElement("($ret$0)"))
		})

		It("should initialise the legacy segment bases without bootstrap", func() {
			m := run("push constant 1\n", bare())

			Expect(m.RAM[1]).To(Equal(int16(config.LegacyLocalBase)))
			Expect(m.RAM[2]).To(Equal(int16(config.LegacyArgumentBase)))
			Expect(m.RAM[3]).To(Equal(int16(config.LegacyThisBase)))
			Expect(m.RAM[4]).To(Equal(int16(config.LegacyThatBase)))
		})

		It("should end with the halt loop", func() {
			lines := translate("push constant 1\n", bare())

			Expect(lines[len(lines)-3:]).To(Equal([]string{
				"(" + codegen.HaltLabel + ")", "@" + codegen.HaltLabel, "0;JMP",
			}))
		})

		It("should honour a custom stack base", func() {
			cfg := bare()
			cfg.StackBase = 1000

			m := run("push constant 9\n", cfg)
			Expect(m.SP()).To(Equal(1001))
			Expect(m.RAM[1000]).To(Equal(int16(9)))
		})
	})

	Context("Arithmetic", func() {
		It("should add two constants", func() {
			m := run("push constant 7\npush constant 8\nadd\n", bare())

			Expect(m.Top()).To(Equal(int16(15)))
			Expect(m.SP()).To(Equal(257))
		})

		DescribeTable("binary and unary operators",
			func(src string, want int16) {
				m := run(src, bare())
				Expect(m.Top()).To(Equal(want))
			},
			Entry("sub", "push constant 7\npush constant 10\nsub", int16(-3)),
			Entry("neg", "push constant 7\nneg", int16(-7)),
			Entry("and", "push constant 12\npush constant 10\nand", int16(8)),
			Entry("or", "push constant 12\npush constant 10\nor", int16(14)),
			Entry("not", "push constant 0\nnot", int16(-1)),
			Entry("eq true", "push constant 5\npush constant 5\neq", int16(-1)),
			Entry("eq false", "push constant 5\npush constant 6\neq", int16(0)),
			Entry("gt true", "push constant 7\npush constant 3\ngt", int16(-1)),
			Entry("gt false", "push constant 3\npush constant 7\ngt", int16(0)),
			Entry("lt true", "push constant 3\npush constant 7\nlt", int16(-1)),
			Entry("lt false", "push constant 7\npush constant 7\nlt", int16(0)),
		)

		It("should allocate distinct labels for every comparison", func() {
			lines := translate(`
				push constant 1
				push constant 2
				eq
				push constant 1
				push constant 2
				gt
				push constant 1
				push constant 2
				lt
				eq
			`, bare())

			labels := declarations(lines)
			Expect(labels).To(HaveLen(4*3 + 1))
			seen := map[string]bool{}
			for _, l := range labels {
				Expect(seen).NotTo(HaveKey(l))
				seen[l] = true
			}
		})
	})

	Context("Stack effect", func() {
		stackBefore := 258
		prefix := "push constant 5\npush constant 3\n"

		DescribeTable("each command moves SP by its static stack effect",
			func(line string) {
				cmd := parse(line)[0]
				m := run(prefix+line+"\n", bare())
				Expect(m.SP() - stackBefore).To(Equal(cmd.StackEffect()))
			},
			Entry(nil, "add"), Entry(nil, "sub"), Entry(nil, "and"), Entry(nil, "or"),
			Entry(nil, "eq"), Entry(nil, "gt"), Entry(nil, "lt"),
			Entry(nil, "neg"), Entry(nil, "not"),
			Entry(nil, "push constant 1"), Entry(nil, "push local 2"),
			Entry(nil, "push argument 1"), Entry(nil, "push this 0"),
			Entry(nil, "push that 3"), Entry(nil, "push pointer 1"),
			Entry(nil, "push temp 7"), Entry(nil, "push static 4"),
			Entry(nil, "pop local 2"), Entry(nil, "pop argument 1"),
			Entry(nil, "pop this 0"), Entry(nil, "pop that 3"),
			Entry(nil, "pop pointer 1"), Entry(nil, "pop temp 7"),
			Entry(nil, "pop static 4"),
		)
	})

	Context("Memory access", func() {
		It("should move values between segments", func() {
			m := run(`
				push constant 3030
				pop pointer 0
				push constant 3040
				pop pointer 1
				push constant 32
				pop this 2
				push constant 46
				pop that 6
				push this 2
				push that 6
				add
				pop temp 6
				push constant 21
				pop local 0
				push constant 22
				pop argument 2
				push local 0
				push argument 2
				sub
			`, bare())

			Expect(m.RAM[3]).To(Equal(int16(3030)))
			Expect(m.RAM[4]).To(Equal(int16(3040)))
			Expect(m.RAM[3032]).To(Equal(int16(32)))
			Expect(m.RAM[3046]).To(Equal(int16(46)))
			Expect(m.RAM[11]).To(Equal(int16(78)))
			Expect(m.RAM[300]).To(Equal(int16(21)))
			Expect(m.RAM[402]).To(Equal(int16(22)))
			Expect(m.Top()).To(Equal(int16(-1)))
			Expect(m.SP()).To(Equal(257))
		})

		It("should park the pop address in R13 before reading the stack", func() {
			lines := translate("push constant 1\npop local 3\n", bare())

			Expect(lines).To(ContainElements("@LCL", "D=D+A", "@R13"))
			Expect(indexOf(lines, "@R13")).To(BeNumerically("<", indexOf(lines, "AM=M-1")))
		})

		It("should namespace statics by unit", func() {
			a, err := vm.Parse("A", "push constant 1\npop static 0\n")
			Expect(err).NotTo(HaveOccurred())
			b, err := vm.Parse("B", "push constant 2\npop static 0\npush static 0\n")
			Expect(err).NotTo(HaveOccurred())

			lines, err := codegen.NewBuilder().WithConfig(bare()).Build().
				Translate(append(a, b...))
			Expect(err).NotTo(HaveOccurred())

			Expect(lines).To(ContainElements("@A.0", "@B.0"))
			m, prog := execute(lines)
			Expect(m.RAM[prog.Variables["A.0"]]).To(Equal(int16(1)))
			Expect(m.RAM[prog.Variables["B.0"]]).To(Equal(int16(2)))
			Expect(m.Top()).To(Equal(int16(2)))
		})

		It("should address statics from 16 in flat mode", func() {
			cfg := bare()
			cfg.StaticMode = config.StaticFlat

			m := run("push constant 9\npop static 3\n", cfg)
			Expect(m.RAM[19]).To(Equal(int16(9)))
		})
	})

	Context("Program flow", func() {
		It("should scope labels by function", func() {
			lines := translate(`
				function Foo 0
				label L
				goto L
				function Bar 0
				label L
				if-goto L
			`, config.Default())

			Expect(lines).To(ContainElements("(Foo$L)", "(Bar$L)", "@Foo$L", "@Bar$L"))
		})

		It("should loop with if-goto", func() {
			m := run(`
				push constant 0
				pop local 0
				push constant 5
				pop argument 0
				label LOOP
				push argument 0
				push local 0
				add
				pop local 0
				push argument 0
				push constant 1
				sub
				pop argument 0
				push argument 0
				if-goto LOOP
				push local 0
			`, bare())

			Expect(m.Top()).To(Equal(int16(15)))
		})
	})

	Context("Functions", func() {
		It("should push the frame and reposition ARG and LCL on call", func() {
			lines := translate(`
				push constant 10
				push constant 20
				call Callee 2
				function Callee 0
				label HOLD
				goto HOLD
			`, bare())
			m, prog := execute(lines)

			Expect(m.SP()).To(Equal(263))
			Expect(m.RAM[2]).To(Equal(int16(256)))
			Expect(m.RAM[1]).To(Equal(int16(263)))
			Expect(m.RAM[256:263]).To(Equal([]int16{
				10, 20,
				int16(prog.Labels["$ret$0"]),
				config.LegacyLocalBase, config.LegacyArgumentBase,
				config.LegacyThisBase, config.LegacyThatBase,
			}))
		})

		It("should leave the return value at ARG and SP right above it", func() {
			m := run(`
				push constant 10
				push constant 20
				call Add2 2
				label END
				goto END
				function Add2 1
				push argument 0
				push argument 1
				add
				pop local 0
				push constant 3030
				pop pointer 0
				push local 0
				return
			`, bare())

			Expect(m.SP()).To(Equal(257))
			Expect(m.RAM[256]).To(Equal(int16(30)))
			Expect(m.RAM[1]).To(Equal(int16(config.LegacyLocalBase)))
			Expect(m.RAM[2]).To(Equal(int16(config.LegacyArgumentBase)))
			Expect(m.RAM[3]).To(Equal(int16(config.LegacyThisBase)))
			Expect(m.RAM[4]).To(Equal(int16(config.LegacyThatBase)))
		})

		It("should return from a function without arguments", func() {
			m := run(`
				call Seven 0
				label END
				goto END
				function Seven 0
				push constant 7
				return
			`, bare())

			Expect(m.SP()).To(Equal(257))
			Expect(m.RAM[256]).To(Equal(int16(7)))
		})

		It("should zero the locals of a function", func() {
			lines := translate("function F 3\n", bare())

			Expect(lines).To(ContainElement("(F)"))
			Expect(countOf(lines, "M=0")).To(Equal(3))
		})

		It("should run recursive calls from a bootstrapped program", func() {
			lines := translate(fibonacci, config.Default())
			m, _ := execute(lines)

			Expect(m.RAM[5]).To(Equal(int16(8)))
			Expect(lines).To(ContainElements("(Main.fib$ret$0)", "(Main.fib$ret$1)"))
		})

		It("should give repeated calls from one caller distinct return labels", func() {
			lines := translate(`
				function Caller 0
				call f 0
				call f 0
				call f 0
				return
			`, config.Default())

			Expect(lines).To(ContainElements(
				"(Caller$ret$0)", "(Caller$ret$1)", "(Caller$ret$2)"))
		})
	})

	Context("Options", func() {
		It("should emit the VM text as comments", func() {
			lines := translate("push constant 7\n", bare())
			Expect(lines).NotTo(ContainElement("// push constant 7"))

			cfg := bare()
			cfg.Comments = true
			lines = translate("push constant 7\n", cfg)
			Expect(lines).To(ContainElement("// push constant 7"))
		})
	})

	Context("Errors", func() {
		It("should reject an unknown command kind", func() {
			g := codegen.NewBuilder().Build()
			err := g.Emit(vm.Command{Kind: vm.Kind(99), Opcode: "bogus"})

			var genErr *codegen.GenerationError
			Expect(errors.As(err, &genErr)).To(BeTrue())
		})

		DescribeTable("invalid commands that bypassed the parser",
			func(cmd vm.Command) {
				_, err := codegen.NewBuilder().Build().Translate([]vm.Command{cmd})

				var genErr *codegen.GenerationError
				Expect(errors.As(err, &genErr)).To(BeTrue())
				Expect(genErr.Command).To(Equal(cmd))
			},
			Entry("unknown segment", vm.Command{Kind: vm.Push, Opcode: "push", Arg1: "heap", Arg2: 1}),
			Entry("pop constant", vm.Command{Kind: vm.Pop, Opcode: "pop", Arg1: "constant", Arg2: 1}),
			Entry("temp overflow", vm.Command{Kind: vm.Pop, Opcode: "pop", Arg1: "temp", Arg2: 8}),
			Entry("unknown operator", vm.Command{Kind: vm.Arithmetic, Opcode: "mul", Arg1: "mul"}),
		)

		It("should reject unit names that are not symbols in static names", func() {
			cmds, err := vm.Parse("2048", "push constant 1\npop static 0\n")
			Expect(err).NotTo(HaveOccurred())

			_, err = codegen.NewBuilder().WithConfig(bare()).Build().Translate(cmds)

			var genErr *codegen.GenerationError
			Expect(errors.As(err, &genErr)).To(BeTrue())
			Expect(genErr.Reason).To(ContainSubstring(`"2048"`))
		})

		It("should accept any unit name when statics are flat", func() {
			cmds, err := vm.Parse("my file", "push constant 1\npop static 0\npush static 0\n")
			Expect(err).NotTo(HaveOccurred())

			cfg := bare()
			cfg.StaticMode = config.StaticFlat
			lines, err := codegen.NewBuilder().WithConfig(cfg).Build().Translate(cmds)
			Expect(err).NotTo(HaveOccurred())

			m, _ := execute(lines)
			Expect(m.Top()).To(Equal(int16(1)))
		})

		It("should translate only once per generator", func() {
			g := codegen.NewBuilder().WithConfig(bare()).Build()
			cmds := parse("push constant 1\n")

			lines, err := g.Translate(cmds)
			Expect(err).NotTo(HaveOccurred())
			Expect(countOf(lines, "("+codegen.HaltLabel+")")).To(Equal(1))

			_, err = g.Translate(cmds)
			Expect(err).To(MatchError(ContainSubstring("already translated")))
			Expect(g.Output()).To(Equal(lines))
		})
	})
})

const fibonacci = `
function Sys.init 0
push constant 6
call Main.fib 1
pop temp 0
label HALT
goto HALT

function Main.fib 0
push argument 0
push constant 2
lt
if-goto BASE
push argument 0
push constant 1
sub
call Main.fib 1
push argument 0
push constant 2
sub
call Main.fib 1
add
return
label BASE
push argument 0
return
`

func indexOf(lines []string, s string) int {
	for i, l := range lines {
		if l == s {
			return i
		}
	}
	panic(fmt.Sprintf("%q not found", s))
}

func countOf(lines []string, s string) int {
	n := 0
	for _, l := range lines {
		if l == s {
			n++
		}
	}
	return n
}
