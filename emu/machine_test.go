package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hackvm/asm"
	"github.com/sarchlab/hackvm/emu"
)

func rom(src string) []uint16 {
	prog, err := asm.AssembleString(src)
	Expect(err).NotTo(HaveOccurred())
	return prog.Words
}

const sum = `
	@256
	D=A
	@SP
	M=D
	@7
	D=A
	@SP
	A=M
	M=D
	@SP
	M=M+1
	@8
	D=A
	@SP
	A=M
	M=D
	@SP
	M=M+1
	@SP
	AM=M-1
	D=M
	A=A-1
	M=D+M
	(END)
	@END
	0;JMP
`

var _ = Describe("Machine", func() {
	It("should run a program until the halt loop", func() {
		m := emu.NewMachine(rom(sum))
		Expect(m.Run(1000)).To(Succeed())

		Expect(m.Halted()).To(BeTrue())
		Expect(m.SP()).To(Equal(257))
		Expect(m.Top()).To(Equal(int16(15)))
		Expect(m.Stack(256)).To(Equal([]int16{15}))
	})

	It("should halt when PC leaves ROM", func() {
		m := emu.NewMachine(rom("@5\nD=A\n@R7\nM=D\n"))
		Expect(m.Run(100)).To(Succeed())

		Expect(m.RAM[7]).To(Equal(int16(5)))
		Expect(m.Steps).To(Equal(4))
	})

	It("should report the step limit on an endless loop", func() {
		m := emu.NewMachine(rom("(A)\n@B\n0;JMP\n(B)\n@A\n0;JMP\n"))
		err := m.Run(50)

		Expect(errors.Is(err, emu.ErrStepLimit)).To(BeTrue())
		Expect(m.Halted()).To(BeFalse())
		Expect(m.Steps).To(Equal(50))
	})

	DescribeTable("ALU computations",
		func(comp string, d, a int16, want int16) {
			m := emu.NewMachine(rom("D=" + comp))
			m.D = d
			m.A = a
			Expect(m.Step()).To(Succeed())
			Expect(m.D).To(Equal(want))
		},
		Entry(nil, "0", int16(9), int16(4), int16(0)),
		Entry(nil, "1", int16(9), int16(4), int16(1)),
		Entry(nil, "-1", int16(9), int16(4), int16(-1)),
		Entry(nil, "!D", int16(0), int16(4), int16(-1)),
		Entry(nil, "-A", int16(9), int16(4), int16(-4)),
		Entry(nil, "D+1", int16(9), int16(4), int16(10)),
		Entry(nil, "A-1", int16(9), int16(4), int16(3)),
		Entry(nil, "D+A", int16(9), int16(4), int16(13)),
		Entry(nil, "D-A", int16(9), int16(4), int16(5)),
		Entry(nil, "A-D", int16(9), int16(4), int16(-5)),
		Entry(nil, "D&A", int16(12), int16(10), int16(8)),
		Entry(nil, "D|A", int16(12), int16(10), int16(14)),
		Entry("wraps around", "D+A", int16(32767), int16(1), int16(-32768)),
	)

	DescribeTable("jumps",
		func(jump string, d int16, taken bool) {
			m := emu.NewMachine(rom("@10\nD;" + jump))
			m.D = d
			Expect(m.Step()).To(Succeed())
			Expect(m.Step()).To(Succeed())
			if taken {
				Expect(m.PC).To(Equal(10))
			} else {
				Expect(m.PC).To(Equal(2))
			}
		},
		Entry(nil, "JGT", int16(1), true),
		Entry(nil, "JGT", int16(0), false),
		Entry(nil, "JEQ", int16(0), true),
		Entry(nil, "JGE", int16(-1), false),
		Entry(nil, "JLT", int16(-1), true),
		Entry(nil, "JNE", int16(0), false),
		Entry(nil, "JLE", int16(0), true),
		Entry(nil, "JMP", int16(5), true),
	)

	It("should write M at the address held by A before the instruction", func() {
		m := emu.NewMachine(rom("@100\nAM=M+1\n"))
		m.RAM[100] = 41
		Expect(m.Run(10)).To(Succeed())

		Expect(m.RAM[100]).To(Equal(int16(42)))
		Expect(m.A).To(Equal(int16(42)))
	})

	It("should reject memory access past the address space", func() {
		m := emu.NewMachine(rom("@32767\nA=-1\nM=1\n"))
		Expect(m.Step()).To(Succeed())
		Expect(m.Step()).To(Succeed())
		Expect(m.Step()).To(HaveOccurred())
	})

	It("should render the machine state", func() {
		m := emu.NewMachine(rom(sum))
		Expect(m.Run(1000)).To(Succeed())

		out := emu.StateTable(m, 256)
		Expect(out).To(ContainSubstring("Registers"))
		Expect(out).To(ContainSubstring("Pointers"))
		Expect(out).To(ContainSubstring("Stack@256"))
		Expect(out).To(ContainSubstring("15"))
	})
})

var _ = Describe("Core", func() {
	It("should run to the halt loop on the akita engine", func() {
		m, err := emu.Run(rom(sum), 1000)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.Halted()).To(BeTrue())
		Expect(m.Top()).To(Equal(int16(15)))
	})

	It("should stop at the step budget", func() {
		m, err := emu.Run(rom("(A)\n@B\n0;JMP\n(B)\n@A\n0;JMP\n"), 20)

		Expect(errors.Is(err, emu.ErrStepLimit)).To(BeTrue())
		Expect(m.Steps).To(Equal(20))
	})

	It("should expose the machine through the builder", func() {
		machine := emu.NewMachine(rom(sum))
		core := emu.NewBuilder().WithMaxSteps(5).Build("Core", machine)

		Expect(core.Machine()).To(BeIdenticalTo(machine))
		Expect(core.Err()).NotTo(HaveOccurred())
	})
})
