// Package emu executes Hack machine code. It is the reference interpreter
// used to check the translator's output end to end.
package emu

import (
	"errors"
	"fmt"
)

// MemorySize is the number of addressable RAM words.
const MemorySize = 1 << 15

// ErrStepLimit is returned when a program does not halt within its budget.
var ErrStepLimit = errors.New("emu: step limit reached before halt")

// haltJump encodes "0;JMP".
const haltJump uint16 = 0b1110101010000111

// Machine is the Hack CPU state: ROM, RAM and the A, D and PC registers.
type Machine struct {
	ROM []uint16
	RAM []int16

	A, D  int16
	PC    int
	Steps int

	halted bool
}

// NewMachine loads rom into a machine with zeroed RAM.
func NewMachine(rom []uint16) *Machine {
	return &Machine{
		ROM: rom,
		RAM: make([]int16, MemorySize),
	}
}

// Halted reports whether the program reached its terminating self-loop or
// ran past the end of ROM.
func (m *Machine) Halted() bool {
	return m.halted || m.PC < 0 || m.PC >= len(m.ROM)
}

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.Halted() {
		return nil
	}

	inst := m.ROM[m.PC]
	m.Steps++

	if inst&0x8000 == 0 {
		m.A = int16(inst)
		m.PC++
		return nil
	}

	addr := int(uint16(m.A))
	useM := inst&0x1000 != 0
	writeM := inst&0x0008 != 0

	if (useM || writeM) && addr >= MemorySize {
		return fmt.Errorf("emu: memory access at %d out of range (pc=%d)", addr, m.PC)
	}

	y := m.A
	if useM {
		y = m.RAM[addr]
	}
	out := alu(m.D, y, (inst>>6)&0x3f)

	if writeM {
		m.RAM[addr] = out
	}
	if inst&0x0020 != 0 {
		m.A = out
	}
	if inst&0x0010 != 0 {
		m.D = out
	}

	if jumps(out, inst&0x7) {
		if inst == haltJump && addr == m.PC-1 && m.PC > 0 && m.ROM[m.PC-1] == uint16(addr) {
			m.halted = true
			Trace("Halt", "Behavior", "SelfLoop", "PC", m.PC, "Steps", m.Steps)
			return nil
		}
		m.PC = addr
		return nil
	}

	m.PC++
	return nil
}

// Run steps until the machine halts or maxSteps instructions were executed.
func (m *Machine) Run(maxSteps int) error {
	for !m.Halted() {
		if m.Steps >= maxSteps {
			return ErrStepLimit
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// alu applies the six Hack ALU control bits zx nx zy ny f no.
func alu(x, y int16, c uint16) int16 {
	if c&0x20 != 0 {
		x = 0
	}
	if c&0x10 != 0 {
		x = ^x
	}
	if c&0x08 != 0 {
		y = 0
	}
	if c&0x04 != 0 {
		y = ^y
	}

	var out int16
	if c&0x02 != 0 {
		out = x + y
	} else {
		out = x & y
	}

	if c&0x01 != 0 {
		out = ^out
	}
	return out
}

func jumps(out int16, j uint16) bool {
	return (j&0x4 != 0 && out < 0) ||
		(j&0x2 != 0 && out == 0) ||
		(j&0x1 != 0 && out > 0)
}

// SP returns the stack pointer.
func (m *Machine) SP() int {
	return int(m.RAM[0])
}

// Top returns the value on top of the stack.
func (m *Machine) Top() int16 {
	sp := m.SP()
	if sp <= 0 || sp > MemorySize {
		return 0
	}
	return m.RAM[sp-1]
}

// Stack returns a copy of RAM[base:SP].
func (m *Machine) Stack(base int) []int16 {
	sp := m.SP()
	if sp <= base || sp > MemorySize {
		return nil
	}
	return append([]int16(nil), m.RAM[base:sp]...)
}
