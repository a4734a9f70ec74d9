package emu

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Core runs a Machine as an akita ticking component, one instruction per
// cycle. It stops ticking when the machine halts, faults or exhausts its
// step budget.
type Core struct {
	*sim.TickingComponent

	machine  *Machine
	maxSteps int
	err      error
}

// Machine returns the machine driven by the core.
func (c *Core) Machine() *Machine {
	return c.machine
}

// Err returns the fault or ErrStepLimit that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Tick executes one instruction.
func (c *Core) Tick() (madeProgress bool) {
	if c.err != nil || c.machine.Halted() {
		return false
	}

	if c.machine.Steps >= c.maxSteps {
		c.err = ErrStepLimit
		Trace("Halt", "Behavior", "StepLimit", "PC", c.machine.PC, "Steps", c.machine.Steps)
		return false
	}

	if err := c.machine.Step(); err != nil {
		c.err = err
		return false
	}

	return !c.machine.Halted()
}
