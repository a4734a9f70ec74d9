package emu

import (
	"github.com/sarchlab/akita/v4/sim"
)

// DefaultMaxSteps bounds a run when no budget is configured.
const DefaultMaxSteps = 1_000_000

// Builder can create new cores.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	maxSteps int
}

// NewBuilder returns a builder with a 1 GHz clock and the default budget.
func NewBuilder() Builder {
	return Builder{
		freq:     1 * sim.GHz,
		maxSteps: DefaultMaxSteps,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMaxSteps sets the instruction budget.
func (b Builder) WithMaxSteps(maxSteps int) Builder {
	b.maxSteps = maxSteps
	return b
}

// Build creates a core that runs machine.
func (b Builder) Build(name string, machine *Machine) *Core {
	c := &Core{
		machine:  machine,
		maxSteps: b.maxSteps,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}

// Run executes rom on a fresh machine driven by a serial engine and returns
// the final machine state. The machine is returned together with
// ErrStepLimit when the budget runs out.
func Run(rom []uint16, maxSteps int) (*Machine, error) {
	engine := sim.NewSerialEngine()

	core := NewBuilder().
		WithEngine(engine).
		WithMaxSteps(maxSteps).
		Build("Hack.Core", NewMachine(rom))

	core.TickNow()
	if err := engine.Run(); err != nil {
		return nil, err
	}

	return core.Machine(), core.Err()
}
