// Package api defines the driver that turns VM source units into one Hack
// assembly program.
package api

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/config"
	"github.com/sarchlab/hackvm/vm"
)

// Unit is one VM source file.
type Unit struct {
	Name   string
	Source string
}

// Sink receives the generated instructions.
type Sink interface {
	// WriteLines appends instructions to the output.
	WriteLines(lines []string) error

	// Close flushes and releases the output. It is called exactly once,
	// whether the run succeeded or not.
	Close() error
}

// Driver provides the interface to run a translation.
type Driver interface {
	// AddUnit appends a source unit. Units are translated in the order they
	// were added.
	AddUnit(name, src string)

	// AddPath discovers the .vm files under path and adds them in a
	// deterministic order.
	AddPath(path string) error

	// Units returns the units added so far.
	Units() []Unit

	// Run parses and translates every unit through one translation context
	// and writes the result to the sink. Nothing is written unless the whole
	// run succeeds; the sink is closed either way.
	Run() error
}

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	cfg  config.Config
	sink Sink
}

// NewDriverBuilder returns a builder with the default configuration.
func NewDriverBuilder() DriverBuilder {
	return DriverBuilder{cfg: config.Default()}
}

// WithConfig sets the translation configuration.
func (b DriverBuilder) WithConfig(cfg config.Config) DriverBuilder {
	b.cfg = cfg
	return b
}

// WithSink sets the output sink.
func (b DriverBuilder) WithSink(sink Sink) DriverBuilder {
	b.sink = sink
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build(name string) Driver {
	return &driverImpl{
		name: name,
		cfg:  b.cfg,
		sink: b.sink,
	}
}

type driverImpl struct {
	name  string
	cfg   config.Config
	sink  Sink
	units []Unit
}

func (d *driverImpl) AddUnit(name, src string) {
	d.units = append(d.units, Unit{Name: name, Source: src})
}

func (d *driverImpl) AddPath(path string) error {
	files, err := Discover(path)
	if err != nil {
		return err
	}

	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("%s: failed to read %s: %w", d.name, f, err)
		}
		d.AddUnit(UnitName(f), string(src))
	}

	return nil
}

func (d *driverImpl) Units() []Unit {
	return d.units
}

func (d *driverImpl) Run() (err error) {
	if d.sink == nil {
		return fmt.Errorf("%s: no sink registered", d.name)
	}

	defer func() {
		err = errors.Join(err, d.sink.Close())
	}()

	lines, err := d.translate()
	if err != nil {
		return err
	}

	return d.sink.WriteLines(lines)
}

func (d *driverImpl) translate() ([]string, error) {
	if len(d.units) == 0 {
		return nil, fmt.Errorf("%s: no units to translate", d.name)
	}

	// Statics are namespaced by unit name, so two units sharing a name
	// (e.g. a/Main.vm and b/Main.vm) would share their static slots.
	seen := make(map[string]bool, len(d.units))
	for _, u := range d.units {
		if seen[u.Name] {
			return nil, fmt.Errorf("%s: duplicate unit name %q", d.name, u.Name)
		}
		seen[u.Name] = true
	}

	var cmds []vm.Command
	for _, u := range d.units {
		parsed, err := vm.Parse(u.Name, u.Source)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, parsed...)
	}

	return Translate(cmds, d.cfg)
}

// Translate runs the generator configured by cfg over cmds.
func Translate(cmds []vm.Command, cfg config.Config) ([]string, error) {
	return codegen.NewBuilder().WithConfig(cfg).Build().Translate(cmds)
}
