// Package config provides the translation configuration and its YAML file
// format.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hackvm/vm"
)

// StaticMode selects how static segment slots are addressed.
type StaticMode string

const (
	// StaticUnit names each static slot <Unit>.<index> and leaves address
	// allocation to the assembler, so units never share slots.
	StaticUnit StaticMode = "unit"
	// StaticFlat addresses static slots as 16 + index in every unit.
	StaticFlat StaticMode = "flat"
)

// Legacy bases used when segments are initialised without a bootstrap call.
const (
	LegacyLocalBase    = 300
	LegacyArgumentBase = 400
	LegacyThisBase     = 3000
	LegacyThatBase     = 3010
)

// Config controls code generation and the emulator used by `run`.
type Config struct {
	Bootstrap    bool       `yaml:"bootstrap"`
	Entry        string     `yaml:"entry"`
	StackBase    int        `yaml:"stack_base"`
	InitSegments bool       `yaml:"init_segments"`
	StaticMode   StaticMode `yaml:"static_mode"`
	Comments     bool       `yaml:"comments"`
	HaltLoop     bool       `yaml:"halt_loop"`
	MaxSteps     int        `yaml:"max_steps"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Bootstrap:  true,
		Entry:      "Sys.init",
		StackBase:  256,
		StaticMode: StaticUnit,
		HaltLoop:   true,
		MaxSteps:   1_000_000,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the generator cannot honour.
func (c Config) Validate() error {
	if c.Bootstrap {
		if c.Entry == "" {
			return fmt.Errorf("config: bootstrap requires an entry function")
		}
		if err := vm.CheckFunctionName(c.Entry); err != nil {
			return fmt.Errorf("config: entry: %w", err)
		}
	}

	if c.StackBase < 0 || c.StackBase > 32767 {
		return fmt.Errorf("config: stack_base %d out of range", c.StackBase)
	}

	switch c.StaticMode {
	case StaticUnit, StaticFlat:
	default:
		return fmt.Errorf("config: unknown static_mode %q", c.StaticMode)
	}

	if c.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive")
	}

	return nil
}
